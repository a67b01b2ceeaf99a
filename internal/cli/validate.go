package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/keepline/internal/engine"
	"github.com/roach88/keepline/internal/partition"
	"github.com/roach88/keepline/internal/project"
)

// ValidationError is one problem found in an edit-decision file.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// ProjectSummary describes a project that validated cleanly.
type ProjectSummary struct {
	Label         string  `json:"label"`
	Name          string  `json:"name"`
	Duration      float64 `json:"duration"`
	Segments      int     `json:"segments"`
	Gestures      int     `json:"gestures"`
	TotalIncluded float64 `json:"total_included"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Projects []ProjectSummary  `json:"projects,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file.cue|dir>",
		Short: "Check edit-decision files without importing them",
		Long: `Compile CUE edit-decision files, replay each project's gestures and
check the resulting partition: sorted, gap-free, non-overlapping and
covering the project's duration. Nothing is written to the database.

Exit codes:
  0 - All projects valid
  1 - One or more problems found
  2 - Command error`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	result := validatePath(path)
	if !result.Valid {
		return outputValidationErrors(f, result.Errors)
	}
	return f.Success(result, formatValidationSuccess(result))
}

// validatePath loads, builds and checks every project under path.
func validatePath(path string) ValidationResult {
	loaded, errs := project.Load(path, project.LoadModeCollectAll)
	if len(errs) > 0 {
		return ValidationResult{Errors: toValidationErrors(errs)}
	}

	result := ValidationResult{Valid: true}
	for _, def := range loaded.Projects {
		e, err := def.Build(engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
		if err != nil {
			result.Errors = append(result.Errors, positioned(project.ErrCodeGesture, err.Error(), def))
			continue
		}
		segs := e.Segments()
		if err := partition.Validate(segs, def.Duration); err != nil {
			result.Errors = append(result.Errors, positioned(project.ErrCodeSegment, fmt.Sprintf("project %s: %v", def.Label, err), def))
			continue
		}
		result.Projects = append(result.Projects, ProjectSummary{
			Label:         def.Label,
			Name:          def.Name,
			Duration:      def.Duration,
			Segments:      len(segs),
			Gestures:      len(def.Gestures),
			TotalIncluded: e.TotalIncludedDuration(),
		})
	}
	result.Valid = len(result.Errors) == 0
	return result
}

func positioned(code, message string, def project.Definition) ValidationError {
	ve := ValidationError{Code: code, Message: message}
	if def.Pos.IsValid() {
		ve.File = def.Pos.Filename()
		ve.Line = def.Pos.Line()
		ve.Column = def.Pos.Column()
	}
	return ve
}

func toValidationErrors(errs []error) []ValidationError {
	out := make([]ValidationError, 0, len(errs))
	for _, err := range errs {
		var loadErr *project.LoadError
		if !errors.As(err, &loadErr) {
			out = append(out, ValidationError{Code: project.ErrCodeGeneric, Message: err.Error()})
			continue
		}
		ve := ValidationError{Code: loadErr.Code, Message: loadErr.Message}
		if loadErr.Pos.IsValid() {
			ve.File = loadErr.Pos.Filename()
			ve.Line = loadErr.Pos.Line()
			ve.Column = loadErr.Pos.Column()
		}
		out = append(out, ve)
	}
	return out
}

// outputLoadErrors reports project loading failures and returns ExitFailure.
func outputLoadErrors(f *OutputFormatter, errs []error) error {
	return outputValidationErrors(f, toValidationErrors(errs))
}

func outputValidationErrors(f *OutputFormatter, errs []ValidationError) error {
	message := fmt.Sprintf("%d problem(s) found", len(errs))
	if f.JSON() {
		return f.Fail(ExitFailure, errs[0].Code, message, errs)
	}

	w := f.Writer
	for _, e := range errs {
		fmt.Fprintf(w, "✗ %s\n", formatValidationError(e))
	}
	return NewExitError(ExitFailure, message)
}

func formatValidationError(e ValidationError) string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.File, e.Line, e.Column, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func formatValidationSuccess(result ValidationResult) string {
	var b strings.Builder
	for _, p := range result.Projects {
		fmt.Fprintf(&b, "✓ %s (%s): %d segment(s), %gs kept\n", p.Label, p.Name, p.Segments, p.TotalIncluded)
	}
	fmt.Fprintf(&b, "All %d project(s) valid\n", len(result.Projects))
	return b.String()
}
