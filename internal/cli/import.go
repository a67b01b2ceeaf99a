package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/keepline/internal/engine"
	"github.com/roach88/keepline/internal/ir"
	"github.com/roach88/keepline/internal/project"
)

// ImportedProject summarises one project created by import.
type ImportedProject struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Name  string `json:"name"`
	PartitionView
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.cue|dir|export>",
		Short: "Create projects from CUE edit-decision files or exports",
		Long: `Compile every project in a CUE file (or a directory holding one CUE
package) and store it: the project row, its gesture journal and the
resulting partition.

The journal is the seed segments as one replace, then the gestures, then a
finalize to the project's duration, so "keepline replay" reproduces the
stored partition.

A .json, .yaml, .yml or .toml file written by "keepline export" is restored
as a new project whose journal is one replace and one finalize.

Examples:
  keepline import ./edits/interview.cue
  keepline import ./edits --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runImport(ctx context.Context, opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	defs, err := loadDefinitions(path, f)
	if err != nil {
		return err
	}

	st, err := openStore(opts, f)
	if err != nil {
		return err
	}
	defer st.Close()

	imported := make([]ImportedProject, 0, len(defs))
	for _, def := range defs {
		e, err := def.Build(engine.WithLogger(opts.logger()))
		if err != nil {
			return f.Fail(ExitFailure, project.ErrCodeGesture, err.Error(), nil)
		}
		segs := e.Segments()

		p, err := st.CreateProject(ctx, "", def.Name, def.Duration)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
		}
		if _, err := st.AppendGestures(ctx, p.ID, def.Commands()); err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
		}
		hash, err := st.SaveSegments(ctx, p.ID, segs)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
		}

		opts.logger().Info("project imported", "id", p.ID, "label", def.Label, "segments", len(segs))
		imported = append(imported, ImportedProject{
			ID:            p.ID,
			Label:         def.Label,
			Name:          p.Name,
			PartitionView: newPartitionView(segs, hash),
		})
	}

	var b strings.Builder
	for _, ip := range imported {
		fmt.Fprintf(&b, "Imported %s as %s: %gs kept in %d segment(s)\n", ip.Label, ip.ID, ip.TotalIncluded, ip.IncludedCount)
	}
	return f.Success(imported, b.String())
}

// loadDefinitions reads project definitions from CUE sources or from an
// export document, picked by extension.
func loadDefinitions(path string, f *OutputFormatter) ([]project.Definition, error) {
	as := ""
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		as = ExportJSON
	case ".yaml", ".yml":
		as = ExportYAML
	case ".toml":
		as = ExportTOML
	}

	if as == "" {
		result, errs := project.Load(path, project.LoadModeCollectAll)
		if len(errs) > 0 {
			return nil, outputLoadErrors(f, errs)
		}
		f.VerboseLog("Loaded %d project(s) from %d file(s)", len(result.Projects), result.FileCount)
		return result.Projects, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, f.Fail(ExitCommandError, project.ErrCodeNotFound, err.Error(), nil)
	}
	doc, err := DecodeExport(data, as)
	if err != nil {
		return nil, f.Fail(ExitFailure, project.ErrCodeSchema, err.Error(), nil)
	}
	if doc.Name == "" || doc.Duration <= 0 {
		return nil, f.Fail(ExitFailure, project.ErrCodeSchema, "export needs a name and a positive duration", nil)
	}
	f.VerboseLog("Loaded export of %s with %d segment(s)", doc.Name, len(doc.Segments))
	return []project.Definition{{
		Label:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Name:     doc.Name,
		Duration: doc.Duration,
		Segments: ir.FromRecords(doc.Segments),
	}}, nil
}
