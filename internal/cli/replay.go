package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/keepline/internal/engine"
	"github.com/roach88/keepline/internal/store"
)

// ReplayProjectResult holds the replay result for a single project.
type ReplayProjectResult struct {
	ProjectID  string `json:"project_id"`
	Name       string `json:"name"`
	Gestures   int    `json:"gestures"`
	Hash       string `json:"hash"`
	StoredHash string `json:"stored_hash"`
	Match      bool   `json:"match"`
	Error      string `json:"error,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Projects      []ReplayProjectResult `json:"projects"`
	TotalProjects int                   `json:"total_projects"`
	AllMatch      bool                  `json:"all_match"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay [project-id]",
		Short: "Replay gesture journals and verify stored partitions",
		Long: `Rebuild each project's timeline from its gesture journal on a fresh
engine and compare the partition hash with the one stored alongside the
segments. The hash covers segment bounds and tags, not identities.

With no project ID every project is replayed.

Exit codes:
  0 - Every journal reproduces its stored partition
  1 - One or more mismatches
  2 - Command error (database not found, unknown project, etc.)

Examples:
  keepline replay
  keepline replay 0190c3e2-7d4f-7b1a-9c55-0f1e2d3c4b5a --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), rootOpts, args, cmd)
		},
	}
	return cmd
}

func runReplay(ctx context.Context, opts *RootOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	st, err := openStore(opts, f)
	if err != nil {
		return err
	}
	defer st.Close()

	var projects []store.Project
	if len(args) == 1 {
		p, err := readProject(ctx, st, args[0], f)
		if err != nil {
			return err
		}
		projects = []store.Project{p}
	} else if projects, err = st.ListProjects(ctx); err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	result := ReplayResult{
		Projects:      make([]ReplayProjectResult, 0, len(projects)),
		TotalProjects: len(projects),
		AllMatch:      true,
	}
	for _, p := range projects {
		pr, err := replayProject(ctx, st, p, opts)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("failed to replay project %s: %v", p.ID, err), nil)
		}
		result.Projects = append(result.Projects, pr)
		if !pr.Match {
			result.AllMatch = false
		}
	}

	if !result.AllMatch {
		if f.JSON() {
			return f.Fail(ExitFailure, ErrCodeReplay, "replay verification failed", result)
		}
		fmt.Fprint(f.Writer, formatReplayText(result))
		return NewExitError(ExitFailure, "replay verification failed")
	}
	return f.Success(result, formatReplayText(result))
}

// replayProject replays one journal. A hash mismatch or an invalid journal
// entry is reported in the result; only store failures are errors.
func replayProject(ctx context.Context, st *store.Store, p store.Project, opts *RootOptions) (ReplayProjectResult, error) {
	gestures, err := st.ReadGestures(ctx, p.ID)
	if err != nil {
		return ReplayProjectResult{}, err
	}

	pr := ReplayProjectResult{
		ProjectID:  p.ID,
		Name:       p.Name,
		Gestures:   len(gestures),
		StoredHash: p.PartitionHash,
	}

	_, hash, err := engine.VerifyReplay(store.Commands(gestures), p.PartitionHash, engine.WithLogger(opts.logger()))
	pr.Hash = hash
	var mismatch *engine.ReplayMismatchError
	switch {
	case err == nil:
		pr.Match = true
	case errors.As(err, &mismatch):
		pr.Error = "partition hash mismatch"
	default:
		pr.Error = err.Error()
	}
	opts.logger().Debug("project replayed", "id", p.ID, "gestures", len(gestures), "match", pr.Match)
	return pr, nil
}

func formatReplayText(result ReplayResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Replay Summary: %d project(s)\n", result.TotalProjects)
	for _, p := range result.Projects {
		status := "✓"
		if !p.Match {
			status = "✗"
		}
		fmt.Fprintf(&b, "%s %s (%s): %d gesture(s)\n", status, p.ProjectID, p.Name, p.Gestures)
		if p.Error != "" {
			fmt.Fprintf(&b, "  %s\n", p.Error)
		}
	}
	if result.AllMatch {
		b.WriteString("All journals reproduce their stored partitions\n")
	}
	return b.String()
}
