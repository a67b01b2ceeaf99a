package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/keepline/internal/engine"
	"github.com/roach88/keepline/internal/ir"
	"github.com/roach88/keepline/internal/partition"
	"github.com/roach88/keepline/internal/store"
)

// ApplyResult summarises an apply run.
type ApplyResult struct {
	ProjectID string `json:"project_id"`
	Applied   int    `json:"applied"`
	Skipped   int    `json:"skipped"`
	Recording bool   `json:"recording"`
	PartitionView
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <project-id> <script.yaml>",
		Short: "Apply a gesture script to a stored project",
		Long: `Restore a project's timeline from its journal, apply the gestures in a
YAML script, and store the result.

Every applied gesture is appended to the journal as it happens. Toggles
that name a segment ID are journaled by position so replays do not depend
on identities. Toggles naming an unknown ID are skipped. Begin and
finalize steps without a duration use the project's.

Exit codes:
  0 - Script applied
  1 - Stored journal does not reproduce the stored partition
  2 - Command error (unknown project, malformed script, database error)

Examples:
  keepline apply 0190c3e2-7d4f-7b1a-9c55-0f1e2d3c4b5a gestures.yaml`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd.Context(), rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runApply(ctx context.Context, opts *RootOptions, projectID, scriptPath string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := opts.logger().With("project", projectID)

	script, err := LoadScript(scriptPath)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeScript, err.Error(), nil)
	}

	st, err := openStore(opts, f)
	if err != nil {
		return err
	}
	defer st.Close()

	p, err := readProject(ctx, st, projectID, f)
	if err != nil {
		return err
	}

	e, err := restoreEngine(ctx, st, p, logger)
	if err != nil {
		var mismatch *engine.ReplayMismatchError
		if errors.As(err, &mismatch) {
			return f.Fail(ExitFailure, ErrCodeReplay, err.Error(), nil)
		}
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	current := e.Segments()

	// The observer runs on the session goroutine before Submit returns, so
	// journalErr is visible to the loop below without further locking.
	duration := p.Duration
	var journalErr error
	observer := func(revision int64, c engine.Command, _ []ir.Segment) {
		if journalErr != nil {
			return
		}
		if _, err := st.AppendGestures(ctx, p.ID, []engine.Command{c}); err != nil {
			journalErr = err
			return
		}
		if c.Op == engine.OpFinalize && c.Duration > 0 && c.Duration != duration {
			if err := st.UpdateDuration(ctx, p.ID, c.Duration); err != nil {
				journalErr = err
				return
			}
			duration = c.Duration
		}
		logger.Debug("gesture journaled", "op", c.Op, "revision", revision)
	}

	session := engine.NewSession(e, engine.WithObserver(observer), engine.WithSessionLogger(logger))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- session.Run(runCtx) }()

	result := ApplyResult{ProjectID: p.ID}
	for i, step := range script.Steps {
		c, ok := positional(withDefaultDuration(step, duration), current)
		if !ok {
			logger.Warn("toggle skipped: unknown segment", "step", i, "id", step.ID)
			result.Skipped++
			continue
		}

		segs, err := session.Submit(ctx, c)
		if err == nil {
			err = journalErr
		}
		if err != nil {
			session.Stop()
			<-runErr
			return f.Fail(ExitCommandError, stepErrorCode(err), fmt.Sprintf("step %d (%s): %v", i, step.Op, err), nil)
		}
		current = segs
		result.Applied++
	}

	session.Stop()
	if err := <-runErr; err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	result.Recording = e.IsRecording()
	if result.Recording {
		logger.Warn("script ended mid-gesture; the stored partition is the live preview")
	}

	hash, err := st.SaveSegments(ctx, p.ID, current)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	result.PartitionView = newPartitionView(current, hash)
	logger.Info("script applied", "applied", result.Applied, "skipped", result.Skipped, "hash", hash)

	text := fmt.Sprintf("Applied %d gesture(s) to %s (%d skipped)\n%s", result.Applied, p.ID, result.Skipped, formatPartition(current))
	return f.Success(result, text)
}

// stepErrorCode reports a rejected command as a script problem and
// anything else, including a stopped session, as a store problem.
func stepErrorCode(err error) string {
	var cmdErr *engine.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code != engine.ErrCodeSessionClosed {
		return ErrCodeScript
	}
	return ErrCodeStore
}

// restoreEngine rebuilds a project's engine from its journal and checks it
// against the stored partition hash. Stored segment identities are then
// reinstated so IDs shown by "show" stay valid. They are not reinstated when
// the journal ended mid-gesture, where that would discard the transaction,
// or when the partition holds unmerged split pieces, which reinstating
// would merge.
func restoreEngine(ctx context.Context, st *store.Store, p store.Project, logger *slog.Logger) (*engine.Engine, error) {
	gestures, err := st.ReadGestures(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	stored, err := st.ReadSegments(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	e, hash, err := engine.VerifyReplay(store.Commands(gestures), p.PartitionHash, engine.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	logger.Debug("journal replayed", "gestures", len(gestures), "hash", hash)

	if e.IsRecording() || len(stored) == 0 {
		return e, nil
	}
	merged, err := ir.PartitionHash(partition.Normalize(stored, partition.Unbounded))
	if err != nil {
		return nil, err
	}
	if merged != hash {
		logger.Debug("stored identities not reinstated: partition has unmerged pieces")
		return e, nil
	}
	e.ReplaceSegments(stored)
	return e, nil
}
