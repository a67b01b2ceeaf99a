package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/keepline/internal/store"
)

// ShowResult is a project with its stored partition.
type ShowResult struct {
	Project  store.Project `json:"project"`
	Gestures int64         `json:"gestures"`
	PartitionView
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Print a project's timeline",
		Long: `Print a project's stored segments in time order with their tags and
IDs, followed by the total kept duration. Use the IDs with toggle steps in
an apply script.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), rootOpts, args[0], cmd)
		},
	}
}

func runShow(ctx context.Context, opts *RootOptions, id string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	st, err := openStore(opts, f)
	if err != nil {
		return err
	}
	defer st.Close()

	p, err := readProject(ctx, st, id, f)
	if err != nil {
		return err
	}
	segs, err := st.ReadSegments(ctx, id)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	seq, err := st.GetLastSeq(ctx, id)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	result := ShowResult{Project: p, Gestures: seq, PartitionView: newPartitionView(segs, p.PartitionHash)}
	text := fmt.Sprintf("%s (%s), %gs, %d gesture(s)\n", p.Name, p.ID, p.Duration, seq)
	if len(segs) == 0 {
		text += "  nothing marked yet\n"
	} else {
		text += formatPartition(segs)
	}
	return f.Success(result, text)
}
