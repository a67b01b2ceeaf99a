package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Duration float64
	ID       string
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init <name>",
		Short: "Create an empty project",
		Long: `Create a project with an empty timeline.

Nothing is marked until the first gesture or finalize, so the new
project has no segments. The duration is the default for begin and
finalize gestures that do not carry their own.

Examples:
  keepline init "Interview A" --duration 754.2
  keepline init intro --duration 10 --id intro`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.Duration, "duration", 0, "video duration in seconds")
	cmd.Flags().StringVar(&opts.ID, "id", "", "project ID (default: generated)")

	return cmd
}

func runInit(ctx context.Context, opts *InitOptions, name string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if opts.Duration < 0 {
		return f.Fail(ExitCommandError, ErrCodeInvalidOption, fmt.Sprintf("duration must not be negative: %g", opts.Duration), nil)
	}

	st, err := openStore(opts.RootOptions, f)
	if err != nil {
		return err
	}
	defer st.Close()

	p, err := st.CreateProject(ctx, opts.ID, name, opts.Duration)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	opts.logger().Info("project created", "id", p.ID, "name", p.Name, "duration", p.Duration)

	return f.Success(p, fmt.Sprintf("Created project %s (%s, %gs)\n", p.ID, p.Name, p.Duration))
}
