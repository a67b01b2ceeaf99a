package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List projects",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), rootOpts, cmd)
		},
	}
}

func runList(ctx context.Context, opts *RootOptions, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	st, err := openStore(opts, f)
	if err != nil {
		return err
	}
	defer st.Close()

	projects, err := st.ListProjects(ctx)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	if len(projects) == 0 {
		return f.Success(projects, "No projects.\n")
	}
	var b strings.Builder
	for _, p := range projects {
		fmt.Fprintf(&b, "%s  %-24s  %gs\n", p.ID, p.Name, p.Duration)
	}
	return f.Success(projects, b.String())
}
