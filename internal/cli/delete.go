package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/keepline/internal/store"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <project-id>",
		Short:         "Delete a project with its segments and journal",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd.Context(), rootOpts, args[0], cmd)
		},
	}
}

func runDelete(ctx context.Context, opts *RootOptions, id string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	st, err := openStore(opts, f)
	if err != nil {
		return err
	}
	defer st.Close()

	err = st.DeleteProject(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return f.Fail(ExitCommandError, ErrCodeNoProject, fmt.Sprintf("project not found: %s", id), nil)
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	opts.logger().Info("project deleted", "id", id)

	return f.Success(map[string]string{"deleted": id}, fmt.Sprintf("Deleted project %s\n", id))
}
