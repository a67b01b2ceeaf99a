package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keepline/internal/store"
	"github.com/roach88/keepline/internal/testutil"
)

const introCUE = `package edits

project: intro: {
	name:     "Intro"
	duration: 10
	gestures: [{op: "begin", at: 0}, {op: "stop", at: 5}]
}

project: outro: {
	name:     "Outro"
	duration: 6
}
`

// newTestOpts returns root options pointing at a fresh database.
func newTestOpts(t *testing.T) *RootOptions {
	t.Helper()
	return &RootOptions{
		Format:   "text",
		Database: filepath.Join(t.TempDir(), "keepline.db"),
		Logger:   testutil.DiscardLogger(),
	}
}

// execute runs cmd with args and returns stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// openTestStore opens the database behind opts for direct inspection.
func openTestStore(t *testing.T, opts *RootOptions) *store.Store {
	t.Helper()
	st, err := store.Open(opts.Database)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// initProject creates a project through the init command.
func initProject(t *testing.T, opts *RootOptions, id string, duration string) {
	t.Helper()
	_, err := execute(t, NewInitCommand(opts), id, "--id", id, "--duration", duration)
	require.NoError(t, err)
}

// applyScript writes a script and applies it to project id.
func applyScript(t *testing.T, opts *RootOptions, id, script string) (string, error) {
	t.Helper()
	path := writeFile(t, t.TempDir(), "script.yaml", script)
	return execute(t, NewApplyCommand(opts), id, path)
}
