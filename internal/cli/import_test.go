package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keepline/internal/engine"
	"github.com/roach88/keepline/internal/project"
)

func TestImportCommand_CUE(t *testing.T) {
	opts := newTestOpts(t)
	opts.Format = "json"
	path := writeFile(t, t.TempDir(), "edits.cue", introCUE)

	out, err := execute(t, NewImportCommand(opts), path)
	require.NoError(t, err)

	var resp struct {
		Data []ImportedProject `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)

	intro, outro := resp.Data[0], resp.Data[1]
	assert.Equal(t, "intro", intro.Label)
	assert.Equal(t, "Intro", intro.Name)
	assert.Equal(t, 5.0, intro.TotalIncluded)
	assert.Equal(t, 1, intro.IncludedCount)
	require.Len(t, intro.Segments, 2)
	assert.Equal(t, 5.0, intro.Segments[0].EndTime)

	assert.Equal(t, "outro", outro.Label)
	assert.Zero(t, outro.TotalIncluded)
	require.Len(t, outro.Segments, 1)
	assert.Equal(t, 6.0, outro.Segments[0].EndTime)
	assert.False(t, outro.Segments[0].IsIncluded)

	// The journal is the gestures plus the closing finalize.
	ctx := context.Background()
	gestures, err := openTestStore(t, opts).ReadGestures(ctx, intro.ID)
	require.NoError(t, err)
	require.Len(t, gestures, 3)
	assert.Equal(t, engine.OpFinalize, gestures[2].Command.Op)
	assert.Equal(t, 10.0, gestures[2].Command.Duration)

	_, err = execute(t, NewReplayCommand(opts))
	require.NoError(t, err)
}

func TestImportCommand_Text(t *testing.T) {
	opts := newTestOpts(t)
	path := writeFile(t, t.TempDir(), "edits.cue", introCUE)

	out, err := execute(t, NewImportCommand(opts), path)
	require.NoError(t, err)
	assert.Regexp(t, `Imported intro as \S+: 5s kept in 1 segment\(s\)`, out)
	assert.Regexp(t, `Imported outro as \S+: 0s kept in 0 segment\(s\)`, out)
}

func TestImportCommand_InvalidCUE(t *testing.T) {
	opts := newTestOpts(t)
	path := writeFile(t, t.TempDir(), "bad.cue", `package edits

project: broken: { name: "b", duration: 0 }
`)

	out, err := execute(t, NewImportCommand(opts), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, project.ErrCodeSchema)

	projects, err := openTestStore(t, opts).ListProjects(context.Background())
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestImportCommand_Export(t *testing.T) {
	opts := newTestOpts(t)
	path := writeFile(t, t.TempDir(), "kept.yaml", `id: old
name: Kept
duration: 10
total_included: 4
segments:
  - {id: b, start_time: 6, end_time: 10, is_included: true}
  - {id: a, start_time: 0, end_time: 6, is_included: false}
`)

	opts.Format = "json"
	out, err := execute(t, NewImportCommand(opts), path)
	require.NoError(t, err)

	var resp struct {
		Data []ImportedProject `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	got := resp.Data[0]
	assert.Equal(t, "kept", got.Label)
	assert.Equal(t, "Kept", got.Name)
	assert.NotEqual(t, "old", got.ID)
	assert.Equal(t, 4.0, got.TotalIncluded)
	require.Len(t, got.Segments, 2)
	assert.Equal(t, "a", got.Segments[0].ID)
	assert.Equal(t, "b", got.Segments[1].ID)
}

func TestImportCommand_ExportWithoutDuration(t *testing.T) {
	opts := newTestOpts(t)
	path := writeFile(t, t.TempDir(), "kept.json", `{"name": "Kept", "segments": []}`)

	out, err := execute(t, NewImportCommand(opts), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "positive duration")
}
