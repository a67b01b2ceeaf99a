package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keepline/internal/ir"
	"github.com/roach88/keepline/internal/testutil"
)

var journal = []Command{
	{Op: OpBegin, At: 1, Duration: 10},
	{Op: OpStop, At: 3},
	{Op: OpBegin, At: 7, Duration: 10},
	{Op: OpStop, At: 9},
	{Op: OpBegin, At: 5, Duration: 10},
	{Op: OpStop, At: 8},
	{Op: OpFinalize, Duration: 10},
}

func TestReplay_MatchesLiveRun(t *testing.T) {
	live := newTestEngine()
	for _, cmd := range journal {
		_, err := Apply(live, cmd)
		require.NoError(t, err)
	}

	replayed, err := Replay(journal,
		WithIDGenerator(testutil.NewSequentialIDGenerator("seg")),
		WithLogger(testutil.DiscardLogger()),
	)
	require.NoError(t, err)

	assert.Equal(t, live.Segments(), replayed.Segments(), "same generator reproduces identities")
	assert.Equal(t, live.Revision(), replayed.Revision())
}

func TestReplay_HashIgnoresIdentities(t *testing.T) {
	a, err := Replay(journal, WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)
	b, err := Replay(journal, WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)

	assert.NotEqual(t, a.Segments()[0].ID, b.Segments()[0].ID)
	assert.Equal(t, ir.MustPartitionHash(a.Segments()), ir.MustPartitionHash(b.Segments()))
}

func TestVerifyReplay(t *testing.T) {
	want := ir.MustPartitionHash([]ir.Segment{
		span(0, 1, false),
		span(1, 3, true),
		span(3, 5, false),
		span(5, 8, true),
		span(8, 10, false),
	})

	_, got, err := VerifyReplay(journal, want, WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, _, err = VerifyReplay(journal[:2], want, WithLogger(testutil.DiscardLogger()))
	var mismatch *ReplayMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 2, mismatch.Commands)
}

func TestReplay_InvalidCommand(t *testing.T) {
	_, err := Replay([]Command{{Op: OpReset}, {Op: "undo"}}, WithLogger(testutil.DiscardLogger()))

	require.Error(t, err)
	assert.True(t, IsUnknownOp(err))
	assert.Contains(t, err.Error(), "replay")
}
