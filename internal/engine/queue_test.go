package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobQueue_FIFO(t *testing.T) {
	q := newJobQueue()

	for _, at := range []float64{1, 2, 3} {
		require.True(t, q.Enqueue(job{cmd: Command{Op: OpSplit, At: at}}))
	}

	for _, want := range []float64{1, 2, 3} {
		j, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, j.cmd.At)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok, "queue should be empty")
}

func TestJobQueue_SignalsOnEnqueue(t *testing.T) {
	q := newJobQueue()
	q.Enqueue(job{cmd: Command{Op: OpReset}})

	select {
	case _, open := <-q.Wait():
		assert.True(t, open)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no signal after enqueue")
	}
}

func TestJobQueue_CloseRejectsAndKeepsPending(t *testing.T) {
	q := newJobQueue()
	q.Enqueue(job{cmd: Command{Op: OpReset}})
	q.Close()
	q.Close()

	assert.False(t, q.Enqueue(job{cmd: Command{Op: OpReset}}), "enqueue after close")
	assert.Equal(t, 1, q.Len())

	_, open := <-q.Wait()
	assert.False(t, open, "signal channel should be closed")

	pending := q.Drain()
	assert.Len(t, pending, 1)
	assert.Equal(t, 0, q.Len())
}

func TestJobQueue_ConcurrentProducers(t *testing.T) {
	q := newJobQueue()
	const producers = 10
	const perProducer = 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(job{cmd: Command{Op: OpSplit, At: float64(i)}})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, producers*perProducer, q.Len())
	assert.Len(t, q.Drain(), producers*perProducer)
}
