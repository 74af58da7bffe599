package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	mu      sync.Mutex
	seen    []string
	active  atomic.Int32
	maxSeen atomic.Int32
	fail    bool
}

func (r *countingRunner) Process(_ context.Context, jobID, _ string) error {
	n := r.active.Add(1)
	for {
		max := r.maxSeen.Load()
		if n <= max || r.maxSeen.CompareAndSwap(max, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	r.active.Add(-1)

	r.mu.Lock()
	r.seen = append(r.seen, jobID)
	r.mu.Unlock()

	if r.fail {
		return eris.New("boom")
	}
	return nil
}

func TestInlinePoolRunsAllTasks(t *testing.T) {
	runner := &countingRunner{}
	pool := NewInlinePool(context.Background(), runner, 2)

	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, pool.Dispatch(Task{JobID: id, FilePath: id + ".csv"}))
	}
	require.NoError(t, pool.Close())

	assert.Len(t, runner.seen, 4)
	assert.LessOrEqual(t, runner.maxSeen.Load(), int32(2), "concurrency bounded by pool size")
}

func TestInlinePoolFailedTaskDoesNotStopOthers(t *testing.T) {
	runner := &countingRunner{fail: true}
	pool := NewInlinePool(context.Background(), runner, 1)

	require.NoError(t, pool.Dispatch(Task{JobID: "x"}))
	require.NoError(t, pool.Dispatch(Task{JobID: "y"}))
	require.NoError(t, pool.Close())

	assert.Len(t, runner.seen, 2)
}
