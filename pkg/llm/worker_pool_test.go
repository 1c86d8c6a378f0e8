package llm

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProcessOrdered_ResultsFollowSubmissionOrder(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: 4}, zap.NewNop())

	// Later items complete first; results must still land at their
	// submission index.
	items := make([]WorkItem[int], 8)
	for i := range items {
		idx := i
		items[i] = WorkItem[int]{
			ID: fmt.Sprintf("item-%d", idx),
			Execute: func(ctx context.Context) (int, error) {
				time.Sleep(time.Duration(8-idx) * time.Millisecond)
				return idx * 10, nil
			},
		}
	}

	results := ProcessOrdered(context.Background(), pool, items)
	require.Len(t, results, 8)
	for i, result := range results {
		assert.NoError(t, result.Err)
		assert.Equal(t, i*10, result.Result)
	}
}

func TestProcessOrdered_FailuresDoNotAffectOtherItems(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: 2}, zap.NewNop())

	boom := errors.New("boom")
	items := []WorkItem[string]{
		{ID: "a", Execute: func(ctx context.Context) (string, error) { return "a", nil }},
		{ID: "b", Execute: func(ctx context.Context) (string, error) { return "", boom }},
		{ID: "c", Execute: func(ctx context.Context) (string, error) { return "c", nil }},
	}

	results := ProcessOrdered(context.Background(), pool, items)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Result)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.Equal(t, "c", results[2].Result)
}

func TestProcessOrdered_RespectsConcurrencyBound(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: 2}, zap.NewNop())

	var current, peak atomic.Int32
	items := make([]WorkItem[struct{}], 10)
	for i := range items {
		items[i] = WorkItem[struct{}]{
			ID: fmt.Sprintf("item-%d", i),
			Execute: func(ctx context.Context) (struct{}, error) {
				n := current.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				current.Add(-1)
				return struct{}{}, nil
			},
		}
	}

	ProcessOrdered(context.Background(), pool, items)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestProcessOrdered_EmptyInput(t *testing.T) {
	pool := NewWorkerPool(DefaultWorkerPoolConfig(), zap.NewNop())
	assert.Nil(t, ProcessOrdered[int](context.Background(), pool, nil))
}

func TestProcessOrdered_CancelledContext(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: 1}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := []WorkItem[int]{
		{ID: "a", Execute: func(ctx context.Context) (int, error) { return 1, nil }},
	}

	results := ProcessOrdered(ctx, pool, items)
	require.Len(t, results, 1)
	// The item either ran or was rejected with the context error; both are
	// terminal outcomes.
	if results[0].Err != nil {
		assert.ErrorIs(t, results[0].Err, context.Canceled)
	}
}
