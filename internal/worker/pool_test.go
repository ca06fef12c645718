package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_BasicExecution(t *testing.T) {
	var calls atomic.Int32
	pool := New[int, int](Config{Workers: 2})

	results := pool.Run(context.Background(), []int{1, 2, 3, 4, 5}, func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		time.Sleep(5 * time.Millisecond)
		return n * n, nil
	})

	require.Len(t, results, 5)
	assert.EqualValues(t, 5, calls.Load())

	sum := 0
	for _, r := range results {
		require.NoError(t, r.Err)
		sum += r.Value
	}
	assert.Equal(t, 1+4+9+16+25, sum)
}

func TestPool_PropagatesErrors(t *testing.T) {
	pool := New[int, int](Config{Workers: 3})

	results := pool.Run(context.Background(), []int{1, 2, 3}, func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, errors.New("boom")
		}
		return n, nil
	})

	require.Len(t, results, 3)
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	assert.Equal(t, 1, failed)
}

func TestPool_ProgressCallback(t *testing.T) {
	var lastCompleted, lastTotal int
	pool := New[int, int](Config{
		Workers: 1,
		OnProgress: func(completed, total, failed int) {
			lastCompleted, lastTotal = completed, total
		},
	})

	pool.Run(context.Background(), []int{1, 2, 3}, func(_ context.Context, n int) (int, error) {
		return n, nil
	})

	assert.Equal(t, 3, lastCompleted)
	assert.Equal(t, 3, lastTotal)
}

func TestPool_EmptyTasks(t *testing.T) {
	pool := New[int, int](Config{Workers: 4})
	results := pool.Run(context.Background(), nil, func(_ context.Context, n int) (int, error) {
		return n, nil
	})
	assert.Nil(t, results)
}

func TestRunAsync_DrainsAllTasks(t *testing.T) {
	var processed atomic.Int32
	done := RunAsync(context.Background(), 3, []int{1, 2, 3, 4, 5, 6, 7, 8}, func(_ context.Context, n int) {
		processed.Add(1)
	})
	<-done
	assert.EqualValues(t, 8, processed.Load())
}
