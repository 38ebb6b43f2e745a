package taskqueue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runQueue[T any](t *testing.T, q *Queue[T]) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, q.Run(ctx))
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel
}

func TestQueueProcessesTasks(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []int
	)
	q := New("numbers", func(ctx context.Context, n int) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, n)
		return nil
	}, Config{Workers: 4})
	runQueue(t, q)

	ctx := context.Background()
	for i := 0; i < 100; i++ {
		require.NoError(t, q.Enqueue(ctx, i))
	}
	q.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, 100)
	assert.ElementsMatch(t, seen, func() []int {
		expected := make([]int, 100)
		for i := range expected {
			expected[i] = i
		}
		return expected
	}())
}

func TestQueueRetriesUntilMaxAttempts(t *testing.T) {
	var attempts atomic.Int32
	failure := errors.New("node unavailable")

	q := New("failing", func(ctx context.Context, payload string) error {
		attempts.Add(1)
		return failure
	}, Config{MaxAttempts: 3, RetryDelay: time.Millisecond})

	var (
		failedPayload string
		failedErr     error
	)
	q.OnFailure = func(ctx context.Context, payload string, err error) {
		failedPayload, failedErr = payload, err
	}
	runQueue(t, q)

	require.NoError(t, q.Enqueue(context.Background(), "tx"))
	q.Wait()

	assert.EqualValues(t, 3, attempts.Load())
	assert.Equal(t, "tx", failedPayload)
	assert.ErrorIs(t, failedErr, failure)
}

func TestQueueRetrySucceeds(t *testing.T) {
	var attempts atomic.Int32
	q := New("flaky", func(ctx context.Context, payload string) error {
		if attempts.Add(1) < 2 {
			return errors.New("temporary")
		}
		return nil
	}, Config{MaxAttempts: 5, RetryDelay: time.Millisecond})
	q.OnFailure = func(ctx context.Context, payload string, err error) {
		t.Errorf("unexpected failure: %v", err)
	}
	runQueue(t, q)

	require.NoError(t, q.Enqueue(context.Background(), "tx"))
	q.Wait()
	assert.EqualValues(t, 2, attempts.Load())
}

func TestQueueRecoversPanic(t *testing.T) {
	var failedErr error
	q := New("panicking", func(ctx context.Context, payload int) error {
		panic("boom")
	}, Config{MaxAttempts: 1})
	q.OnFailure = func(ctx context.Context, payload int, err error) {
		failedErr = err
	}
	runQueue(t, q)

	require.NoError(t, q.Enqueue(context.Background(), 1))
	q.Wait()
	assert.ErrorIs(t, failedErr, errs.InternalError)
}

func TestQueueClosed(t *testing.T) {
	q := New("closed", func(ctx context.Context, payload int) error { return nil }, Config{})
	q.Close()
	q.Close()

	err := q.Enqueue(context.Background(), 1)
	assert.ErrorIs(t, err, errs.InternalError)
	assert.NoError(t, q.Run(context.Background()))
}

func TestQueueEnqueueContextCanceled(t *testing.T) {
	q := New("full", func(ctx context.Context, payload int) error { return nil }, Config{BufferSize: 1})
	require.NoError(t, q.Enqueue(context.Background(), 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, q.Enqueue(ctx, 2), context.Canceled)
}

func TestSchedulerRunsJobs(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler()
	s.Every("tick", time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("job failures don't stop the scheduler")
	})
	s.Every("disabled", 0, func(ctx context.Context) error {
		t.Error("disabled job must not run")
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- s.Run(ctx)
	}()

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}
