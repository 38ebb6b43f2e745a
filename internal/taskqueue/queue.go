// Package taskqueue runs units of work on named in-process queues backed by bounded worker pools.
// A failed task is re-enqueued as a new attempt until its queue's attempt cap is reached.
package taskqueue

import (
	"context"
	"sync"
	"time"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/pkg/logger"
	"github.com/gaze-network/bcmr-indexer/pkg/logger/slogx"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultWorkers     = 1
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 5 * time.Second
	DefaultBufferSize  = 1024
)

// Handler processes one task payload.
type Handler[T any] func(ctx context.Context, payload T) error

type Config struct {
	Workers     int
	MaxAttempts int
	RetryDelay  time.Duration
	BufferSize  int
}

type task[T any] struct {
	payload T
	attempt int
}

// Queue is a named FIFO of tasks consumed by a pool of workers.
type Queue[T any] struct {
	name    string
	handler Handler[T]
	config  Config
	tasks   chan task[T]

	// OnFailure is called once a task exhausted every attempt.
	OnFailure func(ctx context.Context, payload T, err error)

	closeOnce sync.Once
	closed    chan struct{}
	pending   sync.WaitGroup
}

func New[T any](name string, handler Handler[T], config Config) *Queue[T] {
	config.Workers = utils.Default(config.Workers, DefaultWorkers)
	config.MaxAttempts = utils.Default(config.MaxAttempts, DefaultMaxAttempts)
	config.RetryDelay = utils.Default(config.RetryDelay, DefaultRetryDelay)
	config.BufferSize = utils.Default(config.BufferSize, DefaultBufferSize)
	return &Queue[T]{
		name:    name,
		handler: handler,
		config:  config,
		tasks:   make(chan task[T], config.BufferSize),
		closed:  make(chan struct{}),
	}
}

func (q *Queue[T]) Name() string {
	return q.name
}

// Enqueue adds a new task. It blocks while the queue buffer is full.
func (q *Queue[T]) Enqueue(ctx context.Context, payload T) error {
	return q.enqueue(ctx, task[T]{payload: payload, attempt: 1})
}

func (q *Queue[T]) enqueue(ctx context.Context, t task[T]) error {
	select {
	case <-q.closed:
		return errors.Wrapf(errs.InternalError, "queue %s is closed", q.name)
	default:
	}
	q.pending.Add(1)
	select {
	case q.tasks <- t:
		return nil
	case <-q.closed:
		q.pending.Done()
		return errors.Wrapf(errs.InternalError, "queue %s is closed", q.name)
	case <-ctx.Done():
		q.pending.Done()
		return errors.WithStack(ctx.Err())
	}
}

// Wait blocks until every enqueued task and its retries have finished.
func (q *Queue[T]) Wait() {
	q.pending.Wait()
}

// Close stops accepting tasks. Workers return once Run's context is done or the queue is closed.
func (q *Queue[T]) Close() {
	q.closeOnce.Do(func() {
		close(q.closed)
	})
}

// Run starts the workers and blocks until ctx is done or the queue is closed.
func (q *Queue[T]) Run(ctx context.Context) error {
	ctx = logger.WithContext(ctx, slogx.String("queue", q.name))
	eg, ectx := errgroup.WithContext(ctx)
	for i := 0; i < q.config.Workers; i++ {
		eg.Go(func() error {
			for {
				select {
				case <-ectx.Done():
					return nil
				case <-q.closed:
					return nil
				case t := <-q.tasks:
					q.execute(ectx, t)
				}
			}
		})
	}
	return errors.WithStack(eg.Wait())
}

func (q *Queue[T]) execute(ctx context.Context, t task[T]) {
	defer q.pending.Done()

	ctx = logger.WithContext(ctx, slogx.Int("attempt", t.attempt))
	err := q.safeHandle(ctx, t.payload)
	if err == nil {
		return
	}

	if t.attempt >= q.config.MaxAttempts {
		logger.ErrorContext(ctx, "Task failed, max attempts reached", err)
		if q.OnFailure != nil {
			q.OnFailure(ctx, t.payload, err)
		}
		return
	}

	logger.WarnContext(ctx, "Task failed, retrying as a new attempt", slogx.Error(err))
	next := task[T]{payload: t.payload, attempt: t.attempt + 1}
	q.pending.Add(1)
	go func() {
		defer q.pending.Done()
		select {
		case <-ctx.Done():
			return
		case <-q.closed:
			return
		case <-time.After(q.config.RetryDelay):
		}
		if err := q.enqueue(ctx, next); err != nil {
			logger.ErrorContext(ctx, "Failed to re-enqueue task", err)
		}
	}()
}

func (q *Queue[T]) safeHandle(ctx context.Context, payload T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(errs.InternalError, "task panic: %v", r)
		}
	}()
	return errors.WithStack(q.handler(ctx, payload))
}
