package taskqueue

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/pkg/logger"
	"github.com/gaze-network/bcmr-indexer/pkg/logger/slogx"
	"golang.org/x/sync/errgroup"
)

type job struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context) error
}

// Scheduler runs periodic jobs. A job never overlaps with itself.
type Scheduler struct {
	jobs []job
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Every registers fn to run once per interval. Non-positive intervals disable the job.
func (s *Scheduler) Every(name string, interval time.Duration, fn func(ctx context.Context) error) {
	if interval <= 0 {
		return
	}
	s.jobs = append(s.jobs, job{name: name, interval: interval, fn: fn})
}

// Run blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	eg, ectx := errgroup.WithContext(ctx)
	for _, j := range s.jobs {
		j := j
		eg.Go(func() error {
			ctx := logger.WithContext(ectx, slogx.String("job", j.name))
			ticker := time.NewTicker(j.interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					start := time.Now()
					if err := j.fn(ctx); err != nil {
						logger.ErrorContext(ctx, "Periodic job failed", err)
						continue
					}
					logger.DebugContext(ctx, "Periodic job finished", slogx.Duration("duration", time.Since(start)))
				}
			}
		})
	}
	return errors.WithStack(eg.Wait())
}
