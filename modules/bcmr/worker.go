package bcmr

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/core/indexer"
	"github.com/gaze-network/bcmr-indexer/core/types"
	"github.com/gaze-network/bcmr-indexer/internal/taskqueue"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/datagateway"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/fetcher"
	"github.com/gaze-network/bcmr-indexer/pkg/btcclient"
	"github.com/gaze-network/bcmr-indexer/pkg/logger"
	"github.com/gaze-network/bcmr-indexer/pkg/logger/slogx"
	"golang.org/x/sync/errgroup"
)

var _ indexer.IndexerWorker = (*Worker)(nil)

// Periodic jobs run on the periodic queue.
const (
	jobBackfill = "backfill"
	jobWatch    = "watch"
)

type WorkerConfig struct {
	Network          common.Network
	Workers          int
	MaxTaskAttempts  int
	BackfillInterval time.Duration
	WatchInterval    time.Duration
}

type queueRunner interface {
	Name() string
	Run(ctx context.Context) error
	Close()
}

// Worker runs the pipeline on its task queues, fed by the block poller and the periodic scheduler.
type Worker struct {
	pipeline  *Pipeline
	processor *Processor

	// indexer is nil when block polling is disabled.
	indexer *indexer.Indexer

	processTxQueue       *taskqueue.Queue[*types.Transaction]
	resolveMetadataQueue *taskqueue.Queue[int64]
	watchQueue           *taskqueue.Queue[int64]
	mempoolQueue         *taskqueue.Queue[string]
	periodicQueue        *taskqueue.Queue[string]
	scheduler            *taskqueue.Scheduler

	cleanupFuncs []func(context.Context) error

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	shutdown sync.Once
}

func NewWorker(bcmrDg datagateway.BCMRDataGateway, node btcclient.Contract, documentFetcher fetcher.DocumentFetcher, config WorkerConfig, opts ...PipelineOption) *Worker {
	w := &Worker{}
	queueConfig := taskqueue.Config{
		Workers:     config.Workers,
		MaxAttempts: config.MaxTaskAttempts,
	}

	w.processTxQueue = taskqueue.New(QueueProcessTx, func(ctx context.Context, tx *types.Transaction) error {
		return w.pipeline.ProcessTransaction(ctx, tx)
	}, queueConfig)
	w.processTxQueue.OnFailure = countFailure[*types.Transaction](QueueProcessTx)

	w.resolveMetadataQueue = taskqueue.New(QueueResolveMetadata, func(ctx context.Context, registryID int64) error {
		return w.pipeline.ResolveMetadata(ctx, &registryID)
	}, queueConfig)
	w.resolveMetadataQueue.OnFailure = countFailure[int64](QueueResolveMetadata)

	w.watchQueue = taskqueue.New(QueueWatchRegistryChanges, func(ctx context.Context, registryID int64) error {
		return w.pipeline.WatchRegistry(ctx, registryID)
	}, queueConfig)
	w.watchQueue.OnFailure = countFailure[int64](QueueWatchRegistryChanges)

	w.mempoolQueue = taskqueue.New(QueueMempool, func(ctx context.Context, rawHex string) error {
		return w.pipeline.ProcessMempoolTransaction(ctx, rawHex)
	}, queueConfig)
	w.mempoolQueue.OnFailure = countFailure[string](QueueMempool)

	// periodic jobs must not overlap with themselves
	w.periodicQueue = taskqueue.New(QueuePeriodic, w.runPeriodicJob, taskqueue.Config{
		Workers:     1,
		MaxAttempts: 1,
	})
	w.periodicQueue.OnFailure = countFailure[string](QueuePeriodic)

	w.scheduler = taskqueue.NewScheduler()
	w.scheduler.Every(jobBackfill, config.BackfillInterval, func(ctx context.Context) error {
		return w.periodicQueue.Enqueue(ctx, jobBackfill)
	})
	w.scheduler.Every(jobWatch, config.WatchInterval, func(ctx context.Context) error {
		return w.periodicQueue.Enqueue(ctx, jobWatch)
	})

	opts = append(opts, WithMetadataDispatcher(w.resolveMetadataQueue.Enqueue))
	w.pipeline = NewPipeline(bcmrDg, node, documentFetcher, opts...)
	w.processor = NewProcessor(bcmrDg, config.Network, w.processTxQueue.Enqueue, w.processTxQueue.Wait)
	return w
}

func (w *Worker) Type() string {
	return "bcmr"
}

func (w *Worker) Pipeline() *Pipeline {
	return w.pipeline
}

// EnqueueMempoolTransaction schedules the resolution of the announcement carried by a serialized unconfirmed transaction.
func (w *Worker) EnqueueMempoolTransaction(ctx context.Context, rawHex string) error {
	return errors.WithStack(w.mempoolQueue.Enqueue(ctx, rawHex))
}

func (w *Worker) runPeriodicJob(ctx context.Context, job string) error {
	switch job {
	case jobBackfill:
		return errors.WithStack(w.pipeline.Backfill(ctx))
	case jobWatch:
		return errors.WithStack(w.pipeline.Watch(ctx, w.watchQueue.Enqueue))
	default:
		return errors.Wrapf(errs.Unsupported, "unknown periodic job %q", job)
	}
}

func (w *Worker) queues() []queueRunner {
	return []queueRunner{
		w.processTxQueue,
		w.resolveMetadataQueue,
		w.watchQueue,
		w.mempoolQueue,
		w.periodicQueue,
	}
}

// Run starts the task queues, the scheduler and the block poller, and blocks until ctx is done,
// the worker is shut down, or the block poller stops.
func (w *Worker) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w.mu.Lock()
	w.cancel = cancel
	w.done = make(chan struct{})
	w.mu.Unlock()
	defer close(w.done)

	eg, ectx := errgroup.WithContext(ctx)
	for _, queue := range w.queues() {
		queue := queue
		eg.Go(func() error {
			return errors.Wrapf(queue.Run(ectx), "queue %s", queue.Name())
		})
	}
	eg.Go(func() error {
		return errors.WithStack(w.scheduler.Run(ectx))
	})
	if w.indexer != nil {
		eg.Go(func() error {
			// stop every queue once the poller stopped
			defer cancel()
			return errors.WithStack(w.indexer.Run(ectx))
		})
	}

	logger.InfoContext(ctx, "Started BCMR worker", slogx.Bool("block_polling", w.indexer != nil))
	return errors.WithStack(eg.Wait())
}

func (w *Worker) Shutdown() error {
	return w.ShutdownWithContext(context.Background())
}

func (w *Worker) ShutdownWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return w.ShutdownWithContext(ctx)
}

// ShutdownWithContext stops the block poller first so no new transaction is dispatched, then the queues.
func (w *Worker) ShutdownWithContext(ctx context.Context) (err error) {
	w.shutdown.Do(func() {
		w.mu.Lock()
		cancel, done := w.cancel, w.done
		w.mu.Unlock()

		var errList []error
		if w.indexer != nil && done != nil {
			if err := w.indexer.ShutdownWithContext(ctx); err != nil {
				errList = append(errList, errors.Wrap(err, "indexer shutdown failed"))
			}
		}
		for _, queue := range w.queues() {
			queue.Close()
		}
		if cancel != nil {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
				errList = append(errList, errors.Wrap(ctx.Err(), "worker shutdown context canceled"))
			}
		}
		if err := newCleanup(w.cleanupFuncs)(ctx); err != nil {
			errList = append(errList, errors.Wrap(err, "cleanup failed"))
		}
		err = errors.Join(errList...)
	})
	return
}

func countFailure[T any](queue string) func(ctx context.Context, payload T, err error) {
	return func(ctx context.Context, _ T, _ error) {
		taskFailures.WithLabelValues(queue).Inc()
	}
}
