package indexer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/core/datasources"
	"github.com/gaze-network/bcmr-indexer/core/types"
	"github.com/gaze-network/bcmr-indexer/pkg/logger"
	"github.com/gaze-network/bcmr-indexer/pkg/logger/slogx"
)

const (
	// DefaultPollingInterval is the default polling interval for the indexer polling worker
	DefaultPollingInterval = 15 * time.Second

	// DefaultBatchSize is the number of blocks fetched per round
	DefaultBatchSize = 20
)

// Indexer polls confirmed blocks and hands them to the processor in height order.
// It only moves forward, chain reorganizations are not handled.
type Indexer struct {
	Processor  Processor
	Datasource datasources.BlockDatasource

	// StartHeight is the first height to index when nothing has been indexed yet.
	StartHeight     int64
	PollingInterval time.Duration
	BatchSize       int64

	currentBlock types.BlockHeader

	quitOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

// New create new block indexer
func New(processor Processor, datasource datasources.BlockDatasource, startHeight int64) *Indexer {
	return &Indexer{
		Processor:       processor,
		Datasource:      datasource,
		StartHeight:     startHeight,
		PollingInterval: DefaultPollingInterval,
		BatchSize:       DefaultBatchSize,

		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (i *Indexer) Shutdown() error {
	return i.ShutdownWithContext(context.Background())
}

func (i *Indexer) ShutdownWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return i.ShutdownWithContext(ctx)
}

func (i *Indexer) ShutdownWithContext(ctx context.Context) (err error) {
	i.quitOnce.Do(func() {
		close(i.quit)
		select {
		case <-i.done:
		case <-time.After(180 * time.Second):
			err = errors.Wrap(errs.Timeout, "indexer shutdown timeout")
		case <-ctx.Done():
			err = errors.Wrap(ctx.Err(), "indexer shutdown context canceled")
		}
	})
	return
}

// CurrentBlock returns the latest block header processed by this indexer.
func (i *Indexer) CurrentBlock() types.BlockHeader {
	return i.currentBlock
}

func (i *Indexer) Run(ctx context.Context) (err error) {
	defer close(i.done)

	ctx = logger.WithContext(ctx,
		slog.String("package", "indexer"),
		slog.String("processor", i.Processor.Name()),
		slog.String("datasource", i.Datasource.Name()),
	)

	i.currentBlock, err = i.Processor.CurrentBlock(ctx)
	if err != nil {
		if !errors.Is(err, errs.NotFound) {
			return errors.Wrap(err, "can't init state, failed to get indexer current block")
		}
		i.currentBlock = types.BlockHeader{Height: i.StartHeight - 1}
	}

	ticker := time.NewTicker(i.PollingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-i.quit:
			logger.InfoContext(ctx, "Got quit signal, stopping indexer")
			if err := i.Processor.Shutdown(ctx); err != nil {
				logger.ErrorContext(ctx, "Failed to shutdown processor", err)
				return errors.Wrap(err, "processor shutdown failed")
			}
			return nil
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := i.process(ctx); err != nil {
				logger.ErrorContext(ctx, "Indexer failed while processing", err)
				return errors.Wrap(err, "process failed")
			}
			logger.DebugContext(ctx, "Waiting for next polling interval")
		}
	}
}

// process indexes every block between the current block and the chain tip, one batch at a time.
func (i *Indexer) process(ctx context.Context) error {
	latest, err := i.Datasource.LatestHeight(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get latest height")
	}

	for from := i.currentBlock.Height + 1; from <= latest; from = i.currentBlock.Height + 1 {
		select {
		case <-i.quit:
			return nil
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		default:
		}

		to := min(from+i.BatchSize-1, latest)
		startAt := time.Now()
		ctx := logger.WithContext(ctx, slogx.Int64("from", from), slogx.Int64("to", to))

		blocks, err := i.Datasource.FetchBlocks(ctx, from, to)
		if err != nil {
			return errors.Wrap(err, "failed to fetch blocks")
		}
		if len(blocks) == 0 {
			return nil
		}

		for n := 1; n < len(blocks); n++ {
			if blocks[n].Height != blocks[n-1].Height+1 {
				return errors.Wrapf(errs.InternalError, "blocks are not continuous, block[%d] height: %d, block[%d] height: %d", n-1, blocks[n-1].Height, n, blocks[n].Height)
			}
		}

		logger.InfoContext(ctx, "Processing blocks", slog.Int("total_blocks", len(blocks)))
		if err := i.Processor.Process(ctx, blocks); err != nil {
			return errors.WithStack(err)
		}

		i.currentBlock = blocks[len(blocks)-1].BlockHeader
		logger.InfoContext(ctx, "Processed blocks successfully",
			slogx.String("event", "processed_blocks"),
			slogx.Int64("current_block", i.currentBlock.Height),
			slogx.Duration("duration", time.Since(startAt)),
		)
	}
	return nil
}
