package indexer

import (
	"context"
	"time"

	"github.com/gaze-network/bcmr-indexer/core/types"
)

// Processor consumes confirmed blocks in height order.
type Processor interface {
	Name() string

	// Process processes the blocks and records them as indexed.
	Process(ctx context.Context, blocks []*types.Block) error

	// CurrentBlock returns the latest indexed block header.
	// Returns errs.NotFound if nothing has been indexed yet.
	CurrentBlock(ctx context.Context) (types.BlockHeader, error)

	// Shutdown gracefully stops the processor.
	Shutdown(ctx context.Context) error
}

// IndexerWorker is a long-running module worker.
type IndexerWorker interface {
	Type() string
	Run(ctx context.Context) error
	Shutdown() error
	ShutdownWithTimeout(timeout time.Duration) error
}
