package datasources

import (
	"context"

	"github.com/gaze-network/bcmr-indexer/core/types"
)

// BlockDatasource is a source of confirmed blocks for the block poller.
type BlockDatasource interface {
	Name() string
	// LatestHeight returns the height of the current chain tip.
	LatestHeight(ctx context.Context) (int64, error)
	// FetchBlocks returns the blocks in [from, to], ordered by height.
	FetchBlocks(ctx context.Context, from, to int64) ([]*types.Block, error)
}
