package btcclient

import (
	"context"

	"github.com/gaze-network/bcmr-indexer/core/types"
)

// Contract is the narrow node RPC surface the indexing pipeline depends on.
type Contract interface {
	// GetRawTransaction returns the verbose node JSON of a transaction.
	// Returns errs.NotFound if the node doesn't know the transaction.
	GetRawTransaction(ctx context.Context, txid string) (*types.Transaction, error)

	// GetBlockHeight returns the height of the block with the given hash.
	GetBlockHeight(ctx context.Context, blockHash string) (int64, error)

	// DecodeRawTransaction decodes a serialized transaction without requiring it to be known by the node.
	DecodeRawTransaction(ctx context.Context, rawHex string) (*types.Transaction, error)
}
