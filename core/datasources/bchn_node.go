package datasources

import (
	"context"
	"encoding/json"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/core/types"
	"github.com/gaze-network/bcmr-indexer/pkg/btcclient"
	"github.com/gaze-network/bcmr-indexer/pkg/logger"
	"github.com/gaze-network/bcmr-indexer/pkg/logger/slogx"
	cstream "github.com/planxnx/concurrent-stream"
)

const (
	// DecodeMaxAttempts is the hard cap of decoderawtransaction attempts.
	DecodeMaxAttempts = 20
	// DecodeRetryDelay is the fixed delay between decoderawtransaction attempts.
	DecodeRetryDelay = time.Second

	fetchConcurrency = 8
)

var (
	_ btcclient.Contract = (*BCHNode)(nil)
	_ BlockDatasource    = (*BCHNode)(nil)
)

// RPCClient is the subset of *rpcclient.Client used by BCHNode.
type RPCClient interface {
	RawRequest(method string, params []json.RawMessage) (json.RawMessage, error)
	GetBlockCount() (int64, error)
	GetBlockHash(blockHeight int64) (*chainhash.Hash, error)
}

// BCHNode reads transactions and blocks from a Bitcoin Cash node over JSON-RPC.
type BCHNode struct {
	client RPCClient

	decodeMaxAttempts int
	decodeRetryDelay  time.Duration
}

type BCHNodeOption func(*BCHNode)

// WithDecodeRetry overrides the decoderawtransaction retry policy.
func WithDecodeRetry(maxAttempts int, delay time.Duration) BCHNodeOption {
	return func(n *BCHNode) {
		n.decodeMaxAttempts = maxAttempts
		n.decodeRetryDelay = delay
	}
}

func NewBCHNode(client RPCClient, opts ...BCHNodeOption) *BCHNode {
	n := &BCHNode{
		client:            client,
		decodeMaxAttempts: DecodeMaxAttempts,
		decodeRetryDelay:  DecodeRetryDelay,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *BCHNode) Name() string {
	return "bch_node"
}

func (n *BCHNode) GetRawTransaction(ctx context.Context, txid string) (*types.Transaction, error) {
	if _, err := chainhash.NewHashFromStr(txid); err != nil {
		return nil, errors.Wrapf(errs.InvalidArgument, "invalid txid %q", txid)
	}
	var tx types.Transaction
	if err := n.call(ctx, "getrawtransaction", &tx, txid, 1); err != nil {
		return nil, errors.Wrapf(err, "failed to get raw transaction %s", txid)
	}
	return &tx, nil
}

func (n *BCHNode) GetBlockHeight(ctx context.Context, blockHash string) (int64, error) {
	var header types.BlockHeader
	if err := n.call(ctx, "getblockheader", &header, blockHash, true); err != nil {
		return 0, errors.Wrapf(err, "failed to get block header %s", blockHash)
	}
	return header.Height, nil
}

// DecodeRawTransaction decodes a serialized transaction, retrying with a fixed delay.
// The last error is returned once every attempt failed.
func (n *BCHNode) DecodeRawTransaction(ctx context.Context, rawHex string) (*types.Transaction, error) {
	var lastErr error
	for attempt := 1; attempt <= n.decodeMaxAttempts; attempt++ {
		var tx types.Transaction
		err := n.call(ctx, "decoderawtransaction", &tx, rawHex)
		if err == nil {
			return &tx, nil
		}
		lastErr = err
		logger.WarnContext(ctx, "Failed to decode raw transaction, retrying",
			slogx.Int("attempt", attempt),
			slogx.Error(err),
		)
		if attempt == n.decodeMaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.WithStack(ctx.Err())
		case <-time.After(n.decodeRetryDelay):
		}
	}
	return nil, errors.Wrapf(lastErr, "failed to decode raw transaction after %d attempts", n.decodeMaxAttempts)
}

func (n *BCHNode) LatestHeight(ctx context.Context) (int64, error) {
	height, err := n.client.GetBlockCount()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get block count")
	}
	return height, nil
}

// FetchBlocks fetches the blocks in [from, to] concurrently and returns them in height order.
func (n *BCHNode) FetchBlocks(ctx context.Context, from, to int64) ([]*types.Block, error) {
	if from > to {
		return nil, nil
	}

	type result struct {
		block *types.Block
		err   error
	}
	out := make(chan result)
	stream := cstream.NewStream(ctx, fetchConcurrency, out)
	go func() {
		defer stream.Close()
		for height := from; height <= to; height++ {
			height := height
			stream.Go(func() result {
				block, err := n.getBlockByHeight(ctx, height)
				return result{block: block, err: err}
			})
		}
	}()

	done := make(chan struct{})
	blocks := make([]*types.Block, 0, to-from+1)
	var firstErr error
	go func() {
		defer close(done)
		for r := range out {
			if r.err != nil {
				if firstErr == nil {
					firstErr = r.err
				}
				continue
			}
			blocks = append(blocks, r.block)
		}
	}()

	waitErr := stream.Wait()
	close(out)
	<-done

	if waitErr != nil {
		return nil, errors.Wrap(waitErr, "failed to wait block stream")
	}
	if firstErr != nil {
		return nil, errors.WithStack(firstErr)
	}
	return blocks, nil
}

func (n *BCHNode) getBlockByHeight(ctx context.Context, height int64) (*types.Block, error) {
	hash, err := n.client.GetBlockHash(height)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get block hash, height: %d", height)
	}
	var block types.Block
	if err := n.call(ctx, "getblock", &block, hash.String(), 2); err != nil {
		return nil, errors.Wrapf(err, "failed to get block, height: %d", height)
	}
	block.Height = height
	return &block, nil
}

func (n *BCHNode) call(ctx context.Context, method string, out any, params ...any) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}
	rawParams := make([]json.RawMessage, 0, len(params))
	for _, p := range params {
		raw, err := json.Marshal(p)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal %s param", method)
		}
		rawParams = append(rawParams, raw)
	}

	resp, err := n.client.RawRequest(method, rawParams)
	if err != nil {
		var rpcErr *btcjson.RPCError
		if errors.As(err, &rpcErr) && rpcErr.Code == btcjson.ErrRPCInvalidAddressOrKey {
			return errors.Wrap(errs.NotFound, rpcErr.Message)
		}
		return errors.Wrapf(err, "rpc %s failed", method)
	}
	if err := json.Unmarshal(resp, out); err != nil {
		return errors.Wrapf(err, "failed to unmarshal %s response", method)
	}
	return nil
}
