package bcmr

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/core/types"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/datagateway"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/cashtokens"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/fetcher"
	"github.com/gaze-network/bcmr-indexer/pkg/btcclient"
	"github.com/gaze-network/bcmr-indexer/pkg/logger"
	"github.com/gaze-network/bcmr-indexer/pkg/logger/slogx"
	"github.com/samber/lo"
)

// Pipeline derives the authchain, registries and token metadata from transactions.
// Every exported operation is one unit of work that is safe to retry.
type Pipeline struct {
	bcmrDg      datagateway.BCMRDataGateway
	node        btcclient.Contract
	fetcher     fetcher.DocumentFetcher
	spendLookup fetcher.SpendLookup
	hook        TokenIdentityHook

	// dispatchMetadata schedules the projection of a registry. Projection runs inline when nil.
	dispatchMetadata func(ctx context.Context, registryID int64) error

	now func() time.Time
}

type PipelineOption func(*Pipeline)

func WithTokenIdentityHook(hook TokenIdentityHook) PipelineOption {
	return func(p *Pipeline) {
		p.hook = hook
	}
}

func WithSpendLookup(spendLookup fetcher.SpendLookup) PipelineOption {
	return func(p *Pipeline) {
		p.spendLookup = spendLookup
	}
}

func WithMetadataDispatcher(dispatch func(ctx context.Context, registryID int64) error) PipelineOption {
	return func(p *Pipeline) {
		p.dispatchMetadata = dispatch
	}
}

func NewPipeline(bcmrDg datagateway.BCMRDataGateway, node btcclient.Contract, documentFetcher fetcher.DocumentFetcher, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		bcmrDg:  bcmrDg,
		node:    node,
		fetcher: documentFetcher,
		hook:    LogHook{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessTransactionByTxid fetches the transaction and processes it.
func (p *Pipeline) ProcessTransactionByTxid(ctx context.Context, txid string) error {
	tx, err := p.getTransaction(ctx, txid)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(p.ProcessTransaction(ctx, tx))
}

// ProcessTransaction applies the transaction to the authchain, preceded by the ancestors
// needed to establish its authority. Coinbase transactions are ignored.
func (p *Pipeline) ProcessTransaction(ctx context.Context, tx *types.Transaction) error {
	ctx = logger.WithContext(ctx, slogx.Txid(tx.Txid))
	if tx.IsCoinbase() {
		return nil
	}
	if err := p.bcmrDg.CreateRawTx(ctx, tx); err != nil {
		return errors.Wrap(err, "failed to cache transaction")
	}

	ancestors, err := p.resolveAncestors(ctx, tx)
	if err != nil {
		return errors.Wrap(err, "failed to resolve ancestors")
	}
	if len(ancestors) > 0 {
		logger.DebugContext(ctx, "Replaying ancestors", slogx.Strings("ancestors", lo.Map(ancestors, func(a *types.Transaction, _ int) string { return a.Txid })))
	}
	for _, ancestor := range ancestors {
		if err := p.applyTransaction(ctx, ancestor); err != nil {
			logger.WarnContext(ctx, "Failed to apply ancestor transaction",
				slogx.String("ancestor", ancestor.Txid),
				slogx.Error(err),
			)
		}
	}
	return errors.WithStack(p.applyTransaction(ctx, tx))
}

// ProcessMempoolTransaction decodes a serialized transaction and resolves its registry announcement.
// The authchain is left untouched, the confirmed transaction is processed on its own.
func (p *Pipeline) ProcessMempoolTransaction(ctx context.Context, rawHex string) error {
	tx, err := p.node.DecodeRawTransaction(ctx, rawHex)
	if err != nil {
		return errors.Wrap(err, "failed to decode raw transaction")
	}
	ctx = logger.WithContext(ctx, slogx.Txid(tx.Txid))

	classified := cashtokens.Classify(tx)
	if classified.Announcement == nil {
		return nil
	}
	_, err = p.ResolveAnnouncement(ctx, tx.Txid, classified.Announcement, nil, nil)
	return errors.WithStack(err)
}

// getTransaction reads the transaction from the raw transaction cache, falling back to the node.
func (p *Pipeline) getTransaction(ctx context.Context, txid string) (*types.Transaction, error) {
	tx, err := p.bcmrDg.GetRawTx(ctx, txid)
	if err == nil {
		return tx, nil
	}
	if !errors.Is(err, errs.NotFound) {
		return nil, errors.Wrap(err, "failed to get cached transaction")
	}

	tx, err = p.node.GetRawTransaction(ctx, txid)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get transaction %s", txid)
	}
	if err := p.bcmrDg.CreateRawTx(ctx, tx); err != nil {
		return nil, errors.Wrap(err, "failed to cache transaction")
	}
	return tx, nil
}

// attachPrevouts fills the spent output of inputs the node didn't attach. Lookup failures leave the input without prevout.
func (p *Pipeline) attachPrevouts(ctx context.Context, tx *types.Transaction) {
	if tx.IsCoinbase() {
		return
	}
	for _, in := range tx.Vin {
		if in.Prevout != nil || in.Txid == "" {
			continue
		}
		parent, err := p.getTransaction(ctx, in.Txid)
		if err != nil {
			logger.DebugContext(ctx, "Failed to get input transaction", slogx.String("input", in.Txid), slogx.Error(err))
			continue
		}
		if int(in.Vout) >= len(parent.Vout) {
			continue
		}
		out := parent.Vout[in.Vout]
		in.Prevout = &types.TxPrevout{
			Value:        out.Value,
			ScriptPubKey: out.ScriptPubKey,
			TokenData:    out.TokenData,
		}
	}
}

// blockInfo returns the block height and time of a transaction. Unknown values are nil and left to the backfill job.
func (p *Pipeline) blockInfo(ctx context.Context, tx *types.Transaction) (*int64, *time.Time) {
	if !tx.IsConfirmed() {
		return nil, txTimestamp(tx)
	}
	height, err := p.node.GetBlockHeight(ctx, tx.BlockHash)
	if err != nil {
		logger.DebugContext(ctx, "Failed to get block height", slogx.Error(err))
		return nil, txTimestamp(tx)
	}
	return &height, txTimestamp(tx)
}

func txTimestamp(tx *types.Transaction) *time.Time {
	t := lo.Ternary(tx.Time != 0, tx.Time, tx.BlockTime)
	if t == 0 {
		return nil
	}
	return lo.ToPtr(time.Unix(t, 0).UTC())
}
