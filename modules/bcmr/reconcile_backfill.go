package bcmr

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/core/types"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/entity"
	"github.com/gaze-network/bcmr-indexer/pkg/logger"
	"github.com/gaze-network/bcmr-indexer/pkg/logger/slogx"
	cstream "github.com/planxnx/concurrent-stream"
	"github.com/samber/lo"
)

// Backfill fills missing block heights and timestamps of identity outputs and missing creation dates
// of tokens and registries from the node. Populated values are never overwritten.
func (p *Pipeline) Backfill(ctx context.Context) error {
	outputs, err := p.bcmrDg.GetIdentityOutputsMissingBlockInfo(ctx, backfillBatchSize)
	if err != nil {
		return errors.Wrap(err, "failed to get identity outputs missing block info")
	}
	tokens, err := p.bcmrDg.GetTokensMissingDate(ctx, backfillBatchSize)
	if err != nil {
		return errors.Wrap(err, "failed to get tokens missing date")
	}
	registries, err := p.bcmrDg.GetRegistriesMissingDate(ctx, backfillBatchSize)
	if err != nil {
		return errors.Wrap(err, "failed to get registries missing date")
	}

	txids := make([]string, 0, len(outputs)+len(tokens)+len(registries))
	txids = append(txids, lo.Map(outputs, func(o *entity.IdentityOutput, _ int) string { return o.Txid })...)
	txids = append(txids, lo.Map(tokens, func(t *entity.Token, _ int) string { return t.DebutTxid })...)
	txids = append(txids, lo.Map(registries, func(r *entity.Registry, _ int) string { return r.Txid })...)
	txs := p.fetchNodeTransactions(ctx, lo.Uniq(txids))

	var filled int
	for _, output := range outputs {
		tx, ok := txs[output.Txid]
		if !ok {
			continue
		}
		height, timestamp := p.blockInfo(ctx, tx)
		if height == nil && timestamp == nil {
			continue
		}
		if err := p.bcmrDg.FillIdentityOutputBlockInfo(ctx, output.Txid, height, timestamp); err != nil {
			return errors.Wrapf(err, "failed to fill identity output %s", output.Txid)
		}
		filled++
	}
	for _, token := range tokens {
		tx, ok := txs[token.DebutTxid]
		if !ok {
			continue
		}
		timestamp := txTimestamp(tx)
		if timestamp == nil {
			continue
		}
		if err := p.bcmrDg.FillTokenDateCreated(ctx, token.ID, *timestamp); err != nil {
			return errors.Wrapf(err, "failed to fill token %d", token.ID)
		}
		filled++
	}
	for _, reg := range registries {
		tx, ok := txs[reg.Txid]
		if !ok {
			continue
		}
		timestamp := txTimestamp(tx)
		if timestamp == nil {
			continue
		}
		if err := p.bcmrDg.FillRegistryDateCreated(ctx, reg.ID, *timestamp); err != nil {
			return errors.Wrapf(err, "failed to fill registry %d", reg.ID)
		}
		filled++
	}

	logger.InfoContext(ctx, "Backfilled transaction details",
		slogx.Int("candidates", len(outputs)+len(tokens)+len(registries)),
		slogx.Int("filled", filled),
	)
	return nil
}

// fetchNodeTransactions fetches transactions from the node, bypassing the cache which may hold
// the unconfirmed version. Transactions that can't be fetched are omitted.
func (p *Pipeline) fetchNodeTransactions(ctx context.Context, txids []string) map[string]*types.Transaction {
	type result struct {
		txid string
		tx   *types.Transaction
		err  error
	}

	out := make(chan result)
	stream := cstream.NewStream(ctx, backfillConcurrency, out)
	go func() {
		defer stream.Close()
		for _, txid := range txids {
			txid := txid
			stream.Go(func() result {
				tx, err := p.node.GetRawTransaction(ctx, txid)
				return result{txid: txid, tx: tx, err: err}
			})
		}
	}()
	go func() {
		defer close(out)
		_ = stream.Wait()
	}()

	txs := make(map[string]*types.Transaction, len(txids))
	for r := range out {
		if r.err != nil {
			logger.WarnContext(ctx, "Failed to fetch transaction for backfill", slogx.Txid(r.txid), slogx.Error(r.err))
			continue
		}
		txs[r.txid] = r.tx
	}
	return txs
}
