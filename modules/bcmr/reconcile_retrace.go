package bcmr

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/pkg/logger"
	"github.com/gaze-network/bcmr-indexer/pkg/logger/slogx"
	"github.com/samber/lo"
)

// RetraceAuthchain walks the authchain of a category forward from its genesis, asking the spend-lookup
// service which transaction spent output 0 of each hop and processing it, until no further spend is reported.
// It returns the number of processed transactions.
func (p *Pipeline) RetraceAuthchain(ctx context.Context, category string) (int, error) {
	if p.spendLookup == nil {
		return 0, errors.Wrap(errs.Unsupported, "spend lookup is not configured")
	}
	ctx = logger.WithContext(ctx, slogx.Category(category))

	token, err := p.bcmrDg.GetEarliestToken(ctx, category)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get earliest token")
	}
	genesis, err := p.bcmrDg.GetGenesisIdentityOutput(ctx, token.DebutTxid)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get genesis identity output")
	}

	txid := lo.FromPtrOr(genesis.SpenderTxid, genesis.Txid)
	seen := map[string]bool{}
	var processed int
	for !seen[txid] {
		seen[txid] = true
		result, err := p.spendLookup.LookupSpender(ctx, txid, 0)
		if err != nil {
			return processed, errors.Wrapf(err, "failed to lookup spender of %s", txid)
		}
		if !result.Found || !result.Spent || result.SpenderTxid == "" {
			break
		}
		if err := p.ProcessTransactionByTxid(ctx, result.SpenderTxid); err != nil {
			return processed, errors.Wrapf(err, "failed to process spender %s", result.SpenderTxid)
		}
		processed++
		txid = result.SpenderTxid
	}

	logger.InfoContext(ctx, "Retraced authchain", slogx.Int("processed", processed), slogx.String("head", txid))
	return processed, nil
}
