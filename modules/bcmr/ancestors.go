package bcmr

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/core/types"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/cashtokens"
	"github.com/samber/lo"
)

// resolveAncestors walks back through zeroth-output spends until it reaches a transaction that is
// already an identity output, a genesis or a coinbase, fetching at most AncestorDepth transactions.
// The ancestors are returned oldest first.
func (p *Pipeline) resolveAncestors(ctx context.Context, tx *types.Transaction) ([]*types.Transaction, error) {
	ancestors := make([]*types.Transaction, 0, AncestorDepth)
	seen := map[string]struct{}{tx.Txid: {}}

	current := tx
	for len(ancestors) < AncestorDepth {
		if current.IsCoinbase() {
			break
		}
		_, err := p.bcmrDg.GetIdentityOutput(ctx, current.Txid)
		if err == nil {
			break
		}
		if !errors.Is(err, errs.NotFound) {
			return nil, errors.Wrap(err, "failed to get identity output")
		}
		if len(cashtokens.Classify(current).CreatedCategories) > 0 {
			break
		}

		input, ok := lo.Find(current.Vin, func(in *types.TxIn) bool { return in.Vout == 0 && in.Txid != "" })
		if !ok {
			break
		}
		if _, ok := seen[input.Txid]; ok {
			break
		}
		seen[input.Txid] = struct{}{}

		parent, err := p.getTransaction(ctx, input.Txid)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get ancestor transaction")
		}
		ancestors = append(ancestors, parent)
		current = parent
	}
	return lo.Reverse(ancestors), nil
}
