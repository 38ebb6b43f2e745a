package bcmr

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/core/types"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/datagateway"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/cashtokens"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/entity"
	"github.com/gaze-network/bcmr-indexer/pkg/logger"
	"github.com/gaze-network/bcmr-indexer/pkg/logger/slogx"
	"github.com/samber/lo"
)

// applyTransaction applies one transaction to the identity-output chain in a single DB transaction.
// Applying a transaction that already has an identity output only retries its registry resolution.
// Token identity changes are notified on the first application of a transaction only.
func (p *Pipeline) applyTransaction(ctx context.Context, tx *types.Transaction) (err error) {
	ctx = logger.WithContext(ctx, slogx.Txid(tx.Txid))

	p.attachPrevouts(ctx, tx)
	classified := cashtokens.Classify(tx)
	if classified.Empty() {
		transactionsProcessed.WithLabelValues("skipped").Inc()
		return nil
	}

	existing, err := p.bcmrDg.GetIdentityOutput(ctx, tx.Txid)
	if err == nil {
		transactionsProcessed.WithLabelValues("duplicate").Inc()
		logger.DebugContext(ctx, "Identity output already exists")
		if classified.Announcement != nil {
			return errors.WithStack(p.resolvePublished(ctx, tx, classified.Announcement, existing))
		}
		return nil
	}
	if !errors.Is(err, errs.NotFound) {
		return errors.Wrap(err, "failed to get identity output")
	}

	blockHeight, timestamp := p.blockInfo(ctx, tx)

	dgTx, err := p.bcmrDg.BeginBCMRTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if rollbackErr := dgTx.Rollback(ctx); rollbackErr != nil {
			logger.ErrorContext(ctx, "Failed to rollback transaction", rollbackErr)
		}
	}()

	firstApplication, err := dgTx.MarkTransactionApplied(ctx, tx.Txid)
	if err != nil {
		return errors.Wrap(err, "failed to mark transaction as applied")
	}

	if err := saveTokens(ctx, dgTx, classified, timestamp); err != nil {
		return errors.WithStack(err)
	}

	if len(classified.CreatedCategories) > 0 {
		authbase := &entity.IdentityOutput{
			Txid:       classified.FirstInput().Txid,
			Address:    authbaseAddress(tx),
			Identities: classified.CreatedCategories,
			Authbase:   true,
		}
		created, err := dgTx.CreateIdentityOutput(ctx, authbase)
		if err != nil {
			return errors.Wrap(err, "failed to create authbase identity output")
		}
		if created {
			identityOutputsCreated.WithLabelValues("authbase").Inc()
		}
	}

	parents, err := dgTx.GetUnspentIdentityOutputs(ctx, classified.IdentityParentTxids())
	if err != nil {
		return errors.Wrap(err, "failed to get parent identity outputs")
	}

	var output *entity.IdentityOutput
	if len(parents) > 0 {
		identities := lo.FlatMap(parents, func(parent *entity.IdentityOutput, _ int) []string { return parent.Identities })
		output = &entity.IdentityOutput{
			Txid:        tx.Txid,
			BlockHeight: blockHeight,
			Address:     classified.IdentityAddress,
			Identities:  lo.Uniq(append(identities, classified.CreatedCategories...)),
			Genesis:     classified.IsGenesis(),
			Timestamp:   timestamp,
		}
		created, err := dgTx.CreateIdentityOutput(ctx, output)
		if err != nil {
			return errors.Wrap(err, "failed to create identity output")
		}
		if !created {
			// applied concurrently through another entry path
			transactionsProcessed.WithLabelValues("duplicate").Inc()
			return nil
		}
		for _, parent := range parents {
			claimed, err := dgTx.MarkIdentityOutputSpent(ctx, parent.Txid, tx.Txid)
			if err != nil {
				return errors.Wrap(err, "failed to mark parent identity output as spent")
			}
			if !claimed {
				return errors.Wrapf(errs.Conflict, "identity output %s was spent concurrently", parent.Txid)
			}
		}
	}

	if err := dgTx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	transactionsProcessed.WithLabelValues("applied").Inc()

	if firstApplication {
		p.notifyChanges(ctx, classified)
	} else {
		logger.DebugContext(ctx, "Transaction was applied before, skipping notifications")
	}

	if output == nil {
		return nil
	}
	identityOutputsCreated.WithLabelValues(lo.Ternary(output.Genesis, "genesis", "transfer")).Inc()
	logger.InfoContext(ctx, "Created identity output",
		slogx.Strings("identities", output.Identities),
		slogx.Strings("parents", lo.Map(parents, func(parent *entity.IdentityOutput, _ int) string { return parent.Txid })),
		slogx.Bool("genesis", output.Genesis),
	)
	if classified.Announcement != nil {
		return errors.WithStack(p.resolvePublished(ctx, tx, classified.Announcement, output))
	}
	return nil
}

func saveTokens(ctx context.Context, dg datagateway.BCMRWriterDataGateway, classified *cashtokens.Classified, timestamp *time.Time) error {
	for _, out := range classified.TokenOutputs {
		_, err := dg.UpsertToken(ctx, &entity.Token{
			Category:    out.Category,
			Amount:      out.Amount,
			Commitment:  out.Commitment,
			Capability:  out.Capability,
			IsNFT:       out.IsNFT,
			DebutTxid:   classified.Txid,
			DateCreated: timestamp,
		})
		if err != nil {
			return errors.Wrapf(err, "failed to save token %s", out.Category)
		}
	}
	return nil
}

// authbaseAddress returns the address of the output spent by the first input.
func authbaseAddress(tx *types.Transaction) string {
	prevout := tx.Vin[0].Prevout
	if prevout == nil {
		return ""
	}
	if prevout.ScriptPubKey.Type == types.ScriptTypeNullData {
		return cashtokens.NullDataAddress
	}
	return prevout.ScriptPubKey.FirstAddress()
}

// resolvePublished resolves an announcement published by an identity output.
func (p *Pipeline) resolvePublished(ctx context.Context, tx *types.Transaction, announcement *cashtokens.Announcement, publisher *entity.IdentityOutput) error {
	_, err := p.ResolveAnnouncement(ctx, tx.Txid, announcement, &publisher.Txid, txTimestamp(tx))
	return errors.WithStack(err)
}
