package postgres

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/core/types"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/entity"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/repository/postgres/gen"
	"github.com/jackc/pgx/v5"
)

func (r *Repository) GetLatestIndexerState(ctx context.Context) (entity.IndexerState, error) {
	model, err := r.queries.GetLatestIndexerState(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.IndexerState{}, errors.WithStack(errs.NotFound)
		}
		return entity.IndexerState{}, errors.Wrap(err, "error during query")
	}
	return mapIndexerStateModelToType(model), nil
}

func (r *Repository) CreateIndexerState(ctx context.Context, state entity.IndexerState) error {
	if err := r.queries.CreateIndexerState(ctx, mapIndexerStateTypeToParams(state)); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func (r *Repository) GetRawTx(ctx context.Context, txid string) (*types.Transaction, error) {
	row, err := r.queries.GetRawTx(ctx, txid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	var tx types.Transaction
	if err := json.Unmarshal(row.Details, &tx); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal cached transaction")
	}
	return &tx, nil
}

func (r *Repository) CreateRawTx(ctx context.Context, tx *types.Transaction) error {
	details, err := json.Marshal(tx)
	if err != nil {
		return errors.Wrap(err, "failed to marshal transaction")
	}
	if err := r.queries.CreateRawTx(ctx, gen.CreateRawTxParams{
		Txid:    tx.Txid,
		Details: details,
	}); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func (r *Repository) MarkTransactionApplied(ctx context.Context, txid string) (bool, error) {
	rows, err := r.queries.CreateAppliedTransaction(ctx, txid)
	if err != nil {
		return false, errors.Wrap(err, "error during exec")
	}
	return rows > 0, nil
}
