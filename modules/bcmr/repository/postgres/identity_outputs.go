package postgres

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/entity"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/repository/postgres/gen"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/lo"
)

func (r *Repository) GetIdentityOutput(ctx context.Context, txid string) (*entity.IdentityOutput, error) {
	model, err := r.queries.GetIdentityOutput(ctx, txid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return mapIdentityOutputModelToType(model), nil
}

func (r *Repository) GetUnspentIdentityOutputs(ctx context.Context, txids []string) ([]*entity.IdentityOutput, error) {
	if len(txids) == 0 {
		return []*entity.IdentityOutput{}, nil
	}
	models, err := r.queries.GetUnspentIdentityOutputsByTxids(ctx, txids)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	return lo.Map(models, func(model gen.BcmrIdentityOutput, _ int) *entity.IdentityOutput {
		return mapIdentityOutputModelToType(model)
	}), nil
}

func (r *Repository) GetGenesisIdentityOutput(ctx context.Context, txid string) (*entity.IdentityOutput, error) {
	model, err := r.queries.GetGenesisIdentityOutput(ctx, txid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return mapIdentityOutputModelToType(model), nil
}

func (r *Repository) GetAuthchainHead(ctx context.Context, category string) (*entity.IdentityOutput, error) {
	model, err := r.queries.GetAuthchainHead(ctx, category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return mapIdentityOutputModelToType(model), nil
}

func (r *Repository) GetIdentityOutputsMissingBlockInfo(ctx context.Context, limit int32) ([]*entity.IdentityOutput, error) {
	models, err := r.queries.GetIdentityOutputsMissingBlockInfo(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	return lo.Map(models, func(model gen.BcmrIdentityOutput, _ int) *entity.IdentityOutput {
		return mapIdentityOutputModelToType(model)
	}), nil
}

func (r *Repository) CreateIdentityOutput(ctx context.Context, output *entity.IdentityOutput) (bool, error) {
	rows, err := r.queries.CreateIdentityOutput(ctx, mapIdentityOutputTypeToParams(output))
	if err != nil {
		return false, errors.Wrap(err, "error during exec")
	}
	return rows > 0, nil
}

func (r *Repository) MarkIdentityOutputSpent(ctx context.Context, txid, spenderTxid string) (bool, error) {
	rows, err := r.queries.MarkIdentityOutputSpent(ctx, gen.MarkIdentityOutputSpentParams{
		SpenderTxid: pgtype.Text{String: spenderTxid, Valid: true},
		Txid:        txid,
	})
	if err != nil {
		return false, errors.Wrap(err, "error during exec")
	}
	return rows > 0, nil
}

func (r *Repository) FillIdentityOutputBlockInfo(ctx context.Context, txid string, blockHeight *int64, timestamp *time.Time) error {
	if err := r.queries.FillIdentityOutputBlockInfo(ctx, gen.FillIdentityOutputBlockInfoParams{
		BlockHeight: int8FromPtr(blockHeight),
		Timestamp:   timestamptzFromPtr(timestamp),
		Txid:        txid,
	}); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}
