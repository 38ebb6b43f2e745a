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
)

func (r *Repository) GetEarliestToken(ctx context.Context, category string) (*entity.Token, error) {
	model, err := r.queries.GetEarliestToken(ctx, category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return mapTokenModelToType(model)
}

func (r *Repository) GetToken(ctx context.Context, category, commitment, capability string) (*entity.Token, error) {
	model, err := r.queries.GetToken(ctx, gen.GetTokenParams{
		Category:   category,
		Commitment: commitment,
		Capability: capability,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return mapTokenModelToType(model)
}

func (r *Repository) GetTokenByID(ctx context.Context, id int64) (*entity.Token, error) {
	model, err := r.queries.GetTokenByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return mapTokenModelToType(model)
}

func (r *Repository) GetTokensMissingDate(ctx context.Context, limit int32) ([]*entity.Token, error) {
	models, err := r.queries.GetTokensMissingDate(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	tokens := make([]*entity.Token, 0, len(models))
	for _, model := range models {
		token, err := mapTokenModelToType(model)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse token %d", model.ID)
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

func (r *Repository) UpsertToken(ctx context.Context, token *entity.Token) (*entity.Token, error) {
	model, err := r.queries.UpsertToken(ctx, mapTokenTypeToParams(token))
	if err != nil {
		return nil, errors.Wrap(err, "error during exec")
	}
	return mapTokenModelToType(model)
}

func (r *Repository) FillTokenDateCreated(ctx context.Context, id int64, dateCreated time.Time) error {
	if err := r.queries.FillTokenDateCreated(ctx, gen.FillTokenDateCreatedParams{
		DateCreated: pgtype.Timestamptz{Time: dateCreated.UTC(), Valid: true},
		ID:          id,
	}); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}
