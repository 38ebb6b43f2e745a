package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/entity"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/repository/postgres/gen"
	"github.com/jackc/pgx/v5"
)

func (r *Repository) GetLatestTokenMetadata(ctx context.Context, tokenID int64, metadataType entity.MetadataType) (*entity.TokenMetadata, error) {
	model, err := r.queries.GetLatestTokenMetadata(ctx, gen.GetLatestTokenMetadataParams{
		TokenID:      tokenID,
		MetadataType: string(metadataType),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return mapTokenMetadataModelToType(model), nil
}

func (r *Repository) CreateTokenMetadata(ctx context.Context, metadata *entity.TokenMetadata) (*entity.TokenMetadata, error) {
	model, err := r.queries.CreateTokenMetadata(ctx, gen.CreateTokenMetadataParams{
		TokenID:      metadata.TokenID,
		MetadataType: string(metadata.MetadataType),
		Contents:     metadata.Contents,
		RegistryID:   metadata.RegistryID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error during exec")
	}
	return mapTokenMetadataModelToType(model), nil
}
