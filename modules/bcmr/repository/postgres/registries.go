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

func (r *Repository) GetRegistryByTxid(ctx context.Context, txid string) (*entity.Registry, error) {
	model, err := r.queries.GetRegistryByTxid(ctx, txid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return mapRegistryModelToType(model)
}

func (r *Repository) GetRegistryByID(ctx context.Context, id int64) (*entity.Registry, error) {
	model, err := r.queries.GetRegistryByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return mapRegistryModelToType(model)
}

func (r *Repository) GetRegistriesPendingMetadata(ctx context.Context) ([]*entity.Registry, error) {
	models, err := r.queries.GetRegistriesPendingMetadata(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	return mapRegistryModelsToTypes(models)
}

func (r *Repository) GetWatchedRegistries(ctx context.Context) ([]*entity.Registry, error) {
	models, err := r.queries.GetWatchedRegistries(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	return mapRegistryModelsToTypes(models)
}

func (r *Repository) GetRegistriesMissingDate(ctx context.Context, limit int32) ([]*entity.Registry, error) {
	models, err := r.queries.GetRegistriesMissingDate(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	return mapRegistryModelsToTypes(models)
}

func (r *Repository) GetLatestVerifiedRegistry(ctx context.Context, category string) (*entity.Registry, error) {
	model, err := r.queries.GetLatestVerifiedRegistryByIdentity(ctx, category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return mapRegistryModelToType(model)
}

func (r *Repository) CreateRegistry(ctx context.Context, registry *entity.Registry) (bool, error) {
	params, err := mapRegistryTypeToParams(registry)
	if err != nil {
		return false, errors.WithStack(err)
	}
	rows, err := r.queries.CreateRegistry(ctx, params)
	if err != nil {
		return false, errors.Wrap(err, "error during exec")
	}
	return rows > 0, nil
}

func (r *Repository) UpdateRegistryDocument(ctx context.Context, registry *entity.Registry) error {
	params, err := mapRegistryTypeToParams(registry)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := r.queries.UpdateRegistryDocument(ctx, gen.UpdateRegistryDocumentParams{
		Contents:       params.Contents,
		ValidityChecks: params.ValidityChecks,
		RequestStatus:  params.RequestStatus,
		ID:             registry.ID,
	}); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func (r *Repository) SetRegistryGeneratedMetadataAt(ctx context.Context, id int64, generatedAt time.Time) error {
	if err := r.queries.SetRegistryGeneratedMetadataAt(ctx, gen.SetRegistryGeneratedMetadataAtParams{
		GeneratedMetadataAt: pgtype.Timestamptz{Time: generatedAt.UTC(), Valid: true},
		ID:                  id,
	}); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func (r *Repository) SetRegistryWatchForChanges(ctx context.Context, txid string, watch bool) (bool, error) {
	rows, err := r.queries.SetRegistryWatchForChanges(ctx, gen.SetRegistryWatchForChangesParams{
		WatchForChanges: watch,
		Txid:            txid,
	})
	if err != nil {
		return false, errors.Wrap(err, "error during exec")
	}
	return rows > 0, nil
}

func (r *Repository) SetRegistryPublisher(ctx context.Context, txid, publisherTxid string) (bool, error) {
	rows, err := r.queries.SetRegistryPublisher(ctx, gen.SetRegistryPublisherParams{
		PublisherTxid: pgtype.Text{String: publisherTxid, Valid: true},
		Txid:          txid,
	})
	if err != nil {
		return false, errors.Wrap(err, "error during exec")
	}
	return rows > 0, nil
}

func (r *Repository) FillRegistryDateCreated(ctx context.Context, id int64, dateCreated time.Time) error {
	if err := r.queries.FillRegistryDateCreated(ctx, gen.FillRegistryDateCreatedParams{
		DateCreated: pgtype.Timestamptz{Time: dateCreated.UTC(), Valid: true},
		ID:          id,
	}); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}
