package bcmr

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/datagateway"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/entity"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/registry"
	"github.com/gaze-network/bcmr-indexer/pkg/logger"
	"github.com/gaze-network/bcmr-indexer/pkg/logger/slogx"
)

// ResolveMetadata projects the registry with the given id, or every registry pending projection
// (oldest first) when registryID is nil.
func (p *Pipeline) ResolveMetadata(ctx context.Context, registryID *int64) error {
	var registries []*entity.Registry
	if registryID != nil {
		reg, err := p.bcmrDg.GetRegistryByID(ctx, *registryID)
		if err != nil {
			return errors.Wrapf(err, "failed to get registry %d", *registryID)
		}
		registries = []*entity.Registry{reg}
	} else {
		pending, err := p.bcmrDg.GetRegistriesPendingMetadata(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to get registries pending metadata")
		}
		registries = pending
	}

	for _, reg := range registries {
		ctx := logger.WithContext(ctx, slogx.Int64("registry_id", reg.ID))
		logger.InfoContext(ctx, "Generating token metadata")
		if err := p.projectRegistry(ctx, reg); err != nil {
			return errors.Wrapf(err, "failed to project registry %d", reg.ID)
		}
	}
	return nil
}

// projectRegistry writes category and NFT snapshots of the latest revisions of a verified registry
// and stamps the registry as generated. Unverified registries are stamped without projection.
func (p *Pipeline) projectRegistry(ctx context.Context, reg *entity.Registry) (err error) {
	dgTx, err := p.bcmrDg.BeginBCMRTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if rollbackErr := dgTx.Rollback(ctx); rollbackErr != nil {
			logger.ErrorContext(ctx, "Failed to rollback transaction", rollbackErr)
		}
	}()

	switch {
	case !reg.Verified():
		logger.InfoContext(ctx, "Skipping unverified registry")
	case len(reg.Contents) == 0:
		logger.InfoContext(ctx, "Skipping registry without document")
	default:
		doc, err := registry.Decode(reg.Contents)
		if err != nil {
			logger.InfoContext(ctx, "Skipping undecodable registry", slogx.Error(err))
			break
		}
		for _, snapshot := range registry.LatestSnapshots(doc) {
			if err := projectSnapshot(ctx, dgTx, reg, snapshot); err != nil {
				return errors.Wrapf(err, "failed to project category %s", snapshot.Category)
			}
		}
	}

	if err := dgTx.SetRegistryGeneratedMetadataAt(ctx, reg.ID, p.now()); err != nil {
		return errors.Wrap(err, "failed to stamp registry")
	}
	return errors.Wrap(dgTx.Commit(ctx), "failed to commit transaction")
}

func projectSnapshot(ctx context.Context, dg datagateway.BCMRDataGateway, reg *entity.Registry, snapshot registry.CategorySnapshot) error {
	token, err := dg.GetEarliestToken(ctx, snapshot.Category)
	if errors.Is(err, errs.NotFound) {
		token, err = dg.UpsertToken(ctx, &entity.Token{Category: snapshot.Category, DebutTxid: reg.Txid})
	}
	if err != nil {
		return errors.Wrap(err, "failed to get category token")
	}
	if err := saveMetadata(ctx, dg, token.ID, entity.MetadataTypeCategory, reg.ID, snapshot); err != nil {
		return errors.WithStack(err)
	}

	for _, nft := range snapshot.NFTs {
		token, err := dg.GetToken(ctx, snapshot.Category, nft.Commitment, entity.CapabilityNone)
		if errors.Is(err, errs.NotFound) {
			token, err = dg.UpsertToken(ctx, &entity.Token{
				Category:   snapshot.Category,
				Commitment: nft.Commitment,
				Capability: entity.CapabilityNone,
				IsNFT:      true,
				DebutTxid:  reg.Txid,
			})
		}
		if err != nil {
			return errors.Wrapf(err, "failed to get nft token %s", nft.Commitment)
		}
		if err := saveMetadata(ctx, dg, token.ID, entity.MetadataTypeNFT, reg.ID, nft); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func saveMetadata(ctx context.Context, dg datagateway.BCMRWriterDataGateway, tokenID int64, metadataType entity.MetadataType, registryID int64, snapshot any) error {
	contents, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Wrap(err, "failed to marshal snapshot")
	}
	if _, err := dg.CreateTokenMetadata(ctx, &entity.TokenMetadata{
		TokenID:      tokenID,
		MetadataType: metadataType,
		Contents:     contents,
		RegistryID:   registryID,
	}); err != nil {
		return errors.Wrap(err, "failed to create token metadata")
	}
	metadataProjected.WithLabelValues(string(metadataType)).Inc()
	return nil
}
