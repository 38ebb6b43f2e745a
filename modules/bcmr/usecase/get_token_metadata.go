package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/entity"
)

// GetCategoryMetadata returns the latest category snapshot of a token category.
func (u *Usecase) GetCategoryMetadata(ctx context.Context, category string) (*entity.TokenMetadata, error) {
	token, err := u.bcmrDg.GetEarliestToken(ctx, category)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get category token")
	}
	metadata, err := u.bcmrDg.GetLatestTokenMetadata(ctx, token.ID, entity.MetadataTypeCategory)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get category metadata")
	}
	return metadata, nil
}

// GetNFTMetadata returns the latest snapshot of an immutable NFT type, falling back to the category snapshot
// when the registry doesn't describe the commitment.
func (u *Usecase) GetNFTMetadata(ctx context.Context, category, commitment string) (*entity.TokenMetadata, error) {
	token, err := u.bcmrDg.GetToken(ctx, category, commitment, entity.CapabilityNone)
	if err == nil {
		metadata, err := u.bcmrDg.GetLatestTokenMetadata(ctx, token.ID, entity.MetadataTypeNFT)
		if err == nil {
			return metadata, nil
		}
		if !errors.Is(err, errs.NotFound) {
			return nil, errors.Wrap(err, "failed to get nft metadata")
		}
	} else if !errors.Is(err, errs.NotFound) {
		return nil, errors.Wrap(err, "failed to get nft token")
	}
	return u.GetCategoryMetadata(ctx, category)
}

