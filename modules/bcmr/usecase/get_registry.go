package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/entity"
)

// GetLatestRegistry returns the newest hash-verified registry whose document describes the category.
func (u *Usecase) GetLatestRegistry(ctx context.Context, category string) (*entity.Registry, error) {
	reg, err := u.bcmrDg.GetLatestVerifiedRegistry(ctx, category)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get latest verified registry")
	}
	return reg, nil
}

// GetAuthchainHead returns the current unspent identity output of the category.
func (u *Usecase) GetAuthchainHead(ctx context.Context, category string) (*entity.IdentityOutput, error) {
	head, err := u.bcmrDg.GetAuthchainHead(ctx, category)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get authchain head")
	}
	return head, nil
}

func (u *Usecase) GetLatestIndexerState(ctx context.Context) (entity.IndexerState, error) {
	state, err := u.bcmrDg.GetLatestIndexerState(ctx)
	if err != nil {
		return entity.IndexerState{}, errors.Wrap(err, "failed to get latest indexer state")
	}
	return state, nil
}
