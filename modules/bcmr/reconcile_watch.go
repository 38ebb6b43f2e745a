package bcmr

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/cashtokens"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/entity"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/registry"
	"github.com/gaze-network/bcmr-indexer/pkg/logger"
	"github.com/gaze-network/bcmr-indexer/pkg/logger/slogx"
)

// Watch re-resolves every registry flagged for watching through dispatch, or inline when dispatch is nil.
func (p *Pipeline) Watch(ctx context.Context, dispatch func(ctx context.Context, registryID int64) error) error {
	registries, err := p.bcmrDg.GetWatchedRegistries(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get watched registries")
	}
	if dispatch == nil {
		dispatch = p.WatchRegistry
	}
	for _, reg := range registries {
		if err := dispatch(ctx, reg.ID); err != nil {
			return errors.Wrapf(err, "failed to watch registry %d", reg.ID)
		}
	}
	logger.InfoContext(ctx, "Dispatched watched registries", slogx.Int("total", len(registries)))
	return nil
}

// WatchRegistry fetches the document of a registry again from its recorded URL. A changed document
// replaces the stored one with recomputed validity checks. Metadata generation is then scheduled.
func (p *Pipeline) WatchRegistry(ctx context.Context, registryID int64) error {
	reg, err := p.bcmrDg.GetRegistryByID(ctx, registryID)
	if err != nil {
		return errors.Wrapf(err, "failed to get registry %d", registryID)
	}
	ctx = logger.WithContext(ctx, slogx.Int64("registry_id", reg.ID), slogx.Txid(reg.Txid))

	announcement := cashtokens.ParseAnnouncementASM(reg.OpReturn)
	if announcement == nil {
		logger.WarnContext(ctx, "Stored announcement can't be parsed, skipping")
		return nil
	}

	uri, resp, ok := p.fetchFirst(ctx, []registry.URI{registry.ParseURI(reg.BcmrURL)})
	if !ok {
		logger.InfoContext(ctx, "Watched registry is not reachable")
		return errors.WithStack(p.scheduleMetadata(ctx, reg.ID))
	}

	contents, checks := verifyDocument(resp.Body, announcement.ContentHash)
	if sameDocument(reg.Contents, contents) && sameChecks(reg.ValidityChecks, checks) {
		return errors.WithStack(p.scheduleMetadata(ctx, reg.ID))
	}

	reg.BcmrURL = uri.Normalized
	reg.Contents = contents
	reg.ValidityChecks = checks
	reg.RequestStatus = resp.StatusCode
	if err := p.bcmrDg.UpdateRegistryDocument(ctx, reg); err != nil {
		return errors.Wrap(err, "failed to update registry document")
	}
	logger.InfoContext(ctx, "Watched registry document changed", slogx.Bool("hash_match", checks.HashMatch))
	return errors.WithStack(p.scheduleMetadata(ctx, reg.ID))
}

// sameDocument compares two JSON documents semantically, stored documents lose their original formatting.
func sameDocument(a, b json.RawMessage) bool {
	if len(a) == 0 || len(b) == 0 {
		return len(a) == len(b)
	}
	var left, right any
	if json.Unmarshal(a, &left) != nil || json.Unmarshal(b, &right) != nil {
		return false
	}
	return reflect.DeepEqual(left, right)
}

func sameChecks(a, b entity.ValidityChecks) bool {
	return a.Accessible == b.Accessible && a.HashMatch == b.HashMatch && a.SchemaValid == b.SchemaValid
}

// SetRegistryWatch flags or unflags the registry announced in txid for the watch job.
func (p *Pipeline) SetRegistryWatch(ctx context.Context, txid string, enabled bool) error {
	updated, err := p.bcmrDg.SetRegistryWatchForChanges(ctx, txid, enabled)
	if err != nil {
		return errors.Wrap(err, "failed to set registry watch flag")
	}
	if !updated {
		return errors.Wrapf(errs.NotFound, "registry %s", txid)
	}
	return nil
}
