package bcmr

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/cashtokens"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/entity"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/fetcher"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/registry"
	"github.com/gaze-network/bcmr-indexer/pkg/logger"
	"github.com/gaze-network/bcmr-indexer/pkg/logger/slogx"
	"github.com/samber/lo"
)

// ResolveAnnouncement fetches, verifies and stores the registry document of an announcement.
// Candidate URIs are tried in order and the first 200 response wins. The registry is stored once per txid;
// when it already exists, or when no candidate resolves, nil is returned without error.
// An existing registry stored without publisher, as seen in the mempool, gets the publisher linked.
func (p *Pipeline) ResolveAnnouncement(ctx context.Context, txid string, announcement *cashtokens.Announcement, publisherTxid *string, dateCreated *time.Time) (*entity.Registry, error) {
	ctx = logger.WithContext(ctx, slogx.Txid(txid))

	if existing, err := p.bcmrDg.GetRegistryByTxid(ctx, txid); err == nil {
		registryResolutions.WithLabelValues("duplicate").Inc()
		if existing.PublisherTxid != nil {
			return nil, nil
		}
		return nil, errors.WithStack(p.linkPublisher(ctx, txid, publisherTxid))
	} else if !errors.Is(err, errs.NotFound) {
		return nil, errors.Wrap(err, "failed to get registry")
	}

	uri, resp, ok := p.fetchFirst(ctx, registry.ParseURIs(announcement.URIs))
	if !ok {
		registryResolutions.WithLabelValues("unresolved").Inc()
		logger.InfoContext(ctx, "No registry candidate resolved", slogx.Strings("uris", announcement.URIs))
		return nil, nil
	}

	contents, checks := verifyDocument(resp.Body, announcement.ContentHash)
	reg := &entity.Registry{
		Txid:           txid,
		OutputIndex:    announcement.OutputIndex,
		OpReturn:       announcement.OpReturn,
		BcmrURL:        uri.Normalized,
		Contents:       contents,
		ValidityChecks: checks,
		RequestStatus:  resp.StatusCode,
		PublisherTxid:  publisherTxid,
		DateCreated:    dateCreated,
	}
	created, err := p.bcmrDg.CreateRegistry(ctx, reg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create registry")
	}
	if !created {
		registryResolutions.WithLabelValues("duplicate").Inc()
		return nil, errors.WithStack(p.linkPublisher(ctx, txid, publisherTxid))
	}

	stored, err := p.bcmrDg.GetRegistryByTxid(ctx, txid)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get created registry")
	}
	registryResolutions.WithLabelValues(lo.Ternary(checks.HashMatch, "verified", "unverified")).Inc()
	logger.InfoContext(ctx, "Resolved registry",
		slogx.Int64("registry_id", stored.ID),
		slogx.String("url", stored.BcmrURL),
		slogx.Bool("hash_match", checks.HashMatch),
		slogx.Bool("schema_valid", checks.SchemaValid),
	)

	if err := p.scheduleMetadata(ctx, stored.ID); err != nil {
		return nil, errors.WithStack(err)
	}
	return stored, nil
}

func (p *Pipeline) linkPublisher(ctx context.Context, txid string, publisherTxid *string) error {
	if publisherTxid == nil {
		return nil
	}
	linked, err := p.bcmrDg.SetRegistryPublisher(ctx, txid, *publisherTxid)
	if err != nil {
		return errors.Wrap(err, "failed to set registry publisher")
	}
	if linked {
		logger.InfoContext(ctx, "Linked registry publisher", slogx.String("publisher", *publisherTxid))
	}
	return nil
}

// fetchFirst returns the first candidate answering 200. Fetch errors are not fatal.
func (p *Pipeline) fetchFirst(ctx context.Context, uris []registry.URI) (registry.URI, *fetcher.Response, bool) {
	for _, uri := range uris {
		start := time.Now()
		resp, err := p.fetcher.Fetch(ctx, uri)
		documentFetchDuration.WithLabelValues(string(uri.Kind)).Observe(time.Since(start).Seconds())
		if err != nil {
			logger.DebugContext(ctx, "Failed to fetch registry candidate", slogx.String("uri", uri.Normalized), slogx.Error(err))
			continue
		}
		if !resp.OK() {
			logger.DebugContext(ctx, "Registry candidate not available", slogx.String("uri", uri.Normalized), slogx.Int("status", resp.StatusCode))
			continue
		}
		return uri, resp, true
	}
	return registry.URI{}, nil, false
}

// verifyDocument computes the validity checks of a fetched document. Bodies that are not JSON are not stored.
func verifyDocument(body []byte, onChainHash string) (json.RawMessage, entity.ValidityChecks) {
	checks := entity.ValidityChecks{
		Accessible: true,
		HashMatch:  strings.EqualFold(registry.ContentHash(body), onChainHash),
	}
	doc, err := registry.Decode(body)
	if err != nil {
		return nil, checks
	}
	checks.SchemaValid = registry.Validate(doc) == nil
	return json.RawMessage(body), checks
}

// scheduleMetadata dispatches the projection of a registry, or runs it inline without a dispatcher.
func (p *Pipeline) scheduleMetadata(ctx context.Context, registryID int64) error {
	if p.dispatchMetadata != nil {
		return errors.Wrap(p.dispatchMetadata(ctx, registryID), "failed to dispatch metadata generation")
	}
	return errors.WithStack(p.ResolveMetadata(ctx, &registryID))
}
