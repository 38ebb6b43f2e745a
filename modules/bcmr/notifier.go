package bcmr

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/cashtokens"
	"github.com/gaze-network/bcmr-indexer/pkg/logger"
	"github.com/gaze-network/bcmr-indexer/pkg/logger/slogx"
	"github.com/gaze-network/bcmr-indexer/pkg/webhook"
)

// TokenIdentityEvent is emitted when a token identity fingerprint appears or disappears in a transaction.
type TokenIdentityEvent struct {
	Kind       cashtokens.ChangeKind `json:"kind"`
	Category   string                `json:"category"`
	Index      uint32                `json:"index"`
	Txid       string                `json:"txid"`
	Commitment string                `json:"commitment,omitempty"`
	Capability string                `json:"capability,omitempty"`
}

// TokenIdentityHook receives genesis, mint and burn events for downstream delivery (e.g. webhooks).
// Events are emitted once the transaction is committed; a failing hook doesn't fail the transaction.
type TokenIdentityHook interface {
	OnTokenIdentityChanged(ctx context.Context, event TokenIdentityEvent) error
}

// LogHook is the default hook, it only logs the events.
type LogHook struct{}

func (LogHook) OnTokenIdentityChanged(ctx context.Context, event TokenIdentityEvent) error {
	logger.InfoContext(ctx, "Token identity changed",
		slogx.String("kind", string(event.Kind)),
		slogx.Category(event.Category),
		slogx.Uint32("index", event.Index),
		slogx.String("commitment", event.Commitment),
		slogx.String("capability", event.Capability),
	)
	return nil
}

// WebhookHook posts every event to a webhook.
type WebhookHook struct {
	client *webhook.Client
}

func NewWebhookHook(client *webhook.Client) *WebhookHook {
	return &WebhookHook{client: client}
}

func (h *WebhookHook) OnTokenIdentityChanged(ctx context.Context, event TokenIdentityEvent) error {
	return errors.Wrapf(h.client.Send(ctx, event), "failed to deliver %s event of %s", event.Kind, event.Category)
}

func (p *Pipeline) notifyChanges(ctx context.Context, classified *cashtokens.Classified) {
	for _, change := range classified.Changes() {
		tokenIdentityChanges.WithLabelValues(string(change.Kind)).Inc()
		if change.Kind == cashtokens.ChangeTransfer {
			logger.DebugContext(ctx, "Token identity transferred", slogx.Category(change.Category), slogx.Uint32("index", change.Index))
			continue
		}
		event := TokenIdentityEvent{
			Kind:       change.Kind,
			Category:   change.Category,
			Index:      change.Index,
			Txid:       change.Txid,
			Commitment: change.Commitment,
			Capability: change.Capability,
		}
		if err := p.hook.OnTokenIdentityChanged(ctx, event); err != nil {
			logger.WarnContext(ctx, "Token identity hook failed", slogx.Error(err))
		}
	}
}
