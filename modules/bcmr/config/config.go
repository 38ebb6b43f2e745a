package config

import (
	"time"

	"github.com/gaze-network/bcmr-indexer/internal/postgres"
	"github.com/gaze-network/bcmr-indexer/pkg/webhook"
)

type Config struct {
	// Database is the persistence backend. Only "postgres" is supported.
	Database    string          `mapstructure:"database"`
	Postgres    postgres.Config `mapstructure:"postgres"`
	APIHandlers []string        `mapstructure:"api_handlers"`

	// IPFSGateway resolves ipfs:// registry URIs as <gateway>/ipfs/<cid>.
	IPFSGateway string `mapstructure:"ipfs_gateway"`

	// SpenderLookupURL is the endpoint of the spend-lookup service used by authchain retrace.
	// Retrace is disabled when empty.
	SpenderLookupURL string `mapstructure:"spender_lookup_url"`

	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	FetchRateLimit float64       `mapstructure:"fetch_rate_limit"` // requests per second, zero disables the limit

	Workers         int `mapstructure:"workers"`           // workers per task queue
	MaxTaskAttempts int `mapstructure:"max_task_attempts"` // a failed task is re-enqueued until this many attempts

	// Webhook receives token identity genesis, mint and burn events. Events are only logged when the url is empty.
	Webhook webhook.Config `mapstructure:"webhook"`

	BackfillInterval time.Duration `mapstructure:"backfill_interval"`
	WatchInterval    time.Duration `mapstructure:"watch_interval"`

	// StartBlockHeight overrides the network activation height as the first polled block.
	StartBlockHeight    int64 `mapstructure:"start_block_height"`
	DisableBlockPolling bool  `mapstructure:"disable_block_polling"`
}
