package datagateway

import (
	"context"
	"time"

	"github.com/gaze-network/bcmr-indexer/core/types"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/entity"
)

type BCMRDataGateway interface {
	BCMRReaderDataGateway
	BCMRWriterDataGateway

	// BeginBCMRTx returns a new BCMRDataGateway with transaction enabled. All write operations performed in this datagateway must be committed to persist changes.
	BeginBCMRTx(ctx context.Context) (BCMRDataGatewayWithTx, error)
}

type BCMRDataGatewayWithTx interface {
	BCMRDataGateway
	Tx
}

type BCMRReaderDataGateway interface {
	// GetIdentityOutput returns errs.NotFound if no identity output exists for the txid.
	GetIdentityOutput(ctx context.Context, txid string) (*entity.IdentityOutput, error)
	// GetUnspentIdentityOutputs returns the unspent identity outputs among the given txids.
	GetUnspentIdentityOutputs(ctx context.Context, txids []string) ([]*entity.IdentityOutput, error)
	GetGenesisIdentityOutput(ctx context.Context, txid string) (*entity.IdentityOutput, error)
	// GetAuthchainHead returns the unspent identity output carrying the category. Returns errs.NotFound if the chain is unknown.
	GetAuthchainHead(ctx context.Context, category string) (*entity.IdentityOutput, error)
	GetIdentityOutputsMissingBlockInfo(ctx context.Context, limit int32) ([]*entity.IdentityOutput, error)

	// GetEarliestToken returns the first token row recorded for the category.
	GetEarliestToken(ctx context.Context, category string) (*entity.Token, error)
	GetToken(ctx context.Context, category, commitment, capability string) (*entity.Token, error)
	GetTokenByID(ctx context.Context, id int64) (*entity.Token, error)
	GetTokensMissingDate(ctx context.Context, limit int32) ([]*entity.Token, error)

	GetRegistryByTxid(ctx context.Context, txid string) (*entity.Registry, error)
	GetRegistryByID(ctx context.Context, id int64) (*entity.Registry, error)
	// GetRegistriesPendingMetadata returns registries without generated metadata, oldest first.
	GetRegistriesPendingMetadata(ctx context.Context) ([]*entity.Registry, error)
	GetWatchedRegistries(ctx context.Context) ([]*entity.Registry, error)
	GetRegistriesMissingDate(ctx context.Context, limit int32) ([]*entity.Registry, error)
	// GetLatestVerifiedRegistry returns the newest hash-verified registry describing the category.
	GetLatestVerifiedRegistry(ctx context.Context, category string) (*entity.Registry, error)

	GetLatestTokenMetadata(ctx context.Context, tokenID int64, metadataType entity.MetadataType) (*entity.TokenMetadata, error)

	GetRawTx(ctx context.Context, txid string) (*types.Transaction, error)
	GetLatestIndexerState(ctx context.Context) (entity.IndexerState, error)
}

type BCMRWriterDataGateway interface {
	// CreateIdentityOutput inserts the identity output. Returns false if a row for the txid already exists.
	CreateIdentityOutput(ctx context.Context, output *entity.IdentityOutput) (bool, error)
	// MarkIdentityOutputSpent sets spent and spender of an unspent identity output. Returns false if it was already spent.
	MarkIdentityOutputSpent(ctx context.Context, txid, spenderTxid string) (bool, error)
	// FillIdentityOutputBlockInfo sets block height and timestamp where they are still null.
	FillIdentityOutputBlockInfo(ctx context.Context, txid string, blockHeight *int64, timestamp *time.Time) error

	// UpsertToken creates the token if the (category, commitment, capability) combination is new, and returns the stored row.
	UpsertToken(ctx context.Context, token *entity.Token) (*entity.Token, error)
	FillTokenDateCreated(ctx context.Context, id int64, dateCreated time.Time) error

	// CreateRegistry inserts the registry. Returns false if a registry for the txid already exists.
	CreateRegistry(ctx context.Context, registry *entity.Registry) (bool, error)
	// UpdateRegistryDocument replaces the document of a registry and clears its generated metadata timestamp.
	UpdateRegistryDocument(ctx context.Context, registry *entity.Registry) error
	SetRegistryGeneratedMetadataAt(ctx context.Context, id int64, generatedAt time.Time) error
	// SetRegistryPublisher records the publisher of a registry that was stored without one. Returns false if it already had one.
	SetRegistryPublisher(ctx context.Context, txid, publisherTxid string) (bool, error)
	SetRegistryWatchForChanges(ctx context.Context, txid string, watch bool) (bool, error)
	FillRegistryDateCreated(ctx context.Context, id int64, dateCreated time.Time) error

	CreateTokenMetadata(ctx context.Context, metadata *entity.TokenMetadata) (*entity.TokenMetadata, error)

	CreateRawTx(ctx context.Context, tx *types.Transaction) error
	// MarkTransactionApplied claims the first application of a transaction to the authchain. Returns false if it was applied before.
	MarkTransactionApplied(ctx context.Context, txid string) (bool, error)
	CreateIndexerState(ctx context.Context, state entity.IndexerState) error
}
