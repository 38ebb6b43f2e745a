package postgres

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/entity"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/repository/postgres/gen"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

func decimalFromNumeric(src pgtype.Numeric) (*decimal.Decimal, error) {
	if !src.Valid {
		return nil, nil
	}
	if src.NaN || src.InfinityModifier != pgtype.Finite {
		return nil, errors.Errorf("numeric is not a finite number")
	}
	if src.Int == nil {
		return lo.ToPtr(decimal.Zero), nil
	}
	result := decimal.NewFromBigInt(src.Int, src.Exp)
	return &result, nil
}

func numericFromDecimal(src *decimal.Decimal) pgtype.Numeric {
	if src == nil {
		return pgtype.Numeric{}
	}
	return pgtype.Numeric{
		Int:   src.Coefficient(),
		Exp:   src.Exponent(),
		Valid: true,
	}
}

func textFromPtr(src *string) pgtype.Text {
	if src == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *src, Valid: true}
}

func ptrFromText(src pgtype.Text) *string {
	if !src.Valid {
		return nil
	}
	return lo.ToPtr(src.String)
}

func int8FromPtr(src *int64) pgtype.Int8 {
	if src == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *src, Valid: true}
}

func ptrFromInt8(src pgtype.Int8) *int64 {
	if !src.Valid {
		return nil
	}
	return lo.ToPtr(src.Int64)
}

func timestamptzFromPtr(src *time.Time) pgtype.Timestamptz {
	if src == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: src.UTC(), Valid: true}
}

func ptrFromTimestamptz(src pgtype.Timestamptz) *time.Time {
	if !src.Valid {
		return nil
	}
	return lo.ToPtr(src.Time.UTC())
}

func mapIdentityOutputModelToType(src gen.BcmrIdentityOutput) *entity.IdentityOutput {
	return &entity.IdentityOutput{
		Txid:        src.Txid,
		BlockHeight: ptrFromInt8(src.BlockHeight),
		Address:     src.Address,
		Identities:  lo.Ternary(src.Identities == nil, []string{}, src.Identities),
		Authbase:    src.Authbase,
		Genesis:     src.Genesis,
		Spent:       src.Spent,
		SpenderTxid: ptrFromText(src.SpenderTxid),
		Timestamp:   ptrFromTimestamptz(src.Timestamp),
	}
}

func mapIdentityOutputTypeToParams(src *entity.IdentityOutput) gen.CreateIdentityOutputParams {
	return gen.CreateIdentityOutputParams{
		Txid:        src.Txid,
		BlockHeight: int8FromPtr(src.BlockHeight),
		Address:     src.Address,
		Identities:  lo.Ternary(src.Identities == nil, []string{}, src.Identities),
		Authbase:    src.Authbase,
		Genesis:     src.Genesis,
		Timestamp:   timestamptzFromPtr(src.Timestamp),
	}
}

func mapTokenModelToType(src gen.BcmrToken) (*entity.Token, error) {
	amount, err := decimalFromNumeric(src.Amount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse token amount")
	}
	return &entity.Token{
		ID:          src.ID,
		Category:    src.Category,
		Amount:      amount,
		Commitment:  src.Commitment,
		Capability:  src.Capability,
		IsNFT:       src.IsNft,
		DebutTxid:   src.DebutTxid,
		DateCreated: ptrFromTimestamptz(src.DateCreated),
	}, nil
}

func mapTokenTypeToParams(src *entity.Token) gen.UpsertTokenParams {
	return gen.UpsertTokenParams{
		Category:    src.Category,
		Amount:      numericFromDecimal(src.Amount),
		Commitment:  src.Commitment,
		Capability:  src.Capability,
		IsNft:       src.IsNFT,
		DebutTxid:   src.DebutTxid,
		DateCreated: timestamptzFromPtr(src.DateCreated),
	}
}

func mapRegistryModelToType(src gen.BcmrRegistry) (*entity.Registry, error) {
	var checks entity.ValidityChecks
	if len(src.ValidityChecks) > 0 {
		if err := json.Unmarshal(src.ValidityChecks, &checks); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal validity checks")
		}
	}
	return &entity.Registry{
		ID:                  src.ID,
		Txid:                src.Txid,
		OutputIndex:         uint32(src.OutputIndex),
		OpReturn:            src.OpReturn,
		BcmrURL:             src.BcmrUrl,
		Contents:            src.Contents,
		ValidityChecks:      checks,
		RequestStatus:       int(src.RequestStatus),
		PublisherTxid:       ptrFromText(src.PublisherTxid),
		GeneratedMetadataAt: ptrFromTimestamptz(src.GeneratedMetadataAt),
		WatchForChanges:     src.WatchForChanges,
		DateCreated:         ptrFromTimestamptz(src.DateCreated),
	}, nil
}

func mapRegistryTypeToParams(src *entity.Registry) (gen.CreateRegistryParams, error) {
	checks, err := json.Marshal(src.ValidityChecks)
	if err != nil {
		return gen.CreateRegistryParams{}, errors.Wrap(err, "failed to marshal validity checks")
	}
	var contents []byte
	if len(src.Contents) > 0 {
		contents = src.Contents
	}
	return gen.CreateRegistryParams{
		Txid:            src.Txid,
		OutputIndex:     int32(src.OutputIndex),
		OpReturn:        src.OpReturn,
		BcmrUrl:         src.BcmrURL,
		Contents:        contents,
		ValidityChecks:  checks,
		RequestStatus:   int32(src.RequestStatus),
		PublisherTxid:   textFromPtr(src.PublisherTxid),
		WatchForChanges: src.WatchForChanges,
		DateCreated:     timestamptzFromPtr(src.DateCreated),
	}, nil
}

func mapRegistryModelsToTypes(src []gen.BcmrRegistry) ([]*entity.Registry, error) {
	registries := make([]*entity.Registry, 0, len(src))
	for _, model := range src {
		registry, err := mapRegistryModelToType(model)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse registry %d", model.ID)
		}
		registries = append(registries, registry)
	}
	return registries, nil
}

func mapTokenMetadataModelToType(src gen.BcmrTokenMetadatum) *entity.TokenMetadata {
	return &entity.TokenMetadata{
		ID:           src.ID,
		TokenID:      src.TokenID,
		MetadataType: entity.MetadataType(src.MetadataType),
		Contents:     src.Contents,
		RegistryID:   src.RegistryID,
		DateCreated:  src.DateCreated.Time.UTC(),
	}
}

func mapIndexerStateModelToType(src gen.BcmrIndexerState) entity.IndexerState {
	var createdAt time.Time
	if src.CreatedAt.Valid {
		createdAt = src.CreatedAt.Time.UTC()
	}
	return entity.IndexerState{
		LastBlockHeight: src.LastBlockHeight,
		LastBlockHash:   src.LastBlockHash,
		Network:         common.Network(src.Network),
		DBVersion:       src.DbVersion,
		CreatedAt:       createdAt,
	}
}

func mapIndexerStateTypeToParams(src entity.IndexerState) gen.CreateIndexerStateParams {
	return gen.CreateIndexerStateParams{
		LastBlockHeight: src.LastBlockHeight,
		LastBlockHash:   src.LastBlockHash,
		Network:         string(src.Network),
		DbVersion:       src.DBVersion,
	}
}
