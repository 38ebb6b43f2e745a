package entity

import (
	"encoding/json"
	"time"
)

type MetadataType string

const (
	MetadataTypeCategory MetadataType = "category"
	MetadataTypeNFT      MetadataType = "nft"
)

// TokenMetadata is a flattened snapshot of a registry revision. The latest row per (token, type) wins.
type TokenMetadata struct {
	ID           int64
	TokenID      int64
	MetadataType MetadataType
	Contents     json.RawMessage
	RegistryID   int64
	DateCreated  time.Time
}
