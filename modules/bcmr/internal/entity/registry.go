package entity

import (
	"encoding/json"
	"time"
)

// ValidityChecks are the integrity flags recorded for a fetched registry document.
// IdentitiesMatch is reserved and always nil.
type ValidityChecks struct {
	Accessible      bool  `json:"bcmr_file_accessible"`
	HashMatch       bool  `json:"bcmr_hash_match"`
	IdentitiesMatch *bool `json:"identities_match"`
	SchemaValid     bool  `json:"schema_valid"`
}

type Registry struct {
	ID          int64
	Txid        string
	OutputIndex uint32
	OpReturn    string
	BcmrURL     string

	// Contents is nil when the fetched body is not a JSON document.
	Contents       json.RawMessage
	ValidityChecks ValidityChecks
	RequestStatus  int

	// PublisherTxid is nil for announcements seen outside the authchain (e.g. from the mempool).
	PublisherTxid       *string
	GeneratedMetadataAt *time.Time
	WatchForChanges     bool
	DateCreated         *time.Time
}

// Verified reports whether the document matched its on-chain content hash.
func (r *Registry) Verified() bool {
	return r.ValidityChecks.Accessible && r.ValidityChecks.HashMatch
}
