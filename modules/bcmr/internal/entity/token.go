package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Capability values of a CashTokens NFT.
const (
	CapabilityNone    = "none"
	CapabilityMutable = "mutable"
	CapabilityMinting = "minting"
)

type Token struct {
	ID       int64
	Category string
	Amount   *decimal.Decimal

	// Commitment and Capability are empty when the token has no NFT.
	Commitment string
	Capability string
	IsNFT      bool

	DebutTxid   string
	DateCreated *time.Time
}
