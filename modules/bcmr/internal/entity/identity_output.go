package entity

import (
	"time"

	"github.com/samber/lo"
)

// IdentityOutput is the zeroth output of a transaction that holds authority over one or more token categories.
type IdentityOutput struct {
	Txid        string
	BlockHeight *int64
	Address     string
	Identities  []string
	Authbase    bool
	Genesis     bool
	Spent       bool
	SpenderTxid *string
	Timestamp   *time.Time
}

// HasIdentity reports whether the output carries authority over the category.
func (o *IdentityOutput) HasIdentity(category string) bool {
	return lo.Contains(o.Identities, category)
}
