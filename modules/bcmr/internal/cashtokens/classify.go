// Package cashtokens classifies node transactions into token outputs, identity candidates and registry announcements.
package cashtokens

import (
	"github.com/gaze-network/bcmr-indexer/core/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// NullDataAddress is recorded as the address of an identity output that is unspendable.
const NullDataAddress = "nulldata"

// TokenOutput is a token-bearing output of a transaction.
type TokenOutput struct {
	Index    uint32
	Category string
	Amount   *decimal.Decimal
	IsNFT    bool

	// Capability and Commitment are empty for fungible-only outputs.
	Capability string
	Commitment string
}

// Fingerprint returns the token identity of the output, category||capability||commitment.
func (o TokenOutput) Fingerprint() string {
	return Fingerprint(o.Category, o.Capability, o.Commitment)
}

func Fingerprint(category, capability, commitment string) string {
	return category + capability + commitment
}

// TokenIdentity is a token category with its optional NFT capability and commitment.
type TokenIdentity struct {
	Category   string
	Capability string
	Commitment string
}

func (t TokenIdentity) Fingerprint() string {
	return Fingerprint(t.Category, t.Capability, t.Commitment)
}

// Input is a transaction input that may spend a candidate identity output.
type Input struct {
	Txid string
	Vout uint32
}

// Classified is the structured view of one transaction.
type Classified struct {
	Txid     string
	Coinbase bool

	Inputs []Input

	// IdentityAddress is the address of output 0, or NullDataAddress when it is unspendable.
	IdentityAddress string

	TokenOutputs []TokenOutput
	InputTokens  []TokenIdentity
	Announcement *Announcement

	// CreatedCategories holds the category of the genesis output, see IsGenesisOutput.
	CreatedCategories []string
}

// Empty reports whether the transaction must not be processed any further,
// i.e. it is a coinbase or it has no outputs.
func (c *Classified) Empty() bool {
	return c == nil || c.Coinbase || len(c.Inputs) == 0
}

// FirstInput returns the zeroth input.
func (c *Classified) FirstInput() Input {
	if len(c.Inputs) == 0 {
		return Input{}
	}
	return c.Inputs[0]
}

// IdentityParentTxids returns the txids of inputs spending output index 0.
func (c *Classified) IdentityParentTxids() []string {
	txids := lo.FilterMap(c.Inputs, func(in Input, _ int) (string, bool) {
		return in.Txid, in.Vout == 0
	})
	return lo.Uniq(txids)
}

// IsGenesis reports whether output 0 carries a token whose category equals the first input's txid.
func (c *Classified) IsGenesis() bool {
	return !c.Empty() && len(c.CreatedCategories) > 0
}

// IsGenesisOutput reports whether the token output creates its category:
// it is output 0 and its category equals the first input's txid.
func (c *Classified) IsGenesisOutput(o TokenOutput) bool {
	return o.Index == 0 && o.Category == c.FirstInput().Txid
}

// Classify parses one node transaction. Malformed token fields are treated as absent.
// Input tokens are read from the inputs' prevouts and are empty when the node didn't attach them.
func Classify(tx *types.Transaction) *Classified {
	c := &Classified{Txid: tx.Txid}
	if tx.IsCoinbase() {
		c.Coinbase = true
		return c
	}
	if len(tx.Vout) == 0 {
		return c
	}

	c.Inputs = lo.Map(tx.Vin, func(in *types.TxIn, _ int) Input {
		return Input{Txid: in.Txid, Vout: in.Vout}
	})
	for _, in := range tx.Vin {
		if in.Prevout == nil || in.Prevout.TokenData == nil || in.Prevout.TokenData.Category == "" {
			continue
		}
		c.InputTokens = append(c.InputTokens, tokenIdentity(in.Prevout.TokenData))
	}

	script := tx.Vout[0].ScriptPubKey
	if script.Type == types.ScriptTypeNullData {
		c.IdentityAddress = NullDataAddress
	} else {
		c.IdentityAddress = script.FirstAddress()
	}

	for index, out := range tx.Vout {
		if out.ScriptPubKey.Type == types.ScriptTypeNullData {
			if c.Announcement == nil {
				c.Announcement = ParseAnnouncement(uint32(index), out.ScriptPubKey)
			}
			continue
		}
		tokenOutput, ok := parseTokenOutput(uint32(index), out.TokenData)
		if !ok {
			continue
		}
		c.TokenOutputs = append(c.TokenOutputs, tokenOutput)
		if c.IsGenesisOutput(tokenOutput) {
			c.CreatedCategories = append(c.CreatedCategories, tokenOutput.Category)
		}
	}
	return c
}

func parseTokenOutput(index uint32, data *types.TokenData) (TokenOutput, bool) {
	if data == nil || data.Category == "" {
		return TokenOutput{}, false
	}
	o := TokenOutput{
		Index:    index,
		Category: data.Category,
	}
	if amount, ok := data.ParsedAmount(); ok {
		o.Amount = &amount
	}
	if data.NFT != nil {
		o.IsNFT = true
		o.Capability = data.NFT.Capability
		o.Commitment = data.NFT.Commitment
	}
	return o, true
}

func tokenIdentity(data *types.TokenData) TokenIdentity {
	identity := TokenIdentity{Category: data.Category}
	if data.NFT != nil {
		identity.Capability = data.NFT.Capability
		identity.Commitment = data.NFT.Commitment
	}
	return identity
}
