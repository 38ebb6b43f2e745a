package cashtokens

import "github.com/samber/lo"

// ChangeKind is the classification of a token identity across a transaction.
type ChangeKind string

const (
	ChangeGenesis  ChangeKind = "genesis"
	ChangeTransfer ChangeKind = "transfer"
	ChangeMint     ChangeKind = "mint"
	ChangeBurn     ChangeKind = "burn"
)

// IdentityChange is one token identity observed in a transaction.
type IdentityChange struct {
	TokenIdentity
	Kind  ChangeKind
	Index uint32 // output index, zero for burns
	Txid  string
}

// Changes classifies every token output as genesis, transfer or mint,
// and every input token identity absent from all outputs as a burn.
func (c *Classified) Changes() []IdentityChange {
	if c.Empty() {
		return nil
	}
	inputs := lo.SliceToMap(c.InputTokens, func(t TokenIdentity) (string, struct{}) { return t.Fingerprint(), struct{}{} })
	outputs := make(map[string]struct{}, len(c.TokenOutputs))

	changes := make([]IdentityChange, 0, len(c.TokenOutputs))
	for _, o := range c.TokenOutputs {
		fp := o.Fingerprint()
		outputs[fp] = struct{}{}

		kind := ChangeMint
		_, transferred := inputs[fp]
		switch {
		case c.IsGenesisOutput(o):
			kind = ChangeGenesis
		case transferred:
			kind = ChangeTransfer
		}
		changes = append(changes, IdentityChange{
			TokenIdentity: TokenIdentity{Category: o.Category, Capability: o.Capability, Commitment: o.Commitment},
			Kind:          kind,
			Index:         o.Index,
			Txid:          c.Txid,
		})
	}

	burned := make(map[string]struct{})
	for _, t := range c.InputTokens {
		fp := t.Fingerprint()
		if _, ok := outputs[fp]; ok {
			continue
		}
		if _, ok := burned[fp]; ok {
			continue
		}
		burned[fp] = struct{}{}
		changes = append(changes, IdentityChange{
			TokenIdentity: t,
			Kind:          ChangeBurn,
			Txid:          c.Txid,
		})
	}
	return changes
}
