package types

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Transaction is the verbose node JSON shape of a transaction.
type Transaction struct {
	Txid          string   `json:"txid"`
	Hash          string   `json:"hash,omitempty"`
	Hex           string   `json:"hex,omitempty"`
	Version       int32    `json:"version"`
	LockTime      uint32   `json:"locktime"`
	Vin           []*TxIn  `json:"vin"`
	Vout          []*TxOut `json:"vout"`
	BlockHash     string   `json:"blockhash,omitempty"`
	Confirmations int64    `json:"confirmations,omitempty"`
	Time          int64    `json:"time,omitempty"`
	BlockTime     int64    `json:"blocktime,omitempty"`
}

// IsCoinbase reports whether the first input lacks a previous txid.
func (t *Transaction) IsCoinbase() bool {
	if len(t.Vin) == 0 {
		return true
	}
	return t.Vin[0].Coinbase != "" || t.Vin[0].Txid == ""
}

// IsConfirmed reports whether the node returned the transaction with a block hash.
func (t *Transaction) IsConfirmed() bool {
	return t.BlockHash != ""
}

type TxIn struct {
	Txid      string     `json:"txid,omitempty"`
	Vout      uint32     `json:"vout"`
	Coinbase  string     `json:"coinbase,omitempty"`
	ScriptSig *Script    `json:"scriptSig,omitempty"`
	Sequence  uint32     `json:"sequence"`
	Prevout   *TxPrevout `json:"prevout,omitempty"`
}

// TxPrevout is the spent output the node attaches to an input in higher verbosity levels.
type TxPrevout struct {
	Generated    bool       `json:"generated"`
	Height       int64      `json:"height"`
	Value        float64    `json:"value"`
	ScriptPubKey Script     `json:"scriptPubKey"`
	TokenData    *TokenData `json:"tokenData,omitempty"`
}

type TxOut struct {
	N            uint32     `json:"n"`
	Value        float64    `json:"value"`
	ScriptPubKey Script     `json:"scriptPubKey"`
	TokenData    *TokenData `json:"tokenData,omitempty"`
}

type Script struct {
	Asm       string   `json:"asm"`
	Hex       string   `json:"hex"`
	Type      string   `json:"type,omitempty"`
	Address   string   `json:"address,omitempty"`
	Addresses []string `json:"addresses,omitempty"`
}

// ScriptTypeNullData is the node's script type of an unspendable OP_RETURN output.
const ScriptTypeNullData = "nulldata"

// FirstAddress returns the output address, or an empty string for scripts without one.
func (s Script) FirstAddress() string {
	if s.Address != "" {
		return s.Address
	}
	if len(s.Addresses) > 0 {
		return s.Addresses[0]
	}
	return ""
}

// TokenData is the CashTokens prefix of an output.
type TokenData struct {
	Category string `json:"category"`

	// Amount is kept raw because nodes report it as a JSON string and malformed values must not fail decoding.
	Amount json.RawMessage `json:"amount,omitempty"`
	NFT    *TokenNFT       `json:"nft,omitempty"`
}

type TokenNFT struct {
	Capability string `json:"capability"`
	Commitment string `json:"commitment"`
}

// ParsedAmount returns the fungible amount, or false if it is absent, zero or malformed.
func (d *TokenData) ParsedAmount() (decimal.Decimal, bool) {
	if d == nil || len(d.Amount) == 0 {
		return decimal.Zero, false
	}
	raw := bytes.Trim(d.Amount, `"`)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(string(raw))
	if err != nil || amount.IsZero() {
		return decimal.Zero, false
	}
	return amount, true
}
