package types

import "time"

type BlockHeader struct {
	Hash              string `json:"hash"`
	Height            int64  `json:"height"`
	PreviousBlockHash string `json:"previousblockhash,omitempty"`
	Time              int64  `json:"time"`
}

// Timestamp returns the block time in UTC.
func (h BlockHeader) Timestamp() time.Time {
	return time.Unix(h.Time, 0).UTC()
}

// Block is the node JSON shape of a block with decoded transactions.
type Block struct {
	BlockHeader
	Tx []*Transaction `json:"tx"`
}
