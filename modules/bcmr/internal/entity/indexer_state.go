package entity

import (
	"time"

	"github.com/gaze-network/bcmr-indexer/common"
)

type IndexerState struct {
	LastBlockHeight int64
	LastBlockHash   string
	Network         common.Network
	DBVersion       int32
	CreatedAt       time.Time
}
