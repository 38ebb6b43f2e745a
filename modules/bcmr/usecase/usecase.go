package usecase

import (
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/datagateway"
)

type Usecase struct {
	bcmrDg datagateway.BCMRDataGateway
}

func New(bcmrDg datagateway.BCMRDataGateway) *Usecase {
	return &Usecase{
		bcmrDg: bcmrDg,
	}
}
