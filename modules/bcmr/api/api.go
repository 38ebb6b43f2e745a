package api

import (
	"github.com/gaze-network/bcmr-indexer/common"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/api/httphandler"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/usecase"
)

func NewHTTPHandler(network common.Network, usecase *usecase.Usecase) *httphandler.HttpHandler {
	return httphandler.New(network, usecase)
}
