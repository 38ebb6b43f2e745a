package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

type getCurrentBlockResult struct {
	Hash   string `json:"hash"`
	Height int64  `json:"height"`
}

type getCurrentBlockResponse = HttpResponse[getCurrentBlockResult]

func (h *HttpHandler) GetCurrentBlock(ctx *fiber.Ctx) (err error) {
	state, err := h.usecase.GetLatestIndexerState(ctx.UserContext())
	if err != nil {
		return notFound(err, "no block indexed yet")
	}

	resp := getCurrentBlockResponse{
		Result: &getCurrentBlockResult{
			Hash:   state.LastBlockHash,
			Height: state.LastBlockHeight,
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
