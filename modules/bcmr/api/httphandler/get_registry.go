package httphandler

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gofiber/fiber/v2"
)

type getRegistryResult struct {
	Txid     string           `json:"txid"`
	BcmrURL  string           `json:"bcmrUrl"`
	Contents *json.RawMessage `json:"contents"`
}

type getRegistryResponse = HttpResponse[getRegistryResult]

func (h *HttpHandler) GetRegistry(ctx *fiber.Ctx) (err error) {
	var req categoryRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	reg, err := h.usecase.GetLatestRegistry(ctx.UserContext(), req.Category)
	if err != nil {
		return notFound(err, "registry not found")
	}
	if len(reg.Contents) == 0 {
		return errs.NewPublicErrorWithStatus("registry identity found, but with no contents", fiber.StatusNotFound)
	}

	return errors.WithStack(ctx.JSON(getRegistryResponse{
		Result: &getRegistryResult{
			Txid:     reg.Txid,
			BcmrURL:  reg.BcmrURL,
			Contents: rawResult(reg.Contents),
		},
	}))
}
