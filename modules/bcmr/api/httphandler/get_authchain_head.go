package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type getAuthchainHeadResult struct {
	Txid        string   `json:"txid"`
	Address     string   `json:"address"`
	Identities  []string `json:"identities"`
	Authbase    bool     `json:"authbase"`
	Genesis     bool     `json:"genesis"`
	BlockHeight *int64   `json:"blockHeight"`
	Timestamp   *int64   `json:"timestamp"` // unix timestamp
}

type getAuthchainHeadResponse = HttpResponse[getAuthchainHeadResult]

func (h *HttpHandler) GetAuthchainHead(ctx *fiber.Ctx) (err error) {
	var req categoryRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	head, err := h.usecase.GetAuthchainHead(ctx.UserContext(), req.Category)
	if err != nil {
		return notFound(err, "authchain not found")
	}

	result := &getAuthchainHeadResult{
		Txid:        head.Txid,
		Address:     head.Address,
		Identities:  head.Identities,
		Authbase:    head.Authbase,
		Genesis:     head.Genesis,
		BlockHeight: head.BlockHeight,
	}
	if head.Timestamp != nil {
		result.Timestamp = lo.ToPtr(head.Timestamp.Unix())
	}
	return errors.WithStack(ctx.JSON(getAuthchainHeadResponse{Result: result}))
}
