package httphandler

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/entity"
	"github.com/gofiber/fiber/v2"
)

type getTokenResult struct {
	Category     string           `json:"category"`
	MetadataType string           `json:"metadataType"`
	RegistryID   int64            `json:"registryId"`
	Contents     *json.RawMessage `json:"contents"`
	DateCreated  int64            `json:"dateCreated"` // unix timestamp
}

type getTokenResponse = HttpResponse[getTokenResult]

func (h *HttpHandler) GetToken(ctx *fiber.Ctx) (err error) {
	var req categoryRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	metadata, err := h.usecase.GetCategoryMetadata(ctx.UserContext(), req.Category)
	if err != nil {
		return notFound(err, "token metadata not found")
	}
	return errors.WithStack(ctx.JSON(getTokenResponse{Result: mapTokenResult(req.Category, metadata)}))
}

type getNFTRequest struct {
	Category   string `params:"category"`
	Commitment string `params:"commitment" validate:"required,max=80,hexadecimal"`
}

func (r *getNFTRequest) Validate() error {
	category := categoryRequest{Category: r.Category}
	if err := category.Validate(); err != nil {
		return errors.WithStack(err)
	}
	r.Category = category.Category
	r.Commitment = strings.ToLower(r.Commitment)
	if err := validate.Struct(r); err != nil {
		return errs.WithPublicMessage(err, "validation error")
	}
	return nil
}

func (h *HttpHandler) GetNFT(ctx *fiber.Ctx) (err error) {
	var req getNFTRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	metadata, err := h.usecase.GetNFTMetadata(ctx.UserContext(), req.Category, req.Commitment)
	if err != nil {
		return notFound(err, "token metadata not found")
	}
	return errors.WithStack(ctx.JSON(getTokenResponse{Result: mapTokenResult(req.Category, metadata)}))
}

func mapTokenResult(category string, metadata *entity.TokenMetadata) *getTokenResult {
	return &getTokenResult{
		Category:     category,
		MetadataType: string(metadata.MetadataType),
		RegistryID:   metadata.RegistryID,
		Contents:     rawResult(metadata.Contents),
		DateCreated:  metadata.DateCreated.Unix(),
	}
}
