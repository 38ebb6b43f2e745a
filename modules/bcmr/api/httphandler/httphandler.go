package httphandler

import (
	"encoding/json"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/usecase"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type HttpHandler struct {
	usecase *usecase.Usecase
	network common.Network
}

func New(network common.Network, usecase *usecase.Usecase) *HttpHandler {
	return &HttpHandler{
		usecase: usecase,
		network: network,
	}
}

type HttpResponse[T any] struct {
	Error  *string `json:"error"`
	Result *T      `json:"result,omitempty"`
}

type categoryRequest struct {
	Category string `params:"category" validate:"required,len=64,hexadecimal"`
}

func (r *categoryRequest) Validate() error {
	r.Category = strings.ToLower(r.Category)
	if err := validate.Struct(r); err != nil {
		return errs.WithPublicMessage(err, "validation error")
	}
	if _, err := chainhash.NewHashFromStr(r.Category); err != nil {
		return errs.WithPublicMessage(err, "invalid category")
	}
	return nil
}

// rawResult returns the stored JSON document as is, or nil when it is empty.
func rawResult(raw json.RawMessage) *json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	return &raw
}

// notFound maps errs.NotFound to a public 404 error.
func notFound(err error, message string) error {
	if errors.Is(err, errs.NotFound) {
		return errs.NewPublicErrorWithStatus(message, fiber.StatusNotFound)
	}
	return errors.WithStack(err)
}
