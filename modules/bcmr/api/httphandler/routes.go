package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1/bcmr")

	r.Get("/tokens/:category", h.GetToken)
	r.Get("/tokens/:category/:commitment", h.GetNFT)
	r.Get("/registries/:category", h.GetRegistry)
	r.Get("/authchain/:category/head", h.GetAuthchainHead)
	r.Get("/block", h.GetCurrentBlock)
	return nil
}
