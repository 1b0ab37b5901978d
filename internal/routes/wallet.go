package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artsi-ai/artsi/internal/wallet"
)

// RegisterWalletRoutes wires wallet connector and state endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	group := r.Group("/wallet")
	group.Get("/connectors", h.Connectors)
	group.Get("/state", h.State)
	group.Post("/state", h.ReportState)
}
