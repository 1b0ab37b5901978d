package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artsi-ai/artsi/internal/minting"
	"github.com/artsi-ai/artsi/internal/studio"
)

// RegisterStudioRoutes wires the art studio behind the session guard.
// Generation also goes through the idempotency guard.
func RegisterStudioRoutes(r fiber.Router, h *studio.Handler, requireSession, idempotency fiber.Handler) {
	group := r.Group("/studio", requireSession)
	group.Get("/styles", h.Styles)
	group.Get("/artworks", h.Artworks)
	group.Post("/generate", idempotency, h.Generate)
}

// RegisterMintRoutes wires the mint simulator.
func RegisterMintRoutes(r fiber.Router, h *minting.Handler, requireSession fiber.Handler) {
	r.Post("/mint", requireSession, h.Mint)
}
