package minting

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artsi-ai/artsi/internal/middleware"
)

// Handler exposes the mint simulator over HTTP.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler builds a mint HTTP handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Mint runs the whole sequence and returns the receipt.
func (h *Handler) Mint(c *fiber.Ctx) error {
	var req MintInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	reqID := middleware.RequestIDFrom(c)
	receipt, err := h.svc.Mint(c.UserContext(), req, func(p Progress) {
		h.logger.Debug("mint progress", "request_id", reqID, "step", p.Step, "total", p.Total, "label", p.Label)
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(receipt)
}
