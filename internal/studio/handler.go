package studio

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the studio over HTTP. Service errors are returned as-is
// for the application error handler to render.
type Handler struct {
	svc *Service
}

// NewHandler builds a studio HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Styles lists the art styles.
func (h *Handler) Styles(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{"styles": h.svc.Styles()})
}

// Generate creates one artwork.
func (h *Handler) Generate(c *fiber.Ctx) error {
	var req GenerateInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	art, err := h.svc.Generate(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(art)
}

// Artworks lists the gallery.
func (h *Handler) Artworks(c *fiber.Ctx) error {
	arts, err := h.svc.Artworks(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"artworks": arts})
}
