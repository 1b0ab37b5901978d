package wallet

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	manager *Manager
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

type stateRequest struct {
	Connected   bool   `json:"isConnected"`
	Address     string `json:"address"`
	ConnectorID string `json:"connectorId"`
}

// Connectors lists the available connectors.
func (h *Handler) Connectors(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{"connectors": h.manager.Connectors()})
}

// State returns the live wallet state.
func (h *Handler) State(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(h.manager.State())
}

// ReportState records a state change pushed by the wallet front end.
func (h *Handler) ReportState(c *fiber.Ctx) error {
	var req stateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Connected && req.Address == "" {
		return fiber.NewError(http.StatusBadRequest, "address is required when connected")
	}
	h.manager.Observe(State{Connected: req.Connected, Address: req.Address, ConnectorID: req.ConnectorID})
	return c.Status(http.StatusAccepted).JSON(h.manager.State())
}
