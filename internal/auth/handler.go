package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artsi-ai/artsi/internal/errs"
	"github.com/artsi-ai/artsi/internal/identity"
)

// Handler exposes the session operations over HTTP. Operation failures are
// reported as {success:false,error} with the status of the error kind.
type Handler struct {
	svc *Service
}

// NewHandler builds an auth HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Session returns the current session snapshot.
func (h *Handler) Session(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(h.svc.Session())
}

// Login signs in with email or wallet credentials.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req Credentials
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.svc.Login(c.UserContext(), req)
	return respond(c, user, err)
}

// Signup creates an email account.
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req SignupInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.svc.Signup(c.UserContext(), req)
	return respond(c, user, err)
}

// Logout ends the session.
func (h *Handler) Logout(c *fiber.Ctx) error {
	if err := h.svc.Logout(c.UserContext()); err != nil {
		return c.Status(errs.Status(err)).JSON(ResultOf(err))
	}
	return c.Status(http.StatusOK).JSON(Result{Success: true})
}

// LinkWallet links the default wallet connector to the email session.
func (h *Handler) LinkWallet(c *fiber.Ctx) error {
	user, err := h.svc.ConnectWallet(c.UserContext())
	return respond(c, user, err)
}

func respond(c *fiber.Ctx, user identity.Identity, err error) error {
	if err != nil {
		return c.Status(errs.Status(err)).JSON(ResultOf(err))
	}
	res := ResultOf(nil)
	res.User = &user
	return c.Status(http.StatusOK).JSON(res)
}
