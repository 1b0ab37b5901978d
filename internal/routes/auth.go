package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artsi-ai/artsi/internal/auth"
)

// RegisterAuthRoutes wires the session endpoints. Login and signup share the
// attempt limiter.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	r.Get("/session", h.Session)

	group := r.Group("/auth")
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
		group.Post("/signup", rateLimiter, h.Signup)
	} else {
		group.Post("/login", h.Login)
		group.Post("/signup", h.Signup)
	}
	group.Post("/logout", h.Logout)

	r.Post("/wallet/link", h.LinkWallet)
}
