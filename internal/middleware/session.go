package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artsi-ai/artsi/internal/errs"
	"github.com/artsi-ai/artsi/internal/identity"
)

const userIDKey = "user_id"

// SessionSource exposes the signed-in identity.
type SessionSource interface {
	Current() *identity.Identity
}

// RequireSession rejects requests while nobody is signed in and records the
// user id for downstream handlers and the audit log.
func RequireSession(sessions SessionSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := sessions.Current()
		if user == nil {
			return errs.New(errs.KindUnauthenticated, "")
		}
		c.Locals(userIDKey, user.ID)
		return c.Next()
	}
}

// UserID returns the id recorded by RequireSession.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}
