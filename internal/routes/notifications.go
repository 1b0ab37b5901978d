package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artsi-ai/artsi/internal/notification"
)

// RegisterNotificationRoutes exposes the notice feed. Reading drains it.
func RegisterNotificationRoutes(r fiber.Router, feed *notification.Feed) {
	r.Get("/notifications", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{"notifications": feed.Drain()})
	})
}
