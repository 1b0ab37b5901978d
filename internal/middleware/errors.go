package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/artsi-ai/artsi/internal/errs"
)

// StatusOf maps a handler error to the HTTP status it is rendered with.
func StatusOf(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return errs.Status(err)
}

// ErrorHandler renders handler errors as {"error": message, "kind": kind}.
// Messages of internal errors are replaced by the generic text.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		status := errs.Status(err)
		if status >= fiber.StatusInternalServerError && errs.KindOf(err) == errs.KindInternal {
			logger.Error("unhandled error", "path", c.Path(), "request_id", RequestIDFrom(c), "error", err)
		}
		return c.Status(status).JSON(fiber.Map{
			"error": errs.Message(err),
			"kind":  errs.KindOf(err),
		})
	}
}
