package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Audit logs one structured line per request. A request that ends in an
// error is logged with the status the error handler will render.
func Audit(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = StatusOf(err)
		}
		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
		}
		if reqID := RequestIDFrom(c); reqID != "" {
			attrs = append(attrs, slog.String("request_id", reqID))
		}
		if userID, _ := c.Locals(userIDKey).(string); userID != "" {
			attrs = append(attrs, slog.String("user_id", userID))
		}

		switch {
		case err == nil:
			logger.Info("request completed", attrs...)
		case status >= fiber.StatusInternalServerError:
			logger.Error("request failed", append(attrs, slog.Any("error", err))...)
		default:
			logger.Warn("request failed", append(attrs, slog.Any("error", err))...)
		}
		return err
	}
}
