package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterHealthRoutes adds a readiness endpoint covering every configured backend.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		checks := fiber.Map{}
		healthy := true
		record := func(name string, err error) {
			if err != nil {
				checks[name] = err.Error()
				healthy = false
				return
			}
			checks[name] = "ok"
		}
		if d.Res.SQLite != nil {
			record("sqlite", d.Res.SQLite.PingContext(ctx))
		}
		if d.Res.DB != nil {
			record("postgres", d.Res.DB.Ping(ctx))
		}
		if d.Res.Cache != nil {
			record("redis", d.Res.Cache.Ping(ctx).Err())
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{
			"status":        checks,
			"session_store": d.Cfg.SessionStore,
			"timestamp":     time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}
