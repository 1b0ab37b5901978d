package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/artsi-ai/artsi/internal/config"
	"github.com/artsi-ai/artsi/internal/infra"
	"github.com/artsi-ai/artsi/internal/middleware"
	"github.com/artsi-ai/artsi/internal/routes"
)

// Server wraps the Fiber application and the services it drives.
type Server struct {
	app      *fiber.App
	cfg      config.Config
	logger   *slog.Logger
	services routes.Services
	stop     func()
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(ctx context.Context, cfg config.Config, res *infra.Resources, logger *slog.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		ErrorHandler: middleware.ErrorHandler(logger),
	})

	services, err := routes.Setup(ctx, app, routes.Deps{Cfg: cfg, Res: res, Logger: logger})
	if err != nil {
		return nil, err
	}
	return &Server{app: app, cfg: cfg, logger: logger, services: services, stop: func() {}}, nil
}

// Start restores the persisted session and begins following wallet state
// changes. Restore failures are logged and the server starts signed out.
func (s *Server) Start(ctx context.Context) {
	if err := s.services.Auth.Start(ctx); err != nil {
		s.logger.Warn("session bootstrap failed", "error", err)
	}
	states, cancel := s.services.Wallets.Subscribe()
	watchCtx, stop := context.WithCancel(ctx)
	s.stop = func() {
		stop()
		cancel()
	}
	go s.services.Auth.Watch(watchCtx, states)
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown stops following wallet state and gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()
	return s.app.ShutdownWithContext(ctx)
}
