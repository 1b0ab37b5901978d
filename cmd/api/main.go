package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/artsi-ai/artsi/internal/config"
	"github.com/artsi-ai/artsi/internal/infra"
	"github.com/artsi-ai/artsi/internal/logging"
	"github.com/artsi-ai/artsi/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res, err := infra.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("open backends", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Warn("close backends", "error", err)
		}
	}()

	srv, err := server.New(ctx, cfg, res, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}
	srv.Start(ctx)

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
