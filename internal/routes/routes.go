package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/artsi-ai/artsi/internal/archive"
	"github.com/artsi-ai/artsi/internal/auth"
	"github.com/artsi-ai/artsi/internal/config"
	"github.com/artsi-ai/artsi/internal/identity"
	"github.com/artsi-ai/artsi/internal/imagegen"
	"github.com/artsi-ai/artsi/internal/infra"
	"github.com/artsi-ai/artsi/internal/middleware"
	"github.com/artsi-ai/artsi/internal/minting"
	"github.com/artsi-ai/artsi/internal/notification"
	"github.com/artsi-ai/artsi/internal/session"
	"github.com/artsi-ai/artsi/internal/studio"
	"github.com/artsi-ai/artsi/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes. Generator and
// Connectors replace the configured image client and local wallets when set.
type Deps struct {
	Cfg        config.Config
	Res        *infra.Resources
	Logger     *slog.Logger
	Generator  imagegen.Generator
	Connectors []wallet.Connector
}

// Services are the long-lived components the process drives outside of
// request handling.
type Services struct {
	Auth    *auth.Service
	Wallets *wallet.Manager
	Feed    *notification.Feed
}

// Setup configures middlewares and all application routes.
func Setup(ctx context.Context, app *fiber.App, d Deps) (Services, error) {
	if d.Res == nil {
		d.Res = &infra.Resources{}
	}
	repo, err := profileRepository(ctx, d.Cfg, d.Res)
	if err != nil {
		return Services{}, err
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	feed := notification.NewFeed(notification.DefaultFeedSize)
	notifier := notification.Fanout{notification.NewLoggerNotifier(d.Logger), feed}

	connectors := d.Connectors
	if len(connectors) == 0 {
		connectors = wallet.LocalConnectors(d.Cfg.WalletSeed, d.Cfg.WalletConnectors...)
	}
	wallets := wallet.NewManager(d.Logger, connectors...)
	store := session.NewStore(repo)
	authSvc := auth.NewService(store, wallets, notifier, d.Logger, auth.WithLinkConnector(d.Cfg.WalletDefaultConnector))

	generator := d.Generator
	if generator == nil {
		generator = imagegen.NewClient(imagegen.Config{
			APIKey:  d.Cfg.OpenAIAPIKey,
			BaseURL: d.Cfg.OpenAIBaseURL,
			Model:   d.Cfg.ImageModel,
		}, d.Logger)
	}
	archiver, err := newArchiver(ctx, d.Cfg, d.Logger)
	if err != nil {
		return Services{}, err
	}
	studioSvc := studio.NewService(store, generator, studio.NewMemoryGallery(), archiver, notifier, d.Logger)
	mintSvc := minting.NewService(store, studioSvc, notifier, d.Logger, d.Cfg.MintStepDelay)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterAuthRoutes(api, auth.NewHandler(authSvc), middleware.LoginRateLimit(d.Res.Cache, d.Cfg.LoginAttemptsPerMinute))
	RegisterWalletRoutes(api, wallet.NewHandler(wallets))
	RegisterNotificationRoutes(api, feed)

	requireSession := middleware.RequireSession(store)
	RegisterStudioRoutes(api, studio.NewHandler(studioSvc), requireSession, middleware.Idempotency(d.Res.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	RegisterMintRoutes(api, minting.NewHandler(mintSvc, d.Logger), requireSession)

	return Services{Auth: authSvc, Wallets: wallets, Feed: feed}, nil
}

func profileRepository(ctx context.Context, cfg config.Config, res *infra.Resources) (identity.Repository, error) {
	key := cfg.SessionKey
	switch cfg.SessionStore {
	case config.StoreSQLite:
		if res.SQLite == nil {
			return nil, fmt.Errorf("sqlite database is required when SESSION_STORE=%s", cfg.SessionStore)
		}
		repo, err := identity.NewSQLiteRepository(ctx, res.SQLite, key)
		if err != nil {
			return nil, fmt.Errorf("open profile table: %w", err)
		}
		return repo, nil
	case config.StoreRedis:
		if res.Cache == nil {
			return nil, fmt.Errorf("redis is required when SESSION_STORE=%s", cfg.SessionStore)
		}
		return identity.NewRedisRepository(res.Cache, key), nil
	case config.StorePostgres:
		if res.DB == nil {
			return nil, fmt.Errorf("database is required when SESSION_STORE=%s", cfg.SessionStore)
		}
		repo := identity.NewPostgresRepository(res.DB, key)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure profile schema: %w", err)
		}
		return repo, nil
	default:
		return identity.NewMemoryRepository(), nil
	}
}

func newArchiver(ctx context.Context, cfg config.Config, logger *slog.Logger) (studio.Archiver, error) {
	if !cfg.ArchiveEnabled() {
		return nil, nil
	}
	store, err := archive.NewS3Store(ctx, archive.S3Config{
		Bucket:          cfg.S3BucketName,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		return nil, err
	}
	return archive.NewService(store, &http.Client{Timeout: time.Minute}, cfg.ArchiveURLTTL, logger), nil
}
