package infra

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/artsi-ai/artsi/internal/config"
)

// Resources holds the backing connections the service was configured with.
// Any field may be nil.
type Resources struct {
	DB     *pgxpool.Pool
	Cache  *redis.Client
	SQLite *sql.DB
}

// Open connects the backends named by cfg. Redis and Postgres are optional
// unless they back the session store; an optional backend that cannot be
// reached is logged and skipped in development and fatal otherwise.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Resources, error) {
	res := &Resources{}
	optional := func(name string, err error) error {
		if cfg.IsDev() {
			logger.Warn("optional backend unavailable", "backend", name, "error", err)
			return nil
		}
		return err
	}

	if cfg.SessionStore == config.StoreSQLite {
		db, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		res.SQLite = db
	}

	if cfg.DatabaseURL != "" {
		pool, err := NewPostgresPool(ctx, cfg.DatabaseURL)
		switch {
		case err == nil:
			res.DB = pool
		case cfg.SessionStore == config.StorePostgres:
			res.Close()
			return nil, err
		default:
			if err := optional("postgres", err); err != nil {
				res.Close()
				return nil, err
			}
		}
	}

	if cfg.RedisURL != "" {
		cache, err := NewRedisClient(ctx, cfg.RedisURL)
		switch {
		case err == nil:
			res.Cache = cache
		case cfg.SessionStore == config.StoreRedis:
			res.Close()
			return nil, err
		default:
			if err := optional("redis", err); err != nil {
				res.Close()
				return nil, err
			}
		}
	}
	return res, nil
}

// Close releases every open connection.
func (r *Resources) Close() error {
	var errs []error
	if r.Cache != nil {
		errs = append(errs, r.Cache.Close())
	}
	if r.DB != nil {
		r.DB.Close()
	}
	if r.SQLite != nil {
		errs = append(errs, r.SQLite.Close())
	}
	return errors.Join(errs...)
}
