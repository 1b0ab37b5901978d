package identity

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

func exerciseRepository(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()

	if _, err := repo.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	linked := NewSignup("Ava", "ava@x.com")
	linked.WalletAddress = "0xABCDEF1234567890"
	if err := repo.Save(ctx, linked); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != linked {
		t.Fatalf("expected %+v, got %+v", linked, loaded)
	}

	replacement := NewWallet("0x00000000000000000000000000000000DeaDBeef")
	if err := repo.Save(ctx, replacement); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	loaded, err = repo.Load(ctx)
	if err != nil {
		t.Fatalf("load after overwrite: %v", err)
	}
	if loaded != replacement {
		t.Fatalf("expected last write to win, got %+v", loaded)
	}

	if err := repo.Delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
}

func TestMemoryRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryRepository())
}

func TestRedisRepository(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	exerciseRepository(t, NewRedisRepository(cache, ""))

	repo := NewRedisRepository(cache, "custom_key")
	if err := repo.Save(context.Background(), NewEmail("k@x.com")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("custom_key") {
		t.Fatalf("expected record under custom_key")
	}
}

func TestSQLiteRepository(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "profile.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	repo, err := NewSQLiteRepository(context.Background(), db, "")
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	exerciseRepository(t, repo)
}
