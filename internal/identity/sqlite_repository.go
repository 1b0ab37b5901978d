package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteRepository stores the profile record in a local SQLite file. It is
// the default store for single-device deployments.
type SQLiteRepository struct {
	db  *sql.DB
	key string
}

// NewSQLiteRepository wraps an open SQLite handle and creates the profile
// table when it does not exist yet.
func NewSQLiteRepository(ctx context.Context, db *sql.DB, key string) (*SQLiteRepository, error) {
	if key == "" {
		key = DefaultKey
	}
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS profiles (
		key TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`)
	if err != nil {
		return nil, fmt.Errorf("create profiles table: %w", err)
	}
	return &SQLiteRepository{db: db, key: key}, nil
}

// Load fetches the stored identity.
func (r *SQLiteRepository) Load(ctx context.Context) (Identity, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM profiles WHERE key = ?`, r.key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Identity{}, ErrNotFound
	}
	if err != nil {
		return Identity{}, err
	}
	return decode([]byte(payload))
}

// Save upserts the identity.
func (r *SQLiteRepository) Save(ctx context.Context, id Identity) error {
	payload, err := encode(id)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO profiles (key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		r.key, string(payload), time.Now().UTC().UnixMilli())
	return err
}

// Delete removes the stored identity.
func (r *SQLiteRepository) Delete(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE key = ?`, r.key)
	return err
}
