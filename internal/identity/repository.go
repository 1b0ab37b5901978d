package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultKey is the profile key the session record is stored under.
const DefaultKey = "artsi_user"

// ErrNotFound is returned by Load when nothing is persisted.
var ErrNotFound = errors.New("identity not found")

// Repository persists the single signed-in identity under one key.
type Repository interface {
	Load(ctx context.Context) (Identity, error)
	Save(ctx context.Context, id Identity) error
	Delete(ctx context.Context) error
}

func encode(id Identity) ([]byte, error) {
	payload, err := json.Marshal(id)
	if err != nil {
		return nil, fmt.Errorf("encode identity: %w", err)
	}
	return payload, nil
}

func decode(payload []byte) (Identity, error) {
	var id Identity
	if err := json.Unmarshal(payload, &id); err != nil {
		return Identity{}, fmt.Errorf("decode identity: %w", err)
	}
	return id, nil
}

// PostgresRepository stores the profile record in a key/value table.
type PostgresRepository struct {
	db  *pgxpool.Pool
	key string
}

// NewPostgresRepository builds a Postgres-backed profile repository.
func NewPostgresRepository(db *pgxpool.Pool, key string) *PostgresRepository {
	if key == "" {
		key = DefaultKey
	}
	return &PostgresRepository{db: db, key: key}
}

// EnsureSchema creates the profile table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS profiles (
        key TEXT PRIMARY KEY,
        payload JSONB NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`)
	if err != nil {
		return fmt.Errorf("create profiles table: %w", err)
	}
	return nil
}

// Load fetches the stored identity.
func (r *PostgresRepository) Load(ctx context.Context) (Identity, error) {
	var payload []byte
	err := r.db.QueryRow(ctx, `SELECT payload FROM profiles WHERE key = $1`, r.key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return Identity{}, ErrNotFound
	}
	if err != nil {
		return Identity{}, err
	}
	return decode(payload)
}

// Save upserts the identity.
func (r *PostgresRepository) Save(ctx context.Context, id Identity) error {
	payload, err := encode(id)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO profiles (key, payload, updated_at) VALUES ($1, $2, $3)
        ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		r.key, payload, time.Now().UTC())
	return err
}

// Delete removes the stored identity. Deleting a missing record is not an error.
func (r *PostgresRepository) Delete(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE key = $1`, r.key)
	return err
}
