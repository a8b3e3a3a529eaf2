package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"scoreapi/pkg/platform/sentinel"
)

const kvSchema = `CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresKV persists authoritative values in the kv_store table.
type PostgresKV struct {
	db *sql.DB
}

func NewPostgresKV(db *sql.DB) (*PostgresKV, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	return &PostgresKV{db: db}, nil
}

// EnsureSchema creates the kv_store table when missing.
func (p *PostgresKV) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, kvSchema); err != nil {
		return fmt.Errorf("create kv_store: %w", err)
	}
	return nil
}

func (p *PostgresKV) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := p.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select kv: %w", err)
	}
	return value, nil
}

func (p *PostgresKV) Set(ctx context.Context, key, value string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, key, value)
	if err != nil {
		return fmt.Errorf("upsert kv: %w", err)
	}
	return nil
}

func (p *PostgresKV) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *PostgresKV) Close() error {
	return p.db.Close()
}
