package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresEngine keeps one JSONB row per collection. The layout deliberately
// mirrors the file engine so data can be moved between drivers without a
// migration step.
type PostgresEngine struct {
	pool *pgxpool.Pool
}

func NewPostgresEngine(ctx context.Context, databaseURL string) (*PostgresEngine, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	_, err = pool.Exec(ctx, `
    CREATE TABLE IF NOT EXISTS collections (
      name       TEXT PRIMARY KEY,
      payload    JSONB NOT NULL DEFAULT '[]'::jsonb,
      updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )
  `)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure collections table: %w", err)
	}
	return &PostgresEngine{pool: pool}, nil
}

func (e *PostgresEngine) Load(ctx context.Context, collection string) ([]byte, error) {
	var payload []byte
	err := e.pool.QueryRow(ctx, `
    SELECT payload
    FROM collections
    WHERE name = $1
  `, collection).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (e *PostgresEngine) Save(ctx context.Context, collection string, payload []byte) error {
	_, err := e.pool.Exec(ctx, `
    INSERT INTO collections (name, payload, updated_at)
    VALUES ($1, $2, now())
    ON CONFLICT (name) DO UPDATE
    SET payload = EXCLUDED.payload, updated_at = now()
  `, collection, payload)
	return err
}

func (e *PostgresEngine) Close() error {
	e.pool.Close()
	return nil
}

// Ping exposes pool health for readiness checks.
func (e *PostgresEngine) Ping(ctx context.Context) error {
	return e.pool.Ping(ctx)
}
