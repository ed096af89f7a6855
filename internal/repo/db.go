package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool открывает пул соединений к PostgreSQL и проверяет связь.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 4
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("new pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

// schema — таблица истории запусков.
const schema = `
CREATE TABLE IF NOT EXISTS centipede_runs (
	id          uuid PRIMARY KEY,
	configs     jsonb NOT NULL,
	paths       jsonb NOT NULL,
	status      text NOT NULL,
	stats       jsonb NOT NULL,
	results     jsonb,
	started_at  timestamptz,
	finished_at timestamptz,
	error       text,
	created_at  timestamptz NOT NULL
);
CREATE INDEX IF NOT EXISTS centipede_runs_created_at_idx ON centipede_runs (created_at DESC);
`

// EnsureSchema создаёт таблицу истории, если её нет.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
