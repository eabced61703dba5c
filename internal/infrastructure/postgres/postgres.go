package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Open connects a pgx pool and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return pool, nil
}

// InitSchema creates the core tables when they do not exist yet. Intended for
// local runs; production schemas are managed by migrations outside the core.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS items (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	price      BIGINT NOT NULL CHECK (price >= 0),
	category   TEXT NOT NULL,
	stock      INTEGER NOT NULL CHECK (stock >= 0),
	exposed    BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS items_name_key ON items (LOWER(name));

CREATE TABLE IF NOT EXISTS orders (
	id         TEXT PRIMARY KEY,
	customer   TEXT NOT NULL,
	driver     TEXT NOT NULL DEFAULT '',
	address    TEXT NOT NULL,
	total      BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS order_lines (
	order_id  TEXT NOT NULL REFERENCES orders (id),
	item_id   TEXT NOT NULL,
	item_name TEXT NOT NULL,
	quantity  INTEGER NOT NULL CHECK (quantity > 0),
	PRIMARY KEY (order_id, item_id)
);

CREATE TABLE IF NOT EXISTS deliveries (
	id           TEXT PRIMARY KEY,
	driver       TEXT NOT NULL DEFAULT '',
	duration_min INTEGER NOT NULL DEFAULT 0,
	order_ids    TEXT[] NOT NULL,
	stops        TEXT[] NOT NULL,
	accepted     BOOLEAN NOT NULL DEFAULT FALSE,
	created_at   TIMESTAMPTZ NOT NULL
);
`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("postgres: init schema: %w", err)
	}
	return nil
}
