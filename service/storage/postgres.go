package storage

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

var pool *pgxpool.Pool

func InitPostgres(ctx context.Context, dsn string) error {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return errors.Wrap(err, "pgx pool")
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return errors.Wrap(err, "pgx ping")
	}
	pool = p
	return nil
}

// Pool returns the process-wide connection pool (nil before InitPostgres).
func Pool() *pgxpool.Pool {
	return pool
}

func ClosePostgres() {
	if pool != nil {
		pool.Close()
		pool = nil
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	password   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS messages (
	id          TEXT PRIMARY KEY,
	content     TEXT NOT NULL,
	sender_id   TEXT NOT NULL REFERENCES users(id),
	receiver_id TEXT NOT NULL REFERENCES users(id),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_messages_pair
	ON messages (sender_id, receiver_id, created_at);
`

// EnsureSchema applies the bootstrap DDL. Idempotent.
func EnsureSchema(ctx context.Context) error {
	if pool == nil {
		return errors.New("postgres not initialized")
	}
	_, err := pool.Exec(ctx, schema)
	return errors.Wrap(err, "ensure schema")
}
