package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresBackend keeps one JSONB row per collection key.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// OpenPostgresBackend connects with a small pool and ensures the kv table exists.
func OpenPostgresBackend(ctx context.Context, databaseURL string) (*PostgresBackend, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &PostgresBackend{pool: pool}, nil
}

func (p *PostgresBackend) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.pool.QueryRow(ctx, `SELECT value::text FROM kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres load %s: %w", key, err)
	}
	return value, nil
}

// Save upserts all entries in one transaction.
func (p *PostgresBackend) Save(ctx context.Context, entries map[string][]byte) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		for key, value := range entries {
			_, err := tx.Exec(ctx,
				`INSERT INTO kv (key, value, updated_at) VALUES ($1, $2::jsonb, now())
				 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
				key, string(value))
			if err != nil {
				return fmt.Errorf("postgres save %s: %w", key, err)
			}
		}
		return nil
	})
}

func (p *PostgresBackend) Close() error {
	p.pool.Close()
	return nil
}
