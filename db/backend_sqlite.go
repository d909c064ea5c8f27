package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteBackend keeps one row per collection key.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLiteBackend opens (or creates) the database at path and ensures the kv table exists.
func OpenSQLiteBackend(ctx context.Context, path string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(path))
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	backend, err := NewSQLiteBackend(ctx, sqlDB)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return backend, nil
}

// NewSQLiteBackend wraps an already opened database handle.
func NewSQLiteBackend(ctx context.Context, sqlDB *sql.DB) (*SQLiteBackend, error) {
	if sqlDB == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := sqlDB.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	if _, err := sqlDB.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &SQLiteBackend{db: sqlDB}, nil
}

func (s *SQLiteBackend) Load(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite load %s: %w", key, err)
	}
	return []byte(value), nil
}

// Save writes all entries in one SQL transaction.
func (s *SQLiteBackend) Save(ctx context.Context, entries map[string][]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for key, value := range entries {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, string(value), now)
		if err != nil {
			return fmt.Errorf("sqlite save %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite commit: %w", err)
	}
	return nil
}

func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}
