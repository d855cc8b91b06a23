package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	keyToken = "token"
	keyUser  = "user"
)

// SQLiteStore is the default backend: a two-row key/value table in a local
// database file, created on first use.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := dbPath + "?_journal=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS local_session (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveSession(ctx context.Context, token string, userJSON []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save session: %w", err)
	}
	defer tx.Rollback()

	const upsert = `
		INSERT INTO local_session (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	now := time.Now().Unix()
	if _, err := tx.ExecContext(ctx, upsert, keyToken, []byte(token), now); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if _, err := tx.ExecContext(ctx, upsert, keyUser, userJSON, now); err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) LoadSession(ctx context.Context) (string, []byte, error) {
	var token []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM local_session WHERE key = ?`, keyToken).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, ErrNoSession
	}
	if err != nil {
		return "", nil, fmt.Errorf("load token: %w", err)
	}

	var userJSON []byte
	err = s.db.QueryRowContext(ctx,
		`SELECT value FROM local_session WHERE key = ?`, keyUser).Scan(&userJSON)
	if errors.Is(err, sql.ErrNoRows) {
		// Half-written sessions are treated as absent.
		return "", nil, ErrNoSession
	}
	if err != nil {
		return "", nil, fmt.Errorf("load user: %w", err)
	}

	return string(token), userJSON, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM local_session WHERE key IN (?, ?)`, keyToken, keyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
