// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);`

// SQLiteStore is a KV backed by a single SQLite database file.
type SQLiteStore struct {
	db   *sql.DB
	path string

	mu     sync.Mutex // serializes writers within this process
	closed bool
}

// OpenSQLite opens (creating if needed) the database at path. An empty path
// or ":memory:" opens a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}
	// One connection keeps :memory: databases coherent and matches SQLite's
	// single-writer model.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	initCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(initCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping state database: %w", err)
	}
	if _, err := db.ExecContext(initCtx, kvSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init state schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

func sqliteDSN(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == ":memory:" {
		return ":memory:", nil
	}
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("create state directory: %w", err)
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", nil
}

// Path returns the path the store was opened with.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Get implements KV.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.isClosed() {
		return nil, false, ErrClosed
	}
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %q: %w", key, err)
	}
	return value, true, nil
}

// Set implements KV.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	var b Batch
	b.Set(key, value)
	return s.Apply(ctx, &b)
}

// Delete implements KV.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	var b Batch
	b.Delete(key)
	return s.Apply(ctx, &b)
}

// Apply implements KV. All writes commit in one transaction or none do.
func (s *SQLiteStore) Apply(ctx context.Context, b *Batch) error {
	if b == nil || b.Len() == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin state transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	now := time.Now().Unix()
	for _, o := range b.ops {
		switch o.kind {
		case opSet:
			value := o.value
			if value == nil {
				value = []byte{}
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
				 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
				o.key, value, now)
		case opDelete:
			_, err = tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, o.key)
		}
		if err != nil {
			return fmt.Errorf("write %q: %w", o.key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit state transaction: %w", err)
	}
	return nil
}

// Close implements KV. Closing twice is a no-op.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *SQLiteStore) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
