// Package sqlstore keeps session records in a SQL table.
//
// The statements are written for SQLite: "?" placeholders, a BLOB value column
// and the INSERT ... ON CONFLICT upsert. The table name is fixed at construction.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jrsteele09/go-commerce-session/session"
)

var _ session.Storage = (*SQLStore)(nil)

// DefaultTable is the table used when none is configured.
const DefaultTable = "session_store"

var validTableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLStore stores key/value pairs in a single table.
type SQLStore struct {
	db    *sql.DB
	table string

	nowTime func() time.Time
}

// New creates a SQLStore using table (DefaultTable when empty).
func New(db *sql.DB, table string) (*SQLStore, error) {
	if db == nil {
		return nil, errors.New("[sqlstore.New] db is required")
	}
	if table == "" {
		table = DefaultTable
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("[sqlstore.New] invalid table name %q", table)
	}
	return &SQLStore{db: db, table: table, nowTime: time.Now}, nil
}

// EnsureSchema creates the table if it does not exist.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value BLOB NOT NULL, updated_at INTEGER NOT NULL)`, s.table)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("[SQLStore.EnsureSchema] %w", err)
	}
	return nil
}

// Get retrieves the value for key.
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = ?`, s.table)
	var data []byte
	if err := s.db.QueryRowContext(ctx, query, key).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("[SQLStore.Get] %w", err)
	}
	return data, true, nil
}

// Set upserts the value for key.
func (s *SQLStore) Set(ctx context.Context, key string, data []byte) error {
	query := fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`, s.table)
	if _, err := s.db.ExecContext(ctx, query, key, data, s.nowTime().UnixMilli()); err != nil {
		return fmt.Errorf("[SQLStore.Set] %w", err)
	}
	return nil
}

// Delete removes key.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE key = ?`, s.table)
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("[SQLStore.Delete] %w", err)
	}
	return nil
}
