// Package sqlite provides a SQLite-backed implementation of storage.Provider.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/akilaweerasekara/Home-Inventory/internal/storage"
)

// Ensure Provider implements storage.Provider and storage.Lister
var (
	_ storage.Provider = (*Provider)(nil)
	_ storage.Lister   = (*Provider)(nil)
)

// Provider implements storage.Provider using a single SQLite table.
//
// Several processes may open the same file. Writes are last-writer-wins per
// key; there is no versioning across processes.
type Provider struct {
	db    *sql.DB
	quota int64
}

// Option configures a Provider.
type Option func(*Provider)

// WithQuota limits the total size of all stored values in bytes.
func WithQuota(bytes int64) Option {
	return func(p *Provider) {
		p.quota = bytes
	}
}

// New creates a Provider with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string, opts ...Option) (*Provider, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas in the DSN apply to every pooled connection. busy_timeout makes
	// a connection wait for other writers instead of failing immediately.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	p := &Provider{db: db}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Close closes the database connection.
func (p *Provider) Close() error {
	return p.db.Close()
}

// Get retrieves the value stored under key.
func (p *Provider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := p.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, enforcing the quota if one is configured.
func (p *Provider) Set(ctx context.Context, key string, value []byte) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if p.quota > 0 {
		var used int64
		err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(SUM(LENGTH(value)), 0) FROM kv WHERE key != ?",
			key,
		).Scan(&used)
		if err != nil {
			return fmt.Errorf("failed to measure usage: %w", err)
		}
		if used+int64(len(value)) > p.quota {
			return storage.ErrQuotaExceeded
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Delete removes key.
func (p *Provider) Delete(ctx context.Context, key string) error {
	if _, err := p.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Keys returns every stored key with the given prefix, sorted.
func (p *Provider) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx,
		"SELECT key FROM kv WHERE substr(key, 1, ?) = ? ORDER BY key",
		len(prefix), prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate keys: %w", err)
	}
	return keys, nil
}
