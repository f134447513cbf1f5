// Package localstore persists carts, orders and wishlists in a single SQLite
// key/value table, one JSON document per key, the way the storefront kept them
// in browser storage.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const keyPrefix = "freshmart_"

func cartKey(userID string) string     { return keyPrefix + "cart_" + userID }
func ordersKey(userID string) string   { return keyPrefix + "orders_" + userID }
func wishlistKey(userID string) string { return keyPrefix + "wishlist_" + userID }
func seqKey(partition string) string   { return keyPrefix + "seq_" + partition }

const (
	createKVSQL = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`
	getSQL = `SELECT value FROM kv WHERE key = ?`
	putSQL = `
INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
)

type DB struct {
	db   *sql.DB
	path string
}

// Open creates the database file (and its directory) if needed.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time; read-modify-write transactions rely on it
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createKVSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &DB{db: db, path: path}, nil
}

func (d *DB) Close() error { return d.db.Close() }

func (d *DB) Path() string { return d.path }

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func get(ctx context.Context, q querier, key string) ([]byte, error) {
	var v string
	err := q.QueryRowContext(ctx, getSQL, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(v), nil
}

func put(ctx context.Context, q querier, key string, value []byte) error {
	if _, err := q.ExecContext(ctx, putSQL, key, string(value)); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// update runs fn on the current value of key inside a transaction and writes
// back whatever fn returns.
func (d *DB) update(ctx context.Context, key string, fn func(cur []byte) ([]byte, error)) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	cur, err := get(ctx, tx, key)
	if err != nil {
		return err
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	if err = put(ctx, tx, key, next); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
