// Package dbexec is the typed database abstraction the staging pipeline
// executes every statement through: connect, run one transaction per
// table, and expose the active flavor so callers can generate
// flavor-correct DDL without reaching into the driver themselves.
package dbexec

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ldp/internal/flavor"
)

const (
	maxConns        = 8
	connectTimeout  = 10 * time.Second
	maxConnIdleTime = 5 * time.Minute
)

// DB wraps a pgx connection pool and the active warehouse flavor.
type DB struct {
	pool   *pgxpool.Pool
	flavor flavor.Flavor
}

// Connect opens a connection pool against dsn and verifies it is reachable.
func Connect(ctx context.Context, dsn string, f flavor.Flavor) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("dbexec: invalid DSN: %w", err)
	}
	cfg.MaxConns = maxConns
	cfg.MaxConnIdleTime = maxConnIdleTime
	cfg.ConnConfig.ConnectTimeout = connectTimeout

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("dbexec: failed to create pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("dbexec: ping failed: %w", err)
	}

	return &DB{pool: pool, flavor: f}, nil
}

// Close releases all pooled connections.
func (db *DB) Close() {
	db.pool.Close()
}

// Flavor returns the active warehouse flavor.
func (db *DB) Flavor() flavor.Flavor {
	return db.flavor
}

// Tx is one per-table unit of work. Every statement executed through it
// participates in the same transaction; Commit or Rollback ends it.
type Tx struct {
	tx pgx.Tx
}

// Begin starts a fresh per-table transaction.
func (db *DB) Begin(ctx context.Context) (*Tx, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("dbexec: begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Exec runs one SQL statement (DDL or a batched INSERT) inside the
// transaction.
func (t *Tx) Exec(ctx context.Context, sql string) error {
	if _, err := t.tx.Exec(ctx, sql); err != nil {
		return fmt.Errorf("dbexec: exec failed: %w", err)
	}
	return nil
}

// Commit finalizes the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("dbexec: commit failed: %w", err)
	}
	return nil
}

// Rollback aborts the transaction. Safe to call after Commit has already
// failed; pgx treats a rollback on a closed transaction as a no-op error
// that callers of Rollback are expected to ignore.
func (t *Tx) Rollback(ctx context.Context) {
	_ = t.tx.Rollback(ctx)
}
