// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package database provides the relational storage layer for Quill.

It opens a [database/sql] pool for one of two engines, selected by the URL
scheme of DATABASE_URL:

  - postgres://... or postgresql://...  PostgreSQL through the pgx stdlib driver
  - sqlite://path                       SQLite through modernc.org/sqlite

On top of the pool it offers transactions carried in the request context
([DB.Atomic]) and typed tables ([Table]) that render statements with
[query] for the active dialect.

Architecture:

  - Repositories never hold a *sql.Tx. They call [DB.Conn] with the context and
    transparently join the surrounding transaction, if any.
  - SQLite runs with a single connection, so every statement issued inside
    [DB.Atomic] must use the context passed to the callback.
*/
package database

import (
	stdctx "context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"

	"github.com/taibuivan/quill/internal/platform/constants"
	"github.com/taibuivan/quill/internal/platform/ctxkey"
	"github.com/taibuivan/quill/pkg/query"
)

// Opinionated pool settings for the Quill workload.
const (
	// maxConns is the maximum number of PostgreSQL connections in the pool.
	maxConns = 25
	// minConns keeps a warm set of connections to avoid cold-start latency.
	minConns = 5
	// maxConnLifetime ensures connections are periodically recycled.
	maxConnLifetime = 60 * time.Minute
	// maxConnIdleTime closes connections that have been idle too long.
	maxConnIdleTime = 10 * time.Minute
	// connectTimeout is the maximum time allowed to establish a new connection.
	connectTimeout = 5 * time.Second
	// pingTimeout is the maximum duration for a health check ping.
	pingTimeout = 2 * time.Second
)

const (
	postgresScheme   = "postgres://"
	postgresqlScheme = "postgresql://"
	sqliteScheme     = "sqlite://"

	// sqlitePragmas enables foreign keys (cascades), waits on a busy writer and
	// starts write transactions eagerly so read-modify-write sequences never upgrade.
	sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
)

// ErrUnsupportedURL is returned for a DATABASE_URL with an unknown scheme.
var ErrUnsupportedURL = errors.New("database: unsupported DATABASE_URL scheme")

// DBTX is the subset of database/sql used by repositories.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx stdctx.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx stdctx.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx stdctx.Context, query string, args ...any) *sql.Row
}

// DB is a connection pool bound to one SQL dialect.
type DB struct {
	pool    *sql.DB
	dialect query.Dialect
}

// New wraps an existing pool. It is used by tests that supply their own *sql.DB.
func New(pool *sql.DB, dialect query.Dialect) *DB {
	return &DB{pool: pool, dialect: dialect}
}

// Open creates and validates a connection pool for databaseURL.
//
// # Parameters
//   - context: Context for the initial connection attempt.
//   - databaseURL: postgres://..., postgresql://... or sqlite://path
//   - logger: Structured logger for pool-level events.
func Open(context stdctx.Context, databaseURL string, logger *slog.Logger) (*DB, error) {
	var (
		db  *DB
		err error
	)

	switch {
	case strings.HasPrefix(databaseURL, postgresScheme), strings.HasPrefix(databaseURL, postgresqlScheme):
		db, err = openPostgres(databaseURL)
	case strings.HasPrefix(databaseURL, sqliteScheme):
		db, err = openSQLite(strings.TrimPrefix(databaseURL, sqliteScheme))
	default:
		return nil, ErrUnsupportedURL
	}
	if err != nil {
		return nil, err
	}

	// Validate that we can actually reach the database.
	if err := db.Ping(context); err != nil {
		_ = db.pool.Close()
		return nil, err
	}

	stats := db.pool.Stats()
	logger.Info("database pool connected",
		slog.String("dialect", db.dialect.String()),
		slog.Int("max_conns", stats.MaxOpenConnections),
	)

	return db, nil
}

func openPostgres(databaseURL string) (*DB, error) {
	connConfig, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("database: invalid DSN: %w", err)
	}

	connConfig.ConnectTimeout = connectTimeout

	// Per-connection statement timeout to avoid runaway queries.
	if connConfig.RuntimeParams == nil {
		connConfig.RuntimeParams = map[string]string{}
	}
	connConfig.RuntimeParams["statement_timeout"] = strconv.Itoa(int(constants.GlobalRequestTimeout.Milliseconds()))

	pool := stdlib.OpenDB(*connConfig)
	pool.SetMaxOpenConns(maxConns)
	pool.SetMaxIdleConns(minConns)
	pool.SetConnMaxLifetime(maxConnLifetime)
	pool.SetConnMaxIdleTime(maxConnIdleTime)

	return &DB{pool: pool, dialect: query.Postgres}, nil
}

func openSQLite(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty sqlite path", ErrUnsupportedURL)
	}

	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}

	pool, err := sql.Open("sqlite", path+separator+sqlitePragmas)
	if err != nil {
		return nil, fmt.Errorf("database: failed to open sqlite: %w", err)
	}

	// One writer at a time. Transactions hold the only connection.
	pool.SetMaxOpenConns(1)

	return &DB{pool: pool, dialect: query.SQLite}, nil
}

// Dialect returns the SQL dialect of the pool.
func (db *DB) Dialect() query.Dialect {
	return db.dialect
}

// Ping verifies that the database is reachable.
func (db *DB) Ping(context stdctx.Context) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := db.pool.PingContext(pingCtx); err != nil {
		return fmt.Errorf("database: ping failed: %w", err)
	}

	return nil
}

// Close releases every connection in the pool.
func (db *DB) Close() error {
	return db.pool.Close()
}

// # Transactions

// Conn returns the transaction stored in context, or the pool when there is none.
func (db *DB) Conn(context stdctx.Context) DBTX {
	if tx, ok := context.Value(ctxkey.KeyTx).(*sql.Tx); ok {
		return tx
	}
	return db.pool
}

/*
Atomic runs fn inside one transaction.

The transaction travels in the context handed to fn, so every repository call
made with that context joins it. Nested calls reuse the outer transaction and
leave commit or rollback to the outermost caller.

Returns:
  - error: the error from fn, or a begin/commit failure
*/
func (db *DB) Atomic(context stdctx.Context, fn func(context stdctx.Context) error) error {
	if _, ok := context.Value(ctxkey.KeyTx).(*sql.Tx); ok {
		return fn(context)
	}

	return WithTx(context, db.pool, nil, func(txCtx stdctx.Context, tx *sql.Tx) error {
		return fn(withTx(txCtx, tx))
	})
}

/*
WithTx begins a transaction, runs fn with it, and then commits on success or
rolls back on error or panic. Panics are rethrown after the rollback.
*/
func WithTx(context stdctx.Context, pool *sql.DB, opts *sql.TxOptions, fn func(context stdctx.Context, tx *sql.Tx) error) (err error) {
	tx, err := pool.BeginTx(context, opts)
	if err != nil {
		return fmt.Errorf("database_begin_failed: %w", err)
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			_ = tx.Rollback()
			panic(recovered)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("database_commit_failed: %w", commitErr)
		}
	}()

	err = fn(context, tx)
	return err
}

func withTx(context stdctx.Context, tx *sql.Tx) stdctx.Context {
	return stdctx.WithValue(context, ctxkey.KeyTx, tx)
}
