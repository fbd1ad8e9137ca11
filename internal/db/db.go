// Package db opens the sqlite database holding the client's persistent state.
package db

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/unclealex/devicesync/internal/utils"
)

const MemoryPath = ":memory:"

const defaultPragmas = `
PRAGMA journal_mode=WAL;
PRAGMA busy_timeout=5000;
PRAGMA synchronous=FULL;
PRAGMA foreign_keys=ON;
`

type options struct {
	path         string
	pragmas      string
	maxOpenConns int
}

// Option configures Open.
type Option func(*options)

// WithPath sets the database file. The default is an in-memory database.
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithPragmas replaces the default pragma block.
func WithPragmas(pragmas string) Option {
	return func(o *options) {
		o.pragmas = pragmas
	}
}

// WithMaxOpenConns caps the pool. In-memory databases are always capped to one
// connection since each connection would otherwise see its own database.
func WithMaxOpenConns(n int) Option {
	return func(o *options) {
		o.maxOpenConns = n
	}
}

// Open connects to the database and applies the pragmas.
// synchronous=FULL makes every committed write durable before the call returns.
func Open(opts ...Option) (*sqlx.DB, error) {
	cfg := &options{
		path:    MemoryPath,
		pragmas: defaultPragmas,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	dsn := MemoryPath
	if cfg.path != MemoryPath {
		if err := utils.EnsureParent(cfg.path); err != nil {
			return nil, fmt.Errorf("db: ensure parent: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_txlock=immediate&mode=rwc", cfg.path)
	} else {
		cfg.maxOpenConns = 1
	}

	slog.Debug("db open", "driver", driverID, "path", cfg.path)
	conn, err := sqlx.Connect(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("db: connect %s: %w", cfg.path, err)
	}
	if cfg.maxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.maxOpenConns)
	}

	if _, err := conn.Exec(cfg.pragmas); err != nil {
		conn.Close()
		return nil, fmt.Errorf("db: pragmas: %w", err)
	}
	return conn, nil
}

// Migrate runs an idempotent schema (CREATE ... IF NOT EXISTS statements).
func Migrate(conn *sqlx.DB, schema string) error {
	if _, err := conn.Exec(schema); err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}
	return nil
}
