package mediascan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/unclealex/devicesync/internal/db"
)

const schema = `
CREATE TABLE IF NOT EXISTS media_library (
    locator TEXT PRIMARY KEY,
    first_scanned_at TEXT NOT NULL,
    last_scanned_at TEXT NOT NULL,
    scans INTEGER NOT NULL DEFAULT 1
);
`

// Entry is a file known to the library.
type Entry struct {
	Locator        string
	FirstScannedAt time.Time
	LastScannedAt  time.Time
	Scans          int
}

type entryRow struct {
	Locator        string `db:"locator"`
	FirstScannedAt string `db:"first_scanned_at"`
	LastScannedAt  string `db:"last_scanned_at"`
	Scans          int    `db:"scans"`
}

// Library journals scanned files in sqlite.
type Library struct {
	db  *sqlx.DB
	now func() time.Time
}

var (
	_ Scanner   = (*Library)(nil)
	_ Forgetter = (*Library)(nil)
)

func NewLibrary(conn *sqlx.DB) (*Library, error) {
	if err := db.Migrate(conn, schema); err != nil {
		return nil, fmt.Errorf("mediascan: %w", err)
	}
	return &Library{db: conn, now: time.Now}, nil
}

func (l *Library) Scan(ctx context.Context, locator *url.URL) error {
	now := l.now().UTC().Format(time.RFC3339Nano)
	_, err := l.db.ExecContext(ctx,
		"INSERT INTO media_library (locator, first_scanned_at, last_scanned_at) VALUES (?, ?, ?) "+
			"ON CONFLICT(locator) DO UPDATE SET last_scanned_at = excluded.last_scanned_at, scans = scans + 1",
		locator.String(), now, now,
	)
	if err != nil {
		return fmt.Errorf("mediascan: scan %s: %w", locator, err)
	}
	return nil
}

func (l *Library) Forget(ctx context.Context, locator *url.URL) error {
	if _, err := l.db.ExecContext(ctx, "DELETE FROM media_library WHERE locator = ?", locator.String()); err != nil {
		return fmt.Errorf("mediascan: forget %s: %w", locator, err)
	}
	return nil
}

// Lookup returns nil when the locator is unknown.
func (l *Library) Lookup(ctx context.Context, locator *url.URL) (*Entry, error) {
	var row entryRow
	err := l.db.GetContext(ctx, &row,
		"SELECT locator, first_scanned_at, last_scanned_at, scans FROM media_library WHERE locator = ?",
		locator.String(),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mediascan: lookup %s: %w", locator, err)
	}
	return row.entry()
}

func (l *Library) Count(ctx context.Context) (int, error) {
	var n int
	if err := l.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM media_library"); err != nil {
		return 0, fmt.Errorf("mediascan: count: %w", err)
	}
	return n, nil
}

func (r entryRow) entry() (*Entry, error) {
	first, err := time.Parse(time.RFC3339Nano, r.FirstScannedAt)
	if err != nil {
		return nil, fmt.Errorf("mediascan: %s: %w", r.Locator, err)
	}
	last, err := time.Parse(time.RFC3339Nano, r.LastScannedAt)
	if err != nil {
		return nil, fmt.Errorf("mediascan: %s: %w", r.Locator, err)
	}
	return &Entry{Locator: r.Locator, FirstScannedAt: first, LastScannedAt: last, Scans: r.Scans}, nil
}
