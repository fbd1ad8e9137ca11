// Package client wires the sync components together and serves them over a local control
// plane.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/unclealex/devicesync/internal/changelog"
	"github.com/unclealex/devicesync/internal/changes"
	"github.com/unclealex/devicesync/internal/db"
	"github.com/unclealex/devicesync/internal/fetch"
	"github.com/unclealex/devicesync/internal/iso8601"
	"github.com/unclealex/devicesync/internal/mediascan"
	"github.com/unclealex/devicesync/internal/notify"
	"github.com/unclealex/devicesync/internal/prefs"
	"github.com/unclealex/devicesync/internal/syncer"
	"github.com/unclealex/devicesync/internal/tags"
	"github.com/unclealex/devicesync/internal/tree"
	"github.com/unclealex/devicesync/internal/utils"
)

type Client struct {
	config    *Config
	conn      *sqlx.DB
	prefs     *prefs.Store
	catalogue *changes.Catalogue
	tags      *tags.Service
	pager     *changelog.Pager
	library   *mediascan.Library
	notes     *notify.Memory
	engine    *syncer.Engine
	worker    *syncer.Worker
}

type options struct {
	trees    tree.Opener
	notifier notify.Notifier
	dbPath   string
}

type Option func(*options)

// WithTrees replaces the local disk as the store tracks are written to.
func WithTrees(trees tree.Opener) Option {
	return func(o *options) { o.trees = trees }
}

// WithNotifier adds a notifier next to the log and the in-memory snapshot.
func WithNotifier(n notify.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithDBPath overrides the state database location, db.MemoryPath included.
func WithDBPath(path string) Option {
	return func(o *options) { o.dbPath = path }
}

// New opens the state database and builds every component. Background work started later
// (page loads, the worker) is bound to ctx.
func New(ctx context.Context, config *Config, opts ...Option) (*Client, error) {
	o := &options{trees: tree.NewOsFS(), dbPath: config.StatePath()}
	for _, opt := range opts {
		opt(o)
	}

	if err := utils.EnsureDir(config.StateDir); err != nil {
		return nil, fmt.Errorf("failed to create state dir %s: %w", config.StateDir, err)
	}
	conn, err := db.Open(db.WithPath(o.dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open state db: %w", err)
	}

	c := &Client{config: config, conn: conn, notes: notify.NewMemory()}
	if err := c.build(ctx, o); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) build(ctx context.Context, o *options) error {
	var err error
	if c.prefs, err = prefs.NewStore(c.conn); err != nil {
		return err
	}
	if c.library, err = mediascan.NewLibrary(c.conn); err != nil {
		return err
	}

	fetcher := fetch.New(c.prefs, &fetch.Options{
		Timeout: c.config.HTTPTimeout,
		Retries: c.config.HTTPRetries,
	})
	c.catalogue = changes.NewCatalogue(fetcher, c.prefs)
	c.tags = tags.NewService(fetcher, c.prefs, &tags.Options{CacheTTL: c.config.TagsCacheTTL})
	c.pager = changelog.NewPager(ctx, c.catalogue,
		changelog.WithOnChanged(func(log *changes.Changelog) {
			slog.Debug("changelog page loaded", "loaded", log.Len(), "total", log.Total())
		}),
	)

	notifiers := notify.Multi{notify.Log{}, c.notes}
	if o.notifier != nil {
		notifiers = append(notifiers, o.notifier)
	}
	c.engine = syncer.NewEngine(c.prefs, c.catalogue, o.trees,
		syncer.WithScanner(c.library),
		syncer.WithNotifier(notifiers),
		syncer.WithLockFile(c.config.LockPath()),
		syncer.WithAfterRun(func(applied int) {
			if applied > 0 {
				c.tags.Invalidate()
			}
		}),
	)
	c.worker = syncer.NewWorker(c.engine)
	return nil
}

func (c *Client) Config() *Config                { return c.config }
func (c *Client) Prefs() *prefs.Store            { return c.prefs }
func (c *Client) Tags() *tags.Service            { return c.tags }
func (c *Client) Pager() *changelog.Pager        { return c.pager }
func (c *Client) Worker() *syncer.Worker         { return c.worker }
func (c *Client) Library() *mediascan.Library    { return c.library }
func (c *Client) Notifications() notify.Snapshot { return c.notes.Snapshot() }

// Synchronise runs the engine directly, bypassing the worker queue.
func (c *Client) Synchronise(ctx context.Context) (*syncer.Result, error) {
	return c.engine.Synchronise(ctx)
}

// PendingChanges reports whether a sync would do anything: an interrupted run left an
// offset, or the server has changes since the watermark.
func (c *Client) PendingChanges(ctx context.Context) (bool, error) {
	offset, err := c.prefs.Offset()
	if err != nil {
		return false, err
	}
	if offset != 0 {
		return true, nil
	}

	user, err := c.prefs.User()
	if err != nil {
		return false, err
	}
	since, err := c.prefs.Since()
	if err != nil {
		return false, err
	}
	n, err := c.catalogue.CountChangesSince(ctx, user, since)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// LastSynchronised returns the watermark of the last completed run. ok is false when no
// run has completed.
func (c *Client) LastSynchronised() (at time.Time, ok bool, err error) {
	since, err := c.prefs.Since()
	if err != nil {
		return time.Time{}, false, err
	}
	if since == iso8601.Epoch {
		return time.Time{}, false, nil
	}
	at, err = iso8601.Parse(since)
	if err != nil {
		return time.Time{}, false, err
	}
	return at, true, nil
}

// Close waits for an in-flight page load and closes the state database.
func (c *Client) Close() error {
	c.pager.Wait()
	return c.conn.Close()
}
