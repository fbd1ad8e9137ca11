// Package changelog drives the lazily loaded changelog list: every "near bottom" signal
// asks for one more page, with at most one page load in flight.
package changelog

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/unclealex/devicesync/internal/changes"
)

// PageLoader appends the next page to a changelog and reports whether it did.
type PageLoader interface {
	LoadNextChangelogPage(ctx context.Context, changelog *changes.Changelog) (bool, error)
}

type Pager struct {
	ctx       context.Context
	loader    PageLoader
	changelog *changes.Changelog
	onChanged func(*changes.Changelog)
	onError   func(error)

	loading atomic.Bool
	wg      sync.WaitGroup
}

type Option func(*Pager)

// WithOnChanged is called after a page was appended.
func WithOnChanged(fn func(*changes.Changelog)) Option {
	return func(p *Pager) { p.onChanged = fn }
}

// WithOnError is called when a page load fails.
func WithOnError(fn func(error)) Option {
	return func(p *Pager) { p.onError = fn }
}

// NewPager binds a fresh changelog to loader. Background loads use ctx.
func NewPager(ctx context.Context, loader PageLoader, opts ...Option) *Pager {
	p := &Pager{
		ctx:       ctx,
		loader:    loader,
		changelog: changes.NewChangelog(),
		onChanged: func(*changes.Changelog) {},
		onError: func(err error) {
			slog.Error("changelog page load", "error", err)
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pager) Changelog() *changes.Changelog {
	return p.changelog
}

// Loading reports whether a page load is in flight.
func (p *Pager) Loading() bool {
	return p.loading.Load()
}

// NearBottom starts loading the next page unless a load is already running, in which case
// the signal is dropped. It never blocks and reports whether a load was started.
func (p *Pager) NearBottom() bool {
	if !p.loading.CompareAndSwap(false, true) {
		return false
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		// cleared on failure too so the next signal retries
		defer p.loading.Store(false)

		loaded, err := p.loader.LoadNextChangelogPage(p.ctx, p.changelog)
		if err != nil {
			p.onError(err)
			return
		}
		if loaded {
			p.onChanged(p.changelog)
		}
	}()
	return true
}

// Wait blocks until no page load is in flight.
func (p *Pager) Wait() {
	p.wg.Wait()
}
