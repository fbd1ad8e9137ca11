// Package mediascan tells the host's media index about files the sync engine wrote or
// removed.
package mediascan

import (
	"context"
	"net/url"
)

type Scanner interface {
	Scan(ctx context.Context, locator *url.URL) error
}

// Forgetter is implemented by scanners that can drop a removed file from their index.
type Forgetter interface {
	Forget(ctx context.Context, locator *url.URL) error
}

// Nop ignores every signal.
type Nop struct{}

func (Nop) Scan(context.Context, *url.URL) error   { return nil }
func (Nop) Forget(context.Context, *url.URL) error { return nil }
