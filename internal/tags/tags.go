// Package tags looks up the album artist, album and cover art of a track.
package tags

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/unclealex/devicesync/internal/fetch"
	"github.com/unclealex/devicesync/internal/prefs"
	"github.com/unclealex/devicesync/internal/relpath"
)

const (
	DefaultCacheSize = 256
	DefaultCacheTTL  = 10 * time.Minute
)

var ErrEmptyPath = errors.New("tags: empty path")

type Tags struct {
	AlbumArtist string
	Album       string
	CoverArt    *url.URL
}

// Fetcher is the subset of *fetch.Fetcher used for tag lookups.
type Fetcher interface {
	LoadJSON(ctx context.Context, v any, segments ...string) error
	LocatorOf(segments ...string) (*url.URL, error)
}

type UserSource interface {
	User() (string, error)
}

type Options struct {
	CacheSize int
	// CacheTTL of zero uses DefaultCacheTTL; a negative value disables caching.
	CacheTTL time.Duration
}

type Service struct {
	fetcher Fetcher
	users   UserSource
	cache   *expirable.LRU[string, *Tags]
}

func NewService(fetcher Fetcher, users UserSource, opts *Options) *Service {
	if opts == nil {
		opts = &Options{}
	}
	s := &Service{fetcher: fetcher, users: users}

	if opts.CacheTTL >= 0 {
		size := opts.CacheSize
		if size <= 0 {
			size = DefaultCacheSize
		}
		ttl := opts.CacheTTL
		if ttl == 0 {
			ttl = DefaultCacheTTL
		}
		s.cache = expirable.NewLRU[string, *Tags](size, nil, ttl)
	}
	return s
}

type tagsResponse struct {
	AlbumArtist string `json:"albumArtist"`
	Album       string `json:"album"`
}

// LoadTags fetches the tags of the track at path for the configured user.
func (s *Service) LoadTags(ctx context.Context, path relpath.RelativePath) (*Tags, error) {
	if path.IsEmpty() {
		return nil, ErrEmptyPath
	}
	user, err := s.users.User()
	if err != nil {
		return nil, err
	}

	key := user + "\x00" + path.String()
	if s.cache != nil {
		if tags, ok := s.cache.Get(key); ok {
			return tags, nil
		}
	}

	var resp tagsResponse
	if err := s.fetcher.LoadJSON(ctx, &resp, path.PrefixedWith("tags", user)...); err != nil {
		return nil, wrap(err, path)
	}
	coverArt, err := s.fetcher.LocatorOf(path.PrefixedWith("artwork", user)...)
	if err != nil {
		return nil, wrap(err, path)
	}

	tags := &Tags{AlbumArtist: resp.AlbumArtist, Album: resp.Album, CoverArt: coverArt}
	if s.cache != nil {
		s.cache.Add(key, tags)
	}
	return tags, nil
}

// Invalidate drops every cached lookup.
func (s *Service) Invalidate() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

func wrap(err error, path relpath.RelativePath) error {
	if errors.Is(err, fetch.ErrIO) || errors.Is(err, prefs.ErrNotInitialised) {
		return fmt.Errorf("tags: %s: %w", path, err)
	}
	return fmt.Errorf("tags: %s: %w: %w", path, fetch.ErrIO, err)
}
