package changes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/unclealex/devicesync/internal/fetch"
	"github.com/unclealex/devicesync/internal/iso8601"
	"github.com/unclealex/devicesync/internal/prefs"
	"github.com/unclealex/devicesync/internal/relpath"
)

// PageSize is the number of changelog items requested per page.
const PageSize = 10

// Fetcher is the subset of *fetch.Fetcher used by the catalogue.
type Fetcher interface {
	LoadData(ctx context.Context, sink io.Writer, segments ...string) error
	LoadJSON(ctx context.Context, v any, segments ...string) error
}

// UserSource names the user whose changelog is browsed.
type UserSource interface {
	User() (string, error)
}

type Catalogue struct {
	fetcher Fetcher
	users   UserSource
}

func NewCatalogue(fetcher Fetcher, users UserSource) *Catalogue {
	return &Catalogue{fetcher: fetcher, users: users}
}

type countResponse struct {
	Count *int `json:"count"`
}

type changesResponse struct {
	Changes *[]changeJSON `json:"changes"`
}

type changeJSON struct {
	Action       string `json:"action"`
	RelativePath string `json:"relativePath"`
}

type changelogResponse struct {
	Total     *int                `json:"total"`
	Changelog *[]changelogItemJSON `json:"changelog"`
}

type changelogItemJSON struct {
	ParentRelativePath string `json:"parentRelativePath"`
	At                 string `json:"at"`
	RelativePath       string `json:"relativePath"`
}

// CountChangesSince asks how many changes are waiting for user since the watermark.
func (c *Catalogue) CountChangesSince(ctx context.Context, user, since string) (int, error) {
	var resp countResponse
	if err := c.fetcher.LoadJSON(ctx, &resp, "changes", "count", user, since); err != nil {
		return 0, asIOError(err, "count changes for %s since %s", user, since)
	}
	if resp.Count == nil {
		return 0, asIOError(missingField("count"), "count changes for %s since %s", user, since)
	}
	return *resp.Count, nil
}

// ChangesSince lists the changes for user since the watermark, in server order.
func (c *Catalogue) ChangesSince(ctx context.Context, user, since string) ([]Change, error) {
	var resp changesResponse
	if err := c.fetcher.LoadJSON(ctx, &resp, "changes", user, since); err != nil {
		return nil, asIOError(err, "load changes for %s since %s", user, since)
	}
	if resp.Changes == nil {
		return nil, asIOError(missingField("changes"), "load changes for %s since %s", user, since)
	}

	changes := make([]Change, 0, len(*resp.Changes))
	for i, raw := range *resp.Changes {
		kind, err := ParseKind(raw.Action)
		if err != nil {
			return nil, asIOError(err, "change %d", i)
		}
		path := relpath.Parse(raw.RelativePath)
		if path.IsEmpty() {
			return nil, asIOError(fmt.Errorf("%w: empty relativePath", fetch.ErrFormat), "change %d", i)
		}
		changes = append(changes, Change{Kind: kind, Path: path, User: user})
	}
	return changes, nil
}

// CopyChange streams the track of an added change into sink.
func (c *Catalogue) CopyChange(ctx context.Context, change Change, sink io.Writer) error {
	if err := c.fetcher.LoadData(ctx, sink, change.Path.PrefixedWith("music", change.User)...); err != nil {
		return fmt.Errorf("changes: copy %s: %w", change.Path, err)
	}
	return nil
}

// LoadNextChangelogPage appends the next page to changelog, unless every item is already
// loaded. It reports whether a page was appended.
func (c *Catalogue) LoadNextChangelogPage(ctx context.Context, changelog *Changelog) (bool, error) {
	total, size := changelog.snapshot()
	if total >= 0 && size >= total {
		return false, nil
	}

	user, err := c.users.User()
	if err != nil {
		return false, err
	}

	page := size / PageSize
	var resp changelogResponse
	if err := c.fetcher.LoadJSON(ctx, &resp, "changelog", user, strconv.Itoa(page), strconv.Itoa(PageSize)); err != nil {
		return false, asIOError(err, "load changelog page %d", page)
	}
	if resp.Total == nil || resp.Changelog == nil {
		return false, asIOError(missingField("total/changelog"), "load changelog page %d", page)
	}

	items := make([]ChangelogItem, 0, len(*resp.Changelog))
	for _, raw := range *resp.Changelog {
		at, err := iso8601.Parse(raw.At)
		if err != nil {
			return false, asIOError(err, "load changelog page %d", page)
		}
		items = append(items, ChangelogItem{
			ParentPath: relpath.Parse(raw.ParentRelativePath),
			At:         at,
			Path:       relpath.Parse(raw.RelativePath),
		})
	}

	if !changelog.appendPage(size, *resp.Total, items) {
		slog.Debug("changelog page discarded, list grew during load", "page", page)
		return false, nil
	}
	return true, nil
}

func missingField(name string) error {
	return fmt.Errorf("%w: missing field %q", fetch.ErrFormat, name)
}

// asIOError folds decode failures into fetch.ErrIO so callers only need to test for one
// kind. Missing preferences are passed through untouched.
func asIOError(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, fetch.ErrIO) || errors.Is(err, prefs.ErrNotInitialised) {
		return fmt.Errorf("changes: %s: %w", what, err)
	}
	return fmt.Errorf("changes: %s: %w: %w", what, fetch.ErrIO, err)
}
