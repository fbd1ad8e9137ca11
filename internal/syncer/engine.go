// Package syncer applies the server's change list to the local tree. A run can stop at any
// change; the index of that change is persisted and the next run resumes from it.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/unclealex/devicesync/internal/changes"
	"github.com/unclealex/devicesync/internal/iso8601"
	"github.com/unclealex/devicesync/internal/mediascan"
	"github.com/unclealex/devicesync/internal/notify"
	"github.com/unclealex/devicesync/internal/prefs"
	"github.com/unclealex/devicesync/internal/tree"
)

// Catalogue is the part of *changes.Catalogue the engine uses.
type Catalogue interface {
	ChangesSince(ctx context.Context, user, since string) ([]changes.Change, error)
	CopyChange(ctx context.Context, change changes.Change, sink io.Writer) error
}

// Result describes a run that got as far as listing changes.
type Result struct {
	Total   int
	Skipped int
	Applied int
	// Since is the watermark written by a completed run.
	Since time.Time
}

type Engine struct {
	prefs     prefs.Preferences
	catalogue Catalogue
	trees     tree.Opener
	scanner   mediascan.Scanner
	notifier  notify.Notifier
	lock      *runLock
	now       func() time.Time
	afterRun  func(applied int)
}

type Option func(*Engine)

func WithScanner(s mediascan.Scanner) Option {
	return func(e *Engine) { e.scanner = s }
}

func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithLockFile makes every run hold an exclusive lock on path.
func WithLockFile(path string) Option {
	return func(e *Engine) { e.lock = newRunLock(path) }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithAfterRun is called after every completed run with the number of changes applied.
func WithAfterRun(fn func(applied int)) Option {
	return func(e *Engine) { e.afterRun = fn }
}

func NewEngine(p prefs.Preferences, catalogue Catalogue, trees tree.Opener, opts ...Option) *Engine {
	e := &Engine{
		prefs:     p,
		catalogue: catalogue,
		trees:     trees,
		scanner:   mediascan.Nop{},
		notifier:  notify.Log{},
		now:       time.Now,
		afterRun:  func(int) {},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Synchronise performs one run. Any failure is logged, shown as a clearable notification
// and returned.
func (e *Engine) Synchronise(ctx context.Context) (*Result, error) {
	e.notifier.InitialiseOngoing(notify.MsgStart{})

	res, err := e.locked(ctx)
	if err != nil {
		slog.Error("sync", "error", err)
		e.notifier.ShowClearable(notify.MsgFailure{Err: err})
		return res, err
	}
	e.afterRun(res.Applied)
	return res, nil
}

func (e *Engine) locked(ctx context.Context) (*Result, error) {
	if e.lock == nil {
		return e.run(ctx)
	}
	if err := e.lock.acquire(); err != nil {
		return nil, err
	}
	defer e.lock.release()
	return e.run(ctx)
}

func (e *Engine) run(ctx context.Context) (*Result, error) {
	// captured before any I/O so changes made on the server during the run are seen next time
	now := e.now()

	handle, err := e.prefs.RootTree()
	if err != nil {
		return nil, err
	}
	since, err := e.prefs.Since()
	if err != nil {
		return nil, err
	}
	user, err := e.prefs.User()
	if err != nil {
		return nil, err
	}
	offset, err := e.prefs.Offset()
	if err != nil {
		return nil, err
	}
	root, err := e.trees.Open(handle)
	if err != nil {
		return nil, fmt.Errorf("syncer: root tree: %w", err)
	}

	list, err := e.catalogue.ChangesSince(ctx, user, since)
	if err != nil {
		return nil, err
	}
	n := len(list)
	res := &Result{Total: n}
	slog.Info("sync start", "user", user, "since", since, "changes", n, "offset", offset)

	for i, change := range list {
		if i < offset {
			res.Skipped++
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, e.fail(i, err)
		}

		e.notifier.ShowOngoing(notify.MsgProgress{Index: i, Total: n, Path: change.Path.String()})
		switch change.Kind {
		case changes.Added:
			err = e.add(ctx, root, change)
		case changes.Removed:
			err = e.remove(ctx, root, change)
		default:
			err = fmt.Errorf("%w %s", changes.ErrUnknownAction, change.Kind)
		}
		if err != nil {
			return res, e.fail(i, fmt.Errorf("syncer: %s: %w", change, err))
		}
		res.Applied++
	}

	if err := e.prefs.SetSince(now); err != nil {
		return res, err
	}
	res.Since = now.UTC()
	e.notifier.ShowClearable(notify.MsgSuccess{Count: n})
	if err := e.prefs.SetOffset(0); err != nil {
		return res, err
	}
	slog.Info("sync done", "applied", res.Applied, "skipped", res.Skipped, "since", iso8601.Format(now))
	return res, nil
}

// fail records k as the change to resume from.
func (e *Engine) fail(k int, err error) error {
	if setErr := e.prefs.SetOffset(k); setErr != nil {
		return errors.Join(err, setErr)
	}
	return err
}

func (e *Engine) add(ctx context.Context, root tree.Node, change changes.Change) error {
	dir := root
	for _, segment := range change.Path.Parent().Segments() {
		next, err := findDirFold(dir, segment)
		if err != nil {
			return err
		}
		if next == nil {
			if next, err = dir.CreateDirectory(segment); err != nil {
				return err
			}
		}
		dir = next
	}

	name := change.Path.Name()
	if existing, err := dir.FindChild(name); err != nil {
		return err
	} else if existing != nil {
		slog.Debug("sync replace", "path", change.Path)
	}

	tmp, err := dir.CreateFile(partName(name), tree.MimeAudio)
	if err != nil {
		return err
	}
	if err := e.copyInto(ctx, tmp, change); err != nil {
		discardPart(tmp, change)
		return err
	}
	file, err := tmp.Rename(name)
	if err != nil {
		discardPart(tmp, change)
		return err
	}

	if err := e.scanner.Scan(ctx, file.Locator()); err != nil {
		slog.Warn("media scan", "locator", file.Locator(), "error", err)
	}
	slog.Debug("sync added", "path", change.Path)
	return nil
}

func (e *Engine) copyInto(ctx context.Context, file tree.Node, change changes.Change) error {
	w, err := file.OpenWriter()
	if err != nil {
		return err
	}
	copyErr := e.catalogue.CopyChange(ctx, change, w)
	closeErr := w.Close()
	return errors.Join(copyErr, closeErr)
}

func (e *Engine) remove(ctx context.Context, root tree.Node, change changes.Change) error {
	node := root
	for _, segment := range change.Path.Segments() {
		next, err := node.FindChild(segment)
		if err != nil {
			return err
		}
		if next == nil {
			slog.Debug("sync remove missing", "path", change.Path)
			return nil
		}
		node = next
	}

	locator := node.Locator()
	if err := node.Delete(); err != nil {
		return err
	}
	if f, ok := e.scanner.(mediascan.Forgetter); ok {
		if err := f.Forget(ctx, locator); err != nil {
			slog.Warn("media forget", "locator", locator, "error", err)
		}
	}

	for dir := node.Parent(); dir != nil && dir.Parent() != nil; dir = dir.Parent() {
		children, err := dir.Children()
		if err != nil {
			return err
		}
		if len(children) > 0 {
			break
		}
		if err := dir.Delete(); err != nil {
			return err
		}
	}
	slog.Debug("sync removed", "path", change.Path)
	return nil
}

// findDirFold returns the first directory in listing order whose name matches name
// ignoring case, or nil.
func findDirFold(dir tree.Node, name string) (tree.Node, error) {
	children, err := dir.Children()
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		if child.IsDir() && strings.EqualFold(child.Name(), name) {
			return child, nil
		}
	}
	return nil, nil
}

// discardPart deletes a temp file that will never be renamed into place.
func discardPart(tmp tree.Node, change changes.Change) {
	if err := tmp.Delete(); err != nil {
		slog.Warn("sync remove partial file", "path", change.Path, "error", err)
	}
}

func partName(name string) string {
	return "." + name + ".part"
}
