// Package changes talks to the server's change catalogue: which tracks were added or
// removed since a watermark, the track bytes themselves, and the paged changelog.
package changes

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/unclealex/devicesync/internal/relpath"
)

type Kind uint8

const (
	Added Kind = iota
	Removed
)

var kindNames = []string{"ADDED", "REMOVED"}

var ErrUnknownAction = errors.New("changes: unknown action")

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind is case-insensitive, the wire sends "added" and "removed".
func ParseKind(action string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(action)) {
	case "ADDED":
		return Added, nil
	case "REMOVED":
		return Removed, nil
	default:
		return 0, fmt.Errorf("%w %q", ErrUnknownAction, action)
	}
}

// Change is a server instruction to add or remove one track.
type Change struct {
	Kind Kind
	Path relpath.RelativePath
	User string
}

func (c Change) String() string {
	return fmt.Sprintf("%s %s", c.Kind, c.Path)
}

// ChangelogItem is one line of the changelog shown to the user.
type ChangelogItem struct {
	ParentPath relpath.RelativePath
	At         time.Time
	Path       relpath.RelativePath
}
