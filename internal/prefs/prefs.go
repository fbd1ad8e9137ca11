// Package prefs is the typed key-value store for connection settings and sync progress.
package prefs

import (
	"errors"
	"fmt"
	"time"
)

const (
	KeyHost     = "host"
	KeyPort     = "port"
	KeyUser     = "user"
	KeySince    = "since"
	KeyOffset   = "offset"
	KeyRootTree = "rootTree"
)

const DefaultPort = 80

// Keys lists every recognised key in display order.
var Keys = []string{KeyHost, KeyPort, KeyUser, KeySince, KeyOffset, KeyRootTree}

var (
	// ErrNotInitialised is returned when a required preference has no value.
	ErrNotInitialised = errors.New("prefs: not initialised")
	ErrUnknownKey     = errors.New("prefs: unknown key")
	ErrInvalidValue   = errors.New("prefs: invalid value")
)

func notInitialised(key string) error {
	return fmt.Errorf("%w: %s has not been initialised", ErrNotInitialised, key)
}

// Preferences is what the fetcher, catalogue and engine read and write.
// host, port, user and rootTree are written by the configuration surface;
// since and offset only by the sync engine.
type Preferences interface {
	Host() (string, error)
	Port() (int, error)
	User() (string, error)
	Since() (string, error)
	Offset() (int, error)
	RootTree() (string, error)

	SetSince(since time.Time) error
	SetOffset(offset int) error
}

// Settings adds the writes owned by the configuration surface.
type Settings interface {
	Preferences
	SetHost(host string) error
	SetPort(port int) error
	SetUser(user string) error
	SetRootTree(handle string) error
}
