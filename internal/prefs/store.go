package prefs

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/unclealex/devicesync/internal/db"
	"github.com/unclealex/devicesync/internal/iso8601"
)

const schema = `
CREATE TABLE IF NOT EXISTS preferences (
    name TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`

// Store keeps preferences in sqlite. Values are stored as text, and every write is its own
// committed statement, so it is visible to the next reader as soon as the call returns.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ Settings = (*Store)(nil)

func NewStore(conn *sqlx.DB) (*Store, error) {
	if err := db.Migrate(conn, schema); err != nil {
		return nil, fmt.Errorf("prefs: %w", err)
	}
	return &Store{db: conn, now: time.Now}, nil
}

func (s *Store) get(key string) (string, error) {
	var value string
	err := s.db.Get(&value, "SELECT value FROM preferences WHERE name = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("prefs: read %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) put(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO preferences (name, value, updated_at) VALUES (?, ?, ?) "+
			"ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at",
		key, value, s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("prefs: write %s: %w", key, err)
	}
	return nil
}

func (s *Store) required(key string) (string, error) {
	value, err := s.get(key)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(value) == "" {
		return "", notInitialised(key)
	}
	return value, nil
}

func (s *Store) intOr(key string, fallback int) (int, error) {
	value, err := s.get(key)
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, value)
	}
	return n, nil
}

func (s *Store) Host() (string, error) {
	return s.required(KeyHost)
}

func (s *Store) Port() (int, error) {
	return s.intOr(KeyPort, DefaultPort)
}

func (s *Store) User() (string, error) {
	return s.required(KeyUser)
}

func (s *Store) RootTree() (string, error) {
	return s.required(KeyRootTree)
}

// Since falls back to the epoch when no run has completed yet.
func (s *Store) Since() (string, error) {
	value, err := s.get(KeySince)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(value) == "" {
		return iso8601.Epoch, nil
	}
	return value, nil
}

func (s *Store) Offset() (int, error) {
	return s.intOr(KeyOffset, 0)
}

func (s *Store) SetSince(since time.Time) error {
	return s.put(KeySince, iso8601.Format(since))
}

func (s *Store) SetOffset(offset int) error {
	if offset < 0 {
		return fmt.Errorf("%w: offset %d", ErrInvalidValue, offset)
	}
	return s.put(KeyOffset, strconv.Itoa(offset))
}

func (s *Store) SetHost(host string) error {
	return s.put(KeyHost, strings.TrimSpace(host))
}

func (s *Store) SetPort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalidValue, port)
	}
	return s.put(KeyPort, strconv.Itoa(port))
}

func (s *Store) SetUser(user string) error {
	return s.put(KeyUser, strings.TrimSpace(user))
}

func (s *Store) SetRootTree(handle string) error {
	return s.put(KeyRootTree, handle)
}

// Set writes a key from its textual form, validating it the same way as the typed setters.
func (s *Store) Set(key, value string) error {
	switch key {
	case KeyHost:
		return s.SetHost(value)
	case KeyUser:
		return s.SetUser(value)
	case KeyRootTree:
		return s.SetRootTree(value)
	case KeyPort, KeyOffset:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, value)
		}
		if key == KeyPort {
			return s.SetPort(n)
		}
		return s.SetOffset(n)
	case KeySince:
		t, err := iso8601.Parse(value)
		if err != nil {
			return err
		}
		return s.SetSince(t)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// All returns the effective value of every key, defaults included. Unset required keys are empty.
func (s *Store) All() (map[string]string, error) {
	rows := []struct {
		Key   string `db:"name"`
		Value string `db:"value"`
	}{}
	if err := s.db.Select(&rows, "SELECT name, value FROM preferences"); err != nil {
		return nil, fmt.Errorf("prefs: read all: %w", err)
	}

	all := map[string]string{
		KeyPort:   strconv.Itoa(DefaultPort),
		KeySince:  iso8601.Epoch,
		KeyOffset: "0",
	}
	for _, row := range rows {
		if row.Value != "" {
			all[row.Key] = row.Value
		}
	}
	return all, nil
}
