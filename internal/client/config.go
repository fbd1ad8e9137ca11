package client

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/unclealex/devicesync/internal/fetch"
	"github.com/unclealex/devicesync/internal/logging"
	"github.com/unclealex/devicesync/internal/tags"
	"github.com/unclealex/devicesync/internal/utils"
)

var (
	home, _           = os.UserHomeDir()
	DefaultStateDir   = filepath.Join(home, ".devicesync")
	DefaultConfigPath = filepath.Join(DefaultStateDir, "config.json")
	DefaultHTTPAddr   = "localhost:7939"
	DefaultRetries    = 2
)

const (
	stateFile = "state.db"
	lockFile  = "sync.lock"
	logsDir   = "logs"
)

var (
	ErrInvalidConfig = errors.New("client: invalid config")
)

// Config is the process configuration read from the config file, environment and flags.
// The sync preferences themselves (server, user, root tree) live in the state database.
type Config struct {
	Path         string        `json:"-"`
	StateDir     string        `json:"state_dir"`
	LogLevel     string        `json:"log_level"`
	HTTPTimeout  time.Duration `json:"http_timeout"`
	// HTTPRetries of zero disables retries. loadConfig starts from DefaultRetries.
	HTTPRetries  int           `json:"http_retries"`
	HTTPAddr     string        `json:"http_addr"`
	HTTPToken    string        `json:"http_token"`
	TagsCacheTTL time.Duration `json:"tags_cache_ttl"`
}

// Validate fills defaults and normalises paths.
func (c *Config) Validate() error {
	if c.StateDir == "" {
		c.StateDir = DefaultStateDir
	}
	dir, err := utils.ResolvePath(c.StateDir)
	if err != nil {
		return fmt.Errorf("%w: state_dir: %w", ErrInvalidConfig, err)
	}
	c.StateDir = dir

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	if c.HTTPTimeout < 0 {
		return fmt.Errorf("%w: http_timeout %s", ErrInvalidConfig, c.HTTPTimeout)
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = fetch.DefaultTimeout
	}
	if c.HTTPRetries < 0 {
		return fmt.Errorf("%w: http_retries %d", ErrInvalidConfig, c.HTTPRetries)
	}

	if c.HTTPAddr == "" {
		c.HTTPAddr = DefaultHTTPAddr
	}
	if _, _, err := net.SplitHostPort(c.HTTPAddr); err != nil {
		return fmt.Errorf("%w: http_addr %q: %w", ErrInvalidConfig, c.HTTPAddr, err)
	}

	if c.TagsCacheTTL == 0 {
		c.TagsCacheTTL = tags.DefaultCacheTTL
	}
	return nil
}

func (c *Config) StatePath() string { return filepath.Join(c.StateDir, stateFile) }
func (c *Config) LockPath() string  { return filepath.Join(c.StateDir, lockFile) }
func (c *Config) LogDir() string    { return filepath.Join(c.StateDir, logsDir) }
