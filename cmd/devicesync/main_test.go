package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unclealex/devicesync/internal/client"
	"github.com/unclealex/devicesync/internal/fetch"
	"github.com/unclealex/devicesync/internal/musictest"
	"github.com/unclealex/devicesync/internal/tags"
)

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*[mK]`)

func stripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

func TestLoadConfigEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DEVICESYNC_CONFIG_PATH", filepath.Join(dir, "missing.json"))
	t.Setenv("DEVICESYNC_STATE_DIR", filepath.Join(dir, "state"))
	t.Setenv("DEVICESYNC_LOG_LEVEL", "debug")
	t.Setenv("DEVICESYNC_HTTP_TIMEOUT", "45s")
	t.Setenv("DEVICESYNC_HTTP_RETRIES", "5")
	t.Setenv("DEVICESYNC_HTTP_TOKEN", "secret")

	cmd := &cobra.Command{Use: "devicesync"}
	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, filepath.Join(dir, "state"), cfg.StateDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 45*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 5, cfg.HTTPRetries)
	assert.Equal(t, "secret", cfg.HTTPToken)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DEVICESYNC_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.json"))

	cmd := &cobra.Command{Use: "devicesync"}
	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, client.DefaultStateDir, cfg.StateDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, client.DefaultRetries, cfg.HTTPRetries)
	assert.Equal(t, fetch.DefaultTimeout, cfg.HTTPTimeout)
	assert.Equal(t, client.DefaultHTTPAddr, cfg.HTTPAddr)
	assert.Equal(t, tags.DefaultCacheTTL, cfg.TagsCacheTTL)
}

func TestLoadConfigZeroRetries(t *testing.T) {
	t.Setenv("DEVICESYNC_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.json"))
	t.Setenv("DEVICESYNC_HTTP_RETRIES", "0")

	cmd := &cobra.Command{Use: "devicesync"}
	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0, cfg.HTTPRetries, "an explicit zero disables retries")
}

func TestLoadConfigJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(file, []byte(`{
	"state_dir": "`+filepath.ToSlash(filepath.Join(dir, "json-state"))+`",
	"log_level": "warn",
	"http_addr": "127.0.0.1:9000",
	"tags_cache_ttl": "1m"
}`), 0o644))

	cmd := &cobra.Command{Use: "devicesync"}
	cmd.Flags().String("config", "", "")
	require.NoError(t, cmd.Flags().Set("config", file))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, file, cfg.Path)
	assert.Equal(t, filepath.Join(dir, "json-state"), cfg.StateDir)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
	assert.Equal(t, time.Minute, cfg.TagsCacheTTL)
}

func TestLoadConfigFlagOverridesFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"log_level": "warn"}`), 0o644))

	cmd := &cobra.Command{Use: "devicesync"}
	cmd.Flags().String("config", "", "")
	cmd.Flags().String("log-level", "info", "")
	require.NoError(t, cmd.Flags().Set("config", file))
	require.NoError(t, cmd.Flags().Set("log-level", "error"))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoadConfigMalformed(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(file, []byte(`{`), 0o644))

	cmd := &cobra.Command{Use: "devicesync"}
	cmd.Flags().String("config", "", "")
	require.NoError(t, cmd.Flags().Set("config", file))

	_, err := loadConfig(cmd)
	assert.Error(t, err)
}

// runRoot executes the real command tree in-process against a private state dir.
func runRoot(t *testing.T, stateDir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DEVICESYNC_CONFIG_PATH", filepath.Join(stateDir, "missing.json"))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--state-dir", stateDir, "--log-level", "error"}, args...))
	t.Cleanup(func() {
		if logCloser != nil {
			logCloser.Close()
			logCloser = nil
		}
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stripANSI(out.String()), err
}

func TestCLI_ConfigSyncStatus(t *testing.T) {
	srv := musictest.New(t)
	host, _ := srv.Host()
	port, _ := srv.Port()
	srv.SetChanges("alex", musictest.Added("Queen/Innuendo/01.mp3"))
	srv.AddTrack("alex", "Queen/Innuendo/01.mp3", []byte("innuendo"))

	state := t.TempDir()
	music := t.TempDir()

	for _, kv := range [][2]string{
		{"host", host},
		{"port", strconv.Itoa(port)},
		{"user", "alex"},
		{"rootTree", music},
	} {
		out, err := runRoot(t, state, "config", "set", kv[0], kv[1])
		require.NoError(t, err)
		assert.Contains(t, out, "set "+kv[0]+"=")
	}

	out, err := runRoot(t, state, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "user=alex\n")
	assert.Contains(t, out, "offset=0\n")

	out, err = runRoot(t, state, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "never")
	assert.Contains(t, out, "PENDING\tyes")

	out, err = runRoot(t, state, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "Synchronising 1 of 1: Queen/Innuendo/01.mp3")
	assert.Contains(t, out, "Synchronised 1 change")

	data, err := os.ReadFile(filepath.Join(music, "Queen", "Innuendo", "01.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "innuendo", string(data))

	srv.SetChanges("alex")
	out, err = runRoot(t, state, "status")
	require.NoError(t, err)
	assert.NotContains(t, out, "never")
	assert.Contains(t, out, "PENDING\tno")
}

func TestCLI_ConfigSetRejectsUnknownKey(t *testing.T) {
	_, err := runRoot(t, t.TempDir(), "config", "set", "colour", "blue")
	assert.ErrorContains(t, err, "unknown key")
}

func TestCLI_SyncNotInitialised(t *testing.T) {
	out, err := runRoot(t, t.TempDir(), "sync")
	assert.Error(t, err)
	assert.Contains(t, out, "Synchronisation failed")
}
