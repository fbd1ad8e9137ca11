package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/unclealex/devicesync/internal/client"
	"github.com/unclealex/devicesync/internal/fetch"
	"github.com/unclealex/devicesync/internal/logging"
	"github.com/unclealex/devicesync/internal/tags"
	"github.com/unclealex/devicesync/internal/version"
)

const (
	configFileName = "config"
	envPrefix      = "DEVICESYNC"
)

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
	cyan  = color.New(color.FgHiCyan).SprintFunc()
)

var logCloser io.Closer

var rootCmd = &cobra.Command{
	Use:     "devicesync",
	Short:   "Mirror a music library onto this device",
	Version: version.Detailed(),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		level, _ := logging.ParseLevel(cfg.LogLevel)
		closer, err := logging.Setup(logging.Options{
			Dir:     cfg.LogDir(),
			Level:   level,
			Console: os.Stderr,
		})
		if err != nil {
			return err
		}
		if logCloser != nil {
			logCloser.Close()
		}
		logCloser = closer
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", client.DefaultConfigPath, "devicesync config file")
	rootCmd.PersistentFlags().StringP("state-dir", "d", client.DefaultStateDir, "Directory holding the sync state")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "Log level (debug, info, warn, error)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if logCloser != nil {
		logCloser.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig layers the config file, DEVICESYNC_* environment variables and flags.
func loadConfig(cmd *cobra.Command) (*client.Config, error) {
	v := viper.New()

	if f := cmd.Flag("config"); f != nil && f.Changed {
		v.SetConfigFile(f.Value.String())
	} else if envPath := os.Getenv(envPrefix + "_CONFIG_PATH"); envPath != "" {
		v.SetConfigFile(envPath)
	} else {
		v.AddConfigPath(client.DefaultStateDir)
		v.SetConfigName(configFileName)
		v.SetConfigType("json")
	}

	if err := v.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		var notFound viper.ConfigFileNotFoundError
		if !enoent && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config read '%s': %w", v.ConfigFileUsed(), err)
		}
	}

	for key, flag := range map[string]string{
		"state_dir":  "state-dir",
		"log_level":  "log-level",
		"http_addr":  "http-addr",
		"http_token": "http-token",
	} {
		if f := cmd.Flag(flag); f != nil {
			v.BindPFlag(key, f)
		}
	}

	v.SetDefault("state_dir", client.DefaultStateDir)
	v.SetDefault("log_level", "info")
	v.SetDefault("http_timeout", fetch.DefaultTimeout)
	v.SetDefault("http_retries", client.DefaultRetries)
	v.SetDefault("http_addr", client.DefaultHTTPAddr)
	v.SetDefault("tags_cache_ttl", tags.DefaultCacheTTL)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	return &client.Config{
		Path:         v.ConfigFileUsed(),
		StateDir:     v.GetString("state_dir"),
		LogLevel:     v.GetString("log_level"),
		HTTPTimeout:  v.GetDuration("http_timeout"),
		HTTPRetries:  v.GetInt("http_retries"),
		HTTPAddr:     v.GetString("http_addr"),
		HTTPToken:    v.GetString("http_token"),
		TagsCacheTTL: v.GetDuration("tags_cache_ttl"),
	}, nil
}

// openClient builds a client from the layered config. Callers close it.
func openClient(cmd *cobra.Command, opts ...client.Option) (*client.Client, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return client.New(cmd.Context(), cfg, opts...)
}
