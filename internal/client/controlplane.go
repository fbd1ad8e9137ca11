package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

type ControlPlaneServer struct {
	config *ControlPlaneConfig
	server *http.Server
}

func NewControlPlaneServer(config *ControlPlaneConfig, c *Client) (*ControlPlaneServer, error) {
	if _, err := addrToURL(config.Addr); err != nil {
		return nil, err
	}

	httpServer := &http.Server{
		Addr:              config.Addr,
		Handler:           SetupRoutes(c, &RouteConfig{AuthToken: config.AuthToken, RateLimit: config.RateLimit}),
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &ControlPlaneServer{config: config, server: httpServer}, nil
}

func (s *ControlPlaneServer) Start(ctx context.Context) error {
	url, _ := addrToURL(s.config.Addr)
	slog.Info("control plane start", "addr", url, "auth", s.config.AuthToken != "")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *ControlPlaneServer) Stop(ctx context.Context) error {
	slog.Info("control plane stop")
	return s.server.Shutdown(ctx)
}

// addrToURL turns a listen address into the URL clients should use.
func addrToURL(addr string) (string, error) {
	if strings.Contains(addr, "://") {
		return "", fmt.Errorf("%w: http_addr %q must be host:port", ErrInvalidConfig, addr)
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("%w: http_addr %q: %w", ErrInvalidConfig, addr, err)
	}
	if port == "" {
		return "", fmt.Errorf("%w: http_addr %q has no port", ErrInvalidConfig, addr)
	}
	if host == "" {
		host = "0.0.0.0"
	}
	return "http://" + net.JoinHostPort(host, port), nil
}
