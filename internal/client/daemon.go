package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Daemon runs the sync worker and the control plane until its context is cancelled.
type Daemon struct {
	client *Client
	cps    *ControlPlaneServer
}

func NewDaemon(c *Client) (*Daemon, error) {
	cps, err := NewControlPlaneServer(&ControlPlaneConfig{
		Addr:      c.Config().HTTPAddr,
		AuthToken: c.Config().HTTPToken,
	}, c)
	if err != nil {
		return nil, err
	}
	return &Daemon{client: c, cps: cps}, nil
}

func (d *Daemon) Start(ctx context.Context) error {
	slog.Info("daemon start", "state", d.client.Config().StateDir)

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if err := d.client.Worker().Run(egCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("sync worker: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		if err := d.cps.Start(egCtx); err != nil {
			return fmt.Errorf("failed to start control plane: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()
		slog.Info("stopping daemon")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return d.cps.Stop(shutdownCtx)
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("daemon failure", "error", err)
		return err
	}

	slog.Info("daemon stopped")
	return nil
}
