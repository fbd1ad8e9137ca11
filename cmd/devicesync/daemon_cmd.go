package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/unclealex/devicesync/internal/client"
	"github.com/unclealex/devicesync/internal/version"
)

func init() {
	rootCmd.AddCommand(newDaemonCmd())
}

func newDaemonCmd() *cobra.Command {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the sync worker and the local control plane",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			slog.Info("devicesync", "version", version.Version, "revision", version.Revision, "build", version.BuildDate)

			c, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			daemon, err := client.NewDaemon(c)
			if err != nil {
				return err
			}

			defer slog.Info("Bye!")
			if err := daemon.Start(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("daemon start", "error", err)
				return err
			}
			return nil
		},
	}

	daemonCmd.Flags().StringP("http-addr", "a", client.DefaultHTTPAddr, "Address to bind the local http server")
	daemonCmd.Flags().StringP("http-token", "t", "", "Access token for the local http server")

	return daemonCmd
}
