package main

import (
	"github.com/spf13/cobra"
	"github.com/unclealex/devicesync/internal/client"
	"github.com/unclealex/devicesync/internal/notify"
)

func init() {
	rootCmd.AddCommand(newSyncCmd())
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Apply every change made on the server since the last run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			c, err := openClient(cmd, client.WithNotifier(notify.NewTerminal(cmd.OutOrStdout())))
			if err != nil {
				return err
			}
			defer c.Close()

			_, err = c.Synchronise(cmd.Context())
			return err
		},
	}
}
