package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/unclealex/devicesync/internal/prefs"
)

func init() {
	rootCmd.AddCommand(newStatusCmd())
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show when this device was last synchronised and whether changes are waiting",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			c, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()
			all, err := c.Prefs().All()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\t%s:%s\n", cyan("SERVER"), all[prefs.KeyHost], all[prefs.KeyPort])
			fmt.Fprintf(out, "%s\t%s\n", cyan("USER"), all[prefs.KeyUser])
			fmt.Fprintf(out, "%s\t%s\n", cyan("ROOT"), all[prefs.KeyRootTree])

			at, ok, err := c.LastSynchronised()
			switch {
			case err != nil:
				return err
			case ok:
				fmt.Fprintf(out, "%s\t%s (%s)\n", cyan("SYNCED"), humanize.Time(at), at.Local().Format("2006-01-02 15:04:05"))
			default:
				fmt.Fprintf(out, "%s\tnever\n", cyan("SYNCED"))
			}

			pending, err := c.PendingChanges(cmd.Context())
			switch {
			case err != nil:
				fmt.Fprintf(out, "%s\t%s\n", cyan("PENDING"), red(err.Error()))
			case pending:
				fmt.Fprintf(out, "%s\t%s\n", cyan("PENDING"), red("yes"))
			default:
				fmt.Fprintf(out, "%s\t%s\n", cyan("PENDING"), green("no"))
			}
			return nil
		},
	}
}
