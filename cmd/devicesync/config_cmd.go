package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/unclealex/devicesync/internal/prefs"
)

func init() {
	rootCmd.AddCommand(newConfigCmd())
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or edit the sync preferences",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print every preference",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			c, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			all, err := c.Prefs().All()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, key := range prefs.Keys {
				fmt.Fprintf(out, "%s=%s\n", key, all[key])
			}
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Set a preference",
		Args:      cobra.ExactArgs(2),
		ValidArgs: prefs.Keys,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			c, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Prefs().Set(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s=%s\n", green("set"), args[0], args[1])
			return nil
		},
	})

	return configCmd
}
