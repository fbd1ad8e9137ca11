package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/unclealex/devicesync/internal/iso8601"
)

func init() {
	rootCmd.AddCommand(newChangelogCmd())
}

func newChangelogCmd() *cobra.Command {
	var pages int

	cmd := &cobra.Command{
		Use:   "changelog",
		Short: "List recently changed tracks on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			c, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			pager := c.Pager()
			log := pager.Changelog()
			for range pages {
				before := log.Len()
				if !pager.NearBottom() {
					break
				}
				pager.Wait()
				if log.Len() == before || !log.HasMore() {
					break
				}
			}
			if log.Total() < 0 {
				return errors.New("changelog could not be loaded")
			}

			out := cmd.OutOrStdout()
			for _, item := range log.Items() {
				fmt.Fprintf(out, "%s\t%s\n", cyan(iso8601.Format(item.At)), item.Path)
			}
			fmt.Fprintf(out, "%d of %d\n", log.Len(), log.Total())
			return nil
		},
	}

	cmd.Flags().IntVarP(&pages, "pages", "p", 1, "Number of pages to load")
	return cmd
}
