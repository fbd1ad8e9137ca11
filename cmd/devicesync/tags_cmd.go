package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/unclealex/devicesync/internal/relpath"
)

func init() {
	rootCmd.AddCommand(newTagsCmd())
}

func newTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags <path>",
		Short: "Show the album tags of a track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			c, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			t, err := c.Tags().LoadTags(cmd.Context(), relpath.Parse(args[0]))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\t%s\n", cyan("ARTIST"), t.AlbumArtist)
			fmt.Fprintf(out, "%s\t%s\n", cyan("ALBUM"), t.Album)
			if t.CoverArt != nil {
				fmt.Fprintf(out, "%s\t%s\n", cyan("COVER"), t.CoverArt)
			}
			return nil
		},
	}
}
