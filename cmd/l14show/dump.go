package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"l14core/pkg/render"
)

func newDumpCmd(a *app) *cobra.Command {
	var links bool
	cmd := &cobra.Command{
		Use:   "dump <file-or-url>",
		Short: "Print the display list of a document.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.renderer.Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			res, err := a.renderer.Layout(cmd.Context(), doc, a.viewport())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, render.Dump(&res.Output.DisplayList))
			fmt.Fprintf(out, "document height %d\n", res.Output.DocumentHeightPx)
			if links {
				for _, l := range res.Output.LinkRegions {
					fmt.Fprintf(out, "link %d,%d %dx%d %s\n", l.X, l.Y, l.Width, l.Height, l.Href)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&links, "links", true, "also print link regions")
	return cmd
}
