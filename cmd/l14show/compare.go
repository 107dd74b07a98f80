package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"l14core/pkg/visualtest"
)

func newCompareCmd(a *app) *cobra.Command {
	var (
		opts     = visualtest.DefaultOptions()
		diffPath string
		update   bool
	)
	cmd := &cobra.Command{
		Use:   "compare <file-or-url> <reference.png>",
		Short: "Compare a rendering with a reference image.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Diff = diffPath != ""
			res, _, err := visualtest.CompareToReference(cmd.Context(), a.renderer, args[0], args[1], a.viewport(), opts, update)
			if err != nil {
				return err
			}
			if update {
				fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", args[1])
				return nil
			}
			if res.Diff != nil {
				if err := visualtest.SavePNG(res.Diff, diffPath); err != nil {
					return err
				}
			}
			pct := 0.0
			if res.TotalPixels > 0 {
				pct = float64(res.DifferentPixels) / float64(res.TotalPixels) * 100
			}
			a.log.Debug("compared",
				zap.String("location", args[0]),
				zap.Int("different", res.DifferentPixels),
				zap.Int("max_difference", res.MaxDifference))
			if !res.Match {
				return fmt.Errorf("%s differs from %s: %d/%d pixels (%.2f%%, max diff %d)",
					args[0], args[1], res.DifferentPixels, res.TotalPixels, pct, res.MaxDifference)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "match (%d pixels differ)\n", res.DifferentPixels)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.Tolerance, "tolerance", opts.Tolerance, "per-channel difference still counted as equal")
	f.IntVar(&opts.FuzzyRadius, "fuzzy", opts.FuzzyRadius, "match pixels shifted by up to this many pixels")
	f.Float64Var(&opts.MaxDifferentPercent, "max-different", opts.MaxDifferentPercent, "percentage of pixels allowed to differ")
	f.StringVar(&diffPath, "diff", "", "write a diff image here")
	f.BoolVar(&update, "update", false, "overwrite the reference with the rendering")
	return cmd
}
