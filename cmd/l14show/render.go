package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"l14core/pkg/visualtest"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		output  string
		scrollY int
	)
	cmd := &cobra.Command{
		Use:   "render <file-or-url>",
		Short: "Render a document to a PNG of the viewport.",
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
			img, err := a.renderer.Paint(res, scrollY)
			if err != nil {
				return err
			}
			if err := visualtest.SavePNG(img, output); err != nil {
				return err
			}
			a.log.Info("rendered",
				zap.String("location", args[0]),
				zap.String("output", output),
				zap.Int("document_height", res.Output.DocumentHeightPx))
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "output.png", "PNG file to write")
	cmd.Flags().IntVar(&scrollY, "scroll", 0, "scroll offset in pixels")
	return cmd
}

func newBatchCmd(a *app) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "batch <file-or-url>...",
		Short: "Render several documents concurrently into a directory.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(a.cfg.Fetch.Concurrency)
			outputs := make([]string, len(args))
			for i, location := range args {
				outputs[i] = filepath.Join(outDir, fmt.Sprintf("%03d-%s.png", i, outputName(location)))
				g.Go(func() error {
					if err := visualtest.RenderToPNG(ctx, a.renderer, location, outputs[i], a.viewport()); err != nil {
						return fmt.Errorf("%s: %w", location, err)
					}
					a.log.Debug("rendered", zap.String("location", location), zap.String("output", outputs[i]))
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			for _, out := range outputs {
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out-dir", "out", "directory for the PNG files")
	return cmd
}

// outputName turns a file path or URL into a file name stem.
func outputName(location string) string {
	base := location
	if i := strings.Index(base, "://"); i >= 0 {
		base = base[i+3:]
	}
	name := filepath.Base(strings.TrimSuffix(base, "/"))
	if name == "." || name == string(filepath.Separator) {
		name = ""
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "page"
	}
	return b.String()
}
