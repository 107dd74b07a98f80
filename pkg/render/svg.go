package render

import (
	"fmt"
	"image"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"go.uber.org/zap"
)

func logger() *zap.Logger { return zap.L().Named("render") }

// RasterizeSVG renders SVG markup scaled to width x height.
func RasterizeSVG(xml string, width, height int, opacity uint8) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("rasterize svg: empty target %dx%d", width, height)
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(xml), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("rasterize svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(width), float64(height))

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, out, out.Bounds())
	dasher := rasterx.NewDasher(width, height, scanner)
	icon.Draw(dasher, float64(opacity)/255)
	return out, nil
}
