package render

import (
	"errors"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"

	"l14core/pkg/css"
)

// FaceSource supplies font faces for text styles. text.Measurer implements
// it so painting and measuring share the same faces.
type FaceSource interface {
	Face(style TextStyle) (font.Face, error)
}

type layer struct {
	im    *image.RGBA
	dc    *gg.Context
	alpha uint8
}

// Canvas is a Painter backed by gg. Opacity groups are painted into
// offscreen layers and composited when the group is popped.
type Canvas struct {
	width, height int
	faces         FaceSource
	layers        []*layer
	scrollY       int
	fixedDepth    int
}

var _ Painter = (*Canvas)(nil)

// NewCanvas creates a canvas cleared to background.
func NewCanvas(width, height int, background css.Color, faces FaceSource) *Canvas {
	width, height = max(width, 1), max(height, 1)
	c := &Canvas{width: width, height: height, faces: faces}
	base := c.newLayer(255)
	base.dc.SetColor(background)
	base.dc.Clear()
	c.layers = []*layer{base}
	return c
}

// SetScroll moves page content up by y pixels; fixed content stays put.
func (c *Canvas) SetScroll(y int) { c.scrollY = max(y, 0) }

func (c *Canvas) newLayer(alpha uint8) *layer {
	im := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	return &layer{im: im, dc: gg.NewContextForRGBA(im), alpha: alpha}
}

func (c *Canvas) top() *layer { return c.layers[len(c.layers)-1] }

func (c *Canvas) y(y int) float64 {
	if c.fixedDepth > 0 {
		return float64(y)
	}
	return float64(y - c.scrollY)
}

func (c *Canvas) FillRect(x, y, width, height int, col css.Color) error {
	if width <= 0 || height <= 0 || col.IsTransparent() {
		return nil
	}
	dc := c.top().dc
	dc.SetColor(col)
	dc.DrawRectangle(float64(x), c.y(y), float64(width), float64(height))
	dc.Fill()
	return nil
}

func (c *Canvas) FillRoundedRect(x, y, width, height, radius int, col css.Color) error {
	if width <= 0 || height <= 0 || col.IsTransparent() {
		return nil
	}
	dc := c.top().dc
	dc.SetColor(col)
	r := math.Min(float64(radius), math.Min(float64(width), float64(height))/2)
	dc.DrawRoundedRectangle(float64(x), c.y(y), float64(width), float64(height), r)
	dc.Fill()
	return nil
}

// StrokeRoundedRect draws the border inside the border box, so the stroke is
// centered half a border width in from the outer edge.
func (c *Canvas) StrokeRoundedRect(x, y, width, height, radius, borderWidth int, col css.Color) error {
	if width <= 0 || height <= 0 || borderWidth <= 0 || col.IsTransparent() {
		return nil
	}
	dc := c.top().dc
	dc.SetColor(col)
	dc.SetLineWidth(float64(borderWidth))
	half := float64(borderWidth) / 2
	bx, by := float64(x)+half, c.y(y)+half
	bw, bh := float64(width)-float64(borderWidth), float64(height)-float64(borderWidth)
	if bw < 0 || bh < 0 {
		dc.DrawRectangle(float64(x), c.y(y), float64(width), float64(height))
		dc.Fill()
		return nil
	}
	if radius > 0 {
		r := math.Max(0, math.Min(float64(radius)-half, math.Min(bw, bh)/2))
		dc.DrawRoundedRectangle(bx, by, bw, bh, r)
	} else {
		dc.DrawRectangle(bx, by, bw, bh)
	}
	dc.Stroke()
	return nil
}

func (c *Canvas) DrawText(x, y int, text string, style TextStyle) error {
	if text == "" || style.Color.IsTransparent() {
		return nil
	}
	if c.faces == nil {
		return errors.New("canvas has no font faces")
	}
	face, err := c.faces.Face(style)
	if err != nil {
		return err
	}
	dc := c.top().dc
	dc.SetFontFace(face)
	dc.SetColor(style.Color)

	fx, fy := float64(x), c.y(y)
	width := 0.0
	if style.LetterSpacingPx == 0 {
		dc.DrawString(text, fx, fy)
		width, _ = dc.MeasureString(text)
	} else {
		for _, r := range text {
			s := string(r)
			dc.DrawString(s, fx+width, fy)
			w, _ := dc.MeasureString(s)
			width += w + float64(style.LetterSpacingPx)
		}
	}

	if style.Underline {
		size := float64(style.FontSizePx)
		thickness := math.Max(size/12.0, 1)
		dc.SetLineWidth(thickness)
		underlineY := fy + size*0.1
		dc.DrawLine(fx, underlineY, fx+width, underlineY)
		dc.Stroke()
	}
	return nil
}

func (c *Canvas) DrawImage(x, y, width, height int, opacity uint8, img image.Image) error {
	if img == nil || width <= 0 || height <= 0 || opacity == 0 {
		return nil
	}
	dst := c.top().im
	rect := image.Rect(x, int(c.y(y)), x+width, int(c.y(y))+height)
	if opacity == 255 {
		xdraw.BiLinear.Scale(dst, rect, img, img.Bounds(), xdraw.Over, nil)
		return nil
	}
	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	xdraw.DrawMask(dst, rect, scaled, image.Point{}, image.NewUniform(color.Alpha{A: opacity}), image.Point{}, xdraw.Over)
	return nil
}

func (c *Canvas) DrawSvg(x, y, width, height int, opacity uint8, xml string) error {
	if width <= 0 || height <= 0 || opacity == 0 {
		return nil
	}
	raster, err := RasterizeSVG(xml, width, height, opacity)
	if err != nil {
		logger().Debug("skipping unreadable svg")
		return nil
	}
	dst := c.top().im
	top := int(c.y(y))
	xdraw.Draw(dst, image.Rect(x, top, x+width, top+height), raster, image.Point{}, xdraw.Over)
	return nil
}

func (c *Canvas) FillLinearGradient(x, y, width, height int, dir css.GradientDirection, start, end css.Color) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	fx, fy := float64(x), c.y(y)
	fw, fh := float64(width), float64(height)
	var x0, y0, x1, y1 float64
	switch dir {
	case css.BottomToTop:
		x0, y0, x1, y1 = fx, fy+fh, fx, fy
	case css.LeftToRight:
		x0, y0, x1, y1 = fx, fy, fx+fw, fy
	case css.RightToLeft:
		x0, y0, x1, y1 = fx+fw, fy, fx, fy
	default:
		x0, y0, x1, y1 = fx, fy, fx, fy+fh
	}
	grad := gg.NewLinearGradient(x0, y0, x1, y1)
	grad.AddColorStop(0, start)
	grad.AddColorStop(1, end)

	dc := c.top().dc
	dc.SetFillStyle(grad)
	dc.DrawRectangle(fx, fy, fw, fh)
	dc.Fill()
	dc.SetColor(css.Black)
	return nil
}

func (c *Canvas) PushOpacity(alpha uint8) error {
	c.layers = append(c.layers, c.newLayer(alpha))
	return nil
}

func (c *Canvas) PopOpacity(alpha uint8) error {
	if len(c.layers) < 2 {
		return errors.New("pop opacity without push")
	}
	group := c.top()
	if group.alpha != alpha {
		return errors.New("pop opacity does not match push")
	}
	c.layers = c.layers[:len(c.layers)-1]
	dst := c.top().im
	xdraw.DrawMask(dst, dst.Bounds(), group.im, image.Point{}, image.NewUniform(color.Alpha{A: alpha}), image.Point{}, xdraw.Over)
	return nil
}

func (c *Canvas) PushFixed() error {
	c.fixedDepth++
	return nil
}

func (c *Canvas) PopFixed() error {
	if c.fixedDepth == 0 {
		return errors.New("pop fixed without push")
	}
	c.fixedDepth--
	return nil
}

// Image returns the composited base layer.
func (c *Canvas) Image() *image.RGBA { return c.layers[0].im }

// SavePNG writes the canvas to a PNG file.
func (c *Canvas) SavePNG(filename string) error {
	return c.layers[0].dc.SavePNG(filename)
}

// EncodePNG writes the canvas as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return c.layers[0].dc.EncodePNG(w)
}
