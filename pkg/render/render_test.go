package render

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"l14core/pkg/css"
)

type basicFaces struct{}

func (basicFaces) Face(TextStyle) (font.Face, error) { return basicfont.Face7x13, nil }

func rgbaAt(c *Canvas, x, y int) color.RGBA {
	return c.Image().RGBAAt(x, y)
}

func near(a, b uint8) bool {
	d := int(a) - int(b)
	return d >= -3 && d <= 3
}

func TestCanvasFillRect(t *testing.T) {
	c := NewCanvas(20, 20, css.White, basicFaces{})
	if err := c.FillRect(5, 5, 10, 10, css.Color{R: 255, A: 255}); err != nil {
		t.Fatal(err)
	}
	if got := rgbaAt(c, 10, 10); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("inside pixel = %v, want red", got)
	}
	if got := rgbaAt(c, 1, 1); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("outside pixel = %v, want white", got)
	}
}

func TestCanvasOpacityGroup(t *testing.T) {
	c := NewCanvas(10, 10, css.White, basicFaces{})
	list := DisplayList{Commands: []Command{
		PushOpacity{128},
		FillRect{0, 0, 10, 10, css.Color{R: 255, A: 255}},
		PopOpacity{128},
	}}
	if err := Replay(&list, c); err != nil {
		t.Fatal(err)
	}
	got := rgbaAt(c, 5, 5)
	if got.R != 255 || !near(got.G, 127) || !near(got.B, 127) {
		t.Errorf("blended pixel = %v, want about {255 127 127}", got)
	}
}

func TestCanvasOpacityMismatch(t *testing.T) {
	c := NewCanvas(4, 4, css.White, nil)
	if err := c.PopOpacity(10); err == nil {
		t.Error("pop without push should fail")
	}
	_ = c.PushOpacity(10)
	if err := c.PopOpacity(11); err == nil {
		t.Error("mismatched pop should fail")
	}
	if err := c.PopFixed(); err == nil {
		t.Error("pop fixed without push should fail")
	}
}

func TestCanvasScrollAndFixed(t *testing.T) {
	c := NewCanvas(10, 20, css.White, nil)
	c.SetScroll(10)
	_ = c.FillRect(0, 10, 10, 2, css.Black)
	_ = c.PushFixed()
	_ = c.FillRect(0, 15, 10, 2, css.Black)
	_ = c.PopFixed()

	if got := rgbaAt(c, 5, 0); got.R != 0 {
		t.Errorf("scrolled content should paint at y=0, got %v", got)
	}
	if got := rgbaAt(c, 5, 15); got.R != 0 {
		t.Errorf("fixed content should ignore scroll, got %v", got)
	}
	if got := rgbaAt(c, 5, 10); got.R != 255 {
		t.Errorf("pixel at y=10 should stay white, got %v", got)
	}
}

func TestCanvasDrawText(t *testing.T) {
	c := NewCanvas(60, 20, css.White, basicFaces{})
	style := DefaultTextStyle()
	style.Underline = true
	if err := c.DrawText(2, 14, "Hi", style); err != nil {
		t.Fatal(err)
	}
	dark := 0
	for y := 0; y < 20; y++ {
		for x := 0; x < 60; x++ {
			if rgbaAt(c, x, y).R < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("expected text pixels")
	}

	none := NewCanvas(10, 10, css.White, nil)
	if err := none.DrawText(0, 5, "x", style); err == nil {
		t.Error("drawing text without faces should fail")
	}
}

func TestCanvasGradientAndBorder(t *testing.T) {
	c := NewCanvas(100, 10, css.White, nil)
	if err := c.FillLinearGradient(0, 0, 100, 10, css.LeftToRight, css.Black, css.White); err != nil {
		t.Fatal(err)
	}
	left, right := rgbaAt(c, 1, 5), rgbaAt(c, 98, 5)
	if left.R >= right.R {
		t.Errorf("gradient should brighten left to right: %v vs %v", left, right)
	}

	b := NewCanvas(20, 20, css.White, nil)
	_ = b.StrokeRoundedRect(0, 0, 20, 20, 0, 2, css.Black)
	if got := rgbaAt(b, 0, 10); got.R > 10 {
		t.Errorf("border pixel = %v, want black", got)
	}
	if got := rgbaAt(b, 10, 10); got.R != 255 {
		t.Errorf("interior pixel = %v, want white", got)
	}
}

func TestRasterizeSVG(t *testing.T) {
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect x="0" y="0" width="10" height="10" fill="#ff0000"/></svg>`
	img, err := RasterizeSVG(svg, 20, 20, 255)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(10, 10); got.R < 200 || got.G > 50 {
		t.Errorf("svg center pixel = %v, want red", got)
	}
	if _, err := RasterizeSVG(svg, 0, 10, 255); err == nil {
		t.Error("empty target should fail")
	}

	c := NewCanvas(20, 20, css.White, nil)
	if err := c.DrawSvg(0, 0, 20, 20, 255, svg); err != nil {
		t.Fatal(err)
	}
	if got := rgbaAt(c, 10, 10); got.G > 50 {
		t.Errorf("canvas svg pixel = %v, want red", got)
	}
}

func TestCanvasEncodePNG(t *testing.T) {
	c := NewCanvas(3, 2, css.White, nil)
	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("decoded size %v", b)
	}
}
