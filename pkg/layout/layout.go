// Package layout turns a styled document into a display list and the link
// regions used for hit testing.
package layout

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"l14core/pkg/css"
	"l14core/pkg/dom"
	"l14core/pkg/images"
	"l14core/pkg/render"
)

// ErrMeasure wraps failures of the text measurer; they abort the pass.
var ErrMeasure = errors.New("layout: text measurement failed")

// TextMeasurer measures text for line breaking and box sizing.
type TextMeasurer interface {
	FontMetrics(style render.TextStyle) render.FontMetrics
	TextWidth(text string, style render.TextStyle) (int, error)
}

// ResourceLoader returns bytes that are already available. A nil slice with
// a nil error means the resource is not available; it must not block on
// the network.
type ResourceLoader interface {
	LoadBytes(ref string) ([]byte, error)
}

// Viewport is the visible area layout is computed for.
type Viewport struct {
	WidthPx  int
	HeightPx int
	// LayoutLimitPx bounds the y coordinate up to which flow content, table
	// rows and inline lines are produced. Zero means HeightPx.
	LayoutLimitPx int
}

// Rect is an integer pixel rectangle.
type Rect struct {
	X, Y, Width, Height int
}

func (r Rect) Right() int  { return r.X + r.Width }
func (r Rect) Bottom() int { return r.Y + r.Height }

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Inset shrinks r by e on every side, never below zero size.
func (r Rect) Inset(e css.Edges) Rect {
	return Rect{
		X:      r.X + e.Left,
		Y:      r.Y + e.Top,
		Width:  max(r.Width-e.Left-e.Right, 0),
		Height: max(r.Height-e.Top-e.Bottom, 0),
	}
}

// LinkHitRegion is a clickable area produced by text inside <a href>.
type LinkHitRegion struct {
	Href string
	Rect
}

// Output is the result of one layout pass.
type Output struct {
	DisplayList      render.DisplayList
	LinkRegions      []LinkHitRegion
	DocumentHeightPx int
	// CanvasBackground is the html background, else the body background;
	// nil when neither is set.
	CanvasBackground *css.Color
}

// HitTest returns the href of the topmost link region containing the point.
func (o *Output) HitTest(x, y int) (string, bool) {
	for i := len(o.LinkRegions) - 1; i >= 0; i-- {
		if o.LinkRegions[i].Contains(x, y) {
			return o.LinkRegions[i].Href, true
		}
	}
	return "", false
}

// LayoutDocument computes the display list of doc for viewport. Only a
// measurer failure returns an error; broken content degrades silently.
func LayoutDocument(doc *html.Node, styles *css.StyleComputer, measurer TextMeasurer, viewport Viewport, resources ResourceLoader) (*Output, error) {
	if resources == nil {
		resources = noResources{}
	}
	le := &LayoutEngine{
		styles:    styles,
		measurer:  measurer,
		viewport:  Viewport{WidthPx: max(viewport.WidthPx, 0), HeightPx: max(viewport.HeightPx, 0), LayoutLimitPx: viewport.LayoutLimitPx},
		resources: resources,
		images:    images.NewCache(),
		log:       zap.L().Named("layout"),
	}
	height, err := le.layoutDocument(doc)
	if err != nil {
		return nil, err
	}
	return &Output{
		DisplayList:      le.list,
		LinkRegions:      le.links,
		DocumentHeightPx: height,
		CanvasBackground: le.canvasBackground,
	}, nil
}

type noResources struct{}

func (noResources) LoadBytes(string) ([]byte, error) { return nil, nil }

// LayoutEngine holds the state of one pass. It is not reused across
// passes and not shared between goroutines.
type LayoutEngine struct {
	styles    *css.StyleComputer
	measurer  TextMeasurer
	viewport  Viewport
	resources ResourceLoader
	images    *images.Cache
	log       *zap.Logger

	list  render.DisplayList
	links []LinkHitRegion

	// positioned is the stack of containing blocks for absolute boxes;
	// the viewport is always at the bottom.
	positioned       []Rect
	fixedDepth       int
	canvasBackground *css.Color
}

func (le *LayoutEngine) viewportRect() Rect {
	return Rect{Width: le.viewport.WidthPx, Height: le.viewport.HeightPx}
}

func (le *LayoutEngine) computeStyle(el *html.Node, parent *css.ComputedStyle) css.ComputedStyle {
	return le.styles.ComputeStyleInViewport(el, parent, le.viewport.WidthPx, le.viewport.HeightPx)
}

func (le *LayoutEngine) textWidth(text string, style render.TextStyle) (int, error) {
	w, err := le.measurer.TextWidth(text, style)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrMeasure, text, err)
	}
	return w, nil
}

func (le *LayoutEngine) fontMetrics(style render.TextStyle) render.FontMetrics {
	m := le.measurer.FontMetrics(style)
	return render.FontMetrics{AscentPx: max(m.AscentPx, 1), DescentPx: max(m.DescentPx, 0)}
}

func (le *LayoutEngine) currentPositionedBlock() Rect {
	if n := len(le.positioned); n > 0 {
		return le.positioned[n-1]
	}
	return le.viewportRect()
}

// pushPositionedBlock makes the padding box of a positioned element the
// containing block of its absolute descendants. A box whose height is not
// known yet uses the viewport height.
func (le *LayoutEngine) pushPositionedBlock(borderBox Rect, border css.Edges) {
	if borderBox.Height <= 0 {
		borderBox.Height = le.viewport.HeightPx
	}
	le.positioned = append(le.positioned, borderBox.Inset(border))
}

func (le *LayoutEngine) popPositionedBlock() {
	le.positioned = le.positioned[:len(le.positioned)-1]
}

func (le *LayoutEngine) layoutDocument(doc *html.Node) (int, error) {
	root := dom.RenderRoot(doc)
	if root == nil {
		return le.viewport.HeightPx, nil
	}
	rootDefaults := css.RootDefaults()
	style := le.computeStyle(root, &rootDefaults)

	bodyStyle := style
	if dom.Tag(root) == "html" {
		if body := dom.FindFirst(root, "body"); body != nil {
			bodyStyle = le.computeStyle(body, &style)
		}
	}
	switch {
	case dom.Tag(root) == "html" && !style.BackgroundColor.IsTransparent():
		c := style.BackgroundColor
		le.canvasBackground = &c
	case !bodyStyle.BackgroundColor.IsTransparent():
		c := bodyStyle.BackgroundColor
		le.canvasBackground = &c
	}

	viewport := le.viewportRect()
	le.positioned = append(le.positioned[:0], viewport)
	cursorY := viewport.Y
	if err := le.layoutBlockBox(root, &style, &rootDefaults, viewport, &cursorY, true, nil); err != nil {
		return 0, err
	}
	return max(cursorY, le.viewport.HeightPx, 0), nil
}
