package layout

import (
	"golang.org/x/net/html"

	"l14core/pkg/css"
)

// floatPlacement is the margin box of a laid-out float.
type floatPlacement struct {
	side css.Float
	rect Rect
}

type clearance struct {
	left, right int
	// next is the nearest bottom of a float overlapping y; valid when hasNext.
	next    int
	hasNext bool
}

// clearanceAt returns how far floats overlapping y intrude from each side of
// containing.
func clearanceAt(floats []floatPlacement, containing Rect, y int) clearance {
	var c clearance
	for _, f := range floats {
		if f.rect.Height <= 0 || y < f.rect.Y || y >= f.rect.Bottom() {
			continue
		}
		if !c.hasNext || f.rect.Bottom() < c.next {
			c.next, c.hasNext = f.rect.Bottom(), true
		}
		switch f.side {
		case css.FloatLeft:
			c.left = max(c.left, f.rect.Right()-containing.X)
		case css.FloatRight:
			c.right = max(c.right, containing.Right()-f.rect.X)
		}
	}
	return c
}

func (c clearance) area(containing Rect) Rect {
	return Rect{
		X:      containing.X + c.left,
		Y:      containing.Y,
		Width:  max(containing.Width-c.left-c.right, 0),
		Height: containing.Height,
	}
}

// flowAreaAtY returns the horizontal band free of floats at or below startY,
// moving down past floats that leave no room at all.
func flowAreaAtY(floats []floatPlacement, containing Rect, startY int) (Rect, int) {
	return flowAreaForWidth(floats, containing, startY, 1)
}

// flowAreaAtExactY returns the free band at y without moving down.
func flowAreaAtExactY(floats []floatPlacement, containing Rect, y int) Rect {
	return clearanceAt(floats, containing, y).area(containing)
}

// flowAreaForWidth moves down from startY until the free band is at least
// required pixels wide or no float remains in the way.
func flowAreaForWidth(floats []floatPlacement, containing Rect, startY, required int) (Rect, int) {
	required = max(required, 1)
	y := startY
	for {
		c := clearanceAt(floats, containing, y)
		area := c.area(containing)
		if area.Width >= required {
			return area, y
		}
		if !c.hasNext || c.next <= y {
			return containing, y
		}
		y = c.next
	}
}

// layoutFloat places a left or right float at the first y at or below
// cursorY where its margin box fits beside earlier floats, and lays it out
// there as a block.
func (le *LayoutEngine) layoutFloat(el *html.Node, style, parentStyle *css.ComputedStyle, containing Rect, cursorY int, floats []floatPlacement, paint bool) (floatPlacement, error) {
	marginLeft := autoZero(style.Margin.Left, style.MarginAuto.Left)
	marginRight := autoZero(style.Margin.Right, style.MarginAuto.Right)

	y := cursorY
	var x, outer int
	for {
		c := clearanceAt(floats, containing, y)
		available := max(containing.Width-c.left-c.right, 0)
		width, err := le.shrinkToFitWidth(el, style, available)
		if err != nil {
			return floatPlacement{}, err
		}
		outer = marginLeft + width + marginRight
		if !c.hasNext || outer <= available {
			x = containing.X + c.left
			if style.Float == css.FloatRight {
				x = containing.Right() - c.right - outer
			}
			break
		}
		if c.next <= y {
			width, err := le.shrinkToFitWidth(el, style, containing.Width)
			if err != nil {
				return floatPlacement{}, err
			}
			outer = marginLeft + width + marginRight
			x = containing.X
			if style.Float == css.FloatRight {
				x = containing.Right() - outer
			}
			break
		}
		y = c.next
	}

	floatY := y
	if err := le.layoutBlockBox(el, style, parentStyle, Rect{X: x, Y: y, Width: outer, Height: containing.Height}, &floatY, paint, nil); err != nil {
		return floatPlacement{}, err
	}
	return floatPlacement{
		side: style.Float,
		rect: Rect{X: x, Y: y, Width: outer, Height: max(floatY-y, 0)},
	}, nil
}

// shrinkToFitWidth is the border-box width of a float or inline block:
// replaced size, explicit width, else max-content, clamped to available.
func (le *LayoutEngine) shrinkToFitWidth(el *html.Node, style *css.ComputedStyle, available int) (int, error) {
	available = max(available, 0)
	var width int
	switch {
	case isReplaced(el):
		s, err := le.replacedOuterSize(el, style, available)
		if err != nil {
			return 0, err
		}
		width = max(s.width-style.Margin.Left-style.Margin.Right, 0)
	case style.Width != nil:
		width = max(style.Width.Resolve(available), 0)
	default:
		w, err := le.maxContentWidth(el, style, available)
		if err != nil {
			return 0, err
		}
		width = min(w, available)
	}
	return clampWidth(width, style, available), nil
}
