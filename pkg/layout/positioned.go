package layout

import (
	"golang.org/x/net/html"

	"l14core/pkg/css"
	"l14core/pkg/render"
)

// layoutPositionedBox lays out an absolute or fixed box against containing
// (the viewport for fixed boxes). It does not move any flow cursor.
func (le *LayoutEngine) layoutPositionedBox(el *html.Node, style *css.ComputedStyle, containing Rect, paint bool) error {
	if style.Display == css.DisplayNone {
		return nil
	}
	paint = paint && style.Visibility == css.Visible && style.Opacity != 0

	fixed := paint && style.Position == css.PositionFixed
	if fixed {
		le.fixedDepth++
		le.list.Append(render.PushFixed{})
	}
	opacityGroup := paint && style.Opacity < 255
	if opacityGroup {
		le.list.Append(render.PushOpacity{Alpha: style.Opacity})
	}
	if style.Position == css.PositionFixed {
		containing = le.viewportRect()
	}

	margin := style.Margin
	padding := style.Padding.Resolve(containing.Width)

	var replaced *size
	if isReplaced(el) {
		s, err := le.replacedOuterSize(el, style, containing.Width)
		if err != nil {
			return err
		}
		replaced = &s
	}

	var width int
	switch {
	case style.Width != nil:
		width = style.Width.Resolve(containing.Width)
	case style.Left != nil && style.Right != nil:
		width = containing.Width - style.Left.Resolve(containing.Width) - style.Right.Resolve(containing.Width)
	case replaced != nil:
		width = max(replaced.width-margin.Left-margin.Right, 0)
	default:
		w, err := le.maxContentWidth(el, style, containing.Width)
		if err != nil {
			return err
		}
		width = w
	}
	width = clampWidth(width, style, containing.Width)

	x := containing.X
	switch {
	case style.Left != nil:
		x = containing.X + style.Left.Resolve(containing.Width)
	case style.Right != nil:
		x = containing.Right() - width - style.Right.Resolve(containing.Width)
	}
	y := containing.Y
	if style.Top != nil {
		y = containing.Y + style.Top.Resolve(containing.Height)
	}
	if !style.MarginAuto.Left {
		x += margin.Left
	}
	y += margin.Top

	borderBox := Rect{X: x, Y: y, Width: width}
	contentBox := borderBox.Inset(addEdges(style.BorderWidth, padding))
	if _, err := le.layoutBoxBody(el, style, borderBox, contentBox, contentBox, padding, replaced, margin, paint); err != nil {
		return err
	}

	if opacityGroup {
		le.list.Append(render.PopOpacity{Alpha: style.Opacity})
	}
	if fixed {
		le.list.Append(render.PopFixed{})
		le.fixedDepth--
	}
	return nil
}
