package layout

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"l14core/pkg/css"
	"l14core/pkg/dom"
	"l14core/pkg/render"
)

type size struct {
	width, height int
}

// layoutBlockBox lays out el as a block in containing, starting at
// *cursorY, and advances *cursorY past its bottom margin. flowOverride, when
// set, narrows the area the box's own flow content may use (floats).
func (le *LayoutEngine) layoutBlockBox(el *html.Node, style, parentStyle *css.ComputedStyle, containing Rect, cursorY *int, paint bool, flowOverride *Rect) error {
	if style.Display == css.DisplayNone {
		return nil
	}
	paint = paint && style.Visibility == css.Visible && style.Opacity != 0
	opacityGroup := paint && style.Opacity < 255
	if opacityGroup {
		le.list.Append(render.PushOpacity{Alpha: style.Opacity})
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

	marginLeft, marginRight := autoZero(margin.Left, style.MarginAuto.Left), autoZero(margin.Right, style.MarginAuto.Right)
	available := max(containing.Width-marginLeft-marginRight, 0)

	var usedWidth int
	if replaced != nil {
		usedWidth = max(replaced.width-margin.Left-margin.Right, 0)
	} else {
		usedWidth = clampWidth(le.resolveUsedWidth(el, style, available), style, available)
	}

	x := containing.X + marginLeft
	y := *cursorY + margin.Top
	if style.MarginAuto.Left || style.MarginAuto.Right {
		x = autoMarginX(style.MarginAuto, containing, x, usedWidth, margin)
	} else {
		x = alignedBlockX(parentStyle.TextAlign, containing, x, usedWidth, margin)
	}

	borderBox := Rect{X: x, Y: y, Width: usedWidth}
	inset := addEdges(style.BorderWidth, padding)
	contentBox := borderBox.Inset(inset)
	flowBox := contentBox
	if flowOverride != nil {
		flowBox = constrainFlowBox(contentBox, *flowOverride)
	}

	height, err := le.layoutBoxBody(el, style, borderBox, contentBox, flowBox, padding, replaced, margin, paint)
	if err != nil {
		return err
	}

	if opacityGroup {
		le.list.Append(render.PopOpacity{Alpha: style.Opacity})
	}
	*cursorY = y + height + margin.Bottom
	return nil
}

// layoutBoxBody runs the part of the box state machine shared by block and
// positioned boxes: background placeholder, children, height patch-back,
// border and replaced content. It returns the border-box height.
func (le *LayoutEngine) layoutBoxBody(el *html.Node, style *css.ComputedStyle, borderBox, contentBox, flowBox Rect, padding css.Edges, replaced *size, margin css.Edges, paint bool) (int, error) {
	border := style.BorderWidth
	background := -1
	if paint {
		background = le.pushBackground(borderBox, style)
	}

	var contentHeight int
	if replaced != nil {
		borderHeight := max(replaced.height-margin.Top-margin.Bottom, 0)
		contentHeight = max(borderHeight-border.Top-padding.Top-padding.Bottom-border.Bottom, 0)
	} else {
		positioned := style.Position != css.PositionStatic
		if positioned {
			le.pushPositionedBlock(borderBox, border)
		}
		var err error
		contentHeight, err = le.layoutChildren(el, style, contentBox, flowBox, paint)
		if positioned {
			le.popPositionedBlock()
		}
		if err != nil {
			return 0, err
		}
	}

	height := border.Top + padding.Top + contentHeight + padding.Bottom + border.Bottom
	if style.Height != nil {
		height = max(height, *style.Height)
	}
	if style.MinHeight != nil {
		height = max(height, *style.MinHeight)
	}

	if background >= 0 {
		le.list.SetHeight(background, height)
	}
	if paint {
		final := Rect{X: borderBox.X, Y: borderBox.Y, Width: borderBox.Width, Height: height}
		le.paintBorder(final, style)
		if replaced != nil {
			if err := le.paintReplaced(el, style, final.Inset(addEdges(border, padding))); err != nil {
				return 0, err
			}
		}
	}
	return height, nil
}

// layoutChildren dispatches on the container's display type.
func (le *LayoutEngine) layoutChildren(el *html.Node, style *css.ComputedStyle, contentBox, flowBox Rect, paint bool) (int, error) {
	switch style.Display {
	case css.DisplayTable:
		return le.layoutTable(el, style, contentBox, paint)
	case css.DisplayFlex:
		return le.layoutFlex(el, style, contentBox, paint)
	case css.DisplayGrid:
		return le.layoutGrid(el, style, contentBox, paint)
	}
	return le.layoutFlowChildren(el, style, flowBox, paint)
}

func (le *LayoutEngine) resolveUsedWidth(el *html.Node, style *css.ComputedStyle, available int) int {
	if style.Width != nil {
		return max(style.Width.Resolve(available), 0)
	}
	if style.Display == css.DisplayTable {
		if pct, ok := parsePercentage(dom.AttrOr(el, "width", "")); ok {
			return max(roundInt(float64(available)*pct/100), 0)
		}
	}
	return available
}

// clampWidth applies min-width then max-width, both against reference.
func clampWidth(width int, style *css.ComputedStyle, reference int) int {
	if style.MinWidth != nil {
		width = max(width, style.MinWidth.Resolve(reference))
	}
	if style.MaxWidth != nil {
		width = min(width, style.MaxWidth.Resolve(reference))
	}
	return max(width, 0)
}

// pushBackground emits the background placeholder with height 0 and
// returns its index, or -1 when nothing was painted.
func (le *LayoutEngine) pushBackground(borderBox Rect, style *css.ComputedStyle) int {
	if borderBox.Width <= 0 {
		return -1
	}
	if g := style.BackgroundGradient; g != nil {
		return le.list.Append(render.LinearGradientRect{
			X: borderBox.X, Y: borderBox.Y, Width: borderBox.Width,
			Direction: g.Direction, Start: g.Start, End: g.End,
		})
	}
	if style.BackgroundColor.IsTransparent() {
		return -1
	}
	if style.BorderRadiusPx > 0 {
		return le.list.Append(render.FillRoundedRect{
			X: borderBox.X, Y: borderBox.Y, Width: borderBox.Width,
			RadiusPx: style.BorderRadiusPx, Color: style.BackgroundColor,
		})
	}
	return le.list.Append(render.FillRect{
		X: borderBox.X, Y: borderBox.Y, Width: borderBox.Width,
		Color: style.BackgroundColor,
	})
}

// paintBorder paints solid borders: one stroke for uniform widths, else up
// to four rectangles (top, bottom, then left and right between them).
func (le *LayoutEngine) paintBorder(box Rect, style *css.ComputedStyle) {
	if style.BorderStyle != css.BorderSolid {
		return
	}
	b := style.BorderWidth
	if b.Top <= 0 && b.Right <= 0 && b.Bottom <= 0 && b.Left <= 0 {
		return
	}
	color := style.BorderColor
	if b.Top == b.Right && b.Top == b.Bottom && b.Top == b.Left {
		le.list.Append(render.StrokeRoundedRect{
			X: box.X, Y: box.Y, Width: box.Width, Height: box.Height,
			RadiusPx: style.BorderRadiusPx, BorderWidthPx: b.Top, Color: color,
		})
		return
	}
	if b.Top > 0 {
		le.list.Append(render.FillRect{X: box.X, Y: box.Y, Width: box.Width, Height: b.Top, Color: color})
	}
	if b.Bottom > 0 {
		le.list.Append(render.FillRect{X: box.X, Y: box.Bottom() - b.Bottom, Width: box.Width, Height: b.Bottom, Color: color})
	}
	middle := box.Height - b.Top - b.Bottom
	if middle <= 0 {
		return
	}
	if b.Left > 0 {
		le.list.Append(render.FillRect{X: box.X, Y: box.Y + b.Top, Width: b.Left, Height: middle, Color: color})
	}
	if b.Right > 0 {
		le.list.Append(render.FillRect{X: box.Right() - b.Right, Y: box.Y + b.Top, Width: b.Right, Height: middle, Color: color})
	}
}

// alignedBlockX positions a narrower block by the parent's text-align, the
// way legacy <center> and align= markup expects.
func alignedBlockX(align css.TextAlign, containing Rect, defaultX, width int, margin css.Edges) int {
	if width <= 0 {
		return defaultX
	}
	available := containing.Width - margin.Left - margin.Right
	if available <= width {
		return defaultX
	}
	switch align {
	case css.TextAlignCenter:
		return containing.X + (available-width)/2
	case css.TextAlignRight:
		return containing.X + available - width + margin.Left
	}
	return defaultX
}

func autoMarginX(auto css.AutoEdges, containing Rect, defaultX, width int, margin css.Edges) int {
	left, right := autoZero(margin.Left, auto.Left), autoZero(margin.Right, auto.Right)
	available := max(containing.Width-left-right, 0)
	if available <= width {
		return defaultX
	}
	remaining := available - width
	switch {
	case auto.Left && auto.Right:
		return containing.X + left + remaining/2
	case auto.Left:
		return containing.X + left + remaining
	}
	return defaultX
}

func autoZero(px int, auto bool) int {
	if auto {
		return 0
	}
	return px
}

func addEdges(a, b css.Edges) css.Edges {
	return css.Edges{Top: a.Top + b.Top, Right: a.Right + b.Right, Bottom: a.Bottom + b.Bottom, Left: a.Left + b.Left}
}

// constrainFlowBox narrows a content box horizontally to the flow area left
// free by floats.
func constrainFlowBox(content, flow Rect) Rect {
	left := max(flow.X, content.X)
	right := min(flow.Right(), content.Right())
	return Rect{X: left, Y: content.Y, Width: max(right-left, 0), Height: content.Height}
}

// establishesBFC marks boxes that must not overlap floats.
func establishesBFC(style *css.ComputedStyle) bool {
	return style.Display == css.DisplayFlex || style.Display == css.DisplayTable
}

// requiredOuterWidth is the margin-box width a BFC box needs beside floats.
func requiredOuterWidth(style *css.ComputedStyle, available int) int {
	width := 1
	if style.Width != nil {
		width = max(style.Width.Resolve(available), 0)
	}
	return max(autoZero(style.Margin.Left, style.MarginAuto.Left)+width+autoZero(style.Margin.Right, style.MarginAuto.Right), 1)
}

// blockishChildTags are the tags that make an inline span count as a block
// container when they appear as its direct children.
var blockishChildTags = map[string]bool{
	"html": true, "body": true, "div": true, "p": true, "center": true,
	"header": true, "main": true, "footer": true, "nav": true, "ul": true,
	"ol": true, "li": true, "h1": true, "h2": true, "h3": true,
	"blockquote": true, "pre": true, "table": true, "tr": true, "td": true,
}

// isFlowBlock reports whether el stacks as a block in normal flow. Inline
// div/p/table and spans wrapping block markup are treated as blocks to
// repair malformed documents.
func isFlowBlock(style *css.ComputedStyle, el *html.Node) bool {
	switch style.Display {
	case css.DisplayBlock, css.DisplayFlex, css.DisplayGrid, css.DisplayTable, css.DisplayTableRow, css.DisplayTableCell:
		return true
	case css.DisplayInline, css.DisplayInlineBlock:
		switch dom.Tag(el) {
		case "div", "p", "table":
			return true
		case "span":
			for _, c := range dom.ElementChildren(el) {
				if blockishChildTags[dom.Tag(c)] {
					return true
				}
			}
		}
	}
	return false
}

func parsePercentage(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	num, ok := strings.CutSuffix(v, "%")
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	return f, err == nil
}

func roundInt(f float64) int {
	if f < 0 {
		return -int(-f + 0.5)
	}
	return int(f + 0.5)
}

// anchorHref returns the trimmed href of an <a> element.
func anchorHref(n *html.Node) (string, bool) {
	if dom.Tag(n) != "a" {
		return "", false
	}
	href := strings.TrimSpace(dom.AttrOr(n, "href", ""))
	return href, href != ""
}

// inheritedHref finds the nearest enclosing <a href>, starting at n.
func inheritedHref(n *html.Node) string {
	a := dom.ClosestAncestor(n, func(e *html.Node) bool {
		_, ok := anchorHref(e)
		return ok
	})
	if a == nil {
		return ""
	}
	href, _ := anchorHref(a)
	return href
}

// layoutLimit bounds how far down layout keeps producing content.
func (le *LayoutEngine) layoutLimit() int {
	if le.viewport.LayoutLimitPx > 0 {
		return le.viewport.LayoutLimitPx
	}
	return le.viewport.HeightPx
}
