package layout

import (
	"golang.org/x/net/html"

	"l14core/pkg/css"
	"l14core/pkg/dom"
	"l14core/pkg/render"
)

// flexItem is an element child of a flex container, or a non-blank text
// child laid out as an anonymous item.
type flexItem struct {
	text   *html.Node
	el     *html.Node
	style  css.ComputedStyle
	margin css.Edges
}

// flexItemStyles collects the in-flow items of a flex container.
func (le *LayoutEngine) flexItemStyles(el *html.Node, style *css.ComputedStyle) []flexItem {
	var items []flexItem
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if dom.IsBlankText(c) {
				continue
			}
			items = append(items, flexItem{text: c, style: *style})
		case html.ElementNode:
			cs := le.computeStyle(c, style)
			if cs.Display == css.DisplayNone || cs.Position.OutOfFlow() {
				continue
			}
			items = append(items, flexItem{
				el:    c,
				style: cs,
				margin: css.Edges{
					Top:    cs.Margin.Top,
					Right:  autoZero(cs.Margin.Right, cs.MarginAuto.Right),
					Bottom: cs.Margin.Bottom,
					Left:   autoZero(cs.Margin.Left, cs.MarginAuto.Left),
				},
			})
		}
	}
	return items
}

func (it *flexItem) grow() int {
	if it.text != nil {
		return 0
	}
	return max(it.style.FlexGrow, 0)
}

func (it *flexItem) shrink() int {
	if it.text != nil {
		return 1
	}
	return max(it.style.FlexShrink, 0)
}

// layoutFlex lays out a flex container's items in content and returns the
// height they use. Absolute and fixed children follow the items.
func (le *LayoutEngine) layoutFlex(el *html.Node, style *css.ComputedStyle, content Rect, paint bool) (int, error) {
	items := le.flexItemStyles(el, style)

	var height int
	var err error
	switch {
	case len(items) == 0:
	case style.FlexDirection == css.FlexColumn:
		height, err = le.layoutFlexColumn(style, content, items, paint)
	case content.Width <= 0:
	case style.FlexWrap == css.FlexWrapOn:
		height, err = le.layoutFlexWrapped(style, content, items, paint)
	default:
		var mains []int
		if mains, err = le.flexMainSizes(style, items, content.Width); err == nil {
			height, err = le.layoutFlexLine(style, content, items, mains, paint)
		}
	}
	if err != nil {
		return 0, err
	}

	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		cs := le.computeStyle(c, style)
		if cs.Display == css.DisplayNone || !cs.Position.OutOfFlow() {
			continue
		}
		if err := le.layoutPositionedBox(c, &cs, le.currentPositionedBlock(), paint); err != nil {
			return 0, err
		}
	}
	return height, nil
}

// flexMainSizes returns each item's hypothetical border-box width: its
// flex-basis, else width, else max-content, clamped to the container.
func (le *LayoutEngine) flexMainSizes(style *css.ComputedStyle, items []flexItem, available int) ([]int, error) {
	mains := make([]int, len(items))
	for i := range items {
		it := &items[i]
		var w int
		switch {
		case it.text != nil:
			tw, err := le.inlineMaxContentWidth([]*html.Node{it.text}, style, available)
			if err != nil {
				return nil, err
			}
			w = tw
		case it.style.FlexBasis != nil:
			w = clampWidth(*it.style.FlexBasis, &it.style, available)
		default:
			mw, err := le.maxContentWidth(it.el, &it.style, available)
			if err != nil {
				return nil, err
			}
			w = mw
		}
		mains[i] = min(max(w, 0), max(available, 0))
	}
	return mains, nil
}

// layoutFlexWrapped breaks items into lines where the next item's margin
// box and gap would overflow, then lays out each line.
func (le *LayoutEngine) layoutFlexWrapped(style *css.ComputedStyle, content Rect, items []flexItem, paint bool) (int, error) {
	mains, err := le.flexMainSizes(style, items, content.Width)
	if err != nil {
		return 0, err
	}
	gap := max(style.GapPx, 0)
	y := content.Y
	start, used := 0, 0
	flush := func(end int) error {
		line := Rect{X: content.X, Y: y, Width: content.Width, Height: content.Height}
		h, err := le.layoutFlexLine(style, line, items[start:end], mains[start:end], paint)
		if err != nil {
			return err
		}
		y += h
		if end < len(items) {
			y += gap
		}
		return nil
	}
	for i := range items {
		outer := items[i].margin.Left + mains[i] + items[i].margin.Right
		addition := outer
		if i > start {
			addition += gap
		}
		if used > 0 && used+addition > content.Width {
			if err := flush(i); err != nil {
				return 0, err
			}
			start, used = i, outer
			continue
		}
		used += addition
	}
	if start < len(items) {
		if err := flush(len(items)); err != nil {
			return 0, err
		}
	}
	return max(y-content.Y, 0), nil
}

// layoutFlexLine resolves flexible widths for one line, aligns the items
// and returns the line height.
func (le *LayoutEngine) layoutFlexLine(style *css.ComputedStyle, line Rect, items []flexItem, mains []int, paint bool) (int, error) {
	if len(items) == 0 || line.Width <= 0 {
		return 0, nil
	}
	widths := make([]int, len(items))
	for i := range items {
		widths[i] = min(max(mains[i], 0), line.Width)
	}
	resolveFlexibleWidths(style, items, widths, line.Width)

	heights := make([]int, len(items))
	lineHeight := 0
	for i := range items {
		h, err := le.flexItemHeight(&items[i], style, widths[i])
		if err != nil {
			return 0, err
		}
		heights[i] = h
		lineHeight = max(lineHeight, items[i].margin.Top+h+items[i].margin.Bottom)
	}

	positions := mainPositions(style.JustifyContent, line.Width, style.GapPx, items, widths)
	for i := range items {
		it := &items[i]
		x := line.X + positions[i] + it.margin.Left
		y := alignCrossStart(style.AlignItems, line.Y, lineHeight, heights[i], it.margin)
		if _, err := le.layoutItemBox(it, style, Rect{X: x, Y: y, Width: widths[i], Height: heights[i]}, paint); err != nil {
			return 0, err
		}
	}
	return lineHeight, nil
}

// resolveFlexibleWidths grows items into free space by flex-grow, or
// shrinks them out of an overflow weighted by flex-shrink times their
// width. The last participating item absorbs rounding.
func resolveFlexibleWidths(style *css.ComputedStyle, items []flexItem, widths []int, available int) {
	total := max(style.GapPx, 0) * (len(items) - 1)
	for i := range items {
		total += items[i].margin.Left + widths[i] + items[i].margin.Right
	}

	switch {
	case total < available:
		free := available - total
		weights := make([]int, len(items))
		for i := range items {
			weights[i] = items[i].grow()
		}
		for i, part := range distribute(free, weights) {
			widths[i] = min(widths[i]+part, available)
		}
	case total > available:
		overflow := total - available
		weights := make([]int, len(items))
		for i := range items {
			weights[i] = items[i].shrink() * widths[i]
		}
		for i, part := range distribute(overflow, weights) {
			floor := 0
			if items[i].text == nil && items[i].style.MinWidth != nil {
				floor = max(items[i].style.MinWidth.Resolve(available), 0)
			}
			widths[i] = max(widths[i]-part, floor, 0)
		}
	}
}

// distribute splits amount proportionally to weights; the last positive
// weight takes what division leaves over.
func distribute(amount int, weights []int) []int {
	parts := make([]int, len(weights))
	total, last := 0, -1
	for i, w := range weights {
		if w > 0 {
			total += w
			last = i
		}
	}
	if total == 0 || amount <= 0 {
		return parts
	}
	given := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if i == last {
			parts[i] = amount - given
			break
		}
		parts[i] = int(int64(amount) * int64(w) / int64(total))
		given += parts[i]
	}
	return parts
}

// mainPositions returns the margin-box x offset of each item for
// justify-content.
func mainPositions(justify css.JustifyContent, width, gap int, items []flexItem, widths []int) []int {
	gap = max(gap, 0)
	total := gap * (len(items) - 1)
	for i := range items {
		total += items[i].margin.Left + widths[i] + items[i].margin.Right
	}
	remaining := max(width-total, 0)

	start, spacing := 0, gap
	switch justify {
	case css.JustifyCenter:
		start = remaining / 2
	case css.JustifyEnd:
		start = remaining
	case css.JustifySpaceBetween:
		if len(items) > 1 {
			spacing = gap + remaining/(len(items)-1)
		}
	}

	positions := make([]int, len(items))
	cursor := start
	for i := range items {
		positions[i] = cursor
		cursor += items[i].margin.Left + widths[i] + items[i].margin.Right + spacing
	}
	return positions
}

func alignCrossStart(align css.AlignItems, lineY, lineHeight, height int, margin css.Edges) int {
	remaining := max(lineHeight-(margin.Top+max(height, 0)+margin.Bottom), 0)
	switch align {
	case css.AlignCenter:
		return lineY + margin.Top + remaining/2
	case css.AlignEnd:
		return lineY + margin.Top + remaining
	}
	return lineY + margin.Top
}

func alignColumnCrossStart(align css.AlignItems, x, width, itemWidth int, margin css.Edges) int {
	remaining := max(width-margin.Left-margin.Right-max(itemWidth, 0), 0)
	switch align {
	case css.AlignCenter:
		return x + margin.Left + remaining/2
	case css.AlignEnd:
		return x + margin.Left + remaining
	}
	return x + margin.Left
}

// layoutFlexColumn stacks items top to bottom with gaps. Items are as wide
// as the container unless they set a width.
func (le *LayoutEngine) layoutFlexColumn(style *css.ComputedStyle, content Rect, items []flexItem, paint bool) (int, error) {
	gap := max(style.GapPx, 0)
	limit := le.layoutLimit()
	y := content.Y
	for i := range items {
		if y >= limit {
			break
		}
		it := &items[i]
		width := max(content.Width, 0)
		if it.text == nil && it.style.Width != nil {
			width = min(clampWidth(it.style.Width.Resolve(content.Width), &it.style, content.Width), width)
		}
		height, err := le.flexItemHeight(it, style, width)
		if err != nil {
			return 0, err
		}
		x := alignColumnCrossStart(style.AlignItems, content.X, content.Width, width, it.margin)
		if _, err := le.layoutItemBox(it, style, Rect{X: x, Y: y + it.margin.Top, Width: width, Height: height}, paint); err != nil {
			return 0, err
		}
		y += it.margin.Top + height + it.margin.Bottom
		if i+1 < len(items) {
			y += gap
		}
	}
	return max(y-content.Y, 0), nil
}

// flexItemHeight measures an item's border-box height at width without
// painting.
func (le *LayoutEngine) flexItemHeight(it *flexItem, containerStyle *css.ComputedStyle, width int) (int, error) {
	width = max(width, 0)
	if it.text != nil {
		s, err := le.measureInline([]*html.Node{it.text}, containerStyle, width, width)
		return s.height, err
	}
	return le.layoutItemBox(it, containerStyle, Rect{Width: width, Height: le.viewport.HeightPx}, false)
}

// layoutItemBox lays out one flex item at borderBox and returns its
// border-box height.
func (le *LayoutEngine) layoutItemBox(it *flexItem, containerStyle *css.ComputedStyle, borderBox Rect, paint bool) (int, error) {
	if borderBox.Width <= 0 {
		return 0, nil
	}
	if it.text != nil {
		return le.layoutInline([]*html.Node{it.text}, containerStyle, borderBox, borderBox.Y, paint, inheritedHref(it.text.Parent))
	}

	style := &it.style
	paint = paint && style.Visibility == css.Visible && style.Opacity != 0
	group := paint && style.Opacity < 255
	if group {
		le.list.Append(render.PushOpacity{Alpha: style.Opacity})
	}

	padding := style.Padding.Resolve(borderBox.Width)
	var replaced *size
	if isReplaced(it.el) {
		s, err := le.replacedOuterSize(it.el, style, borderBox.Width)
		if err != nil {
			return 0, err
		}
		replaced = &size{width: borderBox.Width + it.margin.Horizontal(), height: s.height}
	}
	contentBox := borderBox.Inset(addEdges(style.BorderWidth, padding))
	height, err := le.layoutBoxBody(it.el, style, borderBox, contentBox, contentBox, padding, replaced, it.margin, paint)
	if err != nil {
		return 0, err
	}

	if group {
		le.list.Append(render.PopOpacity{Alpha: style.Opacity})
	}
	return height, nil
}
