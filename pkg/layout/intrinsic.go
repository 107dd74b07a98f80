package layout

import (
	"golang.org/x/net/html"

	"l14core/pkg/css"
)

// maxContentWidth returns the border-box width el needs to lay out its
// content without soft wrapping, clamped by min/max width.
func (le *LayoutEngine) maxContentWidth(el *html.Node, style *css.ComputedStyle, available int) (int, error) {
	available = max(available, 0)
	if style.Width != nil {
		return clampWidth(style.Width.Resolve(available), style, available), nil
	}
	if isReplaced(el) {
		s, err := le.replacedOuterSize(el, style, available)
		if err != nil {
			return 0, err
		}
		return max(s.width-style.Margin.Horizontal(), 0), nil
	}

	var content int
	var err error
	switch {
	case style.Display == css.DisplayFlex:
		content, err = le.flexMaxContent(el, style, available)
	case style.Display == css.DisplayTableRow:
		content, err = le.childrenMaxContent(el, style, available, true)
	default:
		content, err = le.childrenMaxContent(el, style, available, false)
	}
	if err != nil {
		return 0, err
	}
	padding := style.Padding.Resolve(available)
	return clampWidth(content+addEdges(style.BorderWidth, padding).Horizontal(), style, available), nil
}

// outerMaxContentWidth adds the horizontal margins of el.
func (le *LayoutEngine) outerMaxContentWidth(el *html.Node, style *css.ComputedStyle, available int) (int, error) {
	w, err := le.maxContentWidth(el, style, available)
	if err != nil {
		return 0, err
	}
	return w + autoZero(style.Margin.Left, style.MarginAuto.Left) + autoZero(style.Margin.Right, style.MarginAuto.Right), nil
}

// childrenMaxContent measures flow content: the widest block child or
// inline run. Table rows place their cells side by side instead.
func (le *LayoutEngine) childrenMaxContent(el *html.Node, style *css.ComputedStyle, available int, sideBySide bool) (int, error) {
	widest, sum := 0, 0
	var run []*html.Node
	flush := func() error {
		if len(run) == 0 {
			return nil
		}
		w, err := le.inlineMaxContentWidth(run, style, available)
		run = run[:0]
		widest = max(widest, w)
		sum += w
		return err
	}

	for c := el.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			run = append(run, c)
			continue
		case html.ElementNode:
		default:
			continue
		}
		cs := le.computeStyle(c, style)
		if cs.Display == css.DisplayNone || cs.Position.OutOfFlow() {
			continue
		}
		if !sideBySide && !isFlowBlock(&cs, c) && cs.Float == css.FloatNone {
			run = append(run, c)
			continue
		}
		if err := flush(); err != nil {
			return 0, err
		}
		w, err := le.outerMaxContentWidth(c, &cs, available)
		if err != nil {
			return 0, err
		}
		widest = max(widest, w)
		sum += w
	}
	if err := flush(); err != nil {
		return 0, err
	}
	if sideBySide {
		return sum, nil
	}
	return widest, nil
}

// flexMaxContent sums row items with gaps, or takes the widest column item.
func (le *LayoutEngine) flexMaxContent(el *html.Node, style *css.ComputedStyle, available int) (int, error) {
	total, widest := 0, 0
	for i, it := range le.flexItemStyles(el, style) {
		var w int
		var err error
		switch {
		case it.text != nil:
			w, err = le.inlineMaxContentWidth([]*html.Node{it.text}, style, available)
		case it.style.FlexBasis != nil && style.FlexDirection == css.FlexRow:
			w = clampWidth(*it.style.FlexBasis, &it.style, available) + it.margin.Horizontal()
		default:
			w, err = le.maxContentWidth(it.el, &it.style, available)
			w += it.margin.Horizontal()
		}
		if err != nil {
			return 0, err
		}
		if i > 0 {
			total += max(style.GapPx, 0)
		}
		total += w
		widest = max(widest, w)
	}
	if style.FlexDirection == css.FlexColumn {
		return widest, nil
	}
	return total, nil
}
