package layout

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"l14core/pkg/css"
	"l14core/pkg/dom"
	"l14core/pkg/render"
)

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenSpace
	tokenNewline
	tokenBox
)

// inlineToken is one unit of an inline run. Boxes are atomic: inline
// blocks, replaced elements, and the margin/padding spacing of inline
// elements (el == nil).
type inlineToken struct {
	kind    tokenKind
	text    string
	style   render.TextStyle
	visible bool
	href    string
	// glue forbids a line break after this space; preserve keeps it at
	// line start and end.
	glue     bool
	preserve bool

	width, height int
	el            *html.Node
	elStyle       css.ComputedStyle
	parent        *css.ComputedStyle
}

type positionedChild struct {
	el    *html.Node
	style css.ComputedStyle
}

// inlineCollector turns a run of nodes into tokens.
type inlineCollector struct {
	le         *LayoutEngine
	available  int
	widthOnly  bool
	tokens     []inlineToken
	pending    *inlineToken
	positioned []positionedChild
}

func (c *inlineCollector) collect(n *html.Node, parentStyle *css.ComputedStyle, paint bool, href string) error {
	switch n.Type {
	case html.TextNode:
		c.pushText(n.Data, parentStyle, paint && parentStyle.Visibility == css.Visible, href)
		return nil
	case html.ElementNode:
	default:
		return nil
	}

	style := c.le.computeStyle(n, parentStyle)
	if style.Display == css.DisplayNone {
		return nil
	}
	if dom.Tag(n) == "br" {
		c.tokens = append(c.tokens, inlineToken{kind: tokenNewline})
		c.pending = nil
		return nil
	}
	if style.Position.OutOfFlow() {
		c.positioned = append(c.positioned, positionedChild{el: n, style: style})
		return nil
	}
	if h, ok := anchorHref(n); ok {
		href = h
	}
	paint = paint && style.Visibility == css.Visible

	if isReplaced(n) || style.Display != css.DisplayInline {
		c.flushPending()
		return c.pushBox(n, &style, parentStyle, href)
	}

	padding := style.Padding.Resolve(c.available)
	c.pushSpacing(style.Margin.Left + style.BorderWidth.Left + padding.Left)
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if err := c.collect(child, &style, paint, href); err != nil {
			return err
		}
	}
	c.pushSpacing(style.Margin.Right + style.BorderWidth.Right + padding.Right)
	return nil
}

func (c *inlineCollector) pushText(text string, style *css.ComputedStyle, visible bool, href string) {
	ts := render.TextStyleFor(style)
	text = style.TextTransform.Apply(text)

	if style.WhiteSpace == css.WhiteSpacePre {
		text = strings.ReplaceAll(text, "\r\n", "\n")
		for i, line := range strings.Split(text, "\n") {
			if i > 0 {
				c.tokens = append(c.tokens, inlineToken{kind: tokenNewline})
				c.pending = nil
			}
			c.pushPreformatted(line, ts, visible, href)
		}
		return
	}

	glue := style.WhiteSpace == css.WhiteSpaceNoWrap
	for len(text) > 0 {
		i := strings.IndexFunc(text, unicode.IsSpace)
		if i == 0 {
			c.pending = &inlineToken{kind: tokenSpace, text: " ", style: ts, visible: visible, href: href, glue: glue}
			j := strings.IndexFunc(text, func(r rune) bool { return !unicode.IsSpace(r) })
			if j < 0 {
				return
			}
			text = text[j:]
			continue
		}
		if i < 0 {
			i = len(text)
		}
		c.flushPending()
		c.tokens = append(c.tokens, inlineToken{kind: tokenWord, text: text[:i], style: ts, visible: visible, href: href})
		text = text[i:]
	}
}

// pushPreformatted keeps every space of line and never breaks it.
func (c *inlineCollector) pushPreformatted(line string, ts render.TextStyle, visible bool, href string) {
	c.flushPending()
	line = strings.ReplaceAll(line, "\t", "    ")
	for len(line) > 0 {
		isSpace := line[0] == ' '
		i := strings.IndexFunc(line, func(r rune) bool { return (r == ' ') != isSpace })
		if i < 0 {
			i = len(line)
		}
		tok := inlineToken{kind: tokenWord, text: line[:i], style: ts, visible: visible, href: href}
		if isSpace {
			tok.kind, tok.glue, tok.preserve = tokenSpace, true, true
		}
		c.tokens = append(c.tokens, tok)
		line = line[i:]
	}
}

// flushPending emits a collapsed space unless the run is at its start or
// just after a forced break.
func (c *inlineCollector) flushPending() {
	space := c.pending
	c.pending = nil
	if space == nil || len(c.tokens) == 0 || c.tokens[len(c.tokens)-1].kind == tokenNewline {
		return
	}
	c.tokens = append(c.tokens, *space)
}

func (c *inlineCollector) pushSpacing(width int) {
	if width <= 0 {
		return
	}
	c.flushPending()
	c.tokens = append(c.tokens, inlineToken{kind: tokenBox, width: width})
}

// pushBox sizes an atomic inline-level element by its margin box.
func (c *inlineCollector) pushBox(el *html.Node, style, parentStyle *css.ComputedStyle, href string) error {
	le := c.le
	tok := inlineToken{kind: tokenBox, el: el, elStyle: *style, parent: parentStyle, href: href}
	if isReplaced(el) {
		s, err := le.replacedOuterSize(el, style, c.available)
		if err != nil {
			return err
		}
		tok.width, tok.height = s.width, s.height
		c.tokens = append(c.tokens, tok)
		return nil
	}

	width, err := le.shrinkToFitWidth(el, style, c.available)
	if err != nil {
		return err
	}
	tok.width = width + autoZero(style.Margin.Left, style.MarginAuto.Left) + autoZero(style.Margin.Right, style.MarginAuto.Right)
	if !c.widthOnly {
		cursor := 0
		if err := le.layoutBlockBox(el, style, parentStyle, Rect{Width: tok.width, Height: le.viewport.HeightPx}, &cursor, false, nil); err != nil {
			return err
		}
		tok.height = cursor
	}
	c.tokens = append(c.tokens, tok)
	return nil
}

type fragment struct {
	tok   *inlineToken
	width int
}

type inlineLine struct {
	frags                  []fragment
	width, ascent, descent int
	height                 int
	explicit               int
	hasExplicit            bool
}

func newInlineLine(base render.FontMetrics, explicit int, hasExplicit bool) *inlineLine {
	l := &inlineLine{ascent: base.AscentPx, descent: base.DescentPx, explicit: explicit, hasExplicit: hasExplicit}
	l.height = max(l.ascent+l.descent, 1)
	if hasExplicit {
		l.height = max(l.height, explicit)
	}
	return l
}

func (l *inlineLine) push(f fragment, metrics render.FontMetrics) {
	l.frags = append(l.frags, f)
	l.width += f.width
	if f.tok.kind == tokenBox {
		l.height = max(l.height, f.tok.height)
	} else {
		l.ascent = max(l.ascent, metrics.AscentPx)
		l.descent = max(l.descent, metrics.DescentPx)
	}
	l.height = max(l.height, l.ascent+l.descent, 1)
	if l.hasExplicit {
		l.height = max(l.height, l.explicit)
	}
}

// trimTrailingSpace drops collapsible spaces at the end of the line.
func (l *inlineLine) trimTrailingSpace() {
	for n := len(l.frags); n > 0; n = len(l.frags) {
		last := l.frags[n-1]
		if last.tok.kind != tokenSpace || last.tok.preserve {
			return
		}
		l.width -= last.width
		l.frags = l.frags[:n-1]
	}
}

// baselineOffset centers the text extent inside the line box.
func (l *inlineLine) baselineOffset() int {
	extra := max(l.height-(l.ascent+l.descent), 0)
	return l.ascent + extra/2
}

// breakLines fills lines no wider than width. A word or box that does not
// fit starts a new line unless it is first on its line or glued to the
// previous token; an overflowing collapsible space is dropped.
func (le *LayoutEngine) breakLines(tokens []inlineToken, parentStyle *css.ComputedStyle, width int) ([]*inlineLine, error) {
	base := le.fontMetrics(render.TextStyleFor(parentStyle))
	explicit, hasExplicit := parentStyle.LineHeight.Resolve(parentStyle.FontSizePx)

	var lines []*inlineLine
	line := newInlineLine(base, explicit, hasExplicit)
	x := 0
	glued := false
	breakLine := func() {
		line.trimTrailingSpace()
		lines = append(lines, line)
		line = newInlineLine(base, explicit, hasExplicit)
		x, glued = 0, false
	}

	for i := range tokens {
		tok := &tokens[i]
		switch tok.kind {
		case tokenNewline:
			breakLine()
		case tokenSpace:
			if x == 0 && !tok.preserve {
				continue
			}
			w, err := le.textWidth(tok.text, tok.style)
			if err != nil {
				return nil, err
			}
			if !tok.glue && x+w > width {
				continue
			}
			line.push(fragment{tok: tok, width: w}, le.fontMetrics(tok.style))
			x += w
			glued = tok.glue
		case tokenWord:
			w, err := le.textWidth(tok.text, tok.style)
			if err != nil {
				return nil, err
			}
			if x != 0 && !glued && x+w > width {
				breakLine()
			}
			line.push(fragment{tok: tok, width: w}, le.fontMetrics(tok.style))
			x += w
			glued = false
		case tokenBox:
			if x != 0 && !glued && x+tok.width > width {
				breakLine()
			}
			line.push(fragment{tok: tok, width: tok.width}, render.FontMetrics{})
			x += tok.width
			glued = false
		}
	}
	if len(line.frags) > 0 {
		line.trimTrailingSpace()
		lines = append(lines, line)
	}
	return lines, nil
}

// layoutInline lays out an inline run in area starting at y and returns
// the height of its lines. href is the link of an enclosing anchor.
func (le *LayoutEngine) layoutInline(nodes []*html.Node, parentStyle *css.ComputedStyle, area Rect, y int, paint bool, href string) (int, error) {
	c := &inlineCollector{le: le, available: area.Width}
	for _, n := range nodes {
		if err := c.collect(n, parentStyle, paint, href); err != nil {
			return 0, err
		}
	}
	lines, err := le.breakLines(c.tokens, parentStyle, area.Width)
	if err != nil {
		return 0, err
	}

	startY := y
	limit := le.layoutLimit()
	for _, line := range lines {
		if y >= limit {
			break
		}
		offset := 0
		switch parentStyle.TextAlign {
		case css.TextAlignCenter:
			offset = max((area.Width-line.width)/2, 0)
		case css.TextAlignRight:
			offset = max(area.Width-line.width, 0)
		}
		baseline := y + line.baselineOffset()
		x := area.X + offset
		for _, f := range line.frags {
			if paint {
				if err := le.paintFragment(f, x, y, baseline, line.height, area.Height); err != nil {
					return 0, err
				}
			}
			x += f.width
		}
		y += line.height
	}

	if paint {
		for _, p := range c.positioned {
			if err := le.layoutPositionedBox(p.el, &p.style, le.currentPositionedBlock(), paint); err != nil {
				return 0, err
			}
		}
	}
	return max(y-startY, 0), nil
}

func (le *LayoutEngine) paintFragment(f fragment, x, lineY, baseline, lineHeight, areaHeight int) error {
	tok := f.tok
	switch tok.kind {
	case tokenWord, tokenSpace:
		if !tok.visible {
			return nil
		}
		le.list.Append(render.DrawText{X: x, Y: baseline, Text: tok.text, Style: tok.style})
		if tok.href != "" {
			le.links = append(le.links, LinkHitRegion{Href: tok.href, Rect: Rect{X: x, Y: lineY, Width: f.width, Height: lineHeight}})
		}
	case tokenBox:
		if tok.el == nil {
			return nil
		}
		cursor := lineY
		if err := le.layoutBlockBox(tok.el, &tok.elStyle, tok.parent, Rect{X: x, Y: lineY, Width: f.width, Height: areaHeight}, &cursor, true, nil); err != nil {
			return err
		}
		if tok.href != "" && tok.elStyle.Visibility == css.Visible {
			le.links = append(le.links, LinkHitRegion{Href: tok.href, Rect: Rect{X: x, Y: lineY, Width: f.width, Height: max(cursor-lineY, 0)}})
		}
	}
	return nil
}

// measureInline returns the widest line and total height of an inline run
// broken at maxWidth. available resolves percentages of nested boxes.
func (le *LayoutEngine) measureInline(nodes []*html.Node, parentStyle *css.ComputedStyle, available, maxWidth int) (size, error) {
	return le.measureTokens(&inlineCollector{le: le, available: available}, nodes, parentStyle, maxWidth)
}

// inlineMaxContentWidth is the width of an inline run laid out on one line
// per forced break.
func (le *LayoutEngine) inlineMaxContentWidth(nodes []*html.Node, parentStyle *css.ComputedStyle, available int) (int, error) {
	s, err := le.measureTokens(&inlineCollector{le: le, available: available, widthOnly: true}, nodes, parentStyle, unbounded)
	return s.width, err
}

// unbounded is a line width no content reaches.
const unbounded = 1 << 30

func (le *LayoutEngine) measureTokens(c *inlineCollector, nodes []*html.Node, parentStyle *css.ComputedStyle, maxWidth int) (size, error) {
	for _, n := range nodes {
		if err := c.collect(n, parentStyle, false, ""); err != nil {
			return size{}, err
		}
	}
	lines, err := le.breakLines(c.tokens, parentStyle, max(maxWidth, 0))
	if err != nil {
		return size{}, err
	}
	var s size
	for _, line := range lines {
		s.width = max(s.width, line.width)
		s.height += line.height
	}
	return s, nil
}
