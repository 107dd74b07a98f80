package css

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"l14core/pkg/dom"
)

var presentationalPriority = CascadePriority{Origin: OriginPresentational}

var headingHints = map[string]struct{ size, margin int }{
	"h1": {32, 21},
	"h2": {24, 20},
	"h3": {19, 19},
}

// applyPresentationalHints maps legacy HTML attributes and built-in element
// defaults onto the lowest cascade origin, so any author rule beats them.
func (b *styleBuilder) applyPresentationalHints(el *html.Node) {
	p := presentationalPriority
	tag := dom.Tag(el)

	if tag == "body" {
		b.setMarginSide("margin-top", marginValue{px: 8}, p)
		b.setMarginSide("margin-right", marginValue{px: 8}, p)
		b.setMarginSide("margin-bottom", marginValue{px: 8}, p)
		b.setMarginSide("margin-left", marginValue{px: 8}, p)
	}
	if tag == "b" || tag == "strong" || tag == "th" {
		b.set("font-weight", p, func(s *ComputedStyle) { s.Bold = true })
	}
	if h, ok := headingHints[tag]; ok {
		b.set("font-size", p, func(s *ComputedStyle) { s.FontSizePx = h.size })
		b.set("font-weight", p, func(s *ComputedStyle) { s.Bold = true })
		b.setMarginSide("margin-top", marginValue{px: h.margin}, p)
		b.setMarginSide("margin-bottom", marginValue{px: h.margin}, p)
	}
	switch tag {
	case "center":
		b.set("text-align", p, func(s *ComputedStyle) { s.TextAlign = TextAlignCenter })
	case "a":
		if _, ok := dom.Attr(el, "href"); ok {
			b.set("text-decoration", p, func(s *ComputedStyle) { s.Underline = true })
			b.set("color", p, func(s *ComputedStyle) { s.Color = Color{0, 0, 238, 255} })
		}
	case "pre", "code", "tt", "kbd", "samp":
		b.set("font-family", p, func(s *ComputedStyle) { s.FontFamily = Monospace })
		if tag == "pre" {
			b.set("white-space", p, func(s *ComputedStyle) { s.WhiteSpace = WhiteSpacePre })
		}
	case "td":
		if _, ok := dom.Attr(el, "align"); !ok {
			b.set("text-align", p, func(s *ComputedStyle) { s.TextAlign = TextAlignLeft })
		}
	case "th":
		if _, ok := dom.Attr(el, "align"); !ok {
			b.set("text-align", p, func(s *ComputedStyle) { s.TextAlign = TextAlignCenter })
		}
	case "font":
		if v, ok := dom.Attr(el, "color"); ok {
			if c, ok := ParseColor(v); ok {
				b.set("color", p, func(s *ComputedStyle) { s.Color = c })
			}
		}
	}

	if v, ok := dom.Attr(el, "bgcolor"); ok {
		if c, ok := ParseColor(hexWithHash(v)); ok {
			b.set("background-color", p, func(s *ComputedStyle) { s.BackgroundColor = c })
		}
	}
	if v, ok := dom.Attr(el, "width"); ok && tag != "svg" {
		if px, ok := parseHTMLLength(v); ok {
			l := Px(px)
			b.set("width", p, func(s *ComputedStyle) { s.Width = &l })
		}
	}
	if v, ok := dom.Attr(el, "height"); ok && tag != "svg" {
		if px, ok := parseHTMLLength(v); ok {
			b.set("height", p, func(s *ComputedStyle) { s.Height = &px })
		}
	}
	if v, ok := dom.Attr(el, "align"); ok {
		if a, ok := parseTextAlign(strings.ToLower(strings.TrimSpace(v))); ok {
			b.set("text-align", p, func(s *ComputedStyle) { s.TextAlign = a })
		}
	}
	if v, ok := dom.Attr(el, "hidden"); ok && v != "until-found" {
		b.set("display", p, func(s *ComputedStyle) { s.Display = DisplayNone })
	}
}

// parseHTMLLength reads width/height attributes; percentages are ignored.
func parseHTMLLength(v string) (int, bool) {
	v = strings.TrimSpace(v)
	if v == "" || strings.HasSuffix(v, "%") {
		return 0, false
	}
	if px, ok := ParsePx(v); ok {
		return px, true
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

// hexWithHash accepts bgcolor="ffcc00" as well as "#ffcc00".
func hexWithHash(v string) string {
	v = strings.TrimSpace(v)
	if len(v) == 6 && !strings.HasPrefix(v, "#") {
		if _, ok := parseHexColor(v); ok {
			return "#" + v
		}
	}
	return v
}
