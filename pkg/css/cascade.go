package css

import (
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"l14core/pkg/dom"
)

// Origin separates author CSS from the built-in presentational defaults.
type Origin int

const (
	OriginPresentational Origin = iota
	OriginAuthor
)

// CascadePriority orders competing declarations: !important, then origin,
// then inline style, then selector specificity, then source order.
type CascadePriority struct {
	Important   bool
	Origin      Origin
	Inline      bool
	Specificity cascadia.Specificity
	Order       int
}

// Compare returns -1, 0 or 1.
func (p CascadePriority) Compare(q CascadePriority) int {
	switch {
	case p.Important != q.Important:
		return boolCmp(p.Important)
	case p.Origin != q.Origin:
		return intCmp(int(p.Origin), int(q.Origin))
	case p.Inline != q.Inline:
		return boolCmp(p.Inline)
	case p.Specificity != q.Specificity:
		if p.Specificity.Less(q.Specificity) {
			return -1
		}
		return 1
	}
	return intCmp(p.Order, q.Order)
}

// Less reports p < q. A declaration replaces the stored one unless its
// priority is Less, so equal priorities resolve to the later declaration.
func (p CascadePriority) Less(q CascadePriority) bool { return p.Compare(q) < 0 }

func boolCmp(a bool) int {
	if a {
		return 1
	}
	return -1
}

func intCmp(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// StyleComputer computes element styles from an ordered list of
// stylesheets. It is immutable after construction and safe for concurrent
// use.
type StyleComputer struct {
	sheets []*Stylesheet
	index  *ruleIndex
}

// NewStyleComputer builds a computer over sheets in cascade order.
func NewStyleComputer(sheets ...*Stylesheet) *StyleComputer {
	return &StyleComputer{sheets: sheets, index: buildRuleIndex(sheets)}
}

// FromDocument collects every <style> element of doc in document order and
// appends those sheets after extra.
func FromDocument(doc *html.Node, extra ...*Stylesheet) *StyleComputer {
	sheets := append([]*Stylesheet{}, extra...)
	sheets = append(sheets, DocumentStylesheets(doc)...)
	return NewStyleComputer(sheets...)
}

// DocumentStylesheets parses the <style> elements of doc.
func DocumentStylesheets(doc *html.Node) []*Stylesheet {
	var sheets []*Stylesheet
	goquery.NewDocumentFromNode(doc).Find("style").Each(func(_ int, sel *goquery.Selection) {
		node := sel.Get(0)
		if t, ok := dom.Attr(node, "type"); ok && t != "" && !strings.EqualFold(strings.TrimSpace(t), "text/css") {
			return
		}
		media, _ := dom.Attr(node, "media")
		sheets = append(sheets, ParseStylesheetForMedia(sel.Text(), media))
	})
	return sheets
}

// Stylesheets returns the sheets in cascade order.
func (c *StyleComputer) Stylesheets() []*Stylesheet { return c.sheets }

// ComputeStyle computes the style of el without evaluating media
// conditions: every @media block applies.
func (c *StyleComputer) ComputeStyle(el *html.Node, parent *ComputedStyle) ComputedStyle {
	return c.compute(el, parent, nil)
}

// ComputeStyleInViewport computes the style of el, skipping @media blocks
// that do not match a viewport of the given size.
func (c *StyleComputer) ComputeStyleInViewport(el *html.Node, parent *ComputedStyle, viewportWidth, viewportHeight int) ComputedStyle {
	return c.compute(el, parent, &viewportSize{width: max(viewportWidth, 0), height: max(viewportHeight, 0)})
}

func (c *StyleComputer) compute(el *html.Node, parent *ComputedStyle, vp *viewportSize) ComputedStyle {
	if parent == nil {
		root := RootDefaults()
		parent = &root
	}
	b := newStyleBuilder(inheritFrom(parent, DefaultDisplay(el)), vp)
	b.applyPresentationalHints(el)

	matched := c.index.match(el, vp)
	inline := ParseDeclarations(dom.AttrOr(el, "style", ""))
	inlinePriority := func(important bool) CascadePriority {
		return CascadePriority{Important: important, Origin: OriginAuthor, Inline: true, Order: math.MaxInt}
	}

	for _, m := range matched {
		for _, d := range m.rule.Declarations {
			if d.IsCustom() {
				b.declareCustom(d.Property, d.Value, ruleDeclPriority(m, d))
			}
		}
	}
	for _, d := range inline {
		if d.IsCustom() {
			b.declareCustom(d.Property, d.Value, inlinePriority(d.Important))
		}
	}
	b.finalizeCustomProperties()

	for _, m := range matched {
		for _, d := range m.rule.Declarations {
			if !d.IsCustom() {
				b.applyDeclaration(d.Property, d.Value, ruleDeclPriority(m, d))
			}
		}
	}
	for _, d := range inline {
		if !d.IsCustom() {
			b.applyDeclaration(d.Property, d.Value, inlinePriority(d.Important))
		}
	}
	return b.finish()
}

func ruleDeclPriority(m matchedRule, d Declaration) CascadePriority {
	return CascadePriority{
		Important:   d.Important,
		Origin:      OriginAuthor,
		Specificity: cascadia.Specificity(m.specificity),
		Order:       m.order,
	}
}

var blockTags = map[string]bool{
	"html": true, "body": true, "div": true, "p": true, "center": true,
	"header": true, "main": true, "footer": true, "nav": true, "ul": true,
	"ol": true, "li": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "blockquote": true, "pre": true, "section": true,
	"article": true, "aside": true, "form": true, "hr": true, "dl": true,
	"dt": true, "dd": true, "figure": true, "figcaption": true, "address": true,
	"fieldset": true, "details": true, "summary": true,
}

// DefaultDisplay is the display an element has before any CSS applies.
func DefaultDisplay(el *html.Node) Display {
	if el == nil || el.Type == html.DocumentNode {
		return DisplayBlock
	}
	tag := dom.Tag(el)
	switch tag {
	case "head", "style", "script", "meta", "link", "title", "template", "noscript":
		return DisplayNone
	case "table":
		return DisplayTable
	case "tr":
		return DisplayTableRow
	case "td", "th":
		return DisplayTableCell
	case "thead", "tbody", "tfoot":
		return DisplayBlock
	case "img", "svg", "button", "input", "select", "textarea":
		return DisplayInlineBlock
	}
	if blockTags[tag] {
		return DisplayBlock
	}
	return DisplayInline
}
