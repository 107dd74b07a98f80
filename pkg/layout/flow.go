package layout

import (
	"golang.org/x/net/html"

	"l14core/pkg/css"
	"l14core/pkg/render"
)

// flowState is the cursor of one flow-children pass.
type flowState struct {
	le          *LayoutEngine
	parentStyle *css.ComputedStyle
	content     Rect
	paint       bool
	href        string

	cursorY     int
	inline      []*html.Node
	floats      []floatPlacement
	floatBottom int
	deferred    []deferredPaint
}

// deferredPaint holds the commands of a float, painted after the flow
// content it sits beside.
type deferredPaint struct {
	commands []render.Command
	links    []LinkHitRegion
}

// layoutFlowChildren lays out the children of parent in normal flow inside
// content and returns the height they use. Text and inline-level elements
// gather into inline runs; blocks stack; floats narrow the flow area;
// absolute and fixed boxes leave the flow.
func (le *LayoutEngine) layoutFlowChildren(parent *html.Node, parentStyle *css.ComputedStyle, content Rect, paint bool) (int, error) {
	fs := &flowState{
		le:          le,
		parentStyle: parentStyle,
		content:     content,
		paint:       paint,
		href:        inheritedHref(parent),
		cursorY:     content.Y,
		floatBottom: content.Y,
	}
	limit := le.layoutLimit()

	for child := parent.FirstChild; child != nil; child = child.NextSibling {
		if fs.cursorY >= limit {
			break
		}
		switch child.Type {
		case html.TextNode:
			fs.inline = append(fs.inline, child)
			continue
		case html.ElementNode:
		default:
			continue
		}

		style := le.computeStyle(child, parentStyle)
		if style.Display == css.DisplayNone {
			continue
		}

		var err error
		switch {
		case style.Float != css.FloatNone && !style.Position.OutOfFlow():
			err = fs.addFloat(child, &style)
		case style.Position.OutOfFlow():
			if err = fs.flushInline(); err == nil {
				err = le.layoutPositionedBox(child, &style, le.currentPositionedBlock(), paint)
			}
		case isFlowBlock(&style, child):
			err = fs.addBlock(child, &style)
		default:
			fs.inline = append(fs.inline, child)
		}
		if err != nil {
			return 0, err
		}
	}

	if err := fs.flushInline(); err != nil {
		return 0, err
	}
	for _, d := range fs.deferred {
		le.list.Commands = append(le.list.Commands, d.commands...)
		le.links = append(le.links, d.links...)
	}
	return max(max(fs.cursorY, fs.floatBottom)-content.Y, 0), nil
}

func (fs *flowState) flushInline() error {
	if len(fs.inline) == 0 {
		return nil
	}
	area, y := flowAreaAtY(fs.floats, fs.content, fs.cursorY)
	height, err := fs.le.layoutInline(fs.inline, fs.parentStyle, area, y, fs.paint, fs.href)
	if err != nil {
		return err
	}
	fs.cursorY = y + height
	fs.inline = fs.inline[:0]
	return nil
}

func (fs *flowState) addFloat(el *html.Node, style *css.ComputedStyle) error {
	if err := fs.flushInline(); err != nil {
		return err
	}
	le := fs.le
	savedList, savedLinks := le.list, le.links
	le.list, le.links = render.DisplayList{}, nil

	placement, err := le.layoutFloat(el, style, fs.parentStyle, fs.content, fs.cursorY, fs.floats, fs.paint)
	fs.deferred = append(fs.deferred, deferredPaint{commands: le.list.Commands, links: le.links})
	le.list, le.links = savedList, savedLinks
	if err != nil {
		return err
	}
	fs.floatBottom = max(fs.floatBottom, placement.rect.Bottom())
	fs.floats = append(fs.floats, placement)
	return nil
}

func (fs *flowState) addBlock(el *html.Node, style *css.ComputedStyle) error {
	if err := fs.flushInline(); err != nil {
		return err
	}
	le := fs.le
	if establishesBFC(style) {
		area, y := flowAreaForWidth(fs.floats, fs.content, fs.cursorY, requiredOuterWidth(style, fs.content.Width))
		fs.cursorY = y
		containing := Rect{X: area.X, Y: y, Width: area.Width, Height: fs.content.Height}
		return le.layoutBlockBox(el, style, fs.parentStyle, containing, &fs.cursorY, fs.paint, nil)
	}
	area := flowAreaAtExactY(fs.floats, fs.content, fs.cursorY)
	containing := Rect{X: fs.content.X, Y: fs.cursorY, Width: fs.content.Width, Height: fs.content.Height}
	return le.layoutBlockBox(el, style, fs.parentStyle, containing, &fs.cursorY, fs.paint, &area)
}
