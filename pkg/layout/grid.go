package layout

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"l14core/pkg/css"
	"l14core/pkg/dom"
)

// gridArea is the half-open row and column span of a named area.
type gridArea struct {
	rowStart, rowEnd int
	colStart, colEnd int
}

type gridItem struct {
	el    *html.Node
	style css.ComputedStyle
	area  *gridArea
}

type trackKind int

const (
	trackFixed trackKind = iota
	trackFr
	trackContent
)

type gridTrack struct {
	kind   trackKind
	length css.Length
	fr     float64
}

// layoutGrid places children into the named areas of grid-template-areas
// over the columns of grid-template-columns. Without usable areas, or
// with loose text, the container lays out as block flow.
func (le *LayoutEngine) layoutGrid(el *html.Node, style *css.ComputedStyle, content Rect, paint bool) (int, error) {
	template := parseTemplateAreas(style.GridTemplateAreas)
	areas := buildAreaMap(template)
	if len(areas) == 0 {
		return le.layoutFlowChildren(el, style, content, paint)
	}

	var items []gridItem
	var positioned []positionedChild
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if !dom.IsBlankText(c) {
				return le.layoutFlowChildren(el, style, content, paint)
			}
		case html.ElementNode:
			cs := le.computeStyle(c, style)
			if cs.Display == css.DisplayNone {
				continue
			}
			if cs.Position.OutOfFlow() {
				positioned = append(positioned, positionedChild{el: c, style: cs})
				continue
			}
			item := gridItem{el: c, style: cs}
			if a, ok := areas[strings.TrimSpace(cs.GridArea)]; ok {
				item.area = &a
			}
			items = append(items, item)
		}
	}

	columns := 1
	for _, row := range template {
		columns = max(columns, len(row))
	}
	tracks := parseTrackList(style.GridTemplateColumns)
	for len(tracks) < columns {
		tracks = append(tracks, gridTrack{kind: trackFr, fr: 1})
	}
	tracks = tracks[:columns]
	gap := max(style.GapPx, 0)
	widths, err := le.gridColumnWidths(items, tracks, content.Width, gap)
	if err != nil {
		return 0, err
	}

	placed := make([]bool, len(items))
	rowY := content.Y
	bottom := content.Y
	for r := range template {
		rowHeight := 0
		for i := range items {
			it := &items[i]
			if it.area == nil || placed[i] || it.area.rowStart != r {
				continue
			}
			placed[i] = true
			w := spanWidth(widths, it.area.colStart, it.area.colEnd-it.area.colStart, gap)
			if w <= 0 {
				continue
			}
			x := content.X + spanWidth(widths, 0, it.area.colStart, gap)
			if it.area.colStart > 0 {
				x += gap
			}
			cursor := rowY
			containing := Rect{X: x, Y: rowY, Width: w, Height: max(content.Height-(rowY-content.Y), 0)}
			if err := le.layoutBlockBox(it.el, &it.style, style, containing, &cursor, paint, nil); err != nil {
				return 0, err
			}
			if it.area.rowEnd-it.area.rowStart <= 1 {
				rowHeight = max(rowHeight, cursor-rowY)
			}
			bottom = max(bottom, cursor)
		}
		rowY += max(rowHeight, 0)
	}

	cursor := max(rowY, bottom)
	for i := range items {
		if placed[i] {
			continue
		}
		if err := le.layoutBlockBox(items[i].el, &items[i].style, style, content, &cursor, paint, nil); err != nil {
			return 0, err
		}
	}

	containing := le.currentPositionedBlock()
	for _, p := range positioned {
		if err := le.layoutPositionedBox(p.el, &p.style, containing, paint); err != nil {
			return 0, err
		}
	}
	return max(cursor-content.Y, 0), nil
}

// parseTemplateAreas reads the quoted rows of grid-template-areas and pads
// short rows with ".".
func parseTemplateAreas(input string) [][]string {
	var rows [][]string
	for len(input) > 0 {
		start := strings.IndexAny(input, `"'`)
		if start < 0 {
			break
		}
		quote := input[start]
		end := strings.IndexByte(input[start+1:], quote)
		if end < 0 {
			break
		}
		if row := strings.Fields(input[start+1 : start+1+end]); len(row) > 0 {
			rows = append(rows, row)
		}
		input = input[start+1+end+1:]
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	for i := range rows {
		for len(rows[i]) < width {
			rows[i] = append(rows[i], ".")
		}
	}
	return rows
}

// buildAreaMap returns the bounds of every named area. Areas that are not
// rectangles are dropped.
func buildAreaMap(rows [][]string) map[string]gridArea {
	bounds := make(map[string]gridArea)
	for r, row := range rows {
		for c, name := range row {
			if name == "." {
				continue
			}
			a, ok := bounds[name]
			if !ok {
				bounds[name] = gridArea{rowStart: r, rowEnd: r + 1, colStart: c, colEnd: c + 1}
				continue
			}
			a.rowStart, a.rowEnd = min(a.rowStart, r), max(a.rowEnd, r+1)
			a.colStart, a.colEnd = min(a.colStart, c), max(a.colEnd, c+1)
			bounds[name] = a
		}
	}

	areas := make(map[string]gridArea, len(bounds))
	for name, a := range bounds {
		if isRectangularArea(rows, name, a) {
			areas[name] = a
		}
	}
	return areas
}

func isRectangularArea(rows [][]string, name string, a gridArea) bool {
	for r := a.rowStart; r < a.rowEnd; r++ {
		for c := a.colStart; c < a.colEnd; c++ {
			if c >= len(rows[r]) || rows[r][c] != name {
				return false
			}
		}
	}
	return true
}

// parseTrackList reads grid-template-columns. minmax() uses its maximum;
// anything unrecognized sizes to content.
func parseTrackList(input string) []gridTrack {
	var tracks []gridTrack
	for _, tok := range splitOutsideParens(input) {
		tracks = append(tracks, parseTrack(tok))
	}
	return tracks
}

func parseTrack(tok string) gridTrack {
	lower := strings.ToLower(strings.TrimSpace(tok))
	if inner, ok := strings.CutPrefix(lower, "minmax("); ok && strings.HasSuffix(inner, ")") {
		args := splitTopLevel(inner[:len(inner)-1], ',')
		if len(args) == 2 {
			return parseTrack(args[1])
		}
		return gridTrack{kind: trackContent}
	}
	if num, ok := strings.CutSuffix(lower, "fr"); ok {
		if fr, err := strconv.ParseFloat(strings.TrimSpace(num), 64); err == nil {
			return gridTrack{kind: trackFr, fr: max(fr, 0)}
		}
	}
	if l, ok := css.ParseLength(lower); ok {
		return gridTrack{kind: trackFixed, length: l}
	}
	return gridTrack{kind: trackContent}
}

// splitOutsideParens splits at whitespace that is not inside parentheses.
func splitOutsideParens(input string) []string {
	var out []string
	depth, start := 0, -1
	for i, r := range input {
		switch {
		case r == '(':
			depth++
		case r == ')':
			depth = max(depth-1, 0)
		case depth == 0 && (r == ' ' || r == '\t' || r == '\n'):
			if start >= 0 {
				out = append(out, input[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, input[start:])
	}
	return out
}

func splitTopLevel(input string, sep rune) []string {
	var out []string
	depth, start := 0, 0
	for i, r := range input {
		switch r {
		case '(':
			depth++
		case ')':
			depth = max(depth-1, 0)
		case sep:
			if depth == 0 {
				out = append(out, strings.TrimSpace(input[start:i]))
				start = i + 1
			}
		}
	}
	return append(out, strings.TrimSpace(input[start:]))
}

// gridColumnWidths sizes fixed and content tracks first, then shares what
// is left among fr tracks; the last fr track takes the rounding remainder.
func (le *LayoutEngine) gridColumnWidths(items []gridItem, tracks []gridTrack, available, gap int) ([]int, error) {
	widths := make([]int, len(tracks))
	totalFr := 0.0
	lastFr := -1
	for i, t := range tracks {
		switch t.kind {
		case trackFixed:
			widths[i] = max(t.length.Resolve(available), 0)
		case trackFr:
			if t.fr > 0 {
				totalFr += t.fr
				lastFr = i
			}
		case trackContent:
			for j := range items {
				it := &items[j]
				if it.area == nil || it.area.colStart != i || it.area.colEnd != i+1 {
					continue
				}
				w, err := le.outerMaxContentWidth(it.el, &it.style, available)
				if err != nil {
					return nil, err
				}
				widths[i] = max(widths[i], w)
			}
		}
	}
	if totalFr == 0 {
		return widths, nil
	}

	used := gap * (len(tracks) - 1)
	for _, w := range widths {
		used += w
	}
	remaining := max(available-used, 0)
	given := 0
	for i, t := range tracks {
		if t.kind != trackFr || t.fr <= 0 {
			continue
		}
		if i == lastFr {
			widths[i] = max(remaining-given, 0)
			break
		}
		widths[i] = roundInt(float64(remaining) * t.fr / totalFr)
		given += widths[i]
	}
	return widths, nil
}
