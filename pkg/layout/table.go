package layout

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"l14core/pkg/css"
	"l14core/pkg/dom"
	"l14core/pkg/render"
	"l14core/pkg/text"
)

type tableRow struct {
	el    *html.Node
	style css.ComputedStyle
	cells []tableCell
}

type tableCell struct {
	el        *html.Node
	style     css.ComputedStyle
	col, span int
}

// tableRows collects the rows of a table in document order, looking
// through thead, tbody and tfoot. Hidden rows and cells are dropped.
func (le *LayoutEngine) tableRows(table *html.Node, style *css.ComputedStyle) ([]tableRow, int) {
	var rows []tableRow
	columns := 0
	addRow := func(tr *html.Node, parentStyle *css.ComputedStyle) {
		rs := le.computeStyle(tr, parentStyle)
		if rs.Display == css.DisplayNone {
			return
		}
		row := tableRow{el: tr, style: rs}
		col := 0
		for _, c := range dom.ElementChildren(tr) {
			if tag := dom.Tag(c); tag != "td" && tag != "th" {
				continue
			}
			cs := le.computeStyle(c, &row.style)
			if cs.Display == css.DisplayNone {
				continue
			}
			span := max(attrInt(c, "colspan", 1), 1)
			row.cells = append(row.cells, tableCell{el: c, style: cs, col: col, span: span})
			col += span
		}
		columns = max(columns, col)
		rows = append(rows, row)
	}

	for _, c := range dom.ElementChildren(table) {
		switch dom.Tag(c) {
		case "tr":
			addRow(c, style)
		case "thead", "tbody", "tfoot":
			ss := le.computeStyle(c, style)
			if ss.Display == css.DisplayNone {
				continue
			}
			for _, tr := range dom.ElementChildren(c) {
				if dom.Tag(tr) == "tr" {
					addRow(tr, &ss)
				}
			}
		}
	}
	return rows, max(columns, 1)
}

func attrInt(el *html.Node, name string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(dom.AttrOr(el, name, "")))
	if err != nil {
		return fallback
	}
	return v
}

// tableColumnWidths sizes columns from single-column cells: an explicit
// width fixes the column, otherwise the widest word sets its minimum.
// Right-aligned cells also fix their column. Free space goes to the widest
// column that is not fixed.
func (le *LayoutEngine) tableColumnWidths(rows []tableRow, columns, cellpadding, cellspacing, available int) ([]int, error) {
	widths := make([]int, columns)
	fixed := make([]bool, columns)
	for _, row := range rows {
		for _, cell := range row.cells {
			if cell.span != 1 {
				continue
			}
			if cell.style.Width != nil {
				widths[cell.col] = max(widths[cell.col], cell.style.Width.Resolve(available))
				fixed[cell.col] = true
				continue
			}
			w, err := le.cellMinWidth(&cell, cellpadding)
			if err != nil {
				return nil, err
			}
			widths[cell.col] = max(widths[cell.col], w)
			if cell.style.TextAlign == css.TextAlignRight {
				fixed[cell.col] = true
			}
		}
	}

	if extra := available - spanWidth(widths, 0, columns, cellspacing); extra > 0 {
		best := -1
		for i, w := range widths {
			if !fixed[i] && (best < 0 || w > widths[best]) {
				best = i
			}
		}
		if best >= 0 {
			widths[best] += extra
		}
	}
	return widths, nil
}

// spanWidth is the width of span columns from start, including the
// spacing between them.
func spanWidth(widths []int, start, span, spacing int) int {
	w := 0
	for i := start; i < start+span && i < len(widths); i++ {
		if i > start {
			w += spacing
		}
		w += widths[i]
	}
	return w
}

// cellMinWidth is the widest unbreakable piece of a cell's content plus
// its padding and borders.
func (le *LayoutEngine) cellMinWidth(cell *tableCell, cellpadding int) (int, error) {
	widest, err := le.widestWord(cell.el, &cell.style)
	if err != nil {
		return 0, err
	}
	padding := cell.style.Padding.Resolve(0)
	return widest + 2*cellpadding + padding.Horizontal() + cell.style.BorderWidth.Horizontal(), nil
}

func (le *LayoutEngine) widestWord(el *html.Node, style *css.ComputedStyle) (int, error) {
	widest := 0
	ts := render.TextStyleFor(style)
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			for _, word := range text.Words(style.TextTransform.Apply(c.Data)) {
				w, err := le.textWidth(word, ts)
				if err != nil {
					return 0, err
				}
				widest = max(widest, w)
			}
		case html.ElementNode:
			cs := le.computeStyle(c, style)
			if cs.Display == css.DisplayNone {
				continue
			}
			switch {
			case isReplaced(c):
				s, err := le.replacedOuterSize(c, &cs, 0)
				if err != nil {
					return 0, err
				}
				widest = max(widest, s.width)
				continue
			case cs.Width != nil:
				padding := cs.Padding.Resolve(0)
				widest = max(widest, cs.Width.Resolve(0)+cs.Margin.Horizontal()+padding.Horizontal())
			}
			w, err := le.widestWord(c, &cs)
			if err != nil {
				return 0, err
			}
			widest = max(widest, w)
		}
	}
	return widest, nil
}

// cellBorder is a cell border painted once its row height is known.
type cellBorder struct {
	box     Rect
	style   *css.ComputedStyle
	opacity uint8
}

// layoutTable lays out rows top to bottom and cells left to right in
// content, honoring cellpadding, cellspacing and colspan, and returns the
// table height.
func (le *LayoutEngine) layoutTable(el *html.Node, style *css.ComputedStyle, content Rect, paint bool) (int, error) {
	cellpadding := max(attrInt(el, "cellpadding", 0), 0)
	cellspacing := max(attrInt(el, "cellspacing", 0), 0)

	rows, columns := le.tableRows(el, style)
	widths, err := le.tableColumnWidths(rows, columns, cellpadding, cellspacing, content.Width)
	if err != nil {
		return 0, err
	}

	limit := le.layoutLimit()
	y := content.Y
	for i := range rows {
		if y >= limit {
			break
		}
		row := &rows[i]
		rowPaint := paint && row.style.Visibility == css.Visible
		rowHeight := 0
		if row.style.Height != nil {
			rowHeight = max(*row.style.Height, 0)
		}

		var backgrounds []int
		var borders []cellBorder
		for j := range row.cells {
			cell := &row.cells[j]
			cs := &cell.style
			x := content.X + spanWidth(widths, 0, cell.col, cellspacing)
			if cell.col > 0 {
				x += cellspacing
			}
			w := spanWidth(widths, cell.col, cell.span, cellspacing)

			cellPaint := rowPaint && cs.Visibility == css.Visible && cs.Opacity != 0
			group := cellPaint && cs.Opacity < 255
			if group {
				le.list.Append(render.PushOpacity{Alpha: cs.Opacity})
			}
			padding := addEdges(css.UniformEdges(cellpadding), cs.Padding.Resolve(w))
			inset := addEdges(cs.BorderWidth, padding)
			borderBox := Rect{X: x, Y: y, Width: w}
			if cellPaint {
				if idx := le.pushBackground(borderBox, cs); idx >= 0 {
					backgrounds = append(backgrounds, idx)
				}
			}

			positioned := cs.Position != css.PositionStatic
			if positioned {
				le.pushPositionedBlock(borderBox, cs.BorderWidth)
			}
			h, err := le.layoutFlowChildren(cell.el, cs, borderBox.Inset(inset), cellPaint)
			if positioned {
				le.popPositionedBlock()
			}
			if err != nil {
				return 0, err
			}
			if group {
				le.list.Append(render.PopOpacity{Alpha: cs.Opacity})
			}

			cellHeight := inset.Top + h + inset.Bottom
			if cs.Height != nil {
				cellHeight = max(cellHeight, *cs.Height)
			}
			rowHeight = max(rowHeight, cellHeight)
			if cellPaint && cs.BorderStyle == css.BorderSolid {
				borders = append(borders, cellBorder{box: borderBox, style: cs, opacity: cs.Opacity})
			}
		}

		for _, idx := range backgrounds {
			le.list.SetHeight(idx, rowHeight)
		}
		for _, b := range borders {
			b.box.Height = rowHeight
			if b.opacity < 255 {
				le.list.Append(render.PushOpacity{Alpha: b.opacity})
			}
			le.paintBorder(b.box, b.style)
			if b.opacity < 255 {
				le.list.Append(render.PopOpacity{Alpha: b.opacity})
			}
		}
		y += rowHeight + cellspacing
	}
	return max(y-content.Y, 0), nil
}
