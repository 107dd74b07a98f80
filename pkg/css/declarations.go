package css

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// slot is the winning declaration for one longhand property so far.
type slot struct {
	priority CascadePriority
	apply    func(*ComputedStyle)
}

// styleBuilder accumulates the cascade for one element. Every longhand
// property keeps only its highest-priority parsed value; the winners are
// written over the inherited base in finish.
type styleBuilder struct {
	base     ComputedStyle
	vp       *viewportSize
	declared map[string]cascadedString
	props    *CustomProperties
	slots    map[string]slot
	log      *zap.Logger
}

type cascadedString struct {
	value    string
	priority CascadePriority
}

func newStyleBuilder(base ComputedStyle, vp *viewportSize) *styleBuilder {
	return &styleBuilder{
		base:     base,
		vp:       vp,
		declared: make(map[string]cascadedString),
		props:    base.CustomProperties,
		slots:    make(map[string]slot),
		log:      zap.L().Named("css"),
	}
}

func (b *styleBuilder) set(property string, priority CascadePriority, apply func(*ComputedStyle)) {
	if cur, ok := b.slots[property]; ok && priority.Less(cur.priority) {
		return
	}
	b.slots[property] = slot{priority: priority, apply: apply}
}

func (b *styleBuilder) declareCustom(name, value string, priority CascadePriority) {
	name = strings.ToLower(name)
	if cur, ok := b.declared[name]; ok && priority.Less(cur.priority) {
		return
	}
	b.declared[name] = cascadedString{value: value, priority: priority}
}

// finalizeCustomProperties builds this element's snapshot. It must run
// before any regular declaration is applied so var() sees it.
func (b *styleBuilder) finalizeCustomProperties() {
	if len(b.declared) == 0 {
		return
	}
	values := make(map[string]string, len(b.declared))
	for name, c := range b.declared {
		values[name] = c.value
	}
	b.props = MergeCustomProperties(b.base.CustomProperties, values)
}

func (b *styleBuilder) finish() ComputedStyle {
	s := b.base
	s.CustomProperties = b.props
	for name, sl := range b.slots {
		if name == "letter-spacing" {
			continue
		}
		sl.apply(&s)
	}
	// em letter spacing depends on the final font size.
	if sl, ok := b.slots["letter-spacing"]; ok {
		sl.apply(&s)
	}
	if _, ok := b.slots["border-color"]; !ok {
		s.BorderColor = s.Color
	}
	return s
}

func (b *styleBuilder) length(value string) (Length, bool) {
	if b.vp != nil {
		return ParseLengthInViewport(value, b.vp.width, b.vp.height)
	}
	return ParseLength(value)
}

// px parses an absolute length; percentages are rejected.
func (b *styleBuilder) px(value string) (int, bool) {
	l, ok := b.length(value)
	if !ok || l.Kind != LengthPx {
		return 0, false
	}
	return l.Px, true
}

func isResetKeyword(v string) bool {
	return strings.EqualFold(v, "auto") || strings.EqualFold(v, "unset") || strings.EqualFold(v, "initial")
}

// applyDeclaration resolves var() references, parses the value and feeds
// the longhands it sets into the cascade. Values that fail either step are
// ignored.
func (b *styleBuilder) applyDeclaration(name, raw string, priority CascadePriority) {
	value, ok := b.props.ResolveVars(raw)
	if !ok {
		b.log.Debug("dropping declaration with unresolvable var()", zap.String("property", name), zap.String("value", raw))
		return
	}
	value = strings.TrimSpace(value)
	lower := strings.ToLower(value)

	switch name {
	case "display":
		if d, ok := parseDisplay(lower); ok {
			b.set(name, priority, func(s *ComputedStyle) { s.Display = d })
		}
	case "visibility":
		switch lower {
		case "hidden", "collapse":
			b.set(name, priority, func(s *ComputedStyle) { s.Visibility = Hidden })
		case "visible":
			b.set(name, priority, func(s *ComputedStyle) { s.Visibility = Visible })
		}
	case "position":
		var p Position
		switch lower {
		case "static":
			p = PositionStatic
		case "relative", "sticky":
			p = PositionRelative
		case "absolute":
			p = PositionAbsolute
		case "fixed":
			p = PositionFixed
		default:
			return
		}
		b.set(name, priority, func(s *ComputedStyle) { s.Position = p })
	case "float":
		var f Float
		switch lower {
		case "none":
			f = FloatNone
		case "left":
			f = FloatLeft
		case "right":
			f = FloatRight
		default:
			return
		}
		b.set(name, priority, func(s *ComputedStyle) { s.Float = f })
	case "top", "right", "bottom", "left":
		b.applyOffset(name, value, priority)
	case "color":
		if c, ok := ParseColor(value); ok {
			b.set(name, priority, func(s *ComputedStyle) { s.Color = c })
		}
	case "background-color":
		if c, ok := ParseColor(value); ok {
			b.set(name, priority, func(s *ComputedStyle) { s.BackgroundColor = c })
		}
	case "background-image":
		if g, ok := ParseLinearGradient(value); ok {
			b.set(name, priority, func(s *ComputedStyle) { s.BackgroundGradient = &g })
		} else if lower == "none" {
			b.set(name, priority, func(s *ComputedStyle) { s.BackgroundGradient = nil })
		}
	case "background":
		if g, ok := ParseLinearGradient(value); ok {
			b.set("background-image", priority, func(s *ComputedStyle) { s.BackgroundGradient = &g })
			b.set("background-color", priority, func(s *ComputedStyle) { s.BackgroundColor = Transparent })
		} else if c, ok := ParseColor(value); ok {
			b.set("background-color", priority, func(s *ComputedStyle) { s.BackgroundColor = c })
			b.set("background-image", priority, func(s *ComputedStyle) { s.BackgroundGradient = nil })
		} else if lower == "none" {
			b.set("background-color", priority, func(s *ComputedStyle) { s.BackgroundColor = Transparent })
			b.set("background-image", priority, func(s *ComputedStyle) { s.BackgroundGradient = nil })
		} else if c, ok := firstColorComponent(value); ok {
			b.set("background-color", priority, func(s *ComputedStyle) { s.BackgroundColor = c })
		}
	case "opacity":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			o := clampByte(min(max(f, 0), 1) * 255)
			b.set(name, priority, func(s *ComputedStyle) { s.Opacity = o })
		}
	case "font-family":
		fam := parseFontFamily(lower)
		b.set(name, priority, func(s *ComputedStyle) { s.FontFamily = fam })
	case "font-size":
		if px, ok := b.px(value); ok && px >= 0 {
			b.set(name, priority, func(s *ComputedStyle) { s.FontSizePx = px })
		}
	case "letter-spacing":
		if lower == "normal" {
			b.set(name, priority, func(s *ComputedStyle) { s.LetterSpacingPx = 0 })
		} else if factor, ok := parseEmFactor(lower); ok {
			b.set(name, priority, func(s *ComputedStyle) { s.LetterSpacingPx = roundPx(factor * float64(max(s.FontSizePx, 0))) })
		} else if px, ok := b.px(value); ok {
			b.set(name, priority, func(s *ComputedStyle) { s.LetterSpacingPx = px })
		}
	case "font-weight":
		switch lower {
		case "bold", "bolder":
			b.set(name, priority, func(s *ComputedStyle) { s.Bold = true })
		case "normal", "lighter":
			b.set(name, priority, func(s *ComputedStyle) { s.Bold = false })
		default:
			if w, err := strconv.Atoi(lower); err == nil {
				bold := w >= 600
				b.set(name, priority, func(s *ComputedStyle) { s.Bold = bold })
			}
		}
	case "text-decoration", "text-decoration-line":
		switch {
		case strings.Contains(lower, "underline"):
			b.set("text-decoration", priority, func(s *ComputedStyle) { s.Underline = true })
		case lower == "none":
			b.set("text-decoration", priority, func(s *ComputedStyle) { s.Underline = false })
		}
	case "text-align":
		if a, ok := parseTextAlign(lower); ok {
			b.set(name, priority, func(s *ComputedStyle) { s.TextAlign = a })
		}
	case "text-transform":
		var t TextTransform
		switch lower {
		case "none":
			t = TextTransformNone
		case "uppercase":
			t = TextTransformUppercase
		case "lowercase":
			t = TextTransformLowercase
		case "capitalize":
			t = TextTransformCapitalize
		default:
			return
		}
		b.set(name, priority, func(s *ComputedStyle) { s.TextTransform = t })
	case "white-space":
		var ws WhiteSpace
		switch lower {
		case "normal", "pre-line":
			ws = WhiteSpaceNormal
		case "nowrap":
			ws = WhiteSpaceNoWrap
		case "pre", "pre-wrap":
			ws = WhiteSpacePre
		default:
			return
		}
		b.set(name, priority, func(s *ComputedStyle) { s.WhiteSpace = ws })
	case "line-height":
		if lh, ok := b.parseLineHeight(lower); ok {
			b.set(name, priority, func(s *ComputedStyle) { s.LineHeight = lh })
		}
	case "margin":
		b.applyMargin(value, priority)
	case "margin-top", "margin-right", "margin-bottom", "margin-left":
		b.applyMarginSide(name, value, priority)
	case "padding":
		if edges, ok := b.parseLengthEdges(value); ok {
			b.applyPaddingSide("padding-top", edges.Top, priority)
			b.applyPaddingSide("padding-right", edges.Right, priority)
			b.applyPaddingSide("padding-bottom", edges.Bottom, priority)
			b.applyPaddingSide("padding-left", edges.Left, priority)
		}
	case "padding-top", "padding-right", "padding-bottom", "padding-left":
		if l, ok := b.length(value); ok {
			b.applyPaddingSide(name, l, priority)
		}
	case "border":
		if border, ok := b.parseBorder(value); ok {
			b.applyBorder(border, []string{"top", "right", "bottom", "left"}, priority)
		}
	case "border-top", "border-right", "border-bottom", "border-left":
		if border, ok := b.parseBorder(value); ok {
			b.applyBorder(border, []string{strings.TrimPrefix(name, "border-")}, priority)
		}
	case "border-width":
		if edges, ok := b.parseEdges(value); ok {
			b.applyBorderWidthSide("top", edges.Top, priority)
			b.applyBorderWidthSide("right", edges.Right, priority)
			b.applyBorderWidthSide("bottom", edges.Bottom, priority)
			b.applyBorderWidthSide("left", edges.Left, priority)
		}
	case "border-top-width", "border-right-width", "border-bottom-width", "border-left-width":
		if px, ok := b.px(value); ok {
			side := strings.TrimSuffix(strings.TrimPrefix(name, "border-"), "-width")
			b.applyBorderWidthSide(side, px, priority)
		}
	case "border-style":
		if st, ok := parseBorderStyle(strings.Fields(lower)); ok {
			b.set(name, priority, func(s *ComputedStyle) { s.BorderStyle = st })
		}
	case "border-color":
		for _, field := range strings.Fields(value) {
			if c, ok := ParseColor(field); ok {
				b.set(name, priority, func(s *ComputedStyle) { s.BorderColor = c })
				break
			}
		}
	case "border-radius":
		first, _, _ := strings.Cut(value, "/")
		fields := strings.Fields(first)
		if len(fields) > 0 {
			if px, ok := b.px(fields[0]); ok {
				r := max(px, 0)
				b.set(name, priority, func(s *ComputedStyle) { s.BorderRadiusPx = r })
			}
		}
	case "width", "min-width", "max-width":
		b.applySize(name, value, priority)
	case "height", "min-height":
		if isResetKeyword(value) || (name == "min-height" && lower == "none") {
			b.set(name, priority, func(s *ComputedStyle) { setHeight(s, name, nil) })
		} else if px, ok := b.px(value); ok {
			b.set(name, priority, func(s *ComputedStyle) { setHeight(s, name, &px) })
		}
	case "flex-direction":
		switch lower {
		case "row", "row-reverse":
			b.set(name, priority, func(s *ComputedStyle) { s.FlexDirection = FlexRow })
		case "column", "column-reverse":
			b.set(name, priority, func(s *ComputedStyle) { s.FlexDirection = FlexColumn })
		}
	case "flex-wrap":
		switch lower {
		case "nowrap":
			b.set(name, priority, func(s *ComputedStyle) { s.FlexWrap = FlexNoWrap })
		case "wrap", "wrap-reverse":
			b.set(name, priority, func(s *ComputedStyle) { s.FlexWrap = FlexWrapOn })
		}
	case "flex-flow":
		for _, field := range strings.Fields(lower) {
			b.applyDeclaration("flex-direction", field, priority)
			b.applyDeclaration("flex-wrap", field, priority)
		}
	case "flex-grow":
		if n, ok := parseFlexFactor(lower); ok {
			b.set(name, priority, func(s *ComputedStyle) { s.FlexGrow = n })
		}
	case "flex-shrink":
		if n, ok := parseFlexFactor(lower); ok {
			b.set(name, priority, func(s *ComputedStyle) { s.FlexShrink = n })
		}
	case "flex-basis":
		if isResetKeyword(value) || lower == "content" {
			b.set(name, priority, func(s *ComputedStyle) { s.FlexBasis = nil })
		} else if px, ok := b.px(value); ok {
			basis := max(px, 0)
			b.set(name, priority, func(s *ComputedStyle) { s.FlexBasis = &basis })
		}
	case "flex":
		if f, ok := b.parseFlex(lower); ok {
			b.set("flex-grow", priority, func(s *ComputedStyle) { s.FlexGrow = f.grow })
			b.set("flex-shrink", priority, func(s *ComputedStyle) { s.FlexShrink = f.shrink })
			b.set("flex-basis", priority, func(s *ComputedStyle) { s.FlexBasis = f.basis })
		}
	case "justify-content":
		var j JustifyContent
		switch lower {
		case "flex-start", "start", "left", "normal":
			j = JustifyStart
		case "center":
			j = JustifyCenter
		case "flex-end", "end", "right":
			j = JustifyEnd
		case "space-between":
			j = JustifySpaceBetween
		default:
			return
		}
		b.set(name, priority, func(s *ComputedStyle) { s.JustifyContent = j })
	case "align-items":
		var a AlignItems
		switch lower {
		case "flex-start", "start", "stretch", "normal", "baseline":
			a = AlignStart
		case "center":
			a = AlignCenter
		case "flex-end", "end":
			a = AlignEnd
		default:
			return
		}
		b.set(name, priority, func(s *ComputedStyle) { s.AlignItems = a })
	case "gap", "column-gap", "row-gap", "grid-gap", "grid-column-gap":
		fields := strings.Fields(value)
		if len(fields) == 0 {
			return
		}
		// The row/column distinction is not modelled; the first value wins.
		if px, ok := b.px(fields[0]); ok {
			gap := max(px, 0)
			b.set("gap", priority, func(s *ComputedStyle) { s.GapPx = gap })
		}
	case "grid-area":
		if isResetKeyword(value) {
			b.set(name, priority, func(s *ComputedStyle) { s.GridArea = "" })
			return
		}
		ident, _, _ := strings.Cut(value, "/")
		ident = strings.Trim(strings.TrimSpace(ident), `'"`)
		if ident != "" {
			b.set(name, priority, func(s *ComputedStyle) { s.GridArea = ident })
		}
	case "grid-template-columns", "grid-template-areas":
		if lower == "none" || lower == "unset" || lower == "initial" {
			b.set(name, priority, func(s *ComputedStyle) { setGridTemplate(s, name, "") })
		} else if value != "" {
			b.set(name, priority, func(s *ComputedStyle) { setGridTemplate(s, name, value) })
		}
	case "grid-template":
		if _, columns, ok := strings.Cut(value, "/"); ok {
			columns = strings.TrimSpace(columns)
			if columns != "" {
				b.set("grid-template-columns", priority, func(s *ComputedStyle) { s.GridTemplateColumns = columns })
			}
		}
	}
}

func (b *styleBuilder) applyOffset(name, value string, priority CascadePriority) {
	if isResetKeyword(value) {
		b.set(name, priority, func(s *ComputedStyle) { setOffset(s, name, nil) })
		return
	}
	if l, ok := b.length(value); ok {
		b.set(name, priority, func(s *ComputedStyle) { setOffset(s, name, &l) })
	}
}

func setOffset(s *ComputedStyle, name string, l *Length) {
	switch name {
	case "top":
		s.Top = l
	case "right":
		s.Right = l
	case "bottom":
		s.Bottom = l
	case "left":
		s.Left = l
	}
}

func (b *styleBuilder) applySize(name, value string, priority CascadePriority) {
	lower := strings.ToLower(value)
	reset := lower == "unset" || lower == "initial"
	switch name {
	case "width":
		reset = reset || lower == "auto"
	case "max-width":
		reset = reset || lower == "none"
	case "min-width":
		reset = reset || lower == "auto"
	}
	if reset {
		b.set(name, priority, func(s *ComputedStyle) { setWidth(s, name, nil) })
		return
	}
	if l, ok := b.length(value); ok {
		b.set(name, priority, func(s *ComputedStyle) { setWidth(s, name, &l) })
	}
}

func setWidth(s *ComputedStyle, name string, l *Length) {
	switch name {
	case "width":
		s.Width = l
	case "min-width":
		s.MinWidth = l
	case "max-width":
		s.MaxWidth = l
	}
}

func setHeight(s *ComputedStyle, name string, px *int) {
	if name == "height" {
		s.Height = px
	} else {
		s.MinHeight = px
	}
}

func setGridTemplate(s *ComputedStyle, name, value string) {
	if name == "grid-template-columns" {
		s.GridTemplateColumns = value
	} else {
		s.GridTemplateAreas = value
	}
}

// marginValue is one side of a margin declaration.
type marginValue struct {
	px   int
	auto bool
}

func (b *styleBuilder) parseMarginValue(v string) (marginValue, bool) {
	if strings.EqualFold(v, "auto") {
		return marginValue{auto: true}, true
	}
	if px, ok := b.px(v); ok {
		return marginValue{px: px}, true
	}
	// Percentage margins resolve against an unknown width; treat as zero.
	if l, ok := b.length(v); ok && l.Kind != LengthPx {
		return marginValue{}, true
	}
	return marginValue{}, false
}

func (b *styleBuilder) applyMargin(value string, priority CascadePriority) {
	var sides []marginValue
	for _, field := range strings.Fields(value) {
		if m, ok := b.parseMarginValue(field); ok {
			sides = append(sides, m)
		}
	}
	top, right, bottom, left, ok := expandFour(sides)
	if !ok {
		return
	}
	b.setMarginSide("margin-top", top, priority)
	b.setMarginSide("margin-right", right, priority)
	b.setMarginSide("margin-bottom", bottom, priority)
	b.setMarginSide("margin-left", left, priority)
}

func (b *styleBuilder) applyMarginSide(name, value string, priority CascadePriority) {
	if m, ok := b.parseMarginValue(value); ok {
		b.setMarginSide(name, m, priority)
	}
}

func (b *styleBuilder) setMarginSide(name string, m marginValue, priority CascadePriority) {
	b.set(name, priority, func(s *ComputedStyle) {
		switch name {
		case "margin-top":
			s.Margin.Top, s.MarginAuto.Top = m.px, m.auto
		case "margin-right":
			s.Margin.Right, s.MarginAuto.Right = m.px, m.auto
		case "margin-bottom":
			s.Margin.Bottom, s.MarginAuto.Bottom = m.px, m.auto
		case "margin-left":
			s.Margin.Left, s.MarginAuto.Left = m.px, m.auto
		}
	})
}

func (b *styleBuilder) applyPaddingSide(name string, l Length, priority CascadePriority) {
	if l.Kind == LengthPx && l.Px < 0 {
		return
	}
	b.set(name, priority, func(s *ComputedStyle) {
		switch name {
		case "padding-top":
			s.Padding.Top = l
		case "padding-right":
			s.Padding.Right = l
		case "padding-bottom":
			s.Padding.Bottom = l
		case "padding-left":
			s.Padding.Left = l
		}
	})
}

func (b *styleBuilder) applyBorderWidthSide(side string, px int, priority CascadePriority) {
	px = max(px, 0)
	b.set("border-"+side+"-width", priority, func(s *ComputedStyle) {
		switch side {
		case "top":
			s.BorderWidth.Top = px
		case "right":
			s.BorderWidth.Right = px
		case "bottom":
			s.BorderWidth.Bottom = px
		case "left":
			s.BorderWidth.Left = px
		}
	})
}

type parsedBorder struct {
	width    int
	hasWidth bool
	style    BorderStyle
	hasStyle bool
	color    Color
	hasColor bool
}

func (b *styleBuilder) parseBorder(value string) (parsedBorder, bool) {
	var out parsedBorder
	for _, token := range strings.Fields(value) {
		if !out.hasWidth {
			if px, ok := b.px(token); ok {
				out.width, out.hasWidth = max(px, 0), true
				continue
			}
			switch strings.ToLower(token) {
			case "thin":
				out.width, out.hasWidth = 1, true
				continue
			case "medium":
				out.width, out.hasWidth = 3, true
				continue
			case "thick":
				out.width, out.hasWidth = 5, true
				continue
			}
		}
		if !out.hasStyle {
			if st, ok := parseBorderStyle([]string{strings.ToLower(token)}); ok {
				out.style, out.hasStyle = st, true
				continue
			}
		}
		if !out.hasColor {
			if c, ok := ParseColor(token); ok {
				out.color, out.hasColor = c, true
				continue
			}
		}
	}
	return out, out.hasWidth || out.hasStyle || out.hasColor
}

func (b *styleBuilder) applyBorder(border parsedBorder, sides []string, priority CascadePriority) {
	if border.hasWidth {
		for _, side := range sides {
			b.applyBorderWidthSide(side, border.width, priority)
		}
	}
	if border.hasStyle {
		st := border.style
		b.set("border-style", priority, func(s *ComputedStyle) { s.BorderStyle = st })
	}
	if border.hasColor {
		c := border.color
		b.set("border-color", priority, func(s *ComputedStyle) { s.BorderColor = c })
	}
}

// parseBorderStyle accepts the first keyword; only solid paints, the
// other visible styles are drawn as solid.
func parseBorderStyle(fields []string) (BorderStyle, bool) {
	if len(fields) == 0 {
		return BorderNone, false
	}
	switch fields[0] {
	case "none", "hidden":
		return BorderNone, true
	case "solid", "dashed", "dotted", "double", "groove", "ridge", "inset", "outset":
		return BorderSolid, true
	}
	return BorderNone, false
}

func (b *styleBuilder) parseEdges(value string) (Edges, bool) {
	var px []int
	for _, field := range strings.Fields(value) {
		if v, ok := b.px(field); ok {
			px = append(px, v)
		}
	}
	top, right, bottom, left, ok := expandFour(px)
	return Edges{top, right, bottom, left}, ok
}

func (b *styleBuilder) parseLengthEdges(value string) (LengthEdges, bool) {
	var lengths []Length
	for _, field := range splitOutsideParens(value) {
		if l, ok := b.length(field); ok {
			lengths = append(lengths, l)
		}
	}
	top, right, bottom, left, ok := expandFour(lengths)
	return LengthEdges{top, right, bottom, left}, ok
}

// expandFour applies the 1-to-4 value box shorthand rule.
func expandFour[T any](v []T) (top, right, bottom, left T, ok bool) {
	switch len(v) {
	case 1:
		return v[0], v[0], v[0], v[0], true
	case 2:
		return v[0], v[1], v[0], v[1], true
	case 3:
		return v[0], v[1], v[2], v[1], true
	case 4:
		return v[0], v[1], v[2], v[3], true
	}
	return
}

// splitOutsideParens splits on whitespace that is not inside a calc().
func splitOutsideParens(value string) []string {
	var out []string
	depth := 0
	start := -1
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case (c == ' ' || c == '\t' || c == '\n') && depth == 0:
			if start >= 0 {
				out = append(out, value[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, value[start:])
	}
	return out
}

func (b *styleBuilder) parseLineHeight(lower string) (LineHeight, bool) {
	if lower == "" {
		return LineHeight{}, false
	}
	if lower == "normal" {
		return LineHeight{Kind: LineHeightNormal}, true
	}
	if f, err := strconv.ParseFloat(lower, 64); err == nil {
		return LineHeight{Kind: LineHeightNumber, Number: f}, true
	}
	if strings.HasSuffix(lower, "%") {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(lower, "%"), 64); err == nil {
			return LineHeight{Kind: LineHeightNumber, Number: f / 100}, true
		}
	}
	if px, ok := b.px(lower); ok {
		return LineHeight{Kind: LineHeightPx, Px: px}, true
	}
	return LineHeight{}, false
}

type parsedFlex struct {
	grow, shrink int
	basis        *int
}

func (b *styleBuilder) parseFlex(lower string) (parsedFlex, bool) {
	zero := 0
	switch lower {
	case "":
		return parsedFlex{}, false
	case "none":
		return parsedFlex{grow: 0, shrink: 0}, true
	case "auto":
		return parsedFlex{grow: 1, shrink: 1}, true
	}
	fields := strings.Fields(lower)
	switch len(fields) {
	case 1:
		if n, ok := parseFlexFactor(fields[0]); ok {
			return parsedFlex{grow: n, shrink: 1, basis: &zero}, true
		}
		if px, ok := b.px(fields[0]); ok {
			basis := max(px, 0)
			return parsedFlex{grow: 1, shrink: 1, basis: &basis}, true
		}
	case 2:
		grow, ok := parseFlexFactor(fields[0])
		if !ok {
			return parsedFlex{}, false
		}
		if shrink, ok := parseFlexFactor(fields[1]); ok {
			return parsedFlex{grow: grow, shrink: shrink}, true
		}
		if fields[1] == "auto" {
			return parsedFlex{grow: grow, shrink: 1}, true
		}
		if px, ok := b.px(fields[1]); ok {
			basis := max(px, 0)
			return parsedFlex{grow: grow, shrink: 1, basis: &basis}, true
		}
	case 3:
		grow, ok1 := parseFlexFactor(fields[0])
		shrink, ok2 := parseFlexFactor(fields[1])
		if !ok1 || !ok2 {
			return parsedFlex{}, false
		}
		if fields[2] == "auto" {
			return parsedFlex{grow: grow, shrink: shrink}, true
		}
		if px, ok := b.px(fields[2]); ok {
			basis := max(px, 0)
			return parsedFlex{grow: grow, shrink: shrink, basis: &basis}, true
		}
	}
	return parsedFlex{}, false
}

// parseFlexFactor rounds a non-negative number to an integer weight.
func parseFlexFactor(v string) (int, bool) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return max(roundPx(f), 0), true
}

func parseDisplay(lower string) (Display, bool) {
	switch lower {
	case "none":
		return DisplayNone, true
	case "block", "list-item", "flow-root":
		return DisplayBlock, true
	case "inline":
		return DisplayInline, true
	case "inline-block":
		return DisplayInlineBlock, true
	case "flex", "inline-flex":
		return DisplayFlex, true
	case "grid", "inline-grid":
		return DisplayGrid, true
	case "table", "inline-table":
		return DisplayTable, true
	case "table-row":
		return DisplayTableRow, true
	case "table-cell":
		return DisplayTableCell, true
	}
	return DisplayInline, false
}

func parseTextAlign(lower string) (TextAlign, bool) {
	switch lower {
	case "left", "start", "justify":
		return TextAlignLeft, true
	case "center":
		return TextAlignCenter, true
	case "right", "end":
		return TextAlignRight, true
	}
	return TextAlignLeft, false
}

// parseFontFamily maps the first recognizable family in the list to one
// of the generic families.
func parseFontFamily(lower string) FontFamily {
	for _, part := range strings.Split(lower, ",") {
		name := strings.Trim(strings.TrimSpace(part), `'"`)
		switch {
		case name == "monospace" || strings.Contains(name, "mono") || strings.Contains(name, "courier") ||
			name == "consolas" || name == "menlo" || name == "monaco":
			return Monospace
		case name == "serif" || strings.Contains(name, "times") || name == "georgia" || name == "garamond":
			return Serif
		case name == "sans-serif" || name == "system-ui" || name == "arial" || name == "helvetica" ||
			strings.Contains(name, "sans") || name == "verdana":
			return SansSerif
		}
	}
	return SansSerif
}

func parseEmFactor(lower string) (float64, bool) {
	number, ok := strings.CutSuffix(lower, "em")
	if !ok || strings.HasSuffix(number, "r") {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(number), 64)
	return f, err == nil
}

func firstColorComponent(value string) (Color, bool) {
	for _, field := range splitOutsideParens(value) {
		if c, ok := ParseColor(field); ok {
			return c, true
		}
	}
	return Color{}, false
}
