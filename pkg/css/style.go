package css

import "strings"

type Display int

const (
	DisplayBlock Display = iota
	DisplayInline
	DisplayInlineBlock
	DisplayFlex
	DisplayGrid
	DisplayTable
	DisplayTableRow
	DisplayTableCell
	DisplayNone
)

var displayNames = [...]string{"block", "inline", "inline-block", "flex", "grid", "table", "table-row", "table-cell", "none"}

func (d Display) String() string {
	if int(d) < len(displayNames) {
		return displayNames[d]
	}
	return "display(?)"
}

type Visibility int

const (
	Visible Visibility = iota
	Hidden
)

type Position int

const (
	PositionStatic Position = iota
	PositionRelative
	PositionAbsolute
	PositionFixed
)

// OutOfFlow reports absolute and fixed boxes.
func (p Position) OutOfFlow() bool { return p == PositionAbsolute || p == PositionFixed }

type Float int

const (
	FloatNone Float = iota
	FloatLeft
	FloatRight
)

type FontFamily int

const (
	SansSerif FontFamily = iota
	Serif
	Monospace
)

type TextAlign int

const (
	TextAlignLeft TextAlign = iota
	TextAlignCenter
	TextAlignRight
)

type TextTransform int

const (
	TextTransformNone TextTransform = iota
	TextTransformUppercase
	TextTransformLowercase
	TextTransformCapitalize
)

// Apply transforms text for painting and measuring.
func (t TextTransform) Apply(text string) string {
	switch t {
	case TextTransformUppercase:
		return strings.ToUpper(text)
	case TextTransformLowercase:
		return strings.ToLower(text)
	case TextTransformCapitalize:
		var b strings.Builder
		b.Grow(len(text))
		atStart := true
		for _, r := range text {
			if atStart && r != ' ' && r != '\t' && r != '\n' {
				b.WriteString(strings.ToUpper(string(r)))
				atStart = false
				continue
			}
			atStart = r == ' ' || r == '\t' || r == '\n'
			b.WriteRune(r)
		}
		return b.String()
	}
	return text
}

type WhiteSpace int

const (
	WhiteSpaceNormal WhiteSpace = iota
	WhiteSpaceNoWrap
	WhiteSpacePre
)

type BorderStyle int

const (
	BorderNone BorderStyle = iota
	BorderSolid
)

type FlexDirection int

const (
	FlexRow FlexDirection = iota
	FlexColumn
)

type FlexWrap int

const (
	FlexNoWrap FlexWrap = iota
	FlexWrapOn
)

type JustifyContent int

const (
	JustifyStart JustifyContent = iota
	JustifyCenter
	JustifyEnd
	JustifySpaceBetween
)

type AlignItems int

const (
	AlignStart AlignItems = iota
	AlignCenter
	AlignEnd
)

type LineHeightKind int

const (
	LineHeightNormal LineHeightKind = iota
	LineHeightNumber
	LineHeightPx
)

// LineHeight is "normal", a unitless multiplier of the font size, or pixels.
type LineHeight struct {
	Kind   LineHeightKind
	Number float64
	Px     int
}

// Resolve returns the explicit line height in pixels; false means "normal"
// and the caller uses font metrics.
func (l LineHeight) Resolve(fontSizePx int) (int, bool) {
	switch l.Kind {
	case LineHeightNumber:
		return roundPx(l.Number * float64(fontSizePx)), true
	case LineHeightPx:
		return l.Px, true
	}
	return 0, false
}

// Edges holds one pixel value per box side.
type Edges struct {
	Top, Right, Bottom, Left int
}

func UniformEdges(px int) Edges { return Edges{px, px, px, px} }

func (e Edges) Horizontal() int { return e.Left + e.Right }
func (e Edges) Vertical() int   { return e.Top + e.Bottom }

// LengthEdges holds lengths that may be percentages of the containing width.
type LengthEdges struct {
	Top, Right, Bottom, Left Length
}

// Resolve maps every side against the containing block width.
func (e LengthEdges) Resolve(reference int) Edges {
	return Edges{
		Top:    e.Top.Resolve(reference),
		Right:  e.Right.Resolve(reference),
		Bottom: e.Bottom.Resolve(reference),
		Left:   e.Left.Resolve(reference),
	}
}

// AutoEdges marks sides whose margin is "auto".
type AutoEdges struct {
	Top, Right, Bottom, Left bool
}

// ComputedStyle is the resolved style of one element. Values are copied
// freely; pointer fields mark optional values and are never mutated.
type ComputedStyle struct {
	Display    Display
	Visibility Visibility
	Position   Position
	Float      Float

	CustomProperties *CustomProperties

	Top, Right, Bottom, Left *Length

	Opacity            uint8
	Color              Color
	BackgroundColor    Color
	BackgroundGradient *LinearGradient

	FontFamily      FontFamily
	FontSizePx      int
	LetterSpacingPx int
	Bold            bool
	Underline       bool
	TextAlign       TextAlign
	TextTransform   TextTransform
	WhiteSpace      WhiteSpace
	LineHeight      LineHeight

	Margin         Edges
	MarginAuto     AutoEdges
	BorderWidth    Edges
	BorderStyle    BorderStyle
	BorderColor    Color
	BorderRadiusPx int
	Padding        LengthEdges

	Width, MinWidth, MaxWidth *Length
	Height, MinHeight         *int

	JustifyContent JustifyContent
	AlignItems     AlignItems
	FlexDirection  FlexDirection
	FlexWrap       FlexWrap
	FlexGrow       int
	FlexShrink     int
	FlexBasis      *int
	GapPx          int

	GridArea            string
	GridTemplateColumns string
	GridTemplateAreas   string
}

// HasBackground reports whether a background color or gradient is set.
func (s *ComputedStyle) HasBackground() bool {
	return !s.BackgroundColor.IsTransparent() || s.BackgroundGradient != nil
}

// RootDefaults is the style of a root element with no parent.
func RootDefaults() ComputedStyle {
	return ComputedStyle{
		Display:          DisplayBlock,
		CustomProperties: emptyCustomProperties,
		Opacity:          255,
		Color:            Black,
		FontFamily:       SansSerif,
		FontSizePx:       16,
		BorderColor:      Black,
		FlexShrink:       1,
	}
}

// inheritFrom starts a child style: inherited properties copy the parent,
// the rest take their initial values.
func inheritFrom(parent *ComputedStyle, display Display) ComputedStyle {
	return ComputedStyle{
		Display:          display,
		Visibility:       parent.Visibility,
		CustomProperties: parent.CustomProperties,
		Opacity:          255,
		Color:            parent.Color,
		FontFamily:       parent.FontFamily,
		FontSizePx:       parent.FontSizePx,
		LetterSpacingPx:  parent.LetterSpacingPx,
		Bold:             parent.Bold,
		Underline:        parent.Underline,
		TextAlign:        parent.TextAlign,
		TextTransform:    parent.TextTransform,
		WhiteSpace:       parent.WhiteSpace,
		LineHeight:       parent.LineHeight,
		BorderColor:      parent.Color,
		FlexShrink:       1,
	}
}
