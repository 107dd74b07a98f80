package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"l14core/pkg/render"
)

// Words splits text at runs of whitespace.
func Words(text string) []string {
	return strings.FieldsFunc(text, unicode.IsSpace)
}

// Fixed is a deterministic measurer: every rune advances AdvancePx pixels.
// The zero value uses 1px advances, an 8px ascent and a 2px descent.
type Fixed struct {
	AdvancePx int
	AscentPx  int
	DescentPx int
}

func (f Fixed) FontMetrics(render.TextStyle) render.FontMetrics {
	if f.AscentPx == 0 && f.DescentPx == 0 {
		return render.FontMetrics{AscentPx: 8, DescentPx: 2}
	}
	return render.FontMetrics{AscentPx: f.AscentPx, DescentPx: f.DescentPx}
}

func (f Fixed) TextWidth(text string, style render.TextStyle) (int, error) {
	advance := f.AdvancePx
	if advance == 0 {
		advance = 1
	}
	n := utf8.RuneCountInString(text)
	return n*advance + n*style.LetterSpacingPx, nil
}
