// Package text measures text runs with the embedded Go fonts and hands the
// same faces to the painter.
package text

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"

	"l14core/pkg/css"
	"l14core/pkg/render"
)

type fontKey struct {
	mono bool
	bold bool
}

var fontData = map[fontKey][]byte{
	{mono: false, bold: false}: goregular.TTF,
	{mono: false, bold: true}:  gobold.TTF,
	{mono: true, bold: false}:  gomono.TTF,
	{mono: true, bold: true}:   gomonobold.TTF,
}

var parseFonts = sync.OnceValues(func() (map[fontKey]*truetype.Font, error) {
	out := make(map[fontKey]*truetype.Font, len(fontData))
	for key, data := range fontData {
		f, err := truetype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse embedded font (mono=%v bold=%v): %w", key.mono, key.bold, err)
		}
		out[key] = f
	}
	return out, nil
})

type faceKey struct {
	font fontKey
	size int
}

// Measurer measures text with the Go font family. Serif and sans-serif both
// use Go Regular/Bold; monospace uses Go Mono. Measuring is safe for
// concurrent use; a face returned by Face belongs to one painter at a time.
type Measurer struct {
	mu    sync.Mutex
	faces map[faceKey]font.Face
}

var _ render.FaceSource = (*Measurer)(nil)

// NewMeasurer parses the embedded fonts (once per process).
func NewMeasurer() (*Measurer, error) {
	if _, err := parseFonts(); err != nil {
		return nil, err
	}
	return &Measurer{faces: make(map[faceKey]font.Face)}, nil
}

// Face returns the cached face for style.
func (m *Measurer) Face(style render.TextStyle) (font.Face, error) {
	fonts, err := parseFonts()
	if err != nil {
		return nil, err
	}
	key := faceKey{
		font: fontKey{mono: style.FontFamily == css.Monospace, bold: style.Bold},
		size: max(style.FontSizePx, 1),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if face, ok := m.faces[key]; ok {
		return face, nil
	}
	face := truetype.NewFace(fonts[key.font], &truetype.Options{
		Size:    float64(key.size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	m.faces[key] = face
	return face, nil
}

// FontMetrics returns ascent and descent in whole pixels.
func (m *Measurer) FontMetrics(style render.TextStyle) render.FontMetrics {
	face, err := m.Face(style)
	if err != nil {
		size := max(style.FontSizePx, 1)
		return render.FontMetrics{AscentPx: size * 4 / 5, DescentPx: size / 5}
	}
	m.mu.Lock()
	metrics := face.Metrics()
	m.mu.Unlock()
	return render.FontMetrics{AscentPx: metrics.Ascent.Ceil(), DescentPx: metrics.Descent.Ceil()}
}

// TextWidth returns the advance width of text including letter spacing.
func (m *Measurer) TextWidth(text string, style render.TextStyle) (int, error) {
	if text == "" {
		return 0, nil
	}
	face, err := m.Face(style)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	advance := font.MeasureString(face, text)
	m.mu.Unlock()
	return advance.Round() + style.LetterSpacingPx*utf8.RuneCountInString(text), nil
}
