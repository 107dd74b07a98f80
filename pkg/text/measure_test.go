package text

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"l14core/pkg/css"
	"l14core/pkg/render"
)

func TestMeasurerWidths(t *testing.T) {
	m, err := NewMeasurer()
	require.NoError(t, err)

	style := render.DefaultTextStyle()
	short, err := m.TextWidth("Hi", style)
	require.NoError(t, err)
	long, err := m.TextWidth("Hi there, world", style)
	require.NoError(t, err)
	assert.Greater(t, short, 0)
	assert.Greater(t, long, short)

	empty, err := m.TextWidth("", style)
	require.NoError(t, err)
	assert.Zero(t, empty)

	big := style
	big.FontSizePx = 32
	bigWidth, err := m.TextWidth("Hi there, world", big)
	require.NoError(t, err)
	assert.Greater(t, bigWidth, long)

	spaced := style
	spaced.LetterSpacingPx = 3
	spacedWidth, err := m.TextWidth("Hi", spaced)
	require.NoError(t, err)
	assert.Equal(t, short+6, spacedWidth)
}

func TestMeasurerMonospace(t *testing.T) {
	m, err := NewMeasurer()
	require.NoError(t, err)

	style := render.DefaultTextStyle()
	style.FontFamily = css.Monospace
	narrow, err := m.TextWidth("iiii", style)
	require.NoError(t, err)
	wide, err := m.TextWidth("MMMM", style)
	require.NoError(t, err)
	assert.Equal(t, narrow, wide)
}

func TestMeasurerMetricsAndFaceCache(t *testing.T) {
	m, err := NewMeasurer()
	require.NoError(t, err)

	style := render.DefaultTextStyle()
	metrics := m.FontMetrics(style)
	assert.Greater(t, metrics.AscentPx, 0)
	assert.GreaterOrEqual(t, metrics.DescentPx, 0)
	assert.LessOrEqual(t, metrics.AscentPx+metrics.DescentPx, 2*style.FontSizePx)

	a, err := m.Face(style)
	require.NoError(t, err)
	b, err := m.Face(style)
	require.NoError(t, err)
	assert.Same(t, a, b)

	bold := style
	bold.Bold = true
	c, err := m.Face(bold)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
}

func TestMeasurerConcurrent(t *testing.T) {
	m, err := NewMeasurer()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(size int) {
			defer wg.Done()
			style := render.DefaultTextStyle()
			style.FontSizePx = size
			_, err := m.TextWidth("concurrent", style)
			assert.NoError(t, err)
		}(10 + i)
	}
	wg.Wait()
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"a", "bb", "c"}, Words("  a \n bb\tc "))
	assert.Empty(t, Words(" \t\n"))
}

func TestFixed(t *testing.T) {
	var f Fixed
	w, err := f.TextWidth("hello", render.TextStyle{})
	require.NoError(t, err)
	assert.Equal(t, 5, w)
	assert.Equal(t, render.FontMetrics{AscentPx: 8, DescentPx: 2}, f.FontMetrics(render.TextStyle{}))

	g := Fixed{AdvancePx: 10, AscentPx: 12, DescentPx: 4}
	w, err = g.TextWidth("héllo", render.TextStyle{LetterSpacingPx: 1})
	require.NoError(t, err)
	assert.Equal(t, 55, w)
	assert.Equal(t, 16, g.FontMetrics(render.TextStyle{}).AscentPx+g.FontMetrics(render.TextStyle{}).DescentPx)
}
