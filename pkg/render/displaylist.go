// Package render holds the display list produced by layout and the painters
// that replay it onto pixels.
package render

import (
	"fmt"
	"image"

	"l14core/pkg/css"
)

// TextStyle is everything a painter needs to draw a run of text.
type TextStyle struct {
	Color           css.Color
	Bold            bool
	Underline       bool
	FontFamily      css.FontFamily
	FontSizePx      int
	LetterSpacingPx int
}

// DefaultTextStyle matches css.RootDefaults.
func DefaultTextStyle() TextStyle {
	return TextStyle{Color: css.Black, FontFamily: css.SansSerif, FontSizePx: 16}
}

// TextStyleFor derives the text style of an element's computed style.
func TextStyleFor(s *css.ComputedStyle) TextStyle {
	return TextStyle{
		Color:           s.Color,
		Bold:            s.Bold,
		Underline:       s.Underline,
		FontFamily:      s.FontFamily,
		FontSizePx:      s.FontSizePx,
		LetterSpacingPx: s.LetterSpacingPx,
	}
}

// FontMetrics are the vertical extents of a font above and below the baseline.
type FontMetrics struct {
	AscentPx  int
	DescentPx int
}

// Command is one paint operation. The set is closed: only the types in this
// file implement it.
type Command interface {
	isCommand()
}

// FillRect fills an axis-aligned rectangle.
type FillRect struct {
	X, Y, Width, Height int
	Color               css.Color
}

// FillRoundedRect fills a rectangle with uniformly rounded corners.
type FillRoundedRect struct {
	X, Y, Width, Height int
	RadiusPx            int
	Color               css.Color
}

// StrokeRoundedRect paints a uniform border inside the given border box.
type StrokeRoundedRect struct {
	X, Y, Width, Height int
	RadiusPx            int
	BorderWidthPx       int
	Color               css.Color
}

// DrawText paints a run of text; Y is the baseline.
type DrawText struct {
	X, Y  int
	Text  string
	Style TextStyle
}

// DrawImage paints a decoded image scaled into the rectangle.
type DrawImage struct {
	X, Y, Width, Height int
	Opacity             uint8
	Source              string
	Image               image.Image
}

// DrawSvg rasterizes inline SVG markup into the rectangle.
type DrawSvg struct {
	X, Y, Width, Height int
	Opacity             uint8
	XML                 string
}

// LinearGradientRect fills a rectangle with a two-stop gradient.
type LinearGradientRect struct {
	X, Y, Width, Height int
	Direction           css.GradientDirection
	Start, End          css.Color
}

// PushOpacity starts a group composited with Alpha when the matching
// PopOpacity is reached.
type PushOpacity struct{ Alpha uint8 }

// PopOpacity ends the innermost opacity group.
type PopOpacity struct{ Alpha uint8 }

// PushFixed starts content attached to the viewport rather than the page.
type PushFixed struct{}

// PopFixed ends the innermost fixed group.
type PopFixed struct{}

func (FillRect) isCommand()           {}
func (FillRoundedRect) isCommand()    {}
func (StrokeRoundedRect) isCommand()  {}
func (DrawText) isCommand()           {}
func (DrawImage) isCommand()          {}
func (DrawSvg) isCommand()            {}
func (LinearGradientRect) isCommand() {}
func (PushOpacity) isCommand()        {}
func (PopOpacity) isCommand()         {}
func (PushFixed) isCommand()          {}
func (PopFixed) isCommand()           {}

// DisplayList is an ordered list of paint commands; later commands paint
// over earlier ones.
type DisplayList struct {
	Commands []Command
}

// Len returns the number of commands.
func (l *DisplayList) Len() int { return len(l.Commands) }

// Append adds a command and returns its index.
func (l *DisplayList) Append(cmd Command) int {
	l.Commands = append(l.Commands, cmd)
	return len(l.Commands) - 1
}

// SetHeight rewrites the height of the background command at index i once
// the box height is known. Commands without a height are left alone.
func (l *DisplayList) SetHeight(i, height int) {
	if i < 0 || i >= len(l.Commands) {
		return
	}
	switch c := l.Commands[i].(type) {
	case FillRect:
		c.Height = height
		l.Commands[i] = c
	case FillRoundedRect:
		c.Height = height
		l.Commands[i] = c
	case LinearGradientRect:
		c.Height = height
		l.Commands[i] = c
	}
}

// Texts returns the DrawText commands in paint order.
func (l *DisplayList) Texts() []DrawText {
	var out []DrawText
	for _, cmd := range l.Commands {
		if t, ok := cmd.(DrawText); ok {
			out = append(out, t)
		}
	}
	return out
}

// CheckBalanced verifies that opacity and fixed groups nest and that each
// PopOpacity carries the value of its PushOpacity.
func (l *DisplayList) CheckBalanced() error {
	var opacity []uint8
	fixed := 0
	for i, cmd := range l.Commands {
		switch c := cmd.(type) {
		case PushOpacity:
			opacity = append(opacity, c.Alpha)
		case PopOpacity:
			if len(opacity) == 0 {
				return fmt.Errorf("command %d: pop opacity without push", i)
			}
			top := opacity[len(opacity)-1]
			if top != c.Alpha {
				return fmt.Errorf("command %d: pop opacity %d does not match push %d", i, c.Alpha, top)
			}
			opacity = opacity[:len(opacity)-1]
		case PushFixed:
			fixed++
		case PopFixed:
			if fixed == 0 {
				return fmt.Errorf("command %d: pop fixed without push", i)
			}
			fixed--
		}
	}
	if len(opacity) != 0 {
		return fmt.Errorf("%d unclosed opacity groups", len(opacity))
	}
	if fixed != 0 {
		return fmt.Errorf("%d unclosed fixed groups", fixed)
	}
	return nil
}
