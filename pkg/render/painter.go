package render

import (
	"fmt"
	"image"

	"l14core/pkg/css"
)

// Painter replays display list commands onto some surface.
type Painter interface {
	FillRect(x, y, width, height int, c css.Color) error
	FillRoundedRect(x, y, width, height, radius int, c css.Color) error
	StrokeRoundedRect(x, y, width, height, radius, borderWidth int, c css.Color) error
	DrawText(x, y int, text string, style TextStyle) error
	DrawImage(x, y, width, height int, opacity uint8, img image.Image) error
	DrawSvg(x, y, width, height int, opacity uint8, xml string) error
	FillLinearGradient(x, y, width, height int, dir css.GradientDirection, start, end css.Color) error
	PushOpacity(alpha uint8) error
	PopOpacity(alpha uint8) error
	PushFixed() error
	PopFixed() error
}

// Replay sends every command of list to p in order and stops at the first
// painter error.
func Replay(list *DisplayList, p Painter) error {
	for i, cmd := range list.Commands {
		var err error
		switch c := cmd.(type) {
		case FillRect:
			err = p.FillRect(c.X, c.Y, c.Width, c.Height, c.Color)
		case FillRoundedRect:
			err = p.FillRoundedRect(c.X, c.Y, c.Width, c.Height, c.RadiusPx, c.Color)
		case StrokeRoundedRect:
			err = p.StrokeRoundedRect(c.X, c.Y, c.Width, c.Height, c.RadiusPx, c.BorderWidthPx, c.Color)
		case DrawText:
			err = p.DrawText(c.X, c.Y, c.Text, c.Style)
		case DrawImage:
			if c.Image != nil {
				err = p.DrawImage(c.X, c.Y, c.Width, c.Height, c.Opacity, c.Image)
			}
		case DrawSvg:
			err = p.DrawSvg(c.X, c.Y, c.Width, c.Height, c.Opacity, c.XML)
		case LinearGradientRect:
			err = p.FillLinearGradient(c.X, c.Y, c.Width, c.Height, c.Direction, c.Start, c.End)
		case PushOpacity:
			err = p.PushOpacity(c.Alpha)
		case PopOpacity:
			err = p.PopOpacity(c.Alpha)
		case PushFixed:
			err = p.PushFixed()
		case PopFixed:
			err = p.PopFixed()
		default:
			err = fmt.Errorf("unknown command %T", cmd)
		}
		if err != nil {
			return fmt.Errorf("replay command %d (%T): %w", i, cmd, err)
		}
	}
	return nil
}
