package render

import (
	"errors"
	"fmt"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"

	"l14core/pkg/css"
)

type recordingPainter struct {
	calls  []string
	failOn string
}

var errPaint = errors.New("paint failed")

func (p *recordingPainter) record(call string) error {
	p.calls = append(p.calls, call)
	if call == p.failOn {
		return errPaint
	}
	return nil
}

func (p *recordingPainter) FillRect(x, y, w, h int, c css.Color) error {
	return p.record(fmt.Sprintf("rect %d %d %d %d %s", x, y, w, h, c.Hex()))
}
func (p *recordingPainter) FillRoundedRect(x, y, w, h, r int, c css.Color) error {
	return p.record(fmt.Sprintf("rounded %d %d %d %d %d", x, y, w, h, r))
}
func (p *recordingPainter) StrokeRoundedRect(x, y, w, h, r, bw int, c css.Color) error {
	return p.record(fmt.Sprintf("stroke %d %d %d %d %d %d", x, y, w, h, r, bw))
}
func (p *recordingPainter) DrawText(x, y int, text string, _ TextStyle) error {
	return p.record(fmt.Sprintf("text %d %d %s", x, y, text))
}
func (p *recordingPainter) DrawImage(x, y, w, h int, opacity uint8, _ image.Image) error {
	return p.record(fmt.Sprintf("image %d %d %d %d %d", x, y, w, h, opacity))
}
func (p *recordingPainter) DrawSvg(x, y, w, h int, opacity uint8, xml string) error {
	return p.record(fmt.Sprintf("svg %d %d %d %d %s", x, y, w, h, xml))
}
func (p *recordingPainter) FillLinearGradient(x, y, w, h int, dir css.GradientDirection, _, _ css.Color) error {
	return p.record(fmt.Sprintf("gradient %d %d %d %d %s", x, y, w, h, dir))
}
func (p *recordingPainter) PushOpacity(a uint8) error { return p.record(fmt.Sprintf("push %d", a)) }
func (p *recordingPainter) PopOpacity(a uint8) error  { return p.record(fmt.Sprintf("pop %d", a)) }
func (p *recordingPainter) PushFixed() error          { return p.record("push fixed") }
func (p *recordingPainter) PopFixed() error           { return p.record("pop fixed") }

func TestReplayOrder(t *testing.T) {
	list := DisplayList{Commands: []Command{
		FillRect{0, 0, 10, 10, css.White},
		PushOpacity{128},
		FillRoundedRect{1, 2, 3, 4, 5, css.Black},
		StrokeRoundedRect{1, 2, 3, 4, 0, 1, css.Black},
		PopOpacity{128},
		PushFixed{},
		DrawText{X: 4, Y: 20, Text: "hello"},
		PopFixed{},
		DrawImage{X: 1, Y: 1, Width: 2, Height: 2, Opacity: 255, Image: image.NewRGBA(image.Rect(0, 0, 1, 1))},
		DrawImage{X: 1, Y: 1, Width: 2, Height: 2},
		DrawSvg{X: 0, Y: 0, Width: 5, Height: 5, Opacity: 255, XML: "<svg/>"},
		LinearGradientRect{X: 0, Y: 0, Width: 8, Height: 8, Direction: css.LeftToRight},
	}}
	p := &recordingPainter{}
	if err := Replay(&list, p); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	want := []string{
		"rect 0 0 10 10 #ffffff",
		"push 128",
		"rounded 1 2 3 4 5",
		"stroke 1 2 3 4 0 1",
		"pop 128",
		"push fixed",
		"text 4 20 hello",
		"pop fixed",
		"image 1 1 2 2 255",
		"svg 0 0 5 5 <svg/>",
		"gradient 0 0 8 8 to right",
	}
	if diff := cmp.Diff(want, p.calls); diff != "" {
		t.Errorf("replay calls mismatch (-want +got):\n%s", diff)
	}
}

func TestReplayStopsOnError(t *testing.T) {
	list := DisplayList{Commands: []Command{
		FillRect{0, 0, 1, 1, css.White},
		DrawText{X: 0, Y: 0, Text: "boom"},
		FillRect{0, 0, 2, 2, css.White},
	}}
	p := &recordingPainter{failOn: "text 0 0 boom"}
	err := Replay(&list, p)
	if !errors.Is(err, errPaint) {
		t.Fatalf("Replay error = %v, want wrapped errPaint", err)
	}
	if len(p.calls) != 2 {
		t.Errorf("painter saw %d calls, want 2", len(p.calls))
	}
}
