package render

import (
	"strings"
	"testing"

	"l14core/pkg/css"
)

func TestSetHeightPatchesBackgrounds(t *testing.T) {
	var list DisplayList
	rect := list.Append(FillRect{X: 1, Y: 2, Width: 10, Color: css.White})
	rounded := list.Append(FillRoundedRect{Width: 10, RadiusPx: 4, Color: css.White})
	grad := list.Append(LinearGradientRect{Width: 10, Start: css.White, End: css.Black})
	text := list.Append(DrawText{Text: "x"})

	list.SetHeight(rect, 40)
	list.SetHeight(rounded, 41)
	list.SetHeight(grad, 42)
	list.SetHeight(text, 99)
	list.SetHeight(-1, 5)
	list.SetHeight(100, 5)

	if got := list.Commands[rect].(FillRect).Height; got != 40 {
		t.Errorf("rect height = %d, want 40", got)
	}
	if got := list.Commands[rounded].(FillRoundedRect).Height; got != 41 {
		t.Errorf("rounded height = %d, want 41", got)
	}
	if got := list.Commands[grad].(LinearGradientRect).Height; got != 42 {
		t.Errorf("gradient height = %d, want 42", got)
	}
	if got := list.Commands[text].(DrawText); got.Text != "x" {
		t.Errorf("text command changed: %+v", got)
	}
}

func TestCheckBalanced(t *testing.T) {
	tests := []struct {
		name     string
		commands []Command
		wantErr  string
	}{
		{"empty", nil, ""},
		{"nested", []Command{PushOpacity{128}, PushFixed{}, PushOpacity{10}, PopOpacity{10}, PopFixed{}, PopOpacity{128}}, ""},
		{"mismatched value", []Command{PushOpacity{128}, PopOpacity{127}}, "does not match"},
		{"pop without push", []Command{PopOpacity{1}}, "without push"},
		{"unclosed", []Command{PushOpacity{1}}, "unclosed opacity"},
		{"fixed pop without push", []Command{PopFixed{}}, "pop fixed"},
		{"unclosed fixed", []Command{PushFixed{}}, "unclosed fixed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := DisplayList{Commands: tt.commands}
			err := list.CheckBalanced()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestTextsAndStyle(t *testing.T) {
	style := css.RootDefaults()
	style.Bold = true
	style.LetterSpacingPx = 2
	ts := TextStyleFor(&style)
	if !ts.Bold || ts.FontSizePx != 16 || ts.LetterSpacingPx != 2 || ts.Color != css.Black {
		t.Errorf("unexpected text style %+v", ts)
	}
	if DefaultTextStyle().FontSizePx != 16 {
		t.Error("default text style should be 16px")
	}

	list := DisplayList{Commands: []Command{FillRect{}, DrawText{Text: "a"}, DrawText{Text: "b"}}}
	texts := list.Texts()
	if len(texts) != 2 || texts[0].Text != "a" || texts[1].Text != "b" {
		t.Errorf("Texts() = %+v", texts)
	}
}

func TestDump(t *testing.T) {
	list := DisplayList{Commands: []Command{
		FillRect{X: 0, Y: 0, Width: 10, Height: 5, Color: css.White},
		PushOpacity{128},
		DrawText{X: 3, Y: 12, Text: "hi", Style: DefaultTextStyle()},
		PopOpacity{128},
	}}
	out := Dump(&list)
	for _, want := range []string{"display list (4 commands)", "rect 0,0 10x5 #ffffff", "opacity 128", `text 3,12 "hi" 16px #000000`} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}
