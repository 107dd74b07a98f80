package css

import "testing"

func TestSupportsConditionMatches(t *testing.T) {
	tests := []struct {
		condition string
		want      bool
	}{
		{"(display: grid)", true},
		{"(display: flex)", true},
		{"(DISPLAY: Grid)", true},
		{"display: inline-grid", true},
		{"((display: grid))", true},
		{"(display: table)", false},
		{"(color: red)", false},
		{"not (display: table)", true},
		{"not (display: grid)", false},
		{"(display: grid) and (display: flex)", true},
		{"(display: grid) and (display: table)", false},
		{"(display: table) or (display: flex)", true},
		{"(display: table) or (display: contents)", false},
		{"(display: grid) and (not (display: table))", true},
		{"((display: table) or (display: grid)) and (display: block)", true},
		{"", false},
		{"()", false},
		{"display", false},
	}
	for _, tt := range tests {
		t.Run(tt.condition, func(t *testing.T) {
			if got := SupportsConditionMatches(tt.condition); got != tt.want {
				t.Errorf("SupportsConditionMatches(%q) = %v, want %v", tt.condition, got, tt.want)
			}
		})
	}
}

func TestSupportsRulesInStylesheet(t *testing.T) {
	ss := ParseStylesheet(`
		@supports (display: grid) { .grid { display: grid; } }
		@supports (display: table-caption) { .caption { color: red; } }
		@supports not (display: table-caption) { .fallback { color: blue; } }
	`)
	if len(ss.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(ss.Rules))
	}
	if got := ss.Rules[0].Selectors[0].Text; got != ".grid" {
		t.Errorf("first rule selector = %q, want .grid", got)
	}
	if got := ss.Rules[1].Selectors[0].Text; got != ".fallback" {
		t.Errorf("second rule selector = %q, want .fallback", got)
	}
}
