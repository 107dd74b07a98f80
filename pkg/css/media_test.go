package css

import "testing"

func TestMediaQueryMatches(t *testing.T) {
	tests := []struct {
		query  string
		width  int
		height int
		want   bool
	}{
		{"", 800, 600, true},
		{"screen", 800, 600, true},
		{"all", 800, 600, true},
		{"print", 800, 600, false},
		{"only screen", 800, 600, true},
		{"not screen", 800, 600, false},
		{"(min-width: 600px)", 800, 600, true},
		{"(min-width: 600px)", 500, 600, false},
		{"(max-width: 600px)", 600, 600, true},
		{"(max-height: 400px)", 800, 600, false},
		{"(min-height: 400px)", 800, 600, true},
		{"screen and (max-width: 600px)", 500, 600, true},
		{"screen and (max-width: 600px)", 700, 600, false},
		{"(min-width: 100px) and (max-width: 200px)", 150, 600, true},
		{"print, (min-width: 100px)", 800, 600, true},
		{"print, tv", 800, 600, false},
		{"(orientation: landscape)", 800, 600, false},
		{"(min-width: 40em)", 800, 600, false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := MediaQueryMatches(tt.query, tt.width, tt.height); got != tt.want {
				t.Errorf("MediaQueryMatches(%q, %d, %d) = %v, want %v", tt.query, tt.width, tt.height, got, tt.want)
			}
		})
	}
}

func TestMediaRulesKeepNestedConditions(t *testing.T) {
	ss := ParseStylesheet(`
		@media screen {
			@media (max-width: 600px) { p { color: red; } }
			div { color: blue; }
		}
		span { color: green; }
	`)
	if len(ss.Rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(ss.Rules))
	}
	if got := ss.Rules[0].Media; len(got) != 2 || got[0] != "screen" || got[1] != "(max-width: 600px)" {
		t.Errorf("nested media = %q", got)
	}
	if got := ss.Rules[1].Media; len(got) != 1 || got[0] != "screen" {
		t.Errorf("outer media = %q", got)
	}
	if len(ss.Rules[2].Media) != 0 {
		t.Errorf("top-level rule should carry no media, got %q", ss.Rules[2].Media)
	}
	if !mediaConditionsMatch(ss.Rules[0].Media, 500, 400) {
		t.Error("nested rule should match a narrow screen")
	}
	if mediaConditionsMatch(ss.Rules[0].Media, 900, 400) {
		t.Error("nested rule should not match a wide screen")
	}
}
