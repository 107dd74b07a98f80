package css

import "testing"

// TestErrorRecovery_InvalidSelectors verifies that rules with invalid selectors
// are silently skipped while valid rules are still parsed.
func TestErrorRecovery_InvalidSelectors(t *testing.T) {
	tests := []struct {
		name          string
		css           string
		expectedRules int
		description   string
	}{
		{
			name:          "selector starting with closing brace",
			css:           `} { color: red; } p { color: blue; }`,
			expectedRules: 1,
			description:   "rule with } selector skipped, p rule kept",
		},
		{
			name:          "selector starting with semicolon",
			css:           `{; color: red; } p { color: blue; }`,
			expectedRules: 1,
			description:   "rule with {; selector skipped, p rule kept",
		},
		{
			name:          "unbalanced bracket in selector",
			css:           `[} { color: red; } p { color: green; }`,
			expectedRules: 1,
			description:   "rule with [} selector skipped, p rule kept",
		},
		{
			name:          "empty selector",
			css:           ` { color: red; } p { color: blue; }`,
			expectedRules: 1,
			description:   "rule with empty selector skipped",
		},
		{
			name:          "valid rules survive among invalid ones",
			css:           `body { color: red; } [} { bad: true; } h1 { font-size: 20px; }`,
			expectedRules: 2,
			description:   "body and h1 rules kept, invalid one skipped",
		},
		{
			name:          "pseudo-element rules never match elements",
			css:           `p::before { color: red; } p { color: blue; }`,
			expectedRules: 1,
			description:   "p::before dropped",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ss := ParseStylesheet(tt.css)
			if len(ss.Rules) != tt.expectedRules {
				t.Errorf("%s: got %d rules, want %d", tt.description, len(ss.Rules), tt.expectedRules)
			}
		})
	}
}

// TestErrorRecovery_UnknownAtRules verifies that unknown at-rules are silently skipped.
func TestErrorRecovery_UnknownAtRules(t *testing.T) {
	tests := []struct {
		name          string
		css           string
		expectedRules int
	}{
		{
			name:          "unknown @three-dee rule",
			css:           `@three-dee { body { color: red; } } p { color: blue; }`,
			expectedRules: 1,
		},
		{
			name:          "unknown @import rule",
			css:           `@import url("foo.css") { } p { color: blue; }`,
			expectedRules: 1,
		},
		{
			name:          "multiple unknown at-rules",
			css:           `@foo { x: y; } @bar { a: b; } div { color: red; }`,
			expectedRules: 1,
		},
		{
			name:          "font-face contributes nothing",
			css:           `@font-face { font-family: x; } p { color: red; }`,
			expectedRules: 1,
		},
		{
			name:          "media rule still works",
			css:           `@media screen { p { color: red; } }`,
			expectedRules: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ss := ParseStylesheet(tt.css)
			if len(ss.Rules) != tt.expectedRules {
				t.Errorf("got %d rules, want %d", len(ss.Rules), tt.expectedRules)
			}
		})
	}
}

func declarationNamed(decls []Declaration, property string) (Declaration, bool) {
	for _, d := range decls {
		if d.Property == property {
			return d, true
		}
	}
	return Declaration{}, false
}

// TestErrorRecovery_InvalidDeclarations verifies that invalid declarations
// within a valid rule are skipped while valid declarations are preserved.
func TestErrorRecovery_InvalidDeclarations(t *testing.T) {
	tests := []struct {
		name           string
		css            string
		expectedProps  []string
		forbiddenProps []string
	}{
		{
			name:           "declaration without colon is skipped",
			css:            `p { badstuff; color: red; }`,
			expectedProps:  []string{"color"},
			forbiddenProps: []string{"badstuff"},
		},
		{
			name:           "declaration with empty value is skipped",
			css:            `p { bad: ; color: green; }`,
			expectedProps:  []string{"color"},
			forbiddenProps: []string{"bad"},
		},
		{
			name:          "valid property with hyphen prefix is kept",
			css:           `p { -webkit-thing: value; color: red; }`,
			expectedProps: []string{"-webkit-thing", "color"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ss := ParseStylesheet(tt.css)
			if len(ss.Rules) != 1 {
				t.Fatalf("expected 1 rule, got %d", len(ss.Rules))
			}
			decls := ss.Rules[0].Declarations
			for _, prop := range tt.expectedProps {
				if _, ok := declarationNamed(decls, prop); !ok {
					t.Errorf("expected property %q to exist, but it does not. Declarations: %v", prop, decls)
				}
			}
			for _, prop := range tt.forbiddenProps {
				if _, ok := declarationNamed(decls, prop); ok {
					t.Errorf("property %q should not exist, but it does", prop)
				}
			}
		})
	}
}

// TestErrorRecovery_UnclosedBlocks verifies that a trailing block missing its
// closing brace is closed at the end of the sheet.
func TestErrorRecovery_UnclosedBlocks(t *testing.T) {
	tests := []struct {
		name          string
		css           string
		expectedRules int
	}{
		{
			name:          "unclosed block at end",
			css:           `p { color: red; } h1 { font-size: 20px`,
			expectedRules: 2,
		},
		{
			name:          "all blocks properly closed",
			css:           `p { color: red; } h1 { font-size: 20px; }`,
			expectedRules: 2,
		},
		{
			name:          "extra closing brace recovers",
			css:           `} p { color: red; }`,
			expectedRules: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ss := ParseStylesheet(tt.css)
			if len(ss.Rules) != tt.expectedRules {
				t.Errorf("got %d rules, want %d", len(ss.Rules), tt.expectedRules)
			}
		})
	}
}

// TestErrorRecovery_UnclosedStrings verifies that unclosed strings in CSS
// do not crash the parser.
func TestErrorRecovery_UnclosedStrings(t *testing.T) {
	tests := []struct {
		name string
		css  string
	}{
		{
			name: "unclosed double quote in value",
			css:  `p { content: "unclosed; } h1 { color: red; }`,
		},
		{
			name: "unclosed single quote in value",
			css:  `p { content: 'unclosed; } h1 { color: red; }`,
		},
		{
			name: "unclosed string in selector area",
			css:  `p[attr="unclosed { color: red; }`,
		},
		{
			name: "unclosed comment",
			css:  `p { color: red; } /* never ends`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// must not panic
			_ = ParseStylesheet(tt.css)
		})
	}
}

// TestErrorRecovery_Acid2Patterns mixes valid rules with the malformed
// constructs Acid2 relies on being ignored.
func TestErrorRecovery_Acid2Patterns(t *testing.T) {
	acid2CSS := `
		/* Valid rule */
		.eyes { background: yellow; }

		/* Unknown at-rule, must be skipped */
		@three-dee {
			@background-lighting {
				azimuth: 30deg;
				elevation: 190deg;
			}
			h1 { color: red; }
		}

		/* Invalid selector with unbalanced bracket */
		[} { color: red; }

		/* Valid rule after garbage */
		.nose { width: 0; }

		/* Rule with semicolon-only selector */
		{; color: red; }

		/* Another valid rule */
		.mouth { border: 1px solid black; }
	`

	ss := ParseStylesheet(acid2CSS)
	if len(ss.Rules) != 3 {
		t.Errorf("expected 3 rules, got %d", len(ss.Rules))
		for i, r := range ss.Rules {
			t.Logf("  rule %d: selectors=%v declarations=%v", i, r.Selectors, r.Declarations)
		}
	}
}

// TestErrorRecovery_BraceMatching verifies that splitRules correctly matches
// nested braces.
func TestErrorRecovery_BraceMatching(t *testing.T) {
	tests := []struct {
		name string
		css  string
		want int
	}{
		{"media block is one rule", `@media screen { p { color: red; } h1 { font-size: 20px; } }`, 1},
		{"braces in strings do not count", `p { content: "}"; } h1 { color: red; }`, 2},
		{"braces in comments do not count", `/* } { */ p { color: red; }`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitRules(tt.css); len(got) != tt.want {
				t.Errorf("splitRules returned %d blocks %q, want %d", len(got), got, tt.want)
			}
		})
	}
}

func TestCompileSelector(t *testing.T) {
	tests := []struct {
		selector string
		valid    bool
	}{
		{"p", true},
		{".class", true},
		{"#id", true},
		{"div.class", true},
		{"[attr=val]", true},
		{"ul > li:first-child", true},
		{"", false},
		{"}", false},
		{";", false},
		{"{", false},
		{"[}", false},
		{"[attr", false},
		{"p::before", false},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			_, got := compileSelector(tt.selector)
			if got != tt.valid {
				t.Errorf("compileSelector(%q) = %v, want %v", tt.selector, got, tt.valid)
			}
		})
	}
}
