package css

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MediaQueryMatches reports whether a media query list applies to a
// screen of the given size. An empty query always matches; a list matches
// when any comma-separated part does.
func MediaQueryMatches(query string, viewportWidth, viewportHeight int) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	for _, part := range splitTopLevelCommas(query) {
		if part == "" {
			continue
		}
		if mediaPartMatches(part, viewportWidth, viewportHeight) {
			return true
		}
	}
	return false
}

// mediaConditionsMatch requires every enclosing @media condition to match.
func mediaConditionsMatch(conditions []string, viewportWidth, viewportHeight int) bool {
	for _, c := range conditions {
		if !MediaQueryMatches(c, viewportWidth, viewportHeight) {
			return false
		}
	}
	return true
}

func mediaPartMatches(part string, vw, vh int) bool {
	s := &mediaScanner{input: part}
	hasCondition := false
	for s.skipSpace() {
		if s.consumeKeyword("and") || s.consumeKeyword("only") {
			continue
		}
		// Negated queries are unsupported and never match.
		if s.consumeKeyword("not") {
			return false
		}
		if s.peek() == '(' {
			hasCondition = true
			expr, ok := s.consumeParenthesized()
			if !ok || !mediaFeatureMatches(expr, vw, vh) {
				return false
			}
			continue
		}
		word := s.consumeWord()
		if word == "" {
			break
		}
		hasCondition = true
		switch strings.ToLower(word) {
		case "all", "screen":
		default:
			return false
		}
	}
	return hasCondition
}

func mediaFeatureMatches(expr string, vw, vh int) bool {
	feature, value, _ := strings.Cut(expr, ":")
	feature = strings.ToLower(strings.TrimSpace(feature))
	px, ok := parseMediaPx(value)
	if !ok {
		return false
	}
	switch feature {
	case "min-width":
		return float64(vw) >= px
	case "max-width":
		return float64(vw) <= px
	case "min-height":
		return float64(vh) >= px
	case "max-height":
		return float64(vh) <= px
	}
	return false
}

func parseMediaPx(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	value = strings.TrimSpace(strings.TrimSuffix(value, "px"))
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	return f, err == nil
}

func splitTopLevelCommas(input string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(input); i++ {
		switch input[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(input[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(input[start:]))
}

type mediaScanner struct {
	input  string
	cursor int
}

func (s *mediaScanner) peek() rune {
	if s.cursor >= len(s.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s.input[s.cursor:])
	return r
}

func (s *mediaScanner) skipSpace() bool {
	for s.cursor < len(s.input) {
		r, size := utf8.DecodeRuneInString(s.input[s.cursor:])
		if !unicode.IsSpace(r) {
			break
		}
		s.cursor += size
	}
	return s.cursor < len(s.input)
}

func (s *mediaScanner) consumeKeyword(keyword string) bool {
	rest := s.input[s.cursor:]
	if len(rest) < len(keyword) || !strings.EqualFold(rest[:len(keyword)], keyword) {
		return false
	}
	if len(rest) > len(keyword) {
		c := rest[len(keyword)]
		if c == '-' || (c >= '0' && c <= '9') || (c|0x20 >= 'a' && c|0x20 <= 'z') {
			return false
		}
	}
	s.cursor += len(keyword)
	return true
}

func (s *mediaScanner) consumeWord() string {
	start := s.cursor
	for s.cursor < len(s.input) {
		r, size := utf8.DecodeRuneInString(s.input[s.cursor:])
		if unicode.IsSpace(r) || r == '(' || r == ')' || r == ',' {
			break
		}
		s.cursor += size
	}
	return strings.TrimSpace(s.input[start:s.cursor])
}

func (s *mediaScanner) consumeParenthesized() (string, bool) {
	if s.peek() != '(' {
		return "", false
	}
	s.cursor++
	start := s.cursor
	depth := 1
	for s.cursor < len(s.input) {
		c := s.input[s.cursor]
		s.cursor++
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s.input[start : s.cursor-1]), true
			}
		}
	}
	return "", false
}
