package css

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// supportedDeclarations lists the feature queries @supports answers true for.
var supportedDeclarations = map[string]map[string]bool{
	"display": {
		"grid":         true,
		"inline-grid":  true,
		"flex":         true,
		"inline-flex":  true,
		"block":        true,
		"inline-block": true,
	},
}

// SupportsConditionMatches evaluates an @supports condition such as
// "(display: grid) and (not (display: inline-grid))".
func SupportsConditionMatches(condition string) bool {
	return evalSupports(condition)
}

func evalSupports(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}
	input = stripOuterParens(input)
	if input == "" {
		return false
	}
	if rest, ok := stripLeadingKeyword(input, "not"); ok {
		return !evalSupports(rest)
	}
	if parts := splitTopLevelKeyword(input, "or"); len(parts) > 1 {
		for _, part := range parts {
			if evalSupports(part) {
				return true
			}
		}
		return false
	}
	if parts := splitTopLevelKeyword(input, "and"); len(parts) > 1 {
		for _, part := range parts {
			if !evalSupports(part) {
				return false
			}
		}
		return true
	}
	if inner, ok := wrappedParenthesized(input); ok {
		return evalSupports(inner)
	}
	return declarationSupported(input)
}

func stripOuterParens(input string) string {
	current := strings.TrimSpace(input)
	for {
		inner, ok := wrappedParenthesized(current)
		if !ok {
			return current
		}
		current = strings.TrimSpace(inner)
	}
}

// wrappedParenthesized reports whether the whole input is one "( ... )"
// group and returns its contents.
func wrappedParenthesized(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "(") || !strings.HasSuffix(input, ")") {
		return "", false
	}
	depth := 0
	for i := 0; i < len(input); i++ {
		switch input[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
			if depth == 0 && i != len(input)-1 {
				return "", false
			}
		}
	}
	if depth != 0 {
		return "", false
	}
	return input[1 : len(input)-1], true
}

func stripLeadingKeyword(input, keyword string) (string, bool) {
	if !startsWithKeyword(input, keyword) {
		return "", false
	}
	rest := strings.TrimLeftFunc(input[len(keyword):], unicode.IsSpace)
	if rest == "" {
		return "", false
	}
	return rest, true
}

func startsWithKeyword(input, keyword string) bool {
	if len(input) < len(keyword) || !strings.EqualFold(input[:len(keyword)], keyword) {
		return false
	}
	if len(input) == len(keyword) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(input[len(keyword):])
	return unicode.IsSpace(r) || r == '('
}

// splitTopLevelKeyword splits on keyword occurrences at paren depth zero
// that are bounded by whitespace or parens on both sides.
func splitTopLevelKeyword(input, keyword string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(input); {
		switch input[i] {
		case '(':
			depth++
			i++
			continue
		case ')':
			if depth > 0 {
				depth--
			}
			i++
			continue
		}
		if depth == 0 && i+len(keyword) <= len(input) && strings.EqualFold(input[i:i+len(keyword)], keyword) {
			beforeOK := true
			if i > 0 {
				r, _ := utf8.DecodeLastRuneInString(input[:i])
				beforeOK = unicode.IsSpace(r) || r == ')'
			}
			afterOK := true
			if i+len(keyword) < len(input) {
				r, _ := utf8.DecodeRuneInString(input[i+len(keyword):])
				afterOK = unicode.IsSpace(r) || r == '('
			}
			if beforeOK && afterOK {
				parts = append(parts, strings.TrimSpace(input[start:i]))
				i += len(keyword)
				start = i
				continue
			}
		}
		_, size := utf8.DecodeRuneInString(input[i:])
		i += size
	}
	if start == 0 {
		return []string{strings.TrimSpace(input)}
	}
	return append(parts, strings.TrimSpace(input[start:]))
}

func declarationSupported(input string) bool {
	colon := strings.IndexByte(input, ':')
	if colon < 0 {
		return false
	}
	name := strings.ToLower(strings.TrimSpace(input[:colon]))
	value := strings.ToLower(strings.TrimSpace(input[colon+1:]))
	if name == "" || value == "" {
		return false
	}
	return supportedDeclarations[name][value]
}
