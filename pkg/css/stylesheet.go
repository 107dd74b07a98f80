package css

import (
	"strings"

	"github.com/andybalholm/cascadia"
	cssast "github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Declaration is one "property: value" pair; Property is lowercased.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// IsCustom reports a --custom-property declaration.
func (d Declaration) IsCustom() bool { return strings.HasPrefix(d.Property, "--") }

// Selector is one compiled complex selector of a rule.
type Selector struct {
	Text        string
	Specificity cascadia.Specificity
	sel         cascadia.Sel
	bucket      bucketKey
}

// Matches tests the selector against an element, walking its Parent links
// for combinators.
func (s Selector) Matches(n *html.Node) bool {
	return s.sel != nil && s.sel.Match(n)
}

// Rule is a qualified rule. Media lists the conditions of every enclosing
// @media block; all of them must match for the rule to apply.
type Rule struct {
	Selectors    []Selector
	Declarations []Declaration
	Media        []string
	Order        int
}

// Stylesheet is an ordered, immutable list of rules. Media, when set,
// comes from the owning <style media="..."> element and gates every rule.
type Stylesheet struct {
	Rules []Rule
	Media string
}

// ParseStylesheet parses CSS source. Malformed top-level blocks are dropped
// individually; the rest of the sheet survives.
func ParseStylesheet(source string) *Stylesheet {
	log := zap.L().Named("css")
	sheet := &Stylesheet{}
	w := &ruleWalker{sheet: sheet, log: log}
	for _, block := range splitRules(source) {
		parsed, err := parser.Parse(block)
		if err != nil {
			if !strings.HasPrefix(block, "@") && w.addLenient(block) {
				continue
			}
			log.Debug("dropping malformed stylesheet block", zap.Error(err), zap.String("block", abbreviate(block)))
			continue
		}
		w.walk(parsed.Rules, nil)
	}
	return sheet
}

// ParseStylesheetForMedia parses a sheet whose rules only apply when media
// matches, as for <style media="print">.
func ParseStylesheetForMedia(source, media string) *Stylesheet {
	sheet := ParseStylesheet(source)
	sheet.Media = strings.TrimSpace(media)
	return sheet
}

type ruleWalker struct {
	sheet *Stylesheet
	log   *zap.Logger
	order int
}

func (w *ruleWalker) walk(rules []*cssast.Rule, media []string) {
	for _, rule := range rules {
		if rule == nil {
			continue
		}
		switch rule.Kind {
		case cssast.AtRule:
			switch strings.ToLower(strings.TrimSpace(rule.Name)) {
			case "@media":
				nested := make([]string, len(media), len(media)+1)
				copy(nested, media)
				w.walk(rule.Rules, append(nested, strings.TrimSpace(rule.Prelude)))
			case "@supports":
				if SupportsConditionMatches(rule.Prelude) {
					w.walk(rule.Rules, media)
				}
			default:
				// @import, @font-face, @keyframes and friends contribute nothing.
			}
		case cssast.QualifiedRule:
			w.addQualified(rule, media)
		}
	}
}

func (w *ruleWalker) addQualified(rule *cssast.Rule, media []string) {
	decls := convertDeclarations(rule.Declarations)
	if len(decls) == 0 {
		return
	}
	var selectors []Selector
	for _, text := range rule.Selectors {
		sel, ok := compileSelector(text)
		if !ok {
			w.log.Debug("skipping unsupported selector", zap.String("selector", text))
			continue
		}
		selectors = append(selectors, sel)
	}
	if len(selectors) == 0 {
		return
	}
	w.sheet.Rules = append(w.sheet.Rules, Rule{
		Selectors:    selectors,
		Declarations: decls,
		Media:        media,
		Order:        w.order,
	})
	w.order++
}

// addLenient recovers a plain "selectors { declarations }" block the strict
// parser rejected, dropping only the declarations that fail on their own.
func (w *ruleWalker) addLenient(block string) bool {
	open := strings.IndexByte(block, '{')
	if open <= 0 || !strings.HasSuffix(block, "}") {
		return false
	}
	decls := ParseDeclarations(block[open+1 : len(block)-1])
	if len(decls) == 0 {
		return false
	}
	var selectors []Selector
	for _, text := range strings.Split(block[:open], ",") {
		if sel, ok := compileSelector(text); ok {
			selectors = append(selectors, sel)
		}
	}
	if len(selectors) == 0 {
		return false
	}
	w.sheet.Rules = append(w.sheet.Rules, Rule{Selectors: selectors, Declarations: decls, Order: w.order})
	w.order++
	return true
}

func compileSelector(text string) (Selector, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Selector{}, false
	}
	sel, err := cascadia.Parse(text)
	if err != nil || sel.PseudoElement() != "" {
		return Selector{}, false
	}
	return Selector{
		Text:        text,
		Specificity: sel.Specificity(),
		sel:         sel,
		bucket:      selectorBucket(text),
	}, true
}

func convertDeclarations(list []*cssast.Declaration) []Declaration {
	out := make([]Declaration, 0, len(list))
	for _, decl := range list {
		if decl == nil {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(decl.Property))
		value := strings.TrimSpace(decl.Value)
		if prop == "" || value == "" {
			continue
		}
		out = append(out, Declaration{Property: prop, Value: value, Important: decl.Important})
	}
	return out
}

// ParseDeclarations parses the body of a declaration block, as found in a
// style="" attribute. On a parse error each ';'-separated piece is retried
// on its own so one bad declaration does not hide its neighbours.
func ParseDeclarations(source string) []Declaration {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil
	}
	if decls, err := parser.ParseDeclarations(source); err == nil {
		return convertDeclarations(decls)
	}
	var out []Declaration
	for _, piece := range splitDeclarationPieces(source) {
		decls, err := parser.ParseDeclarations(piece)
		if err != nil {
			zap.L().Named("css").Debug("dropping malformed declaration", zap.String("declaration", piece))
			continue
		}
		out = append(out, convertDeclarations(decls)...)
	}
	return out
}

func splitDeclarationPieces(source string) []string {
	var pieces []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(source); i++ {
		c := source[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == ';' && depth == 0:
			if piece := strings.TrimSpace(source[start:i]); piece != "" {
				pieces = append(pieces, piece)
			}
			start = i + 1
		}
	}
	if piece := strings.TrimSpace(source[start:]); piece != "" {
		pieces = append(pieces, piece)
	}
	return pieces
}

// splitRules splits CSS into top-level blocks, each ending at the '}' that
// closes its outermost brace. Comments are removed; braces inside comments
// and strings do not count. Trailing text without a closing brace is closed
// and kept as a final block.
func splitRules(css string) []string {
	var rules []string
	var cur strings.Builder
	depth := 0
	flush := func() {
		if rule := strings.TrimSpace(cur.String()); rule != "" {
			rules = append(rules, rule)
		}
		cur.Reset()
	}
	for i := 0; i < len(css); i++ {
		c := css[i]
		switch c {
		case '/':
			if i+1 < len(css) && css[i+1] == '*' {
				end := strings.Index(css[i+2:], "*/")
				if end < 0 {
					i = len(css)
				} else {
					i += end + 3
				}
				cur.WriteByte(' ')
				continue
			}
		case '"', '\'':
			j := i + 1
			for ; j < len(css) && css[j] != c; j++ {
				if css[j] == '\\' {
					j++
				}
			}
			j = min(j, len(css)-1)
			cur.WriteString(css[i : j+1])
			i = j
			continue
		case '{':
			depth++
		case '}':
			if depth == 0 {
				// Stray closing brace: drop everything up to it.
				cur.Reset()
				continue
			}
			depth--
			if depth == 0 {
				cur.WriteByte(c)
				flush()
				continue
			}
		}
		cur.WriteByte(c)
	}
	if depth > 0 {
		cur.WriteString(strings.Repeat("}", depth))
	}
	flush()
	return rules
}

func abbreviate(s string) string {
	const max = 80
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
