package css

import (
	"sort"
	"strings"

	"golang.org/x/net/html"

	"l14core/pkg/dom"
)

type bucketKind int

const (
	bucketUniversal bucketKind = iota
	bucketID
	bucketClass
	bucketTag
)

// bucketKey says which index bucket a selector is filed under, chosen from
// its rightmost compound: id first, then the first class, then the tag.
type bucketKey struct {
	kind  bucketKind
	value string
}

func selectorBucket(text string) bucketKey {
	compound := lastCompound(strings.TrimSpace(text))
	if strings.ContainsRune(compound, '\\') {
		return bucketKey{}
	}
	var id, class, tag string
	i := 0
	for i < len(compound) && isIdentByte(compound[i]) {
		i++
	}
	tag = compound[:i]
	if i == 0 && i < len(compound) && compound[i] == '*' {
		i++
	}
	for i < len(compound) {
		switch compound[i] {
		case '#', '.':
			kind := compound[i]
			j := i + 1
			for j < len(compound) && isIdentByte(compound[j]) {
				j++
			}
			name := compound[i+1 : j]
			if kind == '#' && id == "" {
				id = name
			} else if kind == '.' && class == "" {
				class = name
			}
			i = j
		case '[':
			i = skipGroup(compound, i, '[', ']')
		case '(':
			i = skipGroup(compound, i, '(', ')')
		default:
			i++
		}
	}
	switch {
	case id != "":
		return bucketKey{bucketID, id}
	case class != "":
		return bucketKey{bucketClass, class}
	case tag != "":
		return bucketKey{bucketTag, strings.ToLower(tag)}
	}
	return bucketKey{}
}

func isIdentByte(c byte) bool {
	return c == '-' || c == '_' || c >= 0x80 ||
		(c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func skipGroup(s string, i int, open, close byte) int {
	depth := 0
	for ; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(s)
}

// lastCompound returns the text after the last top-level combinator.
func lastCompound(text string) string {
	start := 0
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case ' ', '\t', '\n', '>', '+', '~':
			if depth == 0 {
				start = i + 1
			}
		}
	}
	return strings.TrimSpace(text[start:])
}

// indexedRule is a rule plus its cascade-wide source order and the media
// conditions inherited from its stylesheet.
type indexedRule struct {
	rule  *Rule
	media []string
	order int
}

// ruleIndex files every rule under the buckets of its selectors so an
// element only tests rules that could possibly match it.
type ruleIndex struct {
	rules     []indexedRule
	byID      map[string][]int
	byClass   map[string][]int
	byTag     map[string][]int
	universal []int
}

func buildRuleIndex(sheets []*Stylesheet) *ruleIndex {
	idx := &ruleIndex{
		byID:    make(map[string][]int),
		byClass: make(map[string][]int),
		byTag:   make(map[string][]int),
	}
	order := 0
	for _, sheet := range sheets {
		if sheet == nil {
			continue
		}
		var sheetMedia []string
		if sheet.Media != "" {
			sheetMedia = []string{sheet.Media}
		}
		for i := range sheet.Rules {
			rule := &sheet.Rules[i]
			media := rule.Media
			if sheetMedia != nil {
				media = append(append([]string{}, sheetMedia...), rule.Media...)
			}
			id := len(idx.rules)
			idx.rules = append(idx.rules, indexedRule{rule: rule, media: media, order: order})
			order++
			for _, sel := range rule.Selectors {
				switch sel.bucket.kind {
				case bucketID:
					idx.byID[sel.bucket.value] = append(idx.byID[sel.bucket.value], id)
				case bucketClass:
					idx.byClass[sel.bucket.value] = append(idx.byClass[sel.bucket.value], id)
				case bucketTag:
					idx.byTag[sel.bucket.value] = append(idx.byTag[sel.bucket.value], id)
				default:
					idx.universal = append(idx.universal, id)
				}
			}
		}
	}
	return idx
}

// matchedRule is a rule that applies to an element, with the highest
// specificity among its matching selectors.
type matchedRule struct {
	rule        *Rule
	specificity [3]int
	order       int
}

// viewportSize is nil when media conditions should not be evaluated.
type viewportSize struct {
	width, height int
}

func (idx *ruleIndex) match(el *html.Node, vp *viewportSize) []matchedRule {
	seen := make(map[int]bool)
	var matched []matchedRule
	consider := func(id int) {
		if seen[id] {
			return
		}
		seen[id] = true
		ir := idx.rules[id]
		if vp != nil && !mediaConditionsMatch(ir.media, vp.width, vp.height) {
			return
		}
		var best [3]int
		found := false
		for _, sel := range ir.rule.Selectors {
			if !sel.Matches(el) {
				continue
			}
			spec := [3]int(sel.Specificity)
			if !found || specificityLess(best, spec) {
				best = spec
			}
			found = true
		}
		if found {
			matched = append(matched, matchedRule{rule: ir.rule, specificity: best, order: ir.order})
		}
	}

	for _, id := range idx.universal {
		consider(id)
	}
	if id := dom.ID(el); id != "" {
		for _, rid := range idx.byID[id] {
			consider(rid)
		}
	}
	for _, class := range dom.Classes(el) {
		for _, rid := range idx.byClass[class] {
			consider(rid)
		}
	}
	for _, rid := range idx.byTag[dom.Tag(el)] {
		consider(rid)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].order < matched[j].order })
	return matched
}

func specificityLess(a, b [3]int) bool {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
