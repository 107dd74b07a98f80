package css

import (
	"math"
	"strconv"
	"strings"

	"github.com/gorilla/css/scanner"
)

// LengthKind tags the variant held by a Length.
type LengthKind int

const (
	LengthPx LengthKind = iota
	LengthPercent
	LengthCalc
)

// Length is a parsed CSS length: a pixel value, a percentage of some
// reference length, or a calc() combination of both.
type Length struct {
	Kind    LengthKind
	Px      int
	Percent float64
}

// Px returns a pixel length.
func Px(px int) Length { return Length{Kind: LengthPx, Px: px} }

// Percent returns a percentage length.
func Percent(p float64) Length { return Length{Kind: LengthPercent, Percent: p} }

// Resolve maps the length to whole pixels against reference (usually the
// containing block width). Negative references are treated as zero.
func (l Length) Resolve(reference int) int {
	if reference < 0 {
		reference = 0
	}
	switch l.Kind {
	case LengthPercent:
		return roundPx(float64(reference) * l.Percent / 100)
	case LengthCalc:
		return l.Px + roundPx(float64(reference)*l.Percent/100)
	default:
		return l.Px
	}
}

func (l Length) String() string {
	switch l.Kind {
	case LengthPercent:
		return strconv.FormatFloat(l.Percent, 'f', -1, 64) + "%"
	case LengthCalc:
		return "calc(" + strconv.FormatFloat(l.Percent, 'f', -1, 64) + "% + " + strconv.Itoa(l.Px) + "px)"
	default:
		return strconv.Itoa(l.Px) + "px"
	}
}

// ParseLength parses a length without viewport information; viewport units fail.
func ParseLength(value string) (Length, bool) {
	return parseLength(value, viewportRef{})
}

// ParseLengthInViewport parses a length, resolving vw/vh/vmin/vmax against
// the given viewport size.
func ParseLengthInViewport(value string, viewportWidth, viewportHeight int) (Length, bool) {
	return parseLength(value, viewportRef{width: viewportWidth, height: viewportHeight, ok: true})
}

type viewportRef struct {
	width, height int
	ok            bool
}

func parseLength(value string, vp viewportRef) (Length, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Length{}, false
	}
	if value == "0" {
		return Px(0), true
	}
	lower := strings.ToLower(value)
	if strings.HasPrefix(lower, "calc(") {
		return parseCalc(value, vp)
	}
	if strings.HasSuffix(value, "%") {
		number := strings.TrimSpace(value[:len(value)-1])
		if number == "" {
			return Length{}, false
		}
		p, err := strconv.ParseFloat(number, 64)
		if err != nil {
			return Length{}, false
		}
		return Percent(p), true
	}
	px, ok := parsePxFloat(lower, vp)
	if !ok {
		return Length{}, false
	}
	return Px(roundPx(px)), true
}

// ParsePx parses an absolute length and rounds it to whole pixels.
// Percentages and calc() are rejected.
func ParsePx(value string) (int, bool) {
	px, ok := parsePxFloat(strings.ToLower(strings.TrimSpace(value)), viewportRef{})
	if !ok {
		return 0, false
	}
	return roundPx(px), true
}

// parsePxFloat reads the numeric prefix (digits, '.', sign) and converts the
// unit that follows into pixels.
func parsePxFloat(value string, vp viewportRef) (float64, bool) {
	if value == "" {
		return 0, false
	}
	if value == "0" {
		return 0, true
	}
	end := 0
	for end < len(value) {
		c := value[end]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0, false
	}
	number, err := strconv.ParseFloat(value[:end], 64)
	if err != nil {
		return 0, false
	}
	return unitToPx(number, strings.TrimSpace(value[end:]), vp)
}

func unitToPx(number float64, unit string, vp viewportRef) (float64, bool) {
	switch unit {
	case "", "px":
		return number, true
	case "pt":
		return number * 96 / 72, true
	case "pc":
		return number * 16, true
	case "in":
		return number * 96, true
	case "cm":
		return number * 96 / 2.54, true
	case "mm":
		return number * 96 / 25.4, true
	case "em", "rem":
		return number * 16, true
	case "vw", "vh", "vmin", "vmax":
		if !vp.ok {
			return 0, false
		}
		ref := vp.width
		switch unit {
		case "vh":
			ref = vp.height
		case "vmin":
			if vp.height < ref {
				ref = vp.height
			}
		case "vmax":
			if vp.height > ref {
				ref = vp.height
			}
		}
		return number * float64(ref) / 100, true
	}
	return 0, false
}

func roundPx(v float64) int {
	return int(math.Round(v))
}

// calcValue is an intermediate calc() operand. A plain number has isNumber
// set and only num meaningful; lengths carry px and pct parts.
type calcValue struct {
	px, pct  float64
	num      float64
	isNumber bool
}

type calcParser struct {
	tokens []*scanner.Token
	pos    int
	vp     viewportRef
}

func parseCalc(value string, vp viewportRef) (Length, bool) {
	s := scanner.New(value)
	var tokens []*scanner.Token
	for {
		tok := s.Next()
		if tok.Type == scanner.TokenEOF {
			break
		}
		if tok.Type == scanner.TokenError {
			return Length{}, false
		}
		if tok.Type == scanner.TokenS || tok.Type == scanner.TokenComment {
			continue
		}
		tokens = append(tokens, tok)
	}
	p := &calcParser{tokens: tokens, vp: vp}
	if !p.acceptFunction("calc(") {
		return Length{}, false
	}
	v, ok := p.expr()
	if !ok || !p.acceptChar(")") || p.pos != len(p.tokens) || v.isNumber {
		return Length{}, false
	}
	switch {
	case v.pct == 0:
		return Px(roundPx(v.px)), true
	case v.px == 0:
		return Percent(v.pct), true
	}
	return Length{Kind: LengthCalc, Px: roundPx(v.px), Percent: v.pct}, true
}

func (p *calcParser) peek() *scanner.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return p.tokens[p.pos]
}

func (p *calcParser) acceptChar(c string) bool {
	tok := p.peek()
	if tok != nil && tok.Type == scanner.TokenChar && tok.Value == c {
		p.pos++
		return true
	}
	return false
}

func (p *calcParser) acceptFunction(name string) bool {
	tok := p.peek()
	if tok != nil && tok.Type == scanner.TokenFunction && strings.EqualFold(tok.Value, name) {
		p.pos++
		return true
	}
	return false
}

func (p *calcParser) expr() (calcValue, bool) {
	left, ok := p.term()
	if !ok {
		return calcValue{}, false
	}
	for {
		switch {
		case p.acceptChar("+"):
			right, ok := p.term()
			if !ok || left.isNumber != right.isNumber {
				return calcValue{}, false
			}
			left = calcValue{px: left.px + right.px, pct: left.pct + right.pct, num: left.num + right.num, isNumber: left.isNumber}
		case p.acceptChar("-"):
			right, ok := p.term()
			if !ok || left.isNumber != right.isNumber {
				return calcValue{}, false
			}
			left = calcValue{px: left.px - right.px, pct: left.pct - right.pct, num: left.num - right.num, isNumber: left.isNumber}
		default:
			// "100% -20px" scans the sign into the number token.
			tok := p.peek()
			if tok != nil && isSignedOperand(tok) {
				right, ok := p.term()
				if !ok || left.isNumber != right.isNumber {
					return calcValue{}, false
				}
				left = calcValue{px: left.px + right.px, pct: left.pct + right.pct, num: left.num + right.num, isNumber: left.isNumber}
				continue
			}
			return left, true
		}
	}
}

func isSignedOperand(tok *scanner.Token) bool {
	switch tok.Type {
	case scanner.TokenNumber, scanner.TokenPercentage, scanner.TokenDimension:
		return strings.HasPrefix(tok.Value, "-") || strings.HasPrefix(tok.Value, "+")
	}
	return false
}

func (p *calcParser) term() (calcValue, bool) {
	left, ok := p.factor()
	if !ok {
		return calcValue{}, false
	}
	for {
		switch {
		case p.acceptChar("*"):
			right, ok := p.factor()
			if !ok {
				return calcValue{}, false
			}
			switch {
			case left.isNumber && right.isNumber:
				left = calcValue{num: left.num * right.num, isNumber: true}
			case left.isNumber:
				left = calcValue{px: right.px * left.num, pct: right.pct * left.num}
			case right.isNumber:
				left = calcValue{px: left.px * right.num, pct: left.pct * right.num}
			default:
				return calcValue{}, false
			}
		case p.acceptChar("/"):
			right, ok := p.factor()
			if !ok || !right.isNumber || right.num == 0 {
				return calcValue{}, false
			}
			if left.isNumber {
				left = calcValue{num: left.num / right.num, isNumber: true}
			} else {
				left = calcValue{px: left.px / right.num, pct: left.pct / right.num}
			}
		default:
			return left, true
		}
	}
}

func (p *calcParser) factor() (calcValue, bool) {
	tok := p.peek()
	if tok == nil {
		return calcValue{}, false
	}
	switch tok.Type {
	case scanner.TokenChar:
		switch tok.Value {
		case "(":
			p.pos++
			v, ok := p.expr()
			if !ok || !p.acceptChar(")") {
				return calcValue{}, false
			}
			return v, true
		case "-":
			p.pos++
			v, ok := p.factor()
			return calcValue{px: -v.px, pct: -v.pct, num: -v.num, isNumber: v.isNumber}, ok
		case "+":
			p.pos++
			return p.factor()
		}
	case scanner.TokenFunction:
		if !strings.EqualFold(tok.Value, "calc(") {
			return calcValue{}, false
		}
		p.pos++
		v, ok := p.expr()
		if !ok || !p.acceptChar(")") {
			return calcValue{}, false
		}
		return v, true
	case scanner.TokenNumber:
		p.pos++
		n, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return calcValue{}, false
		}
		return calcValue{num: n, isNumber: true}, true
	case scanner.TokenPercentage:
		p.pos++
		n, err := strconv.ParseFloat(strings.TrimSuffix(tok.Value, "%"), 64)
		if err != nil {
			return calcValue{}, false
		}
		return calcValue{pct: n}, true
	case scanner.TokenDimension:
		p.pos++
		px, ok := parsePxFloat(strings.ToLower(tok.Value), p.vp)
		if !ok {
			return calcValue{}, false
		}
		return calcValue{px: px}, true
	}
	return calcValue{}, false
}
