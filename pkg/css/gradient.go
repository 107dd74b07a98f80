package css

import "strings"

// GradientDirection is the axis a linear gradient runs along.
type GradientDirection int

const (
	TopToBottom GradientDirection = iota
	BottomToTop
	LeftToRight
	RightToLeft
)

func (d GradientDirection) String() string {
	switch d {
	case BottomToTop:
		return "to top"
	case LeftToRight:
		return "to right"
	case RightToLeft:
		return "to left"
	}
	return "to bottom"
}

// LinearGradient keeps only the first and last stop colors; intermediate
// stops and positions are ignored.
type LinearGradient struct {
	Direction GradientDirection
	Start     Color
	End       Color
}

// ParseLinearGradient parses a linear-gradient() CSS value
// Example: "linear-gradient(to right, #fff 0, rgba(0,0,0,.5) 80%)"
func ParseLinearGradient(value string) (LinearGradient, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if !strings.HasPrefix(value, "linear-gradient(") || !strings.HasSuffix(value, ")") {
		return LinearGradient{}, false
	}
	content := strings.TrimSpace(value[len("linear-gradient(") : len(value)-1])
	if content == "" {
		return LinearGradient{}, false
	}

	parts := splitTopLevelCommas(content)
	if len(parts) < 2 {
		return LinearGradient{}, false
	}

	grad := LinearGradient{Direction: TopToBottom}
	startIdx := 0
	if side, ok := strings.CutPrefix(parts[0], "to "); ok {
		switch strings.TrimSpace(side) {
		case "bottom":
			grad.Direction = TopToBottom
		case "top":
			grad.Direction = BottomToTop
		case "right":
			grad.Direction = LeftToRight
		case "left":
			grad.Direction = RightToLeft
		default:
			return LinearGradient{}, false
		}
		startIdx = 1
	}

	var colors []Color
	for _, part := range parts[startIdx:] {
		if c, ok := parseStopColor(part); ok {
			colors = append(colors, c)
		}
	}
	if len(colors) < 2 {
		return LinearGradient{}, false
	}
	grad.Start = colors[0]
	grad.End = colors[len(colors)-1]
	return grad, true
}

// parseStopColor parses a color stop like "blue 150px" or "rgb(1,2,3) 50%".
func parseStopColor(stop string) (Color, bool) {
	stop = strings.TrimSpace(stop)
	if stop == "" {
		return Color{}, false
	}
	if c, ok := ParseColor(stop); ok {
		return c, true
	}
	return ParseColor(firstComponentOutsideParens(stop))
}

func firstComponentOutsideParens(input string) string {
	depth := 0
	for i := 0; i < len(input); i++ {
		switch input[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ' ', '\t', '\n', '\r':
			if depth == 0 {
				return strings.TrimSpace(input[:i])
			}
		}
	}
	return strings.TrimSpace(input)
}
