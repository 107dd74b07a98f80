package css

import (
	"strconv"
	"strings"
)

// Color is a straight (non-premultiplied) RGBA color. It implements
// image/color.Color so it can be handed to gg directly.
type Color struct {
	R, G, B, A uint8
}

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{}
)

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	a = uint32(c.A)
	a |= a << 8
	r = uint32(c.R) * a / 255
	g = uint32(c.G) * a / 255
	b = uint32(c.B) * a / 255
	return
}

// IsTransparent reports a fully transparent color.
func (c Color) IsTransparent() bool { return c.A == 0 }

// Hex formats the color as #rrggbb, or #rrggbbaa when not opaque.
func (c Color) Hex() string {
	const digits = "0123456789abcdef"
	out := []byte{'#',
		digits[c.R>>4], digits[c.R&15],
		digits[c.G>>4], digits[c.G&15],
		digits[c.B>>4], digits[c.B&15],
	}
	if c.A != 255 {
		out = append(out, digits[c.A>>4], digits[c.A&15])
	}
	return string(out)
}

var namedColors = map[string]Color{
	"black":         {0, 0, 0, 255},
	"white":         {255, 255, 255, 255},
	"red":           {255, 0, 0, 255},
	"green":         {0, 128, 0, 255},
	"blue":          {0, 0, 255, 255},
	"yellow":        {255, 255, 0, 255},
	"cyan":          {0, 255, 255, 255},
	"aqua":          {0, 255, 255, 255},
	"magenta":       {255, 0, 255, 255},
	"fuchsia":       {255, 0, 255, 255},
	"gray":          {128, 128, 128, 255},
	"grey":          {128, 128, 128, 255},
	"darkgray":      {169, 169, 169, 255},
	"darkgrey":      {169, 169, 169, 255},
	"lightgray":     {211, 211, 211, 255},
	"lightgrey":     {211, 211, 211, 255},
	"dimgray":       {105, 105, 105, 255},
	"gainsboro":     {220, 220, 220, 255},
	"whitesmoke":    {245, 245, 245, 255},
	"orange":        {255, 165, 0, 255},
	"purple":        {128, 0, 128, 255},
	"pink":          {255, 192, 203, 255},
	"brown":         {165, 42, 42, 255},
	"lime":          {0, 255, 0, 255},
	"navy":          {0, 0, 128, 255},
	"teal":          {0, 128, 128, 255},
	"olive":         {128, 128, 0, 255},
	"maroon":        {128, 0, 0, 255},
	"silver":        {192, 192, 192, 255},
	"gold":          {255, 215, 0, 255},
	"indigo":        {75, 0, 130, 255},
	"violet":        {238, 130, 238, 255},
	"coral":         {255, 127, 80, 255},
	"salmon":        {250, 128, 114, 255},
	"tomato":        {255, 99, 71, 255},
	"crimson":       {220, 20, 60, 255},
	"darkred":       {139, 0, 0, 255},
	"darkgreen":     {0, 100, 0, 255},
	"darkblue":      {0, 0, 139, 255},
	"lightblue":     {173, 216, 230, 255},
	"skyblue":       {135, 206, 235, 255},
	"steelblue":     {70, 130, 180, 255},
	"royalblue":     {65, 105, 225, 255},
	"dodgerblue":    {30, 144, 255, 255},
	"lightgreen":    {144, 238, 144, 255},
	"forestgreen":   {34, 139, 34, 255},
	"seagreen":      {46, 139, 87, 255},
	"beige":         {245, 245, 220, 255},
	"ivory":         {255, 255, 240, 255},
	"khaki":         {240, 230, 140, 255},
	"lavender":      {230, 230, 250, 255},
	"linen":         {250, 240, 230, 255},
	"tan":           {210, 180, 140, 255},
	"chocolate":     {210, 105, 30, 255},
	"orangered":     {255, 69, 0, 255},
	"darkorange":    {255, 140, 0, 255},
	"lightyellow":   {255, 255, 224, 255},
	"aliceblue":     {240, 248, 255, 255},
	"ghostwhite":    {248, 248, 255, 255},
	"snow":          {255, 250, 250, 255},
	"slategray":     {112, 128, 144, 255},
	"darkslategray": {47, 79, 79, 255},
	"rebeccapurple": {102, 51, 153, 255},
	"transparent":   {0, 0, 0, 0},
}

// ParseColor parses hex (#rgb, #rgba, #rrggbb, #rrggbbaa), rgb()/rgba()
// and named colors.
func ParseColor(colorStr string) (Color, bool) {
	colorStr = strings.ToLower(strings.TrimSpace(colorStr))
	if colorStr == "" {
		return Color{}, false
	}
	if strings.HasPrefix(colorStr, "#") {
		return parseHexColor(colorStr[1:])
	}
	if strings.HasPrefix(colorStr, "rgb(") || strings.HasPrefix(colorStr, "rgba(") {
		return parseRGBFunction(colorStr)
	}
	color, ok := namedColors[colorStr]
	return color, ok
}

func parseHexColor(hex string) (Color, bool) {
	for i := 0; i < len(hex); i++ {
		if _, ok := hexNibble(hex[i]); !ok {
			return Color{}, false
		}
	}
	nib := func(i int) uint8 {
		v, _ := hexNibble(hex[i])
		return v
	}
	switch len(hex) {
	case 3, 4:
		c := Color{R: nib(0) * 17, G: nib(1) * 17, B: nib(2) * 17, A: 255}
		if len(hex) == 4 {
			c.A = nib(3) * 17
		}
		return c, true
	case 6, 8:
		c := Color{R: nib(0)<<4 | nib(1), G: nib(2)<<4 | nib(3), B: nib(4)<<4 | nib(5), A: 255}
		if len(hex) == 8 {
			c.A = nib(6)<<4 | nib(7)
		}
		return c, true
	}
	return Color{}, false
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func parseRGBFunction(value string) (Color, bool) {
	name, args, ok := strings.Cut(value, "(")
	if !ok || !strings.HasSuffix(args, ")") {
		return Color{}, false
	}
	args = strings.TrimSpace(strings.TrimSuffix(args, ")"))
	if args == "" {
		return Color{}, false
	}
	parts := strings.Split(args, ",")
	expected := 3
	if name == "rgba" {
		expected = 4
	}
	if len(parts) != expected {
		return Color{}, false
	}
	var channels [3]uint8
	for i := 0; i < 3; i++ {
		ch, ok := parseChannel(parts[i])
		if !ok {
			return Color{}, false
		}
		channels[i] = ch
	}
	c := Color{R: channels[0], G: channels[1], B: channels[2], A: 255}
	if name == "rgba" {
		a, ok := parseAlphaChannel(parts[3])
		if !ok {
			return Color{}, false
		}
		c.A = a
	}
	return c, true
}

func parseChannel(s string) (uint8, bool) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, false
		}
		return clampByte(f * 255 / 100), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return clampByte(f), true
}

// parseAlphaChannel accepts 0..1 fractions and, for values above 1, 0..255.
func parseAlphaChannel(s string) (uint8, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	if f <= 1 {
		if f < 0 {
			f = 0
		}
		return clampByte(f * 255), true
	}
	return clampByte(f), true
}

func clampByte(f float64) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 255:
		return 255
	}
	return uint8(roundPx(f))
}
