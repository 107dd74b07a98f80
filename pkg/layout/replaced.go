package layout

import (
	"image"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"l14core/pkg/css"
	"l14core/pkg/dom"
	"l14core/pkg/images"
	"l14core/pkg/render"
)

const (
	defaultSVGWidth   = 300
	defaultSVGHeight  = 150
	defaultInputWidth = 150
	buttonPaddingPx   = 16
	inputPaddingPx    = 4
)

// isReplaced reports elements whose content is painted from outside the
// document tree.
func isReplaced(el *html.Node) bool {
	switch dom.Tag(el) {
	case "img", "svg", "input":
		return true
	}
	return false
}

// replacedOuterSize returns the margin-box size of a replaced element. An
// explicit CSS size is the border box; intrinsic sizes are content sizes.
func (le *LayoutEngine) replacedOuterSize(el *html.Node, style *css.ComputedStyle, available int) (size, error) {
	padding := style.Padding.Resolve(available)
	chrome := addEdges(style.BorderWidth, padding)

	var explicitW, explicitH *int
	if style.Width != nil {
		w := max(style.Width.Resolve(available), 0)
		explicitW = &w
	}
	if style.Height != nil {
		h := max(*style.Height, 0)
		explicitH = &h
	}

	var content size
	var err error
	switch dom.Tag(el) {
	case "img":
		content = le.imageSize(el, explicitW, explicitH, chrome)
	case "svg":
		content = svgSize(el)
	case "input":
		content, err = le.inputSize(el, style)
	}
	if err != nil {
		return size{}, err
	}

	border := size{width: content.width + chrome.Horizontal(), height: content.height + chrome.Vertical()}
	if explicitW != nil {
		border.width = *explicitW
	}
	if explicitH != nil {
		border.height = *explicitH
	}
	border.width = clampWidth(border.width, style, available)
	if style.MinHeight != nil {
		border.height = max(border.height, *style.MinHeight)
	}
	return size{
		width:  border.width + style.Margin.Horizontal(),
		height: border.height + style.Margin.Vertical(),
	}, nil
}

// imageSize returns the content size of an img: the intrinsic size, with a
// single explicit dimension scaling the other by the aspect ratio.
func (le *LayoutEngine) imageSize(el *html.Node, explicitW, explicitH *int, chrome css.Edges) size {
	img := le.loadImage(dom.AttrOr(el, "src", ""))
	if img == nil {
		return size{}
	}
	b := img.Bounds()
	iw, ih := b.Dx(), b.Dy()
	switch {
	case explicitW != nil && explicitH == nil && iw > 0:
		w := max(*explicitW-chrome.Horizontal(), 0)
		return size{width: w, height: roundInt(float64(w) * float64(ih) / float64(iw))}
	case explicitH != nil && explicitW == nil && ih > 0:
		h := max(*explicitH-chrome.Vertical(), 0)
		return size{width: roundInt(float64(h) * float64(iw) / float64(ih)), height: h}
	}
	return size{width: iw, height: ih}
}

// svgSize reads the width and height attributes, then the viewBox.
func svgSize(el *html.Node) size {
	s := size{width: defaultSVGWidth, height: defaultSVGHeight}
	var vbW, vbH int
	var hasViewBox bool
	if fields := strings.FieldsFunc(dom.AttrOr(el, "viewbox", ""), func(r rune) bool { return r == ' ' || r == ',' }); len(fields) == 4 {
		w, errW := strconv.ParseFloat(fields[2], 64)
		h, errH := strconv.ParseFloat(fields[3], 64)
		if errW == nil && errH == nil && w > 0 && h > 0 {
			vbW, vbH, hasViewBox = roundInt(w), roundInt(h), true
		}
	}
	if hasViewBox {
		s = size{width: vbW, height: vbH}
	}
	if w, ok := css.ParsePx(dom.AttrOr(el, "width", "")); ok && w >= 0 {
		s.width = w
		if hasViewBox && dom.AttrOr(el, "height", "") == "" {
			s.height = roundInt(float64(w) * float64(vbH) / float64(vbW))
		}
	}
	if h, ok := css.ParsePx(dom.AttrOr(el, "height", "")); ok && h >= 0 {
		s.height = h
		if hasViewBox && dom.AttrOr(el, "width", "") == "" {
			s.width = roundInt(float64(h) * float64(vbW) / float64(vbH))
		}
	}
	return s
}

func (le *LayoutEngine) inputSize(el *html.Node, style *css.ComputedStyle) (size, error) {
	ts := render.TextStyleFor(style)
	m := le.fontMetrics(ts)
	s := size{width: defaultInputWidth, height: m.AscentPx + m.DescentPx + inputPaddingPx}
	if label, button := inputLabel(el); button {
		w, err := le.textWidth(style.TextTransform.Apply(label), ts)
		if err != nil {
			return size{}, err
		}
		s.width = w + buttonPaddingPx
	}
	return s, nil
}

// inputLabel returns the text an input shows and whether it is a button.
// Non-button inputs show their value, else their placeholder.
func inputLabel(el *html.Node) (string, bool) {
	typ := strings.ToLower(strings.TrimSpace(dom.AttrOr(el, "type", "text")))
	value := strings.TrimSpace(dom.AttrOr(el, "value", ""))
	switch typ {
	case "submit", "button", "reset":
		if value != "" {
			return value, true
		}
		if typ == "reset" {
			return "Reset", true
		}
		return "Submit", true
	}
	return value, false
}

// loadImage resolves src through the image cache. A missing or undecodable
// image is cached as nil and paints nothing.
func (le *LayoutEngine) loadImage(src string) image.Image {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil
	}
	if img, known := le.images.Get(src); known {
		return img
	}

	var data []byte
	var err error
	if images.IsDataURI(src) {
		data, err = images.DataURIBytes(src)
	} else {
		data, err = le.resources.LoadBytes(src)
	}
	if err != nil {
		le.log.Debug("image unavailable", zap.String("src", truncate(src)), zap.Error(err))
		le.images.Put(src, nil)
		return nil
	}
	if data == nil {
		le.images.Put(src, nil)
		return nil
	}
	img, err := images.Decode(data)
	if err != nil {
		le.log.Debug("image undecodable", zap.String("src", truncate(src)), zap.Error(err))
		img = nil
	}
	le.images.Put(src, img)
	return img
}

func truncate(s string) string {
	const limit = 80
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// paintReplaced paints the content of img, svg and input into contentBox.
func (le *LayoutEngine) paintReplaced(el *html.Node, style *css.ComputedStyle, contentBox Rect) error {
	if contentBox.Width <= 0 || contentBox.Height <= 0 {
		return nil
	}
	switch dom.Tag(el) {
	case "img":
		src := strings.TrimSpace(dom.AttrOr(el, "src", ""))
		if img := le.loadImage(src); img != nil {
			le.list.Append(render.DrawImage{
				X: contentBox.X, Y: contentBox.Y, Width: contentBox.Width, Height: contentBox.Height,
				Opacity: 255, Source: src, Image: img,
			})
		}
	case "svg":
		le.list.Append(render.DrawSvg{
			X: contentBox.X, Y: contentBox.Y, Width: contentBox.Width, Height: contentBox.Height,
			Opacity: 255, XML: serializeSVG(el),
		})
	case "input":
		return le.paintInput(el, style, contentBox)
	}
	return nil
}

func (le *LayoutEngine) paintInput(el *html.Node, style *css.ComputedStyle, contentBox Rect) error {
	label, button := inputLabel(el)
	placeholder := false
	if !button && label == "" {
		label = strings.TrimSpace(dom.AttrOr(el, "placeholder", ""))
		placeholder = true
	}
	if label == "" {
		return nil
	}
	label = style.TextTransform.Apply(label)

	ts := render.TextStyleFor(style)
	ts.Underline = false
	if placeholder {
		ts.Color = placeholderColor(ts.Color)
	}
	m := le.fontMetrics(ts)
	baseline := contentBox.Y + max(contentBox.Height-(m.AscentPx+m.DescentPx), 0)/2 + m.AscentPx

	x := contentBox.X
	if button {
		w, err := le.textWidth(label, ts)
		if err != nil {
			return err
		}
		x += max(contentBox.Width-max(w, 0), 0) / 2
	}
	le.list.Append(render.DrawText{X: x, Y: baseline, Text: label, Style: ts})
	return nil
}

// placeholderColor fades c halfway to white, keeping its alpha.
func placeholderColor(c css.Color) css.Color {
	mix := func(v uint8) uint8 { return uint8((uint16(v) + 255) / 2) }
	return css.Color{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: c.A}
}
