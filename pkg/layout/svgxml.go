package layout

import (
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
)

const svgNamespace = "http://www.w3.org/2000/svg"

// svgTagNames restores the camel case SVG tag names that HTML parsing folds.
var svgTagNames = caseTable(
	"altGlyph", "altGlyphDef", "altGlyphItem", "animateColor", "animateMotion",
	"animateTransform", "clipPath", "feBlend", "feColorMatrix",
	"feComponentTransfer", "feComposite", "feConvolveMatrix",
	"feDiffuseLighting", "feDisplacementMap", "feDistantLight", "feDropShadow",
	"feFlood", "feFuncA", "feFuncB", "feFuncG", "feFuncR", "feGaussianBlur",
	"feImage", "feMerge", "feMergeNode", "feMorphology", "feOffset",
	"fePointLight", "feSpecularLighting", "feSpotLight", "feTile",
	"feTurbulence", "foreignObject", "glyphRef", "linearGradient",
	"radialGradient", "textPath",
)

// svgAttrNames does the same for attributes.
var svgAttrNames = caseTable(
	"attributeName", "attributeType", "baseFrequency", "baseProfile",
	"clipPathUnits", "diffuseConstant", "edgeMode", "filterUnits", "glyphRef",
	"gradientTransform", "gradientUnits", "kernelMatrix", "kernelUnitLength",
	"keyPoints", "keySplines", "keyTimes", "lengthAdjust", "limitingConeAngle",
	"markerHeight", "markerUnits", "markerWidth", "maskContentUnits",
	"maskUnits", "numOctaves", "pathLength", "patternContentUnits",
	"patternTransform", "patternUnits", "pointsAtX", "pointsAtY", "pointsAtZ",
	"preserveAlpha", "preserveAspectRatio", "primitiveUnits", "refX", "refY",
	"repeatCount", "repeatDur", "requiredExtensions", "requiredFeatures",
	"specularConstant", "specularExponent", "spreadMethod", "startOffset",
	"stdDeviation", "stitchTiles", "surfaceScale", "systemLanguage",
	"tableValues", "targetX", "targetY", "textLength", "viewBox",
	"xChannelSelector", "yChannelSelector", "zoomAndPan",
)

func caseTable(names ...string) map[string]string {
	m := make(map[string]string, len(names))
	for _, n := range names {
		m[strings.ToLower(n)] = n
	}
	return m
}

func svgName(table map[string]string, name string) string {
	if fixed, ok := table[strings.ToLower(name)]; ok {
		return fixed
	}
	return name
}

// serializeSVG writes an inline <svg> subtree as standalone XML with SVG
// casing and the SVG namespace on the root.
func serializeSVG(el *html.Node) string {
	doc := etree.NewDocument()
	doc.WriteSettings.CanonicalEndTags = true
	root := appendSVGElement(&doc.Element, el)
	if root.SelectAttr("xmlns") == nil {
		root.CreateAttr("xmlns", svgNamespace)
	}
	out, err := doc.WriteToString()
	if err != nil {
		return ""
	}
	return out
}

func appendSVGElement(parent *etree.Element, n *html.Node) *etree.Element {
	e := parent.CreateElement(svgName(svgTagNames, n.Data))
	for _, a := range n.Attr {
		key := svgName(svgAttrNames, a.Key)
		if a.Namespace != "" {
			key = a.Namespace + ":" + key
		}
		e.CreateAttr(key, a.Val)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			appendSVGElement(e, c)
		case html.TextNode:
			e.CreateText(c.Data)
		}
	}
	return e
}
