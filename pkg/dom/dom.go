// Package dom holds read-only helpers over golang.org/x/net/html trees.
package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Parse parses an HTML document.
func Parse(r io.Reader) (*html.Node, error) {
	return html.Parse(r)
}

// ParseString parses an HTML document held in memory.
func ParseString(source string) (*html.Node, error) {
	return html.Parse(strings.NewReader(source))
}

// IsElement reports element nodes.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// Tag returns the lowercase tag name of an element, or "" for other nodes.
func Tag(n *html.Node) string {
	if !IsElement(n) {
		return ""
	}
	return strings.ToLower(n.Data)
}

// Attr looks up an attribute by name (case-insensitive).
func Attr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value or fallback when it is absent.
func AttrOr(n *html.Node, name, fallback string) string {
	if v, ok := Attr(n, name); ok {
		return v
	}
	return fallback
}

// ID returns the id attribute.
func ID(n *html.Node) string {
	return AttrOr(n, "id", "")
}

// Classes returns the class list in document order.
func Classes(n *html.Node) []string {
	return strings.Fields(AttrOr(n, "class", ""))
}

// ElementChildren returns the element children of n.
func ElementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// FindFirst returns the first element named tag in document order,
// including n itself.
func FindFirst(n *html.Node, tag string) *html.Node {
	if n == nil {
		return nil
	}
	if Tag(n) == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := FindFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// RenderRoot returns the element layout starts from: the <html> element
// when present, else the first element child of the document.
func RenderRoot(doc *html.Node) *html.Node {
	if IsElement(doc) {
		return doc
	}
	if root := FindFirst(doc, "html"); root != nil {
		return root
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// ClosestAncestor walks up from n (inclusive) and returns the first element
// accepted by match.
func ClosestAncestor(n *html.Node, match func(*html.Node) bool) *html.Node {
	for ; n != nil; n = n.Parent {
		if IsElement(n) && match(n) {
			return n
		}
	}
	return nil
}

// TextContent concatenates all descendant text.
func TextContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// IsBlankText reports whitespace-only text nodes.
func IsBlankText(n *html.Node) bool {
	return n.Type == html.TextNode && strings.TrimSpace(n.Data) == ""
}
