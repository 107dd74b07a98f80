package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"l14core/pkg/dom"
)

// styleByID computes styles top-down from the root to the element with the
// given id so inheritance sees real parent styles.
func styleByID(t *testing.T, c *StyleComputer, doc *html.Node, id string, viewport ...int) ComputedStyle {
	t.Helper()
	target := findID(doc, id)
	require.NotNil(t, target, "no element with id %q", id)

	var chain []*html.Node
	for n := target; n != nil; n = n.Parent {
		if n.Type == html.ElementNode {
			chain = append([]*html.Node{n}, chain...)
		}
	}
	var parent *ComputedStyle
	var style ComputedStyle
	for _, n := range chain {
		if len(viewport) == 2 {
			style = c.ComputeStyleInViewport(n, parent, viewport[0], viewport[1])
		} else {
			style = c.ComputeStyle(n, parent)
		}
		s := style
		parent = &s
	}
	return style
}

func findID(n *html.Node, id string) *html.Node {
	if dom.ID(n) == id && n.Type == html.ElementNode {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func parseDoc(t *testing.T, source string) *html.Node {
	t.Helper()
	doc, err := dom.ParseString(source)
	require.NoError(t, err)
	return doc
}

func styleOf(t *testing.T, css, body, id string) ComputedStyle {
	t.Helper()
	doc := parseDoc(t, "<html><body>"+body+"</body></html>")
	return styleByID(t, NewStyleComputer(ParseStylesheet(css)), doc, id)
}

var (
	red   = Color{255, 0, 0, 255}
	blue  = Color{0, 0, 255, 255}
	green = Color{0, 128, 0, 255}
)

func TestComputeStyle_ElementSelector(t *testing.T) {
	style := styleOf(t, `div { color: red; }`, `<div id="a">x</div>`, "a")
	assert.Equal(t, red, style.Color)
}

func TestComputeStyle_Precedence(t *testing.T) {
	tests := []struct {
		name string
		css  string
		body string
		want Color
	}{
		{
			name: "class overrides element regardless of order",
			css:  `.x { color: blue; } div { color: red; }`,
			body: `<div id="a" class="x">x</div>`,
			want: blue,
		},
		{
			name: "id overrides class",
			css:  `#a { color: green; } .x { color: blue; }`,
			body: `<div id="a" class="x">x</div>`,
			want: green,
		},
		{
			name: "later rule wins at equal specificity",
			css:  `div { color: red; } div { color: blue; }`,
			body: `<div id="a">x</div>`,
			want: blue,
		},
		{
			name: "later declaration in one block wins",
			css:  `div { color: red; color: blue; }`,
			body: `<div id="a">x</div>`,
			want: blue,
		},
		{
			name: "important beats id",
			css:  `div { color: red !important; } #a { color: blue; }`,
			body: `<div id="a">x</div>`,
			want: red,
		},
		{
			name: "inline beats id",
			css:  `#a { color: red; }`,
			body: `<div id="a" style="color: blue">x</div>`,
			want: blue,
		},
		{
			name: "important rule beats inline",
			css:  `div { color: red !important; }`,
			body: `<div id="a" style="color: blue">x</div>`,
			want: red,
		},
		{
			name: "inline important beats important rule",
			css:  `#a { color: red !important; }`,
			body: `<div id="a" style="color: blue !important">x</div>`,
			want: blue,
		},
		{
			name: "most specific selector of a list counts",
			css:  `#a, p { color: red; } .x { color: blue; }`,
			body: `<div id="a" class="x">x</div>`,
			want: red,
		},
		{
			name: "descendant combinator",
			css:  `section p { color: green; } p { color: red; }`,
			body: `<section><p id="a">x</p></section>`,
			want: green,
		},
		{
			name: "child combinator does not match grandchildren",
			css:  `section > p { color: green; }`,
			body: `<section><div><p id="a">x</p></div></section>`,
			want: Black,
		},
		{
			name: "unparsable value falls through",
			css:  `div { color: blue; } #a { color: notacolor; }`,
			body: `<div id="a">x</div>`,
			want: blue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := styleOf(t, tt.css, tt.body, "a")
			assert.Equal(t, tt.want, style.Color)
		})
	}
}

func TestCascadePriorityOrder(t *testing.T) {
	base := CascadePriority{Origin: OriginAuthor, Specificity: [3]int{0, 1, 0}, Order: 5}
	later := base
	later.Order = 6
	assert.True(t, base.Less(later))
	assert.False(t, later.Less(base))
	assert.Equal(t, 0, base.Compare(base))

	important := CascadePriority{Important: true, Origin: OriginPresentational}
	assert.True(t, base.Less(important))

	inline := CascadePriority{Origin: OriginAuthor, Inline: true}
	assert.True(t, base.Less(inline))

	presentational := CascadePriority{Origin: OriginPresentational, Specificity: [3]int{1, 0, 0}, Order: 99}
	assert.True(t, presentational.Less(base))
}

func TestComputeStyle_Inheritance(t *testing.T) {
	style := styleOf(t,
		`div { color: red; background-color: blue; font-size: 20px; text-align: center; border: 1px solid green; }`,
		`<div><p id="a">x</p></div>`, "a")
	assert.Equal(t, red, style.Color, "color inherits")
	assert.Equal(t, 20, style.FontSizePx, "font-size inherits")
	assert.Equal(t, TextAlignCenter, style.TextAlign, "text-align inherits")
	assert.True(t, style.BackgroundColor.IsTransparent(), "background does not inherit")
	assert.Equal(t, Edges{}, style.BorderWidth, "border does not inherit")
	assert.Equal(t, red, style.BorderColor, "border-color defaults to color")
}

func TestComputeStyle_RootDefaults(t *testing.T) {
	root := RootDefaults()
	assert.Equal(t, DisplayBlock, root.Display)
	assert.Equal(t, Black, root.Color)
	assert.Equal(t, 16, root.FontSizePx)
	assert.Equal(t, uint8(255), root.Opacity)
	assert.Equal(t, 0, root.CustomProperties.Len())
}

func TestComputeStyle_PresentationalHints(t *testing.T) {
	doc := parseDoc(t, `<html><body id="body">
		<h1 id="h1">Title</h1>
		<h2 id="h2s">Small</h2>
		<center><span id="c">x</span></center>
		<a id="link" href="/x">link</a>
		<font id="f" color="red">x</font>
		<table><tr><td id="td" bgcolor="00ff00" width="40">x</td><th id="th">h</th></tr></table>
		<div id="hidden" hidden>x</div>
		<pre id="pre">x</pre>
	</body></html>`)
	c := NewStyleComputer(ParseStylesheet(`#h2s { font-size: 10px; }`))

	body := styleByID(t, c, doc, "body")
	assert.Equal(t, UniformEdges(8), body.Margin)

	h1 := styleByID(t, c, doc, "h1")
	assert.Equal(t, 32, h1.FontSizePx)
	assert.True(t, h1.Bold)
	assert.Equal(t, 21, h1.Margin.Top)

	assert.Equal(t, 10, styleByID(t, c, doc, "h2s").FontSizePx, "author CSS beats hints")
	assert.Equal(t, TextAlignCenter, styleByID(t, c, doc, "c").TextAlign)

	link := styleByID(t, c, doc, "link")
	assert.True(t, link.Underline)
	assert.Equal(t, Color{0, 0, 238, 255}, link.Color)

	assert.Equal(t, red, styleByID(t, c, doc, "f").Color)

	td := styleByID(t, c, doc, "td")
	assert.Equal(t, DisplayTableCell, td.Display)
	assert.Equal(t, Color{0, 255, 0, 255}, td.BackgroundColor)
	require.NotNil(t, td.Width)
	assert.Equal(t, Px(40), *td.Width)

	th := styleByID(t, c, doc, "th")
	assert.True(t, th.Bold)
	assert.Equal(t, TextAlignCenter, th.TextAlign)

	assert.Equal(t, DisplayNone, styleByID(t, c, doc, "hidden").Display)

	pre := styleByID(t, c, doc, "pre")
	assert.Equal(t, Monospace, pre.FontFamily)
	assert.Equal(t, WhiteSpacePre, pre.WhiteSpace)
}

func TestComputeStyle_CustomProperties(t *testing.T) {
	tests := []struct {
		name string
		css  string
		want Color
	}{
		{"inherited variable", `html { --main: blue; } p { color: var(--main); }`, blue},
		{"fallback for undefined", `p { color: var(--nope, green); }`, green},
		{"unresolvable drops the declaration", `div { color: red; } p { color: var(--nope); }`, red},
		{"self reference uses fallback", `p { --a: var(--a); color: var(--a, green); }`, green},
		{"mutual cycle uses fallback", `p { --a: var(--b); --b: var(--a); color: var(--a, blue); }`, blue},
		{"child overrides variable", `html { --c: red; } p { --c: green; color: var(--c); }`, green},
		{"important custom property wins", `p { --c: green !important; } #a { --c: red; color: var(--c); }`, green},
		{"inline custom property", `p { color: var(--inline, red); }`, blue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `<div><p id="a">x</p></div>`
			if tt.name == "inline custom property" {
				body = `<div><p id="a" style="--inline: blue">x</p></div>`
			}
			assert.Equal(t, tt.want, styleOf(t, tt.css, body, "a").Color)
		})
	}
}

func TestComputeStyle_VarInShorthand(t *testing.T) {
	style := styleOf(t, `div { --w: 3px; --pad: 4px 8px; border: var(--w) solid red; padding: var(--pad); }`, `<div id="a">x</div>`, "a")
	assert.Equal(t, UniformEdges(3), style.BorderWidth)
	assert.Equal(t, BorderSolid, style.BorderStyle)
	assert.Equal(t, Edges{4, 8, 4, 8}, style.Padding.Resolve(100))
}

func TestComputeStyle_Media(t *testing.T) {
	css := `
		p { color: black; }
		@media (max-width: 600px) { p { color: red; } }
		@media print { p { font-size: 40px; } }
	`
	doc := parseDoc(t, `<html><body><p id="a">x</p></body></html>`)
	c := NewStyleComputer(ParseStylesheet(css))

	assert.Equal(t, Black, styleByID(t, c, doc, "a", 800, 600).Color, "wide viewport skips the block")
	assert.Equal(t, red, styleByID(t, c, doc, "a", 500, 600).Color, "narrow viewport applies it")
	assert.Equal(t, 16, styleByID(t, c, doc, "a", 500, 600).FontSizePx, "print never matches")

	all := styleByID(t, c, doc, "a")
	assert.Equal(t, red, all.Color, "without a viewport every block applies")
}

func TestFromDocument(t *testing.T) {
	doc := parseDoc(t, `<html><head>
		<style>p { color: blue; }</style>
		<style media="print">p { color: green; }</style>
		<style type="text/less">p { font-size: 50px; }</style>
	</head><body><p id="a">x</p></body></html>`)
	extra := ParseStylesheet(`p { color: red; font-size: 12px; }`)
	c := FromDocument(doc, extra)

	require.Len(t, c.Stylesheets(), 3)
	style := styleByID(t, c, doc, "a", 800, 600)
	assert.Equal(t, blue, style.Color, "document sheets follow the caller's")
	assert.Equal(t, 12, style.FontSizePx, "non-CSS style elements are ignored")
}

func TestComputeStyle_BoxModel(t *testing.T) {
	style := styleOf(t, `div {
		margin: 1px 2px 3px;
		padding: 10%;
		border-width: 1px 2px;
		border-style: dashed;
		border-color: blue;
		border-radius: 6px;
		width: calc(100% - 20px);
		max-width: 500px;
		min-height: 30px;
	}`, `<div id="a">x</div>`, "a")

	assert.Equal(t, Edges{1, 2, 3, 2}, style.Margin)
	assert.Equal(t, UniformEdges(20), style.Padding.Resolve(200))
	assert.Equal(t, Edges{1, 2, 1, 2}, style.BorderWidth)
	assert.Equal(t, BorderSolid, style.BorderStyle)
	assert.Equal(t, blue, style.BorderColor)
	assert.Equal(t, 6, style.BorderRadiusPx)
	require.NotNil(t, style.Width)
	assert.Equal(t, 380, style.Width.Resolve(400))
	require.NotNil(t, style.MaxWidth)
	assert.Equal(t, 500, style.MaxWidth.Resolve(0))
	require.NotNil(t, style.MinHeight)
	assert.Equal(t, 30, *style.MinHeight)
}

func TestComputeStyle_AutoMargins(t *testing.T) {
	style := styleOf(t, `div { margin: 0 auto; }`, `<div id="a">x</div>`, "a")
	assert.Equal(t, AutoEdges{Right: true, Left: true}, style.MarginAuto)

	style = styleOf(t, `div { margin: 0 auto; margin-left: 5px; }`, `<div id="a">x</div>`, "a")
	assert.Equal(t, AutoEdges{Right: true}, style.MarginAuto)
	assert.Equal(t, 5, style.Margin.Left)
}

func TestComputeStyle_Typography(t *testing.T) {
	style := styleOf(t, `p {
		letter-spacing: 0.5em;
		font-size: 20px;
		font-weight: 700;
		font-family: "Courier New", monospace;
		text-transform: uppercase;
		white-space: nowrap;
		line-height: 1.5;
		text-decoration: underline;
		opacity: 0.5;
	}`, `<p id="a">x</p>`, "a")

	assert.Equal(t, 10, style.LetterSpacingPx, "em letter spacing uses the element's own font size")
	assert.True(t, style.Bold)
	assert.Equal(t, Monospace, style.FontFamily)
	assert.Equal(t, TextTransformUppercase, style.TextTransform)
	assert.Equal(t, WhiteSpaceNoWrap, style.WhiteSpace)
	lh, ok := style.LineHeight.Resolve(style.FontSizePx)
	assert.True(t, ok)
	assert.Equal(t, 30, lh)
	assert.True(t, style.Underline)
	assert.Equal(t, uint8(128), style.Opacity)
}

func TestComputeStyle_FlexAndGrid(t *testing.T) {
	style := styleOf(t, `div {
		display: flex;
		flex-flow: column wrap;
		justify-content: space-between;
		align-items: center;
		gap: 8px;
	}
	span { flex: 1; }
	section { display: grid; grid-template-columns: 100px 1fr; grid-template-areas: "left right"; }
	aside { grid-area: right; }`, `<div id="a"><span id="item">x</span></div><section><aside id="g">y</aside></section>`, "a")

	assert.Equal(t, DisplayFlex, style.Display)
	assert.Equal(t, FlexColumn, style.FlexDirection)
	assert.Equal(t, FlexWrapOn, style.FlexWrap)
	assert.Equal(t, JustifySpaceBetween, style.JustifyContent)
	assert.Equal(t, AlignCenter, style.AlignItems)
	assert.Equal(t, 8, style.GapPx)

	item := styleOf(t, `span { flex: 1; }`, `<div><span id="item">x</span></div>`, "item")
	assert.Equal(t, 1, item.FlexGrow)
	assert.Equal(t, 1, item.FlexShrink)
	require.NotNil(t, item.FlexBasis)
	assert.Equal(t, 0, *item.FlexBasis)

	none := styleOf(t, `span { flex: none; }`, `<div><span id="item">x</span></div>`, "item")
	assert.Equal(t, 0, none.FlexShrink)

	grid := styleOf(t, `section { display: grid; grid-template-columns: 100px 1fr; grid-template-areas: "left right"; }`,
		`<section id="g">y</section>`, "g")
	assert.Equal(t, DisplayGrid, grid.Display)
	assert.Equal(t, "100px 1fr", grid.GridTemplateColumns)
	assert.Equal(t, `"left right"`, grid.GridTemplateAreas)

	area := styleOf(t, `aside { grid-area: right; }`, `<section><aside id="g">y</aside></section>`, "g")
	assert.Equal(t, "right", area.GridArea)
}

func TestComputeStyle_Backgrounds(t *testing.T) {
	style := styleOf(t, `div { background: linear-gradient(to right, red, blue); }`, `<div id="a">x</div>`, "a")
	require.NotNil(t, style.BackgroundGradient)
	assert.Equal(t, LeftToRight, style.BackgroundGradient.Direction)
	assert.True(t, style.HasBackground())

	style = styleOf(t, `div { background: url(x.png) no-repeat #0000ff; }`, `<div id="a">x</div>`, "a")
	assert.Equal(t, blue, style.BackgroundColor)

	style = styleOf(t, `div { background: red; background: none; }`, `<div id="a">x</div>`, "a")
	assert.False(t, style.HasBackground())
}

func TestComputeStyle_PositionAndOffsets(t *testing.T) {
	style := styleOf(t, `div { position: absolute; top: 10px; left: 50%; float: right; }`, `<div id="a">x</div>`, "a")
	assert.Equal(t, PositionAbsolute, style.Position)
	assert.True(t, style.Position.OutOfFlow())
	require.NotNil(t, style.Top)
	assert.Equal(t, 10, style.Top.Resolve(0))
	require.NotNil(t, style.Left)
	assert.Equal(t, 100, style.Left.Resolve(200))
	assert.Nil(t, style.Right)
	assert.Equal(t, FloatRight, style.Float)
}

func TestComputeStyle_ViewportUnits(t *testing.T) {
	doc := parseDoc(t, `<html><body><div id="a">x</div></body></html>`)
	c := NewStyleComputer(ParseStylesheet(`div { width: 50vw; font-size: 2vh; }`))

	style := styleByID(t, c, doc, "a", 800, 600)
	require.NotNil(t, style.Width)
	assert.Equal(t, 400, style.Width.Resolve(0))
	assert.Equal(t, 12, style.FontSizePx)

	style = styleByID(t, c, doc, "a")
	assert.Nil(t, style.Width, "viewport units need a viewport")
}

func TestDefaultDisplay(t *testing.T) {
	doc := parseDoc(t, `<html><head><title>t</title></head><body><p id="p">x</p><span id="s">y</span><img id="i"><table><tbody id="tb"><tr id="tr"><td>z</td></tr></tbody></table></body></html>`)
	assert.Equal(t, DisplayBlock, DefaultDisplay(findID(doc, "p")))
	assert.Equal(t, DisplayInline, DefaultDisplay(findID(doc, "s")))
	assert.Equal(t, DisplayInlineBlock, DefaultDisplay(findID(doc, "i")))
	assert.Equal(t, DisplayBlock, DefaultDisplay(findID(doc, "tb")))
	assert.Equal(t, DisplayTableRow, DefaultDisplay(findID(doc, "tr")))
	assert.Equal(t, DisplayNone, DefaultDisplay(dom.FindFirst(doc, "head")))
}
