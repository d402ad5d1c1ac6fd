package style

import (
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"folio/css/rules"
	"folio/dom"
)

func newComputer(t *testing.T, sheet string, opts ...Option) *Computer {
	t.Helper()
	s := rules.NewParser(zap.NewNop()).Parse([]byte(sheet), rules.Author)
	if err := s.Err(); err != nil {
		t.Fatalf("stylesheet: %v", err)
	}
	return NewComputer(zaptest.NewLogger(t), rules.PrintDevice(800, 600), []*rules.Stylesheet{s}, opts...)
}

func computeDoc(t *testing.T, html, sheet string, opts ...Option) *dom.Document {
	t.Helper()
	doc, err := dom.ParseHTML(strings.NewReader(html), "test.html")
	if err != nil {
		t.Fatal(err)
	}
	newComputer(t, sheet, opts...).ComputeTree(doc.Root)
	return doc
}

func byID(t *testing.T, doc *dom.Document, id string) *SpecifiedValues {
	t.Helper()
	for n := range doc.Root.Descendants() {
		if n.Type == dom.ElementNode && n.ID() == id {
			cs := Of(n)
			if cs == nil {
				t.Fatalf("#%s has no computed style", id)
			}
			return cs.Values
		}
	}
	t.Fatalf("no element #%s", id)
	return nil
}

var (
	red   = Color{R: 255, A: 255}
	green = Color{G: 128, A: 255}
	blue  = Color{B: 255, A: 255}
)

func TestCascade_Ordering(t *testing.T) {
	tests := []struct {
		name  string
		sheet string
		html  string
		want  Color
	}{
		{"later rule wins on equal specificity", `p { color: red } p { color: blue }`, `<p id=t>x</p>`, blue},
		{"specificity beats order", `.c { color: red } p { color: blue }`, `<p id=t class=c>x</p>`, red},
		{"id beats classes", `#t { color: green } p.c.d.e { color: blue }`, `<p id=t class="c d e">x</p>`, green},
		{"inline beats author", `#t { color: red }`, `<p id=t style="color: blue">x</p>`, blue},
		{"important beats inline", `p { color: red !important }`, `<p id=t style="color: blue">x</p>`, red},
		{"inline important beats author important", `p { color: red !important }`, `<p id=t style="color: blue !important">x</p>`, blue},
		{"presentation beats author", `body { color: red }`, `<body id=t text="#0000ff">x</body>`, blue},
		{"important within rule", `p { color: red !important; color: blue }`, `<p id=t>x</p>`, red},
		{"selector list keeps best branch", `#t, p { color: red } .c { color: blue }`, `<p id=t class=c>x</p>`, red},
		{"where has no specificity", `:where(#t) { color: red } p { color: blue }`, `<p id=t>x</p>`, blue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := computeDoc(t, tt.html, tt.sheet)
			if got := byID(t, doc, "t").Color(); got != tt.want {
				t.Errorf("color = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCascade_UserAgentImportant(t *testing.T) {
	ua := rules.NewParser(zap.NewNop()).Parse([]byte(`p { color: green !important }`), rules.UserAgent)
	author := rules.NewParser(zap.NewNop()).Parse([]byte(`p { color: red !important }`), rules.Author)
	c := NewComputer(zap.NewNop(), rules.PrintDevice(800, 600), []*rules.Stylesheet{ua, author}, WithoutUserAgent())

	doc, err := dom.ParseHTML(strings.NewReader(`<p id=t>x</p>`), "")
	if err != nil {
		t.Fatal(err)
	}
	c.ComputeTree(doc.Root)
	if got := byID(t, doc, "t").Color(); got != green {
		t.Errorf("color = %v, want user agent important %v", got, green)
	}
}

func TestCascade_Idempotent(t *testing.T) {
	c := newComputer(t, `p { margin: 1em 2px; --x: 3px; padding-left: var(--x) } .a { color: red }`)
	doc, err := dom.ParseHTML(strings.NewReader(`<div><p class=a id=t>x</p></div>`), "")
	if err != nil {
		t.Fatal(err)
	}
	c.ComputeTree(doc.Root)
	var el *dom.Node
	for n := range doc.Root.Descendants() {
		if n.Type == dom.ElementNode && n.ID() == "t" {
			el = n
		}
	}
	parent := Of(el.Parent).Values
	first := c.ComputeFor(parent, el, "")
	second := c.ComputeFor(parent, el, "")
	if !Equal(first, second) || !Equal(first, Of(el).Values) {
		t.Error("computing the same element twice gave different values")
	}
}

func TestCascade_Inheritance(t *testing.T) {
	doc := computeDoc(t,
		`<div id=a><span id=b>x<em id=c>y</em></span></div>`,
		`#a { font-size: 20px; color: red; margin-left: 5px; text-indent: 2em }
		 #b { font-size: 1.5em; margin-left: 2em }
		 #c { font-size: 50%; color: inherit; margin-left: inherit; font-weight: bolder }`)

	a, b, c := byID(t, doc, "a"), byID(t, doc, "b"), byID(t, doc, "c")
	if a.FontSize() != 20 || b.FontSize() != 30 || c.FontSize() != 15 {
		t.Errorf("font sizes = %v %v %v", a.FontSize(), b.FontSize(), c.FontSize())
	}
	if b.Color() != red || c.Color() != red {
		t.Error("color was not inherited")
	}
	if got := b.Margin.Get().Left; got != (Length{Value: 2, Unit: Em}) {
		t.Errorf("margin-left of b = %v", got)
	}
	if got := c.Margin.Get().Left; got != (Length{Value: 2, Unit: Em}) {
		t.Errorf("explicitly inherited margin-left = %v", got)
	}
	if got := b.Text.Get().Indent; got != PxLength(40) {
		t.Errorf("inherited text-indent = %v, want 40px", got)
	}
	if got := c.Font.Get().Weight; got != 700 {
		t.Errorf("bolder weight = %v", got)
	}
}

func TestCascade_CopyOnWrite(t *testing.T) {
	c := newComputer(t, `#b { margin-top: 1px } #c { fill: red }`, WithoutUserAgent())
	doc, err := dom.ParseHTML(strings.NewReader(`<div id=a><p id=b>x</p><p id=c>y</p><p id=d>z</p></div>`), "")
	if err != nil {
		t.Fatal(err)
	}
	c.ComputeTree(doc.Root)
	a, b, cc, d := byID(t, doc, "a"), byID(t, doc, "b"), byID(t, doc, "c"), byID(t, doc, "d")

	if !b.Svg.SameInstance(a.Svg) || !b.Font.SameInstance(a.Font) {
		t.Error("inherited groups without overrides must be shared with the parent")
	}
	if cc.Svg.SameInstance(a.Svg) {
		t.Error("overridden svg group must not be shared")
	}
	if !d.Margin.SameInstance(c.Initial().Margin) || b.Margin.SameInstance(c.Initial().Margin) {
		t.Error("margin group sharing is wrong")
	}
	if *a.Svg.Get() != *c.Initial().Svg.Get() {
		t.Error("initial svg group was modified")
	}
}

func TestCascade_Vars(t *testing.T) {
	tests := []struct {
		name  string
		sheet string
		want  Length
	}{
		{"simple", `#t { --w: 10px; width: var(--w) }`, PxLength(10)},
		{"inherited", `html { --w: 12px } #t { width: var(--w) }`, PxLength(12)},
		{"fallback", `#t { width: var(--missing, 7px) }`, PxLength(7)},
		{"nested fallback", `#t { width: var(--m1, var(--m2, 8px)) }`, PxLength(8)},
		{"chain", `#t { --a: var(--b); --b: 9px; width: var(--a) }`, PxLength(9)},
		{"cycle uses fallback", `#t { --a: var(--b); --b: var(--a); width: var(--a, 5px) }`, PxLength(5)},
		{"invalid after substitution is ignored", `#t { width: 3px } #t { --w: red; width: var(--w) }`, PxLength(3)},
		{"shorthand", `#t { --m: 4px 6px; margin: var(--m); width: 1px }`, PxLength(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := computeDoc(t, `<div id=t></div>`, tt.sheet)
			if got := byID(t, doc, "t").Box.Get().Width; got != tt.want {
				t.Errorf("width = %v, want %v", got, tt.want)
			}
		})
	}

	doc := computeDoc(t, `<div id=t></div>`, `#t { --m: 4px 6px; margin: var(--m) }`)
	if m := byID(t, doc, "t").Margin.Get(); m.Top != PxLength(4) || m.Right != PxLength(6) || m.Left != PxLength(6) {
		t.Errorf("margin from var() = %+v", m)
	}
}

func TestCascade_Keywords(t *testing.T) {
	doc := computeDoc(t,
		`<div id=a><p id=b>x</p><p id=c>y</p></div>`,
		`#a { color: red; border-top-width: 7px; border-top-style: solid }
		 #b { color: initial; border-top-width: inherit }
		 #c { color: unset; border-top-width: unset; all: initial }`)

	b, c := byID(t, doc, "b"), byID(t, doc, "c")
	if b.Color() != Black {
		t.Errorf("initial color = %v", b.Color())
	}
	if got := b.Border.Get().TopWidth; got != PxLength(7) {
		t.Errorf("inherited border width = %v", got)
	}
	if got := c.Box.Get().Display; got != DisplayInline {
		t.Errorf("all: initial left display = %v", got)
	}
	if c.Color() != Black {
		t.Errorf("all: initial left color = %v", c.Color())
	}
}

func TestCascade_Hints(t *testing.T) {
	doc := computeDoc(t,
		`<table id=t width="50%" bgcolor="ff0000" border=2><tr><td id=d valign=top width=30 nowrap>x</td></tr></table>
		 <font id=f color=blue size="+1">y</font>
		 <svg id=s width="100" height="50" fill="red" stroke-width="3"><rect id=r fill-opacity="0.5"/></svg>`,
		``)

	tbl := byID(t, doc, "t")
	if got := tbl.Box.Get().Width; got != Pct(50) {
		t.Errorf("table width = %v", got)
	}
	if got := tbl.Background.Get().Color; got != red {
		t.Errorf("bgcolor = %v", got)
	}
	if got := tbl.Border.Get(); got.TopWidth != PxLength(2) || got.LeftStyle != BorderStyle("outset") {
		t.Errorf("border = %v %v", got.TopWidth, got.LeftStyle)
	}
	td := byID(t, doc, "d")
	if got := td.Box.Get().VerticalAlign.Keyword; got != "top" {
		t.Errorf("valign = %v", got)
	}
	if got := td.Text.Get().WhiteSpace; got != WhiteSpaceNowrap {
		t.Errorf("nowrap = %v", got)
	}
	f := byID(t, doc, "f")
	if f.Color() != blue || f.FontSize() != 18 {
		t.Errorf("font hints = %v %v", f.Color(), f.FontSize())
	}
	s := byID(t, doc, "s")
	if s.Box.Get().Width != PxLength(100) || s.Box.Get().Height != PxLength(50) {
		t.Errorf("svg size = %v x %v", s.Box.Get().Width, s.Box.Get().Height)
	}
	if got := s.Svg.Get().Fill; got.Kind != PaintColor || got.Color != red {
		t.Errorf("fill = %v", got)
	}
	r := byID(t, doc, "r")
	if got := r.Svg.Get(); got.Fill.Color != red || got.FillOpacity != 0.5 || got.StrokeWidth != PxLength(3) {
		t.Errorf("rect svg = %+v", got)
	}
}

func TestCascade_PseudoElements(t *testing.T) {
	doc := computeDoc(t,
		`<p id=t>x</p><p id=u>y</p>`,
		`#t::before { content: "A" counter(n); color: red } #u::after { content: none }`)
	for n := range doc.Root.Descendants() {
		if n.Type != dom.ElementNode {
			continue
		}
		cs := Of(n)
		switch n.ID() {
		case "t":
			if cs.Before == nil || cs.Before.Color() != red {
				t.Fatal("::before was not computed")
			}
			items := cs.Before.Generated.Get().Content.Items()
			if len(items) != 2 || items[0].Text != "A" || items[1].Kind != ContentCounter || items[1].Name != "n" {
				t.Errorf("content items = %+v", items)
			}
			if cs.After != nil {
				t.Error("::after without content must not be generated")
			}
		case "u":
			if cs.After != nil {
				t.Error("content: none must not generate")
			}
		}
	}
}

func TestComputePage(t *testing.T) {
	c := newComputer(t, `
		@page { size: a5 landscape; margin: 10mm; @top-center { content: "Title" } }
		@page :first { margin-top: 1in; @bottom-right { content: counter(page) } }
		@page :left { margin-left: 20px }
		@page chapter { margin-right: 30px }`)

	first := c.ComputePage(nil, rules.PageContext{Index: 0})
	if got := first.Values.Margin.Get().Top; got != PxLength(96) {
		t.Errorf(":first margin-top = %v", got)
	}
	size := first.Values.Page.Get().Size
	if size.Orientation != "landscape" || size.Width.Unit != Px || size.Width.Value < 559 || size.Width.Value > 560 {
		t.Errorf("page size = %v", size)
	}
	if len(first.Margins) != 2 {
		t.Fatalf("margin areas = %d, want 2", len(first.Margins))
	}
	tc := first.Margins["top-center"]
	if tc.Text.Get().Align != AlignCenter || !tc.Generated.Get().Content.Generates() {
		t.Errorf("top-center = %v %v", tc.Text.Get().Align, tc.Generated.Get().Content)
	}
	if got := first.Margins["bottom-right"].Text.Get().Align; got != AlignRight {
		t.Errorf("bottom-right align = %v", got)
	}

	second := c.ComputePage(nil, rules.PageContext{Index: 1})
	m := second.Values.Margin.Get()
	if m.Left != PxLength(20) || m.Top.Value < 37.7 || m.Top.Value > 37.8 {
		t.Errorf("left page margins = %+v", m)
	}
	if _, ok := second.Margins["bottom-right"]; ok {
		t.Error(":first margin box on second page")
	}

	named := c.ComputePage(nil, rules.PageContext{Name: "chapter", Index: 2})
	if got := named.Values.Margin.Get().Right; got != PxLength(30) {
		t.Errorf("named page margin-right = %v", got)
	}
}

func TestCascade_ShorthandMatchesLonghands(t *testing.T) {
	tests := []struct {
		name      string
		shorthand string
		longhands string
	}{
		{"margin", `margin: 1px 2px 3px`, `margin-top: 1px; margin-right: 2px; margin-bottom: 3px; margin-left: 2px`},
		{"padding", `padding: 4px`, `padding-top: 4px; padding-right: 4px; padding-bottom: 4px; padding-left: 4px`},
		{"border", `border: 2px solid red`,
			`border-top-width: 2px; border-right-width: 2px; border-bottom-width: 2px; border-left-width: 2px;
			border-top-style: solid; border-right-style: solid; border-bottom-style: solid; border-left-style: solid;
			border-top-color: red; border-right-color: red; border-bottom-color: red; border-left-color: red`},
		{"border-top", `border-top: 1px dashed blue`, `border-top-width: 1px; border-top-style: dashed; border-top-color: blue`},
		{"border-width", `border-style: solid; border-width: 1px 3px`,
			`border-style: solid; border-top-width: 1px; border-right-width: 3px; border-bottom-width: 1px; border-left-width: 3px`},
		{"font", `font: italic bold 12px/1.5 Georgia, serif`,
			`font-style: italic; font-weight: bold; font-size: 12px; line-height: 1.5; font-family: Georgia, serif`},
		{"flex number", `flex: 2`, `flex-grow: 2; flex-shrink: 1; flex-basis: 0%`},
		{"flex none", `flex: none`, `flex-grow: 0; flex-shrink: 0; flex-basis: auto`},
		{"flex-flow", `flex-flow: column wrap`, `flex-direction: column; flex-wrap: wrap`},
		{"background", `background: url(a.png) no-repeat red`, `background-color: red; background-image: url(a.png); background-repeat: no-repeat`},
		{"gap", `gap: 5px 10px`, `row-gap: 5px; column-gap: 10px`},
		{"list-style", `list-style: square inside`, `list-style-type: square; list-style-position: inside`},
		{"page-break-before", `page-break-before: always`, `break-before: page`},
		{"page-break-inside", `page-break-inside: avoid`, `break-inside: avoid`},
	}
	reg := DefaultRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			short := reg.Diff(byID(t, computeDoc(t, `<div id=t>x</div>`, `#t { `+tt.shorthand+` }`), "t"), nil)
			long := reg.Diff(byID(t, computeDoc(t, `<div id=t>x</div>`, `#t { `+tt.longhands+` }`), "t"), nil)
			if len(short) == 0 {
				t.Fatal("shorthand changed nothing")
			}
			if !slices.Equal(short, long) {
				t.Errorf("shorthand values %v, longhand values %v", short, long)
			}
		})
	}
}
