package dom

import (
	"bytes"
	"strings"
	"testing"

	"folio/css/selector"
)

const sampleHTML = `<!DOCTYPE html>
<html lang="en-GB">
<head>
<link rel="stylesheet" href="main.css" media="print">
<link rel="alternate stylesheet" href="alt.css">
<style>p { color: red }</style>
</head>
<body>
<P class="a  b" id="x">Hello <em>world</em></P>
<input type="checkbox" checked disabled>
<svg viewBox="0 0 10 20" width="10"><rect xlink:href="#r"/></svg>
<div></div>
</body>
</html>`

func mustSelect(t *testing.T, root *Node, sel string) []*Node {
	t.Helper()
	s, err := selector.ParseString(sel, nil)
	if err != nil {
		t.Fatalf("ParseString(%q): %v", sel, err)
	}
	var out []*Node
	for n := range root.Descendants() {
		if n.Type == ElementNode && selector.Match(s, n, "") {
			out = append(out, n)
		}
	}
	return out
}

func TestParseHTML(t *testing.T) {
	doc, err := ParseHTML(strings.NewReader(sampleHTML), "sample.html")
	if err != nil {
		t.Fatal(err)
	}
	root := doc.DocumentElement()
	if root == nil || root.Name != "html" || root.Namespace != XHTMLNamespace {
		t.Fatalf("unexpected root %+v", root)
	}

	p := mustSelect(t, doc.Root, "p")
	if len(p) != 1 {
		t.Fatalf("expected 1 p, got %d", len(p))
	}
	if !p[0].HasClass("a") || !p[0].HasClass("b") || p[0].ID() != "x" {
		t.Errorf("class/id not indexed: %+v", p[0].Attrs)
	}
	if got := p[0].Text(); got != "Hello world" {
		t.Errorf("Text() = %q", got)
	}
	if got := p[0].Lang(); got != "en-GB" {
		t.Errorf("Lang() = %q", got)
	}
	if len(mustSelect(t, doc.Root, "p:lang(en)")) != 1 {
		t.Error(":lang(en) did not match")
	}
	if len(mustSelect(t, doc.Root, "body > p + input:checked:disabled")) != 1 {
		t.Error("form state selectors did not match")
	}
	if len(mustSelect(t, doc.Root, "div:empty")) != 1 {
		t.Error(":empty did not match")
	}

	svg := mustSelect(t, doc.Root, "svg")
	if len(svg) != 1 || svg[0].Namespace != SVGNamespace {
		t.Fatalf("svg not in SVG namespace: %+v", svg)
	}
	if _, ok := svg[0].Attr("viewBox"); !ok {
		t.Error("viewBox attribute lost its case")
	}
	rect := svg[0].FirstChild
	if v, ok := rect.Attribute(XLinkNamespace, "href"); !ok || v != "#r" {
		t.Errorf("xlink:href = %q %v", v, ok)
	}
}

func TestDocument_StyleSources(t *testing.T) {
	doc, err := ParseHTML(strings.NewReader(sampleHTML), "sample.html")
	if err != nil {
		t.Fatal(err)
	}
	src := doc.StyleSources()
	if len(src) != 2 {
		t.Fatalf("expected 2 sources, got %+v", src)
	}
	if src[0].Href != "main.css" || src[0].Media != "print" {
		t.Errorf("first source = %+v", src[0])
	}
	if src[1].Text != "p { color: red }" {
		t.Errorf("second source = %+v", src[1])
	}
}

const sampleXHTML = `<?xml version="1.0" encoding="utf-8"?>
<?xml-stylesheet href="book.css" type="text/css"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:svg="http://www.w3.org/2000/svg" xml:lang="fr">
<body>
<P class="Note">Caf&eacute;</P>
<svg:svg width="4" height="3"><svg:circle r="1"/></svg:svg>
</body>
</html>`

func TestParseXML(t *testing.T) {
	doc, err := ParseXML(strings.NewReader(sampleXHTML), "book.xhtml")
	if err != nil {
		t.Fatal(err)
	}
	if doc.HTML {
		t.Error("XML document reported as HTML")
	}
	root := doc.DocumentElement()
	if root.Namespace != XHTMLNamespace {
		t.Errorf("root namespace = %q", root.Namespace)
	}

	// XML names are case-sensitive
	if len(mustSelect(t, doc.Root, "p")) != 0 {
		t.Error("p matched P in an XML document")
	}
	ps := mustSelect(t, doc.Root, "P")
	if len(ps) != 1 {
		t.Fatalf("expected 1 P, got %d", len(ps))
	}
	if got := ps[0].Text(); got != "Café" {
		t.Errorf("Text() = %q", got)
	}
	if got := ps[0].Lang(); got != "fr" {
		t.Errorf("Lang() = %q", got)
	}

	circles := mustSelect(t, doc.Root, "circle")
	if len(circles) != 1 || circles[0].Namespace != SVGNamespace {
		t.Fatalf("circle = %+v", circles)
	}

	src := doc.StyleSources()
	if len(src) != 1 || src[0].Href != "book.css" {
		t.Errorf("style sources = %+v", src)
	}
}

func TestNode_WriteXML(t *testing.T) {
	doc, err := ParseHTML(strings.NewReader(sampleHTML), "")
	if err != nil {
		t.Fatal(err)
	}
	svg := mustSelect(t, doc.Root, "svg")[0]
	var buf bytes.Buffer
	if err := svg.WriteXML(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{`<svg xmlns="http://www.w3.org/2000/svg"`, `viewBox="0 0 10 20"`, `xlink:href="#r"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q: %s", want, out)
		}
	}

	back, err := ParseXML(&buf, "")
	if err != nil {
		t.Fatal(err)
	}
	if r := back.DocumentElement(); r.Name != "svg" || r.Namespace != SVGNamespace {
		t.Errorf("reparsed root = %s %s", r.Namespace, r.Name)
	}
}

func TestNode_Siblings(t *testing.T) {
	parent := NewElement(XHTMLNamespace, "ul")
	a := NewElement(XHTMLNamespace, "li")
	b := NewElement(XHTMLNamespace, "li")
	parent.AppendChild(a)
	parent.AppendChild(NewText(" "))
	parent.AppendChild(b)

	if b.PreviousElementSibling() != selector.Element(a) {
		t.Error("PreviousElementSibling skipped wrong")
	}
	if a.NextElementSibling() != selector.Element(b) {
		t.Error("NextElementSibling skipped wrong")
	}
	if a.PreviousElementSibling() != nil {
		t.Error("expected untyped nil")
	}
	if parent.ParentElement() != nil {
		t.Error("detached root has a parent")
	}
	if parent.IsEmpty() {
		t.Error("ul is not empty")
	}
	defer func() {
		if recover() == nil {
			t.Error("appending an attached node must panic")
		}
	}()
	parent.AppendChild(a)
}
