package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
)

// Document is a loaded document.
type Document struct {
	Root *Node // document node
	HTML bool  // parsed as HTML: case-insensitive names, HTML hints
	Path string

	// xml-stylesheet processing instructions of XML documents
	piSheets []StyleSource
}

// DocumentElement returns the root element.
func (d *Document) DocumentElement() *Node {
	return d.Root.DocumentElement()
}

// StyleSource is a stylesheet referenced or embedded by the document.
// Exactly one of Text and Href is set.
type StyleSource struct {
	Text  string
	Href  string
	Media string
}

// StyleSources returns stylesheets in document order: xml-stylesheet
// processing instructions, then <style> elements (XHTML or SVG) and
// <link rel="stylesheet"> elements.
func (d *Document) StyleSources() []StyleSource {
	out := append([]StyleSource(nil), d.piSheets...)
	for n := range d.Root.Descendants() {
		if n.Type != ElementNode {
			continue
		}
		switch {
		case n.IsHTMLElement("style") || n.Is(SVGNamespace, "style"):
			if typ, ok := n.Attr("type"); ok && typ != "" && !strings.EqualFold(typ, "text/css") {
				continue
			}
			media, _ := n.Attr("media")
			out = append(out, StyleSource{Text: n.Text(), Media: media})
		case n.IsHTMLElement("link"):
			rel, _ := n.Attr("rel")
			href, _ := n.Attr("href")
			if href == "" || !hasToken(rel, "stylesheet") || hasToken(rel, "alternate") {
				continue
			}
			media, _ := n.Attr("media")
			out = append(out, StyleSource{Href: href, Media: media})
		}
	}
	return out
}

func hasToken(list, token string) bool {
	for _, f := range strings.Fields(list) {
		if strings.EqualFold(f, token) {
			return true
		}
	}
	return false
}

// parsePseudoAttrs reads the pseudo-attributes of a processing
// instruction such as `href="a.css" type="text/css"`.
func parsePseudoAttrs(inst string) map[string]string {
	out := make(map[string]string)
	for {
		inst = strings.TrimSpace(inst)
		eq := strings.IndexByte(inst, '=')
		if eq <= 0 || eq+1 >= len(inst) {
			return out
		}
		key := strings.TrimSpace(inst[:eq])
		rest := strings.TrimLeft(inst[eq+1:], " \t\n")
		if rest == "" || (rest[0] != '"' && rest[0] != '\'') {
			return out
		}
		end := strings.IndexByte(rest[1:], rest[0])
		if end < 0 {
			return out
		}
		out[key] = rest[1 : end+1]
		inst = rest[end+2:]
	}
}

// WriteXML serializes the subtree rooted at element n as a standalone XML
// document.
func (n *Node) WriteXML(w io.Writer) error {
	if n.Type != ElementNode {
		return fmt.Errorf("unable to serialize node of type %d", n.Type)
	}
	root := n.toEtree(true)
	doc := etree.NewDocumentWithRoot(root)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("unable to write XML: %w", err)
	}
	return nil
}

func (n *Node) toEtree(top bool) *etree.Element {
	el := etree.NewElement(n.Name)
	if top || (n.Parent != nil && n.Parent.Namespace != n.Namespace) {
		if n.Namespace != "" {
			el.CreateAttr("xmlns", n.Namespace)
		}
	}
	if top {
		el.CreateAttr("xmlns:xlink", XLinkNamespace)
	}
	for _, a := range n.Attrs {
		switch a.Namespace {
		case "":
			el.CreateAttr(a.Name, a.Value)
		case XLinkNamespace:
			el.CreateAttr("xlink:"+a.Name, a.Value)
		case XMLNamespace:
			el.CreateAttr("xml:"+a.Name, a.Value)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case ElementNode:
			el.AddChild(c.toEtree(false))
		case TextNode:
			el.CreateText(c.Data)
		}
	}
	return el
}
