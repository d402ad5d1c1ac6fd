package dom

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

var htmlAttrNamespaces = map[string]string{
	"xlink": XLinkNamespace,
	"xml":   XMLNamespace,
}

// ParseHTML parses an HTML document. The input encoding is detected from
// a BOM, <meta> declarations or content sniffing.
func ParseHTML(r io.Reader, path string) (*Document, error) {
	in, err := charset.NewReader(r, "text/html")
	if err != nil {
		return nil, fmt.Errorf("unable to detect HTML encoding: %w", err)
	}
	root, err := html.Parse(in)
	if err != nil {
		return nil, fmt.Errorf("unable to parse HTML: %w", err)
	}
	doc := &Document{Root: &Node{Type: DocumentNode, html: true}, HTML: true, Path: path}
	convertHTMLChildren(doc.Root, root)
	return doc, nil
}

func convertHTMLChildren(dst *Node, src *html.Node) {
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			n := &Node{Type: ElementNode, Name: c.Data, html: true}
			switch c.Namespace {
			case "":
				n.Namespace = XHTMLNamespace
			case "svg":
				n.Namespace = SVGNamespace
			case "math":
				n.Namespace = MathNamespace
			default:
				n.Namespace = c.Namespace
			}
			for _, a := range c.Attr {
				if a.Namespace == "xmlns" || (a.Namespace == "" && a.Key == "xmlns") {
					continue
				}
				n.Attrs = append(n.Attrs, Attr{Namespace: htmlAttrNamespaces[a.Namespace], Name: a.Key, Value: a.Val})
			}
			n.indexClasses()
			dst.AppendChild(n)
			convertHTMLChildren(n, c)
		case html.TextNode:
			// adjacent text nodes are merged so inline layout sees one run
			if dst.LastChild != nil && dst.LastChild.Type == TextNode {
				dst.LastChild.Data += c.Data
				continue
			}
			t := NewText(c.Data)
			t.html = true
			dst.AppendChild(t)
		}
	}
}
