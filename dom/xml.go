package dom

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// ParseXML parses an XML document (XHTML, SVG or any other vocabulary).
// Unknown HTML named entities are tolerated since hand-written XHTML often
// contains them.
func ParseXML(r io.Reader, path string) (*Document, error) {
	x := etree.NewDocument()
	x.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		Entity:        xml.HTMLEntity,
		Permissive:    true,
	}
	if _, err := x.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("unable to read XML: %w", err)
	}
	root := x.Root()
	if root == nil {
		return nil, fmt.Errorf("unable to read XML: no root element")
	}

	doc := &Document{Root: &Node{Type: DocumentNode}, Path: path}
	for _, tok := range x.Child {
		if pi, ok := tok.(*etree.ProcInst); ok && pi.Target == "xml-stylesheet" {
			attrs := parsePseudoAttrs(pi.Inst)
			if t := attrs["type"]; t != "" && !strings.EqualFold(t, "text/css") {
				continue
			}
			if attrs["alternate"] == "yes" || attrs["href"] == "" {
				continue
			}
			doc.piSheets = append(doc.piSheets, StyleSource{Href: attrs["href"], Media: attrs["media"]})
		}
	}
	doc.Root.AppendChild(convertXML(root))
	return doc, nil
}

func convertXML(e *etree.Element) *Node {
	n := &Node{Type: ElementNode, Name: e.Tag, Namespace: e.NamespaceURI()}
	for i := range e.Attr {
		a := &e.Attr[i]
		if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
			continue
		}
		ns := ""
		switch a.Space {
		case "":
		case "xml":
			ns = XMLNamespace
		default:
			ns = a.NamespaceURI()
		}
		n.Attrs = append(n.Attrs, Attr{Namespace: ns, Name: a.Key, Value: a.Value})
	}
	n.indexClasses()
	for _, tok := range e.Child {
		switch t := tok.(type) {
		case *etree.Element:
			n.AppendChild(convertXML(t))
		case *etree.CharData:
			if n.LastChild != nil && n.LastChild.Type == TextNode {
				n.LastChild.Data += t.Data
				continue
			}
			n.AppendChild(NewText(t.Data))
		}
	}
	return n
}
