// Package dom is the element tree styled and laid out by the engine. Trees
// are built from HTML (golang.org/x/net/html) or XML (github.com/beevik/etree)
// and are owned by the caller; the engine only reads them and writes the
// computed style slot.
package dom

import (
	"iter"
	"strings"

	"folio/css/selector"
)

// Well known namespaces.
const (
	XHTMLNamespace = "http://www.w3.org/1999/xhtml"
	SVGNamespace   = "http://www.w3.org/2000/svg"
	MathNamespace  = "http://www.w3.org/1998/Math/MathML"
	XMLNamespace   = "http://www.w3.org/XML/1998/namespace"
	XLinkNamespace = "http://www.w3.org/1999/xlink"
)

// NodeType distinguishes document, element and text nodes.
type NodeType uint8

const (
	DocumentNode NodeType = iota
	ElementNode
	TextNode
)

// Attr is an element attribute. Namespace is empty for ordinary attributes.
type Attr struct {
	Namespace string
	Name      string
	Value     string
}

// Node is a document, element or text node.
type Node struct {
	Type      NodeType
	Name      string // local name; lower case for HTML documents
	Namespace string
	Attrs     []Attr
	Data      string // text of text nodes

	Parent, FirstChild, LastChild, PrevSibling, NextSibling *Node

	// Style holds whatever the cascade computed for the element. It is typed
	// loosely so this package does not depend on the style engine.
	Style any

	html    bool
	classes []string
}

// NewElement creates a detached element.
func NewElement(namespace, name string, attrs ...Attr) *Node {
	n := &Node{Type: ElementNode, Namespace: namespace, Name: name, Attrs: attrs}
	n.indexClasses()
	return n
}

// NewText creates a detached text node.
func NewText(data string) *Node {
	return &Node{Type: TextNode, Data: data}
}

func (n *Node) indexClasses() {
	if v, ok := n.Attr("class"); ok {
		n.classes = strings.Fields(v)
	} else {
		n.classes = nil
	}
}

// AppendChild adds c as the last child of n. c must be detached.
func (n *Node) AppendChild(c *Node) {
	if c.Parent != nil {
		panic("dom: AppendChild called for an attached child node")
	}
	c.Parent = n
	if n.LastChild != nil {
		n.LastChild.NextSibling = c
		c.PrevSibling = n.LastChild
	} else {
		n.FirstChild = c
	}
	n.LastChild = c
}

// SetAttr sets or replaces an attribute without namespace.
func (n *Node) SetAttr(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Namespace == "" && n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			n.indexClasses()
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
	n.indexClasses()
}

// Attr returns the value of an attribute without namespace.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Namespace == "" && a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Children iterates over the direct children of n.
func (n *Node) Children() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !yield(c) {
				return
			}
		}
	}
}

// Descendants iterates over all nodes below n in document order.
func (n *Node) Descendants() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.walk(yield)
	}
}

func (n *Node) walk(yield func(*Node) bool) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !yield(c) || !c.walk(yield) {
			return false
		}
	}
	return true
}

// DocumentElement returns the root element of a document node.
func (n *Node) DocumentElement() *Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == ElementNode {
			return c
		}
	}
	return nil
}

// Text returns the concatenated text of n and its descendants.
func (n *Node) Text() string {
	if n.Type == TextNode {
		return n.Data
	}
	var b strings.Builder
	for d := range n.Descendants() {
		if d.Type == TextNode {
			b.WriteString(d.Data)
		}
	}
	return b.String()
}

// Is reports whether n is the element namespace:name.
func (n *Node) Is(namespace, name string) bool {
	return n != nil && n.Type == ElementNode && n.Namespace == namespace && n.Name == name
}

// IsHTMLElement reports whether n is an element in the XHTML namespace,
// from either an HTML or an XHTML document.
func (n *Node) IsHTMLElement(name string) bool {
	return n.Is(XHTMLNamespace, name)
}

// selector.Element

func (n *Node) LocalName() string    { return n.Name }
func (n *Node) NamespaceURI() string { return n.Namespace }
func (n *Node) IsHTML() bool         { return n.html && n.Namespace == XHTMLNamespace }

func (n *Node) Attribute(namespace, name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name && (namespace == selector.AnyNamespace || a.Namespace == namespace) {
			return a.Value, true
		}
	}
	return "", false
}

func (n *Node) ID() string {
	v, _ := n.Attr("id")
	return v
}

func (n *Node) HasClass(name string) bool {
	for _, c := range n.classes {
		if c == name {
			return true
		}
	}
	return false
}

// Classes returns the class list.
func (n *Node) Classes() []string { return n.classes }

func (n *Node) ParentElement() selector.Element {
	if n.Parent == nil || n.Parent.Type != ElementNode {
		return nil
	}
	return n.Parent
}

func (n *Node) PreviousElementSibling() selector.Element {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == ElementNode {
			return s
		}
	}
	return nil
}

func (n *Node) NextElementSibling() selector.Element {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == ElementNode {
			return s
		}
	}
	return nil
}

func (n *Node) IsEmpty() bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == ElementNode || (c.Type == TextNode && c.Data != "") {
			return false
		}
	}
	return true
}

// Lang returns the language from the nearest xml:lang or lang attribute.
func (n *Node) Lang() string {
	for e := n; e != nil && e.Type == ElementNode; e = e.Parent {
		if v, ok := e.Attribute(XMLNamespace, "lang"); ok {
			return v
		}
		if v, ok := e.Attr("lang"); ok && (e.Namespace == XHTMLNamespace || e.Namespace == SVGNamespace) {
			return v
		}
	}
	return ""
}

var formElements = map[string]bool{
	"button": true, "input": true, "select": true, "textarea": true,
	"optgroup": true, "option": true, "fieldset": true,
}

// State evaluates dynamic and form pseudo-classes. A paginated document
// has no pointer, focus or history, so those never match.
func (n *Node) State(pseudoClass string) bool {
	if n.Namespace != XHTMLNamespace {
		return false
	}
	_, hasHref := n.Attr("href")
	switch pseudoClass {
	case "link":
		return hasHref && (n.Name == "a" || n.Name == "area" || n.Name == "link")
	case "checked":
		switch n.Name {
		case "input":
			_, ok := n.Attr("checked")
			return ok
		case "option":
			_, ok := n.Attr("selected")
			return ok
		}
	case "disabled", "enabled":
		if !formElements[n.Name] {
			return false
		}
		_, disabled := n.Attr("disabled")
		return disabled == (pseudoClass == "disabled")
	case "read-only", "read-write":
		if n.Name != "input" && n.Name != "textarea" {
			return pseudoClass == "read-only"
		}
		_, ro := n.Attr("readonly")
		return ro == (pseudoClass == "read-only")
	case "required", "optional":
		if n.Name != "input" && n.Name != "textarea" && n.Name != "select" {
			return false
		}
		_, req := n.Attr("required")
		return req == (pseudoClass == "required")
	}
	return false
}
