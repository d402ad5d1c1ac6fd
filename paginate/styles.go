package paginate

import (
	"sort"
	"strings"

	"folio/css/rules"
	"folio/dom"
	"folio/style"
	"folio/utils/debug"
)

// DumpStyles lists the computed style of every element as a tree. Each
// element shows only what differs from its parent, pseudo-elements what
// differs from their element. The first page context closes the listing.
func DumpStyles(res *Result) string {
	tw := debug.NewTreeWriter()
	reg := res.Computer.Registry()
	var walk func(n *dom.Node, parent *style.SpecifiedValues, depth int)
	walk = func(n *dom.Node, parent *style.SpecifiedValues, depth int) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != dom.ElementNode {
				continue
			}
			cs := style.Of(c)
			if cs == nil {
				continue
			}
			tw.Line(depth, "%s", describe(c))
			for _, p := range reg.Diff(cs.Values, parent) {
				tw.Property(depth+1, p.Name, p.Value)
			}
			for _, pseudo := range []struct {
				name string
				sv   *style.SpecifiedValues
			}{{"::before", cs.Before}, {"::after", cs.After}} {
				if pseudo.sv == nil {
					continue
				}
				tw.Line(depth+1, "%s", pseudo.name)
				for _, p := range reg.Diff(pseudo.sv, cs.Values) {
					tw.Property(depth+2, p.Name, p.Value)
				}
			}
			walk(c, cs.Values, depth+1)
		}
	}
	walk(res.Doc.Root, nil, 0)

	pv := res.PageStyler()(rules.PageContext{Index: 0})
	tw.Line(0, "@page :first")
	for _, p := range reg.Diff(pv.Values, nil) {
		tw.Property(1, p.Name, p.Value)
	}
	areas := make([]string, 0, len(pv.Margins))
	for area := range pv.Margins {
		areas = append(areas, area)
	}
	sort.Strings(areas)
	for _, area := range areas {
		tw.Line(1, "@%s", area)
		for _, p := range reg.Diff(pv.Margins[area], pv.Values) {
			tw.Property(2, p.Name, p.Value)
		}
	}
	return tw.String()
}

// describe renders an element the way a simple selector would match it.
func describe(n *dom.Node) string {
	var b strings.Builder
	b.WriteString(n.Name)
	if id := n.ID(); id != "" {
		b.WriteString("#" + id)
	}
	for _, c := range n.Classes() {
		b.WriteString("." + c)
	}
	return b.String()
}
