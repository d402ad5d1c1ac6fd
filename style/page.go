package style

import (
	"folio/css/rules"
)

// PageValues is the result of the page cascade. Margins holds the margin
// areas some @page rule declared, keyed by area name.
type PageValues struct {
	Context rules.PageContext
	Values  *SpecifiedValues
	Margins map[string]*SpecifiedValues
}

// default alignment of each margin area (CSS Paged Media, 6.3.2)
var marginAreaDefaults = map[string][2]string{
	"top-left-corner":     {"right", "middle"},
	"top-left":            {"left", "middle"},
	"top-center":          {"center", "middle"},
	"top-right":           {"right", "middle"},
	"top-right-corner":    {"left", "middle"},
	"right-top":           {"center", "top"},
	"right-middle":        {"center", "middle"},
	"right-bottom":        {"center", "bottom"},
	"bottom-right-corner": {"left", "middle"},
	"bottom-right":        {"right", "middle"},
	"bottom-center":       {"center", "middle"},
	"bottom-left":         {"left", "middle"},
	"bottom-left-corner":  {"right", "middle"},
	"left-bottom":         {"center", "bottom"},
	"left-middle":         {"center", "middle"},
	"left-top":            {"center", "top"},
}

// ComputePage runs the cascade for the page box identified by pc. root is
// the computed style of the document element, which the page inherits
// from; it may be nil.
func (c *Computer) ComputePage(root *SpecifiedValues, pc rules.PageContext) *PageValues {
	var (
		decls   []cascaded
		margins = make(map[string][]cascaded)
	)
	for i, pr := range c.pages {
		spec, ok := pr.MatchPage(pc)
		if !ok {
			continue
		}
		for _, d := range pr.Decls {
			decls = append(decls, cascaded{decl: d, rank: rank(pr.Origin, d.Important), spec: spec, order: i})
		}
		for _, m := range pr.Margins {
			for _, d := range m.Decls {
				margins[m.Area] = append(margins[m.Area], cascaded{decl: d, rank: rank(pr.Origin, d.Important), spec: spec, order: i})
			}
		}
	}
	sortCascade(decls)
	pv := &PageValues{Context: pc, Margins: make(map[string]*SpecifiedValues, len(margins))}
	pv.Values = c.cascade(root, decls)

	for area, md := range margins {
		def := marginAreaDefaults[area]
		md = append(md,
			cascaded{decl: hint("text-align", def[0]), rank: rank(rules.UserAgent, false), order: -1},
			cascaded{decl: hint("vertical-align", def[1]), rank: rank(rules.UserAgent, false), order: -1},
		)
		sortCascade(md)
		pv.Margins[area] = c.cascade(pv.Values, md)
	}
	return pv
}
