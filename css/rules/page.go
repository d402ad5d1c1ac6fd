package rules

import (
	"fmt"
	"strings"

	"folio/css"
	"folio/css/selector"
)

// MarginAreas lists the page-margin boxes in painting order.
var MarginAreas = []string{
	"top-left-corner", "top-left", "top-center", "top-right", "top-right-corner",
	"right-top", "right-middle", "right-bottom",
	"bottom-right-corner", "bottom-right", "bottom-center", "bottom-left", "bottom-left-corner",
	"left-bottom", "left-middle", "left-top",
}

func isMarginArea(name string) bool {
	for _, a := range MarginAreas {
		if a == name {
			return true
		}
	}
	return false
}

// PageContext identifies the page whose style is computed.
type PageContext struct {
	Name  string // value of the page property of the first box on the page
	Index int    // 0-based
	Blank bool
}

// Left reports a left page. The first page is a right page.
func (pc PageContext) Left() bool { return pc.Index%2 == 1 }

// PageSelector is a single entry of an @page prelude.
type PageSelector struct {
	Name   string
	Pseudo []string // first, left, right, blank
}

// Specificity follows CSS Paged Media: page name, then :first and :blank,
// then :left and :right.
func (ps PageSelector) Specificity() selector.Specificity {
	var sp selector.Specificity
	if ps.Name != "" {
		sp.A++
	}
	for _, p := range ps.Pseudo {
		switch p {
		case "first", "blank":
			sp.B++
		default:
			sp.C++
		}
	}
	return sp
}

// Matches reports whether the selector applies to the page.
func (ps PageSelector) Matches(pc PageContext) bool {
	if ps.Name != "" && ps.Name != pc.Name {
		return false
	}
	for _, p := range ps.Pseudo {
		switch p {
		case "first":
			if pc.Index != 0 {
				return false
			}
		case "left":
			if !pc.Left() {
				return false
			}
		case "right":
			if pc.Left() {
				return false
			}
		case "blank":
			if !pc.Blank {
				return false
			}
		}
	}
	return true
}

func (ps PageSelector) String() string {
	var b strings.Builder
	b.WriteString(ps.Name)
	for _, p := range ps.Pseudo {
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}

// MatchPage returns the specificity of the most specific selector of r
// matching pc.
func (r *PageRule) MatchPage(pc PageContext) (selector.Specificity, bool) {
	if len(r.Selectors) == 0 {
		return selector.Specificity{}, true
	}
	var (
		best  selector.Specificity
		found bool
	)
	for _, ps := range r.Selectors {
		if ps.Matches(pc) {
			if sp := ps.Specificity(); !found || best.Less(sp) {
				best, found = sp, true
			}
		}
	}
	return best, found
}

func parsePageSelectors(toks []css.Token) ([]PageSelector, error) {
	toks = css.Trim(toks)
	if len(toks) == 0 {
		return nil, nil
	}
	var out []PageSelector
	for _, part := range css.SplitTopLevel(toks, css.Comma) {
		part = css.Compact(part)
		if len(part) == 0 {
			return nil, fmt.Errorf("empty page selector")
		}
		var ps PageSelector
		i := 0
		if part[0].Kind == css.Ident {
			ps.Name = part[0].Text
			i++
		}
		for i < len(part) {
			if part[i].Kind != css.Colon || i+1 >= len(part) || part[i+1].Kind != css.Ident {
				return nil, fmt.Errorf("invalid page selector %q", css.Normalize(part))
			}
			switch name := part[i+1].Lower(); name {
			case "first", "left", "right", "blank":
				ps.Pseudo = append(ps.Pseudo, name)
			default:
				return nil, fmt.Errorf("unknown page pseudo-class :%s", name)
			}
			i += 2
		}
		out = append(out, ps)
	}
	return out, nil
}
