package selector

import (
	"strings"

	"golang.org/x/text/language"
)

// Element is the view of a document element the matcher needs. Methods
// returning Element must return a nil interface, not a typed nil, when there
// is no such element.
type Element interface {
	LocalName() string
	NamespaceURI() string
	// IsHTML reports an HTML element in an HTML document: tag and attribute
	// names match case-insensitively and some attribute values do too.
	IsHTML() bool
	// Attribute looks up an attribute. namespace is "" for attributes
	// without namespace or AnyNamespace.
	Attribute(namespace, name string) (string, bool)
	ID() string
	HasClass(name string) bool
	ParentElement() Element
	PreviousElementSibling() Element
	NextElementSibling() Element
	// IsEmpty reports no element children and no text.
	IsEmpty() bool
	// Lang is the inherited content language, "" if unknown.
	Lang() string
	// State evaluates user-action and form pseudo-classes (hover, link,
	// checked, ...).
	State(pseudoClass string) bool
}

// Match reports whether s matches el. pseudo selects the pseudo-element
// being styled ("" for the element itself); only selectors whose subject
// names the same pseudo-element match.
func Match(s Selector, el Element, pseudo string) bool {
	_, ok := MatchSpecificity(s, el, pseudo)
	return ok
}

// MatchSpecificity matches like Match and returns the specificity of the
// most specific matching branch of a selector list.
func MatchSpecificity(s Selector, el Element, pseudo string) (Specificity, bool) {
	if or, ok := s.(Nfix); ok && or.Op == Or {
		var (
			best  Specificity
			found bool
		)
		for _, in := range or.Inner {
			if sp, ok := MatchSpecificity(in, el, pseudo); ok && (!found || best.Less(sp)) {
				best, found = sp, true
			}
		}
		return best, found
	}
	if SubjectPseudoElement(s) != pseudo || !matches(s, el) {
		return Specificity{}, false
	}
	return SpecificityOf(s), true
}

func matches(s Selector, el Element) bool {
	switch s := s.(type) {
	case Type:
		return matchType(s, el)
	case ID:
		return el.ID() != "" && el.ID() == s.Name
	case Class:
		return el.HasClass(s.Name)
	case Attribute:
		return matchAttribute(s, el)
	case Pseudo:
		return matchPseudo(s, el)
	case PseudoElement:
		return true
	case Infix:
		return matchInfix(s, el)
	case Nfix:
		switch s.Op {
		case And:
			for _, in := range s.Inner {
				if !matches(in, el) {
					return false
				}
			}
			return true
		case Not:
			for _, in := range s.Inner {
				if matches(in, el) {
					return false
				}
			}
			return true
		default:
			for _, in := range s.Inner {
				if matches(in, el) {
					return true
				}
			}
			return false
		}
	}
	return false
}

func matchType(s Type, el Element) bool {
	switch s.Namespace {
	case "":
	case NoNamespace:
		if el.NamespaceURI() != "" {
			return false
		}
	default:
		if el.NamespaceURI() != s.Namespace {
			return false
		}
	}
	if s.Name == "*" {
		return true
	}
	if el.IsHTML() {
		return strings.EqualFold(el.LocalName(), s.Name)
	}
	return el.LocalName() == s.Name
}

func matchInfix(s Infix, el Element) bool {
	if !matches(s.RHS, el) {
		return false
	}
	switch s.Comb {
	case Descendant:
		for p := el.ParentElement(); p != nil; p = p.ParentElement() {
			if matches(s.LHS, p) {
				return true
			}
		}
	case Child:
		if p := el.ParentElement(); p != nil {
			return matches(s.LHS, p)
		}
	case NextSibling:
		if p := el.PreviousElementSibling(); p != nil {
			return matches(s.LHS, p)
		}
	case SubsequentSibling:
		for p := el.PreviousElementSibling(); p != nil; p = p.PreviousElementSibling() {
			if matches(s.LHS, p) {
				return true
			}
		}
	}
	return false
}

// caseInsensitiveHTMLAttrs lists attributes whose values compare ASCII
// case-insensitively in HTML documents.
var caseInsensitiveHTMLAttrs = map[string]bool{
	"accept": true, "accept-charset": true, "align": true, "alink": true,
	"axis": true, "bgcolor": true, "charset": true, "checked": true,
	"clear": true, "codetype": true, "color": true, "compact": true,
	"declare": true, "defer": true, "dir": true, "direction": true,
	"disabled": true, "enctype": true, "face": true, "frame": true,
	"hreflang": true, "http-equiv": true, "lang": true, "language": true,
	"link": true, "media": true, "method": true, "multiple": true,
	"nohref": true, "noresize": true, "noshade": true, "nowrap": true,
	"readonly": true, "rel": true, "rev": true, "rules": true,
	"scope": true, "scrolling": true, "selected": true, "shape": true,
	"target": true, "text": true, "type": true, "valign": true,
	"valuetype": true, "vlink": true,
}

func matchAttribute(s Attribute, el Element) bool {
	name := s.Name
	if el.IsHTML() && s.Namespace == "" {
		name = strings.ToLower(name)
	}
	val, ok := el.Attribute(s.Namespace, name)
	if !ok {
		return false
	}
	if s.Op == AttrPresent {
		return true
	}
	want := s.Value
	fold := s.Case == CaseInsensitive ||
		(s.Case == CaseDefault && el.IsHTML() && s.Namespace == "" && caseInsensitiveHTMLAttrs[name])
	if fold {
		val, want = strings.ToLower(val), strings.ToLower(want)
	}
	switch s.Op {
	case AttrExact:
		return val == want
	case AttrContains:
		if want == "" || strings.ContainsAny(want, " \t\n\r\f") {
			return false
		}
		for _, f := range strings.Fields(val) {
			if f == want {
				return true
			}
		}
		return false
	case AttrHyphenated:
		return val == want || strings.HasPrefix(val, want+"-")
	case AttrStartsWith:
		return want != "" && strings.HasPrefix(val, want)
	case AttrEndsWith:
		return want != "" && strings.HasSuffix(val, want)
	case AttrSubstring:
		return want != "" && strings.Contains(val, want)
	}
	return false
}

func matchPseudo(s Pseudo, el Element) bool {
	switch s.Name {
	case "root":
		return el.ParentElement() == nil
	case "empty":
		return el.IsEmpty()
	case "first-child":
		return el.PreviousElementSibling() == nil
	case "last-child":
		return el.NextElementSibling() == nil
	case "only-child":
		return el.PreviousElementSibling() == nil && el.NextElementSibling() == nil
	case "first-of-type":
		return position(el, false, true, nil) == 1
	case "last-of-type":
		return position(el, true, true, nil) == 1
	case "only-of-type":
		return position(el, false, true, nil) == 1 && position(el, true, true, nil) == 1
	case "nth-child":
		return s.Nth.Matches(position(el, false, false, s.Of))
	case "nth-last-child":
		return s.Nth.Matches(position(el, true, false, s.Of))
	case "nth-of-type":
		return s.Nth.Matches(position(el, false, true, nil))
	case "nth-last-of-type":
		return s.Nth.Matches(position(el, true, true, nil))
	case "lang":
		return matchLang(el.Lang(), s.Lang)
	case "any-link":
		return el.State("link") || el.State("visited")
	}
	return el.State(s.Name)
}

// position returns the 1-based index of el among its siblings, counted from
// the end when last is set, restricted to same-type siblings or siblings
// matching of. It returns 0 when el itself does not match of.
func position(el Element, last, ofType bool, of Selector) int {
	if of != nil && !matches(of, el) {
		return 0
	}
	step := Element.PreviousElementSibling
	if last {
		step = Element.NextElementSibling
	}
	pos := 1
	for sib := step(el); sib != nil; sib = step(sib) {
		switch {
		case ofType:
			if sib.LocalName() == el.LocalName() && sib.NamespaceURI() == el.NamespaceURI() {
				pos++
			}
		case of != nil:
			if matches(of, sib) {
				pos++
			}
		default:
			pos++
		}
	}
	return pos
}

// matchLang implements :lang() range matching: a range matches the
// content language itself or any of its more specific forms.
func matchLang(lang string, ranges []string) bool {
	if lang == "" {
		return false
	}
	tag, err := language.Parse(lang)
	if err != nil {
		for _, r := range ranges {
			if strings.EqualFold(lang, r) || strings.HasPrefix(strings.ToLower(lang), strings.ToLower(r)+"-") {
				return true
			}
		}
		return false
	}
	for _, r := range ranges {
		want, err := language.Parse(r)
		if err != nil {
			continue
		}
		for t := tag; ; t = t.Parent() {
			if t == want {
				return true
			}
			if t.IsRoot() {
				break
			}
		}
	}
	return false
}
