// Package selector implements the CSS selector model: a closed set of
// selector variants, their parser, specificity and matching against any
// element tree implementing Element.
package selector

import (
	"strconv"
	"strings"

	"folio/css"
)

// Namespace sentinels. A Type with an empty Namespace matches any namespace,
// an Attribute with an empty Namespace matches attributes without one.
const (
	AnyNamespace = "\x00*"
	NoNamespace  = "\x00-"
)

// Selector is one of Type, ID, Class, Attribute, Pseudo, PseudoElement,
// Infix, Nfix or Never.
type Selector interface {
	String() string
	isSelector()
}

// Type matches the qualified tag name. Name "*" is the universal selector.
// Prefix is kept for serialization only.
type Type struct {
	Prefix    string
	Namespace string
	Name      string
}

// ID matches the element id.
type ID struct{ Name string }

// Class matches one entry of the class list.
type Class struct{ Name string }

// AttrOp is an attribute selector operator.
type AttrOp uint8

const (
	AttrPresent    AttrOp = iota // [a]
	AttrExact                    // [a=v]
	AttrContains                 // [a~=v]
	AttrHyphenated               // [a|=v]
	AttrStartsWith               // [a^=v]
	AttrEndsWith                 // [a$=v]
	AttrSubstring                // [a*=v]
)

var attrOpText = [...]string{"", "=", "~=", "|=", "^=", "$=", "*="}

// CaseMode selects value comparison for attribute selectors.
type CaseMode uint8

const (
	CaseDefault     CaseMode = iota // document language rules
	CaseInsensitive                 // flag i
	CaseSensitive                   // flag s
)

// Attribute matches an attribute and optionally its value.
type Attribute struct {
	Prefix    string
	Namespace string
	Name      string
	Op        AttrOp
	Value     string
	Case      CaseMode
}

// Pseudo is a pseudo-class. Functional pseudo-classes keep their argument;
// :not, :is and :where are represented as Nfix instead.
type Pseudo struct {
	Name string
	Nth  *Nth
	Of   Selector // :nth-child(An+B of S)
	Lang []string
}

// PseudoElement selects a pseudo-element of the subject (::before, ::after,
// ::marker, ::first-line, ::first-letter).
type PseudoElement struct{ Name string }

// Combinator joins the two sides of an Infix selector.
type Combinator uint8

const (
	Descendant Combinator = iota
	Child
	NextSibling
	SubsequentSibling
)

func (c Combinator) String() string {
	switch c {
	case Child:
		return " > "
	case NextSibling:
		return " + "
	case SubsequentSibling:
		return " ~ "
	}
	return " "
}

// Infix is a complex selector: RHS is the subject, LHS must match a relative
// of it reached through the combinator.
type Infix struct {
	Comb Combinator
	LHS  Selector
	RHS  Selector
}

// NfixOp is the boolean operator of an Nfix group.
type NfixOp uint8

const (
	And NfixOp = iota
	Or
	Not
	Where
)

// Nfix is a boolean group. AND is a compound selector (all inner selectors
// match the same element), OR a selector list or :is(), NOT and WHERE wrap a
// single inner selector.
type Nfix struct {
	Op    NfixOp
	Inner []Selector
}

// Never is the selector an unparsable selector degrades to; it matches
// nothing.
type Never struct{ Raw string }

func (Type) isSelector()          {}
func (ID) isSelector()            {}
func (Class) isSelector()         {}
func (Attribute) isSelector()     {}
func (Pseudo) isSelector()        {}
func (PseudoElement) isSelector() {}
func (Infix) isSelector()         {}
func (Nfix) isSelector()          {}
func (Never) isSelector()         {}

func (s Type) String() string {
	switch {
	case s.Prefix != "":
		return s.Prefix + "|" + s.Name
	case s.Namespace == NoNamespace:
		return "|" + s.Name
	}
	return s.Name
}

func (s ID) String() string    { return "#" + s.Name }
func (s Class) String() string { return "." + s.Name }

func (s Attribute) String() string {
	var b strings.Builder
	b.WriteByte('[')
	if s.Prefix != "" {
		b.WriteString(s.Prefix)
		b.WriteByte('|')
	}
	b.WriteString(s.Name)
	if s.Op != AttrPresent {
		b.WriteString(attrOpText[s.Op])
		b.WriteString(strconv.Quote(s.Value))
		switch s.Case {
		case CaseInsensitive:
			b.WriteString(" i")
		case CaseSensitive:
			b.WriteString(" s")
		}
	}
	b.WriteByte(']')
	return b.String()
}

func (s Pseudo) String() string {
	switch {
	case s.Nth != nil && s.Of != nil:
		return ":" + s.Name + "(" + s.Nth.String() + " of " + s.Of.String() + ")"
	case s.Nth != nil:
		return ":" + s.Name + "(" + s.Nth.String() + ")"
	case s.Lang != nil:
		return ":" + s.Name + "(" + strings.Join(s.Lang, ", ") + ")"
	}
	return ":" + s.Name
}

func (s PseudoElement) String() string { return "::" + s.Name }

func (s Infix) String() string {
	return s.LHS.String() + s.Comb.String() + s.RHS.String()
}

func (s Nfix) String() string {
	parts := make([]string, len(s.Inner))
	for i, in := range s.Inner {
		parts[i] = in.String()
	}
	switch s.Op {
	case And:
		return strings.Join(parts, "")
	case Or:
		return strings.Join(parts, ", ")
	case Not:
		return ":not(" + strings.Join(parts, ", ") + ")"
	}
	return ":where(" + strings.Join(parts, ", ") + ")"
}

func (s Never) String() string { return s.Raw }

// Nth is the An+B microsyntax.
type Nth struct{ A, B int }

// Matches reports whether a 1-based position satisfies An+B for some n >= 0.
func (n Nth) Matches(pos int) bool {
	if n.A == 0 {
		return pos == n.B
	}
	d := pos - n.B
	return d%n.A == 0 && d/n.A >= 0
}

func (n Nth) String() string {
	switch {
	case n.A == 0:
		return strconv.Itoa(n.B)
	case n.B == 0:
		return strconv.Itoa(n.A) + "n"
	case n.B > 0:
		return strconv.Itoa(n.A) + "n+" + strconv.Itoa(n.B)
	}
	return strconv.Itoa(n.A) + "n" + strconv.Itoa(n.B)
}

// Equal compares selectors structurally.
func Equal(a, b Selector) bool {
	switch a := a.(type) {
	case Type, ID, Class, Attribute, PseudoElement, Never:
		return a == b
	case Pseudo:
		b, ok := b.(Pseudo)
		if !ok || a.Name != b.Name || (a.Nth == nil) != (b.Nth == nil) || len(a.Lang) != len(b.Lang) {
			return false
		}
		if a.Nth != nil && *a.Nth != *b.Nth {
			return false
		}
		if (a.Of == nil) != (b.Of == nil) || (a.Of != nil && !Equal(a.Of, b.Of)) {
			return false
		}
		for i := range a.Lang {
			if a.Lang[i] != b.Lang[i] {
				return false
			}
		}
		return true
	case Infix:
		b, ok := b.(Infix)
		return ok && a.Comb == b.Comb && Equal(a.LHS, b.LHS) && Equal(a.RHS, b.RHS)
	case Nfix:
		b, ok := b.(Nfix)
		if !ok || a.Op != b.Op || len(a.Inner) != len(b.Inner) {
			return false
		}
		for i := range a.Inner {
			if !Equal(a.Inner[i], b.Inner[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Specificity is the (ids, classes, types) triple.
type Specificity struct {
	A, B, C int
}

// Compare orders specificities lexicographically.
func (s Specificity) Compare(o Specificity) int {
	switch {
	case s.A != o.A:
		return cmpInt(s.A, o.A)
	case s.B != o.B:
		return cmpInt(s.B, o.B)
	}
	return cmpInt(s.C, o.C)
}

// Less reports s < o.
func (s Specificity) Less(o Specificity) bool { return s.Compare(o) < 0 }

func (s Specificity) add(o Specificity) Specificity {
	return Specificity{s.A + o.A, s.B + o.B, s.C + o.C}
}

func (s Specificity) String() string {
	return "(" + strconv.Itoa(s.A) + "," + strconv.Itoa(s.B) + "," + strconv.Itoa(s.C) + ")"
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// SpecificityOf computes the static specificity of s. Selector lists and
// :is() take their most specific branch.
func SpecificityOf(s Selector) Specificity {
	switch s := s.(type) {
	case Type:
		if s.Name == "*" {
			return Specificity{}
		}
		return Specificity{C: 1}
	case ID:
		return Specificity{A: 1}
	case Class, Attribute:
		return Specificity{B: 1}
	case Pseudo:
		sp := Specificity{B: 1}
		if s.Of != nil {
			sp = sp.add(SpecificityOf(s.Of))
		}
		return sp
	case PseudoElement:
		return Specificity{C: 1}
	case Infix:
		return SpecificityOf(s.LHS).add(SpecificityOf(s.RHS))
	case Nfix:
		switch s.Op {
		case Where:
			return Specificity{}
		case And:
			var sp Specificity
			for _, in := range s.Inner {
				sp = sp.add(SpecificityOf(in))
			}
			return sp
		default:
			var best Specificity
			for _, in := range s.Inner {
				if sp := SpecificityOf(in); best.Less(sp) {
					best = sp
				}
			}
			return best
		}
	}
	return Specificity{}
}

// SubjectPseudoElement returns the pseudo-element the selector targets, or
// "" if it targets elements.
func SubjectPseudoElement(s Selector) string {
	switch s := s.(type) {
	case PseudoElement:
		return s.Name
	case Infix:
		return SubjectPseudoElement(s.RHS)
	case Nfix:
		if s.Op == And {
			for _, in := range s.Inner {
				if pe, ok := in.(PseudoElement); ok {
					return pe.Name
				}
			}
		}
	}
	return ""
}

// tokensString is used in error messages.
func tokensString(toks []css.Token) string {
	return strings.TrimSpace(css.Join(toks))
}
