package selector

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"folio/css"
)

// Namespaces resolves namespace prefixes declared with @namespace.
type Namespaces struct {
	Default  string
	Prefixes map[string]string
}

func (ns *Namespaces) lookup(prefix string) (string, bool) {
	if ns == nil {
		return "", false
	}
	uri, ok := ns.Prefixes[prefix]
	return uri, ok
}

func (ns *Namespaces) defaultNS() string {
	if ns == nil {
		return ""
	}
	return ns.Default
}

var legacyPseudoElements = map[string]bool{
	"before":       true,
	"after":        true,
	"first-line":   true,
	"first-letter": true,
}

var pseudoElements = map[string]bool{
	"before":       true,
	"after":        true,
	"first-line":   true,
	"first-letter": true,
	"marker":       true,
	"placeholder":  true,
	"selection":    true,
}

var pseudoClasses = map[string]bool{
	"root":          true,
	"empty":         true,
	"first-child":   true,
	"last-child":    true,
	"only-child":    true,
	"first-of-type": true,
	"last-of-type":  true,
	"only-of-type":  true,
	"link":          true,
	"any-link":      true,
	"visited":       true,
	"hover":         true,
	"active":        true,
	"focus":         true,
	"focus-within":  true,
	"focus-visible": true,
	"target":        true,
	"checked":       true,
	"disabled":      true,
	"enabled":       true,
	"read-only":     true,
	"read-write":    true,
	"required":      true,
	"optional":      true,
}

var errEmpty = errors.New("empty selector")

// Parse parses a selector list. A list with a single entry is returned as
// that entry, longer lists as an OR group.
func Parse(toks []css.Token, ns *Namespaces) (Selector, error) {
	parts := css.SplitTopLevel(toks, css.Comma)
	list := make([]Selector, 0, len(parts))
	for _, part := range parts {
		part = css.Trim(part)
		if len(part) == 0 {
			return nil, errEmpty
		}
		p := &parser{toks: part, ns: ns}
		sel, err := p.complex()
		if err != nil {
			return nil, err
		}
		list = append(list, sel)
	}
	if len(list) == 1 {
		return list[0], nil
	}
	return Nfix{Op: Or, Inner: list}, nil
}

// ParseString tokenizes and parses s.
func ParseString(s string, ns *Namespaces) (Selector, error) {
	return Parse(css.TokenizeString(s), ns)
}

// ParseOrNever parses toks and degrades to Never on error.
func ParseOrNever(toks []css.Token, ns *Namespaces) (Selector, error) {
	sel, err := Parse(toks, ns)
	if err != nil {
		return Never{Raw: tokensString(toks)}, err
	}
	return sel, nil
}

type parser struct {
	toks []css.Token
	pos  int
	ns   *Namespaces
}

func (p *parser) peek() css.Token {
	return p.peekAt(0)
}

func (p *parser) peekAt(n int) css.Token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return css.Token{Kind: css.EOF}
}

func (p *parser) next() css.Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) skipSpace() bool {
	skipped := false
	for p.peek().IsSpace() {
		p.pos++
		skipped = true
	}
	return skipped
}

func (p *parser) complex() (Selector, error) {
	p.skipSpace()
	sel, err := p.compound()
	if err != nil {
		return nil, err
	}
	for {
		sawSpace := p.skipSpace()
		t := p.peek()
		if t.Kind == css.EOF {
			return sel, nil
		}
		comb := Descendant
		switch {
		case t.IsDelim(">"):
			comb = Child
		case t.IsDelim("+"):
			comb = NextSibling
		case t.IsDelim("~"):
			comb = SubsequentSibling
		case !sawSpace:
			return nil, fmt.Errorf("unexpected %q in selector", t.Text)
		}
		if comb != Descendant {
			p.next()
			p.skipSpace()
		}
		if SubjectPseudoElement(sel) != "" {
			return nil, errors.New("pseudo-element must be in the last compound selector")
		}
		rhs, err := p.compound()
		if err != nil {
			return nil, err
		}
		sel = Infix{Comb: comb, LHS: sel, RHS: rhs}
	}
}

func (p *parser) compound() (Selector, error) {
	var parts []Selector
	typ, ok, err := p.typeSelector()
	if err != nil {
		return nil, err
	}
	if ok {
		parts = append(parts, typ)
	}
	pseudoElement := false
loop:
	for {
		t := p.peek()
		if pseudoElement && t.Kind != css.EOF && !t.IsSpace() {
			return nil, errors.New("pseudo-element must end the compound selector")
		}
		switch {
		case t.Kind == css.Hash:
			p.next()
			parts = append(parts, ID{Name: unescapeIdent(t.HashName())})
		case t.IsDelim("."):
			p.next()
			name := p.next()
			if name.Kind != css.Ident {
				return nil, fmt.Errorf("expected class name, got %q", name.Text)
			}
			parts = append(parts, Class{Name: unescapeIdent(name.Text)})
		case t.Kind == css.LeftBracket:
			p.next()
			attr, err := p.attribute()
			if err != nil {
				return nil, err
			}
			parts = append(parts, attr)
		case t.Kind == css.Colon:
			p.next()
			sel, err := p.pseudo()
			if err != nil {
				return nil, err
			}
			if _, ok := sel.(PseudoElement); ok {
				pseudoElement = true
			}
			parts = append(parts, sel)
		default:
			break loop
		}
	}
	switch len(parts) {
	case 0:
		if t := p.peek(); t.Kind != css.EOF {
			return nil, fmt.Errorf("unexpected %q in selector", t.Text)
		}
		return nil, errEmpty
	case 1:
		return parts[0], nil
	}
	return Nfix{Op: And, Inner: parts}, nil
}

// qualifiedName consumes [prefix|]name where both parts may be "*" and
// reports the prefix (with hasPrefix distinguishing "|name" from "name").
func (p *parser) qualifiedName(allowStar bool) (prefix, name string, hasPrefix, ok bool) {
	isName := func(t css.Token) bool {
		return t.Kind == css.Ident || (allowStar && t.IsDelim("*"))
	}
	t0, t1, t2 := p.peekAt(0), p.peekAt(1), p.peekAt(2)
	switch {
	case (t0.Kind == css.Ident || t0.IsDelim("*")) && t1.IsDelim("|") && isName(t2):
		p.pos += 3
		return t0.Text, t2.Text, true, true
	case t0.IsDelim("|") && isName(t1):
		p.pos += 2
		return "", t1.Text, true, true
	case isName(t0):
		p.pos++
		return "", t0.Text, false, true
	}
	return "", "", false, false
}

func (p *parser) typeSelector() (Selector, bool, error) {
	prefix, name, hasPrefix, ok := p.qualifiedName(true)
	if !ok {
		return nil, false, nil
	}
	sel := Type{Name: unescapeIdent(name)}
	switch {
	case !hasPrefix:
		sel.Namespace = p.ns.defaultNS()
	case prefix == "":
		sel.Namespace = NoNamespace
	case prefix == "*":
		sel.Prefix = "*"
	default:
		uri, ok := p.ns.lookup(prefix)
		if !ok {
			return nil, false, fmt.Errorf("undeclared namespace prefix %q", prefix)
		}
		sel.Prefix, sel.Namespace = prefix, uri
	}
	return sel, true, nil
}

func (p *parser) attribute() (Selector, error) {
	p.skipSpace()
	prefix, name, hasPrefix, ok := p.qualifiedName(false)
	if !ok {
		return nil, fmt.Errorf("expected attribute name, got %q", p.peek().Text)
	}
	attr := Attribute{Name: unescapeIdent(name)}
	if hasPrefix {
		switch prefix {
		case "":
		case "*":
			attr.Prefix, attr.Namespace = "*", AnyNamespace
		default:
			uri, ok := p.ns.lookup(prefix)
			if !ok {
				return nil, fmt.Errorf("undeclared namespace prefix %q", prefix)
			}
			attr.Prefix, attr.Namespace = prefix, uri
		}
	}
	p.skipSpace()
	op := p.next()
	if op.Kind == css.RightBracket {
		return attr, nil
	}
	switch op.Text {
	case "=":
		attr.Op = AttrExact
	case "~=":
		attr.Op = AttrContains
	case "|=":
		attr.Op = AttrHyphenated
	case "^=":
		attr.Op = AttrStartsWith
	case "$=":
		attr.Op = AttrEndsWith
	case "*=":
		attr.Op = AttrSubstring
	default:
		return nil, fmt.Errorf("unknown attribute operator %q", op.Text)
	}
	p.skipSpace()
	val := p.next()
	switch val.Kind {
	case css.String:
		attr.Value = val.Unquoted()
	case css.Ident:
		attr.Value = unescapeIdent(val.Text)
	default:
		return nil, fmt.Errorf("invalid attribute value %q", val.Text)
	}
	p.skipSpace()
	if t := p.peek(); t.Kind == css.Ident {
		switch strings.ToLower(t.Text) {
		case "i":
			attr.Case = CaseInsensitive
		case "s":
			attr.Case = CaseSensitive
		default:
			return nil, fmt.Errorf("unknown attribute flag %q", t.Text)
		}
		p.next()
		p.skipSpace()
	}
	if t := p.next(); t.Kind != css.RightBracket {
		return nil, fmt.Errorf("expected ], got %q", t.Text)
	}
	return attr, nil
}

func (p *parser) pseudo() (Selector, error) {
	element := false
	if p.peek().Kind == css.Colon {
		p.next()
		element = true
	}
	t := p.next()
	switch t.Kind {
	case css.Ident:
		name := t.Lower()
		if element || legacyPseudoElements[name] {
			if !pseudoElements[name] {
				return nil, fmt.Errorf("unknown pseudo-element ::%s", name)
			}
			return PseudoElement{Name: name}, nil
		}
		if !pseudoClasses[name] {
			return nil, fmt.Errorf("unknown pseudo-class :%s", name)
		}
		return Pseudo{Name: name}, nil
	case css.Function:
		if element {
			return nil, fmt.Errorf("unsupported functional pseudo-element %s", t.Text)
		}
		args, err := p.arguments()
		if err != nil {
			return nil, err
		}
		return functional(t.FuncName(), args, p.ns)
	}
	return nil, fmt.Errorf("unexpected %q after colon", t.Text)
}

// arguments consumes tokens up to the parenthesis closing the current
// function and returns them without it.
func (p *parser) arguments() ([]css.Token, error) {
	depth := 0
	start := p.pos
	for p.pos < len(p.toks) {
		t := p.toks[p.pos]
		p.pos++
		switch t.Kind {
		case css.Function, css.LeftParen:
			depth++
		case css.RightParen:
			if depth == 0 {
				return p.toks[start : p.pos-1], nil
			}
			depth--
		}
	}
	return nil, errors.New("unterminated function in selector")
}

func functional(name string, args []css.Token, ns *Namespaces) (Selector, error) {
	switch name {
	case "not", "is", "matches", "any", "-webkit-any", "-moz-any", "where":
		inner, err := Parse(args, ns)
		if err != nil {
			return nil, fmt.Errorf(":%s(): %w", name, err)
		}
		switch name {
		case "not":
			return Nfix{Op: Not, Inner: []Selector{inner}}, nil
		case "where":
			return Nfix{Op: Where, Inner: []Selector{inner}}, nil
		}
		if or, ok := inner.(Nfix); ok && or.Op == Or {
			return or, nil
		}
		return Nfix{Op: Or, Inner: []Selector{inner}}, nil
	case "nth-child", "nth-last-child", "nth-of-type", "nth-last-of-type":
		args = css.Trim(args)
		var of Selector
		if name == "nth-child" || name == "nth-last-child" {
			for i, t := range args {
				if t.IsIdent("of") {
					sel, err := Parse(args[i+1:], ns)
					if err != nil {
						return nil, fmt.Errorf(":%s(): %w", name, err)
					}
					of, args = sel, args[:i]
					break
				}
			}
		}
		nth, err := ParseNth(args)
		if err != nil {
			return nil, fmt.Errorf(":%s(): %w", name, err)
		}
		return Pseudo{Name: name, Nth: &nth, Of: of}, nil
	case "lang":
		var langs []string
		for _, part := range css.SplitTopLevel(args, css.Comma) {
			part = css.Trim(part)
			if len(part) != 1 || (part[0].Kind != css.Ident && part[0].Kind != css.String) {
				return nil, fmt.Errorf(":lang(): invalid argument %q", tokensString(part))
			}
			langs = append(langs, part[0].Unquoted())
		}
		if len(langs) == 0 {
			return nil, errors.New(":lang(): missing argument")
		}
		return Pseudo{Name: name, Lang: langs}, nil
	}
	return nil, fmt.Errorf("unsupported pseudo-class :%s()", name)
}

// ParseNth parses the An+B microsyntax, including the odd and even
// keywords.
func ParseNth(toks []css.Token) (Nth, error) {
	s := strings.ToLower(css.Join(css.Compact(toks)))
	switch s {
	case "odd":
		return Nth{A: 2, B: 1}, nil
	case "even":
		return Nth{A: 2}, nil
	case "":
		return Nth{}, errEmpty
	}
	i := strings.IndexByte(s, 'n')
	if i < 0 {
		b, err := strconv.Atoi(s)
		if err != nil {
			return Nth{}, fmt.Errorf("invalid An+B %q", s)
		}
		return Nth{B: b}, nil
	}
	var n Nth
	switch a := s[:i]; a {
	case "", "+":
		n.A = 1
	case "-":
		n.A = -1
	default:
		v, err := strconv.Atoi(a)
		if err != nil {
			return Nth{}, fmt.Errorf("invalid An+B %q", s)
		}
		n.A = v
	}
	if rest := s[i+1:]; rest != "" {
		if rest[0] != '+' && rest[0] != '-' {
			return Nth{}, fmt.Errorf("invalid An+B %q", s)
		}
		v, err := strconv.Atoi(rest)
		if err != nil {
			return Nth{}, fmt.Errorf("invalid An+B %q", s)
		}
		n.B = v
	}
	return n, nil
}

func unescapeIdent(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	return css.Unquote(s)
}
