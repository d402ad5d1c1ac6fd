// Package rules turns stylesheet text into typed rules: style rules with
// parsed selectors, @media, @page with margin boxes, @font-face, @namespace
// and @import.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"folio/css"
	"folio/css/selector"
)

// Origin is the cascade tier a rule comes from, in increasing precedence.
type Origin uint8

const (
	UserAgent Origin = iota
	Author
	// Presentation holds HTML presentational hints and SVG presentation
	// attributes.
	Presentation
	Inline
)

func (o Origin) String() string {
	switch o {
	case UserAgent:
		return "user-agent"
	case Author:
		return "author"
	case Presentation:
		return "presentation"
	case Inline:
		return "inline"
	}
	return fmt.Sprintf("origin(%d)", uint8(o))
}

// Declaration is a single "name: value" pair. Value tokens are kept raw;
// the property registry interprets them during the cascade.
type Declaration struct {
	Name      string
	Value     []css.Token
	Important bool
}

// ValueString renders the value in normalized form.
func (d Declaration) ValueString() string {
	return css.Normalize(d.Value)
}

func (d Declaration) String() string {
	if d.Important {
		return d.Name + ": " + d.ValueString() + " !important"
	}
	return d.Name + ": " + d.ValueString()
}

// Rule is one of *StyleRule, *MediaRule, *PageRule, *FontFaceRule,
// *NamespaceRule or *ImportRule.
type Rule interface {
	isRule()
}

// StyleRule is a qualified rule. Order is the position of the rule among
// the style rules of its stylesheet.
type StyleRule struct {
	Selector selector.Selector
	Decls    []Declaration
	Origin   Origin
	Order    int
}

// MediaRule is an @media block.
type MediaRule struct {
	Query MediaQueryList
	Rules []Rule
}

// PageRule is an @page block. An empty Selectors list matches every page.
type PageRule struct {
	Selectors []PageSelector
	Decls     []Declaration
	Margins   []*MarginRule
	Origin    Origin
	Order     int
}

// MarginRule is a margin box at-rule nested in @page, such as @top-center.
type MarginRule struct {
	Area  string
	Decls []Declaration
}

// FontFaceRule is an @font-face block.
type FontFaceRule struct {
	Decls []Declaration
}

// Family returns the unquoted font-family descriptor.
func (r *FontFaceRule) Family() string {
	for _, d := range r.Decls {
		if d.Name == "font-family" {
			return css.Unquote(css.Normalize(d.Value))
		}
	}
	return ""
}

// Sources returns url() targets of the src descriptor in order.
func (r *FontFaceRule) Sources() []string {
	var urls []string
	for _, d := range r.Decls {
		if d.Name != "src" {
			continue
		}
		toks := css.Compact(d.Value)
		for i, t := range toks {
			switch {
			case t.Kind == css.URL:
				urls = append(urls, t.URLValue())
			case t.Kind == css.Function && t.FuncName() == "url" && i+1 < len(toks) && toks[i+1].Kind == css.String:
				urls = append(urls, toks[i+1].Unquoted())
			}
		}
	}
	return urls
}

// Descriptor returns the normalized value of a descriptor.
func (r *FontFaceRule) Descriptor(name string) string {
	for _, d := range r.Decls {
		if d.Name == name {
			return strings.ToLower(d.ValueString())
		}
	}
	return ""
}

// NamespaceRule is an @namespace statement. Prefix is empty for the default
// namespace.
type NamespaceRule struct {
	Prefix string
	URI    string
}

// ImportRule is an @import statement. Sheet is filled in by whoever
// resolves imports; it stays nil otherwise.
type ImportRule struct {
	URL   string
	Media MediaQueryList
	Sheet *Stylesheet
}

func (*StyleRule) isRule()     {}
func (*MediaRule) isRule()     {}
func (*PageRule) isRule()      {}
func (*FontFaceRule) isRule()  {}
func (*NamespaceRule) isRule() {}
func (*ImportRule) isRule()    {}

// Stylesheet is a parsed stylesheet.
type Stylesheet struct {
	Source     string
	Origin     Origin
	Rules      []Rule
	Namespaces *selector.Namespaces
	Warnings   []string
}

// Err combines all warnings into one error, nil if there were none.
func (s *Stylesheet) Err() error {
	var err error
	for _, w := range s.Warnings {
		err = multierr.Append(err, errors.New(w))
	}
	if err != nil && s.Source != "" {
		return fmt.Errorf("%s: %w", s.Source, err)
	}
	return err
}

// Imports returns the @import rules in source order.
func (s *Stylesheet) Imports() []*ImportRule {
	var out []*ImportRule
	for _, r := range s.Rules {
		if imp, ok := r.(*ImportRule); ok {
			out = append(out, imp)
		}
	}
	return out
}

// FontFaces returns @font-face rules that apply to dev, including those
// inside matching @media blocks and resolved imports.
func (s *Stylesheet) FontFaces(dev Device) []*FontFaceRule {
	var out []*FontFaceRule
	s.Effective(dev, func(r Rule) {
		if ff, ok := r.(*FontFaceRule); ok && ff.Family() != "" {
			out = append(out, ff)
		}
	})
	return out
}

// Effective calls fn for every style, page and font-face rule that applies
// to dev, in source order. @media blocks are entered when their query
// matches, resolved imports when their media list matches.
func (s *Stylesheet) Effective(dev Device, fn func(Rule)) {
	walkEffective(s.Rules, dev, fn, 0)
}

const maxImportDepth = 16

func walkEffective(rules []Rule, dev Device, fn func(Rule), depth int) {
	for _, r := range rules {
		switch r := r.(type) {
		case *MediaRule:
			if r.Query.Evaluate(dev) {
				walkEffective(r.Rules, dev, fn, depth)
			}
		case *ImportRule:
			if r.Sheet != nil && depth < maxImportDepth && r.Media.Evaluate(dev) {
				walkEffective(r.Sheet.Rules, dev, fn, depth+1)
			}
		case *StyleRule, *PageRule, *FontFaceRule:
			fn(r)
		}
	}
}
