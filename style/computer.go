package style

import (
	"cmp"
	_ "embed"
	"slices"
	"sync"

	"go.uber.org/zap"

	"folio/css"
	"folio/css/rules"
	"folio/css/selector"
	"folio/dom"
)

//go:embed ua.css
var uaCSS []byte

var uaSheet = sync.OnceValue(func() *rules.Stylesheet {
	return rules.NewParser(zap.NewNop()).Parse(uaCSS, rules.UserAgent, "ua.css")
})

// UserAgentSheet returns the built-in default stylesheet.
func UserAgentSheet() *rules.Stylesheet {
	return uaSheet()
}

// Computer runs the cascade for one document. It is built once from the
// stylesheets in effect and may then be used for any number of elements.
type Computer struct {
	log     *zap.Logger
	reg     *Registry
	dev     rules.Device
	parser  *rules.Parser
	index   *RuleIndex
	pages   []*rules.PageRule
	initial *SpecifiedValues

	userAgent bool
	hints     bool
}

// Option configures a Computer.
type Option func(*Computer)

// WithoutUserAgent leaves the built-in stylesheet out of the cascade.
func WithoutUserAgent() Option {
	return func(c *Computer) { c.userAgent = false }
}

// WithoutHints ignores presentational HTML attributes and SVG presentation
// attributes.
func WithoutHints() Option {
	return func(c *Computer) { c.hints = false }
}

// NewComputer indexes sheets, in cascade order, for the device dev.
func NewComputer(log *zap.Logger, dev rules.Device, sheets []*rules.Stylesheet, opts ...Option) *Computer {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Computer{
		log:       log.Named("cascade"),
		reg:       DefaultRegistry(),
		dev:       dev,
		parser:    rules.NewParser(log),
		index:     NewRuleIndex(),
		initial:   initialValues(),
		userAgent: true,
		hints:     true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.userAgent {
		sheets = append([]*rules.Stylesheet{UserAgentSheet()}, sheets...)
	}
	for _, s := range sheets {
		s.Effective(dev, func(r rules.Rule) {
			switch r := r.(type) {
			case *rules.StyleRule:
				c.index.Add(r)
			case *rules.PageRule:
				c.pages = append(c.pages, r)
			}
		})
	}
	c.initial.freeze()
	c.log.Debug("Rules indexed", zap.Int("style", c.index.Len()), zap.Int("page", len(c.pages)))
	return c
}

// Initial returns the shared initial values. They must not be modified.
func (c *Computer) Initial() *SpecifiedValues {
	return c.initial
}

// Registry returns the property registry used by the cascade.
func (c *Computer) Registry() *Registry {
	return c.reg
}

// cascaded is one declaration taking part in the cascade of an element.
type cascaded struct {
	decl  rules.Declaration
	rank  int
	spec  selector.Specificity
	order int
}

// rank orders declarations by origin and importance. Important
// declarations come after all normal ones with the origin order reversed
// for the user agent.
func rank(o rules.Origin, important bool) int {
	switch {
	case !important:
		return int(o)
	case o == rules.UserAgent:
		return 8
	}
	return 4 + int(o)
}

func sortCascade(decls []cascaded) {
	slices.SortStableFunc(decls, func(a, b cascaded) int {
		if c := cmp.Compare(a.rank, b.rank); c != 0 {
			return c
		}
		if c := a.spec.Compare(b.spec); c != 0 {
			return c
		}
		return cmp.Compare(a.order, b.order)
	})
}

// collect gathers the declarations applying to el styled as pseudo.
func (c *Computer) collect(el *dom.Node, pseudo string) []cascaded {
	var out []cascaded
	for _, m := range c.index.Match(el, pseudo) {
		for _, d := range m.Rule.Decls {
			out = append(out, cascaded{decl: d, rank: rank(m.Rule.Origin, d.Important), spec: m.Specificity, order: m.Order})
		}
	}
	if pseudo != "" {
		return out
	}
	if c.hints {
		for i, d := range c.presentationalHints(el) {
			out = append(out, cascaded{decl: d, rank: rank(rules.Presentation, false), order: i})
		}
	}
	if s, ok := el.Attr("style"); ok && s != "" {
		decls, warnings := c.parser.ParseDeclarations([]byte(s))
		for _, w := range warnings {
			c.log.Debug("Inline style", zap.String("element", el.Name), zap.String("warning", w))
		}
		for i, d := range decls {
			out = append(out, cascaded{decl: d, rank: rank(rules.Inline, d.Important), order: i})
		}
	}
	return out
}

// ComputeFor computes the values of el, or of its pseudo-element when
// pseudo is not empty, given the values of its parent. parent is nil for
// the root element.
func (c *Computer) ComputeFor(parent *SpecifiedValues, el *dom.Node, pseudo string) *SpecifiedValues {
	decls := c.collect(el, pseudo)
	sortCascade(decls)
	return c.cascade(parent, decls)
}

func (c *Computer) cascade(parent *SpecifiedValues, decls []cascaded) *SpecifiedValues {
	root := parent == nil
	if root {
		parent = c.initial
	}
	sv := inheritFrom(parent, c.initial)

	// custom properties first so that var() sees the final values
	for _, d := range decls {
		if c.reg.Lookup(d.decl.Name).Is(Custom) {
			c.apply(sv, parent, d.decl.Name, d.decl.Value)
		}
	}
	c.resolveCustom(sv)
	for _, d := range decls {
		if !c.reg.Lookup(d.decl.Name).Is(Custom) {
			c.apply(sv, parent, d.decl.Name, d.decl.Value)
		}
	}
	resolveFontRelative(sv)
	if root {
		sv.rootFontSize = sv.FontSize()
	}
	sv.freeze()
	return sv
}

// cssWide returns the CSS-wide keyword toks consists of, if any.
func cssWide(toks []css.Token) string {
	t, err := single(toks)
	if err != nil || t.Kind != css.Ident {
		return ""
	}
	switch kw := t.Lower(); kw {
	case "initial", "inherit", "unset", "revert":
		return kw
	}
	return ""
}

// apply applies one declaration. Values that cannot be used are dropped.
func (c *Computer) apply(sv, parent *SpecifiedValues, name string, toks []css.Token) {
	reg := c.reg.Lookup(name)
	if reg.Is(Bogus) {
		c.log.Debug("Ignoring declaration", zap.String("property", name), zap.Error(reg.Err))
		return
	}
	if !reg.Is(Custom) && containsVar(toks) {
		var ok bool
		if toks, ok = substitute(toks, sv.Custom, 0); !ok {
			c.log.Debug("Unresolved var()", zap.String("property", name))
			return
		}
	}
	if kw := cssWide(toks); kw != "" {
		if reg.Is(Shorthand) {
			for _, lh := range reg.Longhands {
				applyKeyword(c.reg.Lookup(lh), sv, parent, kw)
			}
			return
		}
		applyKeyword(reg, sv, parent, kw)
		return
	}
	if reg.Is(Shorthand) {
		lhs, err := reg.Expand(toks)
		if err != nil {
			c.log.Debug("Ignoring declaration", zap.String("property", name), zap.Error(err))
			return
		}
		for _, lh := range lhs {
			c.apply(sv, parent, lh.Name, lh.Value)
		}
		return
	}
	v, err := reg.Parse(toks)
	if err != nil {
		c.log.Debug("Ignoring declaration", zap.String("property", name), zap.String("value", css.Normalize(toks)), zap.Error(err))
		return
	}
	reg.Apply(sv, v)
}

// applyKeyword resolves a CSS-wide keyword. revert has no user origin to
// roll back to and behaves as unset.
func applyKeyword(reg *Registration, sv, parent *SpecifiedValues, kw string) {
	if kw == "unset" || kw == "revert" {
		kw = "initial"
		if reg.Is(Inherited) {
			kw = "inherit"
		}
	}
	if kw == "inherit" {
		reg.Inherit(parent, sv)
		return
	}
	reg.Apply(sv, reg.Initial())
}

// resolveFontRelative turns font relative lengths of inherited properties
// into px so that children inherit the computed length.
func resolveFontRelative(sv *SpecifiedValues) {
	b := Basis{FontSize: sv.FontSize(), RootFontSize: sv.rootFontSize}
	abs := func(l Length) Length {
		switch l.Unit {
		case Em, Rem, Ex, Ch:
			return PxLength(l.ToPx(b))
		}
		return l
	}
	t := sv.Text.Get()
	setField(sv, textG, func(g *Text) *Length { return &g.Indent }, abs(t.Indent))
	setField(sv, textG, func(g *Text) *Length { return &g.LetterSpacing }, abs(t.LetterSpacing))
	setField(sv, textG, func(g *Text) *Length { return &g.WordSpacing }, abs(t.WordSpacing))
	setField(sv, fontG, func(g *Font) *Length { return &g.LineHeight }, abs(sv.Font.Get().LineHeight))
	setField(sv, svgG, func(g *Svg) *Length { return &g.StrokeWidth }, abs(sv.Svg.Get().StrokeWidth))
}

// Computed is what ComputeTree stores in the style slot of an element.
// Before and After are nil unless the pseudo-element generates a box.
type Computed struct {
	Values *SpecifiedValues
	Before *SpecifiedValues
	After  *SpecifiedValues
}

// Of returns the computed style of an element, nil if none was computed.
func Of(n *dom.Node) *Computed {
	if n == nil {
		return nil
	}
	cs, _ := n.Style.(*Computed)
	return cs
}

// ComputeTree computes every element below root (a document or element
// node) and stores the result in the element's style slot.
func (c *Computer) ComputeTree(root *dom.Node) {
	var parent *SpecifiedValues
	if root.Type == dom.ElementNode {
		if p := Of(root.Parent); p != nil {
			parent = p.Values
		}
		c.computeElement(parent, root)
		return
	}
	for ch := range root.Children() {
		if ch.Type == dom.ElementNode {
			c.computeElement(nil, ch)
		}
	}
}

func (c *Computer) computeElement(parent *SpecifiedValues, el *dom.Node) {
	sv := c.ComputeFor(parent, el, "")
	cs := &Computed{Values: sv}
	if sv.Box.Get().Display != DisplayNone {
		cs.Before = c.pseudo(sv, el, "before")
		cs.After = c.pseudo(sv, el, "after")
	}
	el.Style = cs
	for ch := range el.Children() {
		if ch.Type == dom.ElementNode {
			c.computeElement(sv, ch)
		}
	}
}

func (c *Computer) pseudo(parent *SpecifiedValues, el *dom.Node, name string) *SpecifiedValues {
	if !c.index.HasPseudoElement(name) {
		return nil
	}
	sv := c.ComputeFor(parent, el, name)
	if !sv.Generated.Get().Content.Generates() || sv.Box.Get().Display == DisplayNone {
		return nil
	}
	return sv
}
