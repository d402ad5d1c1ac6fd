package rules

import (
	"strings"

	"go.uber.org/zap"

	"folio/css"
	"folio/css/selector"
)

// Parser parses CSS stylesheets into structured rules.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

type sheetState struct {
	sheet     *Stylesheet
	order     int
	seenRules bool // a rule other than @charset/@import/@namespace was seen
}

// Parse parses CSS text into a Stylesheet.
// The optional source parameter identifies what's being parsed (for logging
// and for Stylesheet.Err).
func (p *Parser) Parse(data []byte, origin Origin, source ...string) *Stylesheet {
	sheet := &Stylesheet{
		Origin:     origin,
		Namespaces: &selector.Namespaces{Prefixes: make(map[string]string)},
	}
	if len(source) > 0 && source[0] != "" {
		sheet.Source = source[0]
		p.log.Debug("Parsing CSS", zap.String("source", sheet.Source), zap.Int("bytes", len(data)), zap.Stringer("origin", origin))
	}

	st := &sheetState{sheet: sheet}
	sheet.Rules = p.ruleList(st, css.ParseStylesheet(data).Content, true)
	return sheet
}

// ParseDeclarations parses a declaration list such as a style attribute.
// Invalid declarations are dropped and reported.
func (p *Parser) ParseDeclarations(data []byte) ([]Declaration, []string) {
	st := &sheetState{sheet: &Stylesheet{}}
	decls := p.declarations(st, css.ParseDeclarationList(data).Content)
	return decls, st.sheet.Warnings
}

func (p *Parser) warn(st *sheetState, msg string, fields ...zap.Field) {
	st.sheet.Warnings = append(st.sheet.Warnings, msg)
	p.log.Debug(msg, fields...)
}

func (p *Parser) ruleList(st *sheetState, nodes []*css.Sst, top bool) []Rule {
	var rules []Rule
	for _, n := range nodes {
		switch n.Kind {
		case css.TOKEN:
			if !n.Token.IsSpace() {
				p.warn(st, "unexpected token: "+n.Token.Text)
			}
			continue
		case css.RULE:
		default:
			continue
		}
		if !n.IsAtRule() {
			st.seenRules = true
			if r := p.styleRule(st, n); r != nil {
				rules = append(rules, r)
			}
			continue
		}
		if r := p.atRule(st, n, top); r != nil {
			rules = append(rules, r)
		}
	}
	return rules
}

func (p *Parser) styleRule(st *sheetState, n *css.Sst) Rule {
	block := n.Block()
	if block == nil {
		p.warn(st, "rule without block: "+css.Normalize(n.Prelude()))
		return nil
	}
	prelude := n.Prelude()
	sel, err := selector.ParseOrNever(prelude, st.sheet.Namespaces)
	if err != nil {
		p.warn(st, "unsupported selector: "+css.Normalize(prelude), zap.Error(err))
	}
	r := &StyleRule{
		Selector: sel,
		Decls:    p.declarations(st, block.Inner()),
		Origin:   st.sheet.Origin,
		Order:    st.order,
	}
	st.order++
	return r
}

func (p *Parser) atRule(st *sheetState, n *css.Sst, top bool) Rule {
	name := n.AtName()
	switch name {
	case "charset":
		return nil

	case "import":
		if !top || st.seenRules {
			p.warn(st, "@import after other rules ignored")
			return nil
		}
		r := p.importRule(st, n.Prelude())
		if r != nil {
			p.log.Debug("Parsed @import", zap.String("url", r.URL))
		}
		return r

	case "namespace":
		if !top || st.seenRules {
			p.warn(st, "@namespace after other rules ignored")
			return nil
		}
		return p.namespaceRule(st, n.Prelude())

	case "media":
		st.seenRules = true
		block := n.Block()
		if block == nil {
			p.warn(st, "@media without block")
			return nil
		}
		query, warnings := ParseMediaQueryList(n.Prelude())
		for _, w := range warnings {
			p.warn(st, w)
		}
		rules := p.ruleList(st, block.Inner(), false)
		p.log.Debug("Parsed @media block", zap.String("query", query.String()), zap.Int("rules", len(rules)))
		return &MediaRule{Query: query, Rules: rules}

	case "page":
		st.seenRules = true
		return p.pageRule(st, n)

	case "font-face":
		st.seenRules = true
		block := n.Block()
		if block == nil {
			p.warn(st, "@font-face without block")
			return nil
		}
		ff := &FontFaceRule{Decls: p.declarations(st, block.Inner())}
		if ff.Family() == "" {
			p.warn(st, "@font-face without font-family")
		}
		return ff
	}
	st.seenRules = true
	p.log.Debug("Skipping @-rule", zap.String("rule", name))
	return nil
}

// importRule parses: @import "url" [media]; @import url("url") [media];
func (p *Parser) importRule(st *sheetState, prelude []css.Token) *ImportRule {
	toks := css.Trim(prelude)
	if len(toks) == 0 {
		p.warn(st, "@import without url")
		return nil
	}
	var (
		url  string
		rest []css.Token
	)
	switch t := toks[0]; {
	case t.Kind == css.String:
		url, rest = t.Unquoted(), toks[1:]
	case t.Kind == css.URL:
		url, rest = t.URLValue(), toks[1:]
	case t.Kind == css.Function && t.FuncName() == "url":
		args := css.Compact(toks[1:])
		if len(args) < 2 || args[0].Kind != css.String || args[1].Kind != css.RightParen {
			p.warn(st, "invalid @import: "+css.Normalize(toks))
			return nil
		}
		url = args[0].Unquoted()
		for i := 1; i < len(toks); i++ {
			if toks[i].Kind == css.RightParen {
				rest = toks[i+1:]
				break
			}
		}
	default:
		p.warn(st, "invalid @import: "+css.Normalize(toks))
		return nil
	}
	media, warnings := ParseMediaQueryList(rest)
	for _, w := range warnings {
		p.warn(st, w)
	}
	return &ImportRule{URL: url, Media: media}
}

func (p *Parser) namespaceRule(st *sheetState, prelude []css.Token) Rule {
	toks := css.Compact(prelude)
	r := &NamespaceRule{}
	if len(toks) == 2 && toks[0].Kind == css.Ident {
		r.Prefix = toks[0].Text
		toks = toks[1:]
	}
	switch {
	case len(toks) == 1 && toks[0].Kind == css.String:
		r.URI = toks[0].Unquoted()
	case len(toks) == 1 && toks[0].Kind == css.URL:
		r.URI = toks[0].URLValue()
	case len(toks) == 3 && toks[0].Kind == css.Function && toks[0].FuncName() == "url" && toks[1].Kind == css.String:
		r.URI = toks[1].Unquoted()
	default:
		p.warn(st, "invalid @namespace: "+css.Normalize(prelude))
		return nil
	}
	ns := st.sheet.Namespaces
	if r.Prefix == "" {
		ns.Default = r.URI
	} else {
		ns.Prefixes[r.Prefix] = r.URI
	}
	return r
}

func (p *Parser) pageRule(st *sheetState, n *css.Sst) Rule {
	block := n.Block()
	if block == nil {
		p.warn(st, "@page without block")
		return nil
	}
	sels, err := parsePageSelectors(n.Prelude())
	if err != nil {
		p.warn(st, "unsupported page selector: "+css.Normalize(n.Prelude()), zap.Error(err))
		return nil
	}
	r := &PageRule{Selectors: sels, Origin: st.sheet.Origin, Order: st.order}
	st.order++

	var declNodes []*css.Sst
	for _, c := range block.Inner() {
		if c.Kind != css.RULE || !c.IsAtRule() {
			declNodes = append(declNodes, c)
			continue
		}
		area := c.AtName()
		if !isMarginArea(area) || c.Block() == nil {
			p.warn(st, "unknown margin box @"+area)
			continue
		}
		r.Margins = append(r.Margins, &MarginRule{Area: area, Decls: p.declarations(st, c.Block().Inner())})
	}
	r.Decls = p.declarations(st, declNodes)
	return r
}

// declarations collects DECL nodes, reporting anything else that is not
// whitespace or a semicolon.
func (p *Parser) declarations(st *sheetState, nodes []*css.Sst) []Declaration {
	var decls []Declaration
	for _, n := range nodes {
		switch n.Kind {
		case css.DECL:
			value := n.Value()
			if len(value) == 0 {
				p.warn(st, "empty value for "+n.Name())
				continue
			}
			decls = append(decls, Declaration{Name: n.Name(), Value: value, Important: n.Important})
		case css.TOKEN:
			if !n.Token.IsSpace() && n.Token.Kind != css.Semicolon {
				p.warn(st, "unexpected token in declarations: "+n.Token.Text)
			}
		case css.RULE:
			p.warn(st, "nested rule ignored: "+strings.TrimSpace(css.Normalize(n.Prelude())))
		default:
			if s := strings.TrimSpace(n.String()); s != "" {
				p.warn(st, "invalid declaration: "+s)
			}
		}
	}
	return decls
}
