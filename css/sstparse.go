package css

// atRulesWithRuleBlocks lists at-rules whose block holds rules rather than
// declarations.
var atRulesWithRuleBlocks = map[string]bool{
	"media":         true,
	"supports":      true,
	"document":      true,
	"-moz-document": true,
	"layer":         true,
	"container":     true,
	"keyframes":     true,
	"scope":         true,
}

type sstParser struct {
	lx *Lexer
}

// ParseStylesheet builds the SST of a whole stylesheet. The result is a LIST
// of RULE nodes interleaved with TOKEN nodes for whitespace, comments and
// stray tokens.
func ParseStylesheet(data []byte) *Sst {
	p := &sstParser{lx: NewLexer(data)}
	return &Sst{Kind: LIST, Content: p.ruleList(true)}
}

// ParseDeclarationList builds the SST of a declaration list, such as the
// contents of a style attribute.
func ParseDeclarationList(data []byte) *Sst {
	p := &sstParser{lx: NewLexer(data)}
	return &Sst{Kind: LIST, Content: p.declarationList(true)}
}

// ParseComponentValues builds a LIST of component values (tokens, functions
// and simple blocks) from s.
func ParseComponentValues(s string) *Sst {
	p := &sstParser{lx: NewLexerString(s)}
	list := &Sst{Kind: LIST}
	for p.lx.Peek().Kind != EOF {
		list.Content = append(list.Content, p.componentValue())
	}
	return list
}

func (p *sstParser) ruleList(top bool) []*Sst {
	var out []*Sst
	for {
		t := p.lx.Peek()
		switch {
		case t.Kind == EOF:
			return out
		case t.Kind == RightBrace && !top:
			return out
		case t.IsSpace():
			out = append(out, tokenNode(p.lx.Next()))
		case t.Kind == AtKeyword:
			out = append(out, p.atRule(top))
		case t.Kind == RightBrace:
			// stray closing brace at top level
			out = append(out, tokenNode(p.lx.Next()))
		default:
			out = append(out, p.qualifiedRule(top))
		}
	}
}

func (p *sstParser) atRule(top bool) *Sst {
	at := p.lx.Next()
	rule := &Sst{Kind: RULE, Prefix: &Sst{Kind: LIST, Content: []*Sst{tokenNode(at)}}}
	rulesBlock := atRulesWithRuleBlocks[at.AtName()]
	for {
		t := p.lx.Peek()
		switch t.Kind {
		case EOF:
			return rule
		case Semicolon:
			rule.Content = append(rule.Content, tokenNode(p.lx.Next()))
			return rule
		case LeftBrace:
			rule.Content = append(rule.Content, p.block(rulesBlock))
			return rule
		case RightBrace:
			if !top {
				return rule
			}
			rule.Prefix.Content = append(rule.Prefix.Content, tokenNode(p.lx.Next()))
		default:
			rule.Prefix.Content = append(rule.Prefix.Content, p.componentValue())
		}
	}
}

func (p *sstParser) qualifiedRule(top bool) *Sst {
	rule := &Sst{Kind: RULE, Prefix: &Sst{Kind: LIST}}
	for {
		t := p.lx.Peek()
		switch t.Kind {
		case EOF:
			return rule
		case LeftBrace:
			rule.Content = append(rule.Content, p.block(false))
			return rule
		case RightBrace:
			if !top {
				return rule
			}
			rule.Prefix.Content = append(rule.Prefix.Content, tokenNode(p.lx.Next()))
		default:
			rule.Prefix.Content = append(rule.Prefix.Content, p.componentValue())
		}
	}
}

// block consumes a {} block holding either rules or declarations.
func (p *sstParser) block(rules bool) *Sst {
	b := &Sst{Kind: BLOCK, Content: []*Sst{tokenNode(p.lx.Next())}}
	if rules {
		b.Content = append(b.Content, p.ruleList(false)...)
	} else {
		b.Content = append(b.Content, p.declarationList(false)...)
	}
	if p.lx.Peek().Kind == RightBrace {
		b.Content = append(b.Content, tokenNode(p.lx.Next()))
	}
	return b
}

func (p *sstParser) declarationList(top bool) []*Sst {
	var out []*Sst
	for {
		t := p.lx.Peek()
		switch {
		case t.Kind == EOF:
			return out
		case t.Kind == RightBrace:
			if !top {
				return out
			}
			out = append(out, tokenNode(p.lx.Next()))
		case t.IsSpace(), t.Kind == Semicolon:
			out = append(out, tokenNode(p.lx.Next()))
		case t.Kind == AtKeyword:
			out = append(out, p.atRule(false))
		case t.Kind == Ident:
			out = append(out, p.declaration())
		default:
			out = append(out, p.junk())
		}
	}
}

func (p *sstParser) declaration() *Sst {
	prefix := &Sst{Kind: LIST, Content: []*Sst{tokenNode(p.lx.Next())}}
	for p.lx.Peek().IsSpace() {
		prefix.Content = append(prefix.Content, tokenNode(p.lx.Next()))
	}
	if p.lx.Peek().Kind != Colon {
		bad := p.junk()
		bad.Content = append(prefix.Content, bad.Content...)
		return bad
	}
	prefix.Content = append(prefix.Content, tokenNode(p.lx.Next()))
	decl := &Sst{Kind: DECL, Prefix: prefix}
	for {
		t := p.lx.Peek()
		if t.Kind == EOF || t.Kind == Semicolon || t.Kind == RightBrace {
			break
		}
		decl.Content = append(decl.Content, p.componentValue())
	}
	var value []Token
	for _, c := range decl.Content {
		c.appendTokens(&value)
	}
	decl.Important = hasImportant(value)
	return decl
}

// junk consumes an invalid declaration up to the next top-level semicolon
// or closing brace and returns it as a LIST.
func (p *sstParser) junk() *Sst {
	list := &Sst{Kind: LIST}
	for {
		t := p.lx.Peek()
		if t.Kind == EOF || t.Kind == Semicolon || t.Kind == RightBrace {
			return list
		}
		list.Content = append(list.Content, p.componentValue())
	}
}

func (p *sstParser) componentValue() *Sst {
	t := p.lx.Next()
	switch t.Kind {
	case Function:
		return &Sst{Kind: FUNC, Prefix: tokenNode(t), Content: p.until(RightParen)}
	case LeftParen:
		return &Sst{Kind: BLOCK, Content: append([]*Sst{tokenNode(t)}, p.until(RightParen)...)}
	case LeftBracket:
		return &Sst{Kind: BLOCK, Content: append([]*Sst{tokenNode(t)}, p.until(RightBracket)...)}
	case LeftBrace:
		return &Sst{Kind: BLOCK, Content: append([]*Sst{tokenNode(t)}, p.until(RightBrace)...)}
	}
	return tokenNode(t)
}

// until collects component values up to and including the closing token.
func (p *sstParser) until(closing TokenKind) []*Sst {
	var out []*Sst
	for {
		t := p.lx.Peek()
		switch t.Kind {
		case EOF:
			return out
		case closing:
			return append(out, tokenNode(p.lx.Next()))
		}
		out = append(out, p.componentValue())
	}
}
