package css

import (
	"strings"
)

// SstKind tags an Sst node.
type SstKind uint8

const (
	// RULE is a qualified rule or an at-rule. Prefix holds the prelude (a LIST
	// starting with the at-keyword for at-rules), Content holds the BLOCK or the
	// terminating semicolon.
	RULE SstKind = iota
	// FUNC is a function: Prefix is the TOKEN with the function name, Content
	// the arguments followed by the closing parenthesis.
	FUNC
	// DECL is a declaration: Prefix is a LIST with name, colon and the
	// surrounding whitespace, Content the value.
	DECL
	// LIST is an ordered sequence without own syntax.
	LIST
	// TOKEN wraps a single token.
	TOKEN
	// BLOCK is a {}, [] or () block; the first child is the opening token
	// and, unless the input ended early, the last child the closing one.
	BLOCK
)

func (k SstKind) String() string {
	switch k {
	case RULE:
		return "RULE"
	case FUNC:
		return "FUNC"
	case DECL:
		return "DECL"
	case LIST:
		return "LIST"
	case TOKEN:
		return "TOKEN"
	case BLOCK:
		return "BLOCK"
	}
	return "?"
}

// Sst is a skeleton syntax tree node. The tree is lossless: String returns
// the exact source text it was built from.
type Sst struct {
	Kind      SstKind
	Prefix    *Sst
	Content   []*Sst
	Token     Token
	Important bool
}

func tokenNode(t Token) *Sst {
	return &Sst{Kind: TOKEN, Token: t}
}

// String reproduces the source text of the node.
func (s *Sst) String() string {
	var b strings.Builder
	s.write(&b)
	return b.String()
}

func (s *Sst) write(b *strings.Builder) {
	if s == nil {
		return
	}
	if s.Kind == TOKEN {
		b.WriteString(s.Token.Text)
		return
	}
	s.Prefix.write(b)
	for _, c := range s.Content {
		c.write(b)
	}
}

// Tokens flattens the node into its tokens.
func (s *Sst) Tokens() []Token {
	var out []Token
	s.appendTokens(&out)
	return out
}

func (s *Sst) appendTokens(out *[]Token) {
	if s == nil {
		return
	}
	if s.Kind == TOKEN {
		*out = append(*out, s.Token)
		return
	}
	s.Prefix.appendTokens(out)
	for _, c := range s.Content {
		c.appendTokens(out)
	}
}

// IsAtRule reports whether a RULE node is an at-rule.
func (s *Sst) IsAtRule() bool {
	return s.Kind == RULE && s.AtName() != ""
}

// AtName returns the lower-cased at-rule name, or "" for other nodes.
func (s *Sst) AtName() string {
	if s.Kind != RULE || s.Prefix == nil || len(s.Prefix.Content) == 0 {
		return ""
	}
	first := s.Prefix.Content[0]
	if first.Kind != TOKEN {
		return ""
	}
	return first.Token.AtName()
}

// Prelude returns the prelude tokens of a RULE, without the at-keyword.
func (s *Sst) Prelude() []Token {
	if s.Kind != RULE || s.Prefix == nil {
		return nil
	}
	toks := s.Prefix.Tokens()
	if s.IsAtRule() {
		toks = toks[1:]
	}
	return Trim(toks)
}

// Block returns the {} block of a RULE, nil for statement at-rules.
func (s *Sst) Block() *Sst {
	for _, c := range s.Content {
		if c.Kind == BLOCK {
			return c
		}
	}
	return nil
}

// Inner returns the children of a BLOCK or FUNC without the brackets.
func (s *Sst) Inner() []*Sst {
	c := s.Content
	if s.Kind == BLOCK && len(c) > 0 {
		c = c[1:]
	}
	if len(c) > 0 {
		if last := c[len(c)-1]; last.Kind == TOKEN {
			switch last.Token.Kind {
			case RightBrace, RightBracket, RightParen:
				c = c[:len(c)-1]
			}
		}
	}
	return c
}

// Name returns the declaration name (case preserved for custom properties,
// lower-cased otherwise).
func (s *Sst) Name() string {
	if s.Kind != DECL || s.Prefix == nil {
		return ""
	}
	for _, c := range s.Prefix.Content {
		if c.Kind == TOKEN && c.Token.Kind == Ident {
			if strings.HasPrefix(c.Token.Text, "--") {
				return c.Token.Text
			}
			return strings.ToLower(c.Token.Text)
		}
	}
	return ""
}

// Value returns the declaration value tokens with surrounding whitespace
// and a trailing "!important" removed.
func (s *Sst) Value() []Token {
	if s.Kind != DECL {
		return nil
	}
	toks := Trim(s.Tokens()[len(s.Prefix.Tokens()):])
	if s.Important {
		toks = stripImportant(toks)
	}
	return toks
}

// stripImportant removes a trailing "! important" from toks.
func stripImportant(toks []Token) []Token {
	i := len(toks) - 1
	if i < 0 || !toks[i].IsIdent("important") {
		return toks
	}
	i--
	for i >= 0 && toks[i].IsSpace() {
		i--
	}
	if i < 0 || !toks[i].IsDelim("!") {
		return toks
	}
	return Trim(toks[:i])
}

// hasImportant reports whether toks end with "! important".
func hasImportant(toks []Token) bool {
	toks = Trim(toks)
	return len(stripImportant(toks)) != len(toks)
}

// Walk calls fn for s and every descendant in document order; returning
// false from fn skips the children of that node.
func (s *Sst) Walk(fn func(*Sst) bool) {
	if s == nil || !fn(s) {
		return
	}
	if s.Prefix != nil {
		s.Prefix.Walk(fn)
	}
	for _, c := range s.Content {
		c.Walk(fn)
	}
}
