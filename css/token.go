// Package css turns stylesheet text into tokens and a lossless skeleton
// syntax tree (SST). Nothing in this package interprets selectors or
// property values; see css/selector and css/rules for that.
package css

import (
	"strconv"
	"strings"
	"unicode"
)

// TokenKind classifies a Token.
type TokenKind uint8

const (
	EOF TokenKind = iota
	Ident
	Function
	AtKeyword
	Hash
	String
	URL
	Delim
	Number
	Percentage
	Dimension
	Colon
	Semicolon
	Comma
	LeftBracket
	RightBracket
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	Whitespace
	Comment
	Bad
)

var tokenKindNames = [...]string{
	EOF:          "EOF",
	Ident:        "ident",
	Function:     "function",
	AtKeyword:    "at-keyword",
	Hash:         "hash",
	String:       "string",
	URL:          "url",
	Delim:        "delim",
	Number:       "number",
	Percentage:   "percentage",
	Dimension:    "dimension",
	Colon:        "colon",
	Semicolon:    "semicolon",
	Comma:        "comma",
	LeftBracket:  "[",
	RightBracket: "]",
	LeftParen:    "(",
	RightParen:   ")",
	LeftBrace:    "{",
	RightBrace:   "}",
	Whitespace:   "whitespace",
	Comment:      "comment",
	Bad:          "bad",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "token(" + strconv.Itoa(int(k)) + ")"
}

// Token is a single lexical unit. Text is the exact source text of the token,
// so concatenating Text of all tokens reproduces the input.
type Token struct {
	Kind TokenKind
	Text string
}

// IsSpace reports whether the token carries no meaning for value parsing.
func (t Token) IsSpace() bool {
	return t.Kind == Whitespace || t.Kind == Comment
}

// IsIdent reports whether t is an identifier equal to name, ignoring ASCII case.
func (t Token) IsIdent(name string) bool {
	return t.Kind == Ident && strings.EqualFold(t.Text, name)
}

// IsDelim reports whether t is the delimiter s.
func (t Token) IsDelim(s string) bool {
	return t.Kind == Delim && t.Text == s
}

// Lower returns the token text folded to lower case.
func (t Token) Lower() string {
	return strings.ToLower(t.Text)
}

// FuncName returns the lower-cased name of a function token without the
// opening parenthesis.
func (t Token) FuncName() string {
	if t.Kind != Function {
		return ""
	}
	return strings.ToLower(strings.TrimSuffix(t.Text, "("))
}

// AtName returns the lower-cased name of an at-keyword without '@'.
func (t Token) AtName() string {
	if t.Kind != AtKeyword {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(t.Text, "@"))
}

// HashName returns the hash token text without '#'.
func (t Token) HashName() string {
	return strings.TrimPrefix(t.Text, "#")
}

// Unquoted returns the value of a string token with quotes and escapes
// removed. Other tokens are returned as is.
func (t Token) Unquoted() string {
	if t.Kind != String {
		return t.Text
	}
	return Unquote(t.Text)
}

// URLValue returns the target of a url token.
func (t Token) URLValue() string {
	if t.Kind != URL {
		return ""
	}
	s := t.Text
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(s, ")")
	return Unquote(strings.TrimSpace(s))
}

// Numeric splits a number, percentage or dimension token into its value and
// lower-cased unit ("%" for percentages, "" for plain numbers).
func (t Token) Numeric() (float64, string, bool) {
	switch t.Kind {
	case Number:
		v, err := strconv.ParseFloat(t.Text, 64)
		return v, "", err == nil
	case Percentage:
		v, err := strconv.ParseFloat(strings.TrimSuffix(t.Text, "%"), 64)
		return v, "%", err == nil
	case Dimension:
		end := numberPrefix(t.Text)
		if end == 0 {
			return 0, "", false
		}
		v, err := strconv.ParseFloat(t.Text[:end], 64)
		return v, strings.ToLower(t.Text[end:]), err == nil
	}
	return 0, "", false
}

// numberPrefix returns the length of the numeric part of a dimension.
func numberPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	// exponent, but not the "e" of "em"/"ex"
	if i+1 < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if s[j] == '+' || s[j] == '-' {
			j++
		}
		if j < len(s) && s[j] >= '0' && s[j] <= '9' {
			i = j
			for i < len(s) && s[i] >= '0' && s[i] <= '9' {
				i++
			}
		}
	}
	return i
}

// Unquote removes surrounding quotes and resolves CSS escapes.
func Unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	} else if len(s) >= 1 && (s[0] == '"' || s[0] == '\'') {
		// unterminated string at EOF
		s = s[1:]
	}
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		if s[i] == '\n' {
			// escaped newline is a line continuation
			continue
		}
		if isHex(s[i]) {
			j := i
			for j < len(s) && j-i < 6 && isHex(s[j]) {
				j++
			}
			n, _ := strconv.ParseUint(s[i:j], 16, 32)
			r := rune(n)
			if r == 0 || r > unicode.MaxRune || (r >= 0xD800 && r <= 0xDFFF) {
				r = unicode.ReplacementChar
			}
			b.WriteRune(r)
			if j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n') {
				j++
			}
			i = j - 1
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

// Join concatenates token texts.
func Join(toks []Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Text)
	}
	return b.String()
}

// Trim drops leading and trailing whitespace and comments.
func Trim(toks []Token) []Token {
	for len(toks) > 0 && toks[0].IsSpace() {
		toks = toks[1:]
	}
	for len(toks) > 0 && toks[len(toks)-1].IsSpace() {
		toks = toks[:len(toks)-1]
	}
	return toks
}

// Compact drops all whitespace and comment tokens.
func Compact(toks []Token) []Token {
	out := make([]Token, 0, len(toks))
	for _, t := range toks {
		if !t.IsSpace() {
			out = append(out, t)
		}
	}
	return out
}

// SplitTopLevel splits toks at top-level tokens of kind sep; parentheses,
// brackets and function arguments are kept intact.
func SplitTopLevel(toks []Token, sep TokenKind) [][]Token {
	var (
		out   [][]Token
		depth int
		start int
	)
	for i, t := range toks {
		switch t.Kind {
		case Function, LeftParen, LeftBracket, LeftBrace:
			depth++
		case RightParen, RightBracket, RightBrace:
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				out = append(out, toks[start:i])
				start = i + 1
			}
		}
	}
	return append(out, toks[start:])
}

// Normalize renders tokens in a normalized way: whitespace runs collapse to a
// single space and comments are dropped.
func Normalize(toks []Token) string {
	var b strings.Builder
	space := false
	for _, t := range Trim(toks) {
		if t.IsSpace() {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteString(t.Text)
	}
	return b.String()
}
