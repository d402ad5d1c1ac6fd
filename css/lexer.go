package css

import (
	"errors"
	"io"

	parse "github.com/tdewolff/parse/v2"
	tcss "github.com/tdewolff/parse/v2/css"
)

// Lexer produces tokens lazily from CSS source. Character-level tokenization
// is done by tdewolff's lexer; Lexer only maps its token types and copies the
// token text out of the shared input buffer.
type Lexer struct {
	l    *tcss.Lexer
	peek *Token
	err  error
	done bool
}

// NewLexer creates a lexer over data.
func NewLexer(data []byte) *Lexer {
	return &Lexer{l: tcss.NewLexer(parse.NewInputBytes(data))}
}

// NewLexerString creates a lexer over s.
func NewLexerString(s string) *Lexer {
	return &Lexer{l: tcss.NewLexer(parse.NewInputString(s))}
}

// Err returns the first non-EOF error the underlying lexer reported.
func (lx *Lexer) Err() error {
	return lx.err
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() Token {
	if lx.peek == nil {
		t := lx.next()
		lx.peek = &t
	}
	return *lx.peek
}

// Next consumes and returns the next token. After the input is exhausted it
// keeps returning EOF tokens.
func (lx *Lexer) Next() Token {
	if lx.peek != nil {
		t := *lx.peek
		lx.peek = nil
		return t
	}
	return lx.next()
}

func (lx *Lexer) next() Token {
	if lx.done {
		return Token{Kind: EOF}
	}
	tt, data := lx.l.Next()
	if tt == tcss.ErrorToken {
		lx.done = true
		if err := lx.l.Err(); err != nil && !errors.Is(err, io.EOF) {
			lx.err = err
		}
		return Token{Kind: EOF}
	}
	return Token{Kind: mapTokenType(tt), Text: string(data)}
}

// Tokenize returns all tokens of data, without the trailing EOF.
func Tokenize(data []byte) []Token {
	lx := NewLexer(data)
	var out []Token
	for {
		t := lx.Next()
		if t.Kind == EOF {
			return out
		}
		out = append(out, t)
	}
}

// TokenizeString is Tokenize for strings.
func TokenizeString(s string) []Token {
	return Tokenize([]byte(s))
}

func mapTokenType(tt tcss.TokenType) TokenKind {
	switch tt {
	case tcss.IdentToken, tcss.CustomPropertyNameToken:
		return Ident
	case tcss.FunctionToken:
		return Function
	case tcss.AtKeywordToken:
		return AtKeyword
	case tcss.HashToken:
		return Hash
	case tcss.StringToken:
		return String
	case tcss.URLToken:
		return URL
	case tcss.NumberToken:
		return Number
	case tcss.PercentageToken:
		return Percentage
	case tcss.DimensionToken:
		return Dimension
	case tcss.ColonToken:
		return Colon
	case tcss.SemicolonToken:
		return Semicolon
	case tcss.CommaToken:
		return Comma
	case tcss.LeftBracketToken:
		return LeftBracket
	case tcss.RightBracketToken:
		return RightBracket
	case tcss.LeftParenthesisToken:
		return LeftParen
	case tcss.RightParenthesisToken:
		return RightParen
	case tcss.LeftBraceToken:
		return LeftBrace
	case tcss.RightBraceToken:
		return RightBrace
	case tcss.WhitespaceToken:
		return Whitespace
	case tcss.CommentToken, tcss.CDOToken, tcss.CDCToken:
		return Comment
	case tcss.BadStringToken, tcss.BadURLToken:
		return Bad
	default:
		// match operators (~= |= ^= $= *=), column (||), unicode ranges
		// and plain delimiters
		return Delim
	}
}
