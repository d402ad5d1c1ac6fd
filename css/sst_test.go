package css

import (
	"testing"
)

func TestTokenize_Kinds(t *testing.T) {
	toks := Compact(TokenizeString(`@media print { a.b#c[x~="y"]:hover > p { width: 10.5px !important; color: rgb(1, 2, 3) } }`))

	want := []TokenKind{
		AtKeyword, Ident, LeftBrace,
		Ident, Delim, Ident, Hash, LeftBracket, Ident, Delim, String, RightBracket, Colon, Ident, Delim, Ident,
		LeftBrace, Ident, Colon, Dimension, Delim, Ident, Semicolon,
		Ident, Colon, Function, Number, Comma, Number, Comma, Number, RightParen,
		RightBrace, RightBrace,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d (%q) kind = %v, want %v", i, toks[i].Text, toks[i].Kind, k)
		}
	}
	if toks[9].Text != "~=" {
		t.Errorf("attribute operator = %q, want ~=", toks[9].Text)
	}
}

func TestToken_Numeric(t *testing.T) {
	tests := []struct {
		in    string
		value float64
		unit  string
	}{
		{"10px", 10, "px"},
		{"-1.5em", -1.5, "em"},
		{"50%", 50, "%"},
		{"3EX", 3, "ex"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			toks := TokenizeString(tt.in)
			if len(toks) != 1 {
				t.Fatalf("got %d tokens", len(toks))
			}
			v, u, ok := toks[0].Numeric()
			if !ok || v != tt.value || u != tt.unit {
				t.Errorf("Numeric() = %v %q %v, want %v %q", v, u, ok, tt.value, tt.unit)
			}
		})
	}
}

func TestUnquote(t *testing.T) {
	tests := map[string]string{
		`"abc"`:     "abc",
		`'a\'b'`:    "a'b",
		`"\41 B"`:   "AB",
		`"unterm`:   "unterm",
		`plain`:     "plain",
		`"\2014"`:   "—",
		`"a\\b"`:    `a\b`,
		`"\0 zero"`: "�zero",
	}
	for in, want := range tests {
		if got := Unquote(in); got != want {
			t.Errorf("Unquote(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestParseStylesheet_Lossless(t *testing.T) {
	sources := []string{
		"a { color: red }",
		"/* c */ @import url(x.css) print;\n@media screen and (min-width: 10px) {\n  p, q { margin: 0 auto !important }\n}\n",
		"@page :first { margin: 1in; @top-center { content: \"T\" } }",
		"broken { color: ; ; width 10px; height: calc(1px + (2px * 3)) } tail",
		"x { a: [b c] {d} }}",
		"",
	}
	for _, src := range sources {
		sst := ParseStylesheet([]byte(src))
		if got := sst.String(); got != src {
			t.Errorf("round trip:\n got %q\nwant %q", got, src)
		}
	}
}

func TestParseStylesheet_Structure(t *testing.T) {
	sst := ParseStylesheet([]byte(`@media print { h1 { break-before: page !important; color: blue } } p{x:1}`))

	var rules []*Sst
	for _, c := range sst.Content {
		if c.Kind == RULE {
			rules = append(rules, c)
		}
	}
	if len(rules) != 2 {
		t.Fatalf("got %d top-level rules, want 2", len(rules))
	}
	media := rules[0]
	if media.AtName() != "media" {
		t.Errorf("AtName() = %q, want media", media.AtName())
	}
	if got := Normalize(media.Prelude()); got != "print" {
		t.Errorf("Prelude() = %q, want print", got)
	}

	var inner *Sst
	for _, c := range media.Block().Inner() {
		if c.Kind == RULE {
			inner = c
		}
	}
	if inner == nil {
		t.Fatal("nested rule not found")
	}
	var decls []*Sst
	for _, c := range inner.Block().Inner() {
		if c.Kind == DECL {
			decls = append(decls, c)
		}
	}
	if len(decls) != 2 {
		t.Fatalf("got %d declarations, want 2", len(decls))
	}
	if decls[0].Name() != "break-before" || !decls[0].Important {
		t.Errorf("first declaration = %q important=%v", decls[0].Name(), decls[0].Important)
	}
	if got := Normalize(decls[0].Value()); got != "page" {
		t.Errorf("Value() = %q, want page", got)
	}
	if decls[1].Important {
		t.Error("second declaration must not be important")
	}
	if rules[1].IsAtRule() {
		t.Error("qualified rule reported as at-rule")
	}
}

func TestParseDeclarationList_Invalid(t *testing.T) {
	sst := ParseDeclarationList([]byte("color: red; 12px; width 3px; --Custom: { x } ; height:1px"))
	var names []string
	bad := 0
	for _, c := range sst.Content {
		switch c.Kind {
		case DECL:
			names = append(names, c.Name())
		case LIST:
			bad++
		}
	}
	want := []string{"color", "--Custom", "height"}
	if len(names) != len(want) {
		t.Fatalf("declarations = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("declaration %d = %q, want %q", i, names[i], want[i])
		}
	}
	if bad != 2 {
		t.Errorf("bad declarations = %d, want 2", bad)
	}
}

func TestSplitTopLevel(t *testing.T) {
	toks := Compact(TokenizeString("a, b(c, d), [e,f]"))
	parts := SplitTopLevel(toks, Comma)
	if len(parts) != 3 {
		t.Fatalf("got %d parts, want 3", len(parts))
	}
	if got := Join(parts[1]); got != "b(c,d)" {
		t.Errorf("second part = %q", got)
	}
}
