package rules

import (
	"fmt"
	"io"
	"strings"

	"folio/css"
)

// cssEscapeDoubleQuoted escapes a string for use inside CSS double quotes.
// Backslashes and double quotes are escaped per CSS syntax: \" and \\.
func cssEscapeDoubleQuoted(s string) string {
	if !strings.ContainsAny(s, `"\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// cssWriter tracks bytes written and the first error so the serializer
// does not have to check every Fprintf.
type cssWriter struct {
	w     io.Writer
	total int64
	err   error
}

func (cw *cssWriter) printf(indent int, format string, args ...any) {
	if cw.err != nil {
		return
	}
	n, err := fmt.Fprintf(cw.w, strings.Repeat("  ", indent)+format, args...)
	cw.total += int64(n)
	cw.err = err
}

// WriteTo writes the stylesheet to w in source order, implementing
// io.WriterTo. Declarations keep their source order since it matters for
// the cascade.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	cw := &cssWriter{w: w}
	writeRules(cw, s.Rules, 0)
	return cw.total, cw.err
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

func writeRules(cw *cssWriter, rules []Rule, indent int) {
	for i, r := range rules {
		if i > 0 {
			cw.printf(0, "\n")
		}
		switch r := r.(type) {
		case *ImportRule:
			if len(r.Media) > 0 {
				cw.printf(indent, "@import url(\"%s\") %s;\n", cssEscapeDoubleQuoted(r.URL), r.Media)
			} else {
				cw.printf(indent, "@import url(\"%s\");\n", cssEscapeDoubleQuoted(r.URL))
			}
		case *NamespaceRule:
			if r.Prefix != "" {
				cw.printf(indent, "@namespace %s url(\"%s\");\n", r.Prefix, cssEscapeDoubleQuoted(r.URI))
			} else {
				cw.printf(indent, "@namespace url(\"%s\");\n", cssEscapeDoubleQuoted(r.URI))
			}
		case *StyleRule:
			cw.printf(indent, "%s {\n", r.Selector)
			writeDecls(cw, r.Decls, indent+1)
			cw.printf(indent, "}\n")
		case *MediaRule:
			cw.printf(indent, "@media %s {\n", r.Query)
			writeRules(cw, r.Rules, indent+1)
			cw.printf(indent, "}\n")
		case *FontFaceRule:
			cw.printf(indent, "@font-face {\n")
			writeDecls(cw, r.Decls, indent+1)
			cw.printf(indent, "}\n")
		case *PageRule:
			sels := make([]string, len(r.Selectors))
			for i, ps := range r.Selectors {
				sels[i] = ps.String()
			}
			if len(sels) > 0 {
				cw.printf(indent, "@page %s {\n", strings.Join(sels, ", "))
			} else {
				cw.printf(indent, "@page {\n")
			}
			writeDecls(cw, r.Decls, indent+1)
			for _, m := range r.Margins {
				cw.printf(indent+1, "@%s {\n", m.Area)
				writeDecls(cw, m.Decls, indent+2)
				cw.printf(indent+1, "}\n")
			}
			cw.printf(indent, "}\n")
		}
	}
}

func writeDecls(cw *cssWriter, decls []Declaration, indent int) {
	for _, d := range decls {
		cw.printf(indent, "%s;\n", d)
	}
}

// RewriteURLs walks all URL references in the stylesheet and applies fn to
// each. This covers @import URLs, @font-face src, and url() references in
// declarations of style, page and margin rules.
func (s *Stylesheet) RewriteURLs(fn func(originalURL string) string) {
	rewriteRules(s.Rules, fn)
}

func rewriteRules(rules []Rule, fn func(string) string) {
	for _, r := range rules {
		switch r := r.(type) {
		case *ImportRule:
			r.URL = fn(r.URL)
		case *StyleRule:
			rewriteDecls(r.Decls, fn)
		case *FontFaceRule:
			rewriteDecls(r.Decls, fn)
		case *PageRule:
			rewriteDecls(r.Decls, fn)
			for _, m := range r.Margins {
				rewriteDecls(m.Decls, fn)
			}
		case *MediaRule:
			rewriteRules(r.Rules, fn)
		}
	}
}

func rewriteDecls(decls []Declaration, fn func(string) string) {
	for i := range decls {
		decls[i].Value = rewriteURLsInValue(decls[i].Value, fn)
	}
}

// rewriteURLsInValue replaces url() references in a value. Both the url
// token and the url("...") function form come out as a url token with a
// double-quoted target.
func rewriteURLsInValue(toks []css.Token, fn func(string) string) []css.Token {
	out := make([]css.Token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.Kind == css.URL:
			out = append(out, urlToken(fn(t.URLValue())))
			continue
		case t.Kind == css.Function && t.FuncName() == "url":
			j := i + 1
			for j < len(toks) && toks[j].IsSpace() {
				j++
			}
			if j < len(toks) && toks[j].Kind == css.String {
				out = append(out, urlToken(fn(toks[j].Unquoted())))
				for j < len(toks) && toks[j].Kind != css.RightParen {
					j++
				}
				i = j
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

func urlToken(target string) css.Token {
	return css.Token{Kind: css.URL, Text: "url(\"" + cssEscapeDoubleQuoted(target) + "\")"}
}
