package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"folio/style"
)

// Collapse applies white-space processing to s. afterSpace tells whether
// the preceding inline content ended with a collapsible space, in which
// case leading white space is dropped.
func Collapse(s string, ws style.WhiteSpace, afterSpace bool) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if !ws.Collapses() {
		return strings.ReplaceAll(s, "\t", "        ")
	}
	keepNewlines := ws == style.WhiteSpacePreLine
	var b strings.Builder
	b.Grow(len(s))
	space := afterSpace
	for _, r := range s {
		switch {
		case r == '\n' && keepNewlines:
			// spaces around a preserved newline are removed
			out := strings.TrimRight(b.String(), " ")
			b.Reset()
			b.WriteString(out)
			b.WriteByte('\n')
			space = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\f':
			if !space {
				b.WriteByte(' ')
				space = true
			}
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}

// EndsWithSpace reports whether collapsed text ends with a space that
// swallows the leading space of the following text.
func EndsWithSpace(s string) bool {
	return strings.HasSuffix(s, " ") || strings.HasSuffix(s, "\n")
}

// Transform applies text-transform.
func Transform(s, transform string, lang language.Tag) string {
	switch transform {
	case "uppercase":
		return cases.Upper(lang).String(s)
	case "lowercase":
		return cases.Lower(lang).String(s)
	case "capitalize":
		return cases.Title(lang, cases.NoLower).String(s)
	}
	return s
}

// ApplyHyphens prepares s for line breaking under the hyphens property:
// none drops soft hyphens, auto adds them with h.
func ApplyHyphens(s, hyphens string, h *Hyphenator) string {
	switch hyphens {
	case "none":
		return strings.ReplaceAll(s, SoftHyphen, "")
	case "auto":
		return h.Hyphenate(s)
	}
	return s
}

// Segment is a piece of text that is not broken inside, followed by a
// break opportunity.
type Segment struct {
	Text string
	// Space is white space after Text. It hangs at the end of a line.
	Space string
	// Hyphen is set when breaking after the segment shows a hyphen.
	Hyphen bool
	// Mandatory is set for preserved newlines.
	Mandatory bool
}

// Segments splits processed text at its break opportunities: after spaces,
// after hyphens that follow a letter, at soft hyphens and at preserved
// newlines. When ws does not wrap only newlines split. breakAll allows a
// break between any two letters (word-break: break-all).
func Segments(s string, ws style.WhiteSpace, breakAll bool) []Segment {
	var (
		out  []Segment
		cur  strings.Builder
		prev rune
	)
	wraps := ws.Wraps()
	emit := func(space string, hyphen, mandatory bool) {
		out = append(out, Segment{Text: cur.String(), Space: space, Hyphen: hyphen, Mandatory: mandatory})
		cur.Reset()
	}
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '\n' && !ws.Collapses() || r == '\n' && ws == style.WhiteSpacePreLine:
			emit("", false, true)
			prev = r
			i += size
			continue
		case r == ' ' && wraps:
			j := i
			for j < len(s) && s[j] == ' ' {
				j++
			}
			emit(s[i:j], false, false)
			prev = ' '
			i = j
			continue
		case string(r) == SoftHyphen:
			if wraps {
				emit("", true, false)
			}
			i += size
			continue
		}
		if breakAll && wraps && cur.Len() > 0 && unicode.IsLetter(r) && unicode.IsLetter(prev) {
			emit("", false, false)
		}
		cur.WriteRune(r)
		i += size
		if wraps && r == '-' && unicode.IsLetter(prev) && i < len(s) {
			emit("", false, false)
		}
		prev = r
	}
	if cur.Len() > 0 || len(out) == 0 {
		emit("", false, false)
	}
	return out
}
