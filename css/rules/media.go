package rules

import (
	"strings"

	"folio/css"
)

// Device describes the rendering target media queries are evaluated
// against. Sizes are in CSS pixels.
type Device struct {
	Type   string
	Width  float64
	Height float64
}

// PrintDevice returns a print device for the given page size.
func PrintDevice(width, height float64) Device {
	return Device{Type: "print", Width: width, Height: height}
}

// MediaQueryList is a comma separated list of queries. It matches when any
// query matches; an empty list matches everything.
type MediaQueryList []MediaQuery

// MediaQuery represents a parsed media query.
type MediaQuery struct {
	Raw      string         // original query text
	Only     bool           // "only" modifier
	Negated  bool           // "not" modifier, applies to the whole query
	Type     string         // media type, "" when omitted
	Features []MediaFeature // conditions joined by "and"
	Invalid  bool           // query did not parse and matches nothing
}

// MediaFeature is a single "(name: value)" condition.
type MediaFeature struct {
	Name  string
	Value []css.Token
}

// Evaluate returns true if any query of the list matches dev.
func (l MediaQueryList) Evaluate(dev Device) bool {
	if len(l) == 0 {
		return true
	}
	for _, q := range l {
		if q.Evaluate(dev) {
			return true
		}
	}
	return false
}

func (l MediaQueryList) String() string {
	parts := make([]string, len(l))
	for i, q := range l {
		parts[i] = q.Raw
	}
	return strings.Join(parts, ", ")
}

// Evaluate returns true if this media query matches dev.
func (mq MediaQuery) Evaluate(dev Device) bool {
	if mq.Invalid {
		return false
	}
	var matches bool
	switch strings.ToLower(mq.Type) {
	case "", "all":
		matches = true
	default:
		matches = strings.EqualFold(mq.Type, dev.Type)
	}
	for _, f := range mq.Features {
		if !matches {
			break
		}
		matches = f.Evaluate(dev)
	}
	if mq.Negated {
		return !matches
	}
	return matches
}

// Evaluate returns true if the feature holds for dev. Unknown features
// never match.
func (f MediaFeature) Evaluate(dev Device) bool {
	name := f.Name
	cmp := 0
	switch {
	case strings.HasPrefix(name, "min-"):
		name, cmp = name[4:], 1
	case strings.HasPrefix(name, "max-"):
		name, cmp = name[4:], -1
	}
	switch name {
	case "width", "height":
		actual := dev.Width
		if name == "height" {
			actual = dev.Height
		}
		if len(f.Value) == 0 {
			return cmp == 0 && actual > 0
		}
		want, ok := mediaLength(f.Value)
		if !ok {
			return false
		}
		switch cmp {
		case 1:
			return actual >= want
		case -1:
			return actual <= want
		}
		return actual == want
	case "orientation":
		if cmp != 0 {
			return false
		}
		portrait := dev.Height >= dev.Width
		switch strings.ToLower(css.Normalize(f.Value)) {
		case "portrait":
			return portrait
		case "landscape":
			return !portrait
		}
		return false
	case "color":
		return cmp <= 0
	case "monochrome", "grid":
		return cmp >= 0 && len(f.Value) > 0 && css.Normalize(f.Value) == "0"
	}
	return false
}

// mediaLength converts a feature value to pixels. Relative units use the
// initial font size.
func mediaLength(toks []css.Token) (float64, bool) {
	toks = css.Compact(toks)
	if len(toks) != 1 {
		return 0, false
	}
	v, unit, ok := toks[0].Numeric()
	if !ok {
		return 0, false
	}
	switch unit {
	case "":
		return v, v == 0
	case "px":
		return v, true
	case "pt":
		return v * 96 / 72, true
	case "pc":
		return v * 16, true
	case "in":
		return v * 96, true
	case "cm":
		return v * 96 / 2.54, true
	case "mm":
		return v * 96 / 25.4, true
	case "q":
		return v * 96 / 101.6, true
	case "em", "rem":
		return v * 16, true
	}
	return 0, false
}

// ParseMediaQueryList parses a media query list from prelude tokens. A query
// that fails to parse is kept as an invalid query matching nothing.
func ParseMediaQueryList(toks []css.Token) (MediaQueryList, []string) {
	toks = css.Trim(toks)
	if len(toks) == 0 {
		return nil, nil
	}
	var (
		list     MediaQueryList
		warnings []string
	)
	for _, part := range css.SplitTopLevel(toks, css.Comma) {
		mq, ok := parseMediaQuery(part)
		if !ok {
			warnings = append(warnings, "invalid media query: "+mq.Raw)
		}
		list = append(list, mq)
	}
	return list, warnings
}

func parseMediaQuery(toks []css.Token) (MediaQuery, bool) {
	mq := MediaQuery{Raw: css.Normalize(toks)}
	toks = css.Compact(toks)
	i := 0
	if i < len(toks) && toks[i].Kind == css.Ident {
		switch strings.ToLower(toks[i].Text) {
		case "not":
			mq.Negated = true
			i++
		case "only":
			mq.Only = true
			i++
		}
	}
	expectAnd := false
	if i < len(toks) && toks[i].Kind == css.Ident && !toks[i].IsIdent("and") {
		mq.Type = strings.ToLower(toks[i].Text)
		i++
		expectAnd = true
	}
	for i < len(toks) {
		if expectAnd {
			if !toks[i].IsIdent("and") {
				mq.Invalid = true
				return mq, false
			}
			i++
		}
		if i >= len(toks) || toks[i].Kind != css.LeftParen {
			mq.Invalid = true
			return mq, false
		}
		end := i + 1
		for end < len(toks) && toks[end].Kind != css.RightParen {
			end++
		}
		f, ok := parseMediaFeature(toks[i+1 : end])
		if !ok {
			mq.Invalid = true
			return mq, false
		}
		mq.Features = append(mq.Features, f)
		i = end + 1
		expectAnd = true
	}
	if mq.Type == "" && len(mq.Features) == 0 {
		mq.Invalid = true
		return mq, false
	}
	return mq, true
}

func parseMediaFeature(toks []css.Token) (MediaFeature, bool) {
	if len(toks) == 0 || toks[0].Kind != css.Ident {
		return MediaFeature{}, false
	}
	f := MediaFeature{Name: strings.ToLower(toks[0].Text)}
	if len(toks) == 1 {
		return f, true
	}
	if toks[1].Kind != css.Colon || len(toks) < 3 {
		return MediaFeature{}, false
	}
	f.Value = toks[2:]
	return f, true
}
