package style

import (
	"strconv"
	"strings"

	"folio/css"
	"folio/css/rules"
	"folio/dom"
)

func hint(name, value string) rules.Declaration {
	return rules.Declaration{Name: name, Value: css.TokenizeString(value)}
}

// htmlLength reads a legacy dimension attribute: a non-negative number,
// optionally followed by %, with trailing garbage ignored.
func htmlLength(v string) (string, bool) {
	v = strings.TrimSpace(v)
	end := 0
	for end < len(v) && (v[end] >= '0' && v[end] <= '9' || v[end] == '.') {
		end++
	}
	if end == 0 {
		return "", false
	}
	n, err := strconv.ParseFloat(v[:end], 64)
	if err != nil {
		return "", false
	}
	if end < len(v) && v[end] == '%' {
		return formatFloat(n) + "%", true
	}
	return formatFloat(n) + "px", true
}

// htmlColor reads a legacy color attribute, accepting hex digits without
// the leading #.
func htmlColor(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	if _, err := ParseColor(css.TokenizeString(v)); err == nil {
		return v, true
	}
	if _, err := ParseColor(css.TokenizeString("#" + v)); err == nil {
		return "#" + v, true
	}
	return "", false
}

var legacyFontSizes = [...]string{"x-small", "x-small", "small", "medium", "large", "x-large", "xx-large", "xxx-large"}

func htmlFontSize(v string) (string, bool) {
	v = strings.TrimSpace(v)
	rel := strings.HasPrefix(v, "+") || strings.HasPrefix(v, "-")
	n, err := strconv.Atoi(v)
	if err != nil {
		return "", false
	}
	if rel {
		n += 3
	}
	n = max(1, min(7, n))
	return legacyFontSizes[n], true
}

var (
	widthHint  = map[string]bool{"table": true, "td": true, "th": true, "img": true, "hr": true, "col": true, "iframe": true, "object": true, "embed": true, "video": true, "canvas": true}
	heightHint = map[string]bool{"table": true, "td": true, "th": true, "tr": true, "img": true, "iframe": true, "object": true, "embed": true, "video": true, "canvas": true}
	colorHint  = map[string]bool{"body": true, "table": true, "tr": true, "td": true, "th": true}
	alignText  = map[string]bool{"p": true, "div": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "td": true, "th": true, "tr": true, "caption": true}
	spaceHint  = map[string]bool{"img": true, "object": true, "embed": true}
)

// presentationalHints translates non-CSS attributes into declarations of
// the presentation tier.
func (c *Computer) presentationalHints(el *dom.Node) []rules.Declaration {
	switch el.Namespace {
	case dom.XHTMLNamespace:
		return htmlHints(el)
	case dom.SVGNamespace:
		return svgHints(c.reg, el)
	}
	return nil
}

func htmlHints(el *dom.Node) []rules.Declaration {
	var out []rules.Declaration
	name := strings.ToLower(el.Name)
	attr := el.Attr

	if _, ok := attr("hidden"); ok {
		out = append(out, hint("display", "none"))
	}
	if v, ok := attr("dir"); ok {
		if v = strings.ToLower(strings.TrimSpace(v)); v == "ltr" || v == "rtl" {
			out = append(out, hint("direction", v))
		}
	}
	if v, ok := attr("bgcolor"); ok && colorHint[name] {
		if col, ok := htmlColor(v); ok {
			out = append(out, hint("background-color", col))
		}
	}
	if v, ok := attr("text"); ok && name == "body" {
		if col, ok := htmlColor(v); ok {
			out = append(out, hint("color", col))
		}
	}
	if v, ok := attr("width"); ok && widthHint[name] {
		if l, ok := htmlLength(v); ok {
			out = append(out, hint("width", l))
		}
	}
	if v, ok := attr("height"); ok && heightHint[name] {
		if l, ok := htmlLength(v); ok {
			out = append(out, hint("height", l))
		}
	}
	if v, ok := attr("align"); ok {
		v = strings.ToLower(strings.TrimSpace(v))
		switch {
		case alignText[name] && (v == "left" || v == "right" || v == "center" || v == "justify"):
			out = append(out, hint("text-align", v))
		case name == "table" && v == "center":
			out = append(out, hint("margin-left", "auto"), hint("margin-right", "auto"))
		case (name == "table" || name == "img") && (v == "left" || v == "right"):
			out = append(out, hint("float", v))
		case name == "img" && (v == "top" || v == "middle" || v == "bottom"):
			out = append(out, hint("vertical-align", v))
		}
	}
	if v, ok := attr("valign"); ok {
		switch v = strings.ToLower(strings.TrimSpace(v)); v {
		case "top", "middle", "bottom", "baseline":
			out = append(out, hint("vertical-align", v))
		}
	}
	if _, ok := attr("nowrap"); ok && (name == "td" || name == "th") {
		out = append(out, hint("white-space", "nowrap"))
	}
	if v, ok := attr("border"); ok && (name == "table" || name == "img") {
		if l, ok := htmlLength(v); ok && !strings.HasSuffix(l, "%") {
			style := "solid"
			if name == "table" {
				style = "outset"
			}
			out = append(out, hint("border-width", l), hint("border-style", style))
		}
	}
	if spaceHint[name] {
		if v, ok := attr("hspace"); ok {
			if l, ok := htmlLength(v); ok {
				out = append(out, hint("margin-left", l), hint("margin-right", l))
			}
		}
		if v, ok := attr("vspace"); ok {
			if l, ok := htmlLength(v); ok {
				out = append(out, hint("margin-top", l), hint("margin-bottom", l))
			}
		}
	}
	if name == "font" {
		if v, ok := attr("color"); ok {
			if col, ok := htmlColor(v); ok {
				out = append(out, hint("color", col))
			}
		}
		if v, ok := attr("face"); ok && strings.TrimSpace(v) != "" {
			out = append(out, hint("font-family", v))
		}
		if v, ok := attr("size"); ok {
			if s, ok := htmlFontSize(v); ok {
				out = append(out, hint("font-size", s))
			}
		}
	}
	return out
}

// attributes whose unitless numbers are user units
var svgUserUnits = map[string]bool{"width": true, "height": true, "font-size": true, "letter-spacing": true, "word-spacing": true}

// svgHints maps presentation attributes onto properties. width and height
// are only properties of the outer svg element and of image.
func svgHints(reg *Registry, el *dom.Node) []rules.Declaration {
	var out []rules.Declaration
	for _, a := range el.Attrs {
		if a.Namespace != "" {
			continue
		}
		v := strings.TrimSpace(a.Value)
		if svgUserUnits[a.Name] {
			if _, err := strconv.ParseFloat(v, 64); err == nil {
				v += "px"
			}
		}
		switch a.Name {
		case "width", "height":
			if el.Name == "svg" || el.Name == "image" {
				out = append(out, hint(a.Name, v))
			}
			continue
		}
		if r := reg.Lookup(a.Name); !r.Is(Bogus) && r.Is(PresentationAttribute) {
			out = append(out, hint(a.Name, v))
		}
	}
	return out
}
