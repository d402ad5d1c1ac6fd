package style

import (
	"fmt"
	"slices"

	"folio/css"
)

func shorthand(name string, longhands []string, expand func([]css.Token) ([]Longhand, error)) *Registration {
	return &Registration{Name: name, Flags: Shorthand, Longhands: longhands, expand: expand}
}

// fill returns one declaration per longhand, resetting the ones set does
// not mention.
func fill(longhands []string, set map[string][]css.Token) []Longhand {
	out := make([]Longhand, 0, len(longhands))
	for _, name := range longhands {
		v, ok := set[name]
		if !ok {
			v = initialTokens
		}
		out = append(out, Longhand{Name: name, Value: v})
	}
	return out
}

// accepts reports whether the longhand name parses toks.
func (r *Registry) accepts(name string, toks []css.Token) bool {
	_, err := r.Lookup(name).Parse(toks)
	return err == nil
}

// sides expands the 1 to 4 value box syntax.
func sides(r *Registry, name string, longhands [4]string) *Registration {
	return shorthand(name, longhands[:], func(toks []css.Token) ([]Longhand, error) {
		c := components(toks)
		if len(c) == 0 || len(c) > 4 {
			return nil, fmt.Errorf("%s takes 1 to 4 values", name)
		}
		// top right bottom left, with the usual fallbacks
		idx := [][4]int{{0, 0, 0, 0}, {0, 1, 0, 1}, {0, 1, 2, 1}, {0, 1, 2, 3}}[len(c)-1]
		out := make([]Longhand, 4)
		for i, lh := range longhands {
			v := c[idx[i]]
			if !r.accepts(lh, v) {
				return nil, fmt.Errorf("%s: invalid value %q", name, css.Normalize(v))
			}
			out[i] = Longhand{Name: lh, Value: v}
		}
		return out, nil
	})
}

func edgeNames(prefix, suffix string) [4]string {
	return [4]string{prefix + "top" + suffix, prefix + "right" + suffix, prefix + "bottom" + suffix, prefix + "left" + suffix}
}

// anyOrder matches each component against the longhands in turn, each
// longhand taking at most one component.
func anyOrder(r *Registry, name string, longhands []string) func([]css.Token) (map[string][]css.Token, error) {
	return func(toks []css.Token) (map[string][]css.Token, error) {
		set := make(map[string][]css.Token, len(longhands))
		c := components(toks)
		if len(c) == 0 {
			return nil, errInvalid
		}
	next:
		for _, comp := range c {
			for _, lh := range longhands {
				if _, done := set[lh]; done {
					continue
				}
				if r.accepts(lh, comp) {
					set[lh] = comp
					continue next
				}
			}
			return nil, fmt.Errorf("%s: unexpected %q", name, css.Normalize(comp))
		}
		return set, nil
	}
}

func borderSide(r *Registry, side string) *Registration {
	lhs := []string{"border-" + side + "-width", "border-" + side + "-style", "border-" + side + "-color"}
	match := anyOrder(r, "border-"+side, lhs)
	return shorthand("border-"+side, lhs, func(toks []css.Token) ([]Longhand, error) {
		set, err := match(toks)
		if err != nil {
			return nil, err
		}
		return fill(lhs, set), nil
	})
}

func border(r *Registry) *Registration {
	var all []string
	for _, kind := range []string{"-width", "-style", "-color"} {
		e := edgeNames("border-", kind)
		all = append(all, e[:]...)
	}
	match := anyOrder(r, "border", []string{"border-top-width", "border-top-style", "border-top-color"})
	return shorthand("border", all, func(toks []css.Token) ([]Longhand, error) {
		set, err := match(toks)
		if err != nil {
			return nil, err
		}
		out := make(map[string][]css.Token, len(all))
		for _, side := range []string{"top", "right", "bottom", "left"} {
			for _, kind := range []string{"width", "style", "color"} {
				if v, ok := set["border-top-"+kind]; ok {
					out["border-"+side+"-"+kind] = v
				}
			}
		}
		return fill(all, out), nil
	})
}

// borderRadius keeps the horizontal radii of the slash syntax.
func borderRadius(r *Registry) *Registration {
	s := sides(r, "border-radius", [4]string{
		"border-top-left-radius", "border-top-right-radius",
		"border-bottom-right-radius", "border-bottom-left-radius",
	})
	expand := s.expand
	s.expand = func(toks []css.Token) ([]Longhand, error) {
		for i, t := range toks {
			if t.IsDelim("/") {
				toks = toks[:i]
				break
			}
		}
		return expand(toks)
	}
	return s
}

var fontLonghands = []string{"font-style", "font-variant", "font-weight", "font-stretch", "font-size", "line-height", "font-family"}

func font(r *Registry) *Registration {
	return shorthand("font", fontLonghands, func(toks []css.Token) ([]Longhand, error) {
		c := components(toks)
		set := make(map[string][]css.Token)
		i := 0
	prefix:
		for ; i < len(c); i++ {
			if len(c[i]) == 1 && c[i][0].IsIdent("normal") {
				continue
			}
			for _, lh := range fontLonghands[:4] {
				if _, done := set[lh]; !done && r.accepts(lh, c[i]) {
					set[lh] = c[i]
					continue prefix
				}
			}
			break
		}
		if i >= len(c) || !r.accepts("font-size", c[i]) {
			return nil, fmt.Errorf("font: missing font-size")
		}
		set["font-size"] = c[i]
		i++
		if i < len(c) && len(c[i]) == 1 && c[i][0].IsDelim("/") {
			if i+1 >= len(c) || !r.accepts("line-height", c[i+1]) {
				return nil, fmt.Errorf("font: invalid line-height")
			}
			set["line-height"] = c[i+1]
			i += 2
		}
		family := joinComponents(c[i:])
		if len(family) == 0 || !r.accepts("font-family", family) {
			return nil, fmt.Errorf("font: missing font-family")
		}
		set["font-family"] = family
		return fill(fontLonghands, set), nil
	})
}

func joinComponents(c [][]css.Token) []css.Token {
	var out []css.Token
	for i, comp := range c {
		if i > 0 {
			out = append(out, css.Token{Kind: css.Whitespace, Text: " "})
		}
		out = append(out, comp...)
	}
	return out
}

var backgroundLonghands = []string{
	"background-color", "background-image", "background-repeat", "background-position",
	"background-size", "background-attachment", "background-clip", "background-origin",
}

var (
	repeatKeywords   = []string{"repeat", "repeat-x", "repeat-y", "no-repeat", "space", "round"}
	positionKeywords = []string{"left", "right", "top", "bottom", "center"}
	sizeKeywords     = []string{"auto", "cover", "contain"}
	boxKeywords      = []string{"border-box", "padding-box", "content-box"}
)

func identIn(comp []css.Token, words []string) bool {
	return len(comp) == 1 && slices.ContainsFunc(words, comp[0].IsIdent)
}

func isLengthPercent(comp []css.Token) bool {
	if len(comp) != 1 {
		return false
	}
	_, err := parseLengthToken(comp[0], allowPercent)
	return err == nil
}

// background only interprets the last layer, which is the one carrying the
// color.
func background(r *Registry) *Registration {
	return shorthand("background", backgroundLonghands, func(toks []css.Token) ([]Longhand, error) {
		layers := css.SplitTopLevel(toks, css.Comma)
		c := components(layers[len(layers)-1])
		if len(c) == 0 {
			return nil, errInvalid
		}
		set := make(map[string][]css.Token)
		var repeat, position, size, boxes [][]css.Token
		for i := 0; i < len(c); i++ {
			comp := c[i]
			switch {
			case identIn(comp, repeatKeywords):
				repeat = append(repeat, comp)
			case identIn(comp, positionKeywords) || isLengthPercent(comp):
				position = append(position, comp)
			case len(comp) == 1 && comp[0].IsDelim("/"):
				for i+1 < len(c) && (identIn(c[i+1], sizeKeywords) || isLengthPercent(c[i+1])) && len(size) < 2 {
					size = append(size, c[i+1])
					i++
				}
				if len(size) == 0 || len(position) == 0 {
					return nil, fmt.Errorf("background: invalid size")
				}
			case identIn(comp, []string{"scroll", "fixed", "local"}):
				if _, dup := set["background-attachment"]; dup {
					return nil, errInvalid
				}
				set["background-attachment"] = comp
			case identIn(comp, boxKeywords):
				boxes = append(boxes, comp)
			case r.accepts("background-image", comp):
				if _, dup := set["background-image"]; dup {
					return nil, errInvalid
				}
				set["background-image"] = comp
			case r.accepts("background-color", comp):
				if _, dup := set["background-color"]; dup {
					return nil, errInvalid
				}
				set["background-color"] = comp
			default:
				return nil, fmt.Errorf("background: unexpected %q", css.Normalize(comp))
			}
		}
		if len(repeat) > 2 || len(position) > 4 || len(boxes) > 2 {
			return nil, errInvalid
		}
		if len(repeat) > 0 {
			set["background-repeat"] = joinComponents(repeat)
		}
		if len(position) > 0 {
			set["background-position"] = joinComponents(position)
		}
		if len(size) > 0 {
			set["background-size"] = joinComponents(size)
		}
		switch len(boxes) {
		case 1:
			set["background-origin"], set["background-clip"] = boxes[0], boxes[0]
		case 2:
			set["background-origin"], set["background-clip"] = boxes[0], boxes[1]
		}
		return fill(backgroundLonghands, set), nil
	})
}

var flexLonghands = []string{"flex-grow", "flex-shrink", "flex-basis"}

func flex(r *Registry) *Registration {
	return shorthand("flex", flexLonghands, func(toks []css.Token) ([]Longhand, error) {
		c := components(toks)
		if len(c) == 1 {
			switch {
			case c[0][0].IsIdent("none"):
				return flexValues("0", "0", "auto"), nil
			case c[0][0].IsIdent("auto"):
				return flexValues("1", "1", "auto"), nil
			}
		}
		if len(c) == 0 || len(c) > 3 {
			return nil, errInvalid
		}
		var nums [][]css.Token
		var basis []css.Token
		for _, comp := range c {
			switch {
			case len(comp) == 1 && comp[0].Kind == css.Number && len(nums) < 2:
				nums = append(nums, comp)
			case basis == nil && r.accepts("flex-basis", comp):
				basis = comp
			default:
				return nil, fmt.Errorf("flex: unexpected %q", css.Normalize(comp))
			}
		}
		set := map[string][]css.Token{
			"flex-shrink": css.TokenizeString("1"),
			"flex-basis":  css.TokenizeString("0%"),
		}
		if len(nums) > 0 {
			set["flex-grow"] = nums[0]
		} else {
			set["flex-grow"] = css.TokenizeString("1")
		}
		if len(nums) > 1 {
			set["flex-shrink"] = nums[1]
		}
		if basis != nil {
			set["flex-basis"] = basis
		}
		return fill(flexLonghands, set), nil
	})
}

func flexValues(grow, shrink, basis string) []Longhand {
	return []Longhand{
		{Name: "flex-grow", Value: css.TokenizeString(grow)},
		{Name: "flex-shrink", Value: css.TokenizeString(shrink)},
		{Name: "flex-basis", Value: css.TokenizeString(basis)},
	}
}

// anyOrderShorthand is a shorthand whose longhands may appear in any order
// and default to their initial values.
func anyOrderShorthand(r *Registry, name string, longhands []string) *Registration {
	match := anyOrder(r, name, longhands)
	return shorthand(name, longhands, func(toks []css.Token) ([]Longhand, error) {
		set, err := match(toks)
		if err != nil {
			return nil, err
		}
		return fill(longhands, set), nil
	})
}

func gap(r *Registry) *Registration {
	lhs := []string{"row-gap", "column-gap"}
	return shorthand("gap", lhs, func(toks []css.Token) ([]Longhand, error) {
		c := components(toks)
		if len(c) == 0 || len(c) > 2 {
			return nil, errInvalid
		}
		col := c[len(c)-1]
		if !r.accepts("row-gap", c[0]) || !r.accepts("column-gap", col) {
			return nil, errInvalid
		}
		return []Longhand{{Name: "row-gap", Value: c[0]}, {Name: "column-gap", Value: col}}, nil
	})
}

var listStyleLonghands = []string{"list-style-type", "list-style-position", "list-style-image"}

// listStyle resolves the ambiguous none: it sets whichever of type and
// image is not otherwise given.
func listStyle(r *Registry) *Registration {
	others := anyOrder(r, "list-style", listStyleLonghands)
	return shorthand("list-style", listStyleLonghands, func(toks []css.Token) ([]Longhand, error) {
		var rest [][]css.Token
		nones := 0
		for _, comp := range components(toks) {
			if len(comp) == 1 && comp[0].IsIdent("none") {
				nones++
				continue
			}
			rest = append(rest, comp)
		}
		set := map[string][]css.Token{}
		if len(rest) > 0 {
			var err error
			if set, err = others(joinComponents(rest)); err != nil {
				return nil, err
			}
		}
		none := css.TokenizeString("none")
		for _, lh := range []string{"list-style-type", "list-style-image"} {
			if _, ok := set[lh]; !ok && nones > 0 {
				set[lh] = none
				nones--
			}
		}
		if nones > 0 {
			return nil, fmt.Errorf("list-style: too many none values")
		}
		return fill(listStyleLonghands, set), nil
	})
}

// legacyBreak maps page-break-* values onto break-*.
func legacyBreak(name, target string, inside bool) *Registration {
	return shorthand(name, []string{target}, func(toks []css.Token) ([]Longhand, error) {
		t, err := single(toks)
		if err != nil {
			return nil, err
		}
		v := t.Lower()
		switch {
		case v == "auto" || v == "avoid":
		case !inside && v == "always":
			v = "page"
		case !inside && (v == "left" || v == "right"):
		default:
			return nil, fmt.Errorf("%s: unexpected %q", name, t.Text)
		}
		return []Longhand{{Name: target, Value: css.TokenizeString(v)}}, nil
	})
}

// all only takes CSS-wide keywords, which the cascade applies to each
// longhand without expanding.
func all(r *Registry) *Registration {
	var lhs []string
	for _, name := range r.longhands {
		if !r.byName[name].Is(AllExcluded) {
			lhs = append(lhs, name)
		}
	}
	return shorthand("all", lhs, func([]css.Token) ([]Longhand, error) {
		return nil, fmt.Errorf("all: only CSS-wide keywords are allowed")
	})
}

func shorthandRegistrations(r *Registry) []*Registration {
	return []*Registration{
		sides(r, "margin", edgeNames("margin-", "")),
		sides(r, "padding", edgeNames("padding-", "")),
		sides(r, "inset", edgeNames("", "")),
		sides(r, "border-width", edgeNames("border-", "-width")),
		sides(r, "border-style", edgeNames("border-", "-style")),
		sides(r, "border-color", edgeNames("border-", "-color")),
		borderRadius(r),
		border(r),
		borderSide(r, "top"),
		borderSide(r, "right"),
		borderSide(r, "bottom"),
		borderSide(r, "left"),
		font(r),
		background(r),
		flex(r),
		anyOrderShorthand(r, "flex-flow", []string{"flex-direction", "flex-wrap"}),
		gap(r),
		listStyle(r),
		anyOrderShorthand(r, "text-decoration", []string{"text-decoration-line", "text-decoration-style", "text-decoration-color"}),
		legacyBreak("page-break-before", "break-before", false),
		legacyBreak("page-break-after", "break-after", false),
		legacyBreak("page-break-inside", "break-inside", true),
		all(r),
	}
}
