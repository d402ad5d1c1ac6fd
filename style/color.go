package style

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"folio/css"
)

// Color is an sRGB color with straight alpha, or the currentcolor keyword.
type Color struct {
	R, G, B, A uint8
	Current    bool
}

var (
	Black        = Color{A: 255}
	Transparent  = Color{}
	CurrentColor = Color{Current: true}
)

// RGBA converts to the standard library color type. currentcolor must be
// resolved first with Resolve.
func (c Color) RGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Resolve substitutes currentcolor with cur.
func (c Color) Resolve(cur Color) Color {
	if c.Current {
		return cur
	}
	return c
}

// IsTransparent reports a fully transparent color.
func (c Color) IsTransparent() bool { return !c.Current && c.A == 0 }

func (c Color) String() string {
	switch {
	case c.Current:
		return "currentcolor"
	case c == Transparent:
		return "transparent"
	case c.A == 255:
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, formatFloat(float64(c.A)/255))
}

// ParseColor parses a CSS color value.
func ParseColor(toks []css.Token) (Color, error) {
	toks = css.Trim(toks)
	if len(toks) == 0 {
		return Color{}, errInvalid
	}
	c, next, err := parseColorAt(toks, 0)
	if err != nil {
		return Color{}, err
	}
	if len(css.Compact(toks[next:])) != 0 {
		return Color{}, errInvalid
	}
	return c, nil
}

// parseColorAt parses a color starting at toks[i] and returns the index
// after it.
func parseColorAt(toks []css.Token, i int) (Color, int, error) {
	t := toks[i]
	switch t.Kind {
	case css.Hash:
		c, ok := parseHex(t.HashName())
		if !ok {
			return Color{}, 0, fmt.Errorf("bad hex color %s", t.Text)
		}
		return c, i + 1, nil
	case css.Ident:
		name := t.Lower()
		switch name {
		case "transparent":
			return Transparent, i + 1, nil
		case "currentcolor":
			return CurrentColor, i + 1, nil
		}
		if rgba, ok := colornames.Map[name]; ok {
			return Color{R: rgba.R, G: rgba.G, B: rgba.B, A: 255}, i + 1, nil
		}
		return Color{}, 0, fmt.Errorf("unknown color %q", t.Text)
	case css.Function:
		args, next := funcArgs(toks, i)
		var (
			c   Color
			err error
		)
		switch t.FuncName() {
		case "rgb", "rgba":
			c, err = parseRGB(args)
		case "hsl", "hsla":
			c, err = parseHSL(args)
		default:
			err = fmt.Errorf("unsupported color function %s", t.Text)
		}
		return c, next, err
	}
	return Color{}, 0, errInvalid
}

func parseHex(h string) (Color, bool) {
	for _, r := range h {
		if !isHexRune(r) {
			return Color{}, false
		}
	}
	x := func(s string) uint8 {
		v, _ := strconv.ParseUint(s, 16, 8)
		return uint8(v)
	}
	switch len(h) {
	case 3, 4:
		c := Color{R: x(h[0:1]) * 17, G: x(h[1:2]) * 17, B: x(h[2:3]) * 17, A: 255}
		if len(h) == 4 {
			c.A = x(h[3:4]) * 17
		}
		return c, true
	case 6, 8:
		c := Color{R: x(h[0:2]), G: x(h[2:4]), B: x(h[4:6]), A: 255}
		if len(h) == 8 {
			c.A = x(h[6:8])
		}
		return c, true
	}
	return Color{}, false
}

func isHexRune(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F'
}

// colorArgs accepts both the legacy comma syntax and the space separated
// syntax with an optional "/ alpha".
func colorArgs(args []css.Token) ([]css.Token, error) {
	var out []css.Token
	for _, t := range css.Compact(args) {
		if t.Kind == css.Comma || t.IsDelim("/") {
			continue
		}
		out = append(out, t)
	}
	if len(out) != 3 && len(out) != 4 {
		return nil, errInvalid
	}
	return out, nil
}

func alphaArg(args []css.Token) (uint8, error) {
	if len(args) < 4 {
		return 255, nil
	}
	v, unit, ok := args[3].Numeric()
	if !ok || (unit != "" && unit != "%") {
		return 0, errInvalid
	}
	if unit == "%" {
		v /= 100
	}
	return clampByte(v * 255), nil
}

func clampByte(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}

func parseRGB(args []css.Token) (Color, error) {
	args, err := colorArgs(args)
	if err != nil {
		return Color{}, err
	}
	var ch [3]uint8
	for i := range 3 {
		v, unit, ok := args[i].Numeric()
		if !ok || (unit != "" && unit != "%") {
			return Color{}, errInvalid
		}
		if unit == "%" {
			v = v * 255 / 100
		}
		ch[i] = clampByte(v)
	}
	a, err := alphaArg(args)
	if err != nil {
		return Color{}, err
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: a}, nil
}

func parseHSL(args []css.Token) (Color, error) {
	args, err := colorArgs(args)
	if err != nil {
		return Color{}, err
	}
	h, unit, ok := args[0].Numeric()
	if !ok {
		return Color{}, errInvalid
	}
	switch unit {
	case "", "deg":
	case "turn":
		h *= 360
	case "rad":
		h = h * 180 / math.Pi
	default:
		return Color{}, errInvalid
	}
	s, su, ok1 := args[1].Numeric()
	l, lu, ok2 := args[2].Numeric()
	if !ok1 || !ok2 || (su != "%" && su != "") || (lu != "%" && lu != "") {
		return Color{}, errInvalid
	}
	a, err := alphaArg(args)
	if err != nil {
		return Color{}, err
	}
	r, g, b := hslToRGB(math.Mod(math.Mod(h, 360)+360, 360)/360, s/100, l/100)
	return Color{R: clampByte(r * 255), G: clampByte(g * 255), B: clampByte(b * 255), A: a}, nil
}

func hslToRGB(h, s, l float64) (float64, float64, float64) {
	s = math.Max(0, math.Min(1, s))
	l = math.Max(0, math.Min(1, l))
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	hue := func(t float64) float64 {
		switch {
		case t < 0:
			t++
		case t > 1:
			t--
		}
		switch {
		case t < 1.0/6:
			return p + (q-p)*6*t
		case t < 0.5:
			return q
		case t < 2.0/3:
			return p + (q-p)*(2.0/3-t)*6
		}
		return p
	}
	return hue(h + 1.0/3), hue(h), hue(h - 1.0/3)
}

// PaintKind distinguishes SVG paint values.
type PaintKind uint8

const (
	PaintNone PaintKind = iota
	PaintColor
	PaintURL
	PaintContextFill
	PaintContextStroke
)

// Paint is the value of the SVG fill and stroke properties. Fallback is
// used when a URL reference cannot be resolved.
type Paint struct {
	Kind     PaintKind
	Color    Color
	URL      string
	Fallback Color
}

func (p Paint) String() string {
	switch p.Kind {
	case PaintColor:
		return p.Color.String()
	case PaintURL:
		s := `url("` + strings.ReplaceAll(p.URL, `"`, `\"`) + `")`
		if p.Fallback != Transparent {
			s += " " + p.Fallback.String()
		}
		return s
	case PaintContextFill:
		return "context-fill"
	case PaintContextStroke:
		return "context-stroke"
	}
	return "none"
}

func parsePaint(toks []css.Token) (Paint, error) {
	toks = css.Compact(toks)
	if len(toks) == 0 {
		return Paint{}, errInvalid
	}
	t := toks[0]
	switch {
	case t.IsIdent("none") && len(toks) == 1:
		return Paint{}, nil
	case t.IsIdent("context-fill") && len(toks) == 1:
		return Paint{Kind: PaintContextFill}, nil
	case t.IsIdent("context-stroke") && len(toks) == 1:
		return Paint{Kind: PaintContextStroke}, nil
	case t.Kind == css.URL:
		p := Paint{Kind: PaintURL, URL: t.URLValue()}
		if len(toks) > 1 {
			if toks[1].IsIdent("none") && len(toks) == 2 {
				return p, nil
			}
			c, err := ParseColor(toks[1:])
			if err != nil {
				return Paint{}, err
			}
			p.Fallback = c
		}
		return p, nil
	}
	c, err := ParseColor(toks)
	if err != nil {
		return Paint{}, err
	}
	return Paint{Kind: PaintColor, Color: c}, nil
}
