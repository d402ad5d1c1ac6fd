package style

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"folio/css"
)

var errInvalid = errors.New("invalid value")

// Unit of a Length. Absolute units are converted to Px when parsed.
type Unit uint8

const (
	Px Unit = iota
	Em
	Rem
	Ex
	Ch
	Percent
	Vw
	Vh
	Vmin
	Vmax
	// Number is a unitless multiplier (line-height).
	Number
	Auto
	None
	Normal
)

var unitNames = [...]string{
	Px: "px", Em: "em", Rem: "rem", Ex: "ex", Ch: "ch", Percent: "%",
	Vw: "vw", Vh: "vh", Vmin: "vmin", Vmax: "vmax",
}

// absolute units in px
var absoluteUnits = map[string]float64{
	"px": 1,
	"pt": 4.0 / 3.0,
	"pc": 16,
	"in": 96,
	"cm": 96 / 2.54,
	"mm": 96 / 25.4,
	"q":  96 / 101.6,
}

var relativeUnits = map[string]Unit{
	"em": Em, "rem": Rem, "ex": Ex, "ch": Ch,
	"vw": Vw, "vh": Vh, "vmin": Vmin, "vmax": Vmax,
}

// Length is a CSS length, percentage, number or one of the keywords auto,
// none and normal.
type Length struct {
	Value float64
	Unit  Unit
}

// Convenience constructors.
func PxLength(v float64) Length { return Length{Value: v, Unit: Px} }
func Pct(v float64) Length      { return Length{Value: v, Unit: Percent} }

var (
	AutoLength   = Length{Unit: Auto}
	NoneLength   = Length{Unit: None}
	NormalLength = Length{Unit: Normal}
)

// IsAuto reports the auto keyword.
func (l Length) IsAuto() bool { return l.Unit == Auto }

// IsKeyword reports auto, none or normal.
func (l Length) IsKeyword() bool { return l.Unit >= Auto }

func (l Length) String() string {
	switch l.Unit {
	case Auto:
		return "auto"
	case None:
		return "none"
	case Normal:
		return "normal"
	case Number:
		return formatFloat(l.Value)
	}
	if l.Value == 0 && l.Unit == Px {
		return "0"
	}
	return formatFloat(l.Value) + unitNames[l.Unit]
}

// Basis carries what relative lengths are resolved against.
type Basis struct {
	FontSize       float64
	RootFontSize   float64
	Percent        float64 // reference length for percentages
	ViewportWidth  float64
	ViewportHeight float64
}

// ToPx resolves l. Keywords resolve to 0; callers handle auto/none/normal
// before asking for pixels.
func (l Length) ToPx(b Basis) float64 {
	switch l.Unit {
	case Px:
		return l.Value
	case Em:
		return l.Value * b.FontSize
	case Rem:
		return l.Value * b.RootFontSize
	case Ex, Ch:
		return l.Value * b.FontSize / 2
	case Percent:
		return l.Value * b.Percent / 100
	case Vw:
		return l.Value * b.ViewportWidth / 100
	case Vh:
		return l.Value * b.ViewportHeight / 100
	case Vmin:
		return l.Value * math.Min(b.ViewportWidth, b.ViewportHeight) / 100
	case Vmax:
		return l.Value * math.Max(b.ViewportWidth, b.ViewportHeight) / 100
	case Number:
		return l.Value * b.FontSize
	}
	return 0
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*10000)/10000, 'f', -1, 64)
}

type lengthOpts uint8

const (
	allowPercent lengthOpts = 1 << iota
	allowNumber
	allowAuto
	allowNone
	allowNormal
	nonNegative
)

// single returns the only meaningful token of a value.
func single(toks []css.Token) (css.Token, error) {
	toks = css.Compact(toks)
	if len(toks) != 1 {
		return css.Token{}, errInvalid
	}
	return toks[0], nil
}

func parseLengthToken(t css.Token, opts lengthOpts) (Length, error) {
	switch t.Kind {
	case css.Ident:
		switch {
		case opts&allowAuto != 0 && t.IsIdent("auto"):
			return AutoLength, nil
		case opts&allowNone != 0 && t.IsIdent("none"):
			return NoneLength, nil
		case opts&allowNormal != 0 && t.IsIdent("normal"):
			return NormalLength, nil
		}
		return Length{}, errInvalid
	case css.Number, css.Percentage, css.Dimension:
	default:
		return Length{}, errInvalid
	}
	v, unit, ok := t.Numeric()
	if !ok {
		return Length{}, errInvalid
	}
	if opts&nonNegative != 0 && v < 0 {
		return Length{}, fmt.Errorf("negative value %s", t.Text)
	}
	var l Length
	switch t.Kind {
	case css.Number:
		switch {
		case opts&allowNumber != 0:
			l = Length{Value: v, Unit: Number}
		case v == 0:
			l = PxLength(0)
		default:
			return Length{}, fmt.Errorf("missing unit in %s", t.Text)
		}
	case css.Percentage:
		if opts&allowPercent == 0 {
			return Length{}, errInvalid
		}
		l = Pct(v)
	default:
		if f, ok := absoluteUnits[unit]; ok {
			l = PxLength(v * f)
		} else if u, ok := relativeUnits[unit]; ok {
			l = Length{Value: v, Unit: u}
		} else {
			return Length{}, fmt.Errorf("unknown unit %q", unit)
		}
	}
	return l, nil
}

func parseLength(opts lengthOpts) func([]css.Token) (Length, error) {
	return func(toks []css.Token) (Length, error) {
		t, err := single(toks)
		if err != nil {
			return Length{}, err
		}
		return parseLengthToken(t, opts)
	}
}

// Numeric is a plain number such as opacity or flex-grow.
type Numeric float64

func (n Numeric) String() string { return formatFloat(float64(n)) }

func parseNumeric(min, max float64, clamp bool) func([]css.Token) (Numeric, error) {
	return func(toks []css.Token) (Numeric, error) {
		t, err := single(toks)
		if err != nil {
			return 0, err
		}
		v, unit, ok := t.Numeric()
		if !ok || (unit != "" && unit != "%") {
			return 0, errInvalid
		}
		if unit == "%" {
			v /= 100
		}
		if v < min || v > max {
			if !clamp {
				return 0, fmt.Errorf("%s out of range", t.Text)
			}
			v = math.Max(min, math.Min(max, v))
		}
		return Numeric(v), nil
	}
}

// Integer is an integer valued property (orphans, order).
type Integer int

func (i Integer) String() string { return strconv.Itoa(int(i)) }

func parseInteger(min int) func([]css.Token) (Integer, error) {
	return func(toks []css.Token) (Integer, error) {
		t, err := single(toks)
		if err != nil {
			return 0, err
		}
		if t.Kind != css.Number {
			return 0, errInvalid
		}
		v, err := strconv.Atoi(t.Text)
		if err != nil || v < min {
			return 0, errInvalid
		}
		return Integer(v), nil
	}
}

// Raw keeps the normalized text of values the engine stores but does not
// interpret, such as background-position.
type Raw string

func (r Raw) String() string { return string(r) }

func parseRaw(toks []css.Token) (Raw, error) {
	s := css.Normalize(toks)
	if s == "" {
		return "", errInvalid
	}
	return Raw(s), nil
}

// keyword builds a parser accepting one of the given identifiers.
func keyword[V ~string](allowed ...V) func([]css.Token) (V, error) {
	return func(toks []css.Token) (V, error) {
		t, err := single(toks)
		if err != nil {
			return "", err
		}
		if t.Kind == css.Ident {
			for _, a := range allowed {
				if strings.EqualFold(t.Text, string(a)) {
					return a, nil
				}
			}
		}
		return "", fmt.Errorf("unexpected %q", t.Text)
	}
}

func formatKeyword[V ~string](v V) string { return string(v) }

// funcArgs returns the tokens between toks[i] (a Function or LeftParen
// token) and its closing parenthesis, and the index after it.
func funcArgs(toks []css.Token, i int) ([]css.Token, int) {
	depth := 0
	for j := i; j < len(toks); j++ {
		switch toks[j].Kind {
		case css.Function, css.LeftParen:
			depth++
		case css.RightParen:
			depth--
			if depth == 0 {
				return toks[i+1 : j], j + 1
			}
		}
	}
	return toks[i+1:], len(toks)
}

// components splits a value into top-level components separated by
// whitespace; functions stay in one piece.
func components(toks []css.Token) [][]css.Token {
	var out [][]css.Token
	toks = css.Trim(toks)
	for i := 0; i < len(toks); {
		t := toks[i]
		switch {
		case t.IsSpace():
			i++
		case t.Kind == css.Function || t.Kind == css.LeftParen:
			_, next := funcArgs(toks, i)
			out = append(out, toks[i:next])
			i = next
		default:
			out = append(out, toks[i:i+1])
			i++
		}
	}
	return out
}

var initialTokens = []css.Token{{Kind: css.Ident, Text: "initial"}}
