package style

import (
	"fmt"
	"strconv"
	"strings"

	"folio/css"
)

// Display is the value of the display property.
type Display string

const (
	DisplayInline           Display = "inline"
	DisplayBlock            Display = "block"
	DisplayInlineBlock      Display = "inline-block"
	DisplayListItem         Display = "list-item"
	DisplayFlowRoot         Display = "flow-root"
	DisplayFlex             Display = "flex"
	DisplayInlineFlex       Display = "inline-flex"
	DisplayGrid             Display = "grid"
	DisplayInlineGrid       Display = "inline-grid"
	DisplayTable            Display = "table"
	DisplayInlineTable      Display = "inline-table"
	DisplayTableRowGroup    Display = "table-row-group"
	DisplayTableHeaderGroup Display = "table-header-group"
	DisplayTableFooterGroup Display = "table-footer-group"
	DisplayTableRow         Display = "table-row"
	DisplayTableCell        Display = "table-cell"
	DisplayTableColumnGroup Display = "table-column-group"
	DisplayTableColumn      Display = "table-column"
	DisplayTableCaption     Display = "table-caption"
	DisplayContents         Display = "contents"
	DisplayNone             Display = "none"
)

var displayValues = []Display{
	DisplayInline, DisplayBlock, DisplayInlineBlock, DisplayListItem, DisplayFlowRoot,
	DisplayFlex, DisplayInlineFlex, DisplayGrid, DisplayInlineGrid,
	DisplayTable, DisplayInlineTable, DisplayTableRowGroup, DisplayTableHeaderGroup,
	DisplayTableFooterGroup, DisplayTableRow, DisplayTableCell, DisplayTableColumnGroup,
	DisplayTableColumn, DisplayTableCaption, DisplayContents, DisplayNone,
}

// IsInlineLevel reports display types participating in an inline
// formatting context.
func (d Display) IsInlineLevel() bool {
	switch d {
	case DisplayInline, DisplayInlineBlock, DisplayInlineFlex, DisplayInlineGrid, DisplayInlineTable:
		return true
	}
	return false
}

// Outer is the outer display type: "inline" or "block". Table internals
// count as block level.
func (d Display) Outer() Display {
	if d.IsInlineLevel() {
		return DisplayInline
	}
	return DisplayBlock
}

// Blockify returns the block-level equivalent of an inline-level display.
func (d Display) Blockify() Display {
	switch d {
	case DisplayInline, DisplayInlineBlock, DisplayContents:
		return DisplayBlock
	case DisplayInlineFlex:
		return DisplayFlex
	case DisplayInlineGrid:
		return DisplayGrid
	case DisplayInlineTable:
		return DisplayTable
	}
	return d
}

type Position string

const (
	PositionStatic   Position = "static"
	PositionRelative Position = "relative"
	PositionAbsolute Position = "absolute"
	PositionFixed    Position = "fixed"
	PositionSticky   Position = "sticky"
)

type Float string

const (
	FloatNone  Float = "none"
	FloatLeft  Float = "left"
	FloatRight Float = "right"
)

type BoxSizing string

const (
	ContentBox BoxSizing = "content-box"
	BorderBox  BoxSizing = "border-box"
)

type TextAlign string

const (
	AlignStart   TextAlign = "start"
	AlignEnd     TextAlign = "end"
	AlignLeft    TextAlign = "left"
	AlignRight   TextAlign = "right"
	AlignCenter  TextAlign = "center"
	AlignJustify TextAlign = "justify"
)

type WhiteSpace string

const (
	WhiteSpaceNormal  WhiteSpace = "normal"
	WhiteSpacePre     WhiteSpace = "pre"
	WhiteSpaceNowrap  WhiteSpace = "nowrap"
	WhiteSpacePreWrap WhiteSpace = "pre-wrap"
	WhiteSpacePreLine WhiteSpace = "pre-line"
)

// Collapses reports whether runs of white space collapse.
func (w WhiteSpace) Collapses() bool {
	return w == WhiteSpaceNormal || w == WhiteSpaceNowrap || w == WhiteSpacePreLine
}

// Wraps reports whether lines may break at soft wrap opportunities.
func (w WhiteSpace) Wraps() bool {
	return w != WhiteSpacePre && w != WhiteSpaceNowrap
}

type FontStyle string

const (
	FontStyleNormal  FontStyle = "normal"
	FontStyleItalic  FontStyle = "italic"
	FontStyleOblique FontStyle = "oblique"
)

type BorderStyle string

const (
	BorderNone   BorderStyle = "none"
	BorderHidden BorderStyle = "hidden"
	BorderSolid  BorderStyle = "solid"
	BorderDotted BorderStyle = "dotted"
	BorderDashed BorderStyle = "dashed"
	BorderDouble BorderStyle = "double"
	BorderGroove BorderStyle = "groove"
	BorderRidge  BorderStyle = "ridge"
	BorderInset  BorderStyle = "inset"
	BorderOutset BorderStyle = "outset"
)

var borderStyles = []BorderStyle{
	BorderNone, BorderHidden, BorderSolid, BorderDotted, BorderDashed,
	BorderDouble, BorderGroove, BorderRidge, BorderInset, BorderOutset,
}

// Visible reports a style that paints and takes space.
func (s BorderStyle) Visible() bool { return s != BorderNone && s != BorderHidden }

type FlexDirection string

const (
	FlexRow           FlexDirection = "row"
	FlexRowReverse    FlexDirection = "row-reverse"
	FlexColumn        FlexDirection = "column"
	FlexColumnReverse FlexDirection = "column-reverse"
)

// IsColumn reports a vertical main axis.
func (d FlexDirection) IsColumn() bool { return d == FlexColumn || d == FlexColumnReverse }

// IsReverse reports a reversed main axis.
func (d FlexDirection) IsReverse() bool { return d == FlexRowReverse || d == FlexColumnReverse }

type FlexWrap string

const (
	NoWrap      FlexWrap = "nowrap"
	Wrap        FlexWrap = "wrap"
	WrapReverse FlexWrap = "wrap-reverse"
)

// Align covers justify-content, align-items, align-self and align-content.
type Align string

const (
	AlignAuto         Align = "auto"
	AlignNormal       Align = "normal"
	AlignStretch      Align = "stretch"
	AlignFlexStart    Align = "flex-start"
	AlignFlexEnd      Align = "flex-end"
	AlignCenterItems  Align = "center"
	AlignBaseline     Align = "baseline"
	AlignSpaceBetween Align = "space-between"
	AlignSpaceAround  Align = "space-around"
	AlignSpaceEvenly  Align = "space-evenly"
	AlignStartItems   Align = "start"
	AlignEndItems     Align = "end"
)

var (
	justifyValues = []Align{AlignNormal, AlignFlexStart, AlignFlexEnd, AlignCenterItems, AlignSpaceBetween,
		AlignSpaceAround, AlignSpaceEvenly, AlignStartItems, AlignEndItems, AlignStretch}
	alignItemsValues = []Align{AlignNormal, AlignStretch, AlignFlexStart, AlignFlexEnd, AlignCenterItems,
		AlignBaseline, AlignStartItems, AlignEndItems}
	alignSelfValues = append([]Align{AlignAuto}, alignItemsValues...)
)

// BreakValue is the value of break-before, break-after and break-inside.
type BreakValue string

const (
	BreakAuto        BreakValue = "auto"
	BreakAvoid       BreakValue = "avoid"
	BreakAvoidPage   BreakValue = "avoid-page"
	BreakPage        BreakValue = "page"
	BreakLeft        BreakValue = "left"
	BreakRight       BreakValue = "right"
	BreakRecto       BreakValue = "recto"
	BreakVerso       BreakValue = "verso"
	BreakColumn      BreakValue = "column"
	BreakAvoidColumn BreakValue = "avoid-column"
)

// Forced reports a value that forces a page break.
func (b BreakValue) Forced() bool {
	switch b {
	case BreakPage, BreakLeft, BreakRight, BreakRecto, BreakVerso:
		return true
	}
	return false
}

// Avoid reports a value that discourages a page break.
func (b BreakValue) Avoid() bool {
	return b == BreakAvoid || b == BreakAvoidPage
}

// FontWeight is a numeric weight 1..1000.
type FontWeight int

func (w FontWeight) String() string { return strconv.Itoa(int(w)) }

// bolder and lighter are kept as markers until they are resolved against
// the parent weight.
const (
	weightBolder  FontWeight = -1
	weightLighter FontWeight = -2
)

func parseFontWeight(toks []css.Token) (FontWeight, error) {
	t, err := single(toks)
	if err != nil {
		return 0, err
	}
	switch {
	case t.IsIdent("normal"):
		return 400, nil
	case t.IsIdent("bold"):
		return 700, nil
	case t.IsIdent("bolder"):
		return weightBolder, nil
	case t.IsIdent("lighter"):
		return weightLighter, nil
	case t.Kind == css.Number:
		v, err := strconv.ParseFloat(t.Text, 64)
		if err != nil || v < 1 || v > 1000 {
			return 0, fmt.Errorf("font-weight %s out of range", t.Text)
		}
		return FontWeight(v), nil
	}
	return 0, errInvalid
}

// relativeWeight implements the bolder/lighter table of CSS Fonts.
func relativeWeight(w, parent FontWeight) FontWeight {
	switch w {
	case weightBolder:
		switch {
		case parent < 350:
			return 400
		case parent < 550:
			return 700
		case parent < 900:
			return 900
		}
		return parent
	case weightLighter:
		switch {
		case parent < 100:
			return parent
		case parent < 550:
			return 100
		case parent < 750:
			return 400
		}
		return 700
	}
	return w
}

// VerticalAlign is a keyword or a length/percentage shift.
type VerticalAlign struct {
	Keyword string // empty when Length is used
	Length  Length
}

var verticalAlignKeywords = []string{"baseline", "sub", "super", "text-top", "text-bottom", "middle", "top", "bottom"}

func (v VerticalAlign) String() string {
	if v.Keyword != "" {
		return v.Keyword
	}
	return v.Length.String()
}

func parseVerticalAlign(toks []css.Token) (VerticalAlign, error) {
	t, err := single(toks)
	if err != nil {
		return VerticalAlign{}, err
	}
	if t.Kind == css.Ident {
		for _, k := range verticalAlignKeywords {
			if t.IsIdent(k) {
				return VerticalAlign{Keyword: k}, nil
			}
		}
		return VerticalAlign{}, errInvalid
	}
	l, err := parseLengthToken(t, allowPercent)
	if err != nil {
		return VerticalAlign{}, err
	}
	return VerticalAlign{Length: l}, nil
}

// Keyword is a free identifier value for properties layout does not switch
// on.
type Keyword string

// FontFamily is a normalized, comma separated family list.
type FontFamily string

var genericFamilies = map[string]bool{
	"serif": true, "sans-serif": true, "monospace": true, "cursive": true,
	"fantasy": true, "system-ui": true,
}

// Families returns the family names in order of preference.
func (f FontFamily) Families() []string {
	if f == "" {
		return nil
	}
	parts := strings.Split(string(f), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.Trim(strings.TrimSpace(p), `"`))
	}
	return out
}

func (f FontFamily) String() string { return string(f) }

func parseFontFamily(toks []css.Token) (FontFamily, error) {
	var names []string
	for _, part := range css.SplitTopLevel(toks, css.Comma) {
		part = css.Compact(part)
		if len(part) == 0 {
			return "", errInvalid
		}
		if len(part) == 1 && part[0].Kind == css.String {
			names = append(names, quoteFamily(part[0].Unquoted()))
			continue
		}
		words := make([]string, 0, len(part))
		for _, t := range part {
			if t.Kind != css.Ident {
				return "", fmt.Errorf("unexpected %q in font-family", t.Text)
			}
			words = append(words, t.Text)
		}
		name := strings.Join(words, " ")
		if len(words) == 1 && genericFamilies[strings.ToLower(name)] {
			names = append(names, strings.ToLower(name))
			continue
		}
		names = append(names, quoteFamily(name))
	}
	return FontFamily(strings.Join(names, ", ")), nil
}

func quoteFamily(name string) string {
	if genericFamilies[name] || strings.ContainsAny(name, ` "'`) || name == "" {
		return `"` + strings.ReplaceAll(name, `"`, ``) + `"`
	}
	return name
}

// PageSize is the value of the @page size descriptor. Zero Width means
// auto (the configured paper).
type PageSize struct {
	Width, Height Length
	Orientation   string // "", "portrait" or "landscape"
}

// named page sizes in px (CSS Paged Media)
var pageSizes = map[string][2]float64{
	"a5":     {148 * 96 / 25.4, 210 * 96 / 25.4},
	"a4":     {210 * 96 / 25.4, 297 * 96 / 25.4},
	"a3":     {297 * 96 / 25.4, 420 * 96 / 25.4},
	"b5":     {176 * 96 / 25.4, 250 * 96 / 25.4},
	"b4":     {250 * 96 / 25.4, 353 * 96 / 25.4},
	"letter": {8.5 * 96, 11 * 96},
	"legal":  {8.5 * 96, 14 * 96},
	"ledger": {11 * 96, 17 * 96},
}

// NamedPageSize returns the portrait size of a named paper in px.
func NamedPageSize(name string) (w, h float64, ok bool) {
	s, ok := pageSizes[strings.ToLower(name)]
	return s[0], s[1], ok
}

// IsAuto reports that no explicit size was given.
func (p PageSize) IsAuto() bool { return p.Width == Length{} && p.Height == Length{} }

func (p PageSize) String() string {
	var parts []string
	if !p.IsAuto() {
		parts = append(parts, p.Width.String())
		if p.Height != p.Width {
			parts = append(parts, p.Height.String())
		}
	}
	if p.Orientation != "" {
		parts = append(parts, p.Orientation)
	}
	if len(parts) == 0 {
		return "auto"
	}
	return strings.Join(parts, " ")
}

func parsePageSize(toks []css.Token) (PageSize, error) {
	var (
		ps      PageSize
		lengths []Length
	)
	for _, c := range components(toks) {
		t := c[0]
		switch {
		case len(c) == 1 && t.IsIdent("auto"):
			return PageSize{}, nil
		case len(c) == 1 && (t.IsIdent("portrait") || t.IsIdent("landscape")) && ps.Orientation == "":
			ps.Orientation = t.Lower()
		case len(c) == 1 && t.Kind == css.Ident:
			w, h, ok := NamedPageSize(t.Text)
			if !ok || len(lengths) != 0 {
				return PageSize{}, fmt.Errorf("unknown page size %q", t.Text)
			}
			lengths = append(lengths, PxLength(w), PxLength(h))
		default:
			l, err := parseLengthToken(t, nonNegative)
			if err != nil || len(c) != 1 || l.Unit != Px && l.Unit != Em && l.Unit != Rem {
				return PageSize{}, errInvalid
			}
			lengths = append(lengths, l)
		}
	}
	switch len(lengths) {
	case 0:
	case 1:
		ps.Width, ps.Height = lengths[0], lengths[0]
	case 2:
		ps.Width, ps.Height = lengths[0], lengths[1]
	default:
		return PageSize{}, errInvalid
	}
	return ps, nil
}
