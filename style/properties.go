package style

import (
	"math"
	"slices"
	"strings"

	"folio/css"
)

func fontG(sv *SpecifiedValues) *Cow[Font]             { return &sv.Font }
func textG(sv *SpecifiedValues) *Cow[Text]             { return &sv.Text }
func svgG(sv *SpecifiedValues) *Cow[Svg]               { return &sv.Svg }
func boxG(sv *SpecifiedValues) *Cow[Box]               { return &sv.Box }
func marginG(sv *SpecifiedValues) *Cow[Edges]          { return &sv.Margin }
func paddingG(sv *SpecifiedValues) *Cow[Edges]         { return &sv.Padding }
func borderG(sv *SpecifiedValues) *Cow[Border]         { return &sv.Border }
func backgroundG(sv *SpecifiedValues) *Cow[Background] { return &sv.Background }
func flexG(sv *SpecifiedValues) *Cow[Flex]             { return &sv.Flex }
func breakG(sv *SpecifiedValues) *Cow[Break]           { return &sv.Break }
func generatedG(sv *SpecifiedValues) *Cow[Generated]   { return &sv.Generated }
func pageG(sv *SpecifiedValues) *Cow[Page]             { return &sv.Page }

const (
	inh  = Inherited
	pres = PresentationAttribute
)

func kw[G any, V ~string](name string, flags Flags, group func(*SpecifiedValues) *Cow[G], field func(*G) *V, initial V, allowed ...V) *Registration {
	return longhand(name, flags, group, field, initial, keyword(allowed...), formatKeyword[V])
}

func length[G any](name string, flags Flags, group func(*SpecifiedValues) *Cow[G], field func(*G) *Length, initial Length, opts lengthOpts) *Registration {
	return longhand(name, flags, group, field, initial, parseLength(opts), Length.String)
}

func colorProp[G any](name string, flags Flags, group func(*SpecifiedValues) *Cow[G], field func(*G) *Color, initial Color) *Registration {
	return longhand(name, flags, group, field, initial, ParseColor, Color.String)
}

func raw[G any](name string, group func(*SpecifiedValues) *Cow[G], field func(*G) *Raw, initial Raw) *Registration {
	return longhand(name, 0, group, field, initial, parseRaw, Raw.String)
}

var fontSizeKeywords = map[string]float64{
	"xx-small": 9, "x-small": 10, "small": 13, "medium": 16,
	"large": 18, "x-large": 24, "xx-large": 32, "xxx-large": 48,
}

func parseFontSize(toks []css.Token) (Length, error) {
	t, err := single(toks)
	if err != nil {
		return Length{}, err
	}
	if t.Kind == css.Ident {
		if px, ok := fontSizeKeywords[t.Lower()]; ok {
			return PxLength(px), nil
		}
		switch t.Lower() {
		case "larger":
			return Length{Value: 1.2, Unit: Em}, nil
		case "smaller":
			return Length{Value: 1 / 1.2, Unit: Em}, nil
		}
		return Length{}, errInvalid
	}
	return parseLengthToken(t, allowPercent|nonNegative)
}

// parseSVGLength accepts unitless numbers as user units.
func parseSVGLength(toks []css.Token) (Length, error) {
	l, err := parseLength(allowPercent | allowNumber | nonNegative)(toks)
	if err == nil && l.Unit == Number {
		l.Unit = Px
	}
	return l, err
}

func parseBorderWidth(toks []css.Token) (Length, error) {
	t, err := single(toks)
	if err != nil {
		return Length{}, err
	}
	switch {
	case t.IsIdent("thin"):
		return PxLength(1), nil
	case t.IsIdent("medium"):
		return PxLength(3), nil
	case t.IsIdent("thick"):
		return PxLength(5), nil
	}
	return parseLengthToken(t, nonNegative)
}

// parseRadius keeps the horizontal radius of an elliptical corner.
func parseRadius(toks []css.Token) (Length, error) {
	c := components(toks)
	if len(c) == 0 || len(c) > 2 {
		return Length{}, errInvalid
	}
	var first Length
	for i, comp := range c {
		if len(comp) != 1 {
			return Length{}, errInvalid
		}
		l, err := parseLengthToken(comp[0], allowPercent|nonNegative)
		if err != nil {
			return Length{}, err
		}
		if i == 0 {
			first = l
		}
	}
	return first, nil
}

// parseImage accepts none, url() and gradient functions, which are kept
// as written.
func parseImage(toks []css.Token) (Raw, error) {
	c := components(toks)
	if len(c) != 1 {
		return "", errInvalid
	}
	t := c[0][0]
	switch {
	case t.IsIdent("none"):
		return "none", nil
	case t.Kind == css.URL:
		return Raw(t.Text), nil
	case t.Kind == css.Function && strings.HasSuffix(t.FuncName(), "gradient"):
		return Raw(css.Normalize(c[0])), nil
	}
	return "", errInvalid
}

var decorationLines = []string{"underline", "overline", "line-through", "blink"}

func parseDecorationLine(toks []css.Token) (Keyword, error) {
	toks = css.Compact(toks)
	if len(toks) == 1 && toks[0].IsIdent("none") {
		return "none", nil
	}
	var seen []string
	for _, t := range toks {
		i := slices.IndexFunc(decorationLines, t.IsIdent)
		if i < 0 || slices.Contains(seen, decorationLines[i]) {
			return "", errInvalid
		}
		seen = append(seen, decorationLines[i])
	}
	if len(seen) == 0 {
		return "", errInvalid
	}
	return Keyword(strings.Join(seen, " ")), nil
}

func parsePageName(toks []css.Token) (Keyword, error) {
	t, err := single(toks)
	if err != nil || t.Kind != css.Ident {
		return "", errInvalid
	}
	if t.IsIdent("auto") {
		return "auto", nil
	}
	return Keyword(t.Text), nil
}

func longhandRegistrations() []*Registration {
	fontSize := longhand("font-size", inh|pres, fontG, func(g *Font) *Length { return &g.Size },
		PxLength(defaultFontSize), parseFontSize, Length.String)
	fontSize.store = func(sv *SpecifiedValues, v any) {
		l := v.(Length)
		px := l.ToPx(Basis{FontSize: sv.parentFontSize, RootFontSize: sv.rootFontSize, Percent: sv.parentFontSize})
		setField(sv, fontG, func(g *Font) *Length { return &g.Size }, PxLength(px))
	}

	fontWeight := longhand("font-weight", inh|pres, fontG, func(g *Font) *FontWeight { return &g.Weight },
		400, parseFontWeight, stringer[FontWeight])
	fontWeight.store = func(sv *SpecifiedValues, v any) {
		w := relativeWeight(v.(FontWeight), sv.parentWeight)
		setField(sv, fontG, func(g *Font) *FontWeight { return &g.Weight }, w)
	}

	color := colorProp("color", inh|pres, textG, func(g *Text) *Color { return &g.Color }, Black)
	color.store = func(sv *SpecifiedValues, v any) {
		// currentcolor on color itself is the inherited color
		if c := v.(Color); !c.Current {
			setField(sv, textG, func(g *Text) *Color { return &g.Color }, c)
		}
	}

	zero := PxLength(0)
	medium := PxLength(3)
	margin := allowPercent | allowAuto
	padding := allowPercent | nonNegative
	size := allowPercent | allowAuto | nonNegative
	maxSize := allowPercent | allowNone | nonNegative
	offset := allowPercent | allowAuto

	return []*Registration{
		// font
		longhand("font-family", inh|pres, fontG, func(g *Font) *FontFamily { return &g.Family }, "serif", parseFontFamily, stringer[FontFamily]),
		fontSize,
		kw("font-style", inh|pres, fontG, func(g *Font) *FontStyle { return &g.Style }, FontStyleNormal, FontStyleNormal, FontStyleItalic, FontStyleOblique),
		fontWeight,
		kw("font-variant", inh|pres, fontG, func(g *Font) *Keyword { return &g.Variant }, "normal", "normal", "small-caps"),
		kw("font-stretch", inh|pres, fontG, func(g *Font) *Keyword { return &g.Stretch }, "normal",
			"normal", "ultra-condensed", "extra-condensed", "condensed", "semi-condensed",
			"semi-expanded", "expanded", "extra-expanded", "ultra-expanded"),
		length("line-height", inh, fontG, func(g *Font) *Length { return &g.LineHeight }, NormalLength, allowNumber|allowPercent|allowNormal|nonNegative),

		// text
		color,
		kw("text-align", inh, textG, func(g *Text) *TextAlign { return &g.Align }, AlignStart,
			AlignStart, AlignEnd, AlignLeft, AlignRight, AlignCenter, AlignJustify),
		kw("text-align-last", inh, textG, func(g *Text) *Keyword { return &g.AlignLast }, "auto",
			"auto", "start", "end", "left", "right", "center", "justify"),
		length("text-indent", inh, textG, func(g *Text) *Length { return &g.Indent }, zero, allowPercent),
		kw("text-transform", inh, textG, func(g *Text) *Keyword { return &g.Transform }, "none",
			"none", "capitalize", "uppercase", "lowercase", "full-width"),
		kw("white-space", inh, textG, func(g *Text) *WhiteSpace { return &g.WhiteSpace }, WhiteSpaceNormal,
			WhiteSpaceNormal, WhiteSpacePre, WhiteSpaceNowrap, WhiteSpacePreWrap, WhiteSpacePreLine),
		length("letter-spacing", inh|pres, textG, func(g *Text) *Length { return &g.LetterSpacing }, NormalLength, allowNormal),
		length("word-spacing", inh|pres, textG, func(g *Text) *Length { return &g.WordSpacing }, NormalLength, allowNormal|allowPercent),
		kw("direction", inh|pres|AllExcluded, textG, func(g *Text) *Keyword { return &g.Direction }, "ltr", "ltr", "rtl"),
		kw("hyphens", inh, textG, func(g *Text) *Keyword { return &g.Hyphens }, "manual", "none", "manual", "auto"),
		kw("overflow-wrap", inh, textG, func(g *Text) *Keyword { return &g.OverflowWrap }, "normal", "normal", "break-word", "anywhere"),
		kw("word-break", inh, textG, func(g *Text) *Keyword { return &g.WordBreak }, "normal", "normal", "break-all", "keep-all", "break-word"),
		longhand("orphans", inh, textG, func(g *Text) *Integer { return &g.Orphans }, 2, parseInteger(1), Integer.String),
		longhand("widows", inh, textG, func(g *Text) *Integer { return &g.Widows }, 2, parseInteger(1), Integer.String),
		kw("visibility", inh|pres, textG, func(g *Text) *Keyword { return &g.Visibility }, "visible", "visible", "hidden", "collapse"),
		kw("list-style-type", inh, textG, func(g *Text) *Keyword { return &g.ListStyleType }, "disc",
			"disc", "circle", "square", "decimal", "decimal-leading-zero", "lower-roman", "upper-roman",
			"lower-alpha", "upper-alpha", "lower-latin", "upper-latin", "lower-greek", "none"),
		kw("list-style-position", inh, textG, func(g *Text) *Keyword { return &g.ListStylePosition }, "outside", "inside", "outside"),
		longhand("list-style-image", inh, textG, func(g *Text) *Raw { return &g.ListStyleImage }, "none", parseImage, Raw.String),

		// svg
		longhand("fill", inh|pres, svgG, func(g *Svg) *Paint { return &g.Fill }, Paint{Kind: PaintColor, Color: Black}, parsePaint, Paint.String),
		longhand("fill-opacity", inh|pres, svgG, func(g *Svg) *Numeric { return &g.FillOpacity }, 1, parseNumeric(0, 1, true), Numeric.String),
		kw("fill-rule", inh|pres, svgG, func(g *Svg) *Keyword { return &g.FillRule }, "nonzero", "nonzero", "evenodd"),
		longhand("stroke", inh|pres, svgG, func(g *Svg) *Paint { return &g.Stroke }, Paint{}, parsePaint, Paint.String),
		longhand("stroke-width", inh|pres, svgG, func(g *Svg) *Length { return &g.StrokeWidth }, PxLength(1), parseSVGLength, Length.String),
		longhand("stroke-opacity", inh|pres, svgG, func(g *Svg) *Numeric { return &g.StrokeOpacity }, 1, parseNumeric(0, 1, true), Numeric.String),
		kw("stroke-linecap", inh|pres, svgG, func(g *Svg) *Keyword { return &g.StrokeLinecap }, "butt", "butt", "round", "square"),
		kw("stroke-linejoin", inh|pres, svgG, func(g *Svg) *Keyword { return &g.StrokeLinejoin }, "miter",
			"miter", "round", "bevel", "arcs", "miter-clip"),
		kw("text-anchor", inh|pres, svgG, func(g *Svg) *Keyword { return &g.TextAnchor }, "start", "start", "middle", "end"),

		// box
		kw("display", pres, boxG, func(g *Box) *Display { return &g.Display }, DisplayInline, displayValues...),
		kw("position", 0, boxG, func(g *Box) *Position { return &g.Position }, PositionStatic,
			PositionStatic, PositionRelative, PositionAbsolute, PositionFixed, PositionSticky),
		kw("float", 0, boxG, func(g *Box) *Float { return &g.Float }, FloatNone, FloatNone, FloatLeft, FloatRight),
		kw("clear", 0, boxG, func(g *Box) *Keyword { return &g.Clear }, "none", "none", "left", "right", "both"),
		length("width", 0, boxG, func(g *Box) *Length { return &g.Width }, AutoLength, size),
		length("height", 0, boxG, func(g *Box) *Length { return &g.Height }, AutoLength, size),
		length("min-width", 0, boxG, func(g *Box) *Length { return &g.MinWidth }, zero, size),
		length("min-height", 0, boxG, func(g *Box) *Length { return &g.MinHeight }, zero, size),
		length("max-width", 0, boxG, func(g *Box) *Length { return &g.MaxWidth }, NoneLength, maxSize),
		length("max-height", 0, boxG, func(g *Box) *Length { return &g.MaxHeight }, NoneLength, maxSize),
		kw("box-sizing", 0, boxG, func(g *Box) *BoxSizing { return &g.BoxSizing }, ContentBox, ContentBox, BorderBox),
		length("top", 0, boxG, func(g *Box) *Length { return &g.Top }, AutoLength, offset),
		length("right", 0, boxG, func(g *Box) *Length { return &g.Right }, AutoLength, offset),
		length("bottom", 0, boxG, func(g *Box) *Length { return &g.Bottom }, AutoLength, offset),
		length("left", 0, boxG, func(g *Box) *Length { return &g.Left }, AutoLength, offset),
		kw("overflow", pres, boxG, func(g *Box) *Keyword { return &g.Overflow }, "visible", "visible", "hidden", "clip", "scroll", "auto"),
		longhand("opacity", pres, boxG, func(g *Box) *Numeric { return &g.Opacity }, 1, parseNumeric(0, 1, true), Numeric.String),
		longhand("vertical-align", 0, boxG, func(g *Box) *VerticalAlign { return &g.VerticalAlign },
			VerticalAlign{Keyword: "baseline"}, parseVerticalAlign, VerticalAlign.String),
		longhand("text-decoration-line", 0, boxG, func(g *Box) *Keyword { return &g.DecorationLine }, "none", parseDecorationLine, formatKeyword[Keyword]),
		kw("text-decoration-style", 0, boxG, func(g *Box) *Keyword { return &g.DecorationStyle }, "solid",
			"solid", "double", "dotted", "dashed", "wavy"),
		colorProp("text-decoration-color", 0, boxG, func(g *Box) *Color { return &g.DecorationColor }, CurrentColor),
		longhand("page", 0, boxG, func(g *Box) *Keyword { return &g.Page }, "auto", parsePageName, formatKeyword[Keyword]),
		kw("unicode-bidi", pres|AllExcluded, boxG, func(g *Box) *Keyword { return &g.UnicodeBidi }, "normal",
			"normal", "embed", "isolate", "bidi-override", "isolate-override", "plaintext"),

		// margin and padding
		length("margin-top", 0, marginG, func(g *Edges) *Length { return &g.Top }, zero, margin),
		length("margin-right", 0, marginG, func(g *Edges) *Length { return &g.Right }, zero, margin),
		length("margin-bottom", 0, marginG, func(g *Edges) *Length { return &g.Bottom }, zero, margin),
		length("margin-left", 0, marginG, func(g *Edges) *Length { return &g.Left }, zero, margin),
		length("padding-top", 0, paddingG, func(g *Edges) *Length { return &g.Top }, zero, padding),
		length("padding-right", 0, paddingG, func(g *Edges) *Length { return &g.Right }, zero, padding),
		length("padding-bottom", 0, paddingG, func(g *Edges) *Length { return &g.Bottom }, zero, padding),
		length("padding-left", 0, paddingG, func(g *Edges) *Length { return &g.Left }, zero, padding),

		// border
		longhand("border-top-width", 0, borderG, func(g *Border) *Length { return &g.TopWidth }, medium, parseBorderWidth, Length.String),
		longhand("border-right-width", 0, borderG, func(g *Border) *Length { return &g.RightWidth }, medium, parseBorderWidth, Length.String),
		longhand("border-bottom-width", 0, borderG, func(g *Border) *Length { return &g.BottomWidth }, medium, parseBorderWidth, Length.String),
		longhand("border-left-width", 0, borderG, func(g *Border) *Length { return &g.LeftWidth }, medium, parseBorderWidth, Length.String),
		kw("border-top-style", 0, borderG, func(g *Border) *BorderStyle { return &g.TopStyle }, BorderNone, borderStyles...),
		kw("border-right-style", 0, borderG, func(g *Border) *BorderStyle { return &g.RightStyle }, BorderNone, borderStyles...),
		kw("border-bottom-style", 0, borderG, func(g *Border) *BorderStyle { return &g.BottomStyle }, BorderNone, borderStyles...),
		kw("border-left-style", 0, borderG, func(g *Border) *BorderStyle { return &g.LeftStyle }, BorderNone, borderStyles...),
		colorProp("border-top-color", 0, borderG, func(g *Border) *Color { return &g.TopColor }, CurrentColor),
		colorProp("border-right-color", 0, borderG, func(g *Border) *Color { return &g.RightColor }, CurrentColor),
		colorProp("border-bottom-color", 0, borderG, func(g *Border) *Color { return &g.BottomColor }, CurrentColor),
		colorProp("border-left-color", 0, borderG, func(g *Border) *Color { return &g.LeftColor }, CurrentColor),
		longhand("border-top-left-radius", 0, borderG, func(g *Border) *Length { return &g.TopLeftRadius }, zero, parseRadius, Length.String),
		longhand("border-top-right-radius", 0, borderG, func(g *Border) *Length { return &g.TopRightRadius }, zero, parseRadius, Length.String),
		longhand("border-bottom-right-radius", 0, borderG, func(g *Border) *Length { return &g.BottomRightRadius }, zero, parseRadius, Length.String),
		longhand("border-bottom-left-radius", 0, borderG, func(g *Border) *Length { return &g.BottomLeftRadius }, zero, parseRadius, Length.String),

		// background
		colorProp("background-color", 0, backgroundG, func(g *Background) *Color { return &g.Color }, Transparent),
		longhand("background-image", 0, backgroundG, func(g *Background) *Raw { return &g.Image }, "none", parseImage, Raw.String),
		raw("background-repeat", backgroundG, func(g *Background) *Raw { return &g.Repeat }, "repeat"),
		raw("background-position", backgroundG, func(g *Background) *Raw { return &g.Position }, "0% 0%"),
		raw("background-size", backgroundG, func(g *Background) *Raw { return &g.Size }, "auto"),
		kw("background-attachment", 0, backgroundG, func(g *Background) *Keyword { return &g.Attachment }, "scroll", "scroll", "fixed", "local"),
		kw("background-clip", 0, backgroundG, func(g *Background) *Keyword { return &g.Clip }, "border-box",
			"border-box", "padding-box", "content-box", "text"),
		kw("background-origin", 0, backgroundG, func(g *Background) *Keyword { return &g.Origin }, "padding-box",
			"border-box", "padding-box", "content-box"),

		// flex
		kw("flex-direction", 0, flexG, func(g *Flex) *FlexDirection { return &g.Direction }, FlexRow,
			FlexRow, FlexRowReverse, FlexColumn, FlexColumnReverse),
		kw("flex-wrap", 0, flexG, func(g *Flex) *FlexWrap { return &g.Wrap }, NoWrap, NoWrap, Wrap, WrapReverse),
		longhand("flex-grow", 0, flexG, func(g *Flex) *Numeric { return &g.Grow }, 0, parseNumeric(0, math.MaxFloat64, false), Numeric.String),
		longhand("flex-shrink", 0, flexG, func(g *Flex) *Numeric { return &g.Shrink }, 1, parseNumeric(0, math.MaxFloat64, false), Numeric.String),
		length("flex-basis", 0, flexG, func(g *Flex) *Length { return &g.Basis }, AutoLength, size),
		kw("justify-content", 0, flexG, func(g *Flex) *Align { return &g.JustifyContent }, AlignNormal, justifyValues...),
		kw("align-items", 0, flexG, func(g *Flex) *Align { return &g.AlignItems }, AlignNormal, alignItemsValues...),
		kw("align-self", 0, flexG, func(g *Flex) *Align { return &g.AlignSelf }, AlignAuto, alignSelfValues...),
		kw("align-content", 0, flexG, func(g *Flex) *Align { return &g.AlignContent }, AlignNormal, justifyValues...),
		longhand("order", 0, flexG, func(g *Flex) *Integer { return &g.Order }, 0, parseInteger(math.MinInt), Integer.String),
		length("row-gap", 0, flexG, func(g *Flex) *Length { return &g.RowGap }, NormalLength, allowPercent|allowNormal|nonNegative),
		length("column-gap", 0, flexG, func(g *Flex) *Length { return &g.ColumnGap }, NormalLength, allowPercent|allowNormal|nonNegative),

		// fragmentation
		kw("break-before", 0, breakG, func(g *Break) *BreakValue { return &g.Before }, BreakAuto,
			BreakAuto, BreakAvoid, BreakAvoidPage, BreakPage, BreakLeft, BreakRight, BreakRecto, BreakVerso, BreakColumn, BreakAvoidColumn),
		kw("break-after", 0, breakG, func(g *Break) *BreakValue { return &g.After }, BreakAuto,
			BreakAuto, BreakAvoid, BreakAvoidPage, BreakPage, BreakLeft, BreakRight, BreakRecto, BreakVerso, BreakColumn, BreakAvoidColumn),
		kw("break-inside", 0, breakG, func(g *Break) *BreakValue { return &g.Inside }, BreakAuto,
			BreakAuto, BreakAvoid, BreakAvoidPage, BreakAvoidColumn),

		// generated content
		longhand("content", 0, generatedG, func(g *Generated) *Content { return &g.Content }, ContentNormal, parseContent, Content.String),
		longhand("counter-reset", 0, generatedG, func(g *Generated) *Counters { return &g.CounterReset }, "", parseCounters(0), Counters.String),
		longhand("counter-increment", 0, generatedG, func(g *Generated) *Counters { return &g.CounterIncrement }, "", parseCounters(1), Counters.String),

		// page context
		longhand("size", 0, pageG, func(g *Page) *PageSize { return &g.Size }, PageSize{}, parsePageSize, PageSize.String),
	}
}
