package style

import (
	"maps"
	"slices"
	"sync"

	"folio/css"
)

// Font properties. Inherited.
type Font struct {
	Family     FontFamily
	Size       Length // always px once cascaded
	Style      FontStyle
	Weight     FontWeight
	Variant    Keyword
	Stretch    Keyword
	LineHeight Length // normal, number or length
}

// Text properties. Inherited.
type Text struct {
	Color             Color
	Align             TextAlign
	AlignLast         Keyword
	Indent            Length
	Transform         Keyword
	WhiteSpace        WhiteSpace
	LetterSpacing     Length
	WordSpacing       Length
	Direction         Keyword
	Hyphens           Keyword
	OverflowWrap      Keyword
	WordBreak         Keyword
	Orphans           Integer
	Widows            Integer
	Visibility        Keyword
	ListStyleType     Keyword
	ListStylePosition Keyword
	ListStyleImage    Raw
}

// Svg holds the inherited SVG painting properties.
type Svg struct {
	Fill           Paint
	FillOpacity    Numeric
	FillRule       Keyword
	Stroke         Paint
	StrokeWidth    Length
	StrokeOpacity  Numeric
	StrokeLinecap  Keyword
	StrokeLinejoin Keyword
	TextAnchor     Keyword
}

// Box holds the non-inherited positioning and sizing properties.
type Box struct {
	Display             Display
	Position            Position
	Float               Float
	Clear               Keyword
	Width, Height       Length
	MinWidth, MinHeight Length
	MaxWidth, MaxHeight Length
	BoxSizing           BoxSizing
	Top, Right          Length
	Bottom, Left        Length
	Overflow            Keyword
	Opacity             Numeric
	VerticalAlign       VerticalAlign
	DecorationLine      Keyword
	DecorationStyle     Keyword
	DecorationColor     Color
	Page                Keyword // named page, auto
	UnicodeBidi         Keyword
}

// Edges is a margin or padding group.
type Edges struct {
	Top, Right, Bottom, Left Length
}

// Border holds widths, styles, colors and corner radii.
type Border struct {
	TopWidth, RightWidth, BottomWidth, LeftWidth Length
	TopStyle, RightStyle, BottomStyle, LeftStyle BorderStyle
	TopColor, RightColor, BottomColor, LeftColor Color
	TopLeftRadius, TopRightRadius                Length
	BottomRightRadius, BottomLeftRadius          Length
}

// Background is only partially interpreted: color and image are used by
// consumers, the rest is kept as written.
type Background struct {
	Color      Color
	Image      Raw
	Repeat     Raw
	Position   Raw
	Size       Raw
	Attachment Keyword
	Clip       Keyword
	Origin     Keyword
}

// Flex holds flex container and item properties.
type Flex struct {
	Direction      FlexDirection
	Wrap           FlexWrap
	Grow, Shrink   Numeric
	Basis          Length
	JustifyContent Align
	AlignItems     Align
	AlignSelf      Align
	AlignContent   Align
	Order          Integer
	RowGap         Length
	ColumnGap      Length
}

// Break holds fragmentation controls. orphans and widows are inherited and
// live in Text.
type Break struct {
	Before, After, Inside BreakValue
}

// Generated holds generated content and counters.
type Generated struct {
	Content          Content
	CounterReset     Counters
	CounterIncrement Counters
}

// Page holds properties that only apply to page contexts.
type Page struct {
	Size PageSize
}

// SpecifiedValues is the cascaded and inherited property snapshot of one
// element, pseudo-element, page or page-margin box.
type SpecifiedValues struct {
	Font       Cow[Font]
	Text       Cow[Text]
	Svg        Cow[Svg]
	Box        Cow[Box]
	Margin     Cow[Edges]
	Padding    Cow[Edges]
	Border     Cow[Border]
	Background Cow[Background]
	Flex       Cow[Flex]
	Break      Cow[Break]
	Generated  Cow[Generated]
	Page       Cow[Page]

	// custom properties, shared with the parent until written
	custom      map[string][]css.Token
	customOwned bool

	parentFontSize float64
	parentWeight   FontWeight
	rootFontSize   float64
}

// defaultFontSize is the initial font-size, "medium".
const defaultFontSize = 16

// initialValues returns a fresh set of initial values. It is the parent of
// root elements and the source of all non-inherited groups.
func initialValues() *SpecifiedValues {
	zero := PxLength(0)
	edges := Edges{zero, zero, zero, zero}
	medium := PxLength(3)
	sv := &SpecifiedValues{
		Font: Share(&Font{
			Family: "serif", Size: PxLength(defaultFontSize), Style: FontStyleNormal, Weight: 400,
			Variant: "normal", Stretch: "normal", LineHeight: NormalLength,
		}),
		Text: Share(&Text{
			Color: Black, Align: AlignStart, AlignLast: "auto", Transform: "none",
			WhiteSpace: WhiteSpaceNormal, LetterSpacing: NormalLength, WordSpacing: NormalLength,
			Direction: "ltr", Hyphens: "manual", OverflowWrap: "normal", WordBreak: "normal",
			Orphans: 2, Widows: 2, Visibility: "visible",
			ListStyleType: "disc", ListStylePosition: "outside", ListStyleImage: "none",
		}),
		Svg: Share(&Svg{
			Fill: Paint{Kind: PaintColor, Color: Black}, FillOpacity: 1, FillRule: "nonzero",
			StrokeWidth: PxLength(1), StrokeOpacity: 1, StrokeLinecap: "butt", StrokeLinejoin: "miter",
			TextAnchor: "start",
		}),
		Box: Share(&Box{
			Display: DisplayInline, Position: PositionStatic, Float: FloatNone, Clear: "none",
			Width: AutoLength, Height: AutoLength, MinWidth: zero, MinHeight: zero,
			MaxWidth: NoneLength, MaxHeight: NoneLength, BoxSizing: ContentBox,
			Top: AutoLength, Right: AutoLength, Bottom: AutoLength, Left: AutoLength,
			Overflow: "visible", Opacity: 1, VerticalAlign: VerticalAlign{Keyword: "baseline"},
			DecorationLine: "none", DecorationStyle: "solid", DecorationColor: CurrentColor,
			Page: "auto", UnicodeBidi: "normal",
		}),
		Margin:  Share(&edges),
		Padding: Share(&Edges{zero, zero, zero, zero}),
		Border: Share(&Border{
			TopWidth: medium, RightWidth: medium, BottomWidth: medium, LeftWidth: medium,
			TopStyle: BorderNone, RightStyle: BorderNone, BottomStyle: BorderNone, LeftStyle: BorderNone,
			TopColor: CurrentColor, RightColor: CurrentColor, BottomColor: CurrentColor, LeftColor: CurrentColor,
		}),
		Background: Share(&Background{
			Color: Transparent, Image: "none", Repeat: "repeat", Position: "0% 0%", Size: "auto",
			Attachment: "scroll", Clip: "border-box", Origin: "padding-box",
		}),
		Flex: Share(&Flex{
			Direction: FlexRow, Wrap: NoWrap, Grow: 0, Shrink: 1, Basis: AutoLength,
			JustifyContent: AlignNormal, AlignItems: AlignNormal, AlignSelf: AlignAuto, AlignContent: AlignNormal,
			RowGap: NormalLength, ColumnGap: NormalLength,
		}),
		Break:     Share(&Break{Before: BreakAuto, After: BreakAuto, Inside: BreakAuto}),
		Generated: Share(&Generated{Content: ContentNormal}),
		Page:      Share(&Page{}),

		parentFontSize: defaultFontSize,
		parentWeight:   400,
		rootFontSize:   defaultFontSize,
	}
	return sv
}

// inheritFrom creates the starting point of the cascade for a child of
// parent: inherited groups and custom properties are shared with parent,
// the others with initial.
func inheritFrom(parent, initial *SpecifiedValues) *SpecifiedValues {
	return &SpecifiedValues{
		Font:       Share(parent.Font.Get()),
		Text:       Share(parent.Text.Get()),
		Svg:        Share(parent.Svg.Get()),
		Box:        Share(initial.Box.Get()),
		Margin:     Share(initial.Margin.Get()),
		Padding:    Share(initial.Padding.Get()),
		Border:     Share(initial.Border.Get()),
		Background: Share(initial.Background.Get()),
		Flex:       Share(initial.Flex.Get()),
		Break:      Share(initial.Break.Get()),
		Generated:  Share(initial.Generated.Get()),
		Page:       Share(initial.Page.Get()),

		custom:         parent.custom,
		parentFontSize: parent.Font.Get().Size.Value,
		parentWeight:   parent.Font.Get().Weight,
		rootFontSize:   parent.rootFontSize,
	}
}

var frozenInitial = sync.OnceValue(func() *SpecifiedValues {
	sv := initialValues()
	sv.freeze()
	return sv
})

// Anonymous returns the values of an anonymous box generated inside a box
// styled with parent: inherited groups come from parent, everything else is
// initial except display.
func Anonymous(parent *SpecifiedValues, display Display) *SpecifiedValues {
	sv := inheritFrom(parent, frozenInitial())
	if sv.Box.Get().Display != display {
		sv.Box.Mut().Display = display
	}
	sv.freeze()
	return sv
}

// WithDisplay returns sv with another display value. sv is left unchanged.
func WithDisplay(sv *SpecifiedValues, display Display) *SpecifiedValues {
	if sv.Box.Get().Display == display {
		return sv
	}
	cp := *sv
	cp.Box.Mut().Display = display
	cp.freeze()
	return &cp
}

// freeze gives up ownership of every group so that later writes through
// any holder clone.
func (sv *SpecifiedValues) freeze() {
	sv.Font.Release()
	sv.Text.Release()
	sv.Svg.Release()
	sv.Box.Release()
	sv.Margin.Release()
	sv.Padding.Release()
	sv.Border.Release()
	sv.Background.Release()
	sv.Flex.Release()
	sv.Break.Release()
	sv.Generated.Release()
	sv.Page.Release()
	sv.customOwned = false
}

// Custom returns the value of a custom property.
func (sv *SpecifiedValues) Custom(name string) ([]css.Token, bool) {
	v, ok := sv.custom[name]
	return v, ok
}

// CustomNames returns the names of all custom properties.
func (sv *SpecifiedValues) CustomNames() []string {
	return slices.Collect(maps.Keys(sv.custom))
}

func (sv *SpecifiedValues) mutCustom() map[string][]css.Token {
	if !sv.customOwned {
		m := make(map[string][]css.Token, len(sv.custom)+1)
		maps.Copy(m, sv.custom)
		sv.custom = m
		sv.customOwned = true
	}
	return sv.custom
}

// FontSize returns the computed font size in px.
func (sv *SpecifiedValues) FontSize() float64 {
	return sv.Font.Get().Size.Value
}

// RootFontSize returns the font size rem units refer to.
func (sv *SpecifiedValues) RootFontSize() float64 {
	return sv.rootFontSize
}

// Color returns the computed text color.
func (sv *SpecifiedValues) Color() Color {
	return sv.Text.Get().Color
}

// Equal compares two snapshots by value.
func Equal(a, b *SpecifiedValues) bool {
	return *a.Font.Get() == *b.Font.Get() &&
		*a.Text.Get() == *b.Text.Get() &&
		*a.Svg.Get() == *b.Svg.Get() &&
		*a.Box.Get() == *b.Box.Get() &&
		*a.Margin.Get() == *b.Margin.Get() &&
		*a.Padding.Get() == *b.Padding.Get() &&
		*a.Border.Get() == *b.Border.Get() &&
		*a.Background.Get() == *b.Background.Get() &&
		*a.Flex.Get() == *b.Flex.Get() &&
		*a.Break.Get() == *b.Break.Get() &&
		*a.Generated.Get() == *b.Generated.Get() &&
		*a.Page.Get() == *b.Page.Get() &&
		maps.EqualFunc(a.custom, b.custom, slices.Equal[[]css.Token])
}
