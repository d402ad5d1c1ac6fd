// Package layout turns a styled element tree into boxes and lays the boxes
// out into positioned fragments, one fragment tree per page.
package layout

import (
	"fmt"

	"folio/dom"
	"folio/images"
	"folio/style"
)

// Content is the closed set of things a box can hold.
type Content interface {
	isContent()
}

// Empty is the content of boxes without children.
type Empty struct{}

// Children is the content of block containers holding block-level boxes.
type Children []*Box

// Inline is the content of a block container establishing an inline
// formatting context: text runs and atomic inline-level boxes.
type Inline struct {
	Items []InlineItem

	// lines laid out for a given available width, reused between the
	// discovery and the commit pass
	cached      []*line
	cachedWidth float64
}

// Replaced is the content of images, objects and outer svg elements.
type Replaced struct {
	URL       string
	Intrinsic images.Intrinsic
	// Svg is the content of an inline svg element.
	Svg *SvgGroup
	// Alt is shown by consumers when the resource could not be loaded.
	Alt string
}

// SvgGroup is the content of svg containers. Shapes are boxes with Empty
// content whose origin carries the geometry attributes.
type SvgGroup struct {
	Children []*Box
}

func (Empty) isContent()     {}
func (Children) isContent()  {}
func (*Inline) isContent()   {}
func (*Replaced) isContent() {}
func (*SvgGroup) isContent() {}

// ItemKind tags inline items.
type ItemKind uint8

const (
	ItemText ItemKind = iota
	ItemAtomic
	ItemBreak
)

// InlineItem is one piece of inline content. Text is already white-space
// processed, transformed and hyphenated; Values is the style of the inline
// element it came from.
type InlineItem struct {
	Kind   ItemKind
	Text   string
	Values *style.SpecifiedValues
	Box    *Box // atomic inline-level box
}

// Box is a node of the box tree. A box exclusively owns its children and
// shares its computed values with the element it was generated for.
type Box struct {
	Values *style.SpecifiedValues
	// Origin is the element the box was generated for, nil for anonymous
	// boxes.
	Origin *dom.Node
	// Pseudo is "before" or "after" for generated content boxes.
	Pseudo  string
	Content Content

	owned bool
	kind  fcKind
	// min-content and max-content widths, once computed
	intrinsicW *[2]float64
}

// NewBox creates a box with empty content.
func NewBox(values *style.SpecifiedValues, origin *dom.Node) *Box {
	return &Box{Values: values, Origin: origin, Content: Empty{}}
}

// Add appends child to the box. A box can have only one owner.
func (b *Box) Add(child *Box) {
	if child.owned {
		panic("layout: box already has a parent")
	}
	switch c := b.Content.(type) {
	case Empty:
		b.Content = Children{child}
	case Children:
		b.Content = append(c, child)
	case *SvgGroup:
		c.Children = append(c.Children, child)
	default:
		panic(fmt.Sprintf("layout: %T content does not take child boxes", c))
	}
	child.owned = true
}

// AddInline appends an inline item, turning empty content into inline
// content.
func (b *Box) AddInline(item InlineItem) {
	switch c := b.Content.(type) {
	case Empty:
		b.Content = &Inline{Items: []InlineItem{item}}
	case *Inline:
		c.Items = append(c.Items, item)
	default:
		panic(fmt.Sprintf("layout: %T content does not take inline items", c))
	}
	if item.Box != nil {
		if item.Box.owned {
			panic("layout: box already has a parent")
		}
		item.Box.owned = true
	}
}

// Children returns the child boxes of block containers and svg groups.
func (b *Box) Children() []*Box {
	switch c := b.Content.(type) {
	case Children:
		return c
	case *SvgGroup:
		return c.Children
	}
	return nil
}

func (b *Box) display() style.Display { return b.Values.Box.Get().Display }

// IsReplaced reports boxes whose content is outside the scope of CSS.
func (b *Box) IsReplaced() bool {
	_, ok := b.Content.(*Replaced)
	return ok
}

// IsPositioned reports boxes taken out of normal flow by position.
func (b *Box) IsPositioned() bool {
	p := b.Values.Box.Get().Position
	return p == style.PositionAbsolute || p == style.PositionFixed
}

// IsRelative reports boxes shifted after layout.
func (b *Box) IsRelative() bool {
	p := b.Values.Box.Get().Position
	return p == style.PositionRelative || p == style.PositionSticky
}

// IsFloating reports floats. Positioned boxes do not float.
func (b *Box) IsFloating() bool {
	return !b.IsPositioned() && b.Values.Box.Get().Float != style.FloatNone
}

// IsInlineLevel reports boxes participating in an inline formatting
// context: inline display types of in-flow, non-floating boxes.
func (b *Box) IsInlineLevel() bool {
	return !b.IsPositioned() && !b.IsFloating() && b.display().IsInlineLevel()
}

// IsBlockLevel reports boxes participating in a block formatting context.
// Floats and positioned boxes are blockified.
func (b *Box) IsBlockLevel() bool {
	return !b.IsInlineLevel() && b.display() != style.DisplayNone
}

// IsBlockEquivalent reports block-level boxes laid out by their parent
// as blocks: block containers, flex, grid and table wrappers.
func (b *Box) IsBlockEquivalent() bool {
	if !b.IsBlockLevel() {
		return false
	}
	switch b.display() {
	case style.DisplayTableRow, style.DisplayTableCell, style.DisplayTableColumn,
		style.DisplayTableColumnGroup, style.DisplayContents:
		return false
	}
	return true
}

// IsMonolithic reports boxes that cannot be fragmented.
func (b *Box) IsMonolithic() bool {
	switch b.formattingContext() {
	case fcFlex, fcGrid, fcReplaced:
		return true
	}
	return b.display() == style.DisplayTableRow
}

// Name describes the box for dumps and logs.
func (b *Box) Name() string {
	var name string
	switch {
	case b.Origin == nil:
		name = "anonymous"
	case b.Origin.Type == dom.ElementNode:
		name = b.Origin.Name
	default:
		name = "#text"
	}
	if b.Pseudo != "" {
		name += "::" + b.Pseudo
	}
	return name
}
