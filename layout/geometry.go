package layout

import (
	"math"

	"folio/style"
)

// used holds the resolved box model of a box before its content is laid
// out. width is the content width, height NaN when auto.
type used struct {
	margin, border, padding Insets
	width, height           float64
	minHeight, maxHeight    float64
	radii                   [4]float64
}

func (u used) edgesH() float64 { return u.border.Horizontal() + u.padding.Horizontal() }
func (u used) edgesV() float64 { return u.border.Vertical() + u.padding.Vertical() }

// borderWidths returns the border widths, 0 for sides without a visible
// style.
func (lc *flow) borderWidths(sv *style.SpecifiedValues) Insets {
	b := sv.Border.Get()
	side := func(w style.Length, s style.BorderStyle) float64 {
		if !s.Visible() {
			return 0
		}
		return lc.px(sv, w, 0)
	}
	return Insets{
		Top:    side(b.TopWidth, b.TopStyle),
		Right:  side(b.RightWidth, b.RightStyle),
		Bottom: side(b.BottomWidth, b.BottomStyle),
		Left:   side(b.LeftWidth, b.LeftStyle),
	}
}

func (lc *flow) edges(sv *style.SpecifiedValues, e *style.Edges, cbWidth float64) Insets {
	return Insets{
		Top:    lc.px(sv, e.Top, cbWidth),
		Right:  lc.px(sv, e.Right, cbWidth),
		Bottom: lc.px(sv, e.Bottom, cbWidth),
		Left:   lc.px(sv, e.Left, cbWidth),
	}
}

// margins resolves margins with auto as 0. Vertical percentages refer to the
// containing block width too.
func (lc *flow) margins(sv *style.SpecifiedValues, cbWidth float64) Insets {
	return lc.edges(sv, sv.Margin.Get(), cbWidth)
}

// contentSize converts a specified width or height to a content size.
func contentSize(v, edges float64, sizing style.BoxSizing) float64 {
	if math.IsNaN(v) {
		return v
	}
	if sizing == style.BorderBox {
		v -= edges
	}
	return max(v, 0)
}

// resolve computes the box model of box for the given input: the CSS 2
// width equations for block-level boxes in normal flow, shrink-to-fit for
// floats, positioned and atomic inline boxes, and imposed sizes.
func (lc *flow) resolve(box *Box, in Input) used {
	sv := box.Values
	bx := sv.Box.Get()
	m := sv.Margin.Get()
	cbW := max(in.Width, 0)

	u := used{
		margin:  lc.margins(sv, cbW),
		border:  lc.borderWidths(sv),
		padding: lc.edges(sv, sv.Padding.Get(), cbW),
	}
	br := sv.Border.Get()
	u.radii = [4]float64{
		lc.px(sv, br.TopLeftRadius, cbW), lc.px(sv, br.TopRightRadius, cbW),
		lc.px(sv, br.BottomRightRadius, cbW), lc.px(sv, br.BottomLeftRadius, cbW),
	}

	edgesH := u.edgesH()
	minW := contentSize(lc.px(sv, bx.MinWidth, cbW), edgesH, bx.BoxSizing)
	maxW := math.Inf(1)
	if bx.MaxWidth.Unit != style.None {
		maxW = contentSize(lc.px(sv, bx.MaxWidth, cbW), edgesH, bx.BoxSizing)
	}
	clampW := func(w float64) float64 { return max(min(w, maxW), minW) }

	autoLeft, autoRight := m.Left.IsAuto(), m.Right.IsAuto()
	width := contentSize(lc.definite(sv, bx.Width, cbW), edgesH, bx.BoxSizing)
	switch {
	case in.ForcedWidth >= 0:
		u.width = max(in.ForcedWidth-edgesH, 0)
		autoLeft, autoRight = false, false
	case math.IsNaN(width) && (in.ShrinkToFit || box.IsFloating() || box.IsPositioned()):
		avail := cbW - u.margin.Horizontal() - edgesH
		minC, maxC := lc.intrinsic(box)
		u.width = clampW(min(max(minC, avail), maxC))
		autoLeft, autoRight = false, false
	case math.IsNaN(width):
		u.width = clampW(max(cbW-u.margin.Horizontal()-edgesH, 0))
		autoLeft, autoRight = false, false
	default:
		u.width = clampW(width)
	}
	if autoLeft || autoRight {
		free := cbW - u.width - edgesH - u.margin.Horizontal()
		switch {
		case autoLeft && autoRight:
			u.margin.Left, u.margin.Right = max(free/2, 0), max(free/2, 0)
		case autoLeft:
			u.margin.Left = free
		default:
			u.margin.Right = free
		}
	}

	edgesV := u.edgesV()
	u.minHeight = contentSize(lc.px(sv, bx.MinHeight, max(in.Height, 0)), edgesV, bx.BoxSizing)
	u.maxHeight = math.Inf(1)
	if bx.MaxHeight.Unit != style.None && !(bx.MaxHeight.Unit == style.Percent && in.Height < 0) {
		u.maxHeight = contentSize(lc.px(sv, bx.MaxHeight, in.Height), edgesV, bx.BoxSizing)
	}
	u.height = contentSize(lc.definite(sv, bx.Height, in.Height), edgesV, bx.BoxSizing)
	if in.ForcedHeight >= 0 {
		u.height = max(in.ForcedHeight-edgesV, 0)
	}
	return u
}

func (u used) clampHeight(h float64) float64 {
	return max(min(h, u.maxHeight), u.minHeight)
}

// collapse combines two adjoining vertical margins.
func collapse(a, b float64) float64 {
	return max(a, b, 0) + min(a, b, 0)
}

// relativeOffset returns the shift of a relatively positioned box.
func (lc *flow) relativeOffset(box *Box, cbWidth, cbHeight float64) (dx, dy float64) {
	bx := box.Values.Box.Get()
	switch {
	case !bx.Left.IsAuto():
		dx = lc.px(box.Values, bx.Left, cbWidth)
	case !bx.Right.IsAuto():
		dx = -lc.px(box.Values, bx.Right, cbWidth)
	}
	switch {
	case !bx.Top.IsAuto() && !(bx.Top.Unit == style.Percent && cbHeight < 0):
		dy = lc.px(box.Values, bx.Top, cbHeight)
	case !bx.Bottom.IsAuto() && !(bx.Bottom.Unit == style.Percent && cbHeight < 0):
		dy = -lc.px(box.Values, bx.Bottom, cbHeight)
	}
	return dx, dy
}
