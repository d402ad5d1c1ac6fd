package layout

import (
	"math"

	"folio/style"
)

// fcKind is the formatting context a box establishes for its content.
type fcKind uint8

const (
	fcUnset fcKind = iota
	fcBlock
	fcInline
	fcReplaced
	fcFlex
	fcGrid
	fcTable
)

var fcNames = [...]string{"unset", "block", "inline", "replaced", "flex", "grid", "table"}

func (k fcKind) String() string { return fcNames[k] }

// formattingContext selects the formatting context once and caches it.
func (b *Box) formattingContext() fcKind {
	if b.kind != fcUnset {
		return b.kind
	}
	switch d := b.display(); {
	case b.IsReplaced():
		b.kind = fcReplaced
	case d == style.DisplayFlex || d == style.DisplayInlineFlex:
		b.kind = fcFlex
	case d == style.DisplayGrid || d == style.DisplayInlineGrid:
		b.kind = fcGrid
	case d == style.DisplayTable || d == style.DisplayInlineTable || d == style.DisplayTableRow ||
		d == style.DisplayTableRowGroup || d == style.DisplayTableHeaderGroup || d == style.DisplayTableFooterGroup:
		b.kind = fcTable
	default:
		if _, ok := b.Content.(*Inline); ok {
			b.kind = fcInline
		} else {
			b.kind = fcBlock
		}
	}
	return b.kind
}

// inner is what a formatting context reports about the content of a box.
type inner struct {
	height     float64
	complete   bool
	breakpoint *Breakpoint
	baselines  Baselines
	content    FragContent
}

// run lays out box with the formatting context it establishes.
func (lc *flow) run(box *Box, in Input) Output {
	monolithic := box.IsMonolithic()
	if monolithic {
		lc.frag.enterMonolithic()
		// monolithic boxes are never resumed or cut
		in.Start, in.Stop = nil, nil
	}
	avoid := box.Values.Break.Get().Inside.Avoid()
	if avoid {
		lc.avoid++
	}

	var out Output
	switch box.formattingContext() {
	case fcReplaced:
		out = lc.runReplaced(box, in)
	default:
		out = lc.container(box, in)
	}

	if avoid {
		lc.avoid--
	}
	if monolithic {
		lc.frag.exitMonolithic(out)
		lc.frag.place(in.Y + out.Height)
	}
	if box.IsRelative() && out.Frag != nil {
		out.Frag.Translate(lc.relativeOffset(box, in.Width, in.Height))
	}
	return out
}

// container lays out the edges of a non-replaced box around the content
// laid out by its formatting context. Sides of the box at a page break are
// sliced off.
func (lc *flow) container(box *Box, in Input) Output {
	u := lc.resolve(box, in)
	resumed := in.Start != nil

	top := u.border.Top + u.padding.Top
	border, padding, margin := u.border, u.padding, u.margin
	if resumed {
		top, border.Top, padding.Top, margin.Top = 0, 0, 0, 0
	}
	x := in.X + u.margin.Left
	contentX := x + u.border.Left + u.padding.Left
	contentY := in.Y + top

	var res inner
	switch box.formattingContext() {
	case fcInline:
		res = lc.runInline(box, contentX, contentY, u.width, in.Start, in.Stop)
	case fcFlex:
		res = lc.runFlex(box, contentX, contentY, u)
	case fcGrid:
		res = lc.runBlockChildren(box, contentX, contentY, u.width, u.height, nil, nil)
	case fcTable:
		if box.display() == style.DisplayTableRow {
			res = lc.runTableRow(box, contentX, contentY, u.width)
		} else {
			res = lc.runBlockChildren(box, contentX, contentY, u.width, u.height, in.Start, in.Stop)
		}
	default:
		res = lc.runBlockChildren(box, contentX, contentY, u.width, u.height, in.Start, in.Stop)
	}

	height := res.height
	if !resumed && res.complete {
		if !math.IsNaN(u.height) {
			height = u.height
		}
		height = u.clampHeight(height)
	}
	bottom := u.border.Bottom + u.padding.Bottom
	if !res.complete {
		bottom, border.Bottom, padding.Bottom, margin.Bottom = 0, 0, 0, 0
	}
	borderHeight := top + height + bottom
	if res.complete {
		lc.frag.place(in.Y + borderHeight)
	}

	out := Output{
		Width:             u.width + u.edgesH(),
		Height:            borderHeight,
		Margin:            margin,
		CompletelyLaidOut: res.complete,
		Breakpoint:        res.breakpoint,
		Baselines:         res.baselines,
	}
	if lc.commit() {
		out.Frag = &Frag{
			Box: box,
			Metrics: Metrics{
				Margin: margin, Border: border, Padding: padding,
				X: x, Y: in.Y, Width: out.Width, Height: borderHeight,
				Radii: u.radii,
			},
			Content:   res.content,
			Continued: resumed,
			Continues: !res.complete,
		}
	}
	return out
}
