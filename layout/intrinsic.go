package layout

import (
	"math"

	"folio/style"
)

// intrinsic returns the min-content and max-content widths of the content
// box of box. Percentages resolve against 0.
func (lc *flow) intrinsic(box *Box) (minW, maxW float64) {
	if box.intrinsicW != nil {
		return box.intrinsicW[0], box.intrinsicW[1]
	}
	switch box.formattingContext() {
	case fcReplaced:
		minW = lc.replacedWidth(box)
		maxW = minW
	case fcInline:
		minW, maxW = lc.inlineIntrinsic(box)
	case fcFlex:
		minW, maxW = lc.flexIntrinsic(box)
	case fcTable:
		if box.display() == style.DisplayTableRow {
			for _, c := range box.Children() {
				if c.IsPositioned() {
					continue
				}
				cMin, cMax := lc.outerIntrinsic(c)
				minW += cMin
				maxW += cMax
			}
			break
		}
		minW, maxW = lc.blockIntrinsic(box)
	default:
		minW, maxW = lc.blockIntrinsic(box)
	}
	maxW = max(maxW, minW)
	box.intrinsicW = &[2]float64{minW, maxW}
	return minW, maxW
}

// outerIntrinsic returns the contributions of box to the intrinsic widths of
// its parent: margin box widths, honoring a fixed width and min/max-width.
func (lc *flow) outerIntrinsic(box *Box) (minW, maxW float64) {
	sv := box.Values
	bx := sv.Box.Get()
	edges, margins := lc.outerEdgesH(sv, 0)
	if w := lc.definite(sv, bx.Width, -1); !math.IsNaN(w) && !box.IsReplaced() {
		minW = contentSize(w, edges, bx.BoxSizing)
		maxW = minW
	} else {
		minW, maxW = lc.intrinsic(box)
	}
	lo := contentSize(lc.px(sv, bx.MinWidth, 0), edges, bx.BoxSizing)
	hi := math.Inf(1)
	if !bx.MaxWidth.IsKeyword() && bx.MaxWidth.Unit != style.Percent {
		hi = contentSize(lc.px(sv, bx.MaxWidth, 0), edges, bx.BoxSizing)
	}
	clamp := func(v float64) float64 { return max(min(v, hi), lo) }
	extra := edges + margins
	return clamp(minW) + extra, clamp(maxW) + extra
}

func (lc *flow) blockIntrinsic(box *Box) (minW, maxW float64) {
	for _, c := range box.Children() {
		if c.IsPositioned() {
			continue
		}
		cMin, cMax := lc.outerIntrinsic(c)
		minW, maxW = max(minW, cMin), max(maxW, cMax)
	}
	return minW, maxW
}

func (lc *flow) flexIntrinsic(box *Box) (minW, maxW float64) {
	fl := box.Values.Flex.Get()
	items, _ := flexItems(box)
	gap := lc.px(box.Values, fl.ColumnGap, 0)
	for i, it := range items {
		cMin, cMax := lc.outerIntrinsic(it)
		switch {
		case fl.Direction.IsColumn():
			minW, maxW = max(minW, cMin), max(maxW, cMax)
		case fl.Wrap == style.NoWrap:
			minW += cMin
			maxW += cMax
		default:
			minW = max(minW, cMin)
			maxW += cMax
		}
		if i > 0 && !fl.Direction.IsColumn() {
			maxW += gap
			if fl.Wrap == style.NoWrap {
				minW += gap
			}
		}
	}
	return minW, maxW
}

// replacedWidth is the used content width of a replaced box sized without
// a containing block.
func (lc *flow) replacedWidth(box *Box) float64 {
	rep := box.Content.(*Replaced)
	sv := box.Values
	bx := sv.Box.Get()
	edgesH := lc.borderWidths(sv).Horizontal() + lc.edges(sv, sv.Padding.Get(), 0).Horizontal()
	edgesV := lc.borderWidths(sv).Vertical() + lc.edges(sv, sv.Padding.Get(), 0).Vertical()
	w := contentSize(lc.definite(sv, bx.Width, -1), edgesH, bx.BoxSizing)
	h := contentSize(lc.definite(sv, bx.Height, -1), edgesV, bx.BoxSizing)
	inf := math.Inf(1)
	w, _ = replacedSize(rep.Intrinsic, w, h, -1, 0, inf, 0, inf)
	return w
}

// inlineIntrinsic measures inline content: the widest unbreakable piece and
// the widest line between forced breaks.
func (lc *flow) inlineIntrinsic(box *Box) (minW, maxW float64) {
	inl := box.Content.(*Inline)
	indent := lc.px(box.Values, box.Values.Text.Get().Indent, 0)
	var (
		word, line = 0.0, indent
		pending    float64
		lineStart  = true
	)
	endWord := func() {
		minW = max(minW, word)
		word = 0
	}
	for _, it := range inl.Items {
		var ps []piece
		switch it.Kind {
		case ItemBreak:
			endWord()
			maxW = max(maxW, line)
			line, pending, lineStart = 0, 0, true
			continue
		case ItemAtomic:
			cMin, cMax := lc.outerIntrinsic(it.Box)
			ps = []piece{{width: cMax, values: it.Box.Values}}
			minW = max(minW, cMin)
		case ItemText:
			ps = lc.textPieces(nil, it)
		}
		for i := range ps {
			p := &ps[i]
			if lineStart && p.blank() && p.collapses && !p.mandatory {
				continue
			}
			if p.atomic == nil && it.Kind == ItemText {
				word += p.width
			}
			line += pending + p.width
			pending = p.spaceW
			lineStart = false
			if p.mandatory {
				endWord()
				maxW = max(maxW, line)
				line, pending, lineStart = 0, 0, true
				continue
			}
			if !p.glue {
				if p.hyphen {
					word += p.hyphenW
				}
				endWord()
			}
		}
	}
	endWord()
	maxW = max(maxW, line)
	return minW, maxW
}
