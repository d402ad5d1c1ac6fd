package layout

import (
	"math"

	"folio/style"
)

// parallel reports boxes whose break-before and break-after propagate to
// the break between their ancestors' siblings.
func parallel(b *Box) bool {
	return b != nil && b.IsBlockLevel() && !b.IsPositioned() && !b.IsFloating()
}

// classA returns the break value that wins between two adjoining siblings:
// the break-after values of before and its last descendants and the
// break-before values of after and its first descendants, in tree order.
// Forced values win over avoid, avoid over auto, and among forced values
// the last one wins. A change of named page forces a break.
func classA(before, after *Box) style.BreakValue {
	var values []style.BreakValue
	for b := before; parallel(b); {
		values = append(values, b.Values.Break.Get().After)
		kids := b.Children()
		if len(kids) == 0 {
			break
		}
		b = kids[len(kids)-1]
	}
	for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
		values[i], values[j] = values[j], values[i]
	}
	for b := after; parallel(b); {
		values = append(values, b.Values.Break.Get().Before)
		kids := b.Children()
		if len(kids) == 0 {
			break
		}
		b = kids[0]
	}
	result := style.BreakAuto
	for _, v := range values {
		switch {
		case v.Forced():
			result = v
		case v.Avoid() && !result.Forced():
			result = v
		}
	}
	if !result.Forced() && before != nil && after != nil {
		p1, p2 := before.Values.Box.Get().Page, after.Values.Box.Get().Page
		if p1 != p2 && p2 != "auto" {
			result = style.BreakPage
		}
	}
	return result
}

// appealOf maps a break value to the appeal of breaking there.
func (lc *flow) appealOf(v style.BreakValue) Appeal {
	switch {
	case v.Forced():
		return AppealForced
	case v.Avoid():
		return AppealAvoid
	}
	return lc.natural()
}

// offer rates a break before child i and records the forced side.
func (lc *flow) offer(best *Breakpoint, i int, v style.BreakValue) *Breakpoint {
	cand := lc.frag.candidate(i, Dont, lc.appealOf(v))
	if cand != nil && cand.Appeal == AppealForced {
		lc.frag.side = v
	}
	return overrideIfBetter(best, cand)
}

// runBlockChildren lays out the block-level children of box top to bottom
// starting at y. Adjoining sibling margins collapse; margins at the top of a
// page after an unforced break are truncated. height is the specified
// content height or NaN.
func (lc *flow) runBlockChildren(box *Box, x, y, width, height float64, start, stop *Breakpoint) inner {
	kids := box.Children()
	cbH := height
	if math.IsNaN(cbH) {
		cbH = -1
	}
	var (
		res     = inner{complete: true}
		frags   FragChildren
		cursor  = y
		pending float64
		prev    *Box
		first   = start.resumeIndex()
	)
	finish := func() inner {
		res.height = cursor - y
		if lc.commit() {
			res.content = frags
		}
		return res
	}

	for i := first; i < len(kids); i++ {
		if stop.stopsBefore(i) {
			res.complete = false
			return finish()
		}
		child := kids[i]
		if child.IsPositioned() {
			if f := lc.runPositioned(child, x, y, cursor+pending, width, cbH); f != nil {
				frags = append(frags, f)
			}
			continue
		}

		switch {
		case prev != nil:
			res.breakpoint = lc.offer(res.breakpoint, i, classA(prev, child))
		case i == first && start.Child(i) == nil:
			if v := child.Values.Break.Get().Before; v.Forced() {
				res.breakpoint = lc.offer(res.breakpoint, i, v)
			}
		}
		if lc.frag.done {
			res.complete = false
			return finish()
		}

		childStart := start.Child(i)
		if i != first {
			childStart = nil
		}
		margin := lc.margins(child.Values, width)
		top := margin.Top
		if childStart != nil || !lc.frag.placed && lc.truncate {
			top = 0
		}
		childY := cursor + collapse(pending, top)
		if !lc.frag.placed && lc.truncate {
			childY = cursor
		}

		in := Input{X: x, Y: childY, Width: width, Height: cbH, Start: childStart, Stop: stop.Child(i)}.forced()
		out := lc.runFloat(child, in)
		res.breakpoint = overrideIfBetter(res.breakpoint, nest(i, out.Breakpoint))
		if out.Frag != nil {
			frags = append(frags, out.Frag)
		}
		if out.Baselines.Valid {
			if !res.baselines.Valid {
				res.baselines.First = out.Baselines.First
			}
			res.baselines.Last = out.Baselines.Last
			res.baselines.Valid = true
		}
		cursor = childY + out.Height
		pending = out.Margin.Bottom
		prev = child
		if !out.CompletelyLaidOut || lc.frag.done {
			res.complete = false
			return finish()
		}
	}
	cursor += pending
	return finish()
}

// runFloat lays out an in-flow child. Floats are placed in the flow with a
// shrink-to-fit width on their side; content does not wrap around them.
func (lc *flow) runFloat(child *Box, in Input) Output {
	if !child.IsFloating() {
		return lc.run(child, in)
	}
	out := lc.run(child, in)
	if child.Values.Box.Get().Float == style.FloatRight {
		dx := in.Width - out.Width - out.Margin.Horizontal()
		out.Frag.Translate(dx, 0)
	}
	return out
}

// runPositioned lays out an absolutely positioned child out of flow, at
// its static position unless offsets are given. Offsets refer to the
// content box of the parent starting at x, cbY.
func (lc *flow) runPositioned(child *Box, x, cbY, staticY, cbWidth, cbHeight float64) *Frag {
	sv := child.Values
	bx := sv.Box.Get()
	m := lc.margins(sv, cbWidth)
	left, right := lc.definite(sv, bx.Left, cbWidth), lc.definite(sv, bx.Right, cbWidth)
	top, bottom := lc.definite(sv, bx.Top, cbHeight), lc.definite(sv, bx.Bottom, cbHeight)

	in := Input{X: x, Y: staticY + m.Top, Width: cbWidth, Height: cbHeight}.forced()
	in.ShrinkToFit = true
	if !math.IsNaN(left) {
		in.X = x + left
		if !math.IsNaN(right) && bx.Width.IsAuto() {
			in.ForcedWidth = max(cbWidth-left-right-m.Horizontal(), 0)
		}
	}
	if !math.IsNaN(top) {
		in.Y = cbY + top + m.Top
	}

	lc.frag.enterMonolithic()
	out := lc.run(child, in)
	lc.frag.exitMonolithic(out)

	var dx, dy float64
	if math.IsNaN(left) && !math.IsNaN(right) {
		dx = cbWidth - right - out.Width - m.Horizontal()
	}
	if math.IsNaN(top) && !math.IsNaN(bottom) && cbHeight >= 0 {
		dy = cbY + cbHeight - bottom - m.Bottom - out.Height - in.Y
	}
	out.Frag.Translate(dx, dy)
	return out.Frag
}
