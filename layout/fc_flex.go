package layout

import (
	"cmp"
	"math"
	"slices"

	"folio/style"
)

// flexItem is the state of one item during flex layout. Main sizes are
// border box sizes.
type flexItem struct {
	box          *Box
	base, hypo   float64
	minMain      float64
	maxMain      float64
	target       float64
	grow, shrink float64
	frozen       bool
	// margins on the main axis
	marginMain float64
	out        Output
	// outer cross size
	cross float64
}

func (it *flexItem) clamp(v float64) float64 { return max(min(v, it.maxMain), it.minMain) }

// flexLine is a run of items sharing a cross size.
type flexLine struct {
	items []*flexItem
	cross float64
}

// flexAlign returns the effective cross axis alignment of an item.
func flexAlign(container, item *style.SpecifiedValues) style.Align {
	a := item.Flex.Get().AlignSelf
	if a == style.AlignAuto {
		a = container.Flex.Get().AlignItems
	}
	if a == style.AlignNormal {
		a = style.AlignStretch
	}
	return a
}

// distribute returns the leading offset and the space between items for
// justify-content or align-content.
func distribute(a style.Align, free float64, n int) (lead, between float64) {
	if free < 0 {
		switch a {
		case style.AlignSpaceBetween:
			a = style.AlignFlexStart
		case style.AlignSpaceAround, style.AlignSpaceEvenly:
			a = style.AlignCenterItems
		}
	}
	switch a {
	case style.AlignFlexEnd, style.AlignEndItems:
		return free, 0
	case style.AlignCenterItems:
		return free / 2, 0
	case style.AlignSpaceBetween:
		if n > 1 {
			return 0, free / float64(n-1)
		}
	case style.AlignSpaceAround:
		if n > 0 {
			return free / float64(2*n), free / float64(n)
		}
	case style.AlignSpaceEvenly:
		return free / float64(n+1), free / float64(n+1)
	}
	return 0, 0
}

// resolveFlexible sizes items to fill avail along the main axis.
func resolveFlexible(items []*flexItem, avail float64) {
	var used float64
	for _, it := range items {
		used += it.hypo + it.marginMain
	}
	growing := used < avail
	for _, it := range items {
		it.target = it.hypo
		factor := it.shrink
		if growing {
			factor = it.grow
		}
		it.frozen = factor == 0 || growing && it.base > it.hypo || !growing && it.base < it.hypo
	}
	initialFree := avail
	for _, it := range items {
		if it.frozen {
			initialFree -= it.target + it.marginMain
		} else {
			initialFree -= it.base + it.marginMain
		}
	}

	for range len(items) + 1 {
		free := avail
		var sumGrow, sumShrink float64
		unfrozen := false
		for _, it := range items {
			if it.frozen {
				free -= it.target + it.marginMain
				continue
			}
			unfrozen = true
			free -= it.base + it.marginMain
			sumGrow += it.grow
			sumShrink += it.shrink * it.base
		}
		if !unfrozen {
			return
		}
		sumFactor := sumGrow
		if !growing {
			sumFactor = 0
			for _, it := range items {
				if !it.frozen {
					sumFactor += it.shrink
				}
			}
		}
		if sumFactor < 1 && math.Abs(initialFree*sumFactor) < math.Abs(free) {
			free = initialFree * sumFactor
		}

		var violation float64
		for _, it := range items {
			if it.frozen {
				continue
			}
			switch {
			case growing && sumGrow > 0:
				it.target = it.base + free*it.grow/sumGrow
			case !growing && sumShrink > 0:
				it.target = it.base + free*it.shrink*it.base/sumShrink
			default:
				it.target = it.base
			}
			clamped := it.clamp(it.target)
			violation += clamped - it.target
			it.target = clamped
		}
		for _, it := range items {
			if it.frozen {
				continue
			}
			switch {
			case violation == 0:
				it.frozen = true
			case violation > 0 && it.target == it.minMain:
				it.frozen = true
			case violation < 0 && it.target == it.maxMain:
				it.frozen = true
			}
		}
	}
}

// flexItems collects the in-flow items of a flex container in order-modified
// document order. Positioned children are laid out separately.
func flexItems(box *Box) (items, positioned []*Box) {
	for _, k := range box.Children() {
		if k.IsPositioned() {
			positioned = append(positioned, k)
			continue
		}
		items = append(items, k)
	}
	slices.SortStableFunc(items, func(a, b *Box) int {
		return cmp.Compare(a.Values.Flex.Get().Order, b.Values.Flex.Get().Order)
	})
	return items, positioned
}

// runFlex lays out a flex container's items. Flex containers are
// monolithic: the whole container is laid out at once.
func (lc *flow) runFlex(box *Box, x, y float64, u used) inner {
	fl := box.Values.Flex.Get()
	kids, positioned := flexItems(box)
	cbH := u.height
	if math.IsNaN(cbH) {
		cbH = -1
	}
	var res inner
	if fl.Direction.IsColumn() {
		res = lc.flexColumn(box, kids, x, y, u)
	} else {
		res = lc.flexRow(box, kids, x, y, u)
	}
	if lc.commit() {
		frags, _ := res.content.(FragChildren)
		for _, p := range positioned {
			if f := lc.runPositioned(p, x, y, y, u.width, cbH); f != nil {
				frags = append(frags, f)
			}
		}
		res.content = frags
	}
	res.complete = true
	return res
}

// outerEdgesH returns the horizontal border and padding of a box and its
// horizontal margins.
func (lc *flow) outerEdgesH(sv *style.SpecifiedValues, cbW float64) (edges, margins float64) {
	b := lc.borderWidths(sv)
	p := lc.edges(sv, sv.Padding.Get(), cbW)
	return b.Horizontal() + p.Horizontal(), lc.margins(sv, cbW).Horizontal()
}

func (lc *flow) flexRow(box *Box, kids []*Box, x, y float64, u used) inner {
	sv := box.Values
	fl := sv.Flex.Get()
	mainSize := u.width
	colGap := lc.px(sv, fl.ColumnGap, mainSize)
	rowGap := lc.px(sv, fl.RowGap, max(u.height, 0))
	cbH := u.height
	if math.IsNaN(cbH) {
		cbH = -1
	}

	items := make([]*flexItem, 0, len(kids))
	for _, k := range kids {
		ksv := k.Values
		kfl := ksv.Flex.Get()
		kbx := ksv.Box.Get()
		edgesH, marginsH := lc.outerEdgesH(ksv, mainSize)
		minC, maxC := lc.intrinsic(k)
		it := &flexItem{box: k, grow: float64(kfl.Grow), shrink: float64(kfl.Shrink), marginMain: marginsH}
		basis := lc.definite(ksv, kfl.Basis, mainSize)
		switch {
		case !math.IsNaN(basis):
			if kbx.BoxSizing != style.BorderBox {
				basis += edgesH
			}
		case !math.IsNaN(lc.definite(ksv, kbx.Width, mainSize)):
			basis = contentSize(lc.definite(ksv, kbx.Width, mainSize), edgesH, kbx.BoxSizing) + edgesH
		default:
			basis = maxC + edgesH
		}
		it.base = basis
		it.minMain = contentSize(lc.px(ksv, kbx.MinWidth, mainSize), edgesH, kbx.BoxSizing) + edgesH
		if kbx.MinWidth.IsAuto() && kbx.Overflow == "visible" {
			it.minMain = minC + edgesH
		}
		it.maxMain = math.Inf(1)
		if !kbx.MaxWidth.IsKeyword() {
			it.maxMain = contentSize(lc.px(ksv, kbx.MaxWidth, mainSize), edgesH, kbx.BoxSizing) + edgesH
		}
		it.minMain = min(it.minMain, it.maxMain)
		it.hypo = it.clamp(it.base)
		items = append(items, it)
	}

	var lines []*flexLine
	cur := &flexLine{}
	used := 0.0
	for _, it := range items {
		size := it.hypo + it.marginMain
		if fl.Wrap != style.NoWrap && len(cur.items) > 0 && used+colGap+size > mainSize+epsilon {
			lines = append(lines, cur)
			cur, used = &flexLine{}, 0
		}
		if len(cur.items) > 0 {
			used += colGap
		}
		used += size
		cur.items = append(cur.items, it)
	}
	if len(cur.items) > 0 || len(lines) == 0 {
		lines = append(lines, cur)
	}

	for _, ln := range lines {
		gaps := colGap * float64(max(len(ln.items)-1, 0))
		resolveFlexible(ln.items, mainSize-gaps)
		for _, it := range ln.items {
			in := Input{X: x, Y: y, Width: mainSize, Height: cbH}.forced()
			in.ForcedWidth = it.target
			it.out = lc.run(it.box, in)
			it.cross = it.out.Height + it.out.Margin.Vertical()
			ln.cross = max(ln.cross, it.cross)
		}
	}
	if len(lines) == 1 && !math.IsNaN(u.height) && fl.Wrap == style.NoWrap {
		lines[0].cross = u.clampHeight(u.height)
	}

	crossTotal := rowGap * float64(len(lines)-1)
	for _, ln := range lines {
		crossTotal += ln.cross
	}
	lead, between := 0.0, rowGap
	if !math.IsNaN(u.height) && len(lines) > 0 && fl.Wrap != style.NoWrap {
		free := u.height - crossTotal
		ac := fl.AlignContent
		if (ac == style.AlignNormal || ac == style.AlignStretch) && free > 0 {
			for _, ln := range lines {
				ln.cross += free / float64(len(lines))
			}
			crossTotal = u.height
		} else {
			var extra float64
			lead, extra = distribute(ac, free, len(lines))
			between += extra
		}
	}
	if fl.Wrap == style.WrapReverse {
		slices.Reverse(lines)
	}

	justify := fl.JustifyContent
	if fl.Direction.IsReverse() {
		switch justify {
		case style.AlignFlexStart, style.AlignNormal, style.AlignStartItems:
			justify = style.AlignFlexEnd
		case style.AlignFlexEnd, style.AlignEndItems:
			justify = style.AlignFlexStart
		}
	}

	res := inner{}
	var frags FragChildren
	cy := y + lead
	for li, ln := range lines {
		if li > 0 {
			cy += between
		}
		order := ln.items
		if fl.Direction.IsReverse() {
			order = slices.Clone(order)
			slices.Reverse(order)
		}
		free := mainSize - colGap*float64(max(len(order)-1, 0))
		for _, it := range order {
			free -= it.target + it.marginMain
		}
		jl, jb := distribute(justify, free, len(order))
		cx := x + jl
		for i, it := range order {
			if i > 0 {
				cx += colGap + jb
			}
			out := it.out
			a := flexAlign(sv, it.box.Values)
			if a == style.AlignStretch && it.box.Values.Box.Get().Height.IsAuto() {
				in := Input{X: cx, Y: cy + out.Margin.Top, Width: mainSize, Height: cbH}.forced()
				in.ForcedWidth = it.target
				in.ForcedHeight = max(ln.cross-out.Margin.Vertical(), 0)
				out = lc.run(it.box, in)
			} else {
				var dy float64
				switch a {
				case style.AlignFlexEnd, style.AlignEndItems:
					dy = ln.cross - it.cross
				case style.AlignCenterItems:
					dy = (ln.cross - it.cross) / 2
				}
				dy += cy + out.Margin.Top - y
				out.Frag.Translate(cx-x, dy)
				if out.Baselines.Valid {
					out.Baselines.First += dy
					out.Baselines.Last += dy
				}
			}
			if out.Frag != nil {
				frags = append(frags, out.Frag)
			}
			if out.Baselines.Valid && !res.baselines.Valid {
				res.baselines = out.Baselines
			}
			cx += it.target + it.marginMain
		}
		cy += ln.cross
	}
	res.height = cy - y
	if len(items) == 0 {
		res.height = 0
	}
	res.content = frags
	return res
}

// flexColumn lays out a single line of items top to bottom.
func (lc *flow) flexColumn(box *Box, kids []*Box, x, y float64, u used) inner {
	sv := box.Values
	fl := sv.Flex.Get()
	gap := lc.px(sv, fl.RowGap, max(u.height, 0))
	cbH := u.height
	if math.IsNaN(cbH) {
		cbH = -1
	}

	items := make([]*flexItem, 0, len(kids))
	for _, k := range kids {
		ksv := k.Values
		kfl := ksv.Flex.Get()
		kbx := ksv.Box.Get()
		in := Input{X: x, Y: y, Width: u.width, Height: cbH}.forced()
		if flexAlign(sv, ksv) != style.AlignStretch || !kbx.Width.IsAuto() {
			in.ShrinkToFit = true
		}
		it := &flexItem{box: k, grow: float64(kfl.Grow), shrink: float64(kfl.Shrink)}
		it.out = lc.run(k, in)
		it.marginMain = it.out.Margin.Vertical()
		edgesV := lc.borderWidths(ksv).Vertical() + lc.edges(ksv, ksv.Padding.Get(), u.width).Vertical()
		basis := lc.definite(ksv, kfl.Basis, cbH)
		switch {
		case !math.IsNaN(basis):
			if kbx.BoxSizing != style.BorderBox {
				basis += edgesV
			}
		default:
			basis = it.out.Height
		}
		it.base = basis
		it.minMain = contentSize(lc.px(ksv, kbx.MinHeight, max(cbH, 0)), edgesV, kbx.BoxSizing) + edgesV
		it.maxMain = math.Inf(1)
		if !kbx.MaxHeight.IsKeyword() && cbH >= 0 {
			it.maxMain = contentSize(lc.px(ksv, kbx.MaxHeight, cbH), edgesV, kbx.BoxSizing) + edgesV
		}
		it.minMain = min(it.minMain, it.maxMain)
		it.hypo = it.clamp(it.base)
		it.target = it.hypo
		items = append(items, it)
	}

	gaps := gap * float64(max(len(items)-1, 0))
	mainSize := u.height
	if math.IsNaN(mainSize) {
		mainSize = gaps
		for _, it := range items {
			mainSize += it.hypo + it.marginMain
		}
		mainSize = u.clampHeight(mainSize)
	}
	resolveFlexible(items, mainSize-gaps)

	order := items
	if fl.Direction.IsReverse() {
		order = slices.Clone(items)
		slices.Reverse(order)
	}
	free := mainSize - gaps
	for _, it := range order {
		free -= it.target + it.marginMain
	}
	lead, between := distribute(fl.JustifyContent, free, len(order))

	res := inner{}
	var frags FragChildren
	cy := y + lead
	for i, it := range order {
		if i > 0 {
			cy += gap + between
		}
		out := it.out
		if math.Abs(it.target-out.Height) > epsilon || lc.commit() {
			in := Input{X: x, Y: cy, Width: u.width, Height: cbH}.forced()
			in.ForcedWidth = out.Width
			if math.Abs(it.target-out.Height) > epsilon {
				in.ForcedHeight = it.target
			}
			out = lc.run(it.box, in)
		}
		if out.Frag != nil {
			var dx float64
			switch flexAlign(sv, it.box.Values) {
			case style.AlignFlexEnd, style.AlignEndItems:
				dx = u.width - out.Width - out.Margin.Horizontal()
			case style.AlignCenterItems:
				dx = (u.width - out.Width - out.Margin.Horizontal()) / 2
			}
			out.Frag.Translate(dx, out.Margin.Top)
			frags = append(frags, out.Frag)
		}
		if out.Baselines.Valid && !res.baselines.Valid {
			res.baselines = out.Baselines
			res.baselines.First += out.Margin.Top
			res.baselines.Last += out.Margin.Top
		}
		cy += it.target + it.marginMain
	}
	res.height = max(cy-y, 0)
	if !math.IsNaN(u.height) {
		res.height = mainSize
	}
	res.content = frags
	return res
}
