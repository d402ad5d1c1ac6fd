package layout

import (
	"strings"
	"unicode/utf8"

	"folio/style"
	"folio/text"
)

// piece is an unbreakable part of inline content followed by a break
// opportunity, unless glue is set.
type piece struct {
	text      string
	width     float64
	space     string
	spaceW    float64
	hyphen    bool
	hyphenW   float64
	mandatory bool
	glue      bool
	collapses bool
	values    *style.SpecifiedValues
	atomic    *Output
}

func (p *piece) blank() bool { return p.text == "" && p.atomic == nil }

type lineRun struct {
	x, width float64
	// baseline offset from the top of the line
	dy     float64
	text   string
	values *style.SpecifiedValues
	atomic *Output
	// expandable space follows the run
	gap bool
}

type line struct {
	x, avail  float64
	width     float64
	height    float64
	baseline  float64
	runs      []lineRun
	mandatory bool
	last      bool

	pending float64
	content bool
}

func (lc *flow) face(sv *style.SpecifiedValues) *text.Face {
	return lc.faces.Face(text.SpecOf(sv))
}

func (lc *flow) lineHeight(sv *style.SpecifiedValues, face *text.Face) float64 {
	l := sv.Font.Get().LineHeight
	if l.Unit == style.Normal {
		return face.NormalLineHeight()
	}
	fs := sv.FontSize()
	return l.ToPx(style.Basis{FontSize: fs, RootFontSize: sv.RootFontSize(), Percent: fs})
}

func (lc *flow) spacing(sv *style.SpecifiedValues, l style.Length) float64 {
	if l.Unit == style.Normal {
		return 0
	}
	return lc.px(sv, l, 0)
}

// measuring returns a flow that lays out atomic inline boxes completely,
// producing fragments, independently of the page being laid out.
func (lc *flow) measuring() *flow {
	return lc.newFlow(NewFragmentainer(0, false), lc.vw, lc.vh)
}

// pieces splits inline content at its break opportunities and measures
// the parts. Atomic boxes are laid out shrink-to-fit within width.
func (lc *flow) pieces(inl *Inline, width float64) []piece {
	var (
		out []piece
		mf  *flow
	)
	for _, it := range inl.Items {
		switch it.Kind {
		case ItemBreak:
			out = append(out, piece{mandatory: true, values: it.Values})
		case ItemAtomic:
			if mf == nil {
				mf = lc.measuring()
			}
			in := Input{Width: width, Height: -1}.forced()
			in.ShrinkToFit = true
			res := mf.run(it.Box, in)
			out = append(out, piece{width: res.Width + res.Margin.Horizontal(), values: it.Box.Values, atomic: &res})
		case ItemText:
			out = lc.textPieces(out, it)
		}
	}
	return out
}

func (lc *flow) textPieces(out []piece, it InlineItem) []piece {
	sv := it.Values
	tx := sv.Text.Get()
	face := lc.face(sv)
	letter := lc.spacing(sv, tx.LetterSpacing)
	word := lc.spacing(sv, tx.WordSpacing)
	wraps := tx.WhiteSpace.Wraps()
	segs := text.Segments(it.Text, tx.WhiteSpace, tx.WordBreak == "break-all")
	for j, s := range segs {
		p := piece{
			text:      s.Text,
			width:     face.Advance(s.Text) + letter*float64(utf8.RuneCountInString(s.Text)),
			hyphen:    s.Hyphen,
			mandatory: s.Mandatory,
			collapses: tx.WhiteSpace.Collapses(),
			values:    sv,
		}
		if s.Space != "" {
			n := float64(len(s.Space))
			p.space = s.Space
			p.spaceW = face.Advance(s.Space) + (letter+word)*n
		}
		if s.Hyphen {
			p.hyphenW = face.Advance("-")
		}
		last := j == len(segs)-1
		p.glue = !s.Mandatory && (!wraps || last && s.Space == "" && !s.Hyphen)
		out = append(out, p)
	}
	return out
}

// splitAnywhere breaks a text piece wider than avail into parts that fit,
// for overflow-wrap: anywhere and break-word.
func (lc *flow) splitAnywhere(p piece, avail float64) []piece {
	face := lc.face(p.values)
	var (
		parts []piece
		start int
	)
	for i := range p.text {
		if i > start && face.Advance(p.text[start:i+utf8RuneLen(p.text[i:])]) > avail {
			parts = append(parts, piece{text: p.text[start:i], width: face.Advance(p.text[start:i]), values: p.values, collapses: p.collapses})
			start = i
		}
	}
	tail := p
	tail.text = p.text[start:]
	tail.width = face.Advance(tail.text)
	return append(parts, tail)
}

func utf8RuneLen(s string) int {
	_, n := utf8.DecodeRuneInString(s)
	return n
}

// lines breaks inline content greedily into lines of the given width. The
// result is cached for the width.
func (lc *flow) lines(box *Box, inl *Inline, width float64) []*line {
	if inl.cached != nil && inl.cachedWidth == width {
		return inl.cached
	}
	sv := box.Values
	tx := sv.Text.Get()
	indent := lc.px(sv, tx.Indent, width)
	ps := lc.pieces(inl, width)

	var lines []*line
	cur := &line{x: indent, avail: width - indent}
	push := func(mandatory bool) {
		cur.mandatory = mandatory
		if n := len(cur.runs); n > 0 {
			lr := &cur.runs[n-1]
			lr.gap = false
		}
		lines = append(lines, cur)
		cur = &line{avail: width}
	}
	add := func(p *piece) {
		x := cur.width
		if len(cur.runs) > 0 {
			x += cur.pending
			cur.runs[len(cur.runs)-1].gap = cur.pending > 0
		}
		cur.runs = append(cur.runs, lineRun{x: x, width: p.width, text: p.text, values: p.values, atomic: p.atomic})
		cur.width = x + p.width
		cur.pending = p.spaceW
		if !p.blank() {
			cur.content = true
		}
	}

	overflowWrap := tx.OverflowWrap != "normal"
	var group []*piece
	place := func() {
		if len(group) == 0 {
			return
		}
		last := group[len(group)-1]
		need := 0.0
		blank := true
		for _, p := range group {
			need += p.width
			blank = blank && p.blank()
		}
		if last.hyphen {
			need += last.hyphenW
		}
		if cur.content && cur.width+cur.pending+need > cur.avail+epsilon {
			push(false)
		}
		switch {
		case !cur.content && blank && last.collapses && !last.mandatory:
			// collapsible white space at the start of a line
		case !cur.content && overflowWrap && len(group) == 1 && need > cur.avail && last.atomic == nil:
			parts := lc.splitAnywhere(*last, cur.avail)
			for i := range parts {
				if i > 0 {
					push(false)
				}
				add(&parts[i])
			}
		default:
			for _, p := range group {
				add(p)
			}
		}
		if last.hyphen && len(cur.runs) > 0 {
			// shown only when the line ends here
			lr := &cur.runs[len(cur.runs)-1]
			lr.text += text.SoftHyphen
		}
		if last.mandatory {
			push(true)
		}
		group = group[:0]
	}
	for i := range ps {
		group = append(group, &ps[i])
		if !ps[i].glue {
			place()
		}
	}
	place()
	if len(cur.runs) > 0 {
		push(false)
	}
	if n := len(lines); n > 0 {
		lines[n-1].last = true
	}
	for _, ln := range lines {
		lc.finishLine(box, ln)
	}
	inl.cached, inl.cachedWidth = lines, width
	return lines
}

// finishLine resolves hyphens, vertical alignment and horizontal
// alignment of a line.
func (lc *flow) finishLine(box *Box, ln *line) {
	sv := box.Values
	for i := range ln.runs {
		r := &ln.runs[i]
		if !strings.HasSuffix(r.text, text.SoftHyphen) {
			continue
		}
		r.text = strings.TrimSuffix(r.text, text.SoftHyphen)
		if i == len(ln.runs)-1 {
			r.text += "-"
			r.width += lc.face(r.values).Advance("-")
			ln.width = r.x + r.width
		}
	}

	// the strut of the block container
	face := lc.face(sv)
	fm := face.Metrics()
	half := (lc.lineHeight(sv, face) - fm.Ascent - fm.Descent) / 2
	above, below := fm.Ascent+half, fm.Descent+half

	type extent struct{ top, bottom, raise float64 }
	ext := make([]extent, len(ln.runs))
	var aligned []int
	for i := range ln.runs {
		r := &ln.runs[i]
		var e extent
		if r.atomic != nil {
			e.top, e.bottom = atomicAscent(r.atomic)
		} else {
			f := lc.face(r.values)
			m := f.Metrics()
			h := (lc.lineHeight(r.values, f) - m.Ascent - m.Descent) / 2
			e.top, e.bottom = m.Ascent+h, m.Descent+h
		}
		va := style.VerticalAlign{Keyword: "baseline"}
		if r.values != sv {
			va = r.values.Box.Get().VerticalAlign
		}
		switch va.Keyword {
		case "top", "bottom":
			aligned = append(aligned, i)
			ext[i] = e
			continue
		case "sub":
			e.raise = -sv.FontSize() * 0.2
		case "super":
			e.raise = sv.FontSize() / 3
		case "middle":
			e.raise = fm.XHeight/2 - (e.top-e.bottom)/2
		case "text-top":
			e.raise = fm.Ascent - e.top
		case "text-bottom":
			e.raise = e.bottom - fm.Descent
		case "":
			e.raise = lc.px(r.values, va.Length, e.top+e.bottom)
		}
		ext[i] = e
		above = max(above, e.top+e.raise)
		below = max(below, e.bottom-e.raise)
	}
	for _, i := range aligned {
		e := ext[i]
		if h := e.top + e.bottom; h > above+below {
			if ln.runs[i].values.Box.Get().VerticalAlign.Keyword == "top" {
				below = h - above
			} else {
				above = h - below
			}
		}
	}
	ln.height, ln.baseline = above+below, above
	for i := range ln.runs {
		r, e := &ln.runs[i], ext[i]
		switch {
		case !isAligned(aligned, i):
			r.dy = above - e.raise
		case r.values.Box.Get().VerticalAlign.Keyword == "top":
			r.dy = e.top
		default:
			r.dy = ln.height - e.bottom
		}
	}

	tx := sv.Text.Get()
	align := tx.Align
	last := ln.last || ln.mandatory
	if last && align == style.AlignJustify {
		align = style.TextAlign(tx.AlignLast)
		if tx.AlignLast == "auto" || tx.AlignLast == "justify" && ln.last {
			align = style.AlignStart
		}
	}
	rtl := tx.Direction == "rtl"
	switch {
	case align == style.AlignStart && rtl, align == style.AlignEnd && !rtl:
		align = style.AlignRight
	case align == style.AlignStart, align == style.AlignEnd:
		align = style.AlignLeft
	}
	free := ln.avail - ln.width
	var shift float64
	switch align {
	case style.AlignRight:
		shift = free
	case style.AlignCenter:
		shift = free / 2
	case style.AlignJustify:
		gaps := 0
		for _, r := range ln.runs {
			if r.gap {
				gaps++
			}
		}
		if gaps > 0 && free > 0 {
			extra, acc := free/float64(gaps), 0.0
			for i := range ln.runs {
				ln.runs[i].x += acc
				if ln.runs[i].gap {
					acc += extra
				}
			}
			ln.width = ln.avail
		}
	}
	for i := range ln.runs {
		ln.runs[i].x += ln.x + shift
	}
}

func isAligned(list []int, i int) bool {
	for _, j := range list {
		if j == i {
			return true
		}
	}
	return false
}

// atomicAscent returns the extent of an atomic inline box above and below
// its baseline: the last line box inside it, or its bottom margin edge.
func atomicAscent(out *Output) (above, below float64) {
	total := out.Margin.Top + out.Height + out.Margin.Bottom
	above = total
	if out.Baselines.Valid && out.Frag != nil {
		above = out.Margin.Top + out.Baselines.Last - out.Frag.Metrics.Y
	}
	return above, total - above
}

// runInline lays out the lines of an inline formatting context from line
// start.EndIdx up to stop.EndIdx. Breaks between lines honor orphans and
// widows.
func (lc *flow) runInline(box *Box, x, y, width float64, start, stop *Breakpoint) inner {
	inl := box.Content.(*Inline)
	lines := lc.lines(box, inl, width)
	tx := box.Values.Text.Get()
	orphans, widows := int(tx.Orphans), int(tx.Widows)

	res := inner{complete: true}
	var out []Line
	cursor := y
	first := start.resumeIndex()
	for i := first; i < len(lines); i++ {
		if stop.stopsBefore(i) {
			res.complete = false
			break
		}
		if i > first {
			natural := lc.natural()
			if i-first < orphans || len(lines)-i < widows {
				natural = min(natural, AppealAvoid)
			}
			cand := lc.frag.candidate(i, Dont, natural)
			res.breakpoint = overrideIfBetter(res.breakpoint, cand)
			if lc.frag.done {
				res.complete = false
				break
			}
		}
		ln := lines[i]
		if !res.baselines.Valid {
			res.baselines.First = cursor + ln.baseline
		}
		res.baselines.Last = cursor + ln.baseline
		res.baselines.Valid = true
		if lc.commit() {
			out = append(out, materialize(ln, x, cursor))
		}
		cursor += ln.height
		lc.frag.place(cursor)
	}
	res.height = cursor - y
	if lc.commit() {
		res.content = &FragLines{Lines: out}
	}
	return res
}

// materialize positions a cached line at x, y. Consecutive text runs of
// one style are merged unless the line is justified.
func materialize(ln *line, x, y float64) Line {
	out := Line{
		Rect:     Rect{X: x + ln.x, Y: y, Width: ln.width - ln.x, Height: ln.height},
		Baseline: y + ln.baseline,
	}
	for _, r := range ln.runs {
		run := Run{X: x + r.x, Baseline: y + r.dy, Width: r.width, Text: r.text, Values: r.values}
		if r.atomic != nil {
			f := r.atomic.Frag.clone()
			above, _ := atomicAscent(r.atomic)
			f.Translate(run.X+r.atomic.Margin.Left-f.Metrics.X, run.Baseline-above+r.atomic.Margin.Top-f.Metrics.Y)
			run.Atomic = f
			out.Runs = append(out.Runs, run)
			continue
		}
		if run.Text == "" {
			continue
		}
		if n := len(out.Runs); n > 0 {
			prev := &out.Runs[n-1]
			if prev.Atomic == nil && prev.Values == run.Values && prev.Baseline == run.Baseline {
				gap := run.X - (prev.X + prev.Width)
				if gap >= 0 && !justified(ln) {
					if gap > epsilon {
						prev.Text += " "
					}
					prev.Text += run.Text
					prev.Width = run.X + run.Width - prev.X
					continue
				}
			}
		}
		out.Runs = append(out.Runs, run)
	}
	return out
}

func justified(ln *line) bool { return ln.width == ln.avail && !ln.last && !ln.mandatory }
