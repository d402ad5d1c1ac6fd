package layout

import (
	"go.uber.org/zap"

	"folio/css/rules"
	"folio/style"
	"folio/utils/debug"
)

// Page is one laid out page.
type Page struct {
	Index int
	// Name is the named page of the first box on the page.
	Name string
	// Blank pages are inserted to honor left, right, recto and verso breaks.
	Blank   bool
	Values  *style.PageValues
	PageBox Rect
	// ContentBox is the page area content is laid out into.
	ContentBox Rect
	Root       *Frag
	Margins    []*MarginBox
	// Break is where the page ends, nil for the last page.
	Break *Breakpoint
}

// MarginBox is a laid out page-margin box.
type MarginBox struct {
	Area string
	Rect Rect
	Frag *Frag
}

// PageStyler returns the page cascade result for a page.
type PageStyler func(rules.PageContext) *style.PageValues

// Options control pagination.
type Options struct {
	// Width and Height are the paper size in px used when @page does not
	// set one.
	Width, Height float64
	// MarginBoxes enables the layout of page-margin boxes.
	MarginBoxes bool
	// MaxPages stops pagination, 0 means no limit.
	MaxPages int
}

// Paginate lays out the box tree into pages. Each page is laid out twice:
// a discovery pass finds the best breakpoint, a commit pass produces the
// fragments up to it. Page-margin boxes are laid out once the number of
// pages is known.
func (c *Context) Paginate(root *Box, styler PageStyler, opts Options) []*Page {
	var (
		pages    []*Page
		prev     *Breakpoint
		truncate bool
		side     style.BreakValue
	)
	log := c.log.Named("paginate")
	for done := root == nil; !done; {
		if opts.MaxPages > 0 && len(pages) >= opts.MaxPages {
			log.Warn("Page limit reached, content truncated", zap.Int("pages", opts.MaxPages))
			break
		}
		name := pageName(root, prev)
		if needsBlank(side, len(pages)) {
			pc := rules.PageContext{Name: name, Index: len(pages), Blank: true}
			page := c.newPage(pc, styler, opts)
			pages = append(pages, page)
			log.Debug("Blank page inserted", zap.Int("page", page.Index+1), zap.String("side", string(side)))
		}
		side = ""

		pc := rules.PageContext{Name: name, Index: len(pages)}
		page := c.newPage(pc, styler, opts)
		cb := page.ContentBox
		vw, vh := page.PageBox.Width, page.PageBox.Height

		f := NewFragmentainer(cb.Height, true)
		f.origin = cb.Y
		lc := c.newFlow(f, vw, vh)
		lc.truncate = truncate
		in := Input{X: cb.X, Y: cb.Y, Width: cb.Width, Height: cb.Height, Start: prev}.forced()
		out := lc.run(root, in)

		bp := out.Breakpoint
		switch {
		case out.CompletelyLaidOut:
			bp, done = nil, true
		case bp == nil || prev != nil && bp.String() == prev.String():
			log.Warn("No usable breakpoint, laying out the rest on one page", zap.Int("page", page.Index+1))
			bp, done = nil, true
		}

		commit := NewFragmentainer(cb.Height, false)
		commit.origin = cb.Y
		lc = c.newFlow(commit, vw, vh)
		lc.truncate = truncate
		in.Stop = bp
		page.Root = lc.run(root, in).Frag
		page.Break = bp
		pages = append(pages, page)

		if bp != nil {
			truncate = bp.Appeal != AppealForced
			if bp.Appeal == AppealForced {
				side = f.side
			}
			log.Debug("Page laid out", zap.Int("page", page.Index+1), zap.Stringer("break", bp))
		}
		prev = bp
	}

	if opts.MarginBoxes {
		for _, p := range pages {
			c.layoutMarginBoxes(p, len(pages))
		}
	}
	return pages
}

// needsBlank reports whether a forced break to a given side needs a blank
// page before the page with index i. The first page is a right page.
func needsBlank(side style.BreakValue, i int) bool {
	left := i%2 == 1
	switch side {
	case style.BreakLeft, style.BreakVerso:
		return !left
	case style.BreakRight, style.BreakRecto:
		return left
	}
	return false
}

// pageName follows the resume path from root and returns the innermost
// named page on it.
func pageName(root *Box, bp *Breakpoint) string {
	name := ""
	for b := root; b != nil; {
		if p := string(b.Values.Box.Get().Page); p != "auto" && p != "" {
			name = p
		}
		kids := b.Children()
		i := bp.resumeIndex()
		if i >= len(kids) {
			break
		}
		bp = bp.Child(i)
		b = kids[i]
	}
	return name
}

// newPage sizes a page from its page values.
func (c *Context) newPage(pc rules.PageContext, styler PageStyler, opts Options) *Page {
	page := &Page{Index: pc.Index, Name: pc.Name, Blank: pc.Blank}
	w, h := opts.Width, opts.Height
	var sv *style.SpecifiedValues
	if styler != nil {
		page.Values = styler(pc)
		sv = page.Values.Values
	}
	if sv == nil {
		page.PageBox = Rect{Width: w, Height: h}
		page.ContentBox = page.PageBox
		return page
	}

	basis := style.Basis{FontSize: sv.FontSize(), RootFontSize: sv.RootFontSize(), ViewportWidth: w, ViewportHeight: h}
	size := sv.Page.Get().Size
	if !size.IsAuto() {
		w, h = size.Width.ToPx(basis), size.Height.ToPx(basis)
	}
	switch {
	case size.Orientation == "landscape" && w < h, size.Orientation == "portrait" && w > h:
		w, h = h, w
	}
	page.PageBox = Rect{Width: w, Height: h}

	lc := c.newFlow(NewFragmentainer(0, false), w, h)
	margin := lc.edges(sv, sv.Margin.Get(), w)
	border := lc.borderWidths(sv)
	padding := lc.edges(sv, sv.Padding.Get(), w)
	page.ContentBox = page.PageBox.inset(margin).inset(border).inset(padding)
	return page
}

// marginRect returns the rectangle of a margin area on a page of size w, h
// with page margins m.
func marginRect(area string, w, h float64, m Insets) (Rect, bool) {
	innerW := max(w-m.Left-m.Right, 0)
	innerH := max(h-m.Top-m.Bottom, 0)
	third := func(start, length float64, i int) (float64, float64) {
		return start + length*float64(i)/3, length / 3
	}
	horizontal := map[string]int{"left": 0, "center": 1, "right": 2}
	vertical := map[string]int{"top": 0, "middle": 1, "bottom": 2}
	switch area {
	case "top-left-corner":
		return Rect{0, 0, m.Left, m.Top}, true
	case "top-right-corner":
		return Rect{w - m.Right, 0, m.Right, m.Top}, true
	case "bottom-left-corner":
		return Rect{0, h - m.Bottom, m.Left, m.Bottom}, true
	case "bottom-right-corner":
		return Rect{w - m.Right, h - m.Bottom, m.Right, m.Bottom}, true
	}
	edge, pos, ok := cutArea(area)
	if !ok {
		return Rect{}, false
	}
	switch edge {
	case "top", "bottom":
		i, ok := horizontal[pos]
		if !ok {
			return Rect{}, false
		}
		x, width := third(m.Left, innerW, i)
		if edge == "top" {
			return Rect{x, 0, width, m.Top}, true
		}
		return Rect{x, h - m.Bottom, width, m.Bottom}, true
	default:
		i, ok := vertical[pos]
		if !ok {
			return Rect{}, false
		}
		y, height := third(m.Top, innerH, i)
		if edge == "left" {
			return Rect{0, y, m.Left, height}, true
		}
		return Rect{w - m.Right, y, m.Right, height}, true
	}
}

func cutArea(area string) (edge, pos string, ok bool) {
	for _, e := range []string{"top", "bottom", "left", "right"} {
		if len(area) > len(e)+1 && area[:len(e)] == e && area[len(e)] == '-' {
			return e, area[len(e)+1:], true
		}
	}
	return "", "", false
}

// marginText renders the content of a margin box. counter(page) and
// counter(pages) are the page number and count; other counters are 0.
func marginText(content style.Content, page, pages int) string {
	var s string
	for _, it := range content.Items() {
		switch it.Kind {
		case style.ContentString:
			s += it.Text
		case style.ContentCounter, style.ContentCounters:
			v := 0
			switch it.Name {
			case "page":
				v = page
			case "pages":
				v = pages
			}
			s += FormatCounter(v, it.Style)
		case style.ContentOpenQuote:
			s += quote(0, true)
		case style.ContentCloseQuote:
			s += quote(0, false)
		}
	}
	return s
}

// layoutMarginBoxes lays out the margin areas of a page whose content
// generates a box.
func (c *Context) layoutMarginBoxes(p *Page, pages int) {
	if p.Values == nil {
		return
	}
	m := Insets{
		Top:    p.ContentBox.Y,
		Left:   p.ContentBox.X,
		Right:  p.PageBox.Width - p.ContentBox.Right(),
		Bottom: p.PageBox.Height - p.ContentBox.Bottom(),
	}
	for _, area := range marginAreas {
		sv, ok := p.Values.Margins[area]
		if !ok || !sv.Generated.Get().Content.Generates() {
			continue
		}
		r, ok := marginRect(area, p.PageBox.Width, p.PageBox.Height, m)
		if !ok || r.Width <= 0 || r.Height <= 0 {
			continue
		}
		box := NewBox(style.WithDisplay(sv, style.DisplayBlock), nil)
		box.Pseudo = area
		if s := marginText(sv.Generated.Get().Content, p.Index+1, pages); s != "" {
			box.AddInline(InlineItem{Kind: ItemText, Text: s, Values: sv})
		}
		lc := c.newFlow(NewFragmentainer(0, false), p.PageBox.Width, p.PageBox.Height)
		in := Input{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}.forced()
		out := lc.run(box, in)
		switch sv.Box.Get().VerticalAlign.Keyword {
		case "middle":
			out.Frag.Translate(0, (r.Height-out.Height-out.Margin.Vertical())/2)
		case "bottom":
			out.Frag.Translate(0, r.Height-out.Height-out.Margin.Vertical())
		}
		p.Margins = append(p.Margins, &MarginBox{Area: area, Rect: r, Frag: out.Frag})
	}
}

// margin areas in painting order
var marginAreas = []string{
	"top-left-corner", "top-left", "top-center", "top-right", "top-right-corner",
	"right-top", "right-middle", "right-bottom",
	"bottom-right-corner", "bottom-right", "bottom-center", "bottom-left", "bottom-left-corner",
	"left-bottom", "left-middle", "left-top",
}

// Dump writes the pages in a readable form.
func Dump(pages []*Page) string {
	tw := debug.NewTreeWriter()
	for _, p := range pages {
		flags := ""
		if p.Name != "" {
			flags += " name=" + p.Name
		}
		if p.Blank {
			flags += " blank"
		}
		tw.Line(0, "page %d [%s] content [%s]%s", p.Index+1, p.PageBox, p.ContentBox, flags)
		if p.Break != nil {
			tw.Line(1, "break %s", p.Break)
		}
		p.Root.Dump(tw, 1)
		for _, mb := range p.Margins {
			tw.Line(1, "@%s [%s]", mb.Area, mb.Rect)
			mb.Frag.Dump(tw, 2)
		}
	}
	return tw.String()
}
