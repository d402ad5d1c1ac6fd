package layout

import (
	"fmt"
	"strconv"

	"folio/style"
	"folio/utils/debug"
)

// Insets are the widths of the four sides of a margin, border or padding.
type Insets struct {
	Top, Right, Bottom, Left float64
}

// Horizontal is the sum of the left and right sides.
func (in Insets) Horizontal() float64 { return in.Left + in.Right }

// Vertical is the sum of the top and bottom sides.
func (in Insets) Vertical() float64 { return in.Top + in.Bottom }

// Rect is an axis aligned rectangle in px.
type Rect struct {
	X, Y, Width, Height float64
}

// Bottom is the y coordinate of the lower edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Right is the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Union returns the smallest rectangle containing r and o. Empty
// rectangles are ignored.
func (r Rect) Union(o Rect) Rect {
	switch {
	case o.Width <= 0 && o.Height <= 0:
		return r
	case r.Width <= 0 && r.Height <= 0:
		return o
	}
	x, y := min(r.X, o.X), min(r.Y, o.Y)
	return Rect{X: x, Y: y, Width: max(r.Right(), o.Right()) - x, Height: max(r.Bottom(), o.Bottom()) - y}
}

func (r Rect) inset(in Insets) Rect {
	return Rect{
		X: r.X + in.Left, Y: r.Y + in.Top,
		Width: max(r.Width-in.Horizontal(), 0), Height: max(r.Height-in.Vertical(), 0),
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("%s,%s %sx%s", num(r.X), num(r.Y), num(r.Width), num(r.Height))
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Metrics is the geometry of a fragment. Position and size are those of the
// border box in page coordinates. Sides sliced off by a page break are 0.
type Metrics struct {
	Margin, Border, Padding Insets
	X, Y                    float64
	Width, Height           float64
	// top-left, top-right, bottom-right, bottom-left
	Radii [4]float64
}

// BorderBox returns the border box.
func (m Metrics) BorderBox() Rect { return Rect{m.X, m.Y, m.Width, m.Height} }

// PaddingBox returns the padding box.
func (m Metrics) PaddingBox() Rect { return m.BorderBox().inset(m.Border) }

// ContentBox returns the content box.
func (m Metrics) ContentBox() Rect { return m.PaddingBox().inset(m.Padding) }

// MarginBox returns the margin box.
func (m Metrics) MarginBox() Rect {
	return Rect{
		X: m.X - m.Margin.Left, Y: m.Y - m.Margin.Top,
		Width: m.Width + m.Margin.Horizontal(), Height: m.Height + m.Margin.Vertical(),
	}
}

// FragContent mirrors Content with laid out children.
type FragContent interface {
	isFragContent()
}

// FragChildren holds the fragments of child boxes.
type FragChildren []*Frag

// FragLines holds the line boxes of inline content.
type FragLines struct {
	Lines []Line
}

// FragReplaced holds replaced content and, for inline svg, the fragment of
// its content group.
type FragReplaced struct {
	Replaced *Replaced
	Svg      *Frag
}

// FragSvg is the content of svg group and shape fragments. BBox is in the
// user units of the outer svg element; transforms are not applied.
type FragSvg struct {
	BBox     Rect
	Children []*Frag
}

func (FragChildren) isFragContent()  {}
func (*FragLines) isFragContent()    {}
func (*FragReplaced) isFragContent() {}
func (*FragSvg) isFragContent()      {}

// Line is a laid out line box.
type Line struct {
	Rect     Rect
	Baseline float64
	Runs     []Run
}

// Run is a piece of a line drawn with one style: text or an atomic inline
// box. X and Baseline are page coordinates.
type Run struct {
	X, Baseline float64
	Width       float64
	Text        string
	Values      *style.SpecifiedValues
	Atomic      *Frag
}

// Frag is one fragment of a box on one page. Content is nil for boxes
// without content.
type Frag struct {
	Box     *Box
	Metrics Metrics
	Content FragContent
	// Continued is set when the box started on an earlier page, Continues
	// when it goes on on the next one.
	Continued, Continues bool
}

// Children returns the child fragments.
func (f *Frag) Children() []*Frag {
	switch c := f.Content.(type) {
	case FragChildren:
		return c
	case *FragSvg:
		return c.Children
	}
	return nil
}

// Translate moves the fragment and everything inside it.
func (f *Frag) Translate(dx, dy float64) {
	if f == nil || dx == 0 && dy == 0 {
		return
	}
	f.Metrics.X += dx
	f.Metrics.Y += dy
	switch c := f.Content.(type) {
	case FragChildren:
		for _, ch := range c {
			ch.Translate(dx, dy)
		}
	case *FragLines:
		for i := range c.Lines {
			ln := &c.Lines[i]
			ln.Rect.X += dx
			ln.Rect.Y += dy
			ln.Baseline += dy
			for j := range ln.Runs {
				ln.Runs[j].X += dx
				ln.Runs[j].Baseline += dy
				ln.Runs[j].Atomic.Translate(dx, dy)
			}
		}
	case *FragReplaced:
		c.Svg.Translate(dx, dy)
	}
}

// clone copies the fragment tree so that it can be translated without
// affecting the original.
func (f *Frag) clone() *Frag {
	if f == nil {
		return nil
	}
	cp := *f
	switch c := f.Content.(type) {
	case FragChildren:
		kids := make(FragChildren, len(c))
		for i, ch := range c {
			kids[i] = ch.clone()
		}
		cp.Content = kids
	case *FragLines:
		lines := make([]Line, len(c.Lines))
		for i, ln := range c.Lines {
			lines[i] = ln
			lines[i].Runs = make([]Run, len(ln.Runs))
			for j, r := range ln.Runs {
				r.Atomic = r.Atomic.clone()
				lines[i].Runs[j] = r
			}
		}
		cp.Content = &FragLines{Lines: lines}
	case *FragReplaced:
		cp.Content = &FragReplaced{Replaced: c.Replaced, Svg: c.Svg.clone()}
	case *FragSvg:
		kids := make([]*Frag, len(c.Children))
		for i, ch := range c.Children {
			kids[i] = ch.clone()
		}
		cp.Content = &FragSvg{BBox: c.BBox, Children: kids}
	}
	return &cp
}

// Dump writes the fragment tree in a readable form.
func (f *Frag) Dump(tw *debug.TreeWriter, depth int) {
	if f == nil {
		return
	}
	flags := ""
	if f.Continued {
		flags += " continued"
	}
	if f.Continues {
		flags += " continues"
	}
	tw.Line(depth, "%s [%s]%s", f.Box.Name(), f.Metrics.BorderBox(), flags)
	switch c := f.Content.(type) {
	case FragChildren:
		for _, ch := range c {
			ch.Dump(tw, depth+1)
		}
	case *FragLines:
		for _, ln := range c.Lines {
			tw.Line(depth+1, "line [%s] baseline %s", ln.Rect, num(ln.Baseline))
			for _, r := range ln.Runs {
				if r.Atomic != nil {
					r.Atomic.Dump(tw, depth+2)
					continue
				}
				tw.TextBlock(depth+2, "text", r.Text)
			}
		}
	case *FragReplaced:
		if c.Replaced.URL != "" {
			tw.TextBlock(depth+1, "src", c.Replaced.URL)
		}
		c.Svg.Dump(tw, depth+1)
	case *FragSvg:
		tw.Line(depth+1, "bbox [%s]", c.BBox)
		for _, ch := range c.Children {
			ch.Dump(tw, depth+1)
		}
	}
}
