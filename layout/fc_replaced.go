package layout

import (
	"math"
	"strconv"
	"strings"

	"folio/dom"
	"folio/images"
)

// Default object size of replaced content without natural dimensions.
const (
	defaultObjectWidth  = 300
	defaultObjectHeight = 150
)

// replacedSize applies the default sizing algorithm of replaced elements to
// the specified content size w, h (NaN when auto) and clamps the result.
func replacedSize(in images.Intrinsic, w, h, cbWidth, minW, maxW, minH, maxH float64) (float64, float64) {
	ratio := in.Ratio
	autoW, autoH := math.IsNaN(w), math.IsNaN(h)
	switch {
	case autoW && autoH:
		switch {
		case in.Width > 0:
			w = in.Width
		case in.Height > 0 && ratio > 0:
			w = in.Height * ratio
		case ratio > 0 && cbWidth > 0:
			w = cbWidth
		default:
			w = defaultObjectWidth
		}
		switch {
		case in.Height > 0 && in.Width > 0, in.Height > 0 && ratio == 0:
			h = in.Height
		case ratio > 0:
			h = w / ratio
		default:
			h = defaultObjectHeight
		}
	case autoW:
		switch {
		case ratio > 0:
			w = h * ratio
		case in.Width > 0:
			w = in.Width
		default:
			w = defaultObjectWidth
		}
	case autoH:
		switch {
		case ratio > 0:
			h = w / ratio
		case in.Height > 0:
			h = in.Height
		default:
			h = defaultObjectHeight
		}
	}

	cw := max(min(w, maxW), minW)
	if cw != w && autoH && ratio > 0 {
		h = cw / ratio
	}
	ch := max(min(h, maxH), minH)
	if ch != h && autoW && ratio > 0 && cw == w {
		cw = max(min(ch*ratio, maxW), minW)
	}
	return cw, ch
}

// runReplaced lays out an image, object or outer svg element. Replaced
// boxes are monolithic.
func (lc *flow) runReplaced(box *Box, in Input) Output {
	rep := box.Content.(*Replaced)
	sv := box.Values
	bx := sv.Box.Get()
	cbW := max(in.Width, 0)

	u := used{
		margin:  lc.margins(sv, cbW),
		border:  lc.borderWidths(sv),
		padding: lc.edges(sv, sv.Padding.Get(), cbW),
	}
	edgesH, edgesV := u.edgesH(), u.edgesV()
	w := contentSize(lc.definite(sv, bx.Width, in.Width), edgesH, bx.BoxSizing)
	h := contentSize(lc.definite(sv, bx.Height, in.Height), edgesV, bx.BoxSizing)
	if in.ForcedWidth >= 0 {
		w = max(in.ForcedWidth-edgesH, 0)
	}
	if in.ForcedHeight >= 0 {
		h = max(in.ForcedHeight-edgesV, 0)
	}
	minW := contentSize(lc.px(sv, bx.MinWidth, cbW), edgesH, bx.BoxSizing)
	minH := contentSize(lc.px(sv, bx.MinHeight, max(in.Height, 0)), edgesV, bx.BoxSizing)
	maxW, maxH := math.Inf(1), math.Inf(1)
	if !bx.MaxWidth.IsKeyword() {
		maxW = contentSize(lc.px(sv, bx.MaxWidth, cbW), edgesH, bx.BoxSizing)
	}
	if !bx.MaxHeight.IsKeyword() && in.Height >= 0 {
		maxH = contentSize(lc.px(sv, bx.MaxHeight, in.Height), edgesV, bx.BoxSizing)
	}
	avail := -1.0
	if in.Width >= 0 {
		avail = cbW - u.margin.Horizontal() - edgesH
	}
	u.width, u.height = replacedSize(rep.Intrinsic, w, h, avail, minW, maxW, minH, maxH)

	m := sv.Margin.Get()
	if in.ForcedWidth < 0 && !box.IsInlineLevel() && !box.IsFloating() && !box.IsPositioned() && !in.ShrinkToFit {
		free := cbW - u.width - edgesH - u.margin.Horizontal()
		switch {
		case m.Left.IsAuto() && m.Right.IsAuto():
			u.margin.Left, u.margin.Right = max(free/2, 0), max(free/2, 0)
		case m.Left.IsAuto():
			u.margin.Left = free
		case m.Right.IsAuto():
			u.margin.Right = free
		}
	}

	out := Output{
		Width:             u.width + edgesH,
		Height:            u.height + edgesV,
		Margin:            u.margin,
		CompletelyLaidOut: true,
	}
	if lc.commit() {
		x := in.X + u.margin.Left
		f := &Frag{
			Box: box,
			Metrics: Metrics{
				Margin: u.margin, Border: u.border, Padding: u.padding,
				X: x, Y: in.Y, Width: out.Width, Height: out.Height,
			},
		}
		content := &FragReplaced{Replaced: rep}
		if rep.Svg != nil {
			cb := f.Metrics.ContentBox()
			vbW, vbH := rep.Intrinsic.Width, rep.Intrinsic.Height
			if box.Origin != nil {
				if v, ok := box.Origin.Attr("viewBox"); ok {
					if w, h, ok := images.ParseViewBox(v); ok {
						vbW, vbH = w, h
					}
				}
			}
			sx, sy := 1.0, 1.0
			if vbW > 0 && vbH > 0 {
				sx, sy = cb.Width/vbW, cb.Height/vbH
			}
			content.Svg = lc.svgFrag(box, rep.Svg.Children, svgSpace{x: cb.X, y: cb.Y, sx: sx, sy: sy})
		}
		f.Content = content
		out.Frag = f
	}
	return out
}

// svgSpace maps user units of the outer svg element to page coordinates.
type svgSpace struct {
	x, y, sx, sy float64
}

func (s svgSpace) page(r Rect) Metrics {
	return Metrics{X: s.x + r.X*s.sx, Y: s.y + r.Y*s.sy, Width: r.Width * s.sx, Height: r.Height * s.sy}
}

// svgFrag builds the fragment of an svg container whose bounding box is
// the union of its children's.
func (lc *flow) svgFrag(box *Box, kids []*Box, space svgSpace) *Frag {
	content := &FragSvg{}
	for _, k := range kids {
		var f *Frag
		if g, ok := k.Content.(*SvgGroup); ok {
			f = lc.svgFrag(k, g.Children, space)
		} else {
			bbox := lc.shapeBBox(k)
			f = &Frag{Box: k, Metrics: space.page(bbox), Content: &FragSvg{BBox: bbox}}
		}
		content.Children = append(content.Children, f)
		content.BBox = content.BBox.Union(f.Content.(*FragSvg).BBox)
	}
	return &Frag{Box: box, Metrics: space.page(content.BBox), Content: content}
}

func attrFloat(n *dom.Node, name string) float64 {
	if n == nil {
		return 0
	}
	v, _ := n.Attr(name)
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func parsePoints(v string) []float64 {
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n' || r == '\r'
	})
	out := make([]float64, 0, len(fields))
	for _, s := range fields {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			break
		}
		out = append(out, f)
	}
	return out[:len(out)&^1]
}

// shapeBBox computes the bounding box of a basic shape in user units.
// Paths are not measured.
func (lc *flow) shapeBBox(b *Box) Rect {
	n := b.Origin
	if n == nil {
		return Rect{}
	}
	a := func(name string) float64 { return attrFloat(n, name) }
	switch n.Name {
	case "rect", "image", "use", "foreignObject":
		return Rect{X: a("x"), Y: a("y"), Width: max(a("width"), 0), Height: max(a("height"), 0)}
	case "circle":
		r := max(a("r"), 0)
		return Rect{X: a("cx") - r, Y: a("cy") - r, Width: 2 * r, Height: 2 * r}
	case "ellipse":
		rx, ry := max(a("rx"), 0), max(a("ry"), 0)
		return Rect{X: a("cx") - rx, Y: a("cy") - ry, Width: 2 * rx, Height: 2 * ry}
	case "line":
		x1, y1, x2, y2 := a("x1"), a("y1"), a("x2"), a("y2")
		return Rect{X: min(x1, x2), Y: min(y1, y2), Width: math.Abs(x2 - x1), Height: math.Abs(y2 - y1)}
	case "polyline", "polygon":
		v, _ := n.Attr("points")
		pts := parsePoints(v)
		if len(pts) == 0 {
			return Rect{}
		}
		minX, minY, maxX, maxY := pts[0], pts[1], pts[0], pts[1]
		for i := 2; i < len(pts); i += 2 {
			minX, maxX = min(minX, pts[i]), max(maxX, pts[i])
			minY, maxY = min(minY, pts[i+1]), max(maxY, pts[i+1])
		}
		return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
	case "text":
		face := lc.face(b.Values)
		m := face.Metrics()
		s := strings.TrimSpace(n.Text())
		return Rect{X: a("x"), Y: a("y") - m.Ascent, Width: face.Advance(s), Height: m.Ascent + m.Descent}
	}
	return Rect{}
}
