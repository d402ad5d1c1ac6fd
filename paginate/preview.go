package paginate

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"folio/css"
	"folio/images"
	"folio/layout"
	"folio/style"
	"folio/text"
)

// painter draws fragments of one page. It knows backgrounds, borders, text
// and replaced content; everything else is left out of the preview.
type painter struct {
	log   *zap.Logger
	dst   *image.NRGBA
	faces *text.FaceCache
	imgs  *images.Cache
}

// RenderPage draws a preview of page p at the given scale.
func RenderPage(res *Result, p *layout.Page, scale float64, log *zap.Logger) (*image.NRGBA, error) {
	w, h := int(math.Ceil(p.PageBox.Width)), int(math.Ceil(p.PageBox.Height))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("page %d has no area", p.Index+1)
	}
	pt := &painter{
		log:   log,
		dst:   imaging.New(w, h, color.White),
		faces: res.Faces,
		imgs:  res.Images,
	}
	if p.Values != nil {
		pt.background(p.Values.Values, p.PageBox)
	}
	pt.frag(p.Root)
	for _, mb := range p.Margins {
		pt.frag(mb.Frag)
	}
	if scale <= 0 || scale == 1 {
		return pt.dst, nil
	}
	sw, sh := int(math.Round(float64(w)*scale)), int(math.Round(float64(h)*scale))
	return imaging.Resize(pt.dst, max(sw, 1), max(sh, 1), imaging.Lanczos), nil
}

// SavePage writes a preview image, the format follows the file extension.
func SavePage(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("unable to save preview %s: %w", path, err)
	}
	return nil
}

func pixels(r layout.Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.Right())), int(math.Ceil(r.Bottom())),
	)
}

func (pt *painter) fill(r layout.Rect, c color.NRGBA) {
	if c.A == 0 || r.Width <= 0 || r.Height <= 0 {
		return
	}
	draw.Draw(pt.dst, pixels(r), image.NewUniform(c), image.Point{}, draw.Over)
}

func (pt *painter) frag(f *layout.Frag) {
	if f == nil {
		return
	}
	if f.Box != nil && f.Box.Values != nil {
		sv := f.Box.Values
		if sv.Text.Get().Visibility != "hidden" {
			pt.background(sv, f.Metrics.BorderBox())
			pt.borders(sv, f.Metrics)
		}
	}
	switch c := f.Content.(type) {
	case *layout.FragLines:
		for _, l := range c.Lines {
			for _, r := range l.Runs {
				if r.Atomic != nil {
					pt.frag(r.Atomic)
					continue
				}
				pt.run(r)
			}
		}
	case *layout.FragReplaced:
		pt.replaced(f, c)
	case layout.FragChildren:
		for _, k := range c {
			pt.frag(k)
		}
	}
}

func (pt *painter) background(sv *style.SpecifiedValues, area layout.Rect) {
	if sv == nil {
		return
	}
	bg := sv.Background.Get()
	pt.fill(area, bg.Color.Resolve(sv.Color()).RGBA())
	url := backgroundURL(bg.Image)
	if url == "" || pt.imgs == nil {
		return
	}
	in, ok := pt.imgs.Intrinsic(url)
	if !ok || !in.HasSize() {
		return
	}
	pt.image(url, layout.Rect{X: area.X, Y: area.Y, Width: in.Width, Height: in.Height}, area)
}

// backgroundURL returns the first url() of a background-image value.
func backgroundURL(v style.Raw) string {
	toks := css.TokenizeString(string(v))
	for i, t := range toks {
		switch {
		case t.Kind == css.URL:
			return t.URLValue()
		case t.Kind == css.Function && t.FuncName() == "url":
			for _, a := range toks[i+1:] {
				if a.Kind == css.String {
					return a.Unquoted()
				}
			}
			return ""
		case t.Kind == css.Function:
			// gradients
			return ""
		}
	}
	return ""
}

func (pt *painter) borders(sv *style.SpecifiedValues, m layout.Metrics) {
	b := sv.Border.Get()
	cur := sv.Color()
	box := m.BorderBox()
	sides := []struct {
		width float64
		style style.BorderStyle
		color style.Color
		rect  layout.Rect
	}{
		{m.Border.Top, b.TopStyle, b.TopColor, layout.Rect{X: box.X, Y: box.Y, Width: box.Width, Height: m.Border.Top}},
		{m.Border.Right, b.RightStyle, b.RightColor, layout.Rect{X: box.Right() - m.Border.Right, Y: box.Y, Width: m.Border.Right, Height: box.Height}},
		{m.Border.Bottom, b.BottomStyle, b.BottomColor, layout.Rect{X: box.X, Y: box.Bottom() - m.Border.Bottom, Width: box.Width, Height: m.Border.Bottom}},
		{m.Border.Left, b.LeftStyle, b.LeftColor, layout.Rect{X: box.X, Y: box.Y, Width: m.Border.Left, Height: box.Height}},
	}
	for _, s := range sides {
		if s.width > 0 && s.style.Visible() {
			pt.fill(s.rect, s.color.Resolve(cur).RGBA())
		}
	}
}

func (pt *painter) run(r layout.Run) {
	if r.Text == "" || r.Values == nil || pt.faces == nil {
		return
	}
	if r.Values.Text.Get().Visibility == "hidden" {
		return
	}
	face := pt.faces.Face(text.SpecOf(r.Values))
	d := &font.Drawer{
		Dst:  pt.dst,
		Src:  image.NewUniform(r.Values.Color().RGBA()),
		Face: face.Font(),
		Dot:  fixed.Point26_6{X: fixed.Int26_6(r.X * 64), Y: fixed.Int26_6(r.Baseline * 64)},
	}
	d.DrawString(r.Text)
}

func (pt *painter) replaced(f *layout.Frag, c *layout.FragReplaced) {
	area := f.Metrics.ContentBox()
	if c.Svg != nil && f.Box != nil && f.Box.Origin != nil {
		var buf bytes.Buffer
		if err := f.Box.Origin.WriteXML(&buf); err != nil {
			pt.log.Warn("Unable to serialize inline svg", zap.Error(err))
			return
		}
		img, err := images.RasterizeSVG(buf.Bytes(), int(math.Ceil(area.Width)), int(math.Ceil(area.Height)))
		if err != nil {
			pt.log.Warn("Unable to draw inline svg", zap.Error(err))
			return
		}
		draw.Draw(pt.dst, pixels(area), img, image.Point{}, draw.Over)
		return
	}
	if c.Replaced != nil && c.Replaced.URL != "" {
		pt.image(c.Replaced.URL, area, area)
	}
}

// image draws the resource at url scaled to area and clipped to clip.
func (pt *painter) image(url string, area, clip layout.Rect) {
	w, h := int(math.Ceil(area.Width)), int(math.Ceil(area.Height))
	if pt.imgs == nil || w <= 0 || h <= 0 {
		return
	}
	data, err := pt.imgs.Data(url)
	if err != nil {
		pt.log.Debug("Image is not available for preview", zap.String("url", url), zap.Error(err))
		return
	}
	img, err := images.Render(data, w, h)
	if err != nil {
		pt.log.Warn("Unable to draw image", zap.String("url", url), zap.Error(err))
		return
	}
	r := pixels(area)
	dr := r.Intersect(pixels(clip))
	if dr.Empty() {
		return
	}
	draw.Draw(pt.dst, dr, img, dr.Min.Sub(r.Min), draw.Over)
}
