package paginate

import (
	"folio/layout"
)

// Export is the serializable form of a paginated document shared by the
// ion and sqlite writers.
type Export struct {
	Source string       `ion:"source"`
	Title  string       `ion:"title,omitempty"`
	Lang   string       `ion:"lang,omitempty"`
	Pages  []ExportPage `ion:"pages"`
}

type ExportRect struct {
	X      float64 `ion:"x"`
	Y      float64 `ion:"y"`
	Width  float64 `ion:"w"`
	Height float64 `ion:"h"`
}

type ExportPage struct {
	Index   int            `ion:"index"`
	Name    string         `ion:"name,omitempty"`
	Blank   bool           `ion:"blank,omitempty"`
	PageBox ExportRect     `ion:"page_box"`
	Content ExportRect     `ion:"content_box"`
	Break   string         `ion:"break,omitempty"`
	Root    *ExportFrag    `ion:"root,omitempty"`
	Margins []ExportMargin `ion:"margins,omitempty"`
}

type ExportMargin struct {
	Area string      `ion:"area,symbol"`
	Rect ExportRect  `ion:"rect"`
	Frag *ExportFrag `ion:"frag,omitempty"`
}

type ExportFrag struct {
	Box       string        `ion:"box"`
	ID        string        `ion:"id,omitempty"`
	Rect      ExportRect    `ion:"rect"`
	Continued bool          `ion:"continued,omitempty"`
	Continues bool          `ion:"continues,omitempty"`
	Image     string        `ion:"image,omitempty"`
	Lines     []ExportLine  `ion:"lines,omitempty"`
	Children  []*ExportFrag `ion:"children,omitempty"`
}

type ExportLine struct {
	Rect     ExportRect  `ion:"rect"`
	Baseline float64     `ion:"baseline"`
	Runs     []ExportRun `ion:"runs,omitempty"`
}

type ExportRun struct {
	X        float64     `ion:"x"`
	Baseline float64     `ion:"baseline"`
	Width    float64     `ion:"w"`
	Text     string      `ion:"text,omitempty"`
	Atomic   *ExportFrag `ion:"atomic,omitempty"`
}

// NewExport converts the pages of res.
func NewExport(res *Result, source string) *Export {
	e := &Export{Source: source, Title: res.Title, Lang: res.Lang, Pages: make([]ExportPage, 0, len(res.Pages))}
	for _, p := range res.Pages {
		ep := ExportPage{
			Index:   p.Index,
			Name:    p.Name,
			Blank:   p.Blank,
			PageBox: exportRect(p.PageBox),
			Content: exportRect(p.ContentBox),
			Root:    exportFrag(p.Root),
		}
		if p.Break != nil {
			ep.Break = p.Break.String()
		}
		for _, mb := range p.Margins {
			ep.Margins = append(ep.Margins, ExportMargin{Area: mb.Area, Rect: exportRect(mb.Rect), Frag: exportFrag(mb.Frag)})
		}
		e.Pages = append(e.Pages, ep)
	}
	return e
}

func exportRect(r layout.Rect) ExportRect {
	return ExportRect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

func exportFrag(f *layout.Frag) *ExportFrag {
	if f == nil {
		return nil
	}
	ef := &ExportFrag{
		Rect:      exportRect(f.Metrics.BorderBox()),
		Continued: f.Continued,
		Continues: f.Continues,
	}
	if f.Box != nil {
		ef.Box = f.Box.Name()
		if f.Box.Origin != nil && f.Box.Pseudo == "" {
			ef.ID = f.Box.Origin.ID()
		}
	}
	switch c := f.Content.(type) {
	case *layout.FragLines:
		for _, l := range c.Lines {
			el := ExportLine{Rect: exportRect(l.Rect), Baseline: l.Baseline}
			for _, r := range l.Runs {
				el.Runs = append(el.Runs, ExportRun{X: r.X, Baseline: r.Baseline, Width: r.Width, Text: r.Text, Atomic: exportFrag(r.Atomic)})
			}
			ef.Lines = append(ef.Lines, el)
		}
	case *layout.FragReplaced:
		if c.Replaced != nil {
			ef.Image = c.Replaced.URL
		}
		if c.Svg != nil {
			ef.Children = append(ef.Children, exportFrag(c.Svg))
		}
	default:
		for _, k := range f.Children() {
			ef.Children = append(ef.Children, exportFrag(k))
		}
	}
	return ef
}

// Walk calls fn for f and every fragment below it, atomic inlines
// included, passing the parent fragment.
func (f *ExportFrag) Walk(parent *ExportFrag, fn func(f, parent *ExportFrag)) {
	if f == nil {
		return
	}
	fn(f, parent)
	for _, l := range f.Lines {
		for _, r := range l.Runs {
			r.Atomic.Walk(f, fn)
		}
	}
	for _, k := range f.Children {
		k.Walk(f, fn)
	}
}
