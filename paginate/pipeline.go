// Package paginate runs documents through the cascade, box construction and
// pagination and writes the results.
package paginate

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"go.uber.org/zap"

	"folio/config"
	"folio/css/rules"
	"folio/dom"
	"folio/images"
	"folio/layout"
	"folio/style"
	"folio/text"
)

// Source is one document to lay out.
type Source struct {
	// Name is used in logs and to derive output names. It may be a path
	// inside an archive.
	Name string
	Data []byte
	// Fetch loads resources the document references.
	Fetch Fetcher
	// XML forces the XML parser regardless of the name.
	XML bool
}

// Options are the knobs of one pipeline run.
type Options struct {
	Page  config.PageConfig
	Style config.StyleConfig
	// ExtraSheets are author stylesheet paths applied after the configured
	// one.
	ExtraSheets []string
}

// OptionsFromConfig picks pipeline options out of the configuration.
func OptionsFromConfig(cfg *config.Config, extra []string) Options {
	return Options{Page: cfg.Page, Style: cfg.Style, ExtraSheets: extra}
}

// Result is a laid out document.
type Result struct {
	Doc   *dom.Document
	Title string
	Lang  string
	// Sheets are all stylesheets that took part in the cascade including
	// imported ones, in load order.
	Sheets   []LoadedSheet
	Computer *style.Computer
	Faces    *text.FaceCache
	Images   *images.Cache
	Root     *layout.Box
	Pages    []*layout.Page
}

// IsXMLName reports whether the document name calls for the XML parser.
func IsXMLName(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".xhtml", ".xml", ".svg":
		return true
	}
	return false
}

// Parse loads the document of src.
func Parse(src *Source) (*dom.Document, error) {
	var r io.Reader = bytes.NewReader(src.Data)
	if src.XML || IsXMLName(src.Name) {
		doc, err := dom.ParseXML(r, src.Name)
		if err != nil {
			return nil, fmt.Errorf("unable to parse %s as XML: %w", src.Name, err)
		}
		return doc, nil
	}
	doc, err := dom.ParseHTML(r, src.Name)
	if err != nil {
		return nil, fmt.Errorf("unable to parse %s as HTML: %w", src.Name, err)
	}
	return doc, nil
}

// Cascade parses the document and computes styles of every element for
// the print device the page configuration describes.
func Cascade(src *Source, opts Options, log *zap.Logger) (*Result, error) {
	w, h, err := opts.Page.PageSize()
	if err != nil {
		return nil, fmt.Errorf("bad page configuration: %w", err)
	}
	doc, err := Parse(src)
	if err != nil {
		return nil, err
	}
	res := &Result{Doc: doc, Title: documentTitle(doc)}
	if el := doc.DocumentElement(); el != nil {
		res.Lang = el.Lang()
	}

	fetch := WithLocalSchemes(src.Fetch)
	loader := newSheetLoader(log, fetch)

	// user agent sheets first, then configured, command line and document
	// author sheets, forced page margins last
	var sheets []*rules.Stylesheet
	ua, forced := loader.pageSheets(&opts.Page, res.Title)
	if ua != nil {
		sheets = append(sheets, ua)
	}
	var paths []string
	if opts.Style.StylesheetPath != "" {
		paths = append(paths, opts.Style.StylesheetPath)
	}
	paths = append(paths, opts.ExtraSheets...)
	for _, p := range paths {
		s, err := loader.file(p)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, s)
	}
	sheets = append(sheets, loader.document(doc)...)
	if forced != nil {
		sheets = append(sheets, forced)
	}
	res.Sheets = loader.loaded

	var copts []style.Option
	if !opts.Style.UserAgent {
		copts = append(copts, style.WithoutUserAgent())
	}
	if !opts.Style.Hints {
		copts = append(copts, style.WithoutHints())
	}
	dev := rules.PrintDevice(w, h)
	res.Computer = style.NewComputer(log, dev, sheets, copts...)
	res.Computer.ComputeTree(doc.Root)

	res.Faces, err = text.NewFaceCache(log)
	if err != nil {
		return nil, fmt.Errorf("unable to load bundled fonts: %w", err)
	}
	var faces []*rules.FontFaceRule
	for _, s := range sheets {
		faces = append(faces, s.FontFaces(dev)...)
	}
	if len(faces) > 0 {
		if err := res.Faces.LoadFontFaces(faces, text.Fetcher(fetch)); err != nil {
			log.Warn("Some web fonts were not loaded", zap.Error(err))
		}
	}
	res.Images = images.NewCache(images.Fetcher(fetch), log)
	return res, nil
}

// Layout lays out src and paginates it.
func Layout(src *Source, opts Options, log *zap.Logger) (*Result, error) {
	res, err := Cascade(src, opts, log)
	if err != nil {
		return nil, err
	}

	var hyph fs.FS
	if opts.Style.HyphenationDir != "" {
		hyph = os.DirFS(opts.Style.HyphenationDir)
	}
	lc, err := layout.NewContext(log, res.Faces, res.Images, text.NewHyphenators(hyph, log))
	if err != nil {
		return nil, err
	}
	res.Root = lc.Build(res.Doc.Root)

	w, h, _ := opts.Page.PageSize()
	res.Pages = lc.Paginate(res.Root, res.PageStyler(), layout.Options{
		Width:       w,
		Height:      h,
		MarginBoxes: opts.Page.MarginMode.AllowsMarginBoxes(),
		MaxPages:    opts.Page.MaxPages,
	})
	log.Debug("Document paginated", zap.String("document", src.Name), zap.Int("pages", len(res.Pages)))
	return res, nil
}

// PageStyler runs the page cascade with the root element values as parent.
func (r *Result) PageStyler() layout.PageStyler {
	var root *style.SpecifiedValues
	if el := r.Doc.DocumentElement(); el != nil {
		if c := style.Of(el); c != nil {
			root = c.Values
		}
	}
	return func(pc rules.PageContext) *style.PageValues {
		return r.Computer.ComputePage(root, pc)
	}
}

// documentTitle returns the text of the first title element.
func documentTitle(doc *dom.Document) string {
	for n := range doc.Root.Descendants() {
		if n.Type == dom.ElementNode && n.Name == "title" {
			return strings.Join(strings.Fields(n.Text()), " ")
		}
	}
	return ""
}
