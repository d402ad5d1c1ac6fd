package paginate

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"folio/common"
	"folio/config"
	"folio/css"
	"folio/css/rules"
	"folio/dom"
)

const maxImportDepth = 16

// LoadedSheet is a stylesheet in cascade order together with the text it
// was parsed from.
type LoadedSheet struct {
	Source string
	Data   []byte
	Sheet  *rules.Stylesheet
}

// sheetLoader parses stylesheets and resolves their imports.
type sheetLoader struct {
	log    *zap.Logger
	parser *rules.Parser
	fetch  Fetcher
	loaded []LoadedSheet
}

func newSheetLoader(log *zap.Logger, fetch Fetcher) *sheetLoader {
	return &sheetLoader{log: log, parser: rules.NewParser(log), fetch: fetch}
}

// parse parses data as a stylesheet found at base. URLs inside the sheet are
// rewritten so they no longer depend on base.
func (l *sheetLoader) parse(data []byte, origin rules.Origin, source, base string) *rules.Stylesheet {
	s := l.parser.Parse(data, origin, source)
	if err := s.Err(); err != nil {
		l.log.Warn("Stylesheet has problems", zap.String("source", source), zap.Error(err))
	}
	if base != "" {
		s.RewriteURLs(func(ref string) string { return resolveRef(base, ref) })
	}
	l.loaded = append(l.loaded, LoadedSheet{Source: source, Data: data, Sheet: s})
	l.resolveImports(s, []string{base})
	return s
}

// resolveImports loads imported sheets depth first. chain holds the URLs of
// the sheets being imported to break cycles.
func (l *sheetLoader) resolveImports(s *rules.Stylesheet, chain []string) {
	for _, imp := range s.Imports() {
		if len(chain) > maxImportDepth {
			l.log.Warn("Import nesting is too deep, ignoring", zap.String("url", imp.URL))
			continue
		}
		if imp.URL == "" || containsRef(chain, imp.URL) {
			l.log.Warn("Circular import, ignoring", zap.String("url", imp.URL))
			continue
		}
		data, err := l.fetch(imp.URL)
		if err != nil {
			l.log.Warn("Unable to load imported stylesheet", zap.String("url", imp.URL), zap.Error(err))
			continue
		}
		imported := l.parser.Parse(data, s.Origin, imp.URL)
		if err := imported.Err(); err != nil {
			l.log.Warn("Stylesheet has problems", zap.String("source", imp.URL), zap.Error(err))
		}
		imported.RewriteURLs(func(ref string) string { return resolveRef(imp.URL, ref) })
		l.loaded = append(l.loaded, LoadedSheet{Source: imp.URL, Data: data, Sheet: imported})
		imp.Sheet = imported
		l.resolveImports(imported, append(chain, imp.URL))
	}
}

func containsRef(chain []string, ref string) bool {
	for _, c := range chain {
		if c != "" && c == ref {
			return true
		}
	}
	return false
}

// file parses the stylesheet at a local path with author origin.
func (l *sheetLoader) file(path string) (*rules.Stylesheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read stylesheet %q: %w", path, err)
	}
	return l.parse(data, rules.Author, path, fileURL(path)), nil
}

// document parses the stylesheets a document links or embeds. A media
// attribute wraps the sheet into an import carrying the media list.
func (l *sheetLoader) document(doc *dom.Document) []*rules.Stylesheet {
	var out []*rules.Stylesheet
	for i, src := range doc.StyleSources() {
		var s *rules.Stylesheet
		if src.Href != "" {
			data, err := l.fetch(src.Href)
			if err != nil {
				l.log.Warn("Unable to load linked stylesheet", zap.String("href", src.Href), zap.Error(err))
				continue
			}
			s = l.parse(data, rules.Author, src.Href, src.Href)
		} else {
			s = l.parse([]byte(src.Text), rules.Author, fmt.Sprintf("%s#style-%d", doc.Path, i+1), "")
		}
		if media := strings.TrimSpace(src.Media); media != "" {
			mq, warns := rules.ParseMediaQueryList(css.TokenizeString(media))
			for _, w := range warns {
				l.log.Warn("Bad media attribute", zap.String("media", media), zap.String("problem", w))
			}
			s = &rules.Stylesheet{
				Source:     s.Source,
				Origin:     s.Origin,
				Rules:      []rules.Rule{&rules.ImportRule{URL: s.Source, Media: mq, Sheet: s}},
				Namespaces: s.Namespaces,
			}
		}
		out = append(out, s)
	}
	return out
}

// pageSheets turns the page configuration into stylesheets. Default margins
// come with user agent origin so documents may override them, custom and
// minimum margins are forced with an important author declaration.
func (l *sheetLoader) pageSheets(p *config.PageConfig, title string) (ua, author *rules.Stylesheet) {
	var b strings.Builder
	m := p.Margins
	margins := fmt.Sprintf("margin: %s %s %s %s", m.Top, m.Right, m.Bottom, m.Left)
	switch p.MarginMode {
	case common.MarginModeCustom:
		author = l.parse(fmt.Appendf(nil, "@page { %s !important }", margins), rules.Author, "page-margins", "")
	case common.MarginModeMinimum:
		author = l.parse([]byte("@page { margin: 0 !important }"), rules.Author, "page-margins", "")
	default:
		fmt.Fprintf(&b, "@page { %s }\n", margins)
	}
	if p.HeaderFooter && p.MarginMode.AllowsMarginBoxes() {
		b.WriteString("@page {\n")
		if title != "" {
			fmt.Fprintf(&b, "  @top-left { content: \"%s\" }\n", cssString(title))
		}
		b.WriteString("  @bottom-right { content: counter(page) \" / \" counter(pages) }\n}\n")
	}
	if b.Len() > 0 {
		ua = l.parse([]byte(b.String()), rules.UserAgent, "page-setup", "")
	}
	return ua, author
}

// cssString escapes s for a double quoted CSS string.
func cssString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '"':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n', '\r', '\f':
			b.WriteString(`\a `)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
