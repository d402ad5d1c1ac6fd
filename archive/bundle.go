package archive

import (
	"fmt"
	"io"
	"net/url"
	"path"
	"slices"
	"strings"

	fixzip "github.com/hidez8891/zip"
	"github.com/maruel/natural"
)

// document extensions recognized inside bundles
var documentExts = map[string]bool{
	".html": true, ".htm": true, ".xhtml": true, ".xml": true, ".svg": true,
}

// IsDocument reports whether name looks like a document that can be laid
// out.
func IsDocument(name string) bool {
	return documentExts[strings.ToLower(path.Ext(name))]
}

// Bundle is an archive read into memory.
type Bundle struct {
	Path  string
	files map[string][]byte
}

// Load reads every file of the archive at p.
func Load(p string) (*Bundle, error) {
	b := &Bundle{Path: p, files: make(map[string][]byte)}
	err := Walk(p, "", func(_ string, f *fixzip.File) error {
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("unable to open %s: %w", f.Name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return fmt.Errorf("unable to read %s: %w", f.Name, err)
		}
		b.files[f.Name] = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Documents returns the names of documents in the bundle in natural order.
func (b *Bundle) Documents() []string {
	var out []string
	for name := range b.files {
		if IsDocument(name) {
			out = append(out, name)
		}
	}
	slices.SortFunc(out, func(x, y string) int {
		switch {
		case natural.Less(x, y):
			return -1
		case natural.Less(y, x):
			return 1
		}
		return 0
	})
	return out
}

// ReadFile returns the contents of the named entry.
func (b *Bundle) ReadFile(name string) ([]byte, error) {
	data, ok := b.files[path.Clean(name)]
	if !ok {
		return nil, fmt.Errorf("%s: no entry %q", b.Path, name)
	}
	return data, nil
}

// Fetcher returns a resource loader resolving relative URLs against the
// entry base. Only relative references inside the bundle are served.
func (b *Bundle) Fetcher(base string) func(ref string) ([]byte, error) {
	return func(ref string) ([]byte, error) {
		u, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("bad resource reference %q: %w", ref, err)
		}
		if u.Scheme != "" || u.Host != "" {
			return nil, fmt.Errorf("resource %q is outside of %s", ref, b.Path)
		}
		name := u.Path
		if !strings.HasPrefix(name, "/") {
			name = path.Join(path.Dir(base), name)
		}
		name = strings.TrimPrefix(path.Clean("/"+name), "/")
		return b.ReadFile(name)
	}
}
