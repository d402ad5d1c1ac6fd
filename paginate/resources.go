package paginate

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Fetcher loads a resource referenced by a document or stylesheet.
type Fetcher func(ref string) ([]byte, error)

// DirFetcher resolves references against the directory of the document at
// path. Absolute references are resolved against the file system root.
func DirFetcher(path string) Fetcher {
	base := filepath.Dir(path)
	return func(ref string) ([]byte, error) {
		u, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("bad reference %q: %w", ref, err)
		}
		if u.Scheme != "" || u.Host != "" {
			return nil, fmt.Errorf("unsupported reference %q", ref)
		}
		if u.Path == "" {
			return nil, fmt.Errorf("empty reference %q", ref)
		}
		name := filepath.FromSlash(u.Path)
		if !filepath.IsAbs(name) {
			name = filepath.Join(base, name)
		}
		return os.ReadFile(name)
	}
}

// WithLocalSchemes returns a fetcher that decodes data: URLs and reads
// file: URLs itself and passes everything else to next.
func WithLocalSchemes(next Fetcher) Fetcher {
	return func(ref string) ([]byte, error) {
		lower := strings.ToLower(ref)
		switch {
		case strings.HasPrefix(lower, "data:"):
			return decodeDataURL(ref)
		case strings.HasPrefix(lower, "file:"):
			u, err := url.Parse(ref)
			if err != nil {
				return nil, fmt.Errorf("bad reference %q: %w", ref, err)
			}
			return os.ReadFile(filepath.FromSlash(u.Path))
		case next == nil:
			return nil, fmt.Errorf("no resource loader for %q", ref)
		}
		return next(ref)
	}
}

// fileURL returns the file: URL of a local path.
func fileURL(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		// windows drive letters
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

func decodeDataURL(ref string) ([]byte, error) {
	header, payload, ok := strings.Cut(ref[len("data:"):], ",")
	if !ok {
		return nil, errors.New("malformed data URL")
	}
	if strings.HasSuffix(strings.ToLower(header), ";base64") {
		payload = strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
				return -1
			}
			return r
		}, payload)
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// some producers drop the padding
			if data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); err != nil {
				return nil, fmt.Errorf("malformed base64 data URL: %w", err)
			}
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("malformed data URL: %w", err)
	}
	return []byte(s), nil
}

// resolveRef resolves ref relative to the resource base, both in URL form.
// Data URLs and absolute references are returned unchanged.
func resolveRef(base, ref string) string {
	if base == "" || strings.HasPrefix(strings.ToLower(ref), "data:") {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() || u.Host != "" || strings.HasPrefix(u.Path, "/") {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	if b.IsAbs() {
		return b.ResolveReference(u).String()
	}
	// relative bases stay relative
	return path.Join(path.Dir(b.Path), ref)
}
