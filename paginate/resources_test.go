package paginate

import (
	"path/filepath"
	"testing"
)

func TestDirFetcher(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"doc.html":     "",
		"img/a.svg":    "<svg/>",
		"shared/b.css": "b {}",
		"img/c d.png":  "png",
	})
	fetch := DirFetcher(filepath.Join(dir, "doc.html"))

	tests := []struct {
		ref  string
		want string
		err  bool
	}{
		{"img/a.svg", "<svg/>", false},
		{"./shared/b.css", "b {}", false},
		{"img/c%20d.png", "png", false},
		{"img/a.svg#frag", "<svg/>", false},
		{filepath.ToSlash(filepath.Join(dir, "shared", "b.css")), "b {}", false},
		{"missing.png", "", true},
		{"http://example.com/a.png", "", true},
		{"//example.com/a.png", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := fetch(tt.ref)
			if (err != nil) != tt.err {
				t.Fatalf("fetch(%q) error = %v, want error %v", tt.ref, err, tt.err)
			}
			if string(got) != tt.want {
				t.Errorf("fetch(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestWithLocalSchemes(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.css": "a {}"})
	forwarded := ""
	fetch := WithLocalSchemes(func(ref string) ([]byte, error) {
		forwarded = ref
		return []byte("next"), nil
	})

	tests := []struct {
		ref  string
		want string
		err  bool
	}{
		{"data:text/plain;base64,aGVsbG8=", "hello", false},
		{"data:text/plain;base64,aGVsbG8", "hello", false},
		{"DATA:image/svg+xml;base64,PHN2 Zy8+", "<svg/>", false},
		{"data:text/css,a%20%7B%7D", "a {}", false},
		{"data:,", "", false},
		{"data:text/plain;base64,!!!", "", true},
		{"data:no-comma", "", true},
		{fileURL(filepath.Join(dir, "a.css")), "a {}", false},
		{"img.png", "next", false},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := fetch(tt.ref)
			if (err != nil) != tt.err {
				t.Fatalf("fetch(%q) error = %v, want error %v", tt.ref, err, tt.err)
			}
			if string(got) != tt.want {
				t.Errorf("fetch(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
	if forwarded != "img.png" {
		t.Errorf("other references must go to the next fetcher, got %q", forwarded)
	}

	if _, err := WithLocalSchemes(nil)("img.png"); err == nil {
		t.Error("no next fetcher must fail")
	}
}

func TestResolveRef(t *testing.T) {
	tests := []struct {
		base, ref, want string
	}{
		{"", "a.png", "a.png"},
		{"css/main.css", "a.png", "css/a.png"},
		{"css/main.css", "../img/a.png", "img/a.png"},
		{"css/main.css", "/abs.png", "/abs.png"},
		{"css/main.css", "data:,x", "data:,x"},
		{"css/main.css", "http://example.com/x.css", "http://example.com/x.css"},
		{"file:///srv/css/main.css", "fonts/a.woff", "file:///srv/css/fonts/a.woff"},
	}
	for _, tt := range tests {
		if got := resolveRef(tt.base, tt.ref); got != tt.want {
			t.Errorf("resolveRef(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
		}
	}
}
