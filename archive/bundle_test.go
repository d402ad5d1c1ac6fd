package archive

import (
	"slices"
	"testing"
)

func TestBundle(t *testing.T) {
	b, err := Load(makeZip(t, map[string]string{
		"book/ch10.xhtml":      "<html/>",
		"book/ch2.xhtml":       "<html/>",
		"book/ch1.xhtml":       "<html/>",
		"book/css/main.css":    "p {}",
		"book/img/cover.png":   "png",
		"fonts/serif.ttf":      "ttf",
		"book/figures/one.svg": "<svg/>",
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"book/ch1.xhtml", "book/ch2.xhtml", "book/ch10.xhtml", "book/figures/one.svg"}
	if got := b.Documents(); !slices.Equal(got, want) {
		t.Errorf("Documents() = %v, want %v", got, want)
	}

	fetch := b.Fetcher("book/ch1.xhtml")
	tests := []struct {
		ref  string
		want string
		err  bool
	}{
		{"css/main.css", "p {}", false},
		{"./img/cover.png#frag", "png", false},
		{"../fonts/serif.ttf", "ttf", false},
		{"/fonts/serif.ttf", "ttf", false},
		{"../../../fonts/serif.ttf", "ttf", false},
		{"missing.css", "", true},
		{"http://example.com/a.css", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			data, err := fetch(tt.ref)
			if (err != nil) != tt.err {
				t.Fatalf("fetch(%q) error = %v", tt.ref, err)
			}
			if string(data) != tt.want {
				t.Errorf("fetch(%q) = %q, want %q", tt.ref, data, tt.want)
			}
		})
	}
}

func TestIsDocument(t *testing.T) {
	for name, want := range map[string]bool{
		"a.html": true, "A.XHTML": true, "b.htm": true, "c.xml": true, "d.svg": true,
		"e.css": false, "f.png": false, "noext": false,
	} {
		if got := IsDocument(name); got != want {
			t.Errorf("IsDocument(%q) = %v, want %v", name, got, want)
		}
	}
}
