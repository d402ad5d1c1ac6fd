package paginate

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"folio/common"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer f.Close()
	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProcess_Document(t *testing.T) {
	ctx, env := newTestEnv(t)
	src := writeFiles(t, map[string]string{
		"doc.html":  `<link rel=stylesheet href="doc.css"><p id=a>text</p>`,
		"doc.css":   `p { color: red }`,
		"notes.txt": `ignored`,
	})
	dst := t.TempDir()

	if err := process(ctx, filepath.Join(src, "doc.html"), dst, common.OutputFmtText, env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dst, "doc.txt"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !strings.Contains(string(data), "text") {
		t.Errorf("page dump does not contain document text:\n%s", data)
	}

	if err := process(ctx, filepath.Join(src, "notes.txt"), dst, common.OutputFmtText, env.Log); err == nil {
		t.Error("non-document input must fail")
	}
	if err := process(ctx, filepath.Join(src, "missing.html"), dst, common.OutputFmtText, env.Log); err == nil {
		t.Error("missing input must fail")
	}
}

func TestProcess_Directory(t *testing.T) {
	ctx, env := newTestEnv(t)
	src := writeFiles(t, map[string]string{
		"a.html":     `<p>first</p>`,
		"sub/b.html": `<p>second</p>`,
		"skip.txt":   `ignored`,
	})
	writeZip(t, filepath.Join(src, "sub", "book.zip"), map[string]string{
		"chapters/c.xhtml": `<html xmlns="http://www.w3.org/1999/xhtml"><body><p>third</p></body></html>`,
	})
	dst := t.TempDir()

	if err := process(ctx, src, dst, common.OutputFmtIon, env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	for _, name := range []string{"a.ion", "sub/b.ion", "sub/chapters/c.ion"} {
		if _, err := os.Stat(filepath.Join(dst, filepath.FromSlash(name))); err != nil {
			t.Errorf("output %s not written: %v", name, err)
		}
	}
}

func TestProcess_Archive(t *testing.T) {
	ctx, env := newTestEnv(t)
	dir := t.TempDir()
	arc := filepath.Join(dir, "book.zip")
	writeZip(t, arc, map[string]string{
		"one.html":        `<link rel=stylesheet href="css/main.css"><p>one</p>`,
		"css/main.css":    `p { margin: 0 }`,
		"part/two.html":   `<p>two</p>`,
		"part/three.html": `<p>three</p>`,
	})
	dst := t.TempDir()

	if err := process(ctx, filepath.Join(arc, "part"), dst, common.OutputFmtSqlite, env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	for name, want := range map[string]bool{"part/two.sqlite": true, "part/three.sqlite": true, "one.sqlite": false} {
		_, err := os.Stat(filepath.Join(dst, filepath.FromSlash(name)))
		if (err == nil) != want {
			t.Errorf("output %s exists = %v, want %v", name, err == nil, want)
		}
	}

	if err := process(ctx, filepath.Join(arc, "missing.html"), dst, common.OutputFmtText, env.Log); err == nil {
		t.Error("missing path inside archive must fail")
	}
}

func TestProcessDocument_Overwrite(t *testing.T) {
	ctx, env := newTestEnv(t)
	dst := t.TempDir()
	src := &Source{Name: "doc.html", Data: []byte(`<p>text</p>`)}

	if err := processDocument(ctx, src, "doc.html", dst, common.OutputFmtText, env.Log); err != nil {
		t.Fatalf("processDocument() error = %v", err)
	}
	if err := processDocument(ctx, src, "doc.html", dst, common.OutputFmtText, env.Log); err == nil {
		t.Error("existing output must not be overwritten")
	}
	env.Overwrite = true
	if err := processDocument(ctx, src, "doc.html", dst, common.OutputFmtText, env.Log); err != nil {
		t.Errorf("processDocument() with overwrite error = %v", err)
	}
}

func TestProcessDocument_Preview(t *testing.T) {
	ctx, env := newTestEnv(t)
	env.Cfg.Output.Preview.Enable = true
	env.Cfg.Output.Preview.Scale = 0.25
	dst := t.TempDir()
	src := &Source{Name: "doc.html", Data: []byte(`<p style="break-after: page">one</p><p>two</p>`)}

	if err := processDocument(ctx, src, "doc.html", dst, common.OutputFmtText, env.Log); err != nil {
		t.Fatalf("processDocument() error = %v", err)
	}
	for _, name := range []string{"doc-page-001.png", "doc-page-002.png"} {
		if _, err := os.Stat(filepath.Join(dst, name)); err != nil {
			t.Errorf("preview %s not written: %v", name, err)
		}
	}
}

func TestEncode(t *testing.T) {
	res := layoutHTML(t, testOptions(t), `<p>text</p>`)
	tests := []struct {
		format common.OutputFmt
		check  func([]byte) bool
	}{
		{common.OutputFmtText, func(b []byte) bool { return strings.Contains(string(b), "text") }},
		{common.OutputFmtIon, func(b []byte) bool {
			e, err := DecodeIon(b)
			return err == nil && len(e.Pages) == 1
		}},
		{common.OutputFmtSqlite, func(b []byte) bool { return strings.HasPrefix(string(b), "SQLite format 3") }},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			data, err := Encode(res, "doc.html", tt.format)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if !tt.check(data) {
				t.Errorf("unexpected %s output", tt.format)
			}
		})
	}
}
