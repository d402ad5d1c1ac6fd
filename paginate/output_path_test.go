package paginate

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"folio/common"
	"folio/config"
	"folio/state"
)

// newTestEnv returns a context carrying an environment with default
// configuration.
func newTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	env.Cfg = cfg
	env.Log = zaptest.NewLogger(t)
	return ctx, env
}

func TestBuildOutputPath(t *testing.T) {
	res := &Result{Title: "My Book, Part 1", Lang: "en"}
	dst := filepath.FromSlash("/out")

	tests := []struct {
		name          string
		template      string
		transliterate bool
		src           string
		format        common.OutputFmt
		want          string
	}{
		{"no template", "", false, "doc.html", common.OutputFmtText, "/out/doc.txt"},
		{"keeps subdirectories", "", false, "a/b/doc.xhtml", common.OutputFmtIon, "/out/a/b/doc.ion"},
		{"source", "{{ .Source }}", false, "doc.html", common.OutputFmtSqlite, "/out/doc.sqlite"},
		{"title", "{{ .Title }}", false, "doc.html", common.OutputFmtText, "/out/My Book, Part 1.txt"},
		{"transliterated", "{{ .Title }}", true, "doc.html", common.OutputFmtText, "/out/my-book-part-1.txt"},
		{"subdirectories", "{{ .Lang }}/{{ .Source }}-{{ .Format }}", false, "x/doc.html", common.OutputFmtIon, "/out/x/en/doc-ion.ion"},
		{"sprig", `{{ .Source | upper }}`, false, "doc.html", common.OutputFmtText, "/out/DOC.txt"},
		{"empty expansion", "{{ if false }}x{{ end }}", false, "doc.html", common.OutputFmtText, "/out/doc.txt"},
		{"broken template", "{{ .Title ", false, "doc.html", common.OutputFmtText, "/out/doc.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, env := newTestEnv(t)
			env.Cfg.Output.NameTemplate = tt.template
			env.Cfg.Output.FileNameTransliterate = tt.transliterate
			got := buildOutputPath(res, tt.src, dst, tt.format, env)
			if got != filepath.FromSlash(tt.want) {
				t.Errorf("buildOutputPath() = %q, want %q", got, filepath.FromSlash(tt.want))
			}
		})
	}
}

func TestBuildOutputPath_DefaultTemplate(t *testing.T) {
	_, env := newTestEnv(t)
	dst := filepath.FromSlash("/out")

	got := buildOutputPath(&Result{Title: "Title"}, "doc.html", dst, common.OutputFmtText, env)
	if filepath.Base(got) != "Title.txt" {
		t.Errorf("titled document = %q, want Title.txt", got)
	}
	got = buildOutputPath(&Result{}, "doc.html", dst, common.OutputFmtText, env)
	if filepath.Base(got) != "doc.txt" {
		t.Errorf("untitled document = %q, want doc.txt", got)
	}
}

func TestExpandTemplate_Values(t *testing.T) {
	out, err := expandTemplate(config.NameTemplateFieldName, "{{ .Context }} {{ .Pages }} {{ .RunID }}", Values{Pages: 3, RunID: "id"})
	if err != nil {
		t.Fatalf("expandTemplate() error = %v", err)
	}
	if out != "name_template 3 id" {
		t.Errorf("expandTemplate() = %q", out)
	}
}

func TestPreviewPath(t *testing.T) {
	got := previewPath(filepath.FromSlash("/out/doc.sqlite"), 4)
	if !strings.HasSuffix(got, "doc-page-005.png") {
		t.Errorf("previewPath() = %q", got)
	}
}
