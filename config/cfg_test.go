package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rupor-github/gencfg"

	"folio/common"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.Page.Paper != PaperA4 {
		t.Errorf("Paper = %q, want a4", cfg.Page.Paper)
	}
	if cfg.Page.MarginMode != common.MarginModeDefault {
		t.Errorf("MarginMode = %s, want default", cfg.Page.MarginMode)
	}
	if cfg.Page.Margins.Top != "0.5in" {
		t.Errorf("Margins.Top = %q, want 0.5in", cfg.Page.Margins.Top)
	}
	if !cfg.Style.UserAgent || !cfg.Style.Hints {
		t.Error("user agent stylesheet and hints must be on by default")
	}
	if cfg.Output.Format != common.OutputFmtText {
		t.Errorf("Format = %s, want text", cfg.Output.Format)
	}
	if !strings.Contains(cfg.Output.NameTemplate, "{{") {
		t.Errorf("name template must not be expanded at load time, got %q", cfg.Output.NameTemplate)
	}
	if cfg.Output.Preview.Scale != 1 {
		t.Errorf("Preview.Scale = %v, want 1", cfg.Output.Preview.Scale)
	}
	if strings.Contains(cfg.Reporting.Destination, "{{") {
		t.Errorf("report destination must be expanded, got %q", cfg.Reporting.Destination)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	path := writeConfig(t, `version: 1
page:
  paper: letter
  orientation: landscape
  margin_mode: custom
  margins:
    top: 1cm
    right: 2cm
    bottom: 1cm
    left: 2cm
  header_footer: true
  max_pages: 10
style:
  user_agent: false
output:
  format: ion
  preview:
    enable: true
    scale: 2
logging:
  console:
    level: normal
  file:
    level: debug
    destination: /tmp/test.log
    mode: append
reporting:
  destination: /tmp/test-report.zip
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.Page.Paper != PaperLetter || cfg.Page.Orientation != common.OrientationLandscape {
		t.Errorf("page = %s %s, want letter landscape", cfg.Page.Paper, cfg.Page.Orientation)
	}
	if cfg.Page.MarginMode != common.MarginModeCustom || cfg.Page.Margins.Right != "2cm" {
		t.Errorf("margins = %s %+v", cfg.Page.MarginMode, cfg.Page.Margins)
	}
	if !cfg.Page.HeaderFooter || cfg.Page.MaxPages != 10 {
		t.Errorf("header_footer = %v, max_pages = %d", cfg.Page.HeaderFooter, cfg.Page.MaxPages)
	}
	if cfg.Style.UserAgent {
		t.Error("Expected UserAgent to be false")
	}
	if !cfg.Style.Hints {
		t.Error("Hints default must survive a partial style section")
	}
	if cfg.Output.Format != common.OutputFmtIon || !cfg.Output.Preview.Enable || cfg.Output.Preview.Scale != 2 {
		t.Errorf("output = %+v", cfg.Output)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "version: 1\npage:\n  paper: a4\n  invalid indent\n"},
		{"unknown field", "version: 1\nunknown_field: value\n"},
		{"wrong version", "version: 2\n"},
		{"unknown paper", "version: 1\npage:\n  paper: a7\n"},
		{"unknown margin mode", "version: 1\npage:\n  margin_mode: generous\n"},
		{"custom paper without size", "version: 1\npage:\n  paper: custom\n"},
		{"negative pages", "version: 1\npage:\n  max_pages: -1\n"},
		{"unknown format", "version: 1\noutput:\n  format: pdf\n"},
		{"zero preview scale", "version: 1\noutput:\n  preview:\n    scale: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Prepare() returned empty data")
	}
	if _, err := unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Page.MarginMode = common.MarginModeMinimum
	cfg.Output.Format = common.OutputFmtSqlite

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	for _, want := range []string{"margin_mode: minimum", "format: sqlite", "paper: a4"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("dump does not contain %q", want)
		}
	}

	cfg2, err := unmarshalConfig(data, &Config{}, false)
	if err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}
	if cfg2.Page.MarginMode != cfg.Page.MarginMode || cfg2.Output.Format != cfg.Output.Format {
		t.Errorf("dump/load mismatch: %+v", cfg2.Page)
	}
}

func TestUnmarshalConfig_WrapsValidationError(t *testing.T) {
	_, err := unmarshalConfig([]byte("version: 99\n"), &Config{}, true)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "validate") {
		t.Errorf("expected error to mention validation, got: %v", err)
	}
	if errors.Unwrap(err) == nil {
		t.Errorf("expected wrapped error, got bare error: %v", err)
	}
}

func TestPageConfig_PageSize(t *testing.T) {
	tests := []struct {
		name string
		page PageConfig
		w, h float64
		err  bool
	}{
		{"a4", PageConfig{Paper: PaperA4}, 793.7, 1122.5, false},
		{"letter landscape", PageConfig{Paper: PaperLetter, Orientation: common.OrientationLandscape}, 1056, 816, false},
		{"portrait keeps portrait", PageConfig{Paper: PaperLetter, Orientation: common.OrientationPortrait}, 816, 1056, false},
		{"custom", PageConfig{Paper: PaperCustom, Width: 300, Height: 200}, 300, 200, false},
		{"custom forced portrait", PageConfig{Paper: PaperCustom, Width: 300, Height: 200, Orientation: common.OrientationPortrait}, 200, 300, false},
		{"custom without size", PageConfig{Paper: PaperCustom}, 0, 0, true},
		{"unknown paper", PageConfig{Paper: Paper("a7")}, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := tt.page.PageSize()
			if (err != nil) != tt.err {
				t.Fatalf("PageSize() error = %v, want error %v", err, tt.err)
			}
			if err != nil {
				return
			}
			if w-tt.w > 0.5 || tt.w-w > 0.5 || h-tt.h > 0.5 || tt.h-h > 0.5 {
				t.Errorf("PageSize() = %vx%v, want %vx%v", w, h, tt.w, tt.h)
			}
		})
	}
}

func TestParsePaper(t *testing.T) {
	for _, name := range PaperNames() {
		p, err := ParsePaper(name)
		if err != nil || string(p) != name {
			t.Errorf("ParsePaper(%q) = %q, %v", name, p, err)
		}
	}
	if _, err := ParsePaper("a7"); !errors.Is(err, ErrInvalidPaper) {
		t.Errorf("ParsePaper(a7) error = %v, want ErrInvalidPaper", err)
	}
}
