package paginate

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"folio/common"
	"folio/config"
	"folio/style"
)

func previewOptions(t *testing.T) Options {
	opts := testOptions(t)
	opts.Page.Paper = config.PaperCustom
	opts.Page.Width, opts.Page.Height = 200, 100
	opts.Page.MarginMode = common.MarginModeMinimum
	return opts
}

func TestRenderPage(t *testing.T) {
	res := layoutHTML(t, previewOptions(t), `<body style="margin: 0">
		<div style="width: 50px; height: 20px; background: red; border-bottom: 10px solid blue"></div>
		<div style="width: 50px; height: 20px; background-color: rgba(0, 0, 0, 0); visibility: hidden; border: 5px solid red"></div>
	</body>`)
	if len(res.Pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(res.Pages))
	}
	img, err := RenderPage(res, res.Pages[0], 1, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Fatalf("image size = %v, want 200x100", b)
	}
	tests := []struct {
		name string
		x, y int
		want color.NRGBA
	}{
		{"background", 10, 10, red},
		{"border", 10, 25, blue},
		{"page", 100, 10, color.NRGBA{255, 255, 255, 255}},
		{"hidden box", 2, 32, color.NRGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		if got := img.NRGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("%s pixel (%d,%d) = %v, want %v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRenderPage_Scale(t *testing.T) {
	res := layoutHTML(t, previewOptions(t), `<body>text</body>`)
	img, err := RenderPage(res, res.Pages[0], 0.5, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("image size = %v, want 100x50", b)
	}

	name := filepath.Join(t.TempDir(), "page.png")
	if err := SavePage(img, name); err != nil {
		t.Fatalf("SavePage() error = %v", err)
	}
	if fi, err := os.Stat(name); err != nil || fi.Size() == 0 {
		t.Errorf("preview not written: %v", err)
	}
}

func TestRenderPage_Text(t *testing.T) {
	res := layoutHTML(t, previewOptions(t), `<body style="margin: 0; font-size: 40px; color: black">MMMM</body>`)
	img, err := RenderPage(res, res.Pages[0], 1, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	dark := 0
	for y := range 50 {
		for x := range 100 {
			if c := img.NRGBAAt(x, y); c.R < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("text must be drawn")
	}
}

func TestBackgroundURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`url("a.png")`, "a.png"},
		{`url(b.png), url(c.png)`, "b.png"},
		{`linear-gradient(red, blue)`, ""},
		{`none`, ""},
	}
	for _, tt := range tests {
		if got := backgroundURL(style.Raw(tt.in)); got != tt.want {
			t.Errorf("backgroundURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
