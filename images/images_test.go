package images

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"

	"go.uber.org/zap/zaptest"
)

func pngData(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestMeasure(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Intrinsic
		err  bool
	}{
		{
			name: "png",
			data: pngData(t, 40, 20),
			want: Intrinsic{Width: 40, Height: 20, Ratio: 2, Kind: "png"},
		},
		{
			name: "svg with size",
			data: []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="2in" height="1in"/>`),
			want: Intrinsic{Width: 192, Height: 96, Ratio: 2, Kind: "svg"},
		},
		{
			name: "svg with viewBox only",
			data: []byte(`<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50"><rect width="100" height="50"/></svg>`),
			want: Intrinsic{Ratio: 2, Kind: "svg"},
		},
		{
			name: "svg with width and viewBox",
			data: []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="300" viewBox="0 0 100 50"/>`),
			want: Intrinsic{Width: 300, Height: 150, Ratio: 2, Kind: "svg"},
		},
		{
			name: "svg with percentage",
			data: []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="100%" height="100%"/>`),
			want: Intrinsic{Kind: "svg"},
		},
		{
			name: "garbage",
			data: []byte("hello"),
			err:  true,
		},
		{
			name: "truncated png",
			data: pngData(t, 4, 4)[:20],
			err:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Measure(tt.data)
			if tt.err {
				if err == nil {
					t.Errorf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Measure = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseViewBox(t *testing.T) {
	if w, h, ok := ParseViewBox("0,0 , 30 40"); !ok || w != 30 || h != 40 {
		t.Errorf("ParseViewBox = %v %v %v", w, h, ok)
	}
	for _, v := range []string{"", "0 0 10", "0 0 -1 10", "a b c d"} {
		if _, _, ok := ParseViewBox(v); ok {
			t.Errorf("ParseViewBox(%q) accepted", v)
		}
	}
}

func TestCache(t *testing.T) {
	calls := 0
	fetch := func(url string) ([]byte, error) {
		calls++
		if url == "a.png" {
			return pngData(t, 8, 6), nil
		}
		return nil, errors.New("not found")
	}
	c := NewCache(fetch, zaptest.NewLogger(t))
	for range 2 {
		in, ok := c.Intrinsic("a.png")
		if !ok || in.Width != 8 || in.Height != 6 {
			t.Errorf("Intrinsic = %+v %v", in, ok)
		}
		if _, ok := c.Intrinsic("missing.png"); ok {
			t.Error("missing image reported ok")
		}
	}
	if calls != 2 {
		t.Errorf("fetch called %d times, want 2", calls)
	}
}

func TestRender(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50"><rect width="100" height="50" fill="red"/></svg>`)
	img, err := Render(svg, 200, 100)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 100 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if c := img.NRGBAAt(100, 50); c.R < 200 || c.A < 200 {
		t.Errorf("center pixel = %v, want red", c)
	}

	img, err = Render(pngData(t, 10, 10), 30, 20)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 30 || img.Bounds().Dy() != 20 {
		t.Errorf("bounds = %v", img.Bounds())
	}

	if _, err := Render([]byte("nope"), 10, 10); err == nil {
		t.Error("expected decode error")
	}
}
