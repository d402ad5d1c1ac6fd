package layout

import (
	"math"
	"testing"

	"folio/images"
)

func TestReplacedSize(t *testing.T) {
	auto, inf := math.NaN(), math.Inf(1)
	photo := images.Intrinsic{Width: 200, Height: 100, Ratio: 2}
	tests := []struct {
		name             string
		in               images.Intrinsic
		w, h, cb         float64
		maxW, minH       float64
		wantW, wantH     float64
	}{
		{"natural size", photo, auto, auto, 500, inf, 0, 200, 100},
		{"width keeps the ratio", photo, 100, auto, 500, inf, 0, 100, 50},
		{"height keeps the ratio", photo, auto, 50, 500, inf, 0, 100, 50},
		{"both given", photo, 30, 30, 500, inf, 0, 30, 30},
		{"no natural size", images.Intrinsic{}, auto, auto, 500, inf, 0, 300, 150},
		{"ratio only fills the container", images.Intrinsic{Ratio: 2}, auto, auto, 400, inf, 0, 400, 200},
		{"max-width scales down", photo, auto, auto, 500, 50, 0, 50, 25},
		{"min-height scales up", photo, auto, auto, 500, inf, 200, 400, 200},
		{"height only", images.Intrinsic{Height: 80}, auto, auto, 500, inf, 0, 300, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := replacedSize(tt.in, tt.w, tt.h, tt.cb, 0, tt.maxW, tt.minH, inf)
			if !near(w, tt.wantW) || !near(h, tt.wantH) {
				t.Errorf("size = %vx%v, want %vx%v", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestReplaced_Layout(t *testing.T) {
	td := newTestDoc(t, `<body><p id=p><svg id=s width="100" height="50"></svg></p><img id=i style="display:block; width: 60px; height: 20px; margin: 0 auto"></body>`,
		`p { margin: 0 }`)
	pages := td.paginate(300, 300)
	s := findFrags(pages[0].Root, "s")
	if len(s) != 1 || !near(s[0].Metrics.Width, 100) || !near(s[0].Metrics.Height, 50) {
		t.Fatalf("svg fragment = %v, want 100x50", s)
	}
	if _, ok := s[0].Content.(*FragReplaced); !ok {
		t.Errorf("svg content is %T, want replaced", s[0].Content)
	}
	i := findFrags(pages[0].Root, "i")
	if len(i) != 1 || !near(i[0].Metrics.X, 120) || !near(i[0].Metrics.Width, 60) {
		t.Errorf("centered image = %v, want x=120 width 60", i)
	}
}

func TestSvgGeometry(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []float64
	}{
		{"commas and spaces", "1,2 3 4", []float64{1, 2, 3, 4}},
		{"negative numbers", "-1 -2 3,-4", []float64{-1, -2, 3, -4}},
		{"odd count drops the last", "1 2 3", []float64{1, 2}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePoints(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("parsePoints(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if !near(got[i], tt.want[i]) {
					t.Errorf("parsePoints(%q)[%d] = %v, want %v", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}
