package layout

import (
	"strings"
	"testing"
)

func linesOf(t *testing.T, p *Page, id string) []Line {
	t.Helper()
	fs := findFrags(p.Root, id)
	if len(fs) != 1 {
		t.Fatalf("#%s fragments on page %d = %d, want 1", id, p.Index+1, len(fs))
	}
	fl, ok := fs[0].Content.(*FragLines)
	if !ok {
		t.Fatalf("#%s has %T content, want lines", id, fs[0].Content)
	}
	return fl.Lines
}

func lineText(ln Line) string {
	var parts []string
	for _, r := range ln.Runs {
		parts = append(parts, r.Text)
	}
	return strings.Join(parts, "|")
}

func TestInline_OrphansAndWidows(t *testing.T) {
	tests := []struct {
		name      string
		sheet     string
		firstPage int
	}{
		{"defaults keep two lines together", ``, 2},
		{"single lines allowed", `p { orphans: 1; widows: 1 }`, 3},
		{"orphans push the break down", `p { orphans: 3; widows: 1 }`, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			td := newTestDoc(t, `<body><p id=p>a<br>b<br>c<br>d</p></body>`, `p { margin: 0; line-height: 10px }`+tt.sheet)
			pages := td.paginate(200, 35)
			if len(pages) != 2 {
				t.Fatalf("pages = %d, want 2", len(pages))
			}
			first, second := linesOf(t, pages[0], "p"), linesOf(t, pages[1], "p")
			if len(first) != tt.firstPage || len(first)+len(second) != 4 {
				t.Errorf("lines per page = %d+%d, want %d+%d", len(first), len(second), tt.firstPage, 4-tt.firstPage)
			}
			if bp := leaf(pages[0].Break); bp == nil || bp.EndIdx != tt.firstPage {
				t.Errorf("break = %v, want line %d", pages[0].Break, tt.firstPage)
			}
		})
	}
}

func TestInline_LineHeights(t *testing.T) {
	td := newTestDoc(t, `<body><p id=p>a<br>b<br>c</p></body>`, `p { margin: 0; line-height: 12px }`)
	pages := td.paginate(300, 300)
	lines := linesOf(t, pages[0], "p")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	for i, ln := range lines {
		if !near(ln.Rect.Height, 12) || !near(ln.Rect.Y, float64(12*i)) {
			t.Errorf("line %d at [%s], want y=%d height 12", i, ln.Rect, 12*i)
		}
		if ln.Baseline <= ln.Rect.Y || ln.Baseline >= ln.Rect.Bottom() {
			t.Errorf("line %d baseline %v outside the line", i, ln.Baseline)
		}
	}
	if got := lineText(lines[1]); got != "b" {
		t.Errorf("second line = %q, want %q", got, "b")
	}
}

func TestInline_Wrapping(t *testing.T) {
	words := strings.Repeat("word ", 40)
	td := newTestDoc(t, `<body><p id=p>`+words+`</p></body>`, `p { margin: 0; width: 150px; font-size: 10px }`)
	pages := td.paginate(400, 2000)
	lines := linesOf(t, pages[0], "p")
	if len(lines) < 2 {
		t.Fatalf("lines = %d, want the text to wrap", len(lines))
	}
	var got []string
	for _, ln := range lines {
		if ln.Rect.Width > 150+epsilon {
			t.Errorf("line [%s] wider than the container", ln.Rect)
		}
		for _, r := range ln.Runs {
			got = append(got, strings.Fields(r.Text)...)
		}
	}
	if len(got) != 40 {
		t.Errorf("words laid out = %d, want 40", len(got))
	}
}

func TestInline_TextAlign(t *testing.T) {
	tests := []struct {
		align string
		check func(ln Line) bool
	}{
		{"left", func(ln Line) bool { return near(ln.Runs[0].X, 0) }},
		{"right", func(ln Line) bool { r := ln.Runs[len(ln.Runs)-1]; return near(r.X+r.Width, 200) }},
		{"center", func(ln Line) bool {
			r := ln.Runs[len(ln.Runs)-1]
			return near(ln.Runs[0].X, 200-(r.X+r.Width))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.align, func(t *testing.T) {
			td := newTestDoc(t, `<body><p id=p>short</p></body>`, `p { margin: 0; width: 200px; text-align: `+tt.align+` }`)
			lines := linesOf(t, td.paginate(400, 400)[0], "p")
			if len(lines) != 1 || !tt.check(lines[0]) {
				t.Errorf("line %+v not aligned %s", lines, tt.align)
			}
		})
	}
}

func TestInline_Justify(t *testing.T) {
	td := newTestDoc(t, `<body><p id=p>`+strings.Repeat("aa bb ", 30)+`</p></body>`,
		`p { margin: 0; width: 120px; font-size: 10px; text-align: justify }`)
	lines := linesOf(t, td.paginate(400, 2000)[0], "p")
	if len(lines) < 3 {
		t.Fatalf("lines = %d, want several", len(lines))
	}
	for _, ln := range lines[:len(lines)-1] {
		r := ln.Runs[len(ln.Runs)-1]
		if !near(r.X+r.Width, 120) {
			t.Errorf("justified line ends at %v, want 120", r.X+r.Width)
		}
	}
	last := lines[len(lines)-1]
	if r := last.Runs[len(last.Runs)-1]; near(r.X+r.Width, 120) && len(last.Runs) > 1 {
		t.Error("last line must not be justified")
	}
}

func TestInline_Atomic(t *testing.T) {
	td := newTestDoc(t, `<body><p id=p>x<span id=ib>y</span>z</p></body>`,
		`p { margin: 0 } #ib { display: inline-block; width: 40px; height: 30px }`)
	pages := td.paginate(400, 400)
	ib := findFrags(pages[0].Root, "ib")
	if len(ib) != 1 {
		t.Fatalf("inline-block fragments = %d, want 1", len(ib))
	}
	lines := linesOf(t, pages[0], "p")
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	m := ib[0].Metrics
	if !near(m.Width, 40) || !near(m.Height, 30) {
		t.Errorf("inline-block size %vx%v, want 40x30", m.Width, m.Height)
	}
	if m.Y < lines[0].Rect.Y-epsilon || m.BorderBox().Bottom() > lines[0].Rect.Bottom()+epsilon {
		t.Errorf("inline-block [%s] outside its line [%s]", m.BorderBox(), lines[0].Rect)
	}
	if lines[0].Rect.Height < 30 {
		t.Errorf("line height %v, want at least the inline-block height", lines[0].Rect.Height)
	}
}

func TestInline_PreservedNewlines(t *testing.T) {
	td := newTestDoc(t, "<body><pre id=p>one\ntwo\n\nfour</pre></body>", `pre { margin: 0 }`)
	lines := linesOf(t, td.paginate(400, 400)[0], "p")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want 4", len(lines))
	}
	if got := lineText(lines[3]); got != "four" {
		t.Errorf("last line = %q, want %q", got, "four")
	}
}
