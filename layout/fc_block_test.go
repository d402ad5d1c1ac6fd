package layout

import (
	"math"
	"strings"
	"testing"

	"folio/style"
)

func near(a, b float64) bool { return math.Abs(a-b) < 0.01 }

// leaf follows a breakpoint down to its innermost entry.
func leaf(bp *Breakpoint) *Breakpoint {
	for bp != nil && bp.Advance == WithChildren {
		bp = bp.Children[bp.EndIdx]
	}
	return bp
}

func tenBlocks() string {
	var sb strings.Builder
	sb.WriteString("<body>")
	for i := range 10 {
		sb.WriteString(`<div id=b` + string(rune('0'+i)) + `></div>`)
	}
	sb.WriteString("</body>")
	return sb.String()
}

func TestBlock_ClassBBreakpoints(t *testing.T) {
	td := newTestDoc(t, tenBlocks(), `div { height: 30px }`)
	pages := td.paginate(200, 100)
	if len(pages) != 4 {
		t.Fatalf("pages = %d, want 4", len(pages))
	}
	want := []int{3, 6, 9}
	for i, w := range want {
		bp := leaf(pages[i].Break)
		if bp == nil || bp.EndIdx != w || bp.Appeal != AppealClassB {
			t.Errorf("page %d break = %v, want %d CLASS_B", i+1, pages[i].Break, w)
		}
	}
	if pages[3].Break != nil {
		t.Error("last page must not end with a break")
	}

	// every block is laid out exactly once
	seen := map[string]int{}
	for _, p := range pages {
		for i := range 10 {
			id := "b" + string(rune('0'+i))
			for _, f := range findFrags(p.Root, id) {
				seen[id]++
				if f.Metrics.Y < p.ContentBox.Y-epsilon || f.Metrics.BorderBox().Bottom() > p.ContentBox.Bottom()+epsilon {
					t.Errorf("%s on page %d at [%s] outside the page area", id, p.Index+1, f.Metrics.BorderBox())
				}
			}
		}
	}
	for i := range 10 {
		id := "b" + string(rune('0'+i))
		if seen[id] != 1 {
			t.Errorf("%s laid out %d times", id, seen[id])
		}
	}
}

func TestBlock_ForcedBreakWins(t *testing.T) {
	td := newTestDoc(t, tenBlocks(), `div { height: 5px } #b3 { break-before: page }`)
	pages := td.paginate(200, 100)
	if len(pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(pages))
	}
	bp := leaf(pages[0].Break)
	if bp == nil || bp.EndIdx != 3 || bp.Appeal != AppealForced {
		t.Errorf("break = %v, want 3 FORCED", pages[0].Break)
	}
	if got := len(findFrags(pages[1].Root, "b3")); got != 1 {
		t.Errorf("#b3 fragments on page 2 = %d, want 1", got)
	}
}

func TestBlock_AvoidBreaks(t *testing.T) {
	// the break after #b2 is avoided, so the page ends before it
	td := newTestDoc(t, tenBlocks(), `div { height: 30px } #b2 { break-after: avoid }`)
	pages := td.paginate(200, 100)
	if bp := leaf(pages[0].Break); bp == nil || bp.EndIdx != 2 || bp.Appeal != AppealClassB {
		t.Errorf("break = %v, want 2 CLASS_B", pages[0].Break)
	}
}

func TestBlock_TallBlockSplits(t *testing.T) {
	td := newTestDoc(t, `<body><div id=outer style="border: 5px solid; padding: 5px"><div id=a></div><div id=b></div><div id=c></div></div></body>`,
		`#outer div { height: 40px }`)
	pages := td.paginate(200, 100)
	if len(pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(pages))
	}
	first, second := findFrags(pages[0].Root, "outer"), findFrags(pages[1].Root, "outer")
	if len(first) != 1 || len(second) != 1 {
		t.Fatal("#outer must have one fragment on each page")
	}
	if !first[0].Continues || first[0].Metrics.Border.Bottom != 0 || first[0].Metrics.Padding.Bottom != 0 {
		t.Errorf("first fragment must be open at the bottom: %+v", first[0].Metrics)
	}
	if !second[0].Continued || second[0].Metrics.Border.Top != 0 || second[0].Metrics.Border.Bottom != 5 {
		t.Errorf("second fragment must be open at the top: %+v", second[0].Metrics)
	}
}

func TestClassA(t *testing.T) {
	tests := []struct {
		name  string
		sheet string
		want  style.BreakValue
	}{
		{"auto", ``, style.BreakAuto},
		{"avoid after", `#a { break-after: avoid }`, style.BreakAvoid},
		{"forced inside last child", `#a { break-after: avoid } #a1 { break-after: page }`, style.BreakPage},
		{"forced before first child", `#b1 { break-before: right }`, style.BreakRight},
		{"later forced value wins", `#a { break-after: left } #b { break-before: right }`, style.BreakRight},
		{"named page change", `#b { page: wide }`, style.BreakPage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			td := newTestDoc(t, `<body><div id=a><div id=a1>x</div></div><div id=b><div id=b1>y</div></div></body>`, tt.sheet)
			if got := classA(findBox(td.root, "a"), findBox(td.root, "b")); got != tt.want {
				t.Errorf("classA = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBlock_Geometry(t *testing.T) {
	td := newTestDoc(t, `<body><div id=a></div><div id=b></div><div id=c></div><div id=abs></div></body>`, `
		#a { height: 10px; margin-bottom: 20px }
		#b { height: 10px; margin-top: 30px; width: 100px; margin-left: auto; margin-right: auto }
		#c { height: 10px; margin-top: -5px; padding: 2px; border: 1px solid; box-sizing: border-box; width: 50%; position: relative; left: 7px }
		#abs { position: absolute; top: 3px; right: 4px; width: 20px; height: 20px }
	`)
	pages := td.paginate(400, 1000)
	root := pages[0].Root
	get := func(id string) Metrics {
		fs := findFrags(root, id)
		if len(fs) != 1 {
			t.Fatalf("#%s fragments = %d", id, len(fs))
		}
		return fs[0].Metrics
	}
	a, b, c, abs := get("a"), get("b"), get("c"), get("abs")
	if !near(b.Y, a.Y+10+30) {
		t.Errorf("collapsed margin: b.Y = %v, want %v", b.Y, a.Y+40)
	}
	if !near(b.X, 150) {
		t.Errorf("auto margins: b.X = %v, want 150", b.X)
	}
	if !near(c.Y, b.Y+10-5) {
		t.Errorf("negative margin: c.Y = %v, want %v", c.Y, b.Y+5)
	}
	if !near(c.Width, 200) || !near(c.Height, 10) {
		t.Errorf("border-box sizing: c = %vx%v, want 200x10", c.Width, c.Height)
	}
	if !near(c.X, 7) {
		t.Errorf("relative offset: c.X = %v, want 7", c.X)
	}
	if !near(abs.Y, 3) || !near(abs.X, 400-4-20) {
		t.Errorf("absolute box at %v,%v, want 376,3", abs.X, abs.Y)
	}
}

func TestBlock_Floats(t *testing.T) {
	td := newTestDoc(t, `<body><div id=f>float</div></body>`, `#f { float: right; width: 50px; height: 10px }`)
	pages := td.paginate(300, 300)
	fs := findFrags(pages[0].Root, "f")
	if len(fs) != 1 || !near(fs[0].Metrics.X, 250) {
		t.Errorf("right float must be at the right edge: %v", fs)
	}
}
