package layout

import (
	"strings"
	"testing"
)

func TestPaginate_PageBoxes(t *testing.T) {
	tests := []struct {
		name        string
		sheet       string
		wantPage    Rect
		wantContent Rect
	}{
		{"configured paper", ``, Rect{0, 0, 300, 400}, Rect{0, 0, 300, 400}},
		{"size and margin", `@page { size: 400px 300px; margin: 10px }`, Rect{0, 0, 400, 300}, Rect{10, 10, 380, 280}},
		{"landscape", `@page { size: landscape }`, Rect{0, 0, 400, 300}, Rect{0, 0, 400, 300}},
		{"padding and border", `@page { margin: 10px 20px; padding: 5px; border: 1px solid }`, Rect{0, 0, 300, 400}, Rect{26, 16, 248, 368}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			td := newTestDoc(t, `<body>x</body>`, tt.sheet)
			pages := td.paginate(300, 400)
			if len(pages) != 1 {
				t.Fatalf("pages = %d, want 1", len(pages))
			}
			if p := pages[0]; p.PageBox != tt.wantPage || p.ContentBox != tt.wantContent {
				t.Errorf("page [%s] content [%s], want [%s] [%s]", p.PageBox, p.ContentBox, tt.wantPage, tt.wantContent)
			}
		})
	}
}

func TestPaginate_BlankPages(t *testing.T) {
	tests := []struct {
		side      string
		wantPages int
		wantBlank int
	}{
		{"page", 2, -1},
		{"right", 3, 1},
		{"recto", 3, 1},
		{"left", 2, -1},
	}
	for _, tt := range tests {
		t.Run(tt.side, func(t *testing.T) {
			td := newTestDoc(t, `<body><div id=a>a</div><div id=b>b</div></body>`, `#b { break-before: `+tt.side+` }`)
			pages := td.paginate(300, 400)
			if len(pages) != tt.wantPages {
				t.Fatalf("pages = %d, want %d", len(pages), tt.wantPages)
			}
			for i, p := range pages {
				if p.Index != i {
					t.Errorf("page %d has index %d", i, p.Index)
				}
				if p.Blank != (i == tt.wantBlank) {
					t.Errorf("page %d blank = %v", i+1, p.Blank)
				}
			}
			if got := len(findFrags(pages[len(pages)-1].Root, "b")); got != 1 {
				t.Errorf("#b fragments on the last page = %d, want 1", got)
			}
		})
	}
}

func TestPaginate_NamedPages(t *testing.T) {
	td := newTestDoc(t, `<body><div id=a>a</div><div id=b>b</div></body>`, `
		#b { page: wide }
		@page wide { size: 500px 200px }
	`)
	pages := td.paginate(300, 400)
	if len(pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(pages))
	}
	if pages[0].Name != "" || pages[0].PageBox.Width != 300 {
		t.Errorf("first page %q [%s], want the default page", pages[0].Name, pages[0].PageBox)
	}
	if pages[1].Name != "wide" || pages[1].PageBox.Width != 500 || pages[1].PageBox.Height != 200 {
		t.Errorf("second page %q [%s], want wide 500x200", pages[1].Name, pages[1].PageBox)
	}
}

func TestPaginate_MarginBoxes(t *testing.T) {
	td := newTestDoc(t, `<body><div>a</div><div style="break-before: page">b</div></body>`, `
		@page {
			size: 400px 300px;
			margin: 20px;
			@bottom-center { content: "Page " counter(page) " of " counter(pages); font-size: 10px }
			@top-left { content: none }
		}
	`)
	pages := td.paginate(300, 400)
	if len(pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(pages))
	}
	for i, p := range pages {
		if len(p.Margins) != 1 {
			t.Fatalf("page %d margin boxes = %d, want 1", i+1, len(p.Margins))
		}
		mb := p.Margins[0]
		if mb.Area != "bottom-center" || mb.Rect != (Rect{140, 280, 120, 20}) {
			t.Errorf("margin box %s [%s], want bottom-center [140,280 120x20]", mb.Area, mb.Rect)
		}
		fl, ok := mb.Frag.Content.(*FragLines)
		if !ok || len(fl.Lines) != 1 {
			t.Fatalf("margin box content = %T, want one line", mb.Frag.Content)
		}
		var words []string
		for _, r := range fl.Lines[0].Runs {
			words = append(words, strings.Fields(r.Text)...)
		}
		want := "Page " + string(rune('1'+i)) + " of 2"
		if got := strings.Join(words, " "); got != want {
			t.Errorf("page %d margin text = %q, want %q", i+1, got, want)
		}
	}
}

func TestPaginate_MaxPages(t *testing.T) {
	td := newTestDoc(t, tenBlocks(), `div { height: 30px }`)
	pages := td.lc.Paginate(td.root, td.styler(), Options{Width: 200, Height: 100, MaxPages: 2})
	if len(pages) != 2 {
		t.Errorf("pages = %d, want 2", len(pages))
	}
}

func TestPaginate_NoRoot(t *testing.T) {
	td := newTestDoc(t, `<body></body>`, ``)
	if pages := td.lc.Paginate(nil, td.styler(), Options{Width: 100, Height: 100}); len(pages) != 0 {
		t.Errorf("pages = %d, want none", len(pages))
	}
}

func TestMarginRect(t *testing.T) {
	m := Insets{Top: 10, Right: 20, Bottom: 30, Left: 40}
	tests := []struct {
		area string
		want Rect
		ok   bool
	}{
		{"top-left-corner", Rect{0, 0, 40, 10}, true},
		{"bottom-right-corner", Rect{280, 270, 20, 30}, true},
		{"top-left", Rect{40, 0, 80, 10}, true},
		{"top-right", Rect{200, 0, 80, 10}, true},
		{"bottom-center", Rect{120, 270, 80, 30}, true},
		{"left-top", Rect{0, 10, 40, 260.0 / 3}, true},
		{"right-bottom", Rect{280, 10 + 2*260.0/3, 20, 260.0 / 3}, true},
		{"top-middle", Rect{}, false},
		{"nowhere", Rect{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.area, func(t *testing.T) {
			got, ok := marginRect(tt.area, 300, 300, m)
			if ok != tt.ok || !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) || !near(got.Width, tt.want.Width) || !near(got.Height, tt.want.Height) {
				t.Errorf("marginRect(%q) = [%s] %v, want [%s] %v", tt.area, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestDump(t *testing.T) {
	td := newTestDoc(t, `<body><p id=p>hello</p><div style="break-before: right">x</div></body>`, ``)
	out := Dump(td.paginate(300, 400))
	for _, want := range []string{"page 1 [", "page 2 [", "blank", "break ", "hello"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump has no %q:\n%s", want, out)
		}
	}
}
