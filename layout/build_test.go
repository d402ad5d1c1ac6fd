package layout

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"folio/css/rules"
	"folio/dom"
	"folio/style"
)

const resetSheet = `html, body { margin: 0; padding: 0 }`

type testDoc struct {
	doc  *dom.Document
	comp *style.Computer
	lc   *Context
	root *Box
}

func newTestDoc(t *testing.T, html, sheet string) *testDoc {
	t.Helper()
	doc, err := dom.ParseHTML(strings.NewReader(html), "test.html")
	if err != nil {
		t.Fatal(err)
	}
	s := rules.NewParser(zap.NewNop()).Parse([]byte(resetSheet+"\n"+sheet), rules.Author)
	if err := s.Err(); err != nil {
		t.Fatalf("stylesheet: %v", err)
	}
	comp := style.NewComputer(zaptest.NewLogger(t), rules.PrintDevice(800, 600), []*rules.Stylesheet{s})
	comp.ComputeTree(doc.Root)
	lc, err := NewContext(zaptest.NewLogger(t), nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return &testDoc{doc: doc, comp: comp, lc: lc, root: lc.Build(doc.Root)}
}

func (td *testDoc) styler() PageStyler {
	root := style.Of(td.doc.DocumentElement()).Values
	return func(pc rules.PageContext) *style.PageValues {
		return td.comp.ComputePage(root, pc)
	}
}

func (td *testDoc) paginate(w, h float64) []*Page {
	return td.lc.Paginate(td.root, td.styler(), Options{Width: w, Height: h, MarginBoxes: true})
}

// findBox returns the box generated for the element with the given id.
func findBox(b *Box, id string) *Box {
	if b == nil {
		return nil
	}
	if b.Origin != nil && b.Origin.Type == dom.ElementNode && b.Origin.ID() == id && b.Pseudo == "" {
		return b
	}
	for _, k := range b.Children() {
		if f := findBox(k, id); f != nil {
			return f
		}
	}
	if inl, ok := b.Content.(*Inline); ok {
		for _, it := range inl.Items {
			if f := findBox(it.Box, id); f != nil {
				return f
			}
		}
	}
	return nil
}

// findFrags returns the fragments of the element with the given id.
func findFrags(f *Frag, id string) []*Frag {
	if f == nil {
		return nil
	}
	var out []*Frag
	if f.Box.Origin != nil && f.Box.Origin.ID() == id && f.Box.Pseudo == "" {
		out = append(out, f)
	}
	for _, k := range f.Children() {
		out = append(out, findFrags(k, id)...)
	}
	if fl, ok := f.Content.(*FragLines); ok {
		for _, ln := range fl.Lines {
			for _, r := range ln.Runs {
				out = append(out, findFrags(r.Atomic, id)...)
			}
		}
	}
	return out
}

func inlineText(b *Box) string {
	inl, ok := b.Content.(*Inline)
	if !ok {
		return ""
	}
	var sb strings.Builder
	for _, it := range inl.Items {
		switch it.Kind {
		case ItemText:
			sb.WriteString(it.Text)
		case ItemBreak:
			sb.WriteByte('\n')
		case ItemAtomic:
			sb.WriteString("[" + it.Box.Name() + "]")
		}
	}
	return sb.String()
}

func TestBuild_Structure(t *testing.T) {
	td := newTestDoc(t, `<body><div id=d>text <p id=p>para</p> tail<span style="display:none">x</span></div></body>`, ``)
	d := findBox(td.root, "d")
	if d == nil {
		t.Fatal("no box for #d")
	}
	kids := d.Children()
	if len(kids) != 3 {
		t.Fatalf("children = %d, want 3", len(kids))
	}
	if kids[0].Origin != nil || kids[2].Origin != nil {
		t.Error("inline runs next to blocks must be wrapped in anonymous boxes")
	}
	if got := inlineText(kids[0]); got != "text " {
		t.Errorf("first run = %q, want %q", got, "text ")
	}
	if got := inlineText(kids[2]); got != "tail" {
		t.Errorf("last run = %q, want %q", got, "tail")
	}
	if kids[1] != findBox(td.root, "p") {
		t.Error("middle child is not the paragraph")
	}
}

func TestBuild_SpaceAfterBlock(t *testing.T) {
	tests := []struct {
		name, html, want string
	}{
		{"preceding text without space", `<body><div id=d>text<p>para</p> tail</div></body>`, "tail"},
		{"preceding text with space", `<body><div id=d>text <p>para</p>  tail</div></body>`, "tail"},
		{"preserved spaces", `<body><div id=d style="white-space: pre">text<p>para</p> tail</div></body>`, " tail"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			td := newTestDoc(t, tt.html, ``)
			kids := findBox(td.root, "d").Children()
			if len(kids) != 3 {
				t.Fatalf("children = %d, want 3", len(kids))
			}
			if got := inlineText(kids[2]); got != tt.want {
				t.Errorf("run after block = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuild_RootIsBlock(t *testing.T) {
	td := newTestDoc(t, `<html style="display:inline"><body>x</body></html>`, ``)
	if td.root == nil {
		t.Fatal("no root box")
	}
	if !td.root.IsBlockLevel() {
		t.Errorf("root display = %s, want block level", td.root.display())
	}
}

func TestBuild_GeneratedContent(t *testing.T) {
	tests := []struct {
		name  string
		html  string
		sheet string
		want  string
	}{
		{"quotes", `<p id=t><q>a <q>b</q></q></p>`, ``, "“a ‘b’”"},
		{"before and after", `<p id=t>x</p>`, `#t::before { content: "[" } #t::after { content: "]" }`, "[x]"},
		{"attr", `<p id=t title=hello>x</p>`, `#t::before { content: attr(title) ": " }`, "hello: x"},
		{"list markers", `<ol id=t style="display:block"><li>a</li></ol>`, `ol li { display: inline }`, "a"},
		{
			"counters", `<div id=t><span></span><span></span><span></span></div>`,
			`#t { counter-reset: n 4 } span::before { content: counter(n, lower-roman); counter-increment: n }`,
			"vvivii",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			td := newTestDoc(t, tt.html, tt.sheet)
			b := findBox(td.root, "t")
			if b == nil {
				t.Fatal("no box for #t")
			}
			if got := inlineText(b); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuild_ListItems(t *testing.T) {
	td := newTestDoc(t, `<ol><li id=a>x</li><li id=b>y</li></ol><ul><li id=c>z</li></ul>`, ``)
	for id, want := range map[string]string{"a": "1. x", "b": "2. y", "c": "• z"} {
		if got := inlineText(findBox(td.root, id)); got != want {
			t.Errorf("#%s = %q, want %q", id, got, want)
		}
	}
}

func TestBuild_AtomicsAndReplaced(t *testing.T) {
	td := newTestDoc(t, `<p id=p>a<span id=ib style="display:inline-block">b</span><img id=img src="missing.png">c<br>d</p>`, ``)
	p := findBox(td.root, "p")
	if got, want := inlineText(p), "a[span][img]c\nd"; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
	img := findBox(td.root, "img")
	if img == nil || !img.IsReplaced() || !img.IsMonolithic() {
		t.Error("img must be a monolithic replaced box")
	}
}

func TestBuild_Tables(t *testing.T) {
	td := newTestDoc(t, `<table id=t><tr id=r><td>a</td><td>b</td></tr></table><div id=d style="display:table"><span style="display:table-cell">x</span></div>`, ``)
	r := findBox(td.root, "r")
	if r == nil || len(r.Children()) != 2 || !r.IsMonolithic() {
		t.Fatal("table row must hold two cells and be monolithic")
	}
	d := findBox(td.root, "d")
	if d == nil || len(d.Children()) != 1 || d.Children()[0].display() != style.DisplayTableRow {
		t.Error("loose cells must be wrapped in an anonymous row")
	}
}

func TestBuild_Svg(t *testing.T) {
	td := newTestDoc(t, `<p><svg id=s width="100" height="50" viewBox="0 0 200 100"><g><rect x="10" y="10" width="20" height="20"/></g><circle cx="100" cy="50" r="10"/><defs><rect width="500" height="500"/></defs></svg></p>`, ``)
	s := findBox(td.root, "s")
	if s == nil {
		t.Fatal("no box for svg")
	}
	rep, ok := s.Content.(*Replaced)
	if !ok || rep.Svg == nil {
		t.Fatal("svg must be replaced content with a group")
	}
	if len(rep.Svg.Children) != 2 {
		t.Errorf("group children = %d, want 2 (defs are not rendered)", len(rep.Svg.Children))
	}
	if rep.Intrinsic.Width != 100 || rep.Intrinsic.Height != 50 {
		t.Errorf("intrinsic = %vx%v, want 100x50", rep.Intrinsic.Width, rep.Intrinsic.Height)
	}
}

func TestFormatCounter(t *testing.T) {
	tests := []struct {
		v    int
		typ  string
		want string
	}{
		{3, "decimal", "3"},
		{7, "decimal-leading-zero", "07"},
		{1994, "upper-roman", "MCMXCIV"},
		{4, "lower-roman", "iv"},
		{0, "lower-roman", "0"},
		{1, "lower-alpha", "a"},
		{27, "upper-latin", "AA"},
		{18, "lower-greek", "σ"},
		{5, "disc", "•"},
		{5, "unknown-style", "5"},
		{5, "none", ""},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			if got := FormatCounter(tt.v, tt.typ); got != tt.want {
				t.Errorf("FormatCounter(%d, %q) = %q, want %q", tt.v, tt.typ, got, tt.want)
			}
		})
	}
}

func TestCounterState_Scopes(t *testing.T) {
	cs := newCounterState()
	cs.reset("c", 1)
	cs.push()
	cs.reset("c", 10)
	cs.increment("c", 1)
	if got := cs.all("c"); len(got) != 2 || got[0] != 1 || got[1] != 11 {
		t.Errorf("nested values = %v, want [1 11]", got)
	}
	cs.pop()
	if got := cs.value("c"); got != 1 {
		t.Errorf("after scope end = %d, want 1", got)
	}
	cs.increment("fresh", 2)
	if got := cs.value("fresh"); got != 2 {
		t.Errorf("implicit counter = %d, want 2", got)
	}
}
