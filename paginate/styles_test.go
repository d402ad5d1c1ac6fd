package paginate

import (
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestDumpStyles(t *testing.T) {
	html := `<style>
		p.note { color: red; margin-top: 5px }
		p.note::before { content: "!"; color: blue }
		@page { @top-center { content: "head" } }
	</style><body><p id=x class="note big">text</p></body>`
	res, err := Cascade(&Source{Name: "doc.html", Data: []byte(html)}, testOptions(t), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Cascade() error = %v", err)
	}
	out := DumpStyles(res)

	for _, want := range []string{"html", "body", "p#x.note.big", "::before", "@page :first", "@top-center", "margin-top"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump does not contain %q:\n%s", want, out)
		}
	}
	// inherited values equal to the parent are not repeated
	lines := strings.Split(out, "\n")
	var colors int
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "color:") {
			colors++
		}
	}
	if colors != 2 {
		t.Errorf("color listed %d times, want 2 (element and pseudo-element):\n%s", colors, out)
	}
}

func TestDescribe(t *testing.T) {
	res, err := Cascade(&Source{Name: "doc.html", Data: []byte(`<div id=a class="x y"></div><span></span>`)}, testOptions(t), zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	if got := describe(elementByID(t, res.Doc, "a")); got != "div#a.x.y" {
		t.Errorf("describe() = %q", got)
	}
}
