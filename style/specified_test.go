package style

import (
	"strings"
	"sync"
	"testing"

	"folio/dom"
)

func TestInheritFrom_LeavesParentUntouched(t *testing.T) {
	parent := initialValues()
	parent.Font.Mut().Weight = 700
	initial := frozenInitial()

	child := inheritFrom(parent, initial)
	if !parent.Font.owned {
		t.Error("parent lost ownership of its font group")
	}
	if !child.Font.SameInstance(parent.Font) || !child.Box.SameInstance(initial.Box) {
		t.Error("child must share inherited groups with parent and the others with initial")
	}
	child.Font.Mut().Weight = 400
	if parent.Font.Get().Weight != 700 {
		t.Error("writing the child changed the parent")
	}
	if child.Box.owned || initial.Box.owned {
		t.Error("shared holders must not own their group")
	}
}

func TestComputer_SharedAcrossGoroutines(t *testing.T) {
	c := newComputer(t, `p { color: red; margin: 1px } .x { font-weight: bold }`)
	const html = `<body><div><p id=t class=x>a</p><p>b</p></div></body>`

	const workers = 8
	got := make([]string, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc, err := dom.ParseHTML(strings.NewReader(html), "test.html")
			if err != nil {
				t.Error(err)
				return
			}
			c.ComputeTree(doc.Root)
			var sb strings.Builder
			for _, p := range DefaultRegistry().Diff(byIDNoFatal(doc, "t"), nil) {
				sb.WriteString(p.Name + ":" + p.Value + ";")
			}
			got[i] = sb.String()
		}()
	}
	wg.Wait()
	for i := 1; i < workers; i++ {
		if got[i] != got[0] {
			t.Errorf("worker %d computed %q, want %q", i, got[i], got[0])
		}
	}
	if !strings.Contains(got[0], "font-weight") {
		t.Errorf("values = %q, want font-weight among them", got[0])
	}
}

// byIDNoFatal is byID for goroutines other than the test one.
func byIDNoFatal(doc *dom.Document, id string) *SpecifiedValues {
	for n := range doc.Root.Descendants() {
		if n.Type == dom.ElementNode && n.ID() == id {
			if cs := Of(n); cs != nil {
				return cs.Values
			}
		}
	}
	return initialValues()
}
