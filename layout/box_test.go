package layout

import (
	"testing"
)

func TestBox_SingleOwner(t *testing.T) {
	parent, other, child := NewBox(nil, nil), NewBox(nil, nil), NewBox(nil, nil)
	parent.Add(child)
	if len(parent.Children()) != 1 {
		t.Fatal("child not added")
	}
	defer func() {
		if recover() == nil {
			t.Error("adding a box to a second parent must panic")
		}
	}()
	other.Add(child)
}

func TestBox_ContentKinds(t *testing.T) {
	b := NewBox(nil, nil)
	b.AddInline(InlineItem{Kind: ItemText, Text: "x"})
	if _, ok := b.Content.(*Inline); !ok {
		t.Fatalf("content = %T, want inline", b.Content)
	}
	defer func() {
		if recover() == nil {
			t.Error("inline content must not take child boxes")
		}
	}()
	b.Add(NewBox(nil, nil))
}

func TestRect(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	if got := a.Union(Rect{5, -5, 10, 10}); got != (Rect{0, -5, 15, 15}) {
		t.Errorf("union = [%s]", got)
	}
	if got := a.Union(Rect{100, 100, 0, 0}); got != a {
		t.Errorf("union with empty = [%s]", got)
	}
	if got := (Rect{}).Union(a); got != a {
		t.Errorf("empty union = [%s]", got)
	}
	if got := a.inset(Insets{Top: 1, Right: 2, Bottom: 3, Left: 4}); got != (Rect{4, 1, 4, 6}) {
		t.Errorf("inset = [%s]", got)
	}
	if got := a.inset(Insets{Left: 20}); got.Width != 0 {
		t.Errorf("inset past the edge = [%s]", got)
	}
	if got := (Rect{1.5, 2, 3, 4}).String(); got != "1.5,2 3x4" {
		t.Errorf("String() = %q", got)
	}
}

func sampleFrag() *Frag {
	atomic := &Frag{Box: NewBox(nil, nil), Metrics: Metrics{X: 5, Y: 5, Width: 1, Height: 1}}
	lines := &FragLines{Lines: []Line{{
		Rect:     Rect{0, 0, 10, 10},
		Baseline: 8,
		Runs:     []Run{{X: 0, Baseline: 8, Text: "a"}, {X: 5, Baseline: 8, Atomic: atomic}},
	}}}
	leaf := &Frag{Box: NewBox(nil, nil), Content: lines}
	return &Frag{Box: NewBox(nil, nil), Metrics: Metrics{Width: 10, Height: 10}, Content: FragChildren{leaf}}
}

func TestFrag_Translate(t *testing.T) {
	f := sampleFrag()
	f.Translate(3, 4)
	if f.Metrics.X != 3 || f.Metrics.Y != 4 {
		t.Errorf("root at %v,%v, want 3,4", f.Metrics.X, f.Metrics.Y)
	}
	ln := f.Children()[0].Content.(*FragLines).Lines[0]
	if ln.Rect.X != 3 || ln.Rect.Y != 4 || ln.Baseline != 12 {
		t.Errorf("line [%s] baseline %v, want 3,4 baseline 12", ln.Rect, ln.Baseline)
	}
	if r := ln.Runs[1]; r.X != 8 || r.Baseline != 12 || r.Atomic.Metrics.X != 8 || r.Atomic.Metrics.Y != 9 {
		t.Errorf("atomic run %+v not moved", r)
	}
	var nilFrag *Frag
	nilFrag.Translate(1, 1)
}

func TestFrag_Clone(t *testing.T) {
	f := sampleFrag()
	cp := f.clone()
	cp.Translate(10, 10)
	if f.Metrics.X != 0 || f.Children()[0].Content.(*FragLines).Lines[0].Runs[1].Atomic.Metrics.X != 5 {
		t.Error("translating a clone must not move the original")
	}
	if cp.Children()[0].Content.(*FragLines).Lines[0].Runs[1].Atomic.Metrics.X != 15 {
		t.Error("clone not translated")
	}
}
