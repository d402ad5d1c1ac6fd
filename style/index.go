package style

import (
	"container/heap"
	"strings"

	"folio/css/rules"
	"folio/css/selector"
	"folio/dom"
)

type keyKind uint8

const (
	keyID keyKind = iota
	keyClass
	keyType
	keyAttr
	keyPseudoElement
)

type indexKey struct {
	kind keyKind
	name string
}

// indexEntry is one branch of a selector list.
type indexEntry struct {
	rule   int // position in RuleIndex.rules
	branch selector.Selector
	needed int
	// exact entries are a lone id or class selector: having the key is
	// the match.
	exact bool
	spec  selector.Specificity
}

// Match is a rule matching an element. Order is the rule's position among
// all rules added to the index.
type Match struct {
	Rule        *rules.StyleRule
	Specificity selector.Specificity
	Order       int
}

// RuleIndex finds the style rules matching an element without trying every
// selector. Each selector branch is filed under the keys of its subject
// compound (id, classes, type, attribute names, pseudo-element) and is only
// evaluated for elements that have all of them. Branches without keys are
// tried for every element.
type RuleIndex struct {
	rules   []*rules.StyleRule
	entries []indexEntry
	buckets map[indexKey][]int
	linear  []int
}

// NewRuleIndex returns an empty index.
func NewRuleIndex() *RuleIndex {
	return &RuleIndex{buckets: make(map[indexKey][]int)}
}

// Len returns the number of rules in the index.
func (ix *RuleIndex) Len() int { return len(ix.rules) }

// AddSheet adds the style rules of s that apply to dev.
func (ix *RuleIndex) AddSheet(s *rules.Stylesheet, dev rules.Device) {
	s.Effective(dev, func(r rules.Rule) {
		if sr, ok := r.(*rules.StyleRule); ok {
			ix.Add(sr)
		}
	})
}

// Add files one rule. Rules must be added in cascade order.
func (ix *RuleIndex) Add(r *rules.StyleRule) {
	ri := len(ix.rules)
	ix.rules = append(ix.rules, r)
	branches := []selector.Selector{r.Selector}
	if or, ok := r.Selector.(selector.Nfix); ok && or.Op == selector.Or {
		branches = or.Inner
	}
	for _, b := range branches {
		if _, never := b.(selector.Never); never {
			continue
		}
		keys := subjectKeys(b)
		e := indexEntry{rule: ri, branch: b, needed: len(keys), spec: selector.SpecificityOf(b)}
		if len(keys) == 1 && (keys[0].kind == keyID || keys[0].kind == keyClass) {
			switch b.(type) {
			case selector.ID, selector.Class:
				e.exact = true
			}
		}
		ei := len(ix.entries)
		ix.entries = append(ix.entries, e)
		if len(keys) == 0 {
			ix.linear = append(ix.linear, ei)
			continue
		}
		for _, k := range keys {
			ix.buckets[k] = append(ix.buckets[k], ei)
		}
	}
}

// subjectKeys returns the distinct keys every element matched by s has.
func subjectKeys(s selector.Selector) []indexKey {
	if in, ok := s.(selector.Infix); ok {
		return subjectKeys(in.RHS)
	}
	var simple []selector.Selector
	if and, ok := s.(selector.Nfix); ok {
		if and.Op != selector.And {
			return nil
		}
		simple = and.Inner
	} else {
		simple = []selector.Selector{s}
	}
	var keys []indexKey
	add := func(k indexKey) {
		for _, have := range keys {
			if have == k {
				return
			}
		}
		keys = append(keys, k)
	}
	for _, sel := range simple {
		switch sel := sel.(type) {
		case selector.ID:
			add(indexKey{keyID, sel.Name})
		case selector.Class:
			add(indexKey{keyClass, sel.Name})
		case selector.Type:
			if sel.Name != "*" {
				add(indexKey{keyType, strings.ToLower(sel.Name)})
			}
		case selector.Attribute:
			if sel.Namespace != selector.AnyNamespace && (sel.Op == selector.AttrPresent || sel.Op == selector.AttrExact) {
				add(indexKey{keyAttr, strings.ToLower(sel.Name)})
			}
		case selector.PseudoElement:
			add(indexKey{keyPseudoElement, sel.Name})
		}
	}
	return keys
}

// elementKeys is the key set of el styled as pseudo.
func elementKeys(el *dom.Node, pseudo string) []indexKey {
	keys := make([]indexKey, 0, 4+len(el.Attrs))
	if id := el.ID(); id != "" {
		keys = append(keys, indexKey{keyID, id})
	}
	for _, c := range el.Classes() {
		keys = append(keys, indexKey{keyClass, c})
	}
	keys = append(keys, indexKey{keyType, strings.ToLower(el.Name)})
	for _, a := range el.Attrs {
		keys = append(keys, indexKey{keyAttr, strings.ToLower(a.Name)})
	}
	if pseudo != "" {
		keys = append(keys, indexKey{keyPseudoElement, pseudo})
	}
	return keys
}

// cursor walks one bucket.
type cursor struct {
	list []int
	pos  int
}

type cursorHeap []*cursor

func (h cursorHeap) Len() int           { return len(h) }
func (h cursorHeap) Less(i, j int) bool { return h[i].list[h[i].pos] < h[j].list[h[j].pos] }
func (h cursorHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *cursorHeap) Push(x any)        { *h = append(*h, x.(*cursor)) }
func (h *cursorHeap) Pop() any {
	old := *h
	c := old[len(old)-1]
	*h = old[:len(old)-1]
	return c
}

// Match returns the rules matching el styled as pseudo ("" for the element
// itself) in the order they were added. A rule matched through several
// branches is reported once with the highest specificity.
func (ix *RuleIndex) Match(el *dom.Node, pseudo string) []Match {
	h := make(cursorHeap, 0, 8)
	seen := make(map[indexKey]bool)
	for _, k := range elementKeys(el, pseudo) {
		if seen[k] {
			continue
		}
		seen[k] = true
		if list := ix.buckets[k]; len(list) > 0 {
			h = append(h, &cursor{list: list})
		}
	}
	if len(ix.linear) > 0 {
		h = append(h, &cursor{list: ix.linear})
	}
	heap.Init(&h)

	var (
		out      []Match
		lastRule = -1
	)
	try := func(ei, hits int) {
		e := &ix.entries[ei]
		if hits < e.needed {
			return
		}
		var (
			sp selector.Specificity
			ok bool
		)
		if e.exact {
			sp, ok = e.spec, pseudo == ""
		} else {
			sp, ok = selector.MatchSpecificity(e.branch, el, pseudo)
		}
		if !ok {
			return
		}
		if e.rule == lastRule {
			if m := &out[len(out)-1]; m.Specificity.Less(sp) {
				m.Specificity = sp
			}
			return
		}
		lastRule = e.rule
		out = append(out, Match{Rule: ix.rules[e.rule], Specificity: sp, Order: e.rule})
	}

	cur, hits := -1, 0
	for h.Len() > 0 {
		c := h[0]
		ei := c.list[c.pos]
		if ei != cur {
			if cur >= 0 {
				try(cur, hits)
			}
			cur, hits = ei, 0
		}
		hits++
		if c.pos++; c.pos < len(c.list) {
			heap.Fix(&h, 0)
		} else {
			heap.Pop(&h)
		}
	}
	if cur >= 0 {
		try(cur, hits)
	}
	return out
}

// HasPseudoElement reports whether any rule targets the pseudo-element.
func (ix *RuleIndex) HasPseudoElement(name string) bool {
	return len(ix.buckets[indexKey{keyPseudoElement, name}]) > 0
}
