package text

import (
	"unicode"
)

// patternTrie indexes TeX hyphenation patterns by their letters. Nodes that
// end a pattern carry the priorities of the gaps around its letters.
type patternTrie struct {
	children map[rune]*patternTrie
	// values[i] is the priority of the gap before letter i, the last
	// entry the gap after the final letter. nil when no pattern ends here.
	values []int
}

func newPatternTrie() *patternTrie {
	return &patternTrie{children: make(map[rune]*patternTrie)}
}

// addPattern stores a pattern of the form ".hy2p". A digit is the priority
// of the gap it stands in; gaps without one are zero.
func (p *patternTrie) addPattern(s string) {
	var (
		letters []rune
		values  = []int{0}
	)
	for _, r := range s {
		if unicode.IsDigit(r) {
			values[len(values)-1] = int(r - '0')
			continue
		}
		letters = append(letters, r)
		values = append(values, 0)
	}
	if len(letters) == 0 {
		return
	}
	n := p
	for _, r := range letters {
		child := n.children[r]
		if child == nil {
			child = newPatternTrie()
			n.children[r] = child
		}
		n = child
	}
	n.values = values
}

// size counts all nodes below the root.
func (p *patternTrie) size() int {
	sz := len(p.children)
	for _, child := range p.children {
		sz += child.size()
	}
	return sz
}

// prefixes calls fn with the values of every pattern that is a prefix of s,
// shortest first.
func (p *patternTrie) prefixes(s []rune, fn func(values []int)) {
	n := p
	for _, r := range s {
		if n = n.children[r]; n == nil {
			return
		}
		if n.values != nil {
			fn(n.values)
		}
	}
}
