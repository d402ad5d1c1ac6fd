package layout

import (
	"math"
	"strconv"
	"strings"

	"folio/style"
)

// Appeal ranks break candidates. Higher is better.
type Appeal uint8

const (
	// AppealEmpty is a break before any content of the page.
	AppealEmpty Appeal = iota
	// AppealOverflow is a break after content that did not fit.
	AppealOverflow
	// AppealAvoid is a break the author asked to avoid.
	AppealAvoid
	// AppealClassB is an ordinary break between siblings or lines.
	AppealClassB
	// AppealForced is a break the author asked for.
	AppealForced
)

var appealNames = [...]string{"EMPTY", "OVERFLOW", "AVOID", "CLASS_B", "FORCED"}

func (a Appeal) String() string {
	if int(a) < len(appealNames) {
		return appealNames[a]
	}
	return "Appeal(" + strconv.Itoa(int(a)) + ")"
}

// Advance tells how layout resumes after a breakpoint.
type Advance uint8

const (
	// Dont resumes at child EndIdx from its start.
	Dont Advance = iota
	// WithChildren resumes inside child EndIdx at Children[EndIdx].
	WithChildren
	// WithoutChildren resumes after child EndIdx, which is complete.
	WithoutChildren
)

func (a Advance) String() string {
	switch a {
	case WithChildren:
		return "WITH_CHILDREN"
	case WithoutChildren:
		return "WITHOUT_CHILDREN"
	}
	return "DONT"
}

// Breakpoint is a position in the box tree at which a page ends. Its
// children mirror the child indices of the box it belongs to; only the
// entry at EndIdx is set, and only for WithChildren. For inline content
// EndIdx counts lines.
type Breakpoint struct {
	EndIdx   int
	Appeal   Appeal
	Children []*Breakpoint
	Advance  Advance
}

// Child returns the nested breakpoint for child i.
func (bp *Breakpoint) Child(i int) *Breakpoint {
	if bp == nil || bp.Advance != WithChildren || bp.EndIdx != i || i >= len(bp.Children) {
		return nil
	}
	return bp.Children[i]
}

// resumeIndex is the first child laid out after bp.
func (bp *Breakpoint) resumeIndex() int {
	switch {
	case bp == nil:
		return 0
	case bp.Advance == WithoutChildren:
		return bp.EndIdx + 1
	}
	return bp.EndIdx
}

// stopsBefore reports whether layout ending at bp excludes child i.
func (bp *Breakpoint) stopsBefore(i int) bool {
	switch {
	case bp == nil:
		return false
	case bp.Advance == WithoutChildren:
		return i > bp.EndIdx
	case bp.Advance == WithChildren:
		return i > bp.EndIdx
	}
	return i >= bp.EndIdx
}

func (bp *Breakpoint) String() string {
	if bp == nil {
		return "<end>"
	}
	var b strings.Builder
	for bp != nil {
		if b.Len() > 0 {
			b.WriteString(" > ")
		}
		b.WriteString(strconv.Itoa(bp.EndIdx))
		b.WriteByte(' ')
		b.WriteString(bp.Advance.String())
		if bp.Advance != WithChildren {
			b.WriteByte(' ')
			b.WriteString(bp.Appeal.String())
			break
		}
		bp = bp.Children[bp.EndIdx]
	}
	return b.String()
}

// nest wraps the breakpoint of child i into a breakpoint of its parent.
func nest(i int, child *Breakpoint) *Breakpoint {
	if child == nil {
		return nil
	}
	children := make([]*Breakpoint, i+1)
	children[i] = child
	return &Breakpoint{EndIdx: i, Appeal: child.Appeal, Children: children, Advance: WithChildren}
}

// overrideIfBetter returns the better of the current best candidate and a
// later one. Among equal appeals the later candidate fills more of the page
// and wins, except for overflow breaks where the earliest one is kept.
func overrideIfBetter(best, cand *Breakpoint) *Breakpoint {
	switch {
	case cand == nil:
		return best
	case best == nil:
		return cand
	case cand.Appeal > best.Appeal:
		return cand
	case cand.Appeal == best.Appeal && cand.Appeal != AppealOverflow:
		return cand
	}
	return best
}

// Fragmentainer is the per-page layout state: the available block size,
// whether the current pass only discovers breakpoints and how many
// monolithic boxes are being laid out.
type Fragmentainer struct {
	Size      float64
	Discovery bool

	// page coordinate of the top edge
	origin     float64
	monolithic int
	// maximum appeal offered on the page so far
	bestAppeal Appeal
	offered    bool
	// content was placed on the page, breaks are no longer empty
	placed bool
	// content extends past Size
	overflowed bool
	// discovery has found its breakpoint
	done bool
	// value of the forced break offered last
	side style.BreakValue
}

// NewFragmentainer returns a fragmentainer for one page of the given block
// size. A non-positive size does not fragment.
func NewFragmentainer(size float64, discovery bool) *Fragmentainer {
	if size <= 0 {
		size = math.Inf(1)
	}
	return &Fragmentainer{Size: size, Discovery: discovery}
}

// fragmenting reports whether breakpoints are being looked for.
func (f *Fragmentainer) fragmenting() bool {
	return f.Discovery && f.monolithic == 0 && !math.IsInf(f.Size, 1)
}

func (f *Fragmentainer) enterMonolithic() { f.monolithic++ }

func (f *Fragmentainer) exitMonolithic(out Output) {
	f.monolithic--
	if !out.CompletelyLaidOut {
		panic("layout: monolithic box was not completely laid out")
	}
}

// place records that content now reaches bottom.
func (f *Fragmentainer) place(bottom float64) {
	if f.monolithic > 0 {
		return
	}
	f.placed = true
	if f.fragmenting() && bottom-f.origin > f.Size+epsilon {
		f.overflowed = true
		if f.offered && f.bestAppeal >= AppealAvoid {
			f.done = true
		}
	}
}

// candidate rates a break opportunity whose own appeal is natural and
// returns the breakpoint to offer, or nil when none should be offered.
// After an overflow the first opportunity ends discovery.
func (f *Fragmentainer) candidate(endIdx int, adv Advance, natural Appeal) *Breakpoint {
	if !f.fragmenting() || f.done {
		return nil
	}
	appeal := natural
	switch {
	case f.overflowed:
		appeal = AppealOverflow
		f.done = true
	case !f.placed:
		if natural == AppealForced {
			// a forced break at the top of a page is already satisfied
			return nil
		}
		appeal = AppealEmpty
	case natural == AppealForced:
		f.done = true
	}
	if !f.offered || appeal > f.bestAppeal {
		f.bestAppeal = appeal
	}
	f.offered = true
	return &Breakpoint{EndIdx: endIdx, Appeal: appeal, Advance: adv}
}

const epsilon = 0.01
