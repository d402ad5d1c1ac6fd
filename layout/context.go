package layout

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"folio/images"
	"folio/style"
	"folio/text"
)

// Context holds the per-document collaborators of box construction and
// layout. It is not safe for concurrent use.
type Context struct {
	log     *zap.Logger
	faces   *text.FaceCache
	images  *images.Cache
	hyphens *text.Hyphenators
}

// NewContext returns a layout context. A nil face cache is replaced by one
// holding only the bundled fonts; nil images and hyphens disable intrinsic
// image sizes and automatic hyphenation.
func NewContext(log *zap.Logger, faces *text.FaceCache, imgs *images.Cache, hyphens *text.Hyphenators) (*Context, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if faces == nil {
		var err error
		if faces, err = text.NewFaceCache(log); err != nil {
			return nil, fmt.Errorf("unable to load bundled fonts: %w", err)
		}
	}
	return &Context{log: log.Named("layout"), faces: faces, images: imgs, hyphens: hyphens}, nil
}

// Input describes where and how a box is laid out.
type Input struct {
	// X is the left content edge of the containing block, Y the top of the
	// box's border box.
	X, Y float64
	// Width is the containing block width. Height is its height, negative
	// when indefinite.
	Width, Height float64
	// Start resumes layout after a breakpoint, Stop ends it at one.
	Start, Stop *Breakpoint
	// ForcedWidth and ForcedHeight impose a border box size (flex items,
	// table cells); negative when not imposed.
	ForcedWidth, ForcedHeight float64
	// ShrinkToFit sizes an auto width to the content.
	ShrinkToFit bool
}

func (in Input) forced() Input {
	in.ForcedWidth, in.ForcedHeight = -1, -1
	return in
}

// Baselines of a laid out box in page coordinates.
type Baselines struct {
	First, Last float64
	Valid       bool
}

// Output is the result of laying out a box. Size is the border box size.
// Breakpoint is the best break found inside the box during discovery.
type Output struct {
	Width, Height     float64
	Margin            Insets
	CompletelyLaidOut bool
	Breakpoint        *Breakpoint
	Baselines         Baselines
	Frag              *Frag
}

// flow is the state of one layout pass over a page.
type flow struct {
	*Context
	frag *Fragmentainer
	// margins adjoining the top of the page are truncated
	truncate bool
	// nesting depth of break-inside: avoid
	avoid int
	// viewport for vw and vh
	vw, vh float64
}

func (c *Context) newFlow(f *Fragmentainer, vw, vh float64) *flow {
	return &flow{Context: c, frag: f, vw: vw, vh: vh}
}

func (lc *flow) commit() bool { return !lc.frag.Discovery }

// natural is the appeal of an unforced break at the current nesting.
func (lc *flow) natural() Appeal {
	if lc.avoid > 0 {
		return AppealAvoid
	}
	return AppealClassB
}

func (lc *flow) basis(sv *style.SpecifiedValues, percent float64) style.Basis {
	return style.Basis{
		FontSize:       sv.FontSize(),
		RootFontSize:   sv.RootFontSize(),
		Percent:        percent,
		ViewportWidth:  lc.vw,
		ViewportHeight: lc.vh,
	}
}

// px resolves a length; auto, none and normal resolve to 0.
func (lc *flow) px(sv *style.SpecifiedValues, l style.Length, percent float64) float64 {
	if l.IsKeyword() {
		return 0
	}
	return l.ToPx(lc.basis(sv, percent))
}

// definite resolves a length that may be auto or refer to an indefinite
// percentage basis. It returns NaN for auto.
func (lc *flow) definite(sv *style.SpecifiedValues, l style.Length, percent float64) float64 {
	if l.IsKeyword() || l.Unit == style.Percent && percent < 0 {
		return math.NaN()
	}
	return l.ToPx(lc.basis(sv, percent))
}
