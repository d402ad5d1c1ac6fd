package text

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"folio/css/rules"
	"folio/style"
)

const (
	familyProportional = "go"
	familyMonospace    = "go mono"
)

// generic families resolve to the bundled Go fonts
var genericFamilies = map[string]string{
	"serif":      familyProportional,
	"sans-serif": familyProportional,
	"system-ui":  familyProportional,
	"cursive":    familyProportional,
	"fantasy":    familyProportional,
	"monospace":  familyMonospace,
}

var bundled = []struct {
	family string
	weight int
	italic bool
	data   []byte
}{
	{familyProportional, 400, false, goregular.TTF},
	{familyProportional, 400, true, goitalic.TTF},
	{familyProportional, 500, false, gomedium.TTF},
	{familyProportional, 500, true, gomediumitalic.TTF},
	{familyProportional, 700, false, gobold.TTF},
	{familyProportional, 700, true, gobolditalic.TTF},
	{familyMonospace, 400, false, gomono.TTF},
	{familyMonospace, 400, true, gomonoitalic.TTF},
	{familyMonospace, 700, false, gomonobold.TTF},
	{familyMonospace, 700, true, gomonobolditalic.TTF},
}

// FontSpec selects a face.
type FontSpec struct {
	Families []string
	Weight   int
	Italic   bool
	Size     float64 // px
}

// SpecOf derives the font selection from computed values.
func SpecOf(sv *style.SpecifiedValues) FontSpec {
	f := sv.Font.Get()
	return FontSpec{
		Families: f.Family.Families(),
		Weight:   int(f.Weight),
		Italic:   f.Style != style.FontStyleNormal,
		Size:     sv.FontSize(),
	}
}

type variant struct {
	font   *opentype.Font
	weight int
	italic bool
}

type faceKey struct {
	font *opentype.Font
	size float64
}

// FaceCache resolves font specifications to sized faces. It holds the
// bundled Go fonts and fonts loaded from @font-face rules. Faces are not
// safe for concurrent use, so each document owns its cache.
type FaceCache struct {
	log      *zap.Logger
	families map[string][]variant
	faces    map[faceKey]*Face
}

// NewFaceCache returns a cache holding the bundled fonts.
func NewFaceCache(log *zap.Logger) (*FaceCache, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fc := &FaceCache{
		log:      log.Named("fonts"),
		families: make(map[string][]variant),
		faces:    make(map[faceKey]*Face),
	}
	for _, b := range bundled {
		f, err := opentype.Parse(b.data)
		if err != nil {
			return nil, fmt.Errorf("unable to parse bundled font %s: %w", b.family, err)
		}
		fc.add(b.family, variant{font: f, weight: b.weight, italic: b.italic})
	}
	return fc, nil
}

func (fc *FaceCache) add(family string, v variant) {
	family = strings.ToLower(family)
	fc.families[family] = append(fc.families[family], v)
}

// HasFamily reports whether family resolves without falling back.
func (fc *FaceCache) HasFamily(family string) bool {
	family = strings.ToLower(family)
	if g, ok := genericFamilies[family]; ok {
		family = g
	}
	return len(fc.families[family]) > 0
}

// Face returns the face best matching spec. Unknown families fall back to
// the bundled proportional font.
func (fc *FaceCache) Face(spec FontSpec) *Face {
	variants := fc.families[familyProportional]
	for _, name := range spec.Families {
		name = strings.ToLower(name)
		if g, ok := genericFamilies[name]; ok {
			name = g
		}
		if vs := fc.families[name]; len(vs) > 0 {
			variants = vs
			break
		}
	}
	v := bestVariant(variants, spec.Weight, spec.Italic)
	size := spec.Size
	if size <= 0 {
		size = 16
	}
	key := faceKey{font: v.font, size: size}
	if f, ok := fc.faces[key]; ok {
		return f
	}
	face, err := opentype.NewFace(v.font, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		// sizes are positive and fonts were parsed already
		panic(fmt.Sprintf("unable to create face: %v", err))
	}
	f := newFace(face, size)
	fc.faces[key] = f
	return f
}

// bestVariant follows the CSS font matching order: style first, then
// weight.
func bestVariant(vs []variant, weight int, italic bool) variant {
	candidates := vs[:0:0]
	for _, v := range vs {
		if v.italic == italic {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		candidates = vs
	}
	best := candidates[0]
	for _, v := range candidates[1:] {
		if weightScore(v.weight, weight) < weightScore(best.weight, weight) {
			best = v
		}
	}
	return best
}

// weightScore orders available weights by preference: between 400 and 500
// heavier faces up to 500 come first, then lighter, then heavier than 500;
// below 400 lighter faces come first, above 500 heavier ones.
func weightScore(have, want int) int {
	d := have - want
	switch {
	case want >= 400 && want <= 500:
		switch {
		case d >= 0 && have <= 500:
			return d
		case d < 0:
			return 1000 - d
		}
		return 2000 + d
	case want < 400:
		if d <= 0 {
			return -d
		}
		return 1000 + d
	}
	if d >= 0 {
		return d
	}
	return 1000 - d
}

// Fetcher returns the bytes behind a URL of a stylesheet.
type Fetcher func(url string) ([]byte, error)

// LoadFontFaces registers the fonts of @font-face rules. Only TrueType
// and OpenType sources are usable; a rule is skipped when none of its
// sources loads.
func (fc *FaceCache) LoadFontFaces(faces []*rules.FontFaceRule, fetch Fetcher) error {
	var errs error
	for _, r := range faces {
		v := variant{weight: descriptorWeight(r.Descriptor("font-weight")), italic: descriptorItalic(r.Descriptor("font-style"))}
		for _, src := range r.Sources() {
			data, err := fetch(src)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("font %q: %w", src, err))
				continue
			}
			if !filetype.Is(data, "ttf") && !filetype.Is(data, "otf") {
				fc.log.Debug("Skipping unsupported font format", zap.String("url", src))
				continue
			}
			f, err := opentype.Parse(data)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("font %q: %w", src, err))
				continue
			}
			v.font = f
			break
		}
		if v.font == nil {
			fc.log.Warn("No usable source for font face", zap.String("family", r.Family()))
			continue
		}
		fc.add(r.Family(), v)
		fc.log.Debug("Font face loaded", zap.String("family", r.Family()), zap.Int("weight", v.weight), zap.Bool("italic", v.italic))
	}
	return errs
}

func descriptorWeight(v string) int {
	switch v {
	case "", "normal":
		return 400
	case "bold":
		return 700
	}
	// ranges such as "100 900" use their first value
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return 400
	}
	if n, err := strconv.Atoi(fields[0]); err == nil && n >= 1 && n <= 1000 {
		return n
	}
	return 400
}

func descriptorItalic(v string) bool {
	return strings.HasPrefix(v, "italic") || strings.HasPrefix(v, "oblique")
}

// Metrics are the vertical metrics of a face in px.
type Metrics struct {
	Ascent, Descent float64
	LineGap         float64
	XHeight         float64
	CapHeight       float64
}

// Face measures text with one font at one size.
type Face struct {
	face    font.Face
	size    float64
	metrics Metrics
	space   float64
	widths  map[string]float64
}

func newFace(face font.Face, size float64) *Face {
	m := face.Metrics()
	f := &Face{
		face: face,
		size: size,
		metrics: Metrics{
			Ascent:    fromFixed(m.Ascent),
			Descent:   fromFixed(m.Descent),
			LineGap:   fromFixed(m.Height - m.Ascent - m.Descent),
			XHeight:   fromFixed(m.XHeight),
			CapHeight: fromFixed(m.CapHeight),
		},
		widths: make(map[string]float64),
	}
	if f.metrics.LineGap < 0 {
		f.metrics.LineGap = 0
	}
	f.space = f.Advance(" ")
	return f
}

func fromFixed(v fixed.Int26_6) float64 { return float64(v) / 64 }

// Size returns the font size in px.
func (f *Face) Size() float64 { return f.size }

// Metrics returns the vertical metrics.
func (f *Face) Metrics() Metrics { return f.metrics }

// Font returns the underlying face for drawing.
func (f *Face) Font() font.Face { return f.face }

// SpaceWidth is the advance of U+0020.
func (f *Face) SpaceWidth() float64 { return f.space }

// Advance measures s including kerning. Results are memoized per string.
func (f *Face) Advance(s string) float64 {
	if s == "" {
		return 0
	}
	if w, ok := f.widths[s]; ok {
		return w
	}
	w := fromFixed(font.MeasureString(f.face, s))
	f.widths[s] = w
	return w
}

// NormalLineHeight is the used line height for line-height: normal.
func (f *Face) NormalLineHeight() float64 {
	return f.metrics.Ascent + f.metrics.Descent + f.metrics.LineGap
}
