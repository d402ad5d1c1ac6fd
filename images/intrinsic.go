// Package images determines the intrinsic dimensions of replaced content
// and rasterizes it for page previews.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/h2non/filetype"
	"github.com/srwiley/oksvg"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Intrinsic holds the natural dimensions of replaced content in px. A zero
// Width or Height means the content has no such dimension; Ratio is zero
// when there is no natural aspect ratio.
type Intrinsic struct {
	Width, Height float64
	Ratio         float64 // width / height
	Kind          string  // png, jpg, svg, ...
}

// HasSize reports whether both dimensions are known.
func (in Intrinsic) HasSize() bool { return in.Width > 0 && in.Height > 0 }

var errUnknownFormat = errors.New("unknown image format")

// IsSVG sniffs SVG documents, which filetype does not know about.
func IsSVG(data []byte) bool {
	head := data[:min(len(data), 1024)]
	head = bytes.TrimLeft(head, "\ufeff \t\r\n")
	return bytes.HasPrefix(head, []byte("<")) && bytes.Contains(head, []byte("<svg"))
}

// Kind returns the short name of the data format or "" when unknown.
func Kind(data []byte) string {
	if IsSVG(data) {
		return "svg"
	}
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	return kind.Extension
}

// Measure returns the intrinsic dimensions of encoded image data.
func Measure(data []byte) (Intrinsic, error) {
	kind := Kind(data)
	switch {
	case kind == "svg":
		return measureSVG(data)
	case kind == "":
		return Intrinsic{}, errUnknownFormat
	case !filetype.IsImage(data):
		return Intrinsic{}, fmt.Errorf("%s is not an image", kind)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Intrinsic{}, fmt.Errorf("unable to decode %s header: %w", kind, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Intrinsic{}, fmt.Errorf("%s has no dimensions", kind)
	}
	return Intrinsic{
		Width:  float64(cfg.Width),
		Height: float64(cfg.Height),
		Ratio:  float64(cfg.Width) / float64(cfg.Height),
		Kind:   kind,
	}, nil
}

// measureSVG reads the width, height and viewBox of the root element.
// oksvg parses the viewBox the same way it does when rasterizing.
func measureSVG(data []byte) (Intrinsic, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return Intrinsic{}, fmt.Errorf("unable to parse svg: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "svg" {
		return Intrinsic{}, errors.New("svg root element not found")
	}
	var vbW, vbH float64
	if root.SelectAttr("viewBox") != nil {
		icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
		if err != nil {
			return Intrinsic{}, fmt.Errorf("unable to parse svg: %w", err)
		}
		vbW, vbH = icon.ViewBox.W, icon.ViewBox.H
	}
	in := SVGIntrinsic(root.SelectAttrValue("width", ""), root.SelectAttrValue("height", ""), vbW, vbH)
	in.Kind = "svg"
	return in, nil
}

// SVGIntrinsic combines the width and height attributes of an outer svg
// element with its viewBox size. Percentages and missing attributes leave
// the dimension open; the viewBox provides the ratio and, when both
// attributes are missing, nothing else.
func SVGIntrinsic(width, height string, viewBoxW, viewBoxH float64) Intrinsic {
	var in Intrinsic
	in.Width, _ = svgLength(width)
	in.Height, _ = svgLength(height)
	switch {
	case in.Width > 0 && in.Height > 0:
		in.Ratio = in.Width / in.Height
	case viewBoxW > 0 && viewBoxH > 0:
		in.Ratio = viewBoxW / viewBoxH
		if in.Width > 0 {
			in.Height = in.Width / in.Ratio
		} else if in.Height > 0 {
			in.Width = in.Height * in.Ratio
		}
	}
	return in
}

// ParseViewBox reads "min-x min-y width height".
func ParseViewBox(v string) (w, h float64, ok bool) {
	f := strings.FieldsFunc(v, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' || r == '\n' })
	if len(f) != 4 {
		return 0, 0, false
	}
	var nums [4]float64
	for i, s := range f {
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, 0, false
		}
		nums[i] = n
	}
	if nums[2] <= 0 || nums[3] <= 0 {
		return 0, 0, false
	}
	return nums[2], nums[3], true
}

var svgUnits = map[string]float64{
	"":   1,
	"px": 1,
	"pt": 96.0 / 72,
	"pc": 16,
	"in": 96,
	"cm": 96 / 2.54,
	"mm": 96 / 25.4,
}

// svgLength converts an absolute SVG length to px.
func svgLength(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	i := len(v)
	for i > 0 && (v[i-1] >= 'a' && v[i-1] <= 'z' || v[i-1] >= 'A' && v[i-1] <= 'Z') {
		i--
	}
	scale, ok := svgUnits[strings.ToLower(v[i:])]
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseFloat(v[:i], 64)
	if err != nil || n <= 0 || math.IsInf(n, 0) {
		return 0, false
	}
	return n * scale, true
}

// Fetcher returns the bytes behind a resource URL.
type Fetcher func(url string) ([]byte, error)

type cached struct {
	in  Intrinsic
	err error
}

// Cache memoizes intrinsic sizes by URL for one document.
type Cache struct {
	log   *zap.Logger
	fetch Fetcher
	sizes map[string]cached
	data  map[string][]byte
}

// NewCache returns an empty cache fetching through fetch.
func NewCache(fetch Fetcher, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{log: log.Named("images"), fetch: fetch, sizes: make(map[string]cached), data: make(map[string][]byte)}
}

// Intrinsic returns the intrinsic size of the resource at url. Failures
// are logged once and reported as ok == false.
func (c *Cache) Intrinsic(url string) (Intrinsic, bool) {
	if e, ok := c.sizes[url]; ok {
		return e.in, e.err == nil
	}
	var e cached
	data, err := c.Data(url)
	if err == nil {
		e.in, err = Measure(data)
	}
	e.err = err
	c.sizes[url] = e
	if err != nil {
		c.log.Warn("Unable to determine image size", zap.String("url", url), zap.Error(err))
		return Intrinsic{}, false
	}
	return e.in, true
}

// Data returns the raw bytes of url.
func (c *Cache) Data(url string) ([]byte, error) {
	if d, ok := c.data[url]; ok {
		return d, nil
	}
	if c.fetch == nil {
		return nil, fmt.Errorf("no resource loader for %q", url)
	}
	d, err := c.fetch(url)
	if err != nil {
		return nil, err
	}
	c.data[url] = d
	return d, nil
}
