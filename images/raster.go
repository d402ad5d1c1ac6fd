package images

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// maxRasterDim bounds either side of a rasterized image so that enormous
// viewBox values cannot exhaust memory.
var maxRasterDim = 8192

// clampSize limits w x h to maxRasterDim keeping the aspect ratio.
func clampSize(w, h int) (int, int) {
	w, h = max(w, 1), max(h, 1)
	if w > maxRasterDim || h > maxRasterDim {
		s := min(float64(maxRasterDim)/float64(w), float64(maxRasterDim)/float64(h))
		w = max(int(math.Round(float64(w)*s)), 1)
		h = max(int(math.Round(float64(h)*s)), 1)
	}
	return w, h
}

// RasterizeSVG draws an SVG document stretched onto a transparent w x h
// image.
func RasterizeSVG(data []byte, w, h int) (*image.NRGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("unable to parse svg: %w", err)
	}
	w, h = clampSize(w, h)
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		icon.ViewBox.W, icon.ViewBox.H = float64(w), float64(h)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)
	return dst, nil
}

// Render decodes data (raster or SVG) and scales it to w x h.
func Render(data []byte, w, h int) (*image.NRGBA, error) {
	if IsSVG(data) {
		return RasterizeSVG(data, w, h)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("unable to decode image: %w", err)
	}
	w, h = clampSize(w, h)
	return imaging.Resize(img, w, h, imaging.Lanczos), nil
}
