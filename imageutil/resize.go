package imageutil

import (
	"image"

	"golang.org/x/image/draw"
)

// Interpolation specifies the interpolation method for resizing.
type Interpolation int

const (
	// InterpolationArea uses Catmull-Rom for high-quality downscaling.
	// This is the closest equivalent to OpenCV's INTER_AREA.
	InterpolationArea Interpolation = iota

	// InterpolationLinear uses bilinear interpolation.
	InterpolationLinear

	// InterpolationNearest uses nearest-neighbor interpolation. Used to
	// blow up difference fields so their cells stay visible.
	InterpolationNearest
)

func (interp Interpolation) scaler() draw.Scaler {
	switch interp {
	case InterpolationLinear:
		return draw.BiLinear
	case InterpolationNearest:
		return draw.NearestNeighbor
	default:
		return draw.CatmullRom
	}
}

// Resize scales img to width x height.
func Resize(img image.Image, width, height int, interp Interpolation) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	interp.scaler().Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// ResizeGray scales a grayscale image to width x height.
func ResizeGray(img *image.Gray, width, height int, interp Interpolation) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, width, height))
	interp.scaler().Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// FitSize returns the largest width x height with the aspect ratio of src
// that fits in maxWidth x maxHeight. Both results are at least 1.
func FitSize(src image.Rectangle, maxWidth, maxHeight int) (int, int) {
	w, h := src.Dx(), src.Dy()
	if w == 0 || h == 0 {
		return max(1, maxWidth), max(1, maxHeight)
	}
	scale := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	return max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))
}

// Fit scales img to the largest size that fits in maxWidth x maxHeight
// without changing its aspect ratio.
func Fit(img image.Image, maxWidth, maxHeight int, interp Interpolation) *image.RGBA {
	w, h := FitSize(img.Bounds(), maxWidth, maxHeight)
	return Resize(img, w, h, interp)
}
