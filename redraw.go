package finch

import (
	"math"

	"gocv.io/x/gocv"
)

// UHDPixels is the pixel count of a 3840x2160 frame.
const UHDPixels = 3840 * 2160

// ScaleFor4K returns the factor that brings a height x width image to about
// UHDPixels pixels with its aspect ratio unchanged.
func ScaleFor4K(height, width int) float64 {
	aspect := float64(width) / float64(height)
	newHeight := math.Sqrt(UHDPixels / aspect)
	return newHeight / float64(height)
}

// Redraw replays the brushes of s onto a fresh white canvas scaled by
// scale, painting with catalog. Each stroke's size and position are scaled
// with the canvas and strokes are painted in their original order, so a
// scale of 1 reproduces s.Canvas. The caller owns the returned Mat.
func Redraw(s *Specimen, catalog *Catalog, scale float64) (gocv.Mat, error) {
	if len(s.Brushes) == 0 {
		return gocv.NewMat(), ErrNoGenotype
	}
	return redrawBrushes(s.Brushes, s.Width(), s.Height(), catalog, scale)
}

// Redraw4K redraws s at ScaleFor4K.
func Redraw4K(s *Specimen, catalog *Catalog) (gocv.Mat, error) {
	return Redraw(s, catalog, ScaleFor4K(s.Height(), s.Width()))
}

// redrawBrushes paints brushes onto a blank width x height canvas scaled by
// scale.
func redrawBrushes(brushes []Brush, width, height int, catalog *Catalog, scale float64) (gocv.Mat, error) {
	w := int(math.Ceil(float64(width) * scale))
	h := int(math.Ceil(float64(height) * scale))
	canvas := blankCanvas(w, h)
	for _, b := range brushes {
		if err := catalog.Composite(b.Scaled(scale), &canvas); err != nil {
			canvas.Close()
			return gocv.NewMat(), err
		}
	}
	Logger().Info("redrew painting", "strokes", len(brushes), "width", w, "height", h)
	return canvas, nil
}

// RedrawGenotype replays a stored brush list recorded on a width x height
// canvas at the given scale.
func RedrawGenotype(brushes []Brush, width, height int, catalog *Catalog, scale float64) (gocv.Mat, error) {
	if len(brushes) == 0 {
		return gocv.NewMat(), ErrNoGenotype
	}
	return redrawBrushes(brushes, width, height, catalog, scale)
}
