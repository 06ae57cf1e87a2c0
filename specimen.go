package finch

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Specimen pairs a rendered canvas (the phenotype) with the ordered strokes
// that produced it (the genotype). The brush list is append-only; the
// canvas always equals every brush composited, in order, onto a white
// canvas of the target's size. Diff caches the difference between the
// canvas and the target and is rebuilt whenever the canvas is scored.
type Specimen struct {
	Canvas  gocv.Mat
	Brushes []Brush
	Diff    *DifferenceField
}

// NewSpecimen returns a specimen with an all-white width x height canvas
// and no brushes.
func NewSpecimen(width, height int) *Specimen {
	return &Specimen{
		Canvas: blankCanvas(width, height),
	}
}

// NewSpecimenLike returns a blank specimen the size of target.
func NewSpecimenLike(target gocv.Mat) *Specimen {
	return NewSpecimen(target.Cols(), target.Rows())
}

// blankCanvas allocates an all-white BGR canvas.
func blankCanvas(width, height int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), height, width, gocv.MatTypeCV8UC3)
}

// Clone returns a specimen whose canvas is a deep copy of s's. The brush
// slice is capped at its length so appending to the clone never writes
// into s's backing array. The cached difference field is shared, since it
// is replaced rather than modified.
func (s *Specimen) Clone() *Specimen {
	return &Specimen{
		Canvas:  s.Canvas.Clone(),
		Brushes: s.Brushes[:len(s.Brushes):len(s.Brushes)],
		Diff:    s.Diff,
	}
}

// Width returns the canvas width.
func (s *Specimen) Width() int { return s.Canvas.Cols() }

// Height returns the canvas height.
func (s *Specimen) Height() int { return s.Canvas.Rows() }

// Image copies the canvas into a Go-owned RGBA image.
func (s *Specimen) Image() (*image.RGBA, error) {
	return matToRGBA(s.Canvas)
}

// Close releases the canvas. The specimen must not be used afterwards.
func (s *Specimen) Close() error {
	return s.Canvas.Close()
}

// resizeCanvas replaces the canvas with a copy scaled to width x height and
// drops the brushes, which no longer describe it.
func (s *Specimen) resizeCanvas(width, height int) {
	if s.Width() == width && s.Height() == height {
		return
	}
	resized := gocv.NewMat()
	gocv.Resize(s.Canvas, &resized, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)
	s.Canvas.Close()
	s.Canvas = resized
	s.Brushes = nil
	s.Diff = nil
}

// matToRGBA converts a BGR or grayscale Mat into an RGBA image.
func matToRGBA(m gocv.Mat) (*image.RGBA, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert canvas: %w", err)
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			rgba.Set(x-b.Min.X, y-b.Min.Y, img.At(x, y))
		}
	}
	return rgba, nil
}
