package finch

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// Gradient is the smoothed directional derivative field of a target image.
// It is computed once per target and is read-only afterwards.
type Gradient struct {
	width, height int
	dx, dy        []float32
}

// GradientBlurSize returns the smoothing kernel size for an image: about a
// fiftieth of the shorter side, rounded up to the next odd number.
func GradientBlurSize(width, height int) int {
	k := min(width, height) / 50
	if k%2 == 0 {
		k++
	}
	return k
}

// NewGradient computes Scharr derivatives of the grayscale target and
// smooths both components with a Gaussian of GradientBlurSize.
func NewGradient(target gocv.Mat) (*Gradient, error) {
	if target.Empty() {
		return nil, ErrEmptyImage
	}
	gray := gocv.NewMat()
	defer gray.Close()
	if target.Channels() == 1 {
		target.CopyTo(&gray)
	} else {
		gocv.CvtColor(target, &gray, gocv.ColorBGRToGray)
	}

	k := GradientBlurSize(target.Cols(), target.Rows())
	dx, err := smoothedDerivative(gray, 1, 0, k)
	if err != nil {
		return nil, err
	}
	dy, err := smoothedDerivative(gray, 0, 1, k)
	if err != nil {
		return nil, err
	}
	return &Gradient{
		width:  target.Cols(),
		height: target.Rows(),
		dx:     dx,
		dy:     dy,
	}, nil
}

// smoothedDerivative returns the blurred Scharr derivative of gray in the
// given direction, copied out of OpenCV memory.
func smoothedDerivative(gray gocv.Mat, xOrder, yOrder, kernel int) ([]float32, error) {
	deriv := gocv.NewMat()
	defer deriv.Close()
	gocv.Scharr(gray, &deriv, gocv.MatTypeCV32F, xOrder, yOrder, 1, 0, gocv.BorderDefault)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(deriv, &blurred, image.Pt(kernel, kernel), 0, 0, gocv.BorderDefault)

	data, err := blurred.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read gradient: %w", err)
	}
	return append([]float32(nil), data...), nil
}

// Direction returns atan2(dy, dx) at p, in degrees.
//
// p must lie within the target. Callers clamp; Direction does not check.
func (g *Gradient) Direction(p Point) float64 {
	i := p.Y*g.width + p.X
	return math.Atan2(float64(g.dy[i]), float64(g.dx[i])) * 180 / math.Pi
}

// Magnitude returns the Euclidean norm of (dx, dy) at p. p must lie within
// the target.
func (g *Gradient) Magnitude(p Point) float64 {
	i := p.Y*g.width + p.X
	return math.Hypot(float64(g.dx[i]), float64(g.dy[i]))
}

// Bounds returns the size of the field.
func (g *Gradient) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.width, g.height)
}
