package finch

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gocv.io/x/gocv"
)

// DiffDownscale is the factor by which canvas and target are shrunk before
// they are compared. Sampling positions drawn from the resulting field are
// multiplied back up by the same factor.
const DiffDownscale = 2

// DifferenceMethod selects how a canvas pixel is compared to a target pixel.
type DifferenceMethod int

const (
	// AbsoluteDifference is the absolute difference of grayscale values.
	AbsoluteDifference DifferenceMethod = iota
	// RelativeDifference divides the absolute grayscale difference by the
	// brighter of the two pixels, so dark regions weigh proportionally more.
	RelativeDifference
	// PerceptualDifference is the CIE76 color difference in L*a*b*.
	PerceptualDifference
)

// String returns the name of the method.
func (m DifferenceMethod) String() string {
	switch m {
	case AbsoluteDifference:
		return "absolute"
	case RelativeDifference:
		return "relative"
	case PerceptualDifference:
		return "perceptual"
	}
	return fmt.Sprintf("DifferenceMethod(%d)", int(m))
}

// TerminationScore returns the rounded score at or below which a search
// with this metric counts as converged. Relative differences run larger
// than absolute ones, so they stop earlier.
func (m DifferenceMethod) TerminationScore() int {
	switch m {
	case RelativeDifference:
		return 7500
	default:
		return 3500
	}
}

// ParseDifferenceMethod resolves a method name, case-insensitively.
func ParseDifferenceMethod(name string) (DifferenceMethod, error) {
	for _, m := range []DifferenceMethod{AbsoluteDifference, RelativeDifference, PerceptualDifference} {
		if strings.EqualFold(m.String(), name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown difference method %q, options are absolute, relative, or perceptual", name)
}

// DifferenceField is a per-pixel dissimilarity map between a canvas and a
// target, stored at 1/Factor of the target's resolution. Higher is worse.
type DifferenceField struct {
	*image.Gray
	Factor int
}

// Sum returns the total mass of the field.
func (f *DifferenceField) Sum() uint64 {
	var sum uint64
	w, h := f.Rect.Dx(), f.Rect.Dy()
	for y := 0; y < h; y++ {
		row := f.Pix[y*f.Stride : y*f.Stride+w]
		for _, v := range row {
			sum += uint64(v)
		}
	}
	return sum
}

// Fitness normalizes the field to a score in [0, 1]: the summed difference
// divided by the largest possible sum. Lower is better.
func Fitness(f *DifferenceField) float64 {
	n := f.Rect.Dx() * f.Rect.Dy()
	if n == 0 {
		return 0
	}
	return float64(f.Sum()) / (float64(n) * 255)
}

// RoundedScore converts a fitness into the integer score used for
// comparisons, insulating them from floating point noise.
func RoundedScore(fitness float64) int {
	return int(math.Round(fitness * 100 * ScoreMultiplier))
}

// Differ compares canvases against one fixed target. The target's
// downscaled forms are computed once, so repeated scoring only pays for the
// canvas side.
type Differ struct {
	method DifferenceMethod
	width  int
	height int
	// small is the downscaled BGR target.
	small gocv.Mat
	// gray holds the downscaled grayscale target, for absolute and relative.
	gray []uint8
	// lab holds the downscaled target in L*a*b*, for perceptual.
	lab []labPixel
}

// NewDiffer prepares a Differ for target.
func NewDiffer(target gocv.Mat, method DifferenceMethod) (*Differ, error) {
	if target.Empty() {
		return nil, ErrEmptyImage
	}
	d := &Differ{
		method: method,
		width:  max(1, target.Cols()/DiffDownscale),
		height: max(1, target.Rows()/DiffDownscale),
	}
	d.small = d.shrink(target)

	switch method {
	case AbsoluteDifference, RelativeDifference:
		gray, err := grayBytes(d.small)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.gray = gray
	case PerceptualDifference:
		lab, err := labPixels(d.small)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.lab = lab
	default:
		d.Close()
		return nil, fmt.Errorf("unsupported difference method %v", method)
	}
	return d, nil
}

// Method returns the metric the Differ was built for.
func (d *Differ) Method() DifferenceMethod { return d.method }

// Close releases the cached target.
func (d *Differ) Close() error {
	return d.small.Close()
}

// shrink resizes img to the Differ's working resolution.
func (d *Differ) shrink(img gocv.Mat) gocv.Mat {
	small := gocv.NewMat()
	gocv.Resize(img, &small, image.Pt(d.width, d.height), 0, 0, gocv.InterpolationLinear)
	return small
}

// Field computes the difference field between canvas and the target.
func (d *Differ) Field(canvas gocv.Mat) (*DifferenceField, error) {
	small := d.shrink(canvas)
	defer small.Close()

	field := &DifferenceField{
		Gray:   image.NewGray(image.Rect(0, 0, d.width, d.height)),
		Factor: DiffDownscale,
	}
	switch d.method {
	case AbsoluteDifference, RelativeDifference:
		gray, err := grayBytes(small)
		if err != nil {
			return nil, err
		}
		if d.method == AbsoluteDifference {
			absoluteDifference(field.Pix, gray, d.gray)
		} else {
			relativeDifference(field.Pix, gray, d.gray)
		}
	case PerceptualDifference:
		lab, err := labPixels(small)
		if err != nil {
			return nil, err
		}
		perceptualDifference(field.Pix, lab, d.lab)
	}
	return field, nil
}

// Difference computes the difference field between canvas and target under
// method. Callers scoring many canvases against one target should reuse a
// Differ instead.
func Difference(canvas, target gocv.Mat, method DifferenceMethod) (*DifferenceField, error) {
	d, err := NewDiffer(target, method)
	if err != nil {
		return nil, err
	}
	defer d.Close()
	return d.Field(canvas)
}

// absoluteDifference writes |a-b| per pixel into dst.
func absoluteDifference(dst, a, b []uint8) {
	for i := range dst {
		dst[i] = absDiff(a[i], b[i])
	}
}

// relativeDifference writes |a-b| / max(a, b), rescaled to 0..255, into
// dst. Where both pixels are black the difference is zero; where only one
// is black the ratio is 1, the maximum.
func relativeDifference(dst, a, b []uint8) {
	for i := range dst {
		denom := max(a[i], b[i])
		if denom == 0 {
			dst[i] = 0
			continue
		}
		dst[i] = uint8(float64(absDiff(a[i], b[i])) / float64(denom) * 255)
	}
}

// perceptualDifference writes the CIE76 ΔE of each pixel pair, clamped to
// 255, into dst.
func perceptualDifference(dst []uint8, a, b []labPixel) {
	for i := range dst {
		dl := a[i].l - b[i].l
		da := a[i].a - b[i].a
		db := a[i].b - b[i].b
		// colorful scales L to [0, 1]; ΔE units use L in [0, 100].
		de := math.Sqrt(dl*dl+da*da+db*db) * 100
		if de > 255 {
			de = 255
		}
		dst[i] = uint8(de)
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

// grayBytes converts a BGR Mat to grayscale and copies out its pixels.
func grayBytes(bgr gocv.Mat) ([]uint8, error) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(bgr, &gray, gocv.ColorBGRToGray)
	data, err := gray.DataPtrUint8()
	if err != nil {
		return nil, fmt.Errorf("failed to read grayscale pixels: %w", err)
	}
	return append([]uint8(nil), data...), nil
}

// labPixel is one pixel in colorful's L*a*b* scale.
type labPixel struct {
	l, a, b float64
}

// labPixels converts every pixel of a BGR Mat to L*a*b* under D65.
func labPixels(bgr gocv.Mat) ([]labPixel, error) {
	data, err := bgr.DataPtrUint8()
	if err != nil {
		return nil, fmt.Errorf("failed to read color pixels: %w", err)
	}
	pixels := make([]labPixel, len(data)/3)
	for i := range pixels {
		c := colorful.Color{
			R: float64(data[i*3+2]) / 255,
			G: float64(data[i*3+1]) / 255,
			B: float64(data[i*3]) / 255,
		}
		l, a, b := c.Lab()
		pixels[i] = labPixel{l: l, a: a, b: b}
	}
	return pixels, nil
}
