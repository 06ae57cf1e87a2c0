package finch

import (
	"math/rand/v2"
	"sort"
)

// SamplePosition draws one pixel from f with probability proportional to
// its value and returns it in full-resolution coordinates, clamped to a
// width x height target. A field with no mass has no distribution to draw
// from; SamplePosition reports ErrConverged for it.
func SamplePosition(f *DifferenceField, width, height int, rng *rand.Rand) (Point, error) {
	p, err := sampleField(f, rng)
	if err != nil {
		return Point{}, err
	}
	factor := max(1, f.Factor)
	return clampPoint(Point{X: p.X * factor, Y: p.Y * factor}, width, height), nil
}

// sampleField draws one pixel of f in field coordinates.
func sampleField(f *DifferenceField, rng *rand.Rand) (Point, error) {
	w, h := f.Rect.Dx(), f.Rect.Dy()
	cumulative := make([]uint64, w*h)
	var total uint64
	for y := 0; y < h; y++ {
		row := f.Pix[y*f.Stride : y*f.Stride+w]
		for x, v := range row {
			total += uint64(v)
			cumulative[y*w+x] = total
		}
	}
	if total == 0 {
		return Point{}, ErrConverged
	}
	// The first index whose running total exceeds the draw; zero-weight
	// pixels never satisfy this.
	target := rng.Uint64N(total)
	i := sort.Search(len(cumulative), func(i int) bool {
		return cumulative[i] > target
	})
	return Point{X: i % w, Y: i / w}, nil
}
