package finch

import (
	"bytes"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"math"

	"github.com/anthonynsimon/bild/transform"
)

const (
	// GIFFrameBudget is the most frames a progress GIF shows before the
	// final frame is held.
	GIFFrameBudget = 50
	// GIFFramesPerSecond is the playback rate of a progress GIF.
	GIFFramesPerSecond = 5
	// GIFHoldSeconds is how long the final frame is held.
	GIFHoldSeconds = 3
	// GIFMaxDimension bounds the longer side of a GIF frame.
	GIFMaxDimension = 720
)

// AssembleGIF encodes frames as a looping GIF at GIFFramesPerSecond. Longer
// sequences are thinned to GIFFrameBudget frames, always keeping the first
// and the last, and the last frame is then repeated for GIFHoldSeconds.
func AssembleGIF(frames []image.Image) ([]byte, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames to assemble")
	}
	keep := decimate(len(frames), GIFFrameBudget)
	hold := GIFFramesPerSecond * GIFHoldSeconds
	delay := 100 / GIFFramesPerSecond
	Logger().Info("assembling gif", "input", len(frames), "kept", len(keep), "hold", hold)

	anim := &gif.GIF{LoopCount: 0}
	var last *image.Paletted
	for _, i := range keep {
		last = paletted(frames[i])
		anim.Image = append(anim.Image, last)
		anim.Delay = append(anim.Delay, delay)
	}
	for range hold {
		anim.Image = append(anim.Image, last)
		anim.Delay = append(anim.Delay, delay)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return nil, fmt.Errorf("failed to encode gif: %w", err)
	}
	Logger().Info("gif assembled", "bytes", buf.Len())
	return buf.Bytes(), nil
}

// decimate returns the indices of the frames kept out of n, at most budget
// of them, in order. Indices are spread evenly and anchored at the end, so
// the first and last frames always survive and any rounding crowds the
// early frames rather than the converged ones.
func decimate(n, budget int) []int {
	if n <= budget {
		keep := make([]int, n)
		for i := range keep {
			keep[i] = i
		}
		return keep
	}
	if budget <= 1 {
		return []int{n - 1}
	}
	keep := make([]int, budget)
	step := float64(n-1) / float64(budget-1)
	for j := range budget {
		keep[budget-1-j] = n - 1 - int(math.Round(float64(j)*step))
	}
	return keep
}

// paletted caps img at GIFMaxDimension and dithers it onto the Plan 9
// palette.
func paletted(img image.Image) *image.Paletted {
	b := img.Bounds()
	if w, h := b.Dx(), b.Dy(); max(w, h) > GIFMaxDimension {
		scale := float64(GIFMaxDimension) / float64(max(w, h))
		img = transform.Resize(img,
			max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale)),
			transform.Linear)
		b = img.Bounds()
	}
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
	draw.FloydSteinberg.Draw(dst, dst.Bounds(), img, b.Min)
	return dst
}
