package finch

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestGradientBlurSize(t *testing.T) {
	tests := []struct {
		w, h, want int
	}{
		{640, 480, 9},
		{1920, 1080, 21},
		{100, 100, 3},
		{20, 20, 1},
	}
	for _, tt := range tests {
		if got := GradientBlurSize(tt.w, tt.h); got != tt.want {
			t.Errorf("GradientBlurSize(%d, %d): expected %d, got %d", tt.w, tt.h, tt.want, got)
		}
	}
}

func rampImage(w, h int, horizontal bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := y * 255 / (h - 1)
			if horizontal {
				v = x * 255 / (w - 1)
			}
			img.SetRGBA(x, y, color.RGBA{R: uint8(v), G: uint8(v), B: uint8(v), A: 255})
		}
	}
	return img
}

func TestGradientDirection(t *testing.T) {
	tests := []struct {
		name       string
		horizontal bool
		want       float64
	}{
		{"brighter to the right", true, 0},
		{"brighter downward", false, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGradient(matFromImage(t, rampImage(100, 100, tt.horizontal)))
			if err != nil {
				t.Fatalf("NewGradient failed: %v", err)
			}
			if g.Bounds() != image.Rect(0, 0, 100, 100) {
				t.Errorf("Expected 100x100 bounds, got %v", g.Bounds())
			}
			p := Point{X: 50, Y: 50}
			if got := g.Direction(p); math.Abs(got-tt.want) > 1 {
				t.Errorf("Expected direction %v, got %v", tt.want, got)
			}
			if g.Magnitude(p) <= 0 {
				t.Error("Expected a non-zero gradient magnitude")
			}
		})
	}
}

func TestGradientFlat(t *testing.T) {
	g, err := NewGradient(solidMat(t, 32, 32, gray(80)))
	if err != nil {
		t.Fatalf("NewGradient failed: %v", err)
	}
	if got := g.Magnitude(Point{X: 16, Y: 16}); got != 0 {
		t.Errorf("Expected zero magnitude, got %v", got)
	}
}
