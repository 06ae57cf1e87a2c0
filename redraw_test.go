package finch

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/wbrown/finch/imageutil"
)

func paintedClimber(t *testing.T, steps int) *Climber {
	t.Helper()
	target := matFromImage(t, imageutil.CreateColorBarsImage(64, 48))
	c, err := NewClimber(target, testCatalog(t), testConfig(WithPatience(1000)), nil)
	if err != nil {
		t.Fatalf("NewClimber failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	n := 0
	if _, err := c.Run(context.Background(), RunOptions{
		Halt: func() bool { n++; return n > steps },
	}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return c
}

func TestRedrawReproducesCanvas(t *testing.T) {
	c := paintedClimber(t, 60)
	s := c.Specimen()
	if len(s.Brushes) == 0 {
		t.Fatal("Expected accepted strokes")
	}

	redrawn, err := Redraw(s, c.Catalog(), 1)
	if err != nil {
		t.Fatalf("Redraw failed: %v", err)
	}
	defer redrawn.Close()

	if d := imageutil.CalculateMaxDiff(mustRGBA(t, s.Canvas), mustRGBA(t, redrawn)); d != 0 {
		t.Errorf("Expected identical redraw, max diff %d", d)
	}
}

func TestRedrawScaled(t *testing.T) {
	c := paintedClimber(t, 10)
	redrawn, err := Redraw(c.Specimen(), c.Catalog(), 1.5)
	if err != nil {
		t.Fatalf("Redraw failed: %v", err)
	}
	defer redrawn.Close()
	if redrawn.Cols() != 96 || redrawn.Rows() != 72 {
		t.Errorf("Expected 96x72, got %dx%d", redrawn.Cols(), redrawn.Rows())
	}

	odd, err := RedrawGenotype(c.Specimen().Brushes, 33, 21, c.Catalog(), 1.5)
	if err != nil {
		t.Fatalf("RedrawGenotype failed: %v", err)
	}
	defer odd.Close()
	if odd.Cols() != 50 || odd.Rows() != 32 {
		t.Errorf("Expected dimensions rounded up to 50x32, got %dx%d", odd.Cols(), odd.Rows())
	}
}

func TestRedrawNoGenotype(t *testing.T) {
	s := NewSpecimen(8, 8)
	defer s.Close()
	m, err := Redraw(s, testCatalog(t), 2)
	defer m.Close()
	if !errors.Is(err, ErrNoGenotype) {
		t.Errorf("Expected ErrNoGenotype, got %v", err)
	}
}

func TestScaleFor4K(t *testing.T) {
	tests := []struct {
		h, w int
		want float64
	}{
		{1080, 1920, 2},
		{2160, 3840, 1},
		{480, 640, math.Sqrt(UHDPixels/(640.0/480.0)) / 480},
	}
	for _, tt := range tests {
		if got := ScaleFor4K(tt.h, tt.w); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ScaleFor4K(%d, %d): expected %v, got %v", tt.h, tt.w, tt.want, got)
		}
	}
	// The scaled image holds about UHDPixels.
	s := ScaleFor4K(480, 640)
	if px := 480 * s * 640 * s; math.Abs(px-UHDPixels) > 1 {
		t.Errorf("Expected %d pixels, got %v", UHDPixels, px)
	}
}
