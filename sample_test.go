package finch

import (
	"errors"
	"image"
	"testing"
)

func newField(w, h int) *DifferenceField {
	return &DifferenceField{Gray: image.NewGray(image.Rect(0, 0, w, h)), Factor: 2}
}

func TestSamplePositionSingleMass(t *testing.T) {
	f := newField(8, 6)
	f.Pix[2*f.Stride+3] = 40
	rng := newRand(1)

	for i := 0; i < 100; i++ {
		p, err := SamplePosition(f, 16, 12, rng)
		if err != nil {
			t.Fatalf("SamplePosition failed: %v", err)
		}
		if want := (Point{X: 6, Y: 4}); p != want {
			t.Fatalf("Expected %v, got %v", want, p)
		}
	}
}

func TestSamplePositionProportional(t *testing.T) {
	f := newField(2, 1)
	f.Pix[0] = 100
	f.Pix[1] = 100
	rng := newRand(7)

	counts := map[Point]int{}
	const draws = 4000
	for i := 0; i < draws; i++ {
		p, err := SamplePosition(f, 4, 2, rng)
		if err != nil {
			t.Fatalf("SamplePosition failed: %v", err)
		}
		counts[p]++
	}
	if len(counts) != 2 {
		t.Fatalf("Expected 2 distinct positions, got %v", counts)
	}
	for p, n := range counts {
		if n < draws*4/10 || n > draws*6/10 {
			t.Errorf("Position %v drawn %d of %d times", p, n, draws)
		}
	}
}

func TestSamplePositionClamped(t *testing.T) {
	f := newField(4, 4)
	f.Pix[len(f.Pix)-1] = 1
	// A target one pixel narrower than the field implies.
	p, err := SamplePosition(f, 5, 5, newRand(3))
	if err != nil {
		t.Fatalf("SamplePosition failed: %v", err)
	}
	if want := (Point{X: 4, Y: 4}); p != want {
		t.Errorf("Expected %v, got %v", want, p)
	}
}

func TestSamplePositionConverged(t *testing.T) {
	if _, err := SamplePosition(newField(4, 4), 8, 8, newRand(1)); !errors.Is(err, ErrConverged) {
		t.Errorf("Expected ErrConverged, got %v", err)
	}
}
