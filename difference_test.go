package finch

import (
	"image/color"
	"testing"
)

func gray(v uint8) color.RGBA {
	return color.RGBA{R: v, G: v, B: v, A: 255}
}

func fieldOf(t *testing.T, canvas, target color.RGBA, method DifferenceMethod) *DifferenceField {
	t.Helper()
	f, err := Difference(solidMat(t, 16, 12, canvas), solidMat(t, 16, 12, target), method)
	if err != nil {
		t.Fatalf("Difference failed: %v", err)
	}
	return f
}

func TestDifferenceAbsolute(t *testing.T) {
	f := fieldOf(t, white, gray(100), AbsoluteDifference)
	if f.Factor != DiffDownscale {
		t.Errorf("Expected factor %d, got %d", DiffDownscale, f.Factor)
	}
	if f.Rect.Dx() != 8 || f.Rect.Dy() != 6 {
		t.Errorf("Expected 8x6 field, got %v", f.Rect)
	}
	for i, v := range f.Pix {
		if v != 155 {
			t.Fatalf("Pixel %d: expected 155, got %d", i, v)
		}
	}
	if got := f.Sum(); got != 155*48 {
		t.Errorf("Expected sum %d, got %d", 155*48, got)
	}
}

func TestDifferenceRelative(t *testing.T) {
	tests := []struct {
		name           string
		canvas, target color.RGBA
		want           uint8
	}{
		{"half", gray(200), gray(100), 127},
		{"both black", black, black, 0},
		{"one black", black, gray(50), 255},
		{"equal", gray(90), gray(90), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fieldOf(t, tt.canvas, tt.target, RelativeDifference)
			if got := f.Pix[0]; got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestDifferencePerceptual(t *testing.T) {
	if f := fieldOf(t, red, red, PerceptualDifference); f.Sum() != 0 {
		t.Errorf("Expected identical images to differ by 0, got %d", f.Sum())
	}
	// White and black are 100 ΔE apart.
	f := fieldOf(t, white, black, PerceptualDifference)
	if got := f.Pix[0]; got < 99 || got > 100 {
		t.Errorf("Expected ~100, got %d", got)
	}
}

func TestFitness(t *testing.T) {
	if got := Fitness(fieldOf(t, white, black, AbsoluteDifference)); got != 1 {
		t.Errorf("Expected fitness 1, got %v", got)
	}
	if got := Fitness(fieldOf(t, white, white, AbsoluteDifference)); got != 0 {
		t.Errorf("Expected fitness 0, got %v", got)
	}
}

func TestRoundedScore(t *testing.T) {
	tests := []struct {
		fitness float64
		want    int
	}{
		{1, 100000},
		{0.5, 50000},
		{0.035, 3500},
		{0.123456, 12346},
		{0, 0},
	}
	for _, tt := range tests {
		if got := RoundedScore(tt.fitness); got != tt.want {
			t.Errorf("RoundedScore(%v): expected %d, got %d", tt.fitness, tt.want, got)
		}
	}
}

func TestParseDifferenceMethod(t *testing.T) {
	for _, m := range []DifferenceMethod{AbsoluteDifference, RelativeDifference, PerceptualDifference} {
		got, err := ParseDifferenceMethod(m.String())
		if err != nil || got != m {
			t.Errorf("ParseDifferenceMethod(%q): expected %v, got %v (%v)", m.String(), m, got, err)
		}
	}
	if _, err := ParseDifferenceMethod("euclid"); err == nil {
		t.Error("Expected error for unknown method")
	}
	if RelativeDifference.TerminationScore() <= AbsoluteDifference.TerminationScore() {
		t.Error("Expected relative termination score above absolute")
	}
}

func TestDifferReuse(t *testing.T) {
	target := solidMat(t, 16, 12, gray(100))
	d, err := NewDiffer(target, AbsoluteDifference)
	if err != nil {
		t.Fatalf("NewDiffer failed: %v", err)
	}
	defer d.Close()

	for _, c := range []color.RGBA{white, gray(100), black} {
		f, err := d.Field(solidMat(t, 16, 12, c))
		if err != nil {
			t.Fatalf("Field failed: %v", err)
		}
		want := fieldOf(t, c, gray(100), AbsoluteDifference)
		if f.Sum() != want.Sum() {
			t.Errorf("Reused differ: expected sum %d, got %d", want.Sum(), f.Sum())
		}
	}
}
