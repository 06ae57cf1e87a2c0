package finch

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownStyle is returned by ParseStyle for names that are not a Style.
var ErrUnknownStyle = errors.New("finch: unknown brush style")

// Style is one of the brush styles finch ships textures for. The set is
// closed: the only valid values are the Style variables below. Each style
// carries the name of its texture directory.
type Style struct {
	name string
	dir  string
}

var (
	StyleCanvas     = Style{name: "Canvas", dir: "canvas"}
	StyleOil        = Style{name: "Oil", dir: "oil"}
	StyleSketch     = Style{name: "Sketch", dir: "sketch"}
	StyleWatercolor = Style{name: "Watercolor", dir: "watercolor"}
)

// Styles returns every brush style in a stable order.
func Styles() []Style {
	return []Style{StyleCanvas, StyleOil, StyleSketch, StyleWatercolor}
}

// ParseStyle resolves a style name, case-insensitively. It is meant to be
// called once while building configuration, never inside a search.
func ParseStyle(name string) (Style, error) {
	for _, s := range Styles() {
		if strings.EqualFold(s.name, name) {
			return s, nil
		}
	}
	return Style{}, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
}

// String returns the display name of the style.
func (s Style) String() string { return s.name }

// Dir returns the name of the style's texture directory.
func (s Style) Dir() string { return s.dir }

// IsZero reports whether s is the zero Style.
func (s Style) IsZero() bool { return s == Style{} }

// Brush is a single stroke, the gene of a Specimen. It is created by the
// mutation operator and never modified afterwards.
type Brush struct {
	Color Color
	// Texture indexes the Catalog the brush was painted with.
	Texture  int
	Position Point
	// Angle is in degrees, counter-clockwise as seen on screen.
	Angle float64
	// Size is the side length of the square stroke in pixels.
	Size int
}

// Scaled returns a copy of b with its size and position multiplied by f,
// truncating toward zero.
func (b Brush) Scaled(f float64) Brush {
	b.Size = int(float64(b.Size) * f)
	b.Position = b.Position.Scale(f)
	return b
}

// BrushSizeForFitness returns the stroke size for a canvas at the given
// fitness: a fitness-sized fraction of the image's shorter side, at least
// one pixel. Strokes get finer as the canvas converges.
func BrushSizeForFitness(fitness float64, height, width int) int {
	size := int(math.Round(fitness * float64(min(height, width))))
	return max(1, size)
}
