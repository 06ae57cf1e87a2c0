package finch

import (
	"image/color"

	"gocv.io/x/gocv"
)

// Point is an integer pixel coordinate with X to the right and Y down.
type Point struct {
	X, Y int
}

// Scale multiplies both coordinates by f, truncating toward zero.
func (p Point) Scale(f float64) Point {
	return Point{
		X: int(float64(p.X) * f),
		Y: int(float64(p.Y) * f),
	}
}

// Color represents a stroke color with 8-bit channels. Colors are always
// sampled from a target image, never computed.
type Color struct {
	R, G, B uint8
}

// colorFromVecb converts a BGR gocv.Vecb to a Color.
func colorFromVecb(v gocv.Vecb) Color {
	return Color{
		R: v[2],
		G: v[1],
		B: v[0],
	}
}

// bgr returns the channels in the order they are laid out in a canvas Mat.
func (c Color) bgr() [3]uint8 {
	return [3]uint8{c.B, c.G, c.R}
}

// RGBA converts c to an opaque color.RGBA.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// colorAt reads the color of img at p. img must be a 3-channel BGR Mat and p
// must lie within its bounds.
func colorAt(img gocv.Mat, p Point) Color {
	return colorFromVecb(img.GetVecbAt(p.Y, p.X))
}

// clampPoint clamps p to the pixel grid of a width x height image.
func clampPoint(p Point, width, height int) Point {
	return Point{
		X: clampInt(p.X, 0, width-1),
		Y: clampInt(p.Y, 0, height-1),
	}
}

// clampInt clamps an integer to the given range.
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
