// Package imageutil provides the pure Go image helpers finch uses once an
// image has left OpenCV: copying, scaling for display, grayscale display of
// difference fields, text overlays and synthetic test images.
package imageutil

import (
	"image"
	"image/color"
	"image/draw"
)

// ToRGBA converts any image.Image to an RGBA image with its origin at
// (0, 0). RGBA images are copied.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// Clone returns a deep copy of img.
func Clone(img *image.RGBA) *image.RGBA {
	clone := image.NewRGBA(img.Rect)
	copy(clone.Pix, img.Pix)
	return clone
}

// GrayToRGBA expands a grayscale image into an opaque RGBA image with
// equal channels.
func GrayToRGBA(gray *image.Gray) *image.RGBA {
	b := gray.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			v := gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y
			rgba.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return rgba
}

// Stretch rescales the values of gray so its maximum maps to 255. Difference
// fields late in a search are mostly dark; stretching keeps them readable.
// An all-zero image is returned as a copy.
func Stretch(gray *image.Gray) *image.Gray {
	out := image.NewGray(gray.Rect)
	var peak uint8
	for _, v := range gray.Pix {
		peak = max(peak, v)
	}
	if peak == 0 {
		copy(out.Pix, gray.Pix)
		return out
	}
	for i, v := range gray.Pix {
		out.Pix[i] = uint8(int(v) * 255 / int(peak))
	}
	return out
}
