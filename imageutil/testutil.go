package imageutil

import (
	"image"
	"image/color"
	"math"
)

// CreateGradientImage creates a horizontal gray gradient test image.
func CreateGradientImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(255 * x / max(1, width-1))
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// CreateCheckerboardImage creates a black and white checkerboard.
func CreateCheckerboardImage(width, height, squareSize int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var v uint8
			if ((x/squareSize)+(y/squareSize))%2 == 0 {
				v = 255
			}
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// CreateSolidImage creates a solid color image.
func CreateSolidImage(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// CreateColorBarsImage creates a color bars test pattern.
func CreateColorBarsImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	colors := []color.RGBA{
		{255, 255, 255, 255}, // White
		{255, 255, 0, 255},   // Yellow
		{0, 255, 255, 255},   // Cyan
		{0, 255, 0, 255},     // Green
		{255, 0, 255, 255},   // Magenta
		{255, 0, 0, 255},     // Red
		{0, 0, 255, 255},     // Blue
		{0, 0, 0, 255},       // Black
	}

	barWidth := max(1, width/len(colors))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, colors[min(x/barWidth, len(colors)-1)])
		}
	}
	return img
}

// CreateDiskTexture creates a size x size brush texture: a white disk on
// black with a soft edge one pixel wide.
func CreateDiskTexture(size int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, size, size))
	c := float64(size-1) / 2
	r := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)-c, float64(y)-c)
			a := math.Max(0, math.Min(1, r-d))
			img.SetGray(x, y, color.Gray{Y: uint8(a * 255)})
		}
	}
	return img
}

// CreateSquareTexture creates a fully opaque size x size brush texture.
func CreateSquareTexture(size int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

// CalculateMaxDiff calculates the maximum channel difference between two
// images of the same size. Images of different sizes return 256.
func CalculateMaxDiff(img1, img2 *image.RGBA) int {
	if img1.Bounds().Size() != img2.Bounds().Size() {
		return 256
	}
	b1, b2 := img1.Bounds(), img2.Bounds()
	maxDiff := 0
	for y := 0; y < b1.Dy(); y++ {
		for x := 0; x < b1.Dx(); x++ {
			c1 := img1.RGBAAt(b1.Min.X+x, b1.Min.Y+y)
			c2 := img2.RGBAAt(b2.Min.X+x, b2.Min.Y+y)
			maxDiff = max(maxDiff,
				abs(int(c1.R)-int(c2.R)),
				abs(int(c1.G)-int(c2.G)),
				abs(int(c1.B)-int(c2.B)))
		}
	}
	return maxDiff
}

// CalculateMSE calculates the mean squared error between two RGBA images.
func CalculateMSE(img1, img2 *image.RGBA) float64 {
	if img1.Bounds().Size() != img2.Bounds().Size() {
		return math.MaxFloat64
	}
	b1, b2 := img1.Bounds(), img2.Bounds()
	var sumSq float64
	for y := 0; y < b1.Dy(); y++ {
		for x := 0; x < b1.Dx(); x++ {
			c1 := img1.RGBAAt(b1.Min.X+x, b1.Min.Y+y)
			c2 := img2.RGBAAt(b2.Min.X+x, b2.Min.Y+y)
			dr := float64(c1.R) - float64(c2.R)
			dg := float64(c1.G) - float64(c2.G)
			db := float64(c1.B) - float64(c2.B)
			sumSq += dr*dr + dg*dg + db*db
		}
	}
	return sumSq / float64(b1.Dx()*b1.Dy()*3)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
