package imageutil

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// TextDrawer draws single lines of text onto RGBA images.
type TextDrawer struct {
	font  *truetype.Font
	size  float64
	color color.Color
}

// NewTextDrawer returns a drawer using the Go Regular font at size points
// and 72 DPI.
func NewTextDrawer(size float64, c color.Color) (*TextDrawer, error) {
	f, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &TextDrawer{font: f, size: size, color: c}, nil
}

// LineHeight returns the distance between two baselines in pixels.
func (d *TextDrawer) LineHeight() int {
	face := truetype.NewFace(d.font, &truetype.Options{Size: d.size, DPI: 72})
	defer face.Close()
	return face.Metrics().Height.Ceil()
}

// Draw renders text onto dst with its baseline starting at (x, y).
func (d *TextDrawer) Draw(dst draw.Image, text string, x, y int) error {
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(d.font)
	ctx.SetFontSize(d.size)
	ctx.SetClip(dst.Bounds())
	ctx.SetDst(dst)
	ctx.SetSrc(image.NewUniform(d.color))
	ctx.SetHinting(font.HintingFull)

	if _, err := ctx.DrawString(text, freetype.Pt(x, y)); err != nil {
		return fmt.Errorf("failed to draw text: %w", err)
	}
	return nil
}

// DrawLines renders lines top to bottom starting at (x, y), the baseline
// of the first line.
func (d *TextDrawer) DrawLines(dst draw.Image, lines []string, x, y int) error {
	step := d.LineHeight()
	for i, line := range lines {
		if err := d.Draw(dst, line, x, y+i*step); err != nil {
			return err
		}
	}
	return nil
}
