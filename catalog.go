package finch

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"math"
	"math/rand/v2"
	"path/filepath"
	"sort"
	"strings"

	"gocv.io/x/gocv"
	"honnef.co/go/curve"
)

// textureExtensions lists the file types loaded as brush textures.
var textureExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Catalog is the set of brush textures for one style. Textures are
// single-channel intensity masks where white is fully painted. A Catalog is
// owned by whoever loaded it and must be closed when the search that uses it
// is finished. It is safe for concurrent reads.
type Catalog struct {
	style    Style
	textures []gocv.Mat
}

// LoadCatalog loads every texture under root/<style dir>, recursively, as a
// grayscale mask. Files are loaded in lexical path order so texture indices
// are stable between runs.
func LoadCatalog(root string, style Style) (*Catalog, error) {
	dir := filepath.Join(root, style.Dir())
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && textureExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan brush directory %s: %w", dir, err)
	}
	sort.Strings(paths)

	textures := make([]gocv.Mat, 0, len(paths))
	for _, path := range paths {
		tex := gocv.IMRead(path, gocv.IMReadGrayScale)
		if tex.Empty() {
			tex.Close()
			closeMats(textures)
			return nil, fmt.Errorf("could not read brush texture %s: %w", path, ErrEmptyImage)
		}
		textures = append(textures, tex)
	}
	c, err := NewCatalog(style, textures...)
	if err != nil {
		closeMats(textures)
		return nil, fmt.Errorf("brush directory %s: %w", dir, err)
	}
	Logger().Info("loaded brush catalog", "style", style.String(), "textures", c.Len())
	return c, nil
}

// NewCatalog builds a catalog from already-loaded textures and takes
// ownership of them. Three-channel textures are converted to grayscale.
func NewCatalog(style Style, textures ...gocv.Mat) (*Catalog, error) {
	if len(textures) == 0 {
		return nil, ErrNoTextures
	}
	c := &Catalog{style: style, textures: make([]gocv.Mat, len(textures))}
	for i, tex := range textures {
		if tex.Channels() == 1 {
			c.textures[i] = tex
			continue
		}
		gray := gocv.NewMat()
		gocv.CvtColor(tex, &gray, gocv.ColorBGRToGray)
		tex.Close()
		c.textures[i] = gray
	}
	return c, nil
}

// Style returns the style the catalog was loaded for.
func (c *Catalog) Style() Style { return c.style }

// Len returns the number of textures.
func (c *Catalog) Len() int { return len(c.textures) }

// RandomIndex draws a texture index uniformly.
func (c *Catalog) RandomIndex(rng *rand.Rand) int {
	return rng.IntN(len(c.textures))
}

// Close releases every texture.
func (c *Catalog) Close() error {
	err := closeMats(c.textures)
	c.textures = nil
	return err
}

// Composite paints b onto canvas in place. The texture is resized to
// b.Size x b.Size, rotated about its own center by b.Angle, and used as the
// alpha mask for a solid fill of b.Color:
//
//	result = canvas*(1-alpha) + color*alpha
//
// Only the part of the stroke that overlaps the canvas is drawn, so strokes
// hanging over an edge are valid and strokes entirely off-canvas do nothing.
func (c *Catalog) Composite(b Brush, canvas *gocv.Mat) error {
	if b.Size < 1 {
		return nil
	}
	if b.Texture < 0 || b.Texture >= len(c.textures) {
		return fmt.Errorf("brush texture %d out of range [0, %d)", b.Texture, len(c.textures))
	}

	scaled := gocv.NewMat()
	defer scaled.Close()
	gocv.Resize(c.textures[b.Texture], &scaled, image.Pt(b.Size, b.Size), 0, 0, gocv.InterpolationLinear)

	rot := rotationMatrix(b.Angle, b.Size)
	defer rot.Close()
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.WarpAffine(scaled, &mask, rot, image.Pt(b.Size, b.Size))

	return blend(canvas, &mask, b)
}

// rotationMatrix returns the 2x3 matrix rotating a size x size patch about
// its center by angle degrees, counter-clockwise on screen. curve rotates
// positive X into positive Y, which is clockwise in image space, so the
// angle is negated.
func rotationMatrix(angle float64, size int) gocv.Mat {
	half := float64(size) / 2
	aff := curve.RotateAbout(-angle*math.Pi/180, curve.Pt(half, half))
	n := aff.Coefficients()

	m := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	m.SetDoubleAt(0, 0, n[0])
	m.SetDoubleAt(0, 1, n[2])
	m.SetDoubleAt(0, 2, n[4])
	m.SetDoubleAt(1, 0, n[1])
	m.SetDoubleAt(1, 1, n[3])
	m.SetDoubleAt(1, 2, n[5])
	return m
}

// strokeBounds returns the canvas rectangle covered by a stroke of the given
// size centered on p. The rectangle is not clipped.
func strokeBounds(p Point, size int) image.Rectangle {
	x := int(float64(p.X) - float64(size)/2)
	y := int(float64(p.Y) - float64(size)/2)
	return image.Rect(x, y, x+size, y+size)
}

// blend alpha-composites a solid stroke through mask onto the visible part
// of its footprint on canvas.
func blend(canvas *gocv.Mat, mask *gocv.Mat, b Brush) error {
	width, height := canvas.Cols(), canvas.Rows()
	size := mask.Cols()
	bounds := strokeBounds(b.Position, size)
	visible := bounds.Intersect(image.Rect(0, 0, width, height))
	if visible.Empty() {
		return nil
	}

	pix, err := canvas.DataPtrUint8()
	if err != nil {
		return fmt.Errorf("canvas is not addressable: %w", err)
	}
	alpha, err := mask.DataPtrUint8()
	if err != nil {
		return fmt.Errorf("brush mask is not addressable: %w", err)
	}

	fg := b.Color.bgr()
	for y := visible.Min.Y; y < visible.Max.Y; y++ {
		row := y * width * 3
		maskRow := (y - bounds.Min.Y) * size
		for x := visible.Min.X; x < visible.Max.X; x++ {
			a := float64(alpha[maskRow+x-bounds.Min.X]) / 255
			if a == 0 {
				continue
			}
			i := row + x*3
			for k := 0; k < 3; k++ {
				pix[i+k] = uint8(float64(pix[i+k])*(1-a) + float64(fg[k])*a)
			}
		}
	}
	return nil
}

// closeMats closes every Mat and returns the joined errors.
func closeMats(mats []gocv.Mat) error {
	var errs []error
	for i := range mats {
		if err := mats[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
