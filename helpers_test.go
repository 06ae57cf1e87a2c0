package finch

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"

	"github.com/wbrown/finch/imageutil"
)

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.RGBA{A: 255}
	red   = color.RGBA{R: 255, A: 255}
)

// matFromImage converts img to a BGR Mat closed at the end of the test.
func matFromImage(t *testing.T, img image.Image) gocv.Mat {
	t.Helper()
	m, err := gocv.ImageToMatRGB(img)
	if err != nil {
		t.Fatalf("ImageToMatRGB failed: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

// solidMat returns a width x height BGR Mat filled with c.
func solidMat(t *testing.T, width, height int, c color.RGBA) gocv.Mat {
	t.Helper()
	return matFromImage(t, imageutil.CreateSolidImage(width, height, c))
}

// mustRGBA copies m into an RGBA image.
func mustRGBA(t *testing.T, m gocv.Mat) *image.RGBA {
	t.Helper()
	img, err := matToRGBA(m)
	if err != nil {
		t.Fatalf("matToRGBA failed: %v", err)
	}
	return img
}

// testCatalog builds a catalog from textures, closed at the end of the
// test. With no textures it uses a single 32 pixel disk.
func testCatalog(t *testing.T, textures ...*image.Gray) *Catalog {
	t.Helper()
	if len(textures) == 0 {
		textures = []*image.Gray{imageutil.CreateDiskTexture(32)}
	}
	mats := make([]gocv.Mat, len(textures))
	for i, tex := range textures {
		m, err := gocv.ImageGrayToMatGray(tex)
		if err != nil {
			t.Fatalf("ImageGrayToMatGray failed: %v", err)
		}
		mats[i] = m
	}
	c, err := NewCatalog(StyleCanvas, mats...)
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// writeBrushDir writes textures for style under a new brush root and
// returns the root.
func writeBrushDir(t *testing.T, styles ...Style) string {
	t.Helper()
	root := t.TempDir()
	for _, s := range styles {
		dir := filepath.Join(root, s.Dir())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := imageutil.SavePNG(imageutil.CreateDiskTexture(32), filepath.Join(dir, "disk.png")); err != nil {
			t.Fatal(err)
		}
		if err := imageutil.SavePNG(imageutil.CreateSquareTexture(16), filepath.Join(dir, "square.png")); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// testConfig is a fast configuration that writes nothing.
func testConfig(opts ...Option) Config {
	base := []Option{
		WithOutputDir(""),
		WithGIF(false),
		WithUpscale(false),
		WithSeed(42),
	}
	return DefaultConfig(append(base, opts...)...)
}
