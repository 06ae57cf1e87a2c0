package finch

import (
	"fmt"
	"os"

	"gocv.io/x/gocv"
)

// LoadTarget reads a color image from path. The caller owns the returned
// Mat.
func LoadTarget(path string) (gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return gocv.NewMat(), fmt.Errorf("could not read image %s: %w", path, ErrEmptyImage)
	}
	return img, nil
}

// DecodeTarget decodes an encoded color image. The caller owns the returned
// Mat.
func DecodeTarget(data []byte) (gocv.Mat, error) {
	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		img.Close()
		return gocv.NewMat(), fmt.Errorf("failed to decode image: %w: %v", ErrEmptyImage, err)
	}
	if img.Empty() {
		img.Close()
		return gocv.NewMat(), fmt.Errorf("failed to decode image: %w", ErrEmptyImage)
	}
	return img, nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	defer buf.Close()
	// GetBytes aliases C memory released by Close.
	return append([]byte(nil), buf.GetBytes()...), nil
}

// WritePNG encodes img as PNG and writes it to path.
func WritePNG(path string, img gocv.Mat) error {
	data, err := EncodePNG(img)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
