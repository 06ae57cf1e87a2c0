package finch

import (
	"image"

	"gocv.io/x/gocv"
)

// NormalizeSize returns a copy of img whose longer side is at most
// maxDimension, keeping the aspect ratio. Images already within bounds are
// cloned unchanged. The caller owns the returned Mat.
func NormalizeSize(img gocv.Mat, maxDimension int) gocv.Mat {
	width, height := img.Cols(), img.Rows()
	if width <= maxDimension && height <= maxDimension {
		Logger().Debug("image not resized", "width", width, "height", height)
		return img.Clone()
	}
	aspect := float64(width) / float64(height)
	var newWidth, newHeight int
	if width >= height {
		newWidth = maxDimension
		newHeight = int(float64(newWidth) / aspect)
	} else {
		newHeight = maxDimension
		newWidth = int(float64(newHeight) * aspect)
	}
	newWidth, newHeight = max(1, newWidth), max(1, newHeight)

	dst := gocv.NewMat()
	gocv.Resize(img, &dst, image.Pt(newWidth, newHeight), 0, 0, gocv.InterpolationArea)
	Logger().Info("resized image",
		"from", image.Pt(width, height), "to", image.Pt(newWidth, newHeight))
	return dst
}

// ScaleToDimension scales img to cover width x height and crops the excess
// equally from both sides of the overflowing axis. The caller owns the
// returned Mat.
func ScaleToDimension(img gocv.Mat, width, height int) gocv.Mat {
	targetAspect := float64(width) / float64(height)
	imgAspect := float64(img.Cols()) / float64(img.Rows())

	covered := gocv.NewMat()
	defer covered.Close()
	var crop image.Rectangle
	switch {
	case targetAspect < imgAspect:
		w := int(float64(height) * imgAspect)
		gocv.Resize(img, &covered, image.Pt(w, height), 0, 0, gocv.InterpolationLinear)
		side := (w - width) / 2
		crop = image.Rect(side, 0, w-side, height)
	case targetAspect > imgAspect:
		h := int(float64(width) / imgAspect)
		gocv.Resize(img, &covered, image.Pt(width, h), 0, 0, gocv.InterpolationLinear)
		side := (h - height) / 2
		crop = image.Rect(0, side, width, h-side)
	default:
		img.CopyTo(&covered)
		crop = image.Rect(0, 0, img.Cols(), img.Rows())
	}

	region := covered.Region(crop)
	defer region.Close()
	dst := gocv.NewMat()
	gocv.Resize(region, &dst, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)
	return dst
}
