package images

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/chewxy/math32"
	"github.com/nfnt/resize"
)

// LetterboxTransform holds the parameters of a resize-and-pad transform that
// maps an arbitrary-size image into a fixed square canvas. The same triple is
// later used to invert detection coordinates back into original-image space.
type LetterboxTransform struct {
	// Scale is the ratio of resized dimension to original dimension.
	// At most 1.0: sources smaller than the canvas are padded, never upscaled.
	Scale float32
	// PadX is half the unused horizontal margin of the canvas.
	PadX float32
	// PadY is half the unused vertical margin of the canvas.
	PadY float32
	// TargetSize is the canvas side length in pixels.
	TargetSize int
}

// ComputeLetterbox derives the letterbox transform for a source image of the
// given dimensions and a square canvas of side targetSize.
//
// The scale is min(1, targetSize/maxSide): the image is only ever downscaled.
// The resized image is centered, so each padding is half the leftover margin.
//
// Arguments:
//   - origWidth: Source image width in pixels, must be > 0.
//   - origHeight: Source image height in pixels, must be > 0.
//   - targetSize: Canvas side length in pixels.
//
// Returns:
//   - LetterboxTransform: The forward transform parameters.
func ComputeLetterbox(origWidth, origHeight, targetSize int) LetterboxTransform {
	maxSide := max(origWidth, origHeight)

	scale := float32(1.0)
	if maxSide > targetSize {
		scale = float32(targetSize) / float32(maxSide)
	}

	newWidth := math32.Round(float32(origWidth) * scale)
	newHeight := math32.Round(float32(origHeight) * scale)

	return LetterboxTransform{
		Scale:      scale,
		PadX:       (float32(targetSize) - newWidth) / 2,
		PadY:       (float32(targetSize) - newHeight) / 2,
		TargetSize: targetSize,
	}
}

// Letterbox resizes img down (if needed) with bicubic interpolation and
// composites it centered on a square canvas filled with the background color.
//
// Arguments:
//   - img: Source image with positive dimensions.
//   - targetSize: Canvas side length in pixels.
//   - background: Fill color for the padded margins (e.g. black or a fixed gray).
//
// Returns:
//   - *image.RGBA: The targetSize x targetSize canvas.
//   - LetterboxTransform: The transform applied, for later coordinate inversion.
func Letterbox(img image.Image, targetSize int, background color.Color) (*image.RGBA, LetterboxTransform) {
	bounds := img.Bounds()
	t := ComputeLetterbox(bounds.Dx(), bounds.Dy(), targetSize)

	newWidth := int(math32.Round(float32(bounds.Dx()) * t.Scale))
	newHeight := int(math32.Round(float32(bounds.Dy()) * t.Scale))

	resized := img
	if newWidth != bounds.Dx() || newHeight != bounds.Dy() {
		resized = resize.Resize(uint(newWidth), uint(newHeight), img, resize.Bicubic)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, targetSize, targetSize))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)

	left := int(t.PadX)
	top := int(t.PadY)
	draw.Draw(canvas, image.Rect(left, top, left+newWidth, top+newHeight),
		resized, resized.Bounds().Min, draw.Over)

	return canvas, t
}

// DownscaleMaxSide resizes img so that its longest side does not exceed
// targetSize, without any padding. Sources already within the limit are
// returned unchanged. This is the no-canvas variant of Letterbox used when the
// downstream model accepts non-square input; the returned transform has zero
// padding so the same coordinate inversion applies.
//
// Arguments:
//   - img: Source image with positive dimensions.
//   - targetSize: Maximum side length in pixels.
//
// Returns:
//   - image.Image: The (possibly) resized image.
//   - LetterboxTransform: Transform with PadX = PadY = 0.
func DownscaleMaxSide(img image.Image, targetSize int) (image.Image, LetterboxTransform) {
	bounds := img.Bounds()
	maxSide := max(bounds.Dx(), bounds.Dy())

	t := LetterboxTransform{Scale: 1.0, TargetSize: targetSize}
	if maxSide <= targetSize {
		return img, t
	}

	t.Scale = float32(targetSize) / float32(maxSide)
	newWidth := uint(math32.Round(float32(bounds.Dx()) * t.Scale))
	newHeight := uint(math32.Round(float32(bounds.Dy()) * t.Scale))

	return resize.Resize(newWidth, newHeight, img, resize.Bicubic), t
}

// CanvasToOriginal maps a point from canvas space back into original-image
// space, the exact algebraic inverse of the forward letterbox mapping.
func (t LetterboxTransform) CanvasToOriginal(x, y float32) (float32, float32) {
	return (x - t.PadX) / t.Scale, (y - t.PadY) / t.Scale
}
