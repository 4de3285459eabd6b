// Package render - Draws detections onto images for visual verification.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/tablesense/go-table-detect/postprocess"
)

const (
	// outlineWidth is the bounding box line width in pixels.
	outlineWidth = 3
	// outlineAlpha is the opacity of outlines and label backgrounds (80%).
	outlineAlpha = 204
	// labelWidth and labelHeight are the fixed label background dimensions.
	labelWidth  = 120
	labelHeight = 18
	// labelFontSize is the label text size in points.
	labelFontSize = 12
)

var (
	labelFaceOnce sync.Once
	labelFace     font.Face
)

// labelFont returns the shared bold face used for detection labels.
func labelFont() font.Face {
	labelFaceOnce.Do(func() {
		parsed, err := opentype.Parse(gobold.TTF)
		if err != nil {
			// gobold.TTF is embedded and known-good.
			panic(fmt.Sprintf("parse embedded label font: %v", err))
		}
		labelFace, err = opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    labelFontSize,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			panic(fmt.Sprintf("create label font face: %v", err))
		}
	})
	return labelFace
}

// Draw returns a copy of base with one outlined rectangle and label per
// detection. The base image is never mutated.
//
// Each detection's color is palette[class mod len(palette)]. The outline is
// drawn at 80% opacity; a filled label background of the same color is
// anchored above the box's top-left corner with the class name and confidence
// percentage in white bold text. Boxes extending past the image edges are
// clipped by the drawing primitives.
//
// Arguments:
//   - base: The source image to annotate.
//   - detections: Detections in original-image coordinates.
//   - palette: Ordered per-class display colors; must be non-empty.
//
// Returns:
//   - *image.RGBA: The annotated copy.
func Draw(base image.Image, detections []postprocess.Result, palette []color.RGBA) *image.RGBA {
	dst := image.NewRGBA(base.Bounds())
	draw.Draw(dst, dst.Bounds(), base, base.Bounds().Min, draw.Src)

	for _, det := range detections {
		c := palette[det.Class%len(palette)]
		// NRGBA so the 80% alpha is not premultiplied away.
		tint := color.NRGBA{R: c.R, G: c.G, B: c.B, A: outlineAlpha}

		box := image.Rect(
			int(det.Box.X1), int(det.Box.Y1),
			int(det.Box.X2), int(det.Box.Y2),
		).Canon()

		drawOutline(dst, box, tint)
		drawLabel(dst, box, det, tint)
	}

	return dst
}

// drawOutline strokes the rectangle as four filled bars of outlineWidth.
func drawOutline(dst *image.RGBA, box image.Rectangle, c color.NRGBA) {
	src := &image.Uniform{c}
	bars := []image.Rectangle{
		image.Rect(box.Min.X, box.Min.Y, box.Max.X, box.Min.Y+outlineWidth),
		image.Rect(box.Min.X, box.Max.Y-outlineWidth, box.Max.X, box.Max.Y),
		image.Rect(box.Min.X, box.Min.Y, box.Min.X+outlineWidth, box.Max.Y),
		image.Rect(box.Max.X-outlineWidth, box.Min.Y, box.Max.X, box.Max.Y),
	}
	for _, bar := range bars {
		draw.Draw(dst, bar, src, image.Point{}, draw.Over)
	}
}

// drawLabel fills the fixed-size label background above the box's top-left
// corner and renders "<name> <score>%" onto it.
func drawLabel(dst *image.RGBA, box image.Rectangle, det postprocess.Result, c color.NRGBA) {
	bg := image.Rect(
		box.Min.X, box.Min.Y-labelHeight,
		box.Min.X+labelWidth, box.Min.Y,
	)
	draw.Draw(dst, bg, &image.Uniform{c}, image.Point{}, draw.Over)

	text := fmt.Sprintf("%s %.0f%%", det.Label, det.Score*100)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: labelFont(),
		Dot: fixed.Point26_6{
			X: fixed.I(bg.Min.X + 2),
			Y: fixed.I(bg.Max.Y - 4),
		},
	}
	d.DrawString(text)
}
