package postprocess

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/tablesense/go-table-detect/images"
)

// DefaultConfidenceThreshold is the score below which candidate boxes are
// discarded during decoding.
const DefaultConfidenceThreshold = 0.25

// DefaultIoUThreshold is the overlap above which same-class detections are
// suppressed by NMS.
const DefaultIoUThreshold = 0.6

// Config defines the parameters of the detection decoding pipeline.
type Config struct {
	// NumClasses is the number of class scores per box.
	NumClasses int
	// ConfidenceThreshold discards boxes whose best class score is below it.
	ConfidenceThreshold float32
	// IoUThreshold is the overlap threshold passed to NMS.
	IoUThreshold float32
	// SkipNMS disables the suppression step. Models exported with NMS baked
	// into the graph already emit deduplicated boxes.
	SkipNMS bool
	// ClassNames maps class indices to names. Indices outside the slice
	// resolve to "unknown".
	ClassNames []string
}

// lookupName resolves a class index against the configured name table.
func (c *Config) lookupName(class int) string {
	if class < 0 || class >= len(c.ClassNames) {
		return "unknown"
	}
	return c.ClassNames[class]
}

// coordsLookNormalized reports whether a box's geometry appears to be
// expressed as fractions of the canvas side rather than canvas pixels.
//
// The heuristic is: all four of cx, cy, w, h are at most 1.0. It is fragile in
// principle (a sub-pixel box in pixel coordinates would be misclassified) but
// matches the exported model's behavior. Kept behind this single predicate so
// it can be swapped for an explicit flag if the model's coordinate convention
// is ever pinned down.
func coordsLookNormalized(cx, cy, w, h float32) bool {
	return cx <= 1.0 && cy <= 1.0 && w <= 1.0 && h <= 1.0
}

// Decode converts a raw model output tensor into detections in original-image
// pixel coordinates, applying confidence filtering and (unless disabled)
// class-aware NMS.
//
// Per candidate box the decoder:
//  1. Takes the argmax class score (strict >, so ties keep the lowest index).
//  2. Discards the box if that score is below the confidence threshold.
//  3. Reads center-format geometry, scaling up by the canvas side when the
//     coordinates look normalized.
//  4. Converts to corner format and inverts the letterbox transform. Only the
//     top-left corner is clamped to the image origin; boxes may extend past
//     the original image's far edges and downstream consumers must tolerate
//     that.
//
// Arguments:
//   - tensor: The raw output tensor, shape [1, A, B].
//   - transform: The letterbox transform applied during preprocessing.
//   - config: Decoding parameters.
//
// Returns:
//   - []Result: Detections in ascending box-index order (or NMS output order
//     when suppression runs). Empty when no box clears the threshold.
//   - error: ErrMalformedOutputShape if the tensor's layout cannot be
//     resolved; no partial results are returned in that case.
func Decode(tensor *OutputTensor, transform images.LetterboxTransform, config *Config) ([]Result, error) {
	expectedFeatures := BoxFeatures + config.NumClasses
	layout, err := ResolveLayout(tensor.Shape, expectedFeatures)
	if err != nil {
		return nil, err
	}
	if len(tensor.Data) < layout.NumBoxes*layout.FeaturesPerBox {
		return nil, errors.Wrapf(ErrMalformedOutputShape,
			"data length %d shorter than shape %v", len(tensor.Data), tensor.Shape)
	}

	results := make([]Result, 0, layout.NumBoxes)
	for b := 0; b < layout.NumBoxes; b++ {
		bestClass := 0
		bestScore := math32.Inf(-1)
		for c := 0; c < config.NumClasses; c++ {
			score := tensor.At(layout, b, BoxFeatures+c)
			if score > bestScore {
				bestScore = score
				bestClass = c
			}
		}
		if bestScore < config.ConfidenceThreshold {
			continue
		}

		cx := tensor.At(layout, b, 0)
		cy := tensor.At(layout, b, 1)
		w := tensor.At(layout, b, 2)
		h := tensor.At(layout, b, 3)

		if coordsLookNormalized(cx, cy, w, h) {
			side := float32(transform.TargetSize)
			cx *= side
			cy *= side
			w *= side
			h *= side
		}

		// Center format to corners, still in canvas space.
		x1 := cx - w/2
		y1 := cy - h/2
		x2 := cx + w/2
		y2 := cy + h/2

		origX1, origY1 := transform.CanvasToOriginal(x1, y1)
		origX2, origY2 := transform.CanvasToOriginal(x2, y2)
		origX1 = math32.Max(0, origX1)
		origY1 = math32.Max(0, origY1)

		results = append(results, Result{
			Box:   images.Rect{X1: origX1, Y1: origY1, X2: origX2, Y2: origY2},
			Score: bestScore,
			Class: bestClass,
			Label: config.lookupName(bestClass),
		})
	}

	if config.SkipNMS {
		return results, nil
	}
	return ApplyNMS(results, &NMSConfig{
		IoUThreshold: config.IoUThreshold,
		ClassAware:   true,
	}), nil
}
