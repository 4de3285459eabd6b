package postprocess

import (
	"github.com/pkg/errors"
)

// BoxFeatures is the number of geometry features per box (cx, cy, w, h).
// Class scores start at this feature index.
const BoxFeatures = 4

// ErrMalformedOutputShape reports a raw output tensor whose rank is not 3 or
// whose non-batch axes cannot be disambiguated into a feature axis and a box
// axis. Decoding such a tensor produces no partial results.
var ErrMalformedOutputShape = errors.New("malformed output tensor shape")

// OutputTensor is the raw 3-axis output buffer produced by the inference
// runtime, shape [1, A, B] where one of A, B is the feature axis
// (BoxFeatures + number of classes) and the other is the box count. Which is
// which varies between exported models, so it is resolved per tensor.
type OutputTensor struct {
	// Data is the flattened tensor contents in row-major order.
	Data []float32
	// Shape is the tensor's dimensions. The batch axis Shape[0] is assumed 1.
	Shape []int64
}

// Layout describes which physical axis of an OutputTensor indexes features
// and which indexes boxes.
type Layout struct {
	// FeatureAxis is 1 for [1, features, boxes] or 2 for [1, boxes, features].
	FeatureAxis int
	// NumBoxes is the number of candidate boxes in the tensor.
	NumBoxes int
	// FeaturesPerBox is the length of the feature axis.
	FeaturesPerBox int
}

// ResolveLayout determines the axis order of a raw output tensor.
//
// Exactly one of the two non-batch axes must equal expectedFeatures; the other
// is taken as the box count. A tensor where neither or both axes match is
// ambiguous and rejected with ErrMalformedOutputShape.
//
// Arguments:
//   - shape: The tensor's dimensions; must have rank 3.
//   - expectedFeatures: BoxFeatures + the model's class count.
//
// Returns:
//   - Layout: The resolved layout.
//   - error: ErrMalformedOutputShape (wrapped with the offending shape) if the
//     rank is not 3 or the feature axis cannot be identified.
func ResolveLayout(shape []int64, expectedFeatures int) (Layout, error) {
	if len(shape) != 3 {
		return Layout{}, errors.Wrapf(ErrMalformedOutputShape, "rank %d, want 3", len(shape))
	}

	featuresOnAxis1 := shape[1] == int64(expectedFeatures)
	featuresOnAxis2 := shape[2] == int64(expectedFeatures)

	switch {
	case featuresOnAxis1 && !featuresOnAxis2:
		return Layout{
			FeatureAxis:    1,
			NumBoxes:       int(shape[2]),
			FeaturesPerBox: expectedFeatures,
		}, nil
	case featuresOnAxis2 && !featuresOnAxis1:
		return Layout{
			FeatureAxis:    2,
			NumBoxes:       int(shape[1]),
			FeaturesPerBox: expectedFeatures,
		}, nil
	default:
		return Layout{}, errors.Wrapf(ErrMalformedOutputShape,
			"shape %v has no unique axis of length %d", shape, expectedFeatures)
	}
}

// At reads one tensor element through the resolved layout. This is the single
// accessor for tensor contents; no caller may assume a fixed axis order.
//
// Arguments:
//   - layout: The layout previously resolved for this tensor's shape.
//   - box: The box index in [0, layout.NumBoxes).
//   - feature: The feature index in [0, layout.FeaturesPerBox).
//
// Returns:
//   - float32: The element value.
func (t *OutputTensor) At(layout Layout, box, feature int) float32 {
	if layout.FeatureAxis == 1 {
		return t.Data[feature*layout.NumBoxes+box]
	}
	return t.Data[box*layout.FeaturesPerBox+feature]
}
