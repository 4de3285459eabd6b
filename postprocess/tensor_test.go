package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLayoutFeaturesFirst(t *testing.T) {
	layout, err := ResolveLayout([]int64{1, 13, 3}, 13)

	require.NoError(t, err)
	assert.Equal(t, 1, layout.FeatureAxis)
	assert.Equal(t, 3, layout.NumBoxes)
	assert.Equal(t, 13, layout.FeaturesPerBox)
}

func TestResolveLayoutBoxesFirst(t *testing.T) {
	layout, err := ResolveLayout([]int64{1, 8400, 13}, 13)

	require.NoError(t, err)
	assert.Equal(t, 2, layout.FeatureAxis)
	assert.Equal(t, 8400, layout.NumBoxes)
	assert.Equal(t, 13, layout.FeaturesPerBox)
}

func TestResolveLayoutWrongRank(t *testing.T) {
	_, err := ResolveLayout([]int64{13, 3}, 13)
	assert.ErrorIs(t, err, ErrMalformedOutputShape)

	_, err = ResolveLayout([]int64{1, 1, 13, 3}, 13)
	assert.ErrorIs(t, err, ErrMalformedOutputShape)
}

func TestResolveLayoutNoMatchingAxis(t *testing.T) {
	_, err := ResolveLayout([]int64{1, 5, 5}, 13)
	assert.ErrorIs(t, err, ErrMalformedOutputShape)
}

func TestResolveLayoutAmbiguousAxes(t *testing.T) {
	// Both axes matching the feature count cannot be disambiguated.
	_, err := ResolveLayout([]int64{1, 13, 13}, 13)
	assert.ErrorIs(t, err, ErrMalformedOutputShape)
}

// TestTensorAtLayoutSymmetry reads the same logical data through both
// physical layouts and expects identical values everywhere.
func TestTensorAtLayoutSymmetry(t *testing.T) {
	const features, boxes = 13, 3

	// logical[b][f] = b*100 + f, stored once per layout.
	featuresFirst := &OutputTensor{Shape: []int64{1, features, boxes}, Data: make([]float32, features*boxes)}
	boxesFirst := &OutputTensor{Shape: []int64{1, boxes, features}, Data: make([]float32, features*boxes)}
	for b := 0; b < boxes; b++ {
		for f := 0; f < features; f++ {
			value := float32(b*100 + f)
			featuresFirst.Data[f*boxes+b] = value
			boxesFirst.Data[b*features+f] = value
		}
	}

	layoutA, err := ResolveLayout(featuresFirst.Shape, features)
	require.NoError(t, err)
	layoutB, err := ResolveLayout(boxesFirst.Shape, features)
	require.NoError(t, err)

	for b := 0; b < boxes; b++ {
		for f := 0; f < features; f++ {
			assert.Equal(t, featuresFirst.At(layoutA, b, f), boxesFirst.At(layoutB, b, f),
				"box %d feature %d must read identically through both layouts", b, f)
		}
	}
}
