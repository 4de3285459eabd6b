package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablesense/go-table-detect/images"
)

func classAwareNMS() *NMSConfig {
	return &NMSConfig{IoUThreshold: 0.6, ClassAware: true}
}

func TestApplyNMSEmptyInput(t *testing.T) {
	assert.Nil(t, ApplyNMS(nil, classAwareNMS()))
	assert.Nil(t, ApplyNMS([]Result{}, classAwareNMS()))
}

func TestApplyNMSSameClassDuplicateKeepsHigherScore(t *testing.T) {
	box := images.Rect{X1: 100, Y1: 100, X2: 300, Y2: 300}
	detections := []Result{
		{Box: box, Score: 0.7, Class: 1, Label: "data_cell"},
		{Box: box, Score: 0.9, Class: 1, Label: "data_cell"},
	}

	kept := ApplyNMS(detections, classAwareNMS())

	require.Len(t, kept, 1)
	assert.InDelta(t, 0.9, kept[0].Score, 1e-6, "the higher-scoring duplicate survives")
}

func TestApplyNMSCrossClassIndependence(t *testing.T) {
	// Identical rectangles of different classes never suppress each other.
	box := images.Rect{X1: 100, Y1: 100, X2: 300, Y2: 300}
	detections := []Result{
		{Box: box, Score: 0.9, Class: 0, Label: "table"},
		{Box: box, Score: 0.7, Class: 1, Label: "data_cell"},
	}

	kept := ApplyNMS(detections, classAwareNMS())

	assert.Len(t, kept, 2)
}

func TestApplyNMSKeepsDisjointDetections(t *testing.T) {
	detections := []Result{
		{Box: images.Rect{X1: 0, Y1: 0, X2: 100, Y2: 100}, Score: 0.9, Class: 2},
		{Box: images.Rect{X1: 500, Y1: 500, X2: 600, Y2: 600}, Score: 0.8, Class: 2},
		{Box: images.Rect{X1: 0, Y1: 500, X2: 100, Y2: 600}, Score: 0.7, Class: 2},
	}

	kept := ApplyNMS(detections, classAwareNMS())

	assert.Len(t, kept, 3)
}

func TestApplyNMSThresholdIsStrict(t *testing.T) {
	// Two boxes whose IoU is exactly 0.6 are both kept: suppression requires
	// IoU strictly above the threshold.
	a := images.Rect{X1: 0, Y1: 0, X2: 60, Y2: 100}
	b := images.Rect{X1: 0, Y1: 0, X2: 100, Y2: 100}
	require.InDelta(t, 0.6, images.CalculateIoU(a, b), 1e-6)

	kept := ApplyNMS([]Result{
		{Box: b, Score: 0.9, Class: 0},
		{Box: a, Score: 0.8, Class: 0},
	}, classAwareNMS())

	assert.Len(t, kept, 2)
}

// TestApplyNMSIdempotence runs NMS on its own output and expects no further
// suppression.
func TestApplyNMSIdempotence(t *testing.T) {
	detections := []Result{
		{Box: images.Rect{X1: 0, Y1: 0, X2: 200, Y2: 200}, Score: 0.95, Class: 0},
		{Box: images.Rect{X1: 10, Y1: 10, X2: 210, Y2: 210}, Score: 0.9, Class: 0},
		{Box: images.Rect{X1: 400, Y1: 400, X2: 500, Y2: 500}, Score: 0.85, Class: 1},
		{Box: images.Rect{X1: 405, Y1: 405, X2: 505, Y2: 505}, Score: 0.5, Class: 1},
		{Box: images.Rect{X1: 700, Y1: 0, X2: 800, Y2: 100}, Score: 0.4, Class: 2},
	}

	once := ApplyNMS(detections, classAwareNMS())
	twice := ApplyNMS(once, classAwareNMS())

	assert.Equal(t, once, twice)
}

func TestApplyNMSStableOnScoreTies(t *testing.T) {
	// Equal scores keep their input order (stable sort).
	detections := []Result{
		{Box: images.Rect{X1: 0, Y1: 0, X2: 100, Y2: 100}, Score: 0.8, Class: 0, Label: "first"},
		{Box: images.Rect{X1: 500, Y1: 500, X2: 600, Y2: 600}, Score: 0.8, Class: 0, Label: "second"},
	}

	kept := ApplyNMS(detections, classAwareNMS())

	require.Len(t, kept, 2)
	assert.Equal(t, "first", kept[0].Label)
	assert.Equal(t, "second", kept[1].Label)
}

func TestApplyNMSSortsByScoreDescending(t *testing.T) {
	detections := []Result{
		{Box: images.Rect{X1: 0, Y1: 0, X2: 100, Y2: 100}, Score: 0.3, Class: 0},
		{Box: images.Rect{X1: 500, Y1: 500, X2: 600, Y2: 600}, Score: 0.9, Class: 1},
		{Box: images.Rect{X1: 0, Y1: 500, X2: 100, Y2: 600}, Score: 0.6, Class: 2},
	}

	kept := ApplyNMS(detections, classAwareNMS())

	require.Len(t, kept, 3)
	assert.InDelta(t, 0.9, kept[0].Score, 1e-6)
	assert.InDelta(t, 0.6, kept[1].Score, 1e-6)
	assert.InDelta(t, 0.3, kept[2].Score, 1e-6)
}

func TestApplyNMSClassAgnosticMode(t *testing.T) {
	// With ClassAware off, overlap suppresses across classes too.
	box := images.Rect{X1: 100, Y1: 100, X2: 300, Y2: 300}
	detections := []Result{
		{Box: box, Score: 0.9, Class: 0},
		{Box: box, Score: 0.7, Class: 1},
	}

	kept := ApplyNMS(detections, &NMSConfig{IoUThreshold: 0.6, ClassAware: false})

	require.Len(t, kept, 1)
	assert.Equal(t, 0, kept[0].Class)
}

func TestApplyNMSDoesNotMutateInput(t *testing.T) {
	detections := []Result{
		{Box: images.Rect{X1: 0, Y1: 0, X2: 100, Y2: 100}, Score: 0.3, Class: 0},
		{Box: images.Rect{X1: 500, Y1: 500, X2: 600, Y2: 600}, Score: 0.9, Class: 1},
	}

	ApplyNMS(detections, classAwareNMS())

	assert.InDelta(t, 0.3, detections[0].Score, 1e-6, "input order must be untouched")
	assert.InDelta(t, 0.9, detections[1].Score, 1e-6)
}
