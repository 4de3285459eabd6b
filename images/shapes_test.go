package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateIoUIdenticalRects(t *testing.T) {
	r := Rect{X1: 10, Y1: 10, X2: 50, Y2: 50}
	assert.InDelta(t, 1.0, CalculateIoU(r, r), 1e-6, "identical rectangles should have IoU 1")
}

func TestCalculateIoUDisjointRects(t *testing.T) {
	a := Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}
	b := Rect{X1: 20, Y1: 20, X2: 30, Y2: 30}
	assert.Zero(t, CalculateIoU(a, b), "disjoint rectangles should have IoU 0")
}

func TestCalculateIoUTouchingEdges(t *testing.T) {
	// Sharing an edge means zero intersection area.
	a := Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}
	b := Rect{X1: 10, Y1: 0, X2: 20, Y2: 10}
	assert.Zero(t, CalculateIoU(a, b), "edge-adjacent rectangles should have IoU 0")
}

func TestCalculateIoUPartialOverlap(t *testing.T) {
	// Intersection is 5x5 = 25, union is 100 + 100 - 25 = 175.
	a := Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}
	b := Rect{X1: 5, Y1: 5, X2: 15, Y2: 15}
	assert.InDelta(t, 25.0/175.0, CalculateIoU(a, b), 1e-6)
	assert.InDelta(t, 25.0/175.0, CalculateIoU(b, a), 1e-6, "IoU must be symmetric")
}

func TestCalculateIoUContainedRect(t *testing.T) {
	outer := Rect{X1: 0, Y1: 0, X2: 100, Y2: 100}
	inner := Rect{X1: 25, Y1: 25, X2: 75, Y2: 75}
	// Intersection equals the inner area: 2500 / 10000.
	assert.InDelta(t, 0.25, CalculateIoU(outer, inner), 1e-6)
}

func TestRectDimensions(t *testing.T) {
	r := Rect{X1: 10, Y1: 20, X2: 110, Y2: 70}
	assert.Equal(t, float32(100), r.Width())
	assert.Equal(t, float32(50), r.Height())
	assert.Equal(t, float32(5000), r.Area())
}

func TestRectAreaDegenerate(t *testing.T) {
	assert.Zero(t, Rect{X1: 10, Y1: 10, X2: 10, Y2: 50}.Area(), "zero-width rectangle has area 0")
	assert.Zero(t, Rect{X1: 10, Y1: 10, X2: 5, Y2: 50}.Area(), "inverted rectangle has area 0")
}
