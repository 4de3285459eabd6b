// Package images - Image geometry and letterboxing utilities.
package images

// Rect is a lightweight bounding box in float pixel coordinates.
type Rect struct {
	// X2,Y2 are exclusive (like image.Rectangle).
	X1, Y1, X2, Y2 float32
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float32 {
	return r.X2 - r.X1
}

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float32 {
	return r.Y2 - r.Y1
}

// Area returns the rectangle's area. Degenerate rectangles have area 0.
func (r Rect) Area() float32 {
	w := r.Width()
	h := r.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// CalculateIoU computes the Intersection over Union of two rectangles.
//
// IoU = Area of Intersection / Area of Union, a value in [0, 1]:
//   - 1.0 means the rectangles are identical.
//   - 0.0 means the rectangles do not overlap at all.
//
// The intersection's corners are the max of the two top-left corners and the
// min of the two bottom-right corners; if either resulting extent is not
// positive the rectangles are disjoint and the IoU is 0. The union follows
// from inclusion-exclusion: Area(A) + Area(B) - Area(A∩B).
//
// Arguments:
//   - r: The first rectangle.
//   - o: The other rectangle to compare against.
//
// Returns:
//   - float32: The IoU score in [0, 1].
func CalculateIoU(r, o Rect) float32 {
	ix1 := max(r.X1, o.X1)
	iy1 := max(r.Y1, o.Y1)
	ix2 := min(r.X2, o.X2)
	iy2 := min(r.Y2, o.Y2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0.0
	}
	interArea := interW * interH

	unionArea := r.Area() + o.Area() - interArea
	if unionArea <= 0 {
		return 0.0
	}

	return interArea / unionArea
}
