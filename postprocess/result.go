// Package postprocess - Detection decoding and Non-Maximum Suppression for
// YOLO-family table-structure models.
package postprocess

import (
	"fmt"

	"github.com/tablesense/go-table-detect/images"
)

// Result represents a single detection in original-image pixel coordinates.
// Results are immutable once created: NMS and rendering only read them.
type Result struct {
	// The bounding box of the detection, in original-image space.
	Box images.Rect
	// The confidence score of the detection, in [0, 1].
	Score float32
	// The predicted class index of the detection.
	Class int
	// The resolved class name ("unknown" if Class falls outside the table).
	Label string
}

func (r Result) String() string {
	return fmt.Sprintf("%s (%.2f): (%.1f, %.1f)-(%.1f, %.1f)",
		r.Label, r.Score, r.Box.X1, r.Box.Y1, r.Box.X2, r.Box.Y2)
}
