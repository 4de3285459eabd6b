package postprocess

import (
	"sort"

	"github.com/tablesense/go-table-detect/images"
)

// NMSConfig defines parameters for Non-Maximum Suppression.
type NMSConfig struct {
	// IoUThreshold is the overlap above which a candidate is suppressed.
	IoUThreshold float32
	// ClassAware restricts suppression to detections of the same class.
	ClassAware bool
}

// ApplyNMS filters overlapping detections using greedy Non-Maximum
// Suppression.
//
// Detections are stably sorted by descending score (ties keep their input
// order), then scanned greedily: each candidate is compared against the
// already-accepted detections and dropped when its IoU with any of them
// exceeds the threshold. With ClassAware set, only accepted detections of the
// same class can suppress a candidate, so identical boxes of different
// classes are all retained.
//
// The function is deterministic for a given input order and idempotent:
// running it again on its own output suppresses nothing further.
//
// Arguments:
//   - detections: Candidate detections in any order. Not mutated.
//   - config: Suppression parameters.
//
// Returns:
//   - []Result: Accepted detections in descending score order. Nil when no
//     detections are provided.
func ApplyNMS(detections []Result, config *NMSConfig) []Result {
	n := len(detections)
	if n == 0 {
		return nil
	}

	sorted := make([]Result, n)
	copy(sorted, detections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	filtered := make([]Result, 0, n)
	for _, candidate := range sorted {
		suppressed := false
		for i := range filtered {
			if config.ClassAware && filtered[i].Class != candidate.Class {
				continue
			}
			if images.CalculateIoU(filtered[i].Box, candidate.Box) > config.IoUThreshold {
				suppressed = true
				break
			}
		}
		if !suppressed {
			filtered = append(filtered, candidate)
		}
	}

	return filtered
}
