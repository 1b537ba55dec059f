// Package spatial implements the geometric overlap test used to
// associate detected form regions with extracted text regions.
package spatial

import (
	"math"

	"github.com/insightlab/insight-reader/internal/core/domain"
)

// DefaultOverlapThreshold is the minimum overlap ratio for two regions
// to be considered associated.
const DefaultOverlapThreshold = 0.1

// Overlaps reports whether the intersection of a and b, divided by the
// smaller of the two areas, exceeds threshold.
func Overlaps(a, b domain.BoxRegion, threshold float64) bool {
	left := math.Max(a.X, b.X)
	top := math.Max(a.Y, b.Y)
	right := math.Min(a.X+a.Width, b.X+b.Width)
	bottom := math.Min(a.Y+a.Height, b.Y+b.Height)

	if right <= left || bottom <= top {
		return false
	}

	minArea := math.Min(a.Area(), b.Area())
	if minArea <= 0 {
		return false
	}

	intersection := (right - left) * (bottom - top)
	return intersection/minArea > threshold
}

// AssociateFields builds a form field for every detection and attaches
// the FIRST text region, in detection order, whose overlap with the
// field exceeds threshold. Not the best-overlapping one: multiple
// qualifying texts can exist for one field and the first wins. Callers
// rely on this ordering.
func AssociateFields(detections []domain.BoxRegion, texts []domain.TextRegion, threshold float64) []domain.FormField {
	fields := make([]domain.FormField, 0, len(detections))
	for _, detection := range detections {
		field := domain.FormField{
			FieldType:  detection.Label,
			Box:        detection,
			Confidence: detection.Confidence,
		}
		for _, text := range texts {
			if Overlaps(detection, text.Box, threshold) {
				field.Value = text.Text
				break
			}
		}
		fields = append(fields, field)
	}
	return fields
}
