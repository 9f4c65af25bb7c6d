package routine

import (
	"sort"
	"strings"

	"github.com/example/hearth/internal/ports/secondary"
)

// Default thresholds for vision-detection triggers.
const (
	DefaultMinConfidence = 0.5
	DefaultCheckInterval = 10 // seconds
)

// MatchLabels returns the detected labels that match any of the configured
// object types. Detections below minConfidence are ignored. Matching is a
// case-insensitive substring test in either direction, so "person" matches
// both "Person walking" and a configured type of "walking person".
func MatchLabels(detections []secondary.Detection, objectTypes []string, minConfidence float64) []string {
	var matched []string
	for _, d := range detections {
		if d.Confidence < minConfidence {
			continue
		}
		label := strings.ToLower(d.Label)
		for _, target := range objectTypes {
			t := strings.ToLower(target)
			if strings.Contains(label, t) || strings.Contains(t, label) {
				matched = append(matched, d.Label)
				break
			}
		}
	}
	return matched
}

// Signature canonicalizes a matched-label set into a comparison string:
// sorted, comma-joined. Two polls seeing the same set of objects produce
// the same signature, which is what debounces continuous presence.
func Signature(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	sorted := make([]string, len(labels))
	copy(sorted, labels)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
