package validator

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// closestLabel returns the candidate with the smallest edit distance to label,
// ignoring case, or "" when nothing is reasonably close.
func closestLabel(label string, candidates []string) string {
	if label == "" || len(candidates) == 0 {
		return ""
	}

	target := strings.ToLower(label)
	best := ""
	bestDist := -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(target, strings.ToLower(c))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}

	limit := len(label) / 3
	if limit < 2 {
		limit = 2
	}
	if bestDist > limit {
		return ""
	}
	return best
}
