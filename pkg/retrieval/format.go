package retrieval

import (
	"fmt"
	"math"
	"strings"
)

// FormatContext renders results as a numbered context block for a prompt.
func FormatContext(results []SearchResult, emptyPlaceholder string) string {
	if len(results) == 0 {
		return emptyPlaceholder
	}

	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("%d. %s (%s, %.0f%% match)\n%s\n", i+1, r.Name(), r.Type(), r.Similarity*100, r.Text)
	}
	return strings.Join(parts, "\n")
}

// Round3 rounds a similarity score for API responses.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
