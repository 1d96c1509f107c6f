package router

import "strings"

// Generic headers that give little signal about the standard field they
// should map to.
var ambiguousHeaders = map[string]struct{}{
	"name":        {},
	"value":       {},
	"data":        {},
	"type":        {},
	"amount":      {},
	"date":        {},
	"id":          {},
	"code":        {},
	"description": {},
	"status":      {},
	"notes":       {},
	"misc":        {},
}

// Markers suggesting embedded business rules (pricing formulas, tiered
// rates) that a cheaper model tends to map poorly.
var businessMarkers = []string{
	"discount",
	"tax",
	"tier",
	"rate",
	"margin",
	"commission",
	"markup",
	"formula",
	"bundle",
	"allocation",
}

// Complexity derives a 0-100 routing score from column-shape signals:
// overall width, nested or relational column patterns, header ambiguity,
// and business-logic markers.
func Complexity(columns []string, samples []map[string]string) int {
	if len(columns) == 0 {
		return 0
	}

	score := 0

	// width: wide files are harder to map coherently
	switch {
	case len(columns) > 40:
		score += 25
	case len(columns) > 20:
		score += 15
	case len(columns) > 10:
		score += 8
	}

	nested := 0
	ambiguous := 0
	markers := 0

	for _, col := range columns {
		normalized := strings.ToLower(strings.TrimSpace(col))

		if strings.ContainsAny(normalized, "./") || strings.HasSuffix(normalized, "_id") {
			nested++
		}
		if _, ok := ambiguousHeaders[normalized]; ok {
			ambiguous++
		}
		for _, marker := range businessMarkers {
			if strings.Contains(normalized, marker) {
				markers++
				break
			}
		}
	}

	score += scale(nested, len(columns), 30)
	score += scale(ambiguous, len(columns), 25)
	score += scale(markers, len(columns), 20)

	// sparse samples leave the mapping resting on headers alone
	if len(samples) < 3 {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}

// scale maps a signal's column ratio onto a 0-max contribution.
func scale(count, total, max int) int {
	if count == 0 || total == 0 {
		return 0
	}
	v := max * count / total
	if v > max {
		v = max
	}
	return v
}
