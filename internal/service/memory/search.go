package memory

import (
	"cmp"
	"slices"
	"strings"

	"github.com/sandevgo/glimpse/internal/core"
)

// Filter applies every set criterion as an AND predicate, sorts the survivors by
// importance (descending, stable) and truncates to the limit.
//
// The emotion threshold is a lower bound on a signed score, so "strongly negative"
// can't be expressed with it.
func Filter(records []core.Memory, c core.SearchCriteria) []core.Memory {
	query := strings.ToLower(c.Query)

	out := make([]core.Memory, 0, len(records))
	for _, m := range records {
		if query != "" && !matchesQuery(m, query) {
			continue
		}
		if c.ImportanceThreshold != nil && m.Importance < *c.ImportanceThreshold {
			continue
		}
		if c.EmotionThreshold != nil && m.EmotionScore < *c.EmotionThreshold {
			continue
		}
		if c.FocusArea != "" && m.Context.FocusArea != c.FocusArea {
			continue
		}
		if c.StartDate != nil && m.CreatedAt.Before(*c.StartDate) {
			continue
		}
		if c.EndDate != nil && m.CreatedAt.After(*c.EndDate) {
			continue
		}
		out = append(out, m)
	}

	slices.SortStableFunc(out, func(a, b core.Memory) int {
		return cmp.Compare(b.Importance, a.Importance)
	})

	if c.Limit > 0 && len(out) > c.Limit {
		out = out[:c.Limit]
	}
	return out
}

func matchesQuery(m core.Memory, query string) bool {
	return strings.Contains(strings.ToLower(m.Text), query) ||
		strings.Contains(strings.ToLower(m.Context.FocusArea), query) ||
		strings.Contains(strings.ToLower(m.Observation), query)
}
