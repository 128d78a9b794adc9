package recommend

import "sort"

// Rank orders groups by priority tier (high, medium, low), keeping
// registration order within a tier, and truncates each group to maxItems
// items. A non-positive maxItems leaves items untouched.
func Rank(groups []Group, maxItems int) []Group {
	sorted := make([]Group, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority.rank() < sorted[j].Priority.rank()
	})
	if maxItems > 0 {
		for i := range sorted {
			if len(sorted[i].Items) > maxItems {
				items := make([]CatalogEntry, maxItems)
				copy(items, sorted[i].Items)
				sorted[i].Items = items
			}
		}
	}
	return sorted
}
