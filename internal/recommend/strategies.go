package recommend

import (
	"fmt"
	"strings"
	"time"
)

// Options controls the built-in strategies.
type Options struct {
	// MaxItems bounds the items of each group.
	MaxItems int
	// SimilarityWindow is the number of most recent distinct reports the
	// similarity strategy starts from.
	SimilarityWindow int
	// RecencyDays is how new a report must be to count as new.
	RecencyDays int
	// Keywords are matched case-insensitively against report names.
	Keywords []string
}

// DefaultOptions returns the built-in strategy settings.
func DefaultOptions() Options {
	return Options{
		MaxItems:         3,
		SimilarityWindow: 5,
		RecencyDays:      7,
		Keywords:         []string{"trend", "analysis", "analiz", "comparison", "karşılaştırma"},
	}
}

// BuiltinStrategies returns the four built-in strategies in registration order.
func BuiltinStrategies(opts Options) []NamedStrategy {
	return []NamedStrategy{
		{Kind: StrategyCategoryAffinity, Strategy: CategoryAffinity(opts)},
		{Kind: StrategySimilarity, Strategy: Similarity(opts)},
		{Kind: StrategyRecency, Strategy: Recency(opts)},
		{Kind: StrategyKeywordMatch, Strategy: KeywordMatch(opts)},
	}
}

// TopCategory returns the category with the strictly greatest access count.
// On ties the category seen first in history order wins. It returns "" and
// 0 for an empty history.
func TopCategory(history []AccessEvent) (string, int) {
	counts := make(map[string]int)
	var order []string
	for _, ev := range history {
		if ev.CategoryID == "" {
			continue
		}
		if _, ok := counts[ev.CategoryID]; !ok {
			order = append(order, ev.CategoryID)
		}
		counts[ev.CategoryID]++
	}

	top, best := "", 0
	for _, cat := range order {
		if counts[cat] > best {
			top, best = cat, counts[cat]
		}
	}
	return top, best
}

// CategoryAffinity recommends reports from the user's most accessed category.
func CategoryAffinity(opts Options) Strategy {
	return func(in *Input) *Group {
		top, count := TopCategory(in.History)
		if top == "" {
			return nil
		}
		items := take(in.Catalog, opts.MaxItems, func(e CatalogEntry) bool {
			return e.CategoryID == top
		})
		if len(items) == 0 {
			return nil
		}
		return &Group{
			Strategy:    StrategyCategoryAffinity,
			Title:       "From your favorite category",
			Description: fmt.Sprintf("You opened %d reports in category %s recently.", count, top),
			Items:       items,
			Priority:    PriorityHigh,
		}
	}
}

// Similarity recommends reports that share a category with the most recently
// accessed distinct reports but are not among them.
func Similarity(opts Options) Strategy {
	return func(in *Input) *Group {
		recent := make(map[string]bool)
		categories := make(map[string]bool)
		for _, ev := range in.History {
			if len(recent) >= opts.SimilarityWindow {
				break
			}
			if recent[ev.ReportID] {
				continue
			}
			recent[ev.ReportID] = true
			if ev.CategoryID != "" {
				categories[ev.CategoryID] = true
			}
		}
		if len(categories) == 0 {
			return nil
		}

		items := take(in.Catalog, opts.MaxItems, func(e CatalogEntry) bool {
			return categories[e.CategoryID] && !recent[e.ID]
		})
		if len(items) == 0 {
			return nil
		}
		return &Group{
			Strategy:    StrategySimilarity,
			Title:       "Similar to what you viewed",
			Description: fmt.Sprintf("Reports related to your last %d opened reports.", len(recent)),
			Items:       items,
			Priority:    PriorityMedium,
		}
	}
}

// Recency recommends reports created within the last RecencyDays days.
func Recency(opts Options) Strategy {
	return func(in *Input) *Group {
		cutoff := in.Now.Add(-time.Duration(opts.RecencyDays) * 24 * time.Hour)
		items := take(in.Catalog, opts.MaxItems, func(e CatalogEntry) bool {
			return !e.CreatedAt.Before(cutoff)
		})
		if len(items) == 0 {
			return nil
		}
		return &Group{
			Strategy:    StrategyRecency,
			Title:       "New reports",
			Description: fmt.Sprintf("Reports added in the last %d days.", opts.RecencyDays),
			Items:       items,
			Priority:    PriorityMedium,
		}
	}
}

// KeywordMatch recommends trend and comparison style reports by name.
func KeywordMatch(opts Options) Strategy {
	keywords := make([]string, 0, len(opts.Keywords))
	for _, k := range opts.Keywords {
		if k = foldCase(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return func(in *Input) *Group {
		items := take(in.Catalog, opts.MaxItems, func(e CatalogEntry) bool {
			name := foldCase(e.Name)
			for _, k := range keywords {
				if strings.Contains(name, k) {
					return true
				}
			}
			return false
		})
		if len(items) == 0 {
			return nil
		}
		return &Group{
			Strategy:    StrategyKeywordMatch,
			Title:       "Trend analysis",
			Description: "Reports focused on trends and period comparisons.",
			Items:       items,
			Priority:    PriorityLow,
		}
	}
}

// foldCase lowercases s and maps the dotless i so Turkish and English
// spellings compare equal.
func foldCase(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "ı", "i")
}

// take returns up to limit catalog entries matching keep, in catalog order.
// A non-positive limit means no bound.
func take(catalog []CatalogEntry, limit int, keep func(CatalogEntry) bool) []CatalogEntry {
	var out []CatalogEntry
	for _, e := range catalog {
		if limit > 0 && len(out) >= limit {
			break
		}
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
