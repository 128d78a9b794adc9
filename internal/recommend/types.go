// Package recommend ranks candidate reports for a user from their access
// history and the reports visible to them.
package recommend

import (
	"context"
	"time"
)

// Priority tiers for recommendation groups.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// rank orders priorities for sorting; lower ranks first.
func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// StrategyKind names a recommendation strategy.
type StrategyKind string

// Built-in strategy kinds.
const (
	StrategyCategoryAffinity StrategyKind = "category_affinity"
	StrategySimilarity       StrategyKind = "similarity"
	StrategyRecency          StrategyKind = "recency"
	StrategyKeywordMatch     StrategyKind = "keyword_match"
)

// AccessEvent is one historical report access.
type AccessEvent struct {
	UserID     string    `json:"user_id"`
	ReportID   string    `json:"report_id"`
	CategoryID string    `json:"category_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CatalogEntry is one report visible to the requesting user.
type CatalogEntry struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CategoryID string    `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Group is the output of one strategy.
type Group struct {
	Strategy    StrategyKind   `json:"strategy"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Items       []CatalogEntry `json:"items"`
	Priority    Priority       `json:"priority"`
}

// Input is what every strategy sees. History is ordered newest first.
type Input struct {
	History []AccessEvent
	Catalog []CatalogEntry
	Now     time.Time
}

// Strategy turns an input into at most one group. A nil group means the
// strategy found nothing to recommend.
type Strategy func(in *Input) *Group

// NamedStrategy is a strategy registered under its kind.
type NamedStrategy struct {
	Kind     StrategyKind
	Strategy Strategy
}

// Stats summarizes the access history behind a recommendation run.
type Stats struct {
	TotalAccess    int    `json:"total_access"`
	TopCategory    string `json:"top_category"`
	RecentActivity bool   `json:"recent_activity"`
}

// HistoryReader returns a user's recent report accesses, newest first,
// limited to the given number of days and events.
type HistoryReader interface {
	RecentAccesses(ctx context.Context, userID string, withinDays, limit int) ([]AccessEvent, error)
}
