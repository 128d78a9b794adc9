package recommend

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(kind StrategyKind, p Priority, n int) NamedStrategy {
	return NamedStrategy{Kind: kind, Strategy: func(*Input) *Group {
		items := make([]CatalogEntry, n)
		for i := range items {
			items[i] = CatalogEntry{ID: string(kind) + "-" + string(rune('a'+i))}
		}
		return &Group{Title: string(kind), Priority: p, Items: items}
	}}
}

// --- Rank ---

func TestRank_OrdersByPriorityTier(t *testing.T) {
	groups := []Group{
		{Strategy: "a", Priority: PriorityLow},
		{Strategy: "b", Priority: PriorityHigh},
		{Strategy: "c", Priority: PriorityMedium},
	}
	ranked := Rank(groups, 3)
	require.Len(t, ranked, 3)
	assert.Equal(t, []Priority{PriorityHigh, PriorityMedium, PriorityLow},
		[]Priority{ranked[0].Priority, ranked[1].Priority, ranked[2].Priority})
	assert.Equal(t, PriorityLow, groups[0].Priority, "input must not be reordered")
}

func TestRank_StableWithinTier(t *testing.T) {
	groups := []Group{
		{Strategy: "first", Priority: PriorityMedium, Items: make([]CatalogEntry, 1)},
		{Strategy: "high", Priority: PriorityHigh},
		{Strategy: "second", Priority: PriorityMedium, Items: make([]CatalogEntry, 3)},
	}
	ranked := Rank(groups, 0)
	assert.Equal(t, StrategyKind("high"), ranked[0].Strategy)
	assert.Equal(t, StrategyKind("first"), ranked[1].Strategy)
	assert.Equal(t, StrategyKind("second"), ranked[2].Strategy)
}

func TestRank_TruncatesItems(t *testing.T) {
	groups := []Group{{Priority: PriorityHigh, Items: make([]CatalogEntry, 7)}}
	ranked := Rank(groups, 3)
	assert.Len(t, ranked[0].Items, 3)
	assert.Len(t, groups[0].Items, 7, "input items must not be truncated in place")
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(nil, 3))
}

// --- Engine.Run ---

func TestEngineRun_SkipsEmptyAndRanks(t *testing.T) {
	e := NewEngineWith(2,
		fixed("low", PriorityLow, 4),
		fixed("empty", PriorityHigh, 0),
		NamedStrategy{Kind: "none", Strategy: func(*Input) *Group { return nil }},
		fixed("high", PriorityHigh, 1),
		fixed("medium", PriorityMedium, 2),
	)
	groups := e.Run(context.Background(), &Input{Now: now})
	require.Len(t, groups, 3)
	assert.Equal(t, StrategyKind("high"), groups[0].Strategy)
	assert.Equal(t, StrategyKind("medium"), groups[1].Strategy)
	assert.Equal(t, StrategyKind("low"), groups[2].Strategy)
	assert.Len(t, groups[2].Items, 2)
}

func TestEngineRun_PanickingStrategyIsSkipped(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())

	e := NewEngineWith(3,
		NamedStrategy{Kind: "boom", Strategy: func(in *Input) *Group {
			_ = in.Catalog[10]
			return nil
		}},
		fixed("ok", PriorityLow, 1),
	)
	groups := e.Run(ctx, &Input{})
	require.Len(t, groups, 1)
	assert.Equal(t, StrategyKind("ok"), groups[0].Strategy)
	assert.Contains(t, buf.String(), `"strategy":"boom"`)
}

func TestEngineRun_Builtins(t *testing.T) {
	in := &Input{
		History: []AccessEvent{ev("r1", "sales", 2), ev("r2", "sales", 30), ev("r9", "ops", 50)},
		Catalog: []CatalogEntry{
			entry("r1", "Daily sales", "sales", 90),
			entry("n1", "Weekly sales trend", "sales", 2),
			entry("n2", "Warehouse load", "ops", 60),
			entry("n3", "Regional comparison", "finance", 1),
		},
		Now: now,
	}
	groups := NewEngine(DefaultOptions()).Run(context.Background(), in)

	kinds := make([]StrategyKind, len(groups))
	for i, g := range groups {
		kinds[i] = g.Strategy
	}
	assert.Equal(t, []StrategyKind{
		StrategyCategoryAffinity,
		StrategySimilarity,
		StrategyRecency,
		StrategyKeywordMatch,
	}, kinds)
	assert.Equal(t, []string{"r1", "n1"}, ids(groups[0].Items))
	assert.Equal(t, []string{"n1", "n2"}, ids(groups[1].Items))
	assert.Equal(t, []string{"n1", "n3"}, ids(groups[2].Items))
	assert.Equal(t, []string{"n1", "n3"}, ids(groups[3].Items))
}

// --- ComputeStats ---

func TestComputeStats(t *testing.T) {
	history := []AccessEvent{ev("r1", "A", 24), ev("r2", "B", 48), ev("r3", "B", 72)}
	s := ComputeStats(history, now)
	assert.Equal(t, Stats{TotalAccess: 3, TopCategory: "B", RecentActivity: true}, s)

	stale := []AccessEvent{ev("r1", "A", 24*10)}
	assert.False(t, ComputeStats(stale, now).RecentActivity)
	assert.Equal(t, Stats{}, ComputeStats(nil, now))
}
