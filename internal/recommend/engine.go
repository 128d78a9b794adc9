package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// RecentActivityWindow is how far back an access counts as recent activity.
const RecentActivityWindow = 7 * 24 * time.Hour

// Engine runs all registered strategies against one input and ranks the
// resulting groups.
type Engine struct {
	strategies []NamedStrategy
	maxItems   int
}

// NewEngine creates an engine with the built-in strategies.
func NewEngine(opts Options) *Engine {
	return &Engine{strategies: BuiltinStrategies(opts), maxItems: opts.MaxItems}
}

// NewEngineWith creates an engine over a custom strategy list.
func NewEngineWith(maxItems int, strategies ...NamedStrategy) *Engine {
	list := make([]NamedStrategy, len(strategies))
	copy(list, strategies)
	return &Engine{strategies: list, maxItems: maxItems}
}

// Run evaluates every strategy in parallel and returns the non-empty groups
// ranked by priority. A strategy that panics is logged and skipped.
func (e *Engine) Run(ctx context.Context, in *Input) []Group {
	logger := zerolog.Ctx(ctx)
	results := make([]*Group, len(e.strategies))
	faults := make([]error, len(e.strategies))

	var g errgroup.Group
	g.SetLimit(max(len(e.strategies), 1))
	for i, s := range e.strategies {
		g.Go(func() error {
			results[i], faults[i] = runStrategy(s, in)
			return nil
		})
	}
	_ = g.Wait()

	var groups []Group
	for i, s := range e.strategies {
		if faults[i] != nil {
			logger.Warn().
				Err(faults[i]).
				Str("strategy", string(s.Kind)).
				Msg("strategy failed; skipping group")
			continue
		}
		if results[i] == nil || len(results[i].Items) == 0 {
			continue
		}
		grp := *results[i]
		if grp.Strategy == "" {
			grp.Strategy = s.Kind
		}
		groups = append(groups, grp)
	}
	return Rank(groups, e.maxItems)
}

func runStrategy(s NamedStrategy, in *Input) (grp *Group, err error) {
	defer func() {
		if r := recover(); r != nil {
			grp, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return s.Strategy(in), nil
}

// ComputeStats summarizes a newest-first access history as of now.
func ComputeStats(history []AccessEvent, now time.Time) Stats {
	top, _ := TopCategory(history)
	recent := false
	cutoff := now.Add(-RecentActivityWindow)
	for _, ev := range history {
		if !ev.OccurredAt.Before(cutoff) {
			recent = true
			break
		}
	}
	return Stats{
		TotalAccess:    len(history),
		TopCategory:    top,
		RecentActivity: recent,
	}
}
