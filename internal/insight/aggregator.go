package insight

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Aggregator runs every detector of a registry against one snapshot and
// merges the results.
type Aggregator struct {
	registry *Registry
	now      func() time.Time
}

// NewAggregator creates an aggregator over the given registry.
func NewAggregator(registry *Registry) *Aggregator {
	return &Aggregator{registry: registry, now: time.Now}
}

// WithClock returns a copy of the aggregator that stamps findings using now.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	return &Aggregator{registry: a.registry, now: now}
}

type slot struct {
	finding *Finding
	err     error
}

// Detect evaluates all detectors in parallel and returns their findings in
// registry order together with a severity summary. A detector that errors or
// panics is logged and contributes nothing; Detect itself never fails.
func (a *Aggregator) Detect(ctx context.Context, s *Snapshot) ([]Finding, Summary) {
	logger := zerolog.Ctx(ctx)
	detectedAt := a.now().UTC()

	detectors := a.registry.detectors
	slots := make([]slot, len(detectors))

	var g errgroup.Group
	g.SetLimit(max(a.registry.Len(), 1))
	for i, d := range detectors {
		g.Go(func() error {
			slots[i].finding, slots[i].err = runRule(d, s)
			return nil
		})
	}
	_ = g.Wait()

	findings := make([]Finding, 0, len(detectors))
	seen := make(map[Kind]bool, len(detectors))
	for i, d := range detectors {
		res := slots[i]
		if res.err != nil {
			logger.Warn().
				Err(res.err).
				Str("detector", string(d.Kind)).
				Msg("detector failed; treating as no finding")
			continue
		}
		if res.finding == nil {
			continue
		}
		f := *res.finding
		if f.Kind == "" {
			f.Kind = d.Kind
		}
		if seen[f.Kind] {
			logger.Warn().
				Str("detector", string(d.Kind)).
				Str("kind", string(f.Kind)).
				Msg("duplicate finding kind suppressed")
			continue
		}
		seen[f.Kind] = true
		f.ImpactLabel = f.Severity.ImpactLabel()
		f.DetectedAt = detectedAt
		findings = append(findings, f)
	}

	return findings, Summarize(findings)
}

// runRule invokes a detector, converting panics and invalid severities into
// errors.
func runRule(d Detector, s *Snapshot) (f *Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			f, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	f, err = d.Rule(s)
	if err != nil || f == nil {
		return nil, err
	}
	switch f.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh:
	default:
		return nil, fmt.Errorf("invalid severity %q", f.Severity)
	}
	return f, nil
}
