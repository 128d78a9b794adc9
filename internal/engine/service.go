// Package engine wires the anomaly aggregator and the recommendation engine
// to their collaborators and exposes the two entry points callers use.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/blackwell-systems/reportwatch/internal/insight"
	"github.com/blackwell-systems/reportwatch/internal/recommend"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// SnapshotSource supplies the raw dashboard payload for a user, company,
// and inclusive period.
type SnapshotSource interface {
	FetchPayload(ctx context.Context, userID, companyID string, start, end time.Time) (insight.Payload, error)
}

// CatalogSource supplies the reports visible to an identity.
type CatalogSource interface {
	VisibleReports(ctx context.Context, userID, companyID, role string) ([]recommend.CatalogEntry, error)
}

// FindingsStore is the durable findings log.
type FindingsStore interface {
	AppendFindings(ctx context.Context, runID string, findings []insight.Finding, userID, companyID string) error
}

// Dependencies are the collaborators of a Service. Findings may be nil, in
// which case nothing is persisted.
type Dependencies struct {
	Snapshots SnapshotSource
	History   recommend.HistoryReader
	Catalog   CatalogSource
	Findings  FindingsStore
}

// Options tunes the service.
type Options struct {
	// HistoryDays is how far back the access history is read.
	HistoryDays int
	// HistoryLimit bounds the number of access events read.
	HistoryLimit int
	// PersistTimeout bounds one findings write.
	PersistTimeout time.Duration
}

// DefaultOptions returns the service defaults.
func DefaultOptions() Options {
	return Options{
		HistoryDays:    30,
		HistoryLimit:   100,
		PersistTimeout: 5 * time.Second,
	}
}

// DetectionResult is the outcome of one anomaly detection run.
type DetectionResult struct {
	RunID    string            `json:"run_id"`
	Findings []insight.Finding `json:"findings"`
	Summary  insight.Summary   `json:"summary"`
}

// RecommendationResult is the outcome of one recommendation run.
type RecommendationResult struct {
	Groups []recommend.Group `json:"groups"`
	Stats  recommend.Stats   `json:"stats"`
}

// Service runs anomaly detection and recommendations for callers.
type Service struct {
	deps        Dependencies
	aggregator  *insight.Aggregator
	recommender *recommend.Engine
	opts        Options
	now         func() time.Time
	newRunID    func() string
	pending     sync.WaitGroup
}

// NewService creates a service. The aggregator and recommender are built
// once by the caller and treated as read-only.
func NewService(deps Dependencies, aggregator *insight.Aggregator, recommender *recommend.Engine, opts Options) *Service {
	return &Service{
		deps:        deps,
		aggregator:  aggregator,
		recommender: recommender,
		opts:        opts,
		now:         time.Now,
		newRunID:    func() string { return uuid.NewString() },
	}
}

// RunAnomalyDetection fetches the dashboard payload, evaluates every
// detector, and hands the findings to the findings store without waiting
// for the write. It fails only when the snapshot source fails.
func (s *Service) RunAnomalyDetection(ctx context.Context, userID, companyID string, start, end time.Time) (*DetectionResult, error) {
	raw, err := s.deps.Snapshots.FetchPayload(ctx, userID, companyID, start, end)
	if err != nil {
		return nil, &UpstreamError{Source: SourceSnapshot, Err: err}
	}

	snap := insight.Normalize(raw, start, end)
	findings, summary := s.aggregator.Detect(ctx, &snap)
	runID := s.newRunID()

	zerolog.Ctx(ctx).Info().
		Str("run_id", runID).
		Str("user_id", userID).
		Str("company_id", companyID).
		Int("findings", summary.Total).
		Int("high", summary.High).
		Msg("anomaly detection complete")

	s.persistAsync(ctx, runID, findings, userID, companyID)

	return &DetectionResult{RunID: runID, Findings: findings, Summary: summary}, nil
}

// persistAsync writes findings on a background goroutine. Wait blocks until
// all such writes finish.
func (s *Service) persistAsync(ctx context.Context, runID string, findings []insight.Finding, userID, companyID string) {
	if s.deps.Findings == nil || len(findings) == 0 {
		return
	}
	logger := zerolog.Ctx(ctx)
	bg := logger.WithContext(context.WithoutCancel(ctx))

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.persistFindings(bg, runID, findings, userID, companyID); err != nil {
			// Persistence is best-effort: the computed findings are still
			// valid and have already been returned.
			logger.Warn().
				Err(err).
				Str("run_id", runID).
				Msg("persisting findings failed; ignored")
		}
	}()
}

func (s *Service) persistFindings(ctx context.Context, runID string, findings []insight.Finding, userID, companyID string) error {
	if s.opts.PersistTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.PersistTimeout)
		defer cancel()
	}
	return s.deps.Findings.AppendFindings(ctx, runID, findings, userID, companyID)
}

// Wait blocks until every pending findings write has finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

// RunRecommendations reads the user's access history and visible catalog,
// evaluates every strategy, and returns the ranked groups with history stats.
func (s *Service) RunRecommendations(ctx context.Context, userID, companyID, role string) (*RecommendationResult, error) {
	var (
		history []recommend.AccessEvent
		catalog []recommend.CatalogEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		history, err = s.deps.History.RecentAccesses(gctx, userID, s.opts.HistoryDays, s.opts.HistoryLimit)
		if err != nil {
			return &UpstreamError{Source: SourceAccessLog, Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		catalog, err = s.deps.Catalog.VisibleReports(gctx, userID, companyID, role)
		if err != nil {
			return &UpstreamError{Source: SourceCatalog, Err: err}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now()
	groups := s.recommender.Run(ctx, &recommend.Input{History: history, Catalog: catalog, Now: now})
	if groups == nil {
		groups = []recommend.Group{}
	}
	stats := recommend.ComputeStats(history, now)

	zerolog.Ctx(ctx).Info().
		Str("user_id", userID).
		Str("company_id", companyID).
		Int("groups", len(groups)).
		Int("history", stats.TotalAccess).
		Msg("recommendations complete")

	return &RecommendationResult{Groups: groups, Stats: stats}, nil
}
