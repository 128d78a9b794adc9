// Package watcher re-runs anomaly detection for one user and company at a
// regular interval and emits alerts when findings appear, escalate, or clear.
package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/blackwell-systems/reportwatch/internal/engine"
	"github.com/blackwell-systems/reportwatch/internal/insight"
)

// Detector runs one anomaly detection pass.
type Detector interface {
	RunAnomalyDetection(ctx context.Context, userID, companyID string, start, end time.Time) (*engine.DetectionResult, error)
}

// Target names what is watched. Each check covers the Window ending at the
// time of the check.
type Target struct {
	UserID    string
	CompanyID string
	Window    time.Duration
}

// WatchState captures the findings of one detection pass.
type WatchState struct {
	Timestamp time.Time
	RunID     string
	Summary   insight.Summary
	Findings  []insight.Finding
}

// Alert represents a notable event detected by the watcher.
type Alert struct {
	Level   string // "info", "warning", "critical"
	Title   string
	Message string
	Time    time.Time
}

// Watcher runs detection at a regular interval and emits alerts when the
// findings change.
type Watcher struct {
	detector      Detector
	target        Target
	interval      time.Duration
	previous      *WatchState
	alertFn       func(Alert)     // callback for emitting alerts
	lastAlertKeys map[string]bool // dedup: suppress repeated identical alerts
	now           func() time.Time
}

// New creates a Watcher for target.
func New(detector Detector, target Target, interval time.Duration, alertFn func(Alert)) *Watcher {
	return &Watcher{
		detector:      detector,
		target:        target,
		interval:      interval,
		alertFn:       alertFn,
		lastAlertKeys: make(map[string]bool),
		now:           time.Now,
	}
}

// Run checks once immediately, reporting every current finding as new, then
// at every interval. Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	initial, err := w.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("initial detection: %w", err)
	}
	w.emit(w.diff(&WatchState{}, initial))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.emit(w.Check(ctx))
		}
	}
}

func (w *Watcher) emit(alerts []Alert) {
	if w.alertFn == nil {
		return
	}
	for _, a := range alerts {
		w.alertFn(a)
	}
}

// Check performs a single cycle: runs detection, compares against the
// previous pass, and returns any alerts. Identical alerts are suppressed
// until the findings change.
func (w *Watcher) Check(ctx context.Context) []Alert {
	curr, err := w.Snapshot(ctx)
	if err != nil {
		return []Alert{{
			Level:   "warning",
			Title:   "Detection failed",
			Message: fmt.Sprintf("Could not run anomaly detection: %v", err),
			Time:    w.now(),
		}}
	}
	return w.diff(w.previous, curr)
}

// diff compares curr against prev, drops alerts identical to the last
// cycle, and makes curr the new baseline.
func (w *Watcher) diff(prev, curr *WatchState) []Alert {
	var raw []Alert
	if prev != nil {
		raw = Compare(prev, curr)
	}

	currentKeys := make(map[string]bool, len(raw))
	var alerts []Alert
	for _, a := range raw {
		key := a.Level + ":" + a.Title + ":" + a.Message
		currentKeys[key] = true
		if !w.lastAlertKeys[key] {
			alerts = append(alerts, a)
		}
	}
	w.lastAlertKeys = currentKeys

	w.previous = curr
	return alerts
}

// Snapshot runs detection over the window ending now.
func (w *Watcher) Snapshot(ctx context.Context) (*WatchState, error) {
	end := w.now().UTC()
	start := end.Add(-w.target.Window)

	res, err := w.detector.RunAnomalyDetection(ctx, w.target.UserID, w.target.CompanyID, start, end)
	if err != nil {
		return nil, err
	}
	return &WatchState{
		Timestamp: end,
		RunID:     res.RunID,
		Summary:   res.Summary,
		Findings:  res.Findings,
	}, nil
}
