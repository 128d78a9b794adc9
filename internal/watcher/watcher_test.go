package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/blackwell-systems/reportwatch/internal/engine"
	"github.com/blackwell-systems/reportwatch/internal/insight"
)

// scriptedDetector returns one scripted result per call, repeating the last.
type scriptedDetector struct {
	mu      sync.Mutex
	results [][]insight.Finding
	errs    []error
	calls   int
	starts  []time.Time
	ends    []time.Time
}

func (d *scriptedDetector) RunAnomalyDetection(_ context.Context, _, _ string, start, end time.Time) (*engine.DetectionResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := min(d.calls, len(d.results)-1)
	d.calls++
	d.starts = append(d.starts, start)
	d.ends = append(d.ends, end)
	if i < len(d.errs) && d.errs[i] != nil {
		return nil, d.errs[i]
	}
	findings := d.results[i]
	return &engine.DetectionResult{RunID: "run", Findings: findings, Summary: insight.Summarize(findings)}, nil
}

var watchNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newTestWatcher(d Detector, alertFn func(Alert)) *Watcher {
	w := New(d, Target{UserID: "u1", CompanyID: "acme", Window: 7 * 24 * time.Hour}, time.Hour, alertFn)
	w.now = func() time.Time { return watchNow }
	return w
}

func TestSnapshot_UsesWindowEndingNow(t *testing.T) {
	d := &scriptedDetector{results: [][]insight.Finding{nil}}
	w := newTestWatcher(d, nil)

	st, err := w.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.ends[0].Equal(watchNow) || !d.starts[0].Equal(watchNow.AddDate(0, 0, -7)) {
		t.Errorf("period = %s..%s", d.starts[0], d.ends[0])
	}
	if st.Summary.Total != 0 {
		t.Errorf("expected empty summary, got %+v", st.Summary)
	}
}

func TestCheck_DeduplicatesAndTracksChanges(t *testing.T) {
	low := finding(insight.KindLowDataVolume, insight.SeverityLow)
	slow := finding(insight.KindPerformanceIssue, insight.SeverityHigh)
	d := &scriptedDetector{results: [][]insight.Finding{
		{low},
		{low, slow},
		{low, slow},
		{slow},
	}}
	w := newTestWatcher(d, nil)
	w.previous = &WatchState{}

	if got := w.Check(context.Background()); len(got) != 1 || got[0].Title != "New anomaly: low_data_volume" {
		t.Fatalf("first check = %+v", got)
	}
	if got := w.Check(context.Background()); len(got) != 1 || got[0].Level != "critical" {
		t.Fatalf("second check = %+v", got)
	}
	if got := w.Check(context.Background()); len(got) != 0 {
		t.Fatalf("unchanged findings should not alert, got %+v", got)
	}
	if got := w.Check(context.Background()); len(got) != 1 || got[0].Title != "Anomaly cleared: low_data_volume" {
		t.Fatalf("fourth check = %+v", got)
	}
}

func TestCheck_DetectionFailure(t *testing.T) {
	d := &scriptedDetector{
		results: [][]insight.Finding{nil},
		errs:    []error{errors.New("snapshot source unavailable")},
	}
	w := newTestWatcher(d, nil)

	alerts := w.Check(context.Background())
	if len(alerts) != 1 || alerts[0].Title != "Detection failed" {
		t.Fatalf("expected a detection failure alert, got %+v", alerts)
	}
}

func TestRun_ReportsInitialFindingsAndStops(t *testing.T) {
	d := &scriptedDetector{results: [][]insight.Finding{{finding(insight.KindLargeDateRange, insight.SeverityLow)}}}

	var mu sync.Mutex
	var got []Alert
	w := newTestWatcher(d, func(a Alert) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, a)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("no initial alert")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if got[0].Title != "New anomaly: large_date_range" {
		t.Errorf("initial alert = %q", got[0].Title)
	}
}

func TestRun_InitialFailure(t *testing.T) {
	d := &scriptedDetector{results: [][]insight.Finding{nil}, errs: []error{errors.New("boom")}}
	if err := newTestWatcher(d, nil).Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
