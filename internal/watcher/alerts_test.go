package watcher

import (
	"testing"
	"time"

	"github.com/blackwell-systems/reportwatch/internal/insight"
)

func finding(kind insight.Kind, sev insight.Severity) insight.Finding {
	return insight.Finding{Kind: kind, Severity: sev, Title: string(kind), Description: "desc " + string(kind)}
}

func state(findings ...insight.Finding) *WatchState {
	return &WatchState{Timestamp: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC), Findings: findings}
}

func TestCompare_IdenticalStates(t *testing.T) {
	prev := state(finding(insight.KindLowDataVolume, insight.SeverityLow))
	curr := state(finding(insight.KindLowDataVolume, insight.SeverityLow))

	if alerts := Compare(prev, curr); len(alerts) != 0 {
		t.Errorf("expected 0 alerts for identical states, got %d", len(alerts))
		for _, a := range alerts {
			t.Logf("  [%s] %s: %s", a.Level, a.Title, a.Message)
		}
	}
}

func TestCompare_EmptyStates(t *testing.T) {
	if alerts := Compare(state(), state()); len(alerts) != 0 {
		t.Errorf("expected 0 alerts for empty states, got %d", len(alerts))
	}
}

func TestCompare_NewFindingLevels(t *testing.T) {
	tests := []struct {
		sev  insight.Severity
		want string
	}{
		{insight.SeverityHigh, "critical"},
		{insight.SeverityMedium, "warning"},
		{insight.SeverityLow, "info"},
	}
	for _, tc := range tests {
		t.Run(string(tc.sev), func(t *testing.T) {
			alerts := Compare(state(), state(finding(insight.KindPerformanceIssue, tc.sev)))
			if len(alerts) != 1 {
				t.Fatalf("expected 1 alert, got %d", len(alerts))
			}
			if alerts[0].Level != tc.want {
				t.Errorf("level = %q, want %q", alerts[0].Level, tc.want)
			}
			if alerts[0].Title != "New anomaly: performance_issue" {
				t.Errorf("title = %q", alerts[0].Title)
			}
		})
	}
}

func TestCompare_Escalation(t *testing.T) {
	prev := state(finding(insight.KindDataInconsistency, insight.SeverityLow))
	curr := state(finding(insight.KindDataInconsistency, insight.SeverityHigh))

	alerts := Compare(prev, curr)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Level != "critical" || alerts[0].Title != "Anomaly escalated: data_inconsistency" {
		t.Errorf("unexpected alert: %+v", alerts[0])
	}

	// A drop in severity is not an alert.
	if alerts := Compare(curr, prev); len(alerts) != 0 {
		t.Errorf("expected no alert for lowered severity, got %+v", alerts)
	}
}

func TestCompare_Cleared(t *testing.T) {
	prev := state(
		finding(insight.KindLowDataVolume, insight.SeverityLow),
		finding(insight.KindLargeDateRange, insight.SeverityLow),
		finding(insight.KindPerformanceIssue, insight.SeverityHigh),
	)
	curr := state(finding(insight.KindPerformanceIssue, insight.SeverityHigh))

	alerts := Compare(prev, curr)
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}
	// Cleared alerts are ordered by kind.
	if alerts[0].Title != "Anomaly cleared: large_date_range" || alerts[1].Title != "Anomaly cleared: low_data_volume" {
		t.Errorf("unexpected order: %q, %q", alerts[0].Title, alerts[1].Title)
	}
	for _, a := range alerts {
		if a.Level != "info" {
			t.Errorf("cleared alert level = %q, want info", a.Level)
		}
	}
}

func TestCompare_NewBeforeCleared(t *testing.T) {
	prev := state(finding(insight.KindLowDataVolume, insight.SeverityLow))
	curr := state(finding(insight.KindSalesDrop, insight.SeverityHigh))

	alerts := Compare(prev, curr)
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}
	if alerts[0].Title != "New anomaly: sales_drop" {
		t.Errorf("first alert = %q", alerts[0].Title)
	}
	if alerts[1].Title != "Anomaly cleared: low_data_volume" {
		t.Errorf("second alert = %q", alerts[1].Title)
	}
}
