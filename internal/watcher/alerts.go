package watcher

import (
	"fmt"
	"sort"

	"github.com/blackwell-systems/reportwatch/internal/insight"
)

// Compare returns alerts for findings that are new in curr, findings whose
// severity rose, and findings that cleared since prev. New and escalated
// findings come first in detector order, then cleared ones by kind.
func Compare(prev, curr *WatchState) []Alert {
	before := byKind(prev.Findings)
	after := byKind(curr.Findings)
	now := curr.Timestamp

	var alerts []Alert
	for _, f := range curr.Findings {
		old, seen := before[f.Kind]
		switch {
		case !seen:
			alerts = append(alerts, Alert{
				Level:   alertLevel(f.Severity),
				Title:   fmt.Sprintf("New anomaly: %s", f.Title),
				Message: f.Description,
				Time:    now,
			})
		case severityRank(f.Severity) > severityRank(old.Severity):
			alerts = append(alerts, Alert{
				Level:   alertLevel(f.Severity),
				Title:   fmt.Sprintf("Anomaly escalated: %s", f.Title),
				Message: fmt.Sprintf("Severity rose from %s to %s. %s", old.Severity, f.Severity, f.Description),
				Time:    now,
			})
		}
	}

	var cleared []insight.Finding
	for kind, f := range before {
		if _, still := after[kind]; !still {
			cleared = append(cleared, f)
		}
	}
	sort.Slice(cleared, func(i, j int) bool { return cleared[i].Kind < cleared[j].Kind })
	for _, f := range cleared {
		alerts = append(alerts, Alert{
			Level:   "info",
			Title:   fmt.Sprintf("Anomaly cleared: %s", f.Title),
			Message: fmt.Sprintf("%s is no longer detected", f.Kind),
			Time:    now,
		})
	}

	return alerts
}

func byKind(findings []insight.Finding) map[insight.Kind]insight.Finding {
	m := make(map[insight.Kind]insight.Finding, len(findings))
	for _, f := range findings {
		m[f.Kind] = f
	}
	return m
}

func alertLevel(s insight.Severity) string {
	switch s {
	case insight.SeverityHigh:
		return "critical"
	case insight.SeverityMedium:
		return "warning"
	default:
		return "info"
	}
}

func severityRank(s insight.Severity) int {
	switch s {
	case insight.SeverityHigh:
		return 3
	case insight.SeverityMedium:
		return 2
	case insight.SeverityLow:
		return 1
	default:
		return 0
	}
}
