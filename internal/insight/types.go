// Package insight scans a normalized dashboard snapshot for operationally
// significant anomalies.
package insight

import "time"

// Severity levels for findings.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ImpactLabel returns the UI-facing restatement of a severity.
func (s Severity) ImpactLabel() string {
	switch s {
	case SeverityHigh:
		return "High impact"
	case SeverityMedium:
		return "Medium impact"
	case SeverityLow:
		return "Low impact"
	default:
		return "Unknown impact"
	}
}

// Kind identifies the rule that produced a finding. The set is open: new
// detectors may introduce new kinds.
type Kind string

// Built-in finding kinds.
const (
	KindSalesDrop         Kind = "sales_drop"
	KindDataInconsistency Kind = "data_inconsistency"
	KindPerformanceIssue  Kind = "performance_issue"
	KindLowDataVolume     Kind = "low_data_volume"
	KindLargeDateRange    Kind = "large_date_range"
)

// Snapshot is the normalized view of one dashboard query result. It is built
// once per detection run and must not be modified by detectors.
type Snapshot struct {
	// KPIValues maps a known metric name to its numeric value. A missing key
	// means the metric was absent or non-numeric in the payload.
	KPIValues map[string]float64 `json:"kpi_values"`

	// GridRows is the tabular result set for the period. Never nil.
	GridRows []map[string]any `json:"grid_rows"`

	ResponseTimeMs float64   `json:"response_time_ms"`
	PeriodStart    time.Time `json:"period_start"`
	PeriodEnd      time.Time `json:"period_end"`
}

// KPI returns the value of a metric and whether it was present.
func (s *Snapshot) KPI(name string) (float64, bool) {
	v, ok := s.KPIValues[name]
	return v, ok
}

// Finding is one detected anomaly.
type Finding struct {
	Kind           Kind      `json:"kind"`
	Severity       Severity  `json:"severity"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Recommendation string    `json:"recommendation"`
	ImpactLabel    string    `json:"impact_label"`
	DetectedAt     time.Time `json:"detected_at"`
}

// Summary counts findings by severity.
type Summary struct {
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Summarize derives a Summary from a list of findings. Findings with an
// unrecognized severity are not counted, so Total always equals
// High+Medium+Low.
func Summarize(findings []Finding) Summary {
	var s Summary
	for _, f := range findings {
		switch f.Severity {
		case SeverityHigh:
			s.High++
		case SeverityMedium:
			s.Medium++
		case SeverityLow:
			s.Low++
		default:
			continue
		}
		s.Total++
	}
	return s
}
