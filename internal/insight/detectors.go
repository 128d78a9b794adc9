package insight

import (
	"fmt"
	"math"
)

// Thresholds holds the numeric policy of the built-in detectors.
type Thresholds struct {
	// SalesBaselineRatio derives the sales baseline from the current value.
	// This approximates an average; no history is aggregated.
	SalesBaselineRatio float64 `json:"sales_baseline_ratio"`
	// SalesDropRatio is the fraction of the baseline below which sales_drop fires.
	SalesDropRatio float64 `json:"sales_drop_ratio"`
	// EmptyRowRatio is the empty-row share above which data_inconsistency fires.
	EmptyRowRatio float64 `json:"empty_row_ratio"`
	// SlowResponseMs is the response time above which performance_issue fires.
	SlowResponseMs float64 `json:"slow_response_ms"`
	// MinRowCount is the expected minimum number of grid rows.
	MinRowCount int `json:"min_row_count"`
	// MaxRangeDays is the widest period that does not trigger large_date_range.
	MaxRangeDays int `json:"max_range_days"`
}

// DefaultThresholds returns the built-in detector policy.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SalesBaselineRatio: 0.7,
		SalesDropRatio:     0.5,
		EmptyRowRatio:      0.1,
		SlowResponseMs:     10000,
		MinRowCount:        100,
		MaxRangeDays:       30,
	}
}

// SalesDrop fires when daily sales fall below half of the baseline. The
// baseline is derived from the same value it is compared against, so with
// the default ratios the rule cannot fire for non-negative sales.
// TODO: compare against a rolling average once a history source exists.
func SalesDrop(th Thresholds) Rule {
	return func(s *Snapshot) (*Finding, error) {
		current, ok := s.KPI("daily_sales")
		if !ok {
			return nil, nil
		}
		baseline := current * th.SalesBaselineRatio
		if current >= baseline*th.SalesDropRatio {
			return nil, nil
		}
		return &Finding{
			Kind:     KindSalesDrop,
			Severity: SeverityHigh,
			Title:    "Sales dropped sharply",
			Description: fmt.Sprintf(
				"Daily sales are %.2f, below %.0f%% of the expected baseline of %.2f.",
				current, th.SalesDropRatio*100, baseline,
			),
			Recommendation: "Review recent campaigns, pricing changes, and stock levels for the affected period.",
		}, nil
	}
}

// DataInconsistency fires when more than EmptyRowRatio of the grid rows carry
// at least one empty value (nil, empty string, or numeric zero).
func DataInconsistency(th Thresholds) Rule {
	return func(s *Snapshot) (*Finding, error) {
		total := len(s.GridRows)
		if total == 0 {
			return nil, nil
		}
		empty := 0
		for _, row := range s.GridRows {
			if hasEmptyValue(row) {
				empty++
			}
		}
		if float64(empty) <= th.EmptyRowRatio*float64(total) {
			return nil, nil
		}
		return &Finding{
			Kind:     KindDataInconsistency,
			Severity: SeverityMedium,
			Title:    "Incomplete records detected",
			Description: fmt.Sprintf(
				"%d of %d rows (%.1f%%) contain empty or zero values.",
				empty, total, float64(empty)/float64(total)*100,
			),
			Recommendation: "Check the data entry process and upstream imports for missing fields.",
		}, nil
	}
}

// PerformanceIssue fires when the dashboard query took longer than SlowResponseMs.
func PerformanceIssue(th Thresholds) Rule {
	return func(s *Snapshot) (*Finding, error) {
		if s.ResponseTimeMs <= th.SlowResponseMs {
			return nil, nil
		}
		return &Finding{
			Kind:     KindPerformanceIssue,
			Severity: SeverityMedium,
			Title:    "Slow report response",
			Description: fmt.Sprintf(
				"The report took %.0f ms to compute (limit %.0f ms).",
				s.ResponseTimeMs, th.SlowResponseMs,
			),
			Recommendation: "Narrow the date range, add filters, or index the underlying tables.",
		}, nil
	}
}

// LowDataVolume fires when the grid holds fewer than MinRowCount rows.
func LowDataVolume(th Thresholds) Rule {
	return func(s *Snapshot) (*Finding, error) {
		n := len(s.GridRows)
		if n >= th.MinRowCount {
			return nil, nil
		}
		return &Finding{
			Kind:     KindLowDataVolume,
			Severity: SeverityLow,
			Title:    "Low data volume",
			Description: fmt.Sprintf(
				"Only %d rows were returned; at least %d are expected for reliable analysis.",
				n, th.MinRowCount,
			),
			Recommendation: "Widen the date range or verify that data collection is running.",
		}, nil
	}
}

// LargeDateRange fires when the requested period spans more than MaxRangeDays
// days, counting partial days as whole ones.
func LargeDateRange(th Thresholds) Rule {
	return func(s *Snapshot) (*Finding, error) {
		days := RangeDays(s)
		if days <= th.MaxRangeDays {
			return nil, nil
		}
		return &Finding{
			Kind:     KindLargeDateRange,
			Severity: SeverityLow,
			Title:    "Wide date range",
			Description: fmt.Sprintf(
				"The selected period spans %d days (more than %d).",
				days, th.MaxRangeDays,
			),
			Recommendation: "Split the analysis into shorter periods for more precise results.",
		}, nil
	}
}

// RangeDays returns ceil((PeriodEnd - PeriodStart) / 24h).
func RangeDays(s *Snapshot) int {
	d := s.PeriodEnd.Sub(s.PeriodStart)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

func hasEmptyValue(row map[string]any) bool {
	for _, v := range row {
		if v == nil {
			return true
		}
		if str, ok := v.(string); ok {
			if str == "" {
				return true
			}
			continue
		}
		if f, ok := coerce(v); ok && f == 0 {
			return true
		}
	}
	return false
}
