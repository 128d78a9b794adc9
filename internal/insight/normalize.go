package insight

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Payload is the raw dashboard result as decoded from JSON or assembled by a
// snapshot source. Recognized keys:
//
//	kpis            list of {"key"|"name", "value"} objects, or an object map
//	rows            list of row objects (aliases: grid, gridData)
//	meta            object holding response_time_ms
//	responseTimeMs  top-level response time (alias: executionTime, response_time_ms)
type Payload map[string]any

// KnownKPIs is the fixed KPI vocabulary. Keys outside it are ignored.
var KnownKPIs = map[string]bool{
	"daily_sales":         true,
	"weekly_sales":        true,
	"monthly_sales":       true,
	"total_sales":         true,
	"order_count":         true,
	"average_order_value": true,
	"active_users":        true,
	"conversion_rate":     true,
	"return_rate":         true,
}

// Normalize converts a raw payload into a Snapshot. It never fails: missing
// or malformed fields fall back to zero values so detectors can still run on
// partial data. Non-numeric KPI values are dropped rather than zeroed. An end
// date before the start date is clamped to the start date.
func Normalize(raw Payload, periodStart, periodEnd time.Time) Snapshot {
	if periodEnd.Before(periodStart) {
		periodEnd = periodStart
	}
	return Snapshot{
		KPIValues:      normalizeKPIs(raw["kpis"]),
		GridRows:       normalizeRows(firstPresent(raw, "rows", "grid", "gridData")),
		ResponseTimeMs: normalizeResponseTime(raw),
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
	}
}

func firstPresent(raw Payload, keys ...string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func normalizeKPIs(v any) map[string]float64 {
	kpis := make(map[string]float64)
	add := func(name string, value any) {
		if !KnownKPIs[name] {
			return
		}
		if f, ok := toFloat(value); ok {
			kpis[name] = f
		}
	}

	switch t := v.(type) {
	case map[string]any:
		for name, value := range t {
			add(name, value)
		}
	case []any:
		for _, item := range t {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name, _ := obj["key"].(string)
			if name == "" {
				name, _ = obj["name"].(string)
			}
			add(name, obj["value"])
		}
	case []map[string]any:
		for _, obj := range t {
			name, _ := obj["key"].(string)
			if name == "" {
				name, _ = obj["name"].(string)
			}
			add(name, obj["value"])
		}
	}
	return kpis
}

func normalizeRows(v any) []map[string]any {
	switch t := v.(type) {
	case []map[string]any:
		rows := make([]map[string]any, 0, len(t))
		for _, r := range t {
			if r != nil {
				rows = append(rows, r)
			}
		}
		return rows
	case []any:
		rows := make([]map[string]any, 0, len(t))
		for _, item := range t {
			if r, ok := item.(map[string]any); ok {
				rows = append(rows, r)
			}
		}
		return rows
	default:
		return []map[string]any{}
	}
}

func normalizeResponseTime(raw Payload) float64 {
	if meta, ok := raw["meta"].(map[string]any); ok {
		if f, ok := toFloat(meta["response_time_ms"]); ok && f >= 0 {
			return f
		}
	}
	if f, ok := toFloat(firstPresent(raw, "responseTimeMs", "executionTime", "response_time_ms")); ok && f >= 0 {
		return f
	}
	return 0
}

// toFloat coerces JSON-ish numeric values. Booleans, nil, NaN, infinities,
// and strings that do not parse as a number are reported as non-numeric.
func toFloat(v any) (float64, bool) {
	f, ok := coerce(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func coerce(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
