package engine

import (
	"fmt"
	"time"
)

// DefaultPeriodDays is the period length used when no bounds are given.
const DefaultPeriodDays = 7

var periodLayouts = []string{time.RFC3339, "2006-01-02"}

// ParsePeriod parses the start and end bounds of a detection period. Each
// bound accepts RFC 3339 or a plain date. A missing end defaults to now and a
// missing start to DefaultPeriodDays before end. An end before start is
// rejected.
func ParsePeriod(start, end string, now time.Time) (time.Time, time.Time, error) {
	to := now.UTC()
	if end != "" {
		t, err := parseBound(end)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("end: %w", err)
		}
		to = t
	}

	from := to.AddDate(0, 0, -DefaultPeriodDays)
	if start != "" {
		t, err := parseBound(start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("start: %w", err)
		}
		from = t
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s is before start %s",
			to.Format(time.DateOnly), from.Format(time.DateOnly))
	}
	return from, to, nil
}

func parseBound(s string) (time.Time, error) {
	for _, layout := range periodLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD or RFC 3339)", s)
}
