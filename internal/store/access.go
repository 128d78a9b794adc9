package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/blackwell-systems/reportwatch/internal/recommend"
)

// RecordAccess appends one access event. When the category is empty it is
// looked up from the catalog.
func (db *DB) RecordAccess(ctx context.Context, ev recommend.AccessEvent) error {
	if ev.CategoryID == "" {
		err := db.conn.QueryRowContext(ctx,
			"SELECT category_id FROM reports WHERE id = ?", ev.ReportID,
		).Scan(&ev.CategoryID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("looking up report category: %w", err)
		}
	}
	occurred := ev.OccurredAt
	if occurred.IsZero() {
		occurred = db.now()
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO access_events (user_id, report_id, category_id, occurred_at)
		VALUES (?, ?, ?, ?)`,
		ev.UserID, ev.ReportID, ev.CategoryID, formatTime(occurred),
	)
	return err
}

// RecentAccesses returns a user's accesses from the last withinDays days,
// newest first, at most limit events. A non-positive limit means no bound.
func (db *DB) RecentAccesses(ctx context.Context, userID string, withinDays, limit int) ([]recommend.AccessEvent, error) {
	cutoff := db.now().Add(-time.Duration(withinDays) * 24 * time.Hour)
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id, report_id, category_id, occurred_at
		 FROM access_events
		 WHERE user_id = ? AND occurred_at >= ?
		 ORDER BY occurred_at DESC, id DESC
		 LIMIT ?`,
		userID, formatTime(cutoff), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying access log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []recommend.AccessEvent
	for rows.Next() {
		var ev recommend.AccessEvent
		var occurred string
		if err := rows.Scan(&ev.UserID, &ev.ReportID, &ev.CategoryID, &occurred); err != nil {
			return nil, err
		}
		ev.OccurredAt = parseTime(occurred)
		events = append(events, ev)
	}
	return events, rows.Err()
}
