package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/blackwell-systems/reportwatch/internal/insight"
	"github.com/rs/zerolog"
)

// InsertKPIValue records a KPI value for a company on a given day.
func (db *DB) InsertKPIValue(ctx context.Context, companyID, name string, value float64, day time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO kpi_values (company_id, name, value, recorded_on) VALUES (?, ?, ?, ?)",
		companyID, name, value, day.UTC().Format(dateLayout),
	)
	return err
}

// InsertGridRow records one dashboard grid row for a company on a given day.
func (db *DB) InsertGridRow(ctx context.Context, companyID string, day time.Time, row map[string]any) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encoding grid row: %w", err)
	}
	_, err = db.conn.ExecContext(ctx,
		"INSERT INTO grid_rows (company_id, row_date, data) VALUES (?, ?, ?)",
		companyID, day.UTC().Format(dateLayout), string(data),
	)
	return err
}

// FetchPayload assembles the raw dashboard payload of a company for the
// inclusive day range [start, end]. The latest KPI value per name wins. The
// payload's response time is the wall time spent on the queries.
func (db *DB) FetchPayload(ctx context.Context, userID, companyID string, start, end time.Time) (insight.Payload, error) {
	logger := zerolog.Ctx(ctx)
	began := time.Now()
	from, to := start.UTC().Format(dateLayout), end.UTC().Format(dateLayout)

	kpiRows, err := db.conn.QueryContext(ctx,
		`SELECT name, value FROM kpi_values
		 WHERE company_id = ? AND recorded_on BETWEEN ? AND ?
		 ORDER BY recorded_on ASC, id ASC`,
		companyID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("querying kpi values: %w", err)
	}
	latest := make(map[string]float64)
	for kpiRows.Next() {
		var name string
		var value float64
		if err := kpiRows.Scan(&name, &value); err != nil {
			_ = kpiRows.Close()
			return nil, err
		}
		latest[name] = value
	}
	if err := kpiRows.Err(); err != nil {
		_ = kpiRows.Close()
		return nil, err
	}
	_ = kpiRows.Close()

	gridRows, err := db.conn.QueryContext(ctx,
		`SELECT data FROM grid_rows
		 WHERE company_id = ? AND row_date BETWEEN ? AND ?
		 ORDER BY row_date ASC, id ASC`,
		companyID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("querying grid rows: %w", err)
	}
	defer func() { _ = gridRows.Close() }()

	rows := []any{}
	skipped := 0
	for gridRows.Next() {
		var data string
		if err := gridRows.Scan(&data); err != nil {
			return nil, err
		}
		var row map[string]any
		if err := json.Unmarshal([]byte(data), &row); err != nil {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	if err := gridRows.Err(); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(latest))
	for name := range latest {
		names = append(names, name)
	}
	sort.Strings(names)
	kpis := make([]any, 0, len(names))
	for _, name := range names {
		kpis = append(kpis, map[string]any{"key": name, "value": latest[name]})
	}

	elapsed := float64(time.Since(began).Microseconds()) / 1000
	logger.Debug().
		Str("user_id", userID).
		Str("company_id", companyID).
		Int("rows", len(rows)).
		Int("skipped_rows", skipped).
		Float64("response_time_ms", elapsed).
		Msg("fetched dashboard payload")

	return insight.Payload{
		"kpis": kpis,
		"rows": rows,
		"meta": map[string]any{"response_time_ms": elapsed},
	}, nil
}
