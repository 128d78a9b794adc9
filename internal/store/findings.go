package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/blackwell-systems/reportwatch/internal/insight"
)

// AppendFindings stores the findings of one detection run in a single
// transaction.
func (db *DB) AppendFindings(ctx context.Context, runID string, findings []insight.Finding, userID, companyID string) error {
	if len(findings) == 0 {
		return nil
	}
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO findings
		(run_id, user_id, company_id, kind, severity, title, description,
		 recommendation, impact_label, detected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("preparing finding insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, f := range findings {
		if _, err := stmt.ExecContext(ctx,
			runID, userID, companyID, string(f.Kind), string(f.Severity), f.Title,
			f.Description, f.Recommendation, f.ImpactLabel, formatTime(f.DetectedAt),
		); err != nil {
			return fmt.Errorf("inserting finding %s: %w", f.Kind, err)
		}
	}
	return tx.Commit()
}

// ListFindings returns persisted findings, newest first.
func (db *DB) ListFindings(ctx context.Context, filter FindingFilter) ([]FindingRow, error) {
	query := `SELECT id, run_id, user_id, company_id, kind, severity, title, description,
		recommendation, impact_label, detected_at FROM findings`
	var where []string
	var args []any
	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.CompanyID != "" {
		where = append(where, "company_id = ?")
		args = append(args, filter.CompanyID)
	}
	if filter.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, filter.Kind)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY detected_at DESC, id ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []FindingRow
	for rows.Next() {
		var f FindingRow
		var detected string
		if err := rows.Scan(&f.ID, &f.RunID, &f.UserID, &f.CompanyID, &f.Kind, &f.Severity,
			&f.Title, &f.Description, &f.Recommendation, &f.ImpactLabel, &detected); err != nil {
			return nil, err
		}
		f.DetectedAt = parseTime(detected)
		out = append(out, f)
	}
	return out, rows.Err()
}
