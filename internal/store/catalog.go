package store

import (
	"context"
	"fmt"

	"github.com/blackwell-systems/reportwatch/internal/recommend"
)

// InsertReport adds or replaces a catalog entry.
func (db *DB) InsertReport(ctx context.Context, r *Report) error {
	created := r.CreatedAt
	if created.IsZero() {
		created = db.now()
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO reports (id, name, category_id, company_id, owner_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.CategoryID, r.CompanyID, r.OwnerID, formatTime(created),
	)
	return err
}

// ListReports returns every catalog row, newest first.
func (db *DB) ListReports(ctx context.Context) ([]Report, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, category_id, company_id, owner_id, created_at
		 FROM reports ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var reports []Report
	for rows.Next() {
		var r Report
		var created string
		if err := rows.Scan(&r.ID, &r.Name, &r.CategoryID, &r.CompanyID, &r.OwnerID, &created); err != nil {
			return nil, err
		}
		r.CreatedAt = parseTime(created)
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// VisibleReports returns the catalog entries the given identity may see,
// newest first. Admins see every report; other roles see reports of their
// company plus reports they own.
func (db *DB) VisibleReports(ctx context.Context, userID, companyID, role string) ([]recommend.CatalogEntry, error) {
	query := `SELECT id, name, category_id, created_at FROM reports`
	var args []any
	if role != RoleAdmin {
		query += ` WHERE company_id = ? OR owner_id = ?`
		args = append(args, companyID, userID)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []recommend.CatalogEntry
	for rows.Next() {
		var e recommend.CatalogEntry
		var created string
		if err := rows.Scan(&e.ID, &e.Name, &e.CategoryID, &created); err != nil {
			return nil, err
		}
		e.CreatedAt = parseTime(created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
