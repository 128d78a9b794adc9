package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates the catalog, access log, dashboard data, and findings tables.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			category_id TEXT NOT NULL,
			company_id  TEXT NOT NULL,
			owner_id    TEXT NOT NULL,
			created_at  TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS access_events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id     TEXT NOT NULL,
			report_id   TEXT NOT NULL,
			category_id TEXT NOT NULL,
			occurred_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS kpi_values (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			company_id  TEXT NOT NULL,
			name        TEXT NOT NULL,
			value       REAL NOT NULL,
			recorded_on TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS grid_rows (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			company_id TEXT NOT NULL,
			row_date   TEXT NOT NULL,
			data       TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS findings (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL,
			user_id        TEXT NOT NULL,
			company_id     TEXT NOT NULL,
			kind           TEXT NOT NULL,
			severity       TEXT NOT NULL,
			title          TEXT NOT NULL,
			description    TEXT NOT NULL,
			recommendation TEXT NOT NULL,
			impact_label   TEXT NOT NULL,
			detected_at    TEXT NOT NULL
		)`,

		// Indexes.
		`CREATE INDEX IF NOT EXISTS idx_reports_company ON reports(company_id)`,
		`CREATE INDEX IF NOT EXISTS idx_access_user_time ON access_events(user_id, occurred_at)`,
		`CREATE INDEX IF NOT EXISTS idx_kpi_company_day ON kpi_values(company_id, recorded_on)`,
		`CREATE INDEX IF NOT EXISTS idx_grid_company_day ON grid_rows(company_id, row_date)`,
		`CREATE INDEX IF NOT EXISTS idx_findings_scope ON findings(company_id, user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}
