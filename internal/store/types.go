// Package store provides SQLite access for the report catalog, the access
// log, dashboard data, and the findings log.
package store

import "time"

// Report is a catalog row.
type Report struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CategoryID string    `json:"category_id"`
	CompanyID  string    `json:"company_id"`
	OwnerID    string    `json:"owner_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// FindingRow is a persisted finding.
type FindingRow struct {
	ID             int64     `json:"id"`
	RunID          string    `json:"run_id"`
	UserID         string    `json:"user_id"`
	CompanyID      string    `json:"company_id"`
	Kind           string    `json:"kind"`
	Severity       string    `json:"severity"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Recommendation string    `json:"recommendation"`
	ImpactLabel    string    `json:"impact_label"`
	DetectedAt     time.Time `json:"detected_at"`
}

// FindingFilter narrows ListFindings. Empty fields match everything.
type FindingFilter struct {
	UserID    string
	CompanyID string
	Kind      string
	Limit     int
}

// RoleAdmin sees every report in the catalog regardless of company.
const RoleAdmin = "admin"
