package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/blackwell-systems/reportwatch/internal/insight"
	"github.com/blackwell-systems/reportwatch/internal/recommend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	db.now = func() time.Time { return testNow }
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Migrate())

	var version int
	require.NoError(t, db.Conn().QueryRow("SELECT version FROM schema_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestVisibleReports_Scope(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	reports := []Report{
		{ID: "r1", Name: "Sales", CategoryID: "sales", CompanyID: "acme", OwnerID: "u9", CreatedAt: testNow.AddDate(0, 0, -3)},
		{ID: "r2", Name: "Stock", CategoryID: "ops", CompanyID: "globex", OwnerID: "u1", CreatedAt: testNow.AddDate(0, 0, -1)},
		{ID: "r3", Name: "Payroll", CategoryID: "hr", CompanyID: "globex", OwnerID: "u7", CreatedAt: testNow.AddDate(0, 0, -2)},
	}
	for i := range reports {
		require.NoError(t, db.InsertReport(ctx, &reports[i]))
	}

	user, err := db.VisibleReports(ctx, "u1", "acme", "user")
	require.NoError(t, err)
	assert.Equal(t, []string{"r2", "r1"}, entryIDs(user), "own company plus owned reports, newest first")

	admin, err := db.VisibleReports(ctx, "u1", "acme", RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, []string{"r2", "r3", "r1"}, entryIDs(admin))
	assert.True(t, admin[0].CreatedAt.Equal(testNow.AddDate(0, 0, -1)))

	all, err := db.ListReports(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func entryIDs(entries []recommend.CatalogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestRecentAccesses_NewestFirstBoundedAndWindowed(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.InsertReport(ctx, &Report{ID: "r1", Name: "Sales", CategoryID: "sales", CompanyID: "acme", OwnerID: "u1"}))

	events := []recommend.AccessEvent{
		{UserID: "u1", ReportID: "r1", OccurredAt: testNow.Add(-1 * time.Hour)},
		{UserID: "u1", ReportID: "r2", CategoryID: "ops", OccurredAt: testNow.Add(-3 * time.Hour)},
		{UserID: "u1", ReportID: "r3", CategoryID: "hr", OccurredAt: testNow.Add(-2 * time.Hour)},
		{UserID: "u1", ReportID: "r4", CategoryID: "old", OccurredAt: testNow.AddDate(0, 0, -40)},
		{UserID: "u2", ReportID: "r1", CategoryID: "sales", OccurredAt: testNow},
	}
	for _, ev := range events {
		require.NoError(t, db.RecordAccess(ctx, ev))
	}

	got, err := db.RecentAccesses(ctx, "u1", 30, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "r1", got[0].ReportID)
	assert.Equal(t, "sales", got[0].CategoryID, "category filled from catalog")
	assert.Equal(t, "r3", got[1].ReportID)
	assert.Equal(t, "r2", got[2].ReportID)

	bounded, err := db.RecentAccesses(ctx, "u1", 30, 2)
	require.NoError(t, err)
	assert.Len(t, bounded, 2)

	unbounded, err := db.RecentAccesses(ctx, "u1", 60, 0)
	require.NoError(t, err)
	assert.Len(t, unbounded, 4)
}

func TestFetchPayload(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	day1 := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	require.NoError(t, db.InsertKPIValue(ctx, "acme", "daily_sales", 100, day1))
	require.NoError(t, db.InsertKPIValue(ctx, "acme", "daily_sales", 250, day2))
	require.NoError(t, db.InsertKPIValue(ctx, "acme", "order_count", 12, day1))
	require.NoError(t, db.InsertKPIValue(ctx, "globex", "daily_sales", 999, day2))
	require.NoError(t, db.InsertKPIValue(ctx, "acme", "daily_sales", 1, day1.AddDate(0, 0, 10)))
	require.NoError(t, db.InsertGridRow(ctx, "acme", day1, map[string]any{"region": "north", "amount": 10}))
	require.NoError(t, db.InsertGridRow(ctx, "acme", day2, map[string]any{"region": "south", "amount": 0}))
	require.NoError(t, db.InsertGridRow(ctx, "acme", day1.AddDate(0, 0, -5), map[string]any{"region": "east"}))
	_, err := db.Conn().Exec("INSERT INTO grid_rows (company_id, row_date, data) VALUES ('acme', '2026-10-02', 'not json')")
	require.NoError(t, err)

	raw, err := db.FetchPayload(ctx, "u1", "acme", day1, day2)
	require.NoError(t, err)

	snap := insight.Normalize(raw, day1, day2)
	sales, ok := snap.KPI("daily_sales")
	require.True(t, ok)
	assert.Equal(t, 250.0, sales, "latest value in range wins")
	orders, _ := snap.KPI("order_count")
	assert.Equal(t, 12.0, orders)
	assert.Len(t, snap.GridRows, 2)
	assert.Equal(t, "north", snap.GridRows[0]["region"])
	assert.GreaterOrEqual(t, snap.ResponseTimeMs, 0.0)
}

func TestAppendAndListFindings(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	detected := testNow.Add(-time.Minute)

	findings := []insight.Finding{
		{Kind: insight.KindLowDataVolume, Severity: insight.SeverityLow, Title: "Low data volume", ImpactLabel: "Low impact", DetectedAt: detected},
		{Kind: insight.KindPerformanceIssue, Severity: insight.SeverityMedium, Title: "Slow report response", ImpactLabel: "Medium impact", DetectedAt: detected},
	}
	require.NoError(t, db.AppendFindings(ctx, "run-1", findings, "u1", "acme"))
	require.NoError(t, db.AppendFindings(ctx, "run-2", findings[:1], "u2", "globex"))
	require.NoError(t, db.AppendFindings(ctx, "run-3", nil, "u2", "globex"))

	all, err := db.ListFindings(ctx, FindingFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	acme, err := db.ListFindings(ctx, FindingFilter{CompanyID: "acme"})
	require.NoError(t, err)
	require.Len(t, acme, 2)
	assert.Equal(t, "run-1", acme[0].RunID)
	assert.Equal(t, "low_data_volume", acme[0].Kind)
	assert.True(t, acme[0].DetectedAt.Equal(detected))

	limited, err := db.ListFindings(ctx, FindingFilter{Kind: "low_data_volume", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestAppendFindings_MissingTable(t *testing.T) {
	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer conn.Close()

	db := New(conn)
	err = db.AppendFindings(context.Background(), "run-1", []insight.Finding{{Kind: "x", Severity: insight.SeverityLow}}, "u1", "acme")
	assert.Error(t, err)
}
