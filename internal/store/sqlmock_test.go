package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/blackwell-systems/reportwatch/internal/insight"
	"github.com/blackwell-systems/reportwatch/internal/recommend"
)

func TestAppendFindings_RollsBackOnInsertError(t *testing.T) {
	// Given: an insert that fails midway through the batch
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	defer conn.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO findings")
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	db := New(conn)
	findings := []insight.Finding{
		{Kind: insight.KindLowDataVolume, Severity: insight.SeverityLow},
		{Kind: insight.KindLargeDateRange, Severity: insight.SeverityLow},
	}

	// When
	err = db.AppendFindings(context.Background(), "run-1", findings, "u1", "acme")

	// Then
	if err == nil {
		t.Fatal("expected error from failing insert")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFetchPayload_QueryError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	defer conn.Close()

	mock.ExpectQuery("SELECT name, value FROM kpi_values").
		WithArgs("acme", "2026-10-01", "2026-10-05").
		WillReturnError(errors.New("connection reset"))

	day := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	_, err = New(conn).FetchPayload(context.Background(), "u1", "acme", day, day.AddDate(0, 0, 4))
	if err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestRecentAccesses_UsesWindowAndLimit(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	defer conn.Close()

	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	cols := []string{"user_id", "report_id", "category_id", "occurred_at"}
	mock.ExpectQuery("FROM access_events").
		WithArgs("u1", "2026-10-11T12:00:00.000Z", 50).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("u1", "r2", "ops", "2026-10-18T11:00:00.000Z").
			AddRow("u1", "r1", "sales", "2026-10-17T09:30:00.000Z"))

	db := New(conn)
	db.now = func() time.Time { return now }

	events, err := db.RecentAccesses(context.Background(), "u1", 7, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []recommend.AccessEvent{
		{UserID: "u1", ReportID: "r2", CategoryID: "ops", OccurredAt: now.Add(-time.Hour)},
		{UserID: "u1", ReportID: "r1", CategoryID: "sales", OccurredAt: time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i := range want {
		if events[i].ReportID != want[i].ReportID || !events[i].OccurredAt.Equal(want[i].OccurredAt) {
			t.Errorf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
