package catalog

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ghalamif/mcap2mat/internal/ports"
)

func TestPostgresCatalogRecordRun(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	catalog := NewPostgresCatalog(db, "conversions")
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	run := ports.RunSummary{
		RunID:      "3f1c8a2e-8d7b-4d67-9c39-2f0c1c7e6a11",
		Input:      "in.mcap",
		Output:     "out.mat",
		Topics:     []string{"/a", "/b"},
		Records:    12,
		Fallbacks:  1,
		Compressed: true,
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
	}

	expectedQuery := regexp.QuoteMeta(`INSERT INTO "conversions" (run_id, input_path, output_path, topics, records, fallbacks, compressed, started_at, finished_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) ON CONFLICT (run_id) DO NOTHING`)
	mock.ExpectExec(expectedQuery).
		WithArgs(run.RunID, "in.mcap", "out.mat", sqlmock.AnyArg(), 12, 1, true, started, started.Add(time.Second)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := catalog.RecordRun(context.Background(), run); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresCatalogRecordRunError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO").WillReturnError(errors.New("connection reset"))

	err = NewPostgresCatalog(db, "conversions").RecordRun(context.Background(), ports.RunSummary{RunID: "r1"})
	if err == nil {
		t.Fatalf("expected insert error")
	}
}

func TestPostgresCatalogEnsureTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "runs"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewPostgresCatalog(db, "runs").EnsureTable(context.Background()); err != nil {
		t.Fatalf("ensure table: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresCatalogQuotesTableName(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	c := NewPostgresCatalog(db, `runs"; DROP TABLE x; --`)
	if c.tableName != `"runs""; DROP TABLE x; --"` {
		t.Fatalf("expected quoted identifier, got %s", c.tableName)
	}
}
