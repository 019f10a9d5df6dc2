package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/ghalamif/mcap2mat/internal/ports"
)

// PostgresCatalog keeps one row per finished conversion.
type PostgresCatalog struct {
	db        *sql.DB
	tableName string
}

func NewPostgresCatalog(db *sql.DB, table string) *PostgresCatalog {
	return &PostgresCatalog{db: db, tableName: pq.QuoteIdentifier(table)}
}

// Open connects with the postgres driver and makes sure the table exists.
func Open(ctx context.Context, connString, table string) (*PostgresCatalog, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}
	c := NewPostgresCatalog(db, table)
	if err := c.EnsureTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *PostgresCatalog) EnsureTable(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS "+c.tableName+` (
	run_id      UUID PRIMARY KEY,
	input_path  TEXT NOT NULL,
	output_path TEXT NOT NULL,
	topics      TEXT[] NOT NULL,
	records     BIGINT NOT NULL,
	fallbacks   BIGINT NOT NULL,
	compressed  BOOLEAN NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("create catalog table: %w", err)
	}
	return nil
}

// RecordRun inserts run. Re-recording the same run id is a no-op.
func (c *PostgresCatalog) RecordRun(ctx context.Context, run ports.RunSummary) error {
	query := "INSERT INTO " + c.tableName +
		" (run_id, input_path, output_path, topics, records, fallbacks, compressed, started_at, finished_at)" +
		" VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) ON CONFLICT (run_id) DO NOTHING"

	_, err := c.db.ExecContext(ctx, query,
		run.RunID,
		run.Input,
		run.Output,
		pq.Array(run.Topics),
		run.Records,
		run.Fallbacks,
		run.Compressed,
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.RunID, err)
	}
	return nil
}

func (c *PostgresCatalog) Close() error {
	return c.db.Close()
}

var _ ports.Catalog = (*PostgresCatalog)(nil)
