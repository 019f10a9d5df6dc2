package ports

import (
	"context"
	"time"
)

// RunSummary describes one finished conversion for bookkeeping.
type RunSummary struct {
	RunID      string
	Input      string
	Output     string
	Topics     []string
	Records    int
	Fallbacks  int
	Compressed bool
	StartedAt  time.Time
	FinishedAt time.Time
}

// Catalog records finished runs.
type Catalog interface {
	RecordRun(ctx context.Context, run RunSummary) error
	Close() error
}

// Publisher copies a finished output file somewhere else.
type Publisher interface {
	Publish(ctx context.Context, localPath string) error
}
