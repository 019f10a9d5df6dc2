package ports

import "github.com/ghalamif/mcap2mat/internal/domain"

// Source yields container messages in stream order. Next returns io.EOF once
// the stream is exhausted; the source cannot be restarted.
type Source interface {
	Next() (*domain.Message, error)
	Close() error
}

// SourceOpener opens a Source for the given path.
type SourceOpener func(path string) (Source, error)
