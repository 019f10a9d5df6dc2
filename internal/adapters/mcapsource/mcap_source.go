package mcapsource

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/foxglove/mcap/go/mcap"

	"github.com/ghalamif/mcap2mat/internal/domain"
	"github.com/ghalamif/mcap2mat/internal/ports"
)

// MCAPSource streams messages from an MCAP file in log-time order when the
// file carries a chunk index, and in file order otherwise.
type MCAPSource struct {
	file *os.File
	it   mcap.MessageIterator
	done bool
}

func Open(path string) (*MCAPSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceOpen, err)
	}
	src, err := newSource(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrSourceOpen, path, err)
	}
	return src, nil
}

// Opener adapts Open to ports.SourceOpener.
func Opener(path string) (ports.Source, error) {
	return Open(path)
}

func newSource(f *os.File) (*MCAPSource, error) {
	reader, err := mcap.NewReader(f)
	if err != nil {
		return nil, err
	}
	// A missing or truncated summary is not fatal; the records are still
	// readable front to back.
	if info, err := reader.Info(); err == nil && len(info.ChunkIndexes) > 0 {
		it, err := reader.Messages(mcap.UsingIndex(true), mcap.InOrder(mcap.LogTimeOrder))
		if err != nil {
			return nil, err
		}
		return &MCAPSource{file: f, it: it}, nil
	}
	return newScanSource(f)
}

func newScanSource(f *os.File) (*MCAPSource, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	reader, err := mcap.NewReader(bufio.NewReaderSize(f, 1<<20))
	if err != nil {
		return nil, err
	}
	it, err := reader.Messages(mcap.UsingIndex(false))
	if err != nil {
		return nil, err
	}
	return &MCAPSource{file: f, it: it}, nil
}

// Next returns the next message. Data is owned by the caller.
func (s *MCAPSource) Next() (*domain.Message, error) {
	if s.done {
		return nil, io.EOF
	}
	schema, channel, msg, err := s.it.Next(nil)
	if errors.Is(err, io.EOF) {
		s.done = true
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}
	if channel == nil || msg == nil {
		return nil, fmt.Errorf("message without channel")
	}

	out := &domain.Message{
		Topic:           channel.Topic,
		MessageEncoding: channel.MessageEncoding,
		LogTime:         int64(msg.LogTime),
		Data:            append([]byte(nil), msg.Data...),
	}
	if schema != nil {
		out.SchemaName = schema.Name
	}
	return out, nil
}

func (s *MCAPSource) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
