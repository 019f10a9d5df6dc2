package mcap2mat

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ghalamif/mcap2mat/internal/domain"
)

// ErrChannelSinkClosed is returned when a channel sink is written to after being closed.
var ErrChannelSinkClosed = errors.New("mcap2mat: channel sink closed")

// NewCallbackSink adapts an OutputHandler into a full Sink implementation so callers
// can consume converted topics in memory without writing a file.
func NewCallbackSink(name string, fn OutputHandler) Sink {
	if name == "" {
		name = "callback"
	}
	return &callbackSink{name: name, fn: fn}
}

// NewChannelSink exposes the converted tables via a channel; it returns the sink, the
// read-only channel, and a close function that the caller should invoke when done.
func NewChannelSink(name string, buffer int) (Sink, <-chan []TopicTable, func()) {
	if name == "" {
		name = "channel"
	}
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan []TopicTable, buffer)
	s := &channelSink{
		name:   name,
		ch:     ch,
		closed: make(chan struct{}),
	}
	return s, ch, func() { s.close() }
}

type callbackSink struct {
	name string
	fn   OutputHandler
}

func (s *callbackSink) Write(out *domain.Output) error {
	if s.fn == nil {
		return fmt.Errorf("callback sink %q: nil handler", s.name)
	}
	return s.fn(tablesFromOutput(out))
}

func (s *callbackSink) Name() string { return s.name }

type channelSink struct {
	name   string
	ch     chan []TopicTable
	closed chan struct{}
	once   sync.Once
}

func (s *channelSink) Write(out *domain.Output) error {
	select {
	case <-s.closed:
		return ErrChannelSinkClosed
	default:
	}

	tables := tablesFromOutput(out)

	select {
	case <-s.closed:
		return ErrChannelSinkClosed
	case s.ch <- tables:
		return nil
	}
}

func (s *channelSink) Name() string { return s.name }

func (s *channelSink) close() {
	s.once.Do(func() {
		close(s.closed)
		close(s.ch)
	})
}
