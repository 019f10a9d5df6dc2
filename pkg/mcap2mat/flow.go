package mcap2mat

import (
	"context"
	"fmt"
)

// Flow reads as Conf → StreamIN → StreamOUT: load a config, swap input-side
// adapters, then pick where the output goes.
type Flow struct {
	cfg  *Config
	opts []RuntimeOption
}

// FlowOption mutates the Flow after configuration is loaded.
type FlowOption func(*Flow)

// StreamInOption overrides an input-side adapter. StreamOutOption overrides
// an output-side one. Both are runtime options under another name so that
// StreamIN and StreamOUT cannot be handed each other's overrides.
type (
	StreamInOption  RuntimeOption
	StreamOutOption RuntimeOption
)

func Conf(path string, opts ...FlowOption) (*Flow, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return ConfFromConfig(cfg, opts...)
}

func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	f := &Flow{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

// Config is live: edits made before StreamOUT reach the runtime.
func (f *Flow) Config() *Config {
	if f == nil {
		return nil
	}
	return f.cfg
}

func (f *Flow) StreamIN(opts ...StreamInOption) *Flow {
	if f == nil {
		return nil
	}
	for _, opt := range opts {
		f.add(RuntimeOption(opt))
	}
	return f
}

// StreamOUT applies the output overrides and builds the Runtime.
func (f *Flow) StreamOUT(opts ...StreamOutOption) (*Runtime, error) {
	if f == nil {
		return nil, fmt.Errorf("flow is nil")
	}
	for _, opt := range opts {
		f.add(RuntimeOption(opt))
	}
	return NewRuntime(f.cfg, f.opts...)
}

func (f *Flow) Run(ctx context.Context, opts ...StreamOutOption) (*Result, error) {
	rt, err := f.StreamOUT(opts...)
	if err != nil {
		return nil, err
	}
	return rt.Run(ctx)
}

func WithFlowOptions(opts ...RuntimeOption) FlowOption {
	return func(f *Flow) {
		for _, opt := range opts {
			f.add(opt)
		}
	}
}

func (f *Flow) add(opt RuntimeOption) {
	if opt != nil {
		f.opts = append(f.opts, opt)
	}
}

func StreamInSource(src Source) StreamInOption {
	if src == nil {
		return nil
	}
	return StreamInOption(WithSource(src))
}

func StreamInRegistry(r Registry) StreamInOption {
	if r == nil {
		return nil
	}
	return StreamInOption(WithRegistry(r))
}

func StreamInObservability(obs Observability) StreamInOption {
	if obs == nil {
		return nil
	}
	return StreamInOption(WithObservability(obs))
}

// StreamOutSink replaces the MAT-file sink. The configured S3 upload is
// skipped for custom sinks; pair it with StreamOutPublisher if needed.
func StreamOutSink(s Sink) StreamOutOption {
	if s == nil {
		return nil
	}
	return StreamOutOption(WithSink(s))
}

func StreamOutPublisher(p Publisher) StreamOutOption {
	if p == nil {
		return nil
	}
	return StreamOutOption(WithPublisher(p))
}

func StreamOutCatalog(c Catalog) StreamOutOption {
	if c == nil {
		return nil
	}
	return StreamOutOption(WithCatalog(c))
}

// StreamOutCallback hands the converted topics to fn instead of writing a file.
func StreamOutCallback(name string, fn OutputHandler) StreamOutOption {
	return StreamOutOption(WithSink(NewCallbackSink(name, fn)))
}
