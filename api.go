package mcap2mat

import (
	base "github.com/ghalamif/mcap2mat/pkg/mcap2mat"
)

// Re-exported errors for convenience.
var (
	ErrSourceOpen        = base.ErrSourceOpen
	ErrDescriptorLoad    = base.ErrDescriptorLoad
	ErrOutputWrite       = base.ErrOutputWrite
	ErrInvalidConfig     = base.ErrInvalidConfig
	ErrChannelSinkClosed = base.ErrChannelSinkClosed
)

// Type aliases so consumers can import github.com/ghalamif/mcap2mat directly.
type (
	Config          = base.Config
	TimeRange       = base.TimeRange
	LogConfig       = base.LogConfig
	MetricsConfig   = base.MetricsConfig
	CatalogConfig   = base.CatalogConfig
	UploadConfig    = base.UploadConfig
	Flow            = base.Flow
	FlowOption      = base.FlowOption
	StreamInOption  = base.StreamInOption
	StreamOutOption = base.StreamOutOption
	Runtime         = base.Runtime
	RuntimeOption   = base.RuntimeOption
	Result          = base.Result
	TopicTable      = base.TopicTable
	OutputHandler   = base.OutputHandler
	Message         = base.Message
	Encoding        = base.Encoding
	Value           = base.Value
	Output          = base.Output
	Source          = base.Source
	Sink            = base.Sink
	Registry        = base.Registry
	Observability   = base.Observability
	Field           = base.Field
	Catalog         = base.Catalog
	Publisher       = base.Publisher
	RunSummary      = base.RunSummary
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func ConfigFromArgs(name string, args []string) (*Config, error) {
	return base.ConfigFromArgs(name, args)
}

// Flow builder helpers.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	return base.Conf(path, opts...)
}

func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	return base.ConfFromConfig(cfg, opts...)
}

func WithFlowOptions(opts ...RuntimeOption) FlowOption {
	return base.WithFlowOptions(opts...)
}

func StreamInSource(src Source) StreamInOption {
	return base.StreamInSource(src)
}

func StreamInRegistry(r Registry) StreamInOption {
	return base.StreamInRegistry(r)
}

func StreamInObservability(obs Observability) StreamInOption {
	return base.StreamInObservability(obs)
}

func StreamOutSink(s Sink) StreamOutOption {
	return base.StreamOutSink(s)
}

func StreamOutPublisher(p Publisher) StreamOutOption {
	return base.StreamOutPublisher(p)
}

func StreamOutCatalog(c Catalog) StreamOutOption {
	return base.StreamOutCatalog(c)
}

func StreamOutCallback(name string, fn OutputHandler) StreamOutOption {
	return base.StreamOutCallback(name, fn)
}

// Runtime and options.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	return base.NewRuntime(cfg, opts...)
}

func WithSource(src Source) RuntimeOption {
	return base.WithSource(src)
}

func WithSink(s Sink) RuntimeOption {
	return base.WithSink(s)
}

func WithRegistry(r Registry) RuntimeOption {
	return base.WithRegistry(r)
}

func WithObservability(obs Observability) RuntimeOption {
	return base.WithObservability(obs)
}

func WithCatalog(c Catalog) RuntimeOption {
	return base.WithCatalog(c)
}

func WithPublisher(p Publisher) RuntimeOption {
	return base.WithPublisher(p)
}

// Sink adapters.
func NewCallbackSink(name string, fn OutputHandler) Sink {
	return base.NewCallbackSink(name, fn)
}

func NewChannelSink(name string, buffer int) (Sink, <-chan []TopicTable, func()) {
	return base.NewChannelSink(name, buffer)
}
