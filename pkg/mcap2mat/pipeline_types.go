package mcap2mat

import (
	"github.com/ghalamif/mcap2mat/internal/app/pipeline"
	"github.com/ghalamif/mcap2mat/internal/domain"
	"github.com/ghalamif/mcap2mat/internal/ports"
)

// Message is one container message as read from the source.
type Message = domain.Message

// Encoding is the effective decoder that produced a record's value.
type Encoding = domain.Encoding

const (
	EncodingRaw      = domain.EncodingRaw
	EncodingJSON     = domain.EncodingJSON
	EncodingProtobuf = domain.EncodingProtobuf
)

// Decoded values. Every value in a data column is exactly one of these.
type (
	Value    = domain.Value
	Null     = domain.Null
	Bool     = domain.Bool
	Number   = domain.Number
	Int      = domain.Int
	Uint     = domain.Uint
	String   = domain.String
	Bytes    = domain.Bytes
	Sequence = domain.Sequence
	Mapping  = domain.Mapping
	Entry    = domain.Entry
)

// Output is the full set of named topic buckets plus the name lookup table.
type Output = domain.Output

// Bucket holds one topic's index-aligned columns.
type Bucket = domain.Bucket

// NamedBucket pairs a bucket with its variable name.
type NamedBucket = domain.NamedBucket

// NamePair links a topic to its output-safe variable name.
type NamePair = domain.NamePair

// Result summarises a finished run.
type Result = pipeline.Result

// Source streams container messages into the converter.
type Source = ports.Source

// Sink persists the final output in one write.
type Sink = ports.Sink

// Registry resolves descriptor-typed payloads.
type Registry = ports.Registry

// Observability emits logs and metrics about the run.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

// Catalog records finished runs.
type Catalog = ports.Catalog

// Publisher ships the finished output file elsewhere.
type Publisher = ports.Publisher

// RunSummary is the row a Catalog receives.
type RunSummary = ports.RunSummary

// Error kinds returned by Run. Test with errors.Is.
var (
	ErrSourceOpen     = domain.ErrSourceOpen
	ErrDescriptorLoad = domain.ErrDescriptorLoad
	ErrOutputWrite    = domain.ErrOutputWrite
	ErrInvalidConfig  = domain.ErrInvalidConfig
)
