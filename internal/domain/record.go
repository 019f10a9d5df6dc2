package domain

// Message is one entry pulled from the container stream together with the
// channel and schema metadata it was published under.
type Message struct {
	Topic           string
	MessageEncoding string
	SchemaName      string
	LogTime         int64
	Data            []byte
}

// Record is the canonical decoded unit flowing from dispatch into the
// accumulator. Encoding is the decoder that actually produced Value.
type Record struct {
	Topic    string
	LogTime  int64
	Encoding Encoding
	Schema   string
	Value    Value
	Raw      []byte

	// Degraded marks a record whose payload was kept raw because decoding
	// failed, as opposed to a payload that was never meant to be decoded.
	Degraded bool
}

// Encoding tags the decoder used for a record.
type Encoding uint8

const (
	EncodingRaw Encoding = iota
	EncodingJSON
	EncodingProtobuf
)

func (e Encoding) String() string {
	switch e {
	case EncodingJSON:
		return "json"
	case EncodingProtobuf:
		return "protobuf"
	default:
		return "raw"
	}
}
