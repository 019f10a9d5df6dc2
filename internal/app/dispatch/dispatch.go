// Package dispatch picks a decoder for each message from its channel's
// encoding hint and degrades to raw bytes whenever decoding is impossible.
package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ghalamif/mcap2mat/internal/domain"
	"github.com/ghalamif/mcap2mat/internal/ports"
)

// SelectDecoder classifies a channel message encoding.
func SelectDecoder(hint string) domain.Encoding {
	enc := strings.ToLower(hint)
	switch {
	case strings.Contains(enc, "json"):
		return domain.EncodingJSON
	case strings.Contains(enc, "protobuf"), strings.Contains(enc, "proto"):
		return domain.EncodingProtobuf
	default:
		return domain.EncodingRaw
	}
}

// Decoded is the outcome of decoding one payload. Err is set when the
// payload was kept raw because a decoder failed.
type Decoded struct {
	Value    domain.Value
	Encoding domain.Encoding
	Err      error
}

// Dispatcher runs the decoder selected for a record. It is not safe for
// concurrent use.
type Dispatcher struct {
	registry ports.Registry
	obs      ports.Observability
	text     *textDecoder
	unknown  map[unknownKey]struct{}
}

type unknownKey struct {
	topic    string
	typeName string
}

// New returns a Dispatcher. A nil registry disables descriptor-typed decoding.
func New(registry ports.Registry, obs ports.Observability) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		obs:      obs,
		text:     newTextDecoder(),
		unknown:  make(map[unknownKey]struct{}),
	}
}

// Decode decodes msg with the decoder its encoding hint selects.
func (d *Dispatcher) Decode(msg *domain.Message) Decoded {
	return d.DecodeAs(msg.Topic, msg.Data, SelectDecoder(msg.MessageEncoding), msg.SchemaName)
}

// DecodeAs decodes payload with the given decoder kind.
func (d *Dispatcher) DecodeAs(topic string, payload []byte, kind domain.Encoding, typeName string) Decoded {
	var (
		val domain.Value
		err error
	)
	switch kind {
	case domain.EncodingJSON:
		val, err = d.text.decode(payload)
	case domain.EncodingProtobuf:
		if d.registry == nil || typeName == "" {
			return raw(payload, nil)
		}
		if !d.registry.HasType(typeName) {
			err = fmt.Errorf("%w: %s", domain.ErrUnknownType, typeName)
			key := unknownKey{topic: topic, typeName: typeName}
			if _, warned := d.unknown[key]; warned {
				if d.obs != nil {
					d.obs.IncCounter(ports.MetricDecodeFallback, 1)
					d.obs.LogDebug("decode_fallback",
						ports.Field{Key: "topic", Value: topic},
						ports.Field{Key: "schema", Value: typeName},
						ports.Field{Key: "error", Value: err.Error()},
					)
				}
				return raw(payload, err)
			}
			d.unknown[key] = struct{}{}
			break
		}
		val, err = d.registry.Decode(typeName, payload)
	default:
		return raw(payload, nil)
	}

	if err != nil {
		if !errors.Is(err, domain.ErrDecode) && !errors.Is(err, domain.ErrUnknownType) {
			err = fmt.Errorf("%w: %w", domain.ErrDecode, err)
		}
		if d.obs != nil {
			d.obs.RecordFallback(topic, typeName, kind, err)
		}
		return raw(payload, err)
	}
	return Decoded{Value: val, Encoding: kind}
}

func raw(payload []byte, err error) Decoded {
	return Decoded{Value: domain.Bytes(payload), Encoding: domain.EncodingRaw, Err: err}
}
