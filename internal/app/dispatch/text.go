package dispatch

import (
	"fmt"
	"unicode/utf8"

	"github.com/valyala/fastjson"

	"github.com/ghalamif/mcap2mat/internal/domain"
)

// textDecoder parses JSON payloads into domain values, keeping object keys
// in document order.
type textDecoder struct {
	parser fastjson.Parser
}

func newTextDecoder() *textDecoder {
	return &textDecoder{}
}

func (t *textDecoder) decode(payload []byte) (domain.Value, error) {
	if !utf8.Valid(payload) {
		return nil, fmt.Errorf("%w: payload is not valid UTF-8", domain.ErrDecode)
	}
	// ParseBytes is lenient with escapes, leading zeros and nan.
	if err := fastjson.ValidateBytes(payload); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}
	v, err := t.parser.ParseBytes(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}
	return convertJSON(v), nil
}

// convertJSON copies v out of the parser's buffers; the parser reuses them on
// the next call.
func convertJSON(v *fastjson.Value) domain.Value {
	switch v.Type() {
	case fastjson.TypeObject:
		obj := v.GetObject()
		out := make(domain.Mapping, 0, obj.Len())
		obj.Visit(func(key []byte, child *fastjson.Value) {
			out = append(out, domain.Entry{Key: string(key), Value: convertJSON(child)})
		})
		return out
	case fastjson.TypeArray:
		items := v.GetArray()
		out := make(domain.Sequence, len(items))
		for i, item := range items {
			out[i] = convertJSON(item)
		}
		return out
	case fastjson.TypeString:
		return domain.String(v.GetStringBytes())
	case fastjson.TypeNumber:
		return convertNumber(v)
	case fastjson.TypeTrue:
		return domain.Bool(true)
	case fastjson.TypeFalse:
		return domain.Bool(false)
	default:
		return domain.Null{}
	}
}

// convertNumber keeps integral literals exact and falls back to a double for
// fractions, exponents and integers beyond uint64.
func convertNumber(v *fastjson.Value) domain.Value {
	if i, err := v.Int64(); err == nil {
		return domain.Int(i)
	}
	if u, err := v.Uint64(); err == nil {
		return domain.Uint(u)
	}
	return domain.Number(v.GetFloat64())
}
