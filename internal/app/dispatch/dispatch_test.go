package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghalamif/mcap2mat/internal/domain"
	"github.com/ghalamif/mcap2mat/internal/ports"
)

func TestSelectDecoder(t *testing.T) {
	cases := map[string]domain.Encoding{
		"json":             domain.EncodingJSON,
		"JSON":             domain.EncodingJSON,
		"application/json": domain.EncodingJSON,
		"protobuf":         domain.EncodingProtobuf,
		"ProtoBuf":         domain.EncodingProtobuf,
		"proto":            domain.EncodingProtobuf,
		"cdr":              domain.EncodingRaw,
		"ros1":             domain.EncodingRaw,
		"":                 domain.EncodingRaw,
	}
	for hint, want := range cases {
		assert.Equal(t, want, SelectDecoder(hint), "hint %q", hint)
	}
}

func TestDecodeJSONKeepsKeyOrder(t *testing.T) {
	d := New(nil, &fakeObs{})
	msg := &domain.Message{
		Topic:           "/pose",
		MessageEncoding: "json",
		Data:            []byte(`{"z":1,"a":[true,null,"s"],"m":{"k":2.5}}`),
	}

	got := d.Decode(msg)
	require.NoError(t, got.Err)
	assert.Equal(t, domain.EncodingJSON, got.Encoding)

	want := domain.Mapping{
		{Key: "z", Value: domain.Int(1)},
		{Key: "a", Value: domain.Sequence{domain.Bool(true), domain.Null{}, domain.String("s")}},
		{Key: "m", Value: domain.Mapping{{Key: "k", Value: domain.Number(2.5)}}},
	}
	assert.Equal(t, domain.Value(want), got.Value)
}

func TestDecodeJSONValuesSurviveParserReuse(t *testing.T) {
	d := New(nil, &fakeObs{})
	first := d.DecodeAs("/a", []byte(`{"name":"first"}`), domain.EncodingJSON, "")
	_ = d.DecodeAs("/a", []byte(`{"name":"second-and-longer"}`), domain.EncodingJSON, "")

	name, ok := first.Value.(domain.Mapping).Get("name")
	require.True(t, ok)
	assert.Equal(t, domain.String("first"), name)
}

func TestDecodeInvalidJSONFallsBackToRaw(t *testing.T) {
	obs := &fakeObs{}
	d := New(nil, obs)
	payload := []byte(`{"broken":`)

	got := d.DecodeAs("/bad", payload, domain.EncodingJSON, "")
	assert.Equal(t, domain.EncodingRaw, got.Encoding)
	assert.Equal(t, domain.Value(domain.Bytes(payload)), got.Value)
	assert.True(t, errors.Is(got.Err, domain.ErrDecode))
	require.Len(t, obs.fallbacks, 1)
	assert.Equal(t, "/bad", obs.fallbacks[0])
}

func TestDecodeMalformedJSONFallsBackToRaw(t *testing.T) {
	payloads := []string{
		`{"a":"\q"}`,
		"{\"a\":\"x\x01y\"}",
		`{"a":01}`,
		`{"a":1.}`,
		`{"a":nan}`,
		`{"a":NaN}`,
		`{"a":Infinity}`,
		`[1,2,]`,
		`{"a":-}`,
		`{"a":1} trailing`,
	}
	for _, p := range payloads {
		obs := &fakeObs{}
		d := New(nil, obs)
		got := d.DecodeAs("/t", []byte(p), domain.EncodingJSON, "")
		assert.Equal(t, domain.EncodingRaw, got.Encoding, "payload %q", p)
		assert.Equal(t, domain.Value(domain.Bytes(p)), got.Value, "payload %q", p)
		assert.ErrorIs(t, got.Err, domain.ErrDecode, "payload %q", p)
		assert.Len(t, obs.fallbacks, 1, "payload %q", p)
	}
}

func TestDecodeJSONIntegersStayExact(t *testing.T) {
	d := New(nil, &fakeObs{})
	got := d.DecodeAs("/t", []byte(`{"stamp":1700000000123456789,"neg":-7,"big":18446744073709551615,"f":2.0,"e":1e3}`), domain.EncodingJSON, "")
	require.NoError(t, got.Err)

	m := got.Value.(domain.Mapping)
	stamp, _ := m.Get("stamp")
	assert.Equal(t, domain.Value(domain.Int(1700000000123456789)), stamp)
	neg, _ := m.Get("neg")
	assert.Equal(t, domain.Value(domain.Int(-7)), neg)
	big, _ := m.Get("big")
	assert.Equal(t, domain.Value(domain.Uint(18446744073709551615)), big)
	f, _ := m.Get("f")
	assert.Equal(t, domain.Value(domain.Number(2)), f)
	e, _ := m.Get("e")
	assert.Equal(t, domain.Value(domain.Number(1000)), e)
}

func TestDecodeInvalidUTF8FallsBackToRaw(t *testing.T) {
	obs := &fakeObs{}
	d := New(nil, obs)

	got := d.DecodeAs("/bin", []byte{'"', 0xff, '"'}, domain.EncodingJSON, "")
	assert.Equal(t, domain.EncodingRaw, got.Encoding)
	assert.Error(t, got.Err)
	assert.Len(t, obs.fallbacks, 1)
}

func TestDecodeProtobufWithoutRegistryIsSilentRaw(t *testing.T) {
	obs := &fakeObs{}
	d := New(nil, obs)

	got := d.DecodeAs("/p", []byte{0x08, 0x01}, domain.EncodingProtobuf, "demo.Point")
	assert.Equal(t, domain.EncodingRaw, got.Encoding)
	assert.NoError(t, got.Err)
	assert.Empty(t, obs.fallbacks)
}

func TestDecodeProtobufWithoutTypeNameIsSilentRaw(t *testing.T) {
	reg := &fakeRegistry{types: map[string]domain.Value{"demo.Point": domain.Mapping{}}}
	d := New(reg, &fakeObs{})

	got := d.DecodeAs("/p", []byte{0x08}, domain.EncodingProtobuf, "")
	assert.Equal(t, domain.EncodingRaw, got.Encoding)
	assert.NoError(t, got.Err)
	assert.Zero(t, reg.calls)
}

func TestDecodeProtobufUnknownTypeWarnsOncePerTopic(t *testing.T) {
	obs := &fakeObs{}
	reg := &fakeRegistry{types: map[string]domain.Value{}}
	d := New(reg, obs)

	for i := 0; i < 3; i++ {
		got := d.DecodeAs("/p", []byte{0x08}, domain.EncodingProtobuf, "demo.Missing")
		assert.Equal(t, domain.EncodingRaw, got.Encoding)
		assert.True(t, errors.Is(got.Err, domain.ErrUnknownType))
	}
	d.DecodeAs("/q", []byte{0x08}, domain.EncodingProtobuf, "demo.Missing")

	assert.Equal(t, []string{"/p", "/q"}, obs.fallbacks)
	assert.Equal(t, []string{"decode_fallback /p", "decode_fallback /p"}, obs.debugs)
	assert.Equal(t, 4.0, obs.counters[ports.MetricDecodeFallback])
	assert.Zero(t, reg.calls)
}

func TestDecodeProtobufSuccessAndFailure(t *testing.T) {
	obs := &fakeObs{}
	point := domain.Mapping{{Key: "x", Value: domain.Number(1)}}
	reg := &fakeRegistry{
		types: map[string]domain.Value{"demo.Point": point},
		fail:  map[string]bool{"demo.Broken": true},
	}
	reg.types["demo.Broken"] = nil
	d := New(reg, obs)

	ok := d.DecodeAs("/p", []byte{0x08}, domain.EncodingProtobuf, "demo.Point")
	require.NoError(t, ok.Err)
	assert.Equal(t, domain.EncodingProtobuf, ok.Encoding)
	assert.Equal(t, domain.Value(point), ok.Value)

	bad := d.DecodeAs("/b", []byte{0xff}, domain.EncodingProtobuf, "demo.Broken")
	assert.Equal(t, domain.EncodingRaw, bad.Encoding)
	assert.Equal(t, domain.Value(domain.Bytes{0xff}), bad.Value)
	assert.True(t, errors.Is(bad.Err, domain.ErrDecode))
	assert.Equal(t, []string{"/b"}, obs.fallbacks)
}

func TestDecodeRawPassthrough(t *testing.T) {
	d := New(nil, &fakeObs{})
	got := d.Decode(&domain.Message{Topic: "/cdr", MessageEncoding: "cdr", Data: []byte{1, 2, 3}})
	assert.Equal(t, domain.EncodingRaw, got.Encoding)
	assert.Equal(t, domain.Value(domain.Bytes{1, 2, 3}), got.Value)
	assert.NoError(t, got.Err)
}

type fakeRegistry struct {
	types map[string]domain.Value
	fail  map[string]bool
	calls int
}

func (f *fakeRegistry) HasType(name string) bool {
	_, ok := f.types[name]
	return ok
}

func (f *fakeRegistry) Decode(name string, _ []byte) (domain.Value, error) {
	f.calls++
	if f.fail[name] {
		return nil, errors.New("proto: cannot parse invalid wire-format data")
	}
	return f.types[name], nil
}

type fakeObs struct {
	fallbacks []string
	debugs    []string
	counters  map[string]float64
}

func (f *fakeObs) LogDebug(msg string, fields ...ports.Field) {
	for _, fl := range fields {
		if fl.Key == "topic" {
			f.debugs = append(f.debugs, msg+" "+fl.Value.(string))
		}
	}
}
func (f *fakeObs) LogInfo(string, ...ports.Field)         {}
func (f *fakeObs) LogWarn(string, ...ports.Field)         {}
func (f *fakeObs) LogError(string, error, ...ports.Field) {}
func (f *fakeObs) IncCounter(name string, v float64) {
	if f.counters == nil {
		f.counters = map[string]float64{}
	}
	f.counters[name] += v
}
func (f *fakeObs) ObserveLatency(string, float64) {}
func (f *fakeObs) SetGauge(string, float64)       {}
func (f *fakeObs) RecordDecoded(domain.Encoding)  {}
func (f *fakeObs) RecordFallback(topic, _ string, _ domain.Encoding, _ error) {
	f.fallbacks = append(f.fallbacks, topic)
	f.IncCounter(ports.MetricDecodeFallback, 1)
}
