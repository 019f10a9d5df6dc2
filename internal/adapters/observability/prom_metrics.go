package observability

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ghalamif/mcap2mat/internal/domain"
	"github.com/ghalamif/mcap2mat/internal/ports"
)

type PromObs struct {
	log      *zap.Logger
	gatherer prometheus.Gatherer
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
	decoded  *prometheus.CounterVec
}

// NewPromObs registers the converter's collectors on reg. When reg is also a
// Gatherer the metrics can later be dumped with WriteTextfile. A nil logger
// discards log output.
func NewPromObs(reg prometheus.Registerer, logger *zap.Logger) *PromObs {
	if logger == nil {
		logger = zap.NewNop()
	}
	admitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: ports.MetricRecordsAdmitted,
		Help: "Records that passed the topic and time filters.",
	})
	filtered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: ports.MetricRecordsFiltered,
		Help: "Records rejected by the topic or time filters.",
	})
	fallback := prometheus.NewCounter(prometheus.CounterOpts{
		Name: ports.MetricDecodeFallback,
		Help: "Records kept as raw bytes because decoding failed.",
	})
	decoded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: ports.MetricRecordsDecoded,
		Help: "Records accumulated, by effective encoding.",
	}, []string{"encoding"})
	topics := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: ports.MetricTopicsSeen,
		Help: "Distinct topics with at least one admitted record.",
	})
	types := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: ports.MetricRegistryTypes,
		Help: "Message types known to the descriptor registry.",
	})
	materialize := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    ports.MetricMaterializeTime,
		Help:    "Time spent writing the output file.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
	})

	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	reg.MustRegister(admitted, filtered, fallback, decoded, topics, types, materialize)

	p := &PromObs{
		log: logger,
		counters: map[string]prometheus.Counter{
			ports.MetricRecordsAdmitted: admitted,
			ports.MetricRecordsFiltered: filtered,
			ports.MetricDecodeFallback:  fallback,
		},
		gauges: map[string]prometheus.Gauge{
			ports.MetricTopicsSeen:    topics,
			ports.MetricRegistryTypes: types,
		},
		histos: map[string]prometheus.Observer{
			ports.MetricMaterializeTime: materialize,
		},
		decoded: decoded,
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		p.gatherer = g
	}
	return p
}

func zapFields(fields []ports.Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = zap.Any(f.Key, f.Value)
	}
	return out
}

func (p *PromObs) LogDebug(msg string, fields ...ports.Field) {
	p.log.Debug(msg, zapFields(fields)...)
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	p.log.Info(msg, zapFields(fields)...)
}

func (p *PromObs) LogWarn(msg string, fields ...ports.Field) {
	p.log.Warn(msg, zapFields(fields)...)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	p.log.Error(msg, append(zapFields(fields), zap.Error(err))...)
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func (p *PromObs) RecordDecoded(enc domain.Encoding) {
	p.decoded.WithLabelValues(enc.String()).Inc()
}

func (p *PromObs) RecordFallback(topic, schema string, hinted domain.Encoding, err error) {
	p.IncCounter(ports.MetricDecodeFallback, 1)
	p.log.Warn("decode_fallback",
		zap.String("topic", topic),
		zap.String("schema", schema),
		zap.String("encoding", hinted.String()),
		zap.Error(err))
}

// WriteTextfile dumps every gathered metric in the node-exporter textfile
// format.
func (p *PromObs) WriteTextfile(path string) error {
	if p.gatherer == nil {
		return errors.New("metrics registerer cannot be gathered")
	}
	return prometheus.WriteToTextfile(path, p.gatherer)
}

// Sync flushes buffered log entries.
func (p *PromObs) Sync() error {
	return p.log.Sync()
}
