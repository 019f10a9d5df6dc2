package ports

import "github.com/ghalamif/mcap2mat/internal/domain"

type Observability interface {
	LogDebug(msg string, fields ...Field)
	LogInfo(msg string, fields ...Field)
	LogWarn(msg string, fields ...Field)
	LogError(msg string, err error, fields ...Field)

	IncCounter(name string, v float64)
	ObserveLatency(name string, seconds float64)

	SetGauge(name string, v float64)

	RecordDecoded(enc domain.Encoding)
	RecordFallback(topic string, schema string, hinted domain.Encoding, err error)
}

type Field struct {
	Key   string
	Value any
}

// Metric names understood by Observability implementations.
const (
	MetricRecordsAdmitted = "mcap2mat_records_admitted_total"
	MetricRecordsFiltered = "mcap2mat_records_filtered_total"
	MetricRecordsDecoded  = "mcap2mat_records_decoded_total"
	MetricDecodeFallback  = "mcap2mat_decode_fallback_total"
	MetricTopicsSeen      = "mcap2mat_topics_seen"
	MetricRegistryTypes   = "mcap2mat_registry_types"
	MetricMaterializeTime = "mcap2mat_materialize_seconds"
)
