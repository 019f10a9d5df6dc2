package observability

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ghalamif/mcap2mat/internal/domain"
	"github.com/ghalamif/mcap2mat/internal/ports"
)

func TestPromObsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewPromObs(reg, nil)

	obs.IncCounter(ports.MetricRecordsAdmitted, 5)
	if got := testutil.ToFloat64(obs.counters[ports.MetricRecordsAdmitted]); got != 5 {
		t.Fatalf("expected admitted counter 5, got %f", got)
	}

	obs.IncCounter(ports.MetricRecordsFiltered, 2)
	if got := testutil.ToFloat64(obs.counters[ports.MetricRecordsFiltered]); got != 2 {
		t.Fatalf("expected filtered counter 2, got %f", got)
	}

	obs.SetGauge(ports.MetricTopicsSeen, 3)
	if got := testutil.ToFloat64(obs.gauges[ports.MetricTopicsSeen]); got != 3 {
		t.Fatalf("expected topics gauge 3, got %f", got)
	}

	obs.ObserveLatency(ports.MetricMaterializeTime, 0.5)
	hCollector := obs.histos[ports.MetricMaterializeTime].(prometheus.Collector)
	if samples := testutil.CollectAndCount(hCollector); samples != 1 {
		t.Fatalf("expected materialize histogram to record 1 sample, got %d", samples)
	}

	obs.RecordDecoded(domain.EncodingJSON)
	obs.RecordDecoded(domain.EncodingJSON)
	obs.RecordDecoded(domain.EncodingRaw)
	if got := testutil.ToFloat64(obs.decoded.WithLabelValues("json")); got != 2 {
		t.Fatalf("expected 2 json records, got %f", got)
	}
	if got := testutil.ToFloat64(obs.decoded.WithLabelValues("raw")); got != 1 {
		t.Fatalf("expected 1 raw record, got %f", got)
	}

	obs.IncCounter("unknown_metric", 1)
	obs.SetGauge("unknown_gauge", 1)
}

func TestPromObsFallbackLogsWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	obs := NewPromObs(prometheus.NewRegistry(), zap.New(core))

	obs.RecordFallback("/radar", "demo.Radar", domain.EncodingProtobuf, errors.New("truncated"))

	if got := testutil.ToFloat64(obs.counters[ports.MetricDecodeFallback]); got != 1 {
		t.Fatalf("expected fallback counter 1, got %f", got)
	}
	entries := logs.FilterMessage("decode_fallback").All()
	if len(entries) != 1 {
		t.Fatalf("expected one fallback warning, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["topic"] != "/radar" || ctx["schema"] != "demo.Radar" || ctx["encoding"] != "protobuf" {
		t.Fatalf("unexpected fallback fields %v", ctx)
	}
	if ctx["error"] != "truncated" {
		t.Fatalf("expected error field, got %v", ctx["error"])
	}
}

func TestPromObsLogLevels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	obs := NewPromObs(prometheus.NewRegistry(), zap.New(core))

	obs.LogDebug("dropped_below_level")
	obs.LogInfo("output_written", ports.Field{Key: "records", Value: 3})
	obs.LogWarn("slow")
	obs.LogError("upload_failed", errors.New("denied"))

	all := logs.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 log entries, got %d", len(all))
	}
	if all[0].Level != zapcore.InfoLevel || all[0].ContextMap()["records"] != int64(3) {
		t.Fatalf("unexpected info entry %+v", all[0])
	}
	if all[1].Level != zapcore.WarnLevel || all[2].Level != zapcore.ErrorLevel {
		t.Fatalf("unexpected levels %v %v", all[1].Level, all[2].Level)
	}
}

func TestPromObsLogDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	obs := NewPromObs(prometheus.NewRegistry(), zap.New(core))

	obs.LogDebug("decode_fallback", ports.Field{Key: "topic", Value: "/p"})

	all := logs.All()
	if len(all) != 1 || all[0].Level != zapcore.DebugLevel {
		t.Fatalf("expected one debug entry, got %+v", all)
	}
	if all[0].ContextMap()["topic"] != "/p" {
		t.Fatalf("missing topic field: %+v", all[0].ContextMap())
	}
}

func TestWriteTextfile(t *testing.T) {
	obs := NewPromObs(prometheus.NewRegistry(), nil)
	obs.IncCounter(ports.MetricRecordsAdmitted, 7)

	path := filepath.Join(t.TempDir(), "mcap2mat.prom")
	if err := obs.WriteTextfile(path); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(raw), ports.MetricRecordsAdmitted+" 7") {
		t.Fatalf("expected admitted counter in textfile, got:\n%s", raw)
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := NewLogger("debug"); err != nil {
		t.Fatalf("debug level: %v", err)
	}
	if _, err := NewLogger("loud"); err == nil {
		t.Fatalf("expected invalid level to fail")
	}
}
