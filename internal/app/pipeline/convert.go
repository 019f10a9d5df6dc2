package pipeline

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/ghalamif/mcap2mat/internal/app/dispatch"
	"github.com/ghalamif/mcap2mat/internal/app/naming"
	"github.com/ghalamif/mcap2mat/internal/domain"
	"github.com/ghalamif/mcap2mat/internal/ports"
)

// Options are the per-run knobs of the conversion loop.
type Options struct {
	Topics  map[string]struct{}
	Window  Window
	KeepRaw bool
	DryRun  bool
}

// Result summarises a finished run.
type Result struct {
	DryRun    bool
	Topics    []string
	Records   int
	Filtered  int
	Fallbacks int
	Output    *domain.Output
}

// SortedTopics returns the observed topics in lexical order.
func (r *Result) SortedTopics() []string {
	out := append([]string(nil), r.Topics...)
	sort.Strings(out)
	return out
}

// RunConversion pulls every message from src, filters, decodes and buckets
// it, then either reports the topics (dry run) or hands the named buckets to
// sink. src is closed once the stream is drained. Only stream and sink
// failures are returned; undecodable payloads are kept raw.
func RunConversion(src ports.Source, dec *dispatch.Dispatcher, sink ports.Sink, opts Options, obs ports.Observability) (*Result, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: source is nil", domain.ErrSourceOpen)
	}
	if sink == nil && !opts.DryRun {
		return nil, fmt.Errorf("%w: sink is nil", domain.ErrOutputWrite)
	}

	acc := NewAccumulator(opts.KeepRaw)
	res := &Result{DryRun: opts.DryRun}

	err := stream(src, dec, acc, opts, obs, res)
	if cerr := src.Close(); cerr != nil {
		if err == nil {
			obs.LogError("source_close_failed", cerr)
		} else {
			err = errors.Join(err, cerr)
		}
	}
	if err != nil {
		return nil, err
	}

	buckets := acc.Finalize()
	res.Topics = acc.Topics()
	obs.SetGauge(ports.MetricTopicsSeen, float64(len(buckets)))

	if opts.DryRun {
		obs.LogInfo("dry_run_complete",
			ports.Field{Key: "topics", Value: res.SortedTopics()},
			ports.Field{Key: "records", Value: res.Records})
		return res, nil
	}

	out := BuildOutput(buckets)
	start := time.Now()
	if err := sink.Write(out); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrOutputWrite, sink.Name(), err)
	}
	obs.ObserveLatency(ports.MetricMaterializeTime, time.Since(start).Seconds())
	obs.LogInfo("output_written",
		ports.Field{Key: "sink", Value: sink.Name()},
		ports.Field{Key: "topics", Value: len(out.Topics)},
		ports.Field{Key: "records", Value: res.Records})

	res.Output = out
	return res, nil
}

func stream(src ports.Source, dec *dispatch.Dispatcher, acc *Accumulator, opts Options, obs ports.Observability, res *Result) error {
	for {
		msg, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: read message: %w", domain.ErrSourceOpen, err)
		}

		if !Admit(msg.Topic, msg.LogTime, opts.Topics, opts.Window) {
			res.Filtered++
			obs.IncCounter(ports.MetricRecordsFiltered, 1)
			continue
		}

		d := dec.Decode(msg)
		rec := &domain.Record{
			Topic:    msg.Topic,
			LogTime:  msg.LogTime,
			Encoding: d.Encoding,
			Schema:   msg.SchemaName,
			Value:    d.Value,
			Degraded: d.Err != nil,
		}
		if opts.KeepRaw {
			rec.Raw = msg.Data
		}
		acc.Ingest(rec)

		res.Records++
		if rec.Degraded {
			res.Fallbacks++
		}
		obs.IncCounter(ports.MetricRecordsAdmitted, 1)
		obs.RecordDecoded(rec.Encoding)
	}
}

// BuildOutput names every bucket in first-seen order. The lookup table's
// own variable name is reserved so no topic can shadow it.
func BuildOutput(buckets []*domain.Bucket) *domain.Output {
	mapper := naming.NewMapper(domain.NameMapVariable)
	out := &domain.Output{Topics: make([]domain.NamedBucket, 0, len(buckets))}
	for _, b := range buckets {
		out.Topics = append(out.Topics, domain.NamedBucket{Name: mapper.Register(b.Topic), Bucket: b})
	}
	out.NameMap = mapper.Pairs()
	return out
}
