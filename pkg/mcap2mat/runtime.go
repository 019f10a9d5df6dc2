package mcap2mat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ghalamif/mcap2mat/internal/adapters/catalog"
	"github.com/ghalamif/mcap2mat/internal/adapters/descriptor"
	"github.com/ghalamif/mcap2mat/internal/adapters/matfile"
	"github.com/ghalamif/mcap2mat/internal/adapters/mcapsource"
	"github.com/ghalamif/mcap2mat/internal/adapters/objectstore"
	"github.com/ghalamif/mcap2mat/internal/adapters/observability"
	"github.com/ghalamif/mcap2mat/internal/app/config"
	"github.com/ghalamif/mcap2mat/internal/app/dispatch"
	"github.com/ghalamif/mcap2mat/internal/app/pipeline"
	"github.com/ghalamif/mcap2mat/internal/domain"
	"github.com/ghalamif/mcap2mat/internal/ports"
)

// RuntimeOption customizes the dependencies used by Runtime.
type RuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	source        Source
	sink          Sink
	registry      Registry
	observability Observability
	catalog       Catalog
	publisher     Publisher
	registerer    prometheus.Registerer
}

// WithSource replaces the MCAP file source, e.g. with an in-memory stream.
func WithSource(src Source) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.source = src
	}
}

// WithSink injects a custom sink so the output can go anywhere, not only to a MAT-file.
func WithSink(s Sink) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.sink = s
	}
}

// WithRegistry supplies a prebuilt descriptor registry instead of loading one from config.
func WithRegistry(r Registry) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.registry = r
	}
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs Observability) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.observability = obs
	}
}

// WithCatalog records finished runs in c instead of the configured Postgres catalog.
func WithCatalog(c Catalog) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.catalog = c
	}
}

// WithPublisher publishes the output with p instead of the configured S3 upload.
func WithPublisher(p Publisher) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.publisher = p
	}
}

// WithRegisterer registers the default metrics on reg rather than on a
// private registry.
func WithRegisterer(reg prometheus.Registerer) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.registerer = reg
	}
}

// Runtime wires source → filter → dispatch → accumulator → sink for one
// conversion and runs the optional publish and catalog steps afterwards.
type Runtime struct {
	cfg  *Config
	obs  ports.Observability
	prom *observability.PromObs
	ovr  runtimeOverrides
}

// NewRuntime bootstraps the default adapters (MCAP source, MAT-file sink,
// zap + Prometheus observability). Adapters that need I/O are created by Run.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	rt := &Runtime{cfg: cfg, ovr: overrides}
	if overrides.observability != nil {
		rt.obs = overrides.observability
	} else {
		logger, err := observability.NewLogger(cfg.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("%w: log level: %w", domain.ErrInvalidConfig, err)
		}
		reg := overrides.registerer
		if reg == nil {
			reg = prometheus.NewRegistry()
		}
		rt.prom = observability.NewPromObs(reg, logger)
		rt.obs = rt.prom
	}
	return rt, nil
}

// Run performs the conversion. Only source, descriptor, output and upload
// failures are returned; catalog and metrics textfile failures are logged.
func (r *Runtime) Run(ctx context.Context) (*Result, error) {
	if r == nil {
		return nil, fmt.Errorf("runtime is nil")
	}
	started := time.Now()
	runID := uuid.NewString()
	r.obs.LogInfo("run_started",
		ports.Field{Key: "run_id", Value: runID},
		ports.Field{Key: "input", Value: r.cfg.Input})

	defer r.flushMetrics()

	registry, err := r.buildRegistry(ctx)
	if err != nil {
		return nil, err
	}

	src := r.ovr.source
	if src == nil {
		src, err = mcapsource.Open(r.cfg.Input)
		if err != nil {
			return nil, err
		}
	}

	snk := r.ovr.sink
	if snk == nil && !r.cfg.DryRun {
		snk = matfile.NewMATSink(r.cfg.Output, r.cfg.Compress)
	}

	opts := pipeline.Options{
		Topics:  r.cfg.TopicFilter(),
		KeepRaw: r.cfg.KeepRaw,
		DryRun:  r.cfg.DryRun,
	}
	if tr := r.cfg.TimeRange; tr != nil {
		opts.Window = pipeline.Window{Start: tr.Start, End: tr.End}
	}

	res, err := pipeline.RunConversion(src, dispatch.New(registry, r.obs), snk, opts, r.obs)
	if err != nil {
		r.obs.LogError("run_failed", err, ports.Field{Key: "run_id", Value: runID})
		return nil, err
	}
	if res.DryRun {
		return res, nil
	}

	if err := r.publish(ctx); err != nil {
		r.obs.LogError("upload_failed", err, ports.Field{Key: "run_id", Value: runID})
		return nil, err
	}

	r.recordRun(ctx, ports.RunSummary{
		RunID:      runID,
		Input:      r.cfg.Input,
		Output:     r.cfg.Output,
		Topics:     res.Topics,
		Records:    res.Records,
		Fallbacks:  res.Fallbacks,
		Compressed: r.cfg.Compress,
		StartedAt:  started,
		FinishedAt: time.Now(),
	})
	return res, nil
}

// buildRegistry returns nil when no descriptors are configured so that
// descriptor-typed channels are passed through raw.
func (r *Runtime) buildRegistry(ctx context.Context) (ports.Registry, error) {
	if r.ovr.registry != nil {
		return r.ovr.registry, nil
	}
	if !r.cfg.UsesRegistry() {
		return nil, nil
	}

	reg := descriptor.NewRegistry()
	if r.cfg.ProtoSet != "" {
		if err := reg.LoadSet(r.cfg.ProtoSet); err != nil {
			return nil, err
		}
	}
	if err := reg.LoadSearchPaths(ctx, r.cfg.ProtoPaths); err != nil {
		return nil, err
	}
	r.obs.SetGauge(ports.MetricRegistryTypes, float64(reg.TypeCount()))
	r.obs.LogInfo("registry_loaded", ports.Field{Key: "types", Value: reg.TypeCount()})
	return reg, nil
}

func (r *Runtime) publish(ctx context.Context) error {
	pub := r.ovr.publisher
	if pub == nil {
		if r.cfg.Upload.URL == "" {
			return nil
		}
		// A custom sink never wrote cfg.Output; only an injected publisher
		// knows what to do with its result.
		if r.ovr.sink != nil {
			r.obs.LogWarn("upload_skipped",
				ports.Field{Key: "url", Value: r.cfg.Upload.URL},
				ports.Field{Key: "reason", Value: "custom sink"})
			return nil
		}
		bucket, key, err := config.ParseS3URL(r.cfg.Upload.URL)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrOutputWrite, err)
		}
		s3pub, err := objectstore.NewS3Publisher(ctx, objectstore.S3Config{
			Bucket:          bucket,
			Key:             key,
			Region:          r.cfg.Upload.Region,
			Endpoint:        r.cfg.Upload.Endpoint,
			ForcePathStyle:  r.cfg.Upload.ForcePathStyle,
			AccessKeyID:     r.cfg.Upload.AccessKeyID,
			SecretAccessKey: r.cfg.Upload.SecretAccessKey,
			SessionToken:    r.cfg.Upload.SessionToken,
		})
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrOutputWrite, err)
		}
		pub = s3pub
	}
	if err := pub.Publish(ctx, r.cfg.Output); err != nil {
		return fmt.Errorf("%w: publish: %w", domain.ErrOutputWrite, err)
	}
	r.obs.LogInfo("output_published", ports.Field{Key: "path", Value: r.cfg.Output})
	return nil
}

func (r *Runtime) recordRun(ctx context.Context, run ports.RunSummary) {
	cat := r.ovr.catalog
	if cat == nil {
		if r.cfg.Catalog.ConnString == "" {
			return
		}
		pg, err := catalog.Open(ctx, r.cfg.Catalog.ConnString, r.cfg.Catalog.Table)
		if err != nil {
			r.obs.LogError("catalog_open_failed", err)
			return
		}
		defer func() {
			if err := pg.Close(); err != nil {
				r.obs.LogError("catalog_close_failed", err)
			}
		}()
		cat = pg
	}
	if err := cat.RecordRun(ctx, run); err != nil {
		r.obs.LogError("catalog_record_failed", err, ports.Field{Key: "run_id", Value: run.RunID})
		return
	}
	r.obs.LogInfo("run_recorded", ports.Field{Key: "run_id", Value: run.RunID})
}

func (r *Runtime) flushMetrics() {
	if r.prom == nil {
		return
	}
	if path := r.cfg.Metrics.Textfile; path != "" {
		if err := r.prom.WriteTextfile(path); err != nil {
			r.obs.LogError("metrics_textfile_failed", err, ports.Field{Key: "path", Value: path})
		}
	}
	_ = r.prom.Sync()
}
