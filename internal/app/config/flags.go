package config

import (
	"flag"
	"strings"
)

// FromArgs builds a Config from command-line flags. When -config is given the
// file is loaded first and only flags that were set explicitly override it.
func FromArgs(name string, args []string) (*Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	var (
		cfgPath    = fs.String("config", "", "Optional YAML config file")
		in         = fs.String("in", "", "Path to input .mcap")
		out        = fs.String("out", "", "Path to output .mat")
		topics     = fs.String("topics", "", "Comma-separated topic filter; omit for all topics")
		timeRange  = fs.String("time-range", "", "start,end seconds filter; leave a side empty for an open bound (e.g. '1.0,' or ',5.0')")
		protoSet   = fs.String("proto-set", "", "Optional Protobuf FileDescriptorSet for decoding")
		protoPaths stringList
		keepRaw    = fs.Bool("keep-raw", false, "Include undecoded raw bytes in output")
		compress   = fs.Bool("compress", false, "Compress MAT variables (off by default for widest MATLAB compatibility)")
		dryRun     = fs.Bool("dry-run", false, "Inspect the input without writing a MAT file")
		logLevel   = fs.String("log-level", "", "Log level: debug, info, warn, error")
		metrics    = fs.String("metrics-file", "", "Write Prometheus metrics to this textfile at the end of the run")
		catalogDSN = fs.String("catalog-dsn", "", "Postgres connection string for the run catalog")
		upload     = fs.String("upload", "", "Upload the finished file to s3://bucket/key")
	)
	fs.Var(&protoPaths, "proto-path", "Directory containing .proto files (repeatable)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if *cfgPath != "" {
		loaded, err := read(*cfgPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "in":
			cfg.Input = *in
		case "out":
			cfg.Output = *out
		case "topics":
			cfg.Topics = strings.Split(*topics, ",")
		case "time-range":
			tr, err := ParseTimeRange(*timeRange)
			if err != nil {
				parseErr = err
				return
			}
			cfg.TimeRange = tr
		case "proto-set":
			cfg.ProtoSet = *protoSet
		case "proto-path":
			cfg.ProtoPaths = append(cfg.ProtoPaths, protoPaths...)
		case "keep-raw":
			cfg.KeepRaw = *keepRaw
		case "compress":
			cfg.Compress = *compress
		case "dry-run":
			cfg.DryRun = *dryRun
		case "log-level":
			cfg.Log.Level = *logLevel
		case "metrics-file":
			cfg.Metrics.Textfile = *metrics
		case "catalog-dsn":
			cfg.Catalog.ConnString = *catalogDSN
		case "upload":
			cfg.Upload.URL = *upload
		}
	})
	if parseErr != nil {
		return nil, parseErr
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
