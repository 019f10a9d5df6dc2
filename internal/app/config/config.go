package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/ghalamif/mcap2mat/internal/domain"
)

// Config is the resolved, immutable set of run parameters.
type Config struct {
	Input      string        `yaml:"input"`
	Output     string        `yaml:"output"`
	Topics     []string      `yaml:"topics"`
	TimeRange  *TimeRange    `yaml:"time_range"`
	ProtoSet   string        `yaml:"proto_set"`
	ProtoPaths []string      `yaml:"proto_paths"`
	KeepRaw    bool          `yaml:"keep_raw"`
	Compress   bool          `yaml:"compress"`
	DryRun     bool          `yaml:"dry_run"`
	Log        LogConfig     `yaml:"log"`
	Metrics    MetricsConfig `yaml:"metrics"`
	Catalog    CatalogConfig `yaml:"catalog"`
	Upload     UploadConfig  `yaml:"upload"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

type CatalogConfig struct {
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
}

// UploadConfig targets an S3-compatible store. Credentials fall back to the
// default AWS chain when the static keys are empty.
type UploadConfig struct {
	URL             string `yaml:"url"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
}

// Load reads a YAML config file, applies defaults and validates it.
func Load(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) finish() error {
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Catalog.Table == "" {
		c.Catalog.Table = "conversions"
	}
	if c.Upload.Region == "" {
		c.Upload.Region = os.Getenv("AWS_REGION")
	}
	c.Topics = compact(c.Topics)
	c.ProtoPaths = compact(c.ProtoPaths)
}

func (c *Config) validate() error {
	var err error
	if c.Input == "" {
		err = multierr.Append(err, fmt.Errorf("input is required"))
	}
	if c.Output == "" && !c.DryRun {
		err = multierr.Append(err, fmt.Errorf("output is required unless dry_run is set"))
	}
	if c.TimeRange != nil {
		err = multierr.Append(err, c.TimeRange.validate())
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		err = multierr.Append(err, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if c.Upload.URL != "" {
		if _, _, perr := ParseS3URL(c.Upload.URL); perr != nil {
			err = multierr.Append(err, perr)
		}
	}
	return err
}

// TopicFilter returns the allow-list as a set, or nil when every topic is admitted.
func (c *Config) TopicFilter() map[string]struct{} {
	if len(c.Topics) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(c.Topics))
	for _, t := range c.Topics {
		set[t] = struct{}{}
	}
	return set
}

// UsesRegistry reports whether descriptor-typed decoding is possible.
func (c *Config) UsesRegistry() bool {
	return c.ProtoSet != "" || len(c.ProtoPaths) > 0
}

// ParseS3URL splits s3://bucket/key.
func ParseS3URL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("upload.url: %w", err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("upload.url %q must look like s3://bucket/key", raw)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("upload.url %q has no object key", raw)
	}
	return u.Host, key, nil
}

func compact(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
