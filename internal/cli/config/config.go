package config

import (
	"fmt"
	"slices"

	"github.com/yndnr/mirrorcheck-go/internal/compare"
	"github.com/yndnr/mirrorcheck-go/internal/infra/confloader"
	"github.com/yndnr/mirrorcheck-go/internal/storage"
	"github.com/yndnr/mirrorcheck-go/internal/telemetry/logger"
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

var (
	logLevels     = []string{"debug", "info", "warn", "error"}
	logFormats    = []string{"text", "json"}
	outputFormats = []string{OutputText, OutputJSON, OutputYAML}
)

// Config is the mirrorcheck configuration.
type Config struct {
	Log     LogConfig     `koanf:"log"`
	Output  OutputConfig  `koanf:"output"`
	Compare CompareConfig `koanf:"compare"`
	Storage StorageConfig `koanf:"storage"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// LogConfig configures diagnostic logging on stderr.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// OutputConfig selects how the report is written to stdout.
type OutputConfig struct {
	Format string `koanf:"format"`
}

// CompareConfig tunes table comparison.
type CompareConfig struct {
	MaxDiffs       int   `koanf:"max_diffs"`
	MaxBytesPerSec int64 `koanf:"max_bytes_per_sec"`
}

// StorageConfig sizes the engine caches.
type StorageConfig struct {
	BlockCacheSize int64 `koanf:"block_cache_size"`
	IndexCacheSize int64 `koanf:"index_cache_size"`
}

// MetricsConfig configures the Prometheus textfile. An empty path disables it.
type MetricsConfig struct {
	Textfile string `koanf:"textfile"`
}

// Default returns the default configuration.
func Default() *Config {
	sopts := storage.DefaultOptions()
	return &Config{
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Output: OutputConfig{Format: OutputText},
		Compare: CompareConfig{
			MaxDiffs: compare.DefaultMaxDiffs,
		},
		Storage: StorageConfig{
			BlockCacheSize: sopts.BlockCacheSize,
			IndexCacheSize: sopts.IndexCacheSize,
		},
	}
}

// defaults flattens Default() for the lowest confloader layer.
func defaults() map[string]any {
	d := Default()
	return map[string]any{
		"log.level":                 d.Log.Level,
		"log.format":                d.Log.Format,
		"output.format":             d.Output.Format,
		"compare.max_diffs":         d.Compare.MaxDiffs,
		"compare.max_bytes_per_sec": d.Compare.MaxBytesPerSec,
		"storage.block_cache_size":  d.Storage.BlockCacheSize,
		"storage.index_cache_size":  d.Storage.IndexCacheSize,
		"metrics.textfile":          d.Metrics.Textfile,
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, MIRRORCHECK_* environment variables and overrides, in increasing
// priority. Overrides are keyed by dotted path, e.g. "log.level".
func Load(path string, overrides map[string]any) (*Config, error) {
	loader := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithDefaults(defaults()),
		confloader.WithOverrides(overrides),
	)

	cfg := &Config{}
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated values and limits.
func (c *Config) Validate() error {
	if !slices.Contains(logLevels, c.Log.Level) {
		return fmt.Errorf("invalid log.level %q: must be one of %v", c.Log.Level, logLevels)
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		return fmt.Errorf("invalid log.format %q: must be one of %v", c.Log.Format, logFormats)
	}
	if !slices.Contains(outputFormats, c.Output.Format) {
		return fmt.Errorf("invalid output.format %q: must be one of %v", c.Output.Format, outputFormats)
	}
	if c.Compare.MaxDiffs < 1 {
		return fmt.Errorf("invalid compare.max_diffs %d: must be at least 1", c.Compare.MaxDiffs)
	}
	if c.Compare.MaxBytesPerSec < 0 {
		return fmt.Errorf("invalid compare.max_bytes_per_sec %d: must not be negative", c.Compare.MaxBytesPerSec)
	}
	if c.Storage.BlockCacheSize < 0 || c.Storage.IndexCacheSize < 0 {
		return fmt.Errorf("invalid storage cache size: must not be negative")
	}
	return nil
}

// LoggerConfig returns the logger settings.
func (c *Config) LoggerConfig() logger.Config {
	lc := logger.DefaultConfig()
	lc.Level = c.Log.Level
	lc.Format = c.Log.Format
	return lc
}

// StorageOptions returns read-only engine options.
func (c *Config) StorageOptions() storage.Options {
	opts := storage.DefaultOptions()
	opts.ReadOnly = true
	opts.BlockCacheSize = c.Storage.BlockCacheSize
	opts.IndexCacheSize = c.Storage.IndexCacheSize
	return opts
}

// CompareOptions returns the comparator options.
func (c *Config) CompareOptions() compare.Options {
	opts := compare.DefaultOptions()
	opts.MaxDiffs = c.Compare.MaxDiffs
	opts.MaxBytesPerSec = c.Compare.MaxBytesPerSec
	return opts
}
