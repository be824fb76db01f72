// Package config loads and validates the CLI's runtime configuration,
// mirroring the nested-struct-per-concern shape and Validate() contract
// the teacher's own internal/config.Config uses, loaded through
// github.com/spf13/viper instead of hand-rolled flag parsing.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration tree for containerctl.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Security SecurityConfig `mapstructure:"security"`
	Output   OutputConfig   `mapstructure:"output"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level string `mapstructure:"level"` // debug|info|warn|error
	JSON  bool   `mapstructure:"json"`
	File  string `mapstructure:"file"`
}

// CacheConfig controls the AD1 decompressed-item data cache.
type CacheConfig struct {
	// ItemCapacity is the fixed FIFO capacity for cached decompressed
	// AD1 item payloads.
	ItemCapacity int `mapstructure:"item_capacity"`
	// ParallelChunkThreshold is the chunk count at or above which AD1
	// item decompression switches from sequential to parallel.
	ParallelChunkThreshold int `mapstructure:"parallel_chunk_threshold"`
}

// SecurityConfig controls extract-path validation.
type SecurityConfig struct {
	// AllowOutsideBase disables the path-traversal guard on extract
	// destinations. Defaults to false; an examiner extracting to a
	// path outside the working directory on purpose must opt in
	// explicitly rather than have the guard silently bypassed.
	AllowOutsideBase bool `mapstructure:"allow_outside_base"`
}

// OutputConfig controls extract-operation destinations.
type OutputConfig struct {
	// BaseDir is the extract destination used when a caller supplies
	// none.
	BaseDir string `mapstructure:"base_dir"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", JSON: false},
		Cache: CacheConfig{
			ItemCapacity:           100,
			ParallelChunkThreshold: 4,
		},
		Security: SecurityConfig{AllowOutsideBase: false},
		Output:   OutputConfig{BaseDir: "."},
	}
}

// Load reads configuration from an optional file path, environment
// variables prefixed CONTAINERCTL_, and falls back to Default() values,
// following the same viper wiring the teacher uses for its own config
// manager.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CONTAINERCTL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	def := Default()
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.json", def.Logging.JSON)
	v.SetDefault("logging.file", def.Logging.File)
	v.SetDefault("cache.item_capacity", def.Cache.ItemCapacity)
	v.SetDefault("cache.parallel_chunk_threshold", def.Cache.ParallelChunkThreshold)
	v.SetDefault("security.allow_outside_base", def.Security.AllowOutsideBase)
	v.SetDefault("output.base_dir", def.Output.BaseDir)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field-level invariants, matching the
// Config.Validate() contract the teacher's config manager exposes.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid logging.level %q", c.Logging.Level)
	}
	if c.Cache.ItemCapacity <= 0 {
		return fmt.Errorf("config: cache.item_capacity must be positive, got %d", c.Cache.ItemCapacity)
	}
	if c.Cache.ParallelChunkThreshold <= 0 {
		return fmt.Errorf("config: cache.parallel_chunk_threshold must be positive, got %d", c.Cache.ParallelChunkThreshold)
	}
	if c.Output.BaseDir == "" {
		return fmt.Errorf("config: output.base_dir must not be empty")
	}
	return nil
}
