// Package config handles global configuration loading using viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"firestige.xyz/wapdec/internal/core"
)

// GlobalConfig represents the top-level configuration.
// Maps to the `wapdec:` root key in YAML.
type GlobalConfig struct {
	Log      LogConfig      `mapstructure:"log"`
	Decoder  DecoderConfig  `mapstructure:"decoder"`
	Capture  CaptureConfig  `mapstructure:"capture"`
	Output   OutputConfig   `mapstructure:"output"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
}

// ─── WAP Decoding ───

// DecoderConfig holds the per-call options handed to the WBXML and MMSE decoders.
type DecoderConfig struct {
	SkipTokenMapping   bool `mapstructure:"skip_token_mapping"`   // Render tags and attributes numerically
	DisableBodyParsing bool `mapstructure:"disable_body_parsing"` // Keep WBXML bodies opaque
	MaxBodyBytes       int  `mapstructure:"max_body_bytes"`       // Cap on body bytes copied into the field tree; 0 = unlimited
}

// ─── Capture ───

// CaptureConfig configures pcap replay and the L2-L4 decoder.
type CaptureConfig struct {
	File            string        `mapstructure:"file"`
	WAPPorts        []int         `mapstructure:"wap_ports"` // UDP ports admitted by the BPF filter
	Filter          bool          `mapstructure:"filter"`    // Apply the port filter before decoding
	Defrag          bool          `mapstructure:"defrag"`
	FragmentTimeout time.Duration `mapstructure:"fragment_timeout"`
	MaxFragsPerIP   int           `mapstructure:"max_frags_per_ip"` // 0 = unlimited
}

// ─── Output ───

// OutputConfig selects how decoded packets are rendered.
type OutputConfig struct {
	Format string `mapstructure:"format"` // text / json / yaml / cbor
}

// ─── Metrics ───

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

// ─── Log ───

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string           `mapstructure:"level"`   // debug / info / warn / error
	Format  string           `mapstructure:"format"`  // json / text / pattern
	Pattern string           `mapstructure:"pattern"` // Layout for the pattern format
	Outputs LogOutputsConfig `mapstructure:"outputs"`
}

// LogOutputsConfig contains log output destinations besides stderr.
type LogOutputsConfig struct {
	File FileOutputConfig `mapstructure:"file"`
}

// FileOutputConfig configures file log output.
type FileOutputConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Path     string         `mapstructure:"path"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	MaxBackups int  `mapstructure:"max_backups"`
	Compress   bool `mapstructure:"compress"`
}

// ─── Loading ───

// configRoot is the top-level wrapper matching the YAML structure `wapdec: ...`.
type configRoot struct {
	Wapdec GlobalConfig `mapstructure:"wapdec"`
}

// Load loads configuration from path. An empty path yields the defaults, still subject to
// environment overrides (e.g. WAPDEC_LOG_LEVEL).
func Load(path string) (*GlobalConfig, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// The `wapdec.` key prefix maps to WAPDEC_ in env vars through the replacer.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Wapdec

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets default values. All keys use the "wapdec." prefix.
func setDefaults(v *viper.Viper) {
	v.SetDefault("wapdec.log.level", "info")
	v.SetDefault("wapdec.log.format", "text")
	v.SetDefault("wapdec.log.pattern", "%time [%level] %msg %field%n")
	v.SetDefault("wapdec.log.outputs.file.enabled", false)
	v.SetDefault("wapdec.log.outputs.file.path", "wapdec.log")
	v.SetDefault("wapdec.log.outputs.file.rotation.max_size_mb", 100)
	v.SetDefault("wapdec.log.outputs.file.rotation.max_age_days", 30)
	v.SetDefault("wapdec.log.outputs.file.rotation.max_backups", 5)
	v.SetDefault("wapdec.log.outputs.file.rotation.compress", true)

	v.SetDefault("wapdec.decoder.skip_token_mapping", false)
	v.SetDefault("wapdec.decoder.disable_body_parsing", false)
	v.SetDefault("wapdec.decoder.max_body_bytes", 0)

	v.SetDefault("wapdec.capture.wap_ports", []int{2948, 2949})
	v.SetDefault("wapdec.capture.filter", true)
	v.SetDefault("wapdec.capture.defrag", true)
	v.SetDefault("wapdec.capture.fragment_timeout", "30s")
	v.SetDefault("wapdec.capture.max_frags_per_ip", 0)

	v.SetDefault("wapdec.output.format", "text")

	v.SetDefault("wapdec.metrics.enabled", false)
	v.SetDefault("wapdec.metrics.listen", ":9091")
	v.SetDefault("wapdec.metrics.path", "/metrics")
}

// Valid enumerations.
var (
	LogLevels     = []string{"debug", "info", "warn", "error"}
	LogFormats    = []string{"json", "text", "pattern"}
	OutputFormats = []string{"text", "json", "yaml", "cbor"}
)

// ValidateAndApplyDefaults validates configuration and applies runtime defaults.
func (cfg *GlobalConfig) ValidateAndApplyDefaults() error {
	if !oneOf(cfg.Log.Level, LogLevels) {
		return fmt.Errorf("%w: log level %q (must be %s)", core.ErrConfigInvalid, cfg.Log.Level, strings.Join(LogLevels, "/"))
	}
	if !oneOf(cfg.Log.Format, LogFormats) {
		return fmt.Errorf("%w: log format %q (must be %s)", core.ErrConfigInvalid, cfg.Log.Format, strings.Join(LogFormats, "/"))
	}
	if cfg.Log.Outputs.File.Enabled && cfg.Log.Outputs.File.Path == "" {
		return fmt.Errorf("%w: log.outputs.file.path is required when file output is enabled", core.ErrConfigInvalid)
	}
	if !oneOf(cfg.Output.Format, OutputFormats) {
		return fmt.Errorf("%w: output format %q (must be %s)", core.ErrConfigInvalid, cfg.Output.Format, strings.Join(OutputFormats, "/"))
	}

	if cfg.Decoder.MaxBodyBytes < 0 {
		return fmt.Errorf("%w: decoder.max_body_bytes must not be negative", core.ErrConfigInvalid)
	}

	if len(cfg.Capture.WAPPorts) == 0 {
		return fmt.Errorf("%w: capture.wap_ports must list at least one port", core.ErrConfigInvalid)
	}
	for _, p := range cfg.Capture.WAPPorts {
		if p <= 0 || p > 65535 {
			return fmt.Errorf("%w: capture.wap_ports: invalid port %d", core.ErrConfigInvalid, p)
		}
	}
	if cfg.Capture.FragmentTimeout <= 0 {
		cfg.Capture.FragmentTimeout = 30 * time.Second
	}
	if cfg.Capture.MaxFragsPerIP < 0 {
		return fmt.Errorf("%w: capture.max_frags_per_ip must not be negative", core.ErrConfigInvalid)
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		return fmt.Errorf("%w: metrics.listen is required when metrics are enabled", core.ErrConfigInvalid)
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	cfg.Pipeline.ApplyDefaults()
	return cfg.Pipeline.Validate()
}

// Ports returns the WAP ports as uint16.
func (c CaptureConfig) Ports() []uint16 {
	out := make([]uint16, 0, len(c.WAPPorts))
	for _, p := range c.WAPPorts {
		out = append(out, uint16(p))
	}
	return out
}

func oneOf(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}
