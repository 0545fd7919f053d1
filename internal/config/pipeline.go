package config

import (
	"fmt"

	"firestige.xyz/wapdec/internal/core"
)

// PipelineConfig names the plugins one replay pipeline is assembled from.
type PipelineConfig struct {
	Capturer   PluginConfig   `mapstructure:"capturer"`
	Parsers    []PluginConfig `mapstructure:"parsers"`
	Processors []PluginConfig `mapstructure:"processors"`
	Reporters  []PluginConfig `mapstructure:"reporters"`
}

// PluginConfig selects a registered plugin and carries its plugin-specific settings,
// decoded by the plugin itself in Init.
type PluginConfig struct {
	Name   string         `mapstructure:"name"`
	Config map[string]any `mapstructure:"config"`
}

// ApplyDefaults fills in the built-in plugins where nothing was configured.
func (pc *PipelineConfig) ApplyDefaults() {
	if pc.Capturer.Name == "" {
		pc.Capturer.Name = "pcapfile"
	}
	if len(pc.Parsers) == 0 {
		pc.Parsers = []PluginConfig{{Name: "wap"}}
	}
	if len(pc.Reporters) == 0 {
		pc.Reporters = []PluginConfig{{Name: "console"}}
	}
}

// Validate validates pipeline configuration.
func (pc *PipelineConfig) Validate() error {
	if pc.Capturer.Name == "" {
		return fmt.Errorf("%w: pipeline capturer name is required", core.ErrConfigInvalid)
	}
	if len(pc.Reporters) == 0 {
		return fmt.Errorf("%w: at least one reporter is required", core.ErrConfigInvalid)
	}
	for i, p := range pc.Parsers {
		if p.Name == "" {
			return fmt.Errorf("%w: parser[%d]: name is required", core.ErrConfigInvalid, i)
		}
	}
	for i, p := range pc.Processors {
		if p.Name == "" {
			return fmt.Errorf("%w: processor[%d]: name is required", core.ErrConfigInvalid, i)
		}
	}
	for i, r := range pc.Reporters {
		if r.Name == "" {
			return fmt.Errorf("%w: reporter[%d]: name is required", core.ErrConfigInvalid, i)
		}
	}
	return nil
}
