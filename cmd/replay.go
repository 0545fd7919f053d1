package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/wapdec/internal/config"
	"firestige.xyz/wapdec/internal/core/decoder"
	"firestige.xyz/wapdec/internal/metrics"
	"firestige.xyz/wapdec/internal/pipeline"
	"firestige.xyz/wapdec/pkg/plugin"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Decode the WAP traffic of a pcap or pcapng file",
	Long: `Replay a capture file through the decode pipeline:
capturer -> L2-L4 decoder (with IPv4 reassembly) -> parsers -> processors -> reporters.

The plugins are taken from the pipeline section of the config file; without one the
pipeline is pcapfile -> wap -> console.

Examples:
  wapdec replay -f push.pcap
  wapdec replay -f push.pcapng -o json
  wapdec replay -c wapdec.yml -f mms.pcap`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if replayFile != "" {
			cfg.Capture.File = replayFile
		}
		p, plugins, err := buildPipeline(cfg)
		if err != nil {
			return err
		}
		if err := startPlugins(ctx, plugins); err != nil {
			return err
		}
		defer stopPlugins(plugins)

		if cfg.Metrics.Enabled {
			srv := metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path)
			if err := srv.Start(ctx); err != nil {
				return err
			}
			defer srv.Stop(context.Background())
		}
		return runReplay(ctx, p, cmd.ErrOrStderr())
	},
}

var replayFile string

func init() {
	replayCmd.Flags().StringVarP(&replayFile, "file", "f", "", "capture file, - for stdin (overrides capture.file)")
}

// runner is the part of a pipeline the replay command drives.
type runner interface {
	Run(ctx context.Context) error
	Stats() pipeline.Stats
}

// runReplay runs r to completion and writes a summary to w.
func runReplay(ctx context.Context, r runner, w io.Writer) error {
	err := r.Run(ctx)
	s := r.Stats()
	fmt.Fprintf(w, "%d frames, %d decoded, %d fragments held, %d parsed, %d dropped, %d reported\n",
		s.Received, s.Decoded, s.Fragments, s.Parsed, s.Dropped, s.Reported)
	if s.DecodeErrors+s.ParseErrors+s.ReportErrors > 0 {
		fmt.Fprintf(w, "errors: %d decode, %d parse, %d report\n", s.DecodeErrors, s.ParseErrors, s.ReportErrors)
	}
	if err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}
	return nil
}

// buildPipeline instantiates and initializes the configured plugins. Global capture,
// decoder and output settings are passed to the built-in plugins unless their own
// config sets the same key.
func buildPipeline(c *config.GlobalConfig) (*pipeline.Pipeline, []plugin.Plugin, error) {
	pc := c.Pipeline
	var all []plugin.Plugin

	capFactory, err := plugin.GetCapturerFactory(pc.Capturer.Name)
	if err != nil {
		return nil, nil, err
	}
	capturer := capFactory()
	capCfg := withDefaults(pc.Capturer.Config, map[string]any{
		"file":   c.Capture.File,
		"ports":  c.Capture.WAPPorts,
		"filter": c.Capture.Filter,
	})
	if err := capturer.Init(capCfg); err != nil {
		return nil, nil, fmt.Errorf("capturer %s: %w", pc.Capturer.Name, err)
	}
	all = append(all, capturer)

	parsers := make([]plugin.Parser, 0, len(pc.Parsers))
	for _, p := range pc.Parsers {
		f, err := plugin.GetParserFactory(p.Name)
		if err != nil {
			return nil, nil, err
		}
		parser := f()
		pcfg := withDefaults(p.Config, map[string]any{
			"ports":                c.Capture.WAPPorts,
			"skip_token_mapping":   c.Decoder.SkipTokenMapping,
			"disable_body_parsing": c.Decoder.DisableBodyParsing,
			"max_body_bytes":       c.Decoder.MaxBodyBytes,
		})
		if err := parser.Init(pcfg); err != nil {
			return nil, nil, fmt.Errorf("parser %s: %w", p.Name, err)
		}
		parsers = append(parsers, parser)
		all = append(all, parser)
	}

	processors := make([]plugin.Processor, 0, len(pc.Processors))
	for _, p := range pc.Processors {
		f, err := plugin.GetProcessorFactory(p.Name)
		if err != nil {
			return nil, nil, err
		}
		proc := f()
		if err := proc.Init(p.Config); err != nil {
			return nil, nil, fmt.Errorf("processor %s: %w", p.Name, err)
		}
		processors = append(processors, proc)
		all = append(all, proc)
	}

	reporters := make([]plugin.Reporter, 0, len(pc.Reporters))
	for _, r := range pc.Reporters {
		f, err := plugin.GetReporterFactory(r.Name)
		if err != nil {
			return nil, nil, err
		}
		rep := f()
		if err := rep.Init(withDefaults(r.Config, map[string]any{"format": c.Output.Format})); err != nil {
			return nil, nil, fmt.Errorf("reporter %s: %w", r.Name, err)
		}
		reporters = append(reporters, rep)
		all = append(all, rep)
	}

	dec := decoder.NewDecoder(decoder.Config{
		Defrag:          c.Capture.Defrag,
		FragmentTimeout: c.Capture.FragmentTimeout,
		FragmentRateLimiterConfig: decoder.FragmentRateLimiterConfig{
			MaxFragsPerIP: c.Capture.MaxFragsPerIP,
		},
	})

	p := pipeline.NewBuilder().
		WithSource(c.Capture.File).
		WithCapturer(capturer).
		WithDecoder(dec).
		WithParsers(parsers...).
		WithProcessors(processors...).
		WithReporters(reporters...).
		Build()
	return p, all, nil
}

// withDefaults returns a copy of cfg with the keys of defaults it does not set.
func withDefaults(cfg, defaults map[string]any) map[string]any {
	out := make(map[string]any, len(cfg)+len(defaults))
	maps.Copy(out, defaults)
	maps.Copy(out, cfg)
	return out
}

func startPlugins(ctx context.Context, plugins []plugin.Plugin) error {
	for _, p := range plugins {
		if err := p.Start(ctx); err != nil {
			return fmt.Errorf("failed to start %s: %w", p.Name(), err)
		}
	}
	return nil
}

func stopPlugins(plugins []plugin.Plugin) {
	for i := len(plugins) - 1; i >= 0; i-- {
		if err := plugins[i].Stop(context.Background()); err != nil {
			slog.Warn("plugin stop failed", "plugin", plugins[i].Name(), "error", err)
		}
	}
}
