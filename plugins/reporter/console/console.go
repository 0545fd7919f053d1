// Package console implements the console reporter.
// Writes output packets to stdout as text, JSON, YAML or CBOR.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"firestige.xyz/wapdec/internal/core"
	"firestige.xyz/wapdec/internal/render"
	"firestige.xyz/wapdec/pkg/plugin"
)

// ConsoleReporter outputs packets to the console.
type ConsoleReporter struct {
	name     string
	format   string
	renderer render.Renderer

	mu            sync.Mutex
	out           *bufio.Writer
	reportedCount atomic.Uint64
}

// Config represents console reporter configuration.
type Config struct {
	Format string `mapstructure:"format"` // text, json, yaml or cbor; default text
}

// NewConsoleReporter creates a new console reporter writing to stdout.
func NewConsoleReporter() plugin.Reporter {
	return New(os.Stdout)
}

// New creates a console reporter writing to w.
func New(w io.Writer) *ConsoleReporter {
	r, _ := render.New("text")
	return &ConsoleReporter{
		name:     "console",
		format:   "text",
		renderer: r,
		out:      bufio.NewWriter(w),
	}
}

// Name returns the plugin name.
func (r *ConsoleReporter) Name() string {
	return r.name
}

// Init initializes the reporter with configuration.
func (r *ConsoleReporter) Init(config map[string]any) error {
	if config == nil {
		return nil
	}
	format, ok := config["format"].(string)
	if !ok || format == "" {
		return nil
	}
	renderer, err := render.New(format)
	if err != nil {
		return fmt.Errorf("console: %w", err)
	}
	r.format = format
	r.renderer = renderer
	return nil
}

// Start starts the reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	slog.Debug("console reporter started", "format", r.format)
	return nil
}

// Stop flushes pending output.
func (r *ConsoleReporter) Stop(ctx context.Context) error {
	slog.Debug("console reporter stopped", "total_reported", r.reportedCount.Load())
	return r.Flush(ctx)
}

// Report renders one packet.
func (r *ConsoleReporter) Report(ctx context.Context, pkt *core.OutputPacket) error {
	if pkt == nil {
		return fmt.Errorf("nil packet")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.renderer.Render(r.out, render.FromPacket(pkt)); err != nil {
		return err
	}
	r.reportedCount.Add(1)
	return nil
}

// Flush writes buffered output.
func (r *ConsoleReporter) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.out.Flush()
}
