// Package pipeline implements the packet processing pipeline engine.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"firestige.xyz/wapdec/internal/core"
	"firestige.xyz/wapdec/internal/metrics"
	"firestige.xyz/wapdec/pkg/plugin"
)

const defaultBufferSize = 1024

// Decoder turns a raw frame into its L3/L4 envelope and application payload.
type Decoder interface {
	Decode(raw core.RawPacket) (core.DecodedPacket, error)
}

// Pipeline represents a single-threaded packet processing chain.
type Pipeline struct {
	id         int
	source     string
	capturer   plugin.Capturer
	decoder    Decoder
	parsers    []plugin.Parser
	processors []plugin.Processor
	reporters  []plugin.Reporter
	metrics    *Metrics

	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	done       chan struct{}
	captureErr error

	rawPacketChan chan core.RawPacket
}

// Config contains pipeline configuration.
type Config struct {
	ID         int
	Source     string
	Capturer   plugin.Capturer
	Decoder    Decoder
	Parsers    []plugin.Parser
	Processors []plugin.Processor
	Reporters  []plugin.Reporter
	BufferSize int // Raw packet channel buffer size
}

// New creates a new pipeline.
func New(cfg Config) *Pipeline {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	return &Pipeline{
		id:            cfg.ID,
		source:        cfg.Source,
		capturer:      cfg.Capturer,
		decoder:       cfg.Decoder,
		parsers:       cfg.Parsers,
		processors:    cfg.Processors,
		reporters:     cfg.Reporters,
		metrics:       NewMetrics(cfg.ID),
		done:          make(chan struct{}),
		rawPacketChan: make(chan core.RawPacket, cfg.BufferSize),
	}
}

// Start starts the capture and processing goroutines.
func (p *Pipeline) Start(ctx context.Context) error {
	if p.capturer == nil {
		return errors.New("pipeline has no capturer")
	}
	if p.decoder == nil {
		return errors.New("pipeline has no decoder")
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	slog.Info("pipeline starting", "pipeline_id", p.id, "source", p.source)

	p.wg.Add(2)
	go p.captureLoop()
	go p.processLoop()
	return nil
}

// Done is closed once every captured packet has been processed or the pipeline stops.
func (p *Pipeline) Done() <-chan struct{} {
	return p.done
}

// Stop stops the pipeline and flushes the reporters. It returns the capture error, if any.
func (p *Pipeline) Stop() error {
	slog.Info("pipeline stopping", "pipeline_id", p.id)
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	for _, reporter := range p.reporters {
		if err := reporter.Flush(context.Background()); err != nil {
			metrics.ReporterErrorsTotal.WithLabelValues(reporter.Name()).Inc()
			slog.Error("reporter flush failed", "reporter", reporter.Name(), "error", err)
		}
	}

	s := p.Stats()
	slog.Info("pipeline stopped", "pipeline_id", p.id,
		"received", s.Received, "decoded", s.Decoded, "parsed", s.Parsed, "reported", s.Reported)
	return p.captureErr
}

// Run starts the pipeline, waits until the capture source is exhausted or ctx is done,
// and stops it.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}
	select {
	case <-p.done:
	case <-ctx.Done():
	}
	return p.Stop()
}

// captureLoop reads packets from the capturer into the processing channel.
func (p *Pipeline) captureLoop() {
	defer p.wg.Done()

	if err := p.capturer.Capture(p.ctx, p.rawPacketChan); err != nil && p.ctx.Err() == nil {
		p.captureErr = fmt.Errorf("capture failed: %w", err)
		slog.Error("capture failed", "error", err, "pipeline_id", p.id)
	}
	close(p.rawPacketChan)
}

// processLoop is the main processing loop.
func (p *Pipeline) processLoop() {
	defer p.wg.Done()
	defer close(p.done)

	for {
		select {
		case <-p.ctx.Done():
			return

		case raw, ok := <-p.rawPacketChan:
			if !ok {
				return
			}
			p.metrics.inc(&p.metrics.Received, "received")
			if err := p.processPacket(raw); err != nil {
				slog.Debug("packet processing failed", "index", raw.Index, "error", err)
			}
		}
	}
}

// processPacket processes a single packet through the entire pipeline.
func (p *Pipeline) processPacket(raw core.RawPacket) error {
	start := time.Now()
	decoded, err := p.decoder.Decode(raw)
	switch {
	case errors.Is(err, core.ErrFragmentPending):
		p.metrics.inc(&p.metrics.Fragments, "fragment")
		metrics.ReassemblyFragmentsTotal.WithLabelValues("buffered").Inc()
		return nil
	case errors.Is(err, core.ErrFragmentLimited):
		p.metrics.inc(&p.metrics.Fragments, "fragment")
		metrics.ReassemblyFragmentsTotal.WithLabelValues("limited").Inc()
		return err
	case err != nil:
		p.metrics.inc(&p.metrics.DecodeErrors, "decode_error")
		return fmt.Errorf("decode failed: %w", err)
	}
	if decoded.Reassembled {
		metrics.ReassemblyFragmentsTotal.WithLabelValues("reassembled").Inc()
	}
	p.metrics.inc(&p.metrics.Decoded, "decoded")
	metrics.PipelineLatencySeconds.WithLabelValues("decode").Observe(time.Since(start).Seconds())

	start = time.Now()
	var (
		parsedPayload any
		parsedLabels  core.Labels
		payloadType   string
	)
	for _, parser := range p.parsers {
		if !parser.CanHandle(&decoded) {
			continue
		}
		payload, labels, err := parser.Handle(&decoded)
		if err != nil {
			p.metrics.inc(&p.metrics.ParseErrors, "parse_error")
			slog.Debug("parser failed", "parser", parser.Name(), "index", decoded.Index, "error", err)
			// The labels of a failed parse still describe what was decoded.
			if labels != nil {
				parsedPayload, parsedLabels, payloadType = payload, labels, parser.Name()
				break
			}
			continue
		}
		parsedPayload, parsedLabels, payloadType = payload, labels, parser.Name()
		p.metrics.inc(&p.metrics.Parsed, "parsed")
		break
	}
	metrics.PipelineLatencySeconds.WithLabelValues("parse").Observe(time.Since(start).Seconds())

	if payloadType == "" {
		parsedPayload = decoded.Payload
		payloadType = "raw"
	}
	if parsedLabels == nil {
		parsedLabels = make(core.Labels)
	}

	output := core.OutputPacket{
		Source:      p.source,
		Index:       decoded.Index,
		PipelineID:  p.id,
		Timestamp:   decoded.Timestamp,
		SrcIP:       decoded.IP.SrcIP,
		DstIP:       decoded.IP.DstIP,
		SrcPort:     decoded.Transport.SrcPort,
		DstPort:     decoded.Transport.DstPort,
		Protocol:    decoded.IP.Protocol,
		Labels:      parsedLabels,
		PayloadType: payloadType,
		Payload:     parsedPayload,
		RawPayload:  decoded.Payload,
	}

	for _, processor := range p.processors {
		keep := processor.Process(&output)
		p.metrics.inc(&p.metrics.Processed, "processed")
		if !keep {
			p.metrics.inc(&p.metrics.Dropped, "dropped")
			return nil
		}
	}

	start = time.Now()
	for _, reporter := range p.reporters {
		if err := reporter.Report(p.ctx, &output); err != nil {
			p.metrics.inc(&p.metrics.ReportErrors, "report_error")
			metrics.ReporterErrorsTotal.WithLabelValues(reporter.Name()).Inc()
			slog.Error("reporter failed", "reporter", reporter.Name(), "error", err)
		}
	}
	p.metrics.inc(&p.metrics.Reported, "reported")
	metrics.PipelineLatencySeconds.WithLabelValues("report").Observe(time.Since(start).Seconds())
	return nil
}

// Stats returns pipeline statistics.
func (p *Pipeline) Stats() Stats {
	return p.metrics.snapshot()
}
