package pipeline

import (
	"strconv"
	"sync/atomic"

	"firestige.xyz/wapdec/internal/metrics"
)

// Metrics contains per-pipeline counters. Each increment is mirrored to the Prometheus
// pipeline counter for the same stage.
type Metrics struct {
	PipelineID int

	Received     atomic.Uint64
	Decoded      atomic.Uint64
	DecodeErrors atomic.Uint64
	Fragments    atomic.Uint64 // Fragments held for reassembly or refused by the limiter
	Parsed       atomic.Uint64
	ParseErrors  atomic.Uint64
	Processed    atomic.Uint64
	Dropped      atomic.Uint64
	Reported     atomic.Uint64
	ReportErrors atomic.Uint64

	label string
}

// NewMetrics creates the counters for one pipeline.
func NewMetrics(pipelineID int) *Metrics {
	return &Metrics{PipelineID: pipelineID, label: strconv.Itoa(pipelineID)}
}

func (m *Metrics) inc(c *atomic.Uint64, stage string) {
	c.Add(1)
	metrics.PipelinePacketsTotal.WithLabelValues(m.label, stage).Inc()
}

// Reset resets all counters to zero.
func (m *Metrics) Reset() {
	m.Received.Store(0)
	m.Decoded.Store(0)
	m.DecodeErrors.Store(0)
	m.Fragments.Store(0)
	m.Parsed.Store(0)
	m.ParseErrors.Store(0)
	m.Processed.Store(0)
	m.Dropped.Store(0)
	m.Reported.Store(0)
	m.ReportErrors.Store(0)
}

// Stats represents pipeline statistics.
type Stats struct {
	Received     uint64
	Decoded      uint64
	DecodeErrors uint64
	Fragments    uint64
	Parsed       uint64
	ParseErrors  uint64
	Processed    uint64
	Dropped      uint64
	Reported     uint64
	ReportErrors uint64
}

func (m *Metrics) snapshot() Stats {
	return Stats{
		Received:     m.Received.Load(),
		Decoded:      m.Decoded.Load(),
		DecodeErrors: m.DecodeErrors.Load(),
		Fragments:    m.Fragments.Load(),
		Parsed:       m.Parsed.Load(),
		ParseErrors:  m.ParseErrors.Load(),
		Processed:    m.Processed.Load(),
		Dropped:      m.Dropped.Load(),
		Reported:     m.Reported.Load(),
		ReportErrors: m.ReportErrors.Load(),
	}
}
