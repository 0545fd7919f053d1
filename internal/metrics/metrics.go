// Package metrics implements Prometheus metrics.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"firestige.xyz/wapdec/internal/core"
)

var (
	// CapturePacketsTotal counts frames read by a capturer, by outcome.
	CapturePacketsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wapdec_capture_packets_total",
			Help: "Total number of frames read from capture sources",
		},
		[]string{"source", "result"}, // received / filtered / dropped
	)

	// PipelinePacketsTotal counts packets passing each pipeline stage.
	PipelinePacketsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wapdec_pipeline_packets_total",
			Help: "Total number of packets processed in pipeline",
		},
		[]string{"pipeline", "stage"},
	)

	// PipelineLatencySeconds measures per-packet stage latency.
	PipelineLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wapdec_pipeline_latency_seconds",
			Help:    "Latency of pipeline processing stages in seconds",
			Buckets: prometheus.ExponentialBuckets(0.000001, 2, 20), // 1µs to ~1s
		},
		[]string{"stage"},
	)

	// DecodeTotal counts decoder invocations by protocol and outcome.
	DecodeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wapdec_decode_total",
			Help: "Total number of decode calls",
		},
		[]string{"protocol", "result"}, // wsp / mmse / wbxml; ok / error
	)

	// FieldsTotal counts emitted fields by protocol.
	FieldsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wapdec_fields_total",
			Help: "Total number of decoded fields emitted",
		},
		[]string{"protocol"},
	)

	// DiagnosticsTotal counts field-local errors and aborting errors by kind.
	DiagnosticsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wapdec_diagnostics_total",
			Help: "Total number of decode diagnostics",
		},
		[]string{"protocol", "kind"},
	)

	// ReassemblyFragmentsTotal counts IPv4 fragments by outcome.
	ReassemblyFragmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wapdec_reassembly_fragments_total",
			Help: "Total number of IPv4 fragments seen by the decoder",
		},
		[]string{"result"}, // buffered / limited / error
	)

	// CorrelationEntries tracks MMS transactions awaiting their counterpart PDU.
	CorrelationEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wapdec_correlation_entries",
			Help: "Number of MMS transactions held for request/confirmation correlation",
		},
	)

	// ReporterErrorsTotal counts reporter errors by name.
	ReporterErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wapdec_reporter_errors_total",
			Help: "Total number of reporter errors",
		},
		[]string{"reporter"},
	)
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{core.ErrTruncated, "truncated"},
	{core.ErrUnsupportedVersion, "unsupported_version"},
	{core.ErrReservedToken, "reserved_token"},
	{core.ErrNestingTooDeep, "nesting_too_deep"},
	{core.ErrNotMMSE, "not_mmse"},
	{core.ErrNotWSPPush, "not_wsp_push"},
	{core.ErrNotWBXML, "not_wbxml"},
	{core.ErrOversizedVarint, "oversized_varint"},
	{core.ErrMalformedHeader, "malformed_header"},
	{core.ErrValueRange, "value_range"},
	{core.ErrBadStringIndex, "bad_string_index"},
	{core.ErrUnexpectedEnd, "unexpected_end"},
	{core.ErrUnexpectedToken, "unexpected_token"},
}

// ErrorKind maps a decode error to a low-cardinality label value.
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "other"
}
