// Package metrics provides types.MetricsCollector implementations.
package metrics

import "github.com/arloliu/collective/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Used as the default when no collector is configured.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Example:
//
//	sess, err := collective.NewSession(cfg, tr, collective.WithMetrics(metrics.NewNop()))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// SessionMetrics implementation

// RecordPhaseTransition discards the phase transition metric.
func (n *NopMetrics) RecordPhaseTransition(_ /* from */, _ /* to */ types.Phase, _ /* duration */ float64) {
	// No-op
}

// RecordRunResult discards the run result metric.
func (n *NopMetrics) RecordRunResult(_ /* result */ string) {
	// No-op
}

// RecordComputeDuration discards the compute duration metric.
func (n *NopMetrics) RecordComputeDuration(_ /* workload */ string, _ /* duration */ float64) {
	// No-op
}

// TransportMetrics implementation

// RecordMessage discards the message metric.
func (n *NopMetrics) RecordMessage(_ /* op */ string, _ /* bytes */ int) {
	// No-op
}

// RecordOperationDuration discards the operation latency metric.
func (n *NopMetrics) RecordOperationDuration(_ /* op */ string, _ /* duration */ float64) {
	// No-op
}

// RecordTransportError discards the transport error metric.
func (n *NopMetrics) RecordTransportError(_ /* op */ string) {
	// No-op
}
