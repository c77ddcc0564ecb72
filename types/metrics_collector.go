package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// Methods may be called from several participants running in one process and
// must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	SessionMetrics
	TransportMetrics
}

// SessionMetrics defines metrics for participant lifecycle.
type SessionMetrics interface {
	// RecordPhaseTransition records a phase transition and the time spent in the previous phase.
	//
	// Parameters:
	//   - from: Phase being left
	//   - to: Phase being entered
	//   - duration: Seconds spent in the previous phase
	RecordPhaseTransition(from, to Phase, duration float64)

	// RecordRunResult records the outcome of one run ("success", "config_error", "transport_error", "stalled", "error").
	RecordRunResult(result string)

	// RecordComputeDuration records the local compute time in seconds.
	RecordComputeDuration(workload string, duration float64)
}

// TransportMetrics defines metrics for group communication.
type TransportMetrics interface {
	// RecordMessage records one message moved by a transport operation.
	//
	// Parameters:
	//   - op: Operation ("scatter", "broadcast", "send", "receive")
	//   - bytes: Encoded payload size
	RecordMessage(op string, bytes int)

	// RecordOperationDuration records how long a blocking transport call took, in seconds.
	RecordOperationDuration(op string, duration float64)

	// RecordTransportError records a failed transport operation.
	RecordTransportError(op string)
}
