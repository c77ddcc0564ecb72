package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/collective/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use, so constructing a
// PrometheusCollector never touches the registry.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	phaseTransitions *prometheus.CounterVec
	phaseDuration    *prometheus.HistogramVec
	runResults       *prometheus.CounterVec
	computeDuration  *prometheus.HistogramVec
	messages         *prometheus.CounterVec
	messageBytes     *prometheus.CounterVec
	opDuration       *prometheus.HistogramVec
	transportErrors  *prometheus.CounterVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Metrics namespace (defaults to "collective" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "collective"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.phaseTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "session",
			Name:      "phase_transitions_total",
			Help:      "Total participant phase transitions by source and target phase.",
		}, []string{"from", "to"})

		p.phaseDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "session",
			Name:      "phase_duration_seconds",
			Help:      "Time spent in a phase before leaving it.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10), // 0.5ms .. ~2m
		}, []string{"phase"})

		p.runResults = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "session",
			Name:      "runs_total",
			Help:      "Run outcomes (success, config_error, transport_error, stalled, error).",
		}, []string{"result"})

		p.computeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "session",
			Name:      "compute_duration_seconds",
			Help:      "Local compute unit latency by workload.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"workload"})

		p.messages = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "transport",
			Name:      "messages_total",
			Help:      "Messages moved by transport operation.",
		}, []string{"op"})

		p.messageBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "transport",
			Name:      "message_bytes_total",
			Help:      "Encoded payload bytes moved by transport operation.",
		}, []string{"op"})

		p.opDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "transport",
			Name:      "operation_duration_seconds",
			Help:      "Blocking time of transport operations, including time waiting for peers.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"op"})

		p.transportErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "transport",
			Name:      "errors_total",
			Help:      "Failed transport operations.",
		}, []string{"op"})

		p.reg.MustRegister(p.phaseTransitions)
		p.reg.MustRegister(p.phaseDuration)
		p.reg.MustRegister(p.runResults)
		p.reg.MustRegister(p.computeDuration)
		p.reg.MustRegister(p.messages)
		p.reg.MustRegister(p.messageBytes)
		p.reg.MustRegister(p.opDuration)
		p.reg.MustRegister(p.transportErrors)
	})
}

// RecordPhaseTransition counts the transition and observes the time spent in from.
func (p *PrometheusCollector) RecordPhaseTransition(from, to types.Phase, duration float64) {
	p.ensureRegistered()
	p.phaseTransitions.WithLabelValues(from.String(), to.String()).Inc()
	p.phaseDuration.WithLabelValues(from.String()).Observe(duration)
}

// RecordRunResult counts a run outcome.
func (p *PrometheusCollector) RecordRunResult(result string) {
	p.ensureRegistered()
	p.runResults.WithLabelValues(result).Inc()
}

// RecordComputeDuration observes local compute latency.
func (p *PrometheusCollector) RecordComputeDuration(workload string, duration float64) {
	p.ensureRegistered()
	p.computeDuration.WithLabelValues(workload).Observe(duration)
}

// RecordMessage counts one message and its payload bytes.
func (p *PrometheusCollector) RecordMessage(op string, bytes int) {
	p.ensureRegistered()
	p.messages.WithLabelValues(op).Inc()
	p.messageBytes.WithLabelValues(op).Add(float64(bytes))
}

// RecordOperationDuration observes transport call latency.
func (p *PrometheusCollector) RecordOperationDuration(op string, duration float64) {
	p.ensureRegistered()
	p.opDuration.WithLabelValues(op).Observe(duration)
}

// RecordTransportError counts a failed transport call.
func (p *PrometheusCollector) RecordTransportError(op string) {
	p.ensureRegistered()
	p.transportErrors.WithLabelValues(op).Inc()
}
