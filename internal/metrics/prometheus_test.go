package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/collective/types"
)

func TestNewPrometheus_Defaults(t *testing.T) {
	p := NewPrometheus(nil, "")

	require.Equal(t, "collective", p.namespace)
	require.Equal(t, prometheus.DefaultRegisterer, p.reg)
}

func TestPrometheusCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")

	p.RecordPhaseTransition(types.PhaseConfigured, types.PhaseDistributing, 0.01)
	p.RecordPhaseTransition(types.PhaseConfigured, types.PhaseDistributing, 0.02)
	p.RecordRunResult("success")
	p.RecordComputeDuration("matvec", 0.001)
	p.RecordMessage("scatter", 100)
	p.RecordMessage("scatter", 50)
	p.RecordOperationDuration("receive", 0.2)
	p.RecordTransportError("send")

	require.InDelta(t, 2, testutil.ToFloat64(p.phaseTransitions.WithLabelValues("Configured", "Distributing")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.runResults.WithLabelValues("success")), 0)
	require.InDelta(t, 2, testutil.ToFloat64(p.messages.WithLabelValues("scatter")), 0)
	require.InDelta(t, 150, testutil.ToFloat64(p.messageBytes.WithLabelValues("scatter")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.transportErrors.WithLabelValues("send")), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 8)
}
