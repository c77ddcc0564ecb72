package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/collective/types"
)

func TestNewNop(t *testing.T) {
	metrics := NewNop()

	require.NotNil(t, metrics)
	require.IsType(t, &NopMetrics{}, metrics)
}

func TestNopMetrics_DoesNotPanic(t *testing.T) {
	metrics := NewNop()

	require.NotPanics(t, func() {
		metrics.RecordPhaseTransition(types.PhaseInit, types.PhaseConfigured, 0.1)
		metrics.RecordPhaseTransition(types.Phase(999), types.Phase(1000), -1)
		metrics.RecordRunResult("success")
		metrics.RecordComputeDuration("vecsum", 0.002)
		metrics.RecordMessage("scatter", 128)
		metrics.RecordOperationDuration("receive", 1.5)
		metrics.RecordTransportError("send")
	})
}
