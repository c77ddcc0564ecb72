package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseInit, "Init"},
		{PhaseConfigured, "Configured"},
		{PhaseDistributing, "Distributing"},
		{PhaseComputing, "Computing"},
		{PhaseCollecting, "Collecting"},
		{PhaseReporting, "Reporting"},
		{PhaseDone, "Done"},
		{Phase(999), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, tt.phase.String())
		})
	}
}

func TestPhaseIsCommunicating(t *testing.T) {
	require.True(t, PhaseDistributing.IsCommunicating())
	require.True(t, PhaseCollecting.IsCommunicating())
	require.False(t, PhaseComputing.IsCommunicating())
	require.False(t, PhaseReporting.IsCommunicating())
}

func TestIdentity(t *testing.T) {
	id := Identity{Rank: 0, Host: "node-a"}
	require.True(t, id.IsCoordinator())
	require.Equal(t, "0@node-a", id.String())

	other := Identity{Rank: 3, Host: "node-b"}
	require.False(t, other.IsCoordinator())
}

func TestTagString(t *testing.T) {
	require.Equal(t, "identity", TagIdentity.String())
	require.Equal(t, "result", TagResult.String())
	require.Equal(t, "7", Tag(7).String())
	require.NotEqual(t, TagIdentity, TagResult)
}
