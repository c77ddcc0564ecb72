package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	t.Run("transport errors wrap ErrTransport", func(t *testing.T) {
		for _, err := range []error{
			ErrBufferMismatch,
			ErrGroupMismatch,
			ErrMalformedMessage,
			ErrCorruptPayload,
			ErrIdentityMismatch,
			ErrInvalidRank,
			ErrTransportClosed,
		} {
			require.ErrorIs(t, err, ErrTransport, err.Error())
			require.NotErrorIs(t, err, ErrConfiguration)
		}
	})

	t.Run("wrapped errors keep their class", func(t *testing.T) {
		wrapped := fmt.Errorf("scatter round 2: %w", ErrBufferMismatch)
		require.ErrorIs(t, wrapped, ErrBufferMismatch)
		require.ErrorIs(t, wrapped, ErrTransport)
	})

	t.Run("classes are distinct", func(t *testing.T) {
		require.False(t, errors.Is(ErrConfiguration, ErrTransport))
		require.False(t, errors.Is(ErrStalled, ErrTransport))
		require.False(t, errors.Is(ErrStalled, ErrConfiguration))
	})
}

func TestConfigError(t *testing.T) {
	err := error(&ConfigError{Length: 48, Participants: 5, MaxParticipants: 8, Reason: "length not divisible by participants"})

	require.ErrorIs(t, err, ErrConfiguration)
	require.Contains(t, err.Error(), "length=48")
	require.Contains(t, err.Error(), "participants=5")
	require.Contains(t, err.Error(), "not divisible")

	var cfgErr *ConfigError
	require.ErrorAs(t, fmt.Errorf("configure: %w", err), &cfgErr)
	require.Equal(t, 5, cfgErr.Participants)
}
