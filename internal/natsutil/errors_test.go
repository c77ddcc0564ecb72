package natsutil

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/collective/types"
)

func TestIsConnectivityError(t *testing.T) {
	require.False(t, IsConnectivityError(nil))
	require.True(t, IsConnectivityError(nats.ErrTimeout))
	require.True(t, IsConnectivityError(fmt.Errorf("put: %w", nats.ErrConnectionClosed)))
	require.True(t, IsConnectivityError(errors.New("dial tcp: connection refused")))
	require.False(t, IsConnectivityError(errors.New("key not found")))
}

func TestWrapTransport(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		require.NoError(t, WrapTransport("send", nil))
	})

	t.Run("wraps NATS errors as transport errors", func(t *testing.T) {
		err := WrapTransport("send", nats.ErrNoServers)
		require.ErrorIs(t, err, types.ErrTransport)
		require.ErrorIs(t, err, nats.ErrNoServers)
		require.Contains(t, err.Error(), "connectivity lost")
	})

	t.Run("wraps generic errors", func(t *testing.T) {
		err := WrapTransport("scatter", errors.New("bad key"))
		require.ErrorIs(t, err, types.ErrTransport)
		require.Contains(t, err.Error(), "scatter")
	})

	t.Run("context errors pass through", func(t *testing.T) {
		require.Equal(t, context.Canceled, WrapTransport("receive", context.Canceled))
		require.Equal(t, context.DeadlineExceeded, WrapTransport("receive", context.DeadlineExceeded))
	})

	t.Run("transport errors are not double wrapped", func(t *testing.T) {
		require.Equal(t, types.ErrBufferMismatch, WrapTransport("scatter", types.ErrBufferMismatch))
	})
}
