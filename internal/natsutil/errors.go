// Package natsutil classifies NATS client errors.
package natsutil

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/collective/types"
)

// IsConnectivityError checks if an error is caused by connectivity issues.
//
// This includes NATS timeouts, connection refused, disconnections, etc.
//
// Parameters:
//   - err: Error to check
//
// Returns:
//   - bool: true if error indicates connectivity issue
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrDisconnected) ||
		errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, jetstream.ErrNoStreamResponse) ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "i/o timeout")
}

// WrapTransport tags a NATS or JetStream failure as a transport error.
//
// Context cancellation and deadline errors are returned unchanged so callers
// can still distinguish a local cancellation (or a configured operation
// timeout) from a broken transport. Errors that already carry
// types.ErrTransport are returned as-is.
//
// Parameters:
//   - op: Operation name for the message ("scatter", "receive", ...)
//   - err: Error to wrap (nil returns nil)
//
// Returns:
//   - error: Error wrapping types.ErrTransport, or err unchanged
func WrapTransport(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, types.ErrTransport) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if IsConnectivityError(err) {
		return fmt.Errorf("%w: %s: connectivity lost: %w", types.ErrTransport, op, err)
	}

	return fmt.Errorf("%w: %s: %w", types.ErrTransport, op, err)
}
