package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for the collective library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// All components wrap lower-level errors with context using
// fmt.Errorf("%s: %w", msg, err) so the error class survives propagation.
//
// Error classes:
//   - ErrConfiguration: group size incompatible with the dataset; detected identically
//     on every participant before any communication
//   - ErrTransport: a collective or point-to-point call failed; fatal for the run
//   - ErrStalled: a bounded wait expired (only when an operation timeout is configured)

// Error classes.
var (
	// ErrConfiguration is returned when the group size is incompatible with the dataset size
	// or exceeds the configured maximum.
	ErrConfiguration = errors.New("configuration error")

	// ErrTransport is returned when the underlying transport cannot deliver a message.
	ErrTransport = errors.New("transport error")

	// ErrStalled is returned when a peer did not reach a blocking call within the configured timeout.
	ErrStalled = errors.New("protocol stalled")
)

// Transport errors. All of them wrap ErrTransport.
var (
	// ErrBufferMismatch is returned when a root buffer does not hold exactly one chunk per rank.
	ErrBufferMismatch = fmt.Errorf("%w: buffer size mismatch", ErrTransport)

	// ErrGroupMismatch is returned when a participant declares a different group size.
	ErrGroupMismatch = fmt.Errorf("%w: group membership mismatch", ErrTransport)

	// ErrMalformedMessage is returned when a received message cannot be decoded or has the wrong length.
	ErrMalformedMessage = fmt.Errorf("%w: malformed message", ErrTransport)

	// ErrCorruptPayload is returned when a payload digest does not match its content.
	ErrCorruptPayload = fmt.Errorf("%w: payload digest mismatch", ErrTransport)

	// ErrIdentityMismatch is returned when a result arrives labelled with another rank's identity.
	ErrIdentityMismatch = fmt.Errorf("%w: identity does not match source rank", ErrTransport)

	// ErrInvalidRank is returned when a rank is outside [0, group size).
	ErrInvalidRank = fmt.Errorf("%w: invalid rank", ErrTransport)

	// ErrTransportClosed is returned when a call is made after Close.
	ErrTransportClosed = fmt.Errorf("%w: transport closed", ErrTransport)
)

// Session errors.
var (
	// ErrInvalidConfig is returned when the library configuration itself is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrTransportRequired is returned when a session is created without a transport.
	ErrTransportRequired = errors.New("transport is required")

	// ErrShapeMismatch is returned when a local result does not match its partition's shape.
	ErrShapeMismatch = errors.New("local result shape does not match partition")

	// ErrInvalidPhaseTransition is returned when a phase change violates the lifecycle.
	ErrInvalidPhaseTransition = errors.New("invalid phase transition")

	// ErrNotCoordinator is returned when a coordinator-only operation runs on another rank.
	ErrNotCoordinator = errors.New("operation requires the coordinator rank")
)

// ConfigError describes which partitioning constraint a group violates.
//
// It wraps ErrConfiguration, so errors.Is(err, ErrConfiguration) holds for
// every ConfigError.
type ConfigError struct {
	// Length is the dataset length (elements or rows).
	Length int

	// Participants is the group size.
	Participants int

	// MaxParticipants is the configured upper bound on the group size.
	MaxParticipants int

	// Reason names the violated divisor or bound.
	Reason string
}

// Error implements error.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s (length=%d, participants=%d, max=%d)",
		e.Reason, e.Length, e.Participants, e.MaxParticipants)
}

// Unwrap returns ErrConfiguration.
func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}
