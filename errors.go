package collective

import "github.com/arloliu/collective/types"

// Error classes. See the types package for the full taxonomy.
var (
	// ErrConfiguration is returned when the group size cannot partition the dataset.
	ErrConfiguration = types.ErrConfiguration

	// ErrTransport is returned when a transport call fails. Fatal for the run.
	ErrTransport = types.ErrTransport

	// ErrStalled is returned when a peer did not arrive within Config.OperationTimeout.
	ErrStalled = types.ErrStalled
)

// Sentinel errors returned by sessions and collectives.
var (
	ErrBufferMismatch         = types.ErrBufferMismatch
	ErrGroupMismatch          = types.ErrGroupMismatch
	ErrMalformedMessage       = types.ErrMalformedMessage
	ErrCorruptPayload         = types.ErrCorruptPayload
	ErrIdentityMismatch       = types.ErrIdentityMismatch
	ErrInvalidRank            = types.ErrInvalidRank
	ErrTransportClosed        = types.ErrTransportClosed
	ErrInvalidConfig          = types.ErrInvalidConfig
	ErrTransportRequired      = types.ErrTransportRequired
	ErrShapeMismatch          = types.ErrShapeMismatch
	ErrInvalidPhaseTransition = types.ErrInvalidPhaseTransition
	ErrNotCoordinator         = types.ErrNotCoordinator
)
