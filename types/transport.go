package types

import "context"

// Transport is the group collaborator every participant communicates through.
//
// A Transport represents one participant's membership in a fixed-size, static
// group. All calls block until the peer(s) have produced the data, and all
// participants must issue Scatter and Broadcast in the same order exactly once
// per round. Skipping or reordering a collective call stalls the group or
// misroutes data; this is a protocol invariant the Transport cannot detect.
//
// Payloads are opaque bytes. Typed encoding and element-count checks live in
// the root collective package.
type Transport interface {
	// Rank returns this participant's rank in [0, Size()).
	Rank() int

	// Size returns the fixed group size.
	Size() int

	// Scatter delivers parts[i] from root to rank i.
	//
	// Only root's parts argument is consulted; it must contain exactly Size()
	// entries. Every rank, root included, receives its own part.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - root: Rank owning the send buffer
	//   - parts: One encoded chunk per rank (root only)
	//
	// Returns:
	//   - []byte: This rank's chunk
	//   - error: ErrBufferMismatch, ErrInvalidRank or another ErrTransport
	Scatter(ctx context.Context, root int, parts [][]byte) ([]byte, error)

	// Broadcast replicates root's payload to every rank.
	//
	// Returns a bit-identical copy on every rank, root included.
	Broadcast(ctx context.Context, root int, payload []byte) ([]byte, error)

	// Send delivers payload to dst on the given tag.
	//
	// Messages between one (source, destination, tag) triple are non-overtaking.
	Send(ctx context.Context, dst int, tag Tag, payload []byte) error

	// Receive blocks until the next message from src on tag is available.
	Receive(ctx context.Context, src int, tag Tag) ([]byte, error)

	// Close releases this participant's group resources.
	Close(ctx context.Context) error
}
