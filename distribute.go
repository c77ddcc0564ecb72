package collective

import (
	"context"
	"fmt"

	"github.com/arloliu/collective/partition"
)

// Scatter distributes root's data in contiguous chunks of countPerRank
// elements, chunk i to rank i, and returns this rank's chunk.
//
// Every participant must call Scatter in the same collective order. Only the
// root's data is consulted; other ranks may pass nil.
//
// Parameters:
//   - ctx: Context for cancellation
//   - s: Participant session
//   - root: Rank owning the data
//   - data: Send buffer (root only), exactly Size()*countPerRank elements
//   - countPerRank: Elements every rank receives
//
// Returns:
//   - []T: This rank's chunk, countPerRank elements
//   - error: ErrBufferMismatch, ErrMalformedMessage, ErrStalled or another transport error
//
// Example:
//
//	local, err := collective.Scatter(ctx, sess, 0, a, len(a)/sess.Size())
func Scatter[T any](ctx context.Context, s *Session, root int, data []T, countPerRank int) ([]T, error) {
	if countPerRank < 1 {
		return nil, fmt.Errorf("%w: scatter count per rank must be positive, got %d", ErrBufferMismatch, countPerRank)
	}

	var parts [][]byte
	if s.Rank() == root {
		total := s.Size() * countPerRank
		if len(data) != total {
			return nil, fmt.Errorf("%w: scatter buffer holds %d elements, group needs %d (%d ranks x %d)",
				ErrBufferMismatch, len(data), total, s.Size(), countPerRank)
		}

		parts = make([][]byte, s.Size())
		for rank := range s.Size() {
			lo, hi := partition.Bounds(rank, total, s.Size())
			raw, err := encode("scatter", data[lo:hi])
			if err != nil {
				return nil, err
			}
			parts[rank] = raw
		}
	}

	opCtx, cancel := s.bounded(ctx)
	defer cancel()

	raw, err := s.transport.Scatter(opCtx, root, parts)
	if err != nil {
		return nil, s.stalled(ctx, err, "scatter", root)
	}

	var chunk []T
	if err := decode("scatter", raw, &chunk); err != nil {
		return nil, err
	}
	if len(chunk) != countPerRank {
		return nil, fmt.Errorf("%w: scatter delivered %d elements to rank %d, expected %d",
			ErrMalformedMessage, len(chunk), s.Rank(), countPerRank)
	}

	return chunk, nil
}

// Broadcast replicates root's value to every rank.
//
// Every rank, root included, returns a decoded copy of the value root passed.
// Non-root ranks may pass the zero value.
//
// Parameters:
//   - ctx: Context for cancellation
//   - s: Participant session
//   - root: Rank owning the value
//   - value: Value to replicate (root only)
//
// Returns:
//   - T: The replicated value
//   - error: ErrCorruptPayload, ErrMalformedMessage, ErrStalled or another transport error
func Broadcast[T any](ctx context.Context, s *Session, root int, value T) (T, error) {
	var zero T

	var payload []byte
	if s.Rank() == root {
		raw, err := encode("broadcast", value)
		if err != nil {
			return zero, err
		}
		payload = raw
	}

	opCtx, cancel := s.bounded(ctx)
	defer cancel()

	raw, err := s.transport.Broadcast(opCtx, root, payload)
	if err != nil {
		return zero, s.stalled(ctx, err, "broadcast", root)
	}

	var out T
	if err := decode("broadcast", raw, &out); err != nil {
		return zero, err
	}

	return out, nil
}

// Send delivers value to dst on tag.
func Send[T any](ctx context.Context, s *Session, dst int, tag Tag, value T) error {
	raw, err := encode("send", value)
	if err != nil {
		return err
	}

	opCtx, cancel := s.bounded(ctx)
	defer cancel()

	if err := s.transport.Send(opCtx, dst, tag, raw); err != nil {
		return s.stalled(ctx, err, "send", dst)
	}

	return nil
}

// Receive blocks until the next value from src on tag arrives.
//
// With Config.OperationTimeout > 0 a sender that never arrives yields ErrStalled.
func Receive[T any](ctx context.Context, s *Session, src int, tag Tag) (T, error) {
	var zero T

	opCtx, cancel := s.bounded(ctx)
	defer cancel()

	raw, err := s.transport.Receive(opCtx, src, tag)
	if err != nil {
		return zero, s.stalled(ctx, err, "receive "+tag.String(), src)
	}

	var out T
	if err := decode("receive "+tag.String(), raw, &out); err != nil {
		return zero, err
	}

	return out, nil
}
