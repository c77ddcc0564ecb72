package collective

import (
	"context"
	"fmt"
	"slices"
)

// RankResult is one participant's local result labelled with its identity.
type RankResult[R any] struct {
	Identity Identity
	Values   []R
}

// Gathered is the coordinator's view after collection.
type Gathered[R any] struct {
	// Final holds every rank's result at offset rank*chunk, in dataset order.
	Final []R

	// Ranks holds each rank's result and identity, indexed by rank.
	Ranks []RankResult[R]
}

// Collect gathers every rank's local result on the coordinator.
//
// The coordinator's own result goes to offset 0. Then, for ranks 1..Size()-1
// in ascending order, it receives the sender's identity on TagIdentity and
// its result on TagResult and places the result at offset rank*chunk. The
// final layout depends only on ranks, never on arrival order.
//
// Parameters:
//   - ctx: Context for cancellation
//   - s: Coordinator session
//   - local: Coordinator's own local result
//   - chunk: Result length every rank must deliver
//
// Returns:
//   - *Gathered[R]: Final result and per-rank results
//   - error: ErrNotCoordinator, ErrShapeMismatch, ErrIdentityMismatch,
//     ErrMalformedMessage, ErrStalled or another transport error
func Collect[R any](ctx context.Context, s *Session, local []R, chunk int) (*Gathered[R], error) {
	if !s.Identity().IsCoordinator() {
		return nil, fmt.Errorf("%w: rank %d cannot collect", ErrNotCoordinator, s.Rank())
	}
	if len(local) != chunk {
		return nil, fmt.Errorf("%w: coordinator result has %d elements, expected %d", ErrShapeMismatch, len(local), chunk)
	}

	out := &Gathered[R]{
		Final: make([]R, chunk*s.Size()),
		Ranks: make([]RankResult[R], s.Size()),
	}
	copy(out.Final, local)
	out.Ranks[0] = RankResult[R]{Identity: s.Identity(), Values: slices.Clone(local)}

	for src := 1; src < s.Size(); src++ {
		id, err := Receive[Identity](ctx, s, src, TagIdentity)
		if err != nil {
			return nil, fmt.Errorf("failed to receive identity from rank %d: %w", src, err)
		}
		if id.Rank != src {
			return nil, fmt.Errorf("%w: message from rank %d claims rank %d (host %s)", ErrIdentityMismatch, src, id.Rank, id.Host)
		}

		values, err := Receive[[]R](ctx, s, src, TagResult)
		if err != nil {
			return nil, fmt.Errorf("failed to receive result from rank %d: %w", src, err)
		}
		if len(values) != chunk {
			return nil, fmt.Errorf("%w: rank %d sent %d result elements, expected %d", ErrMalformedMessage, src, len(values), chunk)
		}

		copy(out.Final[src*chunk:], values)
		out.Ranks[src] = RankResult[R]{Identity: id, Values: values}

		s.logger.Debug("received local result", "rank", src, "host", id.Host, "elements", len(values))
	}

	return out, nil
}

// Submit sends this participant's identity and local result to the coordinator.
//
// The identity goes first on TagIdentity, the result second on TagResult,
// matching the order Collect receives them in.
//
// Parameters:
//   - ctx: Context for cancellation
//   - s: Non-coordinator session
//   - local: Local result
//
// Returns:
//   - error: ErrInvalidRank when called on the coordinator, or a transport error
func Submit[R any](ctx context.Context, s *Session, local []R) error {
	if s.Identity().IsCoordinator() {
		return fmt.Errorf("%w: the coordinator collects instead of submitting", ErrInvalidRank)
	}

	if err := Send(ctx, s, CoordinatorRank, TagIdentity, s.Identity()); err != nil {
		return fmt.Errorf("failed to send identity: %w", err)
	}
	if err := Send(ctx, s, CoordinatorRank, TagResult, local); err != nil {
		return fmt.Errorf("failed to send result: %w", err)
	}

	return nil
}
