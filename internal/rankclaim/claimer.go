// Package rankclaim assigns ranks to participants that were launched without one.
//
// Each participant atomically claims the lowest free rank key in [0, size).
// The first participant to create a key owns that rank for the run.
package rankclaim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/collective/internal/logging"
	"github.com/arloliu/collective/types"
)

// Common errors returned by the claimer.
var (
	ErrNoAvailableRank = errors.New("no available rank in group")
	ErrNotClaimed      = errors.New("rank not claimed")
)

// Store is the atomic key creation the claimer needs.
type Store interface {
	// Create stores value under key only if the key does not exist yet.
	// It reports false (and no error) when the key is already taken.
	Create(ctx context.Context, key string, value []byte) (bool, error)

	// Delete removes key.
	Delete(ctx context.Context, key string) error
}

// Claimer handles rank claiming for one participant.
type Claimer struct {
	store  Store
	prefix string
	size   int
	rank   int

	logger types.Logger
}

// NewClaimer creates a new rank claimer.
//
// Parameters:
//   - store: Store holding rank claims
//   - prefix: Key prefix (e.g., "run-42.rank")
//   - size: Group size; ranks are claimed from [0, size)
//   - logger: Logger for debug output (nil disables logging)
//
// Returns:
//   - *Claimer: New claimer instance
//
// Example:
//
//	claimer := rankclaim.NewClaimer(store, "run-42.rank", 4, logger)
//	rank, err := claimer.Claim(ctx)
func NewClaimer(store Store, prefix string, size int, logger types.Logger) *Claimer {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Claimer{
		store:  store,
		prefix: prefix,
		size:   size,
		rank:   -1,
		logger: logger,
	}
}

// Claim claims the lowest free rank.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - int: Claimed rank
//   - error: ErrNoAvailableRank if all ranks are taken, context error, or store error
func (c *Claimer) Claim(ctx context.Context) (int, error) {
	c.logger.Debug("rank claim starting", "prefix", c.prefix, "size", c.size)

	for rank := range c.size {
		if err := ctx.Err(); err != nil {
			return -1, err
		}

		key := c.keyForRank(rank)
		ok, err := c.store.Create(ctx, key, []byte(time.Now().Format(time.RFC3339)))
		if err != nil {
			c.logger.Error("rank claim failed with unexpected error", "rank", rank, "error", err)
			return -1, fmt.Errorf("failed to claim rank %d: %w", rank, err)
		}
		if ok {
			c.rank = rank
			c.logger.Info("rank claimed", "rank", rank, "key", key, "attempts", rank+1)

			return rank, nil
		}

		c.logger.Debug("rank already claimed, trying next", "rank", rank)
	}

	c.logger.Error("no available ranks", "prefix", c.prefix, "size", c.size)

	return -1, ErrNoAvailableRank
}

// Release deletes the claim so the rank can be reused by a later run
// sharing the same prefix.
func (c *Claimer) Release(ctx context.Context) error {
	if c.rank < 0 {
		return ErrNotClaimed
	}

	if err := c.store.Delete(ctx, c.keyForRank(c.rank)); err != nil {
		return fmt.Errorf("failed to release rank %d: %w", c.rank, err)
	}
	c.rank = -1

	return nil
}

// Rank returns the claimed rank, or -1.
func (c *Claimer) Rank() int {
	return c.rank
}

func (c *Claimer) keyForRank(rank int) string {
	return fmt.Sprintf("%s.%d", c.prefix, rank)
}
