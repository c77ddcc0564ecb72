package rankclaim

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type mapStore struct {
	mu   sync.Mutex
	keys map[string][]byte
	err  error
}

func newMapStore() *mapStore {
	return &mapStore{keys: make(map[string][]byte)}
}

func (s *mapStore) Create(_ context.Context, key string, value []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return false, s.err
	}
	if _, ok := s.keys[key]; ok {
		return false, nil
	}
	s.keys[key] = value

	return true, nil
}

func (s *mapStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.keys, key)

	return nil
}

func TestClaimer_Claim(t *testing.T) {
	t.Run("claims ranks in order", func(t *testing.T) {
		store := newMapStore()
		ctx := t.Context()

		for want := range 4 {
			c := NewClaimer(store, "run.rank", 4, nil)
			rank, err := c.Claim(ctx)
			require.NoError(t, err)
			require.Equal(t, want, rank)
			require.Equal(t, want, c.Rank())
		}

		_, err := NewClaimer(store, "run.rank", 4, nil).Claim(ctx)
		require.ErrorIs(t, err, ErrNoAvailableRank)
	})

	t.Run("concurrent claimers get distinct ranks", func(t *testing.T) {
		store := newMapStore()
		ctx := t.Context()

		const size = 8
		ranks := make(chan int, size)
		var wg sync.WaitGroup
		for range size {
			wg.Add(1)
			go func() {
				defer wg.Done()
				rank, err := NewClaimer(store, "run.rank", size, nil).Claim(ctx)
				if err == nil {
					ranks <- rank
				}
			}()
		}
		wg.Wait()
		close(ranks)

		seen := make(map[int]bool)
		for r := range ranks {
			require.False(t, seen[r], "rank %d claimed twice", r)
			seen[r] = true
		}
		require.Len(t, seen, size)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		store := newMapStore()
		store.err = errors.New("store down")

		_, err := NewClaimer(store, "run.rank", 2, nil).Claim(t.Context())
		require.ErrorContains(t, err, "store down")
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err := NewClaimer(newMapStore(), "run.rank", 2, nil).Claim(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestClaimer_Release(t *testing.T) {
	store := newMapStore()
	ctx := t.Context()

	c := NewClaimer(store, "run.rank", 2, nil)
	require.ErrorIs(t, c.Release(ctx), ErrNotClaimed)

	rank, err := c.Claim(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, rank)

	require.NoError(t, c.Release(ctx))
	require.Equal(t, -1, c.Rank())

	again, err := NewClaimer(store, "run.rank", 2, nil).Claim(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, again)
}
