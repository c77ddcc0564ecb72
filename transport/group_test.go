package transport

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/collective/types"
)

// joinAll joins size participants with preassigned ranks and returns them by rank.
func joinAll(t *testing.T, store Store, runID string, size int) []*Group {
	t.Helper()

	groups := make([]*Group, size)
	eg, ctx := errgroup.WithContext(t.Context())
	for rank := range size {
		eg.Go(func() error {
			g, err := Join(ctx, store, GroupConfig{RunID: runID, Rank: rank, Size: size})
			groups[rank] = g

			return err
		})
	}
	require.NoError(t, eg.Wait())

	return groups
}

// runAll runs fn once per group concurrently.
func runAll(t *testing.T, groups []*Group, fn func(ctx context.Context, g *Group) error) {
	t.Helper()

	eg, ctx := errgroup.WithContext(t.Context())
	for _, g := range groups {
		eg.Go(func() error { return fn(ctx, g) })
	}
	require.NoError(t, eg.Wait())
}

func TestJoin_Validation(t *testing.T) {
	store := NewMemoryStore()

	_, err := Join(t.Context(), nil, GroupConfig{RunID: "r", Size: 1})
	require.ErrorIs(t, err, types.ErrTransportRequired)

	_, err = Join(t.Context(), store, GroupConfig{RunID: "bad.id", Size: 1})
	require.ErrorIs(t, err, types.ErrInvalidConfig)

	_, err = Join(t.Context(), store, GroupConfig{RunID: "r", Size: 0})
	require.ErrorIs(t, err, types.ErrInvalidConfig)

	_, err = Join(t.Context(), store, GroupConfig{RunID: "r", Rank: 4, Size: 4})
	require.ErrorIs(t, err, types.ErrInvalidRank)
	require.ErrorIs(t, err, types.ErrTransport)
}

func TestJoin_SingleParticipant(t *testing.T) {
	g, err := Join(t.Context(), NewMemoryStore(), GroupConfig{RunID: "solo", Rank: 0, Size: 1})
	require.NoError(t, err)
	require.Equal(t, 0, g.Rank())
	require.Equal(t, 1, g.Size())
	require.Equal(t, "solo", g.RunID())
}

func TestJoin_ClaimsRanks(t *testing.T) {
	store := NewMemoryStore()
	const size = 4

	ranks := make([]int, size)
	eg, ctx := errgroup.WithContext(t.Context())
	for i := range size {
		eg.Go(func() error {
			g, err := Join(ctx, store, GroupConfig{RunID: "claim", Rank: ClaimRank, Size: size})
			if err != nil {
				return err
			}
			ranks[i] = g.Rank()

			return nil
		})
	}
	require.NoError(t, eg.Wait())
	require.ElementsMatch(t, []int{0, 1, 2, 3}, ranks)
}

func TestJoin_SizeMismatch(t *testing.T) {
	store := NewMemoryStore()

	// rank 1 was launched believing the group has two members
	ok, err := store.Create(t.Context(), "mismatch.member.1", []byte(`{"rank":1,"size":2}`))
	require.NoError(t, err)
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		_, err := Join(ctx, store, GroupConfig{RunID: "mismatch", Rank: 0, Size: 3})
		return err
	})
	require.ErrorIs(t, eg.Wait(), types.ErrGroupMismatch)
}

func TestJoin_DuplicateRank(t *testing.T) {
	store := NewMemoryStore()
	ok, err := store.Create(t.Context(), "dup.member.0", []byte(`{"rank":0,"size":2}`))
	require.NoError(t, err)
	require.True(t, ok)

	_, err = Join(t.Context(), store, GroupConfig{RunID: "dup", Rank: 0, Size: 2})
	require.ErrorIs(t, err, types.ErrGroupMismatch)
}

func TestGroup_Scatter(t *testing.T) {
	const size = 4
	groups := joinAll(t, NewMemoryStore(), "scatter", size)

	got := make([][]byte, size)
	runAll(t, groups, func(ctx context.Context, g *Group) error {
		var parts [][]byte
		if g.Rank() == 0 {
			for i := range size {
				parts = append(parts, []byte(fmt.Sprintf("chunk-%d", i)))
			}
		}
		data, err := g.Scatter(ctx, 0, parts)
		got[g.Rank()] = data

		return err
	})

	for i := range size {
		require.Equal(t, fmt.Sprintf("chunk-%d", i), string(got[i]))
	}
}

func TestGroup_ScatterNonZeroRoot(t *testing.T) {
	groups := joinAll(t, NewMemoryStore(), "root2", 3)

	got := make([]string, 3)
	runAll(t, groups, func(ctx context.Context, g *Group) error {
		var parts [][]byte
		if g.Rank() == 2 {
			parts = [][]byte{[]byte("a"), []byte("b"), []byte("c")}
		}
		data, err := g.Scatter(ctx, 2, parts)
		got[g.Rank()] = string(data)

		return err
	})
	require.Equal(t, []string{"a", "b", "c"}, got)
}

func TestGroup_ScatterBufferMismatch(t *testing.T) {
	g, err := Join(t.Context(), NewMemoryStore(), GroupConfig{RunID: "short", Rank: 0, Size: 1})
	require.NoError(t, err)

	_, err = g.Scatter(t.Context(), 0, [][]byte{[]byte("a"), []byte("b")})
	require.ErrorIs(t, err, types.ErrBufferMismatch)
	require.ErrorIs(t, err, types.ErrTransport)
}

func TestGroup_SequentialCollectivesStayOrdered(t *testing.T) {
	const size = 3
	groups := joinAll(t, NewMemoryStore(), "seq", size)

	type result struct{ first, second, shared string }
	got := make([]result, size)

	runAll(t, groups, func(ctx context.Context, g *Group) error {
		var a, b [][]byte
		var x []byte
		if g.Rank() == 0 {
			a = [][]byte{[]byte("a0"), []byte("a1"), []byte("a2")}
			b = [][]byte{[]byte("b0"), []byte("b1"), []byte("b2")}
			x = []byte("shared")
		}
		first, err := g.Scatter(ctx, 0, a)
		if err != nil {
			return err
		}
		second, err := g.Scatter(ctx, 0, b)
		if err != nil {
			return err
		}
		shared, err := g.Broadcast(ctx, 0, x)
		if err != nil {
			return err
		}
		got[g.Rank()] = result{string(first), string(second), string(shared)}

		return nil
	})

	for i := range size {
		require.Equal(t, fmt.Sprintf("a%d", i), got[i].first)
		require.Equal(t, fmt.Sprintf("b%d", i), got[i].second)
		require.Equal(t, "shared", got[i].shared)
	}
}

func TestGroup_SkippedCollectiveStalls(t *testing.T) {
	groups := joinAll(t, NewMemoryStore(), "skip", 2)

	// rank 0 issues one scatter, rank 1 believes it is already on the second one
	_, err := groups[0].Scatter(t.Context(), 0, [][]byte{[]byte("x"), []byte("y")})
	require.NoError(t, err)
	groups[1].nextCollective()

	ctx, cancel := context.WithTimeout(t.Context(), 30*time.Millisecond)
	defer cancel()
	_, err = groups[1].Scatter(ctx, 0, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGroup_SendReceiveNonOvertaking(t *testing.T) {
	groups := joinAll(t, NewMemoryStore(), "p2p", 2)

	for i := range 3 {
		require.NoError(t, groups[1].Send(t.Context(), 0, types.TagResult, []byte{byte(i)}))
	}
	require.NoError(t, groups[1].Send(t.Context(), 0, types.TagIdentity, []byte("id")))

	id, err := groups[0].Receive(t.Context(), 1, types.TagIdentity)
	require.NoError(t, err)
	require.Equal(t, []byte("id"), id)

	for i := range 3 {
		data, err := groups[0].Receive(t.Context(), 1, types.TagResult)
		require.NoError(t, err)
		require.Equal(t, []byte{byte(i)}, data)
	}
}

func TestGroup_EmptyPayload(t *testing.T) {
	groups := joinAll(t, NewMemoryStore(), "empty", 2)

	require.NoError(t, groups[1].Send(t.Context(), 0, types.TagResult, nil))
	data, err := groups[0].Receive(t.Context(), 1, types.TagResult)
	require.NoError(t, err)
	require.NotNil(t, data)
	require.Empty(t, data)
}

func TestGroup_MalformedEnvelope(t *testing.T) {
	store := NewMemoryStore()
	groups := joinAll(t, store, "corrupt", 2)

	raw, err := encodeEnvelope(1, opSend, 0, []byte("payload"))
	require.NoError(t, err)
	tampered := []byte(string(raw[:len(raw)-3]) + "X\"}")
	require.NoError(t, store.Put(t.Context(), groups[1].p2pKey(1, 0, types.TagResult, 0), tampered))

	_, err = groups[0].Receive(t.Context(), 1, types.TagResult)
	require.Error(t, err)
	require.ErrorIs(t, err, types.ErrTransport)
}

func TestGroup_DigestMismatch(t *testing.T) {
	store := NewMemoryStore()
	groups := joinAll(t, store, "digest", 2)

	raw := []byte(`{"from":1,"op":"send","seq":0,"digest":1,"data":"cGF5bG9hZA=="}`)
	require.NoError(t, store.Put(t.Context(), groups[0].p2pKey(1, 0, types.TagResult, 0), raw))

	_, err := groups[0].Receive(t.Context(), 1, types.TagResult)
	require.ErrorIs(t, err, types.ErrCorruptPayload)
}

func TestGroup_WrongSender(t *testing.T) {
	store := NewMemoryStore()
	groups := joinAll(t, store, "sender", 3)

	raw, err := encodeEnvelope(2, opSend, 0, []byte("x"))
	require.NoError(t, err)
	require.NoError(t, store.Put(t.Context(), groups[0].p2pKey(1, 0, types.TagResult, 0), raw))

	_, err = groups[0].Receive(t.Context(), 1, types.TagResult)
	require.ErrorIs(t, err, types.ErrMalformedMessage)
}

func TestGroup_InvalidPeerAndClose(t *testing.T) {
	groups := joinAll(t, NewMemoryStore(), "close", 2)

	err := groups[0].Send(t.Context(), 5, types.TagResult, nil)
	require.ErrorIs(t, err, types.ErrInvalidRank)

	_, err = groups[0].Receive(t.Context(), -1, types.TagResult)
	require.ErrorIs(t, err, types.ErrInvalidRank)

	require.NoError(t, groups[0].Close(t.Context()))
	require.NoError(t, groups[0].Close(t.Context()))

	_, err = groups[0].Broadcast(t.Context(), 0, []byte("x"))
	require.ErrorIs(t, err, types.ErrTransportClosed)
}
