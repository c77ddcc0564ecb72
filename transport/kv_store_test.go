package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	coltest "github.com/arloliu/collective/testing"
	"github.com/arloliu/collective/types"
)

func TestOpenKVStore_RequiresConnection(t *testing.T) {
	_, err := OpenKVStore(t.Context(), nil, KVConfig{Bucket: "b"})
	require.ErrorIs(t, err, types.ErrTransport)
}

func TestKVStore_Operations(t *testing.T) {
	_, nc := coltest.StartEmbeddedNATS(t)
	store, err := OpenKVStore(t.Context(), nc, KVConfig{Bucket: "kv-ops", TTL: time.Minute})
	require.NoError(t, err)

	ok, err := store.Create(t.Context(), "a", []byte("1"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = store.Create(t.Context(), "a", []byte("2"))
	require.NoError(t, err)
	require.False(t, ok)

	val, err := store.Wait(t.Context(), "a")
	require.NoError(t, err)
	require.Equal(t, []byte("1"), val)

	require.NoError(t, store.Delete(t.Context(), "a"))
	require.NoError(t, store.Delete(t.Context(), "never-written"))

	got := make(chan []byte, 1)
	go func() {
		v, err := store.Wait(t.Context(), "late")
		if err == nil {
			got <- v
		}
	}()
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, store.Put(t.Context(), "late", []byte("arrived")))

	select {
	case v := <-got:
		require.Equal(t, []byte("arrived"), v)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not deliver put")
	}
}

func TestKVStore_WaitHonorsContext(t *testing.T) {
	_, nc := coltest.StartEmbeddedNATS(t)
	store, err := OpenKVStore(t.Context(), nc, KVConfig{Bucket: "kv-timeout"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	_, err = store.Wait(ctx, "missing")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGroup_OverKV(t *testing.T) {
	ns, _ := coltest.StartEmbeddedNATS(t)
	const size = 3
	conns := coltest.ConnectN(t, ns, size)

	groups := make([]*Group, size)
	eg, ctx := errgroup.WithContext(t.Context())
	for rank := range size {
		eg.Go(func() error {
			store, err := OpenKVStore(ctx, conns[rank], KVConfig{Bucket: "kv-group", TTL: time.Minute})
			if err != nil {
				return err
			}
			g, err := Join(ctx, store, GroupConfig{
				RunID:  "kv-run",
				Rank:   ClaimRank,
				Size:   size,
				Logger: coltest.NewTestLogger(t, "group"),
			})
			if err != nil {
				return err
			}
			groups[g.Rank()] = g

			return nil
		})
	}
	require.NoError(t, eg.Wait())

	got := make([]string, size)
	shared := make([]string, size)
	runAll(t, groups, func(ctx context.Context, g *Group) error {
		var parts [][]byte
		var x []byte
		if g.Rank() == 0 {
			parts = [][]byte{[]byte("p0"), []byte("p1"), []byte("p2")}
			x = []byte("x")
		}
		part, err := g.Scatter(ctx, 0, parts)
		if err != nil {
			return err
		}
		bx, err := g.Broadcast(ctx, 0, x)
		if err != nil {
			return err
		}
		got[g.Rank()] = string(part)
		shared[g.Rank()] = string(bx)

		if g.Rank() != 0 {
			return g.Send(ctx, 0, types.TagResult, append([]byte("r"), part...))
		}
		for src := 1; src < size; src++ {
			msg, err := g.Receive(ctx, src, types.TagResult)
			if err != nil {
				return err
			}
			if string(msg) != "rp"+string(rune('0'+src)) {
				return types.ErrMalformedMessage
			}
		}

		return nil
	})

	require.Equal(t, []string{"p0", "p1", "p2"}, got)
	require.Equal(t, []string{"x", "x", "x"}, shared)

	for _, g := range groups {
		require.NoError(t, g.Close(t.Context()))
	}
}
