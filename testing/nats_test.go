package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStartEmbeddedNATS(t *testing.T) {
	ns, nc := StartEmbeddedNATS(t)

	require.NotNil(t, ns)
	require.True(t, nc.IsConnected())
	require.True(t, ns.ReadyForConnections(time.Second))
}

func TestConnectN(t *testing.T) {
	ns, _ := StartEmbeddedNATS(t)

	conns := ConnectN(t, ns, 3)
	require.Len(t, conns, 3)
	for _, nc := range conns {
		require.True(t, nc.IsConnected())
	}
}

func TestCreateJetStreamKV(t *testing.T) {
	_, nc := StartEmbeddedNATS(t)
	kv := CreateJetStreamKV(t, nc, "test-helper-kv")

	_, err := kv.Put(t.Context(), "k", []byte("v"))
	require.NoError(t, err)

	entry, err := kv.Get(t.Context(), "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), entry.Value())
}

func TestFormatKeyValues(t *testing.T) {
	require.Empty(t, formatKeyValues(nil))
	require.Equal(t, "rank=1 host=a", formatKeyValues([]any{"rank", 1, "host", "a"}))
	require.Equal(t, "rank=1 dangling=<missing>", formatKeyValues([]any{"rank", 1, "dangling"}))
}
