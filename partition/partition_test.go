package partition

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/collective/types"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name         string
		length       int
		participants int
		max          int
		reason       string
	}{
		{name: "scenario A", length: 48, participants: 4, max: 8},
		{name: "single participant", length: 48, participants: 1, max: 8},
		{name: "one element each", length: 8, participants: 8, max: 8},
		{name: "no bound", length: 1000, participants: 100, max: 0},
		{name: "not divisible", length: 48, participants: 5, max: 8, reason: "not divisible"},
		{name: "above max", length: 48, participants: 12, max: 8, reason: "exceed maximum"},
		{name: "zero participants", length: 48, participants: 0, max: 8, reason: "at least 1"},
		{name: "empty dataset", length: 0, participants: 4, max: 8, reason: "length must be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.length, tt.participants, tt.max)
			if tt.reason == "" {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, types.ErrConfiguration)
			var cfgErr *types.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			require.Contains(t, cfgErr.Reason, tt.reason)
			require.Equal(t, tt.length, cfgErr.Length)
			require.Equal(t, tt.participants, cfgErr.Participants)
		})
	}
}

func TestBounds(t *testing.T) {
	for rank, want := range [][2]int{{0, 12}, {12, 24}, {24, 36}, {36, 48}} {
		lo, hi := Bounds(rank, 48, 4)
		require.Equal(t, want[0], lo)
		require.Equal(t, want[1], hi)
	}
}

func TestSplit(t *testing.T) {
	t.Run("scenario A slices", func(t *testing.T) {
		data := make([]int, 48)
		for i := range data {
			data[i] = i
		}

		chunks, err := Split(data, 4, 8)
		require.NoError(t, err)
		require.Len(t, chunks, 4)
		require.Equal(t, []int{12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23}, chunks[1])
		require.Equal(t, data, Join(chunks))
	})

	t.Run("chunks do not alias the dataset", func(t *testing.T) {
		data := []int{1, 2, 3, 4}
		chunks, err := Split(data, 2, 0)
		require.NoError(t, err)

		chunks[0][0] = 100
		require.Equal(t, 1, data[0])
	})

	t.Run("rejects invalid group", func(t *testing.T) {
		chunks, err := Split(make([]int, 48), 5, 8)
		require.ErrorIs(t, err, types.ErrConfiguration)
		require.Nil(t, chunks)
	})

	t.Run("matrix rows", func(t *testing.T) {
		rows := [][]float64{{1, 2}, {3, 4}, {5, 6}, {7, 8}}
		chunks, err := Split(rows, 2, 8)
		require.NoError(t, err)
		require.Equal(t, [][]float64{{5, 6}, {7, 8}}, chunks[1])
	})
}

// TestSplit_Properties checks completeness, disjointness and rank order for
// randomly generated valid (L, P) pairs.
func TestSplit_Properties(t *testing.T) {
	f := fuzz.New().NilChance(0)

	for range 200 {
		var p, perRank uint8
		f.Fuzz(&p)
		f.Fuzz(&perRank)
		participants := int(p%16) + 1
		chunk := int(perRank%32) + 1
		length := participants * chunk

		data := make([]int, length)
		for i := range data {
			data[i] = i
		}

		chunks, err := Split(data, participants, 16)
		require.NoError(t, err)
		require.Len(t, chunks, participants)

		next := 0
		for rank, c := range chunks {
			require.Len(t, c, chunk, "rank %d", rank)
			lo, hi := Bounds(rank, length, participants)
			require.Equal(t, next, lo)
			for j, v := range c {
				// contiguous and in rank order: element j of rank r is r*chunk+j
				require.Equal(t, lo+j, v)
			}
			next = hi
		}
		require.Equal(t, length, next)
		require.Equal(t, data, Join(chunks))
	}
}
