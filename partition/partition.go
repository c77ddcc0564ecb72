package partition

import (
	"github.com/arloliu/collective/types"
)

// Check validates that length elements can be split evenly over participants.
//
// Parameters:
//   - length: Dataset length (elements or rows)
//   - participants: Group size
//   - maxParticipants: Upper bound on the group size (<= 0 disables the bound)
//
// Returns:
//   - error: *types.ConfigError naming the violated constraint, nil if valid
func Check(length, participants, maxParticipants int) error {
	fail := func(reason string) error {
		return &types.ConfigError{
			Length:          length,
			Participants:    participants,
			MaxParticipants: maxParticipants,
			Reason:          reason,
		}
	}

	switch {
	case participants < 1:
		return fail("participants must be at least 1")
	case maxParticipants > 0 && participants > maxParticipants:
		return fail("participants exceed maximum")
	case length < 1:
		return fail("dataset length must be at least 1")
	case length%participants != 0:
		return fail("length not divisible by participants")
	}

	return nil
}

// ChunkSize returns L/P. It assumes Check passed.
func ChunkSize(length, participants int) int {
	return length / participants
}

// Bounds returns the half-open element range [lo, hi) owned by rank.
// It assumes Check passed and 0 <= rank < participants.
func Bounds(rank, length, participants int) (lo, hi int) {
	chunk := ChunkSize(length, participants)

	return rank * chunk, (rank + 1) * chunk
}

// Split cuts data into participants contiguous chunks, chunk i for rank i.
//
// The chunks are copies; mutating a chunk never affects data or another chunk.
//
// Parameters:
//   - data: Full dataset
//   - participants: Group size
//   - maxParticipants: Upper bound on the group size (<= 0 disables the bound)
//
// Returns:
//   - [][]T: participants chunks of len(data)/participants elements each
//   - error: *types.ConfigError if the split is not even or the group is too large
func Split[T any](data []T, participants, maxParticipants int) ([][]T, error) {
	if err := Check(len(data), participants, maxParticipants); err != nil {
		return nil, err
	}

	chunks := make([][]T, participants)
	for rank := range participants {
		lo, hi := Bounds(rank, len(data), participants)
		chunk := make([]T, hi-lo)
		copy(chunk, data[lo:hi])
		chunks[rank] = chunk
	}

	return chunks, nil
}

// Join concatenates rank-ordered chunks back into one sequence.
func Join[T any](chunks [][]T) []T {
	total := 0
	for _, c := range chunks {
		total += len(c)
	}

	out := make([]T, 0, total)
	for _, c := range chunks {
		out = append(out, c...)
	}

	return out
}
