package types

import "fmt"

// Identity names one participant of the group.
//
// Rank is in [0, group size) and Host is the label of the machine the
// participant runs on. Both are fixed for the lifetime of the process and
// travel with every local result sent to the coordinator.
type Identity struct {
	Rank int    `json:"rank"`
	Host string `json:"host"`
}

// IsCoordinator reports whether the identity belongs to the coordinator rank.
func (id Identity) IsCoordinator() bool {
	return id.Rank == CoordinatorRank
}

// String returns "rank@host".
func (id Identity) String() string {
	return fmt.Sprintf("%d@%s", id.Rank, id.Host)
}

// CoordinatorRank is the distinguished participant that owns the full dataset
// and collects local results.
const CoordinatorRank = 0
