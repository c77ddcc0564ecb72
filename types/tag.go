package types

import "strconv"

// Tag selects a point-to-point message channel between two participants.
//
// Identity metadata and numeric results travel on disjoint tags so a receive
// can never match the wrong kind of message.
type Tag int

const (
	// TagIdentity carries the sender's Identity.
	TagIdentity Tag = 42

	// TagResult carries the sender's local result.
	TagResult Tag = 43
)

// String returns the tag name, or its number for unknown tags.
func (t Tag) String() string {
	switch t {
	case TagIdentity:
		return "identity"
	case TagResult:
		return "result"
	default:
		return strconv.Itoa(int(t))
	}
}
