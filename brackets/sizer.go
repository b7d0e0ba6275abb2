package brackets

import (
	"errors"
	"math/bits"
)

// ErrInsufficientParticipants is returned when fewer than two confirmed
// participants are available. This is a benign condition: the caller skips
// the bracket and reports it, nothing is persisted.
var ErrInsufficientParticipants = errors.New("not enough participants to generate a single elimination bracket (minimum 2)")

// Size returns the bracket size for the given participant count: the
// smallest power of two that fits everyone, never below 2. The gap between
// the count and the size is filled with byes.
func Size(participantCount int) (int, error) {
	if participantCount < 2 {
		return 0, ErrInsufficientParticipants
	}
	size := 1 << bits.Len(uint(participantCount-1))
	if size < 2 {
		size = 2
	}
	return size, nil
}

// RoundCount returns log2(size) for a valid bracket size.
func RoundCount(size int) int {
	return bits.Len(uint(size)) - 1
}
