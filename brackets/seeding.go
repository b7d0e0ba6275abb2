package brackets

import (
	"fmt"

	"github.com/Dosada05/bracket-engine/models"
)

// SeededEntry is a participant after seed assignment. Seed is the 1-based
// rank (confirmation order is the only ranking signal available), Half the
// side of the bracket the seed landed in.
type SeededEntry struct {
	ParticipantID int
	Seed          int
	Half          models.GroupHalf
}

// SeedingOrder returns the standard binary seeding order for a bracket of
// the given size (a power of two): index i holds the seed number placed at
// bracket slot i. Size 8 yields 1,8,4,5,2,7,3,6: seed 1's half of the
// bracket carries seeds 1,4,5,8 and seed 2's half carries 2,3,6,7, so the
// two strongest seeds can only meet in the final, and when the roster does
// not fill the bracket the vacant (highest) seed numbers sit opposite the
// top seeds, which is exactly the "top seeds get byes first" policy.
func SeedingOrder(size int) []int {
	order := []int{1}
	for len(order) < size {
		doubled := len(order) * 2
		next := make([]int, 0, doubled)
		for _, s := range order {
			next = append(next, s, doubled+1-s)
		}
		order = next
	}
	return order
}

// HalfOfSlot returns which group half a bracket slot (0-based, 0..size-1)
// belongs to: the first size/2 slots feed the A side of the final, the rest
// the B side.
func HalfOfSlot(slot, size int) models.GroupHalf {
	if slot < size/2 {
		return models.GroupHalfA
	}
	return models.GroupHalfB
}

// AssignSeeds gives every participant its seed (positional, 1-based) and
// group half for a bracket of the given size. The participant list must be
// in confirmation order and must fit the bracket.
func AssignSeeds(participantIDs []int, size int) ([]SeededEntry, error) {
	if len(participantIDs) < 2 {
		return nil, ErrInsufficientParticipants
	}
	if len(participantIDs) > size {
		return nil, fmt.Errorf("bracket size %d cannot hold %d participants", size, len(participantIDs))
	}

	slotBySeed := make(map[int]int, size)
	for slot, seed := range SeedingOrder(size) {
		slotBySeed[seed] = slot
	}

	entries := make([]SeededEntry, len(participantIDs))
	for i, id := range participantIDs {
		seed := i + 1
		entries[i] = SeededEntry{
			ParticipantID: id,
			Seed:          seed,
			Half:          HalfOfSlot(slotBySeed[seed], size),
		}
	}
	return entries, nil
}
