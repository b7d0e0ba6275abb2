package brackets

// MatchGraph is the pure round/position structure of a bracket of a given
// size: which match feeds which parent, and into which slot. It holds no
// participant state and is recomputed wholesale whenever a bracket is
// rebuilt.
type MatchGraph struct {
	Size       int
	RoundCount int
}

// NewMatchGraph builds the graph for a bracket size (power of two, >= 2).
func NewMatchGraph(size int) MatchGraph {
	return MatchGraph{Size: size, RoundCount: RoundCount(size)}
}

// MatchesInRound returns the number of match positions in a round
// (1 = first round, RoundCount = final).
func (g MatchGraph) MatchesInRound(round int) int {
	return g.Size >> round
}

// Parent returns the round/position the winner of (round, position) feeds
// into, and the slot (1 or 2) it takes there. ok is false for the final.
func (g MatchGraph) Parent(round, position int) (parentRound, parentPosition, slot int, ok bool) {
	if round >= g.RoundCount {
		return 0, 0, 0, false
	}
	slot = 2
	if position%2 == 1 {
		slot = 1
	}
	return round + 1, (position + 1) / 2, slot, true
}

// FirstRoundSlot returns the (position, slot) pair of a round-1 bracket
// slot index (0-based, 0..size-1).
func (g MatchGraph) FirstRoundSlot(slotIndex int) (position, slot int) {
	return slotIndex/2 + 1, slotIndex%2 + 1
}
