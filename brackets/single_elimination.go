package brackets

import (
	"context"
	"fmt"
)

// BracketMatch is one match of a generated blueprint, before persistence.
// Slots hold either a known participant, or a source match UID whose winner
// will fill the slot. Matches that would pair a participant against a bye
// are omitted entirely; the participant is written straight into the next
// round's slot.
type BracketMatch struct {
	UID      string
	Round    int
	Position int

	Slot1ParticipantID *int
	Slot2ParticipantID *int

	Source1UID *string
	Source2UID *string
}

// Blueprint is the complete output of a bracket generation run: sizing,
// seeded entries and the match list in (round, position) order.
type Blueprint struct {
	Size       int
	RoundCount int
	Entries    []SeededEntry
	Matches    []*BracketMatch
}

type GenerateBracketParams struct {
	// ParticipantIDs in confirmation order, the only seeding signal.
	ParticipantIDs []int
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Blueprint, error)

	GetName() string
}

type node struct {
	participantID *int
	sourceUID     *string
	isBye         bool
}

type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

func (g *SingleEliminationGenerator) GenerateBracket(_ context.Context, params GenerateBracketParams) (*Blueprint, error) {
	ids := params.ParticipantIDs
	n := len(ids)

	size, err := Size(n)
	if err != nil {
		return nil, err
	}

	entries, err := AssignSeeds(ids, size)
	if err != nil {
		return nil, err
	}

	graph := NewMatchGraph(size)

	// Lay the seeds out in standard order; vacant seed numbers become byes.
	// Because size is the smallest power of two >= n, byes are fewer than
	// size/2 and each round-1 pair holds at most one of them.
	currentRoundNodes := make([]*node, size)
	for slot, seed := range SeedingOrder(size) {
		if seed <= n {
			pid := entries[seed-1].ParticipantID
			currentRoundNodes[slot] = &node{participantID: &pid}
		} else {
			currentRoundNodes[slot] = &node{isBye: true}
		}
	}

	matches := make([]*BracketMatch, 0, size-1)

	for r := 1; r <= graph.RoundCount; r++ {
		nextRoundNodes := make([]*node, 0, len(currentRoundNodes)/2)

		for p := 1; p <= len(currentRoundNodes)/2; p++ {
			node1 := currentRoundNodes[2*p-2]
			node2 := currentRoundNodes[2*p-1]

			if node1.isBye && node2.isBye {
				return nil, fmt.Errorf("internal error: two byes paired at round %d, position %d", r, p)
			}
			if node1.isBye {
				// No match recorded; node2 advances directly.
				nextRoundNodes = append(nextRoundNodes, node2)
				continue
			}
			if node2.isBye {
				nextRoundNodes = append(nextRoundNodes, node1)
				continue
			}

			uid := fmt.Sprintf("R%dM%d", r, p)
			bm := &BracketMatch{
				UID:      uid,
				Round:    r,
				Position: p,
			}

			if node1.participantID != nil {
				bm.Slot1ParticipantID = node1.participantID
			} else {
				bm.Source1UID = node1.sourceUID
			}
			if node2.participantID != nil {
				bm.Slot2ParticipantID = node2.participantID
			} else {
				bm.Source2UID = node2.sourceUID
			}

			matches = append(matches, bm)
			nextRoundNodes = append(nextRoundNodes, &node{sourceUID: &uid})
		}

		currentRoundNodes = nextRoundNodes
	}

	if len(currentRoundNodes) != 1 {
		return nil, fmt.Errorf("internal error: %d nodes left after the final round, expected 1", len(currentRoundNodes))
	}

	return &Blueprint{
		Size:       size,
		RoundCount: graph.RoundCount,
		Entries:    entries,
		Matches:    matches,
	}, nil
}
