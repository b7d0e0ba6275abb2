package brackets

import "github.com/Dosada05/bracket-engine/models"

// ComputePlacements derives a finishing position for every bracket entry
// from the structure of eliminations alone. It never mutates anything and
// may be called against a partially played bracket: entries that have not
// been eliminated (and not yet won the final) get a nil position.
//
// The final's winner takes position 1 and its loser position 2. A loser of
// round r < roundCount takes 2^(roundCount-r) + matchPosition, which lands
// inside the conventional band [2^(roundCount-r)+1, 2^(roundCount-r+1)]:
// in a 16 bracket the two semifinal losers finish 3-4 and the four
// quarterfinal losers 5-8.
func ComputePlacements(bracket *models.Bracket, matches []models.Match, entries []models.BracketEntry) []models.Placement {
	positions := make(map[int]int, len(entries))

	for i := range matches {
		m := &matches[i]
		if m.Status != models.MatchStatusCompleted || m.WinnerParticipantID == nil {
			continue
		}

		winnerID := *m.WinnerParticipantID
		loserID, hasLoser := loserOf(m, winnerID)

		if m.Round == bracket.RoundCount {
			positions[winnerID] = 1
			if hasLoser {
				positions[loserID] = 2
			}
			continue
		}
		if hasLoser {
			positions[loserID] = 1<<(bracket.RoundCount-m.Round) + m.Position
		}
	}

	placements := make([]models.Placement, len(entries))
	for i, e := range entries {
		placements[i] = models.Placement{
			ParticipantID: e.ParticipantID,
			Seed:          e.Seed,
		}
		if pos, ok := positions[e.ParticipantID]; ok {
			p := pos
			placements[i].Position = &p
		}
	}
	return placements
}

// loserOf returns the slot occupant that is not the winner. Matches decided
// by a bye have no loser.
func loserOf(m *models.Match, winnerID int) (int, bool) {
	if m.Slot1ParticipantID != nil && *m.Slot1ParticipantID != winnerID {
		return *m.Slot1ParticipantID, true
	}
	if m.Slot2ParticipantID != nil && *m.Slot2ParticipantID != winnerID {
		return *m.Slot2ParticipantID, true
	}
	return 0, false
}
