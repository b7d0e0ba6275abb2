package models

import "time"

type MatchStatus string

const (
	StatusScheduled      MatchStatus = "scheduled"
	StatusInProgress     MatchStatus = "in_progress"
	MatchStatusCompleted MatchStatus = "completed"
)

// SlotStatus describes what occupies one side of a match.
type SlotStatus string

const (
	// SlotPending means the slot is waiting for the winner of a child match.
	SlotPending SlotStatus = "pending"
	// SlotOccupied means a participant is in the slot.
	SlotOccupied SlotStatus = "occupied"
	// SlotBye means the slot has no opponent; the other slot's occupant
	// advances automatically.
	SlotBye SlotStatus = "bye"
)

// Match is one pairing at a given round/position of a bracket. Round 1 is
// the first round, RoundCount the final. Matches whose round-1 pairing is
// participant-vs-bye are never stored; the bye holder is pre-populated into
// its round-2 slot instead.
type Match struct {
	ID        int `json:"id" db:"id"`
	BracketID int `json:"bracket_id" db:"bracket_id"`
	Round     int `json:"round" db:"round"`
	Position  int `json:"position" db:"position"`

	Slot1ParticipantID *int       `json:"slot1_participant_id,omitempty" db:"slot1_participant_id"`
	Slot2ParticipantID *int       `json:"slot2_participant_id,omitempty" db:"slot2_participant_id"`
	Slot1Status        SlotStatus `json:"slot1_status" db:"slot1_status"`
	Slot2Status        SlotStatus `json:"slot2_status" db:"slot2_status"`

	Score               *string     `json:"score,omitempty" db:"score"`
	Status              MatchStatus `json:"status" db:"status"`
	WinnerParticipantID *int        `json:"winner_participant_id,omitempty" db:"winner_participant_id"`

	// Link to the match the winner feeds into, and which slot it takes
	// there. Nil for the final.
	NextMatchID  *int `json:"next_match_id,omitempty" db:"next_match_id"`
	WinnerToSlot *int `json:"winner_to_slot,omitempty" db:"winner_to_slot"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SlotOf reports which slot (1 or 2) the participant occupies, or 0 if it
// occupies neither.
func (m *Match) SlotOf(participantID int) int {
	if m.Slot1ParticipantID != nil && *m.Slot1ParticipantID == participantID {
		return 1
	}
	if m.Slot2ParticipantID != nil && *m.Slot2ParticipantID == participantID {
		return 2
	}
	return 0
}

// BothSlotsOccupied reports whether the match is playable: two participants,
// neither slot pending or a bye.
func (m *Match) BothSlotsOccupied() bool {
	return m.Slot1Status == SlotOccupied && m.Slot2Status == SlotOccupied
}
