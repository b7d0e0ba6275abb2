package models

// Placement is a participant's final standing derived purely from the round
// in which it was eliminated. Position is nil while the participant is still
// active (or its elimination is not yet decided).
type Placement struct {
	ParticipantID int  `json:"participant_id"`
	Seed          int  `json:"seed"`
	Position      *int `json:"position"`
}
