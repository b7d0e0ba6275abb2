package models

import "time"

// ParticipantStatus represents the lifecycle of a roster entry. Only
// confirmed entries take part in bracket generation.
type ParticipantStatus string

const (
	StatusApplicationSubmitted ParticipantStatus = "application_submitted"
	StatusParticipant          ParticipantStatus = "participant"
	StatusApplicationRejected  ParticipantStatus = "application_rejected"
	StatusWithdrawn            ParticipantStatus = "withdrawn"
)

// Participant is a confirmed roster entry: an opaque reference to either an
// athlete (UserID set) or a team (TeamID set). The engine does not care
// which; it pairs participants by their IDs only. CategoryKey is the weight
// class for individual competitions and empty for team competitions.
type Participant struct {
	ID            int               `json:"id" db:"id"`
	CompetitionID int               `json:"competition_id" db:"competition_id"`
	CategoryKey   string            `json:"category_key" db:"category_key"`
	UserID        *int              `json:"user_id,omitempty" db:"user_id"`
	TeamID        *int              `json:"team_id,omitempty" db:"team_id"`
	Status        ParticipantStatus `json:"status" db:"status"`
	ConfirmedAt   *time.Time        `json:"confirmed_at,omitempty" db:"confirmed_at"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
}
