package models

import "time"

// CompetitionStatus represents competition statuses, mirroring the ENUM in the DB.
type CompetitionStatus string

const (
	StatusSoon         CompetitionStatus = "soon"
	StatusRegistration CompetitionStatus = "registration"
	StatusActive       CompetitionStatus = "active"
	StatusCompleted    CompetitionStatus = "completed"
	StatusCanceled     CompetitionStatus = "canceled"
)

// Competition is a read model of a competition row owned by the surrounding
// backend. The bracket engine never creates or updates competitions; it only
// reads the status to decide whether a destructive rebuild is still allowed.
type Competition struct {
	ID        int               `json:"id" db:"id"`
	Name      string            `json:"name" db:"name"`
	Status    CompetitionStatus `json:"status" db:"status"`
	StartDate time.Time         `json:"start_date" db:"start_date"`
	EndDate   time.Time         `json:"end_date" db:"end_date"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}

// AllowsRebuild reports whether the competition is still in a phase where
// discarding and regenerating brackets cannot destroy results that must be
// preserved.
func (c *Competition) AllowsRebuild() bool {
	return c.Status == StatusSoon || c.Status == StatusRegistration
}
