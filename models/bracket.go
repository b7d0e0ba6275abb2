package models

import "time"

// GroupHalf marks which half of the bracket a seeded participant landed in.
// Seeds 1 and 2 are always in opposite halves, so they can only meet in the
// final. The half is derived from seed and size at build time; it is stored
// for display but never consulted by the engine afterwards.
type GroupHalf string

const (
	GroupHalfA GroupHalf = "A"
	GroupHalfB GroupHalf = "B"
)

// Bracket is the full single-elimination structure for one
// (competition, category) pair. A bracket owns all of its matches and is
// destroyed and recreated wholesale on every rebuild; there is no
// cross-rebuild match identity.
type Bracket struct {
	ID            int       `json:"id" db:"id"`
	CompetitionID int       `json:"competition_id" db:"competition_id"`
	CategoryKey   string    `json:"category_key" db:"category_key"`
	Size          int       `json:"size" db:"size"`
	RoundCount    int       `json:"round_count" db:"round_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	// Loaded on demand, not mapped directly.
	Matches []Match        `json:"matches,omitempty" db:"-"`
	Entries []BracketEntry `json:"entries,omitempty" db:"-"`
}

// BracketEntry records the seed a confirmed participant was assigned when
// the bracket was built. Kept per bracket so a later roster change (which
// triggers a rebuild) cannot silently change what an existing bracket
// claims about its own seeding.
type BracketEntry struct {
	ID            int       `json:"id" db:"id"`
	BracketID     int       `json:"bracket_id" db:"bracket_id"`
	ParticipantID int       `json:"participant_id" db:"participant_id"`
	Seed          int       `json:"seed" db:"seed"`
	Half          GroupHalf `json:"half" db:"half"`
}
