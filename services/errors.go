package services

import (
	"errors"

	"github.com/Dosada05/bracket-engine/brackets"
)

// Shared service-layer errors, mapped to HTTP statuses in the handlers.
// Callers are expected to distinguish "nothing to do" (insufficient
// participants), "retry against fresh state" (concurrent rebuild conflict)
// and "caller bug" (the result-input errors); nothing here is retried
// automatically.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Entity lookups
	ErrCompetitionNotFound = errors.New("competition not found")
	ErrBracketNotFound     = errors.New("bracket not found")
	ErrMatchNotFound       = errors.New("match not found")

	// Rebuild
	// ErrInsufficientParticipants is benign: the category is skipped and
	// reported, other categories of a batch proceed.
	ErrInsufficientParticipants = brackets.ErrInsufficientParticipants
	ErrRebuildNotAllowed        = errors.New("competition status no longer allows bracket rebuild")
	ErrRosterUnavailable        = errors.New("confirmed participant roster unavailable")

	// Result recording
	ErrMatchAlreadyCompleted = errors.New("match result already recorded")
	ErrMatchNotCompleted     = errors.New("match has no recorded result to clear")
	ErrMatchNotReady         = errors.New("match slots are not both occupied yet")
	ErrInvalidWinner         = errors.New("winner does not occupy either slot of the match")

	// ErrConcurrentRebuildConflict means the write targeted a bracket that
	// a rebuild has since discarded; the caller should refetch and retry
	// against the fresh bracket.
	ErrConcurrentRebuildConflict = errors.New("bracket superseded by a concurrent rebuild")

	// Auth
	ErrInvalidCredentials = errors.New("invalid email or password")
)
