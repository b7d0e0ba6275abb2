package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Dosada05/bracket-engine/brackets"
	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
)

// MatchService records and corrects match outcomes. Recording marks the
// match completed and propagates the winner into the parent match's slot,
// auto-advancing transitively over bye slots. Correction is the distinct
// ClearResult operation: it clears the match and every later-round match
// that consumed its winner, walking the parent links forward.
type MatchService interface {
	RecordResult(ctx context.Context, matchID int, winnerParticipantID int, score *string) (*models.Match, error)
	ClearResult(ctx context.Context, matchID int) (*models.Match, error)
}

type matchService struct {
	db          *sql.DB
	bracketRepo repositories.BracketRepository
	matchRepo   repositories.MatchRepository
	hub         *brackets.Hub
	logger      *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	bracketRepo repositories.BracketRepository,
	matchRepo repositories.MatchRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:          db,
		bracketRepo: bracketRepo,
		matchRepo:   matchRepo,
		hub:         hub,
		logger:      logger,
	}
}

func (s *matchService) RecordResult(ctx context.Context, matchID int, winnerParticipantID int, score *string) (*models.Match, error) {
	var (
		updated       *models.Match
		competitionID int
	)

	err := s.inBracketTx(ctx, matchID, func(tx *sql.Tx, bracket *models.Bracket, match *models.Match) error {
		competitionID = bracket.CompetitionID

		if match.Status == models.MatchStatusCompleted {
			return fmt.Errorf("%w: match %d", ErrMatchAlreadyCompleted, matchID)
		}
		if !match.BothSlotsOccupied() {
			return fmt.Errorf("%w: match %d", ErrMatchNotReady, matchID)
		}
		slot := match.SlotOf(winnerParticipantID)
		if slot == 0 {
			return fmt.Errorf("%w: participant %d in match %d", ErrInvalidWinner, winnerParticipantID, matchID)
		}

		if err := s.matchRepo.UpdateResult(ctx, tx, matchID, score, models.MatchStatusCompleted, &winnerParticipantID); err != nil {
			return err
		}
		if match.NextMatchID != nil {
			if err := s.propagateWinner(ctx, tx, *match.NextMatchID, *match.WinnerToSlot, winnerParticipantID); err != nil {
				return err
			}
		}

		fresh, err := s.matchRepo.GetByID(ctx, tx, matchID)
		if err != nil {
			return err
		}
		updated = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match result recorded",
		slog.Int("match_id", matchID),
		slog.Int("winner_participant_id", winnerParticipantID),
		slog.String("score", derefString(score)))

	s.broadcast(competitionID, brackets.EventMatchResult, updated)
	return updated, nil
}

func (s *matchService) ClearResult(ctx context.Context, matchID int) (*models.Match, error) {
	var (
		updated       *models.Match
		competitionID int
	)

	err := s.inBracketTx(ctx, matchID, func(tx *sql.Tx, bracket *models.Bracket, match *models.Match) error {
		competitionID = bracket.CompetitionID

		if match.Status != models.MatchStatusCompleted || match.WinnerParticipantID == nil {
			return fmt.Errorf("%w: match %d", ErrMatchNotCompleted, matchID)
		}

		if match.NextMatchID != nil {
			if err := s.clearDownstream(ctx, tx, *match.NextMatchID, *match.WinnerToSlot, *match.WinnerParticipantID); err != nil {
				return err
			}
		}
		if err := s.matchRepo.UpdateResult(ctx, tx, matchID, nil, models.StatusScheduled, nil); err != nil {
			return err
		}

		fresh, err := s.matchRepo.GetByID(ctx, tx, matchID)
		if err != nil {
			return err
		}
		updated = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match result cleared", slog.Int("match_id", matchID))

	s.broadcast(competitionID, brackets.EventMatchResultCleared, updated)
	return updated, nil
}

// inBracketTx runs fn inside a transaction holding the shared per-key
// advisory lock, with the match row locked. The lock order matters: the
// advisory lock is taken before any row lock, so a result write queued
// behind an in-flight rebuild can never deadlock it: it waits, then finds
// its match gone and fails with ErrConcurrentRebuildConflict.
func (s *matchService) inBracketTx(ctx context.Context, matchID int, fn func(tx *sql.Tx, bracket *models.Bracket, match *models.Match) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			_ = tx.Rollback()
		}
	}()

	// Snapshot read to discover the key; no row lock held while waiting on
	// the advisory lock below.
	peek, txErr := s.matchRepo.GetByID(ctx, tx, matchID)
	if txErr != nil {
		if errors.Is(txErr, repositories.ErrMatchNotFound) {
			txErr = fmt.Errorf("%w: match %d", ErrMatchNotFound, matchID)
		}
		return txErr
	}

	bracket, txErr := s.bracketRepo.GetByID(ctx, tx, peek.BracketID)
	if txErr != nil {
		if errors.Is(txErr, repositories.ErrBracketNotFound) {
			txErr = fmt.Errorf("%w: match %d", ErrConcurrentRebuildConflict, matchID)
		}
		return txErr
	}

	if txErr = repositories.AcquireRecordLock(ctx, tx, bracket.CompetitionID, bracket.CategoryKey); txErr != nil {
		return txErr
	}

	// Re-read under the lock: a rebuild that committed while we waited has
	// discarded this match.
	match, txErr := s.matchRepo.GetByIDForUpdate(ctx, tx, matchID)
	if txErr != nil {
		if errors.Is(txErr, repositories.ErrMatchNotFound) {
			txErr = fmt.Errorf("%w: match %d", ErrConcurrentRebuildConflict, matchID)
		}
		return txErr
	}

	if txErr = fn(tx, bracket, match); txErr != nil {
		return txErr
	}

	if txErr = tx.Commit(); txErr != nil {
		return fmt.Errorf("failed to commit transaction: %w", txErr)
	}
	return nil
}

// propagateWinner writes the winner into its slot of the parent match. If
// the parent's other slot is a bye the parent resolves immediately and the
// winner keeps advancing; bye propagation is transitive.
func (s *matchService) propagateWinner(ctx context.Context, tx *sql.Tx, parentID, slot, participantID int) error {
	parent, err := s.matchRepo.GetByIDForUpdate(ctx, tx, parentID)
	if err != nil {
		// A recorded link pointing at a missing match means the bracket
		// structure is corrupt; fail loudly rather than leave the winner
		// stranded.
		return fmt.Errorf("internal error: parent match %d unreachable: %w", parentID, err)
	}

	if err := s.matchRepo.UpdateSlot(ctx, tx, parentID, slot, &participantID, models.SlotOccupied); err != nil {
		return err
	}

	otherStatus := parent.Slot2Status
	if slot == 2 {
		otherStatus = parent.Slot1Status
	}
	if otherStatus != models.SlotBye {
		return nil
	}

	if err := s.matchRepo.UpdateResult(ctx, tx, parentID, nil, models.MatchStatusCompleted, &participantID); err != nil {
		return err
	}
	if parent.NextMatchID != nil {
		return s.propagateWinner(ctx, tx, *parent.NextMatchID, *parent.WinnerToSlot, participantID)
	}
	return nil
}

// clearDownstream reverses a propagation: it removes the participant from
// the parent slot it advanced into, first clearing any result the parent
// itself produced with that participant (recursively, to the final).
func (s *matchService) clearDownstream(ctx context.Context, tx *sql.Tx, parentID, slot, participantID int) error {
	parent, err := s.matchRepo.GetByIDForUpdate(ctx, tx, parentID)
	if err != nil {
		return fmt.Errorf("internal error: parent match %d unreachable: %w", parentID, err)
	}

	occupant := parent.Slot1ParticipantID
	if slot == 2 {
		occupant = parent.Slot2ParticipantID
	}
	if occupant == nil || *occupant != participantID {
		return fmt.Errorf("internal error: match %d slot %d does not hold participant %d", parentID, slot, participantID)
	}

	if parent.Status == models.MatchStatusCompleted && parent.WinnerParticipantID != nil {
		if parent.NextMatchID != nil {
			if err := s.clearDownstream(ctx, tx, *parent.NextMatchID, *parent.WinnerToSlot, *parent.WinnerParticipantID); err != nil {
				return err
			}
		}
		if err := s.matchRepo.UpdateResult(ctx, tx, parentID, nil, models.StatusScheduled, nil); err != nil {
			return err
		}
	}

	return s.matchRepo.UpdateSlot(ctx, tx, parentID, slot, nil, models.SlotPending)
}

func (s *matchService) broadcast(competitionID int, eventType string, match *models.Match) {
	if s.hub == nil || match == nil {
		return
	}
	room := strconv.Itoa(competitionID)
	s.hub.BroadcastToRoom(room, brackets.WebSocketMessage{
		Type:    eventType,
		RoomID:  room,
		Payload: match,
	})
}
