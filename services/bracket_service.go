package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Dosada05/bracket-engine/brackets"
	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
	"github.com/Dosada05/bracket-engine/storage"
	"golang.org/x/sync/errgroup"
)

// rebuildBatchConcurrency bounds how many categories of one competition are
// rebuilt in parallel. Different categories never contend on the same
// per-key lock, so a small fan-out is safe.
const rebuildBatchConcurrency = 4

// RebuildReport summarizes a rebuild call: how many brackets were created
// and which categories were skipped for having fewer than two confirmed
// participants.
type RebuildReport struct {
	Created int      `json:"created"`
	Skipped []string `json:"skipped"`
}

// BracketService is the rebuild coordinator: it regenerates the bracket of
// a (competition, category) key from the current confirmed roster,
// atomically replacing whatever bracket existed before. Rebuilds for the
// same key are serialized; the previous bracket stays untouched if anything
// fails before commit.
type BracketService interface {
	Rebuild(ctx context.Context, competitionID int, categoryKey string) (*RebuildReport, error)
	RebuildAll(ctx context.Context, competitionID int) (*RebuildReport, error)
}

type bracketService struct {
	db              *sql.DB
	competitionRepo repositories.CompetitionRepository
	rosterRepo      repositories.RosterRepository
	bracketRepo     repositories.BracketRepository
	matchRepo       repositories.MatchRepository
	generator       brackets.BracketGenerator
	archiver        storage.SnapshotArchiver
	hub             *brackets.Hub
	logger          *slog.Logger
	rebuildLocks    keyedMutex
}

func NewBracketService(
	db *sql.DB,
	competitionRepo repositories.CompetitionRepository,
	rosterRepo repositories.RosterRepository,
	bracketRepo repositories.BracketRepository,
	matchRepo repositories.MatchRepository,
	generator brackets.BracketGenerator,
	archiver storage.SnapshotArchiver,
	hub *brackets.Hub,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		db:              db,
		competitionRepo: competitionRepo,
		rosterRepo:      rosterRepo,
		bracketRepo:     bracketRepo,
		matchRepo:       matchRepo,
		generator:       generator,
		archiver:        archiver,
		hub:             hub,
		logger:          logger,
	}
}

func (s *bracketService) Rebuild(ctx context.Context, competitionID int, categoryKey string) (*RebuildReport, error) {
	if err := s.checkRebuildAllowed(ctx, competitionID); err != nil {
		return nil, err
	}

	report := &RebuildReport{Skipped: []string{}}
	if err := s.rebuildOne(ctx, competitionID, categoryKey); err != nil {
		if errors.Is(err, ErrInsufficientParticipants) {
			report.Skipped = append(report.Skipped, categoryKey)
			return report, nil
		}
		return nil, err
	}
	report.Created = 1
	return report, nil
}

func (s *bracketService) RebuildAll(ctx context.Context, competitionID int) (*RebuildReport, error) {
	if err := s.checkRebuildAllowed(ctx, competitionID); err != nil {
		return nil, err
	}

	categories, err := s.rosterRepo.ListConfirmedCategories(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRosterUnavailable, err)
	}

	report := &RebuildReport{Skipped: []string{}}
	results := make([]error, len(categories))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(rebuildBatchConcurrency)
	for i, categoryKey := range categories {
		i, categoryKey := i, categoryKey
		g.Go(func() error {
			err := s.rebuildOne(gCtx, competitionID, categoryKey)
			if err != nil && !errors.Is(err, ErrInsufficientParticipants) {
				return fmt.Errorf("rebuild for category %q: %w", categoryKey, err)
			}
			results[i] = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, categoryKey := range categories {
		if errors.Is(results[i], ErrInsufficientParticipants) {
			report.Skipped = append(report.Skipped, categoryKey)
		} else {
			report.Created++
		}
	}
	return report, nil
}

func (s *bracketService) checkRebuildAllowed(ctx context.Context, competitionID int) error {
	competition, err := s.competitionRepo.GetByID(ctx, competitionID)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return ErrCompetitionNotFound
		}
		return fmt.Errorf("failed to load competition %d: %w", competitionID, err)
	}
	if !competition.AllowsRebuild() {
		return fmt.Errorf("%w: competition %d is %s", ErrRebuildNotAllowed, competitionID, competition.Status)
	}
	return nil
}

// rebuildOne regenerates the bracket of a single key. It serializes against
// other rebuilds of the same key both in-process and, for the transaction
// itself, via the exclusive advisory lock shared with result recording.
func (s *bracketService) rebuildOne(ctx context.Context, competitionID int, categoryKey string) error {
	unlock := s.rebuildLocks.Lock(rebuildKey(competitionID, categoryKey))
	defer unlock()

	participants, err := s.rosterRepo.ListConfirmed(ctx, competitionID, categoryKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRosterUnavailable, err)
	}
	if len(participants) < 2 {
		return fmt.Errorf("%w: %d confirmed for competition %d category %q",
			ErrInsufficientParticipants, len(participants), competitionID, categoryKey)
	}

	participantIDs := make([]int, len(participants))
	for i, p := range participants {
		participantIDs[i] = p.ID
	}

	blueprint, err := s.generator.GenerateBracket(ctx, brackets.GenerateBracketParams{ParticipantIDs: participantIDs})
	if err != nil {
		return fmt.Errorf("failed to generate bracket structure for competition %d category %q: %w", competitionID, categoryKey, err)
	}

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
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed after rebuild error",
					slog.Any("rollback_error", rbErr), slog.Any("error", txErr))
			}
		}
	}()

	if txErr = repositories.AcquireRebuildLock(ctx, tx, competitionID, categoryKey); txErr != nil {
		return txErr
	}

	// Capture the outgoing bracket before discarding it, so it can be
	// archived after commit.
	snapshot, txErr := s.captureSnapshot(ctx, tx, competitionID, categoryKey)
	if txErr != nil {
		return txErr
	}

	if txErr = s.bracketRepo.DeleteByKey(ctx, tx, competitionID, categoryKey); txErr != nil {
		return txErr
	}

	bracket := &models.Bracket{
		CompetitionID: competitionID,
		CategoryKey:   categoryKey,
		Size:          blueprint.Size,
		RoundCount:    blueprint.RoundCount,
	}
	if txErr = s.bracketRepo.Create(ctx, tx, bracket); txErr != nil {
		return txErr
	}

	for _, entry := range blueprint.Entries {
		e := &models.BracketEntry{
			BracketID:     bracket.ID,
			ParticipantID: entry.ParticipantID,
			Seed:          entry.Seed,
			Half:          entry.Half,
		}
		if txErr = s.bracketRepo.CreateEntry(ctx, tx, e); txErr != nil {
			return txErr
		}
	}

	if txErr = s.persistMatches(ctx, tx, bracket.ID, blueprint); txErr != nil {
		return txErr
	}

	if txErr = tx.Commit(); txErr != nil {
		return fmt.Errorf("failed to commit rebuild transaction: %w", txErr)
	}

	s.logger.Info("bracket rebuilt",
		slog.Int("competition_id", competitionID),
		slog.String("category_key", categoryKey),
		slog.Int("bracket_id", bracket.ID),
		slog.Int("size", blueprint.Size),
		slog.Int("participants", len(participantIDs)),
		slog.Int("matches", len(blueprint.Matches)))

	s.archiveSnapshot(snapshot)

	if s.hub != nil {
		s.hub.BroadcastToRoom(strconv.Itoa(competitionID), brackets.WebSocketMessage{
			Type:   brackets.EventBracketRebuilt,
			RoomID: strconv.Itoa(competitionID),
			Payload: map[string]interface{}{
				"bracket_id":   bracket.ID,
				"category_key": categoryKey,
				"size":         blueprint.Size,
			},
		})
	}
	return nil
}

// persistMatches saves the blueprint in two passes, the first creating the
// rows in (round, position) order and the second wiring each child match to
// the row id of the match its winner feeds.
func (s *bracketService) persistMatches(ctx context.Context, tx *sql.Tx, bracketID int, blueprint *brackets.Blueprint) error {
	idByUID := make(map[string]int, len(blueprint.Matches))

	for _, bm := range blueprint.Matches {
		match := &models.Match{
			BracketID: bracketID,
			Round:     bm.Round,
			Position:  bm.Position,
			Status:    models.StatusScheduled,
		}
		match.Slot1ParticipantID, match.Slot1Status = slotFromBlueprint(bm.Slot1ParticipantID, bm.Source1UID)
		match.Slot2ParticipantID, match.Slot2Status = slotFromBlueprint(bm.Slot2ParticipantID, bm.Source2UID)

		if err := s.matchRepo.Create(ctx, tx, match); err != nil {
			return err
		}
		idByUID[bm.UID] = match.ID
	}

	for _, bm := range blueprint.Matches {
		targetID := idByUID[bm.UID]
		for slot, sourceUID := range map[int]*string{1: bm.Source1UID, 2: bm.Source2UID} {
			if sourceUID == nil {
				continue
			}
			sourceID, ok := idByUID[*sourceUID]
			if !ok {
				return fmt.Errorf("internal error: source match %s of %s was not persisted", *sourceUID, bm.UID)
			}
			slotCopy := slot
			if err := s.matchRepo.UpdateNextMatchInfo(ctx, tx, sourceID, &targetID, &slotCopy); err != nil {
				return err
			}
		}
	}
	return nil
}

func slotFromBlueprint(participantID *int, sourceUID *string) (*int, models.SlotStatus) {
	if participantID != nil {
		return participantID, models.SlotOccupied
	}
	if sourceUID != nil {
		return nil, models.SlotPending
	}
	// No participant and no feeding match means the opponent was a bye in a
	// pairing the generator chose to record anyway; keep it visible.
	return nil, models.SlotBye
}

func (s *bracketService) captureSnapshot(ctx context.Context, tx *sql.Tx, competitionID int, categoryKey string) (*storage.BracketSnapshot, error) {
	old, err := s.bracketRepo.GetByKey(ctx, tx, competitionID, categoryKey)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, nil
		}
		return nil, err
	}

	matches, err := s.matchRepo.ListByBracket(ctx, tx, old.ID)
	if err != nil {
		return nil, err
	}
	entries, err := s.bracketRepo.ListEntries(ctx, old.ID)
	if err != nil {
		return nil, err
	}

	return &storage.BracketSnapshot{
		Bracket:    *old,
		Entries:    entriesToValues(entries),
		Matches:    matchesToValues(matches),
		ArchivedAt: time.Now().UTC(),
	}, nil
}

// archiveSnapshot pushes the discarded bracket to object storage. Archival
// is best effort; a failure is logged and never undoes the rebuild.
func (s *bracketService) archiveSnapshot(snapshot *storage.BracketSnapshot) {
	if snapshot == nil || s.archiver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	key, err := s.archiver.Archive(ctx, snapshot)
	if err != nil {
		s.logger.Error("failed to archive discarded bracket",
			slog.Int("bracket_id", snapshot.Bracket.ID), slog.Any("error", err))
		return
	}
	s.logger.Info("discarded bracket archived",
		slog.Int("bracket_id", snapshot.Bracket.ID), slog.String("key", key))
}
