package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound                 = errors.New("match not found")
	ErrMatchBracketInvalid           = errors.New("match bracket conflict or invalid")
	ErrMatchParticipantInvalid       = errors.New("match participant conflict or invalid")
	ErrMatchWinnerParticipantInvalid = errors.New("match winner participant conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByBracket(ctx context.Context, exec SQLExecutor, bracketID int) ([]*models.Match, error)
	UpdateNextMatchInfo(ctx context.Context, exec SQLExecutor, matchID int, nextMatchID *int, winnerToSlot *int) error
	UpdateResult(ctx context.Context, exec SQLExecutor, matchID int, score *string, status models.MatchStatus, winnerParticipantID *int) error
	UpdateSlot(ctx context.Context, exec SQLExecutor, matchID int, slot int, participantID *int, slotStatus models.SlotStatus) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	id, bracket_id, round, position,
	slot1_participant_id, slot2_participant_id, slot1_status, slot2_status,
	score, status, winner_participant_id, next_match_id, winner_to_slot, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(bracket_id, round, position,
			 slot1_participant_id, slot2_participant_id, slot1_status, slot2_status,
			 score, status, winner_participant_id, next_match_id, winner_to_slot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		match.BracketID,
		match.Round,
		match.Position,
		match.Slot1ParticipantID,
		match.Slot2ParticipantID,
		match.Slot1Status,
		match.Slot2Status,
		match.Score,
		match.Status,
		match.WinnerParticipantID,
		match.NextMatchID,
		match.WinnerToSlot,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanMatch(exec.QueryRowContext(ctx, query, id), id)
}

// GetByIDForUpdate locks the match row for the rest of the transaction so
// concurrent result writes against the same match serialize instead of
// double-completing it.
func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`
	return r.scanMatch(exec.QueryRowContext(ctx, query, id), id)
}

func (r *postgresMatchRepository) scanMatch(row *sql.Row, id int) (*models.Match, error) {
	match := &models.Match{}
	err := row.Scan(
		&match.ID,
		&match.BracketID,
		&match.Round,
		&match.Position,
		&match.Slot1ParticipantID,
		&match.Slot2ParticipantID,
		&match.Slot1Status,
		&match.Slot2Status,
		&match.Score,
		&match.Status,
		&match.WinnerParticipantID,
		&match.NextMatchID,
		&match.WinnerToSlot,
		&match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByBracket(ctx context.Context, exec SQLExecutor, bracketID int) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE bracket_id = $1 ORDER BY round ASC, position ASC`

	rows, err := exec.QueryContext(ctx, query, bracketID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for bracket %d: %w", bracketID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var match models.Match
		if scanErr := rows.Scan(
			&match.ID,
			&match.BracketID,
			&match.Round,
			&match.Position,
			&match.Slot1ParticipantID,
			&match.Slot2ParticipantID,
			&match.Slot1Status,
			&match.Slot2Status,
			&match.Score,
			&match.Status,
			&match.WinnerParticipantID,
			&match.NextMatchID,
			&match.WinnerToSlot,
			&match.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, &match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateNextMatchInfo(ctx context.Context, exec SQLExecutor, matchID int, nextMatchID *int, winnerToSlot *int) error {
	query := `UPDATE matches SET next_match_id = $1, winner_to_slot = $2 WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, nextMatchID, winnerToSlot, matchID)
	if err != nil {
		return fmt.Errorf("UpdateNextMatchInfo: failed to execute query for match %d: %w", matchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, matchID int, score *string, status models.MatchStatus, winnerParticipantID *int) error {
	query := `UPDATE matches SET score = $1, status = $2, winner_participant_id = $3 WHERE id = $4`
	result, err := exec.ExecContext(ctx, query, score, status, winnerParticipantID, matchID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateSlot(ctx context.Context, exec SQLExecutor, matchID int, slot int, participantID *int, slotStatus models.SlotStatus) error {
	var query string
	switch slot {
	case 1:
		query = `UPDATE matches SET slot1_participant_id = $1, slot1_status = $2 WHERE id = $3`
	case 2:
		query = `UPDATE matches SET slot2_participant_id = $1, slot2_status = $2 WHERE id = $3`
	default:
		return fmt.Errorf("UpdateSlot: invalid slot %d for match %d", slot, matchID)
	}
	result, err := exec.ExecContext(ctx, query, participantID, slotStatus, matchID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		// "23503": foreign_key_violation
		switch pqErr.Constraint {
		case "matches_bracket_id_fkey":
			return ErrMatchBracketInvalid
		case "matches_slot1_participant_id_fkey", "matches_slot2_participant_id_fkey":
			return ErrMatchParticipantInvalid
		case "matches_winner_participant_id_fkey":
			return ErrMatchWinnerParticipantInvalid
		}
	}
	return err
}
