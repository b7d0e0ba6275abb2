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
	ErrBracketNotFound           = errors.New("bracket not found")
	ErrBracketCompetitionInvalid = errors.New("bracket competition conflict or invalid")
	ErrBracketKeyConflict        = errors.New("bracket already exists for this competition and category")
)

type BracketRepository interface {
	Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Bracket, error)
	GetByKey(ctx context.Context, exec SQLExecutor, competitionID int, categoryKey string) (*models.Bracket, error)
	ListByCompetition(ctx context.Context, competitionID int) ([]*models.Bracket, error)
	DeleteByKey(ctx context.Context, exec SQLExecutor, competitionID int, categoryKey string) error
	CreateEntry(ctx context.Context, exec SQLExecutor, entry *models.BracketEntry) error
	ListEntries(ctx context.Context, bracketID int) ([]*models.BracketEntry, error)
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

func (r *postgresBracketRepository) Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error {
	query := `
		INSERT INTO brackets (competition_id, category_key, size, round_count)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		bracket.CompetitionID,
		bracket.CategoryKey,
		bracket.Size,
		bracket.RoundCount,
	).Scan(&bracket.ID, &bracket.CreatedAt)

	return r.handleBracketError(err)
}

func (r *postgresBracketRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Bracket, error) {
	query := `
		SELECT id, competition_id, category_key, size, round_count, created_at
		FROM brackets
		WHERE id = $1`

	return r.scanBracket(exec.QueryRowContext(ctx, query, id))
}

func (r *postgresBracketRepository) GetByKey(ctx context.Context, exec SQLExecutor, competitionID int, categoryKey string) (*models.Bracket, error) {
	query := `
		SELECT id, competition_id, category_key, size, round_count, created_at
		FROM brackets
		WHERE competition_id = $1 AND category_key = $2`

	return r.scanBracket(exec.QueryRowContext(ctx, query, competitionID, categoryKey))
}

func (r *postgresBracketRepository) scanBracket(row *sql.Row) (*models.Bracket, error) {
	bracket := &models.Bracket{}
	err := row.Scan(
		&bracket.ID,
		&bracket.CompetitionID,
		&bracket.CategoryKey,
		&bracket.Size,
		&bracket.RoundCount,
		&bracket.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to scan bracket: %w", err)
	}
	return bracket, nil
}

func (r *postgresBracketRepository) ListByCompetition(ctx context.Context, competitionID int) ([]*models.Bracket, error) {
	query := `
		SELECT id, competition_id, category_key, size, round_count, created_at
		FROM brackets
		WHERE competition_id = $1
		ORDER BY category_key ASC`

	rows, err := r.db.QueryContext(ctx, query, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query brackets for competition %d: %w", competitionID, err)
	}
	defer rows.Close()

	brackets := make([]*models.Bracket, 0)
	for rows.Next() {
		var b models.Bracket
		if scanErr := rows.Scan(
			&b.ID,
			&b.CompetitionID,
			&b.CategoryKey,
			&b.Size,
			&b.RoundCount,
			&b.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan bracket row: %w", scanErr)
		}
		brackets = append(brackets, &b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during bracket rows iteration: %w", err)
	}
	return brackets, nil
}

// DeleteByKey removes the bracket for a key along with its matches and
// entries (ON DELETE CASCADE). Deleting a key with no bracket is not an
// error: the first rebuild for a key has nothing to discard.
func (r *postgresBracketRepository) DeleteByKey(ctx context.Context, exec SQLExecutor, competitionID int, categoryKey string) error {
	query := `DELETE FROM brackets WHERE competition_id = $1 AND category_key = $2`
	_, err := exec.ExecContext(ctx, query, competitionID, categoryKey)
	if err != nil {
		return fmt.Errorf("failed to delete bracket for competition %d category %q: %w", competitionID, categoryKey, err)
	}
	return nil
}

func (r *postgresBracketRepository) CreateEntry(ctx context.Context, exec SQLExecutor, entry *models.BracketEntry) error {
	query := `
		INSERT INTO bracket_entries (bracket_id, participant_id, seed, half)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := exec.QueryRowContext(ctx, query,
		entry.BracketID,
		entry.ParticipantID,
		entry.Seed,
		entry.Half,
	).Scan(&entry.ID)

	return r.handleBracketError(err)
}

func (r *postgresBracketRepository) ListEntries(ctx context.Context, bracketID int) ([]*models.BracketEntry, error) {
	query := `
		SELECT id, bracket_id, participant_id, seed, half
		FROM bracket_entries
		WHERE bracket_id = $1
		ORDER BY seed ASC`

	rows, err := r.db.QueryContext(ctx, query, bracketID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for bracket %d: %w", bracketID, err)
	}
	defer rows.Close()

	entries := make([]*models.BracketEntry, 0)
	for rows.Next() {
		var e models.BracketEntry
		if scanErr := rows.Scan(&e.ID, &e.BracketID, &e.ParticipantID, &e.Seed, &e.Half); scanErr != nil {
			return nil, fmt.Errorf("failed to scan bracket entry row: %w", scanErr)
		}
		entries = append(entries, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during bracket entry rows iteration: %w", err)
	}
	return entries, nil
}

func (r *postgresBracketRepository) handleBracketError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		// "23503": foreign_key_violation, "23505": unique_violation
		switch pqErr.Constraint {
		case "brackets_competition_id_fkey":
			return ErrBracketCompetitionInvalid
		case "brackets_competition_id_category_key_key":
			return ErrBracketKeyConflict
		}
	}
	return err
}
