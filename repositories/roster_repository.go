package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/bracket-engine/models"
)

// RosterRepository is the registration collaborator: it lists confirmed
// roster entries for a (competition, category) key in confirmation order,
// which is the only seeding signal the engine gets.
type RosterRepository interface {
	ListConfirmed(ctx context.Context, competitionID int, categoryKey string) ([]*models.Participant, error)
	ListConfirmedCategories(ctx context.Context, competitionID int) ([]string, error)
}

type postgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) RosterRepository {
	return &postgresRosterRepository{db: db}
}

func (r *postgresRosterRepository) ListConfirmed(ctx context.Context, competitionID int, categoryKey string) ([]*models.Participant, error) {
	query := `
		SELECT id, competition_id, category_key, user_id, team_id, status, confirmed_at, created_at
		FROM participants
		WHERE competition_id = $1 AND category_key = $2 AND status = $3
		ORDER BY confirmed_at ASC, created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, competitionID, categoryKey, models.StatusParticipant)
	if err != nil {
		return nil, fmt.Errorf("failed to query confirmed participants for competition %d category %q: %w", competitionID, categoryKey, err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		if scanErr := rows.Scan(
			&p.ID,
			&p.CompetitionID,
			&p.CategoryKey,
			&p.UserID,
			&p.TeamID,
			&p.Status,
			&p.ConfirmedAt,
			&p.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", scanErr)
		}
		participants = append(participants, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during participant rows iteration: %w", err)
	}
	return participants, nil
}

func (r *postgresRosterRepository) ListConfirmedCategories(ctx context.Context, competitionID int) ([]string, error) {
	query := `
		SELECT DISTINCT category_key
		FROM participants
		WHERE competition_id = $1 AND status = $2
		ORDER BY category_key ASC`

	rows, err := r.db.QueryContext(ctx, query, competitionID, models.StatusParticipant)
	if err != nil {
		return nil, fmt.Errorf("failed to query confirmed categories for competition %d: %w", competitionID, err)
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var key string
		if scanErr := rows.Scan(&key); scanErr != nil {
			return nil, fmt.Errorf("failed to scan category key: %w", scanErr)
		}
		categories = append(categories, key)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during category rows iteration: %w", err)
	}
	return categories, nil
}
