package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/bracket-engine/brackets"
	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
	"golang.org/x/sync/errgroup"
)

// PlacementService is the read side: full bracket views and final standings
// derived from the elimination structure. It never mutates a bracket and
// may be called at any point of play.
type PlacementService interface {
	GetBracket(ctx context.Context, bracketID int) (*models.Bracket, error)
	ListBrackets(ctx context.Context, competitionID int) ([]*models.Bracket, error)
	GetPlacements(ctx context.Context, bracketID int) ([]models.Placement, error)
}

type placementService struct {
	db          *sql.DB
	bracketRepo repositories.BracketRepository
	matchRepo   repositories.MatchRepository
	logger      *slog.Logger
}

func NewPlacementService(
	db *sql.DB,
	bracketRepo repositories.BracketRepository,
	matchRepo repositories.MatchRepository,
	logger *slog.Logger,
) PlacementService {
	return &placementService{
		db:          db,
		bracketRepo: bracketRepo,
		matchRepo:   matchRepo,
		logger:      logger,
	}
}

// GetBracket loads a bracket with its matches and seeded entries, fetching
// both in parallel.
func (s *placementService) GetBracket(ctx context.Context, bracketID int) (*models.Bracket, error) {
	bracket, err := s.bracketRepo.GetByID(ctx, s.db, bracketID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, fmt.Errorf("%w: bracket %d", ErrBracketNotFound, bracketID)
		}
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		matches, err := s.matchRepo.ListByBracket(gCtx, s.db, bracketID)
		if err != nil {
			return fmt.Errorf("failed to load matches for bracket %d: %w", bracketID, err)
		}
		bracket.Matches = matchesToValues(matches)
		return nil
	})

	g.Go(func() error {
		entries, err := s.bracketRepo.ListEntries(gCtx, bracketID)
		if err != nil {
			return fmt.Errorf("failed to load entries for bracket %d: %w", bracketID, err)
		}
		bracket.Entries = entriesToValues(entries)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bracket, nil
}

func (s *placementService) ListBrackets(ctx context.Context, competitionID int) ([]*models.Bracket, error) {
	bracketList, err := s.bracketRepo.ListByCompetition(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	return bracketList, nil
}

func (s *placementService) GetPlacements(ctx context.Context, bracketID int) ([]models.Placement, error) {
	bracket, err := s.GetBracket(ctx, bracketID)
	if err != nil {
		return nil, err
	}
	return brackets.ComputePlacements(bracket, bracket.Matches, bracket.Entries), nil
}
