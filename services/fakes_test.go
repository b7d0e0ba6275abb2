package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
	"github.com/Dosada05/bracket-engine/storage"
)

// The services manage transactions and advisory locks through *sql.DB, so
// the tests register a driver whose statements all succeed and keep the
// actual data in the in-memory store below. The fake repositories ignore
// the executor they are handed.
type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) { return stubStmt{}, nil }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

type stubStmt struct{}

func (stubStmt) Close() error  { return nil }
func (stubStmt) NumInput() int { return -1 }
func (stubStmt) Exec([]driver.Value) (driver.Result, error) {
	return driver.RowsAffected(1), nil
}
func (stubStmt) Query([]driver.Value) (driver.Rows, error) { return stubRows{}, nil }

type stubRows struct{}

func (stubRows) Columns() []string         { return nil }
func (stubRows) Close() error              { return nil }
func (stubRows) Next([]driver.Value) error { return io.EOF }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

var openStubDB = sync.OnceValue(func() *sql.DB {
	sql.Register("servicetest", stubDriver{})
	db, err := sql.Open("servicetest", "")
	if err != nil {
		panic(err)
	}
	return db
})

// memoryStore holds all entities behind a single lock, shared by the fake
// repositories so cascades behave like the real schema's ON DELETE CASCADE.
type memoryStore struct {
	mu           sync.Mutex
	competitions map[int]models.Competition
	participants []models.Participant
	brackets     map[int]models.Bracket
	entries      map[int]models.BracketEntry
	matches      map[int]models.Match
	nextID       int

	rosterErr error

	// beforeMatchLock runs before GetByIDForUpdate resolves, letting tests
	// interleave a competing rebuild at the exact point the real advisory
	// lock would admit one.
	beforeMatchLock func(store *memoryStore, matchID int)
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		competitions: make(map[int]models.Competition),
		brackets:     make(map[int]models.Bracket),
		entries:      make(map[int]models.BracketEntry),
		matches:      make(map[int]models.Match),
		nextID:       1,
	}
}

func (s *memoryStore) id() int {
	id := s.nextID
	s.nextID++
	return id
}

func (s *memoryStore) addCompetition(status models.CompetitionStatus) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.competitions[id] = models.Competition{ID: id, Name: fmt.Sprintf("competition %d", id), Status: status}
	return id
}

func (s *memoryStore) addParticipants(competitionID int, categoryKey string, count int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, count)
	for i := 0; i < count; i++ {
		id := s.id()
		confirmed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute)
		s.participants = append(s.participants, models.Participant{
			ID:            id,
			CompetitionID: competitionID,
			CategoryKey:   categoryKey,
			Status:        models.StatusParticipant,
			ConfirmedAt:   &confirmed,
			CreatedAt:     confirmed,
		})
		ids[i] = id
	}
	return ids
}

func (s *memoryStore) deleteBracketByKey(competitionID int, categoryKey string) {
	for id, b := range s.brackets {
		if b.CompetitionID == competitionID && b.CategoryKey == categoryKey {
			delete(s.brackets, id)
			for eid, e := range s.entries {
				if e.BracketID == id {
					delete(s.entries, eid)
				}
			}
			for mid, m := range s.matches {
				if m.BracketID == id {
					delete(s.matches, mid)
				}
			}
		}
	}
}

func (s *memoryStore) bracketByKey(competitionID int, categoryKey string) *models.Bracket {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.brackets {
		if b.CompetitionID == competitionID && b.CategoryKey == categoryKey {
			copied := b
			return &copied
		}
	}
	return nil
}

func (s *memoryStore) matchAt(bracketID, round, position int) *models.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.matches {
		if m.BracketID == bracketID && m.Round == round && m.Position == position {
			copied := m
			return &copied
		}
	}
	return nil
}

func (s *memoryStore) sortedMatches(bracketID int) []models.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Match, 0)
	for _, m := range s.matches {
		if m.BracketID == bracketID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].Position < out[j].Position
	})
	return out
}

type fakeCompetitionRepo struct{ store *memoryStore }

func (r *fakeCompetitionRepo) GetByID(_ context.Context, id int) (*models.Competition, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.competitions[id]
	if !ok {
		return nil, repositories.ErrCompetitionNotFound
	}
	copied := c
	return &copied, nil
}

type fakeRosterRepo struct{ store *memoryStore }

func (r *fakeRosterRepo) ListConfirmed(_ context.Context, competitionID int, categoryKey string) ([]*models.Participant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.rosterErr != nil {
		return nil, r.store.rosterErr
	}
	out := make([]*models.Participant, 0)
	for i := range r.store.participants {
		p := r.store.participants[i]
		if p.CompetitionID == competitionID && p.CategoryKey == categoryKey && p.Status == models.StatusParticipant {
			copied := p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRosterRepo) ListConfirmedCategories(_ context.Context, competitionID int) ([]string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.rosterErr != nil {
		return nil, r.store.rosterErr
	}
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, p := range r.store.participants {
		if p.CompetitionID == competitionID && p.Status == models.StatusParticipant && !seen[p.CategoryKey] {
			seen[p.CategoryKey] = true
			out = append(out, p.CategoryKey)
		}
	}
	sort.Strings(out)
	return out, nil
}

type fakeBracketRepo struct{ store *memoryStore }

func (r *fakeBracketRepo) Create(_ context.Context, _ repositories.SQLExecutor, bracket *models.Bracket) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	bracket.ID = r.store.id()
	bracket.CreatedAt = time.Now()
	r.store.brackets[bracket.ID] = *bracket
	return nil
}

func (r *fakeBracketRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Bracket, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.brackets[id]
	if !ok {
		return nil, repositories.ErrBracketNotFound
	}
	copied := b
	return &copied, nil
}

func (r *fakeBracketRepo) GetByKey(_ context.Context, _ repositories.SQLExecutor, competitionID int, categoryKey string) (*models.Bracket, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, b := range r.store.brackets {
		if b.CompetitionID == competitionID && b.CategoryKey == categoryKey {
			copied := b
			return &copied, nil
		}
	}
	return nil, repositories.ErrBracketNotFound
}

func (r *fakeBracketRepo) ListByCompetition(_ context.Context, competitionID int) ([]*models.Bracket, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.Bracket, 0)
	for _, b := range r.store.brackets {
		if b.CompetitionID == competitionID {
			copied := b
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryKey < out[j].CategoryKey })
	return out, nil
}

func (r *fakeBracketRepo) DeleteByKey(_ context.Context, _ repositories.SQLExecutor, competitionID int, categoryKey string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.deleteBracketByKey(competitionID, categoryKey)
	return nil
}

func (r *fakeBracketRepo) CreateEntry(_ context.Context, _ repositories.SQLExecutor, entry *models.BracketEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	entry.ID = r.store.id()
	r.store.entries[entry.ID] = *entry
	return nil
}

func (r *fakeBracketRepo) ListEntries(_ context.Context, bracketID int) ([]*models.BracketEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.BracketEntry, 0)
	for _, e := range r.store.entries {
		if e.BracketID == bracketID {
			copied := e
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seed < out[j].Seed })
	return out, nil
}

type fakeMatchRepo struct{ store *memoryStore }

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	match.ID = r.store.id()
	match.CreatedAt = time.Now()
	r.store.matches[match.ID] = *match
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.getLocked(id)
}

func (r *fakeMatchRepo) GetByIDForUpdate(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	if hook := r.store.beforeMatchLock; hook != nil {
		hook(r.store, id)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.getLocked(id)
}

func (r *fakeMatchRepo) getLocked(id int) (*models.Match, error) {
	m, ok := r.store.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := m
	return &copied, nil
}

func (r *fakeMatchRepo) ListByBracket(_ context.Context, _ repositories.SQLExecutor, bracketID int) ([]*models.Match, error) {
	matches := r.store.sortedMatches(bracketID)
	out := make([]*models.Match, len(matches))
	for i := range matches {
		copied := matches[i]
		out[i] = &copied
	}
	return out, nil
}

func (r *fakeMatchRepo) UpdateNextMatchInfo(_ context.Context, _ repositories.SQLExecutor, matchID int, nextMatchID *int, winnerToSlot *int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m, ok := r.store.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.NextMatchID = nextMatchID
	m.WinnerToSlot = winnerToSlot
	r.store.matches[matchID] = m
	return nil
}

func (r *fakeMatchRepo) UpdateResult(_ context.Context, _ repositories.SQLExecutor, matchID int, score *string, status models.MatchStatus, winnerParticipantID *int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m, ok := r.store.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Score = score
	m.Status = status
	m.WinnerParticipantID = winnerParticipantID
	r.store.matches[matchID] = m
	return nil
}

func (r *fakeMatchRepo) UpdateSlot(_ context.Context, _ repositories.SQLExecutor, matchID int, slot int, participantID *int, slotStatus models.SlotStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m, ok := r.store.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	switch slot {
	case 1:
		m.Slot1ParticipantID = participantID
		m.Slot1Status = slotStatus
	case 2:
		m.Slot2ParticipantID = participantID
		m.Slot2Status = slotStatus
	default:
		return fmt.Errorf("invalid slot %d", slot)
	}
	r.store.matches[matchID] = m
	return nil
}

type fakeArchiver struct {
	mu        sync.Mutex
	snapshots []*storage.BracketSnapshot
}

func (a *fakeArchiver) Archive(_ context.Context, snapshot *storage.BracketSnapshot) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snapshots = append(a.snapshots, snapshot)
	return fmt.Sprintf("archive/%d.json", snapshot.Bracket.ID), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
