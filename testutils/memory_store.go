// Package testutils provides in-memory repository implementations so service
// tests can exercise full tournament lifecycles without a database. The fake
// transaction runner applies writes directly; tests assert on outcomes, not
// on rollback behavior.
package testutils

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bracketforge/tournament-engine/models"
	"github.com/bracketforge/tournament-engine/repositories"
	"github.com/google/uuid"
)

type Store struct {
	mu  sync.Mutex
	seq int

	tournaments map[uuid.UUID]*models.Tournament
	settings    map[uuid.UUID]*models.FormatSettings
	players     map[uuid.UUID]*models.Player
	playerSeq   map[uuid.UUID]int
	groups      map[uuid.UUID]*models.Group
	memberships []*models.GroupMembership
	matches     map[uuid.UUID]*models.Match
	matchSeq    map[uuid.UUID]int
	standings   map[uuid.UUID]*models.GroupStanding
	positions   map[uuid.UUID]*models.BracketPosition

	audits    []*models.AuditEntry
	FailAudit bool
}

func NewStore() *Store {
	return &Store{
		tournaments: map[uuid.UUID]*models.Tournament{},
		settings:    map[uuid.UUID]*models.FormatSettings{},
		players:     map[uuid.UUID]*models.Player{},
		playerSeq:   map[uuid.UUID]int{},
		groups:      map[uuid.UUID]*models.Group{},
		matches:     map[uuid.UUID]*models.Match{},
		matchSeq:    map[uuid.UUID]int{},
		standings:   map[uuid.UUID]*models.GroupStanding{},
		positions:   map[uuid.UUID]*models.BracketPosition{},
	}
}

func (s *Store) next() int {
	s.seq++
	return s.seq
}

// TxRunner returns a runner that executes the unit of work in place.
func (s *Store) TxRunner() repositories.TxRunner {
	return memTxRunner{}
}

type memTxRunner struct{}

func (memTxRunner) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

// AuditEntries returns a snapshot of everything recorded so far.
func (s *Store) AuditEntries() []*models.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.AuditEntry, len(s.audits))
	copy(out, s.audits)
	return out
}

// MatchBySlot is a test convenience mirroring MatchRepository.FindBySlot.
func (s *Store) MatchBySlot(tournamentID uuid.UUID, bracket models.BracketType, round, slot int) *models.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.matches {
		if m.TournamentID == tournamentID && m.BracketType == bracket && m.Round == round && m.Slot == slot {
			return cloneMatch(m)
		}
	}
	return nil
}

// --- clone helpers, so callers never share memory with the store ---

func intPtr(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func uuidPtr(v *uuid.UUID) *uuid.UUID {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func strPtr(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func timePtr(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTournament(t *models.Tournament) *models.Tournament {
	c := *t
	c.CancelledAt = timePtr(t.CancelledAt)
	c.CancelledBy = strPtr(t.CancelledBy)
	c.Settings, c.Players, c.Groups, c.Matches = nil, nil, nil, nil
	return &c
}

func cloneSettings(cfg *models.FormatSettings) *models.FormatSettings {
	c := *cfg
	if cfg.SingleElimination != nil {
		v := *cfg.SingleElimination
		c.SingleElimination = &v
	}
	if cfg.DoubleElimination != nil {
		v := *cfg.DoubleElimination
		c.DoubleElimination = &v
	}
	if cfg.GroupKnockout != nil {
		v := *cfg.GroupKnockout
		c.GroupKnockout = &v
	}
	return &c
}

func clonePlayer(p *models.Player) *models.Player {
	c := *p
	c.Phone = strPtr(p.Phone)
	c.SeedNumber = intPtr(p.SeedNumber)
	return &c
}

func cloneGroup(g *models.Group) *models.Group {
	c := *g
	c.Members = nil
	return &c
}

func cloneMatch(m *models.Match) *models.Match {
	c := *m
	c.GroupID = uuidPtr(m.GroupID)
	c.Player1ID = uuidPtr(m.Player1ID)
	c.Player2ID = uuidPtr(m.Player2ID)
	c.Player1Score = intPtr(m.Player1Score)
	c.Player2Score = intPtr(m.Player2Score)
	c.WinnerID = uuidPtr(m.WinnerID)
	c.ConsoleAssigned = intPtr(m.ConsoleAssigned)
	c.ScheduledTime = timePtr(m.ScheduledTime)
	return &c
}

func cloneStanding(st *models.GroupStanding) *models.GroupStanding {
	c := *st
	c.Position = intPtr(st.Position)
	c.Player = nil
	return &c
}

func clonePosition(p *models.BracketPosition) *models.BracketPosition {
	c := *p
	c.RoundEliminated = intPtr(p.RoundEliminated)
	return &c
}

func sortBySeq[T any](items []T, key func(T) int) {
	sort.Slice(items, func(i, j int) bool { return key(items[i]) < key(items[j]) })
}

func sortStandings(sts []*models.GroupStanding) {
	sort.Slice(sts, func(i, j int) bool {
		a, b := sts[i], sts[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.ScoreDifference != b.ScoreDifference {
			return a.ScoreDifference > b.ScoreDifference
		}
		return a.ScoreFor > b.ScoreFor
	})
}

// bracketRank mirrors the order of the bracket_type enum in the schema.
func bracketRank(b models.BracketType) int {
	switch b {
	case models.BracketGroup:
		return 0
	case models.BracketWinners:
		return 1
	case models.BracketLosers:
		return 2
	default:
		return 3
	}
}

func sortMatches(ms []*models.Match) {
	sort.Slice(ms, func(i, j int) bool {
		a, b := ms[i], ms[j]
		if bracketRank(a.BracketType) != bracketRank(b.BracketType) {
			return bracketRank(a.BracketType) < bracketRank(b.BracketType)
		}
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		return a.Slot < b.Slot
	})
}
