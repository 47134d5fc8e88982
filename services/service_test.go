package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bracketforge/tournament-engine/models"
	"github.com/bracketforge/tournament-engine/testutils"
	"github.com/google/uuid"
	"github.com/itbasis/go-clock"
	"github.com/stretchr/testify/require"
)

// env wires both services against the in-memory store with a mock clock, so
// tests drive full tournament lifecycles deterministically.
type env struct {
	store       *testutils.Store
	clock       *clock.Mock
	tournaments TournamentService
	matches     MatchService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store := testutils.NewStore()
	clk := clock.NewMock()
	clk.Set(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	locker := NewTournamentLocker()
	sink := NewAuditService(store.AuditLog(), nil, clk, logger)

	e := &env{store: store, clock: clk}
	e.tournaments = NewTournamentService(
		store.TxRunner(), store.Tournaments(), store.Players(), store.Matches(),
		store.Groups(), store.Standings(), store.Positions(), store.Settings(),
		sink, locker, clk, logger,
	)
	e.matches = NewMatchService(
		store.TxRunner(), store.Tournaments(), store.Players(), store.Matches(),
		store.Groups(), store.Standings(), store.Positions(), store.Settings(),
		sink, locker, clk, logger,
	)
	return e
}

func (e *env) createTournament(t *testing.T, name string, format models.FormatType, maxPlayers int, settings *models.FormatSettings) *models.Tournament {
	t.Helper()
	now := e.clock.Now()
	tour, err := e.tournaments.CreateTournament(context.Background(), CreateTournamentInput{
		Name:                 name,
		GameTitle:            "FIFA 25",
		Format:               format,
		MaxPlayers:           maxPlayers,
		RegistrationDeadline: now.Add(time.Hour),
		StartDate:            now.Add(2 * time.Hour),
		Settings:             settings,
	}, "organizer")
	require.NoError(t, err)
	return tour
}

func (e *env) registerPlayers(t *testing.T, tournamentID uuid.UUID, n int) []*models.Player {
	t.Helper()
	players := make([]*models.Player, n)
	for i := range players {
		p, err := e.tournaments.RegisterPlayer(context.Background(), tournamentID, RegisterPlayerInput{
			Name:     "Player " + string(rune('A'+i)),
			GamerTag: "tag-" + string(rune('a'+i)),
		}, "organizer")
		require.NoError(t, err)
		players[i] = p
	}
	return players
}

// startTournament advances past the registration deadline and generates
// fixtures.
func (e *env) startTournament(t *testing.T, tournamentID uuid.UUID) *models.Tournament {
	t.Helper()
	e.clock.Add(90 * time.Minute)
	tour, err := e.tournaments.GenerateFixtures(context.Background(), tournamentID, false, "organizer")
	require.NoError(t, err)
	return tour
}

func (e *env) submit(t *testing.T, matchID uuid.UUID, s1, s2 int) *models.Match {
	t.Helper()
	m, err := e.matches.SubmitResult(context.Background(), matchID, MatchResultInput{
		Player1Score: s1,
		Player2Score: s2,
	}, "referee")
	require.NoError(t, err)
	return m
}

// matchAt fetches the match at an elimination bracket address, failing the
// test when it does not exist.
func (e *env) matchAt(t *testing.T, tournamentID uuid.UUID, bracket models.BracketType, round, slot int) *models.Match {
	t.Helper()
	m := e.store.MatchBySlot(tournamentID, bracket, round, slot)
	require.NotNil(t, m, "no match at %s round %d slot %d", bracket, round, slot)
	return m
}

func (e *env) player(t *testing.T, playerID uuid.UUID) *models.Player {
	t.Helper()
	p, err := e.store.Players().GetByID(context.Background(), nil, playerID)
	require.NoError(t, err)
	return p
}

func (e *env) tournament(t *testing.T, tournamentID uuid.UUID) *models.Tournament {
	t.Helper()
	tour, err := e.store.Tournaments().GetByID(context.Background(), nil, tournamentID)
	require.NoError(t, err)
	return tour
}

func (e *env) auditActions() []string {
	entries := e.store.AuditEntries()
	actions := make([]string, len(entries))
	for i, entry := range entries {
		actions[i] = entry.Action
	}
	return actions
}

func countAction(actions []string, action string) int {
	n := 0
	for _, a := range actions {
		if a == action {
			n++
		}
	}
	return n
}
