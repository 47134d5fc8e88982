package services

import (
	"context"
	"testing"

	"github.com/bracketforge/tournament-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Four players, grand final reset enabled. The losers-bracket champion takes
// the first grand final, forcing the deciding rematch.
func TestDoubleEliminationWithGrandFinalReset(t *testing.T) {
	e := newEnv(t)
	tour := e.createTournament(t, "Double Cup", models.FormatDoubleElimination, 8, nil)
	players := e.registerPlayers(t, tour.ID, 4)
	started := e.startTournament(t, tour.ID)
	require.Len(t, started.Matches, 2)

	// Winners round 1: seed 1 vs 4, seed 2 vs 3. Both rounds carry the
	// winners bracket label; "final" is reserved for the grand final.
	wb1 := e.matchAt(t, tour.ID, models.BracketWinners, 1, 0)
	wb2 := e.matchAt(t, tour.ID, models.BracketWinners, 1, 1)
	require.Equal(t, players[0].ID, *wb1.Player1ID)
	require.Equal(t, players[3].ID, *wb1.Player2ID)

	e.submit(t, wb1.ID, 2, 0) // p1 beats p4
	// The loser waits alive in the losers bracket.
	assert.Equal(t, models.PlayerRegistered, e.player(t, players[3].ID).Status)

	e.submit(t, wb2.ID, 2, 1) // p2 beats p3

	lb1 := e.matchAt(t, tour.ID, models.BracketLosers, 1, 0)
	require.Equal(t, players[3].ID, *lb1.Player1ID)
	require.Equal(t, players[2].ID, *lb1.Player2ID)
	e.submit(t, lb1.ID, 2, 0) // p4 beats p3
	assert.Equal(t, models.PlayerEliminated, e.player(t, players[2].ID).Status)

	wbFinal := e.matchAt(t, tour.ID, models.BracketWinners, 2, 0)
	require.Equal(t, players[0].ID, *wbFinal.Player1ID)
	require.Equal(t, players[1].ID, *wbFinal.Player2ID)
	e.submit(t, wbFinal.ID, 3, 1) // p1 beats p2, p2 drops to the losers final

	lbFinal := e.matchAt(t, tour.ID, models.BracketLosers, 2, 0)
	require.Equal(t, players[3].ID, *lbFinal.Player1ID)
	require.Equal(t, players[1].ID, *lbFinal.Player2ID)
	e.submit(t, lbFinal.ID, 0, 2) // p2 beats p4
	assert.Equal(t, models.PlayerEliminated, e.player(t, players[3].ID).Status)

	// Default settings include the third place match: losers of the last two
	// losers rounds pair up.
	third := e.matchAt(t, tour.ID, models.BracketFinal, 1, 1)
	require.Equal(t, players[3].ID, *third.Player1ID)
	require.Equal(t, players[2].ID, *third.Player2ID)
	e.submit(t, third.ID, 2, 1)
	assert.Equal(t, models.StatusActive, e.tournament(t, tour.ID).Status)

	// Grand final: p1 undefeated vs p2 with one loss. p2 winning evens the
	// score and forces the reset instead of ending the tournament.
	gf := e.matchAt(t, tour.ID, models.BracketFinal, 1, 0)
	require.Equal(t, players[0].ID, *gf.Player1ID)
	require.Equal(t, players[1].ID, *gf.Player2ID)
	e.submit(t, gf.ID, 1, 2)
	assert.Equal(t, models.StatusActive, e.tournament(t, tour.ID).Status)

	reset := e.matchAt(t, tour.ID, models.BracketFinal, 2, 0)
	require.Equal(t, players[0].ID, *reset.Player1ID)
	require.Equal(t, players[1].ID, *reset.Player2ID)
	e.submit(t, reset.ID, 3, 2)

	assert.Equal(t, models.StatusCompleted, e.tournament(t, tour.ID).Status)
	assert.Equal(t, models.PlayerWinner, e.player(t, players[0].ID).Status)
	assert.Equal(t, models.PlayerEliminated, e.player(t, players[1].ID).Status)

	// The runner-up's losers-bracket run is closed out by the deciding match.
	pos, err := e.store.Positions().Get(context.Background(), nil, tour.ID, players[1].ID, models.BracketLosers)
	require.NoError(t, err)
	require.NotNil(t, pos.RoundEliminated)
	assert.Equal(t, 2, *pos.RoundEliminated)
}

// With the reset disabled the first grand final decides the tournament even
// when the losers-bracket champion wins it.
func TestDoubleEliminationWithoutReset(t *testing.T) {
	e := newEnv(t)
	cfg := models.DefaultSettings(models.FormatDoubleElimination)
	cfg.DoubleElimination.GrandFinalResetEnabled = false
	cfg.DoubleElimination.ThirdPlaceMatch = false
	tour := e.createTournament(t, "No Reset Cup", models.FormatDoubleElimination, 8, cfg)
	players := e.registerPlayers(t, tour.ID, 4)
	e.startTournament(t, tour.ID)

	e.submit(t, e.matchAt(t, tour.ID, models.BracketWinners, 1, 0).ID, 2, 0)
	e.submit(t, e.matchAt(t, tour.ID, models.BracketWinners, 1, 1).ID, 2, 0)
	e.submit(t, e.matchAt(t, tour.ID, models.BracketLosers, 1, 0).ID, 2, 0)
	e.submit(t, e.matchAt(t, tour.ID, models.BracketWinners, 2, 0).ID, 0, 1)
	e.submit(t, e.matchAt(t, tour.ID, models.BracketLosers, 2, 0).ID, 0, 1)

	// No third place match was scheduled.
	assert.Nil(t, e.store.MatchBySlot(tour.ID, models.BracketFinal, 1, 1))

	// Seed 1 came back through the losers bracket and takes the grand final.
	// Without the reset that decides the tournament on the spot.
	gf := e.matchAt(t, tour.ID, models.BracketFinal, 1, 0)
	require.Equal(t, players[1].ID, *gf.Player1ID)
	require.Equal(t, players[0].ID, *gf.Player2ID)
	e.submit(t, gf.ID, 0, 3)

	assert.Equal(t, models.StatusCompleted, e.tournament(t, tour.ID).Status)
	assert.Equal(t, models.PlayerWinner, e.player(t, players[0].ID).Status)
	assert.Equal(t, models.PlayerEliminated, e.player(t, players[1].ID).Status)

	// Seed 2 never dropped out of the winners bracket, so the grand final
	// closes their winners run: no losers position exists for them.
	_, err := e.store.Positions().Get(context.Background(), nil, tour.ID, players[1].ID, models.BracketLosers)
	require.Error(t, err)
	pos, err := e.store.Positions().Get(context.Background(), nil, tour.ID, players[1].ID, models.BracketWinners)
	require.NoError(t, err)
	require.NotNil(t, pos.RoundEliminated)
	assert.Equal(t, 1, *pos.RoundEliminated)
}

// A two-player double elimination has no losers bracket: the opening match
// doubles as the qualifier and its loser goes straight to the grand final.
func TestDoubleEliminationTwoPlayers(t *testing.T) {
	e := newEnv(t)
	cfg := models.DefaultSettings(models.FormatDoubleElimination)
	cfg.DoubleElimination.ThirdPlaceMatch = false
	tour := e.createTournament(t, "Duel", models.FormatDoubleElimination, 2, cfg)
	players := e.registerPlayers(t, tour.ID, 2)
	e.startTournament(t, tour.ID)

	opener := e.matchAt(t, tour.ID, models.BracketWinners, 1, 0)
	e.submit(t, opener.ID, 2, 0)

	gf := e.matchAt(t, tour.ID, models.BracketFinal, 1, 0)
	require.Equal(t, players[0].ID, *gf.Player1ID)
	require.Equal(t, players[1].ID, *gf.Player2ID)

	// The trailing player takes the grand final, forcing the reset.
	e.submit(t, gf.ID, 1, 3)
	reset := e.matchAt(t, tour.ID, models.BracketFinal, 2, 0)
	e.submit(t, reset.ID, 1, 2)

	assert.Equal(t, models.StatusCompleted, e.tournament(t, tour.ID).Status)
	assert.Equal(t, models.PlayerWinner, e.player(t, players[1].ID).Status)
}
