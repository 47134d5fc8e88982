package services

import (
	"context"
	"testing"

	"github.com/bracketforge/tournament-engine/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Eight players at group size four: two snake-seeded groups play a full round
// robin, the top two per group qualify into a four-player knockout. Results
// always favor the earlier registration, so seed order decides everything.
func TestGroupKnockoutFullPlayout(t *testing.T) {
	e := newEnv(t)
	tour := e.createTournament(t, "League Cup", models.FormatGroupKnockout, 8, nil)
	players := e.registerPlayers(t, tour.ID, 8)
	started := e.startTournament(t, tour.ID)

	require.Len(t, started.Groups, 2)
	assert.Equal(t, "Group A", started.Groups[0].Name)
	assert.Equal(t, "Group B", started.Groups[1].Name)
	require.Len(t, started.Matches, 12)

	rank := map[uuid.UUID]int{}
	for i, p := range players {
		rank[p.ID] = i
	}

	playGroupMatches(t, e, tour.ID, rank)

	// Group tables are frozen: top two qualified, the rest eliminated.
	for _, want := range []struct {
		idx    int
		status models.PlayerStatus
	}{
		{0, models.PlayerQualified},
		{1, models.PlayerQualified},
		{2, models.PlayerQualified},
		{3, models.PlayerQualified},
		{4, models.PlayerEliminated},
		{5, models.PlayerEliminated},
		{6, models.PlayerEliminated},
		{7, models.PlayerEliminated},
	} {
		assert.Equal(t, want.status, e.player(t, players[want.idx].ID).Status, "player %d", want.idx)
	}

	standings, err := e.tournaments.GetGroupStandings(context.Background(), started.Groups[0].ID)
	require.NoError(t, err)
	require.Len(t, standings, 4)
	assert.Equal(t, players[0].ID, standings[0].PlayerID)
	assert.Equal(t, 9, standings[0].Points)
	assert.True(t, standings[0].Qualified)
	assert.False(t, standings[2].Qualified)

	// The knockout bracket pairs the top cross-group seed against the weakest
	// qualifier: group winners meet runners-up from the other group.
	semi1 := e.matchAt(t, tour.ID, models.BracketWinners, 1, 0)
	semi2 := e.matchAt(t, tour.ID, models.BracketWinners, 1, 1)
	require.Equal(t, players[0].ID, *semi1.Player1ID)
	require.Equal(t, players[2].ID, *semi1.Player2ID)
	require.Equal(t, players[1].ID, *semi2.Player1ID)
	require.Equal(t, players[3].ID, *semi2.Player2ID)

	// Group matches may draw; knockout matches may not.
	_, err = e.matches.SubmitResult(context.Background(), semi1.ID, MatchResultInput{Player1Score: 1, Player2Score: 1}, "referee")
	assert.ErrorIs(t, err, ErrDrawNotAllowed)

	e.submit(t, semi1.ID, 2, 0)
	e.submit(t, semi2.ID, 2, 0)

	final := e.matchAt(t, tour.ID, models.BracketFinal, 2, 0)
	require.Equal(t, players[0].ID, *final.Player1ID)
	require.Equal(t, players[1].ID, *final.Player2ID)
	e.submit(t, final.ID, 1, 0)

	assert.Equal(t, models.StatusCompleted, e.tournament(t, tour.ID).Status)
	assert.Equal(t, models.PlayerWinner, e.player(t, players[0].ID).Status)
}

// playGroupMatches submits every pending group match; the player registered
// earlier always wins 1:0.
func playGroupMatches(t *testing.T, e *env, tournamentID uuid.UUID, rank map[uuid.UUID]int) {
	t.Helper()
	for {
		full, err := e.tournaments.GetTournament(context.Background(), tournamentID)
		require.NoError(t, err)

		var next *models.Match
		for i := range full.Matches {
			m := &full.Matches[i]
			if m.BracketType == models.BracketGroup && m.Status == models.MatchPending {
				next = m
				break
			}
		}
		if next == nil {
			return
		}
		if rank[*next.Player1ID] < rank[*next.Player2ID] {
			e.submit(t, next.ID, 1, 0)
		} else {
			e.submit(t, next.ID, 0, 1)
		}
	}
}

func TestGroupStageAllowsDraws(t *testing.T) {
	e := newEnv(t)
	tour := e.createTournament(t, "Draw League", models.FormatGroupKnockout, 4, nil)
	e.registerPlayers(t, tour.ID, 4)
	started := e.startTournament(t, tour.ID)
	require.Len(t, started.Groups, 1)

	var groupMatch *models.Match
	for i := range started.Matches {
		if started.Matches[i].BracketType == models.BracketGroup {
			groupMatch = &started.Matches[i]
			break
		}
	}
	require.NotNil(t, groupMatch)

	m := e.submit(t, groupMatch.ID, 2, 2)
	assert.Nil(t, m.WinnerID)

	standings, err := e.tournaments.GetGroupStandings(context.Background(), started.Groups[0].ID)
	require.NoError(t, err)
	drawPoints := 0
	for _, s := range standings {
		if s.PlayerID == *groupMatch.Player1ID || s.PlayerID == *groupMatch.Player2ID {
			assert.Equal(t, 1, s.Draws)
			drawPoints += s.Points
		}
	}
	// Default scoring awards one point per draw.
	assert.Equal(t, 2, drawPoints)
}

func TestGetGroupStandingsUnknownGroup(t *testing.T) {
	e := newEnv(t)
	_, err := e.tournaments.GetGroupStandings(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrGroupNotFound)
}
