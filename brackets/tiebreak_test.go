package brackets

import (
	"testing"

	"github.com/bracketforge/tournament-engine/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standing(playerID uuid.UUID, points, scoreFor, scoreAgainst int) *models.GroupStanding {
	return &models.GroupStanding{
		ID:              uuid.New(),
		PlayerID:        playerID,
		Points:          points,
		ScoreFor:        scoreFor,
		ScoreAgainst:    scoreAgainst,
		ScoreDifference: scoreFor - scoreAgainst,
	}
}

func completedMatch(winner, loser uuid.UUID) *models.Match {
	w, l := winner, loser
	return &models.Match{
		ID:        uuid.New(),
		Player1ID: &w,
		Player2ID: &l,
		WinnerID:  &w,
		Status:    models.MatchCompleted,
	}
}

func TestResolveStandingsPointsFirst(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	standings := []*models.GroupStanding{
		standing(a, 3, 2, 4),
		standing(b, 9, 9, 1),
		standing(c, 6, 5, 3),
	}

	ordered := ResolveStandings(standings, nil, models.TiebreakGoalDiff, 0)
	assert.Equal(t, []uuid.UUID{b, c, a}, playerOrder(ordered))
}

func TestResolveStandingsGoalDiff(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	standings := []*models.GroupStanding{
		standing(a, 6, 4, 3),
		standing(b, 6, 8, 2),
	}

	ordered := ResolveStandings(standings, nil, models.TiebreakGoalDiff, 0)
	assert.Equal(t, []uuid.UUID{b, a}, playerOrder(ordered))
}

func TestResolveStandingsGoalDiffFallsBackToScoreFor(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	standings := []*models.GroupStanding{
		standing(a, 6, 4, 2),
		standing(b, 6, 7, 5),
	}

	ordered := ResolveStandings(standings, nil, models.TiebreakGoalDiff, 0)
	assert.Equal(t, []uuid.UUID{b, a}, playerOrder(ordered))
}

func TestResolveStandingsHeadToHeadTwoWayTie(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	standings := []*models.GroupStanding{
		standing(a, 6, 9, 1), // better goal difference
		standing(b, 6, 3, 2), // but b beat a directly
		standing(c, 0, 1, 10),
	}
	matches := []*models.Match{completedMatch(b, a)}

	ordered := ResolveStandings(standings, matches, models.TiebreakHeadToHead, 0)
	assert.Equal(t, []uuid.UUID{b, a, c}, playerOrder(ordered))
}

func TestResolveStandingsHeadToHeadThreeWayTieUsesGoalDiff(t *testing.T) {
	// A three-way tie can be circular, so head-to-head only applies to
	// exact two-way ties.
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	standings := []*models.GroupStanding{
		standing(a, 3, 5, 1),
		standing(b, 3, 3, 2),
		standing(c, 3, 2, 4),
	}
	matches := []*models.Match{
		completedMatch(a, b),
		completedMatch(b, c),
		completedMatch(c, a),
	}

	ordered := ResolveStandings(standings, matches, models.TiebreakHeadToHead, 0)
	assert.Equal(t, []uuid.UUID{a, b, c}, playerOrder(ordered))
}

func TestResolveStandingsRandomIsDeterministic(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	standings := make([]*models.GroupStanding, len(ids))
	for i, id := range ids {
		standings[i] = standing(id, 3, 2, 2)
	}

	first := playerOrder(ResolveStandings(standings, nil, models.TiebreakRandom, 42))
	second := playerOrder(ResolveStandings(standings, nil, models.TiebreakRandom, 42))
	assert.Equal(t, first, second)

	// The permutation must not depend on the incoming slice order.
	reversed := []*models.GroupStanding{standings[3], standings[2], standings[1], standings[0]}
	third := playerOrder(ResolveStandings(reversed, nil, models.TiebreakRandom, 42))
	assert.Equal(t, first, third)
}

func TestResolveStandingsDoesNotMutateInput(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	standings := []*models.GroupStanding{
		standing(a, 0, 0, 5),
		standing(b, 9, 5, 0),
	}

	ordered := ResolveStandings(standings, nil, models.TiebreakGoalDiff, 0)
	require.Equal(t, []uuid.UUID{b, a}, playerOrder(ordered))
	assert.Equal(t, a, standings[0].PlayerID)
	assert.Equal(t, b, standings[1].PlayerID)
}

func playerOrder(standings []*models.GroupStanding) []uuid.UUID {
	out := make([]uuid.UUID, len(standings))
	for i, s := range standings {
		out[i] = s.PlayerID
	}
	return out
}
