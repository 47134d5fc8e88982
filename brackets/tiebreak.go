package brackets

import (
	"math/rand"
	"sort"

	"github.com/bracketforge/tournament-engine/models"
	"github.com/google/uuid"
)

// ResolveStandings orders group standings: points descending first, then the
// configured tiebreak rule. It is a pure function of the standings, the
// completed match history and the group's stored tiebreak seed, so repeated
// reads always produce the same order.
func ResolveStandings(standings []*models.GroupStanding, matches []*models.Match, rule models.TiebreakRule, seed int64) []*models.GroupStanding {
	ordered := make([]*models.GroupStanding, len(standings))
	copy(ordered, standings)

	randomRank := map[uuid.UUID]int{}
	if rule == models.TiebreakRandom {
		randomRank = randomOrder(ordered, seed)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		switch rule {
		case models.TiebreakHeadToHead:
			if tied := pointsTied(ordered, a.Points); len(tied) == 2 {
				if res := headToHead(a.PlayerID, b.PlayerID, matches); res != 0 {
					return res > 0
				}
			}
			return goalDiffLess(a, b)
		case models.TiebreakRandom:
			return randomRank[a.PlayerID] < randomRank[b.PlayerID]
		default:
			return goalDiffLess(a, b)
		}
	})
	return ordered
}

// goalDiffLess reports whether a ranks above b under the goal_diff rule:
// score difference descending, then score for descending, then player id for
// a stable total order.
func goalDiffLess(a, b *models.GroupStanding) bool {
	if a.ScoreDifference != b.ScoreDifference {
		return a.ScoreDifference > b.ScoreDifference
	}
	if a.ScoreFor != b.ScoreFor {
		return a.ScoreFor > b.ScoreFor
	}
	return a.PlayerID.String() < b.PlayerID.String()
}

// headToHead compares the direct result between two players: 1 when a beat
// b, -1 when b beat a, 0 when they drew or never met.
func headToHead(a, b uuid.UUID, matches []*models.Match) int {
	for _, m := range matches {
		if m.Status != models.MatchCompleted || !m.Contested() {
			continue
		}
		pair := (*m.Player1ID == a && *m.Player2ID == b) || (*m.Player1ID == b && *m.Player2ID == a)
		if !pair || m.WinnerID == nil {
			continue
		}
		if *m.WinnerID == a {
			return 1
		}
		return -1
	}
	return 0
}

// pointsTied returns the standings rows sharing the given points total.
func pointsTied(standings []*models.GroupStanding, points int) []*models.GroupStanding {
	var tied []*models.GroupStanding
	for _, s := range standings {
		if s.Points == points {
			tied = append(tied, s)
		}
	}
	return tied
}

// randomOrder derives a fixed permutation of the group's players from the
// stored seed. Players are ranked over a canonical id ordering so the result
// does not depend on the incoming slice order.
func randomOrder(standings []*models.GroupStanding, seed int64) map[uuid.UUID]int {
	ids := make([]uuid.UUID, len(standings))
	for i, s := range standings {
		ids[i] = s.PlayerID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	rank := make(map[uuid.UUID]int, len(ids))
	for i, id := range ids {
		rank[id] = i
	}
	return rank
}
