package brackets

import (
	"github.com/bracketforge/tournament-engine/models"
	"github.com/google/uuid"
)

// GroupPlan holds the generated group-stage structure: the membership of each
// group (index = group number - 1) and every round-robin fixture.
type GroupPlan struct {
	Groups  [][]Entry
	Matches []*PlannedMatch
}

// SplitGroups partitions seeded entries into groups of at most groupSize
// using snake distribution, so seeds spread evenly. Remainder players land in
// the leading groups: 10 players at size 4 yield groups of 4, 3 and 3 rather
// than a trailing pair.
func SplitGroups(entries []Entry, groupSize int) [][]Entry {
	n := len(entries)
	numGroups := (n + groupSize - 1) / groupSize
	if numGroups < 1 {
		numGroups = 1
	}

	capacity := make([]int, numGroups)
	base, rem := n/numGroups, n%numGroups
	for g := range capacity {
		capacity[g] = base
		if g < rem {
			capacity[g]++
		}
	}

	groups := make([][]Entry, numGroups)
	idx := 0
	for idx < n {
		// Snake: left-to-right, then right-to-left, skipping full groups.
		for g := 0; g < numGroups && idx < n; g++ {
			if len(groups[g]) < capacity[g] {
				groups[g] = append(groups[g], entries[idx])
				idx++
			}
		}
		for g := numGroups - 1; g >= 0 && idx < n; g-- {
			if len(groups[g]) < capacity[g] {
				groups[g] = append(groups[g], entries[idx])
				idx++
			}
		}
	}
	return groups
}

// GenerateGroupStage splits entries into groups and builds a full
// round-robin schedule per group with the circle method: every unordered
// pair plays exactly once and nobody plays twice in the same round.
func GenerateGroupStage(entries []Entry, groupSize int) (*GroupPlan, error) {
	if len(entries) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	plan := &GroupPlan{Groups: SplitGroups(entries, groupSize)}
	for g, members := range plan.Groups {
		ids := make([]uuid.UUID, len(members))
		for i, e := range members {
			ids[i] = e.PlayerID
		}
		plan.Matches = append(plan.Matches, roundRobinMatches(ids, g+1)...)
	}
	return plan, nil
}

// roundRobinMatches runs the circle method over the member list. With an odd
// member count a phantom slot is added; pairings against it are dropped,
// giving each player one idle round.
func roundRobinMatches(members []uuid.UUID, groupNumber int) []*PlannedMatch {
	circle := make([]*uuid.UUID, 0, len(members)+1)
	for i := range members {
		circle = append(circle, &members[i])
	}
	if len(circle)%2 != 0 {
		circle = append(circle, nil)
	}

	n := len(circle)
	matches := make([]*PlannedMatch, 0, n*(n-1)/2)

	for round := 1; round < n; round++ {
		slot := 0
		for i := 0; i < n/2; i++ {
			p1 := circle[i]
			p2 := circle[n-1-i]
			if p1 == nil || p2 == nil {
				continue
			}
			matches = append(matches, &PlannedMatch{
				BracketType: models.BracketGroup,
				Round:       round,
				Slot:        slot,
				GroupNumber: groupNumber,
				Player1:     p1,
				Player2:     p2,
			})
			slot++
		}
		// Rotate everyone but the first position.
		last := circle[n-1]
		copy(circle[2:], circle[1:n-1])
		circle[1] = last
	}
	return matches
}
