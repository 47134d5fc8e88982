package brackets

import "fmt"

// EliminationPlan is the persistable result of a bracket generation run:
// the round-1 match rows (byes included) plus the initial slot assignment of
// every player. Later rounds are created lazily as results come in.
type EliminationPlan struct {
	BracketSize int
	Rounds      int
	Matches     []*PlannedMatch
	Positions   []SlotAssignment
}

// SeedPositions returns the seed occupying each round-1 slot of a bracket of
// the given size, using standard seeded placement: seed 1 meets the lowest
// remaining seed, seed 2 the next-lowest, recursively, so top seeds cannot
// meet before the latest possible round.
func SeedPositions(size int) []int {
	positions := []int{1}
	for len(positions) < size {
		doubled := len(positions) * 2
		next := make([]int, 0, doubled)
		for _, s := range positions {
			next = append(next, s, doubled+1-s)
		}
		positions = next
	}
	return positions
}

// GenerateSingleElimination builds the round-1 structure for the given
// seeded entries. Seeds beyond the field size are byes, which land on the
// highest seeds by construction.
func GenerateSingleElimination(entries []Entry, allowByes bool) (*EliminationPlan, error) {
	n := len(entries)
	if n < 2 {
		return nil, ErrNotEnoughPlayers
	}

	size := BracketSize(n)
	byes := size - n
	if byes > 0 && !allowByes {
		return nil, fmt.Errorf("%w: %d players need a bracket of %d", ErrByesNotAllowed, n, size)
	}

	bySeed := make(map[int]Entry, n)
	for _, e := range entries {
		if e.Seed < 1 || e.Seed > n {
			return nil, fmt.Errorf("entry %s has seed %d outside 1..%d", e.PlayerID, e.Seed, n)
		}
		if _, dup := bySeed[e.Seed]; dup {
			return nil, fmt.Errorf("duplicate seed %d", e.Seed)
		}
		bySeed[e.Seed] = e
	}

	plan := &EliminationPlan{
		BracketSize: size,
		Rounds:      NumRounds(size),
	}

	order := SeedPositions(size)
	for slot := 0; slot < size/2; slot++ {
		seed1 := order[slot*2]
		seed2 := order[slot*2+1]

		m := &PlannedMatch{
			BracketType: RoundBracketType(1, plan.Rounds),
			Round:       1,
			Slot:        slot,
		}

		if e, ok := bySeed[seed1]; ok {
			id := e.PlayerID
			m.Player1 = &id
			plan.Positions = append(plan.Positions, SlotAssignment{PlayerID: id, Position: slot * 2})
		}
		if e, ok := bySeed[seed2]; ok {
			id := e.PlayerID
			m.Player2 = &id
			plan.Positions = append(plan.Positions, SlotAssignment{PlayerID: id, Position: slot*2 + 1})
		}

		switch {
		case m.Player1 != nil && m.Player2 != nil:
			// contested
		case m.Player1 != nil || m.Player2 != nil:
			m.Bye = true
		default:
			// Two absent seeds can only pair up if byes exceed half the
			// bracket, which BracketSize rules out.
			return nil, fmt.Errorf("round 1 slot %d paired two byes (n=%d, size=%d)", slot, n, size)
		}

		plan.Matches = append(plan.Matches, m)
	}

	return plan, nil
}
