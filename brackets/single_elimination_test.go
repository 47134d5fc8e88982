package brackets

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededEntries(n int) []Entry {
	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{PlayerID: uuid.New(), Seed: i + 1}
	}
	return entries
}

func TestBracketSize(t *testing.T) {
	assert.Equal(t, 2, BracketSize(2))
	assert.Equal(t, 4, BracketSize(3))
	assert.Equal(t, 8, BracketSize(5))
	assert.Equal(t, 8, BracketSize(8))
	assert.Equal(t, 16, BracketSize(9))
}

func TestNumRounds(t *testing.T) {
	assert.Equal(t, 1, NumRounds(2))
	assert.Equal(t, 2, NumRounds(4))
	assert.Equal(t, 3, NumRounds(8))
	assert.Equal(t, 4, NumRounds(16))
}

func TestSeedPositions(t *testing.T) {
	assert.Equal(t, []int{1, 2}, SeedPositions(2))
	assert.Equal(t, []int{1, 4, 2, 3}, SeedPositions(4))
	assert.Equal(t, []int{1, 8, 4, 5, 2, 7, 3, 6}, SeedPositions(8))
}

func TestSeedPositionsTopSeedsMeetLate(t *testing.T) {
	// Seeds 1 and 2 must land in opposite halves of every bracket.
	for _, size := range []int{4, 8, 16, 32} {
		positions := SeedPositions(size)
		var slot1, slot2 int
		for i, s := range positions {
			if s == 1 {
				slot1 = i
			}
			if s == 2 {
				slot2 = i
			}
		}
		assert.NotEqual(t, slot1 < size/2, slot2 < size/2, "size %d", size)
	}
}

func TestGenerateSingleEliminationFullField(t *testing.T) {
	entries := seededEntries(8)
	plan, err := GenerateSingleElimination(entries, false)
	require.NoError(t, err)

	assert.Equal(t, 8, plan.BracketSize)
	assert.Equal(t, 3, plan.Rounds)
	require.Len(t, plan.Matches, 4)
	require.Len(t, plan.Positions, 8)

	for _, m := range plan.Matches {
		assert.False(t, m.Bye)
		assert.NotNil(t, m.Player1)
		assert.NotNil(t, m.Player2)
		assert.Equal(t, 1, m.Round)
	}

	// Slot 0 pairs seed 1 against seed 8.
	assert.Equal(t, entries[0].PlayerID, *plan.Matches[0].Player1)
	assert.Equal(t, entries[7].PlayerID, *plan.Matches[0].Player2)
}

func TestGenerateSingleEliminationWithByes(t *testing.T) {
	entries := seededEntries(5)
	plan, err := GenerateSingleElimination(entries, true)
	require.NoError(t, err)

	assert.Equal(t, 8, plan.BracketSize)
	require.Len(t, plan.Matches, 4)
	require.Len(t, plan.Positions, 5)

	var byes, contested int
	for _, m := range plan.Matches {
		if m.Bye {
			byes++
			require.NotNil(t, m.Winner())
		} else {
			contested++
			assert.Nil(t, m.Winner())
		}
	}
	assert.Equal(t, 3, byes)
	assert.Equal(t, 1, contested)

	// Byes fall on the top three seeds; seeds 4 and 5 play the only
	// contested opener.
	for _, m := range plan.Matches {
		if m.Bye {
			continue
		}
		assert.Equal(t, entries[3].PlayerID, *m.Player1)
		assert.Equal(t, entries[4].PlayerID, *m.Player2)
	}
}

func TestGenerateSingleEliminationByesRejected(t *testing.T) {
	_, err := GenerateSingleElimination(seededEntries(5), false)
	assert.ErrorIs(t, err, ErrByesNotAllowed)
}

func TestGenerateSingleEliminationTooFewPlayers(t *testing.T) {
	_, err := GenerateSingleElimination(seededEntries(1), true)
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
}

func TestGenerateSingleEliminationBadSeeds(t *testing.T) {
	entries := seededEntries(4)
	entries[3].Seed = 2
	_, err := GenerateSingleElimination(entries, false)
	assert.Error(t, err)

	entries = seededEntries(4)
	entries[0].Seed = 9
	_, err = GenerateSingleElimination(entries, false)
	assert.Error(t, err)
}

func TestNextSlot(t *testing.T) {
	r, s, p := NextSlot(1, 0)
	assert.Equal(t, []int{2, 0, 1}, []int{r, s, p})

	r, s, p = NextSlot(1, 1)
	assert.Equal(t, []int{2, 0, 2}, []int{r, s, p})

	r, s, p = NextSlot(2, 3)
	assert.Equal(t, []int{3, 1, 2}, []int{r, s, p})
}
