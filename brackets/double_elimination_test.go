package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoserRounds(t *testing.T) {
	assert.Equal(t, 0, LoserRounds(2))
	assert.Equal(t, 2, LoserRounds(4))
	assert.Equal(t, 4, LoserRounds(8))
	assert.Equal(t, 6, LoserRounds(16))
}

func TestLoserMatchCount(t *testing.T) {
	// Size 8: rounds of 2, 2, 1, 1 matches.
	assert.Equal(t, 2, LoserMatchCount(8, 1))
	assert.Equal(t, 2, LoserMatchCount(8, 2))
	assert.Equal(t, 1, LoserMatchCount(8, 3))
	assert.Equal(t, 1, LoserMatchCount(8, 4))

	// Size 16: 4, 4, 2, 2, 1, 1.
	assert.Equal(t, 4, LoserMatchCount(16, 1))
	assert.Equal(t, 4, LoserMatchCount(16, 2))
	assert.Equal(t, 2, LoserMatchCount(16, 3))
	assert.Equal(t, 2, LoserMatchCount(16, 4))
	assert.Equal(t, 1, LoserMatchCount(16, 5))
	assert.Equal(t, 1, LoserMatchCount(16, 6))

	assert.Equal(t, 1, LoserMatchCount(4, 1))
	assert.Equal(t, 1, LoserMatchCount(4, 2))
}

func TestLoserBracketEliminatesEveryone(t *testing.T) {
	// Winners losses plus losers round-1 capacity must add up so exactly one
	// losers champion survives: total losers matches = size - 2.
	for _, size := range []int{4, 8, 16, 32} {
		total := 0
		for r := 1; r <= LoserRounds(size); r++ {
			total += LoserMatchCount(size, r)
		}
		assert.Equal(t, size-2, total, "size %d", size)
	}
}

func TestWinnersDropSlotRound1(t *testing.T) {
	// Round 1 losers pair up among themselves.
	lbRound, lbSlot, playerSlot := WinnersDropSlot(8, 1, 0)
	assert.Equal(t, []int{1, 0, 1}, []int{lbRound, lbSlot, playerSlot})

	lbRound, lbSlot, playerSlot = WinnersDropSlot(8, 1, 1)
	assert.Equal(t, []int{1, 0, 2}, []int{lbRound, lbSlot, playerSlot})

	lbRound, lbSlot, playerSlot = WinnersDropSlot(8, 1, 3)
	assert.Equal(t, []int{1, 1, 2}, []int{lbRound, lbSlot, playerSlot})
}

func TestWinnersDropSlotLaterRounds(t *testing.T) {
	// Round 2 losers enter losers round 2 in reversed order, always as
	// player 2 against a losers bracket survivor.
	lbRound, lbSlot, playerSlot := WinnersDropSlot(8, 2, 0)
	assert.Equal(t, []int{2, 1, 2}, []int{lbRound, lbSlot, playerSlot})

	lbRound, lbSlot, playerSlot = WinnersDropSlot(8, 2, 1)
	assert.Equal(t, []int{2, 0, 2}, []int{lbRound, lbSlot, playerSlot})

	// Round 3 (odd) keeps entry order.
	lbRound, lbSlot, playerSlot = WinnersDropSlot(8, 3, 0)
	assert.Equal(t, []int{4, 0, 2}, []int{lbRound, lbSlot, playerSlot})
}

func TestWinnersDropSlotCoversLosersEntries(t *testing.T) {
	// Every winners-bracket loss must land in a distinct losers slot, and
	// together they fill every winners-fed losers slot exactly once.
	for _, size := range []int{8, 16} {
		seen := map[[3]int]bool{}
		for round := 1; round <= NumRounds(size); round++ {
			matchesInRound := size >> uint(round)
			for slot := 0; slot < matchesInRound; slot++ {
				lbRound, lbSlot, playerSlot := WinnersDropSlot(size, round, slot)
				key := [3]int{lbRound, lbSlot, playerSlot}
				assert.False(t, seen[key], "size %d duplicate drop %v", size, key)
				seen[key] = true
				assert.LessOrEqual(t, 1, lbRound)
				assert.Less(t, lbSlot, LoserMatchCount(size, lbRound))
			}
		}
		assert.Len(t, seen, size-1, "size %d", size)
	}
}

func TestLoserAdvance(t *testing.T) {
	// Size 8, round 1 winners go to the entry round above them.
	nextRound, nextSlot, playerSlot, gf := LoserAdvance(8, 1, 0)
	assert.False(t, gf)
	assert.Equal(t, []int{2, 0, 1}, []int{nextRound, nextSlot, playerSlot})

	// Entry round winners merge pairwise into the internal round.
	nextRound, nextSlot, playerSlot, gf = LoserAdvance(8, 2, 1)
	assert.False(t, gf)
	assert.Equal(t, []int{3, 0, 2}, []int{nextRound, nextSlot, playerSlot})

	// The last losers round produces the grand final challenger.
	_, _, playerSlot, gf = LoserAdvance(8, 4, 0)
	assert.True(t, gf)
	assert.Equal(t, 2, playerSlot)
}

func TestLoserFeedersMatchDropsAndAdvances(t *testing.T) {
	// The feeder table must be the inverse of WinnersDropSlot and
	// LoserAdvance for every losers-bracket slot.
	for _, size := range []int{8, 16} {
		for lbRound := 1; lbRound <= LoserRounds(size); lbRound++ {
			for lbSlot := 0; lbSlot < LoserMatchCount(size, lbRound); lbSlot++ {
				feeders := LoserFeeders(size, lbRound, lbSlot)
				for idx, f := range feeders {
					wantPlayerSlot := idx + 1
					if f.Kind == FeedFromWinners {
						gotRound, gotSlot, gotPlayer := WinnersDropSlot(size, f.Round, f.Slot)
						assert.Equal(t, lbRound, gotRound, "size %d lb %d/%d", size, lbRound, lbSlot)
						assert.Equal(t, lbSlot, gotSlot)
						assert.Equal(t, wantPlayerSlot, gotPlayer)
					} else {
						gotRound, gotSlot, gotPlayer, gf := LoserAdvance(size, f.Round, f.Slot)
						assert.False(t, gf)
						assert.Equal(t, lbRound, gotRound, "size %d lb %d/%d", size, lbRound, lbSlot)
						assert.Equal(t, lbSlot, gotSlot)
						assert.Equal(t, wantPlayerSlot, gotPlayer)
					}
				}
			}
		}
	}
}
