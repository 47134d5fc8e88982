package brackets

// Double elimination layout. The winners bracket is the single-elimination
// structure from GenerateSingleElimination; this file maps every winners
// bracket loss to a deterministic losers bracket slot and every losers
// bracket win to the next slot, down to the grand final.
//
// Losers bracket rounds alternate between entry rounds, where winners
// bracket losers drop in against losers bracket survivors, and internal
// rounds where only survivors play. Winners round 1 losers pair up in losers
// round 1; winners round r (r >= 2) losers enter losers round 2(r-1). A
// bracket of size S therefore has 2*(NumRounds(S)-1) losers rounds.

// FeederKind tells which bracket a losers-bracket slot is fed from.
type FeederKind int

const (
	FeedFromWinners FeederKind = iota
	FeedFromLosers
)

// Feeder identifies the match whose outcome fills one slot of a
// losers-bracket match.
type Feeder struct {
	Kind  FeederKind
	Round int
	Slot  int
}

// LoserRounds returns the number of losers-bracket rounds for a winners
// bracket of the given size. Size 2 has none: the single winners match
// doubles as the losers qualifier.
func LoserRounds(size int) int {
	r := NumRounds(size)
	if r <= 1 {
		return 0
	}
	return 2 * (r - 1)
}

// LoserMatchCount returns the number of matches in a losers-bracket round.
func LoserMatchCount(size, lbRound int) int {
	if lbRound == 1 {
		return size / 4
	}
	k := lbRound / 2
	if lbRound%2 == 0 {
		return size >> uint(k+1)
	}
	return size >> uint(k+2)
}

// WinnersDropSlot maps the loser of winners-bracket match (round, slot) to
// its losers-bracket destination. Entry order reverses on alternating rounds
// to push rematches as late as possible.
func WinnersDropSlot(size, round, slot int) (lbRound, lbSlot, playerSlot int) {
	if round == 1 {
		return 1, slot / 2, slot%2 + 1
	}
	lbRound = 2 * (round - 1)
	entries := LoserMatchCount(size, lbRound)
	lbSlot = slot
	if round%2 == 0 {
		lbSlot = entries - 1 - slot
	}
	return lbRound, lbSlot, 2
}

// LoserAdvance maps the winner of losers-bracket match (lbRound, lbSlot) to
// its next slot. grandFinal is true when the winner is the losers-bracket
// champion and goes to the grand final instead.
func LoserAdvance(size, lbRound, lbSlot int) (nextRound, nextSlot, playerSlot int, grandFinal bool) {
	if lbRound == LoserRounds(size) {
		return 0, 0, 2, true
	}
	nextRound = lbRound + 1
	if nextRound%2 == 0 {
		// Entry round: the survivor waits in slot 1 for the dropping
		// winners-bracket loser.
		return nextRound, lbSlot, 1, false
	}
	return nextRound, lbSlot / 2, lbSlot%2 + 1, false
}

// LoserFeeders returns the two feeders of losers-bracket match
// (lbRound, lbSlot), indexed by player slot (0 -> player1, 1 -> player2).
func LoserFeeders(size, lbRound, lbSlot int) [2]Feeder {
	if lbRound == 1 {
		return [2]Feeder{
			{Kind: FeedFromWinners, Round: 1, Slot: lbSlot * 2},
			{Kind: FeedFromWinners, Round: 1, Slot: lbSlot*2 + 1},
		}
	}
	if lbRound%2 == 0 {
		wbRound := lbRound/2 + 1
		wbSlot := lbSlot
		if wbRound%2 == 0 {
			wbSlot = LoserMatchCount(size, lbRound) - 1 - lbSlot
		}
		return [2]Feeder{
			{Kind: FeedFromLosers, Round: lbRound - 1, Slot: lbSlot},
			{Kind: FeedFromWinners, Round: wbRound, Slot: wbSlot},
		}
	}
	return [2]Feeder{
		{Kind: FeedFromLosers, Round: lbRound - 1, Slot: lbSlot * 2},
		{Kind: FeedFromLosers, Round: lbRound - 1, Slot: lbSlot*2 + 1},
	}
}

// GrandFinalRound and GrandFinalSlot address the first grand final; the
// reset, when one is required, lives at round GrandFinalResetRound.
const (
	GrandFinalRound      = 1
	GrandFinalResetRound = 2
	GrandFinalSlot       = 0
	ThirdPlaceSlot       = 1
)
