package brackets

import (
	"errors"

	"github.com/bracketforge/tournament-engine/models"
	"github.com/google/uuid"
)

var (
	ErrNotEnoughPlayers = errors.New("not enough players to generate fixtures (minimum 2)")
	ErrByesNotAllowed   = errors.New("field size requires byes but byes are not allowed")
)

// Entry is one seeded player fed into a generator. Seed is 1-based and dense:
// the seeding pass assigns 1..N before any generator runs.
type Entry struct {
	PlayerID uuid.UUID
	Seed     int
}

// PlannedMatch is a generator-produced match before persistence. A bye holds a
// single player and is pre-marked completed with that player as winner, so the
// match list stays self-describing.
type PlannedMatch struct {
	BracketType models.BracketType
	Round       int
	Slot        int
	GroupNumber int
	Player1     *uuid.UUID
	Player2     *uuid.UUID
	Bye         bool
}

// Winner returns the auto-advanced player of a bye.
func (m *PlannedMatch) Winner() *uuid.UUID {
	if !m.Bye {
		return nil
	}
	if m.Player1 != nil {
		return m.Player1
	}
	return m.Player2
}

// SlotAssignment records the initial bracket slot handed to a player.
type SlotAssignment struct {
	PlayerID uuid.UUID
	Position int
}

// BracketSize returns the smallest power of two that fits n players.
func BracketSize(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

// NumRounds returns the number of rounds a bracket of the given size plays.
func NumRounds(size int) int {
	r := 0
	for (1 << r) < size {
		r++
	}
	return r
}

// NextSlot maps a completed winners-side match to the slot its winner feeds:
// round r slot p is fed by winners of round r-1 slots 2p and 2p+1.
func NextSlot(round, slot int) (nextRound, nextSlot, playerSlot int) {
	return round + 1, slot / 2, slot%2 + 1
}

// RoundBracketType labels winners-progression rounds: every round is
// "winners" except the last, which is the final.
func RoundBracketType(round, totalRounds int) models.BracketType {
	if round == totalRounds {
		return models.BracketFinal
	}
	return models.BracketWinners
}
