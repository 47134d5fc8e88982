package models

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchPlaying   MatchStatus = "playing"
	MatchCompleted MatchStatus = "completed"
	MatchCancelled MatchStatus = "cancelled"
)

// BracketType names the sub-bracket a match belongs to.
type BracketType string

const (
	BracketGroup   BracketType = "group"
	BracketWinners BracketType = "winners"
	BracketLosers  BracketType = "losers"
	BracketFinal   BracketType = "final"
)

// Match is the unified match row for all formats. Slot is the 0-based
// position within its round; elimination advancement addresses matches by
// (bracket_type, round, slot). A bye is encoded as a completed match with a
// single player who is also the winner.
type Match struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	TournamentID uuid.UUID   `json:"tournament_id" db:"tournament_id"`
	GroupID      *uuid.UUID  `json:"group_id,omitempty" db:"group_id"`
	Round        int         `json:"round" db:"round"`
	BracketType  BracketType `json:"bracket_type" db:"bracket_type"`
	Slot         int         `json:"slot" db:"slot"`

	Player1ID *uuid.UUID `json:"player1_id,omitempty" db:"player1_id"`
	Player2ID *uuid.UUID `json:"player2_id,omitempty" db:"player2_id"`

	Player1Score *int       `json:"player1_score,omitempty" db:"player1_score"`
	Player2Score *int       `json:"player2_score,omitempty" db:"player2_score"`
	WinnerID     *uuid.UUID `json:"winner_id,omitempty" db:"winner_id"`

	Status          MatchStatus `json:"status" db:"status"`
	ConsoleAssigned *int        `json:"console_assigned,omitempty" db:"console_assigned"`
	ScheduledTime   *time.Time  `json:"scheduled_time,omitempty" db:"scheduled_time"`

	Audit
}

// IsBye reports whether the match was decided by a missing opponent.
func (m *Match) IsBye() bool {
	return m.Status == MatchCompleted &&
		((m.Player1ID == nil) != (m.Player2ID == nil)) &&
		m.Player1Score == nil && m.Player2Score == nil
}

// Contested reports whether both slots hold a player.
func (m *Match) Contested() bool {
	return m.Player1ID != nil && m.Player2ID != nil
}

// LoserID returns the defeated player of a completed contested match.
func (m *Match) LoserID() *uuid.UUID {
	if m.Status != MatchCompleted || m.WinnerID == nil || !m.Contested() {
		return nil
	}
	if *m.WinnerID == *m.Player1ID {
		return m.Player2ID
	}
	return m.Player1ID
}
