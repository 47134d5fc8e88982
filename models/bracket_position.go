package models

import "github.com/google/uuid"

// BracketPosition tracks a player's slot within an elimination bracket, one
// row per (tournament, player, bracket_type). RoundEliminated stays nil while
// the player is still alive in that bracket.
type BracketPosition struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	TournamentID uuid.UUID   `json:"tournament_id" db:"tournament_id"`
	PlayerID     uuid.UUID   `json:"player_id" db:"player_id"`
	BracketType  BracketType `json:"bracket_type" db:"bracket_type"`

	Position        int  `json:"position" db:"position"`
	RoundEliminated *int `json:"round_eliminated,omitempty" db:"round_eliminated"`

	Audit
}
