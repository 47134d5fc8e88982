package models

import "github.com/google/uuid"

// Group exists only for the group+knockout format, numbered uniquely within
// its tournament. TiebreakSeed feeds the random tiebreak rule so repeated
// reads produce the same order.
type Group struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TournamentID uuid.UUID `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	GroupNumber  int       `json:"group_number" db:"group_number"`
	TiebreakSeed int64     `json:"-" db:"tiebreak_seed"`

	Audit

	Members []Player `json:"members,omitempty" db:"-"`
}

// GroupMembership joins players to groups, unique per (group, player).
type GroupMembership struct {
	ID       uuid.UUID `json:"id" db:"id"`
	GroupID  uuid.UUID `json:"group_id" db:"group_id"`
	PlayerID uuid.UUID `json:"player_id" db:"player_id"`

	Audit
}
