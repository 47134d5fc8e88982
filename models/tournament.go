package models

import (
	"time"

	"github.com/google/uuid"
)

// TournamentStatus represents the coarse tournament lifecycle, matching the ENUM in the DB.
type TournamentStatus string

const (
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
	StatusCancelled    TournamentStatus = "cancelled"
)

// FormatType selects which progression engine drives the tournament.
type FormatType string

const (
	FormatSingleElimination FormatType = "single_elimination"
	FormatDoubleElimination FormatType = "double_elimination"
	FormatGroupKnockout     FormatType = "group_knockout"
)

func (f FormatType) Valid() bool {
	switch f {
	case FormatSingleElimination, FormatDoubleElimination, FormatGroupKnockout:
		return true
	}
	return false
}

// Tournament is the aggregate root. Format is immutable once players are
// registered; CurrentPlayerCount never exceeds MaxPlayers.
type Tournament struct {
	ID                   uuid.UUID        `json:"id" db:"id"`
	Name                 string           `json:"name" db:"name"`
	GameTitle            string           `json:"game_title" db:"game_title"`
	Format               FormatType       `json:"format_type" db:"format_type"`
	MaxPlayers           int              `json:"max_players" db:"max_players"`
	CurrentPlayerCount   int              `json:"current_player_count" db:"current_player_count"`
	Status               TournamentStatus `json:"status" db:"status"`
	RegistrationDeadline time.Time        `json:"registration_deadline" db:"registration_deadline"`
	StartDate            time.Time        `json:"start_date" db:"start_date"`

	CancelledAt *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CancelledBy *string    `json:"cancelled_by,omitempty" db:"cancelled_by"`

	Audit

	// Optional linked data, not mapped directly; populated by services.
	Settings *FormatSettings `json:"settings,omitempty" db:"-"`
	Players  []Player        `json:"players,omitempty" db:"-"`
	Groups   []Group         `json:"groups,omitempty" db:"-"`
	Matches  []Match         `json:"matches,omitempty" db:"-"`
}
