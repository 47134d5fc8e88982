package models

import "github.com/google/uuid"

type PlayerStatus string

const (
	PlayerRegistered PlayerStatus = "registered"
	PlayerQualified  PlayerStatus = "qualified"
	PlayerEliminated PlayerStatus = "eliminated"
	PlayerWinner     PlayerStatus = "winner"
)

// Player belongs to exactly one tournament. GamerTag is unique within the
// tournament; SeedNumber is assigned by the seeding pass before fixtures are
// generated.
type Player struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	TournamentID uuid.UUID    `json:"tournament_id" db:"tournament_id"`
	Name         string       `json:"name" db:"name"`
	GamerTag     string       `json:"gamer_tag" db:"gamer_tag"`
	Phone        *string      `json:"phone,omitempty" db:"phone"`
	SeedNumber   *int         `json:"seed_number,omitempty" db:"seed_number"`
	Status       PlayerStatus `json:"status" db:"status"`

	Audit
}
