package models

import "github.com/google/uuid"

// GroupStanding is one derived row per (group, player). It is always a
// projection of the completed matches in its group and never edited
// independently.
type GroupStanding struct {
	ID       uuid.UUID `json:"id" db:"id"`
	GroupID  uuid.UUID `json:"group_id" db:"group_id"`
	PlayerID uuid.UUID `json:"player_id" db:"player_id"`

	MatchesPlayed int `json:"matches_played" db:"matches_played"`
	Wins          int `json:"wins" db:"wins"`
	Draws         int `json:"draws" db:"draws"`
	Losses        int `json:"losses" db:"losses"`

	Points          int `json:"points" db:"points"`
	ScoreFor        int `json:"score_for" db:"score_for"`
	ScoreAgainst    int `json:"score_against" db:"score_against"`
	ScoreDifference int `json:"score_difference" db:"score_difference"`

	Position  *int `json:"position,omitempty" db:"position"`
	Qualified bool `json:"qualified" db:"qualified"`

	Audit

	Player *Player `json:"player,omitempty" db:"-"`
}
