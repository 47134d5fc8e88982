package models

import "github.com/google/uuid"

// TiebreakRule orders group standings when points are equal.
type TiebreakRule string

const (
	TiebreakGoalDiff   TiebreakRule = "goal_diff"
	TiebreakHeadToHead TiebreakRule = "head_to_head"
	TiebreakRandom     TiebreakRule = "random"
)

func (r TiebreakRule) Valid() bool {
	switch r {
	case TiebreakGoalDiff, TiebreakHeadToHead, TiebreakRandom:
		return true
	}
	return false
}

// FormatSettings is the per-tournament configuration, a tagged union keyed by
// the tournament format. Exactly one of the variant pointers is set; the core
// fields apply to every format.
type FormatSettings struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TournamentID uuid.UUID `json:"tournament_id" db:"tournament_id"`

	SeedingEnabled   bool `json:"seeding_enabled" db:"seeding_enabled"`
	ShufflePlayers   bool `json:"shuffle_players" db:"shuffle_players"`
	NumberOfConsoles int  `json:"number_of_consoles" db:"number_of_consoles"`

	SingleElimination *SingleEliminationSettings `json:"single_elimination,omitempty" db:"-"`
	DoubleElimination *DoubleEliminationSettings `json:"double_elimination,omitempty" db:"-"`
	GroupKnockout     *GroupKnockoutSettings     `json:"group_knockout,omitempty" db:"-"`

	Audit
}

type SingleEliminationSettings struct {
	AllowByes          bool `json:"allow_byes"`
	AutoBalanceBracket bool `json:"auto_balance_bracket"`
	ThirdPlaceMatch    bool `json:"third_place_match"`
}

type DoubleEliminationSettings struct {
	GrandFinalResetEnabled bool `json:"grand_final_reset_enabled"`
	ThirdPlaceMatch        bool `json:"third_place_match"`
}

type GroupKnockoutSettings struct {
	GroupSize          int          `json:"group_size"`
	QualifiersPerGroup int          `json:"qualifiers_per_group"`
	PointsPerWin       int          `json:"points_per_win"`
	PointsPerDraw      int          `json:"points_per_draw"`
	PointsPerLoss      int          `json:"points_per_loss"`
	TiebreakRule       TiebreakRule `json:"tiebreak_rule"`
}

// Variant returns the settings variant matching the given format, or nil when
// the union carries a different one.
func (s *FormatSettings) Variant(format FormatType) interface{} {
	switch format {
	case FormatSingleElimination:
		if s.SingleElimination == nil {
			return nil
		}
		return s.SingleElimination
	case FormatDoubleElimination:
		if s.DoubleElimination == nil {
			return nil
		}
		return s.DoubleElimination
	case FormatGroupKnockout:
		if s.GroupKnockout == nil {
			return nil
		}
		return s.GroupKnockout
	}
	return nil
}

// DefaultSettings returns the settings a tournament gets when the caller
// supplies none, mirroring the admin defaults.
func DefaultSettings(format FormatType) *FormatSettings {
	s := &FormatSettings{
		SeedingEnabled:   true,
		NumberOfConsoles: 1,
	}
	switch format {
	case FormatSingleElimination:
		s.SingleElimination = &SingleEliminationSettings{AllowByes: true, AutoBalanceBracket: true}
	case FormatDoubleElimination:
		s.DoubleElimination = &DoubleEliminationSettings{GrandFinalResetEnabled: true, ThirdPlaceMatch: true}
	case FormatGroupKnockout:
		s.GroupKnockout = &GroupKnockoutSettings{
			GroupSize:          4,
			QualifiersPerGroup: 2,
			PointsPerWin:       3,
			PointsPerDraw:      1,
			PointsPerLoss:      0,
			TiebreakRule:       TiebreakGoalDiff,
		}
	}
	return s
}
