package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bracketforge/tournament-engine/models"
	"github.com/google/uuid"
)

var ErrSettingsNotFound = errors.New("tournament settings not found")

// SettingsRepository stores the FormatSettings union. The format-specific
// variant is serialized into a single JSONB column keyed by the tournament's
// format, so only the fields relevant to that format exist.
type SettingsRepository interface {
	Create(ctx context.Context, exec SQLExecutor, format models.FormatType, s *models.FormatSettings) error
	GetByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, format models.FormatType) (*models.FormatSettings, error)
}

type postgresSettingsRepository struct {
	db *sql.DB
}

func NewPostgresSettingsRepository(db *sql.DB) SettingsRepository {
	return &postgresSettingsRepository{db: db}
}

func (r *postgresSettingsRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSettingsRepository) Create(ctx context.Context, exec SQLExecutor, format models.FormatType, s *models.FormatSettings) error {
	variant, err := json.Marshal(s.Variant(format))
	if err != nil {
		return fmt.Errorf("failed to marshal settings variant: %w", err)
	}

	query := `
		INSERT INTO tournament_settings
			(id, tournament_id, seeding_enabled, shuffle_players, number_of_consoles,
			 variant_json, created_at, created_by, modified_at, modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.exec(exec).ExecContext(ctx, query,
		s.ID, s.TournamentID, s.SeedingEnabled, s.ShufflePlayers, s.NumberOfConsoles,
		variant, s.CreatedAt, s.CreatedBy, s.ModifiedAt, s.ModifiedBy,
	)
	return err
}

func (r *postgresSettingsRepository) GetByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, format models.FormatType) (*models.FormatSettings, error) {
	query := `
		SELECT id, tournament_id, seeding_enabled, shuffle_players, number_of_consoles,
		       variant_json, created_at, created_by, modified_at, modified_by
		FROM tournament_settings
		WHERE tournament_id = $1`

	s := &models.FormatSettings{}
	var variant []byte
	err := r.exec(exec).QueryRowContext(ctx, query, tournamentID).Scan(
		&s.ID, &s.TournamentID, &s.SeedingEnabled, &s.ShufflePlayers, &s.NumberOfConsoles,
		&variant, &s.CreatedAt, &s.CreatedBy, &s.ModifiedAt, &s.ModifiedBy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to scan settings for tournament %s: %w", tournamentID, err)
	}

	switch format {
	case models.FormatSingleElimination:
		s.SingleElimination = &models.SingleEliminationSettings{}
		err = json.Unmarshal(variant, s.SingleElimination)
	case models.FormatDoubleElimination:
		s.DoubleElimination = &models.DoubleEliminationSettings{}
		err = json.Unmarshal(variant, s.DoubleElimination)
	case models.FormatGroupKnockout:
		s.GroupKnockout = &models.GroupKnockoutSettings{}
		err = json.Unmarshal(variant, s.GroupKnockout)
	default:
		return nil, fmt.Errorf("unknown format %q for settings of tournament %s", format, tournamentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings variant for tournament %s: %w", tournamentID, err)
	}
	return s, nil
}
