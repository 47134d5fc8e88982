package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bracketforge/tournament-engine/models"
	"github.com/google/uuid"
)

var ErrBracketPositionNotFound = errors.New("bracket position not found")

type BracketPositionRepository interface {
	Create(ctx context.Context, exec SQLExecutor, p *models.BracketPosition) error
	Get(ctx context.Context, exec SQLExecutor, tournamentID, playerID uuid.UUID, bracket models.BracketType) (*models.BracketPosition, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, bracket models.BracketType) ([]*models.BracketPosition, error)
	SetRoundEliminated(ctx context.Context, exec SQLExecutor, id uuid.UUID, round int, modifiedBy string) error
}

type postgresBracketPositionRepository struct {
	db *sql.DB
}

func NewPostgresBracketPositionRepository(db *sql.DB) BracketPositionRepository {
	return &postgresBracketPositionRepository{db: db}
}

func (r *postgresBracketPositionRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const bracketPositionColumns = `
	id, tournament_id, player_id, bracket_type, position, round_eliminated,
	created_at, created_by, modified_at, modified_by`

func (r *postgresBracketPositionRepository) Create(ctx context.Context, exec SQLExecutor, p *models.BracketPosition) error {
	query := `
		INSERT INTO bracket_positions
			(id, tournament_id, player_id, bracket_type, position, round_eliminated,
			 created_at, created_by, modified_at, modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.exec(exec).ExecContext(ctx, query,
		p.ID, p.TournamentID, p.PlayerID, p.BracketType, p.Position, p.RoundEliminated,
		p.CreatedAt, p.CreatedBy, p.ModifiedAt, p.ModifiedBy,
	)
	return err
}

func (r *postgresBracketPositionRepository) Get(ctx context.Context, exec SQLExecutor, tournamentID, playerID uuid.UUID, bracket models.BracketType) (*models.BracketPosition, error) {
	query := `SELECT ` + bracketPositionColumns + `
		FROM bracket_positions
		WHERE tournament_id = $1 AND player_id = $2 AND bracket_type = $3`

	p := &models.BracketPosition{}
	err := r.exec(exec).QueryRowContext(ctx, query, tournamentID, playerID, bracket).Scan(
		&p.ID, &p.TournamentID, &p.PlayerID, &p.BracketType, &p.Position, &p.RoundEliminated,
		&p.CreatedAt, &p.CreatedBy, &p.ModifiedAt, &p.ModifiedBy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketPositionNotFound
		}
		return nil, fmt.Errorf("failed to scan bracket position for player %s: %w", playerID, err)
	}
	return p, nil
}

func (r *postgresBracketPositionRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, bracket models.BracketType) ([]*models.BracketPosition, error) {
	query := `SELECT ` + bracketPositionColumns + `
		FROM bracket_positions
		WHERE tournament_id = $1 AND bracket_type = $2
		ORDER BY position ASC`

	rows, err := r.exec(exec).QueryContext(ctx, query, tournamentID, bracket)
	if err != nil {
		return nil, fmt.Errorf("failed to query bracket positions for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	positions := make([]*models.BracketPosition, 0)
	for rows.Next() {
		p := &models.BracketPosition{}
		if err := rows.Scan(
			&p.ID, &p.TournamentID, &p.PlayerID, &p.BracketType, &p.Position, &p.RoundEliminated,
			&p.CreatedAt, &p.CreatedBy, &p.ModifiedAt, &p.ModifiedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bracket position row: %w", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during bracket position rows iteration: %w", err)
	}
	return positions, nil
}

func (r *postgresBracketPositionRepository) SetRoundEliminated(ctx context.Context, exec SQLExecutor, id uuid.UUID, round int, modifiedBy string) error {
	query := `
		UPDATE bracket_positions
		SET round_eliminated = $1, modified_at = now(), modified_by = $2
		WHERE id = $3`
	result, err := r.exec(exec).ExecContext(ctx, query, round, modifiedBy, id)
	if err != nil {
		return fmt.Errorf("failed to set round eliminated for bracket position %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrBracketPositionNotFound)
}
