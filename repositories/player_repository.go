package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bracketforge/tournament-engine/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound         = errors.New("player not found")
	ErrPlayerGamerTagConflict = errors.New("gamer tag already registered in this tournament")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, p *models.Player) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Player, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]*models.Player, error)
	UpdateSeed(ctx context.Context, exec SQLExecutor, id uuid.UUID, seed int, modifiedBy string) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, status models.PlayerStatus, modifiedBy string) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playerColumns = `
	id, tournament_id, name, gamer_tag, phone, seed_number, status,
	created_at, created_by, modified_at, modified_by`

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Player) error {
	query := `
		INSERT INTO players
			(id, tournament_id, name, gamer_tag, phone, seed_number, status,
			 created_at, created_by, modified_at, modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.exec(exec).ExecContext(ctx, query,
		p.ID, p.TournamentID, p.Name, p.GamerTag, p.Phone, p.SeedNumber, p.Status,
		p.CreatedAt, p.CreatedBy, p.ModifiedAt, p.ModifiedBy,
	)
	return handlePlayerError(err)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	p := &models.Player{}
	err := r.exec(exec).QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.TournamentID, &p.Name, &p.GamerTag, &p.Phone, &p.SeedNumber, &p.Status,
		&p.CreatedAt, &p.CreatedBy, &p.ModifiedAt, &p.ModifiedBy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player %s: %w", id, err)
	}
	return p, nil
}

func (r *postgresPlayerRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + `
		FROM players
		WHERE tournament_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.exec(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		p := &models.Player{}
		if err := rows.Scan(
			&p.ID, &p.TournamentID, &p.Name, &p.GamerTag, &p.Phone, &p.SeedNumber, &p.Status,
			&p.CreatedAt, &p.CreatedBy, &p.ModifiedAt, &p.ModifiedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) UpdateSeed(ctx context.Context, exec SQLExecutor, id uuid.UUID, seed int, modifiedBy string) error {
	query := `UPDATE players SET seed_number = $1, modified_at = now(), modified_by = $2 WHERE id = $3`
	result, err := r.exec(exec).ExecContext(ctx, query, seed, modifiedBy, id)
	if err != nil {
		return fmt.Errorf("failed to update seed for player %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, status models.PlayerStatus, modifiedBy string) error {
	query := `UPDATE players SET status = $1, modified_at = now(), modified_by = $2 WHERE id = $3`
	result, err := r.exec(exec).ExecContext(ctx, query, status, modifiedBy, id)
	if err != nil {
		return fmt.Errorf("failed to update status for player %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Constraint == "players_tournament_id_gamer_tag_key" {
		return ErrPlayerGamerTagConflict
	}
	return err
}
