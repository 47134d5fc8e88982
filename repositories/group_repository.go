package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bracketforge/tournament-engine/models"
	"github.com/google/uuid"
)

var ErrGroupNotFound = errors.New("group not found")

type GroupRepository interface {
	Create(ctx context.Context, exec SQLExecutor, g *models.Group) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Group, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]*models.Group, error)
	AddMember(ctx context.Context, exec SQLExecutor, m *models.GroupMembership) error
	ListMembers(ctx context.Context, exec SQLExecutor, groupID uuid.UUID) ([]uuid.UUID, error)
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGroupRepository) Create(ctx context.Context, exec SQLExecutor, g *models.Group) error {
	query := `
		INSERT INTO groups
			(id, tournament_id, name, group_number, tiebreak_seed,
			 created_at, created_by, modified_at, modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.exec(exec).ExecContext(ctx, query,
		g.ID, g.TournamentID, g.Name, g.GroupNumber, g.TiebreakSeed,
		g.CreatedAt, g.CreatedBy, g.ModifiedAt, g.ModifiedBy,
	)
	return err
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Group, error) {
	query := `
		SELECT id, tournament_id, name, group_number, tiebreak_seed,
		       created_at, created_by, modified_at, modified_by
		FROM groups WHERE id = $1`

	g := &models.Group{}
	err := r.exec(exec).QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.TournamentID, &g.Name, &g.GroupNumber, &g.TiebreakSeed,
		&g.CreatedAt, &g.CreatedBy, &g.ModifiedAt, &g.ModifiedBy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to scan group %s: %w", id, err)
	}
	return g, nil
}

func (r *postgresGroupRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]*models.Group, error) {
	query := `
		SELECT id, tournament_id, name, group_number, tiebreak_seed,
		       created_at, created_by, modified_at, modified_by
		FROM groups
		WHERE tournament_id = $1
		ORDER BY group_number ASC`

	rows, err := r.exec(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		g := &models.Group{}
		if err := rows.Scan(
			&g.ID, &g.TournamentID, &g.Name, &g.GroupNumber, &g.TiebreakSeed,
			&g.CreatedAt, &g.CreatedBy, &g.ModifiedAt, &g.ModifiedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during group rows iteration: %w", err)
	}
	return groups, nil
}

func (r *postgresGroupRepository) AddMember(ctx context.Context, exec SQLExecutor, m *models.GroupMembership) error {
	query := `
		INSERT INTO group_memberships
			(id, group_id, player_id, created_at, created_by, modified_at, modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.exec(exec).ExecContext(ctx, query,
		m.ID, m.GroupID, m.PlayerID, m.CreatedAt, m.CreatedBy, m.ModifiedAt, m.ModifiedBy,
	)
	return err
}

func (r *postgresGroupRepository) ListMembers(ctx context.Context, exec SQLExecutor, groupID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT player_id FROM group_memberships WHERE group_id = $1 ORDER BY created_at ASC`

	rows, err := r.exec(exec).QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members for group %s: %w", groupID, err)
	}
	defer rows.Close()

	members := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan membership row: %w", err)
		}
		members = append(members, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during membership rows iteration: %w", err)
	}
	return members, nil
}
