package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bracketforge/tournament-engine/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, status models.TournamentStatus, modifiedBy string) error
	MarkCancelled(ctx context.Context, exec SQLExecutor, id uuid.UUID, at time.Time, by string) error
	IncrementPlayerCount(ctx context.Context, exec SQLExecutor, id uuid.UUID) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, name, game_title, format_type, max_players, current_player_count,
	status, registration_deadline, start_date, cancelled_at, cancelled_by,
	created_at, created_by, modified_at, modified_by`

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments
			(id, name, game_title, format_type, max_players, current_player_count,
			 status, registration_deadline, start_date,
			 created_at, created_by, modified_at, modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.exec(exec).ExecContext(ctx, query,
		t.ID, t.Name, t.GameTitle, t.Format, t.MaxPlayers, t.CurrentPlayerCount,
		t.Status, t.RegistrationDeadline, t.StartDate,
		t.CreatedAt, t.CreatedBy, t.ModifiedAt, t.ModifiedBy,
	)
	return handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t := &models.Tournament{}
	err := r.exec(exec).QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.GameTitle, &t.Format, &t.MaxPlayers, &t.CurrentPlayerCount,
		&t.Status, &t.RegistrationDeadline, &t.StartDate, &t.CancelledAt, &t.CancelledBy,
		&t.CreatedAt, &t.CreatedBy, &t.ModifiedAt, &t.ModifiedBy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %s: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, status models.TournamentStatus, modifiedBy string) error {
	query := `UPDATE tournaments SET status = $1, modified_at = now(), modified_by = $2 WHERE id = $3`
	result, err := r.exec(exec).ExecContext(ctx, query, status, modifiedBy, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament %s status: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) MarkCancelled(ctx context.Context, exec SQLExecutor, id uuid.UUID, at time.Time, by string) error {
	query := `
		UPDATE tournaments
		SET status = $1, cancelled_at = $2, cancelled_by = $3, modified_at = $2, modified_by = $3
		WHERE id = $4`
	result, err := r.exec(exec).ExecContext(ctx, query, models.StatusCancelled, at, by, id)
	if err != nil {
		return fmt.Errorf("failed to cancel tournament %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) IncrementPlayerCount(ctx context.Context, exec SQLExecutor, id uuid.UUID) error {
	query := `
		UPDATE tournaments
		SET current_player_count = current_player_count + 1
		WHERE id = $1 AND current_player_count < max_players`
	result, err := r.exec(exec).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment player count for tournament %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Constraint == "tournaments_name_key" {
		return ErrTournamentNameConflict
	}
	return err
}
