package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bracketforge/tournament-engine/models"
	"github.com/google/uuid"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, m *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Match, error)
	FindBySlot(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, bracket models.BracketType, round, slot int) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]*models.Match, error)
	ListByGroup(ctx context.Context, exec SQLExecutor, groupID uuid.UUID) ([]*models.Match, error)
	SetPlayer(ctx context.Context, exec SQLExecutor, id uuid.UUID, playerSlot int, playerID uuid.UUID, modifiedBy string) error
	Complete(ctx context.Context, exec SQLExecutor, m *models.Match) error
	CancelPendingByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, modifiedBy string) (int, error)
	CountPendingByGroup(ctx context.Context, exec SQLExecutor, groupID uuid.UUID) (int, error)
	CountPendingGroupMatches(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, tournament_id, group_id, round, bracket_type, slot,
	player1_id, player2_id, player1_score, player2_score, winner_id,
	status, console_assigned, scheduled_time,
	created_at, created_by, modified_at, modified_by`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.GroupID, &m.Round, &m.BracketType, &m.Slot,
		&m.Player1ID, &m.Player2ID, &m.Player1Score, &m.Player2Score, &m.WinnerID,
		&m.Status, &m.ConsoleAssigned, &m.ScheduledTime,
		&m.CreatedAt, &m.CreatedBy, &m.ModifiedAt, &m.ModifiedBy,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		INSERT INTO matches
			(id, tournament_id, group_id, round, bracket_type, slot,
			 player1_id, player2_id, player1_score, player2_score, winner_id,
			 status, console_assigned, scheduled_time,
			 created_at, created_by, modified_at, modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err := r.exec(exec).ExecContext(ctx, query,
		m.ID, m.TournamentID, m.GroupID, m.Round, m.BracketType, m.Slot,
		m.Player1ID, m.Player2ID, m.Player1Score, m.Player2Score, m.WinnerID,
		m.Status, m.ConsoleAssigned, m.ScheduledTime,
		m.CreatedAt, m.CreatedBy, m.ModifiedAt, m.ModifiedBy,
	)
	return err
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	m, err := scanMatch(r.exec(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %s: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) FindBySlot(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, bracket models.BracketType, round, slot int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1 AND bracket_type = $2 AND round = $3 AND slot = $4`

	m, err := scanMatch(r.exec(exec).QueryRowContext(ctx, query, tournamentID, bracket, round, slot))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan %s match r%d s%d for tournament %s: %w", bracket, round, slot, tournamentID, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1
		ORDER BY bracket_type ASC, round ASC, slot ASC`
	return r.list(ctx, exec, query, tournamentID)
}

func (r *postgresMatchRepository) ListByGroup(ctx context.Context, exec SQLExecutor, groupID uuid.UUID) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + `
		FROM matches
		WHERE group_id = $1
		ORDER BY round ASC, slot ASC`
	return r.list(ctx, exec, query, groupID)
}

func (r *postgresMatchRepository) list(ctx context.Context, exec SQLExecutor, query string, arg interface{}) ([]*models.Match, error) {
	rows, err := r.exec(exec).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) SetPlayer(ctx context.Context, exec SQLExecutor, id uuid.UUID, playerSlot int, playerID uuid.UUID, modifiedBy string) error {
	column := "player1_id"
	if playerSlot == 2 {
		column = "player2_id"
	}
	query := fmt.Sprintf(`UPDATE matches SET %s = $1, modified_at = now(), modified_by = $2 WHERE id = $3`, column)
	result, err := r.exec(exec).ExecContext(ctx, query, playerID, modifiedBy, id)
	if err != nil {
		return fmt.Errorf("failed to set player on match %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Complete(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		UPDATE matches
		SET player1_score = $1, player2_score = $2, winner_id = $3, status = $4,
		    modified_at = now(), modified_by = $5
		WHERE id = $6`

	result, err := r.exec(exec).ExecContext(ctx, query,
		m.Player1Score, m.Player2Score, m.WinnerID, m.Status, m.ModifiedBy, m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete match %s: %w", m.ID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) CancelPendingByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, modifiedBy string) (int, error) {
	query := `
		UPDATE matches
		SET status = 'cancelled', modified_at = now(), modified_by = $1
		WHERE tournament_id = $2 AND status IN ('pending', 'playing')`

	result, err := r.exec(exec).ExecContext(ctx, query, modifiedBy, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel pending matches for tournament %s: %w", tournamentID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return int(affected), nil
}

func (r *postgresMatchRepository) CountPendingByGroup(ctx context.Context, exec SQLExecutor, groupID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM matches WHERE group_id = $1 AND status IN ('pending', 'playing')`
	var count int
	if err := r.exec(exec).QueryRowContext(ctx, query, groupID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending matches for group %s: %w", groupID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) CountPendingGroupMatches(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM matches
		WHERE tournament_id = $1 AND bracket_type = 'group' AND status IN ('pending', 'playing')`
	var count int
	if err := r.exec(exec).QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending group matches for tournament %s: %w", tournamentID, err)
	}
	return count, nil
}
