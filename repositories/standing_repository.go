package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bracketforge/tournament-engine/models"
	"github.com/google/uuid"
)

var ErrStandingNotFound = errors.New("group standing not found")

type StandingRepository interface {
	Create(ctx context.Context, exec SQLExecutor, s *models.GroupStanding) error
	GetByGroupAndPlayer(ctx context.Context, exec SQLExecutor, groupID, playerID uuid.UUID) (*models.GroupStanding, error)
	ListByGroup(ctx context.Context, exec SQLExecutor, groupID uuid.UUID) ([]*models.GroupStanding, error)
	UpdateCounters(ctx context.Context, exec SQLExecutor, s *models.GroupStanding) error
	UpdateRanking(ctx context.Context, exec SQLExecutor, id uuid.UUID, position int, qualified bool, modifiedBy string) error
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const standingColumns = `
	id, group_id, player_id, matches_played, wins, draws, losses,
	points, score_for, score_against, score_difference, position, qualified,
	created_at, created_by, modified_at, modified_by`

func scanStanding(row interface{ Scan(...interface{}) error }) (*models.GroupStanding, error) {
	s := &models.GroupStanding{}
	err := row.Scan(
		&s.ID, &s.GroupID, &s.PlayerID, &s.MatchesPlayed, &s.Wins, &s.Draws, &s.Losses,
		&s.Points, &s.ScoreFor, &s.ScoreAgainst, &s.ScoreDifference, &s.Position, &s.Qualified,
		&s.CreatedAt, &s.CreatedBy, &s.ModifiedAt, &s.ModifiedBy,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *postgresStandingRepository) Create(ctx context.Context, exec SQLExecutor, s *models.GroupStanding) error {
	query := `
		INSERT INTO group_standings
			(id, group_id, player_id, matches_played, wins, draws, losses,
			 points, score_for, score_against, score_difference, position, qualified,
			 created_at, created_by, modified_at, modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.exec(exec).ExecContext(ctx, query,
		s.ID, s.GroupID, s.PlayerID, s.MatchesPlayed, s.Wins, s.Draws, s.Losses,
		s.Points, s.ScoreFor, s.ScoreAgainst, s.ScoreDifference, s.Position, s.Qualified,
		s.CreatedAt, s.CreatedBy, s.ModifiedAt, s.ModifiedBy,
	)
	return err
}

func (r *postgresStandingRepository) GetByGroupAndPlayer(ctx context.Context, exec SQLExecutor, groupID, playerID uuid.UUID) (*models.GroupStanding, error) {
	query := `SELECT ` + standingColumns + ` FROM group_standings WHERE group_id = $1 AND player_id = $2`
	s, err := scanStanding(r.exec(exec).QueryRowContext(ctx, query, groupID, playerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStandingNotFound
		}
		return nil, fmt.Errorf("failed to scan standing for group %s player %s: %w", groupID, playerID, err)
	}
	return s, nil
}

func (r *postgresStandingRepository) ListByGroup(ctx context.Context, exec SQLExecutor, groupID uuid.UUID) ([]*models.GroupStanding, error) {
	query := `SELECT ` + standingColumns + `
		FROM group_standings
		WHERE group_id = $1
		ORDER BY points DESC, score_difference DESC, score_for DESC`

	rows, err := r.exec(exec).QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query standings for group %s: %w", groupID, err)
	}
	defer rows.Close()

	standings := make([]*models.GroupStanding, 0)
	for rows.Next() {
		s, err := scanStanding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan standing row: %w", err)
		}
		standings = append(standings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during standing rows iteration: %w", err)
	}
	return standings, nil
}

func (r *postgresStandingRepository) UpdateCounters(ctx context.Context, exec SQLExecutor, s *models.GroupStanding) error {
	query := `
		UPDATE group_standings
		SET matches_played = $1, wins = $2, draws = $3, losses = $4,
		    points = $5, score_for = $6, score_against = $7, score_difference = $8,
		    modified_at = now(), modified_by = $9
		WHERE id = $10`

	result, err := r.exec(exec).ExecContext(ctx, query,
		s.MatchesPlayed, s.Wins, s.Draws, s.Losses,
		s.Points, s.ScoreFor, s.ScoreAgainst, s.ScoreDifference,
		s.ModifiedBy, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update standing %s: %w", s.ID, err)
	}
	return checkAffectedRows(result, ErrStandingNotFound)
}

func (r *postgresStandingRepository) UpdateRanking(ctx context.Context, exec SQLExecutor, id uuid.UUID, position int, qualified bool, modifiedBy string) error {
	query := `
		UPDATE group_standings
		SET position = $1, qualified = $2, modified_at = now(), modified_by = $3
		WHERE id = $4`
	result, err := r.exec(exec).ExecContext(ctx, query, position, qualified, modifiedBy, id)
	if err != nil {
		return fmt.Errorf("failed to update ranking for standing %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrStandingNotFound)
}
