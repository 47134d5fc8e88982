package repositories

import (
	"context"
	"database/sql"

	"github.com/bracketforge/tournament-engine/models"
)

type AuditLogRepository interface {
	// Insert runs outside the mutation's transaction on purpose: a failed
	// audit write must not roll the mutation back.
	Insert(ctx context.Context, entry *models.AuditEntry) error
}

type postgresAuditLogRepository struct {
	db *sql.DB
}

func NewPostgresAuditLogRepository(db *sql.DB) AuditLogRepository {
	return &postgresAuditLogRepository{db: db}
}

func (r *postgresAuditLogRepository) Insert(ctx context.Context, entry *models.AuditEntry) error {
	query := `
		INSERT INTO audit_log
			(id, tournament_id, actor, action, entity_type, entity_id, detail, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.TournamentID, entry.Actor, entry.Action,
		entry.EntityType, entry.EntityID, entry.Detail, entry.RecordedAt,
	)
	return err
}
