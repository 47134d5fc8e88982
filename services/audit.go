package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/bracketforge/tournament-engine/models"
	"github.com/bracketforge/tournament-engine/repositories"
	"github.com/bracketforge/tournament-engine/storage"
	"github.com/google/uuid"
	"github.com/itbasis/go-clock"
)

// AuditSink records one audit entry per applied mutation. Implementations run
// after the mutation's transaction commits: a sink failure degrades the
// response but never rolls the mutation back.
type AuditSink interface {
	Record(ctx context.Context, entry *models.AuditEntry) error
}

type auditService struct {
	repo     repositories.AuditLogRepository
	uploader storage.FileUploader
	clock    clock.Clock
	logger   *slog.Logger
}

// NewAuditService builds the default sink: every entry lands in the audit_log
// table and, when an uploader is configured, is mirrored to object storage as
// JSON under audit/<tournament>/<entry>.json.
func NewAuditService(repo repositories.AuditLogRepository, uploader storage.FileUploader, clk clock.Clock, logger *slog.Logger) AuditSink {
	return &auditService{
		repo:     repo,
		uploader: uploader,
		clock:    clk,
		logger:   logger,
	}
}

func (s *auditService) Record(ctx context.Context, entry *models.AuditEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = s.clock.Now().UTC()
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert audit entry %s: %w", entry.ID, err)
	}

	if s.uploader != nil {
		if err := s.archive(ctx, entry); err != nil {
			// The database row exists, so the trail survives. The mirror is
			// best effort and only logged.
			s.logger.Warn("audit entry archived to database only",
				slog.String("entry_id", entry.ID.String()),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

func (s *auditService) archive(ctx context.Context, entry *models.AuditEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry %s: %w", entry.ID, err)
	}

	key := fmt.Sprintf("audit/%s/%s.json", entry.TournamentID, entry.ID)
	if _, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload)); err != nil {
		return err
	}
	return nil
}

// recordOrDegrade funnels every service mutation through the sink. The
// returned error is either nil or ErrAuditDegraded wrapped with the cause.
func recordOrDegrade(ctx context.Context, sink AuditSink, logger *slog.Logger, entry *models.AuditEntry) error {
	if sink == nil {
		return nil
	}
	if err := sink.Record(ctx, entry); err != nil {
		logger.Error("audit logging failed",
			slog.String("tournament_id", entry.TournamentID.String()),
			slog.String("action", entry.Action),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %v", ErrAuditDegraded, err)
	}
	return nil
}

func newAuditEntry(tournamentID uuid.UUID, actor, action, entityType string, entityID uuid.UUID, detail string, at time.Time) *models.AuditEntry {
	return &models.AuditEntry{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		Actor:        actor,
		Action:       action,
		EntityType:   entityType,
		EntityID:     entityID,
		Detail:       detail,
		RecordedAt:   at.UTC(),
	}
}
