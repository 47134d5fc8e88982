package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit carries the who/when columns every mutable row records.
type Audit struct {
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	CreatedBy  string    `json:"created_by" db:"created_by"`
	ModifiedAt time.Time `json:"modified_at" db:"modified_at"`
	ModifiedBy string    `json:"modified_by" db:"modified_by"`
}

// NewAudit stamps a fresh row: creator and modifier start out identical.
func NewAudit(actor string, now time.Time) Audit {
	return Audit{
		CreatedAt:  now,
		CreatedBy:  actor,
		ModifiedAt: now,
		ModifiedBy: actor,
	}
}

// Touch updates the modification columns in place.
func (a *Audit) Touch(actor string, now time.Time) {
	a.ModifiedAt = now
	a.ModifiedBy = actor
}

// AuditEntry is one append-only audit log record. Detail holds a short
// human-readable summary of the mutation.
type AuditEntry struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TournamentID uuid.UUID `json:"tournament_id" db:"tournament_id"`
	Actor        string    `json:"actor" db:"actor"`
	Action       string    `json:"action" db:"action"`
	EntityType   string    `json:"entity_type" db:"entity_type"`
	EntityID     uuid.UUID `json:"entity_id" db:"entity_id"`
	Detail       string    `json:"detail" db:"detail"`
	RecordedAt   time.Time `json:"recorded_at" db:"recorded_at"`
}
