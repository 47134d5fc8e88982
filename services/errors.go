package services

import (
	"errors"
	"fmt"
)

// Error categories. Every service error wraps exactly one of these so
// handlers can map a category to an HTTP status with errors.Is.
var (
	// ErrValidation covers malformed input and configuration out of range.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidState covers operations that are illegal for the current
	// tournament or match status.
	ErrInvalidState = errors.New("operation not allowed in current state")

	// ErrConflict covers duplicate registrations and contradictory result
	// submissions.
	ErrConflict = errors.New("conflict")

	// ErrNotFound covers unknown identifiers.
	ErrNotFound = errors.New("requested resource not found")

	// ErrInternal marks invariant violations. These are defects: they are
	// logged with full context and surfaced, never silently patched.
	ErrInternal = errors.New("internal invariant violation")
)

var (
	ErrTournamentNameRequired = fmt.Errorf("%w: tournament name is required", ErrValidation)
	ErrUnknownFormat          = fmt.Errorf("%w: unknown tournament format", ErrValidation)
	ErrCapacityTooSmall       = fmt.Errorf("%w: max players must be at least 2", ErrValidation)
	ErrInvalidDeadline        = fmt.Errorf("%w: registration deadline must be before the start date", ErrValidation)
	ErrInvalidGroupSettings   = fmt.Errorf("%w: invalid group stage settings", ErrValidation)
	ErrInvalidTiebreakRule    = fmt.Errorf("%w: unknown tiebreak rule", ErrValidation)
	ErrGamerTagRequired       = fmt.Errorf("%w: gamer tag is required", ErrValidation)
	ErrNegativeScore          = fmt.Errorf("%w: scores must be non-negative", ErrValidation)
	ErrDrawNotAllowed         = fmt.Errorf("%w: elimination matches cannot end in a draw", ErrValidation)
	ErrByesNotAllowed         = fmt.Errorf("%w: byes required but not allowed by settings", ErrValidation)
	ErrNotEnoughPlayers       = fmt.Errorf("%w: not enough players to generate fixtures", ErrValidation)

	ErrRegistrationClosed  = fmt.Errorf("%w: tournament registration is not open", ErrInvalidState)
	ErrDeadlineNotReached  = fmt.Errorf("%w: registration deadline not reached", ErrInvalidState)
	ErrTournamentNotActive = fmt.Errorf("%w: tournament is not active", ErrInvalidState)
	ErrTournamentCancelled = fmt.Errorf("%w: tournament is cancelled", ErrInvalidState)
	ErrTournamentFinished  = fmt.Errorf("%w: tournament is already completed", ErrInvalidState)
	ErrMatchCancelled      = fmt.Errorf("%w: match is cancelled", ErrInvalidState)
	ErrMatchNotReady       = fmt.Errorf("%w: match opponents are not decided yet", ErrInvalidState)

	ErrTournamentFull  = fmt.Errorf("%w: tournament registration is full", ErrConflict)
	ErrGamerTagTaken   = fmt.Errorf("%w: gamer tag already registered in this tournament", ErrConflict)
	ErrResultConflict  = fmt.Errorf("%w: match result already recorded with different scores", ErrConflict)
	ErrTournamentTaken = fmt.Errorf("%w: tournament name already exists", ErrConflict)

	ErrTournamentNotFound = fmt.Errorf("%w: tournament", ErrNotFound)
	ErrPlayerNotFound     = fmt.Errorf("%w: player", ErrNotFound)
	ErrGroupNotFound      = fmt.Errorf("%w: group", ErrNotFound)
	ErrMatchNotFound      = fmt.Errorf("%w: match", ErrNotFound)
)

// ErrAuditDegraded signals that the mutation itself succeeded but the audit
// trail could not be written. Callers must treat the operation as applied.
var ErrAuditDegraded = errors.New("mutation applied but audit logging failed")
