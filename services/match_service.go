package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bracketforge/tournament-engine/models"
	"github.com/bracketforge/tournament-engine/repositories"
	"github.com/google/uuid"
	"github.com/itbasis/go-clock"
)

type MatchResultInput struct {
	Player1Score int `json:"player1_score"`
	Player2Score int `json:"player2_score"`
}

type MatchService interface {
	// SubmitResult records a match result and applies every consequence in
	// one transaction: standings, advancement, eliminations and, when the
	// deciding match lands, tournament completion. Submitting the identical
	// result twice returns the stored match without reapplying anything.
	SubmitResult(ctx context.Context, matchID uuid.UUID, input MatchResultInput, actor string) (*models.Match, error)
	GetMatch(ctx context.Context, matchID uuid.UUID) (*models.Match, error)
}

type matchService struct {
	tx           repositories.TxRunner
	matchRepo    repositories.MatchRepository
	settingsRepo repositories.SettingsRepository
	prog         *progression
	audit        AuditSink
	locker       *TournamentLocker
	clock        clock.Clock
	logger       *slog.Logger
}

func NewMatchService(
	tx repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	groupRepo repositories.GroupRepository,
	standingRepo repositories.StandingRepository,
	positionRepo repositories.BracketPositionRepository,
	settingsRepo repositories.SettingsRepository,
	audit AuditSink,
	locker *TournamentLocker,
	clk clock.Clock,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		tx:           tx,
		matchRepo:    matchRepo,
		settingsRepo: settingsRepo,
		prog: &progression{
			tournamentRepo: tournamentRepo,
			playerRepo:     playerRepo,
			matchRepo:      matchRepo,
			groupRepo:      groupRepo,
			standingRepo:   standingRepo,
			positionRepo:   positionRepo,
			clock:          clk,
			logger:         logger,
		},
		audit:  audit,
		locker: locker,
		clock:  clk,
		logger: logger,
	}
}

func (s *matchService) SubmitResult(ctx context.Context, matchID uuid.UUID, input MatchResultInput, actor string) (*models.Match, error) {
	if input.Player1Score < 0 || input.Player2Score < 0 {
		return nil, ErrNegativeScore
	}

	// An unlocked read resolves the tournament to lock on; all state checks
	// re-run on fresh rows inside the transaction.
	peek, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, fmt.Errorf("%w %s", ErrMatchNotFound, matchID)
		}
		return nil, err
	}

	unlock := s.locker.Lock(peek.TournamentID)
	defer unlock()

	var (
		match  *models.Match
		tourn  *models.Tournament
		replay bool
	)
	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.prog.tournamentRepo.GetByID(ctx, exec, peek.TournamentID)
		if err != nil {
			return err
		}
		tourn = t

		switch t.Status {
		case models.StatusActive:
		case models.StatusCancelled:
			return ErrTournamentCancelled
		case models.StatusCompleted:
			return ErrTournamentFinished
		default:
			return ErrTournamentNotActive
		}

		m, err := s.matchRepo.GetByID(ctx, exec, matchID)
		if err != nil {
			return err
		}

		if m.Status == models.MatchCancelled {
			return ErrMatchCancelled
		}
		if !m.Contested() {
			return ErrMatchNotReady
		}
		if m.Status == models.MatchCompleted {
			if m.Player1Score != nil && m.Player2Score != nil &&
				*m.Player1Score == input.Player1Score && *m.Player2Score == input.Player2Score {
				match = m
				replay = true
				return nil
			}
			return ErrResultConflict
		}

		if input.Player1Score == input.Player2Score && m.BracketType != models.BracketGroup {
			return ErrDrawNotAllowed
		}

		cfg, err := s.settingsRepo.GetByTournament(ctx, exec, t.ID, t.Format)
		if err != nil {
			return err
		}

		s1, s2 := input.Player1Score, input.Player2Score
		m.Player1Score = &s1
		m.Player2Score = &s2
		m.WinnerID = nil
		if s1 > s2 {
			m.WinnerID = m.Player1ID
		} else if s2 > s1 {
			m.WinnerID = m.Player2ID
		}
		m.Status = models.MatchCompleted
		m.Touch(actor, s.clock.Now().UTC())

		if err := s.matchRepo.Complete(ctx, exec, m); err != nil {
			return err
		}
		if err := s.prog.advance(ctx, exec, t, cfg, m, actor); err != nil {
			return err
		}

		match = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	if replay {
		return match, nil
	}

	s.logger.Info("match result recorded",
		slog.String("tournament_id", tourn.ID.String()),
		slog.String("match_id", match.ID.String()),
		slog.Int("player1_score", input.Player1Score),
		slog.Int("player2_score", input.Player2Score),
	)

	now := s.clock.Now().UTC()
	detail := fmt.Sprintf("%s round %d slot %d finished %d:%d",
		match.BracketType, match.Round, match.Slot, input.Player1Score, input.Player2Score)
	if auditErr := recordOrDegrade(ctx, s.audit, s.logger,
		newAuditEntry(tourn.ID, actor, "match.result_submitted", "match", match.ID, detail, now)); auditErr != nil {
		return match, auditErr
	}

	if tourn.Status == models.StatusCompleted {
		if auditErr := recordOrDegrade(ctx, s.audit, s.logger,
			newAuditEntry(tourn.ID, actor, "tournament.completed", "tournament", tourn.ID, "deciding match played", now)); auditErr != nil {
			return match, auditErr
		}
	}
	return match, nil
}

func (s *matchService) GetMatch(ctx context.Context, matchID uuid.UUID) (*models.Match, error) {
	m, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, fmt.Errorf("%w %s", ErrMatchNotFound, matchID)
		}
		return nil, err
	}
	return m, nil
}
