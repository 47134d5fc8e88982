package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/bracketforge/tournament-engine/brackets"
	"github.com/bracketforge/tournament-engine/models"
	"github.com/bracketforge/tournament-engine/repositories"
	"github.com/google/uuid"
	"github.com/itbasis/go-clock"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Name                 string                 `json:"name"`
	GameTitle            string                 `json:"game_title"`
	Format               models.FormatType      `json:"format_type"`
	MaxPlayers           int                    `json:"max_players"`
	RegistrationDeadline time.Time              `json:"registration_deadline"`
	StartDate            time.Time              `json:"start_date"`
	Settings             *models.FormatSettings `json:"settings,omitempty"`
}

type RegisterPlayerInput struct {
	Name     string  `json:"name"`
	GamerTag string  `json:"gamer_tag"`
	Phone    *string `json:"phone,omitempty"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput, actor string) (*models.Tournament, error)
	RegisterPlayer(ctx context.Context, tournamentID uuid.UUID, input RegisterPlayerInput, actor string) (*models.Player, error)

	// GenerateFixtures transitions registration -> active and builds the
	// format's initial structure. Before the registration deadline it
	// requires override. Calling it again on an active tournament is a
	// no-op returning the existing bracket.
	GenerateFixtures(ctx context.Context, tournamentID uuid.UUID, override bool, actor string) (*models.Tournament, error)

	CancelTournament(ctx context.Context, tournamentID uuid.UUID, actor string) error

	// GetTournament returns the tournament with settings, players, groups
	// and matches attached.
	GetTournament(ctx context.Context, tournamentID uuid.UUID) (*models.Tournament, error)

	// GetGroupStandings returns the group table in its resolved order:
	// points first, then the configured tiebreak rule.
	GetGroupStandings(ctx context.Context, groupID uuid.UUID) ([]*models.GroupStanding, error)
}

type tournamentService struct {
	tx           repositories.TxRunner
	settingsRepo repositories.SettingsRepository
	prog         *progression
	audit        AuditSink
	locker       *TournamentLocker
	clock        clock.Clock
	logger       *slog.Logger
}

func NewTournamentService(
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
) TournamentService {
	return &tournamentService{
		tx:           tx,
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

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput, actor string) (*models.Tournament, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrTournamentNameRequired
	}
	if !input.Format.Valid() {
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, input.Format)
	}
	if input.MaxPlayers < 2 {
		return nil, ErrCapacityTooSmall
	}
	if input.RegistrationDeadline.After(input.StartDate) {
		return nil, ErrInvalidDeadline
	}

	cfg := input.Settings
	if cfg == nil {
		cfg = models.DefaultSettings(input.Format)
	}
	if err := validateSettings(input.Format, cfg); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	t := &models.Tournament{
		ID:                   uuid.New(),
		Name:                 input.Name,
		GameTitle:            strings.TrimSpace(input.GameTitle),
		Format:               input.Format,
		MaxPlayers:           input.MaxPlayers,
		Status:               models.StatusRegistration,
		RegistrationDeadline: input.RegistrationDeadline,
		StartDate:            input.StartDate,
		Audit:                models.NewAudit(actor, now),
	}
	cfg.ID = uuid.New()
	cfg.TournamentID = t.ID
	cfg.Audit = models.NewAudit(actor, now)

	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.prog.tournamentRepo.Create(ctx, exec, t); err != nil {
			if errors.Is(err, repositories.ErrTournamentNameConflict) {
				return fmt.Errorf("%w: %q", ErrTournamentTaken, t.Name)
			}
			return err
		}
		return s.settingsRepo.Create(ctx, exec, t.Format, cfg)
	})
	if err != nil {
		return nil, err
	}
	t.Settings = cfg

	s.logger.Info("tournament created",
		slog.String("tournament_id", t.ID.String()),
		slog.String("format", string(t.Format)),
		slog.Int("max_players", t.MaxPlayers),
	)

	auditErr := recordOrDegrade(ctx, s.audit, s.logger,
		newAuditEntry(t.ID, actor, "tournament.created", "tournament", t.ID,
			fmt.Sprintf("%s, %s, capacity %d", t.Name, t.Format, t.MaxPlayers), now))
	return t, auditErr
}

func validateSettings(format models.FormatType, cfg *models.FormatSettings) error {
	if cfg.NumberOfConsoles < 0 {
		return fmt.Errorf("%w: number of consoles cannot be negative", ErrValidation)
	}
	if cfg.Variant(format) == nil {
		return fmt.Errorf("%w: settings carry no %s section", ErrValidation, format)
	}
	if gk := cfg.GroupKnockout; gk != nil && format == models.FormatGroupKnockout {
		if gk.GroupSize < 2 {
			return fmt.Errorf("%w: group size must be at least 2", ErrInvalidGroupSettings)
		}
		if gk.QualifiersPerGroup < 1 || gk.QualifiersPerGroup > gk.GroupSize {
			return fmt.Errorf("%w: qualifiers per group must be between 1 and the group size", ErrInvalidGroupSettings)
		}
		if gk.PointsPerWin < 0 || gk.PointsPerDraw < 0 || gk.PointsPerLoss < 0 {
			return fmt.Errorf("%w: points cannot be negative", ErrInvalidGroupSettings)
		}
		if !gk.TiebreakRule.Valid() {
			return fmt.Errorf("%w %q", ErrInvalidTiebreakRule, gk.TiebreakRule)
		}
	}
	return nil
}

func (s *tournamentService) RegisterPlayer(ctx context.Context, tournamentID uuid.UUID, input RegisterPlayerInput, actor string) (*models.Player, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.GamerTag = strings.TrimSpace(input.GamerTag)
	if input.Name == "" {
		return nil, fmt.Errorf("%w: player name is required", ErrValidation)
	}
	if input.GamerTag == "" {
		return nil, ErrGamerTagRequired
	}

	unlock := s.locker.Lock(tournamentID)
	defer unlock()

	var player *models.Player
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.getTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}

		switch t.Status {
		case models.StatusRegistration:
		case models.StatusCancelled:
			return ErrTournamentCancelled
		default:
			return ErrRegistrationClosed
		}
		if t.CurrentPlayerCount >= t.MaxPlayers {
			return ErrTournamentFull
		}

		player = &models.Player{
			ID:           uuid.New(),
			TournamentID: t.ID,
			Name:         input.Name,
			GamerTag:     input.GamerTag,
			Phone:        input.Phone,
			Status:       models.PlayerRegistered,
			Audit:        models.NewAudit(actor, s.clock.Now().UTC()),
		}
		if err := s.prog.playerRepo.Create(ctx, exec, player); err != nil {
			if errors.Is(err, repositories.ErrPlayerGamerTagConflict) {
				return fmt.Errorf("%w: %q", ErrGamerTagTaken, input.GamerTag)
			}
			return err
		}
		if err := s.prog.tournamentRepo.IncrementPlayerCount(ctx, exec, t.ID); err != nil {
			// The guarded update refuses to pass max_players.
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentFull
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	auditErr := recordOrDegrade(ctx, s.audit, s.logger,
		newAuditEntry(tournamentID, actor, "player.registered", "player", player.ID,
			fmt.Sprintf("%s (%s)", player.Name, player.GamerTag), s.clock.Now().UTC()))
	return player, auditErr
}

func (s *tournamentService) GenerateFixtures(ctx context.Context, tournamentID uuid.UUID, override bool, actor string) (*models.Tournament, error) {
	unlock := s.locker.Lock(tournamentID)
	defer unlock()

	var replay bool
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.getTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}

		switch t.Status {
		case models.StatusRegistration:
		case models.StatusActive:
			replay = true
			return nil
		case models.StatusCancelled:
			return ErrTournamentCancelled
		default:
			return ErrTournamentFinished
		}

		if !override && s.clock.Now().Before(t.RegistrationDeadline) {
			return fmt.Errorf("%w (deadline %s)", ErrDeadlineNotReached, t.RegistrationDeadline.Format(time.RFC3339))
		}

		cfg, err := s.settingsRepo.GetByTournament(ctx, exec, t.ID, t.Format)
		if err != nil {
			return err
		}
		players, err := s.prog.playerRepo.ListByTournament(ctx, exec, t.ID)
		if err != nil {
			return err
		}
		if len(players) < 2 {
			return fmt.Errorf("%w (have %d)", ErrNotEnoughPlayers, len(players))
		}

		rng := rand.New(rand.NewSource(s.clock.Now().UnixNano()))
		ordered := brackets.SeedPlayers(players, cfg.SeedingEnabled, cfg.ShufflePlayers, rng)

		entries := make([]brackets.Entry, len(ordered))
		for i, pl := range ordered {
			entries[i] = brackets.Entry{PlayerID: pl.ID, Seed: *pl.SeedNumber}
			if err := s.prog.playerRepo.UpdateSeed(ctx, exec, pl.ID, *pl.SeedNumber, actor); err != nil {
				return err
			}
		}

		switch t.Format {
		case models.FormatSingleElimination:
			err = s.generateElimination(ctx, exec, t, cfg, entries, cfg.SingleElimination.AllowByes, actor)
		case models.FormatDoubleElimination:
			err = s.generateElimination(ctx, exec, t, cfg, entries, true, actor)
		case models.FormatGroupKnockout:
			err = s.generateGroupStage(ctx, exec, t, cfg, entries, rng, actor)
		default:
			err = fmt.Errorf("%w %q", ErrUnknownFormat, t.Format)
		}
		if err != nil {
			return err
		}

		if err := s.prog.tournamentRepo.UpdateStatus(ctx, exec, t.ID, models.StatusActive, actor); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, err := s.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if replay {
		return result, nil
	}

	s.logger.Info("fixtures generated",
		slog.String("tournament_id", tournamentID.String()),
		slog.String("format", string(result.Format)),
		slog.Int("players", len(result.Players)),
		slog.Int("matches", len(result.Matches)),
	)

	auditErr := recordOrDegrade(ctx, s.audit, s.logger,
		newAuditEntry(tournamentID, actor, "fixtures.generated", "tournament", tournamentID,
			fmt.Sprintf("%d players, %d matches", len(result.Players), len(result.Matches)), s.clock.Now().UTC()))
	return result, auditErr
}

func (s *tournamentService) generateElimination(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, cfg *models.FormatSettings, entries []brackets.Entry, allowByes bool, actor string) error {
	plan, err := brackets.GenerateSingleElimination(entries, allowByes)
	if err != nil {
		return mapBracketError(err)
	}
	return s.prog.persistEliminationPlan(ctx, exec, t, cfg, plan, actor)
}

func (s *tournamentService) generateGroupStage(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, cfg *models.FormatSettings, entries []brackets.Entry, rng *rand.Rand, actor string) error {
	gk := cfg.GroupKnockout
	plan, err := brackets.GenerateGroupStage(entries, gk.GroupSize)
	if err != nil {
		return mapBracketError(err)
	}

	now := s.clock.Now().UTC()
	groupIDs := make([]uuid.UUID, len(plan.Groups))

	for i, members := range plan.Groups {
		group := &models.Group{
			ID:           uuid.New(),
			TournamentID: t.ID,
			Name:         groupName(i),
			GroupNumber:  i + 1,
			TiebreakSeed: rng.Int63(),
			Audit:        models.NewAudit(actor, now),
		}
		if err := s.prog.groupRepo.Create(ctx, exec, group); err != nil {
			return err
		}
		groupIDs[i] = group.ID

		for _, e := range members {
			if err := s.prog.groupRepo.AddMember(ctx, exec, &models.GroupMembership{
				ID:       uuid.New(),
				GroupID:  group.ID,
				PlayerID: e.PlayerID,
				Audit:    models.NewAudit(actor, now),
			}); err != nil {
				return err
			}
			if err := s.prog.standingRepo.Create(ctx, exec, &models.GroupStanding{
				ID:       uuid.New(),
				GroupID:  group.ID,
				PlayerID: e.PlayerID,
				Audit:    models.NewAudit(actor, now),
			}); err != nil {
				return err
			}
		}
	}

	for i, pm := range plan.Matches {
		groupID := groupIDs[pm.GroupNumber-1]
		m := &models.Match{
			ID:           uuid.New(),
			TournamentID: t.ID,
			GroupID:      &groupID,
			Round:        pm.Round,
			BracketType:  models.BracketGroup,
			Slot:         pm.Slot,
			Player1ID:    pm.Player1,
			Player2ID:    pm.Player2,
			Status:       models.MatchPending,
			Audit:        models.NewAudit(actor, now),
		}
		if cfg.NumberOfConsoles > 0 {
			console := i%cfg.NumberOfConsoles + 1
			m.ConsoleAssigned = &console
		}
		start := t.StartDate
		m.ScheduledTime = &start

		if err := s.prog.matchRepo.Create(ctx, exec, m); err != nil {
			return err
		}
	}
	return nil
}

func (s *tournamentService) CancelTournament(ctx context.Context, tournamentID uuid.UUID, actor string) error {
	unlock := s.locker.Lock(tournamentID)
	defer unlock()

	var cancelledMatches int
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.getTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		switch t.Status {
		case models.StatusCompleted:
			return ErrTournamentFinished
		case models.StatusCancelled:
			return ErrTournamentCancelled
		}

		if err := s.prog.tournamentRepo.MarkCancelled(ctx, exec, t.ID, s.clock.Now().UTC(), actor); err != nil {
			return err
		}
		cancelledMatches, err = s.prog.matchRepo.CancelPendingByTournament(ctx, exec, t.ID, actor)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("tournament cancelled",
		slog.String("tournament_id", tournamentID.String()),
		slog.Int("matches_cancelled", cancelledMatches),
	)

	return recordOrDegrade(ctx, s.audit, s.logger,
		newAuditEntry(tournamentID, actor, "tournament.cancelled", "tournament", tournamentID,
			fmt.Sprintf("%d pending matches cancelled", cancelledMatches), s.clock.Now().UTC()))
}

// GetTournament assembles the full aggregate with one parallel fetch per
// linked collection.
func (s *tournamentService) GetTournament(ctx context.Context, tournamentID uuid.UUID) (*models.Tournament, error) {
	t, err := s.getTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cfg, err := s.settingsRepo.GetByTournament(gCtx, nil, t.ID, t.Format)
		if err != nil {
			return fmt.Errorf("failed to fetch settings for tournament %s: %w", t.ID, err)
		}
		t.Settings = cfg
		return nil
	})
	g.Go(func() error {
		players, err := s.prog.playerRepo.ListByTournament(gCtx, nil, t.ID)
		if err != nil {
			return fmt.Errorf("failed to fetch players for tournament %s: %w", t.ID, err)
		}
		t.Players = make([]models.Player, len(players))
		for i, p := range players {
			t.Players[i] = *p
		}
		return nil
	})
	g.Go(func() error {
		groups, err := s.prog.groupRepo.ListByTournament(gCtx, nil, t.ID)
		if err != nil {
			return fmt.Errorf("failed to fetch groups for tournament %s: %w", t.ID, err)
		}
		t.Groups = make([]models.Group, len(groups))
		for i, gr := range groups {
			t.Groups[i] = *gr
		}
		return nil
	})
	g.Go(func() error {
		matches, err := s.prog.matchRepo.ListByTournament(gCtx, nil, t.ID)
		if err != nil {
			return fmt.Errorf("failed to fetch matches for tournament %s: %w", t.ID, err)
		}
		t.Matches = make([]models.Match, len(matches))
		for i, m := range matches {
			t.Matches[i] = *m
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *tournamentService) GetGroupStandings(ctx context.Context, groupID uuid.UUID) ([]*models.GroupStanding, error) {
	group, err := s.prog.groupRepo.GetByID(ctx, nil, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, fmt.Errorf("%w %s", ErrGroupNotFound, groupID)
		}
		return nil, err
	}
	t, err := s.getTournament(ctx, nil, group.TournamentID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.settingsRepo.GetByTournament(ctx, nil, t.ID, t.Format)
	if err != nil {
		return nil, err
	}
	if cfg.GroupKnockout == nil {
		return nil, fmt.Errorf("%w: tournament %s has no group stage", ErrInternal, t.ID)
	}

	standings, err := s.prog.standingRepo.ListByGroup(ctx, nil, groupID)
	if err != nil {
		return nil, err
	}
	matches, err := s.prog.matchRepo.ListByGroup(ctx, nil, groupID)
	if err != nil {
		return nil, err
	}
	return brackets.ResolveStandings(standings, matches, cfg.GroupKnockout.TiebreakRule, group.TiebreakSeed), nil
}

func (s *tournamentService) getTournament(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) (*models.Tournament, error) {
	t, err := s.prog.tournamentRepo.GetByID(ctx, exec, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, fmt.Errorf("%w %s", ErrTournamentNotFound, id)
		}
		return nil, err
	}
	return t, nil
}

func mapBracketError(err error) error {
	switch {
	case errors.Is(err, brackets.ErrNotEnoughPlayers):
		return fmt.Errorf("%w: %v", ErrNotEnoughPlayers, err)
	case errors.Is(err, brackets.ErrByesNotAllowed):
		return fmt.Errorf("%w: %v", ErrByesNotAllowed, err)
	}
	return err
}

// groupName labels groups A..Z, then falls back to the number.
func groupName(index int) string {
	if index < 26 {
		return fmt.Sprintf("Group %c", 'A'+rune(index))
	}
	return fmt.Sprintf("Group %d", index+1)
}
