package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/bracketforge/tournament-engine/brackets"
	"github.com/bracketforge/tournament-engine/models"
	"github.com/bracketforge/tournament-engine/repositories"
	"github.com/google/uuid"
	"github.com/itbasis/go-clock"
)

// progression applies the consequences of a completed match inside the
// caller's transaction: standings updates, advancement into lazily created
// next-round matches, losers-bracket drops and tournament completion. Every
// method requires the caller to hold the tournament lock.
type progression struct {
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	matchRepo      repositories.MatchRepository
	groupRepo      repositories.GroupRepository
	standingRepo   repositories.StandingRepository
	positionRepo   repositories.BracketPositionRepository
	clock          clock.Clock
	logger         *slog.Logger
}

// advance routes a freshly completed match to its format's progression rules.
func (p *progression) advance(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, cfg *models.FormatSettings, m *models.Match, actor string) error {
	if m.BracketType == models.BracketGroup {
		return p.applyGroupResult(ctx, exec, t, cfg, m, actor)
	}
	if t.Format == models.FormatDoubleElimination {
		return p.advanceDoubleElim(ctx, exec, t, cfg, m, actor)
	}

	thirdPlace := t.Format == models.FormatSingleElimination &&
		cfg.SingleElimination != nil && cfg.SingleElimination.ThirdPlaceMatch
	return p.advanceKnockout(ctx, exec, t, cfg, thirdPlace, m, actor)
}

// bracketSizeFor derives the bracket size from the recorded winners-bracket
// slot assignments, which exist from the moment fixtures are generated.
func (p *progression) bracketSizeFor(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) (int, error) {
	positions, err := p.positionRepo.ListByTournament(ctx, exec, t.ID, models.BracketWinners)
	if err != nil {
		return 0, err
	}
	if len(positions) == 0 {
		return 0, fmt.Errorf("%w: tournament %s has no bracket positions", ErrInternal, t.ID)
	}
	return brackets.BracketSize(len(positions)), nil
}

// --- single elimination (and the knockout phase of group+knockout) ---

func (p *progression) advanceKnockout(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, cfg *models.FormatSettings, thirdPlace bool, m *models.Match, actor string) error {
	size, err := p.bracketSizeFor(ctx, exec, t)
	if err != nil {
		return err
	}
	rounds := brackets.NumRounds(size)

	// The third place match settles placement only.
	if m.Round == rounds && m.Slot == brackets.ThirdPlaceSlot {
		return nil
	}

	if loser := m.LoserID(); loser != nil {
		if err := p.eliminate(ctx, exec, t, models.BracketWinners, *loser, m.Round, actor); err != nil {
			return err
		}
	}

	if m.WinnerID == nil {
		return fmt.Errorf("%w: completed elimination match %s has no winner", ErrInternal, m.ID)
	}

	if m.Round == rounds {
		return p.completeTournament(ctx, exec, t, *m.WinnerID, actor)
	}

	nextRound, nextSlot, playerSlot := brackets.NextSlot(m.Round, m.Slot)
	next, err := p.findOrCreateMatch(ctx, exec, t, cfg, brackets.RoundBracketType(nextRound, rounds), nextRound, nextSlot, actor)
	if err != nil {
		return err
	}
	if err := p.placePlayer(ctx, exec, next, playerSlot, *m.WinnerID, actor); err != nil {
		return err
	}

	if thirdPlace && m.Round == rounds-1 {
		if err := p.maybeCreateThirdPlace(ctx, exec, t, cfg, rounds, m, actor); err != nil {
			return err
		}
	}
	return nil
}

// maybeCreateThirdPlace pairs the two semifinal losers once both semifinals
// have produced one. A semifinal decided by a bye has no loser, in which case
// the match is skipped entirely.
func (p *progression) maybeCreateThirdPlace(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, cfg *models.FormatSettings, rounds int, m *models.Match, actor string) error {
	sibling, err := p.matchRepo.FindBySlot(ctx, exec, t.ID, m.BracketType, m.Round, m.Slot^1)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil
		}
		return err
	}
	if sibling.Status != models.MatchCompleted {
		return nil
	}

	loserA, loserB := m.LoserID(), sibling.LoserID()
	if loserA == nil || loserB == nil {
		p.logger.Info("third place match skipped, semifinal decided by bye",
			slog.String("tournament_id", t.ID.String()))
		return nil
	}

	third, err := p.findOrCreateMatch(ctx, exec, t, cfg, models.BracketFinal, rounds, brackets.ThirdPlaceSlot, actor)
	if err != nil {
		return err
	}
	if err := p.placePlayer(ctx, exec, third, m.Slot+1, *loserA, actor); err != nil {
		return err
	}
	return p.placePlayer(ctx, exec, third, sibling.Slot+1, *loserB, actor)
}

// --- double elimination ---

func (p *progression) advanceDoubleElim(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, cfg *models.FormatSettings, m *models.Match, actor string) error {
	size, err := p.bracketSizeFor(ctx, exec, t)
	if err != nil {
		return err
	}

	switch m.BracketType {
	case models.BracketWinners:
		return p.advanceWinnersSide(ctx, exec, t, cfg, size, m, actor)
	case models.BracketLosers:
		return p.advanceLosersSide(ctx, exec, t, cfg, size, m, actor)
	case models.BracketFinal:
		return p.advanceGrandFinal(ctx, exec, t, cfg, m, actor)
	}
	return fmt.Errorf("%w: unexpected bracket type %q for match %s", ErrInternal, m.BracketType, m.ID)
}

func (p *progression) advanceWinnersSide(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, cfg *models.FormatSettings, size int, m *models.Match, actor string) error {
	wbRounds := brackets.NumRounds(size)
	if m.WinnerID == nil {
		return fmt.Errorf("%w: completed winners match %s has no winner", ErrInternal, m.ID)
	}

	if m.Round < wbRounds {
		nextRound, nextSlot, playerSlot := brackets.NextSlot(m.Round, m.Slot)
		next, err := p.findOrCreateMatch(ctx, exec, t, cfg, models.BracketWinners, nextRound, nextSlot, actor)
		if err != nil {
			return err
		}
		if err := p.placePlayer(ctx, exec, next, playerSlot, *m.WinnerID, actor); err != nil {
			return err
		}
	} else {
		// Winners bracket champion waits in the grand final.
		gf, err := p.findOrCreateMatch(ctx, exec, t, cfg, models.BracketFinal, brackets.GrandFinalRound, brackets.GrandFinalSlot, actor)
		if err != nil {
			return err
		}
		if err := p.placePlayer(ctx, exec, gf, 1, *m.WinnerID, actor); err != nil {
			return err
		}
	}

	loser := m.LoserID()
	if loser == nil {
		return nil
	}

	// Record the drop out of the winners bracket. The player stays alive.
	if err := p.markDropped(ctx, exec, t, models.BracketWinners, *loser, m.Round, actor); err != nil {
		return err
	}

	if brackets.LoserRounds(size) == 0 {
		// Two-player field: the single winners match doubles as the losers
		// qualifier, its loser goes straight to the grand final.
		if err := p.createPosition(ctx, exec, t, models.BracketLosers, *loser, 0, actor); err != nil {
			return err
		}
		gf, err := p.findOrCreateMatch(ctx, exec, t, cfg, models.BracketFinal, brackets.GrandFinalRound, brackets.GrandFinalSlot, actor)
		if err != nil {
			return err
		}
		return p.placePlayer(ctx, exec, gf, 2, *loser, actor)
	}

	lbRound, lbSlot, playerSlot := brackets.WinnersDropSlot(size, m.Round, m.Slot)
	if err := p.createPosition(ctx, exec, t, models.BracketLosers, *loser, lbSlot*2+playerSlot-1, actor); err != nil {
		return err
	}

	lb, err := p.findOrCreateMatch(ctx, exec, t, cfg, models.BracketLosers, lbRound, lbSlot, actor)
	if err != nil {
		return err
	}
	if err := p.placePlayer(ctx, exec, lb, playerSlot, *loser, actor); err != nil {
		return err
	}
	return p.resolveLosersMatch(ctx, exec, t, cfg, size, lb, actor)
}

func (p *progression) advanceLosersSide(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, cfg *models.FormatSettings, size int, m *models.Match, actor string) error {
	if m.WinnerID == nil {
		return fmt.Errorf("%w: completed losers match %s has no winner", ErrInternal, m.ID)
	}

	if loser := m.LoserID(); loser != nil {
		if err := p.eliminate(ctx, exec, t, models.BracketLosers, *loser, m.Round, actor); err != nil {
			return err
		}
	}

	nextRound, nextSlot, playerSlot, grandFinal := brackets.LoserAdvance(size, m.Round, m.Slot)
	if grandFinal {
		gf, err := p.findOrCreateMatch(ctx, exec, t, cfg, models.BracketFinal, brackets.GrandFinalRound, brackets.GrandFinalSlot, actor)
		if err != nil {
			return err
		}
		if err := p.placePlayer(ctx, exec, gf, playerSlot, *m.WinnerID, actor); err != nil {
			return err
		}
		if cfg.DoubleElimination != nil && cfg.DoubleElimination.ThirdPlaceMatch {
			return p.maybeCreateLosersThirdPlace(ctx, exec, t, cfg, size, m, actor)
		}
		return nil
	}

	next, err := p.findOrCreateMatch(ctx, exec, t, cfg, models.BracketLosers, nextRound, nextSlot, actor)
	if err != nil {
		return err
	}
	if err := p.placePlayer(ctx, exec, next, playerSlot, *m.WinnerID, actor); err != nil {
		return err
	}
	return p.resolveLosersMatch(ctx, exec, t, cfg, size, next, actor)
}

// maybeCreateLosersThirdPlace pairs the losers-bracket final's loser with the
// loser of the preceding losers round, deciding third versus fourth place.
func (p *progression) maybeCreateLosersThirdPlace(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, cfg *models.FormatSettings, size int, lbFinal *models.Match, actor string) error {
	loserA := lbFinal.LoserID()
	if loserA == nil {
		return nil
	}
	prevRound := brackets.LoserRounds(size) - 1
	if prevRound < 1 {
		return nil
	}
	prev, err := p.matchRepo.FindBySlot(ctx, exec, t.ID, models.BracketLosers, prevRound, 0)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil
		}
		return err
	}
	loserB := prev.LoserID()
	if prev.Status != models.MatchCompleted || loserB == nil {
		return nil
	}

	third, err := p.findOrCreateMatch(ctx, exec, t, cfg, models.BracketFinal, brackets.GrandFinalRound, brackets.ThirdPlaceSlot, actor)
	if err != nil {
		return err
	}
	if err := p.placePlayer(ctx, exec, third, 1, *loserA, actor); err != nil {
		return err
	}
	return p.placePlayer(ctx, exec, third, 2, *loserB, actor)
}

func (p *progression) advanceGrandFinal(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, cfg *models.FormatSettings, m *models.Match, actor string) error {
	// Slot 1 of the final bracket holds the third place match.
	if m.Slot == brackets.ThirdPlaceSlot {
		return nil
	}
	if m.WinnerID == nil {
		return fmt.Errorf("%w: completed grand final %s has no winner", ErrInternal, m.ID)
	}

	resetEnabled := cfg.DoubleElimination != nil && cfg.DoubleElimination.GrandFinalResetEnabled
	if m.Round == brackets.GrandFinalRound && resetEnabled &&
		m.Player2ID != nil && *m.WinnerID == *m.Player2ID {
		// The losers-bracket champion evened the score: both players carry
		// one loss, a deciding rematch is required.
		reset, err := p.findOrCreateMatch(ctx, exec, t, cfg, models.BracketFinal, brackets.GrandFinalResetRound, brackets.GrandFinalSlot, actor)
		if err != nil {
			return err
		}
		if err := p.placePlayer(ctx, exec, reset, 1, *m.Player1ID, actor); err != nil {
			return err
		}
		if err := p.placePlayer(ctx, exec, reset, 2, *m.Player2ID, actor); err != nil {
			return err
		}
		p.logger.Info("grand final reset scheduled", slog.String("tournament_id", t.ID.String()))
		return nil
	}

	if loser := m.LoserID(); loser != nil {
		// The runner-up exits on the losers-bracket position they picked up
		// when they dropped. A winners-bracket champion losing the deciding
		// match never dropped, so their winners run ends here instead.
		pos, err := p.positionRepo.Get(ctx, exec, t.ID, *loser, models.BracketLosers)
		if errors.Is(err, repositories.ErrBracketPositionNotFound) {
			pos, err = p.positionRepo.Get(ctx, exec, t.ID, *loser, models.BracketWinners)
		}
		if err != nil {
			return err
		}
		if err := p.positionRepo.SetRoundEliminated(ctx, exec, pos.ID, m.Round, actor); err != nil {
			return err
		}
		if err := p.playerRepo.UpdateStatus(ctx, exec, *loser, models.PlayerEliminated, actor); err != nil {
			return err
		}
	}
	return p.completeTournament(ctx, exec, t, *m.WinnerID, actor)
}

// resolveLosersMatch decides whether a partially filled losers-bracket match
// can still receive its second player. When every path to the empty slot is
// exhausted (the feeders were byes) the present player advances on a bye, and
// the advancement cascades.
func (p *progression) resolveLosersMatch(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, cfg *models.FormatSettings, size int, lb *models.Match, actor string) error {
	if lb.Status != models.MatchPending || lb.Contested() {
		return nil
	}
	if lb.Player1ID == nil && lb.Player2ID == nil {
		return nil
	}

	feeders := brackets.LoserFeeders(size, lb.Round, lb.Slot)
	emptyIdx := 0
	if lb.Player1ID != nil {
		emptyIdx = 1
	}
	can, err := p.feederCanProduce(ctx, exec, t, size, feeders[emptyIdx])
	if err != nil {
		return err
	}
	if can {
		return nil
	}

	winner := lb.Player1ID
	if winner == nil {
		winner = lb.Player2ID
	}
	lb.WinnerID = winner
	lb.Status = models.MatchCompleted
	lb.Touch(actor, p.clock.Now().UTC())
	if err := p.matchRepo.Complete(ctx, exec, lb); err != nil {
		return err
	}
	return p.advanceLosersSide(ctx, exec, t, cfg, size, lb, actor)
}

// feederCanProduce reports whether the given feeder can still deliver a
// player into the losers bracket.
func (p *progression) feederCanProduce(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, size int, f brackets.Feeder) (bool, error) {
	switch f.Kind {
	case brackets.FeedFromWinners:
		wm, err := p.matchRepo.FindBySlot(ctx, exec, t.ID, models.BracketWinners, f.Round, f.Slot)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				// Not created yet, so not decided yet.
				return true, nil
			}
			return false, err
		}
		// A completed winners match has already delivered its loser, or had
		// none to deliver in the case of a bye.
		return wm.Status != models.MatchCompleted, nil

	case brackets.FeedFromLosers:
		lm, err := p.matchRepo.FindBySlot(ctx, exec, t.ID, models.BracketLosers, f.Round, f.Slot)
		if err == nil {
			return lm.Status != models.MatchCompleted, nil
		}
		if !errors.Is(err, repositories.ErrMatchNotFound) {
			return false, err
		}
		// The feeder match does not exist yet: it can still produce if any
		// of its own feeders can.
		for _, ff := range brackets.LoserFeeders(size, f.Round, f.Slot) {
			can, err := p.feederCanProduce(ctx, exec, t, size, ff)
			if err != nil {
				return false, err
			}
			if can {
				return true, nil
			}
		}
		return false, nil
	}
	return false, fmt.Errorf("%w: unknown feeder kind %d", ErrInternal, f.Kind)
}

// --- group stage ---

func (p *progression) applyGroupResult(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, cfg *models.FormatSettings, m *models.Match, actor string) error {
	gk := cfg.GroupKnockout
	if gk == nil {
		return fmt.Errorf("%w: group match %s in tournament without group settings", ErrInternal, m.ID)
	}
	if m.GroupID == nil {
		return fmt.Errorf("%w: group match %s has no group", ErrInternal, m.ID)
	}

	if err := p.updateStanding(ctx, exec, *m.GroupID, *m.Player1ID, *m.Player1Score, *m.Player2Score, m.WinnerID, gk, actor); err != nil {
		return err
	}
	if err := p.updateStanding(ctx, exec, *m.GroupID, *m.Player2ID, *m.Player2Score, *m.Player1Score, m.WinnerID, gk, actor); err != nil {
		return err
	}

	pending, err := p.matchRepo.CountPendingByGroup(ctx, exec, *m.GroupID)
	if err != nil {
		return err
	}
	if pending > 0 {
		return nil
	}
	if err := p.finalizeGroup(ctx, exec, t, gk, *m.GroupID, actor); err != nil {
		return err
	}

	pendingAll, err := p.matchRepo.CountPendingGroupMatches(ctx, exec, t.ID)
	if err != nil {
		return err
	}
	if pendingAll > 0 {
		return nil
	}
	return p.buildKnockoutStage(ctx, exec, t, cfg, actor)
}

func (p *progression) updateStanding(ctx context.Context, exec repositories.SQLExecutor, groupID, playerID uuid.UUID, scored, conceded int, winnerID *uuid.UUID, gk *models.GroupKnockoutSettings, actor string) error {
	s, err := p.standingRepo.GetByGroupAndPlayer(ctx, exec, groupID, playerID)
	if err != nil {
		return err
	}

	s.MatchesPlayed++
	s.ScoreFor += scored
	s.ScoreAgainst += conceded
	s.ScoreDifference = s.ScoreFor - s.ScoreAgainst

	switch {
	case winnerID == nil:
		s.Draws++
		s.Points += gk.PointsPerDraw
	case *winnerID == playerID:
		s.Wins++
		s.Points += gk.PointsPerWin
	default:
		s.Losses++
		s.Points += gk.PointsPerLoss
	}

	s.Touch(actor, p.clock.Now().UTC())
	return p.standingRepo.UpdateCounters(ctx, exec, s)
}

// finalizeGroup freezes the group table: positions are assigned under the
// configured tiebreak rule and the top qualifiers move on.
func (p *progression) finalizeGroup(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, gk *models.GroupKnockoutSettings, groupID uuid.UUID, actor string) error {
	group, err := p.groupRepo.GetByID(ctx, exec, groupID)
	if err != nil {
		return err
	}
	standings, err := p.standingRepo.ListByGroup(ctx, exec, groupID)
	if err != nil {
		return err
	}
	matches, err := p.matchRepo.ListByGroup(ctx, exec, groupID)
	if err != nil {
		return err
	}

	ordered := brackets.ResolveStandings(standings, matches, gk.TiebreakRule, group.TiebreakSeed)
	for i, s := range ordered {
		position := i + 1
		qualified := position <= gk.QualifiersPerGroup
		if err := p.standingRepo.UpdateRanking(ctx, exec, s.ID, position, qualified, actor); err != nil {
			return err
		}

		status := models.PlayerEliminated
		if qualified {
			status = models.PlayerQualified
		}
		if err := p.playerRepo.UpdateStatus(ctx, exec, s.PlayerID, status, actor); err != nil {
			return err
		}
	}

	p.logger.Info("group finalized",
		slog.String("tournament_id", t.ID.String()),
		slog.String("group", group.Name),
	)
	return nil
}

type qualifier struct {
	playerID    uuid.UUID
	position    int
	points      int
	diff        int
	scoreFor    int
	groupNumber int
}

// buildKnockoutStage runs once the last group match completes: qualifiers are
// ranked across groups and seeded into a fresh single elimination bracket.
func (p *progression) buildKnockoutStage(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, cfg *models.FormatSettings, actor string) error {
	groups, err := p.groupRepo.ListByTournament(ctx, exec, t.ID)
	if err != nil {
		return err
	}

	var qualifiers []qualifier
	for _, g := range groups {
		standings, err := p.standingRepo.ListByGroup(ctx, exec, g.ID)
		if err != nil {
			return err
		}
		for _, s := range standings {
			if !s.Qualified || s.Position == nil {
				continue
			}
			qualifiers = append(qualifiers, qualifier{
				playerID:    s.PlayerID,
				position:    *s.Position,
				points:      s.Points,
				diff:        s.ScoreDifference,
				scoreFor:    s.ScoreFor,
				groupNumber: g.GroupNumber,
			})
		}
	}

	if len(qualifiers) == 0 {
		return fmt.Errorf("%w: group stage finished with no qualifiers", ErrInternal)
	}
	if len(qualifiers) == 1 {
		return p.completeTournament(ctx, exec, t, qualifiers[0].playerID, actor)
	}

	// Cross-group seeding: group winners ahead of runners-up, then the
	// stronger record, group number as the final stable key.
	sort.SliceStable(qualifiers, func(i, j int) bool {
		a, b := qualifiers[i], qualifiers[j]
		if a.position != b.position {
			return a.position < b.position
		}
		if a.points != b.points {
			return a.points > b.points
		}
		if a.diff != b.diff {
			return a.diff > b.diff
		}
		if a.scoreFor != b.scoreFor {
			return a.scoreFor > b.scoreFor
		}
		return a.groupNumber < b.groupNumber
	})

	entries := make([]brackets.Entry, len(qualifiers))
	for i, q := range qualifiers {
		entries[i] = brackets.Entry{PlayerID: q.playerID, Seed: i + 1}
		if err := p.playerRepo.UpdateSeed(ctx, exec, q.playerID, i+1, actor); err != nil {
			return err
		}
	}

	plan, err := brackets.GenerateSingleElimination(entries, true)
	if err != nil {
		return err
	}

	p.logger.Info("knockout stage generated",
		slog.String("tournament_id", t.ID.String()),
		slog.Int("qualifiers", len(qualifiers)),
		slog.Int("bracket_size", plan.BracketSize),
	)
	return p.persistEliminationPlan(ctx, exec, t, cfg, plan, actor)
}

// --- shared persistence and terminal transitions ---

// persistEliminationPlan writes the round-1 rows of a generated elimination
// bracket and immediately advances byes, cascading as far as they reach.
func (p *progression) persistEliminationPlan(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, cfg *models.FormatSettings, plan *brackets.EliminationPlan, actor string) error {
	now := p.clock.Now().UTC()

	for _, pos := range plan.Positions {
		if err := p.createPosition(ctx, exec, t, models.BracketWinners, pos.PlayerID, pos.Position, actor); err != nil {
			return err
		}
	}

	var byes []*models.Match
	for i, pm := range plan.Matches {
		bracket := pm.BracketType
		if t.Format == models.FormatDoubleElimination {
			// Double elimination keeps every winners-progression round in the
			// winners bracket; "final" is reserved for the grand final.
			bracket = models.BracketWinners
		}

		m := &models.Match{
			ID:           uuid.New(),
			TournamentID: t.ID,
			Round:        pm.Round,
			BracketType:  bracket,
			Slot:         pm.Slot,
			Player1ID:    pm.Player1,
			Player2ID:    pm.Player2,
			Status:       models.MatchPending,
			Audit:        models.NewAudit(actor, now),
		}
		if pm.Bye {
			m.Status = models.MatchCompleted
			m.WinnerID = pm.Winner()
		} else {
			if cfg.NumberOfConsoles > 0 {
				console := i%cfg.NumberOfConsoles + 1
				m.ConsoleAssigned = &console
			}
			start := t.StartDate
			m.ScheduledTime = &start
		}

		if err := p.matchRepo.Create(ctx, exec, m); err != nil {
			return err
		}
		if pm.Bye {
			byes = append(byes, m)
		}
	}

	for _, m := range byes {
		if err := p.advance(ctx, exec, t, cfg, m, actor); err != nil {
			return err
		}
	}
	return nil
}

func (p *progression) findOrCreateMatch(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, cfg *models.FormatSettings, bracket models.BracketType, round, slot int, actor string) (*models.Match, error) {
	m, err := p.matchRepo.FindBySlot(ctx, exec, t.ID, bracket, round, slot)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, repositories.ErrMatchNotFound) {
		return nil, err
	}

	m = &models.Match{
		ID:           uuid.New(),
		TournamentID: t.ID,
		Round:        round,
		BracketType:  bracket,
		Slot:         slot,
		Status:       models.MatchPending,
		Audit:        models.NewAudit(actor, p.clock.Now().UTC()),
	}
	if cfg.NumberOfConsoles > 0 {
		console := slot%cfg.NumberOfConsoles + 1
		m.ConsoleAssigned = &console
	}
	if err := p.matchRepo.Create(ctx, exec, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *progression) placePlayer(ctx context.Context, exec repositories.SQLExecutor, m *models.Match, playerSlot int, playerID uuid.UUID, actor string) error {
	if err := p.matchRepo.SetPlayer(ctx, exec, m.ID, playerSlot, playerID, actor); err != nil {
		return err
	}
	id := playerID
	if playerSlot == 1 {
		m.Player1ID = &id
	} else {
		m.Player2ID = &id
	}
	return nil
}

func (p *progression) createPosition(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, bracket models.BracketType, playerID uuid.UUID, position int, actor string) error {
	return p.positionRepo.Create(ctx, exec, &models.BracketPosition{
		ID:           uuid.New(),
		TournamentID: t.ID,
		PlayerID:     playerID,
		BracketType:  bracket,
		Position:     position,
		Audit:        models.NewAudit(actor, p.clock.Now().UTC()),
	})
}

// markDropped closes a player's winners-bracket run without eliminating them;
// double elimination keeps them alive on the losers side.
func (p *progression) markDropped(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, bracket models.BracketType, playerID uuid.UUID, round int, actor string) error {
	pos, err := p.positionRepo.Get(ctx, exec, t.ID, playerID, bracket)
	if err != nil {
		return err
	}
	return p.positionRepo.SetRoundEliminated(ctx, exec, pos.ID, round, actor)
}

// eliminate records a terminal loss: bracket exit round plus player status.
func (p *progression) eliminate(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, bracket models.BracketType, playerID uuid.UUID, round int, actor string) error {
	if err := p.markDropped(ctx, exec, t, bracket, playerID, round, actor); err != nil {
		return err
	}
	return p.playerRepo.UpdateStatus(ctx, exec, playerID, models.PlayerEliminated, actor)
}

func (p *progression) completeTournament(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, winnerID uuid.UUID, actor string) error {
	if err := p.playerRepo.UpdateStatus(ctx, exec, winnerID, models.PlayerWinner, actor); err != nil {
		return err
	}
	if err := p.tournamentRepo.UpdateStatus(ctx, exec, t.ID, models.StatusCompleted, actor); err != nil {
		return err
	}
	t.Status = models.StatusCompleted

	p.logger.Info("tournament completed",
		slog.String("tournament_id", t.ID.String()),
		slog.String("winner_id", winnerID.String()),
	)
	return nil
}
