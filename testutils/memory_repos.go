package testutils

import (
	"context"
	"errors"
	"time"

	"github.com/bracketforge/tournament-engine/models"
	"github.com/bracketforge/tournament-engine/repositories"
	"github.com/google/uuid"
)

func (s *Store) Tournaments() repositories.TournamentRepository { return memTournamentRepo{s} }
func (s *Store) Settings() repositories.SettingsRepository      { return memSettingsRepo{s} }
func (s *Store) Players() repositories.PlayerRepository         { return memPlayerRepo{s} }
func (s *Store) Groups() repositories.GroupRepository           { return memGroupRepo{s} }
func (s *Store) Matches() repositories.MatchRepository          { return memMatchRepo{s} }
func (s *Store) Standings() repositories.StandingRepository     { return memStandingRepo{s} }
func (s *Store) Positions() repositories.BracketPositionRepository {
	return memPositionRepo{s}
}
func (s *Store) AuditLog() repositories.AuditLogRepository { return memAuditRepo{s} }

// --- tournaments ---

type memTournamentRepo struct{ s *Store }

func (r memTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.tournaments {
		if existing.Name == t.Name {
			return repositories.ErrTournamentNameConflict
		}
	}
	r.s.tournaments[t.ID] = cloneTournament(t)
	return nil
}

func (r memTournamentRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return cloneTournament(t), nil
}

func (r memTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID, status models.TournamentStatus, modifiedBy string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	t.ModifiedBy = modifiedBy
	return nil
}

func (r memTournamentRepo) MarkCancelled(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID, at time.Time, by string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = models.StatusCancelled
	t.CancelledAt = &at
	t.CancelledBy = &by
	t.ModifiedAt = at
	t.ModifiedBy = by
	return nil
}

func (r memTournamentRepo) IncrementPlayerCount(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok || t.CurrentPlayerCount >= t.MaxPlayers {
		return repositories.ErrTournamentNotFound
	}
	t.CurrentPlayerCount++
	return nil
}

// --- settings ---

type memSettingsRepo struct{ s *Store }

func (r memSettingsRepo) Create(ctx context.Context, exec repositories.SQLExecutor, format models.FormatType, cfg *models.FormatSettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.settings[cfg.TournamentID] = cloneSettings(cfg)
	return nil
}

func (r memSettingsRepo) GetByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID, format models.FormatType) (*models.FormatSettings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cfg, ok := r.s.settings[tournamentID]
	if !ok {
		return nil, repositories.ErrSettingsNotFound
	}
	return cloneSettings(cfg), nil
}

// --- players ---

type memPlayerRepo struct{ s *Store }

func (r memPlayerRepo) Create(ctx context.Context, exec repositories.SQLExecutor, p *models.Player) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.players {
		if existing.TournamentID == p.TournamentID && existing.GamerTag == p.GamerTag {
			return repositories.ErrPlayerGamerTagConflict
		}
	}
	r.s.players[p.ID] = clonePlayer(p)
	r.s.playerSeq[p.ID] = r.s.next()
	return nil
}

func (r memPlayerRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) (*models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return clonePlayer(p), nil
}

func (r memPlayerRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID) ([]*models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	players := make([]*models.Player, 0)
	for _, p := range r.s.players {
		if p.TournamentID == tournamentID {
			players = append(players, clonePlayer(p))
		}
	}
	seq := r.s.playerSeq
	sortBySeq(players, func(p *models.Player) int { return seq[p.ID] })
	return players, nil
}

func (r memPlayerRepo) UpdateSeed(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID, seed int, modifiedBy string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.SeedNumber = &seed
	p.ModifiedBy = modifiedBy
	return nil
}

func (r memPlayerRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID, status models.PlayerStatus, modifiedBy string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.Status = status
	p.ModifiedBy = modifiedBy
	return nil
}

// --- groups ---

type memGroupRepo struct{ s *Store }

func (r memGroupRepo) Create(ctx context.Context, exec repositories.SQLExecutor, g *models.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.groups[g.ID] = cloneGroup(g)
	return nil
}

func (r memGroupRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) (*models.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.groups[id]
	if !ok {
		return nil, repositories.ErrGroupNotFound
	}
	return cloneGroup(g), nil
}

func (r memGroupRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID) ([]*models.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	groups := make([]*models.Group, 0)
	for _, g := range r.s.groups {
		if g.TournamentID == tournamentID {
			groups = append(groups, cloneGroup(g))
		}
	}
	sortBySeq(groups, func(g *models.Group) int { return g.GroupNumber })
	return groups, nil
}

func (r memGroupRepo) AddMember(ctx context.Context, exec repositories.SQLExecutor, m *models.GroupMembership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *m
	r.s.memberships = append(r.s.memberships, &c)
	return nil
}

func (r memGroupRepo) ListMembers(ctx context.Context, exec repositories.SQLExecutor, groupID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	members := make([]uuid.UUID, 0)
	for _, m := range r.s.memberships {
		if m.GroupID == groupID {
			members = append(members, m.PlayerID)
		}
	}
	return members, nil
}

// --- matches ---

type memMatchRepo struct{ s *Store }

func (r memMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.matches[m.ID] = cloneMatch(m)
	r.s.matchSeq[m.ID] = r.s.next()
	return nil
}

func (r memMatchRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) (*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return cloneMatch(m), nil
}

func (r memMatchRepo) FindBySlot(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID, bracket models.BracketType, round, slot int) (*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.matches {
		if m.TournamentID == tournamentID && m.BracketType == bracket && m.Round == round && m.Slot == slot {
			return cloneMatch(m), nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r memMatchRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID) ([]*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	matches := make([]*models.Match, 0)
	for _, m := range r.s.matches {
		if m.TournamentID == tournamentID {
			matches = append(matches, cloneMatch(m))
		}
	}
	sortMatches(matches)
	return matches, nil
}

func (r memMatchRepo) ListByGroup(ctx context.Context, exec repositories.SQLExecutor, groupID uuid.UUID) ([]*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	matches := make([]*models.Match, 0)
	for _, m := range r.s.matches {
		if m.GroupID != nil && *m.GroupID == groupID {
			matches = append(matches, cloneMatch(m))
		}
	}
	sortMatches(matches)
	return matches, nil
}

func (r memMatchRepo) SetPlayer(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID, playerSlot int, playerID uuid.UUID, modifiedBy string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	pid := playerID
	if playerSlot == 2 {
		m.Player2ID = &pid
	} else {
		m.Player1ID = &pid
	}
	m.ModifiedBy = modifiedBy
	return nil
}

func (r memMatchRepo) Complete(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.matches[m.ID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	stored.Player1Score = intPtr(m.Player1Score)
	stored.Player2Score = intPtr(m.Player2Score)
	stored.WinnerID = uuidPtr(m.WinnerID)
	stored.Status = m.Status
	stored.ModifiedBy = m.ModifiedBy
	return nil
}

func (r memMatchRepo) CancelPendingByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID, modifiedBy string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, m := range r.s.matches {
		if m.TournamentID == tournamentID &&
			(m.Status == models.MatchPending || m.Status == models.MatchPlaying) {
			m.Status = models.MatchCancelled
			m.ModifiedBy = modifiedBy
			count++
		}
	}
	return count, nil
}

func (r memMatchRepo) CountPendingByGroup(ctx context.Context, exec repositories.SQLExecutor, groupID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, m := range r.s.matches {
		if m.GroupID != nil && *m.GroupID == groupID &&
			(m.Status == models.MatchPending || m.Status == models.MatchPlaying) {
			count++
		}
	}
	return count, nil
}

func (r memMatchRepo) CountPendingGroupMatches(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, m := range r.s.matches {
		if m.TournamentID == tournamentID && m.BracketType == models.BracketGroup &&
			(m.Status == models.MatchPending || m.Status == models.MatchPlaying) {
			count++
		}
	}
	return count, nil
}

// --- standings ---

type memStandingRepo struct{ s *Store }

func (r memStandingRepo) Create(ctx context.Context, exec repositories.SQLExecutor, st *models.GroupStanding) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.standings[st.ID] = cloneStanding(st)
	return nil
}

func (r memStandingRepo) GetByGroupAndPlayer(ctx context.Context, exec repositories.SQLExecutor, groupID, playerID uuid.UUID) (*models.GroupStanding, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, st := range r.s.standings {
		if st.GroupID == groupID && st.PlayerID == playerID {
			return cloneStanding(st), nil
		}
	}
	return nil, repositories.ErrStandingNotFound
}

func (r memStandingRepo) ListByGroup(ctx context.Context, exec repositories.SQLExecutor, groupID uuid.UUID) ([]*models.GroupStanding, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	standings := make([]*models.GroupStanding, 0)
	for _, st := range r.s.standings {
		if st.GroupID == groupID {
			standings = append(standings, cloneStanding(st))
		}
	}
	sortStandings(standings)
	return standings, nil
}

func (r memStandingRepo) UpdateCounters(ctx context.Context, exec repositories.SQLExecutor, st *models.GroupStanding) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.standings[st.ID]
	if !ok {
		return repositories.ErrStandingNotFound
	}
	stored.MatchesPlayed = st.MatchesPlayed
	stored.Wins = st.Wins
	stored.Draws = st.Draws
	stored.Losses = st.Losses
	stored.Points = st.Points
	stored.ScoreFor = st.ScoreFor
	stored.ScoreAgainst = st.ScoreAgainst
	stored.ScoreDifference = st.ScoreDifference
	stored.ModifiedBy = st.ModifiedBy
	return nil
}

func (r memStandingRepo) UpdateRanking(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID, position int, qualified bool, modifiedBy string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.standings[id]
	if !ok {
		return repositories.ErrStandingNotFound
	}
	stored.Position = &position
	stored.Qualified = qualified
	stored.ModifiedBy = modifiedBy
	return nil
}

// --- bracket positions ---

type memPositionRepo struct{ s *Store }

func (r memPositionRepo) Create(ctx context.Context, exec repositories.SQLExecutor, p *models.BracketPosition) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.positions[p.ID] = clonePosition(p)
	return nil
}

func (r memPositionRepo) Get(ctx context.Context, exec repositories.SQLExecutor, tournamentID, playerID uuid.UUID, bracket models.BracketType) (*models.BracketPosition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.positions {
		if p.TournamentID == tournamentID && p.PlayerID == playerID && p.BracketType == bracket {
			return clonePosition(p), nil
		}
	}
	return nil, repositories.ErrBracketPositionNotFound
}

func (r memPositionRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID, bracket models.BracketType) ([]*models.BracketPosition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	positions := make([]*models.BracketPosition, 0)
	for _, p := range r.s.positions {
		if p.TournamentID == tournamentID && p.BracketType == bracket {
			positions = append(positions, clonePosition(p))
		}
	}
	sortBySeq(positions, func(p *models.BracketPosition) int { return p.Position })
	return positions, nil
}

func (r memPositionRepo) SetRoundEliminated(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID, round int, modifiedBy string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.positions[id]
	if !ok {
		return repositories.ErrBracketPositionNotFound
	}
	p.RoundEliminated = &round
	p.ModifiedBy = modifiedBy
	return nil
}

// --- audit log ---

type memAuditRepo struct{ s *Store }

func (r memAuditRepo) Insert(ctx context.Context, entry *models.AuditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailAudit {
		return errors.New("audit store unavailable")
	}
	c := *entry
	r.s.audits = append(r.s.audits, &c)
	return nil
}
