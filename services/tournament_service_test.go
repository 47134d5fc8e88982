package services

import (
	"context"
	"testing"
	"time"

	"github.com/bracketforge/tournament-engine/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTournamentValidation(t *testing.T) {
	e := newEnv(t)
	now := e.clock.Now()
	valid := CreateTournamentInput{
		Name:                 "Spring Cup",
		Format:               models.FormatSingleElimination,
		MaxPlayers:           8,
		RegistrationDeadline: now.Add(time.Hour),
		StartDate:            now.Add(2 * time.Hour),
	}

	cases := []struct {
		name   string
		mutate func(*CreateTournamentInput)
		want   error
	}{
		{"blank name", func(in *CreateTournamentInput) { in.Name = "   " }, ErrTournamentNameRequired},
		{"unknown format", func(in *CreateTournamentInput) { in.Format = "swiss" }, ErrUnknownFormat},
		{"capacity below two", func(in *CreateTournamentInput) { in.MaxPlayers = 1 }, ErrCapacityTooSmall},
		{"deadline after start", func(in *CreateTournamentInput) {
			in.RegistrationDeadline = now.Add(3 * time.Hour)
		}, ErrInvalidDeadline},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, err := e.tournaments.CreateTournament(context.Background(), in, "organizer")
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	tour, err := e.tournaments.CreateTournament(context.Background(), valid, "organizer")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRegistration, tour.Status)
	require.NotNil(t, tour.Settings)
	assert.True(t, tour.Settings.SingleElimination.AllowByes)
}

func TestCreateTournamentGroupSettingsValidation(t *testing.T) {
	e := newEnv(t)

	bad := models.DefaultSettings(models.FormatGroupKnockout)
	bad.GroupKnockout.QualifiersPerGroup = 5

	now := e.clock.Now()
	_, err := e.tournaments.CreateTournament(context.Background(), CreateTournamentInput{
		Name:                 "League",
		Format:               models.FormatGroupKnockout,
		MaxPlayers:           16,
		RegistrationDeadline: now.Add(time.Hour),
		StartDate:            now.Add(2 * time.Hour),
		Settings:             bad,
	}, "organizer")
	assert.ErrorIs(t, err, ErrInvalidGroupSettings)
}

func TestCreateTournamentDuplicateName(t *testing.T) {
	e := newEnv(t)
	e.createTournament(t, "Spring Cup", models.FormatSingleElimination, 8, nil)

	now := e.clock.Now()
	_, err := e.tournaments.CreateTournament(context.Background(), CreateTournamentInput{
		Name:                 "Spring Cup",
		Format:               models.FormatSingleElimination,
		MaxPlayers:           4,
		RegistrationDeadline: now.Add(time.Hour),
		StartDate:            now.Add(2 * time.Hour),
	}, "organizer")
	assert.ErrorIs(t, err, ErrTournamentTaken)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegisterPlayer(t *testing.T) {
	e := newEnv(t)
	tour := e.createTournament(t, "Spring Cup", models.FormatSingleElimination, 2, nil)

	p, err := e.tournaments.RegisterPlayer(context.Background(), tour.ID, RegisterPlayerInput{
		Name:     "Alice",
		GamerTag: "alice99",
	}, "organizer")
	require.NoError(t, err)
	assert.Equal(t, models.PlayerRegistered, p.Status)
	assert.Equal(t, 1, e.tournament(t, tour.ID).CurrentPlayerCount)

	// Same gamer tag is rejected.
	_, err = e.tournaments.RegisterPlayer(context.Background(), tour.ID, RegisterPlayerInput{
		Name:     "Impostor",
		GamerTag: "alice99",
	}, "organizer")
	assert.ErrorIs(t, err, ErrGamerTagTaken)

	_, err = e.tournaments.RegisterPlayer(context.Background(), tour.ID, RegisterPlayerInput{
		Name:     "Bob",
		GamerTag: "bob01",
	}, "organizer")
	require.NoError(t, err)

	// Capacity reached.
	_, err = e.tournaments.RegisterPlayer(context.Background(), tour.ID, RegisterPlayerInput{
		Name:     "Carol",
		GamerTag: "carol",
	}, "organizer")
	assert.ErrorIs(t, err, ErrTournamentFull)
}

func TestRegisterPlayerValidation(t *testing.T) {
	e := newEnv(t)
	tour := e.createTournament(t, "Spring Cup", models.FormatSingleElimination, 8, nil)

	_, err := e.tournaments.RegisterPlayer(context.Background(), tour.ID, RegisterPlayerInput{GamerTag: "x"}, "organizer")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.tournaments.RegisterPlayer(context.Background(), tour.ID, RegisterPlayerInput{Name: "Alice", GamerTag: "  "}, "organizer")
	assert.ErrorIs(t, err, ErrGamerTagRequired)

	_, err = e.tournaments.RegisterPlayer(context.Background(), uuid.New(), RegisterPlayerInput{Name: "Alice", GamerTag: "a"}, "organizer")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestRegisterPlayerAfterFixtures(t *testing.T) {
	e := newEnv(t)
	tour := e.createTournament(t, "Spring Cup", models.FormatSingleElimination, 8, nil)
	e.registerPlayers(t, tour.ID, 4)
	e.startTournament(t, tour.ID)

	_, err := e.tournaments.RegisterPlayer(context.Background(), tour.ID, RegisterPlayerInput{
		Name:     "Late",
		GamerTag: "late",
	}, "organizer")
	assert.ErrorIs(t, err, ErrRegistrationClosed)
}

func TestGenerateFixturesDeadlineGate(t *testing.T) {
	e := newEnv(t)
	tour := e.createTournament(t, "Spring Cup", models.FormatSingleElimination, 8, nil)
	e.registerPlayers(t, tour.ID, 4)

	// The deadline is an hour out; without override generation is refused.
	_, err := e.tournaments.GenerateFixtures(context.Background(), tour.ID, false, "organizer")
	assert.ErrorIs(t, err, ErrDeadlineNotReached)

	// Override starts early.
	result, err := e.tournaments.GenerateFixtures(context.Background(), tour.ID, true, "organizer")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, result.Status)
	assert.Len(t, result.Matches, 2)
}

func TestGenerateFixturesRequiresTwoPlayers(t *testing.T) {
	e := newEnv(t)
	tour := e.createTournament(t, "Spring Cup", models.FormatSingleElimination, 8, nil)
	e.registerPlayers(t, tour.ID, 1)
	e.clock.Add(2 * time.Hour)

	_, err := e.tournaments.GenerateFixtures(context.Background(), tour.ID, false, "organizer")
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
}

func TestGenerateFixturesRejectsByesWhenDisallowed(t *testing.T) {
	e := newEnv(t)
	cfg := models.DefaultSettings(models.FormatSingleElimination)
	cfg.SingleElimination.AllowByes = false
	tour := e.createTournament(t, "Strict Cup", models.FormatSingleElimination, 8, cfg)
	e.registerPlayers(t, tour.ID, 5)
	e.clock.Add(2 * time.Hour)

	_, err := e.tournaments.GenerateFixtures(context.Background(), tour.ID, false, "organizer")
	assert.ErrorIs(t, err, ErrByesNotAllowed)
}

func TestGenerateFixturesReplay(t *testing.T) {
	e := newEnv(t)
	tour := e.createTournament(t, "Spring Cup", models.FormatSingleElimination, 8, nil)
	e.registerPlayers(t, tour.ID, 4)
	first := e.startTournament(t, tour.ID)

	// A second call is a no-op returning the existing bracket.
	second, err := e.tournaments.GenerateFixtures(context.Background(), tour.ID, false, "organizer")
	require.NoError(t, err)
	assert.Len(t, second.Matches, len(first.Matches))
	assert.Equal(t, first.Matches[0].ID, second.Matches[0].ID)

	assert.Equal(t, 1, countAction(e.auditActions(), "fixtures.generated"))
}

func TestCancelTournament(t *testing.T) {
	e := newEnv(t)
	tour := e.createTournament(t, "Spring Cup", models.FormatSingleElimination, 8, nil)
	e.registerPlayers(t, tour.ID, 4)
	e.startTournament(t, tour.ID)

	err := e.tournaments.CancelTournament(context.Background(), tour.ID, "organizer")
	require.NoError(t, err)

	cancelled := e.tournament(t, tour.ID)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, "organizer", *cancelled.CancelledBy)

	full, err := e.tournaments.GetTournament(context.Background(), tour.ID)
	require.NoError(t, err)
	for _, m := range full.Matches {
		assert.Equal(t, models.MatchCancelled, m.Status)
	}

	// Cancelling twice is refused, as is cancelling a completed tournament.
	err = e.tournaments.CancelTournament(context.Background(), tour.ID, "organizer")
	assert.ErrorIs(t, err, ErrTournamentCancelled)

	// Results on cancelled matches are refused.
	_, err = e.matches.SubmitResult(context.Background(), full.Matches[0].ID, MatchResultInput{Player1Score: 1}, "referee")
	assert.ErrorIs(t, err, ErrTournamentCancelled)
}

func TestGetTournamentAggregate(t *testing.T) {
	e := newEnv(t)
	tour := e.createTournament(t, "Spring Cup", models.FormatSingleElimination, 8, nil)
	players := e.registerPlayers(t, tour.ID, 4)
	e.startTournament(t, tour.ID)

	full, err := e.tournaments.GetTournament(context.Background(), tour.ID)
	require.NoError(t, err)
	require.NotNil(t, full.Settings)
	assert.Len(t, full.Players, len(players))
	assert.Empty(t, full.Groups)
	assert.Len(t, full.Matches, 2)

	_, err = e.tournaments.GetTournament(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestAuditTrailDegradesWithoutFailing(t *testing.T) {
	e := newEnv(t)
	e.store.FailAudit = true

	now := e.clock.Now()
	tour, err := e.tournaments.CreateTournament(context.Background(), CreateTournamentInput{
		Name:                 "Spring Cup",
		Format:               models.FormatSingleElimination,
		MaxPlayers:           8,
		RegistrationDeadline: now.Add(time.Hour),
		StartDate:            now.Add(2 * time.Hour),
	}, "organizer")

	// The tournament exists even though the audit write failed.
	assert.ErrorIs(t, err, ErrAuditDegraded)
	require.NotNil(t, tour)
	assert.Equal(t, models.StatusRegistration, e.tournament(t, tour.ID).Status)
}
