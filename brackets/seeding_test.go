package brackets

import (
	"math/rand"
	"testing"

	"github.com/bracketforge/tournament-engine/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registeredPlayers(n int) []*models.Player {
	players := make([]*models.Player, n)
	for i := range players {
		players[i] = &models.Player{ID: uuid.New(), GamerTag: string(rune('a' + i))}
	}
	return players
}

func TestSeedPlayersDisabledKeepsRegistrationOrder(t *testing.T) {
	players := registeredPlayers(4)
	ordered := SeedPlayers(players, false, false, nil)

	for i, p := range ordered {
		assert.Equal(t, players[i].ID, p.ID)
		require.NotNil(t, p.SeedNumber)
		assert.Equal(t, i+1, *p.SeedNumber)
	}
}

func TestSeedPlayersHonorsExistingSeeds(t *testing.T) {
	players := registeredPlayers(4)
	three, one := 3, 1
	players[0].SeedNumber = &three
	players[2].SeedNumber = &one

	ordered := SeedPlayers(players, true, false, nil)

	// Seeded players first by seed, unseeded after in registration order.
	assert.Equal(t, players[2].ID, ordered[0].ID)
	assert.Equal(t, players[0].ID, ordered[1].ID)
	assert.Equal(t, players[1].ID, ordered[2].ID)
	assert.Equal(t, players[3].ID, ordered[3].ID)

	// Seeds are reassigned densely.
	for i, p := range ordered {
		assert.Equal(t, i+1, *p.SeedNumber)
	}
}

func TestSeedPlayersShuffleFollowsRng(t *testing.T) {
	players := registeredPlayers(8)

	first := SeedPlayers(players, true, true, rand.New(rand.NewSource(7)))
	second := SeedPlayers(players, true, true, rand.New(rand.NewSource(7)))

	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}
