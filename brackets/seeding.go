package brackets

import (
	"math/rand"
	"sort"

	"github.com/bracketforge/tournament-engine/models"
)

// SeedPlayers orders players ahead of fixture generation and assigns dense
// seed numbers (seed = position, 1-based).
//
// Seeding disabled: registration order is kept as-is. Enabled without
// shuffle: existing seed numbers ascending, unseeded players after seeded
// ones in registration order. Shuffle: a random order drawn from rng, so
// callers control determinism.
func SeedPlayers(players []*models.Player, seedingEnabled, shuffle bool, rng *rand.Rand) []*models.Player {
	ordered := make([]*models.Player, len(players))
	copy(ordered, players)

	if seedingEnabled {
		if shuffle {
			rng.Shuffle(len(ordered), func(i, j int) {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			})
		} else {
			sort.SliceStable(ordered, func(i, j int) bool {
				si, sj := ordered[i].SeedNumber, ordered[j].SeedNumber
				switch {
				case si != nil && sj != nil:
					return *si < *sj
				case si != nil:
					return true
				default:
					return false
				}
			})
		}
	}

	for i, p := range ordered {
		seed := i + 1
		p.SeedNumber = &seed
	}
	return ordered
}
