package field

import (
	"fmt"
	"math/rand"
)

// Places one ship per spec at random legal positions, trying each ship at
// most maxAttempts times. On failure the grid is left empty.
func PlaceFleet(g *Grid, specs []ShipSpec, rng *rand.Rand, maxAttempts int) error {
	if len(specs) == 0 {
		return fmt.Errorf("%w: empty fleet", ErrConfiguration)
	}

	for _, spec := range specs {
		placed := false

		for attempt := 0; attempt < maxAttempts && !placed; attempt++ {
			orientation := Horizontal
			if rng.Intn(2) == 0 {
				orientation = Vertical
			}

			ship := NewShip(spec, orientation)
			origin := Coord{rng.Int63n(g.Width()), rng.Int63n(g.Height())}

			placed = g.Place(ship, origin)
		}

		if !placed {
			g.Reset()
			return fmt.Errorf("%w: could not place %s after %d attempts", ErrIllegalPlacement, spec.Name, maxAttempts)
		}
	}

	return nil
}
