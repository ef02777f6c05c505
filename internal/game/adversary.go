package game

import "github.com/mrsobakin/seabattle/internal/game/field"

// Adversary chooses attacks for the computer-controlled side.
type Adversary interface {
	// Picks the next coordinate to attack on the target grid.
	//
	// Returns false only if there is no unknown cell left.
	Next(target field.View) (field.Coord, bool)

	// Reports the outcome of an attack picked by Next.
	Record(target field.View, c field.Coord, result field.AttackResult)

	// Forgets everything learned during the current match.
	Reset()
}

// Pacer defers fn without blocking the caller, e.g. to let a human observer
// follow the adversary's moves.
type Pacer interface {
	Defer(fn func())
}

type PacerFunc func(fn func())

func (f PacerFunc) Defer(fn func()) {
	f(fn)
}
