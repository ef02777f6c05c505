package match

import (
	"github.com/mrsobakin/seabattle/internal/game"
	"github.com/mrsobakin/seabattle/internal/game/field"
)

// State is a snapshot of the turn state machine.
type State struct {
	Mode   game.Mode  `json:"mode"`
	Turn   game.Side  `json:"turn"`
	Phase  game.Phase `json:"phase"`
	Winner *game.Side `json:"winner,omitempty"`

	// Indexed by attacking side.
	Shots [2]int `json:"shots"`
	Hits  [2]int `json:"hits"`

	// The adversary owes exactly one decision.
	AdversaryPending bool `json:"adversary_pending"`
}

// Observer receives match notifications, e.g. for rendering. Grid
// notifications carry the side owning the grid.
type Observer interface {
	CellChanged(owner game.Side, pos field.Coord, state field.CellState)
	ShipSunk(owner game.Side, ship *field.Ship)
	TurnChanged(active game.Side)
	Concluded(winner game.Side)
}

type gridObserver struct {
	owner    game.Side
	observer Observer
}

func (o gridObserver) CellChanged(pos field.Coord, state field.CellState) {
	o.observer.CellChanged(o.owner, pos, state)
}

func (o gridObserver) ShipSunk(ship *field.Ship) {
	o.observer.ShipSunk(o.owner, ship)
}
