package lobby

import (
	"encoding/json"
	"fmt"

	"github.com/mrsobakin/seabattle/internal/game"
	"github.com/mrsobakin/seabattle/internal/game/field"
)

type EventKind int

const (
	EventCell EventKind = iota
	EventSunk
	EventTurn
	EventConcluded
)

func (k EventKind) String() string {
	switch k {
	case EventCell:
		return "cell"
	case EventSunk:
		return "sunk"
	case EventTurn:
		return "turn"
	case EventConcluded:
		return "concluded"
	default:
		panic("invalid event kind")
	}
}

func (k EventKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Event is a match notification as sent to subscribers.
//
// Side is the grid owner for cell and sunk events, the side to move for
// turn events and the winner for concluded events.
type Event struct {
	Kind   EventKind        `json:"kind"`
	Side   game.Side        `json:"side"`
	Pos    *field.Coord     `json:"pos,omitempty"`
	State  *field.CellState `json:"state,omitempty"`
	Ship   string           `json:"ship,omitempty"`
	SpecID *int             `json:"spec_id,omitempty"`
	Cells  []field.Coord    `json:"cells,omitempty"`
}

func (e Event) String() string {
	switch e.Kind {
	case EventCell:
		return fmt.Sprintf("%s %s %v=%s", e.Kind, e.Side, *e.Pos, *e.State)
	case EventSunk:
		return fmt.Sprintf("%s %s %s(%d)", e.Kind, e.Side, e.Ship, *e.SpecID)
	default:
		return fmt.Sprintf("%s %s", e.Kind, e.Side)
	}
}

// Difficulty selects the adversary strategy in single opponent matches.
type Difficulty int

const (
	Normal Difficulty = iota
	Easy
)

func (d Difficulty) String() string {
	if d == Easy {
		return "easy"
	} else {
		return "normal"
	}
}

func (d *Difficulty) FromString(str string) error {
	switch str {
	case "", "normal":
		*d = Normal
	case "easy":
		*d = Easy
	default:
		return fmt.Errorf("invalid difficulty %q", str)
	}
	return nil
}
