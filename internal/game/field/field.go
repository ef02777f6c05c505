package field

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
)

var (
	// Setup-time precondition violations: unknown ship spec, empty fleet,
	// malformed grid size.
	ErrConfiguration = errors.New("configuration error")

	// Placement violates bounds, overlap or the no-touch rule.
	ErrIllegalPlacement = errors.New("illegal placement")
)

type AttackResult int

const (
	Miss AttackResult = iota
	Hit

	// Out of bounds or already attacked. Nothing was changed.
	Invalid
)

func (r *AttackResult) FromString(str string) error {
	switch str {
	case "miss":
		*r = Miss
	case "hit":
		*r = Hit
	case "invalid":
		*r = Invalid
	default:
		return fmt.Errorf("invalid attack result")
	}
	return nil
}

func (r AttackResult) String() string {
	switch r {
	case Miss:
		return "miss"
	case Hit:
		return "hit"
	case Invalid:
		return "invalid"
	default:
		panic("invalid attack result")
	}
}

func (r AttackResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o *Orientation) FromString(str string) error {
	switch str {
	case "h", "horizontal":
		*o = Horizontal
	case "v", "vertical":
		*o = Vertical
	default:
		return fmt.Errorf("invalid orientation %q", str)
	}
	return nil
}

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	} else {
		return "horizontal"
	}
}

func (o Orientation) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *Orientation) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	return o.FromString(str)
}

// Placement is the persisted form of a placed ship.
type Placement struct {
	SpecID      int         `json:"spec_id"`
	Origin      Coord       `json:"origin"`
	Orientation Orientation `json:"orientation"`
}

// Parses placements in `<spec-id> <h|v> <x> <y>` line format.
//
// Iteration stops silently at the first malformed line, the same way a
// truncated file would end the sequence.
func ParsePlacements(src io.Reader) iter.Seq[Placement] {
	return func(yield func(p Placement) bool) {
		lines := bufio.NewScanner(src)

		for lines.Scan() {
			if len(lines.Bytes()) == 0 {
				continue
			}

			var p Placement
			var direction rune

			n, err := fmt.Sscanf(lines.Text(), "%d %c %d %d", &p.SpecID, &direction, &p.Origin.X, &p.Origin.Y)

			if err != nil || n != 4 {
				return
			}

			switch direction {
			case 'v':
				p.Orientation = Vertical
			case 'h':
				p.Orientation = Horizontal
			default:
				return
			}

			if !yield(p) {
				return
			}
		}
	}
}

func WritePlacements(dst io.Writer, placements []Placement) error {
	w := bufio.NewWriter(dst)

	for _, p := range placements {
		direction := 'h'
		if p.Orientation == Vertical {
			direction = 'v'
		}

		if _, err := fmt.Fprintf(w, "%d %c %d %d\n", p.SpecID, direction, p.Origin.X, p.Origin.Y); err != nil {
			return err
		}
	}

	return w.Flush()
}
