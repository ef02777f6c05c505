package field

import "fmt"

type Coord struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

func (c Coord) Add(o Coord) Coord {
	return Coord{c.X + o.X, c.Y + o.Y}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

var (
	// 8-directional neighbourhood, used by placement and sunk marking.
	around = [...]Coord{
		{-1, -1}, {0, -1}, {1, -1},
		{-1, 0}, {1, 0},
		{-1, 1}, {0, 1}, {1, 1},
	}

	orthogonal = [...]Coord{
		{0, 1}, {0, -1}, {-1, 0}, {1, 0},
	}
)

// Around returns the 8 cells surrounding c, including diagonals.
// Results may lie outside any grid.
func Around(c Coord) []Coord {
	out := make([]Coord, 0, len(around))
	for _, d := range around {
		out = append(out, c.Add(d))
	}
	return out
}

// Orthogonal returns the 4 cells sharing an edge with c.
func Orthogonal(c Coord) []Coord {
	out := make([]Coord, 0, len(orthogonal))
	for _, d := range orthogonal {
		out = append(out, c.Add(d))
	}
	return out
}

type CellState int

const (
	CellUnknown CellState = iota
	CellEmpty
	CellHit
)

func (s *CellState) FromString(str string) error {
	switch str {
	case "unknown":
		*s = CellUnknown
	case "empty":
		*s = CellEmpty
	case "hit":
		*s = CellHit
	default:
		return fmt.Errorf("invalid cell state %q", str)
	}
	return nil
}

func (s CellState) String() string {
	switch s {
	case CellUnknown:
		return "unknown"
	case CellEmpty:
		return "empty"
	case CellHit:
		return "hit"
	default:
		panic("invalid cell state")
	}
}

func (s CellState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Cell is a snapshot of a single grid square.
type Cell struct {
	Pos   Coord
	State CellState

	// 1-based index into the owning grid's ship list, 0 when free.
	occupant int
}

func (c Cell) Occupied() bool {
	return c.occupant != 0
}
