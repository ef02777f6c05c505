package field

import (
	"fmt"
	"iter"

	"github.com/dolthub/swiss"
)

// View is the read-only face of a grid handed to attackers. It never
// reveals ship positions.
type View interface {
	Width() int64
	Height() int64
	InBounds(Coord) bool
	State(Coord) CellState
}

// Observer receives grid state changes, e.g. for rendering.
type Observer interface {
	CellChanged(pos Coord, state CellState)
	ShipSunk(ship *Ship)
}

type Grid struct {
	w, h     int64
	cells    []Cell
	ships    []*Ship
	sunk     *swiss.Map[*Ship, struct{}] // ships whose surroundings are already marked
	attacked int
	observer Observer
}

var _ View = (*Grid)(nil)

func NewGrid(w, h int64) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: non-positive grid size: [%d %d]", ErrConfiguration, w, h)
	}

	g := &Grid{
		w:     w,
		h:     h,
		cells: make([]Cell, w*h),
		sunk:  swiss.NewMap[*Ship, struct{}](0),
	}

	for x := int64(0); x < w; x++ {
		for y := int64(0); y < h; y++ {
			g.cells[g.makePos(Coord{x, y})].Pos = Coord{x, y}
		}
	}

	return g, nil
}

func (g *Grid) makePos(c Coord) int64 {
	return c.X*g.h + c.Y
}

func (g *Grid) SetObserver(o Observer) {
	g.observer = o
}

func (g *Grid) Width() int64  { return g.w }
func (g *Grid) Height() int64 { return g.h }

func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.w && c.Y < g.h
}

func (g *Grid) Cell(c Coord) (Cell, bool) {
	if !g.InBounds(c) {
		return Cell{}, false
	}
	return g.cells[g.makePos(c)], true
}

// Out of bounds cells report CellUnknown.
func (g *Grid) State(c Coord) CellState {
	if !g.InBounds(c) {
		return CellUnknown
	}
	return g.cells[g.makePos(c)].State
}

func (g *Grid) Occupant(c Coord) *Ship {
	cell, ok := g.Cell(c)
	if !ok || !cell.Occupied() {
		return nil
	}
	return g.ships[cell.occupant-1]
}

func (g *Grid) Ships() []*Ship {
	out := make([]*Ship, len(g.ships))
	copy(out, g.ships)
	return out
}

func (g *Grid) Placements() []Placement {
	out := make([]Placement, 0, len(g.ships))
	for _, ship := range g.ships {
		out = append(out, ship.Placement())
	}
	return out
}

// States returns a copy of all cell states indexed as [y][x].
func (g *Grid) States() [][]CellState {
	rows := make([][]CellState, g.h)
	for y := int64(0); y < g.h; y++ {
		rows[y] = make([]CellState, g.w)
		for x := int64(0); x < g.w; x++ {
			rows[y][x] = g.cells[g.makePos(Coord{x, y})].State
		}
	}
	return rows
}

// Returns absolute coordinates the ship would occupy at origin, or false
// if the placement is out of bounds, overlaps or touches another ship, or
// covers an already attacked cell.
func (g *Grid) footprint(ship *Ship, origin Coord) ([]Coord, bool) {
	offsets := ship.OccupiedOffsets()

	positions := make([]Coord, 0, len(offsets))
	own := swiss.NewMap[Coord, struct{}](uint32(len(offsets)))

	for _, offset := range offsets {
		pos := origin.Add(offset)

		if !g.InBounds(pos) {
			return nil, false
		}

		if cell := g.cells[g.makePos(pos)]; cell.Occupied() || cell.State != CellUnknown {
			return nil, false
		}

		positions = append(positions, pos)
		own.Put(pos, struct{}{})
	}

	for _, pos := range positions {
		for _, neighbour := range Around(pos) {
			if own.Has(neighbour) || !g.InBounds(neighbour) {
				continue
			}

			if g.cells[g.makePos(neighbour)].Occupied() {
				return nil, false
			}
		}
	}

	return positions, true
}

func (g *Grid) CanPlace(ship *Ship, origin Coord) bool {
	if ship.Placed() {
		return false
	}

	_, ok := g.footprint(ship, origin)
	return ok
}

// Places ship at origin. Either the whole ship is placed, or nothing
// is changed and false is returned.
func (g *Grid) Place(ship *Ship, origin Coord) bool {
	if ship.Placed() {
		return false
	}

	positions, ok := g.footprint(ship, origin)
	if !ok {
		return false
	}

	g.ships = append(g.ships, ship)
	occupant := len(g.ships)

	for _, pos := range positions {
		g.cells[g.makePos(pos)].occupant = occupant
	}

	ship.origin = origin
	ship.placedAs = ship.Orientation
	ship.cells = positions
	ship.hits = 0
	ship.owner = g

	return true
}

// Lifts a ship off the grid so it can be moved or rotated. Only allowed
// before the first attack on this grid.
func (g *Grid) Remove(ship *Ship) bool {
	if ship.owner != g || g.attacked > 0 {
		return false
	}

	idx := -1
	for i, s := range g.ships {
		if s == ship {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	for _, pos := range ship.cells {
		g.cells[g.makePos(pos)].occupant = 0
	}

	g.ships = append(g.ships[:idx], g.ships[idx+1:]...)

	// Occupant indices of the ships after idx have shifted.
	for i := idx; i < len(g.ships); i++ {
		for _, pos := range g.ships[i].cells {
			g.cells[g.makePos(pos)].occupant = i + 1
		}
	}

	ship.detach()
	return true
}

// Resolves a single attack. Exactly one cell changes state on Hit or Miss,
// and on Hit the occupying ship registers one hit.
func (g *Grid) Attack(c Coord) AttackResult {
	if !g.InBounds(c) {
		return Invalid
	}

	cell := &g.cells[g.makePos(c)]
	if cell.State != CellUnknown {
		return Invalid
	}

	g.attacked++

	var result AttackResult
	if cell.Occupied() {
		cell.State = CellHit
		g.ships[cell.occupant-1].RegisterHit()
		result = Hit
	} else {
		cell.State = CellEmpty
		result = Miss
	}

	g.notifyCell(c, cell.State)
	return result
}

// Marks every unknown cell around newly sunk ships as empty and returns
// those ships. Ships that were already handled are skipped, so repeated
// calls are no-ops.
func (g *Grid) MarkSunk() []*Ship {
	var newlySunk []*Ship
	for _, ship := range g.ships {
		if ship.IsSunk() && !g.sunk.Has(ship) {
			newlySunk = append(newlySunk, ship)
		}
	}

	for _, ship := range newlySunk {
		g.sunk.Put(ship, struct{}{})

		for _, pos := range ship.cells {
			for _, neighbour := range Around(pos) {
				if !g.InBounds(neighbour) {
					continue
				}

				cell := &g.cells[g.makePos(neighbour)]
				if cell.State == CellUnknown {
					cell.State = CellEmpty
					g.notifyCell(neighbour, CellEmpty)
				}
			}
		}

		if g.observer != nil {
			g.observer.ShipSunk(ship)
		}
	}

	return newlySunk
}

// A grid without ships is never considered defeated.
func (g *Grid) AllSunk() bool {
	for _, ship := range g.ships {
		if !ship.IsSunk() {
			return false
		}
	}

	return len(g.ships) > 0
}

// Clears every cell and drops all ships.
func (g *Grid) Reset() {
	g.Clear()
}

// Clears every cell and the ship list, returning the detached ships so
// they can be placed again.
func (g *Grid) Clear() []*Ship {
	for i := range g.cells {
		g.cells[i].State = CellUnknown
		g.cells[i].occupant = 0
	}

	ships := g.ships
	for _, ship := range ships {
		ship.detach()
	}

	g.ships = nil
	g.sunk = swiss.NewMap[*Ship, struct{}](0)
	g.attacked = 0

	return ships
}

// Rebuilds the fleet from placement records on an empty grid.
//
// Unknown spec ids and an empty record list are configuration errors,
// records that cannot be placed are reported as ErrIllegalPlacement.
// On any error the grid is left empty.
func (g *Grid) Load(catalog *Catalog, placements iter.Seq[Placement]) error {
	if len(g.ships) != 0 {
		return fmt.Errorf("%w: grid already holds ships", ErrConfiguration)
	}

	err := g.load(catalog, placements)
	if err != nil {
		g.Reset()
	}
	return err
}

func (g *Grid) load(catalog *Catalog, placements iter.Seq[Placement]) error {
	for p := range placements {
		spec, err := catalog.Lookup(p.SpecID)
		if err != nil {
			return err
		}

		ship := NewShip(spec, p.Orientation)
		if !g.Place(ship, p.Origin) {
			return fmt.Errorf("%w: %s %s at %v", ErrIllegalPlacement, spec.Name, p.Orientation, p.Origin)
		}
	}

	if len(g.ships) == 0 {
		return fmt.Errorf("%w: no ships placed", ErrConfiguration)
	}

	return nil
}

func (g *Grid) notifyCell(c Coord, state CellState) {
	if g.observer != nil {
		g.observer.CellChanged(c, state)
	}
}
