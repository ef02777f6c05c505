package field

// Ship is a straight rectangular ship instance.
//
// A ship is owned by at most one Grid at a time. While it is not placed,
// it occupies no cells and is never sunk.
type Ship struct {
	Spec        ShipSpec
	Orientation Orientation

	origin   Coord
	placedAs Orientation
	cells    []Coord
	hits     int
	owner    *Grid
}

func NewShip(spec ShipSpec, orientation Orientation) *Ship {
	return &Ship{
		Spec:        spec,
		Orientation: orientation,
	}
}

// Returns footprint dimensions for the current orientation.
func (s *Ship) Size() (w, h int64) {
	if s.Orientation == Vertical {
		return s.Spec.H, s.Spec.W
	}
	return s.Spec.W, s.Spec.H
}

// Offsets of occupied cells relative to the ship origin, column by column.
func (s *Ship) OccupiedOffsets() []Coord {
	w, h := s.Size()

	offsets := make([]Coord, 0, w*h)
	for x := int64(0); x < w; x++ {
		for y := int64(0); y < h; y++ {
			offsets = append(offsets, Coord{x, y})
		}
	}

	return offsets
}

// Toggles orientation. Cells of an already placed ship are not moved and
// its Placement keeps the orientation it was placed with, callers have to
// remove and re-place it.
func (s *Ship) Rotate() {
	if s.Orientation == Horizontal {
		s.Orientation = Vertical
	} else {
		s.Orientation = Horizontal
	}
}

func (s *Ship) RegisterHit() {
	s.hits++
}

func (s *Ship) IsSunk() bool {
	return len(s.cells) > 0 && s.hits >= len(s.cells)
}

func (s *Ship) Hits() int {
	return s.hits
}

func (s *Ship) Origin() Coord {
	return s.origin
}

// Absolute occupied coordinates, empty while the ship is not placed.
func (s *Ship) Cells() []Coord {
	out := make([]Coord, len(s.cells))
	copy(out, s.cells)
	return out
}

func (s *Ship) Placed() bool {
	return s.owner != nil
}

// Record of where the ship lies. Unplaced ships report their current
// orientation.
func (s *Ship) Placement() Placement {
	orientation := s.Orientation
	if s.Placed() {
		orientation = s.placedAs
	}

	return Placement{
		SpecID:      s.Spec.ID,
		Origin:      s.origin,
		Orientation: orientation,
	}
}

func (s *Ship) detach() {
	s.origin = Coord{}
	s.cells = nil
	s.hits = 0
	s.owner = nil
}
