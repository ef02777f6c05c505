package bot

import (
	"github.com/mrsobakin/seabattle/internal/game"
	"github.com/mrsobakin/seabattle/internal/game/field"
)

// Sweep attacks cells in reading order, skipping resolved ones. It is
// the easy opponent and a predictable one for tests.
type Sweep struct {
	next field.Coord
}

var _ game.Adversary = (*Sweep)(nil)

func NewSweep() *Sweep {
	return &Sweep{}
}

func (s *Sweep) Next(target field.View) (field.Coord, bool) {
	if !target.InBounds(s.next) {
		s.next = field.Coord{}
	}
	return firstUnknown(target, s.next)
}

func (s *Sweep) Record(target field.View, c field.Coord, _ field.AttackResult) {
	s.next = field.Coord{X: c.X + 1, Y: c.Y}

	if s.next.X == target.Width() {
		s.next.X = 0
		s.next.Y += 1
	}

	if s.next.Y == target.Height() {
		s.next.Y = 0
	}
}

func (s *Sweep) Reset() {
	s.next = field.Coord{}
}
