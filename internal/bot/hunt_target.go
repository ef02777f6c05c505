package bot

import (
	"math/rand"

	"github.com/dolthub/swiss"

	"github.com/mrsobakin/seabattle/internal/game"
	"github.com/mrsobakin/seabattle/internal/game/field"
)

// Random probes made in hunt mode before falling back to a scan.
const DefaultRetryBudget = 100

// HuntTarget fires at random until it scores a hit, then probes the
// orthogonal neighbours of its hits, most recent first.
type HuntTarget struct {
	rng    *rand.Rand
	budget int

	candidates []field.Coord // used as a stack
	queued     *swiss.Map[field.Coord, struct{}]
}

var _ game.Adversary = (*HuntTarget)(nil)

type Option func(*HuntTarget)

func WithRetryBudget(n int) Option {
	return func(b *HuntTarget) {
		b.budget = max(0, n)
	}
}

func NewHuntTarget(rng *rand.Rand, opts ...Option) *HuntTarget {
	b := &HuntTarget{
		rng:    rng,
		budget: DefaultRetryBudget,
		queued: swiss.NewMap[field.Coord, struct{}](16),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

func (b *HuntTarget) Reset() {
	b.candidates = nil
	b.queued = swiss.NewMap[field.Coord, struct{}](16)
}

func (b *HuntTarget) Candidates() []field.Coord {
	out := make([]field.Coord, len(b.candidates))
	copy(out, b.candidates)
	return out
}

func (b *HuntTarget) Next(target field.View) (field.Coord, bool) {
	// Candidates may have been resolved since they were pushed, e.g. by
	// sunk-ship marking. Those are dropped.
	for len(b.candidates) > 0 {
		c := b.pop()
		if target.InBounds(c) && target.State(c) == field.CellUnknown {
			return c, true
		}
	}

	return b.hunt(target)
}

func (b *HuntTarget) Record(target field.View, c field.Coord, result field.AttackResult) {
	if result != field.Hit {
		return
	}

	neighbours := field.Orthogonal(c)
	b.rng.Shuffle(len(neighbours), func(i, j int) {
		neighbours[i], neighbours[j] = neighbours[j], neighbours[i]
	})

	for _, n := range neighbours {
		if !target.InBounds(n) || target.State(n) != field.CellUnknown || b.queued.Has(n) {
			continue
		}

		b.candidates = append(b.candidates, n)
		b.queued.Put(n, struct{}{})
	}
}

func (b *HuntTarget) pop() field.Coord {
	last := len(b.candidates) - 1
	c := b.candidates[last]
	b.candidates = b.candidates[:last]
	b.queued.Delete(c)
	return c
}

func (b *HuntTarget) hunt(target field.View) (field.Coord, bool) {
	w, h := target.Width(), target.Height()

	for i := 0; i < b.budget; i++ {
		c := field.Coord{X: b.rng.Int63n(w), Y: b.rng.Int63n(h)}
		if target.State(c) == field.CellUnknown {
			return c, true
		}
	}

	return firstUnknown(target, field.Coord{})
}

// Scans row by row starting at from, wrapping around once.
func firstUnknown(target field.View, from field.Coord) (field.Coord, bool) {
	w, h := target.Width(), target.Height()
	start := from.Y*w + from.X

	for i := int64(0); i < w*h; i++ {
		idx := (start + i) % (w * h)
		c := field.Coord{X: idx % w, Y: idx / w}
		if target.State(c) == field.CellUnknown {
			return c, true
		}
	}

	return field.Coord{}, false
}
