package match

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/mrsobakin/seabattle/internal/game"
	"github.com/mrsobakin/seabattle/internal/game/field"
)

// Invalid picks tolerated for a single adversary decision.
const adversaryRetries = 3

// ErrAdversaryStuck is returned when the adversary keeps picking cells
// that cannot be attacked. Its decision stays pending.
var ErrAdversaryStuck = errors.New("adversary failed to pick a valid cell")

type Config struct {
	Mode game.Mode

	// Grids owned by each side. First attacks Second and vice versa.
	First, Second *field.Grid

	// Required in SingleOpponent mode, where it plays Second.
	Adversary game.Adversary

	// Defers adversary decisions. When nil, the adversary plays
	// synchronously before the human's Attack returns.
	Pacer game.Pacer

	Observer Observer
	Logger   *log.Logger
}

// Controller runs a single match. It is not safe for concurrent use:
// callers (including the Pacer) must serialise all calls.
type Controller struct {
	mode      game.Mode
	grids     [2]*field.Grid
	adversary game.Adversary
	pacer     game.Pacer
	observer  Observer
	logger    *log.Logger

	turn    game.Side
	phase   game.Phase
	winner  game.Side
	shots   [2]int
	hits    [2]int
	pending bool
}

func New(conf Config) (*Controller, error) {
	if conf.First == nil || conf.Second == nil {
		return nil, fmt.Errorf("%w: both grids are required", field.ErrConfiguration)
	}

	if conf.First == conf.Second {
		return nil, fmt.Errorf("%w: sides cannot share a grid", field.ErrConfiguration)
	}

	for side, grid := range [2]*field.Grid{conf.First, conf.Second} {
		if len(grid.Ships()) == 0 {
			return nil, fmt.Errorf("%w: %s side has no ships", field.ErrConfiguration, game.Side(side))
		}
	}

	if conf.Mode == game.SingleOpponent && conf.Adversary == nil {
		return nil, fmt.Errorf("%w: single opponent mode requires an adversary", field.ErrConfiguration)
	}

	logger := conf.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	c := &Controller{
		mode:     conf.Mode,
		grids:    [2]*field.Grid{conf.First, conf.Second},
		pacer:    conf.Pacer,
		observer: conf.Observer,
		logger:   logger,
		turn:     game.First,
		phase:    game.InProgress,
	}

	if conf.Mode == game.SingleOpponent {
		c.adversary = conf.Adversary
		c.adversary.Reset()
	}

	if c.observer != nil {
		for side, grid := range c.grids {
			grid.SetObserver(gridObserver{game.Side(side), c.observer})
		}
	}

	return c, nil
}

func (c *Controller) isAdversary(side game.Side) bool {
	return c.mode == game.SingleOpponent && side == game.Second
}

// Grid owned by side, i.e. the one its opponent attacks.
func (c *Controller) Grid(side game.Side) *field.Grid {
	return c.grids[side]
}

func (c *Controller) State() State {
	s := State{
		Mode:             c.mode,
		Turn:             c.turn,
		Phase:            c.phase,
		Shots:            c.shots,
		Hits:             c.hits,
		AdversaryPending: c.pending,
	}

	if c.phase == game.Concluded {
		winner := c.winner
		s.Winner = &winner
	}

	return s
}

// Attack fires at the opponent of attacker.
//
// A hit keeps the turn with the attacker, a miss passes it over, and
// sinking the last ship concludes the match. Rejected commands return
// field.Invalid together with a *game.ErrorInvalidCommand and change
// nothing.
//
// Without a Pacer the adversary answers before Attack returns. If it gets
// stuck, the attack itself stands and ErrAdversaryStuck is returned along
// with its result.
func (c *Controller) Attack(attacker game.Side, pos field.Coord) (field.AttackResult, error) {
	if c.phase == game.Concluded {
		return field.Invalid, game.ErrMatchConcluded
	}

	if c.isAdversary(attacker) {
		return field.Invalid, game.ErrAdversaryTurn
	}

	if attacker != c.turn {
		return field.Invalid, game.ErrNotYourTurn
	}

	result, err := c.fire(attacker, pos)
	if err != nil {
		return result, err
	}

	c.advance(attacker, result)

	if c.pacer == nil {
		for {
			played, err := c.PlayAdversary()
			if err != nil {
				return result, err
			} else if !played {
				break
			}
		}
	}

	return result, nil
}

// PlayAdversary makes the single pending adversary decision. It returns
// false without doing anything if no decision is pending, so it may be
// invoked immediately or after any delay.
//
// Invalid picks are retried a few times before giving up with
// ErrAdversaryStuck.
func (c *Controller) PlayAdversary() (bool, error) {
	if !c.pending || c.phase == game.Concluded || !c.isAdversary(c.turn) {
		return false, nil
	}

	attacker := c.turn
	target := c.grids[attacker.Other()]

	var lastErr error

	for try := 0; try < adversaryRetries; try++ {
		pos, ok := c.adversary.Next(target)
		if !ok {
			lastErr = errors.New("no cell left to attack")
			break
		}

		result, err := c.fire(attacker, pos)
		if err != nil {
			c.logger.Warn("adversary picked an invalid cell", "pos", pos, "err", err)
			lastErr = err
			continue
		}

		c.pending = false
		c.adversary.Record(target, pos, result)
		c.logger.Debug("adversary attacked", "pos", pos, "result", result)

		c.advance(attacker, result)
		return true, nil
	}

	c.logger.Error("adversary is stuck", "side", attacker, "err", lastErr)
	return false, fmt.Errorf("%w: %v", ErrAdversaryStuck, lastErr)
}

func (c *Controller) fire(attacker game.Side, pos field.Coord) (field.AttackResult, error) {
	target := c.grids[attacker.Other()]

	if !target.InBounds(pos) {
		return field.Invalid, game.ErrOutOfBounds
	}

	if target.State(pos) != field.CellUnknown {
		return field.Invalid, game.ErrAlreadyAttacked
	}

	result := target.Attack(pos)
	if result == field.Invalid {
		return result, errors.New("grid rejected an unknown in-bounds cell")
	}

	c.shots[attacker]++
	if result == field.Hit {
		c.hits[attacker]++
	}

	for _, ship := range target.MarkSunk() {
		c.logger.Info("ship sunk", "owner", attacker.Other(), "ship", ship.Spec.Name)
	}

	return result, nil
}

func (c *Controller) advance(attacker game.Side, result field.AttackResult) {
	if c.grids[attacker.Other()].AllSunk() {
		c.phase = game.Concluded
		c.winner = attacker
		c.pending = false

		c.logger.Info("match concluded", "winner", attacker, "shots", c.shots[attacker])
		if c.observer != nil {
			c.observer.Concluded(attacker)
		}
		return
	}

	if result == field.Miss {
		c.turn = attacker.Other()
		if c.observer != nil {
			c.observer.TurnChanged(c.turn)
		}
	} else {
		c.logger.Debug("bonus turn", "side", attacker)
	}

	c.enterTurn()
}

func (c *Controller) enterTurn() {
	if !c.isAdversary(c.turn) {
		return
	}

	c.pending = true

	if c.pacer != nil {
		c.pacer.Defer(func() {
			// Failures are logged by PlayAdversary.
			_, _ = c.PlayAdversary()
		})
	}
}
