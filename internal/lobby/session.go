package lobby

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mrsobakin/seabattle/internal/game"
	"github.com/mrsobakin/seabattle/internal/game/field"
	"github.com/mrsobakin/seabattle/internal/match"
	"github.com/mrsobakin/seabattle/internal/utils"
)

const subscriberBuffer = 64

// Snapshot is the public view of a match. Grids hold cell states only,
// indexed by owner and then [y][x].
type Snapshot struct {
	ID    uuid.UUID              `json:"id"`
	State match.State            `json:"state"`
	Grids [2][][]field.CellState `json:"grids"`
}

// Session owns one match controller and serialises every call into it,
// including the paced adversary moves.
type Session struct {
	id     uuid.UUID
	logger *log.Logger

	mu      sync.Mutex
	ctrl    *match.Controller
	pacer   *utils.TimerPacer
	subs    map[int]chan Event
	nextSub int
	closed  bool
}

var _ match.Observer = (*Session)(nil)

type sessionConfig struct {
	mode      game.Mode
	first     *field.Grid
	second    *field.Grid
	adversary game.Adversary
	delay     time.Duration
	logger    *log.Logger
}

func newSession(id uuid.UUID, conf sessionConfig) (*Session, error) {
	s := &Session{
		id:     id,
		logger: conf.logger.With("match", id),
		subs:   make(map[int]chan Event),
	}

	mc := match.Config{
		Mode:      conf.mode,
		First:     conf.first,
		Second:    conf.second,
		Adversary: conf.adversary,
		Observer:  s,
		Logger:    s.logger,
	}

	if conf.mode == game.SingleOpponent && conf.delay > 0 {
		s.pacer = utils.NewTimerPacer(conf.delay, &s.mu)
		mc.Pacer = s.pacer
	}

	ctrl, err := match.New(mc)
	if err != nil {
		return nil, err
	}

	s.ctrl = ctrl
	return s, nil
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

// Attack forwards to the controller and returns the state right after
// the attack. With a paced adversary, its moves land later.
func (s *Session) Attack(side game.Side, pos field.Coord) (field.AttackResult, match.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return field.Invalid, match.State{}, ErrNotFound
	}

	result, err := s.ctrl.Attack(side, pos)
	return result, s.ctrl.State(), err
}

func (s *Session) State() match.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ctrl.State()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		ID:    s.id,
		State: s.ctrl.State(),
		Grids: [2][][]field.CellState{
			s.ctrl.Grid(game.First).States(),
			s.ctrl.Grid(game.Second).States(),
		},
	}
}

// Subscribe returns a channel of match events and a function to stop
// receiving them. The channel is closed when the match is abandoned.
// Events are dropped for subscribers that fall behind.
func (s *Session) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if ch, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
}

// Must be called with s.mu held, which is always the case for observer
// callbacks coming from the controller.
func (s *Session) publish(e Event) {
	for id, ch := range s.subs {
		select {
		case ch <- e:
		default:
			s.logger.Warn("subscriber is lagging, dropping event", "subscriber", id, "event", e)
		}
	}
}

func (s *Session) CellChanged(owner game.Side, pos field.Coord, state field.CellState) {
	s.publish(Event{Kind: EventCell, Side: owner, Pos: &pos, State: &state})
}

func (s *Session) ShipSunk(owner game.Side, ship *field.Ship) {
	id := ship.Spec.ID
	s.publish(Event{Kind: EventSunk, Side: owner, Ship: ship.Spec.Name, SpecID: &id, Cells: ship.Cells()})
}

func (s *Session) TurnChanged(active game.Side) {
	s.publish(Event{Kind: EventTurn, Side: active})
}

func (s *Session) Concluded(winner game.Side) {
	s.publish(Event{Kind: EventConcluded, Side: winner})
}

// Drops pending adversary moves, detaches subscribers and fully resets
// both grids.
func (s *Session) close() {
	if s.pacer != nil {
		s.pacer.Close()
	}

	s.mu.Lock()
	if !s.closed {
		s.closed = true

		for id, ch := range s.subs {
			delete(s.subs, id)
			close(ch)
		}

		s.ctrl.Grid(game.First).Reset()
		s.ctrl.Grid(game.Second).Reset()
	}
	s.mu.Unlock()

	if s.pacer != nil {
		s.pacer.Wait()
	}
}
