package lobby

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"github.com/mrsobakin/seabattle/internal/bot"
	"github.com/mrsobakin/seabattle/internal/game"
	"github.com/mrsobakin/seabattle/internal/game/field"
	"github.com/mrsobakin/seabattle/internal/match"
	"github.com/mrsobakin/seabattle/internal/telemetry"
)

// Attempts per ship when laying out the adversary fleet.
const fleetAttempts = 100

var (
	ErrNotFound = errors.New("match not found")
	ErrCapacity = errors.New("too many running matches")
)

type Options struct {
	Width, Height int64
	Catalog       *field.Catalog

	// Pause before each adversary move, zero for none.
	AdversaryDelay time.Duration

	MaxMatches int64

	// Seeds adversary strategies and random fleets. Zero picks a
	// time-based seed.
	Seed int64

	Logger *log.Logger
	Tracer trace.Tracer
}

type Request struct {
	Mode       game.Mode
	Difficulty Difficulty

	First []field.Placement

	// Generated randomly in single opponent mode when empty.
	Second []field.Placement
}

// Lobby keeps running matches and limits how many exist at once.
type Lobby struct {
	opts  Options
	slots *semaphore.Weighted

	mu       sync.Mutex
	rng      *rand.Rand
	sessions map[uuid.UUID]*Session
}

func New(opts Options) *Lobby {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 10, 10
	}

	if opts.Catalog == nil {
		opts.Catalog = field.DefaultCatalog()
	}

	if opts.MaxMatches <= 0 {
		opts.MaxMatches = 64
	}

	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	if opts.Tracer == nil {
		opts.Tracer = telemetry.NoopTracer()
	}

	return &Lobby{
		opts:     opts,
		slots:    semaphore.NewWeighted(opts.MaxMatches),
		rng:      rand.New(rand.NewSource(opts.Seed)),
		sessions: make(map[uuid.UUID]*Session),
	}
}

func (l *Lobby) Catalog() *field.Catalog {
	return l.opts.Catalog
}

// Create builds both grids from the request and starts a match. Invalid
// placements fail with field.ErrConfiguration or field.ErrIllegalPlacement.
func (l *Lobby) Create(ctx context.Context, req Request) (s *Session, err error) {
	_, span := l.opts.Tracer.Start(ctx, "lobby.Create", trace.WithAttributes(
		attribute.String("match.mode", req.Mode.String()),
		attribute.String("match.difficulty", req.Difficulty.String()),
	))
	defer func() { endSpan(span, err) }()

	if !l.slots.TryAcquire(1) {
		return nil, ErrCapacity
	}

	defer func() {
		if err != nil {
			l.slots.Release(1)
		}
	}()

	first, err := l.grid(req.First)
	if err != nil {
		return nil, err
	}

	conf := sessionConfig{
		mode:   req.Mode,
		first:  first,
		delay:  l.opts.AdversaryDelay,
		logger: l.opts.Logger,
	}

	if req.Mode == game.SingleOpponent {
		rng := l.newRand()

		if len(req.Second) == 0 {
			conf.second, err = l.randomGrid(rng)
		} else {
			conf.second, err = l.grid(req.Second)
		}

		conf.adversary = newAdversary(req.Difficulty, rng)
	} else {
		conf.second, err = l.grid(req.Second)
	}

	if err != nil {
		return nil, err
	}

	s, err = newSession(uuid.New(), conf)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.sessions[s.id] = s
	l.mu.Unlock()

	span.SetAttributes(attribute.String("match.id", s.id.String()))
	l.opts.Logger.Info("match created", "match", s.id, "mode", req.Mode, "difficulty", req.Difficulty)

	return s, nil
}

func (l *Lobby) Get(id uuid.UUID) (*Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (l *Lobby) Attack(ctx context.Context, id uuid.UUID, side game.Side, pos field.Coord) (result field.AttackResult, state match.State, err error) {
	_, span := l.opts.Tracer.Start(ctx, "lobby.Attack", trace.WithAttributes(
		attribute.String("match.id", id.String()),
		attribute.String("attack.side", side.String()),
		attribute.Int64("attack.x", pos.X),
		attribute.Int64("attack.y", pos.Y),
	))
	defer func() { endSpan(span, err) }()

	s, err := l.Get(id)
	if err != nil {
		return field.Invalid, match.State{}, err
	}

	result, state, err = s.Attack(side, pos)
	span.SetAttributes(attribute.String("attack.result", result.String()))

	return result, state, err
}

// Abandon drops a match, resetting it fully and freeing its slot.
func (l *Lobby) Abandon(ctx context.Context, id uuid.UUID) (err error) {
	_, span := l.opts.Tracer.Start(ctx, "lobby.Abandon", trace.WithAttributes(
		attribute.String("match.id", id.String()),
	))
	defer func() { endSpan(span, err) }()

	l.mu.Lock()
	s, ok := l.sessions[id]
	delete(l.sessions, id)
	l.mu.Unlock()

	if !ok {
		return ErrNotFound
	}

	s.close()
	l.slots.Release(1)

	l.opts.Logger.Info("match abandoned", "match", id)
	return nil
}

func (l *Lobby) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.sessions)
}

// Close abandons every match.
func (l *Lobby) Close() {
	l.mu.Lock()
	ids := make([]uuid.UUID, 0, len(l.sessions))
	for id := range l.sessions {
		ids = append(ids, id)
	}
	l.mu.Unlock()

	for _, id := range ids {
		_ = l.Abandon(context.Background(), id)
	}
}

func (l *Lobby) newRand() *rand.Rand {
	l.mu.Lock()
	defer l.mu.Unlock()

	return rand.New(rand.NewSource(l.rng.Int63()))
}

func (l *Lobby) grid(placements []field.Placement) (*field.Grid, error) {
	g, err := field.NewGrid(l.opts.Width, l.opts.Height)
	if err != nil {
		return nil, err
	}

	if err := g.Load(l.opts.Catalog, slices.Values(placements)); err != nil {
		return nil, err
	}

	return g, nil
}

func (l *Lobby) randomGrid(rng *rand.Rand) (*field.Grid, error) {
	g, err := field.NewGrid(l.opts.Width, l.opts.Height)
	if err != nil {
		return nil, err
	}

	if err := field.PlaceFleet(g, l.opts.Catalog.Specs(), rng, fleetAttempts); err != nil {
		return nil, err
	}

	return g, nil
}

func newAdversary(d Difficulty, rng *rand.Rand) game.Adversary {
	if d == Easy {
		return bot.NewSweep()
	} else {
		return bot.NewHuntTarget(rng)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
