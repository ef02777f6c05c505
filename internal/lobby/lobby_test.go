package lobby_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/mrsobakin/seabattle/internal/game"
	"github.com/mrsobakin/seabattle/internal/game/field"
	"github.com/mrsobakin/seabattle/internal/lobby"
)

// C C C C C . . . . .
// . . . . . . . . . .
// . . . . . . . . . B
// . . . . . . . . . B
// . . R R R . . . . B
// . . . . . . . . . B
// S . . . . . . . . .
// S . . . . . . . . .
// S . . . . . . . . .
// . . . . . D D . . .
const classic = `1 h 0 0
2 v 9 2
3 h 2 4
4 v 0 6
5 h 5 9
`

func fleet(t *testing.T) []field.Placement {
	t.Helper()

	var out []field.Placement
	for p := range field.ParsePlacements(strings.NewReader(classic)) {
		out = append(out, p)
	}
	require.Len(t, out, 5)
	return out
}

func at(x, y int64) field.Coord {
	return field.Coord{X: x, Y: y}
}

func twoParticipant(t *testing.T) lobby.Request {
	return lobby.Request{Mode: game.TwoParticipant, First: fleet(t), Second: fleet(t)}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("TwoParticipant", func(t *testing.T) {
		l := lobby.New(lobby.Options{Seed: 1})

		s, err := l.Create(ctx, twoParticipant(t))
		require.NoError(t, err)
		assert.Equal(t, 1, l.Len())

		got, err := l.Get(s.ID())
		require.NoError(t, err)
		assert.Same(t, s, got)

		snap := s.Snapshot()
		assert.Equal(t, game.TwoParticipant, snap.State.Mode)
		assert.Equal(t, game.First, snap.State.Turn)
		assert.Len(t, snap.Grids[game.First], 10)
		assert.Len(t, snap.Grids[game.Second][0], 10)
	})

	t.Run("RandomAdversaryFleet", func(t *testing.T) {
		l := lobby.New(lobby.Options{Seed: 2})

		s, err := l.Create(ctx, lobby.Request{Mode: game.SingleOpponent, First: fleet(t)})
		require.NoError(t, err)
		assert.Equal(t, game.InProgress, s.State().Phase)
	})

	t.Run("Capacity", func(t *testing.T) {
		l := lobby.New(lobby.Options{MaxMatches: 1, Seed: 3})

		s, err := l.Create(ctx, twoParticipant(t))
		require.NoError(t, err)

		_, err = l.Create(ctx, twoParticipant(t))
		assert.ErrorIs(t, err, lobby.ErrCapacity)

		require.NoError(t, l.Abandon(ctx, s.ID()))

		_, err = l.Create(ctx, twoParticipant(t))
		assert.NoError(t, err, "abandoning frees the slot")
	})

	t.Run("InvalidFleets", func(t *testing.T) {
		l := lobby.New(lobby.Options{MaxMatches: 1, Seed: 4})

		overlapping := append(fleet(t), field.Placement{SpecID: 5, Origin: at(1, 1)})
		_, err := l.Create(ctx, lobby.Request{Mode: game.TwoParticipant, First: overlapping, Second: fleet(t)})
		assert.ErrorIs(t, err, field.ErrIllegalPlacement)

		unknown := []field.Placement{{SpecID: 42, Origin: at(0, 0)}}
		_, err = l.Create(ctx, lobby.Request{Mode: game.TwoParticipant, First: fleet(t), Second: unknown})
		assert.ErrorIs(t, err, field.ErrConfiguration)

		_, err = l.Create(ctx, lobby.Request{Mode: game.TwoParticipant, Second: fleet(t)})
		assert.ErrorIs(t, err, field.ErrConfiguration)

		assert.Equal(t, 0, l.Len())

		_, err = l.Create(ctx, twoParticipant(t))
		assert.NoError(t, err, "failed creations release their slot")
	})
}

func TestAttack(t *testing.T) {
	ctx := context.Background()
	l := lobby.New(lobby.Options{Seed: 5})

	s, err := l.Create(ctx, twoParticipant(t))
	require.NoError(t, err)

	result, state, err := l.Attack(ctx, s.ID(), game.First, at(0, 0))
	require.NoError(t, err)
	assert.Equal(t, field.Hit, result)
	assert.Equal(t, game.First, state.Turn)

	result, state, err = l.Attack(ctx, s.ID(), game.First, at(5, 5))
	require.NoError(t, err)
	assert.Equal(t, field.Miss, result)
	assert.Equal(t, game.Second, state.Turn)

	_, _, err = l.Attack(ctx, s.ID(), game.First, at(6, 6))
	assert.ErrorIs(t, err, game.ErrNotYourTurn)

	snap := s.Snapshot()
	assert.Equal(t, field.CellHit, snap.Grids[game.Second][0][0])
	assert.Equal(t, field.CellEmpty, snap.Grids[game.Second][5][5])
	assert.Equal(t, field.CellUnknown, snap.Grids[game.First][0][0])

	_, _, err = l.Attack(ctx, uuid.New(), game.First, at(0, 0))
	assert.ErrorIs(t, err, lobby.ErrNotFound)
}

func TestAbandon(t *testing.T) {
	ctx := context.Background()
	l := lobby.New(lobby.Options{Seed: 6})

	s, err := l.Create(ctx, twoParticipant(t))
	require.NoError(t, err)

	events, _ := s.Subscribe()

	require.NoError(t, l.Abandon(ctx, s.ID()))
	assert.ErrorIs(t, l.Abandon(ctx, s.ID()), lobby.ErrNotFound)

	_, err = l.Get(s.ID())
	assert.ErrorIs(t, err, lobby.ErrNotFound)

	_, _, err = s.Attack(game.First, at(0, 0))
	assert.ErrorIs(t, err, lobby.ErrNotFound)

	_, open := <-events
	assert.False(t, open, "subscribers are detached")

	assert.Equal(t, field.CellUnknown, s.Snapshot().Grids[game.Second][0][0])
}

func TestSingleOpponent(t *testing.T) {
	ctx := context.Background()

	t.Run("Immediate", func(t *testing.T) {
		l := lobby.New(lobby.Options{Seed: 7})

		s, err := l.Create(ctx, lobby.Request{
			Mode:       game.SingleOpponent,
			Difficulty: lobby.Easy,
			First:      fleet(t),
			Second:     fleet(t),
		})
		require.NoError(t, err)

		_, err = l.Create(ctx, lobby.Request{Mode: game.SingleOpponent, First: fleet(t)})
		require.NoError(t, err)

		result, state, err := l.Attack(ctx, s.ID(), game.First, at(5, 5))
		require.NoError(t, err)
		assert.Equal(t, field.Miss, result)

		// The sweep sinks the carrier along the top row and misses at (6,0).
		assert.Equal(t, game.First, state.Turn)
		assert.Equal(t, 6, state.Shots[game.Second])
		assert.Equal(t, 5, state.Hits[game.Second])

		_, _, err = l.Attack(ctx, s.ID(), game.Second, at(0, 0))
		assert.ErrorIs(t, err, game.ErrAdversaryTurn)
	})

	t.Run("Paced", func(t *testing.T) {
		l := lobby.New(lobby.Options{Seed: 8, AdversaryDelay: 5 * time.Millisecond})
		defer l.Close()

		s, err := l.Create(ctx, lobby.Request{
			Mode:   game.SingleOpponent,
			First:  fleet(t),
			Second: fleet(t),
		})
		require.NoError(t, err)

		_, state, err := l.Attack(ctx, s.ID(), game.First, at(5, 5))
		require.NoError(t, err)
		assert.Equal(t, game.Second, state.Turn)
		assert.True(t, state.AdversaryPending)

		require.Eventually(t, func() bool {
			state := s.State()
			return state.Turn == game.First || state.Phase == game.Concluded
		}, 5*time.Second, 5*time.Millisecond)

		assert.Positive(t, s.State().Shots[game.Second])
	})
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	l := lobby.New(lobby.Options{Seed: 9})

	s, err := l.Create(ctx, twoParticipant(t))
	require.NoError(t, err)

	events, cancel := s.Subscribe()

	// Sinks the destroyer at (5,9)-(6,9), then misses.
	for _, pos := range []field.Coord{at(5, 9), at(6, 9), at(0, 2)} {
		_, _, err := s.Attack(game.First, pos)
		require.NoError(t, err)
	}

	var kinds []lobby.EventKind
	var sunk lobby.Event

	for len(events) > 0 {
		e := <-events
		kinds = append(kinds, e.Kind)
		if e.Kind == lobby.EventSunk {
			sunk = e
		}
	}

	assert.Equal(t, lobby.EventCell, kinds[0])
	assert.Contains(t, kinds, lobby.EventSunk)
	assert.Equal(t, lobby.EventTurn, kinds[len(kinds)-1])

	assert.Equal(t, game.Second, sunk.Side)
	assert.Equal(t, "destroyer", sunk.Ship)
	require.NotNil(t, sunk.SpecID)
	assert.Equal(t, 5, *sunk.SpecID)
	assert.ElementsMatch(t, []field.Coord{at(5, 9), at(6, 9)}, sunk.Cells)

	cancel()
	_, open := <-events
	assert.False(t, open)
}

func TestTracing(t *testing.T) {
	ctx := context.Background()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	l := lobby.New(lobby.Options{Seed: 10, Tracer: tp.Tracer("test")})

	s, err := l.Create(ctx, twoParticipant(t))
	require.NoError(t, err)

	_, _, err = l.Attack(ctx, s.ID(), game.First, at(42, 0))
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "lobby.Create", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, "lobby.Attack", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
