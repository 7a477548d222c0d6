package coordinator

import (
	"context"
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablestakes/sitngo/internal/evaluator"
	"github.com/tablestakes/sitngo/internal/game"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestEngine(t *testing.T, seed int64, chips int, names ...string) *game.Engine {
	t.Helper()
	e, err := game.NewEngine(names, chips, evaluator.New(),
		game.WithRNG(rand.New(rand.NewSource(seed))),
		game.WithLogger(quietLogger()),
	)
	require.NoError(t, err)
	return e
}

// memorySink collects snapshots and records for assertions
type memorySink struct {
	mu        sync.Mutex
	snapshots []game.Snapshot
	records   []game.HandRecord
}

func (m *memorySink) Broadcast(s game.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, s)
}

func (m *memorySink) WriteRecord(r game.HandRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func (m *memorySink) recordCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func TestAutomatedTournamentRunsToCompletion(t *testing.T) {
	engine := newTestEngine(t, 1, 500, "a", "b", "c", "d")
	rng := rand.New(rand.NewSource(1))
	sources := map[int]DecisionSource{
		0: &RandomSource{Rng: rng},
		1: &RandomSource{Rng: rng},
		2: CallingSource{},
		3: CallingSource{},
	}
	sink := &memorySink{}

	coord, err := New(engine, sources,
		WithCoordinatorLogger(quietLogger()),
		WithSnapshotSink(sink),
		WithRecordSink(sink),
	)
	require.NoError(t, err)

	require.NoError(t, coord.Run(context.Background()))
	require.Equal(t, game.StatusCompleted, engine.Status())

	standings := engine.Standings()
	require.Len(t, standings, 4)
	chips := 0
	for _, st := range standings {
		chips += st.Chips
	}
	assert.Equal(t, 2000, chips)

	assert.Equal(t, engine.Stats().HandsPlayed, sink.recordCount())
	assert.NotEmpty(t, sink.snapshots)

	// Control calls fail once the run loop has exited
	assert.ErrorIs(t, coord.Pause(), ErrStopped)
}

func TestMissingSourceRejected(t *testing.T) {
	engine := newTestEngine(t, 2, 500, "a", "b")
	_, err := New(engine, map[int]DecisionSource{0: CallingSource{}})
	require.Error(t, err)
}

func TestDecisionTimeoutChecksOrFolds(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	engine := newTestEngine(t, 3, 100, "a", "b")
	mock := quartz.NewMock(t)
	trap := mock.Trap().AfterFunc()
	defer trap.Close()

	sources := map[int]DecisionSource{0: NewHumanSource(), 1: NewHumanSource()}
	coord, err := New(engine, sources,
		WithCoordinatorLogger(quietLogger()),
		WithClock(mock),
	)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- coord.Run(ctx) }()

	// Hand 1, heads-up: dealer seat 0 posts the small blind and opens.
	// Nobody submits, so the timeout must fold (check is illegal facing
	// the big blind).
	call := trap.MustWait(ctx)
	call.MustRelease(ctx)
	mock.Advance(DefaultDecisionTimeout).MustWait(ctx)

	// The fold ends hand 1; hand 2's first decision arms the next timer
	call = trap.MustWait(ctx)
	call.MustRelease(ctx)

	snap, err := coord.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 2, snap.HandNumber)

	// Seat 0 folded the small blind, down exactly 10
	seat0 := snap.Players[0]
	assert.Equal(t, 90, seat0.Chips+seat0.TotalContributed)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestTimeoutChecksWhenLegal(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	engine := newTestEngine(t, 4, 100, "a", "b")
	mock := quartz.NewMock(t)
	trap := mock.Trap().AfterFunc()
	defer trap.Close()

	human0, human1 := NewHumanSource(), NewHumanSource()
	coord, err := New(engine, map[int]DecisionSource{0: human0, 1: human1},
		WithCoordinatorLogger(quietLogger()),
		WithClock(mock),
	)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- coord.Run(ctx) }()

	// Dealer completes the small blind
	call := trap.MustWait(ctx)
	call.MustRelease(ctx)
	require.NoError(t, coord.Submit(0, Decision{Type: game.ActionCall}))

	// Big blind holds the option; its timeout must check, not fold
	call = trap.MustWait(ctx)
	call.MustRelease(ctx)
	mock.Advance(DefaultDecisionTimeout).MustWait(ctx)

	// Flop decision arms the next timer
	call = trap.MustWait(ctx)
	call.MustRelease(ctx)

	snap, err := coord.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 1, snap.HandNumber)
	assert.Equal(t, game.PhaseFlop, snap.Phase)
	assert.False(t, snap.Players[1].Folded, "big blind should auto-check, not fold")

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestPauseFreezesAndResumeRestartsTimer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	engine := newTestEngine(t, 5, 100, "a", "b")
	mock := quartz.NewMock(t)
	trap := mock.Trap().AfterFunc()
	defer trap.Close()

	coord, err := New(engine, map[int]DecisionSource{0: NewHumanSource(), 1: NewHumanSource()},
		WithCoordinatorLogger(quietLogger()),
		WithClock(mock),
	)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- coord.Run(ctx) }()

	call := trap.MustWait(ctx)
	call.MustRelease(ctx)

	require.NoError(t, coord.Pause())
	require.Error(t, coord.Pause(), "double pause must fail")

	snap, err := coord.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, game.StatusPaused, snap.Status)
	assert.Equal(t, 1, snap.HandNumber, "pause must not mutate the hand")

	// A decision submitted during the pause is buffered, not applied
	require.NoError(t, coord.Submit(0, Decision{Type: game.ActionCall}))
	snap, err = coord.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 0, snap.CurrentActor)

	// Resume re-arms a fresh timer and applies the buffered decision
	require.NoError(t, coord.Resume())
	call = trap.MustWait(ctx)
	call.MustRelease(ctx)

	// The applied call passes the action to the big blind, whose own
	// decision timer is the next trapped arm.
	call = trap.MustWait(ctx)
	call.MustRelease(ctx)

	snap, err = coord.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 1, snap.CurrentActor, "buffered call should apply after resume")

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestInvalidDecisionRetriedUntilValid(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	engine := newTestEngine(t, 6, 100, "a", "b")
	mock := quartz.NewMock(t)
	trap := mock.Trap().AfterFunc()
	defer trap.Close()

	coord, err := New(engine, map[int]DecisionSource{0: NewHumanSource(), 1: NewHumanSource()},
		WithCoordinatorLogger(quietLogger()),
		WithClock(mock),
	)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- coord.Run(ctx) }()

	call := trap.MustWait(ctx)
	call.MustRelease(ctx)

	// Checking the small blind facing the big blind is illegal: the
	// seat keeps the action and may resubmit. The buffer frees once the
	// rejected check has been consumed.
	require.NoError(t, coord.Submit(0, Decision{Type: game.ActionCheck}))
	require.Eventually(t, func() bool {
		return coord.Submit(0, Decision{Type: game.ActionCall}) == nil
	}, 5*time.Second, 10*time.Millisecond)

	// The call applies and the big blind's timer arms next
	call = trap.MustWait(ctx)
	call.MustRelease(ctx)

	snap, err := coord.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 1, snap.CurrentActor)
	assert.False(t, snap.Players[0].Folded)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestSubmitValidation(t *testing.T) {
	engine := newTestEngine(t, 7, 100, "a", "b")
	human := NewHumanSource()
	coord, err := New(engine, map[int]DecisionSource{0: human, 1: CallingSource{}},
		WithCoordinatorLogger(quietLogger()),
	)
	require.NoError(t, err)

	require.Error(t, coord.Submit(5, Decision{Type: game.ActionFold}), "unknown seat")
	require.Error(t, coord.Submit(1, Decision{Type: game.ActionFold}), "automated seat")

	require.NoError(t, coord.Submit(0, Decision{Type: game.ActionCall}))
	require.Error(t, coord.Submit(0, Decision{Type: game.ActionCall}), "buffer already holds a decision")
}

func TestSessionGuardAdmitsOneTournament(t *testing.T) {
	guard := NewSessionGuard()
	require.NoError(t, guard.Acquire())
	require.ErrorIs(t, guard.Acquire(), ErrSessionActive)
	guard.Release()
	require.NoError(t, guard.Acquire())
	guard.Release()
}
