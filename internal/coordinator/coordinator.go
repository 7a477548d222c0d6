// Package coordinator drives a tournament engine from decision
// sources. A single goroutine owns the engine; every mutation flows
// through the run loop, so the engine itself needs no locking.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/tablestakes/sitngo/internal/game"
)

// DefaultDecisionTimeout bounds how long a seat may hold the action
const DefaultDecisionTimeout = 30 * time.Second

var (
	// ErrStopped is returned by control calls after the run loop exits
	ErrStopped = errors.New("coordinator stopped")

	// ErrAborted is returned by Run when the engine hits an invariant
	// violation and the tournament cannot continue.
	ErrAborted = errors.New("tournament aborted")
)

// SnapshotSink receives a full snapshot after every state change
type SnapshotSink interface {
	Broadcast(game.Snapshot)
}

// RecordSink receives each hand's record once, after the hand completes
type RecordSink interface {
	WriteRecord(game.HandRecord) error
}

type cmdKind int

const (
	cmdPause cmdKind = iota
	cmdResume
	cmdSnapshot
	cmdStandings
)

type command struct {
	kind  cmdKind
	reply chan reply
}

type reply struct {
	snapshot  game.Snapshot
	standings []game.Standing
	err       error
}

type decisionResult struct {
	decision Decision
	err      error
}

// Coordinator runs one tournament to completion. Control calls (Pause,
// Resume, Snapshot, Standings) are safe from any goroutine; they post
// commands into the run loop's mailbox and wait for the answer.
//
// Pausing freezes the pending decision without mutating hand state: the
// in-flight decision request is cancelled and its timer stopped. Resume
// re-issues the request with a fresh full-duration timer.
type Coordinator struct {
	engine  *game.Engine
	sources map[int]DecisionSource
	clock   quartz.Clock
	timeout time.Duration
	logger  *log.Logger
	snaps   SnapshotSink
	records RecordSink

	cmds chan command
	done chan struct{}

	paused      bool
	lastWritten int
}

// CoordinatorOption configures a Coordinator
type CoordinatorOption func(*Coordinator)

// WithClock injects the timer clock, mockable in tests
func WithClock(clock quartz.Clock) CoordinatorOption {
	return func(c *Coordinator) { c.clock = clock }
}

// WithDecisionTimeout overrides the per-decision timeout
func WithDecisionTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) { c.timeout = d }
}

// WithCoordinatorLogger sets the coordinator's logger
func WithCoordinatorLogger(logger *log.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = logger }
}

// WithSnapshotSink broadcasts snapshots after every state change
func WithSnapshotSink(sink SnapshotSink) CoordinatorOption {
	return func(c *Coordinator) { c.snaps = sink }
}

// WithRecordSink persists each completed hand's record
func WithRecordSink(sink RecordSink) CoordinatorOption {
	return func(c *Coordinator) { c.records = sink }
}

// New creates a coordinator. Every seat of the engine needs a decision
// source.
func New(engine *game.Engine, sources map[int]DecisionSource, opts ...CoordinatorOption) (*Coordinator, error) {
	for seat := 0; seat < engine.NumSeats(); seat++ {
		if sources[seat] == nil {
			return nil, fmt.Errorf("no decision source for seat %d", seat)
		}
	}

	c := &Coordinator{
		engine:  engine,
		sources: sources,
		clock:   quartz.NewReal(),
		timeout: DefaultDecisionTimeout,
		cmds:    make(chan command),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.Default().WithPrefix("coordinator")
	}
	return c, nil
}

// Run plays the tournament until completion, abort, or ctx
// cancellation. It must be called exactly once.
func (c *Coordinator) Run(ctx context.Context) error {
	defer close(c.done)
	c.logger.Info("tournament starting", "players", c.engine.NumSeats(), "timeout", c.timeout)

	for {
		// Serve control commands whenever no decision is outstanding
		select {
		case cmd := <-c.cmds:
			c.handle(cmd)
			continue
		default:
		}
		if c.paused {
			if err := c.waitResume(ctx); err != nil {
				return err
			}
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		switch c.engine.Status() {
		case game.StatusCompleted:
			c.broadcast()
			c.logger.Info("tournament finished", "hands", c.engine.Stats().HandsPlayed)
			return nil
		case game.StatusAborted:
			return ErrAborted
		}

		if c.engine.Phase() == game.PhaseBetweenHands {
			if err := c.engine.StartHand(); err != nil {
				return err
			}
			c.broadcast()
			// An all-in run-out can complete the hand during the deal
			c.flushRecord()
			continue
		}

		actor := c.engine.CurrentActor()
		if actor < 0 {
			continue
		}
		if err := c.requestDecision(ctx, actor); err != nil {
			return err
		}
		c.broadcast()
		c.flushRecord()
	}
}

// requestDecision asks one seat's source for a decision, enforcing the
// turn timer. Invalid decisions are rejected and may be retried until
// the timer fires; a timeout checks when legal and folds otherwise.
func (c *Coordinator) requestDecision(ctx context.Context, seat int) error {
	source := c.sources[seat]

restart:
	for {
		timedOut := make(chan struct{})
		timer := c.clock.AfterFunc(c.timeout, func() { close(timedOut) })
		decCtx, cancel := context.WithCancel(ctx)
		results := make(chan decisionResult, 1)

		request := func() {
			view := c.engine.SeatView(seat)
			go func() {
				d, err := source.Decide(decCtx, view)
				select {
				case results <- decisionResult{decision: d, err: err}:
				case <-decCtx.Done():
				}
			}()
		}
		request()

		for {
			select {
			case <-ctx.Done():
				cancel()
				timer.Stop()
				return ctx.Err()

			case res := <-results:
				if res.err != nil {
					cancel()
					timer.Stop()
					c.logger.Warn("decision source failed, folding", "seat", seat, "err", res.err)
					return c.engine.ApplyAction(seat, game.ActionFold, 0)
				}
				err := c.engine.ApplyAction(seat, res.decision.Type, res.decision.Amount)
				var invalid *game.InvalidActionError
				if errors.As(err, &invalid) {
					c.logger.Warn("decision rejected", "seat", seat, "reason", invalid.Reason)
					request()
					continue
				}
				cancel()
				timer.Stop()
				return err

			case <-timedOut:
				cancel()
				c.logger.Warn("decision timeout", "seat", seat, "timeout", c.timeout)
				return c.autoAct(seat)

			case cmd := <-c.cmds:
				c.handle(cmd)
				if c.paused {
					cancel()
					timer.Stop()
					if err := c.waitResume(ctx); err != nil {
						return err
					}
					continue restart
				}
			}
		}
	}
}

// autoAct plays the timed-out seat's forced action: check when legal,
// fold otherwise. A timeout is normal play, not an error.
func (c *Coordinator) autoAct(seat int) error {
	act := game.ActionFold
	for _, va := range c.engine.SeatView(seat).Valid {
		if va.Type == game.ActionCheck {
			act = game.ActionCheck
		}
	}
	c.logger.Info("auto action for timed out seat", "seat", seat, "action", act)
	return c.engine.ApplyAction(seat, act, 0)
}

// waitResume parks the tournament until a resume command arrives
func (c *Coordinator) waitResume(ctx context.Context) error {
	if err := c.engine.Pause(); err != nil {
		return err
	}
	c.broadcast()
	for c.paused {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-c.cmds:
			c.handle(cmd)
		}
	}
	if err := c.engine.Resume(); err != nil {
		return err
	}
	c.broadcast()
	return nil
}

func (c *Coordinator) handle(cmd command) {
	switch cmd.kind {
	case cmdPause:
		if c.paused {
			cmd.reply <- reply{err: errors.New("already paused")}
			return
		}
		c.paused = true
		cmd.reply <- reply{}
	case cmdResume:
		if !c.paused {
			cmd.reply <- reply{err: errors.New("not paused")}
			return
		}
		c.paused = false
		cmd.reply <- reply{}
	case cmdSnapshot:
		cmd.reply <- reply{snapshot: c.engine.Snapshot()}
	case cmdStandings:
		cmd.reply <- reply{standings: c.engine.Standings()}
	}
}

func (c *Coordinator) broadcast() {
	if c.snaps != nil {
		c.snaps.Broadcast(c.engine.Snapshot())
	}
}

func (c *Coordinator) flushRecord() {
	rec, ok := c.engine.LastRecord()
	if !ok || rec.HandNumber <= c.lastWritten {
		return
	}
	c.lastWritten = rec.HandNumber
	if c.records == nil {
		return
	}
	if err := c.records.WriteRecord(rec); err != nil {
		c.logger.Error("writing hand record", "hand", rec.HandNumber, "err", err)
	}
}

func (c *Coordinator) send(kind cmdKind) reply {
	cmd := command{kind: kind, reply: make(chan reply, 1)}
	select {
	case c.cmds <- cmd:
		select {
		case r := <-cmd.reply:
			return r
		case <-c.done:
			return reply{err: ErrStopped}
		}
	case <-c.done:
		return reply{err: ErrStopped}
	}
}

// Pause freezes the tournament at the next safe point
func (c *Coordinator) Pause() error {
	return c.send(cmdPause).err
}

// Resume continues a paused tournament with a fresh decision timer
func (c *Coordinator) Resume() error {
	return c.send(cmdResume).err
}

// Snapshot returns the current full game state
func (c *Coordinator) Snapshot() (game.Snapshot, error) {
	r := c.send(cmdSnapshot)
	return r.snapshot, r.err
}

// Standings returns the current leaderboard
func (c *Coordinator) Standings() ([]game.Standing, error) {
	r := c.send(cmdStandings)
	return r.standings, r.err
}

// Submit routes a decision to a human seat. Out-of-turn submissions
// wait in the seat's one-slot buffer until the seat next holds the
// action.
func (c *Coordinator) Submit(seat int, d Decision) error {
	source, ok := c.sources[seat]
	if !ok {
		return fmt.Errorf("no seat %d", seat)
	}
	human, ok := source.(*HumanSource)
	if !ok {
		return fmt.Errorf("seat %d is automated", seat)
	}
	if !human.Submit(d) {
		return fmt.Errorf("seat %d already has a decision pending", seat)
	}
	return nil
}
