package coordinator

import (
	"context"
	"math/rand"

	"github.com/tablestakes/sitngo/internal/game"
)

// Decision is one player's answer to a pending action request
type Decision struct {
	Type   game.ActionType
	Amount int
}

// DecisionSource produces a decision for a seat when the coordinator
// asks for one. Human and automated players implement the same
// contract, so the coordinator never distinguishes them.
//
// Decide blocks until a decision is available or ctx is cancelled. The
// coordinator cancels ctx on timeout and pause; a source must not hold
// resources past cancellation.
type DecisionSource interface {
	Decide(ctx context.Context, view game.SeatView) (Decision, error)
}

// HumanSource bridges an external connection to the decision contract.
// Submissions arrive asynchronously via Submit; the single-slot buffer
// lets a decision submitted during a pause survive until the next
// Decide call.
type HumanSource struct {
	decisions chan Decision
}

// NewHumanSource creates a source fed by Submit
func NewHumanSource() *HumanSource {
	return &HumanSource{decisions: make(chan Decision, 1)}
}

// Submit hands in a decision. It never blocks: with a decision already
// pending the new one is dropped and Submit reports false.
func (s *HumanSource) Submit(d Decision) bool {
	select {
	case s.decisions <- d:
		return true
	default:
		return false
	}
}

// Decide waits for a submitted decision
func (s *HumanSource) Decide(ctx context.Context, view game.SeatView) (Decision, error) {
	select {
	case d := <-s.decisions:
		if ctx.Err() != nil {
			// Cancelled while the submission raced in. Keep it for
			// the next request instead of losing it.
			select {
			case s.decisions <- d:
			default:
			}
			return Decision{}, ctx.Err()
		}
		return d, nil
	case <-ctx.Done():
		return Decision{}, ctx.Err()
	}
}

// CallingSource is an automated player that always checks when it can
// and calls when it cannot. Useful for simulations and load tests.
type CallingSource struct{}

// Decide checks or calls
func (CallingSource) Decide(ctx context.Context, view game.SeatView) (Decision, error) {
	for _, va := range view.Valid {
		if va.Type == game.ActionCheck {
			return Decision{Type: game.ActionCheck}, nil
		}
	}
	for _, va := range view.Valid {
		if va.Type == game.ActionCall {
			return Decision{Type: game.ActionCall}, nil
		}
	}
	return Decision{Type: game.ActionFold}, nil
}

// RandomSource is an automated player that picks uniformly among its
// legal actions, raising to the minimum when it raises.
type RandomSource struct {
	Rng *rand.Rand
}

// Decide picks a random legal action
func (s *RandomSource) Decide(ctx context.Context, view game.SeatView) (Decision, error) {
	if len(view.Valid) == 0 {
		return Decision{Type: game.ActionFold}, nil
	}
	va := view.Valid[s.Rng.Intn(len(view.Valid))]
	d := Decision{Type: va.Type}
	if va.Type == game.ActionRaise {
		d.Amount = va.MinRaiseTo
	}
	return d, nil
}
