package game

import (
	"math/rand"

	"github.com/charmbracelet/log"
)

// Option configures an Engine during creation
type Option func(*Engine)

// WithRNG injects the deal RNG. Fixed seeds give reproducible
// tournaments; the default is time-seeded.
func WithRNG(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithLogger sets the engine's logger
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithEventBus sets the event bus the engine publishes to
func WithEventBus(bus EventBus) Option {
	return func(e *Engine) { e.bus = bus }
}

// WithBlindSchedule replaces the default escalation schedule
func WithBlindSchedule(levels []BlindLevel, handsPerLevel int) Option {
	return func(e *Engine) { e.blinds = NewBlindManager(levels, handsPerLevel) }
}

// WithStacks sets per-seat starting stacks instead of uniform ones.
// Counts must match the number of players; extra entries are ignored.
func WithStacks(stacks []int) Option {
	return func(e *Engine) {
		for i, p := range e.players {
			if i < len(stacks) {
				p.Chips = stacks[i]
			}
		}
	}
}
