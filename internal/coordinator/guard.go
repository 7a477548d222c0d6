package coordinator

import (
	"errors"
	"sync"
)

// ErrSessionActive is returned when a tournament is already running
var ErrSessionActive = errors.New("a tournament is already running")

// SessionGuard admits at most one running tournament at a time. The
// server holds a process-wide guard so a second start request is
// rejected instead of racing the first.
type SessionGuard struct {
	mu     sync.Mutex
	active bool
}

// NewSessionGuard creates an idle guard
func NewSessionGuard() *SessionGuard {
	return &SessionGuard{}
}

// Acquire claims the session slot
func (g *SessionGuard) Acquire() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active {
		return ErrSessionActive
	}
	g.active = true
	return nil
}

// Release frees the session slot for the next tournament
func (g *SessionGuard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active = false
}
