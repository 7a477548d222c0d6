package game

import "github.com/tablestakes/sitngo/internal/deck"

// Player is a tournament seat. SeatIndex is fixed for the whole
// tournament; per-hand fields are reset by the engine at hand start.
type Player struct {
	SeatIndex int
	Name      string
	Chips     int

	HoleCards []deck.Card

	// Per-street betting state
	CurrentBet int
	HasActed   bool

	// Per-hand state
	TotalContributed int
	Folded           bool
	AllIn            bool

	Eliminated     bool
	FinishPosition int
}

// InHand reports whether the player still contests the current hand
func (p *Player) InHand() bool {
	return !p.Eliminated && !p.Folded && len(p.HoleCards) > 0
}

// CanAct reports whether the player has a pending decision to make this
// hand. All-in players are live but never act again.
func (p *Player) CanAct() bool {
	return p.InHand() && !p.AllIn
}

// commit moves n chips from the stack into the current bet. Going to
// zero chips marks the player all-in.
func (p *Player) commit(n int) {
	p.Chips -= n
	p.CurrentBet += n
	p.TotalContributed += n
	if p.Chips == 0 {
		p.AllIn = true
	}
}

// resetForHand clears per-hand state. Eliminated players keep their
// terminal state untouched.
func (p *Player) resetForHand() {
	p.HoleCards = nil
	p.CurrentBet = 0
	p.HasActed = false
	p.TotalContributed = 0
	p.Folded = false
	p.AllIn = false
}

// resetForStreet clears per-street state
func (p *Player) resetForStreet() {
	p.CurrentBet = 0
	p.HasActed = false
}
