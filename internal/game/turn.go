package game

// TurnManager owns seat geometry: dealer rotation, blind seats, and who
// acts first on each street. Seats advance clockwise (ascending index,
// wrapping), always skipping eliminated players.
type TurnManager struct {
	numSeats int
	dealer   int
}

// NewTurnManager creates a turn manager. The dealer starts one seat
// before zero so the first advance lands on the first live seat.
func NewTurnManager(numSeats int) *TurnManager {
	return &TurnManager{numSeats: numSeats, dealer: numSeats - 1}
}

// Dealer returns the current dealer button seat
func (tm *TurnManager) Dealer() int {
	return tm.dealer
}

// SetDealer places the button directly, for replays and tests
func (tm *TurnManager) SetDealer(seat int) {
	tm.dealer = seat
}

// AdvanceDealer moves the button to the next live seat and returns it
func (tm *TurnManager) AdvanceDealer(players []*Player) int {
	tm.dealer = tm.nextLiveSeat(players, tm.dealer)
	return tm.dealer
}

// BlindSeats returns the small and big blind seats for the current
// button. Heads-up the dealer posts the small blind; otherwise the
// blinds are the two seats left of the button.
func (tm *TurnManager) BlindSeats(players []*Player) (sb, bb int) {
	live := 0
	for _, p := range players {
		if !p.Eliminated {
			live++
		}
	}
	if live == 2 {
		sb = tm.dealer
		bb = tm.nextLiveSeat(players, sb)
		return sb, bb
	}
	sb = tm.nextLiveSeat(players, tm.dealer)
	bb = tm.nextLiveSeat(players, sb)
	return sb, bb
}

// FirstToAct returns the first seat with a pending decision on a
// street, or -1 when nobody can act. Pre-flop action starts left of the
// big blind, which heads-up puts the dealer first; post-flop it starts
// left of the button.
func (tm *TurnManager) FirstToAct(players []*Player, preflop bool) int {
	from := tm.dealer
	if preflop {
		_, from = tm.BlindSeats(players)
	}
	return tm.NextActor(players, from)
}

// NextActor returns the next seat strictly after from that can act,
// wrapping around the table, or -1 when nobody can.
func (tm *TurnManager) NextActor(players []*Player, from int) int {
	for i := 1; i <= tm.numSeats; i++ {
		seat := (from + i) % tm.numSeats
		if players[seat].CanAct() {
			return seat
		}
	}
	return -1
}

// nextLiveSeat returns the next non-eliminated seat strictly after from.
// Callers guarantee at least one live player remains.
func (tm *TurnManager) nextLiveSeat(players []*Player, from int) int {
	for i := 1; i <= tm.numSeats; i++ {
		seat := (from + i) % tm.numSeats
		if !players[seat].Eliminated {
			return seat
		}
	}
	return from
}
