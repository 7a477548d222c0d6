package game

import (
	"math/rand"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tablestakes/sitngo/internal/deck"
)

// Status is the tournament lifecycle state
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
)

// Phase is the per-hand state machine position
type Phase string

const (
	PhaseBetweenHands Phase = "between_hands"
	PhasePreFlop      Phase = "pre_flop"
	PhaseFlop         Phase = "flop"
	PhaseTurn         Phase = "turn"
	PhaseRiver        Phase = "river"
	PhaseShowdown     Phase = "showdown"
	PhaseCompleted    Phase = "completed"
)

// Standing is one row of the tournament leaderboard
type Standing struct {
	Position   int    `json:"position"`
	Seat       int    `json:"seat"`
	Name       string `json:"name"`
	Chips      int    `json:"chips"`
	Eliminated bool   `json:"eliminated"`
}

// Stats are running tournament counters
type Stats struct {
	HandsPlayed int `json:"hands_played"`
	Showdowns   int `json:"showdowns"`
	FoldWins    int `json:"fold_wins"`
	Actions     int `json:"actions"`
	BiggestPot  int `json:"biggest_pot"`
}

// Engine runs a single-table sit-and-go tournament. It is a pure state
// machine: it performs no I/O beyond logging and event publication, and
// it is not safe for concurrent use. The coordinator serializes access.
//
// Chip conservation is self-checked after every action and every hand.
// A failed check returns an InvariantError and moves the tournament to
// StatusAborted; play cannot continue from a corrupt state.
type Engine struct {
	players []*Player
	turns   *TurnManager
	blinds  *BlindManager
	betting *BettingRound
	deck    *deck.Deck

	rng    *rand.Rand
	eval   Evaluator
	logger *log.Logger
	bus    EventBus

	status Status
	phase  Phase

	handNumber   int
	handStarted  time.Time
	community    []deck.Card
	actions      []Action
	seq          int
	snapSeq      int
	currentActor int
	sbSeat       int
	bbSeat       int

	stacksAtHandStart []int
	lastPots          []Pot
	payouts           map[int]int
	results           []ShowdownResult

	eliminationOrder []int
	history          []HandRecord
	stats            Stats
}

// NewEngine seats the named players with equal starting stacks and
// returns an active tournament between hands.
func NewEngine(names []string, startingChips int, eval Evaluator, opts ...Option) (*Engine, error) {
	if len(names) < 2 {
		return nil, invalidActionf("need at least 2 players, got %d", len(names))
	}
	if len(names) > 10 {
		return nil, invalidActionf("at most 10 players fit a table, got %d", len(names))
	}
	if startingChips <= 0 {
		return nil, invalidActionf("starting chips must be positive, got %d", startingChips)
	}
	if eval == nil {
		return nil, invalidActionf("evaluator is required")
	}

	e := &Engine{
		turns:        NewTurnManager(len(names)),
		eval:         eval,
		status:       StatusActive,
		phase:        PhaseBetweenHands,
		currentActor: -1,
	}
	for i, name := range names {
		e.players = append(e.players, &Player{SeatIndex: i, Name: name, Chips: startingChips})
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.blinds == nil {
		e.blinds = NewBlindManager(nil, 0)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.logger == nil {
		e.logger = log.Default().WithPrefix("engine")
	}
	if e.bus == nil {
		e.bus = NewEventBus()
	}

	return e, nil
}

// Status returns the tournament lifecycle state
func (e *Engine) Status() Status { return e.status }

// Phase returns the per-hand state machine position
func (e *Engine) Phase() Phase { return e.phase }

// HandNumber returns the 1-based number of the current or last hand
func (e *Engine) HandNumber() int { return e.handNumber }

// CurrentActor returns the seat with a pending decision, or -1
func (e *Engine) CurrentActor() int { return e.currentActor }

// Community returns a copy of the board
func (e *Engine) Community() []deck.Card {
	return append([]deck.Card(nil), e.community...)
}

// NumSeats returns the table size
func (e *Engine) NumSeats() int { return len(e.players) }

// Events returns the engine's event bus for subscription
func (e *Engine) Events() EventBus { return e.bus }

// Stats returns the running tournament counters
func (e *Engine) Stats() Stats { return e.stats }

// History returns the records of all completed hands
func (e *Engine) History() []HandRecord {
	return append([]HandRecord(nil), e.history...)
}

// LastRecord returns the record of the most recently completed hand
func (e *Engine) LastRecord() (HandRecord, bool) {
	if len(e.history) == 0 {
		return HandRecord{}, false
	}
	return e.history[len(e.history)-1], true
}

// Pause freezes the tournament between actions. No hand state mutates.
func (e *Engine) Pause() error {
	if e.status != StatusActive {
		return invalidActionf("cannot pause a %s tournament", e.status)
	}
	e.status = StatusPaused
	e.logger.Info("tournament paused", "hand", e.handNumber)
	return nil
}

// Resume reactivates a paused tournament
func (e *Engine) Resume() error {
	if e.status != StatusPaused {
		return invalidActionf("cannot resume a %s tournament", e.status)
	}
	e.status = StatusActive
	e.logger.Info("tournament resumed", "hand", e.handNumber)
	return nil
}

// StartHand deals the next hand: moves the button, posts blinds, deals
// hole cards, and opens pre-flop betting. If the blinds put every live
// player all-in the board runs out immediately.
func (e *Engine) StartHand() error {
	if e.status != StatusActive {
		return invalidActionf("tournament is %s", e.status)
	}
	if e.phase != PhaseBetweenHands {
		return invalidActionf("hand %d still in progress", e.handNumber)
	}
	if e.liveCount() < 2 {
		return invalidActionf("need 2 live players to deal, have %d", e.liveCount())
	}

	e.handNumber++
	e.handStarted = time.Now()
	e.seq = 0
	e.snapSeq = 0
	e.community = nil
	e.actions = nil
	e.payouts = nil
	e.results = nil
	e.lastPots = nil
	for _, p := range e.players {
		if !p.Eliminated {
			p.resetForHand()
		}
	}

	e.stacksAtHandStart = make([]int, len(e.players))
	for i, p := range e.players {
		e.stacksAtHandStart[i] = p.Chips
	}

	dealer := e.turns.AdvanceDealer(e.players)
	e.betting = NewBettingRound(e.blinds.Big())
	e.sbSeat, e.bbSeat = e.turns.BlindSeats(e.players)

	posted := e.betting.PostBlind(e.players[e.sbSeat], e.blinds.Small())
	e.recordAction(e.sbSeat, ActionPostBlind, posted)
	posted = e.betting.PostBlind(e.players[e.bbSeat], e.blinds.Big())
	e.recordAction(e.bbSeat, ActionPostBlind, posted)

	e.deck = deck.New(e.rng)
	e.deck.Shuffle()
	order := e.dealOrder(dealer)
	for pass := 0; pass < 2; pass++ {
		for _, seat := range order {
			card, err := e.deck.DealOne()
			if err != nil {
				return e.abort(invariantf("dealing hole cards: %v", err))
			}
			e.players[seat].HoleCards = append(e.players[seat].HoleCards, card)
		}
	}

	e.phase = PhasePreFlop
	e.logger.Info("hand started",
		"hand", e.handNumber,
		"dealer", dealer,
		"sb", e.blinds.Small(),
		"bb", e.blinds.Big(),
		"players", e.liveCount())

	stacks := map[int]int{}
	for _, p := range e.players {
		if !p.Eliminated {
			stacks[p.SeatIndex] = p.Chips
		}
	}
	e.bus.Publish(HandStartEvent{
		HandNumber: e.handNumber,
		Dealer:     dealer,
		SmallBlind: e.blinds.Small(),
		BigBlind:   e.blinds.Big(),
		Stacks:     stacks,
		timestamp:  time.Now(),
	})

	e.currentActor = e.turns.FirstToAct(e.players, true)
	if e.currentActor < 0 {
		// Blinds left nobody with a decision
		return e.advanceStreets()
	}
	return nil
}

// ApplyAction applies one action from the current actor and advances
// the hand: moves the turn, closes the street, or finishes the hand.
// An InvalidActionError leaves all state untouched.
func (e *Engine) ApplyAction(seat int, t ActionType, amount int) error {
	if e.status != StatusActive {
		return invalidActionf("tournament is %s", e.status)
	}
	switch e.phase {
	case PhasePreFlop, PhaseFlop, PhaseTurn, PhaseRiver:
	default:
		return invalidActionf("no betting in phase %s", e.phase)
	}
	if seat != e.currentActor {
		return invalidActionf("seat %d acted out of turn, waiting on seat %d", seat, e.currentActor)
	}

	p := e.players[seat]
	wasAllIn := p.AllIn
	moved, err := e.betting.Apply(e.players, p, t, amount)
	if err != nil {
		return err
	}

	act := e.recordAction(seat, t, moved)
	e.stats.Actions++
	e.logger.Debug("action applied", "hand", e.handNumber, "seat", seat, "action", t, "amount", moved)
	e.bus.Publish(PlayerActionEvent{Seat: seat, Action: act, PotAfter: e.potTotal(), timestamp: time.Now()})
	if p.AllIn && !wasAllIn {
		e.bus.Publish(AllInEvent{Seat: seat, timestamp: time.Now()})
	}

	if err := e.verifyHandStacks(); err != nil {
		return e.abort(err)
	}
	return e.progress(seat)
}

// progress decides what follows a successful action
func (e *Engine) progress(seat int) error {
	if e.inHandCount() <= 1 {
		return e.finishHand(true)
	}
	if e.betting.Complete(e.players) {
		e.currentActor = -1
		return e.advanceStreets()
	}
	e.currentActor = e.turns.NextActor(e.players, seat)
	if e.currentActor < 0 {
		return e.abort(invariantf("betting open on %s with nobody to act", e.phase))
	}
	return nil
}

// advanceStreets deals community cards until somebody has a decision or
// the hand reaches showdown. Consecutive streets run out back to back
// when all remaining players are all-in.
func (e *Engine) advanceStreets() error {
	for {
		var deal int
		var next Phase
		switch e.phase {
		case PhasePreFlop:
			deal, next = 3, PhaseFlop
		case PhaseFlop:
			deal, next = 1, PhaseTurn
		case PhaseTurn:
			deal, next = 1, PhaseRiver
		case PhaseRiver:
			return e.finishHand(false)
		default:
			return e.abort(invariantf("cannot advance from phase %s", e.phase))
		}

		cards, err := e.deck.Deal(deal)
		if err != nil {
			return e.abort(invariantf("dealing %s: %v", next, err))
		}
		e.community = append(e.community, cards...)
		e.phase = next

		e.betting.Reset()
		for _, p := range e.players {
			if !p.Eliminated {
				p.resetForStreet()
			}
		}

		e.logger.Debug("street dealt", "hand", e.handNumber, "phase", e.phase, "board", e.community)
		e.bus.Publish(StreetChangeEvent{
			Phase:     e.phase,
			Community: append([]deck.Card(nil), e.community...),
			timestamp: time.Now(),
		})

		if actor := e.turns.FirstToAct(e.players, false); actor >= 0 {
			e.currentActor = actor
			return nil
		}
	}
}

// finishHand settles the pots, applies payouts, eliminates busted
// players, records the hand, and either queues the next hand or ends
// the tournament.
func (e *Engine) finishHand(foldOut bool) error {
	e.currentActor = -1

	pots, err := ComputePots(e.players)
	if err != nil {
		return e.abort(err)
	}
	e.lastPots = pots

	var payouts map[int]int
	var results []ShowdownResult

	if foldOut {
		var sole *Player
		for _, p := range e.players {
			if p.InHand() {
				sole = p
			}
		}
		if sole == nil {
			return e.abort(invariantf("fold-out with no live player"))
		}
		// Uncalled excess returns with the rest of the pots
		payouts = AwardAll(pots, sole.SeatIndex)
		e.stats.FoldWins++
		e.logger.Info("hand won uncontested", "hand", e.handNumber, "seat", sole.SeatIndex, "pot", e.potTotal())
	} else {
		e.phase = PhaseShowdown
		scores := map[int]HandScore{}
		for _, p := range e.players {
			if !p.InHand() {
				continue
			}
			score, serr := e.eval.Score(p.HoleCards, e.community)
			if serr != nil {
				return e.abort(invariantf("scoring seat %d: %v", p.SeatIndex, serr))
			}
			scores[p.SeatIndex] = score
			results = append(results, ShowdownResult{
				Seat:        p.SeatIndex,
				HoleCards:   append([]deck.Card(nil), p.HoleCards...),
				Rank:        score.Rank,
				Description: score.Description,
			})
		}

		payouts, err = DistributePots(pots, scores, e.turns.Dealer(), len(e.players))
		if err != nil {
			return e.abort(err)
		}
		e.stats.Showdowns++
		e.bus.Publish(ShowdownEvent{HandNumber: e.handNumber, Results: results, timestamp: time.Now()})
		e.logger.Info("showdown", "hand", e.handNumber, "board", e.community, "payouts", payouts)
	}

	if pot := e.potTotal(); pot > e.stats.BiggestPot {
		e.stats.BiggestPot = pot
	}

	for seat, amount := range payouts {
		e.players[seat].Chips += amount
	}
	e.payouts = payouts
	e.results = results

	e.eliminateBusted()

	holeCards := map[int][]deck.Card{}
	for _, p := range e.players {
		if len(p.HoleCards) > 0 {
			holeCards[p.SeatIndex] = append([]deck.Card(nil), p.HoleCards...)
		}
	}
	finalStacks := make([]int, len(e.players))
	for i, p := range e.players {
		finalStacks[i] = p.Chips
	}
	e.history = append(e.history, HandRecord{
		HandNumber:     e.handNumber,
		StartedAt:      e.handStarted,
		Dealer:         e.turns.Dealer(),
		SmallBlind:     e.blinds.Small(),
		BigBlind:       e.blinds.Big(),
		StartingStacks: append([]int(nil), e.stacksAtHandStart...),
		Actions:        append([]Action(nil), e.actions...),
		Board:          append([]deck.Card(nil), e.community...),
		HoleCards:      holeCards,
		FoldOut:        foldOut,
		Pots:           pots,
		Payouts:        payouts,
		Results:        results,
		FinalStacks:    finalStacks,
	})

	e.stats.HandsPlayed++
	if e.blinds.HandComplete() {
		e.logger.Info("blinds up", "level", e.blinds.Level(), "sb", e.blinds.Small(), "bb", e.blinds.Big())
		e.bus.Publish(BlindsUpEvent{
			Level:      e.blinds.Level(),
			SmallBlind: e.blinds.Small(),
			BigBlind:   e.blinds.Big(),
			timestamp:  time.Now(),
		})
	}
	e.bus.Publish(HandEndEvent{HandNumber: e.handNumber, FoldOut: foldOut, Payouts: payouts, timestamp: time.Now()})

	if err := e.verifyTotal(); err != nil {
		return e.abort(err)
	}

	if e.liveCount() == 1 {
		var winner *Player
		for _, p := range e.players {
			if !p.Eliminated {
				winner = p
			}
		}
		winner.FinishPosition = 1
		e.status = StatusCompleted
		e.phase = PhaseCompleted
		e.logger.Info("tournament complete", "winner", winner.Name, "hands", e.stats.HandsPlayed)
		e.bus.Publish(TournamentEndEvent{Winner: winner.SeatIndex, Standings: e.Standings(), timestamp: time.Now()})
	} else {
		e.phase = PhaseBetweenHands
	}
	return nil
}

// eliminateBusted marks zero-chip players out. Players busting on the
// same hand finish in order of their stack at hand start, the shorter
// stack taking the lower position.
func (e *Engine) eliminateBusted() {
	var busted []*Player
	for _, p := range e.players {
		if !p.Eliminated && p.Chips == 0 {
			busted = append(busted, p)
		}
	}
	sort.Slice(busted, func(i, j int) bool {
		si := e.stacksAtHandStart[busted[i].SeatIndex]
		sj := e.stacksAtHandStart[busted[j].SeatIndex]
		if si != sj {
			return si < sj
		}
		return busted[i].SeatIndex < busted[j].SeatIndex
	})
	for _, p := range busted {
		p.Eliminated = true
		e.eliminationOrder = append(e.eliminationOrder, p.SeatIndex)
		p.FinishPosition = len(e.players) - len(e.eliminationOrder) + 1
		e.logger.Info("player eliminated", "seat", p.SeatIndex, "name", p.Name, "position", p.FinishPosition)
		e.bus.Publish(EliminationEvent{Seat: p.SeatIndex, Position: p.FinishPosition, timestamp: time.Now()})
	}
}

// Standings returns the leaderboard: live players by chip count, then
// eliminated players by finish position.
func (e *Engine) Standings() []Standing {
	var live []*Player
	for _, p := range e.players {
		if !p.Eliminated {
			live = append(live, p)
		}
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].Chips != live[j].Chips {
			return live[i].Chips > live[j].Chips
		}
		return live[i].SeatIndex < live[j].SeatIndex
	})

	standings := make([]Standing, 0, len(e.players))
	for i, p := range live {
		standings = append(standings, Standing{
			Position: i + 1,
			Seat:     p.SeatIndex,
			Name:     p.Name,
			Chips:    p.Chips,
		})
	}
	for i := len(e.eliminationOrder) - 1; i >= 0; i-- {
		p := e.players[e.eliminationOrder[i]]
		standings = append(standings, Standing{
			Position:   p.FinishPosition,
			Seat:       p.SeatIndex,
			Name:       p.Name,
			Chips:      0,
			Eliminated: true,
		})
	}
	return standings
}

// Snapshot returns the full observable state with a fresh sequence
// number. Intended for broadcast sinks.
func (e *Engine) Snapshot() Snapshot {
	return e.buildSnapshot(true)
}

// SeatView returns the redacted state for one seat, with the legal
// actions when that seat is the current actor.
func (e *Engine) SeatView(seat int) SeatView {
	view := SeatView{
		Snapshot: e.buildSnapshot(false).Redacted(seat),
		Seat:     seat,
	}
	p := e.players[seat]
	view.HoleCards = append([]deck.Card(nil), p.HoleCards...)
	if e.betting != nil && seat == e.currentActor {
		view.Valid = e.betting.ValidActions(p)
	}
	return view
}

func (e *Engine) buildSnapshot(bump bool) Snapshot {
	if bump {
		e.snapSeq++
	}
	s := Snapshot{
		Sequence:     e.snapSeq,
		HandNumber:   e.handNumber,
		Status:       e.status,
		Phase:        e.phase,
		Dealer:       e.turns.Dealer(),
		SmallBlind:   e.blinds.Small(),
		BigBlind:     e.blinds.Big(),
		BlindLevel:   e.blinds.Level(),
		Community:    append([]deck.Card(nil), e.community...),
		Pot:          e.potTotal(),
		CurrentActor: e.currentActor,
	}
	if e.betting != nil {
		s.BetToMatch = e.betting.BetToMatch
		s.MinRaiseTo = e.betting.BetToMatch + e.betting.MinRaise
	}
	for _, p := range e.players {
		s.Players = append(s.Players, PlayerView{
			Seat:             p.SeatIndex,
			Name:             p.Name,
			Chips:            p.Chips,
			CurrentBet:       p.CurrentBet,
			TotalContributed: p.TotalContributed,
			Folded:           p.Folded,
			AllIn:            p.AllIn,
			Eliminated:       p.Eliminated,
			HoleCards:        append([]deck.Card(nil), p.HoleCards...),
		})
	}
	return s
}

// dealOrder returns the live seats starting left of the dealer
func (e *Engine) dealOrder(dealer int) []int {
	var order []int
	for i := 1; i <= len(e.players); i++ {
		seat := (dealer + i) % len(e.players)
		if !e.players[seat].Eliminated {
			order = append(order, seat)
		}
	}
	return order
}

func (e *Engine) recordAction(seat int, t ActionType, amount int) Action {
	act := Action{Seat: seat, Type: t, Amount: amount, Sequence: e.seq}
	e.seq++
	e.actions = append(e.actions, act)
	return act
}

func (e *Engine) potTotal() int {
	total := 0
	for _, p := range e.players {
		total += p.TotalContributed
	}
	return total
}

func (e *Engine) liveCount() int {
	n := 0
	for _, p := range e.players {
		if !p.Eliminated {
			n++
		}
	}
	return n
}

func (e *Engine) inHandCount() int {
	n := 0
	for _, p := range e.players {
		if p.InHand() {
			n++
		}
	}
	return n
}

// verifyHandStacks checks per-player chip conservation mid-hand: stack
// plus contribution must equal the stack at hand start.
func (e *Engine) verifyHandStacks() error {
	for i, p := range e.players {
		if p.Chips < 0 {
			return invariantf("seat %d has negative stack %d", i, p.Chips)
		}
		if p.Chips+p.TotalContributed != e.stacksAtHandStart[i] {
			return invariantf("seat %d holds %d+%d chips, started hand with %d",
				i, p.Chips, p.TotalContributed, e.stacksAtHandStart[i])
		}
	}
	return nil
}

// verifyTotal checks table-wide chip conservation after payouts
func (e *Engine) verifyTotal() error {
	have, want := 0, 0
	for i, p := range e.players {
		have += p.Chips
		want += e.stacksAtHandStart[i]
	}
	if have != want {
		return invariantf("table holds %d chips after hand %d, expected %d", have, e.handNumber, want)
	}
	return nil
}

// abort moves the tournament to the terminal aborted state
func (e *Engine) abort(err error) error {
	e.status = StatusAborted
	e.currentActor = -1
	e.logger.Error("tournament aborted", "hand", e.handNumber, "err", err)
	return err
}
