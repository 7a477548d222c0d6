package game

import "github.com/tablestakes/sitngo/internal/deck"

// PlayerView is one seat's state inside a snapshot
type PlayerView struct {
	Seat             int         `json:"seat"`
	Name             string      `json:"name"`
	Chips            int         `json:"chips"`
	CurrentBet       int         `json:"current_bet"`
	TotalContributed int         `json:"total_contributed"`
	Folded           bool        `json:"folded"`
	AllIn            bool        `json:"all_in"`
	Eliminated       bool        `json:"eliminated"`
	HoleCards        []deck.Card `json:"hole_cards,omitempty"`
}

// Snapshot is a complete copy of the observable game state. Snapshots
// are values: mutating one never touches the engine. Sequence increases
// strictly within a hand and resets when a new hand starts, so a
// consumer holding two snapshots of the same hand can order them.
type Snapshot struct {
	Sequence     int          `json:"sequence"`
	HandNumber   int          `json:"hand_number"`
	Status       Status       `json:"status"`
	Phase        Phase        `json:"phase"`
	Dealer       int          `json:"dealer"`
	SmallBlind   int          `json:"small_blind"`
	BigBlind     int          `json:"big_blind"`
	BlindLevel   int          `json:"blind_level"`
	Community    []deck.Card  `json:"community"`
	Pot          int          `json:"pot"`
	BetToMatch   int          `json:"bet_to_match"`
	MinRaiseTo   int          `json:"min_raise_to"`
	CurrentActor int          `json:"current_actor"`
	Players      []PlayerView `json:"players"`
}

// Redacted returns a copy with every other seat's hole cards removed
func (s Snapshot) Redacted(seat int) Snapshot {
	out := s
	out.Community = append([]deck.Card(nil), s.Community...)
	out.Players = make([]PlayerView, len(s.Players))
	copy(out.Players, s.Players)
	for i := range out.Players {
		if out.Players[i].Seat != seat {
			out.Players[i].HoleCards = nil
		} else {
			out.Players[i].HoleCards = append([]deck.Card(nil), out.Players[i].HoleCards...)
		}
	}
	return out
}

// SeatView is the redacted state handed to a decision source: the seat
// sees its own hole cards, everyone else's stacks and bets, and the
// actions it may legally take right now.
type SeatView struct {
	Snapshot
	Seat      int           `json:"seat"`
	HoleCards []deck.Card   `json:"hole_cards"`
	Valid     []ValidAction `json:"valid_actions,omitempty"`
}
