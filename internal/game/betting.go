package game

// BettingRound tracks the betting state of one street. BetToMatch and
// MinRaise reset at each street; MinRaise starts at the big blind.
//
// The all-in raise rule follows standard no-limit play: a raise below
// the minimum is only legal as an all-in, it moves BetToMatch but does
// not update MinRaise and does not reopen action for players who have
// already acted.
type BettingRound struct {
	BetToMatch int
	MinRaise   int

	bigBlind int
}

// NewBettingRound starts a fresh pre-flop betting round
func NewBettingRound(bigBlind int) *BettingRound {
	return &BettingRound{MinRaise: bigBlind, bigBlind: bigBlind}
}

// Reset prepares the round for the next street
func (br *BettingRound) Reset() {
	br.BetToMatch = 0
	br.MinRaise = br.bigBlind
}

// PostBlind commits a blind for the player, going all-in when the stack
// is short. The nominal blind drives BetToMatch even when posted short.
// Posting does not count as acting, which preserves the big blind's
// option to raise. Returns the chips actually posted.
func (br *BettingRound) PostBlind(p *Player, blind int) int {
	posted := min(blind, p.Chips)
	p.commit(posted)
	if blind > br.BetToMatch {
		br.BetToMatch = blind
	}
	return posted
}

// Validate checks an action against the current state without mutating
// anything. For raises, amount is the total bet the raiser moves to,
// not the increment.
func (br *BettingRound) Validate(p *Player, t ActionType, amount int) error {
	if !p.CanAct() {
		return invalidActionf("seat %d cannot act", p.SeatIndex)
	}

	switch t {
	case ActionFold:
		return nil

	case ActionCheck:
		if p.CurrentBet != br.BetToMatch {
			return invalidActionf("cannot check facing a bet of %d", br.BetToMatch)
		}
		return nil

	case ActionCall:
		if p.CurrentBet >= br.BetToMatch {
			return invalidActionf("nothing to call")
		}
		return nil

	case ActionRaise:
		allInTo := p.CurrentBet + p.Chips
		if amount <= br.BetToMatch {
			return invalidActionf("raise to %d does not exceed bet of %d", amount, br.BetToMatch)
		}
		if amount > allInTo {
			return invalidActionf("raise to %d exceeds stack", amount)
		}
		if amount < br.BetToMatch+br.MinRaise && amount != allInTo {
			return invalidActionf("raise to %d below minimum raise to %d", amount, br.BetToMatch+br.MinRaise)
		}
		return nil

	default:
		return invalidActionf("unknown action %q", t)
	}
}

// Apply validates and applies an action, returning the chips moved.
// A full raise reopens action for every other live player; an all-in
// raise below the full minimum does not.
func (br *BettingRound) Apply(players []*Player, p *Player, t ActionType, amount int) (int, error) {
	if err := br.Validate(p, t, amount); err != nil {
		return 0, err
	}

	moved := 0
	switch t {
	case ActionFold:
		p.Folded = true

	case ActionCheck:

	case ActionCall:
		moved = min(br.BetToMatch-p.CurrentBet, p.Chips)
		p.commit(moved)

	case ActionRaise:
		fullRaise := amount >= br.BetToMatch+br.MinRaise
		moved = amount - p.CurrentBet
		p.commit(moved)
		if fullRaise {
			br.MinRaise = amount - br.BetToMatch
			for _, o := range players {
				if o != p && o.CanAct() {
					o.HasActed = false
				}
			}
		}
		br.BetToMatch = amount
	}

	p.HasActed = true
	return moved, nil
}

// Complete reports whether the street's betting is settled: every
// player who can still act has acted and matches the bet.
func (br *BettingRound) Complete(players []*Player) bool {
	for _, p := range players {
		if !p.CanAct() {
			continue
		}
		if !p.HasActed || p.CurrentBet != br.BetToMatch {
			return false
		}
	}
	return true
}

// ValidAction describes one legal action for the current actor, with
// the chip amounts a caller needs to take it.
type ValidAction struct {
	Type       ActionType `json:"type"`
	CallAmount int        `json:"call_amount,omitempty"`
	MinRaiseTo int        `json:"min_raise_to,omitempty"`
	MaxRaiseTo int        `json:"max_raise_to,omitempty"`
}

// ValidActions enumerates the legal actions for a player
func (br *BettingRound) ValidActions(p *Player) []ValidAction {
	if !p.CanAct() {
		return nil
	}

	actions := []ValidAction{{Type: ActionFold}}

	if p.CurrentBet == br.BetToMatch {
		actions = append(actions, ValidAction{Type: ActionCheck})
	} else {
		actions = append(actions, ValidAction{
			Type:       ActionCall,
			CallAmount: min(br.BetToMatch-p.CurrentBet, p.Chips),
		})
	}

	if allInTo := p.CurrentBet + p.Chips; allInTo > br.BetToMatch {
		actions = append(actions, ValidAction{
			Type:       ActionRaise,
			MinRaiseTo: min(br.BetToMatch+br.MinRaise, allInTo),
			MaxRaiseTo: allInTo,
		})
	}

	return actions
}
