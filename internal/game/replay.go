package game

import "reflect"

// ReplayResult is the outcome of re-running a recorded hand
type ReplayResult struct {
	Pots    []Pot
	Payouts map[int]int
	Stacks  []int
}

// ReplayHand re-runs a hand record through the betting rules from its
// starting stacks. Records are deterministic: replaying a valid record
// reproduces the same pots, payouts, and final stacks the live hand
// produced.
func ReplayHand(rec HandRecord, eval Evaluator) (ReplayResult, error) {
	players := make([]*Player, len(rec.StartingStacks))
	for i, chips := range rec.StartingStacks {
		players[i] = &Player{
			SeatIndex:  i,
			Chips:      chips,
			Eliminated: chips == 0,
		}
		if hole, ok := rec.HoleCards[i]; ok {
			players[i].HoleCards = hole
		}
	}

	betting := NewBettingRound(rec.BigBlind)
	blindsPosted := 0
	for _, act := range rec.Actions {
		p := players[act.Seat]

		if act.Type == ActionPostBlind {
			nominal := rec.SmallBlind
			if blindsPosted == 1 {
				nominal = rec.BigBlind
			}
			blindsPosted++
			if posted := betting.PostBlind(p, nominal); posted != act.Amount {
				return ReplayResult{}, invariantf("replay: seat %d posted %d, record says %d",
					act.Seat, posted, act.Amount)
			}
			continue
		}

		amount := 0
		if act.Type == ActionRaise {
			amount = p.CurrentBet + act.Amount
		}
		moved, err := betting.Apply(players, p, act.Type, amount)
		if err != nil {
			return ReplayResult{}, invariantf("replay: action %d: %v", act.Sequence, err)
		}
		if moved != act.Amount {
			return ReplayResult{}, invariantf("replay: action %d moved %d chips, record says %d",
				act.Sequence, moved, act.Amount)
		}

		if inHand(players) <= 1 {
			break
		}
		if betting.Complete(players) {
			betting.Reset()
			for _, q := range players {
				if !q.Eliminated {
					q.resetForStreet()
				}
			}
		}
	}

	pots, err := ComputePots(players)
	if err != nil {
		return ReplayResult{}, err
	}

	var payouts map[int]int
	if rec.FoldOut {
		sole := -1
		for _, p := range players {
			if p.InHand() {
				sole = p.SeatIndex
			}
		}
		if sole < 0 {
			return ReplayResult{}, invariantf("replay: fold-out with no live player")
		}
		payouts = AwardAll(pots, sole)
	} else {
		scores := map[int]HandScore{}
		for _, p := range players {
			if !p.InHand() {
				continue
			}
			score, serr := eval.Score(p.HoleCards, rec.Board)
			if serr != nil {
				return ReplayResult{}, invariantf("replay: scoring seat %d: %v", p.SeatIndex, serr)
			}
			scores[p.SeatIndex] = score
		}
		payouts, err = DistributePots(pots, scores, rec.Dealer, len(players))
		if err != nil {
			return ReplayResult{}, err
		}
	}

	stacks := make([]int, len(players))
	for i, p := range players {
		stacks[i] = p.Chips + payouts[p.SeatIndex]
	}

	return ReplayResult{Pots: pots, Payouts: payouts, Stacks: stacks}, nil
}

// VerifyRecord replays a record and checks it against its own recorded
// outcome.
func VerifyRecord(rec HandRecord, eval Evaluator) error {
	got, err := ReplayHand(rec, eval)
	if err != nil {
		return err
	}
	if !reflect.DeepEqual(got.Pots, rec.Pots) {
		return invariantf("replay pots %v differ from recorded %v", got.Pots, rec.Pots)
	}
	if !reflect.DeepEqual(got.Payouts, rec.Payouts) {
		return invariantf("replay payouts %v differ from recorded %v", got.Payouts, rec.Payouts)
	}
	if !reflect.DeepEqual(got.Stacks, rec.FinalStacks) {
		return invariantf("replay stacks %v differ from recorded %v", got.Stacks, rec.FinalStacks)
	}
	return nil
}

func inHand(players []*Player) int {
	n := 0
	for _, p := range players {
		if p.InHand() {
			n++
		}
	}
	return n
}
