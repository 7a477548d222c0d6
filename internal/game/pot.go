package game

import "sort"

// Pot is one tier of the hand's chips with the seats eligible to win
// it. The first pot is the main pot; the rest are side pots created by
// all-in players, with strictly shrinking eligibility.
type Pot struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible"`
}

// ComputePots slices every player's total contribution at the distinct
// contribution tiers of the non-folded players. Folded chips fall into
// the pots at their tier, so the pot total always equals the chips
// contributed. Eligibility for a tier requires not folding and
// contributing at least the tier amount.
func ComputePots(players []*Player) ([]Pot, error) {
	tierSet := map[int]bool{}
	total := 0
	for _, p := range players {
		total += p.TotalContributed
		if p.InHand() && p.TotalContributed > 0 {
			tierSet[p.TotalContributed] = true
		}
	}
	if len(tierSet) == 0 {
		return nil, nil
	}

	tiers := make([]int, 0, len(tierSet))
	for t := range tierSet {
		tiers = append(tiers, t)
	}
	sort.Ints(tiers)

	pots := make([]Pot, 0, len(tiers))
	prev := 0
	for _, tier := range tiers {
		pot := Pot{}
		for _, p := range players {
			slice := min(p.TotalContributed, tier) - min(p.TotalContributed, prev)
			pot.Amount += slice
			if p.InHand() && p.TotalContributed >= tier {
				pot.Eligible = append(pot.Eligible, p.SeatIndex)
			}
		}
		if pot.Amount < 0 {
			return nil, invariantf("negative pot at tier %d", tier)
		}
		pots = append(pots, pot)
		prev = tier
	}

	potTotal := 0
	for _, pot := range pots {
		potTotal += pot.Amount
	}
	if potTotal != total {
		return nil, invariantf("pots hold %d chips, players contributed %d", potTotal, total)
	}

	return pots, nil
}

// DistributePots awards every pot to the best eligible hand and returns
// the payout per seat. Split pots divide evenly; odd chips go one at a
// time to winners in seat order clockwise from the dealer button. A pot
// with a single eligible seat is awarded directly without a showdown.
func DistributePots(pots []Pot, scores map[int]HandScore, dealer, numSeats int) (map[int]int, error) {
	payouts := map[int]int{}

	for _, pot := range pots {
		if len(pot.Eligible) == 0 {
			return nil, invariantf("pot of %d has no eligible seats", pot.Amount)
		}
		if len(pot.Eligible) == 1 {
			payouts[pot.Eligible[0]] += pot.Amount
			continue
		}

		best := 0
		haveBest := false
		for _, seat := range pot.Eligible {
			score, ok := scores[seat]
			if !ok {
				return nil, invariantf("no hand score for eligible seat %d", seat)
			}
			if !haveBest || score.Rank < best {
				best = score.Rank
				haveBest = true
			}
		}

		var winners []int
		for _, seat := range pot.Eligible {
			if scores[seat].Rank == best {
				winners = append(winners, seat)
			}
		}

		// Clockwise from the button decides who takes the odd chips
		sort.Slice(winners, func(i, j int) bool {
			return clockwiseFrom(dealer, winners[i], numSeats) < clockwiseFrom(dealer, winners[j], numSeats)
		})

		share := pot.Amount / len(winners)
		remainder := pot.Amount % len(winners)
		for i, seat := range winners {
			payouts[seat] += share
			if i < remainder {
				payouts[seat]++
			}
		}
	}

	return payouts, nil
}

// AwardAll gives every pot to a single seat, including any uncalled
// excess of its own. Used when all opponents fold.
func AwardAll(pots []Pot, seat int) map[int]int {
	total := 0
	for _, pot := range pots {
		total += pot.Amount
	}
	return map[int]int{seat: total}
}

// clockwiseFrom returns the clockwise distance from the seat left of
// the dealer to the given seat.
func clockwiseFrom(dealer, seat, numSeats int) int {
	return (seat - dealer - 1 + numSeats) % numSeats
}
