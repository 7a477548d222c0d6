// Package evaluator scores hold'em hands. Scores are totally ordered and
// lower is better, so callers can compare hands without knowing anything
// about poker categories.
package evaluator

import (
	"fmt"
	"sort"

	"github.com/tablestakes/sitngo/internal/deck"
	"github.com/tablestakes/sitngo/internal/game"
)

// Hand categories, best first
const (
	catStraightFlush = iota
	catFourOfAKind
	catFullHouse
	catFlush
	catStraight
	catThreeOfAKind
	catTwoPair
	catPair
	catHighCard
)

var categoryNames = map[int]string{
	catStraightFlush: "Straight Flush",
	catFourOfAKind:   "Four of a Kind",
	catFullHouse:     "Full House",
	catFlush:         "Flush",
	catStraight:      "Straight",
	catThreeOfAKind:  "Three of a Kind",
	catTwoPair:       "Two Pair",
	catPair:          "Pair",
	catHighCard:      "High Card",
}

// Evaluator scores the best five-card hand from hole plus community cards.
// It is stateless and safe for concurrent use.
type Evaluator struct{}

// New creates an evaluator
func New() *Evaluator {
	return &Evaluator{}
}

// Score evaluates a player's best hand. It requires 2 hole cards and
// accepts 0-5 community cards; with fewer than 5 total cards the partial
// hand is scored directly (pairs and high cards only).
func (e *Evaluator) Score(hole, community []deck.Card) (game.HandScore, error) {
	if len(hole) != 2 {
		return game.HandScore{}, fmt.Errorf("score: want 2 hole cards, got %d", len(hole))
	}
	if len(community) > 5 {
		return game.HandScore{}, fmt.Errorf("score: want at most 5 community cards, got %d", len(community))
	}

	all := make([]deck.Card, 0, 7)
	all = append(all, hole...)
	all = append(all, community...)

	if len(all) < 5 {
		cat, tiebreak := evaluatePartial(all)
		return game.HandScore{Rank: encode(cat, tiebreak), Description: describe(cat, tiebreak)}, nil
	}

	best := -1
	var bestCat int
	var bestTb [5]int

	// Best 5-card hand among all combinations
	combinations(len(all), 5, func(idx []int) {
		var hand [5]deck.Card
		for i, j := range idx {
			hand[i] = all[j]
		}
		cat, tb := evaluate5(hand)
		score := encode(cat, tb)
		if best < 0 || score < best {
			best = score
			bestCat = cat
			bestTb = tb
		}
	})

	return game.HandScore{Rank: best, Description: describe(bestCat, bestTb)}, nil
}

// encode packs a category and tiebreak ranks into a single comparable
// score. Lower is better: better categories are smaller, and within a
// category higher tiebreak ranks produce smaller scores.
func encode(cat int, tiebreak [5]int) int {
	score := cat << 20
	for i, r := range tiebreak {
		score |= (14 - r) << (4 * (4 - i))
	}
	return score
}

// evaluate5 categorizes exactly five cards
func evaluate5(hand [5]deck.Card) (int, [5]int) {
	ranks := make([]int, 5)
	flush := true
	for i, c := range hand {
		ranks[i] = int(c.Rank)
		if c.Suit != hand[0].Suit {
			flush = false
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))

	straightHigh := straightHighCard(ranks)

	if flush && straightHigh > 0 {
		return catStraightFlush, [5]int{straightHigh}
	}

	counts := rankCounts(ranks)

	switch {
	case counts[0].n == 4:
		return catFourOfAKind, [5]int{counts[0].rank, counts[1].rank}
	case counts[0].n == 3 && counts[1].n == 2:
		return catFullHouse, [5]int{counts[0].rank, counts[1].rank}
	case flush:
		return catFlush, [5]int{ranks[0], ranks[1], ranks[2], ranks[3], ranks[4]}
	case straightHigh > 0:
		return catStraight, [5]int{straightHigh}
	case counts[0].n == 3:
		return catThreeOfAKind, [5]int{counts[0].rank, counts[1].rank, counts[2].rank}
	case counts[0].n == 2 && counts[1].n == 2:
		return catTwoPair, [5]int{counts[0].rank, counts[1].rank, counts[2].rank}
	case counts[0].n == 2:
		return catPair, [5]int{counts[0].rank, counts[1].rank, counts[2].rank, counts[3].rank}
	default:
		return catHighCard, [5]int{ranks[0], ranks[1], ranks[2], ranks[3], ranks[4]}
	}
}

// evaluatePartial scores 2-4 cards (pre-river folds never reach here in
// normal play, but the contract allows short boards)
func evaluatePartial(cards []deck.Card) (int, [5]int) {
	ranks := make([]int, len(cards))
	for i, c := range cards {
		ranks[i] = int(c.Rank)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))

	counts := rankCounts(ranks)

	var tb [5]int
	for i := 0; i < len(counts) && i < 5; i++ {
		tb[i] = counts[i].rank
	}

	switch {
	case counts[0].n >= 3:
		return catThreeOfAKind, tb
	case counts[0].n == 2 && len(counts) > 1 && counts[1].n == 2:
		return catTwoPair, tb
	case counts[0].n == 2:
		return catPair, tb
	default:
		return catHighCard, tb
	}
}

type rankCount struct {
	rank int
	n    int
}

// rankCounts groups ranks by multiplicity, ordered by count then rank
// descending. Input must be sorted descending.
func rankCounts(ranks []int) []rankCount {
	var counts []rankCount
	for _, r := range ranks {
		if len(counts) > 0 && counts[len(counts)-1].rank == r {
			counts[len(counts)-1].n++
		} else {
			counts = append(counts, rankCount{rank: r})
			counts[len(counts)-1].n = 1
		}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].n != counts[j].n {
			return counts[i].n > counts[j].n
		}
		return counts[i].rank > counts[j].rank
	})
	return counts
}

// straightHighCard returns the high card of a straight, or 0 if the five
// descending ranks do not form one. The wheel (A-5-4-3-2) counts with a
// high card of 5.
func straightHighCard(ranks []int) int {
	straight := true
	for i := 1; i < 5; i++ {
		if ranks[i] != ranks[i-1]-1 {
			straight = false
			break
		}
	}
	if straight {
		return ranks[0]
	}

	// Wheel: A,5,4,3,2
	if ranks[0] == 14 && ranks[1] == 5 && ranks[2] == 4 && ranks[3] == 3 && ranks[4] == 2 {
		return 5
	}
	return 0
}

// describe builds a human-readable hand name like
// "Full House, Kings full of Sevens"
func describe(cat int, tb [5]int) string {
	name := categoryNames[cat]
	rankName := func(r int) string { return deck.Rank(r).Name() }

	switch cat {
	case catStraightFlush:
		if tb[0] == 14 {
			return "Royal Flush"
		}
		return fmt.Sprintf("%s, %s high", name, rankName(tb[0]))
	case catFourOfAKind:
		return fmt.Sprintf("%s, %ss", name, rankName(tb[0]))
	case catFullHouse:
		return fmt.Sprintf("%s, %ss full of %ss", name, rankName(tb[0]), rankName(tb[1]))
	case catFlush:
		return fmt.Sprintf("%s, %s high", name, rankName(tb[0]))
	case catStraight:
		return fmt.Sprintf("%s, %s high", name, rankName(tb[0]))
	case catThreeOfAKind:
		return fmt.Sprintf("%s, %ss", name, rankName(tb[0]))
	case catTwoPair:
		return fmt.Sprintf("%s, %ss and %ss", name, rankName(tb[0]), rankName(tb[1]))
	case catPair:
		return fmt.Sprintf("%s, %ss", name, rankName(tb[0]))
	default:
		return fmt.Sprintf("%s, %s", name, rankName(tb[0]))
	}
}

// combinations invokes fn with each k-element index subset of [0,n)
func combinations(n, k int, fn func([]int)) {
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		fn(idx)

		// Advance to the next combination
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
