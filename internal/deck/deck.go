package deck

import (
	"fmt"
	"math/rand"
)

// Deck holds the 52 distinct cards for a single hand. Cards move out of
// the deck exactly once; a short deal is an error, never truncated.
type Deck struct {
	cards []Card
	dealt int
	rng   *rand.Rand
}

// New creates an ordered 52-card deck using the given RNG for shuffling.
// The RNG is injected so hands are reproducible under a fixed seed.
func New(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, 52),
		rng:   rng,
	}
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}
	return d
}

// Shuffle performs a Fisher-Yates shuffle over the undealt cards
func (d *Deck) Shuffle() {
	remaining := d.cards[d.dealt:]
	for i := len(remaining) - 1; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		remaining[i], remaining[j] = remaining[j], remaining[i]
	}
}

// Remaining returns the number of undealt cards
func (d *Deck) Remaining() int {
	return len(d.cards) - d.dealt
}

// Deal removes and returns the top n cards. Asking for more cards than
// remain is a logic defect in the caller and returns an error.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 1 {
		return nil, fmt.Errorf("deal %d cards: count must be positive", n)
	}
	if n > d.Remaining() {
		return nil, fmt.Errorf("deal %d cards: only %d remaining", n, d.Remaining())
	}

	cards := make([]Card, n)
	copy(cards, d.cards[d.dealt:d.dealt+n])
	d.dealt += n
	return cards, nil
}

// DealOne removes and returns the top card
func (d *Deck) DealOne() (Card, error) {
	cards, err := d.Deal(1)
	if err != nil {
		return Card{}, err
	}
	return cards[0], nil
}
