package deck

import (
	"math/rand"
	"testing"
)

func TestParseCard(t *testing.T) {
	card, err := ParseCard("As")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if card.Rank != Ace || card.Suit != Spades {
		t.Errorf("expected Ace of Spades, got %s", card.Name())
	}

	card, err = ParseCard("th")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if card.Rank != Ten || card.Suit != Hearts {
		t.Errorf("expected Ten of Hearts, got %s", card.Name())
	}

	for _, bad := range []string{"", "A", "Asx", "1s", "Ax"} {
		if _, err := ParseCard(bad); err == nil {
			t.Errorf("expected error parsing %q", bad)
		}
	}
}

func TestParseCards(t *testing.T) {
	cards, err := ParseCards("AsKhQd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(cards))
	}
	if cards[0].String() != "As" || cards[1].String() != "Kh" || cards[2].String() != "Qd" {
		t.Errorf("unexpected cards: %v", cards)
	}

	if _, err := ParseCards("AsK"); err == nil {
		t.Error("expected error for odd-length string")
	}
}

func TestCardString(t *testing.T) {
	if got := NewCard(Ten, Clubs).String(); got != "Tc" {
		t.Errorf("expected Tc, got %s", got)
	}
	if got := NewCard(Two, Diamonds).String(); got != "2d" {
		t.Errorf("expected 2d, got %s", got)
	}
	if got := NewCard(Ace, Spades).Name(); got != "Ace of Spades" {
		t.Errorf("unexpected name %s", got)
	}
}

func TestDeckDealsAllDistinctCards(t *testing.T) {
	d := New(rand.New(rand.NewSource(1)))
	d.Shuffle()

	seen := make(map[Card]bool)
	for i := 0; i < 52; i++ {
		card, err := d.DealOne()
		if err != nil {
			t.Fatalf("deal %d: %v", i, err)
		}
		if seen[card] {
			t.Fatalf("duplicate card %s", card)
		}
		seen[card] = true
	}

	if d.Remaining() != 0 {
		t.Errorf("expected empty deck, %d remaining", d.Remaining())
	}
	if _, err := d.DealOne(); err == nil {
		t.Error("expected error dealing from empty deck")
	}
}

func TestDealRejectsBadCounts(t *testing.T) {
	d := New(rand.New(rand.NewSource(1)))
	if _, err := d.Deal(0); err == nil {
		t.Error("expected error for zero count")
	}
	if _, err := d.Deal(53); err == nil {
		t.Error("expected error for oversize deal")
	}
}

func TestShuffleIsDeterministicUnderFixedSeed(t *testing.T) {
	d1 := New(rand.New(rand.NewSource(42)))
	d1.Shuffle()
	d2 := New(rand.New(rand.NewSource(42)))
	d2.Shuffle()

	for i := 0; i < 52; i++ {
		c1, _ := d1.DealOne()
		c2, _ := d2.DealOne()
		if c1 != c2 {
			t.Fatalf("position %d: %s != %s", i, c1, c2)
		}
	}
}
