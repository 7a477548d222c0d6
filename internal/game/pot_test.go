package game

import (
	"errors"
	"reflect"
	"testing"
)

func contributed(p *Player, amount int) *Player {
	p.TotalContributed = amount
	return p
}

func TestComputePotsThreeTierAllIn(t *testing.T) {
	// A all-in for 100, B all-in for 300, C covers with 500
	players := []*Player{
		contributed(testPlayer(0, 0), 100),
		contributed(testPlayer(1, 0), 300),
		contributed(testPlayer(2, 200), 500),
	}
	players[0].AllIn = true
	players[1].AllIn = true

	pots, err := ComputePots(players)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Pot{
		{Amount: 300, Eligible: []int{0, 1, 2}},
		{Amount: 400, Eligible: []int{1, 2}},
		{Amount: 200, Eligible: []int{2}},
	}
	if !reflect.DeepEqual(pots, want) {
		t.Errorf("got %+v, want %+v", pots, want)
	}
}

func TestComputePotsSingleTier(t *testing.T) {
	players := []*Player{
		contributed(testPlayer(0, 900), 100),
		contributed(testPlayer(1, 900), 100),
		contributed(testPlayer(2, 900), 100),
	}

	pots, err := ComputePots(players)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pots) != 1 || pots[0].Amount != 300 {
		t.Fatalf("expected single 300 pot, got %+v", pots)
	}
}

func TestComputePotsFoldedChipsStayInPots(t *testing.T) {
	// Seat 1 folded after contributing 60: its chips fall into the pots
	// but it is eligible for none.
	players := []*Player{
		contributed(testPlayer(0, 0), 100),
		contributed(testPlayer(1, 840), 60),
		contributed(testPlayer(2, 100), 300),
	}
	players[0].AllIn = true
	players[1].Folded = true

	pots, err := ComputePots(players)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Pot{
		{Amount: 260, Eligible: []int{0, 2}},
		{Amount: 200, Eligible: []int{2}},
	}
	if !reflect.DeepEqual(pots, want) {
		t.Errorf("got %+v, want %+v", pots, want)
	}

	total := 0
	for _, pot := range pots {
		total += pot.Amount
	}
	if total != 460 {
		t.Errorf("pots must hold every contributed chip, got %d", total)
	}
}

func TestDistributePotsSplitsWithOddChipClockwise(t *testing.T) {
	// 301 chips, three-way tie, dealer at seat 1: the extra chip goes to
	// seat 2, the first winner clockwise from the button.
	pots := []Pot{{Amount: 301, Eligible: []int{2, 4, 5}}}
	scores := map[int]HandScore{
		2: {Rank: 10},
		4: {Rank: 10},
		5: {Rank: 10},
	}

	payouts, err := DistributePots(pots, scores, 1, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[int]int{2: 101, 4: 100, 5: 100}
	if !reflect.DeepEqual(payouts, want) {
		t.Errorf("got %v, want %v", payouts, want)
	}
}

func TestDistributePotsOddChipOrderWrapsAroundButton(t *testing.T) {
	// Dealer at seat 4: seat 5 is first clockwise, then seat 2
	pots := []Pot{{Amount: 101, Eligible: []int{2, 5}}}
	scores := map[int]HandScore{2: {Rank: 7}, 5: {Rank: 7}}

	payouts, err := DistributePots(pots, scores, 4, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payouts[5] != 51 || payouts[2] != 50 {
		t.Errorf("expected 51/50 split favoring seat 5, got %v", payouts)
	}
}

func TestDistributePotsBestHandWinsEachPot(t *testing.T) {
	pots := []Pot{
		{Amount: 300, Eligible: []int{0, 1, 2}},
		{Amount: 400, Eligible: []int{1, 2}},
	}
	// Seat 0 holds the best hand but only contests the main pot
	scores := map[int]HandScore{
		0: {Rank: 1},
		1: {Rank: 5},
		2: {Rank: 3},
	}

	payouts, err := DistributePots(pots, scores, 0, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[int]int{0: 300, 2: 400}
	if !reflect.DeepEqual(payouts, want) {
		t.Errorf("got %v, want %v", payouts, want)
	}
}

func TestDistributePotsSingleEligibleNeedsNoScore(t *testing.T) {
	pots := []Pot{{Amount: 200, Eligible: []int{2}}}

	payouts, err := DistributePots(pots, nil, 0, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payouts[2] != 200 {
		t.Errorf("expected direct award of 200, got %v", payouts)
	}
}

func TestDistributePotsMissingScoreIsInvariantError(t *testing.T) {
	pots := []Pot{{Amount: 200, Eligible: []int{0, 1}}}
	_, err := DistributePots(pots, map[int]HandScore{0: {Rank: 1}}, 0, 2)
	if err == nil {
		t.Fatal("expected error for missing score")
	}
	var inv *InvariantError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvariantError, got %T", err)
	}
}

func TestAwardAll(t *testing.T) {
	pots := []Pot{
		{Amount: 300, Eligible: []int{0, 1}},
		{Amount: 150, Eligible: []int{1}},
	}
	payouts := AwardAll(pots, 1)
	if payouts[1] != 450 {
		t.Errorf("expected 450, got %v", payouts)
	}
}
