package game

import "testing"

func TestBlindEscalationBoundary(t *testing.T) {
	bm := NewBlindManager(nil, 0)

	if bm.Small() != 10 || bm.Big() != 20 {
		t.Fatalf("expected opening blinds 10/20, got %d/%d", bm.Small(), bm.Big())
	}

	// Hands 1-9 stay at level 0
	for i := 0; i < 9; i++ {
		if bm.HandComplete() {
			t.Fatalf("blinds escalated after %d hands", i+1)
		}
	}
	if bm.Level() != 0 {
		t.Fatalf("expected level 0 after 9 hands, got %d", bm.Level())
	}

	// The 10th completed hand moves to level 1
	if !bm.HandComplete() {
		t.Fatal("expected escalation after the 10th hand")
	}
	if bm.Small() != 20 || bm.Big() != 40 {
		t.Errorf("expected blinds 20/40 at level 1, got %d/%d", bm.Small(), bm.Big())
	}
}

func TestBlindScheduleCapsAtFinalLevel(t *testing.T) {
	bm := NewBlindManager(nil, 0)
	for i := 0; i < 500; i++ {
		bm.HandComplete()
	}
	last := DefaultLevels[len(DefaultLevels)-1]
	if bm.Small() != last.Small || bm.Big() != last.Big {
		t.Errorf("expected final level %d/%d, got %d/%d", last.Small, last.Big, bm.Small(), bm.Big())
	}
	if bm.Level() != len(DefaultLevels)-1 {
		t.Errorf("level should cap at %d, got %d", len(DefaultLevels)-1, bm.Level())
	}
}

func TestCustomSchedule(t *testing.T) {
	levels := []BlindLevel{{Small: 5, Big: 10}, {Small: 25, Big: 50}}
	bm := NewBlindManager(levels, 2)

	if bm.Big() != 10 {
		t.Fatalf("expected big blind 10, got %d", bm.Big())
	}
	bm.HandComplete()
	if bm.HandComplete() != true {
		t.Fatal("expected escalation after 2 hands")
	}
	if bm.Small() != 25 || bm.Big() != 50 {
		t.Errorf("expected 25/50, got %d/%d", bm.Small(), bm.Big())
	}
}
