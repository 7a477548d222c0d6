package game

import "github.com/tablestakes/sitngo/internal/deck"

// HandScore is an opaque, totally ordered hand strength. Lower Rank is
// better; equal Rank means an exact tie. Description is display text
// like "Full House, Kings full of Sevens".
type HandScore struct {
	Rank        int    `json:"rank"`
	Description string `json:"description"`
}

// Evaluator scores a player's best hand from hole and community cards
type Evaluator interface {
	Score(hole, community []deck.Card) (HandScore, error)
}
