package game

import (
	"time"

	"github.com/tablestakes/sitngo/internal/deck"
)

// ShowdownResult is one revealed hand at showdown
type ShowdownResult struct {
	Seat        int         `json:"seat"`
	HoleCards   []deck.Card `json:"hole_cards"`
	Rank        int         `json:"rank"`
	Description string      `json:"description"`
}

// HandRecord is the durable record of one completed hand. It carries
// enough state to replay the hand deterministically: replaying the
// action log against the starting stacks must reproduce the same pots
// and final stacks.
type HandRecord struct {
	HandNumber     int                 `json:"hand_number"`
	StartedAt      time.Time           `json:"started_at"`
	Dealer         int                 `json:"dealer"`
	SmallBlind     int                 `json:"small_blind"`
	BigBlind       int                 `json:"big_blind"`
	StartingStacks []int               `json:"starting_stacks"`
	Actions        []Action            `json:"actions"`
	Board          []deck.Card         `json:"board"`
	HoleCards      map[int][]deck.Card `json:"hole_cards"`
	FoldOut        bool                `json:"fold_out"`
	Pots           []Pot               `json:"pots"`
	Payouts        map[int]int         `json:"payouts"`
	Results        []ShowdownResult    `json:"results,omitempty"`
	FinalStacks    []int               `json:"final_stacks"`
}
