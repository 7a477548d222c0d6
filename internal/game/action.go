package game

// ActionType identifies a betting action
type ActionType string

const (
	ActionFold      ActionType = "fold"
	ActionCheck     ActionType = "check"
	ActionCall      ActionType = "call"
	ActionRaise     ActionType = "raise"
	ActionPostBlind ActionType = "post_blind"
)

// Action is one immutable entry in a hand's append-only log. Amount is
// the chips moved by the action (zero for fold and check). Sequence is
// the sole ordering key for replay.
type Action struct {
	Seat     int        `json:"seat"`
	Type     ActionType `json:"type"`
	Amount   int        `json:"amount"`
	Sequence int        `json:"sequence"`
}
