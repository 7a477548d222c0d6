package server

import (
	"encoding/json"
	"time"

	"github.com/tablestakes/sitngo/internal/game"
)

// MessageType identifies a WebSocket message
type MessageType string

// Client to server
const (
	MessageTypeJoin   MessageType = "join"
	MessageTypeAction MessageType = "action"
	MessageTypePause  MessageType = "pause"
	MessageTypeResume MessageType = "resume"
)

// Server to client
const (
	MessageTypeWelcome       MessageType = "welcome"
	MessageTypeSnapshot      MessageType = "snapshot"
	MessageTypeActionRequest MessageType = "action_request"
	MessageTypeStandings     MessageType = "standings"
	MessageTypeError         MessageType = "error"
)

// Message is the base WebSocket message envelope
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// JoinData seats a player or attaches a spectator
type JoinData struct {
	Name      string `json:"name"`
	Spectator bool   `json:"spectator,omitempty"`
}

// ActionData is a decision for the joined seat
type ActionData struct {
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

// WelcomeData confirms a join. Seat is -1 for spectators.
type WelcomeData struct {
	Seat      int    `json:"seat"`
	Name      string `json:"name"`
	Spectator bool   `json:"spectator"`
	Waiting   int    `json:"waiting_for"`
}

// SnapshotData carries a redacted game snapshot
type SnapshotData struct {
	Snapshot game.Snapshot `json:"snapshot"`
}

// ActionRequestData asks the client for a decision
type ActionRequestData struct {
	View           game.SeatView `json:"view"`
	TimeoutSeconds int           `json:"timeout_seconds"`
}

// StandingsData carries the current leaderboard
type StandingsData struct {
	Standings []game.Standing `json:"standings"`
}

// ErrorData reports a rejected request
type ErrorData struct {
	Error string `json:"error"`
}
