package game

import (
	"time"

	"github.com/tablestakes/sitngo/internal/deck"
)

// EventType represents a game event type with type safety
type EventType string

const (
	EventTypeHandStart     EventType = "hand_start"
	EventTypeHandEnd       EventType = "hand_end"
	EventTypeStreetChange  EventType = "street_change"
	EventTypePlayerAction  EventType = "player_action"
	EventTypeAllIn         EventType = "all_in"
	EventTypeShowdown      EventType = "showdown"
	EventTypeElimination   EventType = "elimination"
	EventTypeBlindsUp      EventType = "blinds_up"
	EventTypeTournamentEnd EventType = "tournament_end"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents any event emitted by the engine
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// HandStartEvent is published when a new hand begins
type HandStartEvent struct {
	HandNumber int
	Dealer     int
	SmallBlind int
	BigBlind   int
	Stacks     map[int]int
	timestamp  time.Time
}

func (e HandStartEvent) EventType() EventType { return EventTypeHandStart }
func (e HandStartEvent) Timestamp() time.Time { return e.timestamp }

// PlayerActionEvent is published when a player acts
type PlayerActionEvent struct {
	Seat      int
	Action    Action
	PotAfter  int
	timestamp time.Time
}

func (e PlayerActionEvent) EventType() EventType { return EventTypePlayerAction }
func (e PlayerActionEvent) Timestamp() time.Time { return e.timestamp }

// AllInEvent is published when an action leaves a player all-in
type AllInEvent struct {
	Seat      int
	timestamp time.Time
}

func (e AllInEvent) EventType() EventType { return EventTypeAllIn }
func (e AllInEvent) Timestamp() time.Time { return e.timestamp }

// StreetChangeEvent is published when community cards are dealt
type StreetChangeEvent struct {
	Phase     Phase
	Community []deck.Card
	timestamp time.Time
}

func (e StreetChangeEvent) EventType() EventType { return EventTypeStreetChange }
func (e StreetChangeEvent) Timestamp() time.Time { return e.timestamp }

// ShowdownEvent is published when hands are revealed and compared
type ShowdownEvent struct {
	HandNumber int
	Results    []ShowdownResult
	timestamp  time.Time
}

func (e ShowdownEvent) EventType() EventType { return EventTypeShowdown }
func (e ShowdownEvent) Timestamp() time.Time { return e.timestamp }

// HandEndEvent is published when a hand completes, by showdown or fold-out
type HandEndEvent struct {
	HandNumber int
	FoldOut    bool
	Payouts    map[int]int
	timestamp  time.Time
}

func (e HandEndEvent) EventType() EventType { return EventTypeHandEnd }
func (e HandEndEvent) Timestamp() time.Time { return e.timestamp }

// EliminationEvent is published when a player busts
type EliminationEvent struct {
	Seat      int
	Position  int
	timestamp time.Time
}

func (e EliminationEvent) EventType() EventType { return EventTypeElimination }
func (e EliminationEvent) Timestamp() time.Time { return e.timestamp }

// BlindsUpEvent is published when the blind level escalates
type BlindsUpEvent struct {
	Level      int
	SmallBlind int
	BigBlind   int
	timestamp  time.Time
}

func (e BlindsUpEvent) EventType() EventType { return EventTypeBlindsUp }
func (e BlindsUpEvent) Timestamp() time.Time { return e.timestamp }

// TournamentEndEvent is published when one player holds all the chips
type TournamentEndEvent struct {
	Winner    int
	Standings []Standing
	timestamp time.Time
}

func (e TournamentEndEvent) EventType() EventType { return EventTypeTournamentEnd }
func (e TournamentEndEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is a basic in-memory event bus. Delivery is
// synchronous and in subscription order.
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
