package game

import (
	"time"

	"github.com/cardroom/cardroom/internal/deck"
)

// EventType identifies a game event
type EventType string

const (
	EventTypeSeats        EventType = "seats"
	EventTypeCountdown    EventType = "countdown"
	EventTypeHandStart    EventType = "hand_start"
	EventTypeHoleCards    EventType = "hole_cards"
	EventTypeTurn         EventType = "turn"
	EventTypePlayerAction EventType = "player_action"
	EventTypeCommunity    EventType = "community"
	EventTypePot          EventType = "pot"
	EventTypeShowdown     EventType = "showdown"
	EventTypeHandEnd      EventType = "hand_end"
	EventTypeMessage      EventType = "message"
)

// Event is an outbound notification emitted by the table. Delivery is
// fire-and-forget relative to state mutation; the engine never waits on the
// sink.
type Event interface {
	EventType() EventType
}

// Sink receives table events, typically a transport layer fanning them out
// to connected clients.
type Sink interface {
	Publish(Event)
}

// SeatInfo is a public view of one seat for table snapshots.
type SeatInfo struct {
	Index    int    `json:"index"`
	Occupied bool   `json:"occupied"`
	Name     string `json:"name,omitempty"`
	Chips    int    `json:"chips"`
	InHand   bool   `json:"inHand"`
	Folded   bool   `json:"folded"`
	AllIn    bool   `json:"allIn"`
	Bet      int    `json:"bet"` // committed this street
}

// SeatsEvent is the seat-table snapshot, published whenever occupancy or
// stacks change outside a hand.
type SeatsEvent struct {
	Seats []SeatInfo
}

func (SeatsEvent) EventType() EventType { return EventTypeSeats }

// CountdownEvent announces the delay before the next hand begins.
type CountdownEvent struct {
	Delay time.Duration
}

func (CountdownEvent) EventType() EventType { return EventTypeCountdown }

// HandStartEvent carries the dealer and blind assignments for a new hand.
type HandStartEvent struct {
	HandNum    int
	DealerSeat int
	SmallBlind int // seat index
	BigBlind   int // seat index
	SBAmount   int
	BBAmount   int
	Seats      []SeatInfo
}

func (HandStartEvent) EventType() EventType { return EventTypeHandStart }

// HoleCardsEvent is a private deal to one seat. The transport delivers the
// cards to the recipient only and a hidden-card indicator to everyone else.
type HoleCardsEvent struct {
	Seat  int
	Cards []deck.Card
}

func (HoleCardsEvent) EventType() EventType { return EventTypeHoleCards }

// TurnEvent announces the acting seat and its deadline.
type TurnEvent struct {
	Seat       int
	Deadline   time.Time
	CurrentBet int
	ToCall     int
	MinRaiseTo int
}

func (TurnEvent) EventType() EventType { return EventTypeTurn }

// PlayerActionEvent broadcasts an accepted action.
type PlayerActionEvent struct {
	Seat     int
	Action   Action
	Amount   int // chips paid by this action
	Pot      int
	TimedOut bool
}

func (PlayerActionEvent) EventType() EventType { return EventTypePlayerAction }

// CommunityEvent reveals community cards for a street.
type CommunityEvent struct {
	Street Street
	Board  []deck.Card
}

func (CommunityEvent) EventType() EventType { return EventTypeCommunity }

// PotEvent announces the running pot total.
type PotEvent struct {
	Total int
}

func (PotEvent) EventType() EventType { return EventTypePot }

// ShowdownReveal is one seat's revealed hole cards.
type ShowdownReveal struct {
	Seat  int
	Cards []deck.Card
}

// ShowdownEvent reveals all surviving hole cards before pots are resolved.
type ShowdownEvent struct {
	Board   []deck.Card
	Reveals []ShowdownReveal
}

func (ShowdownEvent) EventType() EventType { return EventTypeShowdown }

// PotResult is one resolved pot layer.
type PotResult struct {
	Amount  int
	Winners []int
	Share   int // per-winner payout; remainder chips are not awarded
}

// HandEndEvent reports the final payouts for the hand.
type HandEndEvent struct {
	HandNum int
	Results []PotResult
	Seats   []SeatInfo
}

func (HandEndEvent) EventType() EventType { return EventTypeHandEnd }

// MessageEvent is a free-text log line for observers.
type MessageEvent struct {
	Text string
}

func (MessageEvent) EventType() EventType { return EventTypeMessage }
