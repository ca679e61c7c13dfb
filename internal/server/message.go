package server

import (
	"encoding/json"
	"time"

	"github.com/cardroom/cardroom/internal/deck"
	"github.com/cardroom/cardroom/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
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

// Client → Server Messages

type AuthData struct {
	Token string `json:"token"`
	Name  string `json:"name,omitempty"`
}

type ActionData struct {
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

// Server → Client Messages

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Stack    int    `json:"stack,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SeatedData struct {
	Seat  int `json:"seat"`
	Chips int `json:"chips"`
}

type SnapshotData struct {
	Phase      string          `json:"phase"`
	Street     string          `json:"street"`
	Board      []deck.Card     `json:"board"`
	Pot        int             `json:"pot"`
	Seats      []game.SeatInfo `json:"seats"`
	ActingSeat int             `json:"actingSeat"`
	Deadline   time.Time       `json:"deadline,omitempty"`
}

type SeatsData struct {
	Seats []game.SeatInfo `json:"seats"`
}

type CountdownData struct {
	DelaySeconds int `json:"delaySeconds"`
}

type HandStartData struct {
	HandNum        int             `json:"handNum"`
	DealerSeat     int             `json:"dealerSeat"`
	SmallBlindSeat int             `json:"smallBlindSeat"`
	BigBlindSeat   int             `json:"bigBlindSeat"`
	SmallBlind     int             `json:"smallBlind"`
	BigBlind       int             `json:"bigBlind"`
	Seats          []game.SeatInfo `json:"seats"`
}

// HoleCardsData is sent with cards to the seat's owner and with Hidden set
// to everyone else.
type HoleCardsData struct {
	Seat   int         `json:"seat"`
	Cards  []deck.Card `json:"cards,omitempty"`
	Hidden bool        `json:"hidden,omitempty"`
}

type TurnData struct {
	Seat       int       `json:"seat"`
	Deadline   time.Time `json:"deadline"`
	CurrentBet int       `json:"currentBet"`
	ToCall     int       `json:"toCall"`
	MinRaiseTo int       `json:"minRaiseTo"`
}

type PlayerActionData struct {
	Seat     int    `json:"seat"`
	Action   string `json:"action"`
	Amount   int    `json:"amount"`
	Pot      int    `json:"pot"`
	TimedOut bool   `json:"timedOut,omitempty"`
}

type CommunityData struct {
	Street string      `json:"street"`
	Board  []deck.Card `json:"board"`
}

type PotData struct {
	Total int `json:"total"`
}

type RevealData struct {
	Seat  int         `json:"seat"`
	Cards []deck.Card `json:"cards"`
}

type ShowdownData struct {
	Board   []deck.Card  `json:"board"`
	Reveals []RevealData `json:"reveals"`
}

type PotResultData struct {
	Amount  int   `json:"amount"`
	Winners []int `json:"winners"`
	Share   int   `json:"share"`
}

type HandEndData struct {
	HandNum int             `json:"handNum"`
	Results []PotResultData `json:"results"`
	Seats   []game.SeatInfo `json:"seats"`
}

type TableMessageData struct {
	Text string `json:"text"`
}

// SnapshotFromGame converts a table snapshot to its wire form.
func SnapshotFromGame(s game.Snapshot) SnapshotData {
	return SnapshotData{
		Phase:      s.Phase.String(),
		Street:     s.Street.String(),
		Board:      s.Board,
		Pot:        s.Pot,
		Seats:      s.Seats,
		ActingSeat: s.ActingSeat,
		Deadline:   s.Deadline,
	}
}
