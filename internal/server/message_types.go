package server

// Note: game events (hand_start, hand_end, etc.) are forwarded to clients as
// WebSocket messages whose type matches game.EventType.

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypeAuth   MessageType = "auth"
	MessageTypeSit    MessageType = "sit"
	MessageTypeLeave  MessageType = "leave"
	MessageTypeStart  MessageType = "start"
	MessageTypeAction MessageType = "action"

	// Server to client messages
	MessageTypeError        MessageType = "error"
	MessageTypeAuthResponse MessageType = "auth_response"
	MessageTypeSeated       MessageType = "seated"
	MessageTypeLeft         MessageType = "left"
	MessageTypeSnapshot     MessageType = "snapshot"

	// Forwarded game events
	MessageTypeSeats        MessageType = "seats"
	MessageTypeCountdown    MessageType = "countdown"
	MessageTypeHandStart    MessageType = "hand_start"
	MessageTypeHoleCards    MessageType = "hole_cards"
	MessageTypeTurn         MessageType = "turn"
	MessageTypePlayerAction MessageType = "player_action"
	MessageTypeCommunity    MessageType = "community"
	MessageTypePot          MessageType = "pot"
	MessageTypeShowdown     MessageType = "showdown"
	MessageTypeHandEnd      MessageType = "hand_end"
	MessageTypeTableMsg     MessageType = "message"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
