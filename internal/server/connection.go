package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/cardroom/cardroom/internal/auth"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn        *websocket.Conn
	send        chan *Message
	playerID    string
	name        string
	stack       int
	mu          sync.RWMutex
	closeOnce   sync.Once
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	gameService *GameService
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, gameService *GameService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:        conn,
		send:        make(chan *Message, 256),
		logger:      logger.WithPrefix("conn"),
		ctx:         ctx,
		cancel:      cancel,
		gameService: gameService,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, this is expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetPlayer associates this connection with a verified player identity
func (c *Connection) SetPlayer(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
}

// GetPlayer returns the associated player ID
func (c *Connection) GetPlayer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.GetPlayer())

	switch msg.Type {
	case MessageTypeAuth:
		var data AuthData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse auth data")
			return
		}
		c.handleAuth(data)

	case MessageTypeSit:
		c.handleSit()

	case MessageTypeLeave:
		c.handleLeave()

	case MessageTypeStart:
		c.handleStart()

	case MessageTypeAction:
		var data ActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse action data")
			return
		}
		c.handleAction(data)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}

func (c *Connection) handleAuth(data AuthData) {
	c.logger.Info("Auth request", "name", data.Name)

	grant, err := c.gameService.Authenticate(c.ctx, data.Token)
	if err != nil {
		response, _ := NewMessage(MessageTypeAuthResponse, AuthResponseData{
			Success: false,
			Error:   "rejected",
		})
		_ = c.SendMessage(response)
		return
	}

	playerID := grant.PlayerID
	if playerID == "" {
		playerID = data.Name
	}
	if playerID == "" {
		c.sendError("invalid_auth", "Player name required")
		return
	}
	c.SetPlayer(playerID)
	c.setName(grant, data.Name)

	response, _ := NewMessage(MessageTypeAuthResponse, AuthResponseData{
		Success:  true,
		PlayerID: playerID,
		Stack:    grant.Stack,
	})
	_ = c.SendMessage(response)

	// New observers get the current table state.
	snapshot, _ := NewMessage(MessageTypeSnapshot, c.gameService.Snapshot())
	_ = c.SendMessage(snapshot)
}

// setName keeps the verified name when the service supplies one, otherwise
// the client's requested name.
func (c *Connection) setName(grant *auth.Grant, requested string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if grant.Name != "" {
		c.name = grant.Name
	} else {
		c.name = requested
	}
	c.stack = grant.Stack
}

func (c *Connection) handleSit() {
	playerID := c.GetPlayer()
	if playerID == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return
	}

	c.mu.RLock()
	name, stack := c.name, c.stack
	c.mu.RUnlock()

	seat, err := c.gameService.Sit(playerID, name, stack)
	if err != nil {
		c.sendError("sit_failed", err.Error())
		return
	}

	response, _ := NewMessage(MessageTypeSeated, SeatedData{Seat: seat, Chips: stack})
	_ = c.SendMessage(response)
}

func (c *Connection) handleLeave() {
	playerID := c.GetPlayer()
	if playerID == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return
	}

	if err := c.gameService.Leave(playerID); err != nil {
		c.sendError("leave_failed", err.Error())
		return
	}

	response, _ := NewMessage(MessageTypeLeft, struct{}{})
	_ = c.SendMessage(response)
}

func (c *Connection) handleStart() {
	playerID := c.GetPlayer()
	if playerID == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return
	}

	if err := c.gameService.Start(); err != nil {
		c.sendError("start_failed", err.Error())
		return
	}
	// No response needed - the countdown event will be broadcast.
}

func (c *Connection) handleAction(data ActionData) {
	playerID := c.GetPlayer()
	if playerID == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return
	}

	if err := c.gameService.Act(playerID, data.Action, data.Amount); err != nil {
		c.sendError("action_failed", err.Error())
		return
	}
	// No response needed - the engine publishes the accepted action.
}
