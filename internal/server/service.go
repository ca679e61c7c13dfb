package server

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/cardroom/cardroom/internal/auth"
	"github.com/cardroom/cardroom/internal/game"
)

var ErrUnknownAction = errors.New("server: unknown action")

// GameService bridges the transport and the table: inbound client intents
// go through it into the engine, and it implements game.Sink to fan the
// engine's events back out over the server.
//
// The table serializes its own state; the service only guards the seat-to-
// identity routing map used to deliver private cards. Table calls are never
// made while holding that lock, so the table's own event publishing cannot
// deadlock against it.
type GameService struct {
	logger   *log.Logger
	table    *game.Table
	verifier auth.Verifier
	server   *Server

	mu     sync.Mutex
	owners map[int]string // seat -> player ID
}

// NewGameService creates the service around an existing table and verifier.
func NewGameService(logger *log.Logger, table *game.Table, verifier auth.Verifier, server *Server) *GameService {
	return &GameService{
		logger:   logger.WithPrefix("service"),
		table:    table,
		verifier: verifier,
		owners:   make(map[int]string),
		server:   server,
	}
}

// Authenticate verifies a seat-request token. Verification-service failures
// surface as a generic rejection to the requester; they never take the
// table down.
func (s *GameService) Authenticate(ctx context.Context, token string) (*auth.Grant, error) {
	grant, err := s.verifier.Verify(ctx, token)
	if err != nil {
		s.logger.Warn("seat request refused", "error", err)
		return nil, auth.ErrRejected
	}
	return grant, nil
}

// Sit seats an authenticated player with its granted stack.
func (s *GameService) Sit(playerID, name string, chips int) (int, error) {
	idx, err := s.table.Join(playerID, name, chips)
	if err != nil {
		return -1, err
	}
	s.mu.Lock()
	s.owners[idx] = playerID
	s.mu.Unlock()
	return idx, nil
}

// Leave clears the player's seat. Mid-hand this folds the seat first.
func (s *GameService) Leave(playerID string) error {
	if err := s.table.Leave(playerID); err != nil {
		return err
	}
	s.mu.Lock()
	for idx, owner := range s.owners {
		if owner == playerID {
			delete(s.owners, idx)
		}
	}
	s.mu.Unlock()
	return nil
}

// Start requests the pre-hand countdown.
func (s *GameService) Start() error {
	return s.table.RequestStart()
}

// Act submits a player action by its wire name.
func (s *GameService) Act(playerID, action string, amount int) error {
	a, ok := game.ParseAction(action)
	if !ok {
		return ErrUnknownAction
	}
	return s.table.Act(playerID, a, amount)
}

// Snapshot returns the current public table state in wire form.
func (s *GameService) Snapshot() SnapshotData {
	return SnapshotFromGame(s.table.Snapshot())
}

func (s *GameService) ownerOf(seat int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owners[seat]
}

// Publish implements game.Sink. Hole-card deals go to the seat's owner only,
// with a hidden indicator broadcast to everyone else; all other events are
// broadcast as-is.
func (s *GameService) Publish(e game.Event) {
	switch ev := e.(type) {
	case game.HoleCardsEvent:
		owner := s.ownerOf(ev.Seat)
		if owner != "" {
			private, _ := NewMessage(MessageTypeHoleCards, HoleCardsData{Seat: ev.Seat, Cards: ev.Cards})
			_ = s.server.SendToPlayer(owner, private)
		}
		hidden, _ := NewMessage(MessageTypeHoleCards, HoleCardsData{Seat: ev.Seat, Hidden: true})
		s.server.BroadcastExcept(owner, hidden)

	case game.SeatsEvent:
		s.broadcast(MessageTypeSeats, SeatsData{Seats: ev.Seats})

	case game.CountdownEvent:
		s.broadcast(MessageTypeCountdown, CountdownData{DelaySeconds: int(ev.Delay.Seconds())})

	case game.HandStartEvent:
		s.broadcast(MessageTypeHandStart, HandStartData{
			HandNum:        ev.HandNum,
			DealerSeat:     ev.DealerSeat,
			SmallBlindSeat: ev.SmallBlind,
			BigBlindSeat:   ev.BigBlind,
			SmallBlind:     ev.SBAmount,
			BigBlind:       ev.BBAmount,
			Seats:          ev.Seats,
		})

	case game.TurnEvent:
		s.broadcast(MessageTypeTurn, TurnData{
			Seat:       ev.Seat,
			Deadline:   ev.Deadline,
			CurrentBet: ev.CurrentBet,
			ToCall:     ev.ToCall,
			MinRaiseTo: ev.MinRaiseTo,
		})

	case game.PlayerActionEvent:
		s.broadcast(MessageTypePlayerAction, PlayerActionData{
			Seat:     ev.Seat,
			Action:   ev.Action.String(),
			Amount:   ev.Amount,
			Pot:      ev.Pot,
			TimedOut: ev.TimedOut,
		})

	case game.CommunityEvent:
		s.broadcast(MessageTypeCommunity, CommunityData{Street: ev.Street.String(), Board: ev.Board})

	case game.PotEvent:
		s.broadcast(MessageTypePot, PotData{Total: ev.Total})

	case game.ShowdownEvent:
		reveals := make([]RevealData, 0, len(ev.Reveals))
		for _, r := range ev.Reveals {
			reveals = append(reveals, RevealData{Seat: r.Seat, Cards: r.Cards})
		}
		s.broadcast(MessageTypeShowdown, ShowdownData{Board: ev.Board, Reveals: reveals})

	case game.HandEndEvent:
		results := make([]PotResultData, 0, len(ev.Results))
		for _, r := range ev.Results {
			results = append(results, PotResultData{Amount: r.Amount, Winners: r.Winners, Share: r.Share})
		}
		s.broadcast(MessageTypeHandEnd, HandEndData{HandNum: ev.HandNum, Results: results, Seats: ev.Seats})

	case game.MessageEvent:
		s.broadcast(MessageTypeTableMsg, TableMessageData{Text: ev.Text})

	default:
		s.logger.Warn("unhandled game event", "type", e.EventType())
	}
}

func (s *GameService) broadcast(mt MessageType, data interface{}) {
	msg, err := NewMessage(mt, data)
	if err != nil {
		s.logger.Error("Failed to encode message", "type", mt, "error", err)
		return
	}
	s.server.Broadcast(msg)
}
