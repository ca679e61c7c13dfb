package game

import "errors"

var (
	// ErrTableFull indicates no empty seat exists.
	ErrTableFull = errors.New("game: table full")

	// ErrDuplicateIdentity indicates the identity already occupies a seat.
	ErrDuplicateIdentity = errors.New("game: identity already seated")

	// ErrInsufficientPlayers indicates a start request with fewer than two
	// occupied seats.
	ErrInsufficientPlayers = errors.New("game: at least two seated players required")

	// ErrHandInProgress indicates a start request while a hand or countdown
	// is already active.
	ErrHandInProgress = errors.New("game: hand already in progress")

	// ErrNotSeated indicates an event from an identity with no seat.
	ErrNotSeated = errors.New("game: player not seated")

	// ErrNotYourTurn indicates an action from a seat that is not the
	// current actor, including late actions racing a timeout.
	ErrNotYourTurn = errors.New("game: not your turn")

	// ErrIllegalAction indicates an action that violates the betting rules.
	// The same seat keeps its turn and deadline.
	ErrIllegalAction = errors.New("game: illegal action")
)
