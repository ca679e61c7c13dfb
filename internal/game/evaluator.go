package game

import "github.com/cardroom/cardroom/internal/deck"

// ShowdownHand is one candidate at showdown: a seat index and its two hole
// cards, evaluated together with the board.
type ShowdownHand struct {
	Seat  int
	Cards []deck.Card
}

// Evaluator ranks candidate hands at showdown. Implementations live outside
// the engine; the engine only needs the winning subset, ties included.
type Evaluator interface {
	Winners(board []deck.Card, hands []ShowdownHand) []int
}
