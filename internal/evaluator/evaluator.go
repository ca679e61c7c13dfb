// Package evaluator adapts a 7-card hand evaluator to the game engine's
// winner-selection interface.
package evaluator

import (
	"fmt"

	"github.com/paulhankin/poker"

	"github.com/cardroom/cardroom/internal/deck"
	"github.com/cardroom/cardroom/internal/game"
)

// SevenCard scores each contender's best five-card hand from its two hole
// cards plus the board and returns every seat tied for the top score.
type SevenCard struct{}

var _ game.Evaluator = SevenCard{}

// Winners implements game.Evaluator. The board must hold five cards and each
// hand exactly two; the hand orchestrator guarantees both, so violations
// panic rather than limp along with a miscounted pot.
func (SevenCard) Winners(board []deck.Card, hands []game.ShowdownHand) []int {
	if len(board) != 5 {
		panic(fmt.Sprintf("evaluator: board has %d cards, want 5", len(board)))
	}

	best := int16(-1)
	var winners []int
	for _, h := range hands {
		score := poker.Eval7(makeFinalHand(board, h.Cards))
		switch {
		case score > best:
			best = score
			winners = append(winners[:0], h.Seat)
		case score == best:
			winners = append(winners, h.Seat)
		}
	}
	return winners
}

// Describe names the best five-card hand, for showdown commentary.
func Describe(board []deck.Card, hole []deck.Card) (string, error) {
	final := makeFinalHand(board, hole)
	return poker.Describe(final[:])
}

func makeFinalHand(board []deck.Card, hole []deck.Card) *[7]poker.Card {
	if len(hole) != 2 {
		panic(fmt.Sprintf("evaluator: hand has %d cards, want 2", len(hole)))
	}
	var final [7]poker.Card
	for i, c := range board {
		final[i] = convert(c)
	}
	final[5] = convert(hole[0])
	final[6] = convert(hole[1])
	return &final
}

func convert(c deck.Card) poker.Card {
	var suit poker.Suit
	switch c.Suit {
	case deck.Spades:
		suit = poker.Spade
	case deck.Hearts:
		suit = poker.Heart
	case deck.Diamonds:
		suit = poker.Diamond
	case deck.Clubs:
		suit = poker.Club
	}

	// The evaluator numbers ranks 1-13 with the ace low.
	rank := poker.Rank(c.Rank)
	if c.Rank == deck.Ace {
		rank = 1
	}

	card, err := poker.MakeCard(suit, rank)
	if err != nil {
		panic(fmt.Sprintf("evaluator: bad card %s: %v", c, err))
	}
	return card
}
