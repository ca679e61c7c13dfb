package deck

import rand "math/rand/v2"

// Deck is a shuffled sequence of the 52 distinct cards, consumed from the
// top. A fresh deck is built for every hand.
type Deck struct {
	cards []Card
}

// New creates a full 52-card deck shuffled with the provided RNG.
func New(rng *rand.Rand) *Deck {
	d := &Deck{cards: make([]Card, 0, 52)}
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, Card{Suit: suit, Rank: rank})
		}
	}
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
	return d
}

// Draw removes and returns the top card. Drawing from an empty deck is a
// programmer error: one hand can never consume more than 52 cards.
func (d *Deck) Draw() Card {
	if len(d.cards) == 0 {
		panic("deck: draw from empty deck")
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card
}

// DrawN draws n cards from the top of the deck.
func (d *Deck) DrawN(n int) []Card {
	cards := make([]Card, n)
	for i := range cards {
		cards[i] = d.Draw()
	}
	return cards
}

// Remaining returns the number of cards left in the deck.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
