package entities

import (
	"math/rand"
	"time"
)

// ShoeSize is the number of cards in a freshly built shoe
const ShoeSize = 52

// Shoe is the ordered sequence of cards dealt from in one round.
// Cards are consumed from the front and never replenished.
type Shoe struct {
	cards []Card
}

// BuildShoe returns a freshly shuffled 52-card shoe
func BuildShoe() *Shoe {
	// Create a new random source using current time as seed
	return NewShoe(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewShoe builds one of each suit and rank, then shuffles with rng
func NewShoe(rng *rand.Rand) *Shoe {
	cards := make([]Card, 0, ShoeSize)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, NewCard(suit, rank))
		}
	}

	// rand.Shuffle is a Fisher–Yates shuffle
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})

	return &Shoe{cards: cards}
}

// NewShoeFromCards builds a stacked shoe that deals cards in the given order
func NewShoeFromCards(cards []Card) *Shoe {
	c := make([]Card, len(cards))
	copy(c, cards)
	return &Shoe{cards: c}
}

// Draw removes and returns the top card. ok is false when the shoe is empty.
func (s *Shoe) Draw() (card Card, ok bool) {
	if len(s.cards) == 0 {
		return Card{}, false
	}
	card = s.cards[0]
	s.cards = s.cards[1:]
	return card, true
}

// Len returns the number of cards left
func (s *Shoe) Len() int {
	return len(s.cards)
}

// Cards returns a copy of the remaining cards, top first
func (s *Shoe) Cards() []Card {
	c := make([]Card, len(s.cards))
	copy(c, s.cards)
	return c
}
