package blackjack

import (
	"errors"

	"github.com/fadedpez/placebo/pkg/entities"
)

var (
	ErrHandBust  = errors.New("hand is bust")
	ErrHandStand = errors.New("hand is stand")
)

// Status represents the current state of the hand
type Status string

const (
	StatusPlaying Status = "PLAYING"
	StatusBust    Status = "BUST"
	StatusStand   Status = "STAND"
)

// Hand represents a player's or the dealer's cards in one round.
// Cards are only ever appended.
type Hand struct {
	Cards  []entities.Card
	Status Status
}

// NewHand creates a new blackjack hand
func NewHand() *Hand {
	return &Hand{
		Cards:  make([]entities.Card, 0, 5),
		Status: StatusPlaying,
	}
}

// AddCard adds a card to the hand
func (h *Hand) AddCard(card entities.Card) error {
	switch h.Status {
	case StatusBust:
		return ErrHandBust
	case StatusStand:
		return ErrHandStand
	}

	h.Cards = append(h.Cards, card)

	// Auto-bust if score exceeds 21
	if IsBust(h.Cards) {
		h.Status = StatusBust
	}
	return nil
}

// Stand marks the hand as stood
func (h *Hand) Stand() error {
	switch h.Status {
	case StatusBust:
		return ErrHandBust
	case StatusStand:
		return ErrHandStand
	}

	h.Status = StatusStand
	return nil
}

// Value returns the best possible score for the hand
func (h *Hand) Value() int {
	return HandValue(h.Cards)
}

// IsBlackjack reports whether the hand is a natural
func (h *Hand) IsBlackjack() bool {
	return IsBlackjack(h.Cards)
}

// Len returns the number of cards held
func (h *Hand) Len() int {
	return len(h.Cards)
}

// copyCards returns a copy safe to hand to callers
func (h *Hand) copyCards() []entities.Card {
	c := make([]entities.Card, len(h.Cards))
	copy(c, h.Cards)
	return c
}
