package blackjack

import (
	"strconv"

	"github.com/fadedpez/placebo/pkg/entities"
)

const (
	BlackjackTotal = 21 // Best possible hand total
	DealerStand    = 17 // Dealer draws while below this total
	DefaultMinBet  = 1  // Smallest bet accepted unless configured otherwise
)

// CardValue returns the provisional value of a card, counting an ace as 11
func CardValue(card entities.Card) int {
	switch card.Rank {
	case entities.Ace:
		return 11
	case entities.Jack, entities.Queen, entities.King:
		return 10
	default:
		val, _ := strconv.Atoi(string(card.Rank))
		return val
	}
}

// IsAce reports whether the card is an ace
func IsAce(card entities.Card) bool {
	return card.Rank == entities.Ace
}

// HandValue returns the best total for the cards. Aces start at 11 and are
// demoted to 1 one at a time while the total is over 21.
func HandValue(cards []entities.Card) int {
	total := 0
	soft := 0
	for _, card := range cards {
		total += CardValue(card)
		if IsAce(card) {
			soft++
		}
	}

	for total > BlackjackTotal && soft > 0 {
		total -= 10
		soft--
	}

	return total
}

// IsBlackjack reports a two-card 21
func IsBlackjack(cards []entities.Card) bool {
	return len(cards) == 2 && HandValue(cards) == BlackjackTotal
}

// IsBust checks if a hand exceeds 21
func IsBust(cards []entities.Card) bool {
	return HandValue(cards) > BlackjackTotal
}

// ShouldDealerDraw applies the dealer policy: draw below 17, soft or hard
func ShouldDealerDraw(cards []entities.Card) bool {
	return HandValue(cards) < DealerStand
}

// Compare compares the player's total against the dealer's and returns:
// 1 if the player wins
// -1 if the dealer wins
// 0 if push (tie)
// A player bust loses before the dealer's hand matters.
func Compare(player, dealer []entities.Card) int {
	if IsBust(player) {
		return -1
	}
	if IsBust(dealer) {
		return 1
	}

	p, d := HandValue(player), HandValue(dealer)
	if p > d {
		return 1
	} else if p < d {
		return -1
	}
	return 0
}

// BlackjackPayout is the amount returned for a natural: the stake plus 3:2, rounded down
func BlackjackPayout(bet int64) int64 {
	return bet * 5 / 2
}

// WinPayout is the amount returned for an ordinary win: the stake plus 1:1
func WinPayout(bet int64) int64 {
	return bet * 2
}
