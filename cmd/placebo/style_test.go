package main

import (
	"errors"
	"testing"
	"time"

	"github.com/fadedpez/placebo/internal/types"
	"github.com/fadedpez/placebo/pkg/entities"
	"github.com/fadedpez/placebo/pkg/services/blackjack"
	"github.com/fadedpez/placebo/pkg/services/statistics"
	"github.com/stretchr/testify/assert"
)

func TestHandString(t *testing.T) {
	cards := []entities.Card{
		entities.NewCard(entities.Spades, entities.Ace),
		entities.NewCard(entities.Hearts, entities.Nine),
	}
	parts := entities.CardStrings(cards)

	assert.Equal(t, "-", handString(nil, false))
	assert.Equal(t, parts[0]+" - "+parts[1], handString(cards, false))
	assert.Equal(t, parts[0]+" - ??", handString(cards[:1], true))
}

func TestPerkLine(t *testing.T) {
	assert.Empty(t, perkLine(nil))
	assert.Equal(t, "\nPerks: double-next, free-games", perkLine([]string{"double-next", "free-games"}))
}

func TestSettlementText(t *testing.T) {
	assert.Empty(t, settlementText(nil))
	assert.Contains(t, settlementText(&blackjack.Settlement{Outcome: entities.ResultWin, PointsChange: 75, Blackjack: true}), "Blackjack! You win 75 points.")
	assert.Contains(t, settlementText(&blackjack.Settlement{Outcome: entities.ResultLoss, PointsChange: -25}), "You lose 25 points.")
	assert.Contains(t, settlementText(&blackjack.Settlement{Outcome: entities.ResultPush}), "Push")
	assert.Contains(t, settlementText(&blackjack.Settlement{Outcome: entities.ResultWin, PointsChange: 10, Warning: "offline"}), "offline")
}

func TestHistoryRows(t *testing.T) {
	rows := historyRows([]entities.HistoryEntry{
		{GameName: "Blackjack", Result: entities.ResultWin, PointsChange: 75, Timestamp: time.Now()},
		{GameName: "Blackjack", Result: entities.ResultLoss, PointsChange: -25, Timestamp: time.Now()},
	})

	assert.Len(t, rows, 3)
	assert.Equal(t, "+75", rows[1][3])
	assert.Equal(t, "-25", rows[2][3])
}

func TestStatsText(t *testing.T) {
	assert.Equal(t, "No games played yet", statsText(&entities.PlayerStatistics{}))

	text := statsText(&entities.PlayerStatistics{GamesPlayed: 2, Wins: 1, Losses: 1, TotalPointsWon: 75, TotalPointsLost: 25})
	assert.Contains(t, text, "Games: 2")
	assert.Contains(t, text, "+50")
}

func TestLeaderboardRows(t *testing.T) {
	board := &statistics.Leaderboard{Players: []*statistics.PlayerRank{{
		PlayerStatistics: &entities.PlayerStatistics{PlayerID: "alice", GamesPlayed: 4},
		Rank:             1,
		WinRate:          50,
		NetProfit:        120,
	}}}

	rows := leaderboardRows(board)
	assert.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "alice", "4", "50.0%", "+120"}, rows[1])
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, "Bet too small", errorText(types.NewGameError(types.ErrInvalidBet, "Bet too small")))
	assert.Equal(t, "boom", errorText(errors.New("boom")))
}
