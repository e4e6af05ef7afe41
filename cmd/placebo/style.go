package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fadedpez/placebo/internal/types"
	"github.com/fadedpez/placebo/pkg/entities"
	"github.com/fadedpez/placebo/pkg/services/blackjack"
	"github.com/fadedpez/placebo/pkg/services/statistics"
	"github.com/pterm/pterm"
)

// handString lays cards out left to right, with a face-down card while the hole card is hidden
func handString(cards []entities.Card, hidden bool) string {
	parts := entities.CardStrings(cards)
	if hidden {
		parts = append(parts, "??")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " - ")
}

// tablePanels renders the dealer and player hands side by side
func tablePanels(snap blackjack.Snapshot, balance int64, perks []string) []pterm.Panel {
	pbox := pterm.DefaultBox.WithLeftPadding(4).WithRightPadding(4).WithTopPadding(1).WithBottomPadding(1)

	dealerValue := fmt.Sprintf("%d", snap.DealerValue)
	if snap.DealerHidden {
		dealerValue = "?"
	}
	dealer := pbox.WithTitle(pterm.LightYellow("|DEALER|")).WithTitleTopCenter().
		Sprintf("%s\nValue: %s", pterm.BgGreen.Sprint(handString(snap.DealerCards, snap.DealerHidden)), dealerValue)
	player := pbox.WithTitle(pterm.LightCyan("|YOU|")).WithTitleTopCenter().
		Sprintf("%s\nValue: %d\nBet: %d\nPoints: %d%s", pterm.BgGreen.Sprint(handString(snap.PlayerCards, false)), snap.PlayerValue, snap.Bet, balance, perkLine(perks))

	return []pterm.Panel{{Data: dealer}, {Data: player}}
}

// perkLine is the redeemed perks line under the player's hand, empty without perks
func perkLine(perks []string) string {
	if len(perks) == 0 {
		return ""
	}
	return "\nPerks: " + strings.Join(perks, ", ")
}

// settlementText describes how a finished round went
func settlementText(s *blackjack.Settlement) string {
	if s == nil {
		return ""
	}
	var text string
	switch {
	case s.Blackjack:
		text = pterm.LightGreen(fmt.Sprintf("Blackjack! You win %d points.", s.PointsChange))
	case s.Outcome == entities.ResultWin:
		text = pterm.LightGreen(fmt.Sprintf("You win %d points.", s.PointsChange))
	case s.Outcome == entities.ResultLoss:
		text = pterm.LightRed(fmt.Sprintf("You lose %d points.", -s.PointsChange))
	default:
		text = pterm.LightYellow("Push. Your bet is returned.")
	}
	if s.Warning != "" {
		text += "\n" + pterm.Yellow("Warning: "+s.Warning)
	}
	return text
}

// historyRows is the table data for the history view, header first
func historyRows(entries []entities.HistoryEntry) [][]string {
	rows := [][]string{{"When", "Game", "Result", "Points"}}
	for _, e := range entries {
		rows = append(rows, []string{
			e.Timestamp.Local().Format("Jan 02 15:04"),
			e.GameName,
			string(e.Result),
			fmt.Sprintf("%+d", e.PointsChange),
		})
	}
	return rows
}

// statsText summarises a player's record
func statsText(stats *entities.PlayerStatistics) string {
	if stats.GamesPlayed == 0 {
		return "No games played yet"
	}
	return pterm.Sprintfln("Games: %d\nWins: %d  Losses: %d  Pushes: %d\nWin rate: %.1f%%\nNet profit: %+d",
		stats.GamesPlayed, stats.Wins, stats.Losses, stats.Pushes, stats.WinRate(), stats.NetProfit())
}

// leaderboardRows is the table data for one leaderboard page, header first
func leaderboardRows(board *statistics.Leaderboard) [][]string {
	rows := [][]string{{"#", "Player", "Games", "Win rate", "Net"}}
	for _, p := range board.Players {
		rows = append(rows, []string{
			fmt.Sprintf("%d", p.Rank),
			p.PlayerID,
			fmt.Sprintf("%d", p.GamesPlayed),
			fmt.Sprintf("%.1f%%", p.WinRate),
			fmt.Sprintf("%+d", p.NetProfit),
		})
	}
	return rows
}

// errorText is the message shown for a failed action
func errorText(err error) string {
	var gameErr *types.GameError
	if errors.As(err, &gameErr) && gameErr.Message != "" {
		return gameErr.Message
	}
	return err.Error()
}
