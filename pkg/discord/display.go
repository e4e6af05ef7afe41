package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/fadedpez/placebo/internal/games"
	"github.com/fadedpez/placebo/pkg/entities"
	"github.com/fadedpez/placebo/pkg/services/blackjack"
	"github.com/fadedpez/placebo/pkg/services/rewards"
	"github.com/fadedpez/placebo/pkg/services/statistics"
)

const (
	buttonHit      = "bj_hit"
	buttonStand    = "bj_stand"
	buttonNewRound = "bj_new_round"
	betPrefix      = "bj_bet_"
	rewardPrefix   = "reward_"
)

var betAmounts = []int64{10, 25, 50, 100}

func formatCards(cards []entities.Card, hidden bool) string {
	parts := entities.CardStrings(cards)
	if hidden {
		parts = append(parts, "🂠")
	}
	if len(parts) == 0 {
		return "-"
	}
	return "`" + strings.Join(parts, " ") + "`"
}

var resultEmoji = map[entities.Result]string{
	entities.ResultWin:  "🏆",
	entities.ResultLoss: "💀",
	entities.ResultPush: "🤝",
}

// renderTable describes the round for a table message
func renderTable(snap blackjack.Snapshot, balance int64, perks []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🃏 **Blackjack** | Balance: **%d** points\n", balance))
	if len(perks) > 0 {
		sb.WriteString(fmt.Sprintf("🎁 Perks: %s\n", strings.Join(perks, ", ")))
	}

	if snap.State == entities.StateBetting {
		sb.WriteString("Place your bet to deal a new hand.")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("Bet: %d\n", snap.Bet))
	dealerValue := fmt.Sprint(snap.DealerValue)
	if snap.DealerHidden {
		dealerValue = "?"
	}
	sb.WriteString(fmt.Sprintf("Dealer: %s (%s)\n", formatCards(snap.DealerCards, snap.DealerHidden), dealerValue))
	sb.WriteString(fmt.Sprintf("You: %s (%d)\n", formatCards(snap.PlayerCards, false), snap.PlayerValue))

	if st := snap.Settlement; st != nil {
		switch {
		case st.Blackjack:
			sb.WriteString(fmt.Sprintf("%s Blackjack! You win %d points.", resultEmoji[st.Outcome], st.PointsChange))
		case st.Outcome == entities.ResultWin:
			sb.WriteString(fmt.Sprintf("%s You win %d points.", resultEmoji[st.Outcome], st.PointsChange))
		case st.Outcome == entities.ResultLoss:
			sb.WriteString(fmt.Sprintf("%s You lose %d points.", resultEmoji[st.Outcome], -st.PointsChange))
		default:
			sb.WriteString(fmt.Sprintf("%s Push. Your bet is returned.", resultEmoji[st.Outcome]))
		}
		if st.Warning != "" {
			sb.WriteString("\n⚠️ " + st.Warning)
		}
	}
	return sb.String()
}

// tableButtons returns the actions valid in state
func tableButtons(state entities.RoundState, balance int64) []discordgo.MessageComponent {
	var buttons []discordgo.MessageComponent
	switch state {
	case entities.StateBetting:
		for _, amount := range betAmounts {
			buttons = append(buttons, discordgo.Button{
				Label:    fmt.Sprintf("Bet %d", amount),
				Style:    discordgo.SuccessButton,
				CustomID: fmt.Sprintf("%s%d", betPrefix, amount),
				Disabled: amount > balance,
			})
		}
	case entities.StatePlaying:
		buttons = []discordgo.MessageComponent{
			discordgo.Button{Label: "Hit", Style: discordgo.PrimaryButton, CustomID: buttonHit},
			discordgo.Button{Label: "Stand", Style: discordgo.SecondaryButton, CustomID: buttonStand},
		}
	case entities.StateEnded:
		buttons = []discordgo.MessageComponent{
			discordgo.Button{Label: "New Round", Style: discordgo.PrimaryButton, CustomID: buttonNewRound},
		}
	default:
		return nil
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
}

func renderHistory(entries []entities.HistoryEntry) string {
	if len(entries) == 0 {
		return "📜 No games played yet."
	}
	var sb strings.Builder
	sb.WriteString("📜 **Recent games**\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%s %s | %s | %+d | %s\n",
			resultEmoji[e.Result], e.GameName, e.Result, e.PointsChange, e.Timestamp.Format("Jan 2 15:04")))
	}
	return sb.String()
}

func renderStats(stats *entities.PlayerStatistics) string {
	if stats.GamesPlayed == 0 {
		return "📊 No games played yet."
	}
	return fmt.Sprintf("📊 **Statistics**\nGames: %d | Record: %dW-%dL-%dP | Win rate: %.1f%%\nWon: %d | Lost: %d | Net: %+d",
		stats.GamesPlayed, stats.Wins, stats.Losses, stats.Pushes, stats.WinRate(),
		stats.TotalPointsWon, stats.TotalPointsLost, stats.NetProfit())
}

func renderLobby(entries []games.Entry) string {
	var sb strings.Builder
	sb.WriteString("🎰 **Games lobby**\n")
	for _, e := range entries {
		status := "Coming soon"
		if e.Playable {
			status = "Play now"
		}
		sb.WriteString(fmt.Sprintf("**%s** (min bet %d): %s. _%s_\n", e.Name, e.MinBet, e.Description, status))
	}
	return sb.String()
}

func rewardsEmbed(catalog []rewards.Reward, balance int64) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(catalog))
	for _, r := range catalog {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("%s (%d pts)", r.Name, r.Cost),
			Value:  r.Description,
			Inline: true,
		})
	}
	return &discordgo.MessageEmbed{
		Title:       "🎁 Rewards",
		Description: fmt.Sprintf("You have **%d** points.", balance),
		Color:       0x6b46ff,
		Fields:      fields,
	}
}

// rewardButtons lays out one redeem button per reward, five to a row
func rewardButtons(catalog []rewards.Reward, balance int64) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	var row []discordgo.MessageComponent
	for _, r := range catalog {
		row = append(row, discordgo.Button{
			Label:    r.Name,
			Style:    discordgo.PrimaryButton,
			CustomID: rewardPrefix + r.ID,
			Disabled: r.Cost > balance,
		})
		if len(row) == 5 {
			rows = append(rows, discordgo.ActionsRow{Components: row})
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, discordgo.ActionsRow{Components: row})
	}
	return rows
}

func leaderboardEmbed(board *statistics.Leaderboard) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(board.Players))
	for _, player := range board.Players {
		var rankEmoji string
		switch player.Rank {
		case 1:
			rankEmoji = "👑 "
		case 2:
			rankEmoji = "🥈 "
		case 3:
			rankEmoji = "🥉 "
		default:
			rankEmoji = fmt.Sprintf("%d. ", player.Rank)
		}

		special := ""
		if player.IsTopWinner && player.Rank != 1 {
			special += " 💰"
		}
		if player.IsTopPlayer {
			special += " 🏆"
		}

		fields = append(fields, &discordgo.MessageEmbedField{
			Name: rankEmoji + player.PlayerID + special,
			Value: fmt.Sprintf("**Games:** %d | **Record:** %dW-%dL-%dP | **Win Rate:** %.1f%%\n**Net:** %+d",
				player.GamesPlayed, player.Wins, player.Losses, player.Pushes, player.WinRate, player.NetProfit),
		})
	}

	description := fmt.Sprintf("Showing page %d of %d (%d total players)", board.CurrentPage, board.TotalPages, board.TotalPlayers)
	if board.TotalPlayers == 0 {
		description = "No rounds have been archived yet."
	}

	return &discordgo.MessageEmbed{
		Title:       "🎮 Blackjack Leaderboard 🎮",
		Description: description,
		Color:       0x00ff00,
		Fields:      fields,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "👑 = #1 Net Profit | 💰 = Highest Net Profit | 🏆 = Most Games Played",
		},
		Timestamp: board.LastUpdated.Format(time.RFC3339),
	}
}
