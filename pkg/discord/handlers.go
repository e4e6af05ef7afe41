package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/fadedpez/placebo/internal/discord"
	"github.com/fadedpez/placebo/internal/types"
	"github.com/fadedpez/placebo/pkg/backend"
	"github.com/fadedpez/placebo/pkg/entities"
	"github.com/fadedpez/placebo/pkg/services/session"
)

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info("Bot is ready: %v#%v", r.User.Username, r.User.Discriminator)
}

func (b *Bot) handleInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.HandleInteraction(i)
}

// HandleInteraction routes one interaction. Repeated deliveries are ignored.
func (b *Bot) HandleInteraction(i *discordgo.InteractionCreate) {
	if b.seen(i.ID) {
		b.log.Debug("Skipping already processed interaction: %s", i.ID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	var err error
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		err = b.handleCommand(ctx, i)
	case discordgo.InteractionMessageComponent:
		err = b.handleComponent(ctx, i)
	default:
		return
	}

	if err != nil {
		b.log.Debug("Interaction %s failed: %v", i.ID, err)
		if sendErr := discord.SendErrorResponse(b.session, i, err); sendErr != nil {
			b.log.Error("Error responding to interaction %s: %v", i.ID, sendErr)
		}
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func (b *Bot) handleCommand(ctx context.Context, i *discordgo.InteractionCreate) error {
	data := i.ApplicationCommandData()
	opts := optionMap(data.Options)
	userID := interactionUserID(i)
	b.log.Debug("Received command /%s from %s", data.Name, userID)

	switch data.Name {
	case "login":
		return b.handleLogin(ctx, i, userID, backend.Credentials{
			Username: stringOption(opts, "username"),
			Password: stringOption(opts, "password"),
		}, false)
	case "register":
		return b.handleLogin(ctx, i, userID, backend.Credentials{
			Username: stringOption(opts, "username"),
			Password: stringOption(opts, "password"),
			Email:    stringOption(opts, "email"),
		}, true)
	case "logout":
		return b.handleLogout(ctx, i, userID)
	case "games":
		return discord.SendResponse(b.session, i, discord.NewEphemeralResponse(renderLobby(b.deps.Lobby.List("")), nil))
	case "leaderboard":
		page := 1
		if opt, ok := opts["page"]; ok {
			page = int(opt.IntValue())
		}
		board, err := b.deps.Statistics.GetLeaderboard(ctx, page, 10)
		if err != nil {
			return types.WrapError(types.ErrInternalError, "The leaderboard is unavailable right now", err)
		}
		return discord.SendResponse(b.session, i, discord.NewEmbedResponse(leaderboardEmbed(board), nil))
	}

	sess, err := b.sessionFor(userID)
	if err != nil {
		return err
	}

	switch data.Name {
	case "points":
		return discord.SendResponse(b.session, i, discord.NewEphemeralResponse(
			fmt.Sprintf("💰 You have **%d** points.", sess.User().Points), nil))
	case "history":
		return discord.SendResponse(b.session, i, discord.NewEphemeralResponse(renderHistory(sess.History().Entries()), nil))
	case "stats":
		stats, err := b.deps.Statistics.PlayerStatistics(ctx, sess)
		if err != nil {
			return err
		}
		return discord.SendResponse(b.session, i, discord.NewEphemeralResponse(renderStats(stats), nil))
	case "blackjack":
		return discord.SendResponse(b.session, i, b.tableResponse(sess))
	case "rewards":
		balance := sess.User().Points
		catalog := b.deps.Rewards.Catalog()
		return discord.SendResponse(b.session, i, discord.NewEmbedResponse(
			rewardsEmbed(catalog, balance), rewardButtons(catalog, balance)))
	}

	return types.NewGameError(types.ErrInvalidAction, fmt.Sprintf("Unknown command /%s", data.Name))
}

func (b *Bot) handleLogin(ctx context.Context, i *discordgo.InteractionCreate, userID string, creds backend.Credentials, register bool) error {
	var (
		sess *session.Session
		err  error
	)
	if register {
		sess, err = b.deps.Sessions.Register(ctx, creds)
	} else {
		sess, err = b.deps.Sessions.Login(ctx, creds)
	}
	if err != nil {
		return err
	}
	b.link(ctx, userID, sess)

	user := sess.User()
	content := fmt.Sprintf("🎰 Welcome back, **%s**! You have **%d** points.", user.Name, user.Points)
	if user.IsFirstLogin {
		content = fmt.Sprintf("🎉 Welcome to Placebo Casino, **%s**! Here are **%d** points to get you started. Try /blackjack.", user.Name, user.Points)
		if err := sess.MarkWelcomed(ctx); err != nil {
			b.log.Warn("Welcome flag for %s: %v", user.Name, err)
		}
	}
	if sess.Mode() == backend.ModeLocal {
		content += "\n_Playing offline: progress is saved on this server only._"
	}
	return discord.SendResponse(b.session, i, discord.NewEphemeralResponse(content, nil))
}

func (b *Bot) handleLogout(ctx context.Context, i *discordgo.InteractionCreate, userID string) error {
	sessionID, ok := b.unlink(userID)
	if !ok {
		return ErrNotLinked
	}
	if err := b.deps.Sessions.Logout(ctx, sessionID); err != nil && !types.IsGameError(err, types.ErrNotLoggedIn) {
		return err
	}
	return discord.SendResponse(b.session, i, discord.NewEphemeralResponse("👋 You have been logged out.", nil))
}

func (b *Bot) tableResponse(sess *session.Session) *discord.Response {
	snap := sess.Round().Snapshot()
	balance := sess.Ledger().Balance()
	resp := discord.NewEphemeralResponse(renderTable(snap, balance, b.perkNames(sess)), tableButtons(snap.State, balance))
	if st := snap.Settlement; st != nil && st.Outcome == entities.ResultWin {
		if url := b.deps.Images.Random(); url != "" {
			resp.Embeds = []*discordgo.MessageEmbed{{Image: &discordgo.MessageEmbedImage{URL: url}}}
		}
	}
	return resp
}

// perkNames lists the session's redeemed perks by catalog name
func (b *Bot) perkNames(sess *session.Session) []string {
	ids := sess.Perks()
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if reward, err := b.deps.Rewards.Get(id); err == nil {
			names = append(names, reward.Name)
		} else {
			names = append(names, id)
		}
	}
	return names
}

func (b *Bot) handleComponent(ctx context.Context, i *discordgo.InteractionCreate) error {
	customID := i.MessageComponentData().CustomID
	sess, err := b.sessionFor(interactionUserID(i))
	if err != nil {
		return err
	}

	switch {
	case strings.HasPrefix(customID, betPrefix):
		amount, err := strconv.ParseInt(strings.TrimPrefix(customID, betPrefix), 10, 64)
		if err != nil {
			return types.NewGameError(types.ErrInvalidBet, "Unknown bet amount")
		}
		if _, err := sess.Round().PlaceBet(ctx, amount); err != nil {
			return err
		}
	case customID == buttonHit:
		if _, err := sess.Round().Hit(ctx); err != nil {
			return err
		}
	case customID == buttonStand:
		if _, err := sess.Round().Stand(ctx); err != nil {
			return err
		}
	case customID == buttonNewRound:
		if err := sess.Round().NewRound(); err != nil {
			return err
		}
	case strings.HasPrefix(customID, rewardPrefix):
		return b.handleRedeem(ctx, i, sess, strings.TrimPrefix(customID, rewardPrefix))
	default:
		return types.NewGameError(types.ErrInvalidAction, "Unknown button")
	}

	return discord.UpdateResponse(b.session, i, b.tableResponse(sess))
}

func (b *Bot) handleRedeem(ctx context.Context, i *discordgo.InteractionCreate, sess *session.Session, rewardID string) error {
	out, err := b.deps.Rewards.Redeem(ctx, sess, rewardID)
	if err != nil {
		return err
	}

	catalog := b.deps.Rewards.Catalog()
	resp := discord.NewEmbedResponse(rewardsEmbed(catalog, out.Balance), rewardButtons(catalog, out.Balance))
	resp.Content = fmt.Sprintf("✅ Successfully redeemed: **%s**!", out.Reward.Name)
	for _, w := range out.Warnings {
		resp.Content += "\n⚠️ " + w
	}
	return discord.UpdateResponse(b.session, i, resp)
}
