package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/fadedpez/placebo/internal/casino"
	"github.com/fadedpez/placebo/internal/config"
	"github.com/fadedpez/placebo/internal/logging"
	"github.com/fadedpez/placebo/pkg/backend"
	"github.com/fadedpez/placebo/pkg/entities"
	"github.com/fadedpez/placebo/pkg/services/session"
)

const (
	menuBlackjack   = "Play Blackjack"
	menuHistory     = "Points & history"
	menuStats       = "Statistics"
	menuRewards     = "Rewards"
	menuLeaderboard = "Leaderboard"
	menuLobby       = "Games lobby"
	menuLogout      = "Log out"
	menuQuit        = "Quit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		pterm.Error.Printfln("Error loading configuration: %v", err)
		os.Exit(1)
	}
	logging.Init(logging.ParseLevel(cfg.LogLevel), true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	title, err := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("P", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("lacebo ", pterm.FgDarkGray.ToStyle()),
		putils.LettersFromStringWithStyle("C", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("asino", pterm.FgDarkGray.ToStyle()),
	).Srender()
	if err == nil {
		pterm.Print(title)
	}

	spinner, _ := pterm.DefaultSpinner.Start("Opening the casino...")
	c, err := casino.New(ctx, cfg)
	if err != nil {
		spinner.Fail(err.Error())
		os.Exit(1)
	}
	spinner.Success()
	c.Start(ctx)
	defer c.Close(context.Background())

	t := &terminal{casino: c}
	t.run(ctx)

	pterm.Println("Thank you for playing...")
}

type terminal struct {
	casino *casino.Casino
	sess   *session.Session
}

func (t *terminal) run(ctx context.Context) {
	if sess, err := t.casino.Sessions.Restore(ctx); err == nil {
		t.sess = sess
		pterm.Success.Printfln("Welcome back, %s", sess.User().Name)
	}

	for ctx.Err() == nil {
		if t.sess == nil && !t.authenticate(ctx) {
			return
		}
		t.notifyMode()

		choice, _ := pterm.DefaultInteractiveSelect.
			WithDefaultText(fmt.Sprintf("%s | %d points", t.sess.User().Name, t.sess.Ledger().Balance())).
			WithOptions([]string{menuBlackjack, menuHistory, menuStats, menuRewards, menuLeaderboard, menuLobby, menuLogout, menuQuit}).
			Show()

		switch choice {
		case menuBlackjack:
			t.playBlackjack(ctx)
		case menuHistory:
			t.showHistory()
		case menuStats:
			t.showStats(ctx)
		case menuRewards:
			t.showRewards(ctx)
		case menuLeaderboard:
			t.showLeaderboard(ctx)
		case menuLobby:
			t.showLobby()
		case menuLogout:
			if err := t.casino.Sessions.Logout(ctx, t.sess.ID); err != nil {
				pterm.Error.Println(errorText(err))
			}
			t.sess = nil
			pterm.Info.Println("You have been logged out.")
		default:
			return
		}
	}
}

// authenticate logs in or registers, returning false when the player quits
func (t *terminal) authenticate(ctx context.Context) bool {
	for ctx.Err() == nil {
		choice, _ := pterm.DefaultInteractiveSelect.
			WithDefaultText("Welcome to Placebo Casino").
			WithOptions([]string{"Log in", "Create account", menuQuit}).
			Show()
		if choice == menuQuit {
			return false
		}

		username, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Username").Show()
		password, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Password").WithMask("*").Show()
		creds := backend.Credentials{Username: strings.TrimSpace(username), Password: password}

		var err error
		if choice == "Create account" {
			email, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Email (optional)").Show()
			creds.Email = strings.TrimSpace(email)
			t.sess, err = t.casino.Sessions.Register(ctx, creds)
		} else {
			t.sess, err = t.casino.Sessions.Login(ctx, creds)
		}
		if err != nil {
			pterm.Error.Println(errorText(err))
			continue
		}

		user := t.sess.User()
		if user.IsFirstLogin {
			pterm.Success.Printfln("Welcome to Placebo Casino, %s! You start with %d points.", user.Name, user.Points)
			if err := t.sess.MarkWelcomed(ctx); err != nil {
				pterm.Warning.Println(errorText(err))
			}
		} else {
			pterm.Success.Printfln("Welcome back, %s", user.Name)
		}
		return true
	}
	return false
}

func (t *terminal) notifyMode() {
	if t.sess.Mode() == backend.ModeLocal && t.casino.Config.APIBaseURL != "" {
		pterm.Warning.Println("The server is unreachable. Progress is saved on this machine only.")
	}
}

func (t *terminal) playBlackjack(ctx context.Context) {
	round := t.sess.Round()
	if round.State() == entities.StateEnded {
		if err := round.NewRound(); err != nil {
			pterm.Error.Println(errorText(err))
			return
		}
	}

	for ctx.Err() == nil {
		snap := round.Snapshot()
		var err error

		switch snap.State {
		case entities.StateBetting:
			input, _ := pterm.DefaultInteractiveTextInput.
				WithDefaultText(fmt.Sprintf("Place your bet (you have %d points, empty to leave)", t.sess.Ledger().Balance())).
				Show()
			input = strings.TrimSpace(input)
			if input == "" {
				return
			}
			amount, convErr := strconv.ParseInt(input, 10, 64)
			if convErr != nil {
				pterm.Error.Println("Bet must be a whole number")
				continue
			}
			snap, err = round.PlaceBet(ctx, amount)

		case entities.StatePlaying:
			pterm.DefaultPanel.WithPanels([][]pterm.Panel{tablePanels(snap, t.sess.Ledger().Balance(), t.sess.Perks())}).Render()
			action, _ := pterm.DefaultInteractiveSelect.
				WithDefaultText("Select your next action").
				WithOptions([]string{"Hit", "Stand"}).
				Show()
			if action == "Hit" {
				snap, err = round.Hit(ctx)
			} else {
				snap, err = round.Stand(ctx)
			}

		default:
			pterm.DefaultPanel.WithPanels([][]pterm.Panel{tablePanels(snap, t.sess.Ledger().Balance(), t.sess.Perks())}).Render()
			pterm.Println(settlementText(snap.Settlement))
			again, _ := pterm.DefaultInteractiveConfirm.WithDefaultText("Play another round?").WithDefaultValue(true).Show()
			if !again {
				return
			}
			err = round.NewRound()
		}

		if err != nil {
			pterm.Error.Println(errorText(err))
		}
		t.sess.Touch()
	}
}

func (t *terminal) showHistory() {
	pterm.Info.Printfln("You have %d points", t.sess.Ledger().Balance())
	entries := t.sess.History().Entries()
	if len(entries) == 0 {
		pterm.Info.Println("No games played yet")
		return
	}
	pterm.DefaultTable.WithHasHeader().WithData(historyRows(entries)).Render()
}

func (t *terminal) showStats(ctx context.Context) {
	stats, err := t.casino.Statistics.PlayerStatistics(ctx, t.sess)
	if err != nil {
		pterm.Error.Println(errorText(err))
		return
	}
	pterm.DefaultBox.WithTitle(pterm.LightCyan("|STATISTICS|")).WithTitleTopCenter().Println(statsText(stats))
}

func (t *terminal) showRewards(ctx context.Context) {
	balance := t.sess.Ledger().Balance()
	affordable := t.casino.Rewards.Affordable(balance)
	if len(affordable) == 0 {
		pterm.Info.Printfln("You have %d points. Nothing in the catalog is affordable yet.", balance)
		return
	}

	options := make([]string, 0, len(affordable)+1)
	for _, r := range affordable {
		options = append(options, fmt.Sprintf("%s (%d points)", r.Name, r.Cost))
	}
	options = append(options, "Back")

	choice, _ := pterm.DefaultInteractiveSelect.
		WithDefaultText(fmt.Sprintf("You have %d points", balance)).
		WithOptions(options).
		Show()
	for i, opt := range options[:len(affordable)] {
		if opt != choice {
			continue
		}
		reward := affordable[i]
		confirm, _ := pterm.DefaultInteractiveConfirm.
			WithDefaultText(fmt.Sprintf("Redeem %s for %d points?", reward.Name, reward.Cost)).
			WithDefaultValue(true).
			Show()
		if !confirm {
			pterm.Info.Println("Redemption cancelled.")
			return
		}
		out, err := t.casino.Rewards.Redeem(ctx, t.sess, reward.ID)
		if err != nil {
			pterm.Error.Println(errorText(err))
			return
		}
		pterm.Success.Printfln("Successfully redeemed: %s! You now have %d points.", reward.Name, out.Balance)
		for _, w := range out.Warnings {
			pterm.Warning.Println(w)
		}
		return
	}
}

func (t *terminal) showLeaderboard(ctx context.Context) {
	board, err := t.casino.Statistics.GetLeaderboard(ctx, 1, 10)
	if err != nil {
		pterm.Error.Println(errorText(err))
		return
	}
	if len(board.Players) == 0 {
		pterm.Info.Println("No rounds have been archived yet.")
		return
	}
	pterm.DefaultTable.WithHasHeader().WithData(leaderboardRows(board)).Render()
}

func (t *terminal) showLobby() {
	rows := [][]string{{"Game", "Category", "Min bet", "Status"}}
	for _, g := range t.casino.Lobby.List("") {
		status := pterm.LightGreen("Play now")
		if !g.Playable {
			status = pterm.Gray("Coming soon")
		}
		rows = append(rows, []string{g.Name, g.Category, fmt.Sprintf("%d", g.MinBet), status})
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}
