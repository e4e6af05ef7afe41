package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/fadedpez/placebo/internal/discord"
	"github.com/fadedpez/placebo/internal/games"
	"github.com/fadedpez/placebo/internal/logging"
	"github.com/fadedpez/placebo/internal/types"
	"github.com/fadedpez/placebo/pkg/services/image"
	"github.com/fadedpez/placebo/pkg/services/rewards"
	"github.com/fadedpez/placebo/pkg/services/session"
	"github.com/fadedpez/placebo/pkg/services/statistics"
)

// ErrNotLinked is returned when a Discord user has no casino session
var ErrNotLinked = types.NewGameError(types.ErrNotLoggedIn, "You are not logged in. Use /login first.")

// Deps are the casino services the bot drives
type Deps struct {
	Sessions   *session.Registry
	Lobby      *games.Registry
	Rewards    *rewards.Service
	Statistics *statistics.Service
	Images     *image.Gallery
}

// Bot represents the Discord bot instance
type Bot struct {
	session discord.SessionHandler
	appID   string
	guildID string
	deps    Deps

	// Discord user id -> casino session id
	mu      sync.RWMutex
	players map[string]string

	// Interaction tracking to prevent duplicates
	interactionMu         sync.Mutex
	processedInteractions map[string]time.Time
	lastCleanupTime       time.Time

	registered []*discordgo.ApplicationCommand
	timeout    time.Duration
	log        *logging.Logger
}

// NewBot creates a new instance of the bot. guildID may be empty to
// register commands globally.
func NewBot(s discord.SessionHandler, appID, guildID string, deps Deps) *Bot {
	if deps.Lobby == nil {
		deps.Lobby = games.DefaultLobby()
	}
	if deps.Rewards == nil {
		deps.Rewards = rewards.NewService(nil)
	}
	if deps.Statistics == nil {
		deps.Statistics = statistics.NewService(nil)
	}
	return &Bot{
		session:               s,
		appID:                 appID,
		guildID:               guildID,
		deps:                  deps,
		players:               make(map[string]string),
		processedInteractions: make(map[string]time.Time),
		lastCleanupTime:       time.Now(),
		timeout:               15 * time.Second,
		log:                   logging.Default.With("discord"),
	}
}

// Start connects to Discord and registers the slash commands
func (b *Bot) Start() error {
	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(b.handleInteractions)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	appID := b.appID
	if appID == "" {
		if state := b.session.State(); state != nil && state.User != nil {
			appID = state.User.ID
		}
	}
	b.appID = appID

	for _, cmd := range Commands() {
		created, err := b.session.ApplicationCommandCreate(appID, b.guildID, cmd)
		if err != nil {
			return fmt.Errorf("error creating command %s: %w", cmd.Name, err)
		}
		b.registered = append(b.registered, created)
		b.log.Debug("Registered command /%s", cmd.Name)
	}
	return nil
}

// Stop removes the commands, logs out every linked player and closes the connection
func (b *Bot) Stop(ctx context.Context) error {
	for _, cmd := range b.registered {
		if cmd == nil {
			continue
		}
		if err := b.session.ApplicationCommandDelete(b.appID, b.guildID, cmd.ID); err != nil {
			b.log.Warn("Could not remove command /%s: %v", cmd.Name, err)
		}
	}
	b.registered = nil

	b.mu.Lock()
	players := b.players
	b.players = make(map[string]string)
	b.mu.Unlock()
	for _, sessionID := range players {
		_ = b.deps.Sessions.Logout(ctx, sessionID)
	}

	if err := b.session.Close(); err != nil {
		return fmt.Errorf("error closing connection: %w", err)
	}
	return nil
}

// link binds a Discord user to a casino session, ending any previous one
func (b *Bot) link(ctx context.Context, userID string, sess *session.Session) {
	b.mu.Lock()
	previous, ok := b.players[userID]
	b.players[userID] = sess.ID
	b.mu.Unlock()

	if ok && previous != sess.ID {
		_ = b.deps.Sessions.Logout(ctx, previous)
	}
}

func (b *Bot) unlink(userID string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.players[userID]
	delete(b.players, userID)
	return id, ok
}

// sessionFor returns the live session linked to a Discord user
func (b *Bot) sessionFor(userID string) (*session.Session, error) {
	b.mu.RLock()
	id, ok := b.players[userID]
	b.mu.RUnlock()
	if !ok {
		return nil, ErrNotLinked
	}

	sess, err := b.deps.Sessions.Get(id)
	if err != nil {
		// reaped or logged out elsewhere
		b.unlink(userID)
		return nil, ErrNotLinked
	}
	return sess, nil
}

// seen reports whether the interaction was already handled and marks it
func (b *Bot) seen(id string) bool {
	b.interactionMu.Lock()
	defer b.interactionMu.Unlock()

	if _, processed := b.processedInteractions[id]; processed {
		return true
	}
	now := time.Now()
	b.processedInteractions[id] = now

	if len(b.processedInteractions) > 100 && now.Sub(b.lastCleanupTime) > 5*time.Minute {
		for key, at := range b.processedInteractions {
			if now.Sub(at) > 10*time.Minute {
				delete(b.processedInteractions, key)
			}
		}
		b.lastCleanupTime = now
	}
	return false
}
