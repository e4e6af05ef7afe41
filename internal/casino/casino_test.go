package casino

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fadedpez/placebo/internal/config"
	"github.com/fadedpez/placebo/pkg/backend"
	"github.com/fadedpez/placebo/pkg/backend/local"
	"github.com/fadedpez/placebo/pkg/entities"
	"github.com/fadedpez/placebo/pkg/services/blackjack"
	"github.com/fadedpez/placebo/pkg/services/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func natural() *entities.Shoe {
	return entities.NewShoeFromCards([]entities.Card{
		entities.NewCard(entities.Spades, entities.Ace),
		entities.NewCard(entities.Hearts, entities.Nine),
		entities.NewCard(entities.Diamonds, entities.King),
		entities.NewCard(entities.Clubs, entities.Seven),
	})
}

func testConfig(t *testing.T, store string) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		DataDir:            dir,
		BackendMode:        config.BackendLocal,
		LocalStore:         store,
		SQLitePath:         filepath.Join(dir, "placebo.db"),
		ProfileFile:        filepath.Join(dir, "profile.json"),
		SessionIdleTimeout: time.Minute,
	}
}

func newCasino(t *testing.T, cfg *config.Config) *Casino {
	c, err := New(context.Background(), cfg,
		WithLocalOptions(local.WithBcryptCost(bcrypt.MinCost)),
		WithSessionOptions(session.WithRoundOptions(blackjack.WithShoeFactory(natural))),
	)
	require.NoError(t, err)
	return c
}

func TestNewWiresServices(t *testing.T) {
	for _, store := range []string{config.StoreMemory, config.StoreFile, config.StoreSQLite} {
		t.Run(store, func(t *testing.T) {
			c := newCasino(t, testConfig(t, store))
			defer c.Close(context.Background())

			assert.NotNil(t, c.Sessions)
			assert.NotNil(t, c.Rewards)
			assert.NotNil(t, c.Statistics)
			assert.Len(t, c.Lobby.List(""), 4)
		})
	}
}

func TestSQLiteRoundIsArchived(t *testing.T) {
	ctx := context.Background()
	c := newCasino(t, testConfig(t, config.StoreSQLite))
	defer c.Close(ctx)

	sess, err := c.Sessions.Login(ctx, backend.Credentials{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, backend.ModeLocal, sess.Mode())

	snap, err := sess.Round().PlaceBet(ctx, 50)
	require.NoError(t, err)
	require.NotNil(t, snap.Settlement)
	assert.Equal(t, int64(1075), sess.Ledger().Balance())

	stats, err := c.Statistics.PlayerStatistics(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.GamesPlayed)
	assert.Equal(t, 1, stats.Wins)

	board, err := c.Statistics.GetLeaderboard(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, board.TotalPlayers)
}

func TestFileStoreSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.StoreFile)

	c := newCasino(t, cfg)
	sess, err := c.Sessions.Login(ctx, backend.Credentials{Username: "bob", Password: "secret"})
	require.NoError(t, err)
	_, err = sess.Round().PlaceBet(ctx, 50)
	require.NoError(t, err)
	require.NoError(t, c.Close(ctx))

	c = newCasino(t, cfg)
	defer c.Close(ctx)
	sess, err = c.Sessions.Login(ctx, backend.Credentials{Username: "bob", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, int64(1075), sess.Ledger().Balance())
	assert.Len(t, sess.History().Entries(), 1)
}

func TestStartAndClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testConfig(t, config.StoreMemory)
	cfg.ArchiveRetention = time.Hour
	c := newCasino(t, cfg)

	c.Start(ctx)
	_, err := c.Sessions.Login(ctx, backend.Credentials{Username: "carol", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Sessions.Len())

	require.NoError(t, c.Close(ctx))
	assert.Equal(t, 0, c.Sessions.Len())
}
