package casino

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fadedpez/placebo/internal/config"
	"github.com/fadedpez/placebo/internal/games"
	"github.com/fadedpez/placebo/internal/logging"
	"github.com/fadedpez/placebo/pkg/backend"
	"github.com/fadedpez/placebo/pkg/backend/local"
	"github.com/fadedpez/placebo/pkg/backend/remote"
	"github.com/fadedpez/placebo/pkg/db"
	"github.com/fadedpez/placebo/pkg/repositories/journal"
	"github.com/fadedpez/placebo/pkg/repositories/profile"
	"github.com/fadedpez/placebo/pkg/repositories/rounds"
	"github.com/fadedpez/placebo/pkg/scheduler"
	"github.com/fadedpez/placebo/pkg/services/rewards"
	"github.com/fadedpez/placebo/pkg/services/session"
	"github.com/fadedpez/placebo/pkg/services/statistics"
)

// PruneInterval is how often archived rounds past retention are dropped
const PruneInterval = time.Hour

// Casino is every service a front end needs, built from one Config
type Casino struct {
	Config     *config.Config
	Sessions   *session.Registry
	Lobby      *games.Registry
	Rewards    *rewards.Service
	Statistics *statistics.Service

	conn      *sql.DB
	archive   rounds.Repository
	scheduler *scheduler.Scheduler
	log       *logging.Logger
}

// Option adjusts how New builds the casino
type Option func(*options)

type options struct {
	sessionOpts []session.Option
	localOpts   []local.Option
}

// WithSessionOptions are passed to the session manager
func WithSessionOptions(opts ...session.Option) Option {
	return func(o *options) { o.sessionOpts = append(o.sessionOpts, opts...) }
}

// WithLocalOptions are passed to every local backend
func WithLocalOptions(opts ...local.Option) Option {
	return func(o *options) { o.localOpts = append(o.localOpts, opts...) }
}

// New opens the configured stores and wires the services
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Casino, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Casino{
		Config: cfg,
		Lobby:  games.DefaultLobby(),
		log:    logging.Default.With("casino"),
	}

	if cfg.LocalStore == config.StoreSQLite {
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		c.conn = conn
	}

	profiles, err := c.profileRepository()
	if err != nil {
		c.closeStores()
		return nil, err
	}

	archive, err := c.roundArchive(ctx)
	if err != nil {
		c.closeStores()
		return nil, err
	}
	c.archive = archive

	var journalRepo journal.Repository = journal.NewMemoryRepository()
	if c.conn != nil {
		journalRepo = journal.NewSQLiteRepository(c.conn)
	}

	var remoteFactory backend.Factory
	if cfg.APIBaseURL != "" {
		remoteFactory = func() backend.Backend {
			return remote.New(cfg.APIBaseURL, remote.WithTimeout(cfg.APITimeout))
		}
	}
	localFactory := func() backend.Backend {
		return local.New(profiles, o.localOpts...)
	}
	selector := backend.NewSelector(cfg.BackendMode, remoteFactory, localFactory)

	sessionOpts := append([]session.Option{
		session.WithJournal(journalRepo),
		session.WithArchive(archive),
	}, o.sessionOpts...)
	manager := session.NewManager(selector, sessionOpts...)

	c.Sessions = session.NewRegistry(manager, cfg.SessionIdleTimeout)
	c.Rewards = rewards.NewService(nil)
	c.Statistics = statistics.NewService(archive)
	return c, nil
}

func (c *Casino) profileRepository() (profile.Repository, error) {
	switch c.Config.LocalStore {
	case config.StoreSQLite:
		return profile.NewSQLiteRepository(c.conn), nil
	case config.StoreFile:
		if err := c.Config.EnsureDataDir(); err != nil {
			return nil, err
		}
		return profile.NewFileRepository(c.Config.ProfileFile)
	default:
		return profile.NewMemoryRepository(), nil
	}
}

// roundArchive picks Elasticsearch when configured, then SQLite, then memory
func (c *Casino) roundArchive(ctx context.Context) (rounds.Repository, error) {
	if c.Config.ArchiveEnabled() {
		repo, err := rounds.NewElasticsearchRepository(ctx, &rounds.ElasticsearchConfig{
			URL:         c.Config.ElasticsearchURL,
			Username:    c.Config.ElasticsearchUsername,
			Password:    c.Config.ElasticsearchPassword,
			IndexPrefix: c.Config.ElasticsearchIndexPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("error connecting to round archive: %w", err)
		}
		c.log.Info("Archiving rounds to Elasticsearch index %s", repo.Index())
		return repo, nil
	}
	if c.conn != nil {
		return rounds.NewSQLiteRepository(c.conn), nil
	}
	return rounds.NewMemoryRepository(), nil
}

// Start runs the session reaper and archive retention
func (c *Casino) Start(ctx context.Context) {
	c.Sessions.Start(ctx)

	if c.Config.ArchiveRetention <= 0 || c.scheduler != nil {
		return
	}
	c.scheduler = scheduler.NewScheduler()
	c.scheduler.Add(&scheduler.Task{
		Name:       "archive_retention",
		Interval:   PruneInterval,
		RunOnStart: true,
		Fn: func(ctx context.Context) error {
			return c.Statistics.PruneArchive(ctx, c.Config.ArchiveRetention)
		},
	})
	c.scheduler.Start(ctx)
}

// Close logs out every session and releases the stores
func (c *Casino) Close(ctx context.Context) error {
	if c.scheduler != nil {
		c.scheduler.Stop()
		c.scheduler = nil
	}
	c.Sessions.Stop(ctx)
	return c.closeStores()
}

func (c *Casino) closeStores() error {
	var firstErr error
	if c.archive != nil {
		if err := c.archive.Close(); err != nil {
			firstErr = err
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.conn = nil
	}
	return firstErr
}
