package session

import (
	"context"
	"strings"
	"time"

	"github.com/fadedpez/placebo/internal/ids"
	"github.com/fadedpez/placebo/internal/logging"
	"github.com/fadedpez/placebo/internal/types"
	"github.com/fadedpez/placebo/pkg/backend"
	"github.com/fadedpez/placebo/pkg/repositories/journal"
	"github.com/fadedpez/placebo/pkg/services/blackjack"
	"github.com/fadedpez/placebo/pkg/services/history"
	"github.com/fadedpez/placebo/pkg/services/ledger"
)

var ErrRestoreUnsupported = types.NewGameError(types.ErrNotLoggedIn, "this backend cannot restore a previous login")

// Restorer is implemented by backends that remember the last login across restarts
type Restorer interface {
	Restore(ctx context.Context) (*backend.AuthResult, error)
}

// BackendSelector picks the backend for a new session
type BackendSelector interface {
	Select(ctx context.Context) (backend.Backend, error)
}

// Option configures a Manager
type Option func(*Manager)

// WithJournal gives every session ledger a transaction journal
func WithJournal(repo journal.Repository) Option {
	return func(m *Manager) { m.journal = repo }
}

// WithArchive mirrors every session's settled rounds to archive
func WithArchive(archive history.Archive) Option {
	return func(m *Manager) { m.archive = archive }
}

// WithRoundOptions are applied to every session's blackjack round
func WithRoundOptions(opts ...blackjack.Option) Option {
	return func(m *Manager) { m.roundOpts = append(m.roundOpts, opts...) }
}

// WithClock sets the time source
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager establishes sessions: it picks a backend, authenticates, and wires
// the ledger, history log and round to it
type Manager struct {
	selector  BackendSelector
	journal   journal.Repository
	archive   history.Archive
	roundOpts []blackjack.Option
	now       func() time.Time
	log       *logging.Logger
}

// NewManager creates a manager
func NewManager(selector BackendSelector, opts ...Option) *Manager {
	m := &Manager{
		selector: selector,
		now:      time.Now,
		log:      logging.Default.With("session"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Login authenticates against the selected backend. Failures are returned as
// they are; a rejected remote login never falls back to local storage.
func (m *Manager) Login(ctx context.Context, creds backend.Credentials) (*Session, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	return m.establish(ctx, func(b backend.Backend) (*backend.AuthResult, error) {
		return b.Login(ctx, creds)
	})
}

// Authenticate is Login with loose arguments
func (m *Manager) Authenticate(ctx context.Context, name, password, email string) (*Session, error) {
	return m.Login(ctx, backend.Credentials{Username: name, Password: password, Email: email})
}

// Register creates an account on the selected backend and logs it in
func (m *Manager) Register(ctx context.Context, creds backend.Credentials) (*Session, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	return m.establish(ctx, func(b backend.Backend) (*backend.AuthResult, error) {
		return b.Register(ctx, creds)
	})
}

// Restore reopens the last login when the selected backend remembers one
func (m *Manager) Restore(ctx context.Context) (*Session, error) {
	return m.establish(ctx, func(b backend.Backend) (*backend.AuthResult, error) {
		r, ok := b.(Restorer)
		if !ok {
			return nil, ErrRestoreUnsupported
		}
		return r.Restore(ctx)
	})
}

// Logout ends the session. The backend is told on a best effort basis; the
// session's ledger and log are always disposed.
func (m *Manager) Logout(ctx context.Context, s *Session) error {
	if err := s.close(ctx); err != nil {
		m.log.Warn("Logout of %s not confirmed by the backend: %v", s.User().Name, err)
	}
	return nil
}

func (m *Manager) establish(ctx context.Context, auth func(backend.Backend) (*backend.AuthResult, error)) (*Session, error) {
	b, err := m.selector.Select(ctx)
	if err != nil {
		return nil, types.WrapError(types.ErrInternalError, "no backend available", err)
	}

	res, err := auth(b)
	if err != nil {
		return nil, err
	}

	s := m.newSession(b, res)
	m.log.Info("Session %s started for %s (%s backend)", s.ID, res.User.Name, b.Mode())
	return s, nil
}

func (m *Manager) newSession(b backend.Backend, res *backend.AuthResult) *Session {
	user := res.User
	log := m.log.With(user.Name)

	ledgerOpts := []ledger.Option{ledger.WithClock(m.now), ledger.WithLogger(log)}
	if m.journal != nil {
		ledgerOpts = append(ledgerOpts, ledger.WithJournal(m.journal))
	}
	historyOpts := []history.Option{history.WithClock(m.now), history.WithLogger(log)}
	if m.archive != nil {
		historyOpts = append(historyOpts, history.WithArchive(m.archive))
	}

	s := &Session{
		ID:       ids.NewID(),
		backend:  b,
		user:     user,
		ledger:   ledger.New(user.ID, user.Points, b, ledgerOpts...),
		history:  history.New(user.ID, res.History, b, historyOpts...),
		lastSeen: m.now(),
		now:      m.now,
		log:      log,
	}

	roundOpts := append([]blackjack.Option{
		blackjack.WithUserID(user.ID),
		blackjack.WithClock(m.now),
		blackjack.WithLogger(log),
	}, m.roundOpts...)
	s.round = blackjack.NewRound(s.ledger, s.history, roundOpts...)

	return s
}
