package local

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fadedpez/placebo/internal/logging"
	"github.com/fadedpez/placebo/internal/types"
	"github.com/fadedpez/placebo/pkg/backend"
	"github.com/fadedpez/placebo/pkg/entities"
	"github.com/fadedpez/placebo/pkg/repositories/profile"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotLoggedIn        = types.NewGameError(types.ErrNotLoggedIn, "not logged in")
	ErrInvalidCredentials = types.NewGameError(types.ErrInvalidCredentials, "invalid username or password")
	ErrUserExists         = types.NewGameError(types.ErrUserExists, "username already exists")
	ErrMissingUsername    = types.NewGameError(types.ErrInvalidArgument, "username is required")
	ErrMissingPassword    = types.NewGameError(types.ErrInvalidArgument, "password is required")
)

// Backend keeps profiles in a profile.Repository on this machine. It implements backend.Backend.
type Backend struct {
	mu       sync.Mutex
	repo     profile.Repository
	username string
	cost     int
	now      func() time.Time
	log      *logging.Logger
}

var _ backend.Backend = (*Backend)(nil)

// Option configures a Backend
type Option func(*Backend)

// WithBcryptCost sets the password hashing cost
func WithBcryptCost(cost int) Option {
	return func(b *Backend) { b.cost = cost }
}

// WithClock sets the time source for profile timestamps
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// New creates a local backend over repo
func New(repo profile.Repository, opts ...Option) *Backend {
	b := &Backend{
		repo: repo,
		cost: bcrypt.DefaultCost,
		now:  time.Now,
		log:  logging.Default.With("local"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Mode implements backend.Backend
func (b *Backend) Mode() backend.Mode {
	return backend.ModeLocal
}

// Login opens the named profile, creating it with the starting balance when
// it does not exist yet
func (b *Backend) Login(ctx context.Context, creds backend.Credentials) (*backend.AuthResult, error) {
	name, err := validate(creds)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := b.repo.GetProfile(ctx, name)
	switch {
	case errors.Is(err, profile.ErrProfileNotFound):
		if p, err = b.create(ctx, name, creds); err != nil {
			return nil, err
		}
		b.log.Info("Created local profile %s", name)
	case err != nil:
		return nil, types.WrapError(types.ErrDatabaseError, "failed to load profile", err)
	case p.PasswordHash == "":
		// profiles saved before passwords were stored take the first one given
		if p.PasswordHash, err = b.hash(creds.Password); err != nil {
			return nil, err
		}
		p.UpdatedAt = b.now()
		if err := b.repo.SaveProfile(ctx, p); err != nil {
			return nil, types.WrapError(types.ErrDatabaseError, "failed to save profile", err)
		}
	default:
		if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(creds.Password)); err != nil {
			return nil, ErrInvalidCredentials
		}
	}

	return b.open(ctx, p)
}

// Register creates a profile, refusing names that are taken
func (b *Backend) Register(ctx context.Context, creds backend.Credentials) (*backend.AuthResult, error) {
	name, err := validate(creds)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	_, err = b.repo.GetProfile(ctx, name)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, profile.ErrProfileNotFound) {
		return nil, types.WrapError(types.ErrDatabaseError, "failed to load profile", err)
	}

	p, err := b.create(ctx, name, creds)
	if err != nil {
		return nil, err
	}
	return b.open(ctx, p)
}

// Restore reopens the profile named by the current-user pointer
func (b *Backend) Restore(ctx context.Context) (*backend.AuthResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	name, err := b.repo.CurrentUser(ctx)
	if err != nil {
		return nil, types.WrapError(types.ErrDatabaseError, "failed to read current user", err)
	}
	if name == "" {
		return nil, ErrNotLoggedIn
	}

	p, err := b.repo.GetProfile(ctx, name)
	if errors.Is(err, profile.ErrProfileNotFound) {
		if err := b.repo.SetCurrentUser(ctx, ""); err != nil {
			b.log.Error("Failed to clear current user %s: %v", name, err)
		}
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, types.WrapError(types.ErrDatabaseError, "failed to load profile", err)
	}
	return b.open(ctx, p)
}

// Logout clears the current-user pointer
func (b *Backend) Logout(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.username = ""
	if err := b.repo.SetCurrentUser(ctx, ""); err != nil {
		return types.WrapError(types.ErrDatabaseError, "failed to clear current user", err)
	}
	return nil
}

// SyncPoints applies delta to the stored profile
func (b *Backend) SyncPoints(ctx context.Context, delta int64, roundRef string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := b.current(ctx)
	if err != nil {
		return 0, err
	}

	p.Points += delta
	p.UpdatedAt = b.now()
	if err := b.repo.SaveProfile(ctx, p); err != nil {
		return 0, types.WrapError(types.ErrDatabaseError, "failed to save points", err)
	}
	return p.Points, nil
}

// CreateGameRound prepends the round to the stored history
func (b *Backend) CreateGameRound(ctx context.Context, record *entities.RoundRecord) (*entities.RoundReceipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := b.current(ctx)
	if err != nil {
		return nil, err
	}

	history, err := b.repo.GetHistory(ctx, p.Username)
	if err != nil {
		return nil, types.WrapError(types.ErrDatabaseError, "failed to load history", err)
	}

	timestamp := record.CompletedAt
	if timestamp.IsZero() {
		timestamp = b.now()
	}
	entry := entities.HistoryEntry{
		ID:           record.ID,
		GameName:     record.GameID,
		Result:       record.Result,
		PointsChange: record.PointsChange,
		Stake:        record.PointsUsed,
		Timestamp:    timestamp,
	}
	history = append([]entities.HistoryEntry{entry}, history...)

	if err := b.repo.SaveHistory(ctx, p.Username, history); err != nil {
		return nil, types.WrapError(types.ErrDatabaseError, "failed to save history", err)
	}
	return &entities.RoundReceipt{RoundID: record.ID, NewBalance: p.Points}, nil
}

// MarkWelcomed clears the stored first-login flag
func (b *Backend) MarkWelcomed(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := b.current(ctx)
	if err != nil {
		return err
	}
	if !p.IsFirstLogin {
		return nil
	}

	p.IsFirstLogin = false
	p.UpdatedAt = b.now()
	if err := b.repo.SaveProfile(ctx, p); err != nil {
		return types.WrapError(types.ErrDatabaseError, "failed to save profile", err)
	}
	return nil
}

// Health is always nil; the store is on this machine
func (b *Backend) Health(ctx context.Context) error {
	return nil
}

func (b *Backend) create(ctx context.Context, name string, creds backend.Credentials) (*entities.Profile, error) {
	hash, err := b.hash(creds.Password)
	if err != nil {
		return nil, err
	}
	p := entities.NewProfile(name, creds.Email, hash, b.now())
	if err := b.repo.SaveProfile(ctx, p); err != nil {
		return nil, types.WrapError(types.ErrDatabaseError, "failed to create profile", err)
	}
	return p, nil
}

func (b *Backend) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", types.WrapError(types.ErrInternalError, "failed to hash password", err)
	}
	return string(hash), nil
}

// open binds the backend to p and writes the current-user pointer
func (b *Backend) open(ctx context.Context, p *entities.Profile) (*backend.AuthResult, error) {
	history, err := b.repo.GetHistory(ctx, p.Username)
	if err != nil {
		return nil, types.WrapError(types.ErrDatabaseError, "failed to load history", err)
	}
	if err := b.repo.SetCurrentUser(ctx, p.Username); err != nil {
		return nil, types.WrapError(types.ErrDatabaseError, "failed to write current user", err)
	}
	b.username = p.Username

	return &backend.AuthResult{User: *p.User(), History: history}, nil
}

func (b *Backend) current(ctx context.Context) (*entities.Profile, error) {
	if b.username == "" {
		return nil, ErrNotLoggedIn
	}
	p, err := b.repo.GetProfile(ctx, b.username)
	if err != nil {
		return nil, types.WrapError(types.ErrDatabaseError, fmt.Sprintf("failed to load profile %s", b.username), err)
	}
	return p, nil
}

func validate(creds backend.Credentials) (string, error) {
	name := strings.TrimSpace(creds.Username)
	if name == "" {
		return "", ErrMissingUsername
	}
	if creds.Password == "" {
		return "", ErrMissingPassword
	}
	return name, nil
}
