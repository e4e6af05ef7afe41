package backend

import (
	"context"

	"github.com/fadedpez/placebo/pkg/entities"
)

// Mode names which kind of store backs a session
type Mode string

const (
	ModeRemote Mode = "remote"
	ModeLocal  Mode = "local"
)

// Credentials are what a player supplies to log in or register
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// AuthResult is an established identity with its balance and history
type AuthResult struct {
	User    entities.User
	History []entities.HistoryEntry
	Token   string
}

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_backend

// Backend is the persistence contract a session is bound to. A Backend value
// belongs to one session and remembers the identity it logged in.
type Backend interface {
	// Mode reports which variant this is
	Mode() Mode

	// Login authenticates an existing player, or creates one where the store allows it
	Login(ctx context.Context, creds Credentials) (*AuthResult, error)

	// Register creates a new player
	Register(ctx context.Context, creds Credentials) (*AuthResult, error)

	// Logout ends the identity. Stored credentials are always cleared.
	Logout(ctx context.Context) error

	// SyncPoints applies a committed delta and returns the store's balance
	SyncPoints(ctx context.Context, delta int64, roundRef string) (int64, error)

	// CreateGameRound records a settled round
	CreateGameRound(ctx context.Context, record *entities.RoundRecord) (*entities.RoundReceipt, error)

	// MarkWelcomed clears the first-login flag
	MarkWelcomed(ctx context.Context) error

	// Health reports whether the store is reachable
	Health(ctx context.Context) error
}
