package profile

import (
	"context"
	"errors"

	"github.com/fadedpez/placebo/pkg/entities"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidUsername = errors.New("username must not be empty")
)

// Keys of the local fallback layout
const (
	UserKeyPrefix    = "placebo-casino-user-"
	HistoryKeyPrefix = "placebo-casino-history-"
	CurrentUserKey   = "placebo-casino-current-user"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_profile
// Repository stores local profiles, their histories and the current-user pointer
type Repository interface {
	// GetProfile returns ErrProfileNotFound for an unknown username
	GetProfile(ctx context.Context, username string) (*entities.Profile, error)

	// SaveProfile creates or replaces a profile
	SaveProfile(ctx context.Context, profile *entities.Profile) error

	// GetHistory returns the stored history, most recent first. Unknown users have none.
	GetHistory(ctx context.Context, username string) ([]entities.HistoryEntry, error)

	// SaveHistory replaces the stored history, keeping the first MaxHistoryEntries
	SaveHistory(ctx context.Context, username string, entries []entities.HistoryEntry) error

	// CurrentUser returns the username of the last login, or "" when logged out
	CurrentUser(ctx context.Context) (string, error)

	// SetCurrentUser writes the pointer. An empty username clears it.
	SetCurrentUser(ctx context.Context, username string) error
}

func capHistory(entries []entities.HistoryEntry) []entities.HistoryEntry {
	if len(entries) > entities.MaxHistoryEntries {
		entries = entries[:entities.MaxHistoryEntries]
	}
	out := make([]entities.HistoryEntry, len(entries))
	copy(out, entries)
	return out
}
