package rounds

import (
	"context"
	"time"

	"github.com/fadedpez/placebo/pkg/entities"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_rounds

// Repository archives settled rounds and aggregates them per player
type Repository interface {
	// SaveRound stores a round. Saving the same id twice replaces it.
	SaveRound(ctx context.Context, record *entities.RoundRecord) error

	// GetPlayerRounds returns up to limit rounds for a player, most recent first
	GetPlayerRounds(ctx context.Context, playerID string, limit int) ([]*entities.RoundRecord, error)

	// GetPlayerStatistics aggregates every archived round of a player
	GetPlayerStatistics(ctx context.Context, playerID string) (*entities.PlayerStatistics, error)

	// GetAllPlayerStatistics aggregates per player, for the leaderboard
	GetAllPlayerStatistics(ctx context.Context) ([]*entities.PlayerStatistics, error)

	// PruneBefore deletes rounds completed before cutoff and returns how many went
	PruneBefore(ctx context.Context, cutoff time.Time) (int, error)

	// Close closes any resources used by the repository
	Close() error
}
