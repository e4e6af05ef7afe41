package rounds

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fadedpez/placebo/pkg/entities"
)

// MemoryRepository implements Repository with in-memory storage
type MemoryRepository struct {
	mu sync.RWMutex
	// Map of round id to record
	rounds map[string]*entities.RoundRecord
}

// NewMemoryRepository creates a new in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		rounds: make(map[string]*entities.RoundRecord),
	}
}

// SaveRound stores a copy of the record
func (r *MemoryRepository) SaveRound(ctx context.Context, record *entities.RoundRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := *record
	r.rounds[rec.ID] = &rec
	return nil
}

// GetPlayerRounds returns the player's most recent rounds
func (r *MemoryRepository) GetPlayerRounds(ctx context.Context, playerID string, limit int) ([]*entities.RoundRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*entities.RoundRecord, 0)
	for _, rec := range r.rounds {
		if rec.UserID == playerID {
			c := *rec
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CompletedAt.After(result[j].CompletedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// GetPlayerStatistics folds every round of the player
func (r *MemoryRepository) GetPlayerStatistics(ctx context.Context, playerID string) (*entities.PlayerStatistics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &entities.PlayerStatistics{PlayerID: playerID}
	for _, rec := range r.rounds {
		if rec.UserID == playerID {
			stats.Record(rec.Result, rec.PointsChange, rec.CompletedAt)
		}
	}
	return stats, nil
}

// GetAllPlayerStatistics folds every round, grouped by player
func (r *MemoryRepository) GetAllPlayerStatistics(ctx context.Context) ([]*entities.PlayerStatistics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byPlayer := make(map[string]*entities.PlayerStatistics)
	for _, rec := range r.rounds {
		stats, ok := byPlayer[rec.UserID]
		if !ok {
			stats = &entities.PlayerStatistics{PlayerID: rec.UserID}
			byPlayer[rec.UserID] = stats
		}
		stats.Record(rec.Result, rec.PointsChange, rec.CompletedAt)
	}

	result := make([]*entities.PlayerStatistics, 0, len(byPlayer))
	for _, stats := range byPlayer {
		result = append(result, stats)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PlayerID < result[j].PlayerID })
	return result, nil
}

// PruneBefore drops rounds completed before cutoff
func (r *MemoryRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pruned := 0
	for id, rec := range r.rounds {
		if rec.CompletedAt.Before(cutoff) {
			delete(r.rounds, id)
			pruned++
		}
	}
	return pruned, nil
}

// Close is a no-op for memory repository since there are no resources to close
func (r *MemoryRepository) Close() error {
	return nil
}
