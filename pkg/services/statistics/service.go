package statistics

import (
	"context"
	"sort"
	"time"

	"github.com/fadedpez/placebo/internal/logging"
	"github.com/fadedpez/placebo/pkg/entities"
	"github.com/fadedpez/placebo/pkg/repositories/rounds"
	"github.com/fadedpez/placebo/pkg/services/session"
)

// RemoteSource is implemented by backends that aggregate statistics server side
type RemoteSource interface {
	PlayerStatistics(ctx context.Context) (*entities.PlayerStatistics, error)
}

// Compute aggregates history entries into dashboard statistics
func Compute(playerID string, entries []entities.HistoryEntry) *entities.PlayerStatistics {
	stats := &entities.PlayerStatistics{PlayerID: playerID}
	for _, e := range entries {
		stats.Record(e.Result, e.PointsChange, e.Timestamp)
	}
	return stats
}

// Service provides methods for retrieving and processing player statistics
type Service struct {
	repository rounds.Repository
	log        *logging.Logger
	now        func() time.Time
}

// NewService creates a new statistics service. repository may be nil when no archive is configured.
func NewService(repository rounds.Repository) *Service {
	return &Service{
		repository: repository,
		log:        logging.Default.With("statistics"),
		now:        time.Now,
	}
}

// PlayerStatistics returns the dashboard numbers for a session's player. The
// round archive is asked first, then a backend that aggregates server side,
// and finally the session's own history.
func (s *Service) PlayerStatistics(ctx context.Context, sess *session.Session) (*entities.PlayerStatistics, error) {
	user := sess.User()

	if s.repository != nil {
		stats, err := s.repository.GetPlayerStatistics(ctx, user.ID)
		switch {
		case err != nil:
			s.log.Warn("Archive statistics for %s unavailable: %v", user.ID, err)
		case stats.GamesPlayed > 0:
			return stats, nil
		}
	}

	if remote, ok := sess.Backend().(RemoteSource); ok {
		stats, err := remote.PlayerStatistics(ctx)
		if err == nil {
			return stats, nil
		}
		s.log.Warn("Server statistics for %s unavailable: %v", user.ID, err)
	}

	return Compute(user.ID, sess.History().Entries()), nil
}

// PlayerRank represents a player's statistics with ranking information
type PlayerRank struct {
	*entities.PlayerStatistics
	Rank        int     `json:"rank"`
	WinRate     float64 `json:"win_rate"`
	NetProfit   int64   `json:"net_profit"`
	IsTopWinner bool    `json:"is_top_winner"`
	IsTopPlayer bool    `json:"is_top_player"`
}

// Leaderboard represents a paginated leaderboard of player statistics
type Leaderboard struct {
	Players        []*PlayerRank `json:"players"`
	TotalPlayers   int           `json:"total_players"`
	CurrentPage    int           `json:"current_page"`
	TotalPages     int           `json:"total_pages"`
	PlayersPerPage int           `json:"players_per_page"`
	LastUpdated    time.Time     `json:"last_updated"`
}

// GetLeaderboard ranks every archived player by net profit
func (s *Service) GetLeaderboard(ctx context.Context, page, playersPerPage int) (*Leaderboard, error) {
	// Default values
	if page < 1 {
		page = 1
	}
	if playersPerPage < 1 {
		playersPerPage = 10
	}

	var allStats []*entities.PlayerStatistics
	if s.repository != nil {
		var err error
		if allStats, err = s.repository.GetAllPlayerStatistics(ctx); err != nil {
			return nil, err
		}
	}

	playerRanks := make([]*PlayerRank, 0, len(allStats))
	for _, stats := range allStats {
		// Skip players with no games
		if stats.GamesPlayed == 0 {
			continue
		}
		playerRanks = append(playerRanks, &PlayerRank{
			PlayerStatistics: stats,
			WinRate:          stats.WinRate(),
			NetProfit:        stats.NetProfit(),
		})
	}

	// Sort by net profit, then games played
	sort.SliceStable(playerRanks, func(i, j int) bool {
		if playerRanks[i].NetProfit != playerRanks[j].NetProfit {
			return playerRanks[i].NetProfit > playerRanks[j].NetProfit
		}
		return playerRanks[i].GamesPlayed > playerRanks[j].GamesPlayed
	})

	if len(playerRanks) > 0 {
		playerRanks[0].IsTopWinner = true

		mostGamesIdx := 0
		for i := 1; i < len(playerRanks); i++ {
			if playerRanks[i].GamesPlayed > playerRanks[mostGamesIdx].GamesPlayed {
				mostGamesIdx = i
			}
		}
		playerRanks[mostGamesIdx].IsTopPlayer = true
	}

	for i := range playerRanks {
		playerRanks[i].Rank = i + 1
	}

	// Calculate pagination
	totalPlayers := len(playerRanks)
	totalPages := (totalPlayers + playersPerPage - 1) / playersPerPage
	if page > totalPages && totalPages > 0 {
		page = totalPages
	}

	start := (page - 1) * playersPerPage
	end := start + playersPerPage
	if end > totalPlayers {
		end = totalPlayers
	}

	currentPagePlayers := []*PlayerRank{}
	if start < totalPlayers {
		currentPagePlayers = playerRanks[start:end]
	}

	return &Leaderboard{
		Players:        currentPagePlayers,
		TotalPlayers:   totalPlayers,
		CurrentPage:    page,
		TotalPages:     totalPages,
		PlayersPerPage: playersPerPage,
		LastUpdated:    s.now(),
	}, nil
}

// PruneArchive drops archived rounds older than retention
func (s *Service) PruneArchive(ctx context.Context, retention time.Duration) error {
	if s.repository == nil || retention <= 0 {
		return nil
	}
	_, err := s.repository.PruneBefore(ctx, s.now().Add(-retention))
	return err
}
