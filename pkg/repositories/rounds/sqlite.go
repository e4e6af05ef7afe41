package rounds

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fadedpez/placebo/pkg/db"
	"github.com/fadedpez/placebo/pkg/entities"
)

const selectRoundsSQL = `
	SELECT id, user_id, game_id, points_used, result, points_change, balance_after,
		player_cards, dealer_cards, player_score, dealer_score, completed_at
	FROM rounds`

// Totals per player, in the column order scanStatistics expects
const selectStatisticsSQL = `
	SELECT user_id,
		COUNT(*),
		COALESCE(SUM(CASE WHEN result = 'win' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN result = 'loss' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN result = 'push' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN points_change > 0 THEN points_change ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN points_change < 0 THEN -points_change ELSE 0 END), 0),
		MAX(completed_at)
	FROM rounds`

// SQLiteRepository implements Repository on the rounds table
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository wraps a database opened with db.OpenSQLite
func NewSQLiteRepository(conn *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: conn}
}

// SaveRound upserts a round by id
func (r *SQLiteRepository) SaveRound(ctx context.Context, record *entities.RoundRecord) error {
	playerCards, err := json.Marshal(cardsOrEmpty(record.PlayerCards))
	if err != nil {
		return err
	}
	dealerCards, err := json.Marshal(cardsOrEmpty(record.DealerCards))
	if err != nil {
		return err
	}

	query := `
		INSERT OR REPLACE INTO rounds (
			id, user_id, game_id, points_used, result, points_change, balance_after,
			player_cards, dealer_cards, player_score, dealer_score, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.GameID,
		record.PointsUsed,
		record.Result,
		record.PointsChange,
		record.BalanceAfter,
		string(playerCards),
		string(dealerCards),
		record.PlayerScore,
		record.DealerScore,
		db.FormatTime(record.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("error saving round: %w", err)
	}
	return nil
}

// GetPlayerRounds returns the player's most recent rounds
func (r *SQLiteRepository) GetPlayerRounds(ctx context.Context, playerID string, limit int) ([]*entities.RoundRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	query := selectRoundsSQL + `
		WHERE user_id = ?
		ORDER BY completed_at DESC, rowid DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying rounds: %w", err)
	}
	defer rows.Close()

	records := make([]*entities.RoundRecord, 0)
	for rows.Next() {
		var rec entities.RoundRecord
		var playerCards, dealerCards, completedAt string
		err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.GameID,
			&rec.PointsUsed,
			&rec.Result,
			&rec.PointsChange,
			&rec.BalanceAfter,
			&playerCards,
			&dealerCards,
			&rec.PlayerScore,
			&rec.DealerScore,
			&completedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning round row: %w", err)
		}
		if err := json.Unmarshal([]byte(playerCards), &rec.PlayerCards); err != nil {
			return nil, fmt.Errorf("error decoding player cards: %w", err)
		}
		if err := json.Unmarshal([]byte(dealerCards), &rec.DealerCards); err != nil {
			return nil, fmt.Errorf("error decoding dealer cards: %w", err)
		}
		if rec.CompletedAt, err = db.ParseTime(completedAt); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating round rows: %w", err)
	}
	return records, nil
}

// GetPlayerStatistics aggregates the player's rounds in SQL
func (r *SQLiteRepository) GetPlayerStatistics(ctx context.Context, playerID string) (*entities.PlayerStatistics, error) {
	stats, err := r.statistics(ctx, selectStatisticsSQL+" WHERE user_id = ? GROUP BY user_id", playerID)
	if err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return &entities.PlayerStatistics{PlayerID: playerID}, nil
	}
	return stats[0], nil
}

// GetAllPlayerStatistics aggregates every player's rounds
func (r *SQLiteRepository) GetAllPlayerStatistics(ctx context.Context) ([]*entities.PlayerStatistics, error) {
	return r.statistics(ctx, selectStatisticsSQL+" GROUP BY user_id ORDER BY user_id")
}

func (r *SQLiteRepository) statistics(ctx context.Context, query string, args ...interface{}) ([]*entities.PlayerStatistics, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying statistics: %w", err)
	}
	defer rows.Close()

	result := make([]*entities.PlayerStatistics, 0)
	for rows.Next() {
		var s entities.PlayerStatistics
		var lastPlayed sql.NullString
		err := rows.Scan(
			&s.PlayerID,
			&s.GamesPlayed,
			&s.Wins,
			&s.Losses,
			&s.Pushes,
			&s.TotalPointsWon,
			&s.TotalPointsLost,
			&lastPlayed,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning statistics row: %w", err)
		}
		if lastPlayed.Valid {
			if s.LastPlayed, err = db.ParseTime(lastPlayed.String); err != nil {
				return nil, err
			}
		}
		result = append(result, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statistics rows: %w", err)
	}
	return result, nil
}

// PruneBefore deletes rounds completed before cutoff
func (r *SQLiteRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM rounds WHERE completed_at < ?", db.FormatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("error pruning rounds: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Close leaves the shared connection to its owner
func (r *SQLiteRepository) Close() error {
	return nil
}

func cardsOrEmpty(cards []string) []string {
	if cards == nil {
		return []string{}
	}
	return cards
}
