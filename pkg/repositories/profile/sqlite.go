package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fadedpez/placebo/internal/ids"
	"github.com/fadedpez/placebo/pkg/db"
	"github.com/fadedpez/placebo/pkg/entities"
)

// SQLiteRepository implements Repository on the profiles, history_entries and settings tables
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository wraps a database opened with db.OpenSQLite
func NewSQLiteRepository(conn *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: conn}
}

func (r *SQLiteRepository) GetProfile(ctx context.Context, username string) (*entities.Profile, error) {
	if username == "" {
		return nil, ErrInvalidUsername
	}

	query := `
		SELECT username, email, password_hash, points, is_first_login, created_at, updated_at
		FROM profiles
		WHERE username = ?`

	var p entities.Profile
	var createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&p.Username,
		&p.Email,
		&p.PasswordHash,
		&p.Points,
		&p.IsFirstLogin,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting profile: %w", err)
	}

	if p.CreatedAt, err = db.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = db.ParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *SQLiteRepository) SaveProfile(ctx context.Context, profile *entities.Profile) error {
	if profile == nil || profile.Username == "" {
		return ErrInvalidUsername
	}

	query := `
		INSERT INTO profiles (username, email, password_hash, points, is_first_login, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			email = excluded.email,
			password_hash = excluded.password_hash,
			points = excluded.points,
			is_first_login = excluded.is_first_login,
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		profile.Username,
		profile.Email,
		profile.PasswordHash,
		profile.Points,
		profile.IsFirstLogin,
		db.FormatTime(profile.CreatedAt),
		db.FormatTime(profile.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("error saving profile: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetHistory(ctx context.Context, username string) ([]entities.HistoryEntry, error) {
	query := `
		SELECT id, game_name, result, points_change, stake, timestamp
		FROM history_entries
		WHERE username = ?
		ORDER BY position
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, username, entities.MaxHistoryEntries)
	if err != nil {
		return nil, fmt.Errorf("error querying history: %w", err)
	}
	defer rows.Close()

	entries := make([]entities.HistoryEntry, 0)
	for rows.Next() {
		var e entities.HistoryEntry
		var timestamp string
		if err := rows.Scan(&e.ID, &e.GameName, &e.Result, &e.PointsChange, &e.Stake, &timestamp); err != nil {
			return nil, fmt.Errorf("error scanning history row: %w", err)
		}
		if e.Timestamp, err = db.ParseTime(timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}
	return entries, nil
}

// SaveHistory replaces the user's rows in one transaction. The profile must exist.
func (r *SQLiteRepository) SaveHistory(ctx context.Context, username string, entries []entities.HistoryEntry) error {
	if username == "" {
		return ErrInvalidUsername
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM history_entries WHERE username = ?", username); err != nil {
		return fmt.Errorf("error clearing history: %w", err)
	}

	insert := `
		INSERT INTO history_entries (id, username, game_name, result, points_change, stake, position, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for i, e := range capHistory(entries) {
		id := e.ID
		if id == "" {
			id = ids.NewUUID()
		}
		_, err := tx.ExecContext(ctx, insert,
			id, username, e.GameName, e.Result, e.PointsChange, e.Stake, i, db.FormatTime(e.Timestamp))
		if err != nil {
			return fmt.Errorf("error saving history entry: %w", err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) CurrentUser(ctx context.Context) (string, error) {
	var username string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", CurrentUserKey).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("error reading current user: %w", err)
	}
	return username, nil
}

func (r *SQLiteRepository) SetCurrentUser(ctx context.Context, username string) error {
	var err error
	if username == "" {
		_, err = r.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", CurrentUserKey)
	} else {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, CurrentUserKey, username)
	}
	if err != nil {
		return fmt.Errorf("error writing current user: %w", err)
	}
	return nil
}
