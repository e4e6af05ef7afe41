package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fadedpez/placebo/internal/ids"
	"github.com/fadedpez/placebo/pkg/db"
	"github.com/fadedpez/placebo/pkg/entities"
)

const selectTransactionsSQL = `
	SELECT id, user_id, amount, type, reference_id, description, timestamp, balance_after
	FROM transactions`

// SQLiteRepository implements Repository on a migrated SQLite database
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository wraps a database opened with db.OpenSQLite
func NewSQLiteRepository(conn *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: conn}
}

// AddTransaction records a new transaction
func (r *SQLiteRepository) AddTransaction(ctx context.Context, transaction *entities.Transaction) error {
	if transaction.ID == "" {
		transaction.ID = ids.NewUUID()
	}
	if transaction.Timestamp.IsZero() {
		transaction.Timestamp = time.Now()
	}

	query := `
		INSERT INTO transactions (
			id, user_id, amount, type, reference_id, description, timestamp, balance_after
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		transaction.ID,
		transaction.UserID,
		transaction.Amount,
		transaction.Type,
		transaction.ReferenceID,
		transaction.Description,
		db.FormatTime(transaction.Timestamp),
		transaction.BalanceAfter,
	)
	if err != nil {
		return fmt.Errorf("error adding transaction: %w", err)
	}

	return nil
}

// GetTransactions retrieves recent transactions for a user
func (r *SQLiteRepository) GetTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error) {
	query := selectTransactionsSQL + `
		WHERE user_id = ?
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?`

	return r.query(ctx, query, userID, limit)
}

// GetTransactionsByType retrieves transactions of a specific type
func (r *SQLiteRepository) GetTransactionsByType(ctx context.Context, userID string, transactionType entities.TransactionType, limit int) ([]*entities.Transaction, error) {
	query := selectTransactionsSQL + `
		WHERE user_id = ? AND type = ?
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?`

	return r.query(ctx, query, userID, transactionType, limit)
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...interface{}) ([]*entities.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]*entities.Transaction, 0)
	for rows.Next() {
		var tx entities.Transaction
		var timestamp string
		var referenceID, description sql.NullString

		err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.Amount,
			&tx.Type,
			&referenceID,
			&description,
			&timestamp,
			&tx.BalanceAfter,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning transaction row: %w", err)
		}
		tx.ReferenceID = referenceID.String
		tx.Description = description.String

		if tx.Timestamp, err = db.ParseTime(timestamp); err != nil {
			return nil, err
		}

		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}
