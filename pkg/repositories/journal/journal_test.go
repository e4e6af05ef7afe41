package journal

import (
	"context"
	"testing"
	"time"

	"github.com/fadedpez/placebo/pkg/db"
	"github.com/fadedpez/placebo/pkg/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repositories(t *testing.T) map[string]Repository {
	conn, err := db.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return map[string]Repository{
		"memory": NewMemoryRepository(),
		"sqlite": NewSQLiteRepository(conn),
	}
}

func TestJournal(t *testing.T) {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			txs := []*entities.Transaction{
				{UserID: "ada", Amount: -50, Type: entities.TransactionTypeBet, ReferenceID: "r1", BalanceAfter: 950, Timestamp: base},
				{UserID: "ada", Amount: 125, Type: entities.TransactionTypePayout, ReferenceID: "r1", BalanceAfter: 1075, Timestamp: base.Add(time.Second)},
				{UserID: "ada", Amount: -20, Type: entities.TransactionTypeBet, ReferenceID: "r2", BalanceAfter: 1055, Timestamp: base.Add(2 * time.Second)},
				{UserID: "bob", Amount: 100, Type: entities.TransactionTypeBonus, BalanceAfter: 1100, Timestamp: base},
			}
			for _, tx := range txs {
				require.NoError(t, repo.AddTransaction(ctx, tx))
				assert.NotEmpty(t, tx.ID)
			}

			got, err := repo.GetTransactions(ctx, "ada", 2)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "r2", got[0].ReferenceID)
			assert.Equal(t, int64(1075), got[1].BalanceAfter)
			assert.True(t, got[1].Timestamp.Equal(base.Add(time.Second)))

			bets, err := repo.GetTransactionsByType(ctx, "ada", entities.TransactionTypeBet, 10)
			require.NoError(t, err)
			require.Len(t, bets, 2)
			assert.Equal(t, int64(-20), bets[0].Amount)

			none, err := repo.GetTransactions(ctx, "nobody", 10)
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}
