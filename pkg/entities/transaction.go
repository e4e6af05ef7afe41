package entities

import "time"

// TransactionType represents the reason for a points movement
type TransactionType string

const (
	TransactionTypeBet        TransactionType = "BET"
	TransactionTypePayout     TransactionType = "PAYOUT"
	TransactionTypePushReturn TransactionType = "PUSH_RETURN"
	TransactionTypeReward     TransactionType = "REWARD"
	TransactionTypeBonus      TransactionType = "BONUS"
	TransactionTypeExternal   TransactionType = "EXTERNAL"
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
)

// Transaction represents one committed change to a points balance
type Transaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	Amount       int64           `json:"amount"` // signed: negative for debits
	Type         TransactionType `json:"type"`
	ReferenceID  string          `json:"referenceId,omitempty"` // round or reward reference
	Description  string          `json:"description,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
	BalanceAfter int64           `json:"balanceAfter"`
}
