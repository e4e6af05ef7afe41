package entities

import "time"

// RoundState is the phase of a blackjack round
type RoundState string

const (
	StateBetting RoundState = "betting"
	StatePlaying RoundState = "playing"
	StateDealer  RoundState = "dealer"
	StateEnded   RoundState = "ended"
)

// Result represents the outcome of a finished round
type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
	ResultPush Result = "push"
)

// Valid reports whether r is one of the known results
func (r Result) Valid() bool {
	switch r {
	case ResultWin, ResultLoss, ResultPush:
		return true
	}
	return false
}

// RoundRecord is the archived form of a settled round, also sent to the backend as round_data
type RoundRecord struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	GameID       string    `json:"game_id"`
	PointsUsed   int64     `json:"points_used"`
	Result       Result    `json:"result"`
	PointsChange int64     `json:"points_change"`
	BalanceAfter int64     `json:"balance_after"`
	PlayerCards  []string  `json:"player_cards,omitempty"`
	DealerCards  []string  `json:"dealer_cards,omitempty"`
	PlayerScore  int       `json:"player_score,omitempty"`
	DealerScore  int       `json:"dealer_score,omitempty"`
	CompletedAt  time.Time `json:"completed_at"`
}

// RoundReceipt is the backend's acknowledgement of a recorded round
type RoundReceipt struct {
	RoundID    string `json:"round_id"`
	NewBalance int64  `json:"new_balance"`
}
