package remote

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/fadedpez/placebo/pkg/entities"
)

// flexibleID accepts ids sent as JSON strings or numbers
type flexibleID string

func (id *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = flexibleID(n.String())
	return nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

type historyItem struct {
	ID           flexibleID `json:"id"`
	GameName     string     `json:"gameName"`
	Result       string     `json:"result"`
	PointsChange int64      `json:"pointsChange"`
	Timestamp    string     `json:"timestamp"`
}

func (h historyItem) entry() entities.HistoryEntry {
	e := entities.HistoryEntry{
		ID:           string(h.ID),
		GameName:     h.GameName,
		Result:       entities.Result(h.Result),
		PointsChange: h.PointsChange,
	}
	if ts, err := time.Parse(time.RFC3339Nano, h.Timestamp); err == nil {
		e.Timestamp = ts
	} else if ms, err := strconv.ParseInt(h.Timestamp, 10, 64); err == nil {
		e.Timestamp = time.UnixMilli(ms)
	}
	return e
}

type authResponse struct {
	Success bool `json:"success"`
	User    struct {
		ID           flexibleID    `json:"id"`
		Name         string        `json:"name"`
		Email        string        `json:"email"`
		Points       int64         `json:"points"`
		IsFirstLogin bool          `json:"isFirstLogin"`
		GameHistory  []historyItem `json:"gameHistory"`
	} `json:"user"`
	IsFirstLogin *bool  `json:"isFirstLogin"`
	AccessToken  string `json:"access_token"`
	Error        string `json:"error"`
}

type pointsRequest struct {
	RoundID      string `json:"round_id"`
	PointsChange int64  `json:"points_change"`
}

type pointsResponse struct {
	Success bool   `json:"success"`
	Points  int64  `json:"points"`
	Error   string `json:"error"`
}

type roundRequest struct {
	UserID       string                `json:"user_id"`
	GameID       string                `json:"game_id"`
	PointsUsed   int64                 `json:"points_used"`
	Result       entities.Result       `json:"result"`
	PointsChange int64                 `json:"points_change"`
	RoundData    *entities.RoundRecord `json:"round_data"`
}

type roundResponse struct {
	RoundID    flexibleID `json:"round_id"`
	NewBalance int64      `json:"new_balance"`
}

type historyResponse struct {
	GameHistory []historyItem `json:"gameHistory"`
}

type statsResponse struct {
	Stats struct {
		Username        string  `json:"username"`
		GamesPlayed     int     `json:"gamesPlayed"`
		Wins            int     `json:"wins"`
		Losses          int     `json:"losses"`
		TotalPointsWon  int64   `json:"totalPointsWon"`
		TotalPointsLost int64   `json:"totalPointsLost"`
		WinRate         float64 `json:"winRate"`
		LastLogin       string  `json:"lastLogin"`
	} `json:"stats"`
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
