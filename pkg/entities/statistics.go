package entities

import "time"

// PlayerStatistics represents aggregated statistics for a player
type PlayerStatistics struct {
	PlayerID        string    `json:"playerId"`
	GamesPlayed     int       `json:"gamesPlayed"`
	Wins            int       `json:"wins"`
	Losses          int       `json:"losses"`
	Pushes          int       `json:"pushes"`
	TotalPointsWon  int64     `json:"totalPointsWon"`
	TotalPointsLost int64     `json:"totalPointsLost"`
	LastPlayed      time.Time `json:"lastPlayed,omitempty"`
}

// NetProfit calculates the player's net profit
func (s *PlayerStatistics) NetProfit() int64 {
	return s.TotalPointsWon - s.TotalPointsLost
}

// WinRate calculates the player's win rate as a percentage
func (s *PlayerStatistics) WinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0.0
	}
	return float64(s.Wins) / float64(s.GamesPlayed) * 100.0
}

// Record folds one finished game into the totals
func (s *PlayerStatistics) Record(result Result, pointsChange int64, at time.Time) {
	s.GamesPlayed++
	switch result {
	case ResultWin:
		s.Wins++
	case ResultLoss:
		s.Losses++
	case ResultPush:
		s.Pushes++
	}
	if pointsChange > 0 {
		s.TotalPointsWon += pointsChange
	} else {
		s.TotalPointsLost -= pointsChange
	}
	if at.After(s.LastPlayed) {
		s.LastPlayed = at
	}
}
