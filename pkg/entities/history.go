package entities

import "time"

// MaxHistoryEntries is how many entries a player's history keeps
const MaxHistoryEntries = 20

// HistoryEntry is one line of a player's game history
type HistoryEntry struct {
	ID           string    `json:"id"`
	GameName     string    `json:"gameName"`
	Result       Result    `json:"result"`
	PointsChange int64     `json:"pointsChange"`
	Stake        int64     `json:"stake,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
