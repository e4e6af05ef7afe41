package games

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fadedpez/placebo/internal/types"
	"github.com/thoas/go-funk"
)

// Entry is a game listed in the lobby
type Entry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	MinBet      int64  `json:"minBet"`
	Playable    bool   `json:"playable"`
}

// Registry holds the lobby entries in registration order
type Registry struct {
	entries []Entry
	mu      sync.RWMutex
}

// NewRegistry creates an empty lobby registry
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultLobby returns the lobby shipped with the casino
func DefaultLobby() *Registry {
	r := NewRegistry()
	for _, e := range []Entry{
		{ID: "blackjack", Name: "Blackjack", Category: "blackjack", Description: "Beat the dealer by getting as close to 21 as possible", MinBet: 10, Playable: true},
		{ID: "blackjack-3d", Name: "Blackjack 3D", Category: "blackjack", Description: "Blackjack at a 3D table, settled through game-end events", MinBet: 10, Playable: true},
		{ID: "poker", Name: "Texas Hold'em Poker", Category: "poker", Description: "Classic poker game with community cards", MinBet: 20},
		{ID: "baccarat", Name: "Baccarat", Category: "baccarat", Description: "Bet on Player, Banker, or Tie to win", MinBet: 25},
	} {
		// entries are static and unique
		_ = r.Register(e)
	}
	return r
}

// Register adds an entry to the lobby
func (r *Registry) Register(entry Entry) error {
	entry.ID = strings.ToLower(strings.TrimSpace(entry.ID))
	if entry.ID == "" {
		return types.NewGameError(types.ErrInvalidArgument, "Game id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(entry.ID) >= 0 {
		return types.NewGameError(types.ErrInvalidAction, fmt.Sprintf("Game %s is already registered", entry.ID))
	}

	r.entries = append(r.entries, entry)
	return nil
}

// Get returns the entry for a game id
func (r *Registry) Get(id string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(strings.ToLower(id))
	if i < 0 {
		return Entry{}, types.NewGameError(types.ErrGameNotFound, fmt.Sprintf("Game %s not found", id))
	}
	return r.entries[i], nil
}

// List returns a copy of every entry, optionally filtered by category.
// An empty category or "all" returns everything.
func (r *Registry) List(category string) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if category == "" || category == "all" {
		out := make([]Entry, len(r.entries))
		copy(out, r.entries)
		return out
	}
	return funk.Filter(r.entries, func(e Entry) bool {
		return e.Category == category
	}).([]Entry)
}

// Playable reports whether the game can be started right now
func (r *Registry) Playable(id string) (bool, error) {
	e, err := r.Get(id)
	if err != nil {
		return false, err
	}
	return e.Playable, nil
}

func (r *Registry) indexOf(id string) int {
	return funk.IndexOf(funk.Map(r.entries, func(e Entry) string { return e.ID }), id)
}
