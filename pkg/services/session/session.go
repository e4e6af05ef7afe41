package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fadedpez/placebo/internal/ids"
	"github.com/fadedpez/placebo/internal/logging"
	"github.com/fadedpez/placebo/internal/types"
	"github.com/fadedpez/placebo/pkg/backend"
	"github.com/fadedpez/placebo/pkg/entities"
	"github.com/fadedpez/placebo/pkg/services/blackjack"
	"github.com/fadedpez/placebo/pkg/services/history"
	"github.com/fadedpez/placebo/pkg/services/ledger"
)

// ExternalGameName is the history label for rounds finished in the 3D renderer
const ExternalGameName = "Blackjack 3D"

var ErrClosed = types.NewGameError(types.ErrNotLoggedIn, "session has ended")

// ExternalGameEnd is the 3D renderer's game-end event
type ExternalGameEnd struct {
	PointsWon  int64           `json:"pointsWon"`
	GameResult entities.Result `json:"gameResult"`
}

// ExternalOutcome is what applying an ExternalGameEnd did
type ExternalOutcome struct {
	Entry    entities.HistoryEntry `json:"entry"`
	Balance  int64                 `json:"balance"`
	Warnings []string              `json:"warnings,omitempty"`
}

// Session is one logged-in player's state: the backend chosen at login,
// the points ledger, the history log and the blackjack table
type Session struct {
	ID string

	mu       sync.Mutex
	backend  backend.Backend
	user     entities.User
	ledger   *ledger.Ledger
	history  *history.Log
	round    *blackjack.Round
	perks    []string
	lastSeen time.Time
	closed   bool

	now func() time.Time
	log *logging.Logger
}

// User returns the player with the ledger's current balance
func (s *Session) User() entities.User {
	s.mu.Lock()
	u := s.user
	s.mu.Unlock()
	u.Points = s.ledger.Balance()
	return u
}

// Mode reports which backend the session is bound to
func (s *Session) Mode() backend.Mode {
	return s.backend.Mode()
}

// Backend returns the backend chosen at login
func (s *Session) Backend() backend.Backend {
	return s.backend
}

func (s *Session) Ledger() *ledger.Ledger {
	return s.ledger
}

func (s *Session) History() *history.Log {
	return s.history
}

func (s *Session) Round() *blackjack.Round {
	return s.round
}

// Touch records activity for the idle reaper
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = s.now()
}

// LastSeen returns the time of the last Touch
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Closed reports whether the session has been logged out
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// AddPerk records a redeemed perk
func (s *Session) AddPerk(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.perks = append(s.perks, id)
}

// Perks returns the redeemed perks in redemption order
func (s *Session) Perks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.perks))
	copy(out, s.perks)
	return out
}

// MarkWelcomed clears the first-login flag once. A backend failure is logged;
// the flag stays cleared for this session.
func (s *Session) MarkWelcomed(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if !s.user.IsFirstLogin {
		s.mu.Unlock()
		return nil
	}
	s.user.IsFirstLogin = false
	s.mu.Unlock()

	if err := s.backend.MarkWelcomed(ctx); err != nil {
		s.log.Warn("Welcome flag for %s not saved: %v", s.user.Name, err)
	}
	return nil
}

// ApplyExternalGameEnd applies one ledger adjustment of PointsWon and appends
// one history entry. A loss larger than the balance takes the balance to zero.
// Sync failures come back as warnings.
func (s *Session) ApplyExternalGameEnd(ctx context.Context, event ExternalGameEnd) (*ExternalOutcome, error) {
	if s.Closed() {
		return nil, ErrClosed
	}
	if !event.GameResult.Valid() {
		return nil, types.NewGameError(types.ErrInvalidArgument, fmt.Sprintf("unknown game result %q", event.GameResult))
	}

	ref := ids.NewID()
	out := &ExternalOutcome{}

	applied, balance, err := s.ledger.Absorb(ctx, event.PointsWon, ref, entities.TransactionTypeExternal, ExternalGameName)
	switch {
	case ledger.IsSyncError(err):
		out.Warnings = append(out.Warnings, "points were updated locally but could not be saved to the server")
	case err != nil:
		return nil, err
	}
	out.Balance = balance

	// the backend rejects rounds without a positive stake
	stake := event.PointsWon
	if stake < 0 {
		stake = -stake
	}
	entry, err := s.history.AppendRound(ctx, entities.HistoryEntry{
		GameName:     ExternalGameName,
		Result:       event.GameResult,
		PointsChange: applied,
		Stake:        stake,
	}, &entities.RoundRecord{ID: ref, BalanceAfter: balance})
	switch {
	case types.IsGameError(err, types.ErrSyncFailed):
		out.Warnings = append(out.Warnings, "the game was recorded locally but could not be saved to the server")
	case err != nil:
		return nil, err
	}
	out.Entry = entry

	s.Touch()
	return out, nil
}

// close disposes the ledger and log and ends the backend identity
func (s *Session) close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.ledger.Close()
	s.history.Close()
	return s.backend.Logout(ctx)
}
