package rewards

import (
	"context"
	"errors"
	"fmt"

	"github.com/fadedpez/placebo/internal/ids"
	"github.com/fadedpez/placebo/internal/logging"
	"github.com/fadedpez/placebo/internal/types"
	"github.com/fadedpez/placebo/pkg/entities"
	"github.com/fadedpez/placebo/pkg/services/ledger"
	"github.com/fadedpez/placebo/pkg/services/session"
	"github.com/thoas/go-funk"
)

var ErrRewardNotFound = types.NewGameError(types.ErrRewardNotFound, "reward not found")

// Reward is an item in the points shop. Bonus is credited on redemption;
// a reward without a bonus is a perk kept on the session.
type Reward struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Cost        int64  `json:"cost"`
	Bonus       int64  `json:"bonus,omitempty"`
}

// IsPerk reports whether the reward is recorded rather than paid out
func (r Reward) IsPerk() bool {
	return r.Bonus == 0
}

// Redemption is the result of a successful Redeem
type Redemption struct {
	Reward   Reward   `json:"reward"`
	Balance  int64    `json:"balance"`
	Warnings []string `json:"warnings,omitempty"`
}

// DefaultCatalog returns the rewards the casino offers
func DefaultCatalog() []Reward {
	return []Reward{
		{ID: "bonus-100", Name: "100 Bonus Points", Description: "Instant 100 points added to your balance", Cost: 500, Bonus: 100},
		{ID: "bonus-250", Name: "250 Bonus Points", Description: "Instant 250 points added to your balance", Cost: 1000, Bonus: 250},
		{ID: "bonus-500", Name: "500 Bonus Points", Description: "Instant 500 points added to your balance", Cost: 1800, Bonus: 500},
		{ID: "bonus-1000", Name: "1000 Bonus Points", Description: "Instant 1000 points added to your balance", Cost: 3200, Bonus: 1000},
		{ID: "double-next", Name: "Double Next Win", Description: "Your next win will be doubled (one-time use)", Cost: 800},
		{ID: "free-games", Name: "5 Free Games", Description: "Play 5 games without risking your points", Cost: 600},
	}
}

// Service redeems rewards against a session's ledger
type Service struct {
	catalog []Reward
	log     *logging.Logger
}

// NewService creates a service over catalog. A nil catalog uses DefaultCatalog.
func NewService(catalog []Reward) *Service {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Service{
		catalog: catalog,
		log:     logging.Default.With("rewards"),
	}
}

// Catalog returns a copy of the rewards on offer
func (s *Service) Catalog() []Reward {
	out := make([]Reward, len(s.catalog))
	copy(out, s.catalog)
	return out
}

// Affordable returns the rewards a balance can pay for
func (s *Service) Affordable(balance int64) []Reward {
	return funk.Filter(s.catalog, func(r Reward) bool {
		return r.Cost <= balance
	}).([]Reward)
}

// Get returns the reward with id
func (s *Service) Get(id string) (Reward, error) {
	found := funk.Find(s.catalog, func(r Reward) bool {
		return r.ID == id
	})
	if found == nil {
		return Reward{}, ErrRewardNotFound
	}
	return found.(Reward), nil
}

// Redeem spends the reward's cost from the session's ledger, then credits the
// bonus or records the perk. A balance below the cost changes nothing.
func (s *Service) Redeem(ctx context.Context, sess *session.Session, id string) (*Redemption, error) {
	if sess.Closed() {
		return nil, session.ErrClosed
	}

	reward, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	ref := ids.NewID()
	out := &Redemption{Reward: reward}

	balance, err := sess.Ledger().Debit(ctx, reward.Cost, ref, entities.TransactionTypeReward)
	switch {
	case ledger.IsSyncError(err):
		out.Warnings = append(out.Warnings, "the redemption was applied locally but could not be saved to the server")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return nil, types.NewGameError(types.ErrInsufficientFunds,
			fmt.Sprintf("%s costs %d points, you have %d", reward.Name, reward.Cost, balance))
	case err != nil:
		return nil, err
	}

	if reward.IsPerk() {
		sess.AddPerk(reward.ID)
	} else {
		balance, err = sess.Ledger().Credit(ctx, reward.Bonus, ref, entities.TransactionTypeBonus)
		switch {
		case ledger.IsSyncError(err):
			out.Warnings = append(out.Warnings, "the bonus was applied locally but could not be saved to the server")
		case err != nil:
			return nil, err
		}
	}
	out.Balance = balance

	s.log.Info("%s redeemed %s for %d points", sess.User().Name, reward.ID, reward.Cost)
	sess.Touch()
	return out, nil
}
