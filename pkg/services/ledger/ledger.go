package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/fadedpez/placebo/internal/ids"
	"github.com/fadedpez/placebo/internal/logging"
	"github.com/fadedpez/placebo/pkg/entities"
	"github.com/fadedpez/placebo/pkg/repositories/journal"
)

// Ledger owns one session's points balance. Every change is committed
// locally first, then mirrored to the Syncer on a best effort basis.
type Ledger struct {
	mu      sync.Mutex
	userID  string
	balance int64
	remote  int64
	closed  bool

	syncer  Syncer
	journal journal.Repository
	log     *logging.Logger
	now     func() time.Time
}

// Option configures a Ledger
type Option func(*Ledger)

// WithJournal records every committed change in repo
func WithJournal(repo journal.Repository) Option {
	return func(l *Ledger) { l.journal = repo }
}

// WithClock sets the time source for journal entries
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLogger sets the logger
func WithLogger(log *logging.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// New creates a ledger for userID holding the balance the backend reported at login.
// syncer may be nil, in which case changes stay local.
func New(userID string, balance int64, syncer Syncer, opts ...Option) *Ledger {
	l := &Ledger{
		userID:  userID,
		balance: balance,
		remote:  balance,
		syncer:  syncer,
		log:     logging.Default.With("ledger"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Balance returns the local balance
func (l *Ledger) Balance() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Discrepancy returns the local balance minus the last balance the backend confirmed
func (l *Ledger) Discrepancy() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance - l.remote
}

// Adjust applies a signed delta. See apply.
func (l *Ledger) Adjust(ctx context.Context, delta int64, ref string) (int64, error) {
	_, balance, err := l.apply(ctx, delta, ref, entities.TransactionTypeAdjustment, "", false)
	return balance, err
}

// AdjustTyped applies a signed delta recorded under txType
func (l *Ledger) AdjustTyped(ctx context.Context, delta int64, ref string, txType entities.TransactionType, description string) (int64, error) {
	_, balance, err := l.apply(ctx, delta, ref, txType, description, false)
	return balance, err
}

// Absorb applies a delta the player did not choose, such as an outcome reported
// by another game. A loss larger than the balance is cut down to the balance
// instead of being rejected. It returns the delta actually applied.
func (l *Ledger) Absorb(ctx context.Context, delta int64, ref string, txType entities.TransactionType, description string) (applied, balance int64, err error) {
	return l.apply(ctx, delta, ref, txType, description, true)
}

// Debit removes amount, rejecting it when the balance would go negative
func (l *Ledger) Debit(ctx context.Context, amount int64, ref string, txType entities.TransactionType) (int64, error) {
	if amount <= 0 {
		return l.Balance(), ErrNonPositiveAmount
	}
	_, balance, err := l.apply(ctx, -amount, ref, txType, "", false)
	return balance, err
}

// Credit adds amount
func (l *Ledger) Credit(ctx context.Context, amount int64, ref string, txType entities.TransactionType) (int64, error) {
	if amount <= 0 {
		return l.Balance(), ErrNonPositiveAmount
	}
	_, balance, err := l.apply(ctx, amount, ref, txType, "", false)
	return balance, err
}

// Transactions returns up to limit journalled changes, newest first
func (l *Ledger) Transactions(ctx context.Context, limit int) ([]*entities.Transaction, error) {
	if l.journal == nil {
		return []*entities.Transaction{}, nil
	}
	return l.journal.GetTransactions(ctx, l.userID, limit)
}

// Close disposes the ledger. Later changes fail with ErrClosed.
func (l *Ledger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}

// apply commits delta locally and then syncs it, returning the applied delta.
//  1. a negative delta that would overdraw is rejected before any mutation,
//     or cut down to the balance when clamp is set
//  2. a zero delta is a no-op
//  3. the local balance and journal are updated
//  4. the backend is told; a failure comes back as *SyncError with the new balance
func (l *Ledger) apply(ctx context.Context, delta int64, ref string, txType entities.TransactionType, description string, clamp bool) (int64, int64, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return 0, 0, ErrClosed
	}
	if delta < 0 && l.balance+delta < 0 {
		if !clamp {
			balance := l.balance
			l.mu.Unlock()
			return 0, balance, ErrInsufficientFunds
		}
		delta = -l.balance
	}
	if delta == 0 {
		balance := l.balance
		l.mu.Unlock()
		return 0, balance, nil
	}

	l.balance += delta
	balance := l.balance
	tx := &entities.Transaction{
		ID:           ids.NewUUID(),
		UserID:       l.userID,
		Amount:       delta,
		Type:         txType,
		ReferenceID:  ref,
		Description:  description,
		Timestamp:    l.now(),
		BalanceAfter: balance,
	}
	l.mu.Unlock()

	if l.journal != nil {
		if err := l.journal.AddTransaction(ctx, tx); err != nil {
			l.log.Error("Failed to journal %s of %d for %s: %v", txType, delta, l.userID, err)
		}
	}

	if l.syncer == nil {
		return delta, balance, nil
	}

	remote, err := l.syncer.SyncPoints(ctx, delta, ref)
	if err != nil {
		l.log.Warn("Points change %+d for %s not synced: %v", delta, l.userID, err)
		return delta, balance, &SyncError{Delta: delta, Ref: ref, Balance: balance, Err: err}
	}

	l.mu.Lock()
	l.remote = remote
	l.mu.Unlock()
	if remote != balance {
		l.log.Debug("Backend balance %d differs from local %d for %s", remote, balance, l.userID)
	}
	return delta, balance, nil
}
