package ledger

import (
	"errors"
	"fmt"

	"github.com/fadedpez/placebo/internal/types"
)

var (
	ErrInsufficientFunds = types.NewGameError(types.ErrInsufficientFunds, "insufficient points")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrClosed            = types.NewGameError(types.ErrNotLoggedIn, "ledger is closed")
)

// SyncError reports a delta that was committed locally but could not be
// mirrored to the backing store. The local balance is kept.
type SyncError struct {
	Delta   int64
	Ref     string
	Balance int64
	Err     error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("points change %+d (ref %q) kept locally at %d but not synced: %v", e.Delta, e.Ref, e.Balance, e.Err)
}

// Unwrap exposes the failure as a SYNC_FAILED GameError wrapping the cause
func (e *SyncError) Unwrap() error {
	return types.WrapError(types.ErrSyncFailed, "points sync failed", e.Err)
}

// IsSyncError reports whether err is a sync failure after a local commit
func IsSyncError(err error) bool {
	var syncErr *SyncError
	return errors.As(err, &syncErr)
}
