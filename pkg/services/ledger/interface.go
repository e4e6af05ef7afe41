package ledger

import "context"

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_ledger
// Syncer mirrors a committed points delta to the backing store and returns its balance
type Syncer interface {
	SyncPoints(ctx context.Context, delta int64, roundRef string) (int64, error)
}
