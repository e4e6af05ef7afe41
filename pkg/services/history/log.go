package history

import (
	"context"
	"sync"
	"time"

	"github.com/fadedpez/placebo/internal/ids"
	"github.com/fadedpez/placebo/internal/logging"
	"github.com/fadedpez/placebo/internal/types"
	"github.com/fadedpez/placebo/pkg/entities"
)

var ErrClosed = types.NewGameError(types.ErrNotLoggedIn, "history log is closed")

// RoundSyncer records a finished round with the backing store
type RoundSyncer interface {
	CreateGameRound(ctx context.Context, record *entities.RoundRecord) (*entities.RoundReceipt, error)
}

// Archive keeps settled rounds for statistics
type Archive interface {
	SaveRound(ctx context.Context, record *entities.RoundRecord) error
}

// Option configures a Log
type Option func(*Log)

// WithArchive mirrors every appended round to archive
func WithArchive(archive Archive) Option {
	return func(l *Log) { l.archive = archive }
}

// WithClock sets the time source for entry timestamps
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// WithLogger sets the logger
func WithLogger(log *logging.Logger) Option {
	return func(l *Log) { l.log = log }
}

// Log is a player's game history, most recent first and capped at
// entities.MaxHistoryEntries
type Log struct {
	mu      sync.Mutex
	userID  string
	entries []entities.HistoryEntry
	closed  bool

	syncer  RoundSyncer
	archive Archive
	log     *logging.Logger
	now     func() time.Time
}

// New creates a log seeded with the history the backend returned at login.
// syncer may be nil.
func New(userID string, initial []entities.HistoryEntry, syncer RoundSyncer, opts ...Option) *Log {
	l := &Log{
		userID: userID,
		syncer: syncer,
		log:    logging.Default.With("history"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	l.entries = make([]entities.HistoryEntry, 0, entities.MaxHistoryEntries)
	for _, e := range initial {
		if len(l.entries) == entities.MaxHistoryEntries {
			break
		}
		l.entries = append(l.entries, e)
	}
	return l
}

// Append records an entry that has no round detail, such as an external game result
func (l *Log) Append(ctx context.Context, entry entities.HistoryEntry) (entities.HistoryEntry, error) {
	return l.AppendRound(ctx, entry, nil)
}

// AppendRound prepends the entry, dropping the oldest beyond the cap, then
// syncs and archives the round. A sync failure keeps the entry and is returned
// as a SYNC_FAILED error.
func (l *Log) AppendRound(ctx context.Context, entry entities.HistoryEntry, record *entities.RoundRecord) (entities.HistoryEntry, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return entry, ErrClosed
	}
	if entry.ID == "" {
		entry.ID = ids.NewUUID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now()
	}

	l.entries = append([]entities.HistoryEntry{entry}, l.entries...)
	if len(l.entries) > entities.MaxHistoryEntries {
		l.entries = l.entries[:entities.MaxHistoryEntries]
	}
	l.mu.Unlock()

	record = l.complete(entry, record)

	if l.archive != nil {
		if err := l.archive.SaveRound(ctx, record); err != nil {
			l.log.Error("Failed to archive round %s: %v", record.ID, err)
		}
	}

	if l.syncer == nil {
		return entry, nil
	}
	if _, err := l.syncer.CreateGameRound(ctx, record); err != nil {
		l.log.Warn("Round %s for %s not synced: %v", record.ID, l.userID, err)
		return entry, types.WrapError(types.ErrSyncFailed, "history sync failed", err)
	}
	return entry, nil
}

// complete fills the round record from the entry where the caller left gaps
func (l *Log) complete(entry entities.HistoryEntry, record *entities.RoundRecord) *entities.RoundRecord {
	r := entities.RoundRecord{}
	if record != nil {
		r = *record
	}
	if r.ID == "" {
		r.ID = entry.ID
	}
	if r.UserID == "" {
		r.UserID = l.userID
	}
	if r.GameID == "" {
		r.GameID = entry.GameName
	}
	if r.PointsUsed == 0 {
		r.PointsUsed = entry.Stake
	}
	if r.CompletedAt.IsZero() {
		r.CompletedAt = entry.Timestamp
	}
	r.Result = entry.Result
	r.PointsChange = entry.PointsChange
	return &r
}

// Entries returns a copy of the history, most recent first
func (l *Log) Entries() []entities.HistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]entities.HistoryEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries kept
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Close disposes the log. Later appends fail with ErrClosed.
func (l *Log) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}
