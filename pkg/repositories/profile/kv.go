package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/fadedpez/placebo/pkg/entities"
	"github.com/fadedpez/placebo/pkg/storage"
	"github.com/fadedpez/placebo/pkg/storage/file"
)

// KVRepository lays profiles out in a key-value store under the placebo-casino-* keys
type KVRepository struct {
	store storage.Store
}

// NewKVRepository wraps any storage.Store
func NewKVRepository(store storage.Store) *KVRepository {
	return &KVRepository{store: store}
}

// NewMemoryRepository keeps everything in process memory
func NewMemoryRepository() *KVRepository {
	store, _ := file.New(nil)
	return NewKVRepository(store)
}

// NewFileRepository persists to a JSON file at path
func NewFileRepository(path string) (*KVRepository, error) {
	store, err := file.New(&storage.Options{Path: path})
	if err != nil {
		return nil, err
	}
	return NewKVRepository(store), nil
}

func (r *KVRepository) GetProfile(ctx context.Context, username string) (*entities.Profile, error) {
	if username == "" {
		return nil, ErrInvalidUsername
	}

	var profile entities.Profile
	err := r.store.Get(ctx, UserKeyPrefix+username, &profile)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading profile %s: %w", username, err)
	}
	return &profile, nil
}

func (r *KVRepository) SaveProfile(ctx context.Context, profile *entities.Profile) error {
	if profile == nil || profile.Username == "" {
		return ErrInvalidUsername
	}
	if err := r.store.Put(ctx, UserKeyPrefix+profile.Username, profile); err != nil {
		return fmt.Errorf("error saving profile %s: %w", profile.Username, err)
	}
	return nil
}

func (r *KVRepository) GetHistory(ctx context.Context, username string) ([]entities.HistoryEntry, error) {
	var entries []entities.HistoryEntry
	err := r.store.Get(ctx, HistoryKeyPrefix+username, &entries)
	if errors.Is(err, storage.ErrNotFound) {
		return []entities.HistoryEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading history for %s: %w", username, err)
	}
	return capHistory(entries), nil
}

func (r *KVRepository) SaveHistory(ctx context.Context, username string, entries []entities.HistoryEntry) error {
	if username == "" {
		return ErrInvalidUsername
	}
	if err := r.store.Put(ctx, HistoryKeyPrefix+username, capHistory(entries)); err != nil {
		return fmt.Errorf("error saving history for %s: %w", username, err)
	}
	return nil
}

func (r *KVRepository) CurrentUser(ctx context.Context) (string, error) {
	var username string
	err := r.store.Get(ctx, CurrentUserKey, &username)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	return username, err
}

func (r *KVRepository) SetCurrentUser(ctx context.Context, username string) error {
	if username == "" {
		return r.store.Delete(ctx, CurrentUserKey)
	}
	return r.store.Put(ctx, CurrentUserKey, username)
}
