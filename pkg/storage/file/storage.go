package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fadedpez/placebo/pkg/storage"
)

// Storage implements storage.Store on a single JSON file
type Storage struct {
	path    string
	mu      sync.RWMutex
	entries map[string]json.RawMessage
}

var _ storage.Store = (*Storage)(nil)

// New creates a new file storage instance, loading the file if it exists
func New(options *storage.Options) (*Storage, error) {
	if options == nil {
		options = &storage.Options{}
	}

	s := &Storage{
		path:    options.Path,
		entries: make(map[string]json.RawMessage),
	}

	if err := s.load(); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", s.path, err)
	}

	return s, nil
}

// Get decodes the value stored under key into out
func (s *Storage) Get(ctx context.Context, key string, out interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.entries[key]
	if !ok {
		return storage.ErrNotFound
	}
	return json.Unmarshal(raw, out)
}

// Put stores value under key and writes the file
func (s *Storage) Put(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = raw
	return s.save()
}

// Delete removes key and writes the file
func (s *Storage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return nil
	}
	delete(s.entries, key)
	return s.save()
}

// Keys lists keys with the given prefix
func (s *Storage) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Helper functions

func (s *Storage) load() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	return json.Unmarshal(data, &s.entries)
}

// save writes to a temp file and renames it over the old one
func (s *Storage) save() error {
	if s.path == "" {
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entries: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}

	return nil
}
