package mock

import (
	"context"
	"encoding/json"

	"github.com/fadedpez/placebo/pkg/storage"
	"github.com/stretchr/testify/mock"
)

// Storage is a mock implementation of storage.Store
type Storage struct {
	mock.Mock
}

var _ storage.Store = (*Storage)(nil)

func New() *Storage {
	return &Storage{}
}

// Get returns the mocked error, or copies the mocked value into out through JSON
func (s *Storage) Get(ctx context.Context, key string, out interface{}) error {
	args := s.Called(ctx, key, out)
	if err := args.Error(1); err != nil {
		return err
	}
	raw, err := json.Marshal(args.Get(0))
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (s *Storage) Put(ctx context.Context, key string, value interface{}) error {
	args := s.Called(ctx, key, value)
	return args.Error(0)
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	args := s.Called(ctx, key)
	return args.Error(0)
}

func (s *Storage) Keys(ctx context.Context, prefix string) ([]string, error) {
	args := s.Called(ctx, prefix)
	if keys, ok := args.Get(0).([]string); ok {
		return keys, args.Error(1)
	}
	return nil, args.Error(1)
}
