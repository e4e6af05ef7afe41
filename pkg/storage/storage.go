package storage

import (
	"context"
	"errors"
)

// Common storage errors
var (
	ErrNotFound = errors.New("key not found")
)

// Store is a JSON key-value store, the shape of a browser's local storage
type Store interface {
	// Get decodes the value stored under key into out
	Get(ctx context.Context, key string, out interface{}) error

	// Put encodes value and stores it under key
	Put(ctx context.Context, key string, value interface{}) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists the keys starting with prefix, sorted
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Options represents storage configuration options
type Options struct {
	// Path of the backing file. Empty keeps everything in memory.
	Path string
}
