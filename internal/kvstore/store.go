// Package kvstore persists small JSON documents under string keys.
package kvstore

//go:generate mockgen -source=store.go -destination=../mocks/kvstore/mock_store.go -package=mock_kvstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goccy/go-json"
)

// Store is a string-keyed blob store. Get reports whether the key exists.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore keeps values in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// GetJSON decodes the value stored under key into T.
// A missing or undecodable value yields ok=false; only storage failures are returned as errors.
func GetJSON[T any](ctx context.Context, store Store, key string) (T, bool, error) {
	var zero T
	data, ok, err := store.Get(ctx, key)
	if err != nil {
		return zero, false, fmt.Errorf("store.Get(%s) > %w", key, err)
	}
	if !ok {
		return zero, false, nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		slog.Default().Warn("discarding undecodable stored value",
			"key", key,
			"error", err,
		)
		return zero, false, nil
	}
	return v, true, nil
}

func SetJSON(ctx context.Context, store Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("json.Marshal() > %w", err)
	}
	if err := store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("store.Set(%s) > %w", key, err)
	}
	return nil
}
