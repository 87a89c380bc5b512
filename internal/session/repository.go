package session

import (
	"context"
	"fmt"

	"github.com/at-ishikawa/neuronest/internal/kvstore"
)

// StorageKey holds the whole history as one JSON array.
const StorageKey = "NN_analytics_sessions_v2"

type Repository struct {
	store kvstore.Store
}

func NewRepository(store kvstore.Store) *Repository {
	return &Repository{store: store}
}

// All returns the history in insertion order. A corrupt stored value reads as an empty history.
func (r *Repository) All(ctx context.Context) ([]GameSession, error) {
	sessions, _, err := kvstore.GetJSON[[]GameSession](ctx, r.store, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("kvstore.GetJSON() > %w", err)
	}
	for i := range sessions {
		if sessions[i].ReactionTimesMs == nil {
			sessions[i].ReactionTimesMs = []float64{}
		}
	}
	return sessions, nil
}

func (r *Repository) Recent(ctx context.Context, n int) ([]GameSession, error) {
	sessions, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	return Recent(sessions, n), nil
}

// Add appends s and rewrites the stored history.
func (r *Repository) Add(ctx context.Context, s GameSession) error {
	sessions, err := r.All(ctx)
	if err != nil {
		return err
	}
	sessions = append(sessions, s)
	if err := kvstore.SetJSON(ctx, r.store, StorageKey, sessions); err != nil {
		return fmt.Errorf("kvstore.SetJSON() > %w", err)
	}
	return nil
}

func (r *Repository) Clear(ctx context.Context) error {
	if err := r.store.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("store.Delete() > %w", err)
	}
	return nil
}
