package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/neuronest/internal/kvstore"
	mock_kvstore "github.com/at-ishikawa/neuronest/internal/mocks/kvstore"
)

func TestRepository_AddKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(kvstore.NewMemoryStore())
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	for i := range 5 {
		s := NewMatchingSession(MatchingResult{CorrectMatches: i}, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Add(ctx, s))
	}

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, s := range all {
		assert.Equal(t, i, s.Correct)
	}

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 3, recent[0].Correct)
	assert.Equal(t, 4, recent[1].Correct)

	require.NoError(t, repo.Clear(ctx))
	all, err = repo.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRepository_CorruptHistoryIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, StorageKey, []byte(`[{"id":`)))
	repo := NewRepository(store)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, repo.Add(ctx, NewMatchingSession(MatchingResult{CorrectMatches: 1}, time.Now())))
	all, err = repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRepository_MissingReactionTimesDecodeEmpty(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, StorageKey, []byte(`[{"id":"a","game":"NumberMemory","date":"2025-05-01T10:00:00Z","correct":1,"wrong":0,"levelReached":2,"durationSec":12.5,"score":2}]`)))

	all, err := NewRepository(store).All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.NotNil(t, all[0].ReactionTimesMs)
	assert.Empty(t, all[0].ReactionTimesMs)
	assert.Equal(t, 12.5, all[0].DurationSec)
}

func TestRepository_StoreErrors(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(m *mock_kvstore.MockStore)
		run       func(repo *Repository) error
	}{
		{
			name: "get fails",
			setupMock: func(m *mock_kvstore.MockStore) {
				m.EXPECT().Get(gomock.Any(), StorageKey).Return(nil, false, errors.New("disk"))
			},
			run: func(repo *Repository) error {
				_, err := repo.All(context.Background())
				return err
			},
		},
		{
			name: "set fails",
			setupMock: func(m *mock_kvstore.MockStore) {
				m.EXPECT().Get(gomock.Any(), StorageKey).Return(nil, false, nil)
				m.EXPECT().Set(gomock.Any(), StorageKey, gomock.Any()).Return(errors.New("disk"))
			},
			run: func(repo *Repository) error {
				return repo.Add(context.Background(), GameSession{ID: "x"})
			},
		},
		{
			name: "delete fails",
			setupMock: func(m *mock_kvstore.MockStore) {
				m.EXPECT().Delete(gomock.Any(), StorageKey).Return(errors.New("disk"))
			},
			run: func(repo *Repository) error {
				return repo.Clear(context.Background())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := mock_kvstore.NewMockStore(ctrl)
			tt.setupMock(store)

			err := tt.run(NewRepository(store))
			assert.Error(t, err)
		})
	}
}
