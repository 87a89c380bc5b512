package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	hits, misses int
}

func (o *countingObserver) IncCacheHits()   { o.hits++ }
func (o *countingObserver) IncCacheMisses() { o.misses++ }

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	value := []byte("hello")
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'j'

	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("hello"), got, "stored value must not alias the caller's slice")

	require.NoError(t, store.Delete(ctx, "k"))
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetJSON(t *testing.T) {
	type doc struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	tests := []struct {
		name   string
		stored []byte
		want   doc
		wantOK bool
	}{
		{
			name:   "decodes stored document",
			stored: []byte(`{"name":"a","count":2}`),
			want:   doc{Name: "a", Count: 2},
			wantOK: true,
		},
		{
			name:   "corrupt value is treated as absent",
			stored: []byte(`{not json`),
			wantOK: false,
		},
		{
			name:   "missing value",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := NewMemoryStore()
			if tt.stored != nil {
				require.NoError(t, store.Set(ctx, "doc", tt.stored))
			}

			got, ok, err := GetJSON[doc](ctx, store, "doc")
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetJSON(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, SetJSON(ctx, store, "list", []int{1, 2, 3}))
	raw, ok, err := store.Get(ctx, "list")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[1,2,3]`, string(raw))
}

func TestCachedStore(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	observer := &countingObserver{}
	store := NewCachedStore(inner, 1, 0, observer)

	require.NoError(t, inner.Set(ctx, "k", []byte("v1")))

	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v1"), got)
	assert.Equal(t, 1, observer.misses)

	got, _, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)
	assert.Equal(t, 1, observer.hits)

	require.NoError(t, store.Set(ctx, "k", []byte("v2")))
	got, _, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, store.Delete(ctx, "k"))
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = inner.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewCachedStore_Disabled(t *testing.T) {
	inner := NewMemoryStore()
	assert.Same(t, inner, NewCachedStore(inner, 0, 0, nil))
}
