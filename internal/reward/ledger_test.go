package reward

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/neuronest/internal/clock"
	"github.com/at-ishikawa/neuronest/internal/kvstore"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T) (*Ledger, *clock.ManualClock, kvstore.Store) {
	t.Helper()
	clk := clock.NewManualClock(t0)
	store := kvstore.NewMemoryStore()
	return NewLedger(store, clk, DefaultConfig()), clk, store
}

func TestLedger_GrantAtTarget(t *testing.T) {
	ctx := context.Background()
	ledger, _, _ := newTestLedger(t)

	for i := range 3 {
		granted, err := ledger.AddCompletion(ctx)
		require.NoError(t, err)
		assert.False(t, granted, "completion %d", i+1)
	}
	status, err := ledger.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 75, status.AccumulatedSeconds)
	assert.Equal(t, 25, status.RemainingSeconds)
	assert.InDelta(t, 0.75, status.Progress01, 1e-9)
	assert.False(t, status.IsPremium)

	granted, err := ledger.AddCompletion(ctx)
	require.NoError(t, err)
	assert.True(t, granted)

	status, err = ledger.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.IsPremium)
	require.NotNil(t, status.PremiumUntil)
	assert.Equal(t, t0.Add(72*time.Hour), *status.PremiumUntil)
	assert.Equal(t, 0, status.AccumulatedSeconds)
	assert.Equal(t, 100, status.RemainingSeconds)
}

func TestLedger_PausedWhilePremium(t *testing.T) {
	ctx := context.Background()
	ledger, clk, _ := newTestLedger(t)

	granted, err := ledger.AddWatchCredit(ctx, 100)
	require.NoError(t, err)
	require.True(t, granted)

	clk.Advance(time.Hour)
	granted, err = ledger.AddWatchCredit(ctx, 60)
	require.NoError(t, err)
	assert.False(t, granted)

	state, err := ledger.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, state.AccumulatedSeconds)
	assert.Equal(t, t0.Add(72*time.Hour), *state.PremiumUntil)

	// the entitlement lapses exactly at PremiumUntil
	clk.Set(t0.Add(72 * time.Hour))
	status, err := ledger.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.IsPremium)

	granted, err = ledger.AddWatchCredit(ctx, 30)
	require.NoError(t, err)
	assert.False(t, granted)
	state, err = ledger.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, state.AccumulatedSeconds)
}

func TestLedger_SurplusDiscarded(t *testing.T) {
	ctx := context.Background()
	ledger, _, _ := newTestLedger(t)

	_, err := ledger.AddWatchCredit(ctx, 90)
	require.NoError(t, err)
	granted, err := ledger.AddWatchCredit(ctx, 50)
	require.NoError(t, err)
	assert.True(t, granted)

	state, err := ledger.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, state.AccumulatedSeconds)
}

func TestLedger_NonPositiveCreditIsNoop(t *testing.T) {
	ctx := context.Background()
	ledger, _, store := newTestLedger(t)

	for _, seconds := range []int{0, -10} {
		granted, err := ledger.AddWatchCredit(ctx, seconds)
		require.NoError(t, err)
		assert.False(t, granted)
	}
	_, ok, err := store.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok, "nothing should be persisted")
}

func TestLedger_ResetAndClear(t *testing.T) {
	ctx := context.Background()
	ledger, _, _ := newTestLedger(t)

	_, err := ledger.AddWatchCredit(ctx, 40)
	require.NoError(t, err)
	require.NoError(t, ledger.ResetProgress(ctx))
	state, err := ledger.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, state.AccumulatedSeconds)

	_, err = ledger.AddWatchCredit(ctx, 100)
	require.NoError(t, err)
	require.NoError(t, ledger.ClearPremium(ctx))
	status, err := ledger.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.IsPremium)
	assert.Nil(t, status.PremiumUntil)

	// credit accrues again once premium is cleared
	_, err = ledger.AddWatchCredit(ctx, 10)
	require.NoError(t, err)
	state, err = ledger.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, state.AccumulatedSeconds)
}

func TestLedger_CorruptStateReadsAsZero(t *testing.T) {
	ctx := context.Background()
	ledger, _, store := newTestLedger(t)
	require.NoError(t, store.Set(ctx, StorageKey, []byte("garbage")))

	state, err := ledger.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, State{}, state)

	granted, err := ledger.AddWatchCredit(ctx, 20)
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestLedger_StateSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewManualClock(t0)
	store := kvstore.NewMemoryStore()

	_, err := NewLedger(store, clk, DefaultConfig()).AddWatchCredit(ctx, 45)
	require.NoError(t, err)

	state, err := NewLedger(store, clk, DefaultConfig()).State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 45, state.AccumulatedSeconds)
}

func TestLedger_AccumulationInvariant(t *testing.T) {
	ctx := context.Background()
	ledger, clk, _ := newTestLedger(t)
	cfg := ledger.Config()

	credits := []int{7, 33, 0, 25, 99, -3, 1, 50, 50, 12, 100, 8}
	grants := 0
	for i, c := range credits {
		before, err := ledger.State(ctx)
		require.NoError(t, err)
		wasPremium := before.PremiumUntil != nil && clk.Now().Before(*before.PremiumUntil)

		granted, err := ledger.AddWatchCredit(ctx, c)
		require.NoError(t, err)
		after, err := ledger.State(ctx)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, after.AccumulatedSeconds, 0, "step %d", i)
		assert.LessOrEqual(t, after.AccumulatedSeconds, cfg.TargetSeconds, "step %d", i)
		if granted {
			grants++
			assert.Equal(t, 0, after.AccumulatedSeconds)
		} else if !wasPremium && c > 0 {
			assert.Equal(t, before.AccumulatedSeconds+c, after.AccumulatedSeconds, "step %d", i)
		}
		// move past any entitlement so later credits count
		clk.Advance(cfg.GrantDuration)
	}
	assert.Equal(t, 3, grants)
}

func TestNewLedger_Defaults(t *testing.T) {
	ledger := NewLedger(kvstore.NewMemoryStore(), clock.NewManualClock(t0), Config{})
	assert.Equal(t, DefaultConfig(), ledger.Config())
}
