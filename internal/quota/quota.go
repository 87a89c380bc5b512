// Package quota limits how many assistant queries can be made per local calendar day.
package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/at-ishikawa/neuronest/internal/clock"
	"github.com/at-ishikawa/neuronest/internal/kvstore"
)

const (
	UsedKey = "gemini_used"
	DayKey  = "gemini_day"

	DefaultDailyLimit = 20
)

var ErrExhausted = errors.New("daily AI quota exhausted, try again tomorrow")

type DailyQuota struct {
	store kvstore.Store
	clock clock.Clock
	limit int
}

// NewDailyQuota creates a quota. A non-positive limit falls back to DefaultDailyLimit.
func NewDailyQuota(store kvstore.Store, c clock.Clock, limit int) *DailyQuota {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	return &DailyQuota{store: store, clock: c, limit: limit}
}

func (q *DailyQuota) Limit() int {
	return q.limit
}

// Used returns today's count. A count stored for another day reads as zero.
func (q *DailyQuota) Used(ctx context.Context) (int, error) {
	day, _, err := kvstore.GetJSON[string](ctx, q.store, DayKey)
	if err != nil {
		return 0, fmt.Errorf("kvstore.GetJSON(%s) > %w", DayKey, err)
	}
	if day != q.today() {
		return 0, nil
	}
	used, _, err := kvstore.GetJSON[int](ctx, q.store, UsedKey)
	if err != nil {
		return 0, fmt.Errorf("kvstore.GetJSON(%s) > %w", UsedKey, err)
	}
	return max(0, used), nil
}

func (q *DailyQuota) Remaining(ctx context.Context) (int, error) {
	used, err := q.Used(ctx)
	if err != nil {
		return 0, err
	}
	return max(0, q.limit-used), nil
}

func (q *DailyQuota) CanUse(ctx context.Context) (bool, error) {
	used, err := q.Used(ctx)
	if err != nil {
		return false, err
	}
	return used < q.limit, nil
}

// MarkUsed counts one query against today, resetting the counter on a new day.
func (q *DailyQuota) MarkUsed(ctx context.Context) error {
	used, err := q.Used(ctx)
	if err != nil {
		return err
	}
	if err := kvstore.SetJSON(ctx, q.store, DayKey, q.today()); err != nil {
		return fmt.Errorf("kvstore.SetJSON(%s) > %w", DayKey, err)
	}
	if err := kvstore.SetJSON(ctx, q.store, UsedKey, used+1); err != nil {
		return fmt.Errorf("kvstore.SetJSON(%s) > %w", UsedKey, err)
	}
	return nil
}

func (q *DailyQuota) today() string {
	return q.clock.Now().Format("2006-01-02")
}
