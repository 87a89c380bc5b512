// Package reward converts watched-ad and completion credits into time-limited premium access.
package reward

import (
	"context"
	"fmt"
	"time"

	"github.com/at-ishikawa/neuronest/internal/clock"
	"github.com/at-ishikawa/neuronest/internal/kvstore"
)

// StorageKey holds the whole ledger state as one JSON document.
const StorageKey = "reward_ledger_v1"

const (
	DefaultTargetSeconds       = 100
	DefaultGrantDuration       = 72 * time.Hour
	DefaultCreditPerCompletion = 25
)

type Config struct {
	TargetSeconds       int
	GrantDuration       time.Duration
	CreditPerCompletion int
}

func DefaultConfig() Config {
	return Config{
		TargetSeconds:       DefaultTargetSeconds,
		GrantDuration:       DefaultGrantDuration,
		CreditPerCompletion: DefaultCreditPerCompletion,
	}
}

// State is what is persisted. AccumulatedSeconds stays within [0, TargetSeconds].
type State struct {
	AccumulatedSeconds int        `json:"accumulatedSeconds"`
	PremiumUntil       *time.Time `json:"premiumUntil,omitempty"`
}

type Status struct {
	IsPremium          bool       `json:"isPremium"`
	PremiumUntil       *time.Time `json:"premiumUntil,omitempty"`
	AccumulatedSeconds int        `json:"accumulatedSeconds"`
	TargetSeconds      int        `json:"targetSeconds"`
	ProgressSeconds    int        `json:"progressSeconds"`
	RemainingSeconds   int        `json:"remainingSeconds"`
	Progress01         float64    `json:"progress01"`
}

type Ledger struct {
	store  kvstore.Store
	clock  clock.Clock
	config Config
}

// NewLedger creates a ledger. Non-positive config values fall back to the defaults.
func NewLedger(store kvstore.Store, c clock.Clock, cfg Config) *Ledger {
	if cfg.TargetSeconds <= 0 {
		cfg.TargetSeconds = DefaultTargetSeconds
	}
	if cfg.GrantDuration <= 0 {
		cfg.GrantDuration = DefaultGrantDuration
	}
	if cfg.CreditPerCompletion <= 0 {
		cfg.CreditPerCompletion = DefaultCreditPerCompletion
	}
	return &Ledger{store: store, clock: c, config: cfg}
}

func (l *Ledger) Config() Config {
	return l.config
}

// State loads the persisted state. A corrupt value reads as the zero state.
func (l *Ledger) State(ctx context.Context) (State, error) {
	state, _, err := kvstore.GetJSON[State](ctx, l.store, StorageKey)
	if err != nil {
		return State{}, fmt.Errorf("kvstore.GetJSON() > %w", err)
	}
	state.AccumulatedSeconds = min(max(state.AccumulatedSeconds, 0), l.config.TargetSeconds)
	return state, nil
}

// AddWatchCredit adds seconds of credit and reports whether it crossed the target and granted premium.
// Credit is ignored while premium is active or when seconds is not positive.
// Reaching the target grants GrantDuration from now and discards any surplus.
func (l *Ledger) AddWatchCredit(ctx context.Context, seconds int) (bool, error) {
	if seconds <= 0 {
		return false, nil
	}
	state, err := l.State(ctx)
	if err != nil {
		return false, err
	}
	now := l.clock.Now()
	if l.isPremium(state, now) {
		return false, nil
	}

	total := state.AccumulatedSeconds + seconds
	granted := total >= l.config.TargetSeconds
	if granted {
		until := now.Add(l.config.GrantDuration)
		state.PremiumUntil = &until
		state.AccumulatedSeconds = 0
	} else {
		state.AccumulatedSeconds = total
	}

	if err := l.save(ctx, state); err != nil {
		return false, err
	}
	return granted, nil
}

// AddCompletion credits one completed ad.
func (l *Ledger) AddCompletion(ctx context.Context) (bool, error) {
	return l.AddWatchCredit(ctx, l.config.CreditPerCompletion)
}

// ResetProgress zeroes the accumulated credit and keeps any active entitlement.
func (l *Ledger) ResetProgress(ctx context.Context) error {
	state, err := l.State(ctx)
	if err != nil {
		return err
	}
	state.AccumulatedSeconds = 0
	return l.save(ctx, state)
}

// ClearPremium ends the entitlement and keeps the accumulated credit.
func (l *Ledger) ClearPremium(ctx context.Context) error {
	state, err := l.State(ctx)
	if err != nil {
		return err
	}
	state.PremiumUntil = nil
	return l.save(ctx, state)
}

func (l *Ledger) Status(ctx context.Context) (Status, error) {
	state, err := l.State(ctx)
	if err != nil {
		return Status{}, err
	}
	target := l.config.TargetSeconds
	progress := min(state.AccumulatedSeconds, target)
	return Status{
		IsPremium:          l.isPremium(state, l.clock.Now()),
		PremiumUntil:       state.PremiumUntil,
		AccumulatedSeconds: state.AccumulatedSeconds,
		TargetSeconds:      target,
		ProgressSeconds:    progress,
		RemainingSeconds:   max(0, target-progress),
		Progress01:         float64(progress) / float64(target),
	}, nil
}

func (l *Ledger) isPremium(state State, now time.Time) bool {
	return state.PremiumUntil != nil && now.Before(*state.PremiumUntil)
}

func (l *Ledger) save(ctx context.Context, state State) error {
	if err := kvstore.SetJSON(ctx, l.store, StorageKey, state); err != nil {
		return fmt.Errorf("kvstore.SetJSON() > %w", err)
	}
	return nil
}
