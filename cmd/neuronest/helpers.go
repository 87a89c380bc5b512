package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/at-ishikawa/neuronest/internal/bootstrap"
	"github.com/at-ishikawa/neuronest/internal/clock"
	"github.com/at-ishikawa/neuronest/internal/config"
)

// newClock is replaced in tests.
var newClock = func() clock.Clock {
	return clock.SystemClock{}
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// withServices opens the configured services for the duration of fn.
func withServices(ctx context.Context, fn func(svc *bootstrap.Services) error) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	svc, err := bootstrap.NewServices(ctx, cfg, newClock())
	if err != nil {
		return fmt.Errorf("bootstrap.NewServices() > %w", err)
	}
	defer func() {
		err = errors.Join(err, svc.Close())
	}()

	return fn(svc)
}
