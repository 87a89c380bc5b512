package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/neuronest/internal/assistant"
	"github.com/at-ishikawa/neuronest/internal/calendar"
	"github.com/at-ishikawa/neuronest/internal/clock"
	"github.com/at-ishikawa/neuronest/internal/config"
	"github.com/at-ishikawa/neuronest/internal/database"
	"github.com/at-ishikawa/neuronest/internal/diet"
	"github.com/at-ishikawa/neuronest/internal/inference"
	"github.com/at-ishikawa/neuronest/internal/inference/provider"
	"github.com/at-ishikawa/neuronest/internal/kvstore"
	"github.com/at-ishikawa/neuronest/internal/metrics"
	"github.com/at-ishikawa/neuronest/internal/quota"
	"github.com/at-ishikawa/neuronest/internal/report"
	"github.com/at-ishikawa/neuronest/internal/reward"
	"github.com/at-ishikawa/neuronest/internal/session"
	"github.com/at-ishikawa/neuronest/internal/survey"
)

// Services holds everything the CLI and the server operate on.
type Services struct {
	Config    *config.Config
	Clock     clock.Clock
	Store     kvstore.Store
	Metrics   metrics.Provider
	Sessions  *session.Repository
	Ledger    *reward.Ledger
	Quota     *quota.DailyQuota
	Calendar  calendar.Source
	Client    inference.Client
	Assistant *assistant.Assistant
	Reports   *report.Generator
	Diet      *diet.Planner
	Survey    *survey.Analyzer

	db *sqlx.DB
}

// NewServices opens the configured storage and builds the services on top of it.
// A provider without an API key is not an error: AI features then fail with a configuration message.
func NewServices(ctx context.Context, cfg *config.Config, c clock.Clock) (*Services, error) {
	m := metrics.NewProvider(cfg.Metrics.Enabled)

	store, db, err := openStore(ctx, cfg.Storage, cfg.Database)
	if err != nil {
		return nil, err
	}
	store = kvstore.NewCachedStore(store, cfg.Storage.CacheSizeMB, 0, m)

	client, err := provider.NewClient(ctx, cfg.LLM)
	if err != nil {
		if !errors.Is(err, inference.ErrConfigurationMissing) {
			closeDB(db)
			return nil, fmt.Errorf("provider.NewClient() > %w", err)
		}
		slog.Default().Debug("AI features disabled", "error", err)
		client = inference.Unavailable(err)
	}

	sessions := session.NewRepository(store)
	dailyQuota := quota.NewDailyQuota(store, c, cfg.Quota.DailyLimit)
	events := calendar.NewYAMLSource(cfg.Calendar.EventsFile)

	opts := []assistant.Option{
		assistant.WithLimits(assistant.Limits{
			SessionScan:   cfg.Assistant.SessionScanLimit,
			EventScan:     cfg.Assistant.EventScanLimit,
			MaxHits:       cfg.Assistant.MaxHits,
			SummaryWindow: cfg.Assistant.SummaryWindow,
		}),
	}
	if cfg.Quota.Enabled {
		opts = append(opts, assistant.WithGate(dailyQuota))
	}

	return &Services{
		Config:   cfg,
		Clock:    c,
		Store:    store,
		Metrics:  m,
		Sessions: sessions,
		Ledger: reward.NewLedger(store, c, reward.Config{
			TargetSeconds:       cfg.Reward.TargetSeconds,
			GrantDuration:       cfg.Reward.GrantDuration,
			CreditPerCompletion: cfg.Reward.CreditPerCompletion,
		}),
		Quota:     dailyQuota,
		Calendar:  events,
		Client:    client,
		Assistant: assistant.New(client, sessions, events, opts...),
		Reports:   report.NewGenerator(client),
		Diet:      diet.NewPlanner(client, store, c),
		Survey:    survey.NewAnalyzer(client, nil),
		db:        db,
	}, nil
}

// Close releases the database connection, if any.
func (s *Services) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("db.Close() > %w", err)
	}
	return nil
}

func openStore(ctx context.Context, storage config.StorageConfig, dbConfig config.DatabaseConfig) (kvstore.Store, *sqlx.DB, error) {
	var db *sqlx.DB
	var err error
	switch storage.Driver {
	case "memory":
		return kvstore.NewMemoryStore(), nil, nil
	case "sqlite":
		db, err = database.OpenSQLite(storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("database.OpenSQLite() > %w", err)
		}
	case "mysql":
		db, err = database.Open(dbConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("database.Open() > %w", err)
		}
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", storage.Driver)
	}

	if err := database.Migrate(ctx, db); err != nil {
		closeDB(db)
		return nil, nil, fmt.Errorf("database.Migrate() > %w", err)
	}
	return kvstore.NewSQLStore(db), db, nil
}

func closeDB(db *sqlx.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		slog.Default().Warn("failed to close database", "error", err)
	}
}
