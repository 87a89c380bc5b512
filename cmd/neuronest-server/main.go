package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/neuronest/internal/bootstrap"
	"github.com/at-ishikawa/neuronest/internal/clock"
	"github.com/at-ishikawa/neuronest/internal/config"
	"github.com/at-ishikawa/neuronest/internal/metrics"
	"github.com/at-ishikawa/neuronest/internal/server"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "neuronest-server",
		Short:         "Neuronest coach service HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	app := bootstrap.New()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	svc, err := bootstrap.NewServices(ctx, cfg, clock.SystemClock{})
	if err != nil {
		return fmt.Errorf("bootstrap.NewServices() > %w", err)
	}
	app.AddShutdownHook(func(context.Context) error {
		return svc.Close()
	})

	srv, err := buildServer(cfg, svc)
	if err != nil {
		return errors.Join(err, app.Shutdown())
	}
	app.AddShutdownHook(srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		slog.Default().Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

// buildServer is replaced in tests.
var buildServer = newServer

func newServer(cfg *config.Config, svc *bootstrap.Services) (*http.Server, error) {
	handler, err := server.NewCoachHandler(svc)
	if err != nil {
		return nil, fmt.Errorf("server.NewCoachHandler() > %w", err)
	}
	path, h := server.NewCoachServiceHandler(handler)

	mux := http.NewServeMux()
	mux.Handle(path, h)
	if cfg.Metrics.Enabled {
		mux.Handle("/metrics", metrics.Handler(svc.Metrics))
	}

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: corsMiddleware(h2c.NewHandler(mux, &http2.Server{}), cfg.Server.CORS.AllowedOrigins),
	}, nil
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

func corsMiddleware(next http.Handler, allowedOrigins []string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Connect-Protocol-Version")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
