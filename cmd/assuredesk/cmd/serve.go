package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Assure-Desk/assuredesk/internal/adapter/inbound/api"
	"github.com/Assure-Desk/assuredesk/internal/adapter/outbound/memory"
	"github.com/Assure-Desk/assuredesk/internal/adapter/outbound/seed"
	"github.com/Assure-Desk/assuredesk/internal/config"
	"github.com/Assure-Desk/assuredesk/internal/domain/session"
	"github.com/Assure-Desk/assuredesk/internal/service"
	"github.com/Assure-Desk/assuredesk/internal/telemetry"
)

var devMode bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the AssureDesk API server.

The server keeps its data in memory by default. Configure store.driver
"sqlite" with store.path for durable storage.

Examples:
  # Start with config file settings
  assuredesk serve

  # Development mode: in-memory store, verbose logging, telemetry to stdout
  assuredesk serve --dev

  # Start with a specific config file
  assuredesk --config /path/to/config.yaml serve`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&devMode, "dev", false, "Enable development mode (in-memory store, verbose logging)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if devMode {
		cfg.DevMode = true
	}
	if cfg.DevMode {
		cfg.SetDevDefaults()
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	logLevel := parseLogLevel(cfg.Server.LogLevel)
	if cfg.DevMode {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Info("loaded config", "file", configFile)
	}

	// stop() restores default signal handling so a second Ctrl+C hard-kills.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		return err
	}
	logger.Info("assuredesk stopped")
	return nil
}

// run wires all components together and serves until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Setup(ctx, Version)
		if err != nil {
			return fmt.Errorf("telemetry setup failed: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Warn("telemetry shutdown failed", "error", err)
			}
		}()
	}

	stores, cleanup, err := openStores(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	sessionStore := memory.NewSessionStore()
	sessionStore.StartCleanup(ctx)
	defer sessionStore.Stop()
	sessions := session.NewService(sessionStore, session.Config{
		Timeout: cfg.Server.SessionTimeoutOr(session.DefaultTimeout),
	})

	if cfg.Seed.File != "" {
		fixtures, err := seed.LoadFile(cfg.Seed.File)
		if err != nil {
			return fmt.Errorf("load seed fixtures: %w", err)
		}
		if err := fixtures.Apply(ctx, stores.seedTargets(), logger); err != nil {
			return fmt.Errorf("apply seed fixtures: %w", err)
		}
	} else if cfg.DevMode {
		if err := seed.Default().Apply(ctx, stores.seedTargets(), logger); err != nil {
			return fmt.Errorf("apply default fixtures: %w", err)
		}
	}

	metrics := api.NewMetrics()
	metrics.ObserveSessions(sessionStore)

	handler := api.NewHandler(
		api.WithAuthService(service.NewAuthService(stores.users, sessions, logger)),
		api.WithConnectionService(service.NewConnectionService(
			stores.connections, &service.HTTPProber{}, cfg.Probe.TimeoutOr(service.DefaultProbeTimeout), logger)),
		api.WithApplicationService(service.NewApplicationService(stores.applications, logger)),
		api.WithStatsService(service.NewStatsService(stores.applications, stores.connections)),
		api.WithSessionService(sessions),
		api.WithMetrics(metrics),
		api.WithHealthChecker(api.NewHealthChecker(sessionStore, stores.pinger, Version)),
		api.WithBuildInfo(&api.BuildInfo{Version: Version, Commit: Commit}),
		api.WithLogger(logger),
		api.WithLoginRateLimit(cfg.Server.LoginMaxAttempts, cfg.Server.LoginWindowOr(api.DefaultLoginWindow)),
	)

	server := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: handler.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", cfg.Server.HTTPAddr, "store", cfg.Store.Driver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err)
			return err
		}
		return nil
	case err := <-errCh:
		return err
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
