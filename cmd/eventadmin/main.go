package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/event-admin/internal/application"
	"github.com/example/event-admin/internal/config"
	"github.com/example/event-admin/internal/eventapi"
	httptransport "github.com/example/event-admin/internal/http"
	"github.com/example/event-admin/internal/logging"
	"github.com/example/event-admin/internal/media"
	"github.com/example/event-admin/internal/persistence"
	"github.com/example/event-admin/internal/persistence/sqlite"
)

func main() {
	bootLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		bootLogger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		bootLogger.Error("failed to build logger", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("event admin stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	repo, closeRepo, err := openDraftRepository(ctx, cfg.SQLiteDSN, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeRepo(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	previews, err := media.NewStore(cfg.PreviewDir, cfg.MaxImageBytes+1, time.Now, logger)
	if err != nil {
		return fmt.Errorf("open preview store: %w", err)
	}
	defer func() {
		if cerr := previews.Close(); cerr != nil {
			logger.Error("failed to release previews", "error", cerr)
		}
	}()

	events, err := eventapi.NewClient(eventapi.Config{
		BaseURL: cfg.EventServiceURL,
		Token:   cfg.EventServiceToken,
		Timeout: cfg.EventServiceTimeout,
	}, nil, logger)
	if err != nil {
		return err
	}

	service := application.NewDraftServiceWithLogger(
		events,
		application.NewDraftStore(repo),
		previews,
		validationRules(cfg),
		uuid.NewString,
		time.Now,
		logger,
	)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Events: httptransport.NewEventHandler(service, logger),
		// Multipart framing needs headroom above the image ceiling itself.
		Drafts:     httptransport.NewDraftHandler(service, cfg.MaxImageBytes+(1<<20), logger),
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(logger), httptransport.Recover(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.EventServiceTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("event admin API listening", "addr", server.Addr, "event_service", cfg.EventServiceURL)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// openDraftRepository opens and migrates the SQLite store, or falls back to memory when dsn
// is empty.
func openDraftRepository(ctx context.Context, dsn string, logger *slog.Logger) (persistence.DraftRepository, func() error, error) {
	if dsn == "" {
		logger.Warn("no SQLite DSN configured, drafts are kept in memory")
		return persistence.NewMemoryDraftRepository(), func() error { return nil }, nil
	}

	pool, err := sqlite.Open(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	if err := pool.Migrate(ctx, logger); err != nil {
		_ = pool.Close()
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}
	return sqlite.NewDraftRepository(pool), pool.Close, nil
}

func validationRules(cfg config.Config) application.ValidationRules {
	rules := application.DefaultValidationRules()
	rules.Region = application.Region{
		MinLatitude:  cfg.Region.MinLatitude,
		MaxLatitude:  cfg.Region.MaxLatitude,
		MinLongitude: cfg.Region.MinLongitude,
		MaxLongitude: cfg.Region.MaxLongitude,
	}
	if cfg.MaxImageBytes > 0 {
		rules.MaxImageBytes = cfg.MaxImageBytes
	}
	rules.Audiences = append([]string(nil), cfg.Audiences...)
	return rules
}
