package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/thestartupdeveloper10/jamiibudget/internal/backend"
	"github.com/thestartupdeveloper10/jamiibudget/internal/cache"
	"github.com/thestartupdeveloper10/jamiibudget/internal/config"
	"github.com/thestartupdeveloper10/jamiibudget/internal/handler"
	"github.com/thestartupdeveloper10/jamiibudget/internal/logging"
	"github.com/thestartupdeveloper10/jamiibudget/internal/refresh"
	"github.com/thestartupdeveloper10/jamiibudget/internal/services"
)

// session is everything one process shares across commands: the backend,
// the cache and the loader that owns the freshness policy.
type session struct {
	cfg         *config.Config
	backend     *backend.Result
	loader      *refresh.Loader
	deps        *handler.Dependencies
	unsubscribe func()
}

func openSession(ctx context.Context, configPath, user string, out io.Writer) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if user != "" {
		cfg.UserID = user
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr); err != nil {
		return nil, err
	}

	res, err := backend.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store := cache.New(nil)
	unsubscribe := store.Subscribe(func(s cache.Snapshot) {
		slog.Debug("cache updated",
			"expenses_count", len(s.Expenses),
			"income_count", len(s.Income),
			"fetched", s.LastFetched != nil,
			"force_refresh", s.ShouldForceRefresh,
		)
	})
	loader := refresh.NewLoader(store, res.Expenses, res.Income, cfg.CacheDuration)

	deps := &handler.Dependencies{
		Expenses:         res.Expenses,
		Income:           res.Income,
		Cache:            store,
		Loader:           loader,
		Events:           res.Events,
		UserID:           cfg.UserID,
		SessionID:        uuid.NewString(),
		ReportsContainer: cfg.ReportsContainer,
		UploadsContainer: cfg.UploadsContainer,
		Out:              out,
	}

	if cfg.BlobServiceURL != "" {
		blob, err := services.NewBlobService(cfg.BlobServiceURL)
		if err != nil {
			unsubscribe()
			res.Cleanup()
			return nil, fmt.Errorf("failed to initialize blob service: %w", err)
		}
		deps.Blob = blob
	}

	if cfg.UserID == "" {
		slog.Warn("no user id configured; set user_id or pass --user")
	}

	return &session{
		cfg:         cfg,
		backend:     res,
		loader:      loader,
		deps:        deps,
		unsubscribe: unsubscribe,
	}, nil
}

func (s *session) Close() error {
	s.unsubscribe()
	return s.backend.Cleanup()
}
