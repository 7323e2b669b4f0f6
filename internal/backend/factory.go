package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/thestartupdeveloper10/jamiibudget/internal/config"
	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
	"github.com/thestartupdeveloper10/jamiibudget/internal/services"
	"github.com/thestartupdeveloper10/jamiibudget/internal/storage"
)

// New builds the data sources and event bus selected by cfg.
func New(ctx context.Context, cfg *config.Config) (*Result, error) {
	var closers []func() error
	cleanup := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	res := &Result{Cleanup: cleanup}

	switch cfg.StorageBackend {
	case "memory":
		res.Expenses = storage.NewMemorySource()
		res.Income = storage.NewMemorySource()
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		closers = append(closers, repo.Close)
		res.Expenses = repo.Source(models.KindExpense)
		res.Income = repo.Source(models.KindIncome)
	case "tables":
		tables, err := services.NewTableStore(cfg.TableServiceURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize table store: %w", err)
		}
		if err := tables.CreateTables(ctx, cfg.ExpensesTable, cfg.IncomeTable); err != nil {
			return nil, err
		}
		res.Expenses = tables.Source(cfg.ExpensesTable)
		res.Income = tables.Source(cfg.IncomeTable)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}

	switch cfg.EventsBackend {
	case "", "none":
		res.Events = NoopEvents{}
	case "azqueue":
		queue, err := services.NewQueueService(cfg.QueueServiceURL)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to initialize queue service: %w", err)
		}
		res.Events = services.NewQueueEvents(queue, cfg.EventsQueue)
	case "amqp":
		events, err := services.NewAMQPEvents(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// Events only speed up staleness detection; run without them.
			slog.Warn("failed to initialize AMQP events, continuing without", "error", err)
			res.Events = NoopEvents{}
		} else {
			closers = append(closers, events.Close)
			res.Events = events
		}
	default:
		cleanup()
		return nil, fmt.Errorf("unsupported events backend: %s", cfg.EventsBackend)
	}

	slog.Info("backend initialized", "storage", cfg.StorageBackend, "events", cfg.EventsBackend)
	return res, nil
}
