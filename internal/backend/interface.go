package backend

import (
	"context"

	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
)

// Source is one transaction collection (expenses or income).
type Source interface {
	Create(ctx context.Context, in models.TransactionInput) (models.Transaction, error)
	ListByUser(ctx context.Context, userID string) ([]models.Transaction, error)
	GetByDateRange(ctx context.Context, userID string, r models.DateRange) ([]models.Transaction, error)
	Update(ctx context.Context, id string, patch models.TransactionPatch) (models.Transaction, error)
	Delete(ctx context.Context, id string) error
}

// EventBus carries transaction change events between sessions.
type EventBus interface {
	Publish(ctx context.Context, evt models.TransactionEvent) error
	Drain(ctx context.Context, userID, origin string) ([]models.TransactionEvent, error)
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result holds the data sources and event bus built from configuration.
type Result struct {
	Expenses Source
	Income   Source
	Events   EventBus
	Cleanup  CleanupFunc
}

// NoopEvents is used when no events backend is configured.
type NoopEvents struct{}

func (NoopEvents) Publish(context.Context, models.TransactionEvent) error { return nil }

func (NoopEvents) Drain(context.Context, string, string) ([]models.TransactionEvent, error) {
	return nil, nil
}
