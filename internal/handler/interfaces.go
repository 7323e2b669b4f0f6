package handler

import (
	"context"

	"github.com/thestartupdeveloper10/jamiibudget/internal/cache"
	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
)

// TransactionSource defines the data source operations used by the screens.
type TransactionSource interface {
	Create(ctx context.Context, in models.TransactionInput) (models.Transaction, error)
	ListByUser(ctx context.Context, userID string) ([]models.Transaction, error)
	GetByDateRange(ctx context.Context, userID string, r models.DateRange) ([]models.Transaction, error)
	Update(ctx context.Context, id string, patch models.TransactionPatch) (models.Transaction, error)
	Delete(ctx context.Context, id string) error
}

// BatchCreator is implemented by sources that can insert many rows at once.
type BatchCreator interface {
	CreateMany(ctx context.Context, inputs []models.TransactionInput) ([]models.Transaction, error)
}

// SnapshotLoader returns cached transactions, refetching when stale.
type SnapshotLoader interface {
	Load(ctx context.Context, userID string) (cache.Snapshot, error)
}

// EventBus defines the change notification operations used by the screens.
// Drain returns the pending events for userID published by sessions other
// than origin.
type EventBus interface {
	Publish(ctx context.Context, evt models.TransactionEvent) error
	Drain(ctx context.Context, userID, origin string) ([]models.TransactionEvent, error)
}

// BlobClient defines the blob storage operations used by the screens.
type BlobClient interface {
	UploadBytes(ctx context.Context, containerName, blobName string, data []byte, contentType string) error
	DownloadText(ctx context.Context, containerName, blobName string) (string, error)
}
