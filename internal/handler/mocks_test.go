package handler

import (
	"context"

	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
)

// MockSource is a mock implementation of TransactionSource
type MockSource struct {
	CreateFunc         func(ctx context.Context, in models.TransactionInput) (models.Transaction, error)
	ListByUserFunc     func(ctx context.Context, userID string) ([]models.Transaction, error)
	GetByDateRangeFunc func(ctx context.Context, userID string, r models.DateRange) ([]models.Transaction, error)
	UpdateFunc         func(ctx context.Context, id string, patch models.TransactionPatch) (models.Transaction, error)
	DeleteFunc         func(ctx context.Context, id string) error

	ListCalls   int
	CreateCalls int
}

func (m *MockSource) Create(ctx context.Context, in models.TransactionInput) (models.Transaction, error) {
	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in)
	}
	if err := in.Validate(); err != nil {
		return models.Transaction{}, err
	}
	return models.Transaction{ID: "new-id", UserID: in.UserID, Amount: in.Amount, Category: in.Category, Date: in.Date}, nil
}

func (m *MockSource) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	m.ListCalls++
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockSource) GetByDateRange(ctx context.Context, userID string, r models.DateRange) ([]models.Transaction, error) {
	if m.GetByDateRangeFunc != nil {
		return m.GetByDateRangeFunc(ctx, userID, r)
	}
	return nil, nil
}

func (m *MockSource) Update(ctx context.Context, id string, patch models.TransactionPatch) (models.Transaction, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, patch)
	}
	return models.Transaction{ID: id}, nil
}

func (m *MockSource) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockBatchSource adds BatchCreator to MockSource
type MockBatchSource struct {
	MockSource
	CreateManyFunc func(ctx context.Context, inputs []models.TransactionInput) ([]models.Transaction, error)
}

func (m *MockBatchSource) CreateMany(ctx context.Context, inputs []models.TransactionInput) ([]models.Transaction, error) {
	if m.CreateManyFunc != nil {
		return m.CreateManyFunc(ctx, inputs)
	}
	out := make([]models.Transaction, len(inputs))
	for i, in := range inputs {
		out[i] = models.Transaction{UserID: in.UserID, Amount: in.Amount, Category: in.Category, Date: in.Date}
	}
	return out, nil
}

// MockEventBus is a mock implementation of EventBus
type MockEventBus struct {
	PublishFunc func(ctx context.Context, evt models.TransactionEvent) error
	DrainFunc   func(ctx context.Context, userID, origin string) ([]models.TransactionEvent, error)

	Published []models.TransactionEvent
}

func (m *MockEventBus) Publish(ctx context.Context, evt models.TransactionEvent) error {
	m.Published = append(m.Published, evt)
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, evt)
	}
	return nil
}

func (m *MockEventBus) Drain(ctx context.Context, userID, origin string) ([]models.TransactionEvent, error) {
	if m.DrainFunc != nil {
		return m.DrainFunc(ctx, userID, origin)
	}
	return nil, nil
}

// MockBlobClient is a mock implementation of BlobClient
type MockBlobClient struct {
	UploadBytesFunc  func(ctx context.Context, containerName, blobName string, data []byte, contentType string) error
	DownloadTextFunc func(ctx context.Context, containerName, blobName string) (string, error)
}

func (m *MockBlobClient) UploadBytes(ctx context.Context, containerName, blobName string, data []byte, contentType string) error {
	if m.UploadBytesFunc != nil {
		return m.UploadBytesFunc(ctx, containerName, blobName, data, contentType)
	}
	return nil
}

func (m *MockBlobClient) DownloadText(ctx context.Context, containerName, blobName string) (string, error) {
	if m.DownloadTextFunc != nil {
		return m.DownloadTextFunc(ctx, containerName, blobName)
	}
	return "", nil
}

// SharedEventQueue is one event queue shared by several sessions. Drain
// removes what it returns, like a single-consumer broker queue.
type SharedEventQueue struct {
	Pending []models.TransactionEvent
}

func (q *SharedEventQueue) Publish(ctx context.Context, evt models.TransactionEvent) error {
	q.Pending = append(q.Pending, evt)
	return nil
}

func (q *SharedEventQueue) Drain(ctx context.Context, userID, origin string) ([]models.TransactionEvent, error) {
	var taken, left []models.TransactionEvent
	for _, evt := range q.Pending {
		if evt.Relevant(userID, origin) {
			taken = append(taken, evt)
		} else {
			left = append(left, evt)
		}
	}
	q.Pending = left
	return taken, nil
}
