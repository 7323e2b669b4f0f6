package refresh

import (
	"context"

	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
)

// MockLister is a mock implementation of Lister
type MockLister struct {
	ListByUserFunc func(ctx context.Context, userID string) ([]models.Transaction, error)
	Calls          int
}

func (m *MockLister) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	m.Calls++
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return nil, nil
}
