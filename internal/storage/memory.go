package storage

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
)

// MemorySource is an in-memory transaction collection. Useful for tests and
// throwaway sessions; nothing survives the process.
type MemorySource struct {
	mu    sync.RWMutex
	items map[string]models.Transaction
	now   func() time.Time
}

// NewMemorySource returns an empty collection.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		items: make(map[string]models.Transaction),
		now:   time.Now,
	}
}

func (s *MemorySource) Create(ctx context.Context, in models.TransactionInput) (models.Transaction, error) {
	if err := in.Validate(); err != nil {
		return models.Transaction{}, err
	}

	t := models.Transaction{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		Amount:      in.Amount,
		Category:    in.Category,
		Description: in.Description,
		Date:        models.CalendarDate(in.Date),
		CreatedAt:   s.now().UTC(),
	}

	s.mu.Lock()
	s.items[t.ID] = t
	s.mu.Unlock()
	return t, nil
}

func (s *MemorySource) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	return s.GetByDateRange(ctx, userID, models.DateRange{})
}

func (s *MemorySource) GetByDateRange(ctx context.Context, userID string, r models.DateRange) ([]models.Transaction, error) {
	out := []models.Transaction{}
	if userID == "" {
		return out, nil
	}

	s.mu.RLock()
	for _, t := range s.items {
		if t.UserID == userID && r.Contains(t.Date) {
			out = append(out, t)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, models.NewerFirst)
	return out, nil
}

func (s *MemorySource) Update(ctx context.Context, id string, patch models.TransactionPatch) (models.Transaction, error) {
	if err := patch.Validate(id); err != nil {
		return models.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.items[id]
	if !ok {
		return models.Transaction{}, models.ErrNotFound
	}
	t = patch.Apply(t)
	t.Date = models.CalendarDate(t.Date)
	s.items[id] = t
	return t, nil
}

func (s *MemorySource) Delete(ctx context.Context, id string) error {
	if id == "" {
		return models.ErrMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.items, id)
	return nil
}
