package handler

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thestartupdeveloper10/jamiibudget/internal/cache"
	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
	"github.com/thestartupdeveloper10/jamiibudget/internal/refresh"
)

var fixedNow = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

type fixture struct {
	deps     *Dependencies
	expenses *MockSource
	income   *MockSource
	events   *MockEventBus
	out      *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		expenses: &MockSource{},
		income:   &MockSource{},
		events:   &MockEventBus{},
		out:      &bytes.Buffer{},
	}
	store := cache.New(nil)
	f.deps = &Dependencies{
		Expenses:         f.expenses,
		Income:           f.income,
		Cache:            store,
		Loader:           refresh.NewLoader(store, f.expenses, f.income, time.Minute),
		Events:           f.events,
		UserID:           "user-1",
		SessionID:        "session-1",
		ReportsContainer: "reports",
		UploadsContainer: "uploads",
		Out:              f.out,
		Now:              func() time.Time { return fixedNow },
	}
	return f
}

func txn(id, amount, category, date string) models.Transaction {
	d, err := models.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return models.Transaction{
		ID:        id,
		UserID:    "user-1",
		Amount:    decimal.RequireFromString(amount),
		Category:  category,
		Date:      d,
		CreatedAt: d,
	}
}

func listing(txs ...models.Transaction) func(ctx context.Context, userID string) ([]models.Transaction, error) {
	return func(ctx context.Context, userID string) ([]models.Transaction, error) {
		return txs, nil
	}
}

// withSampleData loads the two expenses and one income used across tests.
func (f *fixture) withSampleData() {
	f.expenses.ListByUserFunc = listing(
		txn("e1", "50", "food", "2024-06-01"),
		txn("e2", "30", "Food", "2024-06-10"),
	)
	f.income.ListByUserFunc = listing(txn("i1", "1000", "salary", "2024-06-05"))
}
