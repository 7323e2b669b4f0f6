package handler

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
)

func TestAllTransactions_MergesNewestFirst(t *testing.T) {
	f := newFixture(t)
	f.expenses.ListByUserFunc = listing(
		txn("e1", "50", "food", "2024-06-01"),
		txn("e0", "20", "transport", "2023-01-09"),
	)
	f.income.ListByUserFunc = listing(txn("i1", "1000", "salary", "2024-06-05"))
	f.deps.JSON = true

	require.NoError(t, f.deps.AllTransactions(context.Background()))

	var view HistoryView
	require.NoError(t, json.Unmarshal(f.out.Bytes(), &view))
	require.Len(t, view.Entries, 3)
	assert.Equal(t, "i1", view.Entries[0].ID)
	assert.Equal(t, "e1", view.Entries[1].ID)
	assert.Equal(t, "e0", view.Entries[2].ID)
	assert.Equal(t, "930", view.Summary.Balance.String())
}

func TestAllTransactions_UsesCache(t *testing.T) {
	f := newFixture(t)
	f.withSampleData()
	ctx := context.Background()

	require.NoError(t, f.deps.Home(ctx))
	require.NoError(t, f.deps.AllTransactions(ctx))

	assert.Equal(t, 1, f.expenses.ListCalls)
	assert.Contains(t, f.out.String(), "e2")
}

func TestAllTransactions_Empty(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.deps.AllTransactions(context.Background()))

	assert.Contains(t, f.out.String(), "No transactions yet")
}

func TestShow_FindsIncome(t *testing.T) {
	f := newFixture(t)
	f.withSampleData()

	require.NoError(t, f.deps.Show(context.Background(), "i1"))

	out := f.out.String()
	assert.Contains(t, out, "+KES 1,000.00")
	assert.Contains(t, out, "salary")
	assert.Contains(t, out, "Wednesday, June 5, 2024")
}

func TestShow_JSONIncludesKind(t *testing.T) {
	f := newFixture(t)
	f.withSampleData()
	f.deps.JSON = true

	require.NoError(t, f.deps.Show(context.Background(), "e2"))

	var entry struct {
		Kind models.Kind `json:"kind"`
		ID   string      `json:"id"`
	}
	require.NoError(t, json.Unmarshal(f.out.Bytes(), &entry))
	assert.Equal(t, models.KindExpense, entry.Kind)
	assert.Equal(t, "e2", entry.ID)
}

func TestShow_NotFound(t *testing.T) {
	f := newFixture(t)
	f.withSampleData()

	err := f.deps.Show(context.Background(), "missing")

	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, f.deps.Show(context.Background(), ""), models.ErrMissingID)
}

func TestFindEntry_PrefersExpenses(t *testing.T) {
	dup := txn("x", "5", "food", "2024-06-01")

	entry, err := FindEntry([]models.Transaction{dup}, []models.Transaction{dup}, "x")

	require.NoError(t, err)
	assert.Equal(t, models.KindExpense, entry.Kind)
}
