package report

import (
	"slices"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
)

func TestAggregateByCategory_Empty(t *testing.T) {
	totals := AggregateByCategory(nil)
	assert.NotNil(t, totals)
	assert.Empty(t, totals)
}

func TestAggregateByCategory_SingleCategory(t *testing.T) {
	expenses := []models.Transaction{
		tx("50", "food", "2024-06-01"),
		tx("30", "food", "2024-06-10"),
	}

	totals := AggregateByCategory(expenses)

	require.Len(t, totals, 1)
	food := totals["food"]
	assert.True(t, food.Amount.Equal(decimal.NewFromInt(80)), "amount %s", food.Amount)
	assert.Equal(t, 2, food.Count)
	require.True(t, food.Percentage.Valid)
	assert.True(t, food.Percentage.Decimal.Equal(decimal.NewFromInt(100)))
}

func TestAggregateByCategory_FoldsCaseOnly(t *testing.T) {
	totals := AggregateByCategory([]models.Transaction{
		tx("10", "Food", "2024-06-01"),
		tx("20", "food", "2024-06-02"),
		tx("5", "FOOD", "2024-06-03"),
		tx("1", "food ", "2024-06-04"),
	})

	require.Len(t, totals, 2)
	assert.Equal(t, 3, totals["food"].Count)
	assert.True(t, totals["food"].Amount.Equal(decimal.NewFromInt(35)))
	assert.Equal(t, 1, totals["food "].Count, "whitespace stays significant")
}

func TestAggregateByCategory_PercentagesAndSums(t *testing.T) {
	input := []models.Transaction{
		tx("50", "food", "2024-06-01"),
		tx("25", "transport", "2024-06-01"),
		tx("25", "bills", "2024-06-01"),
	}

	totals := AggregateByCategory(input)

	sum := decimal.Zero
	for _, bucket := range totals {
		sum = sum.Add(bucket.Amount)
	}
	assert.True(t, sum.Equal(Total(input)))
	assert.True(t, totals["food"].Percentage.Decimal.Equal(decimal.NewFromInt(50)))
	assert.True(t, totals["transport"].Percentage.Decimal.Equal(decimal.NewFromInt(25)))
}

func TestAggregateByCategory_ZeroTotalLeavesPercentageUnset(t *testing.T) {
	totals := AggregateByCategory([]models.Transaction{
		tx("0", "food", "2024-06-01"),
		tx("0", "other", "2024-06-02"),
	})

	require.Len(t, totals, 2)
	for key, bucket := range totals {
		assert.False(t, bucket.Percentage.Valid, key)
		assert.Equal(t, 1, bucket.Count)
	}
}

func TestAggregateByCategory_PureAndRepeatable(t *testing.T) {
	input := []models.Transaction{
		tx("12.5", "Food", "2024-06-01"),
		tx("7.5", "transport", "2024-05-01"),
	}
	before := slices.Clone(input)

	first := AggregateByCategory(input)
	second := AggregateByCategory(input)

	assert.Equal(t, first, second)
	assert.Equal(t, before, input)
}

func TestCategoryTotals_Sorted(t *testing.T) {
	totals := AggregateByCategory([]models.Transaction{
		tx("10", "bills", "2024-06-01"),
		tx("30", "food", "2024-06-01"),
		tx("10", "another", "2024-06-01"),
	})

	rows := totals.Sorted()

	require.Len(t, rows, 3)
	assert.Equal(t, "food", rows[0].Category)
	assert.Equal(t, "another", rows[1].Category)
	assert.Equal(t, "bills", rows[2].Category)
}
