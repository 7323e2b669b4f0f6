package report

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
)

func tx(amount string, category, date string) models.Transaction {
	d, err := models.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return models.Transaction{
		UserID:    "user-1",
		Amount:    decimal.RequireFromString(amount),
		Category:  category,
		Date:      d,
		CreatedAt: d.Add(12 * time.Hour),
	}
}
