package csvparse

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
)

// ParseCSV parses transaction inputs for userID from a CSV string with the
// columns Date, Category, Description and Amount. Description is optional.
// It returns the parsed inputs and a list of error messages for invalid rows.
func ParseCSV(content, userID string) ([]models.TransactionInput, []string) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, []string{fmt.Sprintf("Failed to read CSV: %v", err)}
	}

	if len(records) < 2 {
		return []models.TransactionInput{}, nil // Empty or header-only
	}

	headers := parseHeaders(records[0])
	for _, required := range []string{"date", "category", "amount"} {
		if !containsHeader(headers, required) {
			return nil, []string{fmt.Sprintf("Missing column: %s", required)}
		}
	}

	var inputs []models.TransactionInput
	var errors []string

	for i, record := range records[1:] {
		rowNum := i + 2
		if len(record) < len(headers) {
			errors = append(errors, fmt.Sprintf("Row %d: Not enough fields", rowNum))
			continue
		}

		rowMap := make(map[string]string)
		for j, header := range headers {
			rowMap[header] = strings.TrimSpace(record[j])
		}

		in, err := mapToInput(rowMap)
		if err != nil {
			errors = append(errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		in.UserID = userID
		inputs = append(inputs, in)
	}

	return inputs, errors
}

// parseHeaders lowercases header names so "Date" and "date" both match.
func parseHeaders(row []string) []string {
	headers := make([]string, len(row))
	for i, h := range row {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return headers
}

func containsHeader(headers []string, name string) bool {
	for _, h := range headers {
		if h == name {
			return true
		}
	}
	return false
}

func mapToInput(row map[string]string) (models.TransactionInput, error) {
	dateStr := row["date"]
	if dateStr == "" {
		return models.TransactionInput{}, fmt.Errorf("missing Date")
	}
	date, err := models.ParseDate(dateStr)
	if err != nil {
		return models.TransactionInput{}, fmt.Errorf("invalid Date format: %s", dateStr)
	}

	category := strings.ToLower(row["category"])
	if category == "" {
		return models.TransactionInput{}, fmt.Errorf("missing Category")
	}

	amountStr := strings.ReplaceAll(row["amount"], ",", "")
	if amountStr == "" {
		return models.TransactionInput{}, fmt.Errorf("missing Amount")
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return models.TransactionInput{}, fmt.Errorf("invalid Amount: %s", row["amount"])
	}
	if amount.IsNegative() {
		return models.TransactionInput{}, fmt.Errorf("negative Amount: %s", row["amount"])
	}

	return models.TransactionInput{
		Amount:      amount,
		Category:    category,
		Description: row["description"],
		Date:        date,
	}, nil
}
