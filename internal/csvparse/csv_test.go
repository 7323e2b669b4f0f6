package csvparse

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseCSV_Valid(t *testing.T) {
	content := `Date,Category,Description,Amount
2024-06-01,Food,Lunch,42.5
2024-06-02,transport,,"1,200"`

	inputs, errors := ParseCSV(content, "user-1")

	if len(errors) != 0 {
		t.Fatalf("Expected no errors, got: %v", errors)
	}

	if len(inputs) != 2 {
		t.Fatalf("Expected 2 inputs, got %d", len(inputs))
	}

	in1 := inputs[0]
	if in1.UserID != "user-1" {
		t.Errorf("Expected UserID 'user-1', got '%s'", in1.UserID)
	}
	if in1.Category != "food" {
		t.Errorf("Expected Category 'food', got '%s'", in1.Category)
	}
	if in1.Description != "Lunch" {
		t.Errorf("Expected Description 'Lunch', got '%s'", in1.Description)
	}
	if !in1.Amount.Equal(decimal.NewFromFloat(42.5)) {
		t.Errorf("Expected Amount 42.5, got %s", in1.Amount)
	}
	if got := in1.Date.Format("2006-01-02"); got != "2024-06-01" {
		t.Errorf("Expected Date 2024-06-01, got %s", got)
	}

	if !inputs[1].Amount.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("Expected Amount 1200, got %s", inputs[1].Amount)
	}
}

func TestParseCSV_Whitespace(t *testing.T) {
	content := ` Date , Category , Description , Amount
 2024-06-01 , Food , Lunch , 42.5 `

	inputs, errors := ParseCSV(content, "user-1")

	if len(errors) != 0 {
		t.Fatalf("Expected no errors, got: %v", errors)
	}
	if len(inputs) != 1 {
		t.Fatalf("Expected 1 input, got %d", len(inputs))
	}
	if inputs[0].Category != "food" {
		t.Errorf("Expected Category 'food', got '%s'", inputs[0].Category)
	}
}

func TestParseCSV_Errors(t *testing.T) {
	content := `Date,Category,Description,Amount
2024-06-01,food,ok,10
bad-date,food,,10
2024-06-03,,,10
2024-06-04,food,,abc
2024-06-05,food,,-5
2024-06-06,food`

	inputs, errors := ParseCSV(content, "user-1")

	if len(inputs) != 1 {
		t.Errorf("Expected 1 valid input, got %d", len(inputs))
	}
	if len(errors) != 5 {
		t.Fatalf("Expected 5 errors, got %d: %v", len(errors), errors)
	}

	want := []string{"Row 3: invalid Date", "Row 4: missing Category", "Row 5: invalid Amount", "Row 6: negative Amount", "Row 7: Not enough fields"}
	for i, prefix := range want {
		if !strings.HasPrefix(errors[i], prefix) {
			t.Errorf("error %d: expected prefix %q, got %q", i, prefix, errors[i])
		}
	}
}

func TestParseCSV_MissingColumn(t *testing.T) {
	content := `Date,Description,Amount
2024-06-01,Lunch,10`

	inputs, errors := ParseCSV(content, "user-1")

	if inputs != nil {
		t.Errorf("Expected nil inputs, got %v", inputs)
	}
	if len(errors) != 1 || errors[0] != "Missing column: category" {
		t.Errorf("Expected missing column error, got %v", errors)
	}
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	inputs, errors := ParseCSV("Date,Category,Description,Amount\n", "user-1")

	if len(inputs) != 0 || len(errors) != 0 {
		t.Errorf("Expected empty result, got %v %v", inputs, errors)
	}
}
