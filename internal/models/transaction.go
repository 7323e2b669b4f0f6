package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO-8601 calendar date format used for Transaction.Date.
const DateLayout = "2006-01-02"

var (
	ErrMissingUser   = errors.New("missing user id")
	ErrMissingID     = errors.New("missing transaction id")
	ErrNotFound      = errors.New("transaction not found")
	ErrInvalidAmount = errors.New("amount must not be negative")
	ErrInvalidKind   = errors.New("invalid transaction kind")
)

// Kind identifies which collection a transaction lives in. The sign of its
// cash-flow impact is derived from this, never stored on the record.
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// ParseKind accepts the singular and plural collection names.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "expense", "expenses":
		return KindExpense, nil
	case "income", "incomes":
		return KindIncome, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// Transaction represents a single income or expense record.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// DateString returns the calendar date in DateLayout.
func (t Transaction) DateString() string {
	return t.Date.Format(DateLayout)
}

// TransactionInput is the payload accepted by a data source's Create.
type TransactionInput struct {
	UserID      string          `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}

// Validate checks the create invariants.
func (in TransactionInput) Validate() error {
	if in.UserID == "" {
		return ErrMissingUser
	}
	if in.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// TransactionPatch is a partial update. Nil fields are left unchanged.
type TransactionPatch struct {
	UserID      *string          `json:"userId,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Description *string          `json:"description,omitempty"`
	Date        *time.Time       `json:"date,omitempty"`
}

// Validate checks the update invariants for the given target id.
func (p TransactionPatch) Validate(id string) error {
	if id == "" {
		return ErrMissingID
	}
	if p.UserID != nil && *p.UserID == "" {
		return ErrMissingUser
	}
	if p.Amount != nil && p.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// Apply returns a copy of t with the patch applied.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.UserID != nil {
		t.UserID = *p.UserID
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	return t
}

// DateRange bounds a range query. Both bounds are inclusive calendar dates;
// a zero bound is open.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether the calendar date of d falls inside the range.
func (r DateRange) Contains(d time.Time) bool {
	day := d.Format(DateLayout)
	if !r.Start.IsZero() && day < r.Start.Format(DateLayout) {
		return false
	}
	if !r.End.IsZero() && day > r.End.Format(DateLayout) {
		return false
	}
	return true
}

// ParseDate parses a calendar date in DateLayout as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// NewerFirst orders by date descending, then by creation time descending.
func NewerFirst(a, b Transaction) int {
	if c := b.Date.Compare(a.Date); c != 0 {
		return c
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}

// CalendarDate drops the time of day, keeping t's calendar date at UTC midnight.
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
