package models

import (
	"time"

	"github.com/mmynk/splitledger/internal/calculator"
)

// DefaultCategory is used when an expense is created without a category.
const DefaultCategory = "General"

// Expense represents one payment made by a member and shared by others.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Description is the human-readable label (e.g., "Groceries").
	Description string

	// Amount is the total paid. Always positive.
	Amount float64

	// PaidBy is the member name of the payer.
	PaidBy string

	// SplitBetween is the set of member names who share Amount evenly.
	// The payer need not be included.
	SplitBetween []string

	// Category is a free-text tag. calculator.DebtCancellationCategory
	// marks a recorded settlement.
	Category string

	// Currency is the ISO code of Amount, normally the group's currency.
	Currency string

	// Date is the Unix timestamp when the expense happened.
	Date int64

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// ToCalculator converts the expense to the calculator's input format.
func (e *Expense) ToCalculator() calculator.Expense {
	return calculator.Expense{
		Description:  e.Description,
		Amount:       e.Amount,
		PaidBy:       e.PaidBy,
		SplitBetween: e.SplitBetween,
		Category:     e.Category,
		Date:         time.Unix(e.Date, 0).UTC(),
	}
}

// ExpenseFromCalculator builds a persistable expense for a group.
func ExpenseFromCalculator(groupID, currency string, e calculator.Expense) *Expense {
	return &Expense{
		GroupID:      groupID,
		Description:  e.Description,
		Amount:       e.Amount,
		PaidBy:       e.PaidBy,
		SplitBetween: e.SplitBetween,
		Category:     e.Category,
		Currency:     currency,
		Date:         e.Date.Unix(),
	}
}

// IsDebtCancellation reports whether the expense records a settled debt.
func (e *Expense) IsDebtCancellation() bool {
	return e.Category == calculator.DebtCancellationCategory
}

// ToCalculatorExpenses converts a list of expenses for balance computation.
func ToCalculatorExpenses(expenses []*Expense) []calculator.Expense {
	out := make([]calculator.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = e.ToCalculator()
	}
	return out
}
