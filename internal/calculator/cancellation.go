package calculator

import (
	"fmt"
	"time"
)

// DebtCancellationCategory is the reserved category of expenses that record a
// settlement payment. Such expenses count towards balances but not towards spend.
const DebtCancellationCategory = "Debt Cancellation"

// RecordCancellation turns a settlement into an expense: the debtor pays and the
// creditor is the only beneficiary. Adding it to the group's expenses moves both
// balances towards zero by the settled amount.
func RecordCancellation(s Settlement, at time.Time) Expense {
	return Expense{
		Description:  fmt.Sprintf("%s: %s → %s", DebtCancellationCategory, s.From, s.To),
		Amount:       s.Amount,
		PaidBy:       s.From,
		SplitBetween: []string{s.To},
		Category:     DebtCancellationCategory,
		Date:         at,
	}
}

// RecordAllCancellations records every settlement, in order, at the same time.
func RecordAllCancellations(settlements []Settlement, at time.Time) []Expense {
	expenses := make([]Expense, len(settlements))
	for i, s := range settlements {
		expenses[i] = RecordCancellation(s, at)
	}
	return expenses
}

// IsDebtCancellation reports whether the expense records a settlement.
func IsDebtCancellation(e Expense) bool {
	return e.Category == DebtCancellationCategory
}

// TotalSpend sums the amounts of all expenses except debt cancellations.
func TotalSpend(expenses []Expense) float64 {
	var total float64
	for _, e := range expenses {
		if IsDebtCancellation(e) {
			continue
		}
		total += e.Amount
	}
	return total
}
