package calculator

import (
	"errors"
	"time"
)

// Epsilon is the tolerance below which a balance or settlement amount is
// treated as zero. One cent in the group's currency minor unit.
const Epsilon = 0.01

// ErrEmptySplit is returned when an expense is not split between anyone.
var ErrEmptySplit = errors.New("expense must be split between at least one member")

// Expense represents an expense with the information needed for balance calculations.
type Expense struct {
	Description  string
	Amount       float64
	PaidBy       string
	SplitBetween []string // Members who jointly owe Amount, split evenly
	Category     string
	Date         time.Time
}

// SplitEvenly returns the share each member of splitBetween owes for amount.
// Based on the algorithm: per_person = amount / count(split_between)
func SplitEvenly(amount float64, splitBetween []string) (float64, error) {
	if len(splitBetween) == 0 {
		return 0, ErrEmptySplit
	}
	return amount / float64(len(splitBetween)), nil
}
