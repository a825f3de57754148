package calculator

import (
	"fmt"
	"sort"
)

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	MemberName string
	TotalPaid  float64 // Total amount paid across all expenses
	TotalOwed  float64 // Total amount this person owes
	NetBalance float64 // Positive = owed money, Negative = owes money
}

// ComputeBalances reduces a group's expenses into a balance per member.
//
// Algorithm:
//   - Every member starts at zero paid and zero owed
//   - For each expense: payer contributed +amount, each split member owes amount/len(split)
//   - Aggregate: net_balance = total_paid - total_owed
//
// Only names listed in members are tracked. A payer or split member missing from
// members is dropped from that side of the accounting without an error, so an
// expense may leave the group total unbalanced when it references strangers.
func ComputeBalances(members []string, expenses []Expense) (map[string]MemberBalance, error) {
	balances, _, err := accumulate(members, expenses)
	if err != nil {
		return nil, err
	}

	result := make(map[string]MemberBalance, len(balances))
	for name, bal := range balances {
		result[name] = *bal
	}
	return result, nil
}

// SortedBalances computes balances like ComputeBalances and returns them ordered
// by net balance, creditors first. Members with equal balances keep the order in
// which they appear in members; the settlement planner depends on this order.
func SortedBalances(members []string, expenses []Expense) ([]MemberBalance, error) {
	balances, order, err := accumulate(members, expenses)
	if err != nil {
		return nil, err
	}

	sorted := make([]MemberBalance, 0, len(order))
	for _, name := range order {
		sorted = append(sorted, *balances[name])
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].NetBalance > sorted[j].NetBalance
	})
	return sorted, nil
}

// NetBalanceOf returns the net balance of the named member, or zero if the
// member is not present.
func NetBalanceOf(balances []MemberBalance, name string) float64 {
	for _, bal := range balances {
		if bal.MemberName == name {
			return bal.NetBalance
		}
	}
	return 0
}

// accumulate builds the per-member totals and the first-seen member order.
func accumulate(members []string, expenses []Expense) (map[string]*MemberBalance, []string, error) {
	balances := make(map[string]*MemberBalance, len(members))
	order := make([]string, 0, len(members))
	for _, name := range members {
		if _, exists := balances[name]; exists {
			continue
		}
		balances[name] = &MemberBalance{MemberName: name}
		order = append(order, name)
	}

	for i, expense := range expenses {
		share, err := SplitEvenly(expense.Amount, expense.SplitBetween)
		if err != nil {
			return nil, nil, fmt.Errorf("expense %d (%q): %w", i, expense.Description, err)
		}

		if payer, exists := balances[expense.PaidBy]; exists {
			payer.TotalPaid += expense.Amount
		}

		for _, member := range expense.SplitBetween {
			if bal, exists := balances[member]; exists {
				bal.TotalOwed += share
			}
		}
	}

	for _, bal := range balances {
		bal.NetBalance = bal.TotalPaid - bal.TotalOwed
	}

	return balances, order, nil
}
