package calculator

// Settlement represents a suggested payment from a debtor to a creditor.
type Settlement struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount float64
}

// ComputeSettlements suggests the payments that bring every balance back to zero.
//
// Creditors (balance > Epsilon) and debtors (balance < -Epsilon) are walked with
// two pointers in the order they appear in balances, so the result depends on
// the order produced by SortedBalances. Each step pays the smaller of what the
// current debtor owes and what the current creditor is owed. This is a greedy
// merge; it does not search for the smallest possible number of payments.
func ComputeSettlements(balances []MemberBalance) []Settlement {
	var creditors []MemberBalance
	var debtors []MemberBalance
	for _, bal := range balances {
		if bal.NetBalance > Epsilon {
			creditors = append(creditors, bal)
		} else if bal.NetBalance < -Epsilon {
			debtors = append(debtors, bal)
		}
	}

	var settlements []Settlement
	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		creditor := &creditors[i]
		debtor := &debtors[j]

		amount := creditor.NetBalance
		if owed := -debtor.NetBalance; owed < amount {
			amount = owed
		}

		if amount > Epsilon { // Avoid floating point noise
			settlements = append(settlements, Settlement{
				From:   debtor.MemberName,
				To:     creditor.MemberName,
				Amount: amount,
			})
		}

		creditor.NetBalance -= amount
		debtor.NetBalance += amount

		// Move to next creditor/debtor if fully settled
		if creditor.NetBalance < Epsilon {
			i++
		}
		if -debtor.NetBalance < Epsilon {
			j++
		}
	}

	return settlements
}

// Plan computes sorted balances for the group and the settlements that clear them.
func Plan(members []string, expenses []Expense) ([]MemberBalance, []Settlement, error) {
	balances, err := SortedBalances(members, expenses)
	if err != nil {
		return nil, nil, err
	}
	return balances, ComputeSettlements(balances), nil
}
