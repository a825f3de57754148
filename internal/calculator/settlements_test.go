package calculator

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"
)

func TestComputeSettlements(t *testing.T) {
	tests := []struct {
		name     string
		members  []string
		expenses []Expense
		want     []Settlement
	}{
		{
			name:    "single creditor, debtors in list order",
			members: []string{"A", "B", "C"},
			expenses: []Expense{
				{Amount: 90, PaidBy: "A", SplitBetween: []string{"A", "B", "C"}},
			},
			want: []Settlement{
				{From: "B", To: "A", Amount: 30},
				{From: "C", To: "A", Amount: 30},
			},
		},
		{
			name:    "balanced group needs no payments",
			members: []string{"A", "B"},
			expenses: []Expense{
				{Amount: 50, PaidBy: "A", SplitBetween: []string{"A", "B"}},
				{Amount: 50, PaidBy: "B", SplitBetween: []string{"A", "B"}},
			},
			want: nil,
		},
		{
			name:    "greedy walk across two creditors",
			members: []string{"A", "B", "C", "D"},
			expenses: []Expense{
				{Amount: 100, PaidBy: "A", SplitBetween: []string{"A", "B", "C", "D"}},
				{Amount: 60, PaidBy: "B", SplitBetween: []string{"C", "D"}},
			},
			// A +75, B +35, C -55, D -55
			want: []Settlement{
				{From: "C", To: "A", Amount: 55},
				{From: "D", To: "A", Amount: 20},
				{From: "D", To: "B", Amount: 35},
			},
		},
		{
			name:    "uneven split stays within epsilon",
			members: []string{"A", "B", "C"},
			expenses: []Expense{
				{Amount: 100, PaidBy: "A", SplitBetween: []string{"A", "B", "C"}},
			},
			want: []Settlement{
				{From: "B", To: "A", Amount: 100.0 / 3.0},
				{From: "C", To: "A", Amount: 100.0 / 3.0},
			},
		},
		{
			name:    "balances under a cent are ignored",
			members: []string{"A", "B"},
			expenses: []Expense{
				{Amount: 0.01, PaidBy: "A", SplitBetween: []string{"B"}},
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances, err := SortedBalances(tt.members, tt.expenses)
			if err != nil {
				t.Fatalf("SortedBalances failed: %v", err)
			}

			got := ComputeSettlements(balances)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d settlements %+v, want %d %+v", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if got[i].From != tt.want[i].From || got[i].To != tt.want[i].To {
					t.Errorf("settlement %d: got %s → %s, want %s → %s",
						i, got[i].From, got[i].To, tt.want[i].From, tt.want[i].To)
				}
				if math.Abs(got[i].Amount-tt.want[i].Amount) > 0.01 {
					t.Errorf("settlement %d: amount = %v, want %v", i, got[i].Amount, tt.want[i].Amount)
				}
			}
		})
	}
}

func TestComputeSettlements_DoesNotMutateBalances(t *testing.T) {
	balances := []MemberBalance{
		{MemberName: "A", NetBalance: 60},
		{MemberName: "B", NetBalance: -30},
		{MemberName: "C", NetBalance: -30},
	}

	ComputeSettlements(balances)

	if balances[0].NetBalance != 60 || balances[1].NetBalance != -30 || balances[2].NetBalance != -30 {
		t.Errorf("balances mutated: %+v", balances)
	}
}

func TestComputeSettlements_Empty(t *testing.T) {
	if got := ComputeSettlements(nil); len(got) != 0 {
		t.Errorf("expected no settlements, got %+v", got)
	}
}

// Settlements are positive, never self-directed, and recording them all as
// cancellations brings every balance back to zero.
func TestComputeSettlements_Properties(t *testing.T) {
	members := []string{"Alice", "Bob", "Charlie", "Diana", "Eve", "Frank"}
	rng := rand.New(rand.NewPCG(3, 5))
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for round := 0; round < 100; round++ {
		expenses := randomExpenses(rng, members, 1+rng.IntN(25))

		balances, settlements, err := Plan(members, expenses)
		if err != nil {
			t.Fatalf("round %d: Plan failed: %v", round, err)
		}

		seen := make(map[[2]string]bool)
		for _, s := range settlements {
			if s.Amount <= 0 {
				t.Errorf("round %d: non-positive settlement %+v", round, s)
			}
			if s.From == s.To {
				t.Errorf("round %d: self settlement %+v", round, s)
			}
			if NetBalanceOf(balances, s.From) >= 0 || NetBalanceOf(balances, s.To) <= 0 {
				t.Errorf("round %d: settlement %+v does not flow from debtor to creditor", round, s)
			}
			pair := [2]string{s.From, s.To}
			if seen[pair] {
				t.Errorf("round %d: duplicate pair %v", round, pair)
			}
			seen[pair] = true
		}

		settled := append(append([]Expense{}, expenses...), RecordAllCancellations(settlements, now)...)
		after, err := ComputeBalances(members, settled)
		if err != nil {
			t.Fatalf("round %d: ComputeBalances failed: %v", round, err)
		}
		for name, bal := range after {
			if math.Abs(bal.NetBalance) > Epsilon {
				t.Errorf("round %d: %s still has balance %v after settling", round, name, bal.NetBalance)
			}
		}
	}
}

func TestPlan(t *testing.T) {
	balances, settlements, err := Plan([]string{"A", "B", "C"}, []Expense{
		{Amount: 90, PaidBy: "A", SplitBetween: []string{"A", "B", "C"}},
	})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(balances) != 3 || balances[0].MemberName != "A" {
		t.Errorf("unexpected balances: %+v", balances)
	}
	if len(settlements) != 2 {
		t.Errorf("expected 2 settlements, got %d", len(settlements))
	}

	if _, _, err := Plan([]string{"A"}, []Expense{{Amount: 5, PaidBy: "A"}}); err == nil {
		t.Error("expected error for empty split")
	}
}
