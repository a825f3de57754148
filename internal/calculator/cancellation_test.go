package calculator

import (
	"math"
	"testing"
	"time"
)

func TestRecordCancellation(t *testing.T) {
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	expense := RecordCancellation(Settlement{From: "B", To: "A", Amount: 30}, at)

	if expense.PaidBy != "B" {
		t.Errorf("PaidBy = %q, want B", expense.PaidBy)
	}
	if len(expense.SplitBetween) != 1 || expense.SplitBetween[0] != "A" {
		t.Errorf("SplitBetween = %v, want [A]", expense.SplitBetween)
	}
	if expense.Amount != 30 {
		t.Errorf("Amount = %v, want 30", expense.Amount)
	}
	if expense.Category != DebtCancellationCategory {
		t.Errorf("Category = %q, want %q", expense.Category, DebtCancellationCategory)
	}
	if expense.Description != "Debt Cancellation: B → A" {
		t.Errorf("Description = %q", expense.Description)
	}
	if !expense.Date.Equal(at) {
		t.Errorf("Date = %v, want %v", expense.Date, at)
	}
	if !IsDebtCancellation(expense) {
		t.Error("expected IsDebtCancellation to be true")
	}
}

func TestRecordCancellation_SettlesBalances(t *testing.T) {
	members := []string{"A", "B"}
	expenses := []Expense{
		{Description: "Taxi", Amount: 60, PaidBy: "A", SplitBetween: []string{"A", "B"}},
	}

	before, err := ComputeBalances(members, expenses)
	if err != nil {
		t.Fatalf("ComputeBalances failed: %v", err)
	}
	if before["A"].NetBalance != 30 || before["B"].NetBalance != -30 {
		t.Fatalf("unexpected balances before: %+v", before)
	}

	cancellation := RecordCancellation(Settlement{From: "B", To: "A", Amount: 30}, time.Now())
	after, err := ComputeBalances(members, append(expenses, cancellation))
	if err != nil {
		t.Fatalf("ComputeBalances failed: %v", err)
	}

	for _, name := range members {
		if math.Abs(after[name].NetBalance) > Epsilon {
			t.Errorf("%s balance = %v, want 0", name, after[name].NetBalance)
		}
	}
	// B paid the debt, A received it as owed
	if after["B"].TotalPaid != 30 || after["A"].TotalOwed != 60 {
		t.Errorf("unexpected totals after cancellation: %+v", after)
	}
}

func TestRecordAllCancellations(t *testing.T) {
	at := time.Now()
	settlements := []Settlement{
		{From: "B", To: "A", Amount: 30},
		{From: "C", To: "A", Amount: 12.5},
	}

	expenses := RecordAllCancellations(settlements, at)
	if len(expenses) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(expenses))
	}
	if expenses[1].PaidBy != "C" || expenses[1].Amount != 12.5 {
		t.Errorf("unexpected second expense: %+v", expenses[1])
	}

	if got := RecordAllCancellations(nil, at); len(got) != 0 {
		t.Errorf("expected no expenses, got %d", len(got))
	}
}

func TestTotalSpend(t *testing.T) {
	expenses := []Expense{
		{Amount: 90, Category: "General"},
		{Amount: 20.5, Category: "Food & Dining"},
		{Amount: 30, Category: DebtCancellationCategory},
	}

	if got := TotalSpend(expenses); math.Abs(got-110.5) > 1e-9 {
		t.Errorf("TotalSpend() = %v, want 110.5", got)
	}
	if got := TotalSpend(nil); got != 0 {
		t.Errorf("TotalSpend(nil) = %v, want 0", got)
	}
}
