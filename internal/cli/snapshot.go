package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// Snapshot is a group and its expenses stored as a TOML file:
//
//	name = "Trip"
//	currency = "EUR"
//	members = ["A", "B", "C"]
//
//	[[expenses]]
//	description = "Dinner"
//	amount = 90.0
//	paid_by = "A"
//	split_between = ["A", "B", "C"]
type Snapshot struct {
	Name     string            `toml:"name"`
	Currency string            `toml:"currency"`
	Members  []string          `toml:"members"`
	Expenses []SnapshotExpense `toml:"expenses"`
}

// SnapshotExpense is one [[expenses]] entry.
type SnapshotExpense struct {
	Description  string     `toml:"description"`
	Amount       float64    `toml:"amount"`
	PaidBy       string     `toml:"paid_by"`
	SplitBetween []string   `toml:"split_between"`
	Category     string     `toml:"category,omitempty"`
	Date         *time.Time `toml:"date,omitempty"`
}

// LoadSnapshot reads and validates a snapshot file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var s Snapshot
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	s.trimNames()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", path, err)
	}

	return &s, nil
}

// SaveSnapshot writes s to path. The snapshot is encoded into a temporary
// file in the same directory and renamed over path, so a failed write leaves
// the previous file intact.
func SaveSnapshot(path string, s *Snapshot) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if err := toml.NewEncoder(f).Encode(s); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := f.Chmod(0o644); err != nil {
		return fmt.Errorf("setting snapshot permissions: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing snapshot file: %w", err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// Validate checks the same rules the server enforces on new expenses.
func (s *Snapshot) Validate() error {
	var errs []error
	if len(s.Members) == 0 {
		errs = append(errs, errors.New("members: at least one member is required"))
	}
	if err := checkNames(s.Members); err != nil {
		errs = append(errs, fmt.Errorf("members: %w", err))
	}

	for i, e := range s.Expenses {
		if err := money.ValidateAmount(e.Amount); err != nil {
			errs = append(errs, fmt.Errorf("expense %d (%q): %w", i, e.Description, err))
		}
		if e.PaidBy == "" {
			errs = append(errs, fmt.Errorf("expense %d (%q): paid_by is required", i, e.Description))
		}
		if len(e.SplitBetween) == 0 {
			errs = append(errs, fmt.Errorf("expense %d (%q): %w", i, e.Description, calculator.ErrEmptySplit))
		} else if err := checkNames(e.SplitBetween); err != nil {
			errs = append(errs, fmt.Errorf("expense %d (%q): split_between: %w", i, e.Description, err))
		}
	}
	return errors.Join(errs...)
}

// trimNames strips surrounding spaces from every member, payer and split name.
func (s *Snapshot) trimNames() {
	s.Members = trimAll(s.Members)
	for i := range s.Expenses {
		s.Expenses[i].PaidBy = strings.TrimSpace(s.Expenses[i].PaidBy)
		s.Expenses[i].SplitBetween = trimAll(s.Expenses[i].SplitBetween)
	}
}

func trimAll(names []string) []string {
	if names == nil {
		return nil
	}
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = strings.TrimSpace(name)
	}
	return out
}

// checkNames rejects blank, untrimmed and duplicate names, matching the
// rules the server applies to members and splits.
func checkNames(names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		switch {
		case strings.TrimSpace(name) == "":
			return errors.New("names must not be empty")
		case strings.TrimSpace(name) != name:
			return fmt.Errorf("name %q has surrounding spaces", name)
		case seen[name]:
			return fmt.Errorf("duplicate name %q", name)
		}
		seen[name] = true
	}
	return nil
}

// CalculatorExpenses converts the snapshot's expenses for balance computation.
func (s *Snapshot) CalculatorExpenses() []calculator.Expense {
	out := make([]calculator.Expense, len(s.Expenses))
	for i, e := range s.Expenses {
		category := e.Category
		if category == "" {
			category = models.DefaultCategory
		}
		out[i] = calculator.Expense{
			Description:  e.Description,
			Amount:       e.Amount,
			PaidBy:       e.PaidBy,
			SplitBetween: e.SplitBetween,
			Category:     category,
		}
		if e.Date != nil {
			out[i].Date = *e.Date
		}
	}
	return out
}

// Append adds calculator expenses, such as recorded cancellations, to the snapshot.
func (s *Snapshot) Append(expenses []calculator.Expense) {
	for _, e := range expenses {
		date := e.Date.UTC().Truncate(time.Second)
		s.Expenses = append(s.Expenses, SnapshotExpense{
			Description:  e.Description,
			Amount:       e.Amount,
			PaidBy:       e.PaidBy,
			SplitBetween: e.SplitBetween,
			Category:     e.Category,
			Date:         &date,
		})
	}
}
