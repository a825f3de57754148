package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const expenseColumns = `id, group_id, description, amount, paid_by, category, currency, date, created_at`

// CreateExpense persists a new expense and its split.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	return s.CreateExpenses(ctx, []*models.Expense{expense})
}

// CreateExpenses persists expenses and their splits in one transaction.
// Generated IDs and timestamps are written back only once the transaction
// has committed.
func (s *SQLiteStore) CreateExpenses(ctx context.Context, expenses []*models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	stored := make([]models.Expense, len(expenses))
	for i, expense := range expenses {
		row := *expense
		if row.ID == "" {
			row.ID = uuid.New().String()
		}
		if row.CreatedAt == 0 {
			row.CreatedAt = now
		}
		if row.Date == 0 {
			row.Date = row.CreatedAt
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			row.ID, row.GroupID, row.Description, row.Amount, row.PaidBy,
			row.Category, row.Currency, row.Date, row.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}

		if err := insertSplits(ctx, tx, row.ID, row.SplitBetween); err != nil {
			return err
		}
		stored[i] = row
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	for i, expense := range expenses {
		expense.ID = stored[i].ID
		expense.CreatedAt = stored[i].CreatedAt
		expense.Date = stored[i].Date
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its split.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	err := s.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`,
		expenseID,
	).Scan(&expense.ID, &expense.GroupID, &expense.Description, &expense.Amount, &expense.PaidBy,
		&expense.Category, &expense.Currency, &expense.Date, &expense.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: expense %s", storage.ErrNotFound, expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT member FROM expense_splits WHERE expense_id = ? ORDER BY position",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense split: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var member string
		if err := rows.Scan(&member); err != nil {
			return nil, fmt.Errorf("failed to scan split member: %w", err)
		}
		expense.SplitBetween = append(expense.SplitBetween, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate split members: %w", err)
	}

	return expense, nil
}

// ListExpensesByGroup retrieves all expenses for a group, newest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	return listExpenses(ctx, s.db, groupID)
}

// UpdateExpense replaces an expense's fields and split.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE expenses SET description = ?, amount = ?, paid_by = ?, category = ?, currency = ?, date = ?
		 WHERE id = ?`,
		expense.Description, expense.Amount, expense.PaidBy, expense.Category, expense.Currency, expense.Date,
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if err := expectAffected(result, "expense", expense.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to clear expense split: %w", err)
	}
	if err := insertSplits(ctx, tx, expense.ID, expense.SplitBetween); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteExpense removes an expense by ID.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return expectAffected(result, "expense", expenseID)
}

func listExpenses(ctx context.Context, q querier, groupID string) ([]*models.Expense, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE group_id = ? ORDER BY date DESC, created_at DESC, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		expense := &models.Expense{}
		if err := rows.Scan(&expense.ID, &expense.GroupID, &expense.Description, &expense.Amount, &expense.PaidBy,
			&expense.Category, &expense.Currency, &expense.Date, &expense.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
		byID[expense.ID] = expense
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	// Load every split of the group in one pass
	splitRows, err := q.QueryContext(ctx,
		`SELECT s.expense_id, s.member FROM expense_splits s
		 JOIN expenses e ON e.id = s.expense_id
		 WHERE e.group_id = ?
		 ORDER BY s.expense_id, s.position`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense splits: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var expenseID, member string
		if err := splitRows.Scan(&expenseID, &member); err != nil {
			return nil, fmt.Errorf("failed to scan split member: %w", err)
		}
		if expense, ok := byID[expenseID]; ok {
			expense.SplitBetween = append(expense.SplitBetween, member)
		}
	}
	if err := splitRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate split members: %w", err)
	}

	return expenses, nil
}

func insertSplits(ctx context.Context, q querier, expenseID string, members []string) error {
	for i, member := range members {
		_, err := q.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, position, member) VALUES (?, ?, ?)",
			expenseID, i, member,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split member: %w", err)
		}
	}
	return nil
}
