// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrNotFound is returned (wrapped) when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for user, group and expense storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateUser persists a new user. The user's ID must already be set.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email, or an ErrNotFound error.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID, or an ErrNotFound error.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// CreateGroup persists a new group.
	// The group.ID and group.CreatedAt fields will be populated by the store.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsByOwner retrieves all groups owned by a user, newest first.
	ListGroupsByOwner(ctx context.Context, ownerID string) ([]*models.Group, error)

	// UpdateGroup replaces a group's name, description, currency, active
	// flag and member list.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group and all of its expenses.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddGroupMembers appends members to the end of a group's member list.
	AddGroupMembers(ctx context.Context, groupID string, names []string) error

	// RemoveGroupMember removes one member. Expenses referencing the
	// member are kept.
	RemoveGroupMember(ctx context.Context, groupID, name string) error

	// CreateExpense persists a new expense.
	// The expense.ID and expense.CreatedAt fields will be populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// CreateExpenses persists several expenses atomically.
	CreateExpenses(ctx context.Context, expenses []*models.Expense) error

	// GetExpense retrieves an expense with its split.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup retrieves all expenses of a group, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// UpdateExpense replaces an existing expense.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes an expense.
	DeleteExpense(ctx context.Context, expenseID string) error

	// LoadLedger reads a group and all of its expenses from one consistent
	// snapshot, so balances are never computed over a half-applied edit.
	LoadLedger(ctx context.Context, groupID string) (*models.Group, []*models.Expense, error)

	// Close releases any resources held by the store.
	Close() error
}
