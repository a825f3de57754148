package service

import (
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

var errGroupNotFound = errors.New("group not found")

// toConnectError maps domain and storage errors to Connect codes.
func toConnectError(err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return connectErr
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, calculator.ErrEmptySplit), errors.Is(err, money.ErrInvalidAmount):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func invalidArgument(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

// normalizeNames trims names and rejects blanks and duplicates.
func normalizeNames(field string, names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, invalidArgument("%s: names must not be empty", field)
		}
		if seen[name] {
			return nil, invalidArgument("%s: duplicate name %q", field, name)
		}
		seen[name] = true
		out = append(out, name)
	}
	return out, nil
}

func normalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func userToAPI(user *models.User) *api.User {
	return &api.User{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
	}
}

func groupToAPI(group *models.Group) *api.Group {
	return &api.Group{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		Members:     group.Members,
		Currency:    group.Currency,
		IsActive:    group.IsActive,
		CreatedAt:   group.CreatedAt,
	}
}

func expenseToAPI(expense *models.Expense) *api.Expense {
	return &api.Expense{
		ID:                 expense.ID,
		GroupID:            expense.GroupID,
		Description:        expense.Description,
		Amount:             expense.Amount,
		PaidBy:             expense.PaidBy,
		SplitBetween:       expense.SplitBetween,
		Category:           expense.Category,
		Currency:           expense.Currency,
		Date:               expense.Date,
		CreatedAt:          expense.CreatedAt,
		IsDebtCancellation: expense.IsDebtCancellation(),
	}
}

func expensesToAPI(expenses []*models.Expense) []*api.Expense {
	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = expenseToAPI(e)
	}
	return out
}
