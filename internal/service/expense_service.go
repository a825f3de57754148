package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	store     storage.Store
	publisher events.Publisher
	now       func() time.Time
}

// NewExpenseService creates an ExpenseService. A nil publisher discards events.
func NewExpenseService(store storage.Store, publisher events.Publisher) *ExpenseService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ExpenseService{store: store, publisher: publisher, now: time.Now}
}

// expenseInput holds the user-editable fields shared by create and update.
type expenseInput struct {
	description  string
	amount       float64
	paidBy       string
	splitBetween []string
	category     string
	currency     string
	date         int64
}

// apply validates the input and writes it onto expense. Category defaults to
// "General" and currency to the group's.
func (in expenseInput) apply(expense *models.Expense, group *models.Group) error {
	description := strings.TrimSpace(in.description)
	paidBy := strings.TrimSpace(in.paidBy)
	if description == "" || paidBy == "" {
		return invalidArgument("all fields are required: description and paid_by must be set")
	}
	if err := money.ValidateAmount(in.amount); err != nil {
		return invalidArgument("amount must be a positive number")
	}
	if len(in.splitBetween) == 0 {
		return connect.NewError(connect.CodeInvalidArgument, calculator.ErrEmptySplit)
	}
	split, err := normalizeNames("split_between", in.splitBetween)
	if err != nil {
		return err
	}

	category := strings.TrimSpace(in.category)
	if category == "" {
		category = models.DefaultCategory
	}
	currency := normalizeCurrency(in.currency)
	if currency == "" {
		currency = group.Currency
	}

	expense.GroupID = group.ID
	expense.Description = description
	expense.Amount = in.amount
	expense.PaidBy = paidBy
	expense.SplitBetween = split
	expense.Category = category
	expense.Currency = currency
	if in.date != 0 {
		expense.Date = in.date
	}
	return nil
}

// CreateExpense records a new expense in one of the caller's groups.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	slog.Info("CreateExpense request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount,
		"paid_by", req.Msg.PaidBy,
		"split_count", len(req.Msg.SplitBetween),
	)

	group, err := loadOwnedGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{Date: s.now().Unix()}
	in := expenseInput{
		description:  req.Msg.Description,
		amount:       req.Msg.Amount,
		paidBy:       req.Msg.PaidBy,
		splitBetween: req.Msg.SplitBetween,
		category:     req.Msg.Category,
		currency:     req.Msg.Currency,
		date:         req.Msg.Date,
	}
	if err := in.apply(expense, group); err != nil {
		return nil, err
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense created", "expense_id", expense.ID, "group_id", group.ID)
	events.Notify(ctx, s.publisher, events.NewEvent(events.ExpenseCreated, group.ID, expense.ID, expense.Amount))

	return connect.NewResponse(&api.CreateExpenseResponse{Expense: expenseToAPI(expense)}), nil
}

// GetExpense retrieves an expense from one of the caller's groups.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	slog.Info("GetExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, _, err := s.loadOwnedExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&api.GetExpenseResponse{Expense: expenseToAPI(expense)}), nil
}

// ListExpenses lists a group's expenses, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	slog.Info("ListExpenses request received", "group_id", req.Msg.GroupID)

	group, err := loadOwnedGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		slog.Error("ListExpenses failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ListExpensesResponse{Expenses: expensesToAPI(expenses)}), nil
}

// UpdateExpense replaces an expense's fields.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	slog.Info("UpdateExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, group, err := s.loadOwnedExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, err
	}

	in := expenseInput{
		description:  req.Msg.Description,
		amount:       req.Msg.Amount,
		paidBy:       req.Msg.PaidBy,
		splitBetween: req.Msg.SplitBetween,
		category:     req.Msg.Category,
		currency:     req.Msg.Currency,
		date:         req.Msg.Date,
	}
	if err := in.apply(expense, group); err != nil {
		return nil, err
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		slog.Error("UpdateExpense failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense updated", "expense_id", expense.ID)
	events.Notify(ctx, s.publisher, events.NewEvent(events.ExpenseUpdated, group.ID, expense.ID, expense.Amount))

	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: expenseToAPI(expense)}), nil
}

// DeleteExpense removes an expense. Deleting a debt cancellation reinstates the debt.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, group, err := s.loadOwnedExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense deleted", "expense_id", expense.ID)
	events.Notify(ctx, s.publisher, events.NewEvent(events.ExpenseDeleted, group.ID, expense.ID, expense.Amount))

	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// CancelDebt records that From paid To the given amount, as an expense in the
// debt cancellation category.
func (s *ExpenseService) CancelDebt(ctx context.Context, req *connect.Request[api.CancelDebtRequest]) (*connect.Response[api.CancelDebtResponse], error) {
	slog.Info("CancelDebt request received",
		"group_id", req.Msg.GroupID,
		"from", req.Msg.From,
		"to", req.Msg.To,
		"amount", req.Msg.Amount,
	)

	group, err := loadOwnedGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	settlement := calculator.Settlement{
		From:   strings.TrimSpace(req.Msg.From),
		To:     strings.TrimSpace(req.Msg.To),
		Amount: req.Msg.Amount,
	}
	if settlement.From == "" || settlement.To == "" {
		return nil, invalidArgument("from and to are required")
	}
	if settlement.From == settlement.To {
		return nil, invalidArgument("cannot cancel a debt with oneself")
	}
	if err := money.ValidateAmount(settlement.Amount); err != nil {
		return nil, invalidArgument("amount must be a positive number")
	}

	expense := models.ExpenseFromCalculator(group.ID, group.Currency, calculator.RecordCancellation(settlement, s.now()))
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CancelDebt failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}
	metrics.DebtsCancelled.Inc()

	slog.Info("Debt cancelled", "group_id", group.ID, "expense_id", expense.ID)
	s.notifyCancelled(ctx, expense)

	return connect.NewResponse(&api.CancelDebtResponse{Expense: expenseToAPI(expense)}), nil
}

// SettleAll records every currently suggested settlement as a cancellation,
// leaving all balances at zero.
func (s *ExpenseService) SettleAll(ctx context.Context, req *connect.Request[api.SettleAllRequest]) (*connect.Response[api.SettleAllResponse], error) {
	slog.Info("SettleAll request received", "group_id", req.Msg.GroupID)

	group, err := loadOwnedGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	// Re-read group and expenses together so the plan matches one snapshot
	group, expenses, err := s.store.LoadLedger(ctx, group.ID)
	if err != nil {
		slog.Error("SettleAll failed - could not load ledger", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	_, settlements, err := calculator.Plan(group.Members, models.ToCalculatorExpenses(expenses))
	if err != nil {
		slog.Error("SettleAll failed - calculation error", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	recorded := make([]*models.Expense, 0, len(settlements))
	for _, e := range calculator.RecordAllCancellations(settlements, s.now()) {
		recorded = append(recorded, models.ExpenseFromCalculator(group.ID, group.Currency, e))
	}
	if len(recorded) > 0 {
		if err := s.store.CreateExpenses(ctx, recorded); err != nil {
			slog.Error("SettleAll failed", "group_id", group.ID, "error", err)
			return nil, toConnectError(err)
		}
		metrics.DebtsCancelled.Add(float64(len(recorded)))
	}

	slog.Info("Group settled", "group_id", group.ID, "settlements_count", len(recorded))
	for _, expense := range recorded {
		s.notifyCancelled(ctx, expense)
	}

	return connect.NewResponse(&api.SettleAllResponse{Expenses: expensesToAPI(recorded)}), nil
}

func (s *ExpenseService) notifyCancelled(ctx context.Context, expense *models.Expense) {
	event := events.NewEvent(events.DebtCancelled, expense.GroupID, expense.ID, expense.Amount)
	event.From = expense.PaidBy
	if len(expense.SplitBetween) > 0 {
		event.To = expense.SplitBetween[0]
	}
	events.Notify(ctx, s.publisher, event)
}

// loadOwnedExpense fetches an expense and the group it belongs to, hiding
// expenses of other owners behind NotFound.
func (s *ExpenseService) loadOwnedExpense(ctx context.Context, expenseID string) (*models.Expense, *models.Group, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, nil, err
	}
	if expenseID == "" {
		return nil, nil, invalidArgument("expense_id required")
	}

	expense, err := s.store.GetExpense(ctx, expenseID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, connect.NewError(connect.CodeNotFound, errors.New("expense not found"))
	}
	if err != nil {
		slog.Error("Failed to load expense", "expense_id", expenseID, "error", err)
		return nil, nil, toConnectError(err)
	}

	group, err := loadOwnedGroup(ctx, s.store, expense.GroupID)
	if err != nil {
		if connect.CodeOf(err) == connect.CodeNotFound {
			return nil, nil, connect.NewError(connect.CodeNotFound, errors.New("expense not found"))
		}
		return nil, nil, err
	}
	return expense, group, nil
}
