package api

// User is the public view of an account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

// Group is a set of members sharing expenses in one currency.
type Group struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Members     []string `json:"members"`
	Currency    string   `json:"currency"`
	IsActive    bool     `json:"is_active"`
	CreatedAt   int64    `json:"created_at"`
}

// Expense is one payment shared evenly by SplitBetween.
type Expense struct {
	ID                 string   `json:"id"`
	GroupID            string   `json:"group_id"`
	Description        string   `json:"description"`
	Amount             float64  `json:"amount"`
	PaidBy             string   `json:"paid_by"`
	SplitBetween       []string `json:"split_between"`
	Category           string   `json:"category"`
	Currency           string   `json:"currency"`
	Date               int64    `json:"date"`
	CreatedAt          int64    `json:"created_at"`
	IsDebtCancellation bool     `json:"is_debt_cancellation"`
}

// MemberBalance summarizes one member's position in a group.
// A positive NetBalance means the member is owed money.
type MemberBalance struct {
	MemberName string  `json:"member_name"`
	TotalPaid  float64 `json:"total_paid"`
	TotalOwed  float64 `json:"total_owed"`
	NetBalance float64 `json:"net_balance"`
}

// Settlement is a suggested payment from a debtor to a creditor.
type Settlement struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// Auth

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

// Groups

type CreateGroupRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Members     []string `json:"members"`
	Currency    string   `json:"currency"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

// UpdateGroupRequest replaces the group's fields. A nil IsActive keeps the
// current value.
type UpdateGroupRequest struct {
	GroupID     string   `json:"group_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Members     []string `json:"members"`
	Currency    string   `json:"currency"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

type UpdateGroupResponse struct {
	Group *Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id"`
}

type DeleteGroupResponse struct{}

type AddMemberRequest struct {
	GroupID string `json:"group_id"`
	Name    string `json:"name"`
}

type AddMemberResponse struct {
	Group *Group `json:"group"`
}

type RemoveMemberRequest struct {
	GroupID string `json:"group_id"`
	Name    string `json:"name"`
}

type RemoveMemberResponse struct {
	Group *Group `json:"group"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"group_id"`
}

// GetGroupBalancesResponse lists balances sorted by net balance, highest
// first, and the payments that would settle them.
type GetGroupBalancesResponse struct {
	Balances       []*MemberBalance `json:"balances"`
	Settlements    []*Settlement    `json:"settlements"`
	TotalSpend     float64          `json:"total_spend"`
	FormattedTotal string           `json:"formatted_total"`
	Currency       string           `json:"currency"`
}

// Expenses

// CreateExpenseRequest records a new expense. Category defaults to "General"
// and Currency to the group's currency. A zero Date means now.
type CreateExpenseRequest struct {
	GroupID      string   `json:"group_id"`
	Description  string   `json:"description"`
	Amount       float64  `json:"amount"`
	PaidBy       string   `json:"paid_by"`
	SplitBetween []string `json:"split_between"`
	Category     string   `json:"category,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	Date         int64    `json:"date,omitempty"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupID string `json:"group_id"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type UpdateExpenseRequest struct {
	ExpenseID    string   `json:"expense_id"`
	Description  string   `json:"description"`
	Amount       float64  `json:"amount"`
	PaidBy       string   `json:"paid_by"`
	SplitBetween []string `json:"split_between"`
	Category     string   `json:"category,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	Date         int64    `json:"date,omitempty"`
}

type UpdateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct{}

// CancelDebtRequest records that From paid To the given amount.
type CancelDebtRequest struct {
	GroupID string  `json:"group_id"`
	From    string  `json:"from"`
	To      string  `json:"to"`
	Amount  float64 `json:"amount"`
}

type CancelDebtResponse struct {
	Expense *Expense `json:"expense"`
}

type SettleAllRequest struct {
	GroupID string `json:"group_id"`
}

type SettleAllResponse struct {
	Expenses []*Expense `json:"expenses"`
}
